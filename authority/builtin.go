package authority

import (
	"errors"

	"orghub/idgen"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
)

const (
	PermViewEvents   = "view-events"
	PermCreateEvents = "create-events"
	PermUpdateEvents = "update-events"
	PermDeleteEvents = "delete-events"

	PermCreateCategories = "create-categories"
	PermReadCategories   = "read-categories"
	PermUpdateCategories = "update-categories"
	PermDeleteCategories = "delete-categories"

	PermCreateMembers = "create-members"
	PermUpdateMembers = "update-members"
	PermDeleteMembers = "delete-members"

	PermCreateNews = "create-news"
	PermUpdateNews = "update-news"
	PermDeleteNews = "delete-news"

	PermCreateGalleries = "create-galleries"
	PermUpdateGalleries = "update-galleries"
	PermDeleteGalleries = "delete-galleries"

	PermManageRoles       = "manage-roles"
	PermManagePermissions = "manage-permissions"
	PermManageUsers       = "manage-users"
	PermManageIndices     = "manage-indices"

	RoleAdmin = "admin"
)

var builtinModules = []struct {
	module string
	slugs  []string
}{
	{"events", []string{PermViewEvents, PermCreateEvents, PermUpdateEvents, PermDeleteEvents}},
	{"categories", []string{PermCreateCategories, PermReadCategories, PermUpdateCategories, PermDeleteCategories}},
	{"members", []string{PermCreateMembers, PermUpdateMembers, PermDeleteMembers}},
	{"news", []string{PermCreateNews, PermUpdateNews, PermDeleteNews}},
	{"galleries", []string{PermCreateGalleries, PermUpdateGalleries, PermDeleteGalleries}},
	{"access", []string{PermManageRoles, PermManagePermissions, PermManageUsers}},
	{"search", []string{PermManageIndices}},
}

// DefaultSecurityConfiguration makes sure every built-in permission exists and that the admin role
// holds all of them. It is idempotent and runs on tx.
func DefaultSecurityConfiguration(tx *gorm.DB) (*Role, error) {
	for _, m := range builtinModules {
		for _, slug := range m.slugs {
			p := Permission{}
			err := tx.Where("slug = ?", slug).First(&p).Error
			if err == nil {
				continue
			}
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, err
			}
			p = Permission{ID: idgen.NextID(idWorker), Name: slug, Slug: slug, Module: m.module}
			if err := tx.Create(&p).Error; err != nil {
				return nil, err
			}
		}
	}

	admin := Role{}
	err := tx.Where("slug = ?", RoleAdmin).First(&admin).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		admin = Role{ID: idgen.NextID(idWorker), Name: "Administrator", Slug: RoleAdmin, Description: "full access"}
		err = tx.Create(&admin).Error
	}
	if err != nil {
		return nil, err
	}

	var all []Permission
	if err := tx.Find(&all).Error; err != nil {
		return nil, err
	}
	ids := make([]types.ID, 0, len(all))
	for _, p := range all {
		ids = append(ids, p.ID)
	}
	if err := attachPermissions(tx, admin.ID, ids); err != nil {
		return nil, err
	}
	return &admin, nil
}
