package authority

import (
	"orghub/bizerror"
	"orghub/common"
	"orghub/idgen"
	"orghub/persistence"
	"orghub/session"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
)

var (
	idWorker = idgen.NewWorker()

	QueryPermissionsFunc = QueryPermissions
	DetailPermissionFunc = DetailPermission
	CreatePermissionFunc = CreatePermission
	UpdatePermissionFunc = UpdatePermission
	DeletePermissionFunc = DeletePermission
)

func QueryPermissions(s *session.Session) ([]Permission, error) {
	perms := []Permission{}
	db := persistence.ActiveDataSourceManager.GormDB(s.TraceContext())
	if err := db.Order("module ASC, id ASC").Find(&perms).Error; err != nil {
		return nil, err
	}
	return perms, nil
}

func DetailPermission(id types.ID, s *session.Session) (*PermissionDetail, error) {
	db := persistence.ActiveDataSourceManager.GormDB(s.TraceContext())
	detail := PermissionDetail{}
	if err := db.Where("id = ?", id).First(&detail.Permission).Error; err != nil {
		return nil, err
	}
	roles := []Role{}
	if err := db.Model(&Role{}).Select("roles.*").
		Joins("JOIN role_permission_bindings ON role_permission_bindings.role_id = roles.id").
		Where("role_permission_bindings.permission_id = ?", id).
		Order("roles.id ASC").Find(&roles).Error; err != nil {
		return nil, err
	}
	detail.Roles = roles
	return &detail, nil
}

func CreatePermission(in PermissionInput, s *session.Session) (*Permission, error) {
	p := Permission{ID: idgen.NextID(idWorker), Name: in.Name, Slug: common.Slugify(in.Name),
		Description: in.Description, Module: in.Module}
	err := persistence.ActiveDataSourceManager.GormDB(s.TraceContext()).Transaction(func(tx *gorm.DB) error {
		if err := checkPermissionUnique(tx, p.Name, p.Slug, 0); err != nil {
			return err
		}
		return tx.Create(&p).Error
	})
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func UpdatePermission(id types.ID, in PermissionInput, s *session.Session) (*Permission, error) {
	p := Permission{}
	err := persistence.ActiveDataSourceManager.GormDB(s.TraceContext()).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(&p).Error; err != nil {
			return err
		}
		slug := common.Slugify(in.Name)
		if err := checkPermissionUnique(tx, in.Name, slug, id); err != nil {
			return err
		}
		changes := map[string]interface{}{"name": in.Name, "slug": slug, "description": in.Description, "module": in.Module}
		if err := tx.Model(&p).Updates(changes).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).First(&p).Error
	})
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// DeletePermission removes the permission together with its role attachments.
func DeletePermission(id types.ID, s *session.Session) error {
	return persistence.ActiveDataSourceManager.GormDB(s.TraceContext()).Transaction(func(tx *gorm.DB) error {
		p := Permission{}
		if err := tx.Where("id = ?", id).First(&p).Error; err != nil {
			return err
		}
		if err := tx.Where("permission_id = ?", id).Delete(&RolePermissionBinding{}).Error; err != nil {
			return err
		}
		return tx.Delete(&Permission{}, "id = ?", id).Error
	})
}

func checkPermissionUnique(tx *gorm.DB, name, slug string, self types.ID) error {
	if slug == "" {
		return bizerror.NewValidationError("name", "The name must contain at least one letter or digit.")
	}
	var count int
	if err := tx.Model(&Permission{}).Where("(name = ? OR slug = ?) AND id <> ?", name, slug, self).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return bizerror.NewValidationError("name", "The name has already been taken.")
	}
	return nil
}

// ensurePermissionsExist returns the deduplicated ids, or a validation error naming the field when any is unknown.
func ensurePermissionsExist(tx *gorm.DB, ids []types.ID) ([]types.ID, error) {
	unique := dedupIDs(ids)
	if len(unique) == 0 {
		return unique, nil
	}
	var count int
	if err := tx.Model(&Permission{}).Where("id IN (?)", unique).Count(&count).Error; err != nil {
		return nil, err
	}
	if count != len(unique) {
		return nil, bizerror.NewValidationError("permissions", "The selected permissions is invalid.")
	}
	return unique, nil
}

func dedupIDs(ids []types.ID) []types.ID {
	seen := map[types.ID]bool{}
	result := []types.ID{}
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		result = append(result, id)
	}
	return result
}
