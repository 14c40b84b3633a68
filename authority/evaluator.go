package authority

import (
	"context"

	"orghub/persistence"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
	"github.com/sirupsen/logrus"
)

var LoadGrantsFunc = LoadGrants

type slugRow struct {
	ID   types.ID
	Slug string
}

// LoadGrants walks user -> roles -> permissions. Permissions reachable through several roles appear once.
func LoadGrants(db *gorm.DB, uid types.ID) (*Grants, error) {
	grants := &Grants{Roles: []string{}, Permissions: []string{}}

	var roles []slugRow
	if err := db.Table("roles").Select("roles.id, roles.slug").
		Joins("JOIN user_role_bindings ON user_role_bindings.role_id = roles.id").
		Where("user_role_bindings.user_id = ?", uid).
		Order("roles.id ASC").Scan(&roles).Error; err != nil {
		return nil, err
	}
	if len(roles) == 0 {
		return grants, nil
	}

	roleIDs := make([]types.ID, 0, len(roles))
	for _, r := range roles {
		roleIDs = append(roleIDs, r.ID)
		grants.Roles = append(grants.Roles, r.Slug)
	}

	var perms []slugRow
	if err := db.Table("permissions").Select("permissions.id, permissions.slug").
		Joins("JOIN role_permission_bindings ON role_permission_bindings.permission_id = permissions.id").
		Where("role_permission_bindings.role_id IN (?)", roleIDs).
		Order("permissions.id ASC").Scan(&perms).Error; err != nil {
		return nil, err
	}
	seen := map[types.ID]bool{}
	for _, p := range perms {
		if seen[p.ID] {
			continue
		}
		seen[p.ID] = true
		grants.Permissions = append(grants.Permissions, p.Slug)
	}
	return grants, nil
}

func (g *Grants) HasPermission(slug string) bool {
	if g == nil {
		return false
	}
	for _, p := range g.Permissions {
		if p == slug {
			return true
		}
	}
	return false
}

func (g *Grants) HasRole(slug string) bool {
	if g == nil {
		return false
	}
	for _, r := range g.Roles {
		if r == slug {
			return true
		}
	}
	return false
}

// HasPermission answers from the current store state. Lookup failures are logged and deny.
func HasPermission(ctx context.Context, uid types.ID, slug string) bool {
	grants, err := LoadGrantsFunc(persistence.ActiveDataSourceManager.GormDB(ctx), uid)
	if err != nil {
		logrus.WithField("uid", uid).Errorf("failed to load grants: %v", err)
		return false
	}
	return grants.HasPermission(slug)
}

// HasRole answers from the current store state. Lookup failures are logged and deny.
func HasRole(ctx context.Context, uid types.ID, slug string) bool {
	grants, err := LoadGrantsFunc(persistence.ActiveDataSourceManager.GormDB(ctx), uid)
	if err != nil {
		logrus.WithField("uid", uid).Errorf("failed to load grants: %v", err)
		return false
	}
	return grants.HasRole(slug)
}
