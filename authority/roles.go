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
	QueryRolesFunc        = QueryRoles
	DetailRoleFunc        = DetailRole
	CreateRoleFunc        = CreateRole
	UpdateRoleFunc        = UpdateRole
	DeleteRoleFunc        = DeleteRole
	AttachPermissionsFunc = AttachPermissions
	SyncPermissionsFunc   = SyncPermissions
	DetachPermissionsFunc = DetachPermissions
)

func QueryRoles(s *session.Session) ([]RoleDetail, error) {
	db := persistence.ActiveDataSourceManager.GormDB(s.TraceContext())
	roles := []Role{}
	if err := db.Order("id ASC").Find(&roles).Error; err != nil {
		return nil, err
	}
	details := make([]RoleDetail, 0, len(roles))
	for _, r := range roles {
		perms, err := permissionsOfRole(db, r.ID)
		if err != nil {
			return nil, err
		}
		details = append(details, RoleDetail{Role: r, Permissions: perms})
	}
	return details, nil
}

func DetailRole(id types.ID, s *session.Session) (*RoleDetail, error) {
	return loadRoleDetail(persistence.ActiveDataSourceManager.GormDB(s.TraceContext()), id)
}

// CreateRole creates the role and attaches the listed permissions in one transaction.
func CreateRole(in RoleInput, s *session.Session) (*RoleDetail, error) {
	var detail *RoleDetail
	err := persistence.ActiveDataSourceManager.GormDB(s.TraceContext()).Transaction(func(tx *gorm.DB) error {
		r := Role{ID: idgen.NextID(idWorker), Name: in.Name, Slug: common.Slugify(in.Name), Description: in.Description}
		if err := checkRoleUnique(tx, r.Name, r.Slug, 0); err != nil {
			return err
		}
		var permIDs []types.ID
		if in.Permissions != nil {
			ids, err := ensurePermissionsExist(tx, *in.Permissions)
			if err != nil {
				return err
			}
			permIDs = ids
		}
		if err := tx.Create(&r).Error; err != nil {
			return err
		}
		if err := attachPermissions(tx, r.ID, permIDs); err != nil {
			return err
		}
		d, err := loadRoleDetail(tx, r.ID)
		detail = d
		return err
	})
	if err != nil {
		return nil, err
	}
	return detail, nil
}

// UpdateRole replaces name and description. When a permission list is given the attached set is
// synchronized to exactly that list.
func UpdateRole(id types.ID, in RoleInput, s *session.Session) (*RoleDetail, error) {
	var detail *RoleDetail
	err := persistence.ActiveDataSourceManager.GormDB(s.TraceContext()).Transaction(func(tx *gorm.DB) error {
		r := Role{}
		if err := tx.Where("id = ?", id).First(&r).Error; err != nil {
			return err
		}
		slug := common.Slugify(in.Name)
		if err := checkRoleUnique(tx, in.Name, slug, id); err != nil {
			return err
		}
		if err := tx.Model(&r).Updates(map[string]interface{}{
			"name": in.Name, "slug": slug, "description": in.Description}).Error; err != nil {
			return err
		}
		if in.Permissions != nil {
			if err := syncPermissions(tx, id, *in.Permissions); err != nil {
				return err
			}
		}
		d, err := loadRoleDetail(tx, id)
		detail = d
		return err
	})
	if err != nil {
		return nil, err
	}
	return detail, nil
}

// DeleteRole removes the role, its user assignments and its permission attachments.
func DeleteRole(id types.ID, s *session.Session) error {
	return persistence.ActiveDataSourceManager.GormDB(s.TraceContext()).Transaction(func(tx *gorm.DB) error {
		r := Role{}
		if err := tx.Where("id = ?", id).First(&r).Error; err != nil {
			return err
		}
		if err := tx.Where("role_id = ?", id).Delete(&UserRoleBinding{}).Error; err != nil {
			return err
		}
		if err := tx.Where("role_id = ?", id).Delete(&RolePermissionBinding{}).Error; err != nil {
			return err
		}
		return tx.Delete(&Role{}, "id = ?", id).Error
	})
}

// AttachPermissions appends permissions to the role, pairs already present are skipped.
func AttachPermissions(roleID types.ID, permissionIDs []types.ID, s *session.Session) (*RoleDetail, error) {
	return mutateRolePermissions(roleID, s, func(tx *gorm.DB) error {
		ids, err := ensurePermissionsExist(tx, permissionIDs)
		if err != nil {
			return err
		}
		return attachPermissions(tx, roleID, ids)
	})
}

// SyncPermissions makes the attached set equal to permissionIDs.
func SyncPermissions(roleID types.ID, permissionIDs []types.ID, s *session.Session) (*RoleDetail, error) {
	return mutateRolePermissions(roleID, s, func(tx *gorm.DB) error {
		return syncPermissions(tx, roleID, permissionIDs)
	})
}

func DetachPermissions(roleID types.ID, permissionIDs []types.ID, s *session.Session) (*RoleDetail, error) {
	return mutateRolePermissions(roleID, s, func(tx *gorm.DB) error {
		ids := dedupIDs(permissionIDs)
		if len(ids) == 0 {
			return nil
		}
		return tx.Where("role_id = ? AND permission_id IN (?)", roleID, ids).Delete(&RolePermissionBinding{}).Error
	})
}

func mutateRolePermissions(roleID types.ID, s *session.Session, action func(tx *gorm.DB) error) (*RoleDetail, error) {
	var detail *RoleDetail
	err := persistence.ActiveDataSourceManager.GormDB(s.TraceContext()).Transaction(func(tx *gorm.DB) error {
		r := Role{}
		if err := tx.Where("id = ?", roleID).First(&r).Error; err != nil {
			return err
		}
		if err := action(tx); err != nil {
			return err
		}
		d, err := loadRoleDetail(tx, roleID)
		detail = d
		return err
	})
	if err != nil {
		return nil, err
	}
	return detail, nil
}

func syncPermissions(tx *gorm.DB, roleID types.ID, permissionIDs []types.ID) error {
	ids, err := ensurePermissionsExist(tx, permissionIDs)
	if err != nil {
		return err
	}
	q := tx.Where("role_id = ?", roleID)
	if len(ids) > 0 {
		q = q.Where("permission_id NOT IN (?)", ids)
	}
	if err := q.Delete(&RolePermissionBinding{}).Error; err != nil {
		return err
	}
	return attachPermissions(tx, roleID, ids)
}

func attachPermissions(tx *gorm.DB, roleID types.ID, permissionIDs []types.ID) error {
	if len(permissionIDs) == 0 {
		return nil
	}
	var existing []types.ID
	if err := tx.Model(&RolePermissionBinding{}).Where("role_id = ? AND permission_id IN (?)", roleID, permissionIDs).
		Pluck("permission_id", &existing).Error; err != nil {
		return err
	}
	present := map[types.ID]bool{}
	for _, id := range existing {
		present[id] = true
	}
	for _, pid := range permissionIDs {
		if present[pid] {
			continue
		}
		b := RolePermissionBinding{ID: idgen.NextID(idWorker), RoleID: roleID, PermissionID: pid}
		if err := tx.Create(&b).Error; err != nil {
			return err
		}
	}
	return nil
}

func loadRoleDetail(db *gorm.DB, id types.ID) (*RoleDetail, error) {
	detail := RoleDetail{}
	if err := db.Where("id = ?", id).First(&detail.Role).Error; err != nil {
		return nil, err
	}
	perms, err := permissionsOfRole(db, id)
	if err != nil {
		return nil, err
	}
	detail.Permissions = perms
	return &detail, nil
}

func permissionsOfRole(db *gorm.DB, roleID types.ID) ([]Permission, error) {
	perms := []Permission{}
	if err := db.Model(&Permission{}).Select("permissions.*").
		Joins("JOIN role_permission_bindings ON role_permission_bindings.permission_id = permissions.id").
		Where("role_permission_bindings.role_id = ?", roleID).
		Order("permissions.id ASC").Find(&perms).Error; err != nil {
		return nil, err
	}
	return perms, nil
}

func checkRoleUnique(tx *gorm.DB, name, slug string, self types.ID) error {
	if slug == "" {
		return bizerror.NewValidationError("name", "The name must contain at least one letter or digit.")
	}
	var count int
	if err := tx.Model(&Role{}).Where("(name = ? OR slug = ?) AND id <> ?", name, slug, self).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return bizerror.NewValidationError("name", "The name has already been taken.")
	}
	return nil
}
