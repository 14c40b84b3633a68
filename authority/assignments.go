package authority

import (
	"orghub/bizerror"
	"orghub/idgen"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
)

// The assignment functions run on the caller's transaction, the caller owns the user record.

// AttachRoles assigns roles to the user, pairs already present are skipped.
func AttachRoles(tx *gorm.DB, userID types.ID, roleIDs []types.ID) error {
	ids, err := ensureRolesExist(tx, roleIDs)
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		return nil
	}
	var existing []types.ID
	if err := tx.Model(&UserRoleBinding{}).Where("user_id = ? AND role_id IN (?)", userID, ids).
		Pluck("role_id", &existing).Error; err != nil {
		return err
	}
	present := map[types.ID]bool{}
	for _, id := range existing {
		present[id] = true
	}
	for _, rid := range ids {
		if present[rid] {
			continue
		}
		if err := tx.Create(&UserRoleBinding{ID: idgen.NextID(idWorker), UserID: userID, RoleID: rid}).Error; err != nil {
			return err
		}
	}
	return nil
}

// SyncRoles makes the user's assigned set equal to roleIDs.
func SyncRoles(tx *gorm.DB, userID types.ID, roleIDs []types.ID) error {
	ids, err := ensureRolesExist(tx, roleIDs)
	if err != nil {
		return err
	}
	q := tx.Where("user_id = ?", userID)
	if len(ids) > 0 {
		q = q.Where("role_id NOT IN (?)", ids)
	}
	if err := q.Delete(&UserRoleBinding{}).Error; err != nil {
		return err
	}
	return AttachRoles(tx, userID, ids)
}

func DetachRole(tx *gorm.DB, userID, roleID types.ID) error {
	return tx.Where("user_id = ? AND role_id = ?", userID, roleID).Delete(&UserRoleBinding{}).Error
}

// ClearRoles drops every assignment of the user.
func ClearRoles(tx *gorm.DB, userID types.ID) error {
	return tx.Where("user_id = ?", userID).Delete(&UserRoleBinding{}).Error
}

func RolesOfUser(db *gorm.DB, userID types.ID) ([]Role, error) {
	roles := []Role{}
	if err := db.Model(&Role{}).Select("roles.*").
		Joins("JOIN user_role_bindings ON user_role_bindings.role_id = roles.id").
		Where("user_role_bindings.user_id = ?", userID).
		Order("roles.id ASC").Find(&roles).Error; err != nil {
		return nil, err
	}
	return roles, nil
}

func ensureRolesExist(tx *gorm.DB, roleIDs []types.ID) ([]types.ID, error) {
	ids := dedupIDs(roleIDs)
	if len(ids) == 0 {
		return ids, nil
	}
	var count int
	if err := tx.Model(&Role{}).Where("id IN (?)", ids).Count(&count).Error; err != nil {
		return nil, err
	}
	if count != len(ids) {
		return nil, bizerror.NewValidationError("roles", "The selected roles is invalid.")
	}
	return ids, nil
}
