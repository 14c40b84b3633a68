package authority

import (
	"time"

	"github.com/fundwit/go-commons/types"
)

type Permission struct {
	ID          types.ID `json:"id"`
	Name        string   `json:"name" gorm:"not null;unique_index:uni_permission_name"`
	Slug        string   `json:"slug" gorm:"not null;unique_index:uni_permission_slug"`
	Description string   `json:"description"`
	Module      string   `json:"module" gorm:"not null"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Role struct {
	ID          types.ID `json:"id"`
	Name        string   `json:"name" gorm:"not null;unique_index:uni_role_name"`
	Slug        string   `json:"slug" gorm:"not null;unique_index:uni_role_slug"`
	Description string   `json:"description"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type RolePermissionBinding struct {
	ID           types.ID `json:"id"`
	RoleID       types.ID `json:"roleId" gorm:"not null;unique_index:uni_role_perm"`
	PermissionID types.ID `json:"permissionId" gorm:"not null;unique_index:uni_role_perm;index"`
}

type UserRoleBinding struct {
	ID     types.ID `json:"id"`
	UserID types.ID `json:"userId" gorm:"not null;unique_index:uni_user_role"`
	RoleID types.ID `json:"roleId" gorm:"not null;unique_index:uni_user_role;index"`
}

type PermissionInput struct {
	Name        string `json:"name" binding:"required,lte=255"`
	Description string `json:"description"`
	Module      string `json:"module" binding:"required,lte=255"`
}

type PermissionDetail struct {
	Permission
	Roles []Role `json:"roles"`
}

type RoleInput struct {
	Name        string `json:"name" binding:"required,lte=255"`
	Description string `json:"description"`
	// nil leaves the attached permissions untouched on update
	Permissions *[]types.ID `json:"permissions"`
}

type RoleDetail struct {
	Role
	Permissions []Permission `json:"permissions"`
}

type PermissionIDs struct {
	Permissions []types.ID `json:"permissions" binding:"required,min=1"`
}

type RoleIDs struct {
	Roles []types.ID `json:"roles" binding:"required"`
}

// Grants is what a user is entitled to: the slugs of its roles and the slugs of the
// permissions reachable through them.
type Grants struct {
	Roles       []string `json:"roles"`
	Permissions []string `json:"perms"`
}

// Models lists the tables owned by this package, for migration.
func Models() []interface{} {
	return []interface{}{&Permission{}, &Role{}, &RolePermissionBinding{}, &UserRoleBinding{}}
}
