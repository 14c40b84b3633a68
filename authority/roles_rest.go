package authority

import (
	"net/http"

	"orghub/bizerror"
	"orghub/misc"
	"orghub/session"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
)

var (
	PathRoles = "/roles"
)

func RegisterRolesRestAPI(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	g := r.Group(PathRoles, middleWares...)
	g.GET("", handleQueryRoles)
	g.POST("", handleCreateRole)
	g.GET("/:id", handleDetailRole)
	g.PUT("/:id", handleUpdateRole)
	g.DELETE("/:id", handleDeleteRole)

	g.POST("/:id/permissions", handleAttachPermissions)
	g.PUT("/:id/permissions", handleSyncPermissions)
	g.DELETE("/:id/permissions", handleDetachPermissions)
}

func handleQueryRoles(c *gin.Context) {
	roles, err := QueryRolesFunc(session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	misc.Success(c, http.StatusOK, "Roles retrieved successfully", roles)
}

func handleCreateRole(c *gin.Context) {
	in := RoleInput{}
	bizerror.MustBindJSON(c, &in)
	r, err := CreateRoleFunc(in, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	misc.Success(c, http.StatusCreated, "Role created successfully", r)
}

func handleDetailRole(c *gin.Context) {
	id := bizerror.ParamID(c, "id")
	r, err := DetailRoleFunc(id, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	misc.Success(c, http.StatusOK, "Role retrieved successfully", r)
}

func handleUpdateRole(c *gin.Context) {
	id := bizerror.ParamID(c, "id")
	in := RoleInput{}
	bizerror.MustBindJSON(c, &in)
	r, err := UpdateRoleFunc(id, in, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	misc.Success(c, http.StatusOK, "Role updated successfully", r)
}

func handleDeleteRole(c *gin.Context) {
	id := bizerror.ParamID(c, "id")
	if err := DeleteRoleFunc(id, session.ExtractSessionFromGinContext(c)); err != nil {
		panic(err)
	}
	misc.Success(c, http.StatusOK, "Role deleted successfully", nil)
}

func handleAttachPermissions(c *gin.Context) {
	id := bizerror.ParamID(c, "id")
	in := PermissionIDs{}
	bizerror.MustBindJSON(c, &in)
	r, err := AttachPermissionsFunc(id, in.Permissions, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	misc.Success(c, http.StatusOK, "Permissions attached successfully", r)
}

func handleSyncPermissions(c *gin.Context) {
	id := bizerror.ParamID(c, "id")
	in := struct {
		Permissions []types.ID `json:"permissions"`
	}{}
	bizerror.MustBindJSON(c, &in)
	r, err := SyncPermissionsFunc(id, in.Permissions, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	misc.Success(c, http.StatusOK, "Permissions synchronized successfully", r)
}

func handleDetachPermissions(c *gin.Context) {
	id := bizerror.ParamID(c, "id")
	in := PermissionIDs{}
	bizerror.MustBindJSON(c, &in)
	r, err := DetachPermissionsFunc(id, in.Permissions, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	misc.Success(c, http.StatusOK, "Permissions detached successfully", r)
}
