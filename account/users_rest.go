package account

import (
	"net/http"

	"orghub/authority"
	"orghub/bizerror"
	"orghub/misc"
	"orghub/session"

	"github.com/gin-gonic/gin"
)

var (
	PathUsers = "/users"
)

func RegisterUsersRestAPI(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	g := r.Group(PathUsers, middleWares...)
	g.GET("", handleQueryUsers)
	g.POST("", handleCreateUser)
	g.DELETE("/:id", handleDeleteUser)
	g.PUT("/:id/roles", handleSyncUserRoles)
	g.POST("/:id/roles", handleAttachUserRoles)
	g.DELETE("/:id/roles/:roleId", handleDetachUserRole)
}

func handleQueryUsers(c *gin.Context) {
	users, err := QueryUsersFunc(session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	misc.Success(c, http.StatusOK, "Users retrieved successfully", users)
}

func handleCreateUser(c *gin.Context) {
	creation := UserCreation{}
	bizerror.MustBindJSON(c, &creation)
	user, err := CreateUserFunc(creation, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	misc.Success(c, http.StatusCreated, "User created successfully", user)
}

func handleDeleteUser(c *gin.Context) {
	id := bizerror.ParamID(c, "id")
	if err := DeleteUserFunc(id, session.ExtractSessionFromGinContext(c)); err != nil {
		panic(err)
	}
	misc.Success(c, http.StatusOK, "User deleted successfully", nil)
}

func handleSyncUserRoles(c *gin.Context) {
	id := bizerror.ParamID(c, "id")
	in := authority.RoleIDs{}
	bizerror.MustBindJSON(c, &in)
	user, err := SyncUserRolesFunc(id, in.Roles, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	misc.Success(c, http.StatusOK, "Roles synchronized successfully", user)
}

func handleAttachUserRoles(c *gin.Context) {
	id := bizerror.ParamID(c, "id")
	in := authority.RoleIDs{}
	bizerror.MustBindJSON(c, &in)
	user, err := AttachUserRolesFunc(id, in.Roles, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	misc.Success(c, http.StatusOK, "Roles attached successfully", user)
}

func handleDetachUserRole(c *gin.Context) {
	id := bizerror.ParamID(c, "id")
	roleID := bizerror.ParamID(c, "roleId")
	user, err := DetachUserRoleFunc(id, roleID, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	misc.Success(c, http.StatusOK, "Role detached successfully", user)
}
