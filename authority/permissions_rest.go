package authority

import (
	"net/http"

	"orghub/bizerror"
	"orghub/misc"
	"orghub/session"

	"github.com/gin-gonic/gin"
)

var (
	PathPermissions = "/permissions"
)

// RegisterPermissionsRestAPI exposes permission management, middleWares carry authentication and the guard.
func RegisterPermissionsRestAPI(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	g := r.Group(PathPermissions, middleWares...)
	g.GET("", handleQueryPermissions)
	g.POST("", handleCreatePermission)
	g.GET("/:id", handleDetailPermission)
	g.PUT("/:id", handleUpdatePermission)
	g.DELETE("/:id", handleDeletePermission)
}

func handleQueryPermissions(c *gin.Context) {
	perms, err := QueryPermissionsFunc(session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	misc.Success(c, http.StatusOK, "Permissions retrieved successfully", perms)
}

func handleCreatePermission(c *gin.Context) {
	in := PermissionInput{}
	bizerror.MustBindJSON(c, &in)
	p, err := CreatePermissionFunc(in, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	misc.Success(c, http.StatusCreated, "Permission created successfully", p)
}

func handleDetailPermission(c *gin.Context) {
	id := bizerror.ParamID(c, "id")
	p, err := DetailPermissionFunc(id, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	misc.Success(c, http.StatusOK, "Permission retrieved successfully", p)
}

func handleUpdatePermission(c *gin.Context) {
	id := bizerror.ParamID(c, "id")
	in := PermissionInput{}
	bizerror.MustBindJSON(c, &in)
	p, err := UpdatePermissionFunc(id, in, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	misc.Success(c, http.StatusOK, "Permission updated successfully", p)
}

func handleDeletePermission(c *gin.Context) {
	id := bizerror.ParamID(c, "id")
	if err := DeletePermissionFunc(id, session.ExtractSessionFromGinContext(c)); err != nil {
		panic(err)
	}
	misc.Success(c, http.StatusOK, "Permission deleted successfully", nil)
}
