package member

import (
	"net/http"

	"orghub/authority"
	"orghub/bizerror"
	"orghub/guard"
	"orghub/misc"
	"orghub/session"

	"github.com/gin-gonic/gin"
)

var (
	PathMembers       = "/members"
	PathPublicMembers = "/public/members"

	Policy = guard.Policy{
		{Actions: []string{"store"}, Permissions: []string{authority.PermCreateMembers}},
		{Actions: []string{"update"}, Permissions: []string{authority.PermUpdateMembers}},
		{Actions: []string{"destroy"}, Permissions: []string{authority.PermDeleteMembers}},
	}
)

func RegisterMembersRestAPI(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	g := r.Group(PathMembers, middleWares...)
	g.GET("", Policy.Guard("index"), handleQueryMembers)
	g.POST("", Policy.Guard("store"), handleCreateMember)
	g.GET("/:id", Policy.Guard("show"), handleDetailMember)
	g.PUT("/:id", Policy.Guard("update"), handleUpdateMember)
	g.PATCH("/:id", Policy.Guard("update"), handleUpdateMember)
	g.DELETE("/:id", Policy.Guard("destroy"), handleDeleteMember)
}

func RegisterPublicMembersRestAPI(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	r.GET(PathPublicMembers, append(middleWares, handleQueryMembers)...)
}

func handleQueryMembers(c *gin.Context) {
	members, err := QueryMembersFunc(session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	misc.Success(c, http.StatusOK, "Members retrieved successfully", members)
}

func handleCreateMember(c *gin.Context) {
	in := MemberCreation{}
	bizerror.MustBindJSON(c, &in)
	m, err := CreateMemberFunc(in, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	misc.Success(c, http.StatusCreated, "Member created successfully", m)
}

func handleDetailMember(c *gin.Context) {
	m, err := DetailMemberFunc(bizerror.ParamID(c, "id"), session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	misc.Success(c, http.StatusOK, "Member retrieved successfully", m)
}

func handleUpdateMember(c *gin.Context) {
	id := bizerror.ParamID(c, "id")
	in := MemberPatch{}
	bizerror.MustBindJSON(c, &in)
	m, err := UpdateMemberFunc(id, in, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	misc.Success(c, http.StatusOK, "Member updated successfully", m)
}

func handleDeleteMember(c *gin.Context) {
	if err := DeleteMemberFunc(bizerror.ParamID(c, "id"), session.ExtractSessionFromGinContext(c)); err != nil {
		panic(err)
	}
	misc.Success(c, http.StatusOK, "Member deleted successfully", nil)
}
