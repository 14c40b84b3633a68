package news

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
	PathNews       = "/news"
	PathPublicNews = "/public/news"

	Policy = guard.Policy{
		{Actions: []string{"store"}, Permissions: []string{authority.PermCreateNews}},
		{Actions: []string{"update"}, Permissions: []string{authority.PermUpdateNews}},
		{Actions: []string{"destroy"}, Permissions: []string{authority.PermDeleteNews}},
	}
)

func RegisterNewsRestAPI(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	g := r.Group(PathNews, middleWares...)
	g.GET("", Policy.Guard("index"), handleQueryNews)
	g.POST("", Policy.Guard("store"), handleCreateNews)
	g.GET("/:id", Policy.Guard("show"), handleDetailNews)
	g.PUT("/:id", Policy.Guard("update"), handleUpdateNews)
	g.PATCH("/:id", Policy.Guard("update"), handleUpdateNews)
	g.DELETE("/:id", Policy.Guard("destroy"), handleDeleteNews)
}

func RegisterPublicNewsRestAPI(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	r.GET(PathPublicNews, append(middleWares, handleQueryNews)...)
}

func handleQueryNews(c *gin.Context) {
	news, err := QueryNewsFunc(session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	misc.Success(c, http.StatusOK, "News retrieved successfully", news)
}

func handleCreateNews(c *gin.Context) {
	in := NewsCreation{}
	bizerror.MustBindJSON(c, &in)
	n, err := CreateNewsFunc(in, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	misc.Success(c, http.StatusCreated, "News created successfully", n)
}

func handleDetailNews(c *gin.Context) {
	n, err := DetailNewsFunc(bizerror.ParamID(c, "id"), session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	misc.Success(c, http.StatusOK, "News retrieved successfully", n)
}

func handleUpdateNews(c *gin.Context) {
	id := bizerror.ParamID(c, "id")
	in := NewsPatch{}
	bizerror.MustBindJSON(c, &in)
	n, err := UpdateNewsFunc(id, in, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	misc.Success(c, http.StatusOK, "News updated successfully", n)
}

func handleDeleteNews(c *gin.Context) {
	if err := DeleteNewsFunc(bizerror.ParamID(c, "id"), session.ExtractSessionFromGinContext(c)); err != nil {
		panic(err)
	}
	misc.Success(c, http.StatusOK, "News deleted successfully", nil)
}
