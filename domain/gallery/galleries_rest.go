package gallery

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
	PathGalleries       = "/galleries"
	PathPublicGalleries = "/public/galleries"

	Policy = guard.Policy{
		{Actions: []string{"store"}, Permissions: []string{authority.PermCreateGalleries}},
		{Actions: []string{"update"}, Permissions: []string{authority.PermUpdateGalleries}},
		{Actions: []string{"destroy"}, Permissions: []string{authority.PermDeleteGalleries}},
	}
)

func RegisterGalleriesRestAPI(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	g := r.Group(PathGalleries, middleWares...)
	g.GET("", Policy.Guard("index"), handleQueryGalleries)
	g.POST("", Policy.Guard("store"), handleCreateGallery)
	g.GET("/:id", Policy.Guard("show"), handleDetailGallery)
	g.PUT("/:id", Policy.Guard("update"), handleUpdateGallery)
	g.PATCH("/:id", Policy.Guard("update"), handleUpdateGallery)
	g.DELETE("/:id", Policy.Guard("destroy"), handleDeleteGallery)
}

func RegisterPublicGalleriesRestAPI(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	r.GET(PathPublicGalleries, append(middleWares, handleQueryGalleries)...)
}

func handleQueryGalleries(c *gin.Context) {
	galleries, err := QueryGalleriesFunc(session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	misc.Success(c, http.StatusOK, "Galleries retrieved successfully", galleries)
}

func handleCreateGallery(c *gin.Context) {
	in := GalleryCreation{}
	bizerror.MustBindJSON(c, &in)
	g, err := CreateGalleryFunc(in, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	misc.Success(c, http.StatusCreated, "Gallery created successfully", g)
}

func handleDetailGallery(c *gin.Context) {
	g, err := DetailGalleryFunc(bizerror.ParamID(c, "id"), session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	misc.Success(c, http.StatusOK, "Gallery retrieved successfully", g)
}

func handleUpdateGallery(c *gin.Context) {
	id := bizerror.ParamID(c, "id")
	in := GalleryPatch{}
	bizerror.MustBindJSON(c, &in)
	g, err := UpdateGalleryFunc(id, in, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	misc.Success(c, http.StatusOK, "Gallery updated successfully", g)
}

func handleDeleteGallery(c *gin.Context) {
	if err := DeleteGalleryFunc(bizerror.ParamID(c, "id"), session.ExtractSessionFromGinContext(c)); err != nil {
		panic(err)
	}
	misc.Success(c, http.StatusOK, "Gallery deleted successfully", nil)
}
