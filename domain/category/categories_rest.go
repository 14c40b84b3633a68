package category

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
	PathCategories = "/categories"

	Policy = guard.Policy{
		{Actions: []string{"index", "show"}, Permissions: []string{authority.PermReadCategories}},
		{Actions: []string{"store"}, Permissions: []string{authority.PermCreateCategories}},
		{Actions: []string{"update"}, Permissions: []string{authority.PermUpdateCategories}},
		{Actions: []string{"destroy"}, Permissions: []string{authority.PermDeleteCategories}},
	}
)

func RegisterCategoriesRestAPI(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	g := r.Group(PathCategories, middleWares...)
	g.GET("", Policy.Guard("index"), handleQueryCategories)
	g.POST("", Policy.Guard("store"), handleCreateCategory)
	g.GET("/:id", Policy.Guard("show"), handleDetailCategory)
	g.PUT("/:id", Policy.Guard("update"), handleUpdateCategory)
	g.DELETE("/:id", Policy.Guard("destroy"), handleDeleteCategory)
}

func handleQueryCategories(c *gin.Context) {
	categories, err := QueryCategoriesFunc(session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	misc.Success(c, http.StatusOK, "Categories retrieved successfully", categories)
}

func handleCreateCategory(c *gin.Context) {
	in := CategoryInput{}
	bizerror.MustBindJSON(c, &in)
	category, err := CreateCategoryFunc(in, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	misc.Success(c, http.StatusCreated, "Category created successfully", category)
}

func handleDetailCategory(c *gin.Context) {
	category, err := DetailCategoryFunc(bizerror.ParamID(c, "id"), session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	misc.Success(c, http.StatusOK, "Category retrieved successfully", category)
}

func handleUpdateCategory(c *gin.Context) {
	id := bizerror.ParamID(c, "id")
	in := CategoryInput{}
	bizerror.MustBindJSON(c, &in)
	category, err := UpdateCategoryFunc(id, in, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	misc.Success(c, http.StatusOK, "Category updated successfully", category)
}

func handleDeleteCategory(c *gin.Context) {
	if err := DeleteCategoryFunc(bizerror.ParamID(c, "id"), session.ExtractSessionFromGinContext(c)); err != nil {
		panic(err)
	}
	misc.Success(c, http.StatusOK, "Category deleted successfully", nil)
}
