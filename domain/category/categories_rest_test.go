package category_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"orghub/authority"
	"orghub/bizerror"
	"orghub/domain/category"
	"orghub/persistence"
	"orghub/session"
	"orghub/testinfra"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
	"github.com/jinzhu/gorm"
	. "github.com/onsi/gomega"
)

func categoriesRouter(perms ...string) *gin.Engine {
	persistence.ActiveDataSourceManager = &persistence.DataSourceManager{}
	authority.LoadGrantsFunc = func(db *gorm.DB, uid types.ID) (*authority.Grants, error) {
		return &authority.Grants{Roles: []string{}, Permissions: perms}, nil
	}
	router := gin.New()
	router.Use(bizerror.ErrorHandling())
	router.Use(func(c *gin.Context) {
		session.InjectSessionIntoGinContext(c, &session.Session{Token: "t", Identity: session.Identity{ID: 7, Name: "editor"}})
	})
	category.RegisterCategoriesRestAPI(router)
	return router
}

func restore() {
	authority.LoadGrantsFunc = authority.LoadGrants
	persistence.ActiveDataSourceManager = nil
	category.QueryCategoriesFunc = category.QueryCategories
	category.CreateCategoryFunc = category.CreateCategory
	category.UpdateCategoryFunc = category.UpdateCategory
	category.DeleteCategoryFunc = category.DeleteCategory
}

func TestCategoriesGuard(t *testing.T) {
	RegisterTestingT(t)
	defer restore()

	t.Run("should deny callers lacking the action permission", func(t *testing.T) {
		called := false
		category.CreateCategoryFunc = func(in category.CategoryInput, s *session.Session) (*category.Category, error) {
			called = true
			return &category.Category{}, nil
		}
		router := categoriesRouter(authority.PermReadCategories)
		req := httptest.NewRequest(http.MethodPost, category.PathCategories, strings.NewReader(`{"name":"Sports"}`))
		status, body, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusForbidden))
		Expect(body).To(MatchJSON(`{"status":"error","code":"security.forbidden","message":"Unauthorized","data":null}`))
		Expect(called).To(BeFalse())
	})

	t.Run("should allow listing with read permission", func(t *testing.T) {
		category.QueryCategoriesFunc = func(s *session.Session) ([]category.Category, error) {
			return []category.Category{{ID: 1, Name: "Sports", Slug: "sports"}}, nil
		}
		router := categoriesRouter(authority.PermReadCategories)
		req := httptest.NewRequest(http.MethodGet, category.PathCategories, nil)
		status, body, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusOK))
		Expect(body).To(ContainSubstring(`"message":"Categories retrieved successfully"`))
		Expect(body).To(ContainSubstring(`"slug":"sports"`))
	})
}

func TestCreateCategoryAPI(t *testing.T) {
	RegisterTestingT(t)
	defer restore()

	t.Run("should validate parameters", func(t *testing.T) {
		router := categoriesRouter(authority.PermCreateCategories)
		req := httptest.NewRequest(http.MethodPost, category.PathCategories, strings.NewReader(`{"name":"`+strings.Repeat("a", 256)+`"}`))
		status, body, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusUnprocessableEntity))
		Expect(body).To(MatchJSON(`{"status":"error","code":"common.validation_failed","message":"Validation failed",
			"data":null,"errors":{"name":"The name may not be greater than 255 characters."}}`))
	})

	t.Run("should create category", func(t *testing.T) {
		category.CreateCategoryFunc = func(in category.CategoryInput, s *session.Session) (*category.Category, error) {
			return &category.Category{ID: 10, Name: in.Name, Slug: "sports", Description: in.Description}, nil
		}
		router := categoriesRouter(authority.PermCreateCategories)
		req := httptest.NewRequest(http.MethodPost, category.PathCategories, strings.NewReader(`{"name":"Sports","description":"d"}`))
		status, body, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusCreated))
		Expect(body).To(ContainSubstring(`"message":"Category created successfully"`))
		Expect(body).To(ContainSubstring(`"id":"10"`))
	})
}

func TestUpdateAndDeleteCategoryAPI(t *testing.T) {
	RegisterTestingT(t)
	defer restore()

	t.Run("should map service errors", func(t *testing.T) {
		category.UpdateCategoryFunc = func(id types.ID, in category.CategoryInput, s *session.Session) (*category.Category, error) {
			return nil, bizerror.NewValidationError("name", "The name has already been taken.")
		}
		category.DeleteCategoryFunc = func(id types.ID, s *session.Session) error {
			return errors.New("some error")
		}
		router := categoriesRouter(authority.PermUpdateCategories, authority.PermDeleteCategories)

		req := httptest.NewRequest(http.MethodPut, category.PathCategories+"/10", strings.NewReader(`{"name":"Sports"}`))
		status, body, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusUnprocessableEntity))
		Expect(body).To(MatchJSON(`{"status":"error","code":"common.validation_failed","message":"Validation failed",
			"data":null,"errors":{"name":"The name has already been taken."}}`))

		req = httptest.NewRequest(http.MethodDelete, category.PathCategories+"/10", nil)
		status, body, _ = testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusInternalServerError))
		Expect(body).To(MatchJSON(`{"status":"error","code":"common.internal_server_error","message":"internal server error","data":null}`))
	})

	t.Run("should delete category", func(t *testing.T) {
		var deleted types.ID
		category.DeleteCategoryFunc = func(id types.ID, s *session.Session) error {
			deleted = id
			return nil
		}
		router := categoriesRouter(authority.PermDeleteCategories)
		req := httptest.NewRequest(http.MethodDelete, category.PathCategories+"/10", nil)
		status, body, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusOK))
		Expect(body).To(MatchJSON(`{"status":"success","message":"Category deleted successfully","data":null}`))
		Expect(deleted).To(Equal(types.ID(10)))
	})
}
