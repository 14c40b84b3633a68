package guard_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"orghub/authority"
	"orghub/bizerror"
	"orghub/guard"
	"orghub/persistence"
	"orghub/session"
	"orghub/testinfra"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
	"github.com/jinzhu/gorm"
	. "github.com/onsi/gomega"
)

const denied = `{"status":"error","code":"security.forbidden","message":"Unauthorized","data":null}`

var eventsPolicy = guard.Policy{
	{Actions: []string{"index", "show"}, Permissions: []string{"view-events"}},
	{Actions: []string{"store"}, Permissions: []string{"create-events"}},
	{Actions: []string{"store", "update"}, Permissions: []string{"update-events"}},
	{Actions: []string{"destroy"}, Roles: []string{"admin"}},
}

func newRouter(identity *session.Identity, handled *int) *gin.Engine {
	router := gin.New()
	router.Use(bizerror.ErrorHandling())
	router.Use(func(c *gin.Context) {
		if identity != nil {
			session.InjectSessionIntoGinContext(c, &session.Session{Token: "token", Identity: *identity})
		}
		c.Next()
	})
	ok := func(c *gin.Context) {
		*handled++
		c.Status(http.StatusOK)
	}
	router.GET("/events", eventsPolicy.Guard("index"), ok)
	router.POST("/events", eventsPolicy.Guard("store"), ok)
	router.PUT("/events/1", eventsPolicy.Guard("update"), ok)
	router.DELETE("/events/1", eventsPolicy.Guard("destroy"), ok)
	router.GET("/dashboard", guard.Authenticated(), ok)
	router.GET("/roles", guard.RequirePermissions("manage-roles"), ok)
	return router
}

func stubGrants(grants *authority.Grants, err error, loads *int) {
	authority.LoadGrantsFunc = func(db *gorm.DB, uid types.ID) (*authority.Grants, error) {
		*loads++
		return grants, err
	}
}

func TestGuard(t *testing.T) {
	RegisterTestingT(t)
	persistence.ActiveDataSourceManager = &persistence.DataSourceManager{}
	defer func() {
		authority.LoadGrantsFunc = authority.LoadGrants
		persistence.ActiveDataSourceManager = nil
	}()

	t.Run("anonymous callers are denied before any lookup", func(t *testing.T) {
		handled, loads := 0, 0
		stubGrants(&authority.Grants{}, nil, &loads)
		router := newRouter(nil, &handled)
		for _, r := range []struct{ method, path string }{
			{http.MethodGet, "/events"}, {http.MethodPost, "/events"}, {http.MethodGet, "/dashboard"}, {http.MethodGet, "/roles"},
		} {
			status, body, _ := testinfra.ExecuteRequest(httptest.NewRequest(r.method, r.path, nil), router)
			Expect(status).To(Equal(http.StatusForbidden))
			Expect(body).To(MatchJSON(denied))
		}
		Expect(handled).To(BeZero())
		Expect(loads).To(BeZero())
	})

	t.Run("requirements of all rules naming an action are combined", func(t *testing.T) {
		handled, loads := 0, 0
		stubGrants(&authority.Grants{Roles: []string{"editor"}, Permissions: []string{"create-events"}}, nil, &loads)
		router := newRouter(&session.Identity{ID: 10}, &handled)

		status, body, _ := testinfra.ExecuteRequest(httptest.NewRequest(http.MethodPost, "/events", nil), router)
		Expect(status).To(Equal(http.StatusForbidden))
		Expect(body).To(MatchJSON(denied))
		Expect(handled).To(BeZero())
		Expect(loads).To(Equal(1))

		stubGrants(&authority.Grants{Permissions: []string{"create-events", "update-events"}}, nil, &loads)
		status, _, _ = testinfra.ExecuteRequest(httptest.NewRequest(http.MethodPost, "/events", nil), router)
		Expect(status).To(Equal(http.StatusOK))
		Expect(handled).To(Equal(1))
		Expect(loads).To(Equal(2))
	})

	t.Run("denials look the same whatever is missing", func(t *testing.T) {
		handled, loads := 0, 0
		stubGrants(&authority.Grants{Roles: []string{"editor"}, Permissions: []string{"view-events"}}, nil, &loads)
		router := newRouter(&session.Identity{ID: 10}, &handled)

		status, body, _ := testinfra.ExecuteRequest(httptest.NewRequest(http.MethodPut, "/events/1", nil), router)
		Expect(status).To(Equal(http.StatusForbidden))
		Expect(body).To(MatchJSON(denied))

		status, body2, _ := testinfra.ExecuteRequest(httptest.NewRequest(http.MethodDelete, "/events/1", nil), router)
		Expect(status).To(Equal(http.StatusForbidden))
		Expect(body2).To(Equal(body))

		status, _, _ = testinfra.ExecuteRequest(httptest.NewRequest(http.MethodGet, "/events", nil), router)
		Expect(status).To(Equal(http.StatusOK))
		Expect(handled).To(Equal(1))
	})

	t.Run("role requirements match role slugs", func(t *testing.T) {
		handled, loads := 0, 0
		stubGrants(&authority.Grants{Roles: []string{"admin"}}, nil, &loads)
		router := newRouter(&session.Identity{ID: 10}, &handled)
		status, _, _ := testinfra.ExecuteRequest(httptest.NewRequest(http.MethodDelete, "/events/1", nil), router)
		Expect(status).To(Equal(http.StatusOK))
	})

	t.Run("authenticated guard needs no grants", func(t *testing.T) {
		handled, loads := 0, 0
		stubGrants(nil, errors.New("store down"), &loads)
		router := newRouter(&session.Identity{ID: 10}, &handled)
		status, _, _ := testinfra.ExecuteRequest(httptest.NewRequest(http.MethodGet, "/dashboard", nil), router)
		Expect(status).To(Equal(http.StatusOK))
		Expect(loads).To(BeZero())
	})

	t.Run("store failures are internal errors", func(t *testing.T) {
		handled, loads := 0, 0
		stubGrants(nil, errors.New("store down"), &loads)
		router := newRouter(&session.Identity{ID: 10}, &handled)
		status, body, _ := testinfra.ExecuteRequest(httptest.NewRequest(http.MethodGet, "/roles", nil), router)
		Expect(status).To(Equal(http.StatusInternalServerError))
		Expect(body).To(MatchJSON(`{"status":"error","code":"common.internal_server_error","message":"internal server error","data":null}`))
		Expect(body).ToNot(ContainSubstring("store down"))
		Expect(handled).To(BeZero())
	})
}
