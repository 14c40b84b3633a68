package account_test

import (
	"net/http"
	"net/http/httptest"
	"strings"

	"orghub/account"
	"orghub/authority"
	"orghub/bizerror"
	"orghub/session"
	"orghub/testinfra"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("UsersRestAPI", func() {
	var (
		router *gin.Engine
	)
	BeforeEach(func() {
		router = gin.Default()
		router.Use(bizerror.ErrorHandling())
		account.RegisterUsersRestAPI(router)
	})
	AfterEach(func() {
		account.CreateUserFunc = account.CreateUser
		account.SyncUserRolesFunc = account.SyncUserRoles
		account.DetachUserRoleFunc = account.DetachUserRole
	})

	It("should validate user creation", func() {
		req := httptest.NewRequest(http.MethodPost, account.PathUsers, strings.NewReader(`{"name":"Ann","email":"nope","password":"short"}`))
		status, body, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusUnprocessableEntity))
		Expect(body).To(MatchJSON(`{"status":"error","code":"common.validation_failed","message":"Validation failed","data":null,
			"errors":{"email":"The email must be a valid email address.","password":"The password must be at least 8 characters."}}`))
	})

	It("should create user without leaking the secret", func() {
		account.CreateUserFunc = func(c account.UserCreation, s *session.Session) (*account.UserInfo, error) {
			return &account.UserInfo{ID: 9, Name: c.Name, Email: c.Email, Roles: []authority.Role{}}, nil
		}
		req := httptest.NewRequest(http.MethodPost, account.PathUsers,
			strings.NewReader(`{"name":"Ann","email":"ann@example.com","password":"secret-123"}`))
		status, body, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusCreated))
		Expect(body).To(MatchJSON(`{"status":"success","message":"User created successfully",
			"data":{"id":"9","name":"Ann","email":"ann@example.com","roles":[]}}`))
	})

	It("should sync and detach roles", func() {
		var synced []types.ID
		account.SyncUserRolesFunc = func(id types.ID, roleIDs []types.ID, s *session.Session) (*account.UserInfo, error) {
			synced = roleIDs
			return &account.UserInfo{ID: id, Roles: []authority.Role{}}, nil
		}
		var detached types.ID
		account.DetachUserRoleFunc = func(id, roleID types.ID, s *session.Session) (*account.UserInfo, error) {
			detached = roleID
			return &account.UserInfo{ID: id, Roles: []authority.Role{}}, nil
		}

		req := httptest.NewRequest(http.MethodPut, account.PathUsers+"/9/roles", strings.NewReader(`{"roles":["2","3"]}`))
		status, _, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusOK))
		Expect(synced).To(Equal([]types.ID{2, 3}))

		req = httptest.NewRequest(http.MethodDelete, account.PathUsers+"/9/roles/3", nil)
		status, _, _ = testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusOK))
		Expect(detached).To(Equal(types.ID(3)))

		req = httptest.NewRequest(http.MethodDelete, account.PathUsers+"/9/roles/x", nil)
		status, body, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusBadRequest))
		Expect(body).To(ContainSubstring(`invalid id 'x'`))
	})
})
