package account_test

import (
	"context"

	"orghub/account"
	"orghub/authority"
	"orghub/bizerror"
	"orghub/persistence"
	"orghub/session"
	"orghub/testinfra"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("accounts", func() {
	var (
		testDatabase *testinfra.TestDatabase
		sec          *session.Session
	)
	BeforeEach(func() {
		testDatabase = testinfra.StartTestDatabase("orghub_account")
		persistence.ActiveDataSourceManager = testDatabase.DS
		models := append([]interface{}{&account.User{}}, authority.Models()...)
		Expect(testDatabase.DS.GormDB(context.TODO()).AutoMigrate(models...).Error).To(BeNil())
		sec = &session.Session{Context: context.TODO(), Token: "t", Identity: session.Identity{ID: 1}}
	})
	AfterEach(func() {
		testinfra.StopTestDatabase(testDatabase)
	})

	createRole := func(name string) *authority.RoleDetail {
		r, err := authority.CreateRole(authority.RoleInput{Name: name}, sec)
		Expect(err).To(BeNil())
		return r
	}

	Describe("CreateUser", func() {
		It("should hash the password and assign roles", func() {
			editor := createRole("editor")
			u, err := account.CreateUser(account.UserCreation{Name: "Ann", Email: "ann@example.com", Password: "secret-123",
				Roles: []types.ID{editor.ID}}, sec)
			Expect(err).To(BeNil())
			Expect(u.Email).To(Equal("ann@example.com"))
			Expect(len(u.Roles)).To(Equal(1))
			Expect(u.Roles[0].Slug).To(Equal("editor"))

			stored := account.User{}
			Expect(testDatabase.DS.GormDB(context.TODO()).Where("id = ?", u.ID).First(&stored).Error).To(BeNil())
			Expect(stored.Secret).ToNot(Equal("secret-123"))

			verified, err := account.VerifyCredentials("ann@example.com", "secret-123", sec)
			Expect(err).To(BeNil())
			Expect(verified.ID).To(Equal(u.ID))
		})

		It("should reject duplicated email", func() {
			_, err := account.CreateUser(account.UserCreation{Name: "Ann", Email: "ann@example.com", Password: "secret-123"}, sec)
			Expect(err).To(BeNil())
			_, err = account.CreateUser(account.UserCreation{Name: "Bob", Email: "ann@example.com", Password: "secret-123"}, sec)
			Expect(err).To(Equal(bizerror.NewValidationError("email", "The email has already been taken.")))
		})

		It("should reject unknown roles without creating the user", func() {
			_, err := account.CreateUser(account.UserCreation{Name: "Ann", Email: "ann@example.com", Password: "secret-123",
				Roles: []types.ID{404}}, sec)
			Expect(err).To(Equal(bizerror.NewValidationError("roles", "The selected roles is invalid.")))
			users, err := account.QueryUsers(sec)
			Expect(err).To(BeNil())
			Expect(users).To(BeEmpty())
		})
	})

	Describe("VerifyCredentials", func() {
		It("should reject unknown email and wrong password alike", func() {
			_, err := account.CreateUser(account.UserCreation{Name: "Ann", Email: "ann@example.com", Password: "secret-123"}, sec)
			Expect(err).To(BeNil())

			_, err = account.VerifyCredentials("bob@example.com", "secret-123", sec)
			Expect(err).To(Equal(bizerror.ErrUnauthenticated))
			_, err = account.VerifyCredentials("ann@example.com", "wrong-pass", sec)
			Expect(err).To(Equal(bizerror.ErrUnauthenticated))
		})
	})

	Describe("user roles", func() {
		It("should attach, sync and detach roles", func() {
			r1, r2, r3 := createRole("r1"), createRole("r2"), createRole("r3")
			u, err := account.CreateUser(account.UserCreation{Name: "Ann", Email: "ann@example.com", Password: "secret-123"}, sec)
			Expect(err).To(BeNil())

			info, err := account.SyncUserRoles(u.ID, []types.ID{r1.ID, r2.ID}, sec)
			Expect(err).To(BeNil())
			Expect(len(info.Roles)).To(Equal(2))

			info, err = account.SyncUserRoles(u.ID, []types.ID{r2.ID, r3.ID}, sec)
			Expect(err).To(BeNil())
			Expect(info.Roles[0].Slug).To(Equal("r2"))
			Expect(info.Roles[1].Slug).To(Equal("r3"))

			info, err = account.AttachUserRoles(u.ID, []types.ID{r1.ID, r2.ID}, sec)
			Expect(err).To(BeNil())
			Expect(len(info.Roles)).To(Equal(3))

			info, err = account.DetachUserRole(u.ID, r2.ID, sec)
			Expect(err).To(BeNil())
			Expect(len(info.Roles)).To(Equal(2))
			Expect(authority.HasRole(context.TODO(), u.ID, "r2")).To(BeFalse())
			Expect(authority.HasRole(context.TODO(), u.ID, "r3")).To(BeTrue())

			_, err = account.AttachUserRoles(999, []types.ID{r1.ID}, sec)
			Expect(err).To(Equal(gorm.ErrRecordNotFound))
		})

		It("should drop assignments of deleted users", func() {
			r1 := createRole("r1")
			u, err := account.CreateUser(account.UserCreation{Name: "Ann", Email: "ann@example.com", Password: "secret-123",
				Roles: []types.ID{r1.ID}}, sec)
			Expect(err).To(BeNil())

			Expect(account.DeleteUser(u.ID, sec)).To(BeNil())
			var count int
			Expect(testDatabase.DS.GormDB(context.TODO()).Model(&authority.UserRoleBinding{}).
				Where("user_id = ?", u.ID).Count(&count).Error).To(BeNil())
			Expect(count).To(BeZero())
			Expect(account.DeleteUser(u.ID, sec)).To(Equal(gorm.ErrRecordNotFound))
		})
	})

	Describe("DefaultSecurityConfiguration", func() {
		It("should seed an administrator holding every built-in permission", func() {
			Expect(account.DefaultSecurityConfiguration("admin@example.com", "password")).To(BeNil())
			Expect(account.DefaultSecurityConfiguration("admin@example.com", "changed")).To(BeNil())

			admin, err := account.VerifyCredentials("admin@example.com", "password", sec)
			Expect(err).To(BeNil())
			Expect(authority.HasRole(context.TODO(), admin.ID, authority.RoleAdmin)).To(BeTrue())
			Expect(authority.HasPermission(context.TODO(), admin.ID, authority.PermDeleteEvents)).To(BeTrue())
			Expect(authority.HasPermission(context.TODO(), admin.ID, authority.PermManageUsers)).To(BeTrue())
		})
	})
})
