package authority_test

import (
	"context"
	"testing"

	"orghub/authority"
	"orghub/persistence"
	"orghub/session"
	"orghub/testinfra"

	"github.com/fundwit/go-commons/types"
	. "github.com/onsi/gomega"
)

func setup(t *testing.T, testDatabase **testinfra.TestDatabase) {
	db := testinfra.StartTestDatabase("orghub_authority")
	*testDatabase = db
	Expect(db.DS.GormDB(context.TODO()).AutoMigrate(authority.Models()...).Error).To(BeNil())

	persistence.ActiveDataSourceManager = db.DS
}

func teardown(t *testing.T, testDatabase *testinfra.TestDatabase) {
	if testDatabase != nil {
		testinfra.StopTestDatabase(testDatabase)
	}
}

var adminSession = &session.Session{Token: "t", Identity: session.Identity{ID: 1, Name: "admin"}, Context: context.TODO()}

func createPermission(name string) *authority.Permission {
	p, err := authority.CreatePermission(authority.PermissionInput{Name: name, Module: "test"}, adminSession)
	Expect(err).To(BeNil())
	return p
}

func createRole(name string, perms ...types.ID) *authority.RoleDetail {
	r, err := authority.CreateRole(authority.RoleInput{Name: name, Permissions: &perms}, adminSession)
	Expect(err).To(BeNil())
	return r
}

func permissionSlugs(perms []authority.Permission) []string {
	slugs := []string{}
	for _, p := range perms {
		slugs = append(slugs, p.Slug)
	}
	return slugs
}

func countRows(model interface{}, where string, args ...interface{}) int {
	var count int
	Expect(persistence.ActiveDataSourceManager.GormDB(context.TODO()).Model(model).Where(where, args...).
		Count(&count).Error).To(BeNil())
	return count
}
