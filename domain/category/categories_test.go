package category_test

import (
	"context"
	"testing"

	"orghub/activity"
	"orghub/bizerror"
	"orghub/domain/category"
	"orghub/persistence"
	"orghub/session"
	"orghub/testinfra"

	"github.com/jinzhu/gorm"
	. "github.com/onsi/gomega"
)

var editorSession = &session.Session{Token: "t", Identity: session.Identity{ID: 7, Name: "editor"}, Context: context.TODO()}

func setup(t *testing.T, testDatabase **testinfra.TestDatabase) {
	db := testinfra.StartTestDatabase("orghub_category")
	*testDatabase = db
	Expect(db.DS.GormDB(context.TODO()).AutoMigrate(&category.Category{}, &activity.Record{}).Error).To(BeNil())
	persistence.ActiveDataSourceManager = db.DS
}

func teardown(t *testing.T, testDatabase *testinfra.TestDatabase) {
	if testDatabase != nil {
		testinfra.StopTestDatabase(testDatabase)
	}
}

func TestCreateCategory(t *testing.T) {
	RegisterTestingT(t)

	t.Run("should derive slug and record activity", func(t *testing.T) {
		var testDatabase *testinfra.TestDatabase
		defer func() { teardown(t, testDatabase) }()
		setup(t, &testDatabase)

		c, err := category.CreateCategory(category.CategoryInput{Name: "Community Events", Description: "gatherings"}, editorSession)
		Expect(err).To(BeNil())
		Expect(c.ID).ToNot(BeZero())
		Expect(c.Slug).To(Equal("community-events"))

		detail, err := category.DetailCategory(c.ID, editorSession)
		Expect(err).To(BeNil())
		Expect(detail.Name).To(Equal("Community Events"))
		Expect(detail.Description).To(Equal("gatherings"))

		records, err := activity.QueryActivities(category.SourceType, c.ID, editorSession)
		Expect(err).To(BeNil())
		Expect(len(records)).To(Equal(1))
		Expect(records[0].Category).To(Equal(activity.Category(activity.CategoryCreated)))
		Expect(records[0].ActorName).To(Equal("editor"))
	})

	t.Run("should reject duplicated names", func(t *testing.T) {
		var testDatabase *testinfra.TestDatabase
		defer func() { teardown(t, testDatabase) }()
		setup(t, &testDatabase)

		_, err := category.CreateCategory(category.CategoryInput{Name: "Sports"}, editorSession)
		Expect(err).To(BeNil())
		_, err = category.CreateCategory(category.CategoryInput{Name: "sports"}, editorSession)
		Expect(err).To(Equal(bizerror.NewValidationError("name", "The name has already been taken.")))

		categories, err := category.QueryCategories(editorSession)
		Expect(err).To(BeNil())
		Expect(len(categories)).To(Equal(1))
	})
}

func TestUpdateCategory(t *testing.T) {
	RegisterTestingT(t)

	t.Run("should update name and slug while ignoring itself in uniqueness check", func(t *testing.T) {
		var testDatabase *testinfra.TestDatabase
		defer func() { teardown(t, testDatabase) }()
		setup(t, &testDatabase)

		c, err := category.CreateCategory(category.CategoryInput{Name: "Sports"}, editorSession)
		Expect(err).To(BeNil())
		other, err := category.CreateCategory(category.CategoryInput{Name: "Culture"}, editorSession)
		Expect(err).To(BeNil())

		updated, err := category.UpdateCategory(c.ID, category.CategoryInput{Name: "Sports", Description: "d"}, editorSession)
		Expect(err).To(BeNil())
		Expect(updated.Description).To(Equal("d"))

		updated, err = category.UpdateCategory(c.ID, category.CategoryInput{Name: "Outdoor Sports"}, editorSession)
		Expect(err).To(BeNil())
		Expect(updated.Slug).To(Equal("outdoor-sports"))
		Expect(updated.Description).To(BeEmpty())

		_, err = category.UpdateCategory(other.ID, category.CategoryInput{Name: "Outdoor Sports"}, editorSession)
		Expect(err).To(Equal(bizerror.NewValidationError("name", "The name has already been taken.")))
	})

	t.Run("should return not found for unknown category", func(t *testing.T) {
		var testDatabase *testinfra.TestDatabase
		defer func() { teardown(t, testDatabase) }()
		setup(t, &testDatabase)

		_, err := category.UpdateCategory(404, category.CategoryInput{Name: "x"}, editorSession)
		Expect(err).To(Equal(gorm.ErrRecordNotFound))
	})
}

func TestDeleteCategory(t *testing.T) {
	RegisterTestingT(t)
	defer func() { category.DeleteHooks = nil }()

	t.Run("should run hooks within the transaction and delete", func(t *testing.T) {
		var testDatabase *testinfra.TestDatabase
		defer func() { teardown(t, testDatabase) }()
		setup(t, &testDatabase)

		c, err := category.CreateCategory(category.CategoryInput{Name: "Sports"}, editorSession)
		Expect(err).To(BeNil())

		var hooked []string
		category.DeleteHooks = []func(c category.Category, tx *gorm.DB) error{
			func(c category.Category, tx *gorm.DB) error {
				hooked = append(hooked, c.Name)
				return nil
			},
		}
		Expect(category.DeleteCategory(c.ID, editorSession)).To(BeNil())
		Expect(hooked).To(Equal([]string{"Sports"}))

		_, err = category.DetailCategory(c.ID, editorSession)
		Expect(err).To(Equal(gorm.ErrRecordNotFound))

		exists, err := category.Exists(persistence.ActiveDataSourceManager.GormDB(context.TODO()), c.ID)
		Expect(err).To(BeNil())
		Expect(exists).To(BeFalse())
	})

	t.Run("should roll back when a hook fails", func(t *testing.T) {
		var testDatabase *testinfra.TestDatabase
		defer func() { teardown(t, testDatabase) }()
		setup(t, &testDatabase)

		c, err := category.CreateCategory(category.CategoryInput{Name: "Sports"}, editorSession)
		Expect(err).To(BeNil())

		category.DeleteHooks = []func(c category.Category, tx *gorm.DB) error{
			func(c category.Category, tx *gorm.DB) error { return gorm.ErrInvalidTransaction },
		}
		Expect(category.DeleteCategory(c.ID, editorSession)).To(Equal(gorm.ErrInvalidTransaction))

		exists, err := category.Exists(persistence.ActiveDataSourceManager.GormDB(context.TODO()), c.ID)
		Expect(err).To(BeNil())
		Expect(exists).To(BeTrue())
	})
}
