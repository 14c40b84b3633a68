package category

import (
	"time"

	"orghub/activity"
	"orghub/bizerror"
	"orghub/common"
	"orghub/idgen"
	"orghub/persistence"
	"orghub/session"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
)

const SourceType = "CATEGORY"

type Category struct {
	ID          types.ID `json:"id"`
	Name        string   `json:"name" gorm:"not null;unique_index:uni_category_name"`
	Slug        string   `json:"slug" gorm:"not null;unique_index:uni_category_slug"`
	Description string   `json:"description"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type CategoryInput struct {
	Name        string `json:"name" binding:"required,lte=255"`
	Description string `json:"description"`
}

var (
	idWorker = idgen.NewWorker()

	// DeleteHooks run inside the deleting transaction, e.g. to detach records referencing the category.
	DeleteHooks []func(c Category, tx *gorm.DB) error

	QueryCategoriesFunc = QueryCategories
	DetailCategoryFunc  = DetailCategory
	CreateCategoryFunc  = CreateCategory
	UpdateCategoryFunc  = UpdateCategory
	DeleteCategoryFunc  = DeleteCategory
)

func QueryCategories(s *session.Session) ([]Category, error) {
	categories := []Category{}
	if err := persistence.ActiveDataSourceManager.GormDB(s.TraceContext()).Order("name ASC").
		Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

func DetailCategory(id types.ID, s *session.Session) (*Category, error) {
	c := Category{}
	if err := persistence.ActiveDataSourceManager.GormDB(s.TraceContext()).Where("id = ?", id).First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func CreateCategory(in CategoryInput, s *session.Session) (*Category, error) {
	c := Category{ID: idgen.NextID(idWorker), Name: in.Name, Slug: common.Slugify(in.Name), Description: in.Description}
	var record *activity.Record
	err := persistence.ActiveDataSourceManager.GormDB(s.TraceContext()).Transaction(func(tx *gorm.DB) error {
		if err := checkUnique(tx, c.Name, c.Slug, 0); err != nil {
			return err
		}
		if err := tx.Create(&c).Error; err != nil {
			return err
		}
		r, err := activity.Create(SourceType, c.ID, c.Name, activity.CategoryCreated, s, tx)
		record = r
		return err
	})
	if err != nil {
		return nil, err
	}
	activity.Dispatch(record)
	return &c, nil
}

func UpdateCategory(id types.ID, in CategoryInput, s *session.Session) (*Category, error) {
	c := Category{}
	var record *activity.Record
	err := persistence.ActiveDataSourceManager.GormDB(s.TraceContext()).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(&c).Error; err != nil {
			return err
		}
		slug := common.Slugify(in.Name)
		if err := checkUnique(tx, in.Name, slug, id); err != nil {
			return err
		}
		changes := map[string]interface{}{"name": in.Name, "slug": slug, "description": in.Description}
		if err := tx.Model(&c).Updates(changes).Error; err != nil {
			return err
		}
		if err := tx.Where("id = ?", id).First(&c).Error; err != nil {
			return err
		}
		r, err := activity.Create(SourceType, c.ID, c.Name, activity.CategoryUpdated, s, tx)
		record = r
		return err
	})
	if err != nil {
		return nil, err
	}
	activity.Dispatch(record)
	return &c, nil
}

func DeleteCategory(id types.ID, s *session.Session) error {
	var record *activity.Record
	err := persistence.ActiveDataSourceManager.GormDB(s.TraceContext()).Transaction(func(tx *gorm.DB) error {
		c := Category{}
		if err := tx.Where("id = ?", id).First(&c).Error; err != nil {
			return err
		}
		for _, hook := range DeleteHooks {
			if err := hook(c, tx); err != nil {
				return err
			}
		}
		if err := tx.Delete(&Category{}, "id = ?", id).Error; err != nil {
			return err
		}
		r, err := activity.Create(SourceType, c.ID, c.Name, activity.CategoryDeleted, s, tx)
		record = r
		return err
	})
	if err != nil {
		return err
	}
	activity.Dispatch(record)
	return nil
}

// Exists reports whether the category is present, tx lets callers check inside their own transaction.
func Exists(tx *gorm.DB, id types.ID) (bool, error) {
	var count int
	if err := tx.Model(&Category{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func checkUnique(tx *gorm.DB, name, slug string, self types.ID) error {
	if slug == "" {
		return bizerror.NewValidationError("name", "The name must contain at least one letter or digit.")
	}
	var count int
	if err := tx.Model(&Category{}).Where("(name = ? OR slug = ?) AND id <> ?", name, slug, self).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return bizerror.NewValidationError("name", "The name has already been taken.")
	}
	return nil
}
