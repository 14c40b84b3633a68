package gallery

import (
	"time"

	"orghub/activity"
	"orghub/bizerror"
	"orghub/idgen"
	"orghub/persistence"
	"orghub/session"
	"orghub/storage"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
)

const SourceType = "GALLERY"

type Gallery struct {
	ID          types.ID `json:"id"`
	Title       string   `json:"title" gorm:"not null"`
	Description string   `json:"description" gorm:"type:text"`
	Image       string   `json:"image"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type GalleryCreation struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description" binding:"required"`
	Image       string `json:"image"`
}

type GalleryPatch struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Image       *string `json:"image"`
}

var (
	idWorker = idgen.NewWorker()

	QueryGalleriesFunc = QueryGalleries
	DetailGalleryFunc  = DetailGallery
	CreateGalleryFunc  = CreateGallery
	UpdateGalleryFunc  = UpdateGallery
	DeleteGalleryFunc  = DeleteGallery
)

func QueryGalleries(s *session.Session) ([]Gallery, error) {
	galleries := []Gallery{}
	if err := persistence.ActiveDataSourceManager.GormDB(s.TraceContext()).Order("id ASC").Find(&galleries).Error; err != nil {
		return nil, err
	}
	return galleries, nil
}

func DetailGallery(id types.ID, s *session.Session) (*Gallery, error) {
	g := Gallery{}
	if err := persistence.ActiveDataSourceManager.GormDB(s.TraceContext()).Where("id = ?", id).First(&g).Error; err != nil {
		return nil, err
	}
	return &g, nil
}

func CreateGallery(c GalleryCreation, s *session.Session) (*Gallery, error) {
	g := Gallery{ID: idgen.NextID(idWorker), Title: c.Title, Description: c.Description, Image: c.Image}
	var record *activity.Record
	err := persistence.ActiveDataSourceManager.GormDB(s.TraceContext()).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&g).Error; err != nil {
			return err
		}
		r, err := activity.Create(SourceType, g.ID, g.Title, activity.CategoryCreated, s, tx)
		record = r
		return err
	})
	if err != nil {
		return nil, err
	}
	activity.Dispatch(record)
	return &g, nil
}

func UpdateGallery(id types.ID, p GalleryPatch, s *session.Session) (*Gallery, error) {
	if err := bizerror.RejectBlank(map[string]*string{"title": p.Title, "description": p.Description}); err != nil {
		return nil, err
	}
	g := Gallery{}
	var record *activity.Record
	err := persistence.ActiveDataSourceManager.GormDB(s.TraceContext()).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(&g).Error; err != nil {
			return err
		}
		changes := map[string]interface{}{}
		if p.Title != nil {
			changes["title"] = *p.Title
		}
		if p.Description != nil {
			changes["description"] = *p.Description
		}
		if p.Image != nil {
			changes["image"] = *p.Image
		}
		if len(changes) > 0 {
			if err := tx.Model(&g).Updates(changes).Error; err != nil {
				return err
			}
			if err := tx.Where("id = ?", id).First(&g).Error; err != nil {
				return err
			}
		}
		r, err := activity.Create(SourceType, g.ID, g.Title, activity.CategoryUpdated, s, tx)
		record = r
		return err
	})
	if err != nil {
		return nil, err
	}
	activity.Dispatch(record)
	return &g, nil
}

func DeleteGallery(id types.ID, s *session.Session) error {
	g := Gallery{}
	var record *activity.Record
	err := persistence.ActiveDataSourceManager.GormDB(s.TraceContext()).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(&g).Error; err != nil {
			return err
		}
		if err := tx.Delete(&Gallery{}, "id = ?", id).Error; err != nil {
			return err
		}
		r, err := activity.Create(SourceType, g.ID, g.Title, activity.CategoryDeleted, s, tx)
		record = r
		return err
	})
	if err != nil {
		return err
	}
	storage.RemoveObjectFunc(g.Image, s)
	activity.Dispatch(record)
	return nil
}
