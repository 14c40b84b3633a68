package news

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

const SourceType = "NEWS"

type News struct {
	ID       types.ID `json:"id"`
	Title    string   `json:"title" gorm:"not null"`
	Content  string   `json:"content" gorm:"type:text"`
	Image    string   `json:"image"`
	AuthorID types.ID `json:"author_id"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (n *News) TableName() string {
	return "news"
}

type NewsCreation struct {
	Title   string `json:"title" binding:"required,lte=255"`
	Content string `json:"content" binding:"required"`
	Image   string `json:"image"`
}

type NewsPatch struct {
	Title   *string `json:"title" binding:"omitempty,lte=255"`
	Content *string `json:"content"`
	Image   *string `json:"image"`
}

var (
	idWorker = idgen.NewWorker()

	QueryNewsFunc  = QueryNews
	DetailNewsFunc = DetailNews
	CreateNewsFunc = CreateNews
	UpdateNewsFunc = UpdateNews
	DeleteNewsFunc = DeleteNews
)

// QueryNews lists the news, latest first.
func QueryNews(s *session.Session) ([]News, error) {
	news := []News{}
	if err := persistence.ActiveDataSourceManager.GormDB(s.TraceContext()).Order("created_at DESC, id DESC").
		Find(&news).Error; err != nil {
		return nil, err
	}
	return news, nil
}

func DetailNews(id types.ID, s *session.Session) (*News, error) {
	n := News{}
	if err := persistence.ActiveDataSourceManager.GormDB(s.TraceContext()).Where("id = ?", id).First(&n).Error; err != nil {
		return nil, err
	}
	return &n, nil
}

func CreateNews(c NewsCreation, s *session.Session) (*News, error) {
	n := News{ID: idgen.NextID(idWorker), Title: c.Title, Content: c.Content, Image: c.Image, AuthorID: s.ActorID()}
	var record *activity.Record
	err := persistence.ActiveDataSourceManager.GormDB(s.TraceContext()).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&n).Error; err != nil {
			return err
		}
		r, err := activity.Create(SourceType, n.ID, n.Title, activity.CategoryCreated, s, tx)
		record = r
		return err
	})
	if err != nil {
		return nil, err
	}
	activity.Dispatch(record)
	return &n, nil
}

func UpdateNews(id types.ID, p NewsPatch, s *session.Session) (*News, error) {
	if err := bizerror.RejectBlank(map[string]*string{"title": p.Title, "content": p.Content}); err != nil {
		return nil, err
	}
	n := News{}
	var record *activity.Record
	err := persistence.ActiveDataSourceManager.GormDB(s.TraceContext()).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(&n).Error; err != nil {
			return err
		}
		changes := map[string]interface{}{}
		if p.Title != nil {
			changes["title"] = *p.Title
		}
		if p.Content != nil {
			changes["content"] = *p.Content
		}
		if p.Image != nil {
			changes["image"] = *p.Image
		}
		if len(changes) > 0 {
			if err := tx.Model(&n).Updates(changes).Error; err != nil {
				return err
			}
			if err := tx.Where("id = ?", id).First(&n).Error; err != nil {
				return err
			}
		}
		r, err := activity.Create(SourceType, n.ID, n.Title, activity.CategoryUpdated, s, tx)
		record = r
		return err
	})
	if err != nil {
		return nil, err
	}
	activity.Dispatch(record)
	return &n, nil
}

func DeleteNews(id types.ID, s *session.Session) error {
	n := News{}
	var record *activity.Record
	err := persistence.ActiveDataSourceManager.GormDB(s.TraceContext()).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(&n).Error; err != nil {
			return err
		}
		if err := tx.Delete(&News{}, "id = ?", id).Error; err != nil {
			return err
		}
		r, err := activity.Create(SourceType, n.ID, n.Title, activity.CategoryDeleted, s, tx)
		record = r
		return err
	})
	if err != nil {
		return err
	}
	storage.RemoveObjectFunc(n.Image, s)
	activity.Dispatch(record)
	return nil
}
