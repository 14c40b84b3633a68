package event

import (
	"time"

	"orghub/activity"
	"orghub/bizerror"
	"orghub/domain/category"
	"orghub/idgen"
	"orghub/persistence"
	"orghub/session"
	"orghub/storage"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
)

const (
	SourceType = "EVENT"

	// DateTimeLayout is the accepted format of start_date and end_date.
	DateTimeLayout = "2006-01-02 15:04:05"

	StatusUpcoming  = "upcoming"
	StatusOngoing   = "ongoing"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

// ActiveStatuses are the statuses of events that did not end yet.
var ActiveStatuses = []string{StatusUpcoming, StatusOngoing}

// Event is soft deleted: gorm scopes every query to rows without deleted_at unless Unscoped is used.
type Event struct {
	ID          types.ID  `json:"id"`
	Title       string    `json:"title" gorm:"not null"`
	Description string    `json:"description" gorm:"type:text"`
	Location    string    `json:"location"`
	Status      string    `json:"status" gorm:"not null;index:idx_event_status"`
	StartDate   time.Time `json:"start_date"`
	EndDate     time.Time `json:"end_date"`
	Image       string    `json:"image"`
	CategoryID  *types.ID `json:"category_id" gorm:"index:idx_event_category"`
	CreatorID   types.ID  `json:"creator_id"`

	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at" gorm:"index:idx_event_deleted_at"`
}

type EventDetail struct {
	Event
	Category *category.Category `json:"category"`
}

type EventInput struct {
	Title       string    `json:"title" binding:"required,lte=255"`
	Description string    `json:"description" binding:"required"`
	Location    string    `json:"location" binding:"required,lte=255"`
	Status      string    `json:"status" binding:"omitempty,oneof=upcoming ongoing completed cancelled"`
	StartDate   string    `json:"start_date" binding:"required,datetime=2006-01-02 15:04:05"`
	EndDate     string    `json:"end_date" binding:"required,datetime=2006-01-02 15:04:05"`
	Image       string    `json:"image"`
	CategoryID  *types.ID `json:"category_id"`
}

var (
	idWorker = idgen.NewWorker()

	QueryEventsFunc        = QueryEvents
	QueryTrashedEventsFunc = QueryTrashedEvents
	QueryActiveEventsFunc  = QueryActiveEvents
	DetailEventFunc        = DetailEvent
	CreateEventFunc        = CreateEvent
	UpdateEventFunc        = UpdateEvent
	TrashEventFunc         = TrashEvent
	RestoreEventFunc       = RestoreEvent
	ForceDeleteEventFunc   = ForceDeleteEvent
)

func init() {
	category.DeleteHooks = append(category.DeleteHooks, detachCategory)
}

// detachCategory clears the category of every event referencing it, trashed ones included.
func detachCategory(c category.Category, tx *gorm.DB) error {
	return tx.Unscoped().Model(&Event{}).Where("category_id = ?", c.ID).
		UpdateColumn("category_id", gorm.Expr("NULL")).Error
}

func QueryEvents(s *session.Session) ([]EventDetail, error) {
	db := persistence.ActiveDataSourceManager.GormDB(s.TraceContext())
	events := []Event{}
	if err := db.Order("start_date DESC, id DESC").Find(&events).Error; err != nil {
		return nil, err
	}
	return withCategories(db, events)
}

func QueryTrashedEvents(s *session.Session) ([]EventDetail, error) {
	db := persistence.ActiveDataSourceManager.GormDB(s.TraceContext())
	events := []Event{}
	if err := db.Unscoped().Where("deleted_at IS NOT NULL").Order("deleted_at DESC, id DESC").
		Find(&events).Error; err != nil {
		return nil, err
	}
	return withCategories(db, events)
}

// QueryActiveEvents lists the upcoming and ongoing events, soonest first.
func QueryActiveEvents(s *session.Session) ([]EventDetail, error) {
	db := persistence.ActiveDataSourceManager.GormDB(s.TraceContext())
	events := []Event{}
	if err := db.Where("status IN (?)", ActiveStatuses).Order("start_date ASC, id ASC").
		Find(&events).Error; err != nil {
		return nil, err
	}
	return withCategories(db, events)
}

func DetailEvent(id types.ID, s *session.Session) (*EventDetail, error) {
	db := persistence.ActiveDataSourceManager.GormDB(s.TraceContext())
	e := Event{}
	if err := db.Where("id = ?", id).First(&e).Error; err != nil {
		return nil, err
	}
	details, err := withCategories(db, []Event{e})
	if err != nil {
		return nil, err
	}
	return &details[0], nil
}

func CreateEvent(in EventInput, s *session.Session) (*EventDetail, error) {
	start, end, err := parseSchedule(in)
	if err != nil {
		return nil, err
	}
	status := in.Status
	if status == "" {
		status = StatusUpcoming
	}
	e := Event{ID: idgen.NextID(idWorker), Title: in.Title, Description: in.Description, Location: in.Location,
		Status: status, StartDate: start, EndDate: end, Image: in.Image, CategoryID: in.CategoryID, CreatorID: s.ActorID()}

	var record *activity.Record
	err = persistence.ActiveDataSourceManager.GormDB(s.TraceContext()).Transaction(func(tx *gorm.DB) error {
		if err := ensureCategoryExists(tx, in.CategoryID); err != nil {
			return err
		}
		if err := tx.Create(&e).Error; err != nil {
			return err
		}
		r, err := activity.Create(SourceType, e.ID, e.Title, activity.CategoryCreated, s, tx)
		record = r
		return err
	})
	if err != nil {
		return nil, err
	}
	activity.Dispatch(record)
	return DetailEvent(e.ID, s)
}

func UpdateEvent(id types.ID, in EventInput, s *session.Session) (*EventDetail, error) {
	start, end, err := parseSchedule(in)
	if err != nil {
		return nil, err
	}
	var record *activity.Record
	err = persistence.ActiveDataSourceManager.GormDB(s.TraceContext()).Transaction(func(tx *gorm.DB) error {
		e := Event{}
		if err := tx.Where("id = ?", id).First(&e).Error; err != nil {
			return err
		}
		if err := ensureCategoryExists(tx, in.CategoryID); err != nil {
			return err
		}
		changes := map[string]interface{}{
			"title": in.Title, "description": in.Description, "location": in.Location,
			"start_date": start, "end_date": end, "image": in.Image, "category_id": in.CategoryID,
		}
		if in.Status != "" {
			changes["status"] = in.Status
		}
		if err := tx.Model(&e).Updates(changes).Error; err != nil {
			return err
		}
		r, err := activity.Create(SourceType, e.ID, in.Title, activity.CategoryUpdated, s, tx)
		record = r
		return err
	})
	if err != nil {
		return nil, err
	}
	activity.Dispatch(record)
	return DetailEvent(id, s)
}

// TrashEvent soft deletes an active event.
func TrashEvent(id types.ID, s *session.Session) error {
	var record *activity.Record
	err := persistence.ActiveDataSourceManager.GormDB(s.TraceContext()).Transaction(func(tx *gorm.DB) error {
		e := Event{}
		if err := tx.Where("id = ?", id).First(&e).Error; err != nil {
			return err
		}
		if err := tx.Delete(&e).Error; err != nil {
			return err
		}
		r, err := activity.Create(SourceType, e.ID, e.Title, activity.CategoryTrashed, s, tx)
		record = r
		return err
	})
	if err != nil {
		return err
	}
	activity.Dispatch(record)
	return nil
}

// RestoreEvent brings a trashed event back, events which are not trashed are not found.
func RestoreEvent(id types.ID, s *session.Session) (*EventDetail, error) {
	var record *activity.Record
	err := persistence.ActiveDataSourceManager.GormDB(s.TraceContext()).Transaction(func(tx *gorm.DB) error {
		e, err := findTrashed(tx, id)
		if err != nil {
			return err
		}
		if err := tx.Unscoped().Model(&Event{}).Where("id = ?", id).
			UpdateColumn("deleted_at", gorm.Expr("NULL")).Error; err != nil {
			return err
		}
		r, err := activity.Create(SourceType, e.ID, e.Title, activity.CategoryRestored, s, tx)
		record = r
		return err
	})
	if err != nil {
		return nil, err
	}
	activity.Dispatch(record)
	return DetailEvent(id, s)
}

// ForceDeleteEvent permanently removes a trashed event and its stored image.
func ForceDeleteEvent(id types.ID, s *session.Session) error {
	var record *activity.Record
	var image string
	err := persistence.ActiveDataSourceManager.GormDB(s.TraceContext()).Transaction(func(tx *gorm.DB) error {
		e, err := findTrashed(tx, id)
		if err != nil {
			return err
		}
		image = e.Image
		if err := tx.Unscoped().Delete(&Event{}, "id = ?", id).Error; err != nil {
			return err
		}
		r, err := activity.Create(SourceType, e.ID, e.Title, activity.CategoryDeleted, s, tx)
		record = r
		return err
	})
	if err != nil {
		return err
	}
	storage.RemoveObjectFunc(image, s)
	activity.Dispatch(record)
	return nil
}

func findTrashed(tx *gorm.DB, id types.ID) (*Event, error) {
	e := Event{}
	if err := tx.Unscoped().Where("id = ? AND deleted_at IS NOT NULL", id).First(&e).Error; err != nil {
		return nil, err
	}
	return &e, nil
}

func parseSchedule(in EventInput) (time.Time, time.Time, error) {
	start, err := time.ParseInLocation(DateTimeLayout, in.StartDate, time.Local)
	if err != nil {
		return time.Time{}, time.Time{}, bizerror.NewValidationError("start_date",
			"The start date does not match the format "+DateTimeLayout+".")
	}
	end, err := time.ParseInLocation(DateTimeLayout, in.EndDate, time.Local)
	if err != nil {
		return time.Time{}, time.Time{}, bizerror.NewValidationError("end_date",
			"The end date does not match the format "+DateTimeLayout+".")
	}
	if !end.After(start) {
		return time.Time{}, time.Time{}, bizerror.NewValidationError("end_date",
			"The end date must be a date after start date.")
	}
	return start, end, nil
}

func ensureCategoryExists(tx *gorm.DB, id *types.ID) error {
	if id == nil {
		return nil
	}
	found, err := category.Exists(tx, *id)
	if err != nil {
		return err
	}
	if !found {
		return bizerror.NewValidationError("category_id", "The selected category id is invalid.")
	}
	return nil
}

func withCategories(db *gorm.DB, events []Event) ([]EventDetail, error) {
	ids := []types.ID{}
	for _, e := range events {
		if e.CategoryID != nil {
			ids = append(ids, *e.CategoryID)
		}
	}
	categories := map[types.ID]*category.Category{}
	if len(ids) > 0 {
		found := []category.Category{}
		if err := db.Where("id IN (?)", ids).Find(&found).Error; err != nil {
			return nil, err
		}
		for i := range found {
			categories[found[i].ID] = &found[i]
		}
	}
	details := make([]EventDetail, 0, len(events))
	for _, e := range events {
		d := EventDetail{Event: e}
		if e.CategoryID != nil {
			d.Category = categories[*e.CategoryID]
		}
		details = append(details, d)
	}
	return details, nil
}
