package activity

import (
	"time"

	"github.com/fundwit/go-commons/types"
)

const (
	CategoryCreated  = "CREATED"
	CategoryUpdated  = "UPDATED"
	CategoryDeleted  = "DELETED"
	CategoryTrashed  = "TRASHED"
	CategoryRestored = "RESTORED"
)

type Category string

type Activity struct {
	SourceID   types.ID `json:"sourceId" gorm:"index:idx_activity_source"`
	SourceType string   `json:"sourceType" gorm:"index:idx_activity_source"`
	SourceDesc string   `json:"sourceDesc"`

	ActorID   types.ID `json:"actorId"`
	ActorName string   `json:"actorName"`

	Category Category `json:"category"`
}

type Record struct {
	ID types.ID `json:"id"`
	Activity

	Timestamp time.Time `json:"timestamp"`
	Synced    bool      `json:"synced"`
}

func (r *Record) TableName() string {
	return "activity_records"
}
