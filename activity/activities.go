package activity

import (
	"context"
	"time"

	"orghub/idgen"
	"orghub/persistence"
	"orghub/session"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
	"github.com/sirupsen/logrus"
)

var (
	idWorker = idgen.NewWorker()

	PersistFunc        = persist
	InvokeHandlersFunc = invokeHandlers
)

// Handler reacts to a committed activity, it returns nil when the record is not its concern.
type Handler func(r *Record) *HandleResult

type HandleResult struct {
	Success           bool
	Message           string
	HandlerIdentifier string
}

var Handlers []Handler

// Create writes the activity on tx, the caller's mutation transaction.
func Create(sourceType string, sourceID types.ID, sourceDesc string, category Category,
	s *session.Session, tx *gorm.DB) (*Record, error) {

	record := Record{
		ID: idgen.NextID(idWorker),
		Activity: Activity{
			SourceType: sourceType,
			SourceID:   sourceID,
			SourceDesc: sourceDesc,
			Category:   category,
			ActorID:    s.ActorID(),
			ActorName:  s.Identity.Name,
		},
		Timestamp: time.Now(),
	}
	if err := PersistFunc(&record, tx); err != nil {
		return nil, err
	}
	return &record, nil
}

// Dispatch runs the handlers for records whose transaction has committed and flags fully handled records as synced.
func Dispatch(records ...*Record) {
	for _, r := range records {
		if r == nil {
			continue
		}
		results := InvokeHandlersFunc(r)
		synced := true
		for _, res := range results {
			synced = synced && res.Success
		}
		if !synced || persistence.ActiveDataSourceManager == nil {
			continue
		}
		if err := persistence.ActiveDataSourceManager.GormDB(context.Background()).Model(&Record{}).Where("id = ?", r.ID).
			Update("synced", true).Error; err != nil {
			logrus.Warnf("failed to flag activity %d as synced: %v", r.ID, err)
		}
	}
}

func persist(record *Record, tx *gorm.DB) error {
	return tx.Create(record).Error
}

func invokeHandlers(record *Record) []HandleResult {
	results := []HandleResult{}
	for _, handler := range Handlers {
		logrus.Debug("pre handle activity ", record.Activity)
		r := handler(record)

		if r == nil {
			continue
		}

		results = append(results, *r)

		if r.Success {
			logrus.Info("post handle activity. ", r)
		} else {
			logrus.Error("post handler error. ", r)
		}
	}
	return results
}

// QueryActivities lists the recorded activities of one source, oldest first.
func QueryActivities(sourceType string, sourceID types.ID, s *session.Session) ([]Record, error) {
	records := []Record{}
	db := persistence.ActiveDataSourceManager.GormDB(s.TraceContext())
	if err := db.Where("source_type = ? AND source_id = ?", sourceType, sourceID).
		Order("timestamp ASC, id ASC").Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}
