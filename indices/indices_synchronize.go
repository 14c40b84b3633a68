package indices

import (
	"context"
	"fmt"
	"sync"

	"orghub/activity"
	"orghub/client/es"
	"orghub/domain/event"
	"orghub/domain/news"
	"orghub/persistence"
	"orghub/session"

	"github.com/fundwit/go-commons/types"
	"github.com/sirupsen/logrus"
)

var (
	ContentIndexHandlerName = "contentIndexer"
	indexRobot              = &session.Session{Identity: session.Identity{Name: "index-robot"}}

	lock    sync.Mutex
	running bool

	SyncBatchSize = 500

	IndicesFullSyncFunc    = IndicesFullSync
	ScheduleNewSyncRunFunc = ScheduleNewSyncRun
	LoadNewsFunc           = LoadNews
	LoadEventsFunc         = LoadEvents
)

// ScheduleNewSyncRun starts a full rebuild in background, it returns false when one is already running.
func ScheduleNewSyncRun(s *session.Session) (bool, error) {
	lock.Lock()
	if running {
		lock.Unlock()
		return false, nil
	}
	running = true
	lock.Unlock()

	logrus.WithField("actor", s.Identity.Name).Info("indices full sync scheduled")
	waitRunning := sync.WaitGroup{}
	waitRunning.Add(1)
	go func() {
		waitRunning.Done()
		defer func() {
			lock.Lock()
			running = false
			lock.Unlock()
		}()
		if err := IndicesFullSyncFunc(context.Background()); err != nil {
			logrus.Errorf("indices full sync: %v", err)
		}
	}()
	waitRunning.Wait()
	return true, nil
}

// IndicesFullSync drops the content index and indexes all news and active events again.
func IndicesFullSync(ctx context.Context) (err error) {
	defer func() {
		if ret := recover(); ret != nil {
			e, ok := ret.(error)
			if ok {
				err = e
			} else {
				err = fmt.Errorf("error on indices full sync: %v", ret)
			}
		}
	}()

	if err := es.DropIndexFunc(ctx, ContentIndexName); err != nil {
		return err
	}

	for page := 1; ; page++ {
		list, err := LoadNewsFunc(page, SyncBatchSize)
		if err != nil {
			return fmt.Errorf("load news (page = %d, pageSize = %d): %w", page, SyncBatchSize, err)
		}
		if len(list) == 0 {
			break
		}
		docs := make([]Document, 0, len(list))
		for _, n := range list {
			docs = append(docs, NewsDocument(n))
		}
		if err := IndexDocuments(ctx, docs); err != nil {
			logrus.Warnf("indices full sync: index news (page = %d): %v", page, err)
		}
	}

	for page := 1; ; page++ {
		list, err := LoadEventsFunc(page, SyncBatchSize)
		if err != nil {
			return fmt.Errorf("load events (page = %d, pageSize = %d): %w", page, SyncBatchSize, err)
		}
		if len(list) == 0 {
			break
		}
		docs := make([]Document, 0, len(list))
		for _, e := range list {
			docs = append(docs, EventDocument(e))
		}
		if err := IndexDocuments(ctx, docs); err != nil {
			logrus.Warnf("indices full sync: index events (page = %d): %v", page, err)
		}
	}
	logrus.Info("indices full sync: there are no more contents to index")
	return nil
}

func LoadNews(page, size int) ([]news.News, error) {
	list := []news.News{}
	if err := persistence.ActiveDataSourceManager.GormDB(context.Background()).Order("id ASC").
		Offset((page - 1) * size).Limit(size).Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

// LoadEvents pages through the events which are not trashed.
func LoadEvents(page, size int) ([]event.Event, error) {
	list := []event.Event{}
	if err := persistence.ActiveDataSourceManager.GormDB(context.Background()).Order("id ASC").
		Offset((page - 1) * size).Limit(size).Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

// IndexContentActivityHandle keeps the content index in line with news and event activities.
func IndexContentActivityHandle(r *activity.Record) *activity.HandleResult {
	var kind string
	switch r.SourceType {
	case news.SourceType:
		kind = KindNews
	case event.SourceType:
		kind = KindEvent
	default:
		return nil
	}
	ctx := context.Background()
	id := DocumentID(kind, r.SourceID)

	if r.Category == activity.CategoryDeleted || r.Category == activity.CategoryTrashed {
		if err := es.DeleteDocumentByIdFunc(ctx, ContentIndexName, id); err != nil {
			return failure(fmt.Sprintf("delete document %s, %v", id, err))
		}
		return &activity.HandleResult{Success: true, HandlerIdentifier: ContentIndexHandlerName}
	}

	doc, err := loadDocument(kind, r.SourceID)
	if err != nil {
		return failure(fmt.Sprintf("load %s %d, %v", kind, r.SourceID, err))
	}
	if err := IndexDocuments(ctx, []Document{*doc}); err != nil {
		return failure(fmt.Sprintf("index document %s, %v", id, err))
	}
	return &activity.HandleResult{Success: true, HandlerIdentifier: ContentIndexHandlerName}
}

func loadDocument(kind string, id types.ID) (*Document, error) {
	if kind == KindNews {
		n, err := news.DetailNewsFunc(id, indexRobot)
		if err != nil {
			return nil, err
		}
		doc := NewsDocument(*n)
		return &doc, nil
	}
	e, err := event.DetailEventFunc(id, indexRobot)
	if err != nil {
		return nil, err
	}
	doc := EventDocument(e.Event)
	return &doc, nil
}

func failure(message string) *activity.HandleResult {
	return &activity.HandleResult{Message: message, HandlerIdentifier: ContentIndexHandlerName}
}
