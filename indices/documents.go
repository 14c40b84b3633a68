package indices

import (
	"context"
	"fmt"
	"time"

	"orghub/client/es"
	"orghub/domain/event"
	"orghub/domain/news"

	"github.com/fundwit/go-commons/types"
	"github.com/sirupsen/logrus"
)

var (
	ContentIndexName = "contents"
)

const (
	KindNews  = "news"
	KindEvent = "event"
)

// Document is the searchable projection of public content.
type Document struct {
	Kind        string     `json:"kind"`
	ID          types.ID   `json:"id"`
	Title       string     `json:"title"`
	Body        string     `json:"body"`
	Location    string     `json:"location,omitempty"`
	Image       string     `json:"image,omitempty"`
	Status      string     `json:"status,omitempty"`
	StartDate   *time.Time `json:"start_date,omitempty"`
	PublishedAt time.Time  `json:"published_at"`
}

func DocumentID(kind string, id types.ID) string {
	return kind + "-" + id.String()
}

func NewsDocument(n news.News) Document {
	return Document{Kind: KindNews, ID: n.ID, Title: n.Title, Body: n.Content, Image: n.Image, PublishedAt: n.CreatedAt}
}

func EventDocument(e event.Event) Document {
	start := e.StartDate
	return Document{Kind: KindEvent, ID: e.ID, Title: e.Title, Body: e.Description, Location: e.Location,
		Image: e.Image, Status: e.Status, StartDate: &start, PublishedAt: e.CreatedAt}
}

type BatchActionError map[string]error

func (e BatchActionError) Error() string {
	return fmt.Sprintf("%v", map[string]error(e))
}

// IndexDocuments saves every document and collects the failures by document id.
func IndexDocuments(ctx context.Context, docs []Document) error {
	errs := BatchActionError{}
	for _, doc := range docs {
		id := DocumentID(doc.Kind, doc.ID)
		if err := es.IndexFunc(ctx, ContentIndexName, id, doc); err != nil {
			errs[id] = err
			logrus.Warnf("index document %s %s: %v", id, doc.Title, err)
		} else {
			logrus.Debugf("index document %s %s successfully", id, doc.Title)
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}
