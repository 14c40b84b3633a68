package indices

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"orghub/bizerror"
	"orghub/client/es"
	"orghub/session"
)

var (
	SearchContentsFunc = SearchContents

	// EnabledFunc reports whether a search backend is configured.
	EnabledFunc = func() bool { return es.ActiveESClient != nil }

	SearchResultLimit = 50
)

var ErrSearchUnavailable = &unavailableError{}

type unavailableError struct{}

func (e *unavailableError) Error() string {
	return "search is not available"
}

func (e *unavailableError) Respond() *bizerror.BizErrorDetail {
	return &bizerror.BizErrorDetail{Status: http.StatusServiceUnavailable, Code: "search.unavailable", Message: e.Error()}
}

type SearchQuery struct {
	Q string `form:"q" json:"q" binding:"required,lte=255"`
}

type SearchHit struct {
	Document
	Score float64 `json:"score"`
}

// SearchContents runs a full text query over titles, bodies and locations of the indexed content.
func SearchContents(q SearchQuery, s *session.Session) ([]SearchHit, error) {
	if !EnabledFunc() {
		return nil, ErrSearchUnavailable
	}
	query := es.H{
		"size": SearchResultLimit,
		"query": es.H{"multi_match": es.H{
			"query":  strings.TrimSpace(q.Q),
			"fields": []string{"title^3", "body", "location"},
		}},
	}
	r, err := es.SearchFunc(s.TraceContext(), ContentIndexName, query)
	if err != nil {
		return nil, err
	}
	hits := make([]SearchHit, 0, len(r.Hits.Hits))
	for _, hit := range r.Hits.Hits {
		doc := Document{}
		if err := json.Unmarshal(hit.Source, &doc); err != nil {
			return nil, errors.New("malformed document " + hit.Id + ": " + err.Error())
		}
		hits = append(hits, SearchHit{Document: doc, Score: hit.Score})
	}
	return hits, nil
}
