package indices

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"orghub/bizerror"
	"orghub/session"
	"orghub/testinfra"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/gomega"
	"golang.org/x/time/rate"
)

func TestHandleIndexRequest(t *testing.T) {
	RegisterTestingT(t)
	enabled := EnabledFunc
	defer func() {
		ScheduleNewSyncRunFunc = ScheduleNewSyncRun
		EnabledFunc = enabled
	}()

	router := gin.Default()
	router.Use(bizerror.ErrorHandling())
	RegisterIndicesRestAPI(router)

	t.Run("unavailable without search backend", func(t *testing.T) {
		EnabledFunc = func() bool { return false }
		req := httptest.NewRequest(http.MethodPost, PathIndexRequests, nil)
		status, body, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusServiceUnavailable))
		Expect(body).To(MatchJSON(`{"status":"error","code":"search.unavailable","message":"search is not available","data":null}`))
	})

	t.Run("handle error", func(t *testing.T) {
		EnabledFunc = func() bool { return true }
		indexRequestLimiter = rate.NewLimiter(rate.Inf, 1)
		ScheduleNewSyncRunFunc = func(s *session.Session) (bool, error) {
			return false, errors.New("error on schedule new sync run")
		}
		req := httptest.NewRequest(http.MethodPost, PathIndexRequests, nil)
		status, body, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusInternalServerError))
		Expect(body).To(MatchJSON(`{"status":"error","code":"common.internal_server_error","message":"internal server error","data":null}`))
	})

	t.Run("already running", func(t *testing.T) {
		ScheduleNewSyncRunFunc = func(s *session.Session) (bool, error) {
			return false, nil
		}
		req := httptest.NewRequest(http.MethodPost, PathIndexRequests, nil)
		status, body, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusOK))
		Expect(body).To(MatchJSON(`{"status":"success","message":"Index rebuild already running","data":{"started":false}}`))
	})

	t.Run("requests are rate limited", func(t *testing.T) {
		indexRequestLimiter = rate.NewLimiter(rate.Every(100*time.Millisecond), 1)
		ScheduleNewSyncRunFunc = func(s *session.Session) (bool, error) {
			return true, nil
		}
		req := httptest.NewRequest(http.MethodPost, PathIndexRequests, nil)
		status, body, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusCreated))
		Expect(body).To(MatchJSON(`{"status":"success","message":"Index rebuild started","data":{"started":true}}`))

		req = httptest.NewRequest(http.MethodPost, PathIndexRequests, nil)
		status, body, _ = testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusTooManyRequests))
		Expect(body).To(MatchJSON(`{"status":"error","code":"indices.rate_limited","message":"request rate limited","data":null}`))

		time.Sleep(101 * time.Millisecond)
		req = httptest.NewRequest(http.MethodPost, PathIndexRequests, nil)
		status, _, _ = testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusCreated))
	})
}

func TestHandleSearch(t *testing.T) {
	RegisterTestingT(t)
	defer func() { SearchContentsFunc = SearchContents }()

	router := gin.Default()
	router.Use(bizerror.ErrorHandling())
	RegisterSearchRestAPI(router)

	t.Run("query is required", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, PathPublicSearch, nil)
		status, body, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusUnprocessableEntity))
		Expect(body).To(MatchJSON(`{"status":"error","code":"common.validation_failed","message":"Validation failed",
			"data":null,"errors":{"q":"The q field is required."}}`))
	})

	t.Run("anonymous callers can search", func(t *testing.T) {
		var captured SearchQuery
		SearchContentsFunc = func(q SearchQuery, s *session.Session) ([]SearchHit, error) {
			captured = q
			return []SearchHit{{Document: Document{Kind: KindNews, ID: 1, Title: "Opening"}, Score: 1}}, nil
		}
		req := httptest.NewRequest(http.MethodGet, PathPublicSearch+"?q=open", nil)
		status, body, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusOK))
		Expect(body).To(ContainSubstring(`"title":"Opening"`))
		Expect(body).To(ContainSubstring(`"score":1`))
		Expect(captured.Q).To(Equal("open"))
	})

	t.Run("unavailable backend", func(t *testing.T) {
		SearchContentsFunc = func(q SearchQuery, s *session.Session) ([]SearchHit, error) {
			return nil, ErrSearchUnavailable
		}
		req := httptest.NewRequest(http.MethodGet, PathPublicSearch+"?q=open", nil)
		status, _, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusServiceUnavailable))
	})
}
