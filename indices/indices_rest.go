package indices

import (
	"net/http"
	"time"

	"orghub/bizerror"
	"orghub/misc"
	"orghub/session"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

var (
	PathIndexRequests = "/index-requests"
	PathPublicSearch  = "/public/search"

	indexRequestLimiter = rate.NewLimiter(rate.Every(time.Minute), 1)
)

type IndexRequestResult struct {
	Started bool `json:"started"`
}

func RegisterIndicesRestAPI(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	g := r.Group(PathIndexRequests, middleWares...)
	g.POST("", handleIndexRequest)
}

func RegisterSearchRestAPI(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	r.GET(PathPublicSearch, append(middleWares, handleSearch)...)
}

func handleIndexRequest(c *gin.Context) {
	if !EnabledFunc() {
		panic(ErrSearchUnavailable)
	}
	if !indexRequestLimiter.Allow() {
		misc.Failure(c, http.StatusTooManyRequests, "indices.rate_limited", "request rate limited", nil)
		return
	}
	started, err := ScheduleNewSyncRunFunc(session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	if started {
		misc.Success(c, http.StatusCreated, "Index rebuild started", IndexRequestResult{Started: true})
		return
	}
	misc.Success(c, http.StatusOK, "Index rebuild already running", IndexRequestResult{Started: false})
}

func handleSearch(c *gin.Context) {
	q := SearchQuery{}
	bizerror.MustBindQuery(c, &q)
	hits, err := SearchContentsFunc(q, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	misc.Success(c, http.StatusOK, "Search results retrieved successfully", hits)
}
