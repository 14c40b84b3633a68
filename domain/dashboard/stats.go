package dashboard

import (
	"net/http"

	"orghub/domain/event"
	"orghub/domain/member"
	"orghub/domain/news"
	"orghub/misc"
	"orghub/persistence"
	"orghub/session"

	"github.com/gin-gonic/gin"
)

var (
	PathStats = "/dashboard/stats"

	QueryStatsFunc = QueryStats
)

type Stats struct {
	TotalMembers int `json:"total_members"`
	TotalNews    int `json:"total_news"`
	TotalEvents  int `json:"total_events"`
	ActiveEvents int `json:"active_events"`
}

// QueryStats counts the content, trashed events excluded.
func QueryStats(s *session.Session) (*Stats, error) {
	db := persistence.ActiveDataSourceManager.GormDB(s.TraceContext())
	stats := Stats{}
	if err := db.Model(&member.Member{}).Count(&stats.TotalMembers).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&news.News{}).Count(&stats.TotalNews).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&event.Event{}).Count(&stats.TotalEvents).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&event.Event{}).Where("status IN (?)", event.ActiveStatuses).
		Count(&stats.ActiveEvents).Error; err != nil {
		return nil, err
	}
	return &stats, nil
}

func RegisterDashboardRestAPI(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	r.GET(PathStats, append(middleWares, handleQueryStats)...)
}

func handleQueryStats(c *gin.Context) {
	stats, err := QueryStatsFunc(session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	misc.Success(c, http.StatusOK, "Stats retrieved successfully", stats)
}
