package event

import (
	"net/http"

	"orghub/authority"
	"orghub/bizerror"
	"orghub/guard"
	"orghub/misc"
	"orghub/session"

	"github.com/gin-gonic/gin"
)

var (
	PathEvents       = "/events"
	PathPublicEvents = "/public/events"

	Policy = guard.Policy{
		{Actions: []string{"index", "show", "trashed"}, Permissions: []string{authority.PermViewEvents}},
		{Actions: []string{"store"}, Permissions: []string{authority.PermCreateEvents}},
		{Actions: []string{"update", "restore"}, Permissions: []string{authority.PermUpdateEvents}},
		{Actions: []string{"destroy", "forceDelete"}, Permissions: []string{authority.PermDeleteEvents}},
	}
)

func RegisterEventsRestAPI(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	g := r.Group(PathEvents, middleWares...)
	g.GET("", Policy.Guard("index"), handleQueryEvents)
	g.POST("", Policy.Guard("store"), handleCreateEvent)
	g.GET("/trashed", Policy.Guard("trashed"), handleQueryTrashedEvents)
	g.GET("/:id", Policy.Guard("show"), handleDetailEvent)
	g.PUT("/:id", Policy.Guard("update"), handleUpdateEvent)
	g.DELETE("/:id", Policy.Guard("destroy"), handleTrashEvent)
	g.POST("/:id/restore", Policy.Guard("restore"), handleRestoreEvent)
	g.DELETE("/:id/force", Policy.Guard("forceDelete"), handleForceDeleteEvent)
}

func RegisterPublicEventsRestAPI(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	r.GET(PathPublicEvents, append(middleWares, handleQueryActiveEvents)...)
}

func handleQueryEvents(c *gin.Context) {
	events, err := QueryEventsFunc(session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	misc.Success(c, http.StatusOK, "Events retrieved successfully", events)
}

func handleQueryTrashedEvents(c *gin.Context) {
	events, err := QueryTrashedEventsFunc(session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	misc.Success(c, http.StatusOK, "Trashed events retrieved successfully", events)
}

func handleQueryActiveEvents(c *gin.Context) {
	events, err := QueryActiveEventsFunc(session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	misc.Success(c, http.StatusOK, "Events retrieved successfully", events)
}

func handleCreateEvent(c *gin.Context) {
	in := EventInput{}
	bizerror.MustBindJSON(c, &in)
	e, err := CreateEventFunc(in, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	misc.Success(c, http.StatusCreated, "Event created successfully", e)
}

func handleDetailEvent(c *gin.Context) {
	e, err := DetailEventFunc(bizerror.ParamID(c, "id"), session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	misc.Success(c, http.StatusOK, "Event retrieved successfully", e)
}

func handleUpdateEvent(c *gin.Context) {
	id := bizerror.ParamID(c, "id")
	in := EventInput{}
	bizerror.MustBindJSON(c, &in)
	e, err := UpdateEventFunc(id, in, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	misc.Success(c, http.StatusOK, "Event updated successfully", e)
}

func handleTrashEvent(c *gin.Context) {
	if err := TrashEventFunc(bizerror.ParamID(c, "id"), session.ExtractSessionFromGinContext(c)); err != nil {
		panic(err)
	}
	misc.Success(c, http.StatusOK, "Event deleted successfully", nil)
}

func handleRestoreEvent(c *gin.Context) {
	e, err := RestoreEventFunc(bizerror.ParamID(c, "id"), session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	misc.Success(c, http.StatusOK, "Event restored successfully", e)
}

func handleForceDeleteEvent(c *gin.Context) {
	if err := ForceDeleteEventFunc(bizerror.ParamID(c, "id"), session.ExtractSessionFromGinContext(c)); err != nil {
		panic(err)
	}
	misc.Success(c, http.StatusOK, "Event permanently deleted successfully", nil)
}
