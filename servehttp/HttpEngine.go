package servehttp

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"orghub/account"
	"orghub/authority"
	"orghub/bizerror"
	"orghub/domain/category"
	"orghub/domain/dashboard"
	"orghub/domain/event"
	"orghub/domain/gallery"
	"orghub/domain/member"
	"orghub/domain/news"
	"orghub/guard"
	"orghub/indices"
	"orghub/infra/tracing"
	"orghub/session"
	"orghub/sessions"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// NewEngine builds the router with the shared middlewares and every route of the service.
func NewEngine(serviceName string) *gin.Engine {
	engine := gin.New()
	engine.Use(gin.Logger(), tracing.TracingIngress(), bizerror.ErrorHandling(), session.IdentityFilter())
	engine.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, serviceName)
	})
	RegisterRoutes(engine)
	return engine
}

func RegisterRoutes(engine *gin.Engine) {
	sessions.RegisterLoginRestAPI(engine)
	sessions.RegisterSessionRestAPI(engine, guard.Authenticated())

	member.RegisterPublicMembersRestAPI(engine)
	news.RegisterPublicNewsRestAPI(engine)
	gallery.RegisterPublicGalleriesRestAPI(engine)
	event.RegisterPublicEventsRestAPI(engine)
	indices.RegisterSearchRestAPI(engine)

	member.RegisterMembersRestAPI(engine)
	news.RegisterNewsRestAPI(engine)
	gallery.RegisterGalleriesRestAPI(engine)
	category.RegisterCategoriesRestAPI(engine)
	event.RegisterEventsRestAPI(engine)
	dashboard.RegisterDashboardRestAPI(engine, guard.Authenticated())

	authority.RegisterRolesRestAPI(engine, guard.RequirePermissions(authority.PermManageRoles))
	authority.RegisterPermissionsRestAPI(engine, guard.RequirePermissions(authority.PermManagePermissions))
	account.RegisterUsersRestAPI(engine, guard.RequirePermissions(authority.PermManageUsers))
	indices.RegisterIndicesRestAPI(engine, guard.RequirePermissions(authority.PermManageIndices))
}

// StartHTTPServer serves until SIGINT or SIGTERM, then shuts down gracefully.
func StartHTTPServer(addr string, engine *gin.Engine) {
	srv := &http.Server{
		Addr:    addr,
		Handler: engine,
	}

	go func() {
		logrus.Infof("listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	// kill (no param) default send syscall.SIGTERM
	// kill -2 send syscall.SIGINT
	// kill -9 send syscall.SIGKILL, can't be caught
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logrus.Info("[QUIT] shutdown signal has been received, the service will exit in 3 seconds.")

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logrus.Errorf("[QUIT] http server shutdown failed: %v", err)
		return
	}
	logrus.Info("[QUIT] http server is shutdown gracefully, new request will be rejected.")
}
