package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/gdelt-dashboard/internal/http/handlers"
	httpMW "github.com/yungbote/gdelt-dashboard/internal/http/middleware"
	"github.com/yungbote/gdelt-dashboard/internal/observability"
	"github.com/yungbote/gdelt-dashboard/internal/platform/logger"
)

type RouterConfig struct {
	Log            *logger.Logger
	Metrics        *observability.Metrics
	ServiceName    string
	AllowedOrigins []string
	Tracing        bool

	HealthHandler   *httpH.HealthHandler
	StatusHandler   *httpH.StatusHandler
	EventsHandler   *httpH.EventsHandler
	QueryRunHandler *httpH.QueryRunHandler
	SnapshotHandler *httpH.SnapshotHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.Tracing {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.Metrics(cfg.Metrics, "/metrics", "/healthcheck"))
	r.Use(httpMW.CORS(cfg.AllowedOrigins))

	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}

	api := r.Group("/api")
	{
		if cfg.StatusHandler != nil {
			api.GET("/status", cfg.StatusHandler.Status)
		}
		if cfg.EventsHandler != nil {
			api.GET("/events", cfg.EventsHandler.Dashboard)
			api.GET("/events/summaries", cfg.EventsHandler.Summaries)
		}
		if cfg.QueryRunHandler != nil {
			api.GET("/query-runs", cfg.QueryRunHandler.List)
		}
		if cfg.SnapshotHandler != nil {
			api.POST("/snapshots", cfg.SnapshotHandler.Create)
		}
	}

	return r
}
