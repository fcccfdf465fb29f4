package app

import (
	"context"
	"fmt"
	"os"

	httpx "github.com/yungbote/gdelt-dashboard/internal/http"
	httpH "github.com/yungbote/gdelt-dashboard/internal/http/handlers"
	"github.com/yungbote/gdelt-dashboard/internal/modules/events"
	"github.com/yungbote/gdelt-dashboard/internal/observability"
	"github.com/yungbote/gdelt-dashboard/internal/platform/logger"
)

type App struct {
	Log     *logger.Logger
	Cfg     Config
	Clients *Clients
	Metrics *observability.Metrics
	Events  *events.Service
	Server  *httpx.Server

	otelShutdown func(context.Context) error
}

func New(ctx context.Context) (*App, error) {
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	log.Info("Loading configuration...")
	cfg, err := LoadConfig(log)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("load config: %w", err)
	}

	otelShutdown := observability.InitOTel(ctx, log, cfg.TracingConfig())
	metrics := observability.Init(log, cfg.MetricsEnabled)

	clients, err := wireClients(ctx, log, cfg)
	if err != nil {
		log.Sync()
		return nil, err
	}

	svc := wireEvents(log, cfg, clients, metrics)
	server := httpx.NewServer(httpx.RouterConfig{
		Log:             log,
		Metrics:         metrics,
		ServiceName:     cfg.Otel.ServiceName,
		AllowedOrigins:  cfg.AllowedOrigins,
		Tracing:         cfg.Otel.Enabled,
		HealthHandler:   httpH.NewHealthHandler(),
		StatusHandler:   httpH.NewStatusHandler(svc, httpH.StatusInfo{Table: cfg.Warehouse.Table, Limit: cfg.Warehouse.Limit}),
		EventsHandler:   httpH.NewEventsHandler(log, svc),
		QueryRunHandler: httpH.NewQueryRunHandler(svc),
		SnapshotHandler: httpH.NewSnapshotHandler(log, svc, metrics),
	})

	return &App{
		Log:          log,
		Cfg:          cfg,
		Clients:      clients,
		Metrics:      metrics,
		Events:       svc,
		Server:       server,
		otelShutdown: otelShutdown,
	}, nil
}

func wireEvents(log *logger.Logger, cfg Config, c *Clients, metrics *observability.Metrics) *events.Service {
	var wh events.Warehouse
	if c.Warehouse != nil {
		wh = c.Warehouse
	}
	clientOpts := []events.QueryClientOption{events.WithBudget(c.Budget)}
	cacheOpts := []events.CacheOption{}
	if metrics != nil {
		clientOpts = append(clientOpts, events.WithObserver(metrics))
		cacheOpts = append(cacheOpts, events.WithCacheObserver(metrics))
	}
	var svcOpts []events.ServiceOption
	if c.Runs != nil {
		clientOpts = append(clientOpts, events.WithRunStore(c.Runs))
		svcOpts = append(svcOpts, events.WithRuns(c.Runs))
	}
	if c.Snapshots != nil {
		svcOpts = append(svcOpts, events.WithSnapshots(c.Snapshots))
	}

	client := events.NewQueryClient(log, wh, cfg.QueryConfig(), clientOpts...)
	cache := events.NewResultCache(client, cfg.CacheTTL(), cacheOpts...)
	creds := events.CredentialStatus{
		OK:      c.Credentials.OK,
		Source:  c.Credentials.Source,
		Message: c.Credentials.Message,
	}
	return events.NewService(log, cache, creds, svcOpts...)
}

// Run serves HTTP until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.Server == nil {
		return fmt.Errorf("app not initialized")
	}
	return a.Server.Run(ctx, a.Cfg.Addr())
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.Clients != nil {
		a.Clients.Close()
	}
	if a.otelShutdown != nil {
		_ = a.otelShutdown(context.Background())
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
