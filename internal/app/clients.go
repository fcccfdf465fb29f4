package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/yungbote/gdelt-dashboard/internal/clients/redis"
	"github.com/yungbote/gdelt-dashboard/internal/data/repos/queryruns"
	"github.com/yungbote/gdelt-dashboard/internal/db"
	"github.com/yungbote/gdelt-dashboard/internal/modules/events"
	"github.com/yungbote/gdelt-dashboard/internal/platform/gcp"
	"github.com/yungbote/gdelt-dashboard/internal/platform/logger"
)

// Clients holds the external connections. Optional ones stay nil when their
// configuration is absent.
type Clients struct {
	Credentials gcp.Credentials
	Warehouse   *gcp.BigQueryWarehouse
	Budget      events.QueryBudget
	QueryLog    *db.Service
	Runs        queryruns.QueryRunRepo
	Snapshots   *gcp.SnapshotStore

	closers []func() error
}

func (c *Clients) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		_ = c.closers[i]()
	}
	c.closers = nil
}

func wireClients(ctx context.Context, log *logger.Logger, cfg Config) (*Clients, error) {
	log.Info("Wiring clients...")
	c := &Clients{}

	c.Credentials = gcp.CheckCredentials(cfg.Warehouse.CredentialsJSON, cfg.Warehouse.CredentialsFile)
	if c.Credentials.OK {
		projectID := cfg.Warehouse.ProjectID
		if projectID == "" {
			projectID = c.Credentials.ProjectID()
		}
		wh, err := gcp.NewBigQueryWarehouse(ctx, log, projectID, c.Credentials.ClientOptions()...)
		if err != nil {
			c.Close()
			return nil, fmt.Errorf("init bigquery: %w", err)
		}
		c.Warehouse = wh
		c.closers = append(c.closers, wh.Close)
	} else {
		log.Warn("BigQuery disabled", "reason", c.Credentials.Message)
	}

	if strings.TrimSpace(cfg.Budget.RedisAddr) != "" {
		b, err := redis.NewQueryBudget(log, redis.Options{
			Addr:     cfg.Budget.RedisAddr,
			Password: cfg.Budget.RedisPassword,
			DB:       cfg.Budget.RedisDB,
		}, cfg.Budget.DailyLimit)
		if err != nil {
			c.Close()
			return nil, fmt.Errorf("init redis query budget: %w", err)
		}
		c.Budget = b
		c.closers = append(c.closers, b.Close)
	} else {
		c.Budget = events.NewMemoryBudget(cfg.Budget.DailyLimit, time.Now)
	}

	if cfg.QueryLog.Enabled() {
		svc, err := db.Open(log, cfg.QueryLog)
		if err != nil {
			c.Close()
			return nil, fmt.Errorf("init query log: %w", err)
		}
		if err := svc.AutoMigrateAll(); err != nil {
			_ = svc.Close()
			c.Close()
			return nil, fmt.Errorf("query log automigrate: %w", err)
		}
		c.QueryLog = svc
		c.Runs = queryruns.NewQueryRunRepo(svc.DB(), log)
		c.closers = append(c.closers, svc.Close)
	}

	if cfg.Snapshots.Enabled() {
		store, err := gcp.NewSnapshotStore(ctx, log, cfg.Snapshots, c.Credentials.ClientOptions())
		if err != nil {
			c.Close()
			return nil, fmt.Errorf("init snapshot store: %w", err)
		}
		c.Snapshots = store
		c.closers = append(c.closers, store.Close)
	}

	return c, nil
}
