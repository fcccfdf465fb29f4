package db

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/yungbote/gdelt-dashboard/internal/domain/gdelt"
	"github.com/yungbote/gdelt-dashboard/internal/platform/logger"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverNone     = "none"
)

type Config struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

func (c Config) Enabled() bool {
	d := strings.ToLower(strings.TrimSpace(c.Driver))
	return d != "" && d != DriverNone
}

// Service owns the audit-log database handle.
type Service struct {
	db  *gorm.DB
	log *logger.Logger
}

func Open(log *logger.Logger, cfg Config) (*Service, error) {
	serviceLog := log.With("service", "QueryLogDB")
	driver := strings.ToLower(strings.TrimSpace(cfg.Driver))
	dsn := strings.TrimSpace(cfg.DSN)

	var dialector gorm.Dialector
	switch driver {
	case DriverSQLite:
		if dsn == "" {
			dsn = "query_runs.db"
		}
		if !strings.HasPrefix(dsn, "file:") && dsn != ":memory:" {
			if dir := filepath.Dir(dsn); dir != "." {
				if err := os.MkdirAll(dir, 0o755); err != nil {
					return nil, fmt.Errorf("create sqlite dir: %w", err)
				}
			}
		}
		dialector = sqlite.Open(dsn)
	case DriverPostgres:
		if dsn == "" {
			return nil, fmt.Errorf("QUERY_LOG_DSN is required for driver %q", driver)
		}
		dialector = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported QUERY_LOG_DRIVER=%q (allowed: %q, %q, %q)", cfg.Driver, DriverSQLite, DriverPostgres, DriverNone)
	}

	serviceLog.Info("Connecting to query log database...", "driver", driver, "dsn", dsn)
	db, err := gorm.Open(dialector, &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger:                                   gormLogger.Default.LogMode(gormLogger.Warn),
	})
	if err != nil {
		serviceLog.Error("Failed to connect to query log database", "error", err)
		return nil, fmt.Errorf("connect %s: %w", driver, err)
	}
	return &Service{db: db, log: serviceLog}, nil
}

func (s *Service) AutoMigrateAll() error {
	s.log.Info("Auto migrating query log tables...")
	if err := AutoMigrate(s.db); err != nil {
		s.log.Error("Auto migration failed for query log tables", "error", err)
		return err
	}
	return nil
}

func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&gdelt.QueryRun{})
}

func (s *Service) DB() *gorm.DB { return s.db }

func (s *Service) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
