package app

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/yungbote/gdelt-dashboard/internal/db"
	"github.com/yungbote/gdelt-dashboard/internal/modules/events"
	"github.com/yungbote/gdelt-dashboard/internal/observability"
	"github.com/yungbote/gdelt-dashboard/internal/platform/envutil"
	"github.com/yungbote/gdelt-dashboard/internal/platform/gcp"
	"github.com/yungbote/gdelt-dashboard/internal/platform/logger"
)

type WarehouseConfig struct {
	Table           string `yaml:"table"`
	Limit           int    `yaml:"limit"`
	ProjectID       string `yaml:"project_id"`
	CredentialsFile string `yaml:"credentials_file"`
	CredentialsJSON string `yaml:"-"`
}

type BudgetConfig struct {
	DailyLimit    int    `yaml:"daily_limit"`
	RedisAddr     string `yaml:"redis_addr"`
	RedisPassword string `yaml:"-"`
	RedisDB       int    `yaml:"redis_db"`
}

type Config struct {
	Port            string                    `yaml:"port"`
	AllowedOrigins  []string                  `yaml:"allowed_origins"`
	CacheTTLSeconds int                       `yaml:"cache_ttl_seconds"`
	Warehouse       WarehouseConfig           `yaml:"warehouse"`
	Budget          BudgetConfig              `yaml:"budget"`
	QueryLog        db.Config                 `yaml:"query_log"`
	Snapshots       gcp.SnapshotStorageConfig `yaml:"snapshots"`
	Otel            observability.OtelConfig  `yaml:"otel"`
	MetricsEnabled  bool                      `yaml:"metrics_enabled"`
}

func defaultConfig() Config {
	return Config{
		Port:            "8080",
		CacheTTLSeconds: int(events.DefaultCacheTTL / time.Second),
		Warehouse: WarehouseConfig{
			Table: events.DefaultTable,
			Limit: events.DefaultLimit,
		},
		QueryLog: db.Config{Driver: db.DriverSQLite, DSN: "query_runs.db"},
		Otel: observability.OtelConfig{
			ServiceName: "gdelt-dashboard",
			SampleRatio: 0.1,
		},
	}
}

func (c Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSeconds) * time.Second
}

func (c Config) QueryConfig() events.QueryConfig {
	return events.QueryConfig{Table: c.Warehouse.Table, Limit: c.Warehouse.Limit}
}

// TracingConfig tags the trace resource with the table and project served.
func (c Config) TracingConfig() observability.OtelConfig {
	out := c.Otel
	attrs := make(map[string]string, len(c.Otel.ResourceAttributes)+2)
	for k, v := range c.Otel.ResourceAttributes {
		attrs[k] = v
	}
	attrs["gdelt.table"] = c.Warehouse.Table
	if c.Warehouse.ProjectID != "" {
		attrs["gcp.project_id"] = c.Warehouse.ProjectID
	}
	out.ResourceAttributes = attrs
	return out
}

func (c Config) Addr() string {
	p := strings.TrimPrefix(strings.TrimSpace(c.Port), ":")
	return ":" + p
}

// LoadConfig layers defaults, the optional YAML file at DASHBOARD_CONFIG_PATH
// and environment variables, in that order.
func LoadConfig(log *logger.Logger) (Config, error) {
	cfg := defaultConfig()

	if path := strings.TrimSpace(os.Getenv("DASHBOARD_CONFIG_PATH")); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
		if log != nil {
			log.Info("Loaded config file", "path", path)
		}
	}

	cfg.Port = envutil.String("PORT", cfg.Port, log)
	cfg.AllowedOrigins = envutil.List("CORS_ALLOWED_ORIGINS", cfg.AllowedOrigins)
	cfg.CacheTTLSeconds = envutil.Int("CACHE_TTL_SECONDS", cfg.CacheTTLSeconds, log)

	cfg.Warehouse.Table = envutil.String("GDELT_TABLE", cfg.Warehouse.Table, log)
	cfg.Warehouse.Limit = envutil.Int("GDELT_QUERY_LIMIT", cfg.Warehouse.Limit, log)
	cfg.Warehouse.ProjectID = envutil.String("GCP_PROJECT_ID", cfg.Warehouse.ProjectID, log)
	cfg.Warehouse.CredentialsFile = envutil.String("GOOGLE_APPLICATION_CREDENTIALS", cfg.Warehouse.CredentialsFile, log)
	cfg.Warehouse.CredentialsJSON = envutil.String("GOOGLE_APPLICATION_CREDENTIALS_JSON", "", nil)

	cfg.Budget.DailyLimit = envutil.Int("QUERY_DAILY_BUDGET", cfg.Budget.DailyLimit, log)
	cfg.Budget.RedisAddr = envutil.String("REDIS_ADDR", cfg.Budget.RedisAddr, log)
	cfg.Budget.RedisPassword = envutil.String("REDIS_PASSWORD", cfg.Budget.RedisPassword, nil)
	cfg.Budget.RedisDB = envutil.Int("REDIS_DB", cfg.Budget.RedisDB, log)

	cfg.QueryLog.Driver = envutil.String("QUERY_LOG_DRIVER", cfg.QueryLog.Driver, log)
	cfg.QueryLog.DSN = envutil.String("QUERY_LOG_DSN", cfg.QueryLog.DSN, nil)

	cfg.Snapshots.Bucket = envutil.String("SNAPSHOT_GCS_BUCKET", cfg.Snapshots.Bucket, log)
	cfg.Snapshots.Mode = gcp.ObjectStorageMode(envutil.String("OBJECT_STORAGE_MODE", string(cfg.Snapshots.Mode), log))
	cfg.Snapshots.EmulatorHost = envutil.String("STORAGE_EMULATOR_HOST", cfg.Snapshots.EmulatorHost, log)

	cfg.Otel.Enabled = envutil.Bool("OTEL_ENABLED", cfg.Otel.Enabled)
	cfg.Otel.ServiceName = envutil.String("OTEL_SERVICE_NAME", cfg.Otel.ServiceName, log)
	cfg.Otel.Environment = envutil.String("OTEL_ENVIRONMENT", cfg.Otel.Environment, log)
	cfg.Otel.Endpoint = envutil.String("OTEL_EXPORTER_OTLP_ENDPOINT", cfg.Otel.Endpoint, log)
	cfg.Otel.Headers = envutil.String("OTEL_EXPORTER_OTLP_HEADERS", cfg.Otel.Headers, nil)
	cfg.Otel.Insecure = envutil.Bool("OTEL_EXPORTER_OTLP_INSECURE", cfg.Otel.Insecure)
	cfg.Otel.SampleRatio = envutil.Float("OTEL_SAMPLER_RATIO", cfg.Otel.SampleRatio, log)

	cfg.MetricsEnabled = envutil.Bool("METRICS_ENABLED", cfg.MetricsEnabled)

	cfg.normalize(log)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// normalize replaces out-of-range numbers with defaults.
func (c *Config) normalize(log *logger.Logger) {
	def := defaultConfig()
	if c.CacheTTLSeconds <= 0 {
		if log != nil {
			log.Warn("Non-positive cache TTL, using default", "provided", c.CacheTTLSeconds, "default", def.CacheTTLSeconds)
		}
		c.CacheTTLSeconds = def.CacheTTLSeconds
	}
	if c.Warehouse.Limit <= 0 {
		if log != nil {
			log.Warn("Non-positive query limit, using default", "provided", c.Warehouse.Limit, "default", def.Warehouse.Limit)
		}
		c.Warehouse.Limit = def.Warehouse.Limit
	}
	if strings.TrimSpace(c.Port) == "" {
		c.Port = def.Port
	}
	c.Snapshots = c.Snapshots.Normalize()
}

func (c Config) Validate() error {
	if err := c.QueryConfig().Validate(); err != nil {
		return err
	}
	if c.Snapshots.Enabled() {
		if err := c.Snapshots.Validate(); err != nil {
			return err
		}
	}
	return nil
}
