package events

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/yungbote/gdelt-dashboard/internal/domain/gdelt"
	"github.com/yungbote/gdelt-dashboard/internal/pkg/dbctx"
	"github.com/yungbote/gdelt-dashboard/internal/platform/logger"
)

const (
	DefaultTable = "gdelt-bq.gdeltv2.events"
	DefaultLimit = 1000
)

var tableIdentPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+(\.[A-Za-z0-9_-]+){1,2}$`)

// Warehouse runs a read-only SQL statement and materializes event rows.
type Warehouse interface {
	Query(ctx context.Context, sql string) ([]gdelt.EventRecord, error)
}

// QueryBudget gates outbound warehouse calls. Allow consumes one unit.
type QueryBudget interface {
	Allow(ctx context.Context) (bool, error)
}

// RunStore persists the audit trail of warehouse calls.
type RunStore interface {
	Create(dbc dbctx.Context, runs []*gdelt.QueryRun) ([]*gdelt.QueryRun, error)
	ListRecent(dbc dbctx.Context, limit int) ([]*gdelt.QueryRun, error)
}

type QueryConfig struct {
	Table string
	Limit int
}

func (c QueryConfig) Validate() error {
	if !tableIdentPattern.MatchString(c.Table) {
		return fmt.Errorf("invalid warehouse table identifier %q", c.Table)
	}
	if c.Limit <= 0 {
		return fmt.Errorf("query limit must be positive, got %d", c.Limit)
	}
	return nil
}

func (c QueryConfig) withDefaults() QueryConfig {
	if strings.TrimSpace(c.Table) == "" {
		c.Table = DefaultTable
	}
	if c.Limit <= 0 {
		c.Limit = DefaultLimit
	}
	return c
}

// DateKey renders a date the way GDELT's SQLDATE column stores it.
func DateKey(date civil.Date) string {
	return fmt.Sprintf("%04d%02d%02d", date.Year, int(date.Month), date.Day)
}

func BuildQuery(date civil.Date, cfg QueryConfig) string {
	cfg = cfg.withDefaults()
	return fmt.Sprintf(`SELECT
  PARSE_DATE('%%Y%%m%%d', CAST(SQLDATE AS STRING)) AS EventDate,
  Actor1CountryCode,
  Actor2CountryCode,
  EventCode,
  GoldsteinScale,
  NumMentions,
  NumSources,
  NumArticles,
  AvgTone,
  EventRootCode,
  QuadClass,
  Actor1Name,
  Actor2Name,
  ActionGeo_FullName,
  SOURCEURL
FROM `+"`%s`"+`
WHERE SQLDATE = %s
LIMIT %d`, cfg.Table, DateKey(date), cfg.Limit)
}

type QueryClient struct {
	log       *logger.Logger
	warehouse Warehouse
	cfg       QueryConfig
	budget    QueryBudget
	runs      RunStore
	observer  Observer
	now       func() time.Time
}

type QueryClientOption func(*QueryClient)

func WithBudget(b QueryBudget) QueryClientOption {
	return func(c *QueryClient) { c.budget = b }
}

func WithRunStore(s RunStore) QueryClientOption {
	return func(c *QueryClient) { c.runs = s }
}

func WithObserver(o Observer) QueryClientOption {
	return func(c *QueryClient) {
		if o != nil {
			c.observer = o
		}
	}
}

func NewQueryClient(log *logger.Logger, wh Warehouse, cfg QueryConfig, opts ...QueryClientOption) *QueryClient {
	c := &QueryClient{
		log:       log.With("service", "QueryClient"),
		warehouse: wh,
		cfg:       cfg.withDefaults(),
		observer:  nopObserver{},
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *QueryClient) Config() QueryConfig { return c.cfg }

// Fetch issues exactly one warehouse call for date. On failure the rows are
// nil and the error carries the failure kind; callers degrade to "no data".
func (c *QueryClient) Fetch(ctx context.Context, date civil.Date) ([]gdelt.EventRecord, error) {
	key := DateKey(date)
	ctx, span := otel.Tracer("gdelt-dashboard/events").Start(ctx, "warehouse.query")
	span.SetAttributes(
		attribute.String("gdelt.date", key),
		attribute.String("gdelt.table", c.cfg.Table),
		attribute.Int("gdelt.limit", c.cfg.Limit),
	)
	defer span.End()

	if c.warehouse == nil {
		span.SetStatus(codes.Error, "no warehouse")
		return nil, ErrCredentialsMissing
	}

	if c.budget != nil {
		ok, err := c.budget.Allow(ctx)
		if err != nil {
			c.log.Warn("query budget check failed, allowing call", "date", key, "error", err)
		} else if !ok {
			c.record(ctx, key, gdelt.QueryRunStatusBudgetExceeded, 0, 0, ErrBudgetExceeded)
			c.observer.ObserveWarehouse(gdelt.QueryRunStatusBudgetExceeded, 0, 0)
			span.SetStatus(codes.Error, "budget exceeded")
			return nil, ErrBudgetExceeded
		}
	}

	start := c.now()
	rows, err := c.warehouse.Query(ctx, BuildQuery(date, c.cfg))
	dur := c.now().Sub(start)
	if err != nil {
		c.log.Error("warehouse query failed", "date", key, "duration_ms", dur.Milliseconds(), "error", err)
		c.record(ctx, key, gdelt.QueryRunStatusError, 0, dur, err)
		c.observer.ObserveWarehouse(gdelt.QueryRunStatusError, 0, dur)
		span.RecordError(err)
		span.SetStatus(codes.Error, "query failed")
		return nil, fmt.Errorf("%w: %w", ErrWarehouse, err)
	}

	status := gdelt.QueryRunStatusOK
	if len(rows) == 0 {
		status = gdelt.QueryRunStatusEmpty
	}
	if len(rows) > c.cfg.Limit {
		rows = rows[:c.cfg.Limit]
	}
	c.log.Info("warehouse query finished", "date", key, "rows", len(rows), "duration_ms", dur.Milliseconds())
	c.record(ctx, key, status, len(rows), dur, nil)
	c.observer.ObserveWarehouse(status, len(rows), dur)
	span.SetAttributes(attribute.Int("gdelt.rows", len(rows)))
	return rows, nil
}

// Load is the cache loader: one fetch followed by enrichment.
func (c *QueryClient) Load(ctx context.Context, date civil.Date) ([]gdelt.EnrichedEvent, error) {
	rows, err := c.Fetch(ctx, date)
	if err != nil {
		return nil, err
	}
	return Enrich(rows), nil
}

func (c *QueryClient) record(ctx context.Context, key, status string, rows int, dur time.Duration, cause error) {
	if c.runs == nil {
		return
	}
	run := &gdelt.QueryRun{
		ID:         uuid.New(),
		EventDate:  key,
		Status:     status,
		RowCount:   rows,
		DurationMS: dur.Milliseconds(),
		CreatedAt:  c.now().UTC(),
	}
	if cause != nil {
		run.Error = cause.Error()
	}
	// The audit trail never fails the request it describes.
	if _, err := c.runs.Create(dbctx.Detached(ctx), []*gdelt.QueryRun{run}); err != nil {
		c.log.Warn("failed to record query run", "date", key, "error", err)
	}
}
