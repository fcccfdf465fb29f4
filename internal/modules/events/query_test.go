package events

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"cloud.google.com/go/civil"

	"github.com/yungbote/gdelt-dashboard/internal/domain/gdelt"
	"github.com/yungbote/gdelt-dashboard/internal/pkg/dbctx"
	"github.com/yungbote/gdelt-dashboard/internal/platform/logger"
)

type stubWarehouse struct {
	mu    sync.Mutex
	calls int
	sql   []string
	rows  []gdelt.EventRecord
	err   error
}

func (w *stubWarehouse) Query(_ context.Context, sql string) ([]gdelt.EventRecord, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.calls++
	w.sql = append(w.sql, sql)
	if w.err != nil {
		return nil, w.err
	}
	return w.rows, nil
}

type memRunStore struct {
	mu   sync.Mutex
	runs []*gdelt.QueryRun
}

func (s *memRunStore) Create(_ dbctx.Context, runs []*gdelt.QueryRun) ([]*gdelt.QueryRun, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs = append(s.runs, runs...)
	return runs, nil
}

func (s *memRunStore) ListRecent(_ dbctx.Context, limit int) ([]*gdelt.QueryRun, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*gdelt.QueryRun, 0, limit)
	for i := len(s.runs) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, s.runs[i])
	}
	return out, nil
}

type denyBudget struct{}

func (denyBudget) Allow(context.Context) (bool, error) { return false, nil }

func TestBuildQuery(t *testing.T) {
	sql := BuildQuery(civil.Date{Year: 2024, Month: time.January, Day: 5}, QueryConfig{})
	for _, want := range []string{
		"FROM `gdelt-bq.gdeltv2.events`",
		"WHERE SQLDATE = 20240105",
		"LIMIT 1000",
		"PARSE_DATE('%Y%m%d', CAST(SQLDATE AS STRING)) AS EventDate",
		"ActionGeo_FullName",
		"SOURCEURL",
	} {
		if !strings.Contains(sql, want) {
			t.Fatalf("query missing %q:\n%s", want, sql)
		}
	}
	sql = BuildQuery(civil.Date{Year: 2023, Month: time.December, Day: 31}, QueryConfig{Table: "proj.ds.events", Limit: 25})
	if !strings.Contains(sql, "FROM `proj.ds.events`") || !strings.Contains(sql, "LIMIT 25") || !strings.Contains(sql, "= 20231231") {
		t.Fatalf("custom config not applied:\n%s", sql)
	}
}

func TestQueryConfigValidate(t *testing.T) {
	if err := (QueryConfig{Table: DefaultTable, Limit: 1000}).Validate(); err != nil {
		t.Fatalf("Validate default: %v", err)
	}
	for _, bad := range []QueryConfig{
		{Table: "events", Limit: 10},
		{Table: "a.b`; DROP TABLE x; --", Limit: 10},
		{Table: DefaultTable, Limit: 0},
	} {
		if err := bad.Validate(); err == nil {
			t.Fatalf("Validate(%+v): expected error", bad)
		}
	}
}

func TestQueryClientFetchRecordsRun(t *testing.T) {
	wh := &stubWarehouse{rows: []gdelt.EventRecord{{EventCode: gdelt.Ptr("042")}, {}}}
	store := &memRunStore{}
	c := NewQueryClient(logger.Nop(), wh, QueryConfig{}, WithRunStore(store))

	rows, err := c.Fetch(context.Background(), testDate)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows: got=%d want=2", len(rows))
	}
	if len(store.runs) != 1 {
		t.Fatalf("runs: got=%d want=1", len(store.runs))
	}
	run := store.runs[0]
	if run.Status != gdelt.QueryRunStatusOK || run.RowCount != 2 || run.EventDate != "20240229" {
		t.Fatalf("run: got=%+v", run)
	}
}

func TestQueryClientFetchFailureIsEmpty(t *testing.T) {
	wh := &stubWarehouse{err: errors.New("quota exceeded")}
	store := &memRunStore{}
	c := NewQueryClient(logger.Nop(), wh, QueryConfig{}, WithRunStore(store))

	rows, err := c.Fetch(context.Background(), testDate)
	if rows != nil {
		t.Fatalf("rows: got=%v want=nil", rows)
	}
	if !errors.Is(err, ErrWarehouse) || Classify(err) != KindWarehouse {
		t.Fatalf("err: got=%v", err)
	}
	if !strings.Contains(err.Error(), "quota exceeded") {
		t.Fatalf("err lost cause: %v", err)
	}
	if wh.calls != 1 {
		t.Fatalf("warehouse calls: got=%d want=1 (no retries)", wh.calls)
	}
	if len(store.runs) != 1 || store.runs[0].Status != gdelt.QueryRunStatusError {
		t.Fatalf("runs: got=%+v", store.runs)
	}
}

func TestQueryClientBudgetBlocksCall(t *testing.T) {
	wh := &stubWarehouse{}
	c := NewQueryClient(logger.Nop(), wh, QueryConfig{}, WithBudget(denyBudget{}))
	_, err := c.Fetch(context.Background(), testDate)
	if Classify(err) != KindBudget {
		t.Fatalf("err: got=%v want budget", err)
	}
	if wh.calls != 0 {
		t.Fatalf("warehouse calls: got=%d want=0", wh.calls)
	}
}

func TestQueryClientNilWarehouse(t *testing.T) {
	c := NewQueryClient(logger.Nop(), nil, QueryConfig{})
	if _, err := c.Fetch(context.Background(), testDate); Classify(err) != KindCredentials {
		t.Fatalf("err: got=%v want credentials", err)
	}
}

func TestQueryClientTruncatesToLimit(t *testing.T) {
	wh := &stubWarehouse{rows: make([]gdelt.EventRecord, 5)}
	c := NewQueryClient(logger.Nop(), wh, QueryConfig{Limit: 3})
	rows, err := c.Fetch(context.Background(), testDate)
	if err != nil || len(rows) != 3 {
		t.Fatalf("Fetch: rows=%d err=%v", len(rows), err)
	}
}

func TestCachedQueryClientCallsWarehouseOncePerTTL(t *testing.T) {
	clock := newFakeClock()
	wh := &stubWarehouse{rows: []gdelt.EventRecord{{EventRootCode: gdelt.Ptr("1")}}}
	client := NewQueryClient(logger.Nop(), wh, QueryConfig{})
	cache := NewResultCache(client, time.Hour, WithClock(clock.Now))

	ctx := context.Background()
	first, err := cache.GetOrFetch(ctx, testDate)
	if err != nil {
		t.Fatalf("GetOrFetch: %v", err)
	}
	if first[0].EventRootDescription != "MAKE PUBLIC STATEMENT" {
		t.Fatalf("not enriched: %+v", first[0])
	}
	_, _ = cache.GetOrFetch(ctx, testDate)
	if wh.calls != 1 {
		t.Fatalf("warehouse calls within TTL: got=%d want=1", wh.calls)
	}
	clock.Advance(time.Hour + time.Second)
	_, _ = cache.GetOrFetch(ctx, testDate)
	if wh.calls != 2 {
		t.Fatalf("warehouse calls after TTL: got=%d want=2", wh.calls)
	}
}

func TestMemoryBudgetResetsDaily(t *testing.T) {
	clock := newFakeClock()
	b := NewMemoryBudget(2, clock.Now)
	ctx := context.Background()
	for i, want := range []bool{true, true, false} {
		got, _ := b.Allow(ctx)
		if got != want {
			t.Fatalf("Allow #%d: got=%v want=%v", i, got, want)
		}
	}
	clock.Advance(24 * time.Hour)
	if got, _ := b.Allow(ctx); !got {
		t.Fatalf("Allow after day rollover: want=true")
	}
	if got, _ := NewMemoryBudget(0, nil).Allow(ctx); !got {
		t.Fatalf("unlimited budget denied")
	}
}
