package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/gin-gonic/gin"

	"github.com/yungbote/gdelt-dashboard/internal/domain/gdelt"
	"github.com/yungbote/gdelt-dashboard/internal/http/response"
	"github.com/yungbote/gdelt-dashboard/internal/modules/events"
	"github.com/yungbote/gdelt-dashboard/internal/platform/logger"
)

type fakeWarehouse struct {
	mu    sync.Mutex
	calls int
	sql   string
	rows  []gdelt.EventRecord
	err   error
}

func (w *fakeWarehouse) Query(_ context.Context, sql string) ([]gdelt.EventRecord, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.calls++
	w.sql = sql
	return w.rows, w.err
}

type fakeSnapshots struct{ key string }

func (f *fakeSnapshots) Upload(_ context.Context, key, _ string, _ []byte) (string, error) {
	f.key = key
	return "gs://snaps/" + key, nil
}

var fixedNow = time.Date(2024, time.March, 2, 8, 0, 0, 0, time.UTC)

func newService(wh *fakeWarehouse, credsOK bool, opts ...events.ServiceOption) *events.Service {
	client := events.NewQueryClient(logger.Nop(), wh, events.QueryConfig{})
	cache := events.NewResultCache(client, time.Hour)
	creds := events.CredentialStatus{OK: credsOK}
	if !credsOK {
		creds.Message = "Credentials file not found at: /nope.json"
	}
	return events.NewService(logger.Nop(), cache, creds, opts...)
}

func newRouter(svc *events.Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	eh := NewEventsHandler(logger.Nop(), svc)
	eh.now = func() time.Time { return fixedNow }
	sh := NewSnapshotHandler(logger.Nop(), svc, nil)
	sh.now = eh.now
	r.GET("/healthcheck", NewHealthHandler().HealthCheck)
	r.GET("/api/status", NewStatusHandler(svc, StatusInfo{Table: events.DefaultTable, Limit: events.DefaultLimit}).Status)
	r.GET("/api/events", eh.Dashboard)
	r.GET("/api/events/summaries", eh.Summaries)
	r.GET("/api/query-runs", NewQueryRunHandler(svc).List)
	r.POST("/api/snapshots", sh.Create)
	return r
}

func do(r http.Handler, method, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	return rec
}

func records() []gdelt.EventRecord {
	return []gdelt.EventRecord{
		{Actor1CountryCode: gdelt.Ptr("USA"), Actor2CountryCode: gdelt.Ptr("CHN"), EventCode: gdelt.Ptr("043"), EventRootCode: gdelt.Ptr("04"), QuadClass: gdelt.Ptr[int64](1)},
		{Actor1CountryCode: gdelt.Ptr("RUS"), Actor2CountryCode: gdelt.Ptr("UKR"), EventRootCode: gdelt.Ptr("19"), QuadClass: gdelt.Ptr[int64](4)},
	}
}

func TestHealthCheck(t *testing.T) {
	rec := do(newRouter(newService(&fakeWarehouse{}, true)), http.MethodGet, "/healthcheck")
	if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Fatalf("healthcheck: code=%d body=%q", rec.Code, rec.Body.String())
	}
}

func TestDashboardDefaultsToYesterday(t *testing.T) {
	wh := &fakeWarehouse{rows: records()}
	rec := do(newRouter(newService(wh, true)), http.MethodGet, "/api/events?country=Russia+(RUS)")
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got=%d body=%s", rec.Code, rec.Body.String())
	}
	var d events.Dashboard
	if err := json.Unmarshal(rec.Body.Bytes(), &d); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if d.Date != "2024-03-01" || !strings.Contains(wh.sql, "SQLDATE = 20240301") {
		t.Fatalf("date: got=%q sql=%q", d.Date, wh.sql)
	}
	if d.Status != events.StatusOK || d.Showing != 1 || d.Metrics.TotalEvents != 2 {
		t.Fatalf("dashboard: status=%q showing=%d total=%d", d.Status, d.Showing, d.Metrics.TotalEvents)
	}
}

func TestDashboardInvalidDate(t *testing.T) {
	wh := &fakeWarehouse{}
	rec := do(newRouter(newService(wh, true)), http.MethodGet, "/api/events?date=2024-02-30")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status: got=%d want=%d", rec.Code, http.StatusBadRequest)
	}
	var env response.ErrorEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if env.Error.Code != "invalid_date" {
		t.Fatalf("code: got=%q want=invalid_date", env.Error.Code)
	}
	if wh.calls != 0 {
		t.Fatalf("warehouse calls: got=%d want=0", wh.calls)
	}
}

func TestDashboardWithoutCredentials(t *testing.T) {
	rec := do(newRouter(newService(&fakeWarehouse{}, false)), http.MethodGet, "/api/events?date=2024-03-01")
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status: got=%d want=%d", rec.Code, http.StatusServiceUnavailable)
	}
	var env response.ErrorEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if env.Error.Code != "credentials_missing" || len(env.Error.Details) != len(events.CredentialSetupSteps) {
		t.Fatalf("envelope: got=%+v", env.Error)
	}
	if !strings.Contains(env.Error.Message, "/nope.json") {
		t.Fatalf("message: got=%q", env.Error.Message)
	}
}

func TestDashboardWarehouseErrorIsNotFatal(t *testing.T) {
	wh := &fakeWarehouse{err: errors.New("quota exceeded")}
	rec := do(newRouter(newService(wh, true)), http.MethodGet, "/api/events?date=2024-03-01")
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got=%d want=200", rec.Code)
	}
	var d events.Dashboard
	if err := json.Unmarshal(rec.Body.Bytes(), &d); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if d.Status != events.StatusError || len(d.Events) != 0 {
		t.Fatalf("dashboard: got status=%q events=%d", d.Status, len(d.Events))
	}
}

func TestSummariesMarkdown(t *testing.T) {
	rec := do(newRouter(newService(&fakeWarehouse{rows: records()}, true)), http.MethodGet, "/api/events/summaries?date=2024-03-01&category=Verbal+Cooperation")
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got=%d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/markdown") {
		t.Fatalf("content type: got=%q", ct)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "**Event Type:** CONSULT (043)") || strings.Contains(body, "FIGHT") {
		t.Fatalf("body: %s", body)
	}
}

func TestSummariesWarehouseErrorIsNotFatal(t *testing.T) {
	wh := &fakeWarehouse{err: errors.New("quota exceeded")}
	rec := do(newRouter(newService(wh, true)), http.MethodGet, "/api/events/summaries?date=2024-03-01")
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got=%d want=200", rec.Code)
	}
	if got := rec.Header().Get(headerEventsStatus); got != events.StatusError {
		t.Fatalf("%s: got=%q want=%q", headerEventsStatus, got, events.StatusError)
	}
	if body := rec.Body.String(); !strings.Contains(body, "quota exceeded") {
		t.Fatalf("body: %s", body)
	}
}

func TestSummariesWithoutCredentials(t *testing.T) {
	rec := do(newRouter(newService(&fakeWarehouse{rows: records()}, false)), http.MethodGet, "/api/events/summaries?date=2024-03-01")
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status: got=%d want=%d", rec.Code, http.StatusServiceUnavailable)
	}
}

func TestStatus(t *testing.T) {
	rec := do(newRouter(newService(&fakeWarehouse{}, false)), http.MethodGet, "/api/status")
	var out statusResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Credentials.OK || len(out.SetupSteps) == 0 || out.CacheTTLSeconds != 3600 || out.Limit != 1000 {
		t.Fatalf("status: got=%+v", out)
	}
}

func TestSnapshotNotConfigured(t *testing.T) {
	rec := do(newRouter(newService(&fakeWarehouse{}, true)), http.MethodPost, "/api/snapshots?date=2024-03-01")
	if rec.Code != http.StatusNotImplemented {
		t.Fatalf("status: got=%d want=%d", rec.Code, http.StatusNotImplemented)
	}
}

func TestSnapshotCreated(t *testing.T) {
	snaps := &fakeSnapshots{}
	svc := newService(&fakeWarehouse{rows: records()}, true, events.WithSnapshots(snaps))
	rec := do(newRouter(svc), http.MethodPost, "/api/snapshots")
	if rec.Code != http.StatusCreated {
		t.Fatalf("status: got=%d body=%s", rec.Code, rec.Body.String())
	}
	var out struct {
		Date string `json:"date"`
		URI  string `json:"uri"`
		Rows int    `json:"rows"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Date != "2024-03-01" || out.URI != "gs://snaps/gdelt/events/20240301.ndjson" || out.Rows != 2 {
		t.Fatalf("got=%+v", out)
	}
}

func TestQueryRunsWithoutStore(t *testing.T) {
	rec := do(newRouter(newService(&fakeWarehouse{}, true)), http.MethodGet, "/api/query-runs?limit=5")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"runs":[]`) {
		t.Fatalf("got code=%d body=%s", rec.Code, rec.Body.String())
	}
}

func TestDefaultDate(t *testing.T) {
	late := time.Date(2024, time.January, 1, 1, 0, 0, 0, time.FixedZone("X", 5*3600))
	if got := DefaultDate(late); got != (civil.Date{Year: 2023, Month: time.December, Day: 30}) {
		t.Fatalf("DefaultDate: got=%v", got)
	}
}
