package events

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"cloud.google.com/go/civil"

	"github.com/yungbote/gdelt-dashboard/internal/domain/gdelt"
	"github.com/yungbote/gdelt-dashboard/internal/pkg/dbctx"
	"github.com/yungbote/gdelt-dashboard/internal/platform/logger"
)

const (
	StatusOK    = "ok"
	StatusEmpty = "empty"
	StatusError = "error"

	MessageNoData = "No data available for the selected date."
)

// CredentialSetupSteps is shown whenever querying is blocked on credentials.
var CredentialSetupSteps = []string{
	"Go to Google Cloud Console",
	"Create a new project or select an existing one",
	"Enable the BigQuery API",
	"Create a service account and download the JSON key file",
	"Point GOOGLE_APPLICATION_CREDENTIALS at the key file",
}

type CredentialStatus struct {
	OK      bool   `json:"ok"`
	Source  string `json:"source,omitempty"`
	Message string `json:"message,omitempty"`
}

// SnapshotWriter stores an encoded snapshot under key and returns its URI.
type SnapshotWriter interface {
	Upload(ctx context.Context, key, contentType string, body []byte) (string, error)
}

type DashboardRequest struct {
	Date    civil.Date
	Filters Filters
	Refresh bool
}

type Dashboard struct {
	Date         string                `json:"date"`
	Status       string                `json:"status"`
	Message      string                `json:"message,omitempty"`
	Metrics      Metrics               `json:"metrics"`
	EventTypes   []LabelCount          `json:"event_type_distribution"`
	TopCountries []CountryCount        `json:"top_countries"`
	Options      FilterOptions         `json:"filter_options"`
	Filters      Filters               `json:"filters"`
	Showing      int                   `json:"showing"`
	Events       []gdelt.EnrichedEvent `json:"events"`
}

type Service struct {
	log       *logger.Logger
	cache     *ResultCache
	creds     CredentialStatus
	runs      RunStore
	snapshots SnapshotWriter
}

type ServiceOption func(*Service)

func WithRuns(r RunStore) ServiceOption {
	return func(s *Service) { s.runs = r }
}

func WithSnapshots(w SnapshotWriter) ServiceOption {
	return func(s *Service) { s.snapshots = w }
}

func NewService(log *logger.Logger, cache *ResultCache, creds CredentialStatus, opts ...ServiceOption) *Service {
	s := &Service{
		log:   log.With("service", "EventsService"),
		cache: cache,
		creds: creds,
	}
	for _, opt := range opts {
		opt(s)
	}
	if !creds.OK {
		s.log.Error("querying disabled: credentials unavailable", "reason", creds.Message)
	}
	return s
}

func (s *Service) Credentials() CredentialStatus { return s.creds }

func (s *Service) CacheTTL() time.Duration { return s.cache.TTL() }

func (s *Service) SnapshotsEnabled() bool { return s.snapshots != nil }

// rows returns the enriched table for date, or nil plus the cause of "no data".
func (s *Service) rows(ctx context.Context, date civil.Date, refresh bool) ([]gdelt.EnrichedEvent, error) {
	if !s.creds.OK {
		return nil, ErrCredentialsMissing
	}
	if refresh {
		s.cache.Invalidate(date)
	}
	return s.cache.GetOrFetch(ctx, date)
}

// Dashboard only returns an error when credentials block querying; warehouse
// failures degrade to an empty dashboard with StatusError.
func (s *Service) Dashboard(ctx context.Context, req DashboardRequest) (*Dashboard, error) {
	filters := req.Filters.Normalize()
	out := &Dashboard{
		Date:         req.Date.String(),
		Filters:      filters,
		EventTypes:   []LabelCount{},
		TopCountries: []CountryCount{},
		Options:      BuildFilterOptions(nil),
		Events:       []gdelt.EnrichedEvent{},
	}

	rows, err := s.rows(ctx, req.Date, req.Refresh)
	if err != nil {
		msg, ok := failureMessage(err)
		if !ok {
			return nil, err
		}
		out.Status = StatusError
		out.Message = msg
		return out, nil
	}

	if len(rows) == 0 {
		out.Status = StatusEmpty
		out.Message = MessageNoData
		return out, nil
	}

	filtered := Filter(rows, filters)
	out.Status = StatusOK
	out.Metrics = ComputeMetrics(rows)
	out.EventTypes = EventTypeDistribution(rows)
	out.TopCountries = TopCountries(rows, TopCountriesLimit)
	out.Options = BuildFilterOptions(rows)
	out.Showing = len(filtered)
	out.Events = filtered
	out.Message = fmt.Sprintf("Showing %d events matching your filters", len(filtered))
	return out, nil
}

// failureMessage turns a budget or warehouse failure into the note shown in
// place of data. Other errors, credentials included, are not degradable.
func failureMessage(err error) (string, bool) {
	switch Classify(err) {
	case KindBudget:
		return "Daily query budget reached; try again tomorrow.", true
	case KindWarehouse:
		return fmt.Sprintf("Error fetching data: %v", err), true
	default:
		return "", false
	}
}

type SummaryReport struct {
	Status  string
	Message string
	Blocks  []string
}

// Summaries renders the filtered rows of a date as markdown blocks. Like
// Dashboard it only errors when credentials block querying; budget and
// warehouse failures come back as StatusError with a message and no blocks.
func (s *Service) Summaries(ctx context.Context, req DashboardRequest) (*SummaryReport, error) {
	rows, err := s.rows(ctx, req.Date, req.Refresh)
	if err != nil {
		msg, ok := failureMessage(err)
		if !ok {
			return nil, err
		}
		return &SummaryReport{Status: StatusError, Message: msg, Blocks: []string{}}, nil
	}
	if len(rows) == 0 {
		return &SummaryReport{Status: StatusEmpty, Message: MessageNoData, Blocks: []string{}}, nil
	}
	return &SummaryReport{Status: StatusOK, Blocks: FormatSummaries(Filter(rows, req.Filters))}, nil
}

// Snapshot writes the enriched rows of a date as NDJSON to object storage.
func (s *Service) Snapshot(ctx context.Context, date civil.Date) (string, int, error) {
	if s.snapshots == nil {
		return "", 0, fmt.Errorf("snapshot storage not configured")
	}
	rows, err := s.rows(ctx, date, false)
	if err != nil {
		return "", 0, err
	}
	body, err := EncodeNDJSON(rows)
	if err != nil {
		return "", 0, fmt.Errorf("encode snapshot: %w", err)
	}
	uri, err := s.snapshots.Upload(ctx, SnapshotKey(date), "application/x-ndjson", body)
	if err != nil {
		return "", 0, fmt.Errorf("upload snapshot: %w", err)
	}
	s.log.Info("snapshot written", "date", DateKey(date), "rows", len(rows), "uri", uri)
	return uri, len(rows), nil
}

func (s *Service) RecentRuns(ctx context.Context, limit int) ([]*gdelt.QueryRun, error) {
	if s.runs == nil {
		return []*gdelt.QueryRun{}, nil
	}
	if limit <= 0 || limit > 200 {
		limit = 20
	}
	return s.runs.ListRecent(dbctx.Context{Ctx: ctx}, limit)
}

func SnapshotKey(date civil.Date) string {
	return fmt.Sprintf("gdelt/events/%s.ndjson", DateKey(date))
}

func EncodeNDJSON(rows []gdelt.EnrichedEvent) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for i := range rows {
		if err := enc.Encode(&rows[i]); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}
