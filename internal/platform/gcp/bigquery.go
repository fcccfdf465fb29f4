package gcp

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"github.com/yungbote/gdelt-dashboard/internal/domain/gdelt"
	"github.com/yungbote/gdelt-dashboard/internal/platform/logger"
)

// BigQueryWarehouse runs event queries against BigQuery. It performs no
// retries; each Query is exactly one job.
type BigQueryWarehouse struct {
	log    *logger.Logger
	client *bigquery.Client
}

// NewBigQueryWarehouse dials BigQuery. An empty projectID lets the client
// detect it from the credentials.
func NewBigQueryWarehouse(ctx context.Context, log *logger.Logger, projectID string, opts ...option.ClientOption) (*BigQueryWarehouse, error) {
	if projectID == "" {
		projectID = bigquery.DetectProjectID
	}
	client, err := bigquery.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("create bigquery client: %w", err)
	}
	w := &BigQueryWarehouse{
		log:    log.With("service", "BigQueryWarehouse"),
		client: client,
	}
	w.log.Info("BigQuery client initialized", "project", client.Project())
	return w, nil
}

func (w *BigQueryWarehouse) Query(ctx context.Context, sql string) ([]gdelt.EventRecord, error) {
	it, err := w.client.Query(sql).Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("run query: %w", err)
	}
	out := make([]gdelt.EventRecord, 0, it.TotalRows)
	for {
		var row eventRow
		err := it.Next(&row)
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read rows: %w", err)
		}
		out = append(out, row.rec)
	}
	return out, nil
}

func (w *BigQueryWarehouse) Close() error {
	if w == nil || w.client == nil {
		return nil
	}
	return w.client.Close()
}
