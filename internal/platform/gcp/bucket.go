package gcp

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"google.golang.org/api/option"

	"github.com/yungbote/gdelt-dashboard/internal/platform/logger"
)

const uploadTimeout = 2 * time.Minute

// SnapshotStore writes snapshot objects to a single GCS bucket.
type SnapshotStore struct {
	log    *logger.Logger
	client *storage.Client
	bucket string
}

func NewSnapshotStore(ctx context.Context, log *logger.Logger, cfg SnapshotStorageConfig, creds []option.ClientOption) (*SnapshotStore, error) {
	cfg = cfg.Normalize()
	if !cfg.Enabled() {
		return nil, fmt.Errorf("snapshot bucket not configured")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate object storage config: %w", err)
	}
	client, err := newStorageClientForMode(ctx, cfg, creds)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}
	s := &SnapshotStore{
		log:    log.With("service", "SnapshotStore"),
		client: client,
		bucket: cfg.Bucket,
	}
	s.log.Info("Object storage initialized",
		"mode", cfg.Mode,
		"emulator_host", cfg.EmulatorHost,
		"bucket", cfg.Bucket,
	)
	return s, nil
}

func newStorageClientForMode(ctx context.Context, cfg SnapshotStorageConfig, creds []option.ClientOption) (*storage.Client, error) {
	if cfg.IsEmulatorMode() {
		_ = os.Setenv("STORAGE_EMULATOR_HOST", cfg.EmulatorHost)
		return storage.NewClient(ctx, option.WithoutAuthentication())
	}
	opts := append([]option.ClientOption{}, creds...)
	opts = append(opts, option.WithScopes(storage.ScopeReadWrite))
	return storage.NewClient(ctx, opts...)
}

// Upload writes body under key and returns the gs:// URI of the object.
func (s *SnapshotStore) Upload(ctx context.Context, key, contentType string, body []byte) (uri string, err error) {
	key = strings.TrimLeft(strings.TrimSpace(key), "/")
	if key == "" {
		return "", fmt.Errorf("empty object key")
	}
	ctx, span := otel.Tracer("gdelt-dashboard/gcs").Start(ctx, "snapshot.upload")
	span.SetAttributes(
		attribute.String("gcs.bucket", s.bucket),
		attribute.String("gcs.object", key),
		attribute.Int("gcs.bytes", len(body)),
	)
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "upload failed")
		}
		span.End()
	}()

	ctx, cancel := context.WithTimeout(ctx, uploadTimeout)
	defer cancel()

	w := s.client.Bucket(s.bucket).Object(key).NewWriter(ctx)
	w.ContentType = contentType
	if _, err := io.Copy(w, bytes.NewReader(body)); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("failed to write data to GCS: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("failed to close GCS writer: %w", err)
	}
	uri = ObjectURI(s.bucket, key)
	s.log.Debug("object uploaded", "uri", uri, "bytes", len(body))
	return uri, nil
}

func (s *SnapshotStore) Close() error {
	if s == nil || s.client == nil {
		return nil
	}
	return s.client.Close()
}

func ObjectURI(bucket, key string) string {
	return fmt.Sprintf("gs://%s/%s", bucket, strings.TrimLeft(key, "/"))
}
