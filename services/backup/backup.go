package backup

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"time"

	"cloud.google.com/go/storage"
	"github.com/rs/zerolog/log"

	"stoneTracker/clients/gcp"
	"stoneTracker/services/collection"
	"stoneTracker/services/roster"
	"stoneTracker/services/user"
)

// Uploader stores one exported object.
type Uploader interface {
	Upload(ctx context.Context, objectName, contentType string, r io.Reader) error
}

type bucketUploader struct {
	client *storage.Client
	bucket string
}

func NewBucketUploader(client *storage.Client, bucket string) Uploader {
	return &bucketUploader{client: client, bucket: bucket}
}

func (b *bucketUploader) Upload(ctx context.Context, objectName, contentType string, r io.Reader) error {
	return gcp.UploadObject(ctx, b.client, b.bucket, objectName, contentType, r)
}

// Export is the JSON body written for each roster export.
type Export struct {
	ExportedAt time.Time          `json:"exportedAt"`
	Version    uint64             `json:"version"`
	Summary    collection.Summary `json:"summary"`
	Users      []user.User        `json:"users"`
}

// Service periodically copies the roster to object storage.
type Service interface {
	// Export writes snap unless its batch was already exported. It returns the object
	// name, or "" when nothing was written.
	Export(ctx context.Context, snap roster.Snapshot) (string, error)
	// Run exports the roster returned by source every interval until ctx ends.
	Run(ctx context.Context, source func() roster.Snapshot, interval time.Duration)
}

type service struct {
	uploader Uploader
	now      func() time.Time

	mu sync.Mutex
	// lastBatch is the UpdatedAt of the last exported snapshot. Only a new
	// feed batch moves it; state changes such as feed errors do not.
	lastBatch time.Time
}

var _ Service = (*service)(nil)

func NewService(uploader Uploader) Service {
	return &service{uploader: uploader, now: time.Now}
}

func (s *service) Export(ctx context.Context, snap roster.Snapshot) (string, error) {
	if snap.UpdatedAt.IsZero() {
		// No batch has arrived yet.
		return "", nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if snap.UpdatedAt.Equal(s.lastBatch) {
		return "", nil
	}

	now := s.now().UTC()
	body, err := json.Marshal(Export{
		ExportedAt: now,
		Version:    snap.Version,
		Summary:    collection.Summarize(snap.Users),
		Users:      snap.Users,
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode roster export: %w", err)
	}
	name := fmt.Sprintf("roster/%s.json", now.Format(time.RFC3339))
	if err := s.uploader.Upload(ctx, name, "application/json", bytes.NewReader(body)); err != nil {
		return "", fmt.Errorf("failed to upload roster export: %w", err)
	}
	s.lastBatch = snap.UpdatedAt
	log.Info().Str("object", name).Int("users", len(snap.Users)).Msg("roster exported")
	return name, nil
}

func (s *service) Run(ctx context.Context, source func() roster.Snapshot, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.Export(ctx, source()); err != nil {
				log.Error().Err(err).Msg("roster export failed")
			}
		}
	}
}
