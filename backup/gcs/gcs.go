/*
Package gcs implements the backup file service on Google Cloud Storage.

The backup lives as a single object in one bucket; "file name" maps to
the object name. Metadata lookups use object attributes so the conflict
check never downloads content.
*/
package gcs

import (
	"context"
	"errors"
	"fmt"
	"io"

	"cloud.google.com/go/storage"

	"github.com/statera/budget-engine/backup"
)

// Service is a backup.FileService over one GCS bucket.
type Service struct {
	client *storage.Client
	bucket string
}

// New dials GCS using ambient credentials (GOOGLE_APPLICATION_CREDENTIALS
// or the metadata server).
func New(ctx context.Context, bucket string) (*Service, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("creating storage client: %w", err)
	}
	return &Service{client: client, bucket: bucket}, nil
}

func (s *Service) Close() error {
	return s.client.Close()
}

func (s *Service) FindByName(ctx context.Context, name string) (*backup.FileInfo, error) {
	attrs, err := s.client.Bucket(s.bucket).Object(name).Attrs(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("fetching attrs of %s/%s: %w", s.bucket, name, err)
	}
	return &backup.FileInfo{
		ID:           fmt.Sprintf("gs://%s/%s", s.bucket, name),
		Name:         attrs.Name,
		ModifiedTime: attrs.Updated,
	}, nil
}

func (s *Service) Upload(ctx context.Context, name, mimeType string, content []byte) error {
	w := s.client.Bucket(s.bucket).Object(name).NewWriter(ctx)
	w.ContentType = mimeType
	if _, err := w.Write(content); err != nil {
		w.Close()
		return fmt.Errorf("writing %s/%s: %w", s.bucket, name, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("finalizing %s/%s: %w", s.bucket, name, err)
	}
	return nil
}

func (s *Service) Download(ctx context.Context, name string) ([]byte, error) {
	r, err := s.client.Bucket(s.bucket).Object(name).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("opening %s/%s: %w", s.bucket, name, err)
	}
	defer r.Close()

	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading %s/%s: %w", s.bucket, name, err)
	}
	return raw, nil
}
