package backup

import (
	"context"
	"time"
)

// FileInfo is the remote file metadata fetched without downloading
// content, used to compare timestamps before restoring.
type FileInfo struct {
	ID           string
	Name         string
	ModifiedTime time.Time
}

// FileService is the opaque cloud-file collaborator. Nothing beyond
// find-by-name, upload, and download is assumed of it.
type FileService interface {
	// FindByName returns the file's metadata, or nil when it does not exist.
	FindByName(ctx context.Context, name string) (*FileInfo, error)

	// Upload creates or replaces the named file.
	Upload(ctx context.Context, name, mimeType string, content []byte) error

	// Download returns the file's content.
	Download(ctx context.Context, name string) ([]byte, error)
}
