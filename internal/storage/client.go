package storage

import (
	"context"
	"io"
	"time"
)

// FileInfo contains metadata about an object in remote cover storage.
type FileInfo struct {
	Name        string
	Path        string
	Size        int64
	ModifiedAt  time.Time
	ContentHash string // Provider-specific content hash (if available)
}

// Client defines the interface for remote cover storage operations.
// Implementations supply the last-modified timestamps that drive
// cache-busting cover identifiers in remote storage mode.
type Client interface {
	// GetMetadata retrieves object info without downloading content
	GetMetadata(ctx context.Context, path string) (*FileInfo, error)

	// Download retrieves the contents of an object
	Download(ctx context.Context, path string) (io.ReadCloser, error)

	// Exists checks if an object exists
	Exists(ctx context.Context, path string) (bool, error)
}
