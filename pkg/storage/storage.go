package storage

import (
	"context"
	"io"
)

// FileStorage defines the contract for upload backends.
type FileStorage interface {
	// Upload stores the content from r and returns a URL that can be served to clients.
	// folder is an optional logical folder (e.g. "thumbnails").
	Upload(ctx context.Context, r io.Reader, folder, fileName string) (string, error)
	// Delete removes a previously uploaded file by its URL.
	Delete(ctx context.Context, fileURL string) error
}
