package dropbox

import (
	"context"

	"github.com/pressureprofile/rma-starter/internal/config"
)

// StorageClient defines the operations a cloud-storage client should implement
type StorageClient interface {
	CopyFolder(ctx context.Context, source, destination string) (string, error)
	ListFolder(ctx context.Context, path string) ([]Entry, error)
	Download(ctx context.Context, path string) (string, error)
	UploadText(ctx context.Context, text, destination string) error
	SaveFromURL(ctx context.Context, sourceURL, destination string) error
	CreateSharedLink(ctx context.Context, path string) (string, error)
	CreateShortcut(ctx context.Context, url, filename string) error
	URLFromShortcut(ctx context.Context, filename string) (string, error)
	Search(ctx context.Context, query, scope string) ([]string, error)
}

// NewStorageClient creates a new storage client backed by the Dropbox API
func NewStorageClient(cfg *config.Config) StorageClient {
	return NewClient(cfg)
}
