// Package transfer defines the client used by the iteration runner to talk to
// a remote file store, and its HTTP implementation.
package transfer

import (
	"context"
	"time"

	"filebench/internal/models"
)

const (
	OpUpload   = "upload"
	OpDownload = "download"
	OpDelete   = "delete"
	OpGenerate = "generate"

	// DefaultTimeout bounds download and delete calls.
	DefaultTimeout = 30 * time.Second
)

// Client performs single upload, download and delete exchanges against one
// remote endpoint. Every call is independent; nothing is retried.
type Client interface {
	Upload(ctx context.Context, filePath string, timeout time.Duration) (*models.UploadResult, error)
	Download(ctx context.Context, name string, chunked bool) (*models.DownloadResult, error)
	Delete(ctx context.Context, name string) (*models.DeleteResult, error)
}
