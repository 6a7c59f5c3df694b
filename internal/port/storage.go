package port

import (
	"context"
	"io"

	"chunkrelay/internal/domain"
)

// ObjectReader is a streamed object returned by GetObject. The caller owns
// Body and must close it.
type ObjectReader struct {
	Body        io.ReadCloser
	Size        int64
	ContentType string
}

// ObjectStorage abstracts the object-store capability set the relay needs.
// Any backend offering these primitives (S3, MinIO, localstack) can sit
// behind it.
type ObjectStorage interface {
	// PutObject stores a whole object in one shot, overwriting any existing
	// object at key, and returns the store's ETag.
	PutObject(ctx context.Context, key string, body io.Reader, size int64, contentType string) (string, error)

	// CreateMultipart allocates a new multipart session for key and returns
	// the backend-assigned upload ID.
	CreateMultipart(ctx context.Context, key, contentType string) (string, error)

	// UploadPart stores one part. Idempotent per (uploadID, partNumber):
	// re-uploading a number overwrites the prior attempt.
	UploadPart(ctx context.Context, key, uploadID string, partNumber int, body io.Reader, size int64) (string, error)

	// CompleteMultipart commits the session. Parts are sorted by part number
	// before submission; the backend rejects out-of-order lists.
	CompleteMultipart(ctx context.Context, key, uploadID string, parts []domain.CompletedPart) error

	// AbortMultipart releases all uploaded parts for the session. Aborting a
	// session that is already gone is a non-fatal no-op.
	AbortMultipart(ctx context.Context, key, uploadID string) error

	GetObject(ctx context.Context, key string) (*ObjectReader, error)
	ListObjects(ctx context.Context) ([]domain.ObjectInfo, error)
}
