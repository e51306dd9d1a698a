package port

import (
	"context"
	"io"
	"time"
)

// UploadInput encapsulates the parameters needed to upload an object.
type UploadInput struct {
	Bucket      string
	Key         string
	Body        io.Reader
	ContentType string
	Size        int64
}

// UploadOutput contains the result of a successful upload.
type UploadOutput struct {
	Location string
	ETag     string
}

// ObjectInfo describes a listed object.
type ObjectInfo struct {
	Key          string
	Size         int64
	LastModified time.Time
}

// ObjectStorage abstracts cloud object storage operations.
type ObjectStorage interface {
	Upload(ctx context.Context, input UploadInput) (*UploadOutput, error)
	Download(ctx context.Context, bucket, key string) ([]byte, error)
	List(ctx context.Context, bucket, prefix string) ([]ObjectInfo, error)
}
