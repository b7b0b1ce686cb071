package ports

import (
	"context"
	"time"
)

// ObjectStorage : blob store behind uploaded documents
type ObjectStorage interface {
	PutObject(ctx context.Context, key string, body []byte, contentType string) error
	// PresignDownload : link that saves the object under fileName
	PresignDownload(ctx context.Context, key, fileName string, expire time.Duration) (string, error)
	DeleteObject(ctx context.Context, key string) error
}
