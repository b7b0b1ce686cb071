package ports

import (
	"context"

	"visa-advisory-portal/internal/model"
)

// CacheRepository : Redis layer, a nil result with a nil error is a miss
type CacheRepository interface {
	GetCategories(ctx context.Context) ([]string, error)
	SetCategories(ctx context.Context, names []string) error
	DeleteCategories(ctx context.Context) error
	GetDocuments(ctx context.Context, userID string) ([]model.Document, error)
	SetDocuments(ctx context.Context, userID string, documents []model.Document) error
	DeleteDocuments(ctx context.Context, userID string) error
}
