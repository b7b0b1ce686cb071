package ports

import (
	"context"

	"github.com/jmoiron/sqlx"

	"visa-advisory-portal/internal/model"
	"visa-advisory-portal/internal/model/requestresponse"
	"visa-advisory-portal/internal/security"
)

// DocumentRepository : SQL layer
type DocumentRepository interface {
	Create(ctx context.Context, exec sqlx.ExtContext, document *model.Document) error
	GetByID(ctx context.Context, exec sqlx.ExtContext, id string) (*model.Document, error)
	ListByUser(ctx context.Context, exec sqlx.ExtContext, userID string) ([]model.Document, error)
	ListBySlot(ctx context.Context, exec sqlx.ExtContext, userID, category, familyMemberName string) ([]model.Document, error)
	List(ctx context.Context, exec sqlx.ExtContext, filter model.DocumentFilter) ([]model.Document, error)
	UpdateReview(ctx context.Context, exec sqlx.ExtContext, id string, status model.DocumentStatus, notes string) (*model.Document, error)
	Delete(ctx context.Context, exec sqlx.ExtContext, id string) (string, error)
	BeginTX(ctx context.Context) (sqlx.ExtContext, func() error, func() error, error)
}

type DocumentService interface {
	Upload(ctx context.Context, request requestresponse.UploadDocumentRequest) (*model.Document, error)
	ListDocuments(ctx context.Context, userID string) ([]model.Document, error)
	DownloadURL(ctx context.Context, claims *security.Claims, documentID string) (string, error)
	DeleteDocument(ctx context.Context, userID, documentID string) error
	Review(ctx context.Context, reviewer *security.Claims, documentID string, request requestresponse.ReviewDocumentRequest) (*model.Document, error)
	ListAll(ctx context.Context, filter model.DocumentFilter) ([]model.Document, error)
	ListForClient(ctx context.Context, clientID string) ([]model.Document, error)
}
