package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"visa-advisory-portal/config"
	"visa-advisory-portal/internal/model"
)

const documentColumns = `id, user_id, category, original_name, storage_path, mime_type, size_bytes,
		sha256, status, admin_notes, family_member_name, created_at, updated_at, reviewed_at`

type DocumentRepository struct {
	*config.Database
}

func NewDocumentRepository(database *config.Database) *DocumentRepository {
	return &DocumentRepository{database}
}

// Create : saves a new document row
func (r *DocumentRepository) Create(ctx context.Context, exec sqlx.ExtContext, document *model.Document) error {
	query := `
		INSERT INTO documents (id, user_id, category, original_name, storage_path, mime_type, size_bytes,
		                       sha256, status, admin_notes, family_member_name)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at, updated_at
	`
	err := exec.QueryRowxContext(ctx, query,
		document.ID,
		document.UserID,
		document.Category,
		document.OriginalName,
		document.StoragePath,
		document.MimeType,
		document.SizeBytes,
		document.Sha256,
		document.Status,
		document.AdminNotes,
		document.FamilyMemberName,
	).Scan(&document.CreatedAt, &document.UpdatedAt)
	if err != nil {
		return mapError("[DocumentRepo] insert document", err)
	}
	return nil
}

func (r *DocumentRepository) GetByID(ctx context.Context, exec sqlx.ExtContext, id string) (*model.Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents WHERE id = $1`

	var document model.Document
	if err := sqlx.GetContext(ctx, exec, &document, query, id); err != nil {
		return nil, mapError("[DocumentRepo] get document", err)
	}
	return &document, nil
}

// ListByUser : newest first
func (r *DocumentRepository) ListByUser(ctx context.Context, exec sqlx.ExtContext, userID string) ([]model.Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents WHERE user_id = $1 ORDER BY created_at DESC`

	documents := []model.Document{}
	if err := sqlx.SelectContext(ctx, exec, &documents, query, userID); err != nil {
		return nil, mapError("[DocumentRepo] list user documents", err)
	}
	return documents, nil
}

// ListBySlot : documents of one user in one category for one family member ("" is the applicant)
func (r *DocumentRepository) ListBySlot(ctx context.Context, exec sqlx.ExtContext, userID, category, familyMemberName string) ([]model.Document, error) {
	query := `SELECT ` + documentColumns + `
		FROM documents
		WHERE user_id = $1 AND category = $2 AND family_member_name = $3
		ORDER BY created_at DESC`

	documents := []model.Document{}
	if err := sqlx.SelectContext(ctx, exec, &documents, query, userID, category, familyMemberName); err != nil {
		return nil, mapError("[DocumentRepo] list slot documents", err)
	}
	return documents, nil
}

// List : admin view with optional filters
func (r *DocumentRepository) List(ctx context.Context, exec sqlx.ExtContext, filter model.DocumentFilter) ([]model.Document, error) {
	var (
		where []string
		args  []any
	)
	if filter.Status != "" {
		args = append(args, filter.Status)
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.UserID != "" {
		args = append(args, filter.UserID)
		where = append(where, fmt.Sprintf("user_id = $%d", len(args)))
	}

	query := `SELECT ` + documentColumns + ` FROM documents`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY created_at DESC`
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	documents := []model.Document{}
	if err := sqlx.SelectContext(ctx, exec, &documents, query, args...); err != nil {
		return nil, mapError("[DocumentRepo] list documents", err)
	}
	return documents, nil
}

func (r *DocumentRepository) UpdateReview(ctx context.Context, exec sqlx.ExtContext, id string, status model.DocumentStatus, notes string) (*model.Document, error) {
	query := `
		UPDATE documents
		SET status = $2, admin_notes = $3, reviewed_at = NOW(), updated_at = NOW()
		WHERE id = $1
		RETURNING ` + documentColumns

	var document model.Document
	if err := sqlx.GetContext(ctx, exec, &document, query, id, status, notes); err != nil {
		return nil, mapError("[DocumentRepo] review document", err)
	}
	return &document, nil
}

// Delete : removes the row and returns the object key to clean up
func (r *DocumentRepository) Delete(ctx context.Context, exec sqlx.ExtContext, id string) (string, error) {
	query := `DELETE FROM documents WHERE id = $1 RETURNING storage_path`

	var storagePath string
	if err := sqlx.GetContext(ctx, exec, &storagePath, query, id); err != nil {
		return "", mapError("[DocumentRepo] delete document", err)
	}
	return storagePath, nil
}

func (r *DocumentRepository) BeginTX(ctx context.Context) (sqlx.ExtContext, func() error, func() error, error) {
	return beginTX(ctx, r.Database)
}
