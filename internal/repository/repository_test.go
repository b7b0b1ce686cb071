package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"visa-advisory-portal/config"
	"visa-advisory-portal/internal/apperror"
	"visa-advisory-portal/internal/model"
)

func newMockDB(t *testing.T) (*config.Database, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return &config.Database{DB: sqlx.NewDb(db, "sqlmock")}, mock
}

var documentRowColumns = []string{
	"id", "user_id", "category", "original_name", "storage_path", "mime_type", "size_bytes",
	"sha256", "status", "admin_notes", "family_member_name", "created_at", "updated_at", "reviewed_at",
}

func TestDocumentRepository_Create(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewDocumentRepository(db)
	now := time.Now()

	doc := &model.Document{
		ID: "doc-1", UserID: "user-1", Category: "Pasaporte", OriginalName: "p.pdf",
		StoragePath: "users/user-1/documents/doc-1-p.pdf", MimeType: "application/pdf",
		SizeBytes: 1024, Status: model.DocumentPending,
	}

	mock.ExpectQuery(`INSERT INTO documents`).
		WithArgs(doc.ID, doc.UserID, doc.Category, doc.OriginalName, doc.StoragePath, doc.MimeType,
			doc.SizeBytes, doc.Sha256, doc.Status, doc.AdminNotes, doc.FamilyMemberName).
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))

	require.NoError(t, repo.Create(context.Background(), db, doc))
	assert.Equal(t, now, doc.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDocumentRepository_ListBySlot(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewDocumentRepository(db)
	now := time.Now()

	rows := sqlmock.NewRows(documentRowColumns).
		AddRow("doc-2", "user-1", "DNI", "b.png", "k2", "image/png", 10, "", "pending", "", "", now, now, nil).
		AddRow("doc-1", "user-1", "DNI", "a.png", "k1", "image/png", 10, "", "rejected", "blurry", "", now, now, now)
	mock.ExpectQuery(`FROM documents\s+WHERE user_id = \$1 AND category = \$2 AND family_member_name = \$3`).
		WithArgs("user-1", "DNI", "").
		WillReturnRows(rows)

	docs, err := repo.ListBySlot(context.Background(), db, "user-1", "DNI", "")
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, model.DocumentRejected, docs[1].Status)
	assert.Equal(t, "blurry", docs[1].AdminNotes)
	assert.NotNil(t, docs[1].ReviewedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDocumentRepository_ListFilters(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewDocumentRepository(db)

	mock.ExpectQuery(`WHERE status = \$1 AND user_id = \$2 ORDER BY created_at DESC LIMIT \$3`).
		WithArgs(model.DocumentPending, "user-1", 5).
		WillReturnRows(sqlmock.NewRows(documentRowColumns))

	docs, err := repo.List(context.Background(), db, model.DocumentFilter{Status: model.DocumentPending, UserID: "user-1", Limit: 5})
	require.NoError(t, err)
	assert.Empty(t, docs)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDocumentRepository_GetByIDNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewDocumentRepository(db)

	mock.ExpectQuery(`FROM documents WHERE id = \$1`).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows(documentRowColumns))

	_, err := repo.GetByID(context.Background(), db, "missing")
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestDocumentRepository_Delete(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewDocumentRepository(db)

	mock.ExpectQuery(`DELETE FROM documents WHERE id = \$1 RETURNING storage_path`).
		WithArgs("doc-1").
		WillReturnRows(sqlmock.NewRows([]string{"storage_path"}).AddRow("users/u/documents/doc-1"))

	path, err := repo.Delete(context.Background(), db, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, "users/u/documents/doc-1", path)
}

func TestUserRepository_CreateDuplicateEmail(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)

	mock.ExpectQuery(`INSERT INTO users`).
		WillReturnError(&pq.Error{Code: "23505", Message: "duplicate key value"})

	_, err := repo.CreateUser(context.Background(), db, &model.User{ID: "u", Email: "a@b.c", Role: model.RoleCustomer})
	assert.ErrorIs(t, err, apperror.ErrConflict)
}

func TestCategoryRepository_ListActiveNames(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCategoryRepository(db)

	mock.ExpectQuery(`SELECT name FROM categories WHERE is_active ORDER BY display_order, name`).
		WillReturnRows(sqlmock.NewRows([]string{"name"}).AddRow("Pasaporte").AddRow("DNI"))

	names, err := repo.ListActiveNames(context.Background(), db)
	require.NoError(t, err)
	assert.Equal(t, []string{"Pasaporte", "DNI"}, names)
}

func TestFormRepository_GetByUserScansLists(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewFormRepository(db)
	now := time.Now()

	columns := []string{
		"id", "user_id", "surname", "given_names", "birth_date", "nationality", "passport_number",
		"education_level", "institution", "occupation", "company", "father_name", "mother_name", "additional_info",
		"education", "work_history", "travel_history", "relatives_abroad", "family_members",
		"is_completed", "completed_at", "created_at", "updated_at",
	}
	mock.ExpectQuery(`FROM intake_forms WHERE user_id = \$1`).
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows(columns).AddRow(
			"form-1", "user-1", "Pérez", "Ana", "1990-02-03", "PE", "A123",
			"", "", "", "", "", "", "",
			[]byte(`[{"level":"university","institution":"UNI"}]`), []byte(`[]`), []byte(`[]`), []byte(`[]`),
			[]byte(`[{"full_name":"Leo","relationship":"son","birth_date":"2015-01-01"}]`),
			false, nil, now, now,
		))

	form, err := repo.GetByUser(context.Background(), db, "user-1")
	require.NoError(t, err)
	assert.Equal(t, "Pérez", form.Surname)
	require.Len(t, form.Education, 1)
	assert.Equal(t, "UNI", form.Education[0].Institution)
	assert.Empty(t, form.WorkHistory)
	require.Len(t, form.FamilyMembers, 1)
	assert.Equal(t, "Leo", form.FamilyMembers[0].FullName)
}

func TestJWTRepository_MarkUsedTwiceFails(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewJWTRepository(db)

	mock.ExpectExec(`UPDATE refresh_tokens SET used = TRUE`).
		WithArgs("rt-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE refresh_tokens SET used = TRUE`).
		WithArgs("rt-1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.MarkRefreshTokenUsedByUUID(context.Background(), "rt-1"))
	assert.Error(t, repo.MarkRefreshTokenUsedByUUID(context.Background(), "rt-1"))
}

func TestClientRepository_UpdateProgress(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewClientRepository(db)

	mock.ExpectExec(`UPDATE clients\s+SET progress = \$2`).
		WithArgs("user-1", 50, 3, 1).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.UpdateProgress(context.Background(), db, "user-1", model.ClientProgress{Progress: 50, TotalDocuments: 3, PendingDocuments: 1})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
