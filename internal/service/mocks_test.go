package service_test

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/mock"

	"visa-advisory-portal/config"
	"visa-advisory-portal/internal/model"
	"visa-advisory-portal/internal/model/requestresponse"
	"visa-advisory-portal/internal/security"
)

// ===== MOCKS =====

type MockUserRepository struct{ mock.Mock }

func (m *MockUserRepository) CreateUser(ctx context.Context, exec sqlx.ExtContext, user *model.User) (*model.User, error) {
	args := m.Called(ctx, exec, user)
	if u, ok := args.Get(0).(*model.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserRepository) FindByID(ctx context.Context, exec sqlx.ExtContext, id string) (*model.User, error) {
	args := m.Called(ctx, exec, id)
	if u, ok := args.Get(0).(*model.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, exec sqlx.ExtContext, email string) (*model.User, error) {
	args := m.Called(ctx, exec, email)
	if u, ok := args.Get(0).(*model.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserRepository) ExistsByEmail(ctx context.Context, exec sqlx.ExtContext, email string) (bool, error) {
	args := m.Called(ctx, exec, email)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) BeginTX(ctx context.Context) (sqlx.ExtContext, func() error, func() error, error) {
	args := m.Called(ctx)
	return txResult(args)
}

type MockJWTService struct{ mock.Mock }

func (m *MockJWTService) GenerateAccessRefreshTokens(user *model.User) (*model.TokensPair, *model.RefreshToken, error) {
	args := m.Called(user)

	var tokens *model.TokensPair
	if t := args.Get(0); t != nil {
		tokens = t.(*model.TokensPair)
	}

	var refresh *model.RefreshToken
	if r := args.Get(1); r != nil {
		refresh = r.(*model.RefreshToken)
	}

	return tokens, refresh, args.Error(2)
}

func (m *MockJWTService) ValidateJWT(tokenString string) (*security.Claims, error) {
	args := m.Called(tokenString)
	if c, ok := args.Get(0).(*security.Claims); ok {
		return c, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockJWTService) ParseAccessToken(tokenString string) (*security.Claims, error) {
	args := m.Called(tokenString)
	if c, ok := args.Get(0).(*security.Claims); ok {
		return c, args.Error(1)
	}
	return nil, args.Error(1)
}

type MockJWTRepo struct{ mock.Mock }

func (m *MockJWTRepo) SaveRefreshToken(ctx context.Context, refreshToken *model.RefreshToken) error {
	return m.Called(ctx, refreshToken).Error(0)
}

func (m *MockJWTRepo) FindByUUID(ctx context.Context, uuid string) (*model.RefreshToken, error) {
	args := m.Called(ctx, uuid)
	if token, ok := args.Get(0).(*model.RefreshToken); ok {
		return token, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockJWTRepo) MarkRefreshTokenUsedByUUID(ctx context.Context, uuid string) error {
	return m.Called(ctx, uuid).Error(0)
}

type MockClientRepository struct{ mock.Mock }

func (m *MockClientRepository) Create(ctx context.Context, exec sqlx.ExtContext, client *model.Client) error {
	return m.Called(ctx, exec, client).Error(0)
}

func (m *MockClientRepository) GetByUser(ctx context.Context, exec sqlx.ExtContext, userID string) (*model.Client, error) {
	args := m.Called(ctx, exec, userID)
	if c, ok := args.Get(0).(*model.Client); ok {
		return c, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockClientRepository) GetByID(ctx context.Context, exec sqlx.ExtContext, id string) (*model.Client, error) {
	args := m.Called(ctx, exec, id)
	if c, ok := args.Get(0).(*model.Client); ok {
		return c, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockClientRepository) List(ctx context.Context, exec sqlx.ExtContext, status string) ([]model.Client, error) {
	args := m.Called(ctx, exec, status)
	if c, ok := args.Get(0).([]model.Client); ok {
		return c, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockClientRepository) Update(ctx context.Context, exec sqlx.ExtContext, client *model.Client) (*model.Client, error) {
	args := m.Called(ctx, exec, client)
	if c, ok := args.Get(0).(*model.Client); ok {
		return c, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockClientRepository) UpdateProgress(ctx context.Context, exec sqlx.ExtContext, userID string, progress model.ClientProgress) error {
	return m.Called(ctx, exec, userID, progress).Error(0)
}

func (m *MockClientRepository) Stats(ctx context.Context, exec sqlx.ExtContext) (*model.DashboardStats, error) {
	args := m.Called(ctx, exec)
	if s, ok := args.Get(0).(*model.DashboardStats); ok {
		return s, args.Error(1)
	}
	return nil, args.Error(1)
}

type MockDocumentRepository struct{ mock.Mock }

func (m *MockDocumentRepository) Create(ctx context.Context, exec sqlx.ExtContext, doc *model.Document) error {
	return m.Called(ctx, exec, doc).Error(0)
}

func (m *MockDocumentRepository) GetByID(ctx context.Context, exec sqlx.ExtContext, id string) (*model.Document, error) {
	args := m.Called(ctx, exec, id)
	if d, ok := args.Get(0).(*model.Document); ok {
		return d, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockDocumentRepository) ListByUser(ctx context.Context, exec sqlx.ExtContext, userID string) ([]model.Document, error) {
	args := m.Called(ctx, exec, userID)
	if d, ok := args.Get(0).([]model.Document); ok {
		return d, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockDocumentRepository) ListBySlot(ctx context.Context, exec sqlx.ExtContext, userID, category, familyMemberName string) ([]model.Document, error) {
	args := m.Called(ctx, exec, userID, category, familyMemberName)
	if d, ok := args.Get(0).([]model.Document); ok {
		return d, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockDocumentRepository) List(ctx context.Context, exec sqlx.ExtContext, filter model.DocumentFilter) ([]model.Document, error) {
	args := m.Called(ctx, exec, filter)
	if d, ok := args.Get(0).([]model.Document); ok {
		return d, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockDocumentRepository) UpdateReview(ctx context.Context, exec sqlx.ExtContext, id string, status model.DocumentStatus, notes string) (*model.Document, error) {
	args := m.Called(ctx, exec, id, status, notes)
	if d, ok := args.Get(0).(*model.Document); ok {
		return d, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockDocumentRepository) Delete(ctx context.Context, exec sqlx.ExtContext, id string) (string, error) {
	args := m.Called(ctx, exec, id)
	return args.String(0), args.Error(1)
}

func (m *MockDocumentRepository) BeginTX(ctx context.Context) (sqlx.ExtContext, func() error, func() error, error) {
	args := m.Called(ctx)
	return txResult(args)
}

type MockCacheRepository struct{ mock.Mock }

func (m *MockCacheRepository) GetCategories(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if c, ok := args.Get(0).([]string); ok {
		return c, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockCacheRepository) SetCategories(ctx context.Context, names []string) error {
	return m.Called(ctx, names).Error(0)
}

func (m *MockCacheRepository) DeleteCategories(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockCacheRepository) GetDocuments(ctx context.Context, userID string) ([]model.Document, error) {
	args := m.Called(ctx, userID)
	if d, ok := args.Get(0).([]model.Document); ok {
		return d, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockCacheRepository) SetDocuments(ctx context.Context, userID string, documents []model.Document) error {
	return m.Called(ctx, userID, documents).Error(0)
}

func (m *MockCacheRepository) DeleteDocuments(ctx context.Context, userID string) error {
	return m.Called(ctx, userID).Error(0)
}

type MockCategoryRepository struct{ mock.Mock }

func (m *MockCategoryRepository) ListActiveNames(ctx context.Context, exec sqlx.ExtContext) ([]string, error) {
	args := m.Called(ctx, exec)
	if c, ok := args.Get(0).([]string); ok {
		return c, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockCategoryRepository) List(ctx context.Context, exec sqlx.ExtContext) ([]model.Category, error) {
	args := m.Called(ctx, exec)
	if c, ok := args.Get(0).([]model.Category); ok {
		return c, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockCategoryRepository) GetByID(ctx context.Context, exec sqlx.ExtContext, id int64) (*model.Category, error) {
	args := m.Called(ctx, exec, id)
	if c, ok := args.Get(0).(*model.Category); ok {
		return c, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockCategoryRepository) Create(ctx context.Context, exec sqlx.ExtContext, category *model.Category) (*model.Category, error) {
	args := m.Called(ctx, exec, category)
	if c, ok := args.Get(0).(*model.Category); ok {
		return c, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockCategoryRepository) Update(ctx context.Context, exec sqlx.ExtContext, category *model.Category) (*model.Category, error) {
	args := m.Called(ctx, exec, category)
	if c, ok := args.Get(0).(*model.Category); ok {
		return c, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockCategoryRepository) Delete(ctx context.Context, exec sqlx.ExtContext, id int64) error {
	return m.Called(ctx, exec, id).Error(0)
}

// MockCategoryService : only Names is used by DocumentService
type MockCategoryService struct{ mock.Mock }

func (m *MockCategoryService) Names(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if c, ok := args.Get(0).([]string); ok {
		return c, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockCategoryService) List(ctx context.Context) ([]model.Category, error) {
	return nil, m.Called(ctx).Error(1)
}

func (m *MockCategoryService) Create(ctx context.Context, request requestresponse.CategoryRequest) (*model.Category, error) {
	return nil, m.Called(ctx, request).Error(1)
}

func (m *MockCategoryService) Update(ctx context.Context, id int64, request requestresponse.CategoryRequest) (*model.Category, error) {
	return nil, m.Called(ctx, id, request).Error(1)
}

func (m *MockCategoryService) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

type MockObjectStorage struct{ mock.Mock }

func (m *MockObjectStorage) PutObject(ctx context.Context, key string, body []byte, contentType string) error {
	return m.Called(ctx, key, body, contentType).Error(0)
}

func (m *MockObjectStorage) PresignDownload(ctx context.Context, key, fileName string, expire time.Duration) (string, error) {
	args := m.Called(ctx, key, fileName, expire)
	return args.String(0), args.Error(1)
}

func (m *MockObjectStorage) DeleteObject(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

type MockFormRepository struct{ mock.Mock }

func (m *MockFormRepository) GetByUser(ctx context.Context, exec sqlx.ExtContext, userID string) (*model.IntakeForm, error) {
	args := m.Called(ctx, exec, userID)
	if f, ok := args.Get(0).(*model.IntakeForm); ok {
		return f, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockFormRepository) GetByID(ctx context.Context, exec sqlx.ExtContext, id string) (*model.IntakeForm, error) {
	args := m.Called(ctx, exec, id)
	if f, ok := args.Get(0).(*model.IntakeForm); ok {
		return f, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockFormRepository) Upsert(ctx context.Context, exec sqlx.ExtContext, form *model.IntakeForm) (*model.IntakeForm, error) {
	args := m.Called(ctx, exec, form)
	if f, ok := args.Get(0).(*model.IntakeForm); ok {
		return f, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockFormRepository) List(ctx context.Context, exec sqlx.ExtContext, filter model.IntakeFormFilter) ([]model.IntakeForm, error) {
	args := m.Called(ctx, exec, filter)
	if f, ok := args.Get(0).([]model.IntakeForm); ok {
		return f, args.Error(1)
	}
	return nil, args.Error(1)
}

type MockActivityRepository struct{ mock.Mock }

func (m *MockActivityRepository) Create(ctx context.Context, exec sqlx.ExtContext, activity *model.Activity) error {
	return m.Called(ctx, exec, activity).Error(0)
}

func (m *MockActivityRepository) List(ctx context.Context, exec sqlx.ExtContext, limit int, activityType model.ActivityType) ([]model.Activity, error) {
	args := m.Called(ctx, exec, limit, activityType)
	if a, ok := args.Get(0).([]model.Activity); ok {
		return a, args.Error(1)
	}
	return nil, args.Error(1)
}

// activityRecorder : collects logged activities
type activityRecorder struct {
	mu         sync.Mutex
	activities []model.Activity
}

func (r *activityRecorder) Log(_ context.Context, activity model.Activity) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.activities = append(r.activities, activity)
}

func (r *activityRecorder) types() []model.ActivityType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.ActivityType, 0, len(r.activities))
	for _, a := range r.activities {
		out = append(out, a.Type)
	}
	return out
}

type fakeTx struct{}

func (f *fakeTx) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	return nil, nil
}
func (f *fakeTx) QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	return nil, nil
}
func (f *fakeTx) QueryxContext(ctx context.Context, query string, args ...interface{}) (*sqlx.Rows, error) {
	return nil, nil
}
func (f *fakeTx) QueryRowxContext(ctx context.Context, query string, args ...interface{}) *sqlx.Row {
	return &sqlx.Row{}
}
func (f *fakeTx) BindNamed(query string, arg interface{}) (string, []interface{}, error) {
	return "", nil, nil
}
func (f *fakeTx) DriverName() string         { return "fake" }
func (f *fakeTx) Rebind(query string) string { return query }

// txCalls : counts commit and rollback calls handed out by a mocked BeginTX
type txCalls struct {
	commits   int
	rollbacks int
}

func (c *txCalls) rollback() error { c.rollbacks++; return nil }
func (c *txCalls) commit() error   { c.commits++; return nil }

func txResult(args mock.Arguments) (sqlx.ExtContext, func() error, func() error, error) {
	if err := args.Error(3); err != nil {
		return nil, nil, nil, err
	}
	return args.Get(0).(sqlx.ExtContext), args.Get(1).(func() error), args.Get(2).(func() error), nil
}

func dbContext() context.Context {
	return config.WithDatabase(context.Background(), &config.Database{})
}
