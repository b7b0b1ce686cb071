package ports

import (
	"context"

	"github.com/jmoiron/sqlx"

	"visa-advisory-portal/internal/model"
	"visa-advisory-portal/internal/model/requestresponse"
	"visa-advisory-portal/internal/security"
)

type ClientRepository interface {
	Create(ctx context.Context, exec sqlx.ExtContext, client *model.Client) error
	GetByUser(ctx context.Context, exec sqlx.ExtContext, userID string) (*model.Client, error)
	GetByID(ctx context.Context, exec sqlx.ExtContext, id string) (*model.Client, error)
	List(ctx context.Context, exec sqlx.ExtContext, status string) ([]model.Client, error)
	Update(ctx context.Context, exec sqlx.ExtContext, client *model.Client) (*model.Client, error)
	UpdateProgress(ctx context.Context, exec sqlx.ExtContext, userID string, progress model.ClientProgress) error
	Stats(ctx context.Context, exec sqlx.ExtContext) (*model.DashboardStats, error)
}

type ClientService interface {
	Profile(ctx context.Context, userID string) (*model.Client, error)
	UpdateProfile(ctx context.Context, userID string, request requestresponse.UpdateProfileRequest) (*model.Client, error)
	List(ctx context.Context, status string) ([]model.Client, error)
	Get(ctx context.Context, id string) (*model.Client, error)
	AdminUpdate(ctx context.Context, actor *security.Claims, id string, request requestresponse.AdminUpdateClientRequest) (*model.Client, error)
	Stats(ctx context.Context) (*model.DashboardStats, error)
}
