package ports

import (
	"context"

	"github.com/jmoiron/sqlx"

	"visa-advisory-portal/internal/model"
	"visa-advisory-portal/internal/model/requestresponse"
)

type CategoryRepository interface {
	ListActiveNames(ctx context.Context, exec sqlx.ExtContext) ([]string, error)
	List(ctx context.Context, exec sqlx.ExtContext) ([]model.Category, error)
	GetByID(ctx context.Context, exec sqlx.ExtContext, id int64) (*model.Category, error)
	Create(ctx context.Context, exec sqlx.ExtContext, category *model.Category) (*model.Category, error)
	Update(ctx context.Context, exec sqlx.ExtContext, category *model.Category) (*model.Category, error)
	Delete(ctx context.Context, exec sqlx.ExtContext, id int64) error
}

type CategoryService interface {
	Names(ctx context.Context) ([]string, error)
	List(ctx context.Context) ([]model.Category, error)
	Create(ctx context.Context, request requestresponse.CategoryRequest) (*model.Category, error)
	Update(ctx context.Context, id int64, request requestresponse.CategoryRequest) (*model.Category, error)
	Delete(ctx context.Context, id int64) error
}
