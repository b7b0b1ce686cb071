package ports

import (
	"context"

	"github.com/jmoiron/sqlx"

	"visa-advisory-portal/internal/model"
)

type FormRepository interface {
	GetByUser(ctx context.Context, exec sqlx.ExtContext, userID string) (*model.IntakeForm, error)
	GetByID(ctx context.Context, exec sqlx.ExtContext, id string) (*model.IntakeForm, error)
	Upsert(ctx context.Context, exec sqlx.ExtContext, form *model.IntakeForm) (*model.IntakeForm, error)
	List(ctx context.Context, exec sqlx.ExtContext, filter model.IntakeFormFilter) ([]model.IntakeForm, error)
}

type FormService interface {
	MyForm(ctx context.Context, userID string) (*model.IntakeForm, error)
	Save(ctx context.Context, userID string, form *model.IntakeForm) (*model.IntakeForm, error)
	List(ctx context.Context, filter model.IntakeFormFilter) ([]model.IntakeForm, error)
	Get(ctx context.Context, id string) (*model.IntakeForm, error)
}
