package ports

import (
	"context"

	"github.com/jmoiron/sqlx"

	"visa-advisory-portal/internal/model"
)

type ActivityRepository interface {
	Create(ctx context.Context, exec sqlx.ExtContext, activity *model.Activity) error
	List(ctx context.Context, exec sqlx.ExtContext, limit int, activityType model.ActivityType) ([]model.Activity, error)
}

// ActivityLogger : best-effort audit trail, failures never surface to callers
type ActivityLogger interface {
	Log(ctx context.Context, activity model.Activity)
}

type ActivityService interface {
	ActivityLogger
	List(ctx context.Context, limit int, activityType model.ActivityType) ([]model.Activity, error)
	Types() []model.ActivityType
}

type ExportService interface {
	DashboardCSV(ctx context.Context) ([]byte, error)
	DashboardPDF(ctx context.Context) ([]byte, error)
}
