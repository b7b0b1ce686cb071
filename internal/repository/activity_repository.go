package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"visa-advisory-portal/config"
	"visa-advisory-portal/internal/model"
)

type ActivityRepository struct {
	*config.Database
}

func NewActivityRepository(database *config.Database) *ActivityRepository {
	return &ActivityRepository{database}
}

func (r *ActivityRepository) Create(ctx context.Context, exec sqlx.ExtContext, activity *model.Activity) error {
	query := `
		INSERT INTO activities (activity_type, title, description, user_id, performed_by_id, performed_by_email, extra_data)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`
	err := exec.QueryRowxContext(ctx, query,
		activity.Type,
		activity.Title,
		activity.Description,
		activity.UserID,
		activity.PerformedByID,
		activity.PerformedByEmail,
		activity.ExtraData,
	).Scan(&activity.ID, &activity.CreatedAt)
	if err != nil {
		return mapError("[ActivityRepo] insert activity", err)
	}
	return nil
}

// List : newest first, empty type means all
func (r *ActivityRepository) List(ctx context.Context, exec sqlx.ExtContext, limit int, activityType model.ActivityType) ([]model.Activity, error) {
	query := `
		SELECT id, activity_type, title, description, user_id, performed_by_id, performed_by_email, extra_data, created_at
		FROM activities
		WHERE ($1 = '' OR activity_type = $1)
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`
	activities := []model.Activity{}
	if err := sqlx.SelectContext(ctx, exec, &activities, query, string(activityType), limit); err != nil {
		return nil, mapError("[ActivityRepo] list activities", err)
	}
	return activities, nil
}
