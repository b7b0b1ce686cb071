package service

import (
	"context"
	"slices"

	"go.uber.org/zap"

	"visa-advisory-portal/config"
	"visa-advisory-portal/internal/apperror"
	"visa-advisory-portal/internal/model"
	"visa-advisory-portal/internal/ports"
	"visa-advisory-portal/internal/security"
	"visa-advisory-portal/internal/util"
)

const (
	defaultActivityLimit = 50
	maxActivityLimit     = 500
)

type ActivityService struct {
	activityRepository ports.ActivityRepository
}

func NewActivityService(activityRepository ports.ActivityRepository) *ActivityService {
	return &ActivityService{activityRepository: activityRepository}
}

// Log : best effort, a failed insert is only logged
func (s *ActivityService) Log(ctx context.Context, activity model.Activity) {
	db, ok := config.DBFromContext(ctx)
	if !ok {
		zap.L().Warn("[ActivityService] no database in context, activity dropped", zap.String("type", string(activity.Type)))
		return
	}

	if err := s.activityRepository.Create(ctx, db, &activity); err != nil {
		zap.L().Warn("[ActivityService] activity not stored", zap.String("type", string(activity.Type)), zap.Error(err))
	}
}

func (s *ActivityService) List(ctx context.Context, limit int, activityType model.ActivityType) ([]model.Activity, error) {
	db, ok := config.DBFromContext(ctx)
	if !ok {
		return nil, errNoDatabase("ActivityService")
	}

	if activityType != "" && !slices.Contains(model.ActivityTypes, activityType) {
		return nil, apperror.WithMessage(apperror.ErrValidation, "unknown activity type")
	}
	if limit <= 0 {
		limit = defaultActivityLimit
	}
	limit = min(limit, maxActivityLimit)

	activities, err := s.activityRepository.List(ctx, db, limit, activityType)
	if err != nil {
		return nil, util.LogError("[ActivityService] list activities", err)
	}
	return activities, nil
}

func (s *ActivityService) Types() []model.ActivityType {
	return slices.Clone(model.ActivityTypes)
}

// newActivity : subject is the customer the event is about, actor is who triggered it
func newActivity(activityType model.ActivityType, title, description, subjectUserID string, actor *security.Claims, extra model.ExtraData) model.Activity {
	activity := model.Activity{
		Type:        activityType,
		Title:       title,
		Description: description,
		ExtraData:   extra,
	}
	if subjectUserID != "" {
		activity.UserID = &subjectUserID
	}
	if actor != nil {
		actorID := actor.UserUUID
		activity.PerformedByID = &actorID
		activity.PerformedByEmail = actor.Email
	}
	return activity
}

func errNoDatabase(serviceName string) error {
	return apperror.Wrap(apperror.ErrInternal, nil, "["+serviceName+"] database connection not found in context")
}
