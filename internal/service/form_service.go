package service

import (
	"context"

	"github.com/google/uuid"

	"visa-advisory-portal/config"
	"visa-advisory-portal/internal/model"
	"visa-advisory-portal/internal/ports"
)

type FormService struct {
	formRepository ports.FormRepository
	activities     ports.ActivityLogger
}

func NewFormService(formRepository ports.FormRepository, activities ports.ActivityLogger) *FormService {
	return &FormService{formRepository: formRepository, activities: activities}
}

// MyForm : ErrNotFound when the user never saved a form
func (s *FormService) MyForm(ctx context.Context, userID string) (*model.IntakeForm, error) {
	db, ok := config.DBFromContext(ctx)
	if !ok {
		return nil, errNoDatabase("FormService")
	}
	return s.formRepository.GetByUser(ctx, db, userID)
}

// Save : full upsert, once submitted a form stays submitted
func (s *FormService) Save(ctx context.Context, userID string, form *model.IntakeForm) (*model.IntakeForm, error) {
	db, ok := config.DBFromContext(ctx)
	if !ok {
		return nil, errNoDatabase("FormService")
	}

	form.ID = uuid.New().String()
	form.UserID = userID

	saved, err := s.formRepository.Upsert(ctx, db, form)
	if err != nil {
		return nil, err
	}

	activityType, title := model.ActivityFormUpdated, "Intake form progress saved"
	if form.IsCompleted {
		activityType, title = model.ActivityFormSubmitted, "Intake form submitted"
	}
	s.activities.Log(ctx, newActivity(activityType, title, saved.Surname+" "+saved.GivenNames, userID, nil,
		model.ExtraData{"form_id": saved.ID}))

	return saved, nil
}

func (s *FormService) List(ctx context.Context, filter model.IntakeFormFilter) ([]model.IntakeForm, error) {
	db, ok := config.DBFromContext(ctx)
	if !ok {
		return nil, errNoDatabase("FormService")
	}
	return s.formRepository.List(ctx, db, filter)
}

func (s *FormService) Get(ctx context.Context, id string) (*model.IntakeForm, error) {
	db, ok := config.DBFromContext(ctx)
	if !ok {
		return nil, errNoDatabase("FormService")
	}
	return s.formRepository.GetByID(ctx, db, id)
}
