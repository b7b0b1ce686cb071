package service

import (
	"context"
	"strings"

	"visa-advisory-portal/config"
	"visa-advisory-portal/internal/model"
	"visa-advisory-portal/internal/model/requestresponse"
	"visa-advisory-portal/internal/ports"
	"visa-advisory-portal/internal/security"
)

type ClientService struct {
	clientRepository ports.ClientRepository
	activities       ports.ActivityLogger
}

func NewClientService(clientRepository ports.ClientRepository, activities ports.ActivityLogger) *ClientService {
	return &ClientService{clientRepository: clientRepository, activities: activities}
}

func (s *ClientService) Profile(ctx context.Context, userID string) (*model.Client, error) {
	db, ok := config.DBFromContext(ctx)
	if !ok {
		return nil, errNoDatabase("ClientService")
	}
	return s.clientRepository.GetByUser(ctx, db, userID)
}

// UpdateProfile : only the fields present in the request change
func (s *ClientService) UpdateProfile(ctx context.Context, userID string, request requestresponse.UpdateProfileRequest) (*model.Client, error) {
	db, ok := config.DBFromContext(ctx)
	if !ok {
		return nil, errNoDatabase("ClientService")
	}

	client, err := s.clientRepository.GetByUser(ctx, db, userID)
	if err != nil {
		return nil, err
	}
	applyProfile(client, request)

	return s.clientRepository.Update(ctx, db, client)
}

func (s *ClientService) List(ctx context.Context, status string) ([]model.Client, error) {
	db, ok := config.DBFromContext(ctx)
	if !ok {
		return nil, errNoDatabase("ClientService")
	}
	return s.clientRepository.List(ctx, db, status)
}

func (s *ClientService) Get(ctx context.Context, id string) (*model.Client, error) {
	db, ok := config.DBFromContext(ctx)
	if !ok {
		return nil, errNoDatabase("ClientService")
	}
	return s.clientRepository.GetByID(ctx, db, id)
}

func (s *ClientService) AdminUpdate(ctx context.Context, actor *security.Claims, id string, request requestresponse.AdminUpdateClientRequest) (*model.Client, error) {
	db, ok := config.DBFromContext(ctx)
	if !ok {
		return nil, errNoDatabase("ClientService")
	}

	client, err := s.clientRepository.GetByID(ctx, db, id)
	if err != nil {
		return nil, err
	}
	applyProfile(client, request.UpdateProfileRequest)
	if request.Status != nil {
		client.Status = *request.Status
	}
	if request.Notes != nil {
		client.Notes = strings.TrimSpace(*request.Notes)
	}

	updated, err := s.clientRepository.Update(ctx, db, client)
	if err != nil {
		return nil, err
	}

	s.activities.Log(ctx, newActivity(model.ActivityClientUpdated, "Client updated",
		strings.TrimSpace(updated.FirstName+" "+updated.LastName), updated.UserID, actor,
		model.ExtraData{"client_id": updated.ID, "status": updated.Status}))
	return updated, nil
}

func (s *ClientService) Stats(ctx context.Context) (*model.DashboardStats, error) {
	db, ok := config.DBFromContext(ctx)
	if !ok {
		return nil, errNoDatabase("ClientService")
	}
	return s.clientRepository.Stats(ctx, db)
}

func applyProfile(client *model.Client, request requestresponse.UpdateProfileRequest) {
	setTrimmed(&client.FirstName, request.FirstName)
	setTrimmed(&client.LastName, request.LastName)
	setTrimmed(&client.Phone, request.Phone)
	setTrimmed(&client.DestinationCountry, request.DestinationCountry)
	setTrimmed(&client.VisaType, request.VisaType)
	setTrimmed(&client.ApplicationType, request.ApplicationType)
	if request.FamilyMembersCount != nil {
		client.FamilyMembersCount = *request.FamilyMembersCount
	}
}

func setTrimmed(dst *string, value *string) {
	if value != nil {
		*dst = strings.TrimSpace(*value)
	}
}
