package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"visa-advisory-portal/config"
	"visa-advisory-portal/internal/model"
)

const clientColumns = `c.id, c.user_id, u.email, c.first_name, c.last_name, c.phone, c.destination_country,
		c.visa_type, c.application_type, c.family_members_count, c.status, c.progress,
		c.total_documents, c.pending_documents, c.notes, c.created_at, c.updated_at`

type ClientRepository struct {
	*config.Database
}

func NewClientRepository(database *config.Database) *ClientRepository {
	return &ClientRepository{database}
}

func (r *ClientRepository) Create(ctx context.Context, exec sqlx.ExtContext, client *model.Client) error {
	query := `
		INSERT INTO clients (id, user_id, first_name, last_name, phone, application_type, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := exec.ExecContext(ctx, query,
		client.ID, client.UserID, client.FirstName, client.LastName, client.Phone, client.ApplicationType, client.Status)
	if err != nil {
		return mapError("[ClientRepo] insert client", err)
	}
	return nil
}

func (r *ClientRepository) GetByUser(ctx context.Context, exec sqlx.ExtContext, userID string) (*model.Client, error) {
	query := `SELECT ` + clientColumns + ` FROM clients c JOIN users u ON u.id = c.user_id WHERE c.user_id = $1`

	var client model.Client
	if err := sqlx.GetContext(ctx, exec, &client, query, userID); err != nil {
		return nil, mapError("[ClientRepo] get client by user", err)
	}
	return &client, nil
}

func (r *ClientRepository) GetByID(ctx context.Context, exec sqlx.ExtContext, id string) (*model.Client, error) {
	query := `SELECT ` + clientColumns + ` FROM clients c JOIN users u ON u.id = c.user_id WHERE c.id = $1`

	var client model.Client
	if err := sqlx.GetContext(ctx, exec, &client, query, id); err != nil {
		return nil, mapError("[ClientRepo] get client", err)
	}
	return &client, nil
}

// List : newest first, empty status means all
func (r *ClientRepository) List(ctx context.Context, exec sqlx.ExtContext, status string) ([]model.Client, error) {
	query := `SELECT ` + clientColumns + ` FROM clients c JOIN users u ON u.id = c.user_id`
	var args []any
	if status != "" {
		query += ` WHERE c.status = $1`
		args = append(args, status)
	}
	query += ` ORDER BY c.created_at DESC`

	clients := []model.Client{}
	if err := sqlx.SelectContext(ctx, exec, &clients, query, args...); err != nil {
		return nil, mapError("[ClientRepo] list clients", err)
	}
	return clients, nil
}

func (r *ClientRepository) Update(ctx context.Context, exec sqlx.ExtContext, client *model.Client) (*model.Client, error) {
	query := `
		UPDATE clients
		SET first_name = $2, last_name = $3, phone = $4, destination_country = $5, visa_type = $6,
		    application_type = $7, family_members_count = $8, status = $9, notes = $10, updated_at = NOW()
		WHERE id = $1
	`
	_, err := exec.ExecContext(ctx, query,
		client.ID,
		client.FirstName,
		client.LastName,
		client.Phone,
		client.DestinationCountry,
		client.VisaType,
		client.ApplicationType,
		client.FamilyMembersCount,
		client.Status,
		client.Notes,
	)
	if err != nil {
		return nil, mapError("[ClientRepo] update client", err)
	}
	return r.GetByID(ctx, exec, client.ID)
}

func (r *ClientRepository) UpdateProgress(ctx context.Context, exec sqlx.ExtContext, userID string, progress model.ClientProgress) error {
	query := `
		UPDATE clients
		SET progress = $2, total_documents = $3, pending_documents = $4, updated_at = NOW()
		WHERE user_id = $1
	`
	_, err := exec.ExecContext(ctx, query, userID, progress.Progress, progress.TotalDocuments, progress.PendingDocuments)
	if err != nil {
		return mapError("[ClientRepo] update progress", err)
	}
	return nil
}

func (r *ClientRepository) Stats(ctx context.Context, exec sqlx.ExtContext) (*model.DashboardStats, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM clients) AS total_clients,
			(SELECT COUNT(*) FROM clients WHERE application_type = 'family') AS family_applications,
			(SELECT COUNT(*) FROM clients WHERE status = 'active') AS active_clients,
			(SELECT COUNT(*) FROM clients WHERE status = 'completed') AS completed_clients,
			(SELECT COUNT(*) FROM documents) AS total_documents,
			(SELECT COUNT(*) FROM documents WHERE status = 'pending') AS pending_documents,
			(SELECT COUNT(*) FROM documents WHERE status = 'approved') AS approved_documents,
			(SELECT COUNT(*) FROM documents WHERE status = 'rejected') AS rejected_documents,
			(SELECT COUNT(*) FROM intake_forms WHERE is_completed) AS completed_forms
	`
	var stats model.DashboardStats
	if err := sqlx.GetContext(ctx, exec, &stats, query); err != nil {
		return nil, mapError("[ClientRepo] stats", err)
	}
	return &stats, nil
}
