package model

import "time"

const (
	ApplicationIndividual = "individual"
	ApplicationFamily     = "family"
)

const (
	ClientPending   = "pending"
	ClientActive    = "active"
	ClientCompleted = "completed"
	ClientInactive  = "inactive"
)

type Client struct {
	ID                 string    `db:"id" json:"id"`
	UserID             string    `db:"user_id" json:"user_id"`
	Email              string    `db:"email" json:"email"`
	FirstName          string    `db:"first_name" json:"first_name"`
	LastName           string    `db:"last_name" json:"last_name"`
	Phone              string    `db:"phone" json:"phone"`
	DestinationCountry string    `db:"destination_country" json:"destination_country"`
	VisaType           string    `db:"visa_type" json:"visa_type"`
	ApplicationType    string    `db:"application_type" json:"application_type"`
	FamilyMembersCount int       `db:"family_members_count" json:"family_members_count"`
	Status             string    `db:"status" json:"status"`
	Progress           int       `db:"progress" json:"progress"`
	TotalDocuments     int       `db:"total_documents" json:"total_documents"`
	PendingDocuments   int       `db:"pending_documents" json:"pending_documents"`
	Notes              string    `db:"notes" json:"notes,omitempty"`
	CreatedAt          time.Time `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time `db:"updated_at" json:"updated_at"`
}

// ClientProgress : counters recomputed after every document change
type ClientProgress struct {
	Progress         int
	TotalDocuments   int
	PendingDocuments int
}

type DashboardStats struct {
	TotalClients       int `db:"total_clients" json:"total_clients"`
	FamilyApplications int `db:"family_applications" json:"family_applications"`
	ActiveClients      int `db:"active_clients" json:"active_clients"`
	CompletedClients   int `db:"completed_clients" json:"completed_clients"`
	TotalDocuments     int `db:"total_documents" json:"total_documents"`
	PendingDocuments   int `db:"pending_documents" json:"pending_documents"`
	ApprovedDocuments  int `db:"approved_documents" json:"approved_documents"`
	RejectedDocuments  int `db:"rejected_documents" json:"rejected_documents"`
	CompletedForms     int `db:"completed_forms" json:"completed_forms"`
}
