package model

import "time"

type DocumentStatus string

const (
	DocumentPending  DocumentStatus = "pending"
	DocumentApproved DocumentStatus = "approved"
	DocumentRejected DocumentStatus = "rejected"
)

func (s DocumentStatus) Valid() bool {
	switch s {
	case DocumentPending, DocumentApproved, DocumentRejected:
		return true
	}
	return false
}

// Reviewed reports whether the status is a final admin decision.
func (s DocumentStatus) Reviewed() bool {
	return s == DocumentApproved || s == DocumentRejected
}

type Document struct {
	ID               string         `db:"id" json:"id"`
	UserID           string         `db:"user_id" json:"user_id,omitempty"`
	Category         string         `db:"category" json:"category"`
	OriginalName     string         `db:"original_name" json:"original_name"`
	StoragePath      string         `db:"storage_path" json:"-"`
	MimeType         string         `db:"mime_type" json:"mime_type"`
	SizeBytes        int64          `db:"size_bytes" json:"size_bytes"`
	Sha256           string         `db:"sha256" json:"sha256,omitempty"`
	Status           DocumentStatus `db:"status" json:"status"`
	AdminNotes       string         `db:"admin_notes" json:"admin_notes,omitempty"`
	FamilyMemberName string         `db:"family_member_name" json:"family_member_name,omitempty"`
	CreatedAt        time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time      `db:"updated_at" json:"updated_at"`
	ReviewedAt       *time.Time     `db:"reviewed_at" json:"reviewed_at,omitempty"`
}

// DocumentFilter : admin listing filter, empty fields are ignored
type DocumentFilter struct {
	Status DocumentStatus
	UserID string
	Limit  int
}
