package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

type ActivityType string

const (
	ActivityUserRegistered   ActivityType = "user_registered"
	ActivityDocumentUploaded ActivityType = "document_uploaded"
	ActivityDocumentDeleted  ActivityType = "document_deleted"
	ActivityDocumentApproved ActivityType = "document_approved"
	ActivityDocumentRejected ActivityType = "document_rejected"
	ActivityFormUpdated      ActivityType = "form_updated"
	ActivityFormSubmitted    ActivityType = "form_submitted"
	ActivityClientUpdated    ActivityType = "client_updated"
)

var ActivityTypes = []ActivityType{
	ActivityUserRegistered,
	ActivityDocumentUploaded,
	ActivityDocumentDeleted,
	ActivityDocumentApproved,
	ActivityDocumentRejected,
	ActivityFormUpdated,
	ActivityFormSubmitted,
	ActivityClientUpdated,
}

type Activity struct {
	ID               int64        `db:"id" json:"id"`
	Type             ActivityType `db:"activity_type" json:"activity_type"`
	Title            string       `db:"title" json:"title"`
	Description      string       `db:"description" json:"description,omitempty"`
	UserID           *string      `db:"user_id" json:"user_id,omitempty"`
	PerformedByID    *string      `db:"performed_by_id" json:"performed_by_id,omitempty"`
	PerformedByEmail string       `db:"performed_by_email" json:"performed_by_email,omitempty"`
	ExtraData        ExtraData    `db:"extra_data" json:"extra_data,omitempty"`
	CreatedAt        time.Time    `db:"created_at" json:"created_at"`
}

// ExtraData : free-form activity payload stored as JSONB
type ExtraData map[string]any

func (d ExtraData) Value() (driver.Value, error) {
	if d == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(d)
}

func (d *ExtraData) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*d = nil
		return nil
	case []byte:
		return json.Unmarshal(v, d)
	case string:
		return json.Unmarshal([]byte(v), d)
	default:
		return fmt.Errorf("extra_data: unsupported type %T", src)
	}
}
