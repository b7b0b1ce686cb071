package requestresponse

import "visa-advisory-portal/internal/model"

// UploadDocumentRequest : multipart metadata of an upload, filled by the handler
type UploadDocumentRequest struct {
	UserID           string
	Category         string
	FamilyMemberName string
	OriginalName     string
	MimeType         string
	Content          []byte
	Replace          bool
}

// ReviewDocumentRequest : admin decision on a document
type ReviewDocumentRequest struct {
	Status     model.DocumentStatus `json:"status" validate:"required,oneof=approved rejected" example:"rejected"`
	AdminNotes string               `json:"admin_notes" validate:"max=2000" example:"Passport scan is blurry"`
}

// DeleteDocumentResponse : result of a delete
type DeleteDocumentResponse struct {
	ID      string `json:"id" example:"3f1a..."`
	Deleted bool   `json:"deleted" example:"true"`
}
