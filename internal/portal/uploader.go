package portal

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"visa-advisory-portal/internal/apiclient"
	"visa-advisory-portal/internal/model"
	"visa-advisory-portal/internal/validate"
)

// TempIDPrefix marks optimistic records that the server has not confirmed yet.
const TempIDPrefix = "tmp_"

// uploadingNote : admin_notes of an optimistic record
const uploadingNote = "Subiendo…"

type UploadState int

const (
	StateIdle UploadState = iota
	StateValidating
	StateRejected
	StateSubmitting
	StateCommitted
	StateRolledBack
)

func (s UploadState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateValidating:
		return "validating"
	case StateRejected:
		return "rejected"
	case StateSubmitting:
		return "submitting"
	case StateCommitted:
		return "committed"
	case StateRolledBack:
		return "rolled_back"
	}
	return "unknown"
}

// File : the picked file, Content is sent as is
type File struct {
	Name     string
	MimeType string
	Content  []byte
}

func (f File) Size() int64 {
	return int64(len(f.Content))
}

// Selection : what the user picked in one upload control
type Selection struct {
	Category         string
	FamilyMemberName string
	File             File
	Resubmission     bool
}

// Uploader : one upload control. The selection survives a rolled back attempt so the
// same upload can be retried; a second Submit while validating or submitting is refused.
type Uploader struct {
	portal *Portal

	mu        sync.Mutex
	state     UploadState
	selection *Selection
}

func (u *Uploader) State() UploadState {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.state
}

// Selection : nil when nothing is selected
func (u *Uploader) Selection() *Selection {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.selection == nil {
		return nil
	}
	s := *u.selection
	return &s
}

// Select : first upload for a category that has no document yet
func (u *Uploader) Select(category string, file File) {
	u.selectFile(Selection{Category: category, File: file})
}

// SelectResubmission : new file for a category whose current status is rejected
func (u *Uploader) SelectResubmission(category string, file File) {
	u.selectFile(Selection{Category: category, File: file, Resubmission: true})
}

func (u *Uploader) SetFamilyMember(name string) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.selection != nil {
		u.selection.FamilyMemberName = name
	}
}

func (u *Uploader) selectFile(selection Selection) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.state == StateSubmitting {
		return
	}
	u.selection = &selection
	u.state = StateIdle
}

// Submit : validate, insert an optimistic record, upload, then commit or roll back
func (u *Uploader) Submit(ctx context.Context) (*model.Document, error) {
	u.mu.Lock()
	if u.state == StateValidating || u.state == StateSubmitting {
		u.mu.Unlock()
		return nil, ErrUploadInFlight
	}
	if u.selection == nil {
		u.mu.Unlock()
		return nil, &ValidationError{Fields: map[string]string{"file": ErrNoSelection.Error()}, Err: ErrNoSelection}
	}
	selection := *u.selection
	u.state = StateValidating
	u.mu.Unlock()

	if err := u.validate(selection); err != nil {
		u.setState(StateRejected)
		return nil, err
	}
	u.setState(StateSubmitting)

	p := u.portal
	temp := model.Document{
		ID:               TempIDPrefix + uuid.NewString(),
		Category:         selection.Category,
		OriginalName:     selection.File.Name,
		MimeType:         selection.File.MimeType,
		SizeBytes:        selection.File.Size(),
		Status:           model.DocumentPending,
		AdminNotes:       uploadingNote,
		FamilyMemberName: selection.FamilyMemberName,
		CreatedAt:        p.now(),
	}
	p.insertTemporary(temp)

	document, err := p.api.UploadDocument(ctx, apiclient.UploadRequest{
		Category:         selection.Category,
		FamilyMemberName: selection.FamilyMemberName,
		FileName:         selection.File.Name,
		MimeType:         selection.File.MimeType,
		Content:          selection.File.Content,
	})
	if err != nil {
		p.dropTemporary(temp.ID)
		u.setState(StateRolledBack)
		return nil, &RemoteError{Op: "upload document", Err: err}
	}

	documents, err := p.api.Documents(ctx)
	if err != nil {
		p.logger.Warn("refresh after upload failed", zap.String("document_id", document.ID), zap.Error(err))
		p.appendConfirmed(temp.ID, *document)
	} else {
		p.commitUpload(temp.ID, documents)
	}

	u.mu.Lock()
	u.state = StateCommitted
	u.selection = nil
	u.mu.Unlock()
	return document, nil
}

func (u *Uploader) validate(selection Selection) error {
	current := u.portal.Checklist()
	allowed := current.Available
	if selection.Resubmission {
		allowed = current.Resubmittable()
	}

	err := validate.Upload(selection.File.MimeType, selection.File.Size(), selection.Category, allowed)
	if err == nil {
		return nil
	}

	field := "file"
	if errors.Is(err, validate.ErrInvalidCategory) {
		field = "category"
	}
	return &ValidationError{Fields: map[string]string{field: err.Error()}, Err: err}
}

func (u *Uploader) setState(state UploadState) {
	u.mu.Lock()
	u.state = state
	u.mu.Unlock()
}
