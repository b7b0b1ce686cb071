package portal_test

import (
	"context"
	"encoding/json"
	"errors"
	"slices"
	"strconv"
	"sync"

	"visa-advisory-portal/internal/apiclient"
	"visa-advisory-portal/internal/model"
	"visa-advisory-portal/internal/model/requestresponse"
)

var errBackendDown = errors.New("backend down")

// fakeBackend : in-memory stand-in for the REST API
type fakeBackend struct {
	mu         sync.Mutex
	categories []string
	documents  []model.Document
	nextID     int

	failUpload  error
	failDelete  error
	failList    error
	uploadGate  chan struct{}
	deleteHook  func()
	uploadCalls int
	listCalls   int
	deletedIDs  []string
}

func newFakeBackend(categories ...string) *fakeBackend {
	return &fakeBackend{categories: categories}
}

func (b *fakeBackend) Categories(context.Context) ([]string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.failList != nil {
		return nil, b.failList
	}
	return slices.Clone(b.categories), nil
}

func (b *fakeBackend) Documents(context.Context) ([]model.Document, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.listCalls++
	if b.failList != nil {
		return nil, b.failList
	}
	return slices.Clone(b.documents), nil
}

func (b *fakeBackend) UploadDocument(ctx context.Context, upload apiclient.UploadRequest) (*model.Document, error) {
	b.mu.Lock()
	gate := b.uploadGate
	b.uploadCalls++
	b.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.failUpload != nil {
		return nil, b.failUpload
	}
	b.nextID++
	document := model.Document{
		ID:               "doc-" + strconv.Itoa(b.nextID),
		Category:         upload.Category,
		OriginalName:     upload.FileName,
		MimeType:         upload.MimeType,
		SizeBytes:        int64(len(upload.Content)),
		Status:           model.DocumentPending,
		FamilyMemberName: upload.FamilyMemberName,
	}
	b.documents = append(b.documents, document)
	return &document, nil
}

func (b *fakeBackend) DeleteDocument(_ context.Context, id string) error {
	b.mu.Lock()
	hook := b.deleteHook
	b.mu.Unlock()
	if hook != nil {
		hook()
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.failDelete != nil {
		return b.failDelete
	}
	b.deletedIDs = append(b.deletedIDs, id)
	b.documents = slices.DeleteFunc(b.documents, func(d model.Document) bool { return d.ID == id })
	return nil
}

// review : what an admin decision does on the server
func (b *fakeBackend) review(id string, status model.DocumentStatus, notes string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.documents {
		if b.documents[i].ID == id {
			b.documents[i].Status = status
			b.documents[i].AdminNotes = notes
		}
	}
}

func (b *fakeBackend) set(f func(b *fakeBackend)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	f(b)
}

// fakeForms : stores forms the way the server does, through JSON
type fakeForms struct {
	mu              sync.Mutex
	stored          []byte
	applicationType string
	saves           []model.IntakeForm
	profileUpdates  []requestresponse.UpdateProfileRequest

	failLoad    error
	failSave    error
	failProfile error
}

func (f *fakeForms) MyForm(context.Context) (*model.IntakeForm, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failLoad != nil {
		return nil, f.failLoad
	}
	if f.stored == nil {
		return nil, &apiclient.APIError{Status: 404, Code: "NOT_FOUND", Message: "form not found"}
	}
	var form model.IntakeForm
	if err := json.Unmarshal(f.stored, &form); err != nil {
		return nil, err
	}
	return &form, nil
}

func (f *fakeForms) SaveForm(_ context.Context, form *model.IntakeForm) (*model.IntakeForm, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failSave != nil {
		return nil, f.failSave
	}
	saved := *form
	if saved.ID == "" {
		saved.ID = "form-1"
	}
	raw, err := json.Marshal(saved)
	if err != nil {
		return nil, err
	}
	f.stored = raw
	f.saves = append(f.saves, saved)
	return &saved, nil
}

func (f *fakeForms) Profile(context.Context) (*model.Client, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	appType := f.applicationType
	if appType == "" {
		appType = model.ApplicationIndividual
	}
	return &model.Client{ApplicationType: appType}, nil
}

func (f *fakeForms) UpdateProfile(_ context.Context, request requestresponse.UpdateProfileRequest) (*model.Client, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.profileUpdates = append(f.profileUpdates, request)
	if f.failProfile != nil {
		return nil, f.failProfile
	}
	if request.ApplicationType != nil {
		f.applicationType = *request.ApplicationType
	}
	return &model.Client{ApplicationType: f.applicationType}, nil
}

func (f *fakeForms) saveCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.saves)
}

func (f *fakeForms) lastSave() model.IntakeForm {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.saves[len(f.saves)-1]
}
