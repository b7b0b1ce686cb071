package portal_test

import (
	"bytes"
	"context"
	"errors"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"visa-advisory-portal/internal/checklist"
	"visa-advisory-portal/internal/model"
	"visa-advisory-portal/internal/portal"
	"visa-advisory-portal/internal/validate"
)

var pdf = portal.File{Name: "scan.pdf", MimeType: "application/pdf", Content: []byte("%PDF-1.4 test")}

func loadedPortal(t *testing.T, backend *fakeBackend) *portal.Portal {
	t.Helper()
	p := portal.New(backend)
	require.NoError(t, p.Refresh(context.Background()))
	return p
}

func TestUploadRollbackLeavesListUntouched(t *testing.T) {
	backend := newFakeBackend("PASAPORTE", "DNI")
	backend.documents = []model.Document{{ID: "doc-0", Category: "DNI", Status: model.DocumentApproved}}
	p := loadedPortal(t, backend)
	before := p.Documents()

	var seen []checklist.Checklist
	p.OnChange(func(c checklist.Checklist) { seen = append(seen, c) })

	backend.set(func(b *fakeBackend) { b.failUpload = errBackendDown })
	uploader := p.NewUploader()
	uploader.Select("PASAPORTE", pdf)

	_, err := uploader.Submit(context.Background())

	var remoteErr *portal.RemoteError
	require.ErrorAs(t, err, &remoteErr)
	assert.ErrorIs(t, err, errBackendDown)
	assert.Equal(t, portal.StateRolledBack, uploader.State())
	if diff := cmp.Diff(before, p.Documents()); diff != "" {
		t.Fatalf("documents changed after rollback (-want +got):\n%s", diff)
	}
	assert.Equal(t, []string{"PASAPORTE"}, p.Checklist().Available)

	require.Len(t, seen, 2)
	assert.Equal(t, 100, seen[0].Progress, "optimistic record counts while in flight")
	assert.Equal(t, 50, seen[1].Progress)

	selection := uploader.Selection()
	require.NotNil(t, selection)
	assert.Equal(t, "PASAPORTE", selection.Category)

	backend.set(func(b *fakeBackend) { b.failUpload = nil })
	document, err := uploader.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, portal.StateCommitted, uploader.State())
	assert.Nil(t, uploader.Selection())
	assert.Len(t, p.Documents(), 2)
	assert.Equal(t, document.ID, p.Documents()[1].ID)
}

func TestUploadOptimisticRecord(t *testing.T) {
	backend := newFakeBackend("PASAPORTE", "DNI")
	gate := make(chan struct{})
	backend.uploadGate = gate
	p := loadedPortal(t, backend)

	uploader := p.NewUploader()
	uploader.Select("PASAPORTE", pdf)

	done := make(chan error, 1)
	go func() {
		_, err := uploader.Submit(context.Background())
		done <- err
	}()

	require.Eventually(t, func() bool { return uploader.State() == portal.StateSubmitting && len(p.Documents()) == 1 }, time.Second, time.Millisecond)

	temp := p.Documents()[0]
	assert.True(t, strings.HasPrefix(temp.ID, portal.TempIDPrefix))
	assert.Equal(t, model.DocumentPending, temp.Status)
	assert.Equal(t, "Subiendo…", temp.AdminNotes)
	assert.Equal(t, 50, p.Checklist().Progress)

	_, err := uploader.Submit(context.Background())
	assert.ErrorIs(t, err, portal.ErrUploadInFlight)

	require.NoError(t, p.Refresh(context.Background()))
	assert.Len(t, p.Documents(), 1, "refresh keeps the optimistic record without duplicating it")

	close(gate)
	require.NoError(t, <-done)

	documents := p.Documents()
	require.Len(t, documents, 1)
	assert.Equal(t, "doc-1", documents[0].ID)
	assert.Equal(t, []string{"DNI"}, p.Checklist().Available)
}

func TestUploadValidationNeverCallsServer(t *testing.T) {
	backend := newFakeBackend("PASAPORTE", "DNI")
	backend.documents = []model.Document{{ID: "doc-0", Category: "DNI", Status: model.DocumentPending}}
	p := loadedPortal(t, backend)

	tests := []struct {
		name      string
		category  string
		file      portal.File
		wantErr   error
		wantField string
	}{
		{"gif", "PASAPORTE", portal.File{Name: "a.gif", MimeType: "image/gif", Content: []byte("GIF89a")}, validate.ErrUnsupportedFormat, "file"},
		{"too large", "PASAPORTE", portal.File{Name: "a.pdf", MimeType: "application/pdf", Content: bytes.Repeat([]byte{1}, int(validate.MaxFileSize)+1)}, validate.ErrFileTooLarge, "file"},
		{"already uploaded", "DNI", pdf, validate.ErrInvalidCategory, "category"},
		{"empty category", "", pdf, validate.ErrInvalidCategory, "category"},
		{"unknown category", "VISA", pdf, validate.ErrInvalidCategory, "category"},
		{"format checked before size", "", portal.File{Name: "a.exe", MimeType: "application/x-msdownload", Content: bytes.Repeat([]byte{1}, int(validate.MaxFileSize)+1)}, validate.ErrUnsupportedFormat, "file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uploader := p.NewUploader()
			uploader.Select(tt.category, tt.file)

			_, err := uploader.Submit(context.Background())

			var validationErr *portal.ValidationError
			require.ErrorAs(t, err, &validationErr)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Contains(t, validationErr.Fields, tt.wantField)
			assert.Equal(t, portal.StateRejected, uploader.State())
		})
	}

	assert.Zero(t, backend.uploadCalls)
	assert.Len(t, p.Documents(), 1)
}

func TestUploadAtExactLimit(t *testing.T) {
	backend := newFakeBackend("PASAPORTE")
	p := loadedPortal(t, backend)

	uploader := p.NewUploader()
	uploader.Select("PASAPORTE", portal.File{Name: "max.png", MimeType: "image/png", Content: bytes.Repeat([]byte{1}, int(validate.MaxFileSize))})

	_, err := uploader.Submit(context.Background())
	require.NoError(t, err)
}

func TestSubmitWithoutSelection(t *testing.T) {
	p := loadedPortal(t, newFakeBackend("PASAPORTE"))

	_, err := p.NewUploader().Submit(context.Background())

	assert.ErrorIs(t, err, portal.ErrNoSelection)
}

func TestPassportAndIDScenario(t *testing.T) {
	backend := newFakeBackend("PASAPORTE", "DNI")
	p := loadedPortal(t, backend)
	assert.Equal(t, []string{"PASAPORTE", "DNI"}, p.Checklist().Available)
	assert.Equal(t, 0, p.Checklist().Progress)

	uploader := p.NewUploader()
	uploader.Select("PASAPORTE", pdf)
	first, err := uploader.Submit(context.Background())
	require.NoError(t, err)

	current := p.Checklist()
	assert.Equal(t, []string{"DNI"}, current.Available)
	assert.Equal(t, 50, current.Progress)
	assert.Equal(t, checklist.StatusPending, current.Status("PASAPORTE"))

	backend.review(first.ID, model.DocumentRejected, "Ilegible")
	require.NoError(t, p.Refresh(context.Background()))
	current = p.Checklist()
	assert.Equal(t, checklist.StatusRejected, current.Status("PASAPORTE"))
	assert.Equal(t, 50, current.Progress)

	uploader.Select("PASAPORTE", pdf)
	_, err = uploader.Submit(context.Background())
	assert.ErrorIs(t, err, validate.ErrInvalidCategory, "the primary flow only offers categories without documents")

	uploader.SelectResubmission("PASAPORTE", portal.File{Name: "scan-v2.pdf", MimeType: "application/pdf", Content: []byte("%PDF-1.7")})
	_, err = uploader.Submit(context.Background())
	require.NoError(t, err)

	current = p.Checklist()
	assert.Len(t, current.ByCategory["PASAPORTE"], 2)
	assert.Equal(t, checklist.StatusRejected, current.Status("PASAPORTE"))
	assert.Equal(t, 50, current.Progress)
}

func TestResubmissionRequiresRejectedCategory(t *testing.T) {
	backend := newFakeBackend("PASAPORTE", "DNI")
	backend.documents = []model.Document{{ID: "doc-0", Category: "DNI", Status: model.DocumentApproved}}
	p := loadedPortal(t, backend)

	uploader := p.NewUploader()
	uploader.SelectResubmission("PASAPORTE", pdf)
	_, err := uploader.Submit(context.Background())
	assert.ErrorIs(t, err, validate.ErrInvalidCategory)

	uploader.SelectResubmission("DNI", pdf)
	_, err = uploader.Submit(context.Background())
	assert.ErrorIs(t, err, validate.ErrInvalidCategory)
}

func TestUploadCommitFallsBackWhenRefetchFails(t *testing.T) {
	backend := newFakeBackend("PASAPORTE", "DNI")
	p := loadedPortal(t, backend)

	gate := make(chan struct{})
	backend.set(func(b *fakeBackend) { b.uploadGate = gate })
	uploader := p.NewUploader()
	uploader.Select("DNI", pdf)

	done := make(chan error, 1)
	go func() {
		_, err := uploader.Submit(context.Background())
		done <- err
	}()
	require.Eventually(t, func() bool { return uploader.State() == portal.StateSubmitting }, time.Second, time.Millisecond)

	backend.set(func(b *fakeBackend) { b.failList = errBackendDown })
	close(gate)
	require.NoError(t, <-done)

	documents := p.Documents()
	require.Len(t, documents, 1)
	assert.Equal(t, "doc-1", documents[0].ID)
}

func TestDelete(t *testing.T) {
	seed := []model.Document{
		{ID: "doc-1", Category: "PASAPORTE", Status: model.DocumentPending},
		{ID: "doc-2", Category: "DNI", Status: model.DocumentRejected},
	}

	t.Run("failure restores the previous list", func(t *testing.T) {
		backend := newFakeBackend("PASAPORTE", "DNI")
		backend.documents = seed
		p := loadedPortal(t, backend)

		var progress []int
		p.OnChange(func(c checklist.Checklist) { progress = append(progress, c.Progress) })
		backend.set(func(b *fakeBackend) { b.failDelete = errBackendDown })

		err := p.Delete(context.Background(), "doc-1")

		var remoteErr *portal.RemoteError
		require.ErrorAs(t, err, &remoteErr)
		assert.Equal(t, seed, p.Documents())
		assert.Equal(t, []int{50, 100}, progress)
	})

	t.Run("failure keeps a list refreshed during the call", func(t *testing.T) {
		backend := newFakeBackend("PASAPORTE", "DNI")
		backend.documents = slices.Clone(seed)
		p := loadedPortal(t, backend)

		newer := model.Document{ID: "doc-3", Category: "DNI", Status: model.DocumentPending}
		backend.set(func(b *fakeBackend) {
			b.failDelete = errBackendDown
			b.deleteHook = func() {
				backend.set(func(b *fakeBackend) { b.documents = append(b.documents, newer) })
				require.NoError(t, p.RefreshDocuments(context.Background()))
			}
		})

		err := p.Delete(context.Background(), "doc-1")

		var remoteErr *portal.RemoteError
		require.ErrorAs(t, err, &remoteErr)
		assert.Equal(t, append(slices.Clone(seed), newer), p.Documents())
	})

	t.Run("failure after a refresh without the record puts it back once", func(t *testing.T) {
		backend := newFakeBackend("PASAPORTE", "DNI")
		backend.documents = slices.Clone(seed)
		p := loadedPortal(t, backend)

		backend.set(func(b *fakeBackend) {
			b.failDelete = errBackendDown
			b.deleteHook = func() {
				backend.set(func(b *fakeBackend) { b.documents = b.documents[1:] })
				require.NoError(t, p.RefreshDocuments(context.Background()))
			}
		})

		require.Error(t, p.Delete(context.Background(), "doc-1"))
		assert.Equal(t, seed, p.Documents())
	})

	t.Run("success refetches", func(t *testing.T) {
		backend := newFakeBackend("PASAPORTE", "DNI")
		backend.documents = seed
		p := loadedPortal(t, backend)
		calls := backend.listCalls

		require.NoError(t, p.Delete(context.Background(), "doc-2"))

		assert.Equal(t, []string{"doc-2"}, backend.deletedIDs)
		assert.Equal(t, calls+1, backend.listCalls)
		assert.Equal(t, []string{"DNI"}, p.Checklist().Available)
	})

	t.Run("unknown id", func(t *testing.T) {
		p := loadedPortal(t, newFakeBackend("PASAPORTE"))
		assert.ErrorIs(t, p.Delete(context.Background(), "nope"), portal.ErrUnknownDocument)
	})
}

func TestRefreshReplacesLists(t *testing.T) {
	backend := newFakeBackend("PASAPORTE", "DNI")
	backend.documents = []model.Document{{ID: "doc-1", Category: "DNI", Status: model.DocumentPending}}
	p := loadedPortal(t, backend)

	require.NoError(t, p.Refresh(context.Background()))
	require.NoError(t, p.Refresh(context.Background()))
	assert.Len(t, p.Documents(), 1)

	backend.set(func(b *fakeBackend) { b.categories = []string{"DNI"} })
	require.NoError(t, p.Refresh(context.Background()))
	assert.Equal(t, []string{"DNI"}, p.Categories())
	assert.Equal(t, 100, p.Checklist().Progress)

	backend.set(func(b *fakeBackend) { b.failList = errBackendDown })
	err := p.Refresh(context.Background())
	assert.ErrorIs(t, err, errBackendDown)
	assert.Len(t, p.Documents(), 1, "a failed refresh keeps the last known lists")
}

func TestWatchKeepsPollingAfterFailures(t *testing.T) {
	backend := newFakeBackend("PASAPORTE")
	backend.failList = errBackendDown
	p := portal.New(backend)

	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		p.Watch(ctx, 5*time.Millisecond)
	}()

	require.Eventually(t, func() bool {
		backend.mu.Lock()
		defer backend.mu.Unlock()
		return backend.listCalls >= 2
	}, time.Second, time.Millisecond)

	backend.set(func(b *fakeBackend) { b.failList = nil })
	require.Eventually(t, func() bool { return len(p.Categories()) == 1 }, time.Second, time.Millisecond)

	cancel()
	wg.Wait()
}

func TestRemoteErrorUnwraps(t *testing.T) {
	err := error(&portal.RemoteError{Op: "upload document", Err: errBackendDown})
	assert.True(t, errors.Is(err, errBackendDown))
	assert.Equal(t, "upload document: backend down", err.Error())
}
