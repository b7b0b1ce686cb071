// Package portal is the client-side core of the document portal: a local cache of the
// caller's categories and documents, optimistic uploads and deletes, and the intake wizard.
package portal

import (
	"context"
	"slices"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"visa-advisory-portal/internal/apiclient"
	"visa-advisory-portal/internal/checklist"
	"visa-advisory-portal/internal/model"
)

// DefaultPollInterval : background refresh period while the portal is open
const DefaultPollInterval = 30 * time.Second

// DocumentAPI : remote calls the portal needs, *apiclient.Client satisfies it
type DocumentAPI interface {
	Categories(ctx context.Context) ([]string, error)
	Documents(ctx context.Context) ([]model.Document, error)
	UploadDocument(ctx context.Context, upload apiclient.UploadRequest) (*model.Document, error)
	DeleteDocument(ctx context.Context, id string) error
}

type Option func(*options)

type options struct {
	logger *zap.Logger
	now    func() time.Time
}

func WithLogger(logger *zap.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithClock : time source for temporary records and age calculations
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

func buildOptions(opts []Option) options {
	o := options{logger: zap.NewNop(), now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Portal : client-local copy of server-owned truth. The authoritative lists are only ever
// replaced by fetches; optimistic records live in a separate overlay on top of them.
type Portal struct {
	api    DocumentAPI
	logger *zap.Logger
	now    func() time.Time

	mu         sync.Mutex
	categories []string
	documents  []model.Document
	overlay    []model.Document
	current    checklist.Checklist
	listeners  []func(checklist.Checklist)
}

func New(api DocumentAPI, opts ...Option) *Portal {
	o := buildOptions(opts)
	p := &Portal{api: api, logger: o.logger, now: o.now}
	p.current = checklist.Reconcile(nil, nil)
	return p
}

// OnChange : fn receives every recomputed checklist, outside the portal lock
func (p *Portal) OnChange(fn func(checklist.Checklist)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.listeners = append(p.listeners, fn)
}

func (p *Portal) Checklist() checklist.Checklist {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current
}

func (p *Portal) Categories() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return slices.Clone(p.categories)
}

// Documents : authoritative list followed by in-flight optimistic records
func (p *Portal) Documents() []model.Document {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.visibleLocked()
}

func (p *Portal) visibleLocked() []model.Document {
	out := make([]model.Document, 0, len(p.documents)+len(p.overlay))
	out = append(out, p.documents...)
	return append(out, p.overlay...)
}

// Refresh : fetches categories and documents concurrently and replaces both lists
func (p *Portal) Refresh(ctx context.Context) error {
	var categories []string
	var documents []model.Document

	group, gctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		var err error
		categories, err = p.api.Categories(gctx)
		return err
	})
	group.Go(func() error {
		var err error
		documents, err = p.api.Documents(gctx)
		return err
	})
	if err := group.Wait(); err != nil {
		return &RemoteError{Op: "refresh", Err: err}
	}

	p.mutate(func() {
		p.categories = categories
		p.documents = documents
	})
	return nil
}

// RefreshDocuments : refetches only the document list
func (p *Portal) RefreshDocuments(ctx context.Context) error {
	documents, err := p.api.Documents(ctx)
	if err != nil {
		return &RemoteError{Op: "refresh documents", Err: err}
	}
	p.mutate(func() { p.documents = documents })
	return nil
}

// Watch : refreshes every interval until ctx ends. Failures are logged and polling goes on.
func (p *Portal) Watch(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := p.Refresh(ctx); err != nil && ctx.Err() == nil {
				p.logger.Warn("background refresh failed", zap.Error(err))
			}
		}
	}
}

// Delete : optimistic removal. A failed call puts the removed record back at its
// position unless a refresh in the meantime already brought it back.
func (p *Portal) Delete(ctx context.Context, id string) error {
	var removed model.Document
	idx := -1
	p.mutate(func() {
		idx = slices.IndexFunc(p.documents, func(d model.Document) bool { return d.ID == id })
		if idx < 0 {
			return
		}
		removed = p.documents[idx]
		p.documents = slices.Delete(slices.Clone(p.documents), idx, idx+1)
	})
	if idx < 0 {
		return ErrUnknownDocument
	}

	if err := p.api.DeleteDocument(ctx, id); err != nil {
		p.mutate(func() { p.documents = restoreAt(p.documents, removed, idx) })
		return &RemoteError{Op: "delete document", Err: err}
	}

	if err := p.RefreshDocuments(ctx); err != nil {
		p.logger.Warn("refresh after delete failed", zap.String("document_id", id), zap.Error(err))
	}
	return nil
}

// NewUploader : one upload control bound to this portal
func (p *Portal) NewUploader() *Uploader {
	return &Uploader{portal: p}
}

func (p *Portal) insertTemporary(document model.Document) {
	p.mutate(func() { p.overlay = append(p.overlay, document) })
}

func (p *Portal) dropTemporary(id string) {
	p.mutate(func() { p.overlay = removeByID(p.overlay, id) })
}

// commitUpload : swaps the temporary record for the authoritative list in one recompute
func (p *Portal) commitUpload(tempID string, documents []model.Document) {
	p.mutate(func() {
		p.overlay = removeByID(p.overlay, tempID)
		p.documents = documents
	})
}

// appendConfirmed : fallback when the list cannot be refetched after a successful upload
func (p *Portal) appendConfirmed(tempID string, document model.Document) {
	p.mutate(func() {
		p.overlay = removeByID(p.overlay, tempID)
		if !slices.ContainsFunc(p.documents, func(d model.Document) bool { return d.ID == document.ID }) {
			p.documents = append(slices.Clone(p.documents), document)
		}
	})
}

// mutate : applies change and recomputes the checklist synchronously, then notifies
func (p *Portal) mutate(change func()) {
	p.mu.Lock()
	change()
	p.current = checklist.Reconcile(p.categories, p.visibleLocked())
	current := p.current
	listeners := slices.Clone(p.listeners)
	p.mu.Unlock()

	for _, fn := range listeners {
		fn(current)
	}
}

func restoreAt(documents []model.Document, document model.Document, idx int) []model.Document {
	if slices.ContainsFunc(documents, func(d model.Document) bool { return d.ID == document.ID }) {
		return documents
	}
	return slices.Insert(slices.Clone(documents), min(idx, len(documents)), document)
}

func removeByID(documents []model.Document, id string) []model.Document {
	return slices.DeleteFunc(slices.Clone(documents), func(d model.Document) bool { return d.ID == id })
}
