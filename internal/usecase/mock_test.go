//go:build !integration

package usecase_test

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/VvkAlgo/RoleMatchAI/internal/domain"
	"github.com/VvkAlgo/RoleMatchAI/internal/domain/model"
	"github.com/VvkAlgo/RoleMatchAI/internal/domain/ports/adapter"
	"github.com/VvkAlgo/RoleMatchAI/internal/domain/ports/repository"
	"github.com/VvkAlgo/RoleMatchAI/internal/usecase"
)

// -----------------------------
// Utilities: tiny helpers
// -----------------------------

func now() time.Time { return time.Now().Truncate(time.Millisecond) }

// =============================
// Adapters
// =============================

// ---- Mock Extractor ----

type MockExtractor struct {
	mu      sync.Mutex
	Records []model.JobRecord

	ExtractFunc     func(ctx context.Context, rawText string) ([]model.JobRecord, error)
	CountTokensFunc func(ctx context.Context, rawText string) (int, error)

	Calls struct {
		Extract []string
		Count   int
	}
}

var _ adapter.Extractor = (*MockExtractor)(nil)

func (m *MockExtractor) Extract(ctx context.Context, rawText string) ([]model.JobRecord, error) {
	m.mu.Lock()
	m.Calls.Extract = append(m.Calls.Extract, rawText)
	m.mu.Unlock()
	if m.ExtractFunc != nil {
		return m.ExtractFunc(ctx, rawText)
	}
	out := make([]model.JobRecord, len(m.Records))
	copy(out, m.Records)
	return out, nil
}

func (m *MockExtractor) CountTokens(ctx context.Context, rawText string) (int, error) {
	m.mu.Lock()
	m.Calls.Count++
	m.mu.Unlock()
	if m.CountTokensFunc != nil {
		return m.CountTokensFunc(ctx, rawText)
	}
	return len(rawText) / 4, nil
}

func (m *MockExtractor) Name() string { return "mock" }

// ---- Mock Mailer ----

type MockMailer struct {
	mu   sync.Mutex
	Sent []adapter.OutboundMail // capture of every delivered mail

	SendFunc func(ctx context.Context, mail adapter.OutboundMail) (string, error)
}

var _ adapter.Mailer = (*MockMailer)(nil)

func (m *MockMailer) Send(ctx context.Context, mail adapter.OutboundMail) (string, error) {
	if m.SendFunc != nil {
		return m.SendFunc(ctx, mail)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Sent = append(m.Sent, mail)
	return fmt.Sprintf("msg-%d", len(m.Sent)), nil
}

// ---- Mock ResumeProvider ----

type MockResume struct {
	ResumeFunc func(ctx context.Context) (adapter.Attachment, error)
}

var _ adapter.ResumeProvider = (*MockResume)(nil)

func (m *MockResume) Resume(ctx context.Context) (adapter.Attachment, error) {
	if m.ResumeFunc != nil {
		return m.ResumeFunc(ctx)
	}
	return adapter.Attachment{Filename: "resume.pdf", MIMEType: "application/pdf", Content: []byte("%PDF-stub")}, nil
}

// ---- Mock AlertDispatcher ----

type MockAlerts struct {
	mu     sync.Mutex
	Events []adapter.OpsEvent
}

var _ usecase.AlertDispatcher = (*MockAlerts)(nil)

func (a *MockAlerts) Dispatch(ev adapter.OpsEvent) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.Events = append(a.Events, ev)
}

// ---- Mock DraftRenderer ----

type MockDrafter struct{}

var _ usecase.DraftRenderer = (*MockDrafter)(nil)

func (d *MockDrafter) Subject(rec model.JobRecord) string { return "Application for " + rec.Title }
func (d *MockDrafter) Body(rec model.JobRecord) string    { return "drafted body for " + rec.Company }

// ---- Mock InboxSource ----

type MockInbox struct {
	mu      sync.Mutex
	Batches []model.RawBatch

	FetchFunc func(ctx context.Context) ([]model.RawBatch, error)

	Calls struct{ Fetch int }
}

var _ adapter.InboxSource = (*MockInbox)(nil)

func (m *MockInbox) Fetch(ctx context.Context) ([]model.RawBatch, error) {
	m.mu.Lock()
	m.Calls.Fetch++
	m.mu.Unlock()
	if m.FetchFunc != nil {
		return m.FetchFunc(ctx)
	}
	out := make([]model.RawBatch, len(m.Batches))
	copy(out, m.Batches)
	return out, nil
}

// =============================
// Repositories
// =============================

// ---- Mock Ledger ----

type MockLedger struct {
	mu   sync.Mutex
	rows []model.LedgerEntry
	sent map[string]struct{}

	AppendFunc        func(ctx context.Context, e model.LedgerEntry) error
	SentAddressesFunc func(ctx context.Context) (map[string]struct{}, error)
	EntriesFunc       func(ctx context.Context) ([]model.LedgerEntry, error)
}

var _ repository.Ledger = (*MockLedger)(nil)

func NewMockLedger(sentAddrs ...string) *MockLedger {
	l := &MockLedger{sent: map[string]struct{}{}}
	for _, a := range sentAddrs {
		l.sent[a] = struct{}{}
	}
	return l
}

func (r *MockLedger) Append(ctx context.Context, e model.LedgerEntry) error {
	if r.AppendFunc != nil {
		return r.AppendFunc(ctx, e)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows = append(r.rows, e)
	if e.Status == model.StatusSent {
		r.sent[e.ContactEmail] = struct{}{}
	}
	return nil
}

func (r *MockLedger) SentAddresses(ctx context.Context) (map[string]struct{}, error) {
	if r.SentAddressesFunc != nil {
		return r.SentAddressesFunc(ctx)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]struct{}, len(r.sent))
	for a := range r.sent {
		out[a] = struct{}{}
	}
	return out, nil
}

func (r *MockLedger) Entries(ctx context.Context) ([]model.LedgerEntry, error) {
	if r.EntriesFunc != nil {
		return r.EntriesFunc(ctx)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.LedgerEntry, len(r.rows))
	copy(out, r.rows)
	return out, nil
}

func (r *MockLedger) Rows() []model.LedgerEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.LedgerEntry, len(r.rows))
	copy(out, r.rows)
	return out
}

// ---- Mock SessionStore ----

type MockSessionStore struct {
	mu   sync.Mutex
	data map[string]*model.ReviewSession

	SaveFunc   func(ctx context.Context, s *model.ReviewSession) error
	FindFunc   func(ctx context.Context, id string) (*model.ReviewSession, error)
	DeleteFunc func(ctx context.Context, id string) error

	Calls struct{ Save int }
}

var _ repository.SessionStore = (*MockSessionStore)(nil)

func NewMockSessionStore() *MockSessionStore {
	return &MockSessionStore{data: map[string]*model.ReviewSession{}}
}

func (r *MockSessionStore) Save(ctx context.Context, s *model.ReviewSession) error {
	r.mu.Lock()
	r.Calls.Save++
	r.mu.Unlock()
	if r.SaveFunc != nil {
		return r.SaveFunc(ctx, s)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	// The pointer is stored on purpose: callers hand the same session
	// to later reconcile and send calls, mirroring the redis store
	// where the snapshot round-trips.
	r.data[s.ID] = s
	return nil
}

func (r *MockSessionStore) Find(ctx context.Context, id string) (*model.ReviewSession, error) {
	if r.FindFunc != nil {
		return r.FindFunc(ctx, id)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.data[id]; ok {
		return s, nil
	}
	return nil, domain.ErrNotFound
}

func (r *MockSessionStore) Delete(ctx context.Context, id string) error {
	if r.DeleteFunc != nil {
		return r.DeleteFunc(ctx, id)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.data, id)
	return nil
}

// ---- Mock Spool ----

type MockSpool struct {
	mu    sync.Mutex
	data  map[string]model.RawBatch
	order []string

	PutFunc    func(ctx context.Context, b model.RawBatch) error
	RemoveFunc func(ctx context.Context, tag string) error
}

var _ repository.Spool = (*MockSpool)(nil)

func NewMockSpool() *MockSpool {
	return &MockSpool{data: map[string]model.RawBatch{}}
}

func (r *MockSpool) Put(ctx context.Context, b model.RawBatch) error {
	if r.PutFunc != nil {
		return r.PutFunc(ctx, b)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.data[b.Tag]; !exists {
		r.order = append(r.order, b.Tag)
	}
	r.data[b.Tag] = b
	return nil
}

func (r *MockSpool) Get(ctx context.Context, tag string) (model.RawBatch, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if b, ok := r.data[tag]; ok {
		return b, nil
	}
	return model.RawBatch{}, domain.ErrNotFound
}

func (r *MockSpool) Tags(ctx context.Context) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out, nil
}

func (r *MockSpool) Remove(ctx context.Context, tag string) error {
	if r.RemoveFunc != nil {
		return r.RemoveFunc(ctx, tag)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.data[tag]; !ok {
		return domain.ErrNotFound
	}
	delete(r.data, tag)
	for i, t := range r.order {
		if t == tag {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

// =============================
// Infra helpers for tests
// =============================

// newTestLogger creates a silent zerolog.Logger for use in tests.
// It writes to io.Discard to prevent logs from cluttering test output.
func newTestLogger() *zerolog.Logger {
	logger := zerolog.New(io.Discard)
	return &logger
}
