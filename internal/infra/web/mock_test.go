//go:build !integration

package web

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/VvkAlgo/RoleMatchAI/internal/domain"
	"github.com/VvkAlgo/RoleMatchAI/internal/domain/model"
	"github.com/VvkAlgo/RoleMatchAI/internal/domain/ports/adapter"
)

func newTestLogger() *zerolog.Logger { l := zerolog.Nop(); return &l }

// --- Mock Ports ---

type mockExtractor struct {
	mu           sync.Mutex
	records      []model.JobRecord
	ExtractError error // To simulate errors
	Calls        int
}

func (m *mockExtractor) Extract(ctx context.Context, rawText string) ([]model.JobRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls++
	if m.ExtractError != nil {
		return nil, m.ExtractError
	}
	out := make([]model.JobRecord, len(m.records))
	copy(out, m.records)
	return out, nil
}

func (m *mockExtractor) CountTokens(ctx context.Context, rawText string) (int, error) {
	return len(rawText) / 4, nil
}

func (m *mockExtractor) Name() string { return "mock" }

type mockSessionStore struct {
	mu        sync.Mutex
	sessions  map[string]*model.ReviewSession
	SaveError error
}

func newMockSessionStore() *mockSessionStore {
	return &mockSessionStore{sessions: make(map[string]*model.ReviewSession)}
}

func (m *mockSessionStore) Save(ctx context.Context, s *model.ReviewSession) error {
	if m.SaveError != nil {
		return m.SaveError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = s
	return nil
}

func (m *mockSessionStore) Find(ctx context.Context, id string) (*model.ReviewSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return s, nil
}

func (m *mockSessionStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.sessions, id)
	return nil
}

type mockLedger struct {
	mu          sync.Mutex
	rows        []model.LedgerEntry
	sent        map[string]struct{}
	AppendError error
	ReadError   error
}

func newMockLedger(sent ...string) *mockLedger {
	m := &mockLedger{sent: make(map[string]struct{})}
	for _, a := range sent {
		m.sent[a] = struct{}{}
	}
	return m
}

func (m *mockLedger) Append(ctx context.Context, e model.LedgerEntry) error {
	if m.AppendError != nil {
		return m.AppendError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows = append(m.rows, e)
	if e.Status == model.StatusSent {
		m.sent[e.ContactEmail] = struct{}{}
	}
	return nil
}

func (m *mockLedger) SentAddresses(ctx context.Context) (map[string]struct{}, error) {
	if m.ReadError != nil {
		return nil, m.ReadError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]struct{}, len(m.sent))
	for a := range m.sent {
		out[a] = struct{}{}
	}
	return out, nil
}

func (m *mockLedger) Entries(ctx context.Context) ([]model.LedgerEntry, error) {
	if m.ReadError != nil {
		return nil, m.ReadError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.LedgerEntry, len(m.rows))
	copy(out, m.rows)
	return out, nil
}

func (m *mockLedger) Rows() []model.LedgerEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.LedgerEntry, len(m.rows))
	copy(out, m.rows)
	return out
}

type mockMailer struct {
	mu        sync.Mutex
	sent      []adapter.OutboundMail
	SendError error
}

func (m *mockMailer) Send(ctx context.Context, mail adapter.OutboundMail) (string, error) {
	if m.SendError != nil {
		return "", m.SendError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, mail)
	return "msg-1", nil
}

func (m *mockMailer) Sent() []adapter.OutboundMail {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]adapter.OutboundMail, len(m.sent))
	copy(out, m.sent)
	return out
}

type mockResume struct{}

func (mockResume) Resume(ctx context.Context) (adapter.Attachment, error) {
	return adapter.Attachment{Filename: "resume.pdf", MIMEType: "application/pdf", Content: []byte("%PDF-1.4")}, nil
}

type mockSpool struct {
	mu       sync.Mutex
	batches  map[string]model.RawBatch
	PutError error
}

func newMockSpool() *mockSpool {
	return &mockSpool{batches: make(map[string]model.RawBatch)}
}

func (m *mockSpool) Put(ctx context.Context, b model.RawBatch) error {
	if m.PutError != nil {
		return m.PutError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.batches[b.Tag] = b
	return nil
}

func (m *mockSpool) Get(ctx context.Context, tag string) (model.RawBatch, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.batches[tag]
	if !ok {
		return model.RawBatch{}, domain.ErrNotFound
	}
	return b, nil
}

func (m *mockSpool) Tags(ctx context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	tags := make([]string, 0, len(m.batches))
	for t := range m.batches {
		tags = append(tags, t)
	}
	return tags, nil
}

func (m *mockSpool) Remove(ctx context.Context, tag string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.batches[tag]; !ok {
		return domain.ErrNotFound
	}
	delete(m.batches, tag)
	return nil
}

type mockInbox struct {
	batches    []model.RawBatch
	FetchError error
}

func (m *mockInbox) Fetch(ctx context.Context) ([]model.RawBatch, error) {
	if m.FetchError != nil {
		return nil, m.FetchError
	}
	return m.batches, nil
}
