// Package memstore provides in-process fallbacks for deployments that
// run without redis. State survives only as long as the process.
package memstore

import (
	"context"
	"sync"
	"time"

	"github.com/VvkAlgo/RoleMatchAI/internal/domain"
	"github.com/VvkAlgo/RoleMatchAI/internal/domain/model"
	"github.com/VvkAlgo/RoleMatchAI/internal/domain/ports/repository"
)

var _ repository.SessionStore = (*SessionStore)(nil)

type sessionRow struct {
	session   model.ReviewSession
	expiresAt time.Time
}

// SessionStore keeps review sessions in memory under a TTL.
type SessionStore struct {
	mu   sync.RWMutex
	rows map[string]sessionRow
	ttl  time.Duration
	now  func() time.Time
}

func NewSessionStore(ttl time.Duration) *SessionStore {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &SessionStore{
		rows: make(map[string]sessionRow),
		ttl:  ttl,
		now:  time.Now,
	}
}

func (s *SessionStore) Save(_ context.Context, session *model.ReviewSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows[session.ID] = sessionRow{
		session:   *session,
		expiresAt: s.now().Add(s.ttl),
	}
	return nil
}

// Find returns a shallow copy; records and snapshot share backing
// storage with the saved row, unlike the redis store which serializes.
func (s *SessionStore) Find(_ context.Context, id string) (*model.ReviewSession, error) {
	s.mu.RLock()
	row, ok := s.rows[id]
	s.mu.RUnlock()
	if !ok || s.now().After(row.expiresAt) {
		return nil, domain.ErrNotFound
	}
	out := row.session
	return &out, nil
}

func (s *SessionStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rows, id)
	return nil
}
