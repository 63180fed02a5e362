package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/VvkAlgo/RoleMatchAI/internal/domain"
	"github.com/VvkAlgo/RoleMatchAI/internal/domain/model"
	"github.com/VvkAlgo/RoleMatchAI/internal/domain/ports/repository"
	"github.com/VvkAlgo/RoleMatchAI/internal/infra/metrics"
	"github.com/VvkAlgo/RoleMatchAI/internal/infra/security"
)

var _ repository.SessionStore = (*SessionStore)(nil)

// SessionStore keeps review sessions in redis under a TTL, encrypted
// at rest. Sessions hold drafted email bodies and recipient addresses,
// which should not sit readable in a shared redis.
type SessionStore struct {
	client RedisClient
	enc    *security.EncryptionService
	ttl    time.Duration
}

// NewSessionStore builds the store. enc may be nil, in which case
// payloads are stored as plain JSON.
func NewSessionStore(client RedisClient, enc *security.EncryptionService, ttl time.Duration) *SessionStore {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &SessionStore{client: client, enc: enc, ttl: ttl}
}

func sessionKey(id string) string { return "review_session:" + id }

func (s *SessionStore) Save(ctx context.Context, session *model.ReviewSession) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	payload := string(data)
	if s.enc != nil {
		payload, err = s.enc.Encrypt(payload)
		if err != nil {
			return fmt.Errorf("encrypt session: %w", err)
		}
	}
	return s.client.Set(ctx, sessionKey(session.ID), payload, s.ttl)
}

func (s *SessionStore) Find(ctx context.Context, id string) (*model.ReviewSession, error) {
	payload, err := s.client.Get(ctx, sessionKey(id))
	if err != nil {
		if errors.Is(err, redis.Nil) {
			metrics.IncCacheRequest("review_session", "miss")
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get session: %w", err)
	}
	metrics.IncCacheRequest("review_session", "hit")
	if s.enc != nil {
		payload, err = s.enc.Decrypt(payload)
		if err != nil {
			return nil, fmt.Errorf("decrypt session: %w", err)
		}
	}
	var session model.ReviewSession
	if err := json.Unmarshal([]byte(payload), &session); err != nil {
		return nil, fmt.Errorf("unmarshal session: %w", err)
	}
	return &session, nil
}

func (s *SessionStore) Delete(ctx context.Context, id string) error {
	return s.client.Del(ctx, sessionKey(id))
}
