package repository

import (
	"context"

	"github.com/VvkAlgo/RoleMatchAI/internal/domain/model"
)

// SessionStore keeps review sessions between requests. Find returns
// domain.ErrNotFound for unknown or expired sessions.
type SessionStore interface {
	Save(ctx context.Context, s *model.ReviewSession) error
	Find(ctx context.Context, id string) (*model.ReviewSession, error)
	Delete(ctx context.Context, id string) error
}
