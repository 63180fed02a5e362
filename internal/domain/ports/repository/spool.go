package repository

import (
	"context"

	"github.com/VvkAlgo/RoleMatchAI/internal/domain/model"
)

// Spool stores raw batches awaiting analysis, keyed by tag. The inbox
// poller writes into it; the caller lists and picks batches from it.
type Spool interface {
	Put(ctx context.Context, b model.RawBatch) error
	Get(ctx context.Context, tag string) (model.RawBatch, error)
	Tags(ctx context.Context) ([]string, error)
	Remove(ctx context.Context, tag string) error
}
