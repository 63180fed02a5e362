package adapter

import (
	"context"

	"github.com/VvkAlgo/RoleMatchAI/internal/domain/model"
)

// InboxSource pulls raw job-alert text from an external mailbox. It
// only materializes batches; analysis stays caller-triggered.
type InboxSource interface {
	Fetch(ctx context.Context) ([]model.RawBatch, error)
}
