package notify

import (
	"context"
	"log"

	"github.com/VvkAlgo/RoleMatchAI/internal/domain/ports/adapter"
)

var _ adapter.Notifier = (*NoopNotifier)(nil)

// NoopNotifier implements adapter.Notifier for local/dev runs.
type NoopNotifier struct{}

func NewNoopNotifier() *NoopNotifier {
	return &NoopNotifier{}
}

func (n *NoopNotifier) Notify(_ context.Context, ev adapter.OpsEvent) error {
	log.Printf("[noop-notifier] %s\n", FormatOpsEvent(ev))
	return nil
}
