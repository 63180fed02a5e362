package notify

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/VvkAlgo/RoleMatchAI/internal/domain/ports/adapter"
	"github.com/VvkAlgo/RoleMatchAI/internal/infra/worker"
)

// Dispatcher hands alerts to a worker pool so send paths never block
// on notifier latency. A full queue downgrades the alert to a log
// line instead of stalling the caller.
type Dispatcher struct {
	pool     *worker.Pool
	notifier adapter.Notifier
	timeout  time.Duration
	log      zerolog.Logger
}

func NewDispatcher(pool *worker.Pool, notifier adapter.Notifier, logger zerolog.Logger) *Dispatcher {
	return &Dispatcher{
		pool:     pool,
		notifier: notifier,
		timeout:  10 * time.Second,
		log:      logger.With().Str("component", "alert_dispatcher").Logger(),
	}
}

func (d *Dispatcher) Dispatch(ev adapter.OpsEvent) {
	err := d.pool.Submit(func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, d.timeout)
		defer cancel()
		return d.notifier.Notify(ctx, ev)
	})
	if err != nil {
		d.log.Error().Err(err).
			Str("kind", string(ev.Kind)).
			Str("summary", ev.Summary).
			Msg("alert dropped, delivering via log only")
	}
}
