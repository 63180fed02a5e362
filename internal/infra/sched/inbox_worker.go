package sched

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/VvkAlgo/RoleMatchAI/internal/domain/ports/adapter"
	"github.com/VvkAlgo/RoleMatchAI/internal/usecase"
)

// alertAfterFailures is how many consecutive failed polls it takes
// before the operator hears about it.
const alertAfterFailures = 3

// InboxWorker periodically pulls job-alert mail into the spool via the
// ingest use case. It only moves raw text; extraction and sending stay
// caller-triggered.
type InboxWorker struct {
	interval time.Duration
	ingestUC usecase.IngestUseCase
	alerts   usecase.AlertDispatcher
	log      *zerolog.Logger

	failures int
}

func NewInboxWorker(interval time.Duration, ingestUC usecase.IngestUseCase, alerts usecase.AlertDispatcher, logger *zerolog.Logger) *InboxWorker {
	wLog := logger.With().Str("component", "InboxWorker").Logger()
	return &InboxWorker{
		interval: interval,
		ingestUC: ingestUC,
		alerts:   alerts,
		log:      &wLog,
	}
}

func (w *InboxWorker) Run(ctx context.Context) error {
	w.log.Info().Dur("interval", w.interval).Msg("Starting inbox worker")
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Stopping inbox worker")
			return ctx.Err()
		case <-ticker.C:
			w.pollOnce(ctx)
		}
	}
}

func (w *InboxWorker) pollOnce(ctx context.Context) {
	stored, err := w.ingestUC.PollOnce(ctx)
	if err != nil {
		w.failures++
		w.log.Error().Err(err).Int("consecutive_failures", w.failures).Msg("inbox poll failed")
		if w.failures == alertAfterFailures && w.alerts != nil {
			w.alerts.Dispatch(adapter.OpsEvent{
				Kind:    adapter.OpsEventInboxPollFailed,
				Summary: "inbox polling keeps failing",
				Detail:  err.Error(),
				When:    time.Now(),
			})
		}
		return
	}
	w.failures = 0
	if stored > 0 {
		w.log.Info().Int("count", stored).Msg("batches spooled")
	}
}
