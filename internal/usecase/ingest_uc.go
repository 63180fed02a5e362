package usecase

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/VvkAlgo/RoleMatchAI/internal/domain"
	"github.com/VvkAlgo/RoleMatchAI/internal/domain/model"
	"github.com/VvkAlgo/RoleMatchAI/internal/domain/ports/adapter"
	"github.com/VvkAlgo/RoleMatchAI/internal/domain/ports/repository"
	"github.com/VvkAlgo/RoleMatchAI/internal/infra/logging"
	"github.com/VvkAlgo/RoleMatchAI/internal/infra/metrics"
)

// Compile-time check
var _ IngestUseCase = (*ingestUC)(nil)

// IngestUseCase moves raw job-alert text from the inbox into the
// spool. It never extracts and never sends; analysis stays a separate,
// caller-triggered step.
type IngestUseCase interface {
	// PollOnce fetches pending alerts and spools them, returning how
	// many batches were stored.
	PollOnce(ctx context.Context) (int, error)
	Batches(ctx context.Context) ([]string, error)
	Batch(ctx context.Context, tag string) (model.RawBatch, error)
	Remove(ctx context.Context, tag string) error
}

type ingestUC struct {
	source adapter.InboxSource
	spool  repository.Spool
	log    *zerolog.Logger
}

func NewIngestUseCase(source adapter.InboxSource, spool repository.Spool, logger *zerolog.Logger) *ingestUC {
	l := logger.With().Str("component", "IngestUC").Logger()
	return &ingestUC{source: source, spool: spool, log: &l}
}

func (u *ingestUC) PollOnce(ctx context.Context) (int, error) {
	defer logging.TraceDuration(u.log, "IngestUC.PollOnce")()
	if u.source == nil {
		return 0, fmt.Errorf("no inbox source configured: %w", domain.ErrInvalidArgument)
	}
	batches, err := u.source.Fetch(ctx)
	if err != nil {
		return 0, fmt.Errorf("fetch inbox: %w", err)
	}
	stored := 0
	for _, b := range batches {
		if err := u.spool.Put(ctx, b); err != nil {
			u.log.Error().Err(err).Str("tag", b.Tag).Msg("spool write failed")
			continue
		}
		stored++
	}
	metrics.IncInboxBatches(stored)
	u.log.Info().Int("fetched", len(batches)).Int("stored", stored).Msg("inbox polled")
	return stored, nil
}

func (u *ingestUC) Batches(ctx context.Context) ([]string, error) {
	return u.spool.Tags(ctx)
}

func (u *ingestUC) Batch(ctx context.Context, tag string) (model.RawBatch, error) {
	if tag == "" {
		return model.RawBatch{}, domain.ErrInvalidArgument
	}
	return u.spool.Get(ctx, tag)
}

func (u *ingestUC) Remove(ctx context.Context, tag string) error {
	if tag == "" {
		return domain.ErrInvalidArgument
	}
	return u.spool.Remove(ctx, tag)
}
