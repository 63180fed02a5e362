package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"github.com/VvkAlgo/RoleMatchAI/internal/domain"
	"github.com/VvkAlgo/RoleMatchAI/internal/domain/model"
	"github.com/VvkAlgo/RoleMatchAI/internal/domain/ports/adapter"
	"github.com/VvkAlgo/RoleMatchAI/internal/domain/ports/repository"
	"github.com/VvkAlgo/RoleMatchAI/internal/infra/logging"
	"github.com/VvkAlgo/RoleMatchAI/internal/infra/metrics"
)

// Compile-time check
var _ AnalysisUseCase = (*analysisUC)(nil)

// AnalysisUseCase turns raw posting text into a review session the
// caller can reconcile and send from. One Analyze call is one
// extractor call; batch order is whatever the extractor produced.
type AnalysisUseCase interface {
	Analyze(ctx context.Context, sourceTag, rawText string) (*model.ReviewSession, error)
	Session(ctx context.Context, id string) (*model.ReviewSession, error)
	Discard(ctx context.Context, id string) error
}

type analysisUC struct {
	extractor adapter.Extractor
	sessions  repository.SessionStore
	log       *zerolog.Logger
}

func NewAnalysisUseCase(extractor adapter.Extractor, sessions repository.SessionStore, logger *zerolog.Logger) *analysisUC {
	l := logger.With().Str("component", "AnalysisUC").Logger()
	return &analysisUC{extractor: extractor, sessions: sessions, log: &l}
}

func (u *analysisUC) Analyze(ctx context.Context, sourceTag, rawText string) (*model.ReviewSession, error) {
	defer logging.TraceDuration(u.log, "AnalysisUC.Analyze")()
	text := strings.TrimSpace(rawText)
	if text == "" {
		return nil, fmt.Errorf("empty batch text: %w", domain.ErrInvalidArgument)
	}
	if sourceTag == "" {
		sourceTag = "manual"
	}

	// Advisory only; a failed count never blocks analysis.
	if n, err := u.extractor.CountTokens(ctx, text); err == nil {
		metrics.ObserveExtractionTokens(u.extractor.Name(), n)
		u.log.Debug().Str("source_tag", sourceTag).Int("prompt_tokens", n).Msg("token estimate")
	}

	start := time.Now()
	records, err := u.extractor.Extract(ctx, text)
	metrics.ObserveExtraction(u.extractor.Name(), len(records), int(time.Since(start).Milliseconds()), err == nil)
	if err != nil {
		u.log.Error().Err(err).Str("source_tag", sourceTag).Msg("extraction failed")
		return nil, err
	}

	// Batch numbering belongs to the workflow, not the provider.
	for i := range records {
		records[i].BatchSeq = i + 1
		records[i].JobType = model.NormalizeJobType(string(records[i].JobType))
	}

	s := model.NewReviewSession(ulid.Make().String(), sourceTag, records, time.Now())
	if err := u.sessions.Save(ctx, s); err != nil {
		return nil, fmt.Errorf("store session: %w", err)
	}

	u.log.Info().
		Str("session_id", s.ID).
		Str("source_tag", sourceTag).
		Int("records", len(records)).
		Dur("duration", time.Since(start)).
		Msg("batch analyzed")
	return s, nil
}

func (u *analysisUC) Session(ctx context.Context, id string) (*model.ReviewSession, error) {
	if strings.TrimSpace(id) == "" {
		return nil, domain.ErrInvalidArgument
	}
	return u.sessions.Find(ctx, id)
}

func (u *analysisUC) Discard(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return domain.ErrInvalidArgument
	}
	return u.sessions.Delete(ctx, id)
}
