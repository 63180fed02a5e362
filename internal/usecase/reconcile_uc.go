package usecase

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/VvkAlgo/RoleMatchAI/internal/domain"
	"github.com/VvkAlgo/RoleMatchAI/internal/domain/model"
	"github.com/VvkAlgo/RoleMatchAI/internal/domain/ports/repository"
	"github.com/VvkAlgo/RoleMatchAI/internal/infra/logging"
	"github.com/VvkAlgo/RoleMatchAI/internal/infra/metrics"
)

// Compile-time check
var _ ReconcileUseCase = (*reconcileUC)(nil)

// ReconcileUseCase computes which records of a session are still
// eligible for sending: extracted minus already sent. A record is
// retained iff its apply address is non-empty, contains "@", and is
// absent from the sent set. The sent set is read fresh from the ledger
// on every call and merged into the session's snapshot.
type ReconcileUseCase interface {
	Eligible(ctx context.Context, s *model.ReviewSession) ([]model.JobRecord, error)
}

type reconcileUC struct {
	ledger repository.Ledger
	log    *zerolog.Logger
}

func NewReconcileUseCase(ledger repository.Ledger, logger *zerolog.Logger) *reconcileUC {
	l := logger.With().Str("component", "ReconcileUC").Logger()
	return &reconcileUC{ledger: ledger, log: &l}
}

// Eligible never mutates s.Records and preserves extraction order in
// its result. Records sharing an address within one batch are all kept
// here; the send guard catches the later ones once the first has gone
// out.
func (u *reconcileUC) Eligible(ctx context.Context, s *model.ReviewSession) ([]model.JobRecord, error) {
	defer logging.TraceDuration(u.log, "ReconcileUC.Eligible")()
	if s == nil {
		return nil, domain.ErrInvalidArgument
	}

	sent, err := u.ledger.SentAddresses(ctx)
	if err != nil {
		return nil, fmt.Errorf("read sent set: %w", err)
	}
	s.MergeSentSet(sent)

	eligible := make([]model.JobRecord, 0, len(s.Records))
	var droppedMalformed, droppedSent int
	for _, r := range s.Records {
		if !r.HasMailableAddress() {
			droppedMalformed++
			continue
		}
		if s.AlreadySent(r.ApplyEmail) {
			droppedSent++
			continue
		}
		eligible = append(eligible, r)
	}

	metrics.ObserveReconcile(len(eligible), droppedMalformed, droppedSent)
	u.log.Debug().
		Str("session_id", s.ID).
		Int("eligible", len(eligible)).
		Int("dropped_malformed", droppedMalformed).
		Int("dropped_sent", droppedSent).
		Msg("batch reconciled")
	return eligible, nil
}
