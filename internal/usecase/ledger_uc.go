package usecase

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/VvkAlgo/RoleMatchAI/internal/domain/model"
	"github.com/VvkAlgo/RoleMatchAI/internal/domain/ports/repository"
	"github.com/VvkAlgo/RoleMatchAI/internal/infra/logging"
)

// Compile-time check
var _ LedgerUseCase = (*ledgerUC)(nil)

// LedgerUseCase exposes the ledger for review surfaces.
type LedgerUseCase interface {
	Entries(ctx context.Context) ([]model.LedgerEntry, error)
}

type ledgerUC struct {
	ledger repository.Ledger
	log    *zerolog.Logger
}

func NewLedgerUseCase(ledger repository.Ledger, logger *zerolog.Logger) *ledgerUC {
	l := logger.With().Str("component", "LedgerUC").Logger()
	return &ledgerUC{ledger: ledger, log: &l}
}

func (u *ledgerUC) Entries(ctx context.Context) ([]model.LedgerEntry, error) {
	defer logging.TraceDuration(u.log, "LedgerUC.Entries")()
	return u.ledger.Entries(ctx)
}
