package repository

import (
	"context"

	"github.com/VvkAlgo/RoleMatchAI/internal/domain/model"
)

// Ledger is the system of record for sent applications. Rows are only
// ever appended. The sent set is recomputed from rows whose Status is
// SENT; address matching is exact string equality. No backend imposes
// a uniqueness constraint on contact addresses, so duplicate rows are
// tolerated on read and collapse into the set.
type Ledger interface {
	// Append adds one row at the end of the ledger.
	Append(ctx context.Context, e model.LedgerEntry) error

	// SentAddresses returns the set of contact addresses with a SENT
	// row, read fresh from the backing store.
	SentAddresses(ctx context.Context) (map[string]struct{}, error)

	// Entries returns every row in ledger order.
	Entries(ctx context.Context) ([]model.LedgerEntry, error)
}

// LedgerProvisioner is implemented by backends that can create their
// backing store (worksheet, workbook, table) ahead of first use.
type LedgerProvisioner interface {
	Provision(ctx context.Context) error
}
