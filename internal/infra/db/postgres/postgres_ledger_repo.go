package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/rs/zerolog"

	"github.com/VvkAlgo/RoleMatchAI/internal/domain/model"
	"github.com/VvkAlgo/RoleMatchAI/internal/domain/ports/repository"
	"github.com/VvkAlgo/RoleMatchAI/internal/infra/metrics"
)

// Rows mirror the spreadsheet columns one to one. The table is
// append-only and carries no uniqueness constraint on contact_email:
// an operator who overrides the duplicate guard elsewhere must stay
// representable here.
const createLedgerTable = `
CREATE TABLE IF NOT EXISTS outreach_ledger (
  id            BIGSERIAL PRIMARY KEY,
  post_id       TEXT NOT NULL,
  job_title     TEXT NOT NULL DEFAULT '',
  company       TEXT NOT NULL DEFAULT '',
  contact_email TEXT NOT NULL,
  status        TEXT NOT NULL,
  relevance     TEXT NOT NULL,
  notes         TEXT NOT NULL DEFAULT '',
  processed_at  TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS outreach_ledger_contact_email_idx
  ON outreach_ledger (contact_email);
`

var (
	_ repository.Ledger            = (*LedgerRepo)(nil)
	_ repository.LedgerProvisioner = (*LedgerRepo)(nil)
)

// LedgerRepo keeps the outreach ledger in Postgres for deployments
// that outgrow a spreadsheet.
type LedgerRepo struct {
	pool *pgxpool.Pool
	log  zerolog.Logger
}

func NewLedgerRepo(pool *pgxpool.Pool, logger zerolog.Logger) *LedgerRepo {
	return &LedgerRepo{
		pool: pool,
		log:  logger.With().Str("component", "postgres_ledger").Logger(),
	}
}

// Provision creates the ledger table when missing. Safe to run on
// every startup.
func (r *LedgerRepo) Provision(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, createLedgerTable); err != nil {
		return fmt.Errorf("create outreach_ledger: %w", err)
	}
	return nil
}

func (r *LedgerRepo) Append(ctx context.Context, e model.LedgerEntry) error {
	const q = `
INSERT INTO outreach_ledger (
  post_id, job_title, company, contact_email, status, relevance, notes, processed_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8);
`
	start := time.Now()
	_, err := r.pool.Exec(ctx, q,
		e.PostID, e.Title, e.Company, e.ContactEmail, e.Status, e.Relevance, e.Notes, e.ProcessedAt)
	metrics.ObserveLedgerOp("postgres", "append", err == nil, time.Since(start))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			r.log.Error().Str("code", pgErr.Code).Str("contact_email", e.ContactEmail).Msg("ledger insert rejected")
		}
		return fmt.Errorf("insert ledger row: %w", err)
	}
	return nil
}

func (r *LedgerRepo) SentAddresses(ctx context.Context) (map[string]struct{}, error) {
	const q = `SELECT DISTINCT contact_email FROM outreach_ledger WHERE status = $1;`
	start := time.Now()
	rows, err := r.pool.Query(ctx, q, model.StatusSent)
	metrics.ObserveLedgerOp("postgres", "sent_addresses", err == nil, time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("query sent addresses: %w", err)
	}
	defer rows.Close()

	sent := make(map[string]struct{})
	for rows.Next() {
		var addr string
		if err := rows.Scan(&addr); err != nil {
			return nil, fmt.Errorf("scan sent address: %w", err)
		}
		if addr != "" {
			sent[addr] = struct{}{}
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sent addresses: %w", err)
	}
	return sent, nil
}

func (r *LedgerRepo) Entries(ctx context.Context) ([]model.LedgerEntry, error) {
	const q = `
SELECT post_id, job_title, company, contact_email, status, relevance, notes, processed_at
  FROM outreach_ledger ORDER BY id;
`
	start := time.Now()
	rows, err := r.pool.Query(ctx, q)
	metrics.ObserveLedgerOp("postgres", "entries", err == nil, time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("query ledger rows: %w", err)
	}
	defer rows.Close()

	var entries []model.LedgerEntry
	for rows.Next() {
		var e model.LedgerEntry
		if err := rows.Scan(&e.PostID, &e.Title, &e.Company, &e.ContactEmail, &e.Status, &e.Relevance, &e.Notes, &e.ProcessedAt); err != nil {
			return nil, fmt.Errorf("scan ledger row: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ledger rows: %w", err)
	}
	metrics.SetLedgerRows("postgres", len(entries))
	return entries, nil
}
