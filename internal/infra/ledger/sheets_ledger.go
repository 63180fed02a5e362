package ledger

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/VvkAlgo/RoleMatchAI/internal/domain/model"
	"github.com/VvkAlgo/RoleMatchAI/internal/domain/ports/repository"
	"github.com/VvkAlgo/RoleMatchAI/internal/infra/metrics"
)

// SheetsLedger keeps the outreach ledger in a Google Sheets tab. This
// is the production backend; the sheet doubles as the user-facing
// tracker, so column order must stay stable.
type SheetsLedger struct {
	svc           *sheets.Service
	spreadsheetID string
	sheetName     string
	log           zerolog.Logger
}

var (
	_ repository.Ledger            = (*SheetsLedger)(nil)
	_ repository.LedgerProvisioner = (*SheetsLedger)(nil)
)

func NewSheetsLedger(ctx context.Context, client *http.Client, spreadsheetID, sheetName string, logger zerolog.Logger) (*SheetsLedger, error) {
	if spreadsheetID == "" {
		return nil, fmt.Errorf("spreadsheet id is empty")
	}
	if sheetName == "" {
		sheetName = "Job Tracker"
	}
	svc, err := sheets.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return &SheetsLedger{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		sheetName:     sheetName,
		log:           logger.With().Str("component", "sheets_ledger").Logger(),
	}, nil
}

// Provision creates the tab and its header row when missing. Safe to
// run on every startup.
func (r *SheetsLedger) Provision(ctx context.Context) error {
	ss, err := r.svc.Spreadsheets.Get(r.spreadsheetID).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("get spreadsheet: %w", err)
	}
	exists := false
	for _, sh := range ss.Sheets {
		if sh.Properties != nil && sh.Properties.Title == r.sheetName {
			exists = true
			break
		}
	}
	if !exists {
		req := &sheets.BatchUpdateSpreadsheetRequest{Requests: []*sheets.Request{{
			AddSheet: &sheets.AddSheetRequest{Properties: &sheets.SheetProperties{Title: r.sheetName}},
		}}}
		if _, err := r.svc.Spreadsheets.BatchUpdate(r.spreadsheetID, req).Context(ctx).Do(); err != nil {
			return fmt.Errorf("add sheet %q: %w", r.sheetName, err)
		}
		r.log.Info().Str("sheet", r.sheetName).Msg("created ledger sheet")
	}

	head, err := r.svc.Spreadsheets.Values.Get(r.spreadsheetID, r.rangeRef("A1:H1")).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("read header row: %w", err)
	}
	if len(head.Values) == 0 {
		if err := r.append(ctx, Header); err != nil {
			return fmt.Errorf("write header row: %w", err)
		}
		r.log.Info().Str("sheet", r.sheetName).Msg("wrote ledger header")
	}
	return nil
}

func (r *SheetsLedger) Append(ctx context.Context, e model.LedgerEntry) error {
	start := time.Now()
	err := r.append(ctx, RowValues(e))
	metrics.ObserveLedgerOp("sheets", "append", err == nil, time.Since(start))
	if err != nil {
		return fmt.Errorf("append ledger row: %w", err)
	}
	return nil
}

// SentAddresses reads the Contact Email and Status columns below the
// header; only rows marked SENT count. Addresses are kept exactly as
// stored.
func (r *SheetsLedger) SentAddresses(ctx context.Context) (map[string]struct{}, error) {
	start := time.Now()
	resp, err := r.svc.Spreadsheets.Values.Get(r.spreadsheetID, r.rangeRef("D2:E")).Context(ctx).Do()
	metrics.ObserveLedgerOp("sheets", "sent_addresses", err == nil, time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("read contact email column: %w", err)
	}
	sent := make(map[string]struct{}, len(resp.Values))
	for _, row := range resp.Values {
		if len(row) < 2 {
			continue
		}
		addr, _ := row[0].(string)
		status, _ := row[1].(string)
		if addr != "" && status == model.StatusSent {
			sent[addr] = struct{}{}
		}
	}
	return sent, nil
}

func (r *SheetsLedger) Entries(ctx context.Context) ([]model.LedgerEntry, error) {
	start := time.Now()
	resp, err := r.svc.Spreadsheets.Values.Get(r.spreadsheetID, r.rangeRef("A2:H")).Context(ctx).Do()
	metrics.ObserveLedgerOp("sheets", "entries", err == nil, time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("read ledger rows: %w", err)
	}
	entries := make([]model.LedgerEntry, 0, len(resp.Values))
	for _, row := range resp.Values {
		cells := make([]string, 0, len(row))
		for _, v := range row {
			s, _ := v.(string)
			cells = append(cells, s)
		}
		entries = append(entries, EntryFromRow(cells))
	}
	metrics.SetLedgerRows("sheets", len(entries))
	return entries, nil
}

func (r *SheetsLedger) append(ctx context.Context, cells []string) error {
	row := make([]interface{}, len(cells))
	for i, c := range cells {
		row[i] = c
	}
	_, err := r.svc.Spreadsheets.Values.
		Append(r.spreadsheetID, r.rangeRef("A:H"), &sheets.ValueRange{Values: [][]interface{}{row}}).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	return err
}

func (r *SheetsLedger) rangeRef(cells string) string {
	return fmt.Sprintf("'%s'!%s", r.sheetName, cells)
}
