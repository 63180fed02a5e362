package ledger

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/gofrs/flock"
	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"

	"github.com/VvkAlgo/RoleMatchAI/internal/domain/model"
	"github.com/VvkAlgo/RoleMatchAI/internal/domain/ports/repository"
	"github.com/VvkAlgo/RoleMatchAI/internal/infra/metrics"
)

// ExcelLedger keeps the ledger in a local .xlsx workbook. Meant for
// offline use and tests. A sibling lock file serializes access across
// processes; the mutex serializes within this one.
type ExcelLedger struct {
	path      string
	sheetName string
	mu        sync.Mutex
	flk       *flock.Flock
	log       zerolog.Logger
}

var (
	_ repository.Ledger            = (*ExcelLedger)(nil)
	_ repository.LedgerProvisioner = (*ExcelLedger)(nil)
)

func NewExcelLedger(path, sheetName string, logger zerolog.Logger) (*ExcelLedger, error) {
	if path == "" {
		return nil, fmt.Errorf("workbook path is empty")
	}
	if sheetName == "" {
		sheetName = "Job Tracker"
	}
	return &ExcelLedger{
		path:      path,
		sheetName: sheetName,
		flk:       flock.New(path + ".lock"),
		log:       logger.With().Str("component", "excel_ledger").Logger(),
	}, nil
}

// Provision creates the workbook with a header row when missing.
func (r *ExcelLedger) Provision(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.flk.Lock(); err != nil {
		return fmt.Errorf("lock workbook: %w", err)
	}
	defer r.flk.Unlock()

	if _, err := os.Stat(r.path); err == nil {
		f, err := excelize.OpenFile(r.path)
		if err != nil {
			return fmt.Errorf("open workbook: %w", err)
		}
		defer f.Close()
		idx, err := f.GetSheetIndex(r.sheetName)
		if err != nil {
			return fmt.Errorf("look up sheet: %w", err)
		}
		if idx >= 0 {
			return nil
		}
		if _, err := f.NewSheet(r.sheetName); err != nil {
			return fmt.Errorf("create sheet: %w", err)
		}
		if err := f.SetSheetRow(r.sheetName, "A1", &headerCells); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
		if err := f.Save(); err != nil {
			return fmt.Errorf("save workbook: %w", err)
		}
		return nil
	}

	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName("Sheet1", r.sheetName); err != nil {
		return fmt.Errorf("name sheet: %w", err)
	}
	if err := f.SetSheetRow(r.sheetName, "A1", &headerCells); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	if err := f.SaveAs(r.path); err != nil {
		return fmt.Errorf("create workbook: %w", err)
	}
	r.log.Info().Str("path", r.path).Msg("created ledger workbook")
	return nil
}

func (r *ExcelLedger) Append(_ context.Context, e model.LedgerEntry) error {
	start := time.Now()
	err := r.appendRow(RowValues(e))
	metrics.ObserveLedgerOp("excel", "append", err == nil, time.Since(start))
	return err
}

func (r *ExcelLedger) SentAddresses(_ context.Context) (map[string]struct{}, error) {
	start := time.Now()
	rows, err := r.readRows()
	metrics.ObserveLedgerOp("excel", "sent_addresses", err == nil, time.Since(start))
	if err != nil {
		return nil, err
	}
	sent := make(map[string]struct{}, len(rows))
	for _, row := range rows {
		if len(row) <= statusCol || row[statusCol] != model.StatusSent {
			continue
		}
		if row[contactEmailCol] != "" {
			sent[row[contactEmailCol]] = struct{}{}
		}
	}
	return sent, nil
}

func (r *ExcelLedger) Entries(_ context.Context) ([]model.LedgerEntry, error) {
	start := time.Now()
	rows, err := r.readRows()
	metrics.ObserveLedgerOp("excel", "entries", err == nil, time.Since(start))
	if err != nil {
		return nil, err
	}
	entries := make([]model.LedgerEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, EntryFromRow(row))
	}
	metrics.SetLedgerRows("excel", len(entries))
	return entries, nil
}

func (r *ExcelLedger) appendRow(cells []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.flk.Lock(); err != nil {
		return fmt.Errorf("lock workbook: %w", err)
	}
	defer r.flk.Unlock()

	f, err := excelize.OpenFile(r.path)
	if err != nil {
		return fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(r.sheetName)
	if err != nil {
		return fmt.Errorf("count rows: %w", err)
	}
	row := make([]interface{}, len(cells))
	for i, c := range cells {
		row[i] = c
	}
	ref := fmt.Sprintf("A%d", len(rows)+1)
	if err := f.SetSheetRow(r.sheetName, ref, &row); err != nil {
		return fmt.Errorf("write row %s: %w", ref, err)
	}
	if err := f.Save(); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}

// readRows returns data rows with the header stripped.
func (r *ExcelLedger) readRows() ([][]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.flk.RLock(); err != nil {
		return nil, fmt.Errorf("lock workbook: %w", err)
	}
	defer r.flk.Unlock()

	f, err := excelize.OpenFile(r.path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(r.sheetName)
	if err != nil {
		return nil, fmt.Errorf("read rows: %w", err)
	}
	if len(rows) <= 1 {
		return nil, nil
	}
	return rows[1:], nil
}

var headerCells = func() []interface{} {
	out := make([]interface{}, len(Header))
	for i, h := range Header {
		out[i] = h
	}
	return out
}()
