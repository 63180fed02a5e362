// Package ledger holds the spreadsheet-backed ledger implementations
// and the row layout they share. Rows are append-only; nothing in this
// package updates or deletes existing data.
package ledger

import (
	"time"

	"github.com/VvkAlgo/RoleMatchAI/internal/domain/model"
)

// Header is the first row of every ledger sheet, in column order.
var Header = []string{
	"Post ID",
	"Job Title",
	"Company",
	"Contact Email",
	"Status",
	"Relevance",
	"Notes",
	"Date Processed",
}

// Zero-based indexes of the columns the sent-set read touches.
const (
	contactEmailCol = 3
	statusCol       = 4
)

// RowValues flattens an entry into sheet cell order.
func RowValues(e model.LedgerEntry) []string {
	return []string{
		e.PostID,
		e.Title,
		e.Company,
		e.ContactEmail,
		e.Status,
		e.Relevance,
		e.Notes,
		e.ProcessedAtString(),
	}
}

// EntryFromRow rebuilds an entry from sheet cells. Short rows fill the
// missing columns with empty strings and an unparseable timestamp is
// left zero, so partially filled rows still round-trip.
func EntryFromRow(cells []string) model.LedgerEntry {
	get := func(i int) string {
		if i < len(cells) {
			return cells[i]
		}
		return ""
	}
	e := model.LedgerEntry{
		PostID:       get(0),
		Title:        get(1),
		Company:      get(2),
		ContactEmail: get(3),
		Status:       get(4),
		Relevance:    get(5),
		Notes:        get(6),
	}
	if ts := get(7); ts != "" {
		if at, err := time.ParseInLocation(model.ProcessedAtLayout, ts, time.Local); err == nil {
			e.ProcessedAt = at
		}
	}
	return e
}
