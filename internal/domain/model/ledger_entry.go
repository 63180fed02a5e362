package model

import (
	"strconv"
	"time"
)

// Column values written for every successful send. The ledger knows no
// other status; rows are appended once and never updated.
const (
	StatusSent   = "SENT"
	RelevanceYes = "YES"
)

// ProcessedAtLayout is the minute-precision format of the Date
// Processed column.
const ProcessedAtLayout = "2006-01-02 15:04"

// LedgerEntry is one row of the outreach ledger, in column order:
// Post ID, Job Title, Company, Contact Email, Status, Relevance,
// Notes, Date Processed.
type LedgerEntry struct {
	PostID       string    `json:"post_id"`
	Title        string    `json:"job_title"`
	Company      string    `json:"company"`
	ContactEmail string    `json:"contact_email"`
	Status       string    `json:"status"`
	Relevance    string    `json:"relevance"`
	Notes        string    `json:"notes"`
	ProcessedAt  time.Time `json:"processed_at"`
}

// NewSentEntry builds the row recorded after a successful send.
// recipient is the address the mail actually went to, which the caller
// may have edited away from the record's ApplyEmail.
func NewSentEntry(rec JobRecord, recipient, subject string, at time.Time) LedgerEntry {
	return LedgerEntry{
		PostID:       strconv.Itoa(rec.BatchSeq),
		Title:        rec.Title,
		Company:      rec.Company,
		ContactEmail: recipient,
		Status:       StatusSent,
		Relevance:    RelevanceYes,
		Notes:        "Mail sent | Subject: " + subject,
		ProcessedAt:  at.Truncate(time.Minute),
	}
}

// ProcessedAtString renders the timestamp the way ledger backends
// store it.
func (e LedgerEntry) ProcessedAtString() string {
	return e.ProcessedAt.Format(ProcessedAtLayout)
}
