package adapter

import (
	"context"
	"time"
)

// OpsEventKind labels operator alerts.
type OpsEventKind string

const (
	// OpsEventLedgerWriteFailed means a mail was delivered but the
	// ledger row could not be appended. The operator has to add the
	// row by hand before the next reconcile trusts the ledger again.
	OpsEventLedgerWriteFailed OpsEventKind = "ledger_write_failed"
	OpsEventInboxPollFailed   OpsEventKind = "inbox_poll_failed"
)

// OpsEvent is an out-of-band alert for a human operator.
type OpsEvent struct {
	Kind    OpsEventKind
	Summary string
	Detail  string
	When    time.Time
}

// Notifier pushes operator alerts to an external channel.
type Notifier interface {
	Notify(ctx context.Context, ev OpsEvent) error
}
