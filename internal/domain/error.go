package domain

import (
	"errors"
	"fmt"
)

var (
	// Common domain errors
	ErrNotFound        = errors.New("entity not found")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrUnauthorized    = errors.New("unauthorized")

	// Workflow errors
	ErrExtraction           = errors.New("job extraction failed")
	ErrDuplicateSend        = errors.New("application already sent to this address")
	ErrMailer               = errors.New("mail delivery failed")
	ErrLedgerWriteAfterSend = errors.New("ledger append failed after successful send")
)

// LedgerWriteError reports the one failure mode that must never be
// conflated with a failed delivery: the mail went out, but recording it
// in the ledger did not succeed. The recipient address stays marked as
// sent in the caller's session; the row has to be added by hand.
type LedgerWriteError struct {
	Recipient string
	Subject   string
	Err       error
}

func (e *LedgerWriteError) Error() string {
	return fmt.Sprintf("mail to %s was sent but the ledger append failed: %v", e.Recipient, e.Err)
}

func (e *LedgerWriteError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrLedgerWriteAfterSend) true for this type.
func (e *LedgerWriteError) Is(target error) bool { return target == ErrLedgerWriteAfterSend }
