//go:build !integration

package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/VvkAlgo/RoleMatchAI/internal/domain"
	"github.com/VvkAlgo/RoleMatchAI/internal/domain/model"
	"github.com/VvkAlgo/RoleMatchAI/internal/usecase"
)

func reviewSession(records ...model.JobRecord) *model.ReviewSession {
	for i := range records {
		records[i].BatchSeq = i + 1
	}
	return model.NewReviewSession("sess-1", "digest-1", records, now())
}

func TestEligible(t *testing.T) {
	ctx := context.Background()

	t.Run("should drop unmailable and already sent records, preserving order", func(t *testing.T) {
		// Arrange
		s := reviewSession(
			model.JobRecord{Title: "Backend", ApplyEmail: "a@acme.io"},
			model.JobRecord{Title: "No address", ApplyEmail: ""},
			model.JobRecord{Title: "Apply on site", ApplyEmail: "careers.acme.io"},
			model.JobRecord{Title: "Already sent", ApplyEmail: "done@acme.io"},
			model.JobRecord{Title: "SRE", ApplyEmail: "b@acme.io"},
		)
		ledger := NewMockLedger("done@acme.io")
		uc := usecase.NewReconcileUseCase(ledger, newTestLogger())

		// Act
		eligible, err := uc.Eligible(ctx, s)

		// Assert
		if err != nil {
			t.Fatalf("expected no error, but got: %v", err)
		}
		if len(eligible) != 2 {
			t.Fatalf("expected 2 eligible records, but got %d", len(eligible))
		}
		if eligible[0].BatchSeq != 1 || eligible[1].BatchSeq != 5 {
			t.Errorf("expected batch seqs [1 5], but got [%d %d]", eligible[0].BatchSeq, eligible[1].BatchSeq)
		}
	})

	t.Run("should keep duplicate addresses within one batch", func(t *testing.T) {
		s := reviewSession(
			model.JobRecord{Title: "Role A", ApplyEmail: "dup@acme.io"},
			model.JobRecord{Title: "Role B", ApplyEmail: "dup@acme.io"},
		)
		uc := usecase.NewReconcileUseCase(NewMockLedger(), newTestLogger())

		eligible, err := uc.Eligible(ctx, s)
		if err != nil {
			t.Fatalf("expected no error, but got: %v", err)
		}
		if len(eligible) != 2 {
			t.Errorf("expected both duplicates to stay eligible, but got %d records", len(eligible))
		}
	})

	t.Run("should exclude addresses the session itself marked sent", func(t *testing.T) {
		// A send whose ledger append failed leaves the address only in
		// the session snapshot. Reconcile must still treat it as sent.
		s := reviewSession(
			model.JobRecord{Title: "Backend", ApplyEmail: "ghost@acme.io"},
			model.JobRecord{Title: "SRE", ApplyEmail: "fresh@acme.io"},
		)
		s.MarkSent("ghost@acme.io")
		uc := usecase.NewReconcileUseCase(NewMockLedger(), newTestLogger())

		eligible, err := uc.Eligible(ctx, s)
		if err != nil {
			t.Fatalf("expected no error, but got: %v", err)
		}
		if len(eligible) != 1 || eligible[0].ApplyEmail != "fresh@acme.io" {
			t.Errorf("expected only fresh@acme.io to stay eligible, but got %v", eligible)
		}
	})

	t.Run("should match sent addresses by exact string only", func(t *testing.T) {
		s := reviewSession(
			model.JobRecord{Title: "Exact", ApplyEmail: "jobs@acme.io"},
			model.JobRecord{Title: "Case variant", ApplyEmail: "Jobs@acme.io"},
		)
		uc := usecase.NewReconcileUseCase(NewMockLedger("jobs@acme.io"), newTestLogger())

		eligible, err := uc.Eligible(ctx, s)
		if err != nil {
			t.Fatalf("expected no error, but got: %v", err)
		}
		if len(eligible) != 1 || eligible[0].ApplyEmail != "Jobs@acme.io" {
			t.Errorf("expected only the case variant to stay eligible, but got %v", eligible)
		}
	})

	t.Run("should not mutate the session's records", func(t *testing.T) {
		s := reviewSession(
			model.JobRecord{Title: "Backend", ApplyEmail: "a@acme.io"},
			model.JobRecord{Title: "No address", ApplyEmail: ""},
		)
		uc := usecase.NewReconcileUseCase(NewMockLedger(), newTestLogger())

		if _, err := uc.Eligible(ctx, s); err != nil {
			t.Fatalf("expected no error, but got: %v", err)
		}
		if len(s.Records) != 2 {
			t.Errorf("expected session records untouched, but got %d", len(s.Records))
		}
		if s.Records[1].ApplyEmail != "" {
			t.Error("expected unmailable record left in place")
		}
	})

	t.Run("should reject a nil session", func(t *testing.T) {
		uc := usecase.NewReconcileUseCase(NewMockLedger(), newTestLogger())
		if _, err := uc.Eligible(ctx, nil); !errors.Is(err, domain.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, but got %v", err)
		}
	})

	t.Run("should propagate a failed sent-set read", func(t *testing.T) {
		ledger := NewMockLedger()
		ledger.SentAddressesFunc = func(ctx context.Context) (map[string]struct{}, error) {
			return nil, errors.New("sheet unavailable")
		}
		uc := usecase.NewReconcileUseCase(ledger, newTestLogger())

		s := reviewSession(model.JobRecord{Title: "Backend", ApplyEmail: "a@acme.io"})
		if _, err := uc.Eligible(ctx, s); err == nil {
			t.Fatal("expected an error when the sent set cannot be read")
		}
	})

	t.Run("should see a row appended between two calls", func(t *testing.T) {
		s := reviewSession(
			model.JobRecord{Title: "Backend", ApplyEmail: "a@acme.io"},
			model.JobRecord{Title: "SRE", ApplyEmail: "b@acme.io"},
		)
		ledger := NewMockLedger()
		uc := usecase.NewReconcileUseCase(ledger, newTestLogger())

		first, err := uc.Eligible(ctx, s)
		if err != nil {
			t.Fatalf("first call: %v", err)
		}
		if len(first) != 2 {
			t.Fatalf("expected 2 eligible before the append, but got %d", len(first))
		}

		// Another writer records a send to a@acme.io.
		err = ledger.Append(ctx, model.NewSentEntry(s.Records[0], "a@acme.io", "Subject", time.Now()))
		if err != nil {
			t.Fatalf("append: %v", err)
		}

		second, err := uc.Eligible(ctx, s)
		if err != nil {
			t.Fatalf("second call: %v", err)
		}
		if len(second) != 1 || second[0].ApplyEmail != "b@acme.io" {
			t.Errorf("expected the fresh read to drop a@acme.io, but got %v", second)
		}
	})
}
