package usecase

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/VvkAlgo/RoleMatchAI/internal/domain"
	"github.com/VvkAlgo/RoleMatchAI/internal/domain/model"
	"github.com/VvkAlgo/RoleMatchAI/internal/domain/ports/adapter"
	"github.com/VvkAlgo/RoleMatchAI/internal/domain/ports/repository"
	"github.com/VvkAlgo/RoleMatchAI/internal/infra/logging"
	"github.com/VvkAlgo/RoleMatchAI/internal/infra/metrics"
)

// Compile-time check
var _ OutreachUseCase = (*outreachUC)(nil)

// SendRequest selects one record of a session and optionally overrides
// the drafted recipient, subject, and body before it goes out.
type SendRequest struct {
	BatchSeq int
	To       string
	Subject  string
	Body     string
}

// AlertDispatcher hands operator alerts off for asynchronous delivery
// so the send path never waits on a chat service.
type AlertDispatcher interface {
	Dispatch(ev adapter.OpsEvent)
}

// DraftRenderer supplies subject and body text when neither the caller
// override nor the extractor draft filled them in. Optional; without
// one an empty draft goes out empty.
type DraftRenderer interface {
	Subject(rec model.JobRecord) string
	Body(rec model.JobRecord) string
}

// OutreachUseCase performs the guarded send: re-read the sent set,
// refuse duplicates, deliver the mail with the resume attached, then
// append the SENT row to the ledger. Failure order matters: a mailer
// failure leaves the ledger untouched, while a ledger failure after a
// delivered mail is its own error class and is reported loudly.
type OutreachUseCase interface {
	Send(ctx context.Context, s *model.ReviewSession, req SendRequest) (model.LedgerEntry, error)
}

type outreachUC struct {
	ledger   repository.Ledger
	sessions repository.SessionStore
	mailer   adapter.Mailer
	resume   adapter.ResumeProvider
	drafts   DraftRenderer
	alerts   AlertDispatcher
	log      *zerolog.Logger

	mu       sync.Mutex
	inflight map[string]struct{}
}

func NewOutreachUseCase(ledger repository.Ledger, sessions repository.SessionStore, mailer adapter.Mailer, resume adapter.ResumeProvider, drafts DraftRenderer, alerts AlertDispatcher, logger *zerolog.Logger) *outreachUC {
	l := logger.With().Str("component", "OutreachUC").Logger()
	return &outreachUC{
		ledger:   ledger,
		sessions: sessions,
		mailer:   mailer,
		resume:   resume,
		drafts:   drafts,
		alerts:   alerts,
		log:      &l,
		inflight: make(map[string]struct{}),
	}
}

func (u *outreachUC) Send(ctx context.Context, s *model.ReviewSession, req SendRequest) (model.LedgerEntry, error) {
	defer logging.TraceDuration(u.log, "OutreachUC.Send")()
	if s == nil {
		return model.LedgerEntry{}, domain.ErrInvalidArgument
	}
	rec, ok := s.RecordBySeq(req.BatchSeq)
	if !ok {
		return model.LedgerEntry{}, fmt.Errorf("job %d not in session %s: %w", req.BatchSeq, s.ID, domain.ErrNotFound)
	}

	to := strings.TrimSpace(req.To)
	if to == "" {
		to = rec.ApplyEmail
	}
	if to == "" || !strings.Contains(to, "@") {
		return model.LedgerEntry{}, fmt.Errorf("recipient %q is not mailable: %w", to, domain.ErrInvalidArgument)
	}
	subject := strings.TrimSpace(req.Subject)
	if subject == "" {
		subject = strings.TrimSpace(rec.EmailSubject)
	}
	if subject == "" && u.drafts != nil {
		subject = u.drafts.Subject(rec)
	}
	body := req.Body
	if strings.TrimSpace(body) == "" {
		body = rec.EmailBody
	}
	if strings.TrimSpace(body) == "" && u.drafts != nil {
		body = u.drafts.Body(rec)
	}

	// One send per address at a time within this process. A concurrent
	// second attempt is a duplicate in the making.
	if !u.acquire(to) {
		metrics.IncDuplicateBlocked("inflight")
		return model.LedgerEntry{}, fmt.Errorf("%w: send to %s already in flight", domain.ErrDuplicateSend, to)
	}
	defer u.release(to)

	// Fresh read; the session snapshot alone is never trusted for the
	// final guard.
	sent, err := u.ledger.SentAddresses(ctx)
	if err != nil {
		return model.LedgerEntry{}, fmt.Errorf("read sent set: %w", err)
	}
	s.MergeSentSet(sent)
	if s.AlreadySent(to) {
		metrics.IncDuplicateBlocked("ledger")
		return model.LedgerEntry{}, fmt.Errorf("%w: %s", domain.ErrDuplicateSend, to)
	}

	resume, err := u.resume.Resume(ctx)
	if err != nil {
		return model.LedgerEntry{}, fmt.Errorf("load resume: %w", err)
	}

	start := time.Now()
	msgID, err := u.mailer.Send(ctx, adapter.OutboundMail{
		To:      to,
		Subject: subject,
		Body:    body,
		Resume:  resume,
	})
	if err != nil {
		metrics.ObserveSend(int(time.Since(start).Milliseconds()), "mailer_error")
		return model.LedgerEntry{}, fmt.Errorf("%w: %w", domain.ErrMailer, err)
	}

	// The mail is out. From here on the address counts as sent no
	// matter what happens to the ledger row, and the stored session
	// must reflect that before anything else can fail.
	s.MarkSent(to)
	if err := u.sessions.Save(ctx, s); err != nil {
		u.log.Error().Err(err).Str("session_id", s.ID).Msg("session snapshot save failed after send")
	}
	entry := model.NewSentEntry(rec, to, subject, time.Now())
	if err := u.ledger.Append(ctx, entry); err != nil {
		metrics.ObserveSend(int(time.Since(start).Milliseconds()), "ledger_write_failed")
		metrics.IncLedgerWriteAfterSend()
		u.log.Error().Err(err).
			Str("session_id", s.ID).
			Str("recipient", to).
			Str("message_id", msgID).
			Msg("ledger append failed after successful send")
		if u.alerts != nil {
			u.alerts.Dispatch(adapter.OpsEvent{
				Kind:    adapter.OpsEventLedgerWriteFailed,
				Summary: "ledger append failed after successful send",
				Detail:  fmt.Sprintf("recipient=%s subject=%q post_id=%s: %v", to, subject, entry.PostID, err),
				When:    time.Now(),
			})
		}
		return entry, &domain.LedgerWriteError{Recipient: to, Subject: subject, Err: err}
	}

	metrics.ObserveSend(int(time.Since(start).Milliseconds()), "sent")
	u.log.Info().
		Str("session_id", s.ID).
		Str("recipient", to).
		Str("message_id", msgID).
		Str("post_id", entry.PostID).
		Msg("application sent")
	return entry, nil
}

func (u *outreachUC) acquire(addr string) bool {
	u.mu.Lock()
	defer u.mu.Unlock()
	if _, busy := u.inflight[addr]; busy {
		return false
	}
	u.inflight[addr] = struct{}{}
	return true
}

func (u *outreachUC) release(addr string) {
	u.mu.Lock()
	delete(u.inflight, addr)
	u.mu.Unlock()
}
