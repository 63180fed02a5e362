package mail

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/VvkAlgo/RoleMatchAI/internal/domain/ports/adapter"
)

var _ adapter.Mailer = (*NoopMailer)(nil)

// NoopMailer implements adapter.Mailer for local/dev runs. It logs
// the mail instead of delivering it.
type NoopMailer struct{}

func NewNoopMailer() *NoopMailer {
	return &NoopMailer{}
}

func (m *NoopMailer) Send(ctx context.Context, mail adapter.OutboundMail) (string, error) {
	select {
	case <-time.After(50 * time.Millisecond):
		// proceed
	case <-ctx.Done():
		return "", ctx.Err()
	}
	log.Printf("[noop-mailer] To %s | Subject: %s | attachment %s (%d bytes)\n",
		mail.To, mail.Subject, mail.Resume.Filename, len(mail.Resume.Content))
	return fmt.Sprintf("noop-%d", time.Now().UnixNano()), nil
}

var _ adapter.ResumeProvider = (*NoopResumeProvider)(nil)

// NoopResumeProvider pairs with NoopMailer so a run without a resume
// file on disk can still exercise the send path.
type NoopResumeProvider struct{}

func NewNoopResumeProvider() *NoopResumeProvider {
	return &NoopResumeProvider{}
}

func (p *NoopResumeProvider) Resume(_ context.Context) (adapter.Attachment, error) {
	return adapter.Attachment{
		Filename: "resume.pdf",
		MIMEType: "application/pdf",
		Content:  []byte("placeholder resume"),
	}, nil
}
