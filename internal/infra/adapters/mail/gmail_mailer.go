package mail

import (
	"context"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"github.com/VvkAlgo/RoleMatchAI/internal/domain/ports/adapter"
)

// GmailMailer sends application emails through the Gmail API on
// behalf of the authorized account. The account is addressed as "me",
// matching the OAuth token the HTTP client carries.
type GmailMailer struct {
	svc *gmail.Service
	log zerolog.Logger
}

var _ adapter.Mailer = (*GmailMailer)(nil)

func NewGmailMailer(ctx context.Context, client *http.Client, logger zerolog.Logger) (*GmailMailer, error) {
	svc, err := gmail.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("create gmail service: %w", err)
	}
	return &GmailMailer{
		svc: svc,
		log: logger.With().Str("component", "gmail_mailer").Logger(),
	}, nil
}

func (g *GmailMailer) Send(ctx context.Context, m adapter.OutboundMail) (string, error) {
	raw, err := BuildRawMessage("me", m)
	if err != nil {
		return "", err
	}
	sent, err := g.svc.Users.Messages.Send("me", &gmail.Message{Raw: raw}).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("gmail send: %w", err)
	}
	g.log.Info().Str("to", m.To).Str("message_id", sent.Id).Msg("mail delivered")
	return sent.Id, nil
}
