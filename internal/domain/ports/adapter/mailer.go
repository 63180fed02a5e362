package adapter

import "context"

// Attachment is a file carried by an outbound mail. Every application
// goes out with exactly one resume attachment.
type Attachment struct {
	Filename string
	MIMEType string
	Content  []byte
}

// OutboundMail is a fully composed application email.
type OutboundMail struct {
	To      string
	Subject string
	Body    string
	Resume  Attachment
}

// Mailer is the port for mail delivery providers.
type Mailer interface {
	// Send delivers the mail and returns the provider's message id.
	// A non-nil error means nothing was delivered.
	Send(ctx context.Context, mail OutboundMail) (string, error)
}

// ResumeProvider supplies the resume attached to every application.
type ResumeProvider interface {
	Resume(ctx context.Context) (Attachment, error)
}
