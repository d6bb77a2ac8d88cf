package mail

import (
	"context"
	"fmt"

	"github.com/go-account-api/internal/config"
)

// Message is a single outbound email with plain-text and HTML bodies.
type Message struct {
	To      string
	Subject string
	Text    string
	HTML    string
}

// Mailer sends emails.
type Mailer interface {
	SendEmail(ctx context.Context, msg Message) error
}

// New returns the mailer selected by cfg.MailProvider.
func New(cfg *config.Config) (Mailer, error) {
	switch cfg.MailProvider {
	case "", "smtp":
		return NewSMTPMailer(cfg), nil
	case "resend":
		if cfg.ResendAPIKey == "" {
			return nil, fmt.Errorf("MAIL_PROVIDER=resend requires RESEND_API_KEY")
		}
		return NewResendMailer(cfg.ResendAPIKey, cfg.MailFrom), nil
	default:
		return nil, fmt.Errorf("unknown mail provider %q", cfg.MailProvider)
	}
}
