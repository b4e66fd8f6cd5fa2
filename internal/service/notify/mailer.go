package notify

import (
	"context"
	"fmt"
	"time"

	mail "github.com/wneessen/go-mail"

	"github.com/zhouzirui/hands-on/backend/internal/config"
)

// Email is a plain-text message for the mail relay.
type Email struct {
	From    string
	To      string
	Subject string
	Body    string
}

// Mailer delivers a single email.
type Mailer interface {
	Send(ctx context.Context, email Email) error
}

// SMTPMailer sends through an authenticated relay over mandatory STARTTLS.
type SMTPMailer struct {
	cfg config.MailConfig
}

// NewSMTPMailer returns a mailer for the configured relay.
func NewSMTPMailer(cfg config.MailConfig) *SMTPMailer {
	return &SMTPMailer{cfg: cfg}
}

func (m *SMTPMailer) Send(ctx context.Context, email Email) error {
	msg := mail.NewMsg()
	if err := msg.From(email.From); err != nil {
		return fmt.Errorf("invalid sender %q: %w", email.From, err)
	}
	if err := msg.To(email.To); err != nil {
		return fmt.Errorf("invalid recipient %q: %w", email.To, err)
	}
	msg.Subject(email.Subject)
	msg.SetDate()
	msg.SetBodyString(mail.TypeTextPlain, email.Body)

	client, err := mail.NewClient(m.cfg.Host,
		mail.WithPort(m.cfg.Port),
		mail.WithTLSPolicy(mail.TLSMandatory),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(m.cfg.Username),
		mail.WithPassword(m.cfg.Password),
		mail.WithTimeout(30*time.Second),
	)
	if err != nil {
		return fmt.Errorf("failed to create smtp client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("failed to deliver mail via %s:%d: %w", m.cfg.Host, m.cfg.Port, err)
	}
	return nil
}
