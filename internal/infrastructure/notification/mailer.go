package notification

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/institute/backend/internal/infrastructure/config"
)

// Sender delivers a single plain-text email. Implementations must be safe for
// concurrent use.
type Sender interface {
	Send(ctx context.Context, to, subject, body string) error
}

// SMTPMailer sends mail through a plain SMTP relay.
type SMTPMailer struct {
	host     string
	port     int
	username string
	password string
	from     string
}

// NewSMTPMailer creates a mailer from the mail configuration.
func NewSMTPMailer(cfg config.MailConfig) *SMTPMailer {
	return &SMTPMailer{
		host:     cfg.Host,
		port:     cfg.Port,
		username: cfg.Username,
		password: cfg.Password,
		from:     cfg.From,
	}
}

// Send composes an RFC 5322 message and delivers it via SendMail, which
// upgrades to STARTTLS when the server advertises it.
func (m *SMTPMailer) Send(_ context.Context, to, subject, body string) error {
	if to == "" {
		return fmt.Errorf("recipient address cannot be empty")
	}

	var msg strings.Builder
	fmt.Fprintf(&msg, "From: %s\r\n", m.from)
	fmt.Fprintf(&msg, "To: %s\r\n", to)
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(body)

	addr := fmt.Sprintf("%s:%d", m.host, m.port)
	var auth smtp.Auth
	if m.username != "" {
		auth = smtp.PlainAuth("", m.username, m.password, m.host)
	}

	if err := smtp.SendMail(addr, auth, m.from, []string{to}, []byte(msg.String())); err != nil {
		return fmt.Errorf("failed to send mail to %s: %w", to, err)
	}
	return nil
}

// NoopSender discards all mail. Used when mail delivery is disabled so the
// event handlers can stay wired unconditionally.
type NoopSender struct{}

// Send does nothing
func (NoopSender) Send(_ context.Context, _, _, _ string) error {
	return nil
}

// NewSender returns an SMTP mailer when mail is enabled, a no-op otherwise.
func NewSender(cfg config.MailConfig) Sender {
	if !cfg.Enabled {
		return NoopSender{}
	}
	return NewSMTPMailer(cfg)
}
