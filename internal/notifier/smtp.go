package notifier

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/smtp"
	"strings"

	"github.com/amishk599/jobwatch/internal/model"
)

// Ensure SMTPMailer implements model.Mailer.
var _ model.Mailer = (*SMTPMailer)(nil)

type sendMailFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// SMTPMailer sends email through a plain SMTP relay.
type SMTPMailer struct {
	host     string
	port     string
	username string
	password string
	sendMail sendMailFunc
	logger   *slog.Logger
}

// NewSMTPMailer returns a mailer for host:port. PLAIN auth is used when a
// username is set.
func NewSMTPMailer(host, port, username, password string, logger *slog.Logger) *SMTPMailer {
	return &SMTPMailer{
		host:     host,
		port:     port,
		username: username,
		password: password,
		sendMail: smtp.SendMail,
		logger:   logger,
	}
}

// Send delivers one HTML email. net/smtp has no context support, so ctx is
// only checked before dialing.
func (m *SMTPMailer) Send(ctx context.Context, email model.Email) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var auth smtp.Auth
	if m.username != "" {
		auth = smtp.PlainAuth("", m.username, m.password, m.host)
	}

	addr := net.JoinHostPort(m.host, m.port)
	if err := m.sendMail(addr, auth, email.From, []string{email.To}, buildMessage(email)); err != nil {
		return fmt.Errorf("smtp send to %s: %w", email.To, err)
	}
	m.logger.Info("email sent", "provider", "smtp", "to", email.To)
	return nil
}

func buildMessage(email model.Email) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", email.From)
	fmt.Fprintf(&b, "To: %s\r\n", email.To)
	fmt.Fprintf(&b, "Subject: %s\r\n", email.Subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(email.HTML)
	return []byte(b.String())
}
