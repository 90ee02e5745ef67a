package notifier

import (
	"context"
	"log/slog"

	"github.com/amishk599/jobwatch/internal/model"
)

// Ensure LogMailer implements model.Mailer.
var _ model.Mailer = (*LogMailer)(nil)

// LogMailer writes outgoing emails to the given logger instead of sending
// them. Used for local runs and dry runs.
type LogMailer struct {
	logger *slog.Logger
}

// NewLogMailer returns a mailer that logs each email via slog.
func NewLogMailer(logger *slog.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

// Send logs the email envelope. The body is only logged at debug level.
// Returns nil (stdout logging does not fail).
func (m *LogMailer) Send(_ context.Context, email model.Email) error {
	m.logger.Info("email", "from", email.From, "to", email.To, "subject", email.Subject)
	m.logger.Debug("email body", "to", email.To, "html", email.HTML)
	return nil
}
