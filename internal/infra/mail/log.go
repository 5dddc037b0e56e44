package mail

import (
	"context"
	"log/slog"
)

// LogMailer records outbound messages instead of sending them. It stands in
// when no SMTP credentials are configured.
type LogMailer struct {
	logger *slog.Logger
}

func NewLogMailer(logger *slog.Logger) *LogMailer {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogMailer{logger: logger.With("component", "mail.log")}
}

func (m *LogMailer) Send(_ context.Context, msg Message) error {
	attrs := []any{"to", msg.To, "subject", msg.Subject, "body_len", len(msg.Body)}
	if msg.Attachment != nil {
		attrs = append(attrs, "attachment", msg.Attachment.Filename, "attachment_size", len(msg.Attachment.Content))
	}
	m.logger.Info("mail delivery suppressed", attrs...)
	return nil
}
