package mail

import (
	"bytes"
	"context"
	"fmt"

	gomail "github.com/wneessen/go-mail"
)

// SMTPConfig holds transport settings for outbound mail.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	FromName string
}

// SMTPMailer delivers messages over an authenticated SMTP connection.
type SMTPMailer struct {
	client *gomail.Client
	cfg    SMTPConfig
}

// NewSMTPMailer constructs a mailer with a long-lived client.
func NewSMTPMailer(cfg SMTPConfig) (*SMTPMailer, error) {
	client, err := gomail.NewClient(cfg.Host,
		gomail.WithPort(cfg.Port),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(cfg.Username),
		gomail.WithPassword(cfg.Password),
	)
	if err != nil {
		return nil, fmt.Errorf("init smtp client: %w", err)
	}
	return &SMTPMailer{client: client, cfg: cfg}, nil
}

func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	out := gomail.NewMsg()
	if err := out.FromFormat(m.cfg.FromName, m.cfg.From); err != nil {
		return fmt.Errorf("set sender: %w", err)
	}
	if err := out.To(msg.To); err != nil {
		return fmt.Errorf("set recipient: %w", err)
	}
	out.Subject(msg.Subject)
	out.SetBodyString(gomail.TypeTextPlain, msg.Body)
	if msg.Attachment != nil {
		err := out.AttachReader(msg.Attachment.Filename, bytes.NewReader(msg.Attachment.Content),
			gomail.WithFileContentType(gomail.ContentType(msg.Attachment.MimeType)))
		if err != nil {
			return fmt.Errorf("attach file: %w", err)
		}
	}
	return m.client.DialAndSendWithContext(ctx, out)
}
