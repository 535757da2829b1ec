package notify

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/vidhyadham/server/internal/model"
)

// EmailSender delivers mail over plain SMTP using the provider settings
// stored in the settings document.
type EmailSender struct{}

func NewEmailSender() *EmailSender { return &EmailSender{} }

// Send composes an RFC 822 message and hands it to the configured SMTP
// server. Any transport or authentication error is wrapped as ErrUpstream.
func (s *EmailSender) Send(ctx context.Context, cfg model.EmailSettings, to, subject, body string) error {
	if cfg.Host == "" || cfg.From == "" {
		return fmt.Errorf("%w: email provider not configured", ErrUpstream)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	var msg strings.Builder
	fmt.Fprintf(&msg, "From: %s\r\n", cfg.From)
	fmt.Fprintf(&msg, "To: %s\r\n", to)
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	msg.WriteString("MIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n")
	msg.WriteString(body)

	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	var auth smtp.Auth
	if cfg.Username != "" {
		auth = smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
	}
	if err := smtp.SendMail(addr, auth, cfg.From, []string{to}, []byte(msg.String())); err != nil {
		return fmt.Errorf("%w: smtp send: %v", ErrUpstream, err)
	}
	return nil
}
