package notification

import (
	"context"
	"fmt"
	"log/slog"
	"net/smtp"
	"strings"
)

// Mailer abstracts the outbound mail transport so the email channel can be
// tested without a relay.
type Mailer interface {
	Send(to, subject, body string) error
}

// SMTPMailer sends mail through a plain SMTP relay.
type SMTPMailer struct {
	host string
	port int
	from string
}

// NewSMTPMailer creates a Mailer for the given relay. No authentication is
// performed; the relay is expected to accept mail from this host.
func NewSMTPMailer(host string, port int, from string) *SMTPMailer {
	return &SMTPMailer{
		host: host,
		port: port,
		from: from,
	}
}

// Send implements Mailer.
func (m *SMTPMailer) Send(to, subject, body string) error {
	var msg strings.Builder
	fmt.Fprintf(&msg, "From: %s\r\n", m.from)
	fmt.Fprintf(&msg, "To: %s\r\n", to)
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(body)

	addr := fmt.Sprintf("%s:%d", m.host, m.port)
	if err := smtp.SendMail(addr, nil, m.from, []string{to}, []byte(msg.String())); err != nil {
		return fmt.Errorf("failed to send mail via %s: %w", addr, err)
	}
	return nil
}

// EmailChannel delivers notification messages by email.
type EmailChannel struct {
	mailer Mailer
	logger *slog.Logger
}

// NewEmailChannel creates the email channel on top of the given mailer.
func NewEmailChannel(mailer Mailer, logger *slog.Logger) *EmailChannel {
	if logger == nil {
		logger = slog.Default()
	}
	return &EmailChannel{
		mailer: mailer,
		logger: logger.With("component", "email_channel"),
	}
}

// Ensure EmailChannel implements Channel.
var _ Channel = (*EmailChannel)(nil)

// Name implements Channel.
func (c *EmailChannel) Name() string { return "email" }

// Send implements Channel, delivering the message's subject and body verbatim.
func (c *EmailChannel) Send(ctx context.Context, recipient, subject, body string) error {
	if err := c.mailer.Send(recipient, subject, body); err != nil {
		return err
	}
	c.logger.Info("email sent", "recipient", recipient, "subject", subject)
	return nil
}
