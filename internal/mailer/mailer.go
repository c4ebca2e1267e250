package mailer

import (
	"context"
	"fmt"
	"sync"

	"storefront-service/internal/util"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

// Mailer delivers a single HTML email.
type Mailer interface {
	SendEmail(ctx context.Context, to, subject, body string) error
}

// SMTPMailer sends mail through an SMTP relay
type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
	logger *zap.Logger
}

// NewSMTPMailer creates a mailer for the given relay
func NewSMTPMailer(host string, port int, username, password, from string) *SMTPMailer {
	return &SMTPMailer{
		dialer: gomail.NewDialer(host, port, username, password),
		from:   from,
		logger: util.GetLogger(),
	}
}

// SendEmail dials the relay and sends one message
func (m *SMTPMailer) SendEmail(ctx context.Context, to, subject, body string) error {
	_, span := util.StartSpan(ctx, "SMTPMailer.SendEmail")
	defer span.End()

	msg := buildMessage(m.from, to, subject, body)

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", to, err)
	}

	m.logger.Info("Email sent", zap.String("to", to), zap.String("subject", subject))
	return nil
}

func buildMessage(from, to, subject, body string) *gomail.Message {
	msg := gomail.NewMessage()
	msg.SetHeader("From", from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", body)
	return msg
}

// Message is a mail recorded by LogMailer
type Message struct {
	To      string
	Subject string
	Body    string
}

// LogMailer logs mail instead of sending it. Used when no SMTP host is configured.
type LogMailer struct {
	mu     sync.Mutex
	sent   []Message
	logger *zap.Logger
}

// NewLogMailer creates a log-only mailer
func NewLogMailer() *LogMailer {
	return &LogMailer{logger: util.GetLogger()}
}

// SendEmail records the message and logs it
func (m *LogMailer) SendEmail(_ context.Context, to, subject, body string) error {
	m.mu.Lock()
	m.sent = append(m.sent, Message{To: to, Subject: subject, Body: body})
	m.mu.Unlock()

	m.logger.Info("Email not sent, SMTP disabled",
		zap.String("to", to),
		zap.String("subject", subject),
		zap.Int("body_bytes", len(body)))
	return nil
}

// Sent returns a copy of every recorded message
func (m *LogMailer) Sent() []Message {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]Message, len(m.sent))
	copy(out, m.sent)
	return out
}
