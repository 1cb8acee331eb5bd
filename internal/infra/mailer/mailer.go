package mailer

import (
	"gopkg.in/gomail.v2"
)

// Mailer is the notification provider. Delivery is best-effort: lifecycle
// operations log failures and never propagate them.
type Mailer interface {
	SendEmail(to, subject, html string) error
}

type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
}

var _ Mailer = (*SMTPMailer)(nil)

func NewSMTPMailer(host string, port int, username, password, from string) *SMTPMailer {
	return &SMTPMailer{
		dialer: gomail.NewDialer(host, port, username, password),
		from:   from,
	}
}

func (m *SMTPMailer) SendEmail(to, subject, html string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", html)
	return m.dialer.DialAndSend(msg)
}

// NoopMailer is used when SMTP is not configured (local development).
type NoopMailer struct{}

var _ Mailer = (*NoopMailer)(nil)

func (NoopMailer) SendEmail(string, string, string) error { return nil }
