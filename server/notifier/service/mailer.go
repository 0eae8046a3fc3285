package service

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/smtp"
	"strings"

	"syscourse/server/common/infra/mq"
	commonlog "syscourse/server/common/log"
)

var ErrInvalidMail = errors.New("invalid mail")

// Mailer delivers one plain-text message.
type Mailer interface {
	Send(ctx context.Context, mail mq.MailContext) error
}

type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

type SMTPMailer struct {
	addr string
	from string
	auth smtp.Auth
	send sendFunc
}

// NewSMTPMailer uses PLAIN auth when user is set.
func NewSMTPMailer(addr, user, password, from string) *SMTPMailer {
	m := &SMTPMailer{addr: addr, from: from, send: smtp.SendMail}
	if user != "" {
		host, _, err := net.SplitHostPort(addr)
		if err != nil {
			host = addr
		}
		m.auth = smtp.PlainAuth("", user, password, host)
	}
	return m
}

func (m *SMTPMailer) Send(_ context.Context, mail mq.MailContext) error {
	if err := validate(mail); err != nil {
		return err
	}
	if err := m.send(m.addr, m.auth, m.from, []string{mail.To}, message(m.from, mail)); err != nil {
		return fmt.Errorf("smtp send to %s: %w", mail.To, err)
	}
	return nil
}

// LogMailer only logs. It stands in when no SMTP relay is configured.
type LogMailer struct{}

func (LogMailer) Send(_ context.Context, mail mq.MailContext) error {
	if err := validate(mail); err != nil {
		return err
	}
	commonlog.Infof("mail to=%s subject=%q text=%q", mail.To, mail.Subject, mail.Text)
	return nil
}

func validate(mail mq.MailContext) error {
	if strings.TrimSpace(mail.To) == "" {
		return fmt.Errorf("%w: empty recipient", ErrInvalidMail)
	}
	if strings.ContainsAny(mail.To+mail.Subject, "\r\n") {
		return fmt.Errorf("%w: header injection", ErrInvalidMail)
	}
	return nil
}

func message(from string, mail mq.MailContext) []byte {
	var b strings.Builder
	b.WriteString("From: " + from + "\r\n")
	b.WriteString("To: " + mail.To + "\r\n")
	b.WriteString("Subject: " + mail.Subject + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=\"utf-8\"\r\n\r\n")
	b.WriteString(mail.Text)
	b.WriteString("\r\n")
	return []byte(b.String())
}
