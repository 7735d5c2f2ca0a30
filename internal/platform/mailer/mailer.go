package mailer

import (
	"fmt"
	"log"

	"gopkg.in/gomail.v2"

	"github.com/PerezChris99/University-Library-RESTful-API/internal/platform/db"
)

// Mailer is the outbound notification boundary. Welcome mail is
// fire-and-forget; reset-mail failures must reach the caller.
type Mailer interface {
	SendWelcome(email, name string)
	SendPasswordReset(email, name, token string) error
}

type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPMailer(cfg db.SMTPConfig) *SMTPMailer {
	return &SMTPMailer{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
	}
}

func (m *SMTPMailer) SendWelcome(email, name string) {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", email)
	msg.SetHeader("Subject", "Welcome to the library")
	msg.SetBody("text/plain", fmt.Sprintf(
		"Hello %s,\n\nYour library account is ready. You can now browse the catalog, borrow and reserve books.\n", name))

	if err := m.dialer.DialAndSend(msg); err != nil {
		log.Printf("[WARN] failed to send welcome email to %s: %v", email, err)
	}
}

func (m *SMTPMailer) SendPasswordReset(email, name, token string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", email)
	msg.SetHeader("Subject", "Password reset")
	msg.SetBody("text/plain", fmt.Sprintf(
		"Hello %s,\n\nUse the token below to reset your password. It expires in one hour.\n\n%s\n", name, token))

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("failed to send reset email: %w", err)
	}
	return nil
}

// LogMailer is used in dev mode and in tests; it only logs.
type LogMailer struct{}

func (LogMailer) SendWelcome(email, name string) {
	log.Printf("[INFO] welcome email suppressed (dev mode): to=%s", email)
}

func (LogMailer) SendPasswordReset(email, name, token string) error {
	log.Printf("[INFO] reset email suppressed (dev mode): to=%s token=%s", email, token)
	return nil
}
