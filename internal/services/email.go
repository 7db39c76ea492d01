package services

import (
	"fmt"
	"net/smtp"
	"os"
	"strings"
)

// EmailService delivers notification emails over plain SMTP. The worker's
// send_notification task is its only caller; delivery failures are logged
// there and retried on a later run.
type EmailService struct {
	host     string
	port     string
	user     string
	password string
	from     string
}

// NewEmailService reads the SMTP settings from the environment. Missing
// settings surface on send, not here, so deployments without email
// configured still start.
func NewEmailService() *EmailService {
	return &EmailService{
		host:     os.Getenv("SMTP_HOST"),
		port:     os.Getenv("SMTP_PORT"),
		user:     os.Getenv("SMTP_USER"),
		password: os.Getenv("SMTP_PASS"),
		from:     os.Getenv("EMAIL_FROM"),
	}
}

// SendEmail sends one plain-text message to the listed recipients
func (s *EmailService) SendEmail(to []string, subject, body string) error {
	if s.host == "" || s.port == "" || s.user == "" || s.password == "" {
		return fmt.Errorf("smtp is not fully configured")
	}

	auth := smtp.PlainAuth("", s.user, s.password, s.host)

	message := []byte(fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s\r\n",
		s.from, strings.Join(to, ", "), subject, body,
	))

	addr := fmt.Sprintf("%s:%s", s.host, s.port)
	if err := smtp.SendMail(addr, auth, s.from, to, message); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}
