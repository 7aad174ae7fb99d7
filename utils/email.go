package utils

import (
	"crypto/tls"
	"fmt"
	"log"
	"net/smtp"
	"strings"

	"github.com/sharath018/event-resource-backend/config"
)

// SMTPSettings is the subset of config needed to send mail.
type SMTPSettings struct {
	Host      string
	Port      string
	Username  string
	Password  string
	FromName  string
	FromEmail string
}

func SMTPFromConfig(cfg *config.Config) SMTPSettings {
	return SMTPSettings{
		Host:      cfg.SMTPHost,
		Port:      cfg.SMTPPort,
		Username:  cfg.SMTPUsername,
		Password:  cfg.SMTPPassword,
		FromName:  cfg.SMTPFromName,
		FromEmail: cfg.SMTPFromEmail,
	}
}

func (s SMTPSettings) Configured() bool {
	return s.Host != "" && s.Username != "" && s.Password != ""
}

// ======================
// Low-level HTML send over STARTTLS
// ======================
func SendHTMLMail(s SMTPSettings, to []string, subject, htmlBody string) error {
	if !s.Configured() {
		log.Printf("⚠️ SMTP not configured, email %q to %v not sent", subject, to)
		return nil
	}
	if len(to) == 0 {
		return fmt.Errorf("no recipients")
	}

	fromAddr := s.FromEmail
	if fromAddr == "" {
		fromAddr = s.Username
	}
	from := fromAddr
	if s.FromName != "" {
		from = fmt.Sprintf("%s <%s>", s.FromName, fromAddr)
	}

	client, err := smtp.Dial(s.Host + ":" + s.Port)
	if err != nil {
		return fmt.Errorf("failed to dial SMTP server: %w", err)
	}
	defer client.Close()

	if err = client.StartTLS(&tls.Config{ServerName: s.Host}); err != nil {
		return fmt.Errorf("failed to start TLS: %w", err)
	}
	if err = client.Auth(smtp.PlainAuth("", s.Username, s.Password, s.Host)); err != nil {
		return fmt.Errorf("authentication failed: %w", err)
	}
	if err = client.Mail(fromAddr); err != nil {
		return fmt.Errorf("failed to set sender: %w", err)
	}
	for _, rcpt := range to {
		if err = client.Rcpt(rcpt); err != nil {
			return fmt.Errorf("failed to set recipient %s: %w", rcpt, err)
		}
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("failed to get data writer: %w", err)
	}
	msg := fmt.Sprintf("From: %s\r\n"+
		"To: %s\r\n"+
		"Subject: %s\r\n"+
		"MIME-Version: 1.0\r\n"+
		"Content-Type: text/html; charset=\"UTF-8\"\r\n"+
		"\r\n%s", from, strings.Join(to, ", "), subject, htmlBody)
	if _, err = w.Write([]byte(msg)); err != nil {
		w.Close()
		return fmt.Errorf("failed to write message: %w", err)
	}
	if err = w.Close(); err != nil {
		return fmt.Errorf("failed to close writer: %w", err)
	}

	if err := client.Quit(); err != nil {
		log.Printf("⚠️ QUIT command error (non-critical): %v", err)
	}
	return nil
}
