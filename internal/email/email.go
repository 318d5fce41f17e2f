// SPDX-License-Identifier: MIT

// Package email sends restaurant notifications over SMTP.
package email

import (
	"bytes"
	"crypto/tls"
	"errors"
	"fmt"
	"mime"
	"net"
	"net/mail"
	"net/smtp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/thatcatcamp/menukitty/internal/config"
	"github.com/thatcatcamp/menukitty/internal/logging"
)

// ErrNotConfigured is returned when SMTP settings are missing.
var ErrNotConfigured = errors.New("missing SMTP configuration")

const dialTimeout = 15 * time.Second

// Sender delivers plain-text mail.
type Sender interface {
	SendEmail(to, subject, body string) error
}

// EmailService sends mail through one SMTP server.
type EmailService struct {
	host     string
	port     string
	from     string
	password string
	log      zerolog.Logger
}

// NewEmailService builds a service from the email.* config keys.
func NewEmailService() (*EmailService, error) {
	es := &EmailService{
		host:     config.GetString("email.smtp_host"),
		port:     config.GetString("email.smtp_port"),
		from:     config.GetString("email.from"),
		password: config.GetString("email.password"),
		log:      logging.For("email"),
	}
	for _, v := range []string{es.host, es.port, es.from, es.password} {
		if v == "" {
			return nil, ErrNotConfigured
		}
	}
	if _, err := mail.ParseAddress(es.from); err != nil {
		return nil, fmt.Errorf("invalid email.from: %w", err)
	}
	return es, nil
}

// connect opens an authenticated session. Port 587 upgrades with STARTTLS,
// every other port expects implicit TLS.
func (es *EmailService) connect() (*smtp.Client, error) {
	addr := net.JoinHostPort(es.host, es.port)
	tlsConfig := &tls.Config{ServerName: es.host, MinVersion: tls.VersionTLS12}
	dialer := &net.Dialer{Timeout: dialTimeout}

	var client *smtp.Client
	if es.port == "587" {
		conn, err := dialer.Dial("tcp", addr)
		if err != nil {
			return nil, fmt.Errorf("failed to dial SMTP: %w", err)
		}
		if client, err = smtp.NewClient(conn, es.host); err != nil {
			conn.Close()
			return nil, fmt.Errorf("failed to create SMTP client: %w", err)
		}
		if err := client.StartTLS(tlsConfig); err != nil {
			client.Close()
			return nil, fmt.Errorf("failed to start TLS: %w", err)
		}
	} else {
		conn, err := tls.DialWithDialer(dialer, "tcp", addr, tlsConfig)
		if err != nil {
			return nil, fmt.Errorf("failed to dial SMTP: %w", err)
		}
		if client, err = smtp.NewClient(conn, es.host); err != nil {
			conn.Close()
			return nil, fmt.Errorf("failed to create SMTP client: %w", err)
		}
	}

	if err := client.Auth(smtp.PlainAuth("", es.from, es.password, es.host)); err != nil {
		client.Close()
		return nil, fmt.Errorf("SMTP authentication failed: %w", err)
	}
	return client, nil
}

// SendEmail sends one message to a single recipient.
func (es *EmailService) SendEmail(to, subject, body string) error {
	rcpt, err := mail.ParseAddress(to)
	if err != nil {
		return fmt.Errorf("invalid recipient %q: %w", to, err)
	}

	client, err := es.connect()
	if err != nil {
		return err
	}
	defer client.Close()

	if err := client.Mail(es.from); err != nil {
		return fmt.Errorf("failed to set sender: %w", err)
	}
	if err := client.Rcpt(rcpt.Address); err != nil {
		return fmt.Errorf("failed to set recipient: %w", err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("failed to open message: %w", err)
	}
	if _, err := w.Write(BuildMessage(es.from, rcpt.Address, subject, body)); err != nil {
		w.Close()
		return fmt.Errorf("failed to write message: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to finish message: %w", err)
	}

	// The message is accepted once Data closes
	if err := client.Quit(); err != nil {
		es.log.Debug().Err(err).Msg("SMTP QUIT returned non-standard response")
	}

	es.log.Info().Str("to", rcpt.Address).Str("subject", subject).Msg("Email sent")
	return nil
}

// BuildMessage renders headers and body. Header values lose CR and LF, and a
// non-ASCII subject is encoded per RFC 2047.
func BuildMessage(from, to, subject, body string) []byte {
	clean := strings.NewReplacer("\r", "", "\n", " ")

	domain := "menukitty.local"
	if at := strings.LastIndex(from, "@"); at >= 0 {
		domain = strings.Trim(clean.Replace(from[at+1:]), "> ")
	}

	var b bytes.Buffer
	header := func(k, v string) { fmt.Fprintf(&b, "%s: %s\r\n", k, v) }
	header("From", clean.Replace(from))
	header("To", clean.Replace(to))
	header("Subject", mime.QEncoding.Encode("utf-8", clean.Replace(subject)))
	header("Date", time.Now().Format(time.RFC1123Z))
	header("Message-ID", "<"+uuid.NewString()+"@"+domain+">")
	header("MIME-Version", "1.0")
	header("Content-Type", "text/plain; charset=UTF-8")
	b.WriteString("\r\n")
	b.WriteString(body)
	return b.Bytes()
}

// FeedbackNotification builds the subject and body sent to a restaurant when
// a guest leaves feedback.
func FeedbackNotification(restaurantName string, rating int, name, message string) (string, string) {
	if name == "" {
		name = "A guest"
	}
	stars := strings.Repeat("*", rating) + strings.Repeat("-", 5-rating)

	var body strings.Builder
	fmt.Fprintf(&body, "Hello,\n\n%s left feedback for %s.\n\n", name, restaurantName)
	fmt.Fprintf(&body, "Rating: %s (%d/5)\n\n", stars, rating)
	body.WriteString(message)
	body.WriteString("\n\nMenuKitty")

	return fmt.Sprintf("New feedback for %s (%d/5)", restaurantName, rating), body.String()
}

// SendTest sends a short message to check the SMTP settings.
func (es *EmailService) SendTest(to string) error {
	return es.SendEmail(to, "MenuKitty test email", "SMTP settings are working.\n\nMenuKitty")
}
