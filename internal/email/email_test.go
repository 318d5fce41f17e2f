// SPDX-License-Identifier: MIT
package email

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/thatcatcamp/menukitty/internal/config"
)

func TestEmailServiceRequiresConfig(t *testing.T) {
	if err := config.InitConfig(filepath.Join(t.TempDir(), "config.yaml")); err != nil {
		t.Fatalf("InitConfig failed: %v", err)
	}

	_, err := NewEmailService()
	if !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("Expected ErrNotConfigured, got %v", err)
	}
}

func TestEmailServiceFromConfig(t *testing.T) {
	if err := config.InitConfig(filepath.Join(t.TempDir(), "config.yaml")); err != nil {
		t.Fatalf("InitConfig failed: %v", err)
	}
	for k, v := range map[string]string{
		"email.smtp_host": "smtp.example.com",
		"email.from":      "menu@example.com",
		"email.password":  "secret",
	} {
		if err := config.Set(k, v); err != nil {
			t.Fatalf("Set(%s) failed: %v", k, err)
		}
	}

	svc, err := NewEmailService()
	if err != nil {
		t.Fatalf("NewEmailService failed: %v", err)
	}
	if svc.port != "587" {
		t.Errorf("Expected default port 587, got %s", svc.port)
	}
}

func TestBuildMessageStripsHeaderInjection(t *testing.T) {
	msg := string(BuildMessage("a@example.com", "b@example.com", "hi\r\nBcc: evil@example.com", "line1\nline2"))

	if strings.Contains(msg, "\r\nBcc:") {
		t.Errorf("Subject must not inject headers: %q", msg)
	}
	if !strings.HasSuffix(msg, "\r\n\r\nline1\nline2") {
		t.Errorf("Body should be kept verbatim: %q", msg)
	}
}

func TestFeedbackNotification(t *testing.T) {
	subject, body := FeedbackNotification("Trattoria", 4, "", "Lovely carbonara")

	if subject != "New feedback for Trattoria (4/5)" {
		t.Errorf("Unexpected subject %q", subject)
	}
	if !strings.Contains(body, "A guest left feedback") {
		t.Errorf("Anonymous feedback should say 'A guest': %q", body)
	}
	if !strings.Contains(body, "****- (4/5)") {
		t.Errorf("Expected star bar in body: %q", body)
	}
	if !strings.Contains(body, "Lovely carbonara") {
		t.Errorf("Expected message in body: %q", body)
	}
}

func TestBuildMessageHeaders(t *testing.T) {
	msg := string(BuildMessage("Menu <menu@pasta.example>", "owner@example.com", "Täglich frisch", "body"))

	if !strings.Contains(msg, "Subject: =?utf-8?q?T=C3=A4glich_frisch?=\r\n") {
		t.Errorf("Expected encoded subject: %q", msg)
	}
	if !strings.Contains(msg, "@pasta.example>\r\n") {
		t.Errorf("Expected Message-ID in the sender's domain: %q", msg)
	}
	if !strings.Contains(msg, "\r\nDate: ") {
		t.Errorf("Expected Date header: %q", msg)
	}
}

func TestEmailServiceRejectsBadAddresses(t *testing.T) {
	if err := config.InitConfig(filepath.Join(t.TempDir(), "config.yaml")); err != nil {
		t.Fatalf("InitConfig failed: %v", err)
	}
	for k, v := range map[string]string{
		"email.smtp_host": "smtp.example.com",
		"email.from":      "not an address",
		"email.password":  "secret",
	} {
		if err := config.Set(k, v); err != nil {
			t.Fatalf("Set(%s) failed: %v", k, err)
		}
	}
	if _, err := NewEmailService(); err == nil || errors.Is(err, ErrNotConfigured) {
		t.Fatalf("Expected invalid sender error, got %v", err)
	}

	es := &EmailService{host: "127.0.0.1", port: "1", from: "menu@example.com", password: "x"}
	if err := es.SendEmail("nobody", "s", "b"); err == nil || !strings.Contains(err.Error(), "invalid recipient") {
		t.Fatalf("Expected invalid recipient error before dialing, got %v", err)
	}
}
