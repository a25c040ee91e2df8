package mailer

import (
	"context"
	"testing"

	gomail "github.com/wneessen/go-mail"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/config"
)

func TestNewWithoutHostReturnsLogMailer(t *testing.T) {
	m, err := New(config.MailConfig{From: "noreply@example.com"}, zap.NewNop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, ok := m.(*LogMailer); !ok {
		t.Fatalf("mailer = %T, want *LogMailer", m)
	}
	if err := m.Send(context.Background(), Message{To: "a@b.com", Subject: "s", Body: "b"}); err != nil {
		t.Fatalf("Send: %v", err)
	}
}

func TestNewWithHostReturnsSMTPMailer(t *testing.T) {
	m, err := New(config.MailConfig{Host: "smtp.example.com", Port: 587, From: "noreply@example.com", Username: "u", Password: "p"}, zap.NewNop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, ok := m.(*SMTPMailer); !ok {
		t.Fatalf("mailer = %T, want *SMTPMailer", m)
	}
}

func TestTLSPolicy(t *testing.T) {
	tests := map[string]gomail.TLSPolicy{
		"none":          gomail.NoTLS,
		"opportunistic": gomail.TLSOpportunistic,
		"mandatory":     gomail.TLSMandatory,
		"":              gomail.TLSMandatory,
	}
	for in, want := range tests {
		if got := tlsPolicy(in); got != want {
			t.Errorf("tlsPolicy(%q) = %v, want %v", in, got, want)
		}
	}
}
