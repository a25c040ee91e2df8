package mailer

import (
	"context"
	"fmt"
	"time"

	gomail "github.com/wneessen/go-mail"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/config"
)

// Message is a plain-text email.
type Message struct {
	To      string
	Subject string
	Body    string
}

// Mailer delivers email messages.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// New returns an SMTP mailer, or a log-only mailer when no relay host is set.
func New(cfg config.MailConfig, logger *zap.Logger) (Mailer, error) {
	if cfg.Host == "" {
		logger.Warn("SMTP_HOST not set; notifications will only be logged")
		return &LogMailer{logger: logger, from: cfg.From}, nil
	}
	return NewSMTPMailer(cfg)
}

// SMTPMailer sends through an SMTP relay.
type SMTPMailer struct {
	client *gomail.Client
	from   string
}

// NewSMTPMailer builds a client for the configured relay. No connection is
// opened until the first Send.
func NewSMTPMailer(cfg config.MailConfig) (*SMTPMailer, error) {
	opts := []gomail.Option{
		gomail.WithPort(cfg.Port),
		gomail.WithTLSPolicy(tlsPolicy(cfg.TLS)),
		gomail.WithTimeout(30 * time.Second),
	}
	if cfg.Username != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(cfg.Username),
			gomail.WithPassword(cfg.Password),
		)
	}
	client, err := gomail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("smtp client: %w", err)
	}
	return &SMTPMailer{client: client, from: cfg.From}, nil
}

// Send delivers msg; ctx bounds the whole dial-and-send exchange.
func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	out := gomail.NewMsg()
	if err := out.From(m.from); err != nil {
		return fmt.Errorf("from address: %w", err)
	}
	if err := out.To(msg.To); err != nil {
		return fmt.Errorf("to address: %w", err)
	}
	out.Subject(msg.Subject)
	out.SetBodyString(gomail.TypeTextPlain, msg.Body)

	if err := m.client.DialAndSendWithContext(ctx, out); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

func tlsPolicy(mode string) gomail.TLSPolicy {
	switch mode {
	case "none":
		return gomail.NoTLS
	case "opportunistic":
		return gomail.TLSOpportunistic
	default:
		return gomail.TLSMandatory
	}
}

// LogMailer records messages instead of sending them.
type LogMailer struct {
	logger *zap.Logger
	from   string
}

func (m *LogMailer) Send(_ context.Context, msg Message) error {
	m.logger.Info("email not sent: no SMTP relay configured",
		zap.String("from", m.from),
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject))
	return nil
}
