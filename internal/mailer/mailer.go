// Package mailer sends the few transactional mails the system needs.
// An SMTP implementation is used when SMTP_HOST is configured; otherwise a
// console implementation logs the mail so password resets remain usable in
// development.
package mailer

import (
	"context"

	"go.uber.org/zap"

	"github.com/pawelmuchewicz/CSM-System-Obecnosci-2.0-sub000/config"
)

// Mailer is any service that can deliver outbound mail.
type Mailer interface {
	// SendPasswordReset mails a reset link to an account holder.
	SendPasswordReset(ctx context.Context, to, name, resetURL string) error
}

// New selects the mailer implementation from configuration.
func New(cfg *config.SMTPConfig, logger *zap.Logger) Mailer {
	if cfg.Host == "" {
		logger.Info("smtp not configured, using console mailer")
		return NewConsoleMailer(logger)
	}
	return NewSMTPMailer(cfg, logger)
}

// ConsoleMailer logs mails instead of sending them.
type ConsoleMailer struct {
	logger *zap.Logger
}

// NewConsoleMailer creates a console mailer.
func NewConsoleMailer(logger *zap.Logger) *ConsoleMailer {
	return &ConsoleMailer{logger: logger}
}

func (m *ConsoleMailer) SendPasswordReset(_ context.Context, to, name, resetURL string) error {
	m.logger.Info("password reset mail (console)",
		zap.String("to", to),
		zap.String("name", name),
		zap.String("reset_url", resetURL),
	)
	return nil
}
