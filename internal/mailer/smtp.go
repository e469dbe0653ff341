package mailer

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	gomail "gopkg.in/gomail.v2"

	"github.com/pawelmuchewicz/CSM-System-Obecnosci-2.0-sub000/config"
)

// SMTPMailer delivers mail through a plain SMTP relay.
type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
	logger *zap.Logger
}

// NewSMTPMailer creates an SMTP mailer from configuration.
func NewSMTPMailer(cfg *config.SMTPConfig, logger *zap.Logger) *SMTPMailer {
	from := cfg.From
	if from == "" {
		from = cfg.Username
	}
	return &SMTPMailer{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   from,
		logger: logger,
	}
}

func (m *SMTPMailer) SendPasswordReset(_ context.Context, to, name, resetURL string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", "CSM — reset hasła / password reset")
	msg.SetBody("text/plain", fmt.Sprintf(
		"Cześć %s,\n\n"+
			"Otrzymaliśmy prośbę o reset hasła do systemu obecności CSM.\n"+
			"Aby ustawić nowe hasło, otwórz poniższy link (ważny przez godzinę):\n\n"+
			"%s\n\n"+
			"Jeśli to nie Ty, zignoruj tę wiadomość.\n",
		name, resetURL,
	))

	if err := m.dialer.DialAndSend(msg); err != nil {
		m.logger.Error("sending password reset mail failed",
			zap.String("to", to),
			zap.Error(err),
		)
		return fmt.Errorf("sending mail: %w", err)
	}

	m.logger.Info("password reset mail sent", zap.String("to", to))
	return nil
}
