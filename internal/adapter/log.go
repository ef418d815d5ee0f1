package adapter

import (
	"context"

	"github.com/MKhiriev/go-money-keeper/internal/logger"
	"github.com/MKhiriev/go-money-keeper/models"
)

// logMailer records outbound emails in the log instead of delivering them.
// Bodies carry one-time tokens and are never written out.
type logMailer struct {
	logger *logger.Logger
}

func NewLogMailer(logger *logger.Logger) Mailer {
	return &logMailer{logger: logger}
}

func (m *logMailer) Send(ctx context.Context, email models.Email) error {
	if email.To == "" {
		return ErrEmptyRecipient
	}

	m.logger.Info().
		Str("to", email.To).
		Str("subject", email.Subject).
		Int("body_bytes", len(email.Body)).
		Msg("email not delivered: no mail provider configured")
	return nil
}
