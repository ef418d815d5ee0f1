package service

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/MKhiriev/go-money-keeper/internal/adapter"
	"github.com/MKhiriev/go-money-keeper/internal/logger"
	"github.com/MKhiriev/go-money-keeper/models"
)

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func tokenLink(baseURL, path, token string) string {
	return fmt.Sprintf("%s%s?token=%s", strings.TrimRight(baseURL, "/"), path, url.QueryEscape(token))
}

// sendMail hands the message to the mailer. Delivery is best effort: a
// failure is logged and never reaches the caller.
func sendMail(ctx context.Context, mailer adapter.Mailer, email models.Email) {
	if err := mailer.Send(ctx, email); err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "sendMail").Str("subject", email.Subject).Msg("error sending email")
	}
}
