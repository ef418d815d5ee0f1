package adapter

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/MKhiriev/go-money-keeper/internal/config"
	"github.com/MKhiriev/go-money-keeper/internal/logger"
	"github.com/MKhiriev/go-money-keeper/internal/utils"
	"github.com/MKhiriev/go-money-keeper/models"
)

const sendPath = "/messages"

// sendRequest is the JSON body accepted by the mail provider.
type sendRequest struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	Text    string `json:"text"`
}

type httpMailer struct {
	client *utils.HTTPClient

	from   string
	apiKey string

	logger *logger.Logger
}

// NewMailer returns the HTTP mailer when cfg.APIURL is set and the logging
// mailer otherwise.
func NewMailer(cfg config.Mail, logger *logger.Logger) (Mailer, error) {
	if strings.TrimSpace(cfg.APIURL) == "" {
		logger.Warn().Msg("mail api url is not set, emails will only be logged")
		return NewLogMailer(logger), nil
	}
	return NewHTTPMailer(cfg, logger)
}

// NewHTTPMailer constructs an HTTP/REST implementation of [Mailer].
// It normalises and validates the base URL from cfg.APIURL and configures
// the underlying HTTP client with the resolved base URL and request timeout.
//
// Returns an error if cfg.APIURL is empty or cannot be parsed as a valid URL.
func NewHTTPMailer(cfg config.Mail, logger *logger.Logger) (Mailer, error) {
	baseURL, err := normalizeBaseURL(cfg.APIURL)
	if err != nil {
		return nil, fmt.Errorf("invalid mail api url: %w", err)
	}

	return &httpMailer{
		client: utils.NewHTTPClient(baseURL, cfg.RequestTimeout),
		from:   cfg.From,
		apiKey: cfg.APIKey,
		logger: logger,
	}, nil
}

func normalizeBaseURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", ErrEmptyAddress
	}

	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("address must include host and scheme")
	}

	return strings.TrimRight(u.String(), "/"), nil
}

// Send implements [Mailer]. It posts the message to the provider's
// /messages endpoint, authenticating with the configured API key.
func (m *httpMailer) Send(ctx context.Context, email models.Email) error {
	if strings.TrimSpace(email.To) == "" {
		return ErrEmptyRecipient
	}

	req := m.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(sendRequest{
			From:    m.from,
			To:      email.To,
			Subject: email.Subject,
			Text:    email.Body,
		})
	if m.apiKey != "" {
		req.SetAuthToken(m.apiKey)
	}

	resp, err := req.Post(sendPath)
	if err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "*httpMailer.Send").Msg("mail request failed")
		return fmt.Errorf("send email: %w", err)
	}

	if err = mapHTTPError(resp); err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", "*httpMailer.Send").
			Int("status", resp.StatusCode()).
			Msg("mail provider returned an error")
		return err
	}

	return nil
}
