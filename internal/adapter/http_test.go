// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package adapter

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-money-keeper/internal/config"
	"github.com/MKhiriev/go-money-keeper/internal/logger"
	"github.com/MKhiriev/go-money-keeper/models"
)

func newTestMailer(t *testing.T, serverURL string) Mailer {
	t.Helper()
	m, err := NewHTTPMailer(config.Mail{
		APIURL:         serverURL,
		APIKey:         "key-123",
		From:           "no-reply@example.com",
		RequestTimeout: 2 * time.Second,
	}, logger.Nop())
	require.NoError(t, err)
	return m
}

var testEmail = models.Email{To: "alice@example.com", Subject: "Reset your password", Body: "https://app/reset?token=abc"}

// ── Send ────────────────────────────────────────────────────────────────────

func TestHTTPMailer_Send_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/messages", r.URL.Path)
		assert.Equal(t, "Bearer key-123", r.Header.Get("Authorization"))

		var body sendRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "no-reply@example.com", body.From)
		assert.Equal(t, testEmail.To, body.To)
		assert.Equal(t, testEmail.Subject, body.Subject)
		assert.Equal(t, testEmail.Body, body.Text)

		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	err := newTestMailer(t, srv.URL).Send(context.Background(), testEmail)
	require.NoError(t, err)
}

func TestHTTPMailer_Send_MapsStatus(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   error
	}{
		{"bad request", http.StatusBadRequest, ErrBadRequest},
		{"unauthorized", http.StatusUnauthorized, ErrUnauthorized},
		{"rate limited", http.StatusTooManyRequests, ErrTooManyRequests},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte("nope"))
			}))
			defer srv.Close()

			err := newTestMailer(t, srv.URL).Send(context.Background(), testEmail)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestHTTPMailer_Send_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	err := newTestMailer(t, srv.URL).Send(context.Background(), testEmail)
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
}

func TestHTTPMailer_Send_EmptyRecipient(t *testing.T) {
	m := newTestMailer(t, "http://127.0.0.1:1")
	err := m.Send(context.Background(), models.Email{Subject: "x"})
	assert.ErrorIs(t, err, ErrEmptyRecipient)
}

// ── Construction ────────────────────────────────────────────────────────────

func TestNewMailer_SelectsImplementation(t *testing.T) {
	m, err := NewMailer(config.Mail{}, logger.Nop())
	require.NoError(t, err)
	assert.IsType(t, &logMailer{}, m)

	m, err = NewMailer(config.Mail{APIURL: "mail.example.com"}, logger.Nop())
	require.NoError(t, err)
	assert.IsType(t, &httpMailer{}, m)
}

func TestNormalizeBaseURL(t *testing.T) {
	got, err := normalizeBaseURL("mail.example.com/")
	require.NoError(t, err)
	assert.Equal(t, "https://mail.example.com", got)

	_, err = normalizeBaseURL("  ")
	assert.ErrorIs(t, err, ErrEmptyAddress)
}

func TestLogMailer_DoesNotLogBody(t *testing.T) {
	var buf bytes.Buffer
	m := NewLogMailer(logger.NewLoggerTo("test", &buf))

	require.NoError(t, m.Send(context.Background(), testEmail))
	assert.Contains(t, buf.String(), testEmail.Subject)
	assert.NotContains(t, buf.String(), "token=abc")
}
