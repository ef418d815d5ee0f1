package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-money-keeper/internal/config"
	"github.com/MKhiriev/go-money-keeper/internal/metrics"
	"github.com/MKhiriev/go-money-keeper/models"
)

// ─────────────────────────────────────────────
// Shared fixtures
// ─────────────────────────────────────────────

var (
	fixedNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	errDB    = errors.New("db is down")
)

func testAuthConfig() config.Auth {
	return config.Auth{
		BcryptCost:           4,
		HashConcurrency:      2,
		SessionTTL:           24 * time.Hour,
		LockoutThreshold:     5,
		LockoutDuration:      15 * time.Minute,
		PasswordResetTTL:     time.Hour,
		EmailVerificationTTL: 24 * time.Hour,
		ResendInterval:       time.Minute,
		TrialDuration:        14 * 24 * time.Hour,
		EnumerationDelay:     300 * time.Millisecond,
		UpgradeURL:           "/pricing",
		AppBaseURL:           "https://money.example.com/",
	}
}

func fixedClock() time.Time { return fixedNow }

func ptr[T any](v T) *T { return &v }

// ─────────────────────────────────────────────
// Fake: store.Transactor
// ─────────────────────────────────────────────

// inlineTransactor runs fn directly. It records how many transactions
// were opened and can be told to fail before fn runs.
type inlineTransactor struct {
	calls int
	err   error
}

func (t *inlineTransactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	t.calls++
	if t.err != nil {
		return t.err
	}
	return fn(ctx)
}

// ─────────────────────────────────────────────
// Fake: sleeper
// ─────────────────────────────────────────────

type recordingSleeper struct {
	slept []time.Duration
}

func (s *recordingSleeper) sleep(_ context.Context, d time.Duration) {
	s.slept = append(s.slept, d)
}

func activeUser(id int64) models.User {
	return models.User{
		UserID:             id,
		Username:           "alice",
		Email:              ptr("alice@example.com"),
		PasswordHash:       "$2a$04$hash",
		IsActive:           true,
		SubscriptionStatus: models.SubscriptionTrial,
	}
}

// counterValue reads the counter name{label=value} from the registry of m.
func counterValue(t *testing.T, m *metrics.Metrics, name, label, value string) float64 {
	t.Helper()
	families, err := m.Registry().Gather()
	require.NoError(t, err)

	for _, family := range families {
		if family.GetName() != name {
			continue
		}
		for _, metric := range family.GetMetric() {
			for _, pair := range metric.GetLabel() {
				if pair.GetName() == label && pair.GetValue() == value {
					return metric.GetCounter().GetValue()
				}
			}
		}
	}
	return 0
}
