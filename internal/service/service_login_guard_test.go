// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MKhiriev/go-money-keeper/internal/logger"
	"github.com/MKhiriev/go-money-keeper/internal/metrics"
	"github.com/MKhiriev/go-money-keeper/internal/mock"
	"github.com/MKhiriev/go-money-keeper/internal/store"
	"github.com/MKhiriev/go-money-keeper/models"
)

type loginGuardMocks struct {
	users    *mock.MockUserRepository
	attempts *mock.MockLoginAttemptRepository
	hasher   *mock.MockPasswordHasher
	metrics  *metrics.Metrics
}

func newTestLoginGuard(t *testing.T) (*loginGuard, loginGuardMocks) {
	t.Helper()
	ctrl := gomock.NewController(t)
	m := loginGuardMocks{
		users:    mock.NewMockUserRepository(ctrl),
		attempts: mock.NewMockLoginAttemptRepository(ctrl),
		hasher:   mock.NewMockPasswordHasher(ctrl),
		metrics:  metrics.New(),
	}

	g := NewLoginGuard(m.users, m.attempts, m.hasher, testAuthConfig(), m.metrics, logger.Nop()).(*loginGuard)
	g.now = fixedClock
	return g, m
}

// expectAudit asserts the single audit record written by the attempt.
func expectAudit(t *testing.T, attempts *mock.MockLoginAttemptRepository, success bool, reason string) {
	t.Helper()
	attempts.EXPECT().SaveLoginAttempt(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, a models.LoginAttempt) error {
			assert.Equal(t, success, a.Success)
			assert.Equal(t, reason, a.FailureReason)
			assert.Equal(t, fixedNow, a.AttemptedAt)
			return nil
		})
}

var creds = models.Credentials{Username: "alice", Password: "Secret123"}

func loginCount(t *testing.T, m *metrics.Metrics, outcome string) float64 {
	t.Helper()
	return counterValue(t, m, "money_keeper_login_attempts_total", "outcome", outcome)
}

// ── Success ──

func TestLoginGuard_Authenticate_Success(t *testing.T) {
	g, m := newTestLoginGuard(t)
	user := activeUser(1)
	user.FailedLoginCount = 3

	m.users.EXPECT().FindUserByUsername(gomock.Any(), "alice").Return(user, nil)
	m.hasher.EXPECT().Compare(gomock.Any(), user.PasswordHash, "Secret123").Return(true, nil)
	m.users.EXPECT().ResetLoginFailures(gomock.Any(), int64(1), fixedNow).Return(nil)
	expectAudit(t, m.attempts, true, "")

	got, err := g.Authenticate(context.Background(), creds, models.ClientMeta{IPAddress: "10.0.0.1"})
	require.NoError(t, err)
	assert.Equal(t, uint(0), got.FailedLoginCount)
	assert.Nil(t, got.LockedUntil)
	require.NotNil(t, got.LastLoginAt)
	assert.Equal(t, fixedNow, *got.LastLoginAt)
	assert.Equal(t, float64(1), loginCount(t, m.metrics, metrics.LoginSuccess))
}

func TestLoginGuard_Authenticate_AuditFailureIgnored(t *testing.T) {
	g, m := newTestLoginGuard(t)

	m.users.EXPECT().FindUserByUsername(gomock.Any(), "alice").Return(activeUser(1), nil)
	m.hasher.EXPECT().Compare(gomock.Any(), gomock.Any(), gomock.Any()).Return(true, nil)
	m.users.EXPECT().ResetLoginFailures(gomock.Any(), int64(1), fixedNow).Return(nil)
	m.attempts.EXPECT().SaveLoginAttempt(gomock.Any(), gomock.Any()).Return(errDB)

	_, err := g.Authenticate(context.Background(), creds, models.ClientMeta{})
	assert.NoError(t, err)
}

// ── Rejections ──

func TestLoginGuard_Authenticate_MissingFields(t *testing.T) {
	g, _ := newTestLoginGuard(t)

	_, err := g.Authenticate(context.Background(), models.Credentials{Username: "alice"}, models.ClientMeta{})
	assert.ErrorIs(t, err, ErrInvalidDataProvided)

	_, err = g.Authenticate(context.Background(), models.Credentials{Password: "x"}, models.ClientMeta{})
	assert.ErrorIs(t, err, ErrInvalidDataProvided)
}

func TestLoginGuard_Authenticate_UnknownUserPaysForHash(t *testing.T) {
	g, m := newTestLoginGuard(t)

	m.users.EXPECT().FindUserByUsername(gomock.Any(), "alice").Return(models.User{}, store.ErrNoUserWasFound)
	m.hasher.EXPECT().CompareDummy(gomock.Any(), "Secret123")
	m.attempts.EXPECT().SaveLoginAttempt(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, a models.LoginAttempt) error {
			assert.Nil(t, a.UserID)
			assert.Equal(t, models.FailureUserNotFound, a.FailureReason)
			return nil
		})

	_, err := g.Authenticate(context.Background(), creds, models.ClientMeta{})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginGuard_Authenticate_WrongPasswordCounts(t *testing.T) {
	g, m := newTestLoginGuard(t)
	user := activeUser(1)

	m.users.EXPECT().FindUserByUsername(gomock.Any(), "alice").Return(user, nil)
	m.hasher.EXPECT().Compare(gomock.Any(), user.PasswordHash, "Secret123").Return(false, nil)
	m.users.EXPECT().RegisterLoginFailure(gomock.Any(), int64(1), 5, fixedNow.Add(15*time.Minute), fixedNow).
		Return(models.LoginFailureState{FailedLoginCount: 1}, nil)
	expectAudit(t, m.attempts, false, models.FailureInvalidPassword)

	_, err := g.Authenticate(context.Background(), creds, models.ClientMeta{})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.Equal(t, float64(1), loginCount(t, m.metrics, metrics.LoginInvalid))
}

func TestLoginGuard_Authenticate_FifthFailureLocks(t *testing.T) {
	g, m := newTestLoginGuard(t)
	user := activeUser(1)
	user.FailedLoginCount = 4
	lockedUntil := fixedNow.Add(15 * time.Minute)

	m.users.EXPECT().FindUserByUsername(gomock.Any(), "alice").Return(user, nil)
	m.hasher.EXPECT().Compare(gomock.Any(), gomock.Any(), gomock.Any()).Return(false, nil)
	m.users.EXPECT().RegisterLoginFailure(gomock.Any(), int64(1), 5, lockedUntil, fixedNow).
		Return(models.LoginFailureState{FailedLoginCount: 5, LockedUntil: &lockedUntil}, nil)
	expectAudit(t, m.attempts, false, models.FailureAccountLocked)

	_, err := g.Authenticate(context.Background(), creds, models.ClientMeta{})
	// the attempt that trips the lock still reads as bad credentials
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.NotErrorIs(t, err, ErrAccountLocked)
	assert.Equal(t, float64(1), loginCount(t, m.metrics, metrics.LoginLockout))
}

func TestLoginGuard_Authenticate_LockedRejectsCorrectPassword(t *testing.T) {
	g, m := newTestLoginGuard(t)
	user := activeUser(1)
	user.FailedLoginCount = 5
	user.LockedUntil = ptr(fixedNow.Add(14*time.Minute + 10*time.Second))

	m.users.EXPECT().FindUserByUsername(gomock.Any(), "alice").Return(user, nil)
	expectAudit(t, m.attempts, false, models.FailureAccountLocked)
	// no Compare, no RegisterLoginFailure: the counter stays where it is

	_, err := g.Authenticate(context.Background(), creds, models.ClientMeta{})
	require.ErrorIs(t, err, ErrAccountLocked)

	var locked *LockedError
	require.True(t, errors.As(err, &locked))
	assert.Equal(t, 15, locked.RetryAfterMinutes())
}

func TestLoginGuard_Authenticate_ExpiredLockChecksPassword(t *testing.T) {
	g, m := newTestLoginGuard(t)
	user := activeUser(1)
	user.FailedLoginCount = 5
	user.LockedUntil = ptr(fixedNow.Add(-time.Second))

	m.users.EXPECT().FindUserByUsername(gomock.Any(), "alice").Return(user, nil)
	m.hasher.EXPECT().Compare(gomock.Any(), gomock.Any(), gomock.Any()).Return(true, nil)
	m.users.EXPECT().ResetLoginFailures(gomock.Any(), int64(1), fixedNow).Return(nil)
	expectAudit(t, m.attempts, true, "")

	_, err := g.Authenticate(context.Background(), creds, models.ClientMeta{})
	assert.NoError(t, err)
}

func TestLoginGuard_Authenticate_Inactive(t *testing.T) {
	g, m := newTestLoginGuard(t)
	user := activeUser(1)
	user.IsActive = false

	m.users.EXPECT().FindUserByUsername(gomock.Any(), "alice").Return(user, nil)
	expectAudit(t, m.attempts, false, models.FailureAccountInactive)

	_, err := g.Authenticate(context.Background(), creds, models.ClientMeta{})
	assert.ErrorIs(t, err, ErrAccountInactive)
}

func TestLoginGuard_Authenticate_StoreFailure(t *testing.T) {
	g, m := newTestLoginGuard(t)

	m.users.EXPECT().FindUserByUsername(gomock.Any(), "alice").Return(models.User{}, errDB)

	_, err := g.Authenticate(context.Background(), creds, models.ClientMeta{})
	assert.ErrorIs(t, err, errDB)
	assert.NotErrorIs(t, err, ErrInvalidCredentials)
}

// ── LockedError ──

func TestLockedError_RetryAfterMinutes(t *testing.T) {
	tests := []struct {
		remaining time.Duration
		want      int
	}{
		{15 * time.Minute, 15},
		{14*time.Minute + time.Second, 15},
		{30 * time.Second, 1},
		{0, 1},
	}
	for _, tt := range tests {
		e := &LockedError{Remaining: tt.remaining}
		assert.Equal(t, tt.want, e.RetryAfterMinutes(), tt.remaining.String())
		assert.ErrorIs(t, e, ErrAccountLocked)
	}
}
