// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MKhiriev/go-money-keeper/internal/logger"
	"github.com/MKhiriev/go-money-keeper/internal/mock"
	"github.com/MKhiriev/go-money-keeper/internal/store"
	"github.com/MKhiriev/go-money-keeper/internal/validators"
	"github.com/MKhiriev/go-money-keeper/models"
)

type authMocks struct {
	users        *mock.MockUserRepository
	transactor   *inlineTransactor
	hasher       *mock.MockPasswordHasher
	guard        *mock.MockLoginGuard
	sessions     *mock.MockSessionManager
	verification *mock.MockEmailVerificationService
	entitlements *mock.MockEntitlementService
}

func newTestAuthService(t *testing.T) (*authService, authMocks) {
	t.Helper()
	ctrl := gomock.NewController(t)
	m := authMocks{
		users:        mock.NewMockUserRepository(ctrl),
		transactor:   &inlineTransactor{},
		hasher:       mock.NewMockPasswordHasher(ctrl),
		guard:        mock.NewMockLoginGuard(ctrl),
		sessions:     mock.NewMockSessionManager(ctrl),
		verification: mock.NewMockEmailVerificationService(ctrl),
		entitlements: mock.NewMockEntitlementService(ctrl),
	}

	a := NewAuthService(m.users, m.transactor, m.hasher, validators.NewRequestValidator(), m.guard, m.sessions, m.verification, m.entitlements, testAuthConfig(), logger.Nop()).(*authService)
	a.now = fixedClock
	return a, m
}

var registerReq = models.RegisterRequest{Username: "alice", Email: " Alice@Example.com", Password: "Secret123"}

// ─────────────────────────────────────────────
// Register
// ─────────────────────────────────────────────

func TestAuthService_Register_FirstUserIsAdmin(t *testing.T) {
	a, m := newTestAuthService(t)

	m.hasher.EXPECT().Hash(gomock.Any(), "Secret123").Return("hash", nil)
	m.users.EXPECT().CountUsers(gomock.Any()).Return(int64(0), nil)
	m.users.EXPECT().CreateUser(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, u models.User) (models.User, error) {
			assert.True(t, u.IsAdmin)
			assert.True(t, u.IsActive)
			assert.Equal(t, "hash", u.PasswordHash)
			require.NotNil(t, u.Email)
			assert.Equal(t, "alice@example.com", *u.Email)
			assert.Equal(t, models.SubscriptionTrial, u.SubscriptionStatus)
			require.NotNil(t, u.TrialEnd)
			assert.Equal(t, fixedNow.Add(14*24*time.Hour), *u.TrialEnd)
			u.UserID = 1
			return u, nil
		})
	m.verification.EXPECT().SendVerification(gomock.Any(), gomock.Any()).Return(nil)

	user, err := a.Register(context.Background(), registerReq)
	require.NoError(t, err)
	assert.Equal(t, int64(1), user.UserID)
	assert.True(t, user.IsAdmin)
	assert.Equal(t, 1, m.transactor.calls)
}

func TestAuthService_Register_LaterUsersAreNotAdmin(t *testing.T) {
	a, m := newTestAuthService(t)

	m.hasher.EXPECT().Hash(gomock.Any(), gomock.Any()).Return("hash", nil)
	m.users.EXPECT().CountUsers(gomock.Any()).Return(int64(3), nil)
	m.users.EXPECT().CreateUser(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, u models.User) (models.User, error) {
			u.UserID = 4
			return u, nil
		})
	m.verification.EXPECT().SendVerification(gomock.Any(), gomock.Any()).Return(nil)

	user, err := a.Register(context.Background(), registerReq)
	require.NoError(t, err)
	assert.False(t, user.IsAdmin)
}

func TestAuthService_Register_WithoutEmail(t *testing.T) {
	a, m := newTestAuthService(t)

	m.hasher.EXPECT().Hash(gomock.Any(), gomock.Any()).Return("hash", nil)
	m.users.EXPECT().CountUsers(gomock.Any()).Return(int64(3), nil)
	m.users.EXPECT().CreateUser(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, u models.User) (models.User, error) {
			assert.Nil(t, u.Email)
			return u, nil
		})
	m.verification.EXPECT().SendVerification(gomock.Any(), gomock.Any()).Return(nil)

	_, err := a.Register(context.Background(), models.RegisterRequest{Username: "bob", Password: "Secret123"})
	assert.NoError(t, err)
}

func TestAuthService_Register_Duplicate(t *testing.T) {
	a, m := newTestAuthService(t)

	m.hasher.EXPECT().Hash(gomock.Any(), gomock.Any()).Return("hash", nil)
	m.users.EXPECT().CountUsers(gomock.Any()).Return(int64(1), nil)
	m.users.EXPECT().CreateUser(gomock.Any(), gomock.Any()).Return(models.User{}, store.ErrUserAlreadyExists)

	_, err := a.Register(context.Background(), registerReq)
	assert.ErrorIs(t, err, ErrUserAlreadyExists)
}

func TestAuthService_Register_Validation(t *testing.T) {
	tests := []struct {
		name    string
		req     models.RegisterRequest
		wantErr error
	}{
		{name: "weak password", req: models.RegisterRequest{Username: "alice", Password: "password1"}, wantErr: validators.ErrPasswordNoUpper},
		{name: "short username", req: models.RegisterRequest{Username: "al", Password: "Secret123"}, wantErr: validators.ErrUsernameMalformed},
		{name: "bad email", req: models.RegisterRequest{Username: "alice", Email: "alice@", Password: "Secret123"}, wantErr: validators.ErrEmailMalformed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, _ := newTestAuthService(t)

			_, err := a.Register(context.Background(), tt.req)
			assert.ErrorIs(t, err, ErrValidation)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestAuthService_Register_MailFailureDoesNotFail(t *testing.T) {
	a, m := newTestAuthService(t)

	m.hasher.EXPECT().Hash(gomock.Any(), gomock.Any()).Return("hash", nil)
	m.users.EXPECT().CountUsers(gomock.Any()).Return(int64(1), nil)
	m.users.EXPECT().CreateUser(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, u models.User) (models.User, error) {
		return u, nil
	})
	m.verification.EXPECT().SendVerification(gomock.Any(), gomock.Any()).Return(errDB)

	_, err := a.Register(context.Background(), registerReq)
	assert.NoError(t, err)
}

// ─────────────────────────────────────────────
// Login / Logout
// ─────────────────────────────────────────────

func TestAuthService_Login(t *testing.T) {
	a, m := newTestAuthService(t)
	user := activeUser(1)
	meta := models.ClientMeta{IPAddress: "10.0.0.1"}
	entitlement := models.Entitlement{Status: models.SubscriptionTrial, DaysRemaining: 5}

	m.guard.EXPECT().Authenticate(gomock.Any(), creds, meta).Return(user, nil)
	m.sessions.EXPECT().Issue(gomock.Any(), int64(1), meta).Return("raw", models.Session{UserID: 1}, nil)
	m.entitlements.EXPECT().EvaluateUser(gomock.Any(), user).Return(entitlement)

	res, err := a.Login(context.Background(), creds, meta)
	require.NoError(t, err)
	assert.Equal(t, "raw", res.SessionToken)
	assert.Equal(t, entitlement, res.Entitlement)
}

func TestAuthService_Login_GuardRejects(t *testing.T) {
	a, m := newTestAuthService(t)

	m.guard.EXPECT().Authenticate(gomock.Any(), creds, gomock.Any()).Return(models.User{}, &LockedError{Remaining: time.Minute})

	_, err := a.Login(context.Background(), creds, models.ClientMeta{})
	assert.ErrorIs(t, err, ErrAccountLocked)
}

func TestAuthService_Logout(t *testing.T) {
	a, m := newTestAuthService(t)

	m.sessions.EXPECT().Revoke(gomock.Any(), "raw").Return(nil)

	assert.NoError(t, a.Logout(context.Background(), "raw"))
}

// ─────────────────────────────────────────────
// ChangePassword
// ─────────────────────────────────────────────

var principal = models.Principal{UserID: 1, Username: "alice", SessionToken: "current"}

func TestAuthService_ChangePassword_KeepsCurrentSession(t *testing.T) {
	a, m := newTestAuthService(t)
	user := activeUser(1)

	m.users.EXPECT().FindUserByID(gomock.Any(), int64(1)).Return(user, nil)
	m.hasher.EXPECT().Compare(gomock.Any(), user.PasswordHash, "Secret123").Return(true, nil)
	m.hasher.EXPECT().Hash(gomock.Any(), "Better456").Return("new-hash", nil)
	m.users.EXPECT().SetPasswordHash(gomock.Any(), int64(1), "new-hash", fixedNow).Return(nil)
	m.sessions.EXPECT().RevokeAllForUser(gomock.Any(), int64(1), "current").Return(int64(2), nil)

	err := a.ChangePassword(context.Background(), principal, models.ChangePasswordRequest{CurrentPassword: "Secret123", NewPassword: "Better456"})
	assert.NoError(t, err)
}

func TestAuthService_ChangePassword_WrongCurrent(t *testing.T) {
	a, m := newTestAuthService(t)

	m.users.EXPECT().FindUserByID(gomock.Any(), int64(1)).Return(activeUser(1), nil)
	m.hasher.EXPECT().Compare(gomock.Any(), gomock.Any(), "Wrong123").Return(false, nil)

	err := a.ChangePassword(context.Background(), principal, models.ChangePasswordRequest{CurrentPassword: "Wrong123", NewPassword: "Better456"})
	assert.ErrorIs(t, err, ErrWrongPassword)
}

func TestAuthService_ChangePassword_WeakNew(t *testing.T) {
	a, _ := newTestAuthService(t)

	err := a.ChangePassword(context.Background(), principal, models.ChangePasswordRequest{CurrentPassword: "Secret123", NewPassword: "weak"})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestAuthService_ChangePassword_UserGone(t *testing.T) {
	a, m := newTestAuthService(t)

	m.users.EXPECT().FindUserByID(gomock.Any(), int64(1)).Return(models.User{}, store.ErrNoUserWasFound)

	err := a.ChangePassword(context.Background(), principal, models.ChangePasswordRequest{CurrentPassword: "Secret123", NewPassword: "Better456"})
	assert.ErrorIs(t, err, ErrSessionInvalid)
}

// ─────────────────────────────────────────────
// Account
// ─────────────────────────────────────────────

func TestAuthService_Account(t *testing.T) {
	a, m := newTestAuthService(t)
	user := activeUser(1)

	m.users.EXPECT().FindUserByID(gomock.Any(), int64(1)).Return(user, nil)
	m.entitlements.EXPECT().EvaluateUser(gomock.Any(), user).Return(models.Entitlement{IsActive: true})

	got, ent, err := a.Account(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, user, got)
	assert.True(t, ent.IsActive)
}

func TestAuthService_Account_Unknown(t *testing.T) {
	a, m := newTestAuthService(t)

	m.users.EXPECT().FindUserByID(gomock.Any(), int64(9)).Return(models.User{}, store.ErrNoUserWasFound)

	_, _, err := a.Account(context.Background(), 9)
	assert.ErrorIs(t, err, ErrNotFound)
}
