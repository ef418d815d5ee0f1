package service

import (
	"context"

	"github.com/MKhiriev/go-money-keeper/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/service_mock.go -package=mock

// SessionManager owns the server-side session lifecycle. Raw tokens only
// ever exist in the client's cookie and in the value returned by Issue.
type SessionManager interface {
	Issue(ctx context.Context, userID int64, meta models.ClientMeta) (string, models.Session, error)
	Verify(ctx context.Context, token string) (models.Principal, error)
	Revoke(ctx context.Context, token string) error
	RevokeAllForUser(ctx context.Context, userID int64, exceptToken string) (int64, error)
	SweepExpired(ctx context.Context) (int64, error)
}

// LoginGuard verifies credentials under the brute-force lockout policy and
// records every attempt in the audit log.
type LoginGuard interface {
	Authenticate(ctx context.Context, credentials models.Credentials, meta models.ClientMeta) (models.User, error)
}

type AuthService interface {
	Register(ctx context.Context, req models.RegisterRequest) (models.User, error)
	Login(ctx context.Context, credentials models.Credentials, meta models.ClientMeta) (models.LoginResult, error)
	Logout(ctx context.Context, token string) error
	ChangePassword(ctx context.Context, principal models.Principal, req models.ChangePasswordRequest) error
	Account(ctx context.Context, userID int64) (models.User, models.Entitlement, error)
}

// OneTimeTokenService issues and consumes single-use tokens of one purpose.
type OneTimeTokenService interface {
	Issue(ctx context.Context, userID int64) (string, error)
	Validate(ctx context.Context, token string) (int64, error)
	// Consume marks the token used and runs effect in the same transaction.
	// When effect fails the token stays unused.
	Consume(ctx context.Context, token string, effect func(ctx context.Context, userID int64) error) (int64, error)
}

type PasswordResetService interface {
	RequestReset(ctx context.Context, req models.EmailRequest) error
	ValidateToken(ctx context.Context, token string) error
	ResetPassword(ctx context.Context, req models.ResetPasswordRequest) error
}

type EmailVerificationService interface {
	SendVerification(ctx context.Context, user models.User) error
	VerifyEmail(ctx context.Context, token string) error
	Resend(ctx context.Context, req models.EmailRequest) error
}

type EntitlementService interface {
	Evaluate(ctx context.Context, userID int64) (models.Entitlement, error)
	EvaluateUser(ctx context.Context, user models.User) models.Entitlement
}

// SubscriptionFeed reports whether the payment provider currently grants
// access to the user.
type SubscriptionFeed interface {
	IsActive(ctx context.Context, userID int64) (bool, error)
}

type SubscriptionService interface {
	SubscriptionFeed
	// HandleEvent verifies the signature of a webhook payload and applies it.
	HandleEvent(ctx context.Context, payload []byte, signature string) error
}

type AdminService interface {
	RevokeSessions(ctx context.Context, userID int64) (int64, error)
	Unlock(ctx context.Context, userID int64) error
	SetActive(ctx context.Context, actor models.Principal, userID int64, active bool) error
	PurgeUser(ctx context.Context, actor models.Principal, userID int64) error
}

// AppInfoService reports build and runtime facts for the /version route.
type AppInfoService interface {
	GetAppInfo(ctx context.Context) models.AppInfo
}
