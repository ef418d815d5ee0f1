package store

import (
	"context"
	"time"

	"github.com/MKhiriev/go-money-keeper/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/store_mock.go -package=mock

// Transactor runs a function inside a single database transaction.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// UserRepository persists accounts together with their lockout and
// subscription state.
type UserRepository interface {
	CreateUser(ctx context.Context, user models.User) (models.User, error)
	CountUsers(ctx context.Context) (int64, error)
	FindUserByID(ctx context.Context, userID int64) (models.User, error)
	FindUserByUsername(ctx context.Context, username string) (models.User, error)
	FindUserByEmail(ctx context.Context, email string) (models.User, error)

	// RegisterLoginFailure atomically increments the failure counter and,
	// when the incremented value reaches threshold, sets locked_until to
	// lockUntil. It returns the state after the update.
	RegisterLoginFailure(ctx context.Context, userID int64, threshold int, lockUntil, now time.Time) (models.LoginFailureState, error)
	// ResetLoginFailures clears the counter and the lock after a successful
	// login and records the login time.
	ResetLoginFailures(ctx context.Context, userID int64, now time.Time) error
	// Unlock clears the counter and the lock without touching last_login_at.
	Unlock(ctx context.Context, userID int64, now time.Time) error

	SetPasswordHash(ctx context.Context, userID int64, hash string, now time.Time) error
	SetEmailVerified(ctx context.Context, userID int64, now time.Time) error
	SetActive(ctx context.Context, userID int64, active bool, now time.Time) error
	SetSubscriptionStatus(ctx context.Context, userID int64, status models.SubscriptionStatus, now time.Time) error
	DeleteUser(ctx context.Context, userID int64) error
}

// SessionRepository persists login sessions keyed by token hash.
type SessionRepository interface {
	CreateSession(ctx context.Context, session models.Session) error
	FindSessionWithUser(ctx context.Context, tokenHash string) (models.SessionWithUser, error)
	TouchSession(ctx context.Context, tokenHash string, now time.Time) error
	DeleteSession(ctx context.Context, tokenHash string) error
	// DeleteUserSessions removes every session of the user except the one
	// whose hash equals exceptTokenHash (ignored when empty).
	DeleteUserSessions(ctx context.Context, userID int64, exceptTokenHash string) (int64, error)
	DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error)
}

// LoginAttemptRepository is the append-only login audit log.
type LoginAttemptRepository interface {
	SaveLoginAttempt(ctx context.Context, attempt models.LoginAttempt) error
}

// TokenRepository persists one-time tokens of a single purpose.
type TokenRepository interface {
	// InvalidateUserTokens marks every unused token of the user as used.
	InvalidateUserTokens(ctx context.Context, userID int64) (int64, error)
	CreateToken(ctx context.Context, token models.OneTimeToken) error
	FindToken(ctx context.Context, tokenHash string) (models.OneTimeToken, error)
	// ConsumeToken atomically marks an unused, unexpired token as used and
	// returns its owner. Returns ErrTokenNotFound when no such token exists.
	ConsumeToken(ctx context.Context, tokenHash string, now time.Time) (int64, error)
}

// SubscriptionRepository stores the latest payment provider snapshot.
type SubscriptionRepository interface {
	UpsertSubscription(ctx context.Context, subscription models.Subscription) error
	FindSubscription(ctx context.Context, userID int64) (models.Subscription, error)
}
