package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MKhiriev/go-money-keeper/internal/config"
	"github.com/MKhiriev/go-money-keeper/internal/crypto"
	"github.com/MKhiriev/go-money-keeper/internal/logger"
	"github.com/MKhiriev/go-money-keeper/internal/metrics"
	"github.com/MKhiriev/go-money-keeper/internal/store"
	"github.com/MKhiriev/go-money-keeper/models"
)

// loginGuard is the concrete implementation of [LoginGuard].
//
// The lockout state lives on the user row: a failure counter and an
// optional locked_until instant. Failures are counted by a single atomic
// UPDATE so concurrent guesses cannot slip past the threshold.
type loginGuard struct {
	users    store.UserRepository
	attempts store.LoginAttemptRepository
	hasher   crypto.PasswordHasher

	// threshold is the number of consecutive failures that locks the account.
	threshold int
	// lockoutDuration is how long the account stays locked once the
	// threshold is reached.
	lockoutDuration time.Duration

	now     func() time.Time
	metrics *metrics.Metrics
	logger  *logger.Logger
}

func NewLoginGuard(users store.UserRepository, attempts store.LoginAttemptRepository, hasher crypto.PasswordHasher, cfg config.Auth, m *metrics.Metrics, logger *logger.Logger) LoginGuard {
	return &loginGuard{
		users:           users,
		attempts:        attempts,
		hasher:          hasher,
		threshold:       cfg.LockoutThreshold,
		lockoutDuration: cfg.LockoutDuration,
		now:             utcNow,
		metrics:         m,
		logger:          logger,
	}
}

// Authenticate checks credentials against the stored hash.
//
// The checks run in a fixed order: missing fields, unknown user, open lock,
// inactive account, password. Unknown users still pay for a bcrypt
// comparison. A locked account is rejected before its password is looked
// at and its counter is left alone. Every outcome is written to the audit
// log; audit failures are logged only.
//
// Returns the authenticated user or one of:
//   - ErrInvalidDataProvided if username or password is empty.
//   - ErrInvalidCredentials for an unknown user or a wrong password.
//   - *LockedError (matching ErrAccountLocked) while the lock is open.
//   - ErrAccountInactive if the account has been deactivated.
func (g *loginGuard) Authenticate(ctx context.Context, credentials models.Credentials, meta models.ClientMeta) (models.User, error) {
	log := logger.FromContext(ctx)

	if credentials.Username == "" || credentials.Password == "" {
		return models.User{}, ErrInvalidDataProvided
	}

	now := g.now()
	attempt := models.LoginAttempt{
		AttemptedAt: now,
		Username:    credentials.Username,
		IPAddress:   meta.IPAddress,
		UserAgent:   truncateUserAgent(meta.UserAgent),
	}

	user, err := g.users.FindUserByUsername(ctx, credentials.Username)
	if errors.Is(err, store.ErrNoUserWasFound) {
		g.hasher.CompareDummy(ctx, credentials.Password)
		g.audit(ctx, attempt, models.FailureUserNotFound)
		g.metrics.LoginAttempt(metrics.LoginInvalid)
		return models.User{}, ErrInvalidCredentials
	}
	if err != nil {
		return models.User{}, fmt.Errorf("find user: %w", err)
	}
	attempt.UserID = &user.UserID

	if user.IsLocked(now) {
		g.audit(ctx, attempt, models.FailureAccountLocked)
		g.metrics.LoginAttempt(metrics.LoginLocked)
		log.Warn().Str("func", "*loginGuard.Authenticate").Int64("user_id", user.UserID).Time("locked_until", *user.LockedUntil).Msg("login rejected: account locked")
		return models.User{}, &LockedError{Remaining: user.LockedUntil.Sub(now)}
	}

	if !user.IsActive {
		g.audit(ctx, attempt, models.FailureAccountInactive)
		g.metrics.LoginAttempt(metrics.LoginInactive)
		return models.User{}, ErrAccountInactive
	}

	ok, err := g.hasher.Compare(ctx, user.PasswordHash, credentials.Password)
	if err != nil {
		return models.User{}, fmt.Errorf("compare password: %w", err)
	}

	if !ok {
		return models.User{}, g.registerFailure(ctx, user, attempt, now)
	}

	if err = g.users.ResetLoginFailures(ctx, user.UserID, now); err != nil {
		return models.User{}, fmt.Errorf("reset login failures: %w", err)
	}
	user.FailedLoginCount = 0
	user.LockedUntil = nil
	user.LastLoginAt = &now

	attempt.Success = true
	g.audit(ctx, attempt, "")
	g.metrics.LoginAttempt(metrics.LoginSuccess)

	return user, nil
}

func (g *loginGuard) registerFailure(ctx context.Context, user models.User, attempt models.LoginAttempt, now time.Time) error {
	log := logger.FromContext(ctx)

	state, err := g.users.RegisterLoginFailure(ctx, user.UserID, g.threshold, now.Add(g.lockoutDuration), now)
	if err != nil {
		return fmt.Errorf("register login failure: %w", err)
	}

	if state.FailedLoginCount >= uint(g.threshold) && state.LockedUntil != nil && now.Before(*state.LockedUntil) {
		g.audit(ctx, attempt, models.FailureAccountLocked)
		g.metrics.LoginAttempt(metrics.LoginLockout)
		log.Warn().
			Str("func", "*loginGuard.Authenticate").
			Int64("user_id", user.UserID).
			Uint("failed_login_count", state.FailedLoginCount).
			Time("locked_until", *state.LockedUntil).
			Msg("account locked after repeated failures")
		return ErrInvalidCredentials
	}

	g.audit(ctx, attempt, models.FailureInvalidPassword)
	g.metrics.LoginAttempt(metrics.LoginInvalid)
	return ErrInvalidCredentials
}

func (g *loginGuard) audit(ctx context.Context, attempt models.LoginAttempt, reason string) {
	attempt.FailureReason = reason
	if err := g.attempts.SaveLoginAttempt(ctx, attempt); err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "*loginGuard.audit").Str("username", attempt.Username).Msg("error writing login audit record")
	}
}
