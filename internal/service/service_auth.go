package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MKhiriev/go-money-keeper/internal/config"
	"github.com/MKhiriev/go-money-keeper/internal/crypto"
	"github.com/MKhiriev/go-money-keeper/internal/logger"
	"github.com/MKhiriev/go-money-keeper/internal/store"
	"github.com/MKhiriev/go-money-keeper/internal/validators"
	"github.com/MKhiriev/go-money-keeper/models"
)

// authService is the concrete implementation of AuthService.
// It ties registration, login, logout and password changes to the
// lower-level guard, session and token components.
type authService struct {
	// users is the data-access layer used to create and look up users.
	users store.UserRepository

	// transactor makes the "first user becomes admin" check and the insert
	// a single unit.
	transactor store.Transactor

	hasher    crypto.PasswordHasher
	validator validators.Validator

	guard        LoginGuard
	sessions     SessionManager
	verification EmailVerificationService
	entitlements EntitlementService

	// trialDuration is the length of the trial granted at registration.
	trialDuration time.Duration

	now    func() time.Time
	logger *logger.Logger
}

// NewAuthService constructs a new AuthService from its collaborators and
// the trial length configured in cfg.
//
// The returned service is safe for concurrent use; all state is read-only
// after construction.
func NewAuthService(
	users store.UserRepository,
	transactor store.Transactor,
	hasher crypto.PasswordHasher,
	validator validators.Validator,
	guard LoginGuard,
	sessions SessionManager,
	verification EmailVerificationService,
	entitlements EntitlementService,
	cfg config.Auth,
	logger *logger.Logger,
) AuthService {
	return &authService{
		users:         users,
		transactor:    transactor,
		hasher:        hasher,
		validator:     validator,
		guard:         guard,
		sessions:      sessions,
		verification:  verification,
		entitlements:  entitlements,
		trialDuration: cfg.TrialDuration,
		now:           utcNow,
		logger:        logger,
	}
}

// Register creates a new user account.
//
// The request is validated, the password hashed with bcrypt and the account
// stored with an open trial window. The very first account of an empty
// store becomes an administrator. When an email is given a verification
// link is sent; failing to send it does not fail the registration.
//
// Returns the persisted user (with a server-assigned UserID) or:
//   - an error matching ErrValidation if the request breaks a rule.
//   - ErrUserAlreadyExists if the username or email is taken.
func (a *authService) Register(ctx context.Context, req models.RegisterRequest) (models.User, error) {
	log := logger.FromContext(ctx)

	req.Email = normalizeEmail(req.Email)
	if err := a.validator.Validate(ctx, req); err != nil {
		return models.User{}, err
	}

	hash, err := a.hasher.Hash(ctx, req.Password)
	if err != nil {
		return models.User{}, fmt.Errorf("hash password: %w", err)
	}

	now := a.now()
	trialEnd := now.Add(a.trialDuration)
	user := models.User{
		Username:           req.Username,
		PasswordHash:       hash,
		IsActive:           true,
		TrialStart:         &now,
		TrialEnd:           &trialEnd,
		SubscriptionStatus: models.SubscriptionTrial,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if req.Email != "" {
		email := req.Email
		user.Email = &email
	}

	var created models.User
	err = a.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		count, err := a.users.CountUsers(ctx)
		if err != nil {
			return err
		}
		user.IsAdmin = count == 0

		created, err = a.users.CreateUser(ctx, user)
		return err
	})
	if errors.Is(err, store.ErrUserAlreadyExists) {
		return models.User{}, ErrUserAlreadyExists
	}
	if err != nil {
		log.Err(err).Str("func", "*authService.Register").Str("username", req.Username).Msg("user creation ended with error")
		return models.User{}, fmt.Errorf("user creation ended with error: %w", err)
	}

	if created.IsAdmin {
		log.Info().Int64("user_id", created.UserID).Msg("first account registered as administrator")
	}

	if err = a.verification.SendVerification(ctx, created); err != nil {
		log.Err(err).Str("func", "*authService.Register").Int64("user_id", created.UserID).Msg("error sending verification email")
	}

	return created, nil
}

// Login authenticates through the guard, opens a session and evaluates the
// entitlement shown to the client.
func (a *authService) Login(ctx context.Context, credentials models.Credentials, meta models.ClientMeta) (models.LoginResult, error) {
	user, err := a.guard.Authenticate(ctx, credentials, meta)
	if err != nil {
		return models.LoginResult{}, err
	}

	token, session, err := a.sessions.Issue(ctx, user.UserID, meta)
	if err != nil {
		return models.LoginResult{}, err
	}

	return models.LoginResult{
		User:         user,
		Entitlement:  a.entitlements.EvaluateUser(ctx, user),
		SessionToken: token,
		Session:      session,
	}, nil
}

func (a *authService) Logout(ctx context.Context, token string) error {
	return a.sessions.Revoke(ctx, token)
}

// ChangePassword replaces the password of the principal after checking the
// current one. Every other session of the user is revoked; the session the
// request came with stays valid.
//
// Returns:
//   - an error matching ErrValidation if the new password breaks the policy.
//   - ErrWrongPassword if the current password does not match.
func (a *authService) ChangePassword(ctx context.Context, principal models.Principal, req models.ChangePasswordRequest) error {
	log := logger.FromContext(ctx)

	if err := a.validator.Validate(ctx, req); err != nil {
		return err
	}

	user, err := a.users.FindUserByID(ctx, principal.UserID)
	if errors.Is(err, store.ErrNoUserWasFound) {
		return ErrSessionInvalid
	}
	if err != nil {
		return fmt.Errorf("find user: %w", err)
	}

	ok, err := a.hasher.Compare(ctx, user.PasswordHash, req.CurrentPassword)
	if err != nil {
		return fmt.Errorf("compare password: %w", err)
	}
	if !ok {
		log.Warn().Str("func", "*authService.ChangePassword").Int64("user_id", user.UserID).Msg("wrong current password")
		return ErrWrongPassword
	}

	hash, err := a.hasher.Hash(ctx, req.NewPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	if err = a.users.SetPasswordHash(ctx, user.UserID, hash, a.now()); err != nil {
		return fmt.Errorf("store password: %w", err)
	}

	if _, err = a.sessions.RevokeAllForUser(ctx, user.UserID, principal.SessionToken); err != nil {
		return err
	}

	log.Info().Int64("user_id", user.UserID).Msg("password changed")
	return nil
}

// Account returns the user and its current entitlement.
func (a *authService) Account(ctx context.Context, userID int64) (models.User, models.Entitlement, error) {
	user, err := a.users.FindUserByID(ctx, userID)
	if errors.Is(err, store.ErrNoUserWasFound) {
		return models.User{}, models.Entitlement{}, ErrNotFound
	}
	if err != nil {
		return models.User{}, models.Entitlement{}, fmt.Errorf("find user: %w", err)
	}

	return user, a.entitlements.EvaluateUser(ctx, user), nil
}
