package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MKhiriev/go-money-keeper/internal/adapter"
	"github.com/MKhiriev/go-money-keeper/internal/config"
	"github.com/MKhiriev/go-money-keeper/internal/crypto"
	"github.com/MKhiriev/go-money-keeper/internal/logger"
	"github.com/MKhiriev/go-money-keeper/internal/store"
	"github.com/MKhiriev/go-money-keeper/internal/validators"
	"github.com/MKhiriev/go-money-keeper/models"
)

type passwordResetService struct {
	users     store.UserRepository
	tokens    OneTimeTokenService
	sessions  SessionManager
	hasher    crypto.PasswordHasher
	validator validators.Validator
	mailer    adapter.Mailer

	appBaseURL       string
	enumerationDelay time.Duration

	now    func() time.Time
	sleep  func(ctx context.Context, d time.Duration)
	logger *logger.Logger
}

func NewPasswordResetService(
	users store.UserRepository,
	tokens OneTimeTokenService,
	sessions SessionManager,
	hasher crypto.PasswordHasher,
	validator validators.Validator,
	mailer adapter.Mailer,
	cfg config.Auth,
	logger *logger.Logger,
) PasswordResetService {
	return &passwordResetService{
		users:            users,
		tokens:           tokens,
		sessions:         sessions,
		hasher:           hasher,
		validator:        validator,
		mailer:           mailer,
		appBaseURL:       cfg.AppBaseURL,
		enumerationDelay: cfg.EnumerationDelay,
		now:              utcNow,
		sleep:            sleepCtx,
		logger:           logger,
	}
}

// RequestReset emails a reset link to the owner of req.Email.
//
// The result is the same whether or not the address belongs to an active
// account, and every branch after validation is padded to the same
// randomized floor. Only a malformed address is reported.
func (s *passwordResetService) RequestReset(ctx context.Context, req models.EmailRequest) error {
	req.Email = normalizeEmail(req.Email)
	if err := s.validator.Validate(ctx, req); err != nil {
		return err
	}
	email := req.Email

	start := s.now()
	defer padUntil(ctx, s.sleep, s.now, start, jitter(s.enumerationDelay))

	user, err := s.users.FindUserByEmail(ctx, email)
	if errors.Is(err, store.ErrNoUserWasFound) || (err == nil && !user.IsActive) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("find user by email: %w", err)
	}

	token, err := s.tokens.Issue(ctx, user.UserID)
	if err != nil {
		return err
	}

	sendMail(ctx, s.mailer, models.Email{
		To:      email,
		Subject: "Reset your password",
		Body: "Someone asked to reset the password of your account.\n\n" +
			"Open this link within the next hour to choose a new one:\n" +
			tokenLink(s.appBaseURL, "/reset-password", token) + "\n\n" +
			"If it wasn't you, ignore this email.",
	})

	logger.FromContext(ctx).Info().Int64("user_id", user.UserID).Msg("password reset requested")
	return nil
}

func (s *passwordResetService) ValidateToken(ctx context.Context, token string) error {
	_, err := s.tokens.Validate(ctx, token)
	return err
}

// ResetPassword checks the new password against the policy, then consumes
// the token and, in the same transaction, stores the new hash and revokes
// every session of the user.
func (s *passwordResetService) ResetPassword(ctx context.Context, req models.ResetPasswordRequest) error {
	if err := s.validator.Validate(ctx, req); err != nil {
		return err
	}

	hash, err := s.hasher.Hash(ctx, req.Password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	userID, err := s.tokens.Consume(ctx, req.Token, func(ctx context.Context, userID int64) error {
		if err := s.users.SetPasswordHash(ctx, userID, hash, s.now()); err != nil {
			return err
		}
		_, err := s.sessions.RevokeAllForUser(ctx, userID, "")
		return err
	})
	if err != nil {
		return err
	}

	logger.FromContext(ctx).Info().Int64("user_id", userID).Msg("password reset completed")
	return nil
}
