package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/didip/tollbooth/v6"
	"github.com/didip/tollbooth/v6/limiter"

	"github.com/MKhiriev/go-money-keeper/internal/adapter"
	"github.com/MKhiriev/go-money-keeper/internal/config"
	"github.com/MKhiriev/go-money-keeper/internal/logger"
	"github.com/MKhiriev/go-money-keeper/internal/store"
	"github.com/MKhiriev/go-money-keeper/internal/validators"
	"github.com/MKhiriev/go-money-keeper/models"
)

type emailVerificationService struct {
	users     store.UserRepository
	tokens    OneTimeTokenService
	validator validators.Validator
	mailer    adapter.Mailer

	// resendLimiter allows one resend per address per ResendInterval.
	resendLimiter *limiter.Limiter

	appBaseURL       string
	enumerationDelay time.Duration

	now    func() time.Time
	sleep  func(ctx context.Context, d time.Duration)
	logger *logger.Logger
}

func NewEmailVerificationService(
	users store.UserRepository,
	tokens OneTimeTokenService,
	validator validators.Validator,
	mailer adapter.Mailer,
	cfg config.Auth,
	logger *logger.Logger,
) EmailVerificationService {
	return &emailVerificationService{
		users:            users,
		tokens:           tokens,
		validator:        validator,
		mailer:           mailer,
		resendLimiter:    newResendLimiter(cfg.ResendInterval),
		appBaseURL:       cfg.AppBaseURL,
		enumerationDelay: cfg.EnumerationDelay,
		now:              utcNow,
		sleep:            sleepCtx,
		logger:           logger,
	}
}

func newResendLimiter(interval time.Duration) *limiter.Limiter {
	lmt := tollbooth.NewLimiter(1/interval.Seconds(), &limiter.ExpirableOptions{
		DefaultExpirationTTL: 2 * interval,
	})
	lmt.SetBurst(1)
	return lmt
}

// SendVerification issues a verification token for the user's email and
// mails it. Users without an email are skipped.
func (s *emailVerificationService) SendVerification(ctx context.Context, user models.User) error {
	if user.Email == nil || *user.Email == "" {
		return nil
	}

	token, err := s.tokens.Issue(ctx, user.UserID)
	if err != nil {
		return err
	}

	sendMail(ctx, s.mailer, models.Email{
		To:      *user.Email,
		Subject: "Confirm your email address",
		Body: "Welcome, " + user.Username + "!\n\n" +
			"Confirm your email address within 24 hours by opening:\n" +
			tokenLink(s.appBaseURL, "/verify-email", token),
	})

	return nil
}

func (s *emailVerificationService) VerifyEmail(ctx context.Context, token string) error {
	userID, err := s.tokens.Consume(ctx, token, func(ctx context.Context, userID int64) error {
		return s.users.SetEmailVerified(ctx, userID, s.now())
	})
	if err != nil {
		return err
	}

	logger.FromContext(ctx).Info().Int64("user_id", userID).Msg("email verified")
	return nil
}

// Resend mails a fresh verification link. It is limited per lower-cased
// address. Unknown, inactive or already verified addresses get the same
// answer, and every branch past the limiter is padded to one randomized
// floor.
func (s *emailVerificationService) Resend(ctx context.Context, req models.EmailRequest) error {
	req.Email = normalizeEmail(req.Email)
	if err := s.validator.Validate(ctx, req); err != nil {
		return err
	}
	email := req.Email

	if httpErr := tollbooth.LimitByKeys(s.resendLimiter, []string{email}); httpErr != nil {
		logger.FromContext(ctx).Warn().Str("func", "*emailVerificationService.Resend").Msg("verification resend rate limited")
		return ErrRateLimited
	}

	start := s.now()
	defer padUntil(ctx, s.sleep, s.now, start, jitter(s.enumerationDelay))

	user, err := s.users.FindUserByEmail(ctx, email)
	if errors.Is(err, store.ErrNoUserWasFound) || (err == nil && (!user.IsActive || user.EmailVerified)) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("find user by email: %w", err)
	}

	return s.SendVerification(ctx, user)
}
