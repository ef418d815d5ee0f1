package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MKhiriev/go-money-keeper/internal/crypto"
	"github.com/MKhiriev/go-money-keeper/internal/logger"
	"github.com/MKhiriev/go-money-keeper/internal/metrics"
	"github.com/MKhiriev/go-money-keeper/internal/store"
	"github.com/MKhiriev/go-money-keeper/models"
)

// oneTimeTokenService is the purpose-agnostic token engine behind password
// reset and email verification. Each purpose gets its own instance with its
// own table and lifetime.
type oneTimeTokenService struct {
	purpose    models.TokenPurpose
	ttl        time.Duration
	repository store.TokenRepository
	transactor store.Transactor
	tokens     crypto.TokenGenerator

	now     func() time.Time
	metrics *metrics.Metrics
	logger  *logger.Logger
}

func NewOneTimeTokenService(
	purpose models.TokenPurpose,
	ttl time.Duration,
	repository store.TokenRepository,
	transactor store.Transactor,
	tokens crypto.TokenGenerator,
	m *metrics.Metrics,
	logger *logger.Logger,
) OneTimeTokenService {
	return &oneTimeTokenService{
		purpose:    purpose,
		ttl:        ttl,
		repository: repository,
		transactor: transactor,
		tokens:     tokens,
		now:        utcNow,
		metrics:    m,
		logger:     logger,
	}
}

// Issue invalidates every outstanding token of the user and stores a new
// one, so at most one token per user and purpose is usable at a time.
func (s *oneTimeTokenService) Issue(ctx context.Context, userID int64) (string, error) {
	raw, hash, err := s.tokens.Generate()
	if err != nil {
		return "", fmt.Errorf("generate %s token: %w", s.purpose, err)
	}

	now := s.now()
	token := models.OneTimeToken{
		Purpose:   s.purpose,
		TokenHash: hash,
		UserID:    userID,
		ExpiresAt: now.Add(s.ttl),
		CreatedAt: now,
	}

	err = s.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.repository.InvalidateUserTokens(ctx, userID); err != nil {
			return err
		}
		return s.repository.CreateToken(ctx, token)
	})
	if err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "*oneTimeTokenService.Issue").Str("purpose", string(s.purpose)).Int64("user_id", userID).Msg("error issuing token")
		return "", fmt.Errorf("issue %s token: %w", s.purpose, err)
	}

	return raw, nil
}

// Validate reports the owner of a usable token without consuming it.
func (s *oneTimeTokenService) Validate(ctx context.Context, raw string) (int64, error) {
	if raw == "" {
		return 0, ErrTokenInvalid
	}

	token, err := s.repository.FindToken(ctx, s.tokens.HashToken(raw))
	if errors.Is(err, store.ErrTokenNotFound) {
		return 0, ErrTokenInvalid
	}
	if err != nil {
		return 0, fmt.Errorf("find %s token: %w", s.purpose, err)
	}

	if !token.Usable(s.now()) {
		return 0, ErrTokenInvalid
	}

	return token.UserID, nil
}

// Consume atomically marks the token used and runs effect inside the same
// transaction. If no usable token matches, effect is never called and
// ErrTokenInvalid is returned. If effect fails the transaction rolls back
// and the token stays usable.
func (s *oneTimeTokenService) Consume(ctx context.Context, raw string, effect func(ctx context.Context, userID int64) error) (int64, error) {
	log := logger.FromContext(ctx)

	if raw == "" {
		s.metrics.TokenConsumed(string(s.purpose), false)
		return 0, ErrTokenInvalid
	}
	hash := s.tokens.HashToken(raw)

	var userID int64
	err := s.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		id, err := s.repository.ConsumeToken(ctx, hash, s.now())
		if err != nil {
			return err
		}
		if err = effect(ctx, id); err != nil {
			return err
		}
		userID = id
		return nil
	})
	if errors.Is(err, store.ErrTokenNotFound) {
		s.metrics.TokenConsumed(string(s.purpose), false)
		log.Warn().Str("func", "*oneTimeTokenService.Consume").Str("purpose", string(s.purpose)).Msg("invalid, used or expired token presented")
		return 0, ErrTokenInvalid
	}
	if err != nil {
		s.metrics.TokenConsumed(string(s.purpose), false)
		return 0, err
	}

	s.metrics.TokenConsumed(string(s.purpose), true)
	return userID, nil
}
