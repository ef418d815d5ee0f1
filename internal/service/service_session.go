package service

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/MKhiriev/go-money-keeper/internal/config"
	"github.com/MKhiriev/go-money-keeper/internal/crypto"
	"github.com/MKhiriev/go-money-keeper/internal/logger"
	"github.com/MKhiriev/go-money-keeper/internal/store"
	"github.com/MKhiriev/go-money-keeper/models"
)

const maxUserAgentLength = 255

// sessionManager implements [SessionManager] on top of the session table.
// Sessions have a fixed lifetime: Verify records activity but never
// extends expires_at.
type sessionManager struct {
	sessions store.SessionRepository
	tokens   crypto.TokenGenerator

	ttl time.Duration
	now func() time.Time

	logger *logger.Logger
}

func NewSessionManager(sessions store.SessionRepository, tokens crypto.TokenGenerator, cfg config.Auth, logger *logger.Logger) SessionManager {
	return &sessionManager{
		sessions: sessions,
		tokens:   tokens,
		ttl:      cfg.SessionTTL,
		now:      utcNow,
		logger:   logger,
	}
}

// Issue creates a session for userID and returns the raw token. Only the
// token hash is persisted. A hash collision is reported, never overwritten.
func (s *sessionManager) Issue(ctx context.Context, userID int64, meta models.ClientMeta) (string, models.Session, error) {
	raw, hash, err := s.tokens.Generate()
	if err != nil {
		return "", models.Session{}, fmt.Errorf("generate session token: %w", err)
	}

	now := s.now()
	session := models.Session{
		TokenHash:    hash,
		UserID:       userID,
		CreatedAt:    now,
		ExpiresAt:    now.Add(s.ttl),
		LastActivity: now,
		IPAddress:    meta.IPAddress,
		UserAgent:    truncateUserAgent(meta.UserAgent),
	}

	if err = s.sessions.CreateSession(ctx, session); err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "*sessionManager.Issue").Int64("user_id", userID).Msg("error creating session")
		return "", models.Session{}, fmt.Errorf("create session: %w", err)
	}

	return raw, session, nil
}

// Verify resolves a raw token to the principal that owns it.
//
// Unknown, expired and inactive-owner sessions all yield [ErrSessionInvalid].
// An expired row is deleted on the way out. Failing to record activity is
// logged and otherwise ignored.
func (s *sessionManager) Verify(ctx context.Context, token string) (models.Principal, error) {
	log := logger.FromContext(ctx)

	if token == "" {
		return models.Principal{}, ErrSessionInvalid
	}

	hash := s.tokens.HashToken(token)
	session, err := s.sessions.FindSessionWithUser(ctx, hash)
	if errors.Is(err, store.ErrSessionNotFound) {
		return models.Principal{}, ErrSessionInvalid
	}
	if err != nil {
		return models.Principal{}, fmt.Errorf("find session: %w", err)
	}

	now := s.now()
	if session.Expired(now) {
		if err = s.sessions.DeleteSession(ctx, hash); err != nil {
			log.Err(err).Str("func", "*sessionManager.Verify").Int64("user_id", session.UserID).Msg("error deleting expired session")
		}
		return models.Principal{}, ErrSessionInvalid
	}

	if !session.IsActive {
		log.Warn().Str("func", "*sessionManager.Verify").Int64("user_id", session.UserID).Msg("session of inactive user rejected")
		return models.Principal{}, ErrSessionInvalid
	}

	if err = s.sessions.TouchSession(ctx, hash, now); err != nil {
		log.Err(err).Str("func", "*sessionManager.Verify").Int64("user_id", session.UserID).Msg("error updating session activity")
	}

	principal := models.Principal{
		UserID:       session.UserID,
		Username:     session.Username,
		IsAdmin:      session.IsAdmin,
		SessionToken: token,
	}
	if session.Email != nil {
		principal.Email = *session.Email
	}

	return principal, nil
}

// Revoke deletes the session of token. Revoking an unknown token succeeds.
func (s *sessionManager) Revoke(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := s.sessions.DeleteSession(ctx, s.tokens.HashToken(token)); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	return nil
}

// RevokeAllForUser deletes every session of userID except the one of
// exceptToken, when given.
func (s *sessionManager) RevokeAllForUser(ctx context.Context, userID int64, exceptToken string) (int64, error) {
	var exceptHash string
	if exceptToken != "" {
		exceptHash = s.tokens.HashToken(exceptToken)
	}

	revoked, err := s.sessions.DeleteUserSessions(ctx, userID, exceptHash)
	if err != nil {
		return 0, fmt.Errorf("revoke user sessions: %w", err)
	}

	logger.FromContext(ctx).Info().Int64("user_id", userID).Int64("revoked", revoked).Msg("sessions revoked")
	return revoked, nil
}

func (s *sessionManager) SweepExpired(ctx context.Context) (int64, error) {
	swept, err := s.sessions.DeleteExpiredSessions(ctx, s.now())
	if err != nil {
		return 0, fmt.Errorf("sweep expired sessions: %w", err)
	}
	return swept, nil
}

// truncateUserAgent cuts ua to at most 255 characters without splitting a
// multi-byte rune.
func truncateUserAgent(ua string) string {
	if utf8.RuneCountInString(ua) <= maxUserAgentLength {
		return ua
	}
	runes := []rune(ua)
	return string(runes[:maxUserAgentLength])
}
