package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MKhiriev/go-money-keeper/internal/logger"
	"github.com/MKhiriev/go-money-keeper/internal/store"
	"github.com/MKhiriev/go-money-keeper/models"
)

type adminService struct {
	users    store.UserRepository
	sessions SessionManager

	now    func() time.Time
	logger *logger.Logger
}

func NewAdminService(users store.UserRepository, sessions SessionManager, logger *logger.Logger) AdminService {
	return &adminService{
		users:    users,
		sessions: sessions,
		now:      utcNow,
		logger:   logger,
	}
}

func (s *adminService) RevokeSessions(ctx context.Context, userID int64) (int64, error) {
	if _, err := s.users.FindUserByID(ctx, userID); err != nil {
		return 0, notFound(err)
	}
	return s.sessions.RevokeAllForUser(ctx, userID, "")
}

// Unlock clears the failure counter and the lock of the user.
func (s *adminService) Unlock(ctx context.Context, userID int64) error {
	if err := s.users.Unlock(ctx, userID, s.now()); err != nil {
		return notFound(err)
	}
	logger.FromContext(ctx).Info().Int64("target_user_id", userID).Msg("account unlocked by admin")
	return nil
}

// SetActive activates or deactivates an account. Deactivation also revokes
// every session of the account. Administrators cannot deactivate themselves.
func (s *adminService) SetActive(ctx context.Context, actor models.Principal, userID int64, active bool) error {
	if !active && actor.UserID == userID {
		return ErrCannotModifySelf
	}

	if err := s.users.SetActive(ctx, userID, active, s.now()); err != nil {
		return notFound(err)
	}

	if !active {
		if _, err := s.sessions.RevokeAllForUser(ctx, userID, ""); err != nil {
			return err
		}
	}

	logger.FromContext(ctx).Info().
		Int64("actor_id", actor.UserID).
		Int64("target_user_id", userID).
		Bool("active", active).
		Msg("account activation changed by admin")
	return nil
}

// PurgeUser deletes the account. Its sessions, tokens and subscription go
// with it; the login audit keeps its rows without the user reference.
func (s *adminService) PurgeUser(ctx context.Context, actor models.Principal, userID int64) error {
	if actor.UserID == userID {
		return ErrCannotModifySelf
	}

	if err := s.users.DeleteUser(ctx, userID); err != nil {
		return notFound(err)
	}

	logger.FromContext(ctx).Info().Int64("actor_id", actor.UserID).Int64("target_user_id", userID).Msg("account purged by admin")
	return nil
}

func notFound(err error) error {
	if errors.Is(err, store.ErrNoUserWasFound) {
		return ErrNotFound
	}
	return fmt.Errorf("admin action: %w", err)
}
