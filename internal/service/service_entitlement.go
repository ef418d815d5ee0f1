package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/MKhiriev/go-money-keeper/internal/logger"
	"github.com/MKhiriev/go-money-keeper/internal/store"
	"github.com/MKhiriev/go-money-keeper/models"
)

// EvaluateEntitlement derives the access rights of user at now. It has no
// side effects. externalActive is what the payment provider reports and
// overrides the local status when true.
//
// Days are counted between UTC midnights: a trial ending at any time
// tomorrow has one day remaining, one ending today has none.
func EvaluateEntitlement(user models.User, externalActive bool, now time.Time) models.Entitlement {
	status := user.SubscriptionStatus
	if externalActive {
		status = models.SubscriptionActive
	}

	isActive := status == models.SubscriptionActive

	daysRemaining := 0
	isExpired := false
	if user.TrialEnd != nil {
		days := math.Ceil(midnight(*user.TrialEnd).Sub(midnight(now)).Hours() / 24)
		if days > 0 {
			daysRemaining = int(days)
		}
		isExpired = user.TrialEnd.Before(now) && !isActive
	}

	return models.Entitlement{
		Status:        status,
		DaysRemaining: daysRemaining,
		IsExpired:     isExpired,
		IsActive:      isActive,
		IsAdmin:       user.IsAdmin,
	}
}

func midnight(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

type entitlementService struct {
	users store.UserRepository
	feed  SubscriptionFeed

	now    func() time.Time
	logger *logger.Logger
}

func NewEntitlementService(users store.UserRepository, feed SubscriptionFeed, logger *logger.Logger) EntitlementService {
	return &entitlementService{
		users:  users,
		feed:   feed,
		now:    utcNow,
		logger: logger,
	}
}

func (s *entitlementService) Evaluate(ctx context.Context, userID int64) (models.Entitlement, error) {
	user, err := s.users.FindUserByID(ctx, userID)
	if errors.Is(err, store.ErrNoUserWasFound) {
		return models.Entitlement{}, ErrNotFound
	}
	if err != nil {
		return models.Entitlement{}, fmt.Errorf("find user: %w", err)
	}

	return s.EvaluateUser(ctx, user), nil
}

// EvaluateUser asks the subscription feed about user and evaluates the
// result. A feed failure counts as "not active".
func (s *entitlementService) EvaluateUser(ctx context.Context, user models.User) models.Entitlement {
	active, err := s.feed.IsActive(ctx, user.UserID)
	if err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "*entitlementService.EvaluateUser").Int64("user_id", user.UserID).Msg("subscription feed unavailable, treating as inactive")
		active = false
	}

	return EvaluateEntitlement(user, active, s.now())
}
