package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/MKhiriev/go-money-keeper/internal/logger"
	"github.com/MKhiriev/go-money-keeper/internal/store"
	"github.com/MKhiriev/go-money-keeper/internal/utils"
	"github.com/MKhiriev/go-money-keeper/models"
)

// subscriptionService ingests payment provider webhooks and serves the
// stored snapshots as the subscription feed.
type subscriptionService struct {
	subscriptions store.SubscriptionRepository
	users         store.UserRepository
	transactor    store.Transactor

	webhookSecret string

	now    func() time.Time
	logger *logger.Logger
}

func NewSubscriptionService(subscriptions store.SubscriptionRepository, users store.UserRepository, transactor store.Transactor, webhookSecret string, logger *logger.Logger) SubscriptionService {
	return &subscriptionService{
		subscriptions: subscriptions,
		users:         users,
		transactor:    transactor,
		webhookSecret: webhookSecret,
		now:           utcNow,
		logger:        logger,
	}
}

// IsActive implements [SubscriptionFeed]. A user without a snapshot is
// simply not active.
func (s *subscriptionService) IsActive(ctx context.Context, userID int64) (bool, error) {
	sub, err := s.subscriptions.FindSubscription(ctx, userID)
	if errors.Is(err, store.ErrSubscriptionNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("find subscription: %w", err)
	}
	return sub.ReportsActive(), nil
}

// HandleEvent verifies the hex HMAC-SHA256 signature of payload, then
// stores the snapshot and the mapped local status of the user in one
// transaction. Without a configured secret every event is rejected.
func (s *subscriptionService) HandleEvent(ctx context.Context, payload []byte, signature string) error {
	log := logger.FromContext(ctx)

	signature = strings.ToLower(strings.TrimSpace(signature))
	if s.webhookSecret == "" || signature == "" || !utils.VerifyHash(payload, signature, s.webhookSecret) {
		log.Warn().Str("func", "*subscriptionService.HandleEvent").Msg("webhook signature rejected")
		return ErrInvalidSignature
	}

	var event models.SubscriptionEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidDataProvided, err)
	}
	if event.UserID <= 0 || event.Status == "" {
		return fmt.Errorf("%w: user_id and status are required", ErrInvalidDataProvided)
	}

	now := s.now()
	sub := models.Subscription{
		UserID:             event.UserID,
		ProviderCustomerID: event.ProviderCustomerID,
		Status:             strings.ToLower(event.Status),
		CurrentPeriodEnd:   event.CurrentPeriodEnd,
		UpdatedAt:          now,
	}

	err := s.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.users.SetSubscriptionStatus(ctx, sub.UserID, sub.LocalStatus(), now); err != nil {
			return err
		}
		return s.subscriptions.UpsertSubscription(ctx, sub)
	})
	if errors.Is(err, store.ErrNoUserWasFound) {
		return fmt.Errorf("%w: unknown user %d", ErrInvalidDataProvided, sub.UserID)
	}
	if err != nil {
		return fmt.Errorf("apply subscription event: %w", err)
	}

	log.Info().
		Str("event_id", event.EventID).
		Int64("user_id", sub.UserID).
		Str("provider_status", sub.Status).
		Str("local_status", string(sub.LocalStatus())).
		Msg("subscription event applied")
	return nil
}
