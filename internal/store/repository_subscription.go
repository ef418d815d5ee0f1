package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/MKhiriev/go-money-keeper/internal/logger"
	"github.com/MKhiriev/go-money-keeper/models"
)

type subscriptionRepository struct {
	logger *logger.Logger
	db     *DB
}

func NewSubscriptionRepository(db *DB, logger *logger.Logger) SubscriptionRepository {
	logger.Debug().Msg("creating subscription repository")
	return &subscriptionRepository{
		db:     db,
		logger: logger,
	}
}

// UpsertSubscription replaces the stored snapshot of the user. Both
// PostgreSQL and SQLite accept the ON CONFLICT clause used here.
func (r *subscriptionRepository) UpsertSubscription(ctx context.Context, subscription models.Subscription) error {
	query, args, err := r.db.builder.
		Insert(subscription.TableName()).
		Columns(subscriptionColumns...).
		Values(
			subscription.UserID,
			subscription.ProviderCustomerID,
			subscription.Status,
			subscription.CurrentPeriodEnd,
			subscription.UpdatedAt,
		).
		Suffix(`ON CONFLICT (user_id) DO UPDATE SET
			provider_customer_id = excluded.provider_customer_id,
			status = excluded.status,
			current_period_end = excluded.current_period_end,
			updated_at = excluded.updated_at`).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	if _, err = r.db.querier(ctx).ExecContext(ctx, query, args...); err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", "*subscriptionRepository.UpsertSubscription").
			Int64("user_id", subscription.UserID).
			Msg("error upserting subscription")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	return nil
}

func (r *subscriptionRepository) FindSubscription(ctx context.Context, userID int64) (models.Subscription, error) {
	query, args, err := r.db.builder.Select(subscriptionColumns...).From("subscriptions").Where(sq.Eq{"user_id": userID}).ToSql()
	if err != nil {
		return models.Subscription{}, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	sub, err := scanSubscription(r.db.querier(ctx).QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Subscription{}, ErrSubscriptionNotFound
	}
	if err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "*subscriptionRepository.FindSubscription").Int64("user_id", userID).Msg("error finding subscription")
		return models.Subscription{}, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}

	return sub, nil
}
