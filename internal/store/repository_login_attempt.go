package store

import (
	"context"
	"fmt"

	"github.com/MKhiriev/go-money-keeper/internal/logger"
	"github.com/MKhiriev/go-money-keeper/models"
)

type loginAttemptRepository struct {
	logger *logger.Logger
	db     *DB
}

func NewLoginAttemptRepository(db *DB, logger *logger.Logger) LoginAttemptRepository {
	logger.Debug().Msg("creating login attempt repository")
	return &loginAttemptRepository{
		db:     db,
		logger: logger,
	}
}

// SaveLoginAttempt appends one audit row. Rows are never updated.
func (r *loginAttemptRepository) SaveLoginAttempt(ctx context.Context, attempt models.LoginAttempt) error {
	query, args, err := r.db.builder.
		Insert(attempt.TableName()).
		Columns("attempted_at", "username", "ip_address", "user_agent", "success", "failure_reason", "user_id").
		Values(
			attempt.AttemptedAt,
			attempt.Username,
			attempt.IPAddress,
			attempt.UserAgent,
			attempt.Success,
			attempt.FailureReason,
			attempt.UserID,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	if _, err = r.db.querier(ctx).ExecContext(ctx, query, args...); err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", "*loginAttemptRepository.SaveLoginAttempt").
			Str("username", attempt.Username).
			Bool("success", attempt.Success).
			Msg("error saving login attempt")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	return nil
}
