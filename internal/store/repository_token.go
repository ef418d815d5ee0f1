package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/MKhiriev/go-money-keeper/internal/logger"
	"github.com/MKhiriev/go-money-keeper/models"
)

// tokenRepository stores one-time tokens of a single purpose. Password
// reset and email verification tokens share the layout but live in
// separate tables.
type tokenRepository struct {
	logger  *logger.Logger
	db      *DB
	purpose models.TokenPurpose
	table   string
}

func NewTokenRepository(db *DB, purpose models.TokenPurpose, logger *logger.Logger) TokenRepository {
	logger.Debug().Str("purpose", string(purpose)).Msg("creating token repository")
	return &tokenRepository{
		db:      db,
		logger:  logger,
		purpose: purpose,
		table:   purpose.TableName(),
	}
}

func (r *tokenRepository) InvalidateUserTokens(ctx context.Context, userID int64) (int64, error) {
	log := logger.FromContext(ctx)

	query, args, err := r.db.builder.
		Update(r.table).
		Set("used", true).
		Where(sq.Eq{"user_id": userID, "used": false}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	result, err := r.db.querier(ctx).ExecContext(ctx, query, args...)
	if err != nil {
		log.Err(err).Str("func", "*tokenRepository.InvalidateUserTokens").Str("purpose", string(r.purpose)).Int64("user_id", userID).Msg("error invalidating tokens")
		return 0, fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	invalidated, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}
	return invalidated, nil
}

func (r *tokenRepository) CreateToken(ctx context.Context, token models.OneTimeToken) error {
	log := logger.FromContext(ctx)

	query, args, err := r.db.builder.
		Insert(r.table).
		Columns(tokenColumns...).
		Values(token.TokenHash, token.UserID, token.ExpiresAt, token.Used, token.CreatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	if _, err = r.db.querier(ctx).ExecContext(ctx, query, args...); err != nil {
		log.Err(err).Str("func", "*tokenRepository.CreateToken").Str("purpose", string(r.purpose)).Int64("user_id", token.UserID).Msg("error inserting token")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	return nil
}

func (r *tokenRepository) FindToken(ctx context.Context, tokenHash string) (models.OneTimeToken, error) {
	query, args, err := r.db.builder.Select(tokenColumns...).From(r.table).Where(sq.Eq{"token_hash": tokenHash}).ToSql()
	if err != nil {
		return models.OneTimeToken{}, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	token, err := scanToken(r.db.querier(ctx).QueryRowContext(ctx, query, args...), r.purpose)
	if errors.Is(err, sql.ErrNoRows) {
		return models.OneTimeToken{}, ErrTokenNotFound
	}
	if err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "*tokenRepository.FindToken").Str("purpose", string(r.purpose)).Msg("error finding token")
		return models.OneTimeToken{}, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}

	return token, nil
}

// ConsumeToken flips used in the same statement that checks it, so of two
// concurrent consumers exactly one gets the owner back.
func (r *tokenRepository) ConsumeToken(ctx context.Context, tokenHash string, now time.Time) (int64, error) {
	query, args, err := r.db.builder.
		Update(r.table).
		Set("used", true).
		Where(sq.Eq{"token_hash": tokenHash, "used": false}).
		Where(sq.Gt{"expires_at": now}).
		Suffix(returning("user_id")).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	var userID int64
	err = r.db.querier(ctx).QueryRowContext(ctx, query, args...).Scan(&userID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrTokenNotFound
	}
	if err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "*tokenRepository.ConsumeToken").Str("purpose", string(r.purpose)).Msg("error consuming token")
		return 0, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}

	return userID, nil
}
