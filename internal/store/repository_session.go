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

type sessionRepository struct {
	logger *logger.Logger
	db     *DB
}

// NewSessionRepository constructs a [SessionRepository] backed by db.
func NewSessionRepository(db *DB, logger *logger.Logger) SessionRepository {
	logger.Debug().Msg("creating session repository")
	return &sessionRepository{
		db:     db,
		logger: logger,
	}
}

func (r *sessionRepository) CreateSession(ctx context.Context, session models.Session) error {
	log := logger.FromContext(ctx)

	query, args, err := r.db.builder.
		Insert(session.TableName()).
		Columns("token_hash", "user_id", "created_at", "expires_at", "last_activity", "ip_address", "user_agent").
		Values(
			session.TokenHash,
			session.UserID,
			session.CreatedAt,
			session.ExpiresAt,
			session.LastActivity,
			session.IPAddress,
			session.UserAgent,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	if _, err = r.db.querier(ctx).ExecContext(ctx, query, args...); err != nil {
		if r.db.errorClassificator.IsUniqueViolation(err) {
			return ErrSessionAlreadyExists
		}
		log.Err(err).Str("func", "*sessionRepository.CreateSession").Int64("user_id", session.UserID).Msg("error inserting session")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	return nil
}

// FindSessionWithUser loads the session and the owner fields needed to
// authenticate a request in a single round trip.
func (r *sessionRepository) FindSessionWithUser(ctx context.Context, tokenHash string) (models.SessionWithUser, error) {
	log := logger.FromContext(ctx)

	query, args, err := r.db.builder.
		Select(sessionWithUserColumns...).
		From("sessions s").
		Join("users u ON u.id = s.user_id").
		Where(sq.Eq{"s.token_hash": tokenHash}).
		ToSql()
	if err != nil {
		return models.SessionWithUser{}, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	session, err := scanSessionWithUser(r.db.querier(ctx).QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return models.SessionWithUser{}, ErrSessionNotFound
	}
	if err != nil {
		log.Err(err).Str("func", "*sessionRepository.FindSessionWithUser").Msg("error finding session")
		return models.SessionWithUser{}, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}

	return session, nil
}

func (r *sessionRepository) TouchSession(ctx context.Context, tokenHash string, now time.Time) error {
	log := logger.FromContext(ctx)

	query, args, err := r.db.builder.
		Update("sessions").
		Set("last_activity", now).
		Where(sq.Eq{"token_hash": tokenHash}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	result, err := r.db.querier(ctx).ExecContext(ctx, query, args...)
	if err != nil {
		log.Err(err).Str("func", "*sessionRepository.TouchSession").Msg("error updating last activity")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return ErrSessionNotFound
	}

	return nil
}

// DeleteSession is idempotent: deleting an unknown hash is not an error.
func (r *sessionRepository) DeleteSession(ctx context.Context, tokenHash string) error {
	query, args, err := r.db.builder.Delete("sessions").Where(sq.Eq{"token_hash": tokenHash}).ToSql()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	if _, err = r.db.querier(ctx).ExecContext(ctx, query, args...); err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "*sessionRepository.DeleteSession").Msg("error deleting session")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	return nil
}

func (r *sessionRepository) DeleteUserSessions(ctx context.Context, userID int64, exceptTokenHash string) (int64, error) {
	where := sq.And{sq.Eq{"user_id": userID}}
	if exceptTokenHash != "" {
		where = append(where, sq.NotEq{"token_hash": exceptTokenHash})
	}

	query, args, err := r.db.builder.Delete("sessions").Where(where).ToSql()
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	return r.execCount(ctx, "*sessionRepository.DeleteUserSessions", query, args)
}

func (r *sessionRepository) DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	query, args, err := r.db.builder.Delete("sessions").Where(sq.LtOrEq{"expires_at": now}).ToSql()
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	return r.execCount(ctx, "*sessionRepository.DeleteExpiredSessions", query, args)
}

func (r *sessionRepository) execCount(ctx context.Context, funcName, query string, args []any) (int64, error) {
	result, err := r.db.querier(ctx).ExecContext(ctx, query, args...)
	if err != nil {
		logger.FromContext(ctx).Err(err).Str("func", funcName).Msg("error deleting sessions")
		return 0, fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	return deleted, nil
}
