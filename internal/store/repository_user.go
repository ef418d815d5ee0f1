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

// userRepository is the SQL implementation of [UserRepository].
// It handles account creation, lookup and every in-place mutation of the
// "users" table, including the atomic lockout counter.
//
// All methods obtain a context-scoped logger via [logger.FromContext] for
// structured, request-level tracing of database interactions.
type userRepository struct {
	logger *logger.Logger
	db     *DB
}

// NewUserRepository constructs a [UserRepository] backed by the provided
// database connection and logger.
func NewUserRepository(db *DB, logger *logger.Logger) UserRepository {
	logger.Debug().Msg("creating user repository")
	return &userRepository{
		db:     db,
		logger: logger,
	}
}

// CreateUser persists a new user record and returns the canonical database
// representation including the server-assigned ID. An empty subscription
// status is stored as trial.
//
// Error handling:
//   - unique violation on username or email → [ErrUserAlreadyExists].
//   - any other driver-level error → wrapped [ErrExecutingQuery].
func (r *userRepository) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	log := logger.FromContext(ctx)

	if user.SubscriptionStatus == "" {
		user.SubscriptionStatus = models.SubscriptionTrial
	}

	query, args, err := r.db.builder.
		Insert(user.TableName()).
		Columns(userColumns[1:]...).
		Values(
			user.Username,
			user.Email,
			user.EmailVerified,
			user.PasswordHash,
			user.FailedLoginCount,
			user.LockedUntil,
			user.IsActive,
			user.IsAdmin,
			user.TrialStart,
			user.TrialEnd,
			string(user.SubscriptionStatus),
			user.LastLoginAt,
			user.CreatedAt,
			user.UpdatedAt,
		).
		Suffix(returning(userColumns...)).
		ToSql()
	if err != nil {
		return models.User{}, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	created, err := scanUser(r.db.querier(ctx).QueryRowContext(ctx, query, args...))
	if err != nil {
		if r.db.errorClassificator.IsUniqueViolation(err) {
			return models.User{}, ErrUserAlreadyExists
		}
		log.Err(err).Str("func", "*userRepository.CreateUser").Msg("error inserting user")
		return models.User{}, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}

	return created, nil
}

func (r *userRepository) CountUsers(ctx context.Context) (int64, error) {
	query, args, err := r.db.builder.Select("COUNT(*)").From("users").ToSql()
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	var count int64
	if err = r.db.querier(ctx).QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "*userRepository.CountUsers").Msg("error counting users")
		return 0, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}

	return count, nil
}

func (r *userRepository) FindUserByID(ctx context.Context, userID int64) (models.User, error) {
	return r.findUser(ctx, "*userRepository.FindUserByID", sq.Eq{"id": userID})
}

func (r *userRepository) FindUserByUsername(ctx context.Context, username string) (models.User, error) {
	return r.findUser(ctx, "*userRepository.FindUserByUsername", sq.Eq{"username": username})
}

func (r *userRepository) FindUserByEmail(ctx context.Context, email string) (models.User, error) {
	return r.findUser(ctx, "*userRepository.FindUserByEmail", sq.Eq{"email": email})
}

func (r *userRepository) findUser(ctx context.Context, funcName string, where sq.Eq) (models.User, error) {
	log := logger.FromContext(ctx)

	query, args, err := r.db.builder.Select(userColumns...).From("users").Where(where).ToSql()
	if err != nil {
		return models.User{}, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	user, err := scanUser(r.db.querier(ctx).QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, ErrNoUserWasFound
	}
	if err != nil {
		log.Err(err).Str("func", funcName).Msg("error finding user")
		return models.User{}, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}

	return user, nil
}

// RegisterLoginFailure increments the counter and conditionally sets the
// lock in one UPDATE, so concurrent failures cannot lose increments. SET
// expressions see the pre-update row, hence the "+ 1" in the CASE.
func (r *userRepository) RegisterLoginFailure(ctx context.Context, userID int64, threshold int, lockUntil, now time.Time) (models.LoginFailureState, error) {
	log := logger.FromContext(ctx)

	query, args, err := r.db.builder.
		Update("users").
		Set("failed_login_count", sq.Expr("failed_login_count + 1")).
		Set("locked_until", sq.Expr("CASE WHEN failed_login_count + 1 >= ? THEN ? ELSE locked_until END", threshold, lockUntil)).
		Set("updated_at", now).
		Where(sq.Eq{"id": userID}).
		Suffix(returning("failed_login_count", "locked_until")).
		ToSql()
	if err != nil {
		return models.LoginFailureState{}, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	var state models.LoginFailureState
	err = r.db.querier(ctx).QueryRowContext(ctx, query, args...).Scan(&state.FailedLoginCount, nullableTime{&state.LockedUntil})
	if errors.Is(err, sql.ErrNoRows) {
		return models.LoginFailureState{}, ErrNoUserWasFound
	}
	if err != nil {
		log.Err(err).Str("func", "*userRepository.RegisterLoginFailure").Int64("user_id", userID).Msg("error registering login failure")
		return models.LoginFailureState{}, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}

	return state, nil
}

func (r *userRepository) ResetLoginFailures(ctx context.Context, userID int64, now time.Time) error {
	return r.update(ctx, "*userRepository.ResetLoginFailures", userID, r.db.builder.
		Update("users").
		Set("failed_login_count", 0).
		Set("locked_until", nil).
		Set("last_login_at", now).
		Set("updated_at", now))
}

func (r *userRepository) Unlock(ctx context.Context, userID int64, now time.Time) error {
	return r.update(ctx, "*userRepository.Unlock", userID, r.db.builder.
		Update("users").
		Set("failed_login_count", 0).
		Set("locked_until", nil).
		Set("updated_at", now))
}

func (r *userRepository) SetPasswordHash(ctx context.Context, userID int64, hash string, now time.Time) error {
	return r.update(ctx, "*userRepository.SetPasswordHash", userID, r.db.builder.
		Update("users").
		Set("password_hash", hash).
		Set("updated_at", now))
}

func (r *userRepository) SetEmailVerified(ctx context.Context, userID int64, now time.Time) error {
	return r.update(ctx, "*userRepository.SetEmailVerified", userID, r.db.builder.
		Update("users").
		Set("email_verified", true).
		Set("updated_at", now))
}

func (r *userRepository) SetActive(ctx context.Context, userID int64, active bool, now time.Time) error {
	return r.update(ctx, "*userRepository.SetActive", userID, r.db.builder.
		Update("users").
		Set("is_active", active).
		Set("updated_at", now))
}

func (r *userRepository) SetSubscriptionStatus(ctx context.Context, userID int64, status models.SubscriptionStatus, now time.Time) error {
	return r.update(ctx, "*userRepository.SetSubscriptionStatus", userID, r.db.builder.
		Update("users").
		Set("subscription_status", string(status)).
		Set("updated_at", now))
}

// DeleteUser purges the account. Sessions, tokens and the subscription
// snapshot cascade; login attempts keep their rows with a NULL user_id.
func (r *userRepository) DeleteUser(ctx context.Context, userID int64) error {
	log := logger.FromContext(ctx)

	query, args, err := r.db.builder.Delete("users").Where(sq.Eq{"id": userID}).ToSql()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	return r.execAffectingUser(ctx, log, "*userRepository.DeleteUser", userID, query, args)
}

func (r *userRepository) update(ctx context.Context, funcName string, userID int64, builder sq.UpdateBuilder) error {
	log := logger.FromContext(ctx)

	query, args, err := builder.Where(sq.Eq{"id": userID}).ToSql()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	return r.execAffectingUser(ctx, log, funcName, userID, query, args)
}

func (r *userRepository) execAffectingUser(ctx context.Context, log *logger.Logger, funcName string, userID int64, query string, args []any) error {
	result, err := r.db.querier(ctx).ExecContext(ctx, query, args...)
	if err != nil {
		log.Err(err).Str("func", funcName).Int64("user_id", userID).Msg("error executing statement")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}
	if affected == 0 {
		return ErrNoUserWasFound
	}

	return nil
}
