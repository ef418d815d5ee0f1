package store

import (
	"fmt"
	"strings"
	"time"

	"github.com/mattn/go-sqlite3"

	"github.com/MKhiriev/go-money-keeper/models"
)

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

var userColumns = []string{
	"id",
	"username",
	"email",
	"email_verified",
	"password_hash",
	"failed_login_count",
	"locked_until",
	"is_active",
	"is_admin",
	"trial_start",
	"trial_end",
	"subscription_status",
	"last_login_at",
	"created_at",
	"updated_at",
}

func scanUser(row rowScanner) (models.User, error) {
	var user models.User
	err := row.Scan(
		&user.UserID,
		&user.Username,
		&user.Email,
		&user.EmailVerified,
		&user.PasswordHash,
		&user.FailedLoginCount,
		nullableTime{&user.LockedUntil},
		&user.IsActive,
		&user.IsAdmin,
		nullableTime{&user.TrialStart},
		nullableTime{&user.TrialEnd},
		&user.SubscriptionStatus,
		nullableTime{&user.LastLoginAt},
		timestamp{&user.CreatedAt},
		timestamp{&user.UpdatedAt},
	)
	return user, err
}

var sessionWithUserColumns = []string{
	"s.token_hash",
	"s.user_id",
	"s.created_at",
	"s.expires_at",
	"s.last_activity",
	"s.ip_address",
	"s.user_agent",
	"u.username",
	"u.email",
	"u.is_active",
	"u.is_admin",
}

func scanSessionWithUser(row rowScanner) (models.SessionWithUser, error) {
	var s models.SessionWithUser
	err := row.Scan(
		&s.TokenHash,
		&s.UserID,
		timestamp{&s.CreatedAt},
		timestamp{&s.ExpiresAt},
		timestamp{&s.LastActivity},
		&s.IPAddress,
		&s.UserAgent,
		&s.Username,
		&s.Email,
		&s.IsActive,
		&s.IsAdmin,
	)
	return s, err
}

var tokenColumns = []string{"token_hash", "user_id", "expires_at", "used", "created_at"}

func scanToken(row rowScanner, purpose models.TokenPurpose) (models.OneTimeToken, error) {
	token := models.OneTimeToken{Purpose: purpose}
	err := row.Scan(&token.TokenHash, &token.UserID, timestamp{&token.ExpiresAt}, &token.Used, timestamp{&token.CreatedAt})
	return token, err
}

var subscriptionColumns = []string{"user_id", "provider_customer_id", "status", "current_period_end", "updated_at"}

func returning(columns ...string) string {
	return "RETURNING " + strings.Join(columns, ", ")
}

func scanSubscription(row rowScanner) (models.Subscription, error) {
	var sub models.Subscription
	err := row.Scan(&sub.UserID, &sub.ProviderCustomerID, &sub.Status, nullableTime{&sub.CurrentPeriodEnd}, timestamp{&sub.UpdatedAt})
	return sub, err
}

// timestamp scans a NOT NULL time column. SQLite only reports a declared
// type for plain column reads, so values coming back through RETURNING
// arrive as text and are parsed here.
type timestamp struct {
	dst *time.Time
}

func (t timestamp) Scan(src any) error {
	if src == nil {
		return fmt.Errorf("%w: unexpected NULL timestamp", ErrScanningRow)
	}
	parsed, err := parseTime(src)
	if err != nil {
		return err
	}
	*t.dst = parsed
	return nil
}

// nullableTime scans a nullable time column into a *time.Time.
type nullableTime struct {
	dst **time.Time
}

func (t nullableTime) Scan(src any) error {
	if src == nil {
		*t.dst = nil
		return nil
	}
	parsed, err := parseTime(src)
	if err != nil {
		return err
	}
	*t.dst = &parsed
	return nil
}

func parseTime(src any) (time.Time, error) {
	var text string
	switch v := src.(type) {
	case time.Time:
		return v.UTC(), nil
	case string:
		text = v
	case []byte:
		text = string(v)
	default:
		return time.Time{}, fmt.Errorf("%w: cannot scan %T into time", ErrScanningRow, src)
	}

	text = strings.TrimSuffix(text, "Z")
	for _, layout := range sqlite3.SQLiteTimestampFormats {
		if t, err := time.ParseInLocation(layout, text, time.UTC); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: unrecognized time %q", ErrScanningRow, text)
}
