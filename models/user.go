package models

import "time"

// SubscriptionStatus is the locally stored subscription state of a user.
type SubscriptionStatus string

const (
	SubscriptionTrial    SubscriptionStatus = "trial"
	SubscriptionActive   SubscriptionStatus = "active"
	SubscriptionCanceled SubscriptionStatus = "canceled"
	SubscriptionInactive SubscriptionStatus = "inactive"
)

// User represents an account of the finance application together with its
// credential, lockout and trial/subscription state.
// Sensitive fields must never be exposed outside trusted boundaries.
type User struct {
	// UserID is the internal unique identifier of the user.
	UserID int64 `json:"id"`

	// Username is the unique login identifier.
	Username string `json:"username"`

	// Email is optional. When present it is unique across users.
	Email *string `json:"email,omitempty"`

	// EmailVerified is set once a verification token has been consumed.
	EmailVerified bool `json:"email_verified"`

	// PasswordHash is the bcrypt hash of the password. Never serialized.
	PasswordHash string `json:"-"`

	// FailedLoginCount is the number of consecutive failed logins.
	FailedLoginCount uint `json:"-"`

	// LockedUntil is set while the account is locked after repeated failures.
	LockedUntil *time.Time `json:"-"`

	IsActive bool `json:"is_active"`
	IsAdmin  bool `json:"is_admin"`

	TrialStart *time.Time `json:"trial_start,omitempty"`
	TrialEnd   *time.Time `json:"trial_end,omitempty"`

	SubscriptionStatus SubscriptionStatus `json:"subscription_status"`

	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// TableName returns the name of the database table
// associated with the User model.
func (u User) TableName() string {
	return "users"
}

// IsLocked reports whether the lockout window is still open at now.
func (u User) IsLocked(now time.Time) bool {
	return u.LockedUntil != nil && now.Before(*u.LockedUntil)
}

// EmailAddress returns the email or an empty string.
func (u User) EmailAddress() string {
	if u.Email == nil {
		return ""
	}
	return *u.Email
}

// PublicUser is the subset of [User] returned to the account owner.
type PublicUser struct {
	UserID        int64  `json:"id"`
	Username      string `json:"username"`
	Email         string `json:"email,omitempty"`
	EmailVerified bool   `json:"email_verified"`
	IsAdmin       bool   `json:"is_admin"`
}

// Public strips credential and lockout fields from the user.
func (u User) Public() PublicUser {
	return PublicUser{
		UserID:        u.UserID,
		Username:      u.Username,
		Email:         u.EmailAddress(),
		EmailVerified: u.EmailVerified,
		IsAdmin:       u.IsAdmin,
	}
}
