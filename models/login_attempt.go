package models

import "time"

// Failure reasons recorded on [LoginAttempt] rows.
const (
	FailureUserNotFound    = "user not found"
	FailureAccountLocked   = "account locked"
	FailureAccountInactive = "account inactive"
	FailureInvalidPassword = "invalid password"
)

// LoginAttempt is an append-only audit record of one login attempt.
type LoginAttempt struct {
	AttemptedAt   time.Time
	Username      string
	IPAddress     string
	UserAgent     string
	Success       bool
	FailureReason string
	// UserID is nil when the username did not resolve to an account.
	UserID *int64
}

// TableName returns the name of the database table
// associated with the LoginAttempt model.
func (a LoginAttempt) TableName() string {
	return "login_attempts"
}

// Credentials are the username/password pair submitted on login.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginFailureState is the lockout state after an atomic failure increment.
type LoginFailureState struct {
	FailedLoginCount uint
	LockedUntil      *time.Time
}
