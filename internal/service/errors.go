package service

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/MKhiriev/go-money-keeper/internal/validators"
)

var (
	ErrInvalidDataProvided = errors.New("invalid data provided")
	ErrWrongPassword       = errors.New("wrong password")

	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrAccountLocked      = errors.New("account is locked")
	ErrAccountInactive    = errors.New("account is inactive")
	ErrSessionInvalid     = errors.New("session is invalid or expired")

	ErrCSRFMissing  = errors.New("csrf token missing")
	ErrCSRFMismatch = errors.New("csrf token mismatch")

	ErrTokenInvalid       = errors.New("token is invalid or expired")
	ErrRateLimited        = errors.New("too many requests")
	ErrEntitlementExpired = errors.New("trial has expired")

	// ErrValidation is the validators sentinel so that errors.Is matches
	// whichever package produced the failure.
	ErrValidation = validators.ErrValidation

	ErrForbidden             = errors.New("forbidden")
	ErrInvalidSignature      = errors.New("invalid webhook signature")
	ErrUserAlreadyExists     = errors.New("username or email already taken")
	ErrNotFound              = errors.New("not found")
	ErrCannotModifySelf      = errors.New("administrators cannot deactivate or purge themselves")
	ErrVersionIsNotSpecified = errors.New("app version is not specified")
)

// LockedError is returned while an account is locked. It matches
// ErrAccountLocked with errors.Is.
type LockedError struct {
	Remaining time.Duration
}

func (e *LockedError) Error() string {
	return fmt.Sprintf("%s: try again in %d minute(s)", ErrAccountLocked, e.RetryAfterMinutes())
}

func (e *LockedError) Unwrap() error {
	return ErrAccountLocked
}

// RetryAfterMinutes rounds the remaining lock time up to whole minutes,
// never returning less than one.
func (e *LockedError) RetryAfterMinutes() int {
	minutes := int(math.Ceil(e.Remaining.Minutes()))
	if minutes < 1 {
		return 1
	}
	return minutes
}
