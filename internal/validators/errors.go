package validators

import "errors"

var (
	ErrUnsupportedType = errors.New("unsupported type for validation")

	// ErrValidation wraps every rule violation; the wrapped
	// validator.ValidationErrors carry the per-field detail.
	ErrValidation = errors.New("validation failed")

	ErrPasswordTooShort  = errors.New("password must be at least 8 characters")
	ErrPasswordTooLong   = errors.New("password must be at most 72 bytes")
	ErrPasswordNoUpper   = errors.New("password must contain an uppercase letter")
	ErrPasswordNoLower   = errors.New("password must contain a lowercase letter")
	ErrPasswordNoDigit   = errors.New("password must contain a digit")
	ErrEmailMalformed    = errors.New("email address is malformed")
	ErrUsernameMalformed = errors.New("username must be 3-64 letters or digits")
)
