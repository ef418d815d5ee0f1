package validators

import (
	"unicode"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

const (
	minPasswordChars = 8
	// bcrypt silently truncates past 72 bytes.
	maxPasswordBytes = 72
)

// CheckPassword enforces the password complexity policy and returns the
// first violated rule.
func CheckPassword(password string) error {
	if utf8.RuneCountInString(password) < minPasswordChars {
		return ErrPasswordTooShort
	}
	if len(password) > maxPasswordBytes {
		return ErrPasswordTooLong
	}

	var upper, lower, digit bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		}
	}

	switch {
	case !upper:
		return ErrPasswordNoUpper
	case !lower:
		return ErrPasswordNoLower
	case !digit:
		return ErrPasswordNoDigit
	}
	return nil
}

// passwordRule adapts CheckPassword to the `password` struct tag.
func passwordRule(fl validator.FieldLevel) bool {
	return CheckPassword(fl.Field().String()) == nil
}
