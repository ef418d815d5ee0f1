package models

import "time"

// TokenPurpose selects the table and lifetime of a one-time token.
type TokenPurpose string

const (
	PurposePasswordReset     TokenPurpose = "password_reset"
	PurposeEmailVerification TokenPurpose = "email_verification"
)

// TableName returns the table holding tokens of this purpose.
func (p TokenPurpose) TableName() string {
	switch p {
	case PurposePasswordReset:
		return "password_reset_tokens"
	case PurposeEmailVerification:
		return "email_verification_tokens"
	default:
		return ""
	}
}

// OneTimeToken is a single-use, time-bounded secret. As with sessions only
// the keyed hash of the token is stored.
type OneTimeToken struct {
	Purpose   TokenPurpose
	TokenHash string
	UserID    int64
	ExpiresAt time.Time
	Used      bool
	CreatedAt time.Time
}

// Usable reports whether the token may still be consumed at now.
func (t OneTimeToken) Usable(now time.Time) bool {
	return !t.Used && now.Before(t.ExpiresAt)
}
