package models

import "time"

// ClientMeta describes the client a request came from.
type ClientMeta struct {
	IPAddress string
	UserAgent string
}

// Session is a server-side login session. Only the keyed hash of the token
// is persisted; the raw token lives in the client's cookie.
type Session struct {
	TokenHash    string
	UserID       int64
	CreatedAt    time.Time
	ExpiresAt    time.Time
	LastActivity time.Time
	IPAddress    string
	UserAgent    string
}

// TableName returns the name of the database table
// associated with the Session model.
func (s Session) TableName() string {
	return "sessions"
}

// Expired reports whether the fixed TTL has elapsed at now.
func (s Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// SessionWithUser is a session joined with the fields of its owner needed
// to build a [Principal].
type SessionWithUser struct {
	Session
	Username string
	Email    *string
	IsActive bool
	IsAdmin  bool
}

// Principal is the authenticated caller attached to the request context.
type Principal struct {
	UserID   int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
	IsAdmin  bool   `json:"is_admin"`

	// SessionToken is the raw token the caller authenticated with.
	SessionToken string `json:"-"`
}
