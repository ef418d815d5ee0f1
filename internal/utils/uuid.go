package utils

import "github.com/google/uuid"

// NewTraceID returns a time-ordered UUIDv7 so that request IDs sort by
// arrival in log storage. It falls back to a random v4 if the clock read
// fails.
func NewTraceID() string {
	v7, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}

	return v7.String()
}
