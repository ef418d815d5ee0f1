package crypto

import "context"

//go:generate mockgen -source=interfaces.go -destination=../mock/crypto_mock.go -package=mock

// PasswordHasher hashes and verifies user passwords.
//
// Both operations are deliberately slow and run on a bounded pool so that a
// burst of logins cannot starve the rest of the server. They block until a
// slot is free or ctx is done.
type PasswordHasher interface {
	// Hash returns the bcrypt hash of password.
	Hash(ctx context.Context, password string) (string, error)

	// Compare reports whether password matches hash. A mismatch is not an
	// error: ok is false and err is nil.
	Compare(ctx context.Context, hash, password string) (ok bool, err error)

	// CompareDummy burns the same amount of work as Compare against a fixed
	// hash. Used when the user does not exist so timing reveals nothing.
	CompareDummy(ctx context.Context, password string)
}

// TokenGenerator produces opaque bearer tokens and the keyed hashes under
// which they are persisted. Raw tokens are never stored.
type TokenGenerator interface {
	// Generate returns a fresh raw token and its hash.
	Generate() (raw string, hash string, err error)

	// HashToken returns the storage hash of a raw token.
	HashToken(raw string) string
}
