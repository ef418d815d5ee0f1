package store

import (
	"github.com/MKhiriev/go-money-keeper/internal/logger"
	"github.com/MKhiriev/go-money-keeper/models"
)

// Storages groups every repository backed by a single [DB].
type Storages struct {
	Transactor              Transactor
	UserRepository          UserRepository
	SessionRepository       SessionRepository
	LoginAttemptRepository  LoginAttemptRepository
	PasswordResetTokens     TokenRepository
	EmailVerificationTokens TokenRepository
	SubscriptionRepository  SubscriptionRepository
}

func NewStorages(db *DB, log *logger.Logger) *Storages {
	return &Storages{
		Transactor:              db,
		UserRepository:          NewUserRepository(db, log),
		SessionRepository:       NewSessionRepository(db, log),
		LoginAttemptRepository:  NewLoginAttemptRepository(db, log),
		PasswordResetTokens:     NewTokenRepository(db, models.PurposePasswordReset, log),
		EmailVerificationTokens: NewTokenRepository(db, models.PurposeEmailVerification, log),
		SubscriptionRepository:  NewSubscriptionRepository(db, log),
	}
}
