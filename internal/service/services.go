package service

import (
	"github.com/MKhiriev/go-money-keeper/internal/adapter"
	"github.com/MKhiriev/go-money-keeper/internal/config"
	"github.com/MKhiriev/go-money-keeper/internal/crypto"
	"github.com/MKhiriev/go-money-keeper/internal/logger"
	"github.com/MKhiriev/go-money-keeper/internal/metrics"
	"github.com/MKhiriev/go-money-keeper/internal/store"
	"github.com/MKhiriev/go-money-keeper/internal/validators"
	"github.com/MKhiriev/go-money-keeper/models"
)

type Services struct {
	SessionManager           SessionManager
	LoginGuard               LoginGuard
	AuthService              AuthService
	PasswordResetTokens      OneTimeTokenService
	EmailVerificationTokens  OneTimeTokenService
	PasswordResetService     PasswordResetService
	EmailVerificationService EmailVerificationService
	EntitlementService       EntitlementService
	SubscriptionService      SubscriptionService
	AdminService             AdminService
	AppInfoService           AppInfoService
}

// Dependencies are the infrastructure pieces shared by the services.
type Dependencies struct {
	Hasher    crypto.PasswordHasher
	Tokens    crypto.TokenGenerator
	Validator validators.Validator
	Mailer    adapter.Mailer
	Metrics   *metrics.Metrics
}

func NewServices(storages *store.Storages, deps Dependencies, cfg config.StructuredConfig, logger *logger.Logger) (*Services, error) {
	appInfo, err := NewAppInfoService(cfg.App, cfg.Storage.DB.Driver, logger)
	if err != nil {
		return nil, err
	}

	sessions := NewSessionManager(storages.SessionRepository, deps.Tokens, cfg.Auth, logger)
	guard := NewLoginGuard(storages.UserRepository, storages.LoginAttemptRepository, deps.Hasher, cfg.Auth, deps.Metrics, logger)

	resetTokens := NewOneTimeTokenService(models.PurposePasswordReset, cfg.Auth.PasswordResetTTL,
		storages.PasswordResetTokens, storages.Transactor, deps.Tokens, deps.Metrics, logger)
	verificationTokens := NewOneTimeTokenService(models.PurposeEmailVerification, cfg.Auth.EmailVerificationTTL,
		storages.EmailVerificationTokens, storages.Transactor, deps.Tokens, deps.Metrics, logger)

	subscriptions := NewSubscriptionService(storages.SubscriptionRepository, storages.UserRepository, storages.Transactor, cfg.Auth.WebhookSecret, logger)
	entitlements := NewEntitlementService(storages.UserRepository, subscriptions, logger)
	verification := NewEmailVerificationService(storages.UserRepository, verificationTokens, deps.Validator, deps.Mailer, cfg.Auth, logger)

	return &Services{
		SessionManager: sessions,
		LoginGuard:     guard,
		AuthService: NewAuthService(storages.UserRepository, storages.Transactor, deps.Hasher, deps.Validator,
			guard, sessions, verification, entitlements, cfg.Auth, logger),
		PasswordResetTokens:     resetTokens,
		EmailVerificationTokens: verificationTokens,
		PasswordResetService: NewPasswordResetService(storages.UserRepository, resetTokens, sessions, deps.Hasher,
			deps.Validator, deps.Mailer, cfg.Auth, logger),
		EmailVerificationService: verification,
		EntitlementService:       entitlements,
		SubscriptionService:      subscriptions,
		AdminService:             NewAdminService(storages.UserRepository, sessions, logger),
		AppInfoService:           appInfo,
	}, nil
}
