// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// validate checks that the final merged [StructuredConfig] satisfies all
// application invariants before it is used at startup.
//
// Returns nil if the configuration is valid, or an error wrapping one of
// the ErrInvalid* sentinels otherwise.
func (cfg *StructuredConfig) validate() error {
	switch cfg.Storage.DB.Driver {
	case DriverPostgres, DriverSQLite:
	default:
		return fmt.Errorf("%w: unsupported driver %q", ErrInvalidStorageConfigs, cfg.Storage.DB.Driver)
	}
	if cfg.Storage.DB.DSN == "" {
		return fmt.Errorf("%w: empty DSN", ErrInvalidStorageConfigs)
	}

	auth := cfg.Auth
	if auth.TokenHashKey == "" {
		return fmt.Errorf("%w: token hash key is required", ErrInvalidAuthConfigs)
	}
	if auth.BcryptCost < bcrypt.MinCost || auth.BcryptCost > bcrypt.MaxCost {
		return fmt.Errorf("%w: bcrypt cost %d out of range", ErrInvalidAuthConfigs, auth.BcryptCost)
	}
	if auth.LockoutThreshold < 1 || auth.HashConcurrency < 1 {
		return fmt.Errorf("%w: lockout threshold and hash concurrency must be positive", ErrInvalidAuthConfigs)
	}
	if auth.SessionTTL <= 0 || auth.LockoutDuration <= 0 || auth.PasswordResetTTL <= 0 ||
		auth.EmailVerificationTTL <= 0 || auth.ResendInterval <= 0 || auth.TrialDuration <= 0 {
		return fmt.Errorf("%w: durations must be positive", ErrInvalidAuthConfigs)
	}

	if cfg.Server.HTTPAddress == "" || cfg.Server.RateLimitPerSecond <= 0 {
		return ErrInvalidServerConfigs
	}
	if cfg.Server.TrustedProxyHops < 0 {
		return fmt.Errorf("%w: trusted proxy hops must not be negative", ErrInvalidServerConfigs)
	}
	if cfg.Server.MetricsAddress != "" && cfg.Server.MetricsAddress == cfg.Server.HTTPAddress {
		return fmt.Errorf("%w: metrics address must differ from the public address", ErrInvalidServerConfigs)
	}

	if cfg.Workers.SweepInterval <= 0 || cfg.Workers.MailQueueSize < 1 {
		return ErrInvalidWorkerConfigs
	}

	return nil
}
