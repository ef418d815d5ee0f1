package config

import (
	"runtime"
	"time"
)

func defaultConfig() *StructuredConfig {
	return &StructuredConfig{
		App: App{
			Version: "dev",
		},
		Auth: Auth{
			BcryptCost:           12,
			HashConcurrency:      runtime.NumCPU(),
			SessionTTL:           24 * time.Hour,
			LockoutThreshold:     5,
			LockoutDuration:      15 * time.Minute,
			PasswordResetTTL:     time.Hour,
			EmailVerificationTTL: 24 * time.Hour,
			ResendInterval:       time.Minute,
			TrialDuration:        14 * 24 * time.Hour,
			EnumerationDelay:     300 * time.Millisecond,
			UpgradeURL:           "/pricing",
			AppBaseURL:           "http://localhost:8080",
		},
		Storage: Storage{
			DB: DB{
				Driver: DriverPostgres,
			},
		},
		Server: Server{
			HTTPAddress:        "localhost:8080",
			RequestTimeout:     30 * time.Second,
			RateLimitPerSecond: 10,
			MetricsAddress:     "127.0.0.1:9090",
		},
		Adapter: Adapter{
			Mail: Mail{
				From:           "no-reply@localhost",
				RequestTimeout: 10 * time.Second,
			},
		},
		Workers: Workers{
			SweepInterval: 10 * time.Minute,
			MailQueueSize: 100,
		},
	}
}
