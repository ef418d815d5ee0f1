package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// StructuredJSONConfig mirrors [StructuredConfig] with JSON tags and
// string-friendly durations.
type StructuredJSONConfig struct {
	App struct {
		Version string `json:"version"`
	} `json:"app,omitempty"`

	Auth struct {
		BcryptCost           int      `json:"bcrypt_cost"`
		HashConcurrency      int      `json:"hash_concurrency"`
		SessionTTL           Duration `json:"session_ttl"`
		LockoutThreshold     int      `json:"lockout_threshold"`
		LockoutDuration      Duration `json:"lockout_duration"`
		PasswordResetTTL     Duration `json:"password_reset_ttl"`
		EmailVerificationTTL Duration `json:"email_verification_ttl"`
		ResendInterval       Duration `json:"resend_interval"`
		TrialDuration        Duration `json:"trial_duration"`
		EnumerationDelay     Duration `json:"enumeration_delay"`
		TokenHashKey         string   `json:"token_hash_key"`
		WebhookSecret        string   `json:"webhook_secret"`
		UpgradeURL           string   `json:"upgrade_url"`
		AppBaseURL           string   `json:"app_base_url"`
	} `json:"auth,omitempty"`

	Storage struct {
		DB struct {
			Driver string `json:"driver"`
			DSN    string `json:"dsn"`
		} `json:"db,omitempty"`
	} `json:"storage,omitempty"`

	Server struct {
		HTTPAddress        string   `json:"http_address"`
		RequestTimeout     Duration `json:"request_timeout"`
		SecureCookies      bool     `json:"secure_cookies"`
		CookieDomain       string   `json:"cookie_domain"`
		RateLimitPerSecond float64  `json:"rate_limit_per_second"`
		TrustedProxyHops   int      `json:"trusted_proxy_hops"`
		MetricsAddress     string   `json:"metrics_address"`
	} `json:"server,omitempty"`

	Adapter struct {
		Mail struct {
			APIURL         string   `json:"api_url"`
			APIKey         string   `json:"api_key"`
			From           string   `json:"from"`
			RequestTimeout Duration `json:"request_timeout"`
		} `json:"mail,omitempty"`
	} `json:"adapter,omitempty"`

	Workers struct {
		SweepInterval Duration `json:"sweep_interval"`
		MailQueueSize int      `json:"mail_queue_size"`
	} `json:"workers,omitempty"`
}

func parseJSON(jsonFilePath string) (*StructuredConfig, error) {
	jsonFile, err := os.Open(jsonFilePath)
	if err != nil {
		return nil, fmt.Errorf("error reading a json file: %w", err)
	}
	defer jsonFile.Close()

	var jsonCfg StructuredJSONConfig
	if err := json.NewDecoder(jsonFile).Decode(&jsonCfg); err != nil {
		return nil, fmt.Errorf("error decoding json configs: %w", err)
	}

	auth := jsonCfg.Auth
	cfg := &StructuredConfig{
		App: App{
			Version: jsonCfg.App.Version,
		},
		Auth: Auth{
			BcryptCost:           auth.BcryptCost,
			HashConcurrency:      auth.HashConcurrency,
			SessionTTL:           time.Duration(auth.SessionTTL),
			LockoutThreshold:     auth.LockoutThreshold,
			LockoutDuration:      time.Duration(auth.LockoutDuration),
			PasswordResetTTL:     time.Duration(auth.PasswordResetTTL),
			EmailVerificationTTL: time.Duration(auth.EmailVerificationTTL),
			ResendInterval:       time.Duration(auth.ResendInterval),
			TrialDuration:        time.Duration(auth.TrialDuration),
			EnumerationDelay:     time.Duration(auth.EnumerationDelay),
			TokenHashKey:         auth.TokenHashKey,
			WebhookSecret:        auth.WebhookSecret,
			UpgradeURL:           auth.UpgradeURL,
			AppBaseURL:           auth.AppBaseURL,
		},
		Storage: Storage{
			DB: DB{
				Driver: jsonCfg.Storage.DB.Driver,
				DSN:    jsonCfg.Storage.DB.DSN,
			},
		},
		Server: Server{
			HTTPAddress:        jsonCfg.Server.HTTPAddress,
			RequestTimeout:     time.Duration(jsonCfg.Server.RequestTimeout),
			SecureCookies:      jsonCfg.Server.SecureCookies,
			CookieDomain:       jsonCfg.Server.CookieDomain,
			RateLimitPerSecond: jsonCfg.Server.RateLimitPerSecond,
			TrustedProxyHops:   jsonCfg.Server.TrustedProxyHops,
			MetricsAddress:     jsonCfg.Server.MetricsAddress,
		},
		Adapter: Adapter{
			Mail: Mail{
				APIURL:         jsonCfg.Adapter.Mail.APIURL,
				APIKey:         jsonCfg.Adapter.Mail.APIKey,
				From:           jsonCfg.Adapter.Mail.From,
				RequestTimeout: time.Duration(jsonCfg.Adapter.Mail.RequestTimeout),
			},
		},
		Workers: Workers{
			SweepInterval: time.Duration(jsonCfg.Workers.SweepInterval),
			MailQueueSize: jsonCfg.Workers.MailQueueSize,
		},
	}

	return cfg, nil
}

// Duration is a wrapper around time.Duration that supports JSON unmarshaling from strings like "1h", "30s"
type Duration time.Duration

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}

	switch value := v.(type) {
	case float64:
		*d = Duration(time.Duration(value))
		return nil
	case string:
		tmp, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		*d = Duration(tmp)
		return nil
	default:
		return json.Unmarshal(b, (*time.Duration)(d))
	}
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}
