package models

import "time"

// LoginResult is returned by a successful login.
type LoginResult struct {
	User         User
	Entitlement  Entitlement
	SessionToken string
	Session      Session
}

// LoginResponse is the JSON body of a successful POST /login.
type LoginResponse struct {
	User        PublicUser  `json:"user"`
	Entitlement Entitlement `json:"entitlement"`
}

// VerifyResponse is the JSON body of GET /verify.
type VerifyResponse struct {
	Valid       bool         `json:"valid"`
	User        *PublicUser  `json:"user,omitempty"`
	Entitlement *Entitlement `json:"entitlement,omitempty"`
}

// SuccessResponse is the generic success body. The request steps of the
// token flows always return it, whether or not the email exists.
type SuccessResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// ErrorResponse is the generic error body.
type ErrorResponse struct {
	Error             string `json:"error"`
	Code              string `json:"code,omitempty"`
	RetryAfterMinutes int    `json:"retry_after_minutes,omitempty"`
}

// EntitlementExceededResponse is the 402 body of protected routes.
type EntitlementExceededResponse struct {
	Code          string `json:"code"`
	Message       string `json:"message"`
	DaysRemaining int    `json:"days_remaining"`
	UpgradeURL    string `json:"upgrade_url"`
}

// AppInfo is the JSON body of GET /version.
type AppInfo struct {
	Version       string    `json:"version"`
	StorageDriver string    `json:"storage_driver"`
	StartedAt     time.Time `json:"started_at"`
	UptimeSeconds int64     `json:"uptime_seconds"`
}

// TokenValidityResponse is the JSON body of GET /reset-password/{token}.
type TokenValidityResponse struct {
	Valid bool `json:"valid"`
}

// AccountResponse is the JSON body of GET /api/account.
type AccountResponse struct {
	User        PublicUser  `json:"user"`
	Entitlement Entitlement `json:"entitlement"`
}
