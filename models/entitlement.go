package models

import "time"

// Entitlement is the derived right of a user to access protected routes.
// It is recomputed on every request and never persisted.
type Entitlement struct {
	Status        SubscriptionStatus `json:"status"`
	DaysRemaining int                `json:"days_remaining"`
	IsExpired     bool               `json:"is_expired"`
	IsActive      bool               `json:"is_active"`
	IsAdmin       bool               `json:"is_admin"`
}

// Allowed is the gate decision for protected routes.
func (e Entitlement) Allowed() bool {
	switch {
	case e.IsAdmin:
		return true
	case e.IsActive && !e.IsExpired:
		return true
	case e.Status == SubscriptionTrial && e.DaysRemaining > 0:
		return true
	default:
		return false
	}
}

// Subscription is the latest snapshot reported by the payment provider.
type Subscription struct {
	UserID             int64
	ProviderCustomerID string
	// Status is the provider's raw status (active, trialing, past_due, ...).
	Status           string
	CurrentPeriodEnd *time.Time
	UpdatedAt        time.Time
}

// TableName returns the name of the database table
// associated with the Subscription model.
func (s Subscription) TableName() string {
	return "subscriptions"
}

// ReportsActive reports whether the provider status grants access.
func (s Subscription) ReportsActive() bool {
	return s.Status == "active" || s.Status == "trialing"
}

// LocalStatus maps the provider status onto the local status enum.
func (s Subscription) LocalStatus() SubscriptionStatus {
	switch s.Status {
	case "active", "trialing":
		return SubscriptionActive
	case "canceled":
		return SubscriptionCanceled
	default:
		return SubscriptionInactive
	}
}

// SubscriptionEvent is the webhook payload sent by the payment provider.
type SubscriptionEvent struct {
	EventID            string     `json:"event_id"`
	UserID             int64      `json:"user_id"`
	ProviderCustomerID string     `json:"customer_id"`
	Status             string     `json:"status"`
	CurrentPeriodEnd   *time.Time `json:"current_period_end,omitempty"`
}
