package http

import (
	"net/http"

	"github.com/didip/tollbooth/v6"

	"github.com/MKhiriev/go-money-keeper/internal/logger"
	"github.com/MKhiriev/go-money-keeper/internal/service"
	"github.com/MKhiriev/go-money-keeper/internal/utils"
	"github.com/MKhiriev/go-money-keeper/models"
)

const trialExpiredMessage = "Your trial has ended. Upgrade to keep using the app."

// requireActiveSubscription gates protected business routes on the caller's
// entitlement. It must be mounted after auth. The entitlement is recomputed
// on every request.
func (h *Handler) requireActiveSubscription(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		log := logger.FromRequest(r)

		userID, ok := utils.GetUserIDFromContext(ctx)
		if !ok {
			writeError(w, r, service.ErrSessionInvalid, "entitlement check without principal")
			return
		}

		entitlement, err := h.services.EntitlementService.Evaluate(ctx, userID)
		if err != nil {
			writeError(w, r, err, "failed to evaluate entitlement")
			return
		}

		if !entitlement.Allowed() {
			log.Info().
				Str("status", string(entitlement.Status)).
				Bool("is_expired", entitlement.IsExpired).
				Msg("entitlement exceeded")

			writeJSON(w, r, models.EntitlementExceededResponse{
				Code:          "TRIAL_EXPIRED",
				Message:       trialExpiredMessage,
				DaysRemaining: 0,
				UpgradeURL:    h.upgradeURL,
			}, http.StatusPaymentRequired)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withRateLimit applies the per-IP budget of public auth routes.
func (h *Handler) withRateLimit(next http.Handler) http.Handler {
	if h.ipLimiter == nil {
		return next
	}
	return tollbooth.LimitHandler(h.ipLimiter, next)
}
