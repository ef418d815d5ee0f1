package http

import (
	"io"
	"net/http"

	"github.com/MKhiriev/go-money-keeper/models"
)

// webhookSignatureHeader carries the hex HMAC-SHA256 of the raw body.
const webhookSignatureHeader = "X-Webhook-Signature"

// subscriptionWebhook hands the raw body to the subscription service, which
// checks the signature before decoding anything.
func (h *Handler) subscriptionWebhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, r, ErrInvalidJSON, "failed to read webhook body")
		return
	}

	err = h.services.SubscriptionService.HandleEvent(r.Context(), payload, r.Header.Get(webhookSignatureHeader))
	if err != nil {
		writeError(w, r, err, "subscription webhook rejected")
		return
	}

	writeJSON(w, r, models.SuccessResponse{Success: true}, http.StatusOK)
}
