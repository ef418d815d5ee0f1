package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MKhiriev/go-money-keeper/models"
)

// genericTokenRequestMessage is returned whether or not the email exists.
const genericTokenRequestMessage = "If an account with that email exists, a message has been sent."

func (h *Handler) forgotPassword(w http.ResponseWriter, r *http.Request) {
	var req models.EmailRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err, "Invalid JSON was passed")
		return
	}

	if err := h.services.PasswordResetService.RequestReset(r.Context(), req); err != nil {
		writeError(w, r, err, "password reset request failed")
		return
	}

	writeJSON(w, r, models.SuccessResponse{Success: true, Message: genericTokenRequestMessage}, http.StatusOK)
}

func (h *Handler) validateResetToken(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")

	if err := h.services.PasswordResetService.ValidateToken(r.Context(), token); err != nil {
		writeError(w, r, err, "reset token rejected")
		return
	}

	writeJSON(w, r, models.TokenValidityResponse{Valid: true}, http.StatusOK)
}

func (h *Handler) resetPassword(w http.ResponseWriter, r *http.Request) {
	var req models.ResetPasswordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err, "Invalid JSON was passed")
		return
	}

	if err := h.services.PasswordResetService.ResetPassword(r.Context(), req); err != nil {
		writeError(w, r, err, "password reset failed")
		return
	}

	writeJSON(w, r, models.SuccessResponse{Success: true, Message: "password has been reset"}, http.StatusOK)
}

func (h *Handler) verifyEmail(w http.ResponseWriter, r *http.Request) {
	var req models.TokenRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err, "Invalid JSON was passed")
		return
	}

	if err := h.services.EmailVerificationService.VerifyEmail(r.Context(), req.Token); err != nil {
		writeError(w, r, err, "email verification failed")
		return
	}

	writeJSON(w, r, models.SuccessResponse{Success: true, Message: "email verified"}, http.StatusOK)
}

func (h *Handler) resendVerification(w http.ResponseWriter, r *http.Request) {
	var req models.EmailRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err, "Invalid JSON was passed")
		return
	}

	if err := h.services.EmailVerificationService.Resend(r.Context(), req); err != nil {
		writeError(w, r, err, "verification resend failed")
		return
	}

	writeJSON(w, r, models.SuccessResponse{Success: true, Message: genericTokenRequestMessage}, http.StatusOK)
}
