package http

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/MKhiriev/go-money-keeper/internal/logger"
	"github.com/MKhiriev/go-money-keeper/internal/utils"
	"github.com/MKhiriev/go-money-keeper/models"
)

// maxBodyBytes bounds every JSON request body.
const maxBodyBytes = 1 << 20

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(dst); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidJSON, err)
	}
	return nil
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req models.RegisterRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err, "Invalid JSON was passed")
		return
	}

	user, err := h.services.AuthService.Register(ctx, req)
	if err != nil {
		writeError(w, r, err, "user registration failed")
		return
	}

	logger.FromRequest(r).Info().Int64("user_id", user.UserID).Bool("is_admin", user.IsAdmin).Msg("user registered")
	writeJSON(w, r, user.Public(), http.StatusCreated)
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var credentials models.Credentials
	if err := decodeJSON(w, r, &credentials); err != nil {
		writeError(w, r, err, "Invalid JSON was passed")
		return
	}

	result, err := h.services.AuthService.Login(ctx, credentials, clientMeta(r))
	if err != nil {
		writeError(w, r, err, "login failed")
		return
	}

	// a fresh CSRF token per session
	csrfToken, _, err := h.csrfTokens.Generate()
	if err != nil {
		writeError(w, r, err, "failed to mint csrf token")
		return
	}

	h.cookies.setSession(w, result.SessionToken)
	h.cookies.setCSRF(w, csrfToken)

	logger.FromRequest(r).Info().Int64("user_id", result.User.UserID).Msg("user successfully logged in")
	writeJSON(w, r, models.LoginResponse{
		User:        result.User.Public(),
		Entitlement: result.Entitlement,
	}, http.StatusOK)
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	principal, _ := utils.GetPrincipalFromContext(r.Context())

	if err := h.services.AuthService.Logout(r.Context(), principal.SessionToken); err != nil {
		writeError(w, r, err, "logout failed")
		return
	}

	h.cookies.clear(w)
	writeJSON(w, r, models.SuccessResponse{Success: true}, http.StatusOK)
}

// verify reports the caller's session state. It never fails: an anonymous
// caller, or one whose account can no longer be loaded, gets valid=false.
func (h *Handler) verify(w http.ResponseWriter, r *http.Request) {
	principal, ok := utils.GetPrincipalFromContext(r.Context())
	if !ok {
		writeJSON(w, r, models.VerifyResponse{Valid: false}, http.StatusOK)
		return
	}

	user, entitlement, err := h.services.AuthService.Account(r.Context(), principal.UserID)
	if err != nil {
		logger.FromRequest(r).Err(err).Msg("failed to load account of a verified session")
		writeJSON(w, r, models.VerifyResponse{Valid: false}, http.StatusOK)
		return
	}

	public := user.Public()
	writeJSON(w, r, models.VerifyResponse{
		Valid:       true,
		User:        &public,
		Entitlement: &entitlement,
	}, http.StatusOK)
}

func (h *Handler) changePassword(w http.ResponseWriter, r *http.Request) {
	principal, _ := utils.GetPrincipalFromContext(r.Context())

	var req models.ChangePasswordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err, "Invalid JSON was passed")
		return
	}

	if err := h.services.AuthService.ChangePassword(r.Context(), principal, req); err != nil {
		writeError(w, r, err, "password change failed")
		return
	}

	writeJSON(w, r, models.SuccessResponse{Success: true, Message: "password changed"}, http.StatusOK)
}

func (h *Handler) account(w http.ResponseWriter, r *http.Request) {
	userID, _ := utils.GetUserIDFromContext(r.Context())

	user, entitlement, err := h.services.AuthService.Account(r.Context(), userID)
	if err != nil {
		writeError(w, r, err, "failed to load account")
		return
	}

	writeJSON(w, r, models.AccountResponse{User: user.Public(), Entitlement: entitlement}, http.StatusOK)
}
