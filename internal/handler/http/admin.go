package http

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/MKhiriev/go-money-keeper/internal/logger"
	"github.com/MKhiriev/go-money-keeper/internal/service"
	"github.com/MKhiriev/go-money-keeper/internal/utils"
	"github.com/MKhiriev/go-money-keeper/models"
)

func userIDParam(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, ErrInvalidUserID
	}
	return id, nil
}

func (h *Handler) adminRevokeSessions(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDParam(r)
	if err != nil {
		writeError(w, r, err, "bad user id")
		return
	}

	revoked, err := h.services.AdminService.RevokeSessions(r.Context(), userID)
	if err != nil {
		writeError(w, r, err, "failed to revoke sessions")
		return
	}

	logger.FromRequest(r).Info().Int64("target_user_id", userID).Int64("revoked", revoked).Msg("sessions revoked by admin")
	writeJSON(w, r, models.SuccessResponse{Success: true, Message: fmt.Sprintf("revoked %d session(s)", revoked)}, http.StatusOK)
}

func (h *Handler) adminUnlock(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDParam(r)
	if err != nil {
		writeError(w, r, err, "bad user id")
		return
	}

	if err = h.services.AdminService.Unlock(r.Context(), userID); err != nil {
		writeError(w, r, err, "failed to unlock user")
		return
	}

	logger.FromRequest(r).Info().Int64("target_user_id", userID).Msg("user unlocked by admin")
	writeJSON(w, r, models.SuccessResponse{Success: true}, http.StatusOK)
}

func (h *Handler) adminSetActive(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDParam(r)
	if err != nil {
		writeError(w, r, err, "bad user id")
		return
	}

	var req models.SetActiveRequest
	if err = decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err, "Invalid JSON was passed")
		return
	}
	if req.Active == nil {
		writeError(w, r, fmt.Errorf("%w: active is required", service.ErrInvalidDataProvided), "bad set active request")
		return
	}

	principal, _ := utils.GetPrincipalFromContext(r.Context())
	if err = h.services.AdminService.SetActive(r.Context(), principal, userID, *req.Active); err != nil {
		writeError(w, r, err, "failed to change user activation")
		return
	}

	logger.FromRequest(r).Info().Int64("target_user_id", userID).Bool("active", *req.Active).Msg("user activation changed by admin")
	writeJSON(w, r, models.SuccessResponse{Success: true}, http.StatusOK)
}

func (h *Handler) adminPurgeUser(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDParam(r)
	if err != nil {
		writeError(w, r, err, "bad user id")
		return
	}

	principal, _ := utils.GetPrincipalFromContext(r.Context())
	if err = h.services.AdminService.PurgeUser(r.Context(), principal, userID); err != nil {
		writeError(w, r, err, "failed to purge user")
		return
	}

	logger.FromRequest(r).Warn().Int64("target_user_id", userID).Msg("user purged by admin")
	writeJSON(w, r, models.SuccessResponse{Success: true}, http.StatusOK)
}
