package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/MKhiriev/go-money-keeper/internal/logger"
	"github.com/MKhiriev/go-money-keeper/internal/service"
	"github.com/MKhiriev/go-money-keeper/internal/utils"
	"github.com/MKhiriev/go-money-keeper/models"
)

// errorStatus is the client facing shape of a known error.
type errorStatus struct {
	status int
	code   string
}

// Unknown errors, store failures included, are reported as a generic 500.
var errorStatusMap = map[error]errorStatus{
	service.ErrInvalidDataProvided: {http.StatusBadRequest, "INVALID_REQUEST"},
	service.ErrValidation:          {http.StatusBadRequest, "VALIDATION_ERROR"},
	service.ErrWrongPassword:       {http.StatusBadRequest, "WRONG_PASSWORD"},
	service.ErrTokenInvalid:        {http.StatusBadRequest, "TOKEN_INVALID"},
	service.ErrCannotModifySelf:    {http.StatusBadRequest, "CANNOT_MODIFY_SELF"},

	service.ErrInvalidCredentials: {http.StatusUnauthorized, "INVALID_CREDENTIALS"},
	service.ErrAccountLocked:      {http.StatusUnauthorized, "ACCOUNT_LOCKED"},
	service.ErrAccountInactive:    {http.StatusUnauthorized, "ACCOUNT_INACTIVE"},
	service.ErrSessionInvalid:     {http.StatusUnauthorized, "SESSION_INVALID"},
	service.ErrInvalidSignature:   {http.StatusUnauthorized, "INVALID_SIGNATURE"},

	service.ErrEntitlementExpired: {http.StatusPaymentRequired, "TRIAL_EXPIRED"},

	service.ErrCSRFMissing:  {http.StatusForbidden, "CSRF_MISSING"},
	service.ErrCSRFMismatch: {http.StatusForbidden, "CSRF_MISMATCH"},
	service.ErrForbidden:    {http.StatusForbidden, "FORBIDDEN"},

	service.ErrNotFound:          {http.StatusNotFound, "NOT_FOUND"},
	service.ErrUserAlreadyExists: {http.StatusConflict, "ALREADY_EXISTS"},
	service.ErrRateLimited:       {http.StatusTooManyRequests, "RATE_LIMITED"},

	ErrInvalidJSON:   {http.StatusBadRequest, "INVALID_REQUEST"},
	ErrInvalidUserID: {http.StatusBadRequest, "INVALID_REQUEST"},
}

func statusFromError(err error) errorStatus {
	for target, status := range errorStatusMap {
		if errors.Is(err, target) {
			return status
		}
	}
	return errorStatus{status: http.StatusInternalServerError, code: "INTERNAL_ERROR"}
}

// errorResponse builds the JSON body for err. Internal failures are never
// described to the caller.
func errorResponse(err error) (models.ErrorResponse, int) {
	mapped := statusFromError(err)
	resp := models.ErrorResponse{Code: mapped.code}

	var locked *service.LockedError
	switch {
	case mapped.status == http.StatusInternalServerError:
		resp.Error = strings.ToLower(http.StatusText(http.StatusInternalServerError))
	case errors.As(err, &locked):
		resp.Error = service.ErrAccountLocked.Error()
		resp.RetryAfterMinutes = locked.RetryAfterMinutes()
	case errors.Is(err, service.ErrValidation):
		resp.Error = strings.TrimPrefix(err.Error(), service.ErrValidation.Error()+": ")
	default:
		resp.Error = sentinelMessage(err)
	}

	return resp, mapped.status
}

// sentinelMessage returns the message of the mapped sentinel rather than
// the whole wrapped chain, which may mention internal details.
func sentinelMessage(err error) string {
	for target := range errorStatusMap {
		if errors.Is(err, target) {
			return target.Error()
		}
	}
	return err.Error()
}

// writeError logs err with the request scoped logger and writes the mapped
// JSON error body.
func writeError(w http.ResponseWriter, r *http.Request, err error, msg string) {
	resp, status := errorResponse(err)

	log := logger.FromRequest(r)
	event := log.Warn()
	if status >= http.StatusInternalServerError {
		event = log.Error()
	}
	event.Err(err).Int("status", status).Str("code", resp.Code).Msg(msg)

	writeJSON(w, r, resp, status)
}

func writeJSON(w http.ResponseWriter, r *http.Request, data any, status int) {
	if _, err := utils.WriteJSON(w, data, status); err != nil {
		logger.FromRequest(r).Err(err).Msg("failed to write response")
	}
}
