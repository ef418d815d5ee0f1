// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"crypto/subtle"
	"errors"
	"net/http"

	"github.com/MKhiriev/go-money-keeper/internal/logger"
	"github.com/MKhiriev/go-money-keeper/internal/service"
)

// safeMethods never change state and are not checked.
var safeMethods = map[string]struct{}{
	http.MethodGet:     {},
	http.MethodHead:    {},
	http.MethodOptions: {},
	http.MethodTrace:   {},
}

// withCSRF implements the double-submit cookie check.
//
// A client without a csrf_token cookie gets a fresh one on any request, so
// the pair exists before its first unsafe call. Unsafe requests must echo
// the cookie value in the X-CSRF-Token header. The check is independent of
// the session and runs before it.
func (h *Handler) withCSRF(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var cookieValue string
		if cookie, err := r.Cookie(csrfCookieName); err == nil {
			cookieValue = cookie.Value
		}

		if cookieValue == "" {
			token, _, err := h.csrfTokens.Generate()
			if err != nil {
				writeError(w, r, err, "failed to mint csrf token")
				return
			}
			h.cookies.setCSRF(w, token)
		}

		if _, ok := safeMethods[r.Method]; ok {
			next.ServeHTTP(w, r)
			return
		}

		if err := checkCSRF(cookieValue, r.Header.Get(csrfHeaderName)); err != nil {
			reason := "mismatch"
			if errors.Is(err, service.ErrCSRFMissing) {
				reason = "missing"
			}
			h.metrics.CSRFRejected(reason)
			logger.FromRequest(r).Warn().
				Str("reason", reason).
				Str("method", r.Method).
				Str("uri", r.RequestURI).
				Msg("csrf check failed")

			resp, status := errorResponse(err)
			writeJSON(w, r, resp, status)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// checkCSRF compares the cookie and header values in constant time.
func checkCSRF(cookieValue, headerValue string) error {
	if cookieValue == "" || headerValue == "" {
		return service.ErrCSRFMissing
	}
	if subtle.ConstantTimeCompare([]byte(cookieValue), []byte(headerValue)) != 1 {
		return service.ErrCSRFMismatch
	}
	return nil
}
