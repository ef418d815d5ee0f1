// Package http implements the HTTP transport layer of the application.
// It provides middleware, route handlers, and request/response utilities
// for the REST API. Tracing, logging, CSRF, authentication, entitlement
// and rate limiting concerns are all handled at this layer before
// requests are forwarded to the service layer.
package http

import (
	"errors"
	"net"
	"net/http"
	"strings"

	"github.com/MKhiriev/go-money-keeper/internal/logger"
	"github.com/MKhiriev/go-money-keeper/internal/service"
	"github.com/MKhiriev/go-money-keeper/internal/utils"
	"github.com/MKhiriev/go-money-keeper/models"
)

// credentialExtractor pulls a raw session token out of the request.
// It returns [ErrNoCredentials] when its source is absent, so that the next
// extractor in the chain gets a chance.
type credentialExtractor func(r *http.Request) (string, error)

// cookieExtractor reads the session_token cookie set by /login.
func cookieExtractor(r *http.Request) (string, error) {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil || cookie.Value == "" {
		return "", ErrNoCredentials
	}
	return cookie.Value, nil
}

// bearerExtractor supports legacy clients that send the session token as
//
//	Authorization: Bearer <token>
func bearerExtractor(r *http.Request) (string, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", ErrNoCredentials
	}

	scheme, token, found := strings.Cut(authHeader, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", ErrInvalidAuthorizationHeader
	}
	if token = strings.TrimSpace(token); token == "" {
		return "", ErrEmptyToken
	}
	return token, nil
}

// authenticate runs the extractors in order and verifies the first token
// found. Every failure collapses into [service.ErrSessionInvalid].
func (h *Handler) authenticate(r *http.Request) (models.Principal, error) {
	for _, extract := range h.extractors {
		token, err := extract(r)
		if errors.Is(err, ErrNoCredentials) {
			continue
		}
		if err != nil {
			return models.Principal{}, errors.Join(service.ErrSessionInvalid, err)
		}
		return h.services.SessionManager.Verify(r.Context(), token)
	}
	return models.Principal{}, errors.Join(service.ErrSessionInvalid, ErrNoCredentials)
}

// auth rejects the request with 401 unless it carries a valid session.
// On success the principal is stored in the request context under
// [utils.PrincipalCtxKey] and the request logger is tagged with the user.
func (h *Handler) auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal, err := h.authenticate(r)
		if err != nil {
			writeError(w, r, err, "request is not authenticated")
			return
		}

		next.ServeHTTP(w, withPrincipal(r, principal))
	})
}

// optionalAuth attaches the principal when the session is valid and lets
// anonymous requests through untouched.
func (h *Handler) optionalAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal, err := h.authenticate(r)
		if err != nil {
			if !errors.Is(err, service.ErrSessionInvalid) {
				logger.FromRequest(r).Err(err).Msg("session verification failed")
			}
			next.ServeHTTP(w, r)
			return
		}

		next.ServeHTTP(w, withPrincipal(r, principal))
	})
}

// requireAdmin must be mounted after auth.
func (h *Handler) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal, ok := utils.GetPrincipalFromContext(r.Context())
		if !ok || !principal.IsAdmin {
			writeError(w, r, service.ErrForbidden, "administrator required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func withPrincipal(r *http.Request, principal models.Principal) *http.Request {
	ctx := utils.WithPrincipal(r.Context(), principal)
	ctx = logger.FromContext(ctx).WithPrincipal(principal.UserID, principal.Username).WithContext(ctx)
	return r.WithContext(ctx)
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func clientMeta(r *http.Request) models.ClientMeta {
	return models.ClientMeta{
		IPAddress: clientIP(r),
		UserAgent: r.UserAgent(),
	}
}
