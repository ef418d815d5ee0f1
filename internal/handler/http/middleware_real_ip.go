package http

import (
	"net/http"

	"github.com/didip/tollbooth/v6/libstring"
)

// withRealIP rewrites RemoteAddr to the client address seen by the
// outermost trusted proxy. X-Forwarded-For entries left of the trusted
// hops are written by the client and are ignored. With no trusted proxies
// the request is passed on untouched.
func (h *Handler) withRealIP(next http.Handler) http.Handler {
	if h.trustedProxyHops <= 0 {
		return next
	}

	lookups := []string{"X-Forwarded-For", "RemoteAddr"}
	fromBehind := h.trustedProxyHops - 1

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ip := libstring.RemoteIP(lookups, fromBehind, r); ip != "" {
			r.RemoteAddr = ip
		}
		next.ServeHTTP(w, r)
	})
}
