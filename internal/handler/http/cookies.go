package http

import (
	"net/http"
	"time"
)

const (
	sessionCookieName = "session_token"
	csrfCookieName    = "csrf_token"
	csrfHeaderName    = "X-CSRF-Token"
)

type cookieSettings struct {
	secure     bool
	domain     string
	sessionTTL time.Duration
}

// newCookie builds an auth cookie with the shared attributes. Only the
// session cookie is HttpOnly: client script must read the CSRF cookie to
// echo it back in the header.
func (c cookieSettings) newCookie(name, value string, httpOnly bool) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Domain:   c.domain,
		MaxAge:   int(c.sessionTTL.Seconds()),
		Secure:   c.secure,
		HttpOnly: httpOnly,
		SameSite: http.SameSiteStrictMode,
	}
}

func (c cookieSettings) setSession(w http.ResponseWriter, token string) {
	http.SetCookie(w, c.newCookie(sessionCookieName, token, true))
}

func (c cookieSettings) setCSRF(w http.ResponseWriter, token string) {
	http.SetCookie(w, c.newCookie(csrfCookieName, token, false))
}

// clear expires both auth cookies.
func (c cookieSettings) clear(w http.ResponseWriter) {
	for _, name := range []string{sessionCookieName, csrfCookieName} {
		cookie := c.newCookie(name, "", name == sessionCookieName)
		cookie.MaxAge = -1
		cookie.Expires = time.Unix(0, 0)
		http.SetCookie(w, cookie)
	}
}
