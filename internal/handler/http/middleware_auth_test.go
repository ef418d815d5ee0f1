package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MKhiriev/go-money-keeper/internal/service"
	"github.com/MKhiriev/go-money-keeper/internal/store"
	"github.com/MKhiriev/go-money-keeper/internal/utils"
	"github.com/MKhiriev/go-money-keeper/models"
)

// ---- Helpers ----

// principalRecorder is a terminal handler that remembers the principal it saw.
type principalRecorder struct {
	called    bool
	principal models.Principal
	found     bool
}

func (p *principalRecorder) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	p.called = true
	p.principal, p.found = utils.GetPrincipalFromContext(r.Context())
	w.WriteHeader(http.StatusOK)
}

func runMiddleware(mw func(http.Handler) http.Handler, req *http.Request) (*httptest.ResponseRecorder, *principalRecorder) {
	next := &principalRecorder{}
	rr := httptest.NewRecorder()
	mw(next).ServeHTTP(rr, req)
	return rr, next
}

// ---- Extractors ----

func TestBearerExtractor_TableTest(t *testing.T) {
	tests := []struct {
		name      string
		header    string
		wantToken string
		wantErr   error
	}{
		{name: "valid Bearer token", header: "Bearer my-session-token", wantToken: "my-session-token"},
		{name: "scheme is case insensitive", header: "bearer tok", wantToken: "tok"},
		{name: "surrounding spaces trimmed", header: "Bearer   tok  ", wantToken: "tok"},
		{name: "no header", header: "", wantErr: ErrNoCredentials},
		{name: "missing token part", header: "Bearer", wantErr: ErrInvalidAuthorizationHeader},
		{name: "other scheme", header: "Basic dXNlcjpwYXNz", wantErr: ErrInvalidAuthorizationHeader},
		{name: "blank token", header: "Bearer    ", wantErr: ErrEmptyToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/verify", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}

			token, err := bearerExtractor(req)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, token)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantToken, token)
		})
	}
}

func TestCookieExtractor(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/verify", nil)
	_, err := cookieExtractor(req)
	assert.ErrorIs(t, err, ErrNoCredentials)

	req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: ""})
	_, err = cookieExtractor(req)
	assert.ErrorIs(t, err, ErrNoCredentials, "an empty cookie counts as absent")

	req = withSession(httptest.NewRequest(http.MethodGet, "/verify", nil), "from-cookie")
	token, err := cookieExtractor(req)
	require.NoError(t, err)
	assert.Equal(t, "from-cookie", token)
}

// ---- auth ----

func TestAuth_CookieSession(t *testing.T) {
	h, m := newMockedHandler(t)
	m.sessions.EXPECT().Verify(gomock.Any(), alice.SessionToken).Return(alice, nil)

	rr, next := runMiddleware(h.auth, withSession(httptest.NewRequest(http.MethodGet, "/", nil), alice.SessionToken))

	assert.Equal(t, http.StatusOK, rr.Code)
	require.True(t, next.found)
	assert.Equal(t, alice, next.principal)
}

func TestAuth_BearerFallback(t *testing.T) {
	h, m := newMockedHandler(t)
	m.sessions.EXPECT().Verify(gomock.Any(), "legacy-token").Return(alice, nil)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer legacy-token")
	rr, next := runMiddleware(h.auth, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, next.called)
}

func TestAuth_CookieWinsOverBearer(t *testing.T) {
	h, m := newMockedHandler(t)
	m.sessions.EXPECT().Verify(gomock.Any(), "cookie-token").Return(alice, nil)

	req := withSession(httptest.NewRequest(http.MethodGet, "/", nil), "cookie-token")
	req.Header.Set("Authorization", "Bearer header-token")
	rr, _ := runMiddleware(h.auth, req)

	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestAuth_Rejections(t *testing.T) {
	tests := []struct {
		name      string
		prepare   func(*http.Request)
		verifyErr error
		wantCode  string
		wantHTTP  int
	}{
		{
			name:     "no credentials",
			prepare:  func(*http.Request) {},
			wantCode: "SESSION_INVALID",
			wantHTTP: http.StatusUnauthorized,
		},
		{
			name:     "malformed authorization header",
			prepare:  func(r *http.Request) { r.Header.Set("Authorization", "Token abc") },
			wantCode: "SESSION_INVALID",
			wantHTTP: http.StatusUnauthorized,
		},
		{
			name:      "expired or revoked session",
			prepare:   func(r *http.Request) { withSession(r, "stale") },
			verifyErr: service.ErrSessionInvalid,
			wantCode:  "SESSION_INVALID",
			wantHTTP:  http.StatusUnauthorized,
		},
		{
			name:      "store outage is a 500",
			prepare:   func(r *http.Request) { withSession(r, "stale") },
			verifyErr: store.ErrExecutingQuery,
			wantCode:  "INTERNAL_ERROR",
			wantHTTP:  http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, m := newMockedHandler(t)
			if tt.verifyErr != nil {
				m.sessions.EXPECT().Verify(gomock.Any(), "stale").Return(models.Principal{}, tt.verifyErr)
			}

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			tt.prepare(req)
			rr, next := runMiddleware(h.auth, req)

			assert.False(t, next.called)
			assert.Equal(t, tt.wantHTTP, rr.Code)
			assert.Equal(t, tt.wantCode, decodeBody[models.ErrorResponse](t, rr).Code)
		})
	}
}

// ---- optionalAuth ----

func TestOptionalAuth(t *testing.T) {
	t.Run("anonymous passes without principal", func(t *testing.T) {
		h, _ := newMockedHandler(t)

		rr, next := runMiddleware(h.optionalAuth, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.True(t, next.called)
		assert.False(t, next.found)
	})

	t.Run("invalid session passes without principal", func(t *testing.T) {
		h, m := newMockedHandler(t)
		m.sessions.EXPECT().Verify(gomock.Any(), "stale").Return(models.Principal{}, service.ErrSessionInvalid)

		rr, next := runMiddleware(h.optionalAuth, withSession(httptest.NewRequest(http.MethodGet, "/", nil), "stale"))

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.False(t, next.found)
	})

	t.Run("valid session attaches principal", func(t *testing.T) {
		h, m := newMockedHandler(t)
		m.sessions.EXPECT().Verify(gomock.Any(), alice.SessionToken).Return(alice, nil)

		_, next := runMiddleware(h.optionalAuth, withSession(httptest.NewRequest(http.MethodGet, "/", nil), alice.SessionToken))

		require.True(t, next.found)
		assert.Equal(t, alice.UserID, next.principal.UserID)
	})
}

// ---- requireAdmin ----

func TestRequireAdmin(t *testing.T) {
	tests := []struct {
		name       string
		principal  *models.Principal
		wantStatus int
	}{
		{name: "no principal", wantStatus: http.StatusForbidden},
		{name: "regular user", principal: &alice, wantStatus: http.StatusForbidden},
		{name: "administrator", principal: &root, wantStatus: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.principal != nil {
				req = req.WithContext(utils.WithPrincipal(req.Context(), *tt.principal))
			}

			rr, next := runMiddleware(newTestHandler().requireAdmin, req)

			assert.Equal(t, tt.wantStatus, rr.Code)
			assert.Equal(t, tt.wantStatus == http.StatusOK, next.called)
		})
	}
}

// ---- client metadata ----

func TestClientMeta(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/login", nil)
	req.RemoteAddr = "[2001:db8::1]:443"
	req.Header.Set("User-Agent", "money-app/1.0")

	assert.Equal(t, models.ClientMeta{IPAddress: "2001:db8::1", UserAgent: "money-app/1.0"}, clientMeta(req))

	req.RemoteAddr = "no-port"
	assert.Equal(t, "no-port", clientIP(req))
}
