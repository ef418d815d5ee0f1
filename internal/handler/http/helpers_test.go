package http

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MKhiriev/go-money-keeper/internal/config"
	"github.com/MKhiriev/go-money-keeper/internal/logger"
	"github.com/MKhiriev/go-money-keeper/internal/mock"
	"github.com/MKhiriev/go-money-keeper/internal/service"
	"github.com/MKhiriev/go-money-keeper/models"
)

// newTestHandler returns a Handler with a nop logger and no services,
// enough for middleware that does not touch the service layer.
func newTestHandler() *Handler {
	return &Handler{logger: logger.Nop()}
}

func testConfig() config.StructuredConfig {
	return config.StructuredConfig{
		App: config.App{Version: "test"},
		Auth: config.Auth{
			SessionTTL:    24 * time.Hour,
			UpgradeURL:    "/pricing",
			TokenHashKey:  "test-hash-key",
			WebhookSecret: "whsec_test",
		},
		Server: config.Server{
			RequestTimeout: 5 * time.Second,
		},
	}
}

// serviceMocks holds one gomock mock per service the router reaches.
type serviceMocks struct {
	sessions      *mock.MockSessionManager
	auth          *mock.MockAuthService
	reset         *mock.MockPasswordResetService
	verification  *mock.MockEmailVerificationService
	entitlements  *mock.MockEntitlementService
	subscriptions *mock.MockSubscriptionService
	admin         *mock.MockAdminService
	appInfo       *mock.MockAppInfoService
}

// newMockedHandler builds a Handler over gomock services with the
// production middleware stack.
func newMockedHandler(t *testing.T) (*Handler, serviceMocks) {
	t.Helper()
	ctrl := gomock.NewController(t)
	m := serviceMocks{
		sessions:      mock.NewMockSessionManager(ctrl),
		auth:          mock.NewMockAuthService(ctrl),
		reset:         mock.NewMockPasswordResetService(ctrl),
		verification:  mock.NewMockEmailVerificationService(ctrl),
		entitlements:  mock.NewMockEntitlementService(ctrl),
		subscriptions: mock.NewMockSubscriptionService(ctrl),
		admin:         mock.NewMockAdminService(ctrl),
		appInfo:       mock.NewMockAppInfoService(ctrl),
	}

	services := &service.Services{
		SessionManager:           m.sessions,
		AuthService:              m.auth,
		PasswordResetService:     m.reset,
		EmailVerificationService: m.verification,
		EntitlementService:       m.entitlements,
		SubscriptionService:      m.subscriptions,
		AdminService:             m.admin,
		AppInfoService:           m.appInfo,
	}

	return NewHandler(services, testConfig(), nil, logger.Nop()), m
}

const testCSRFToken = "csrf-test-token"

// newRequest builds a JSON request. Unsafe methods carry a matching CSRF
// cookie and header pair.
func newRequest(t *testing.T, method, target string, body any) *http.Request {
	t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = strings.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	if _, safe := safeMethods[method]; !safe {
		req.AddCookie(&http.Cookie{Name: csrfCookieName, Value: testCSRFToken})
		req.Header.Set(csrfHeaderName, testCSRFToken)
	}
	return req
}

// withSession adds a session cookie to req.
func withSession(req *http.Request, token string) *http.Request {
	req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: token})
	return req
}

func serve(h *Handler, req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	h.Init().ServeHTTP(rr, req)
	return rr
}

func decodeBody[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v), "body: %s", rr.Body.String())
	return v
}

func findCookie(rr *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rr.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

var (
	alice = models.Principal{UserID: 2, Username: "alice", SessionToken: "alice-session"}
	root  = models.Principal{UserID: 1, Username: "root", IsAdmin: true, SessionToken: "root-session"}
)

// syncBuffer is a goroutine safe log sink.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}
