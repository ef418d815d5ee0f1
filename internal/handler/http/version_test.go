package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-money-keeper/internal/logger"
	"github.com/MKhiriev/go-money-keeper/internal/metrics"
	"github.com/MKhiriev/go-money-keeper/internal/service"
	"github.com/MKhiriev/go-money-keeper/models"
)

// ─────────────────────────────────────────────
// Mock
// ─────────────────────────────────────────────

// mockAppInfoService implements service.AppInfoService for testing.
type mockAppInfoService struct {
	info models.AppInfo
}

func (m *mockAppInfoService) GetAppInfo(_ context.Context) models.AppInfo {
	return m.info
}

// newHandlerWithAppInfo builds a Handler whose AppInfoService is replaced
// with the provided mock. All other service fields are left nil because
// neither /version nor the metrics router use them.
func newHandlerWithAppInfo(t *testing.T, svc service.AppInfoService, m *metrics.Metrics) *Handler {
	t.Helper()
	return NewHandler(&service.Services{AppInfoService: svc}, testConfig(), m, logger.Nop())
}

// ─────────────────────────────────────────────
// Tests
// ─────────────────────────────────────────────

func TestGetServerVersion_WritesAppInfo(t *testing.T) {
	started := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	want := models.AppInfo{Version: "1.2.3", StorageDriver: "sqlite3", StartedAt: started, UptimeSeconds: 42}

	h := newHandlerWithAppInfo(t, &mockAppInfoService{info: want}, nil)

	rec := serve(h, httptest.NewRequest(http.MethodGet, "/version", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, want, decodeBody[models.AppInfo](t, rec))
}

func TestGetServerVersion_NoCSRFCookieMinted(t *testing.T) {
	h := newHandlerWithAppInfo(t, &mockAppInfoService{}, nil)

	rec := serve(h, httptest.NewRequest(http.MethodGet, "/version", nil))

	assert.Nil(t, findCookie(rec, csrfCookieName), "operational routes sit outside the CSRF group")
}

func TestMetricsRouter(t *testing.T) {
	m := metrics.New()
	h := newHandlerWithAppInfo(t, &mockAppInfoService{}, m)

	// produce one observation on the public router first
	h.Init().ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/version", nil))

	rec := httptest.NewRecorder()
	h.MetricsRouter().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `money_keeper_http_requests_total{method="GET",route="/version",status="200"} 1`)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestMetrics_NotOnPublicRouter(t *testing.T) {
	h := newHandlerWithAppInfo(t, &mockAppInfoService{}, metrics.New())

	rec := serve(h, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.NotContains(t, rec.Body.String(), "go_goroutines")
}

func TestMetricsRouter_Disabled(t *testing.T) {
	h := newHandlerWithAppInfo(t, &mockAppInfoService{}, nil)

	rec := httptest.NewRecorder()
	h.MetricsRouter().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestTraceparentIsContinued(t *testing.T) {
	h := newHandlerWithAppInfo(t, &mockAppInfoService{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/version", nil)
	req.Header.Set("traceparent", "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01")

	rec := serve(h, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", rec.Header().Get(traceIDHeader))
}
