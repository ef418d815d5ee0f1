package http

import (
	"time"

	"github.com/didip/tollbooth/v6"
	"github.com/didip/tollbooth/v6/limiter"
	"go.opentelemetry.io/otel/propagation"

	"github.com/MKhiriev/go-money-keeper/internal/config"
	"github.com/MKhiriev/go-money-keeper/internal/crypto"
	"github.com/MKhiriev/go-money-keeper/internal/logger"
	"github.com/MKhiriev/go-money-keeper/internal/metrics"
	"github.com/MKhiriev/go-money-keeper/internal/service"
)

type Handler struct {
	services *service.Services
	metrics  *metrics.Metrics

	cookies        cookieSettings
	upgradeURL     string
	requestTimeout time.Duration
	ipLimiter      *limiter.Limiter
	csrfTokens     crypto.TokenGenerator

	// trustedProxyHops is how many proxies in front of the server append
	// to X-Forwarded-For. Zero means the TCP peer is the client.
	trustedProxyHops int

	propagator propagation.TextMapPropagator

	// extractors are tried in order until one yields a session token.
	extractors []credentialExtractor

	logger *logger.Logger
}

func NewHandler(services *service.Services, cfg config.StructuredConfig, m *metrics.Metrics, logger *logger.Logger) *Handler {
	logger.Info().Msg("http handler created")
	return &Handler{
		services: services,
		metrics:  m,
		cookies: cookieSettings{
			secure:     cfg.Server.SecureCookies,
			domain:     cfg.Server.CookieDomain,
			sessionTTL: cfg.Auth.SessionTTL,
		},
		upgradeURL:     cfg.Auth.UpgradeURL,
		requestTimeout: cfg.Server.RequestTimeout,
		ipLimiter:      newIPLimiter(cfg.Server.RateLimitPerSecond),
		csrfTokens:     crypto.NewTokenGenerator(cfg.Auth.TokenHashKey),
		extractors:     []credentialExtractor{cookieExtractor, bearerExtractor},

		trustedProxyHops: cfg.Server.TrustedProxyHops,
		propagator:       propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}),

		logger: logger,
	}
}

// newIPLimiter returns nil when rate limiting is disabled. The limiter
// keys on RemoteAddr only; withRealIP decides whether forwarding headers
// may rewrite it.
func newIPLimiter(perSecond float64) *limiter.Limiter {
	if perSecond <= 0 {
		return nil
	}

	lmt := tollbooth.NewLimiter(perSecond, &limiter.ExpirableOptions{DefaultExpirationTTL: time.Hour})
	lmt.SetIPLookups([]string{"RemoteAddr"})
	lmt.SetMessageContentType("application/json; charset=utf-8")
	lmt.SetMessage(`{"error":"too many requests","code":"RATE_LIMITED"}`)
	return lmt
}
