// Package metrics holds the Prometheus collectors of the server.
//
// All recording methods are safe to call on a nil *Metrics, which records
// nothing. Tests and tools that do not care about metrics pass nil.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "money_keeper"

// Login outcomes recorded by [Metrics.LoginAttempt].
const (
	LoginSuccess  = "success"
	LoginInvalid  = "invalid_credentials"
	LoginLocked   = "locked"
	LoginLockout  = "lockout"
	LoginInactive = "inactive"
)

type Metrics struct {
	registry *prometheus.Registry

	httpRequests      *prometheus.CounterVec
	httpDuration      *prometheus.HistogramVec
	loginAttempts     *prometheus.CounterVec
	csrfRejections    *prometheus.CounterVec
	tokenConsumptions *prometheus.CounterVec
	sessionsSwept     prometheus.Counter
	mailDeliveries    *prometheus.CounterVec
	mailQueueDepth    prometheus.Gauge
}

// New creates the collectors on a fresh registry that also exports the Go
// runtime and process collectors.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,

		httpRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests by route pattern and status",
		}, []string{"method", "route", "status"}),

		httpDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),

		loginAttempts: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "login_attempts_total",
			Help:      "Login attempts by outcome",
		}, []string{"outcome"}),

		csrfRejections: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "csrf_rejections_total",
			Help:      "Unsafe requests rejected by the CSRF guard",
		}, []string{"reason"}),

		tokenConsumptions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "one_time_token_consumptions_total",
			Help:      "One-time token consumption attempts by purpose and result",
		}, []string{"purpose", "result"}),

		sessionsSwept: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_swept_total",
			Help:      "Expired sessions removed by the sweeper",
		}),

		mailDeliveries: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "mail_deliveries_total",
			Help:      "Outbound emails by result",
		}, []string{"result"}),

		mailQueueDepth: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "mail_queue_depth",
			Help:      "Emails waiting in the dispatcher queue",
		}),
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry exposes the underlying registry, mostly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

func (m *Metrics) LoginAttempt(outcome string) {
	if m == nil {
		return
	}
	m.loginAttempts.WithLabelValues(outcome).Inc()
}

func (m *Metrics) CSRFRejected(reason string) {
	if m == nil {
		return
	}
	m.csrfRejections.WithLabelValues(reason).Inc()
}

func (m *Metrics) TokenConsumed(purpose string, ok bool) {
	if m == nil {
		return
	}
	result := "consumed"
	if !ok {
		result = "rejected"
	}
	m.tokenConsumptions.WithLabelValues(purpose, result).Inc()
}

func (m *Metrics) SessionsSwept(n int64) {
	if m == nil || n <= 0 {
		return
	}
	m.sessionsSwept.Add(float64(n))
}

func (m *Metrics) MailDelivered(err error) {
	if m == nil {
		return
	}
	result := "sent"
	if err != nil {
		result = "failed"
	}
	m.mailDeliveries.WithLabelValues(result).Inc()
}

func (m *Metrics) MailQueueDepth(n int) {
	if m == nil {
		return
	}
	m.mailQueueDepth.Set(float64(n))
}
