package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Init builds the router. The middleware order is part of the security
// model: CSRF runs before the session check, and the entitlement gate
// runs after it.
func (h *Handler) Init() *chi.Mux {
	router := chi.NewRouter()
	router.Use(h.withRealIP)
	router.Use(h.withTracing, h.withTraceID, h.withLogging, h.withMetrics)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Compress(5, "application/json"))
	if h.requestTimeout > 0 {
		router.Use(middleware.Timeout(h.requestTimeout))
	}

	// operational routes
	router.Get("/version", h.getServerVersion)

	// signed by the payment provider, not by a browser
	router.Post("/webhooks/subscription", h.subscriptionWebhook)

	router.Group(func(r chi.Router) {
		r.Use(h.withCSRF)

		r.With(h.optionalAuth).Get("/verify", h.verify)
		r.Get("/reset-password/{token}", h.validateResetToken)

		// public auth routes
		r.Group(func(r chi.Router) {
			r.Use(h.withRateLimit)
			r.Post("/register", h.register)
			r.Post("/login", h.login)
			r.Post("/forgot-password", h.forgotPassword)
			r.Post("/reset-password", h.resetPassword)
			r.Post("/verify-email", h.verifyEmail)
			r.Post("/resend-verification", h.resendVerification)
		})

		// routes with authorization
		r.Group(func(r chi.Router) {
			r.Use(h.auth)
			r.Post("/logout", h.logout)
			r.Put("/password", h.changePassword)

			r.With(h.requireActiveSubscription).Get("/api/account", h.account)

			r.Group(func(r chi.Router) {
				r.Use(h.requireAdmin)
				r.Delete("/admin/users/{id}/sessions", h.adminRevokeSessions)
				r.Post("/admin/users/{id}/unlock", h.adminUnlock)
				r.Patch("/admin/users/{id}/active", h.adminSetActive)
				r.Delete("/admin/users/{id}", h.adminPurgeUser)
			})
		})
	})

	router.NotFound(notFound)
	router.MethodNotAllowed(CheckHTTPMethod(router))

	return router
}

// MetricsRouter serves /metrics for the internal listener. It is never
// mounted on the public router.
func (h *Handler) MetricsRouter() *chi.Mux {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Method(http.MethodGet, "/metrics", h.metrics.Handler())
	return router
}
