package http

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/MKhiriev/go-money-keeper/internal/handler/http"

// withTracing opens a server span for every request using the global
// OpenTelemetry tracer provider. An incoming W3C traceparent is always
// continued. Without a configured provider the span does not record, but
// it still carries the caller's trace id into the logs.
func (h *Handler) withTracing(next http.Handler) http.Handler {
	tracer := otel.Tracer(tracerName)
	propagator := h.propagator
	if propagator == nil {
		propagator = otel.GetTextMapPropagator()
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := propagator.Extract(r.Context(), propagation.HeaderCarrier(r.Header))

		ctx, span := tracer.Start(ctx, r.Method+" "+r.URL.Path,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				attribute.String("http.method", r.Method),
				attribute.String("http.target", r.URL.Path),
				attribute.String("http.user_agent", r.UserAgent()),
			),
		)
		defer span.End()

		tw := &responseWriter{ResponseWriter: w}
		next.ServeHTTP(tw, r.WithContext(ctx))

		status := tw.status
		if status == 0 {
			status = http.StatusOK
		}

		if pattern := routePattern(ctx); pattern != "" {
			span.SetName(r.Method + " " + pattern)
			span.SetAttributes(attribute.String("http.route", pattern))
		}
		span.SetAttributes(attribute.Int("http.status_code", status))
		if status >= http.StatusInternalServerError {
			span.SetStatus(codes.Error, fmt.Sprintf("status %d", status))
		}
	})
}

// routePattern returns the matched chi pattern, such as /admin/users/{id}/unlock,
// or an empty string outside a chi router.
func routePattern(ctx context.Context) string {
	rctx := chi.RouteContext(ctx)
	if rctx == nil {
		return ""
	}
	return rctx.RoutePattern()
}
