package middleware

import (
	"net/http"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/somos/attraction/backend/internal/infrastructure/observability"
)

// ObservabilityMiddleware opens a server span per request and records the
// request count and latency against the matched route.
func ObservabilityMiddleware(metrics *observability.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// r.Pattern is only known once the mux has routed the request,
			// so the span is renamed afterwards.
			ctx, span := observability.StartSpan(r.Context(), r.Method)
			defer span.End()

			req := r.WithContext(ctx)
			rec := newStatusRecorder(w)
			start := time.Now()

			next.ServeHTTP(rec, req)

			route := routeOf(req, "unmatched")
			observability.RecordRequestMetric(ctx, metrics, r.Method, route, rec.status, time.Since(start))

			span.SetName(r.Method + " " + route)
			span.SetAttributes(
				attribute.String("http.method", r.Method),
				attribute.String("http.route", route),
				attribute.String("http.target", r.URL.Path),
				attribute.Int("http.status_code", rec.status),
				attribute.Bool("user.authenticated", CallerFromContext(ctx).Authenticated()),
			)
			if rec.status >= http.StatusInternalServerError {
				span.SetStatus(codes.Error, http.StatusText(rec.status))
			}
		})
	}
}
