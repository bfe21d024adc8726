package middleware

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/somos/attraction/backend/internal/infrastructure/observability"
)

// LoggingMiddleware writes one structured line per request. Server errors
// log at error level and client errors at warn.
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := newStatusRecorder(w)

		next.ServeHTTP(rec, r)

		level := zerolog.InfoLevel
		switch {
		case rec.status >= http.StatusInternalServerError:
			level = zerolog.ErrorLevel
		case rec.status >= http.StatusBadRequest:
			level = zerolog.WarnLevel
		}

		caller := CallerFromContext(r.Context())
		observability.ComponentLogger(r.Context(), "http").
			WithLevel(level).
			Str("method", r.Method).
			Str("route", routeOf(r, r.URL.Path)).
			Int("status", rec.status).
			Int("bytes", rec.bytes).
			Bool("authenticated", caller.Authenticated()).
			Bool("anonymous_session", caller.SessionKey != "").
			Dur("duration", time.Since(start)).
			Msg("request")
	})
}
