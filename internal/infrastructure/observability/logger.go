package observability

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/trace"
)

// InitLogger installs the global zerolog logger for a binary. level
// overrides the environment default (debug in development, info elsewhere)
// when it names a valid zerolog level.
func InitLogger(serviceName, env, level string) {
	log.Logger = newLogger(os.Stdout, serviceName, env, level)
}

func newLogger(out io.Writer, serviceName, env, level string) zerolog.Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	development := env == "development"
	minLevel := zerolog.InfoLevel
	if development {
		minLevel = zerolog.DebugLevel
	}
	if parsed, err := zerolog.ParseLevel(level); err == nil && level != "" {
		minLevel = parsed
	}
	zerolog.SetGlobalLevel(minLevel)

	if development {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.Kitchen}
	}
	ctx := zerolog.New(out).With().Timestamp().Str("service", serviceName)
	if !development {
		ctx = ctx.Caller()
	}
	return ctx.Logger()
}

// LoggerFromContext returns the global logger, tagged with the trace and
// span ids of the active span when there is one.
func LoggerFromContext(ctx context.Context) *zerolog.Logger {
	logger := log.Logger.With().Ctx(ctx).Logger()
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		logger = logger.With().
			Str("trace_id", sc.TraceID().String()).
			Str("span_id", sc.SpanID().String()).
			Logger()
	}
	return &logger
}

func ComponentLogger(ctx context.Context, component string) *zerolog.Logger {
	logger := LoggerFromContext(ctx).With().Str("component", component).Logger()
	return &logger
}
