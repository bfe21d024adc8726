package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func useLogger(t *testing.T, env, level string) *bytes.Buffer {
	t.Helper()
	previous := log.Logger
	t.Cleanup(func() {
		log.Logger = previous
		zerolog.SetGlobalLevel(zerolog.TraceLevel)
	})

	var buf bytes.Buffer
	log.Logger = newLogger(&buf, "attraction-test", env, level)
	return &buf
}

func lines(buf *bytes.Buffer) [][]byte {
	trimmed := bytes.TrimSpace(buf.Bytes())
	if len(trimmed) == 0 {
		return nil
	}
	return bytes.Split(trimmed, []byte("\n"))
}

func TestNewLogger_ProductionWritesJSON(t *testing.T) {
	buf := useLogger(t, "production", "")

	ComponentLogger(context.Background(), "planner").Info().Str("stop_id", "1:42").Msg("hello")
	ComponentLogger(context.Background(), "planner").Debug().Msg("suppressed")

	out := lines(buf)
	require.Len(t, out, 1)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(out[0], &entry))
	assert.Equal(t, "attraction-test", entry["service"])
	assert.Equal(t, "planner", entry["component"])
	assert.Equal(t, "1:42", entry["stop_id"])
	assert.Equal(t, "hello", entry["message"])
	assert.Contains(t, entry, "caller")
	assert.NotContains(t, entry, "trace_id")
}

func TestNewLogger_LevelOverride(t *testing.T) {
	buf := useLogger(t, "production", "warn")

	log.Info().Msg("dropped")
	log.Warn().Msg("kept")

	assert.Len(t, lines(buf), 1)
}

func TestNewLogger_InvalidLevelKeepsDefault(t *testing.T) {
	buf := useLogger(t, "production", "chatty")

	log.Debug().Msg("dropped")
	log.Info().Msg("kept")

	assert.Len(t, lines(buf), 1)
}

func TestLoggerFromContext_TraceIDs(t *testing.T) {
	buf := useLogger(t, "production", "")

	provider := sdktrace.NewTracerProvider()
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })
	ctx, span := provider.Tracer("test").Start(context.Background(), "plan")
	defer span.End()

	LoggerFromContext(ctx).Info().Msg("traced")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(lines(buf)[0], &entry))
	assert.Equal(t, span.SpanContext().TraceID().String(), entry["trace_id"])
	assert.Equal(t, span.SpanContext().SpanID().String(), entry["span_id"])
}
