package observability

import (
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	otellog "go.opentelemetry.io/otel/log"
)

var severities = map[zerolog.Level]otellog.Severity{
	zerolog.TraceLevel: otellog.SeverityTrace,
	zerolog.DebugLevel: otellog.SeverityDebug,
	zerolog.InfoLevel:  otellog.SeverityInfo,
	zerolog.WarnLevel:  otellog.SeverityWarn,
	zerolog.ErrorLevel: otellog.SeverityError,
	zerolog.FatalLevel: otellog.SeverityFatal,
	zerolog.PanicLevel: otellog.SeverityFatal4,
}

// logHook copies every zerolog message into an OpenTelemetry logger. The
// event context carries the active span, so exported records keep their
// trace ids.
type logHook struct {
	logger otellog.Logger
}

func (h logHook) Run(e *zerolog.Event, level zerolog.Level, msg string) {
	severity, ok := severities[level]
	if !ok {
		return
	}

	var record otellog.Record
	record.SetTimestamp(time.Now())
	record.SetObservedTimestamp(time.Now())
	record.SetSeverity(severity)
	record.SetSeverityText(level.String())
	record.SetBody(otellog.StringValue(msg))
	h.logger.Emit(e.GetCtx(), record)
}

// BridgeLogs attaches the log export pipeline to the global logger.
func BridgeLogs(provider otellog.LoggerProvider) {
	log.Logger = log.Logger.Hook(logHook{logger: provider.Logger(instrumentationName)})
}
