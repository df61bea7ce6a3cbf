package console

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/JailtonJunior94/aeon-kit/pkg/observability"
	otellog "go.opentelemetry.io/otel/log"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// timestampLayout matches the millisecond ISO-8601 form used in every log line.
const timestampLayout = "2006-01-02T15:04:05.000Z07:00"

// Logger implements observability.Logger writing "[<timestamp>] [<namespace>] <message>"
// lines to one channel per severity, optionally mirroring each entry to OpenTelemetry.
type Logger struct {
	mu        sync.RWMutex
	zap       *zap.Logger
	otelLog   otellog.Logger
	now       func() time.Time
	namespace string
	level     observability.LogLevel
	fields    []observability.Field
}

// New creates a console logger.
// Without options it logs under "app" at the development default level to stdout/stderr.
func New(opts ...Option) *Logger {
	settings := defaultSettings()
	for _, opt := range opts {
		opt(&settings)
	}

	level := observability.DefaultLogLevel(settings.environment)
	if settings.level != nil {
		level = *settings.level
	}

	now := time.Now
	if settings.clock != nil {
		now = settings.clock.Now
	}

	return &Logger{
		zap:       zap.New(newCore(settings.channels)),
		otelLog:   settings.otelLog,
		now:       now,
		namespace: settings.namespace,
		level:     level,
		fields:    make([]observability.Field, 0),
	}
}

// Debug logs a debug-level message.
func (l *Logger) Debug(ctx context.Context, msg string, fields ...observability.Field) {
	l.log(ctx, observability.LogLevelDebug, msg, fields...)
}

// Info logs an info-level message.
func (l *Logger) Info(ctx context.Context, msg string, fields ...observability.Field) {
	l.log(ctx, observability.LogLevelInfo, msg, fields...)
}

// Warn logs a warning-level message.
func (l *Logger) Warn(ctx context.Context, msg string, fields ...observability.Field) {
	l.log(ctx, observability.LogLevelWarn, msg, fields...)
}

// Error logs an error-level message.
func (l *Logger) Error(ctx context.Context, msg string, fields ...observability.Field) {
	l.log(ctx, observability.LogLevelError, msg, fields...)
}

// Err logs err as "<Kind>: <message>" and, when err carries one, its stack trace on a second line.
func (l *Logger) Err(ctx context.Context, err error, fields ...observability.Field) {
	if err == nil || !l.Level().Enabled(observability.LogLevelError) {
		return
	}

	l.log(ctx, observability.LogLevelError, fmt.Sprintf("%s: %s", observability.ErrorKind(err), err.Error()), fields...)

	if stack, ok := observability.StackText(err); ok {
		l.log(ctx, observability.LogLevelError, "Stack trace: "+stack)
	}
}

// Child creates a logger namespaced under this one, starting at the current level.
func (l *Logger) Child(namespace string) observability.Logger {
	return l.derive(observability.JoinNamespace(l.namespace, namespace), nil)
}

// With creates a child logger with additional fields.
func (l *Logger) With(fields ...observability.Field) observability.Logger {
	return l.derive(l.namespace, fields)
}

// SetLevel changes the threshold of this logger only.
func (l *Logger) SetLevel(level observability.LogLevel) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
}

// Level returns the current threshold.
func (l *Logger) Level() observability.LogLevel {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.level
}

// Namespace returns the logger namespace.
func (l *Logger) Namespace() string {
	return l.namespace
}

// Sync flushes the underlying zap cores.
func (l *Logger) Sync() error {
	return l.zap.Sync()
}

func (l *Logger) derive(namespace string, extra []observability.Field) *Logger {
	fields := make([]observability.Field, 0, len(l.fields)+len(extra))
	fields = append(fields, l.fields...)
	fields = append(fields, extra...)

	return &Logger{
		zap:       l.zap,
		otelLog:   l.otelLog,
		now:       l.now,
		namespace: namespace,
		level:     l.Level(),
		fields:    fields,
	}
}

// log formats the line prefix and routes the entry to the channel of its severity.
func (l *Logger) log(ctx context.Context, level observability.LogLevel, msg string, fields ...observability.Field) {
	if !l.Level().Enabled(level) {
		return
	}

	if ctx == nil {
		ctx = context.Background()
	}

	allFields := make([]observability.Field, 0, len(l.fields)+len(fields)+2)
	allFields = append(allFields, l.fields...)
	allFields = append(allFields, fields...)

	spanContext := trace.SpanFromContext(ctx).SpanContext()
	if spanContext.IsValid() {
		allFields = append(allFields,
			observability.String("trace_id", spanContext.TraceID().String()),
			observability.String("span_id", spanContext.SpanID().String()),
		)
	}

	line := l.format(msg)
	zapFields := convertFields(allFields)

	switch level {
	case observability.LogLevelDebug:
		l.zap.Debug(line, zapFields...)
	case observability.LogLevelInfo:
		l.zap.Info(line, zapFields...)
	case observability.LogLevelWarn:
		l.zap.Warn(line, zapFields...)
	default:
		l.zap.Error(line, zapFields...)
	}

	if l.otelLog != nil {
		l.emitOTLPLog(ctx, level, msg, allFields)
	}
}

func (l *Logger) format(msg string) string {
	return fmt.Sprintf("[%s] [%s] %s", l.now().UTC().Format(timestampLayout), l.namespace, msg)
}

// emitOTLPLog emits the raw message with the namespace as an attribute.
func (l *Logger) emitOTLPLog(ctx context.Context, level observability.LogLevel, msg string, fields []observability.Field) {
	attrs := make([]otellog.KeyValue, 0, len(fields)+1)
	attrs = append(attrs, otellog.String("namespace", l.namespace))
	for _, field := range fields {
		attrs = append(attrs, convertFieldToOTelAttr(field))
	}

	record := otellog.Record{}
	record.SetTimestamp(l.now())
	record.SetBody(otellog.StringValue(msg))
	record.SetSeverity(convertLevelToOTel(level))
	record.SetSeverityText(level.String())
	record.AddAttributes(attrs...)

	l.otelLog.Emit(ctx, record)
}
