package fake

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/JailtonJunior94/aeon-kit/pkg/observability"
)

// LogEntry represents a captured log entry.
type LogEntry struct {
	Level     observability.LogLevel
	Namespace string
	Message   string
	Fields    []observability.Field
	Err       error
	Timestamp time.Time
}

// Field returns the value of the first field named key.
func (e LogEntry) Field(key string) (any, bool) {
	for _, field := range e.Fields {
		if field.Key == key {
			return field.Value, true
		}
	}
	return nil, false
}

// Logger captures all log operations for test assertions.
// Children and With-derived loggers share the parent's entry list.
type Logger struct {
	mu        *sync.RWMutex
	entries   *[]LogEntry
	namespace string
	level     observability.LogLevel
	fields    []observability.Field
}

// NewLogger creates a fake logger at debug level under the "app" namespace.
func NewLogger() *Logger {
	entries := make([]LogEntry, 0)
	return &Logger{
		mu:        &sync.RWMutex{},
		entries:   &entries,
		namespace: observability.DefaultNamespace,
		level:     observability.LogLevelDebug,
		fields:    make([]observability.Field, 0),
	}
}

// Debug captures a debug log entry.
func (l *Logger) Debug(ctx context.Context, msg string, fields ...observability.Field) {
	l.capture(observability.LogLevelDebug, msg, nil, fields)
}

// Info captures an info log entry.
func (l *Logger) Info(ctx context.Context, msg string, fields ...observability.Field) {
	l.capture(observability.LogLevelInfo, msg, nil, fields)
}

// Warn captures a warn log entry.
func (l *Logger) Warn(ctx context.Context, msg string, fields ...observability.Field) {
	l.capture(observability.LogLevelWarn, msg, nil, fields)
}

// Error captures an error log entry.
func (l *Logger) Error(ctx context.Context, msg string, fields ...observability.Field) {
	l.capture(observability.LogLevelError, msg, nil, fields)
}

// Err captures an error value the way the console logger formats it.
func (l *Logger) Err(ctx context.Context, err error, fields ...observability.Field) {
	if err == nil {
		return
	}
	l.capture(observability.LogLevelError, fmt.Sprintf("%s: %s", observability.ErrorKind(err), err.Error()), err, fields)
}

// Child creates a fake logger with a composed namespace sharing this logger's entries.
func (l *Logger) Child(namespace string) observability.Logger {
	return l.derive(observability.JoinNamespace(l.namespace, namespace), nil)
}

// With creates a child logger with additional fields.
func (l *Logger) With(fields ...observability.Field) observability.Logger {
	return l.derive(l.namespace, fields)
}

// SetLevel changes the threshold.
func (l *Logger) SetLevel(level observability.LogLevel) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
}

// Level returns the threshold.
func (l *Logger) Level() observability.LogLevel {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.level
}

// Namespace returns the namespace.
func (l *Logger) Namespace() string {
	return l.namespace
}

// GetEntries returns all captured log entries (for test assertions).
func (l *Logger) GetEntries() []LogEntry {
	l.mu.RLock()
	defer l.mu.RUnlock()
	result := make([]LogEntry, len(*l.entries))
	copy(result, *l.entries)
	return result
}

// EntriesAt returns captured entries of one level.
func (l *Logger) EntriesAt(level observability.LogLevel) []LogEntry {
	result := make([]LogEntry, 0)
	for _, entry := range l.GetEntries() {
		if entry.Level == level {
			result = append(result, entry)
		}
	}
	return result
}

// Reset clears all captured log entries.
func (l *Logger) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	*l.entries = make([]LogEntry, 0)
}

func (l *Logger) derive(namespace string, extra []observability.Field) *Logger {
	fields := make([]observability.Field, 0, len(l.fields)+len(extra))
	fields = append(fields, l.fields...)
	fields = append(fields, extra...)

	return &Logger{
		mu:        l.mu,
		entries:   l.entries,
		namespace: namespace,
		level:     l.Level(),
		fields:    fields,
	}
}

func (l *Logger) capture(level observability.LogLevel, msg string, err error, fields []observability.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.level.Enabled(level) {
		return
	}

	all := make([]observability.Field, 0, len(l.fields)+len(fields))
	all = append(all, l.fields...)
	all = append(all, fields...)

	*l.entries = append(*l.entries, LogEntry{
		Level:     level,
		Namespace: l.namespace,
		Message:   msg,
		Fields:    all,
		Err:       err,
		Timestamp: time.Now(),
	})
}
