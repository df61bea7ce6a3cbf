package noop

import (
	"context"

	"github.com/JailtonJunior94/aeon-kit/pkg/observability"
)

// Logger implements observability.Logger with no-op operations.
// Use this when logging should be disabled completely.
type Logger struct {
	namespace string
}

// NewLogger creates a new no-op logger.
func NewLogger() *Logger {
	return &Logger{namespace: observability.DefaultNamespace}
}

func (l *Logger) Debug(ctx context.Context, msg string, fields ...observability.Field) {}

func (l *Logger) Info(ctx context.Context, msg string, fields ...observability.Field) {}

func (l *Logger) Warn(ctx context.Context, msg string, fields ...observability.Field) {}

func (l *Logger) Error(ctx context.Context, msg string, fields ...observability.Field) {}

func (l *Logger) Err(ctx context.Context, err error, fields ...observability.Field) {}

func (l *Logger) Child(namespace string) observability.Logger {
	return &Logger{namespace: observability.JoinNamespace(l.namespace, namespace)}
}

func (l *Logger) With(fields ...observability.Field) observability.Logger {
	return l
}

func (l *Logger) SetLevel(level observability.LogLevel) {}

func (l *Logger) Level() observability.LogLevel {
	return observability.LogLevelNone
}

func (l *Logger) Namespace() string {
	return l.namespace
}
