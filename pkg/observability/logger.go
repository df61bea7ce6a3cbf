package observability

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// LogLevel represents the severity threshold of a logger.
// Levels are ordered: a logger drops every call below its own level.
type LogLevel int

const (
	LogLevelDebug LogLevel = iota
	LogLevelInfo
	LogLevelWarn
	LogLevelError
	LogLevelNone
)

// DefaultNamespace is used when a logger is created without a namespace.
const DefaultNamespace = "app"

// NamespaceSeparator joins parent and child namespaces.
const NamespaceSeparator = ":"

// String returns the lower-case name of the level.
func (l LogLevel) String() string {
	switch l {
	case LogLevelDebug:
		return "debug"
	case LogLevelInfo:
		return "info"
	case LogLevelWarn:
		return "warn"
	case LogLevelError:
		return "error"
	case LogLevelNone:
		return "none"
	}
	return fmt.Sprintf("level(%d)", int(l))
}

// Enabled reports whether a logger at threshold l emits a call at level target.
func (l LogLevel) Enabled(target LogLevel) bool {
	return target != LogLevelNone && l <= target
}

// ParseLogLevel converts a textual level (case-insensitive) into a LogLevel.
func ParseLogLevel(value string) (LogLevel, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "debug":
		return LogLevelDebug, nil
	case "info":
		return LogLevelInfo, nil
	case "warn", "warning":
		return LogLevelWarn, nil
	case "error":
		return LogLevelError, nil
	case "none", "off", "silent":
		return LogLevelNone, nil
	}
	return LogLevelInfo, fmt.Errorf("unknown log level %q", value)
}

// IsDevelopment reports whether environment names a development-like deployment.
// An empty environment counts as development.
func IsDevelopment(environment string) bool {
	switch strings.ToLower(strings.TrimSpace(environment)) {
	case "", "development", "dev", "local", "test":
		return true
	}
	return false
}

// DefaultLogLevel returns Debug for development-like environments and Info otherwise.
func DefaultLogLevel(environment string) LogLevel {
	if IsDevelopment(environment) {
		return LogLevelDebug
	}
	return LogLevelInfo
}

// Logger provides namespaced, leveled logging with trace context propagation.
type Logger interface {
	// Debug logs a debug-level message with optional structured fields.
	Debug(ctx context.Context, msg string, fields ...Field)

	// Info logs an info-level message with optional structured fields.
	Info(ctx context.Context, msg string, fields ...Field)

	// Warn logs a warning-level message with optional structured fields.
	Warn(ctx context.Context, msg string, fields ...Field)

	// Error logs an error-level message with optional structured fields.
	Error(ctx context.Context, msg string, fields ...Field)

	// Err logs an error value at error level as "<Kind>: <message>".
	// Errors carrying a stack trace produce a second "Stack trace:" line.
	Err(ctx context.Context, err error, fields ...Field)

	// Child returns a logger namespaced "<namespace>:<child>" that starts at this logger's level.
	// Later SetLevel calls on either logger do not propagate.
	Child(namespace string) Logger

	// With creates a logger sharing namespace and level that adds fields to every entry.
	With(fields ...Field) Logger

	// SetLevel changes this logger's threshold only.
	SetLevel(level LogLevel)

	// Level returns the current threshold.
	Level() LogLevel

	// Namespace returns the logger namespace.
	Namespace() string
}

// JoinNamespace composes a child namespace.
func JoinNamespace(parent, child string) string {
	if parent == "" {
		return child
	}
	return parent + NamespaceSeparator + child
}

// ErrorKind returns the discriminator printed for err by Logger.Err.
// Errors exposing ErrorKind() string report their own kind; anything else is "Error".
func ErrorKind(err error) string {
	if kinded, ok := err.(interface{ ErrorKind() string }); ok {
		if kind := kinded.ErrorKind(); kind != "" {
			return kind
		}
	}
	return "Error"
}

type stackTracer interface {
	StackTrace() errors.StackTrace
}

// StackText returns the formatted stack trace carried by err or any error it wraps.
func StackText(err error) (string, bool) {
	var tracer stackTracer
	if !stderrors.As(err, &tracer) {
		return "", false
	}

	trace := tracer.StackTrace()
	if len(trace) == 0 {
		return "", false
	}

	return strings.TrimPrefix(fmt.Sprintf("%+v", trace), "\n"), true
}
