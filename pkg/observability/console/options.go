package console

import (
	"io"
	"strings"

	"github.com/JailtonJunior94/aeon-kit/pkg/observability"
	"github.com/jonboulle/clockwork"
	otellog "go.opentelemetry.io/otel/log"
)

// Option configures a Logger.
type Option func(*settings)

type settings struct {
	namespace   string
	level       *observability.LogLevel
	environment string
	channels    Channels
	clock       clockwork.Clock
	otelLog     otellog.Logger
}

func defaultSettings() settings {
	return settings{
		namespace: observability.DefaultNamespace,
		channels:  DefaultChannels(),
	}
}

// WithNamespace sets the logger namespace. Blank values keep "app".
func WithNamespace(namespace string) Option {
	return func(s *settings) {
		if strings.TrimSpace(namespace) != "" {
			s.namespace = namespace
		}
	}
}

// WithLevel sets an explicit level, overriding the environment default.
func WithLevel(level observability.LogLevel) Option {
	return func(s *settings) {
		s.level = &level
	}
}

// WithEnvironment derives the default level: Debug for development-like environments, Info otherwise.
func WithEnvironment(environment string) Option {
	return func(s *settings) {
		s.environment = environment
	}
}

// WithChannels sets one writer per severity. Nil writers keep their default.
func WithChannels(channels Channels) Option {
	return func(s *settings) {
		s.channels = channels
	}
}

// WithOutput sends every severity to w.
func WithOutput(w io.Writer) Option {
	return func(s *settings) {
		if w != nil {
			s.channels = SingleChannel(w)
		}
	}
}

// WithClock sets the clock used for line timestamps.
func WithClock(clock clockwork.Clock) Option {
	return func(s *settings) {
		s.clock = clock
	}
}

// WithOTelLogger mirrors every emitted entry to an OpenTelemetry logger.
func WithOTelLogger(logger otellog.Logger) Option {
	return func(s *settings) {
		s.otelLog = logger
	}
}
