// Package config loads the aeon site configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/JailtonJunior94/aeon-kit/pkg/observability"
)

var (
	ErrPortRequired        = errors.New("http port is required")
	ErrInvalidTimeout      = errors.New("timeouts must be positive")
	ErrInvalidBodyLimit    = errors.New("body limit must be positive")
	ErrInvalidWebhookURL   = errors.New("contact webhook url must be an absolute http(s) url")
	ErrInvalidUnsplashURL  = errors.New("unsplash base url must be an absolute http(s) url")
	ErrInvalidDebounce     = errors.New("search debounce must not be negative")
	ErrInvalidRetryAttempt = errors.New("retry attempts must be at least 1")
	ErrInvalidLogLevel     = errors.New("log level must be debug, info, warn, error or none")
)

// Config holds everything cmd/aeon needs to wire the site.
type Config struct {
	ServiceName    string
	ServiceVersion string
	Environment    string
	LogLevel       observability.LogLevel

	HTTPPort        string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
	BodyLimit       int64
	CORSOrigins     string

	UnsplashAccessKey string
	UnsplashBaseURL   string

	ContactWebhookURL string
	RetryAttempts     int
	RetryInterval     time.Duration

	SearchDebounce time.Duration

	OTLPEndpoint string

	// rejected LOG_LEVEL value, reported by Validate
	invalidLogLevel string
}

// DefaultConfig returns the configuration used when no variable is set.
func DefaultConfig() Config {
	return Config{
		ServiceName:     "aeon",
		ServiceVersion:  "dev",
		Environment:     "development",
		LogLevel:        observability.LogLevelDebug,
		HTTPPort:        "8080",
		ReadTimeout:     15 * time.Second,
		WriteTimeout:    15 * time.Second,
		IdleTimeout:     60 * time.Second,
		RequestTimeout:  10 * time.Second,
		ShutdownTimeout: 30 * time.Second,
		BodyLimit:       64 * 1024,
		UnsplashBaseURL: "https://api.unsplash.com",
		RetryAttempts:   3,
		RetryInterval:   200 * time.Millisecond,
		SearchDebounce:  500 * time.Millisecond,
	}
}

// FromEnv overlays environment variables on DefaultConfig. Malformed numbers
// and durations keep their default. LOG_LEVEL wins over the APP_ENV default;
// an unknown LOG_LEVEL keeps the default and makes Validate fail.
func FromEnv() Config {
	cfg := DefaultConfig()

	cfg.ServiceName = getEnv("SERVICE_NAME", cfg.ServiceName)
	cfg.ServiceVersion = getEnv("SERVICE_VERSION", cfg.ServiceVersion)
	cfg.Environment = os.Getenv("APP_ENV")
	cfg.LogLevel = observability.DefaultLogLevel(cfg.Environment)
	if raw := os.Getenv("LOG_LEVEL"); strings.TrimSpace(raw) != "" {
		if level, err := observability.ParseLogLevel(raw); err == nil {
			cfg.LogLevel = level
		} else {
			cfg.invalidLogLevel = raw
		}
	}
	if cfg.Environment == "" {
		cfg.Environment = DefaultConfig().Environment
	}

	cfg.HTTPPort = getEnv("HTTP_PORT", cfg.HTTPPort)
	cfg.ReadTimeout = getEnvDuration("HTTP_READ_TIMEOUT", cfg.ReadTimeout)
	cfg.WriteTimeout = getEnvDuration("HTTP_WRITE_TIMEOUT", cfg.WriteTimeout)
	cfg.IdleTimeout = getEnvDuration("HTTP_IDLE_TIMEOUT", cfg.IdleTimeout)
	cfg.RequestTimeout = getEnvDuration("HTTP_REQUEST_TIMEOUT", cfg.RequestTimeout)
	cfg.ShutdownTimeout = getEnvDuration("HTTP_SHUTDOWN_TIMEOUT", cfg.ShutdownTimeout)
	cfg.BodyLimit = int64(getEnvInt("HTTP_BODY_LIMIT", int(cfg.BodyLimit)))
	cfg.CORSOrigins = getEnv("CORS_ORIGINS", cfg.CORSOrigins)

	cfg.UnsplashAccessKey = getEnv("UNSPLASH_ACCESS_KEY", cfg.UnsplashAccessKey)
	cfg.UnsplashBaseURL = getEnv("UNSPLASH_BASE_URL", cfg.UnsplashBaseURL)

	cfg.ContactWebhookURL = getEnv("CONTACT_WEBHOOK_URL", cfg.ContactWebhookURL)
	cfg.RetryAttempts = getEnvInt("HTTP_RETRY_ATTEMPTS", cfg.RetryAttempts)
	cfg.RetryInterval = getEnvDuration("HTTP_RETRY_INTERVAL", cfg.RetryInterval)

	cfg.SearchDebounce = getEnvDuration("SEARCH_DEBOUNCE", cfg.SearchDebounce)

	cfg.OTLPEndpoint = getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", cfg.OTLPEndpoint)

	return cfg
}

// Validate checks if the configuration is valid.
// SetLogLevel overrides the level, replacing any rejected LOG_LEVEL value.
func (c *Config) SetLogLevel(level observability.LogLevel) {
	c.LogLevel = level
	c.invalidLogLevel = ""
}

func (c Config) Validate() error {
	if c.invalidLogLevel != "" {
		return fmt.Errorf("%w, got %q", ErrInvalidLogLevel, c.invalidLogLevel)
	}

	if strings.TrimSpace(c.HTTPPort) == "" {
		return ErrPortRequired
	}

	for name, timeout := range map[string]time.Duration{
		"read":     c.ReadTimeout,
		"write":    c.WriteTimeout,
		"idle":     c.IdleTimeout,
		"request":  c.RequestTimeout,
		"shutdown": c.ShutdownTimeout,
	} {
		if timeout <= 0 {
			return fmt.Errorf("%w: %s timeout is %v", ErrInvalidTimeout, name, timeout)
		}
	}

	if c.BodyLimit <= 0 {
		return fmt.Errorf("%w, got %d", ErrInvalidBodyLimit, c.BodyLimit)
	}

	if !isHTTPURL(c.UnsplashBaseURL) {
		return fmt.Errorf("%w: %q", ErrInvalidUnsplashURL, c.UnsplashBaseURL)
	}

	if c.ContactWebhookURL != "" && !isHTTPURL(c.ContactWebhookURL) {
		return fmt.Errorf("%w: %q", ErrInvalidWebhookURL, c.ContactWebhookURL)
	}

	if c.RetryAttempts < 1 {
		return fmt.Errorf("%w, got %d", ErrInvalidRetryAttempt, c.RetryAttempts)
	}

	if c.SearchDebounce < 0 {
		return fmt.Errorf("%w, got %v", ErrInvalidDebounce, c.SearchDebounce)
	}

	return nil
}

func isHTTPURL(raw string) bool {
	parsed, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (parsed.Scheme == "http" || parsed.Scheme == "https") && parsed.Host != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

// getEnvDuration accepts Go durations ("250ms") or a plain number of seconds.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if seconds, err := strconv.Atoi(value); err == nil {
		return time.Duration(seconds) * time.Second
	}
	return defaultValue
}
