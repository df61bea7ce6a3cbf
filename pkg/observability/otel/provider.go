// Package otel exports log records over OTLP/HTTP. The console logger mirrors
// every entry to the otellog.Logger returned by LogProvider.Logger.
package otel

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploghttp"
	otellog "go.opentelemetry.io/otel/log"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	"go.opentelemetry.io/otel/sdk/resource"
)

var (
	ErrEndpointRequired    = errors.New("otlp endpoint is required")
	ErrServiceNameRequired = errors.New("service name is required")
	ErrInsecureProduction  = errors.New("insecure connections are not allowed in production environment")
	ErrWeakTLS             = errors.New("minimum TLS version must be 1.2 or higher")
)

// Config holds the configuration of the OTLP log pipeline.
type Config struct {
	ServiceName    string
	ServiceVersion string
	Environment    string
	Endpoint       string

	// Insecure disables TLS. Rejected for production environments.
	Insecure  bool
	TLSConfig *tls.Config
}

// Validate checks if the configuration is valid.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Endpoint) == "" {
		return ErrEndpointRequired
	}
	if strings.TrimSpace(c.ServiceName) == "" {
		return ErrServiceNameRequired
	}

	if c.Insecure {
		switch strings.ToLower(c.Environment) {
		case "production", "prod":
			return ErrInsecureProduction
		}
	}

	if c.TLSConfig != nil && c.TLSConfig.MinVersion > 0 && c.TLSConfig.MinVersion < tls.VersionTLS12 {
		return ErrWeakTLS
	}
	return nil
}

// LogProvider owns the SDK logger provider and its batch exporter.
type LogProvider struct {
	provider *sdklog.LoggerProvider
}

// NewLogProvider builds an OTLP/HTTP log pipeline. No connection is made until
// the first batch is exported.
func NewLogProvider(ctx context.Context, cfg Config) (*LogProvider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	res, err := newResource(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	exporter, err := newExporter(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create log exporter: %w", err)
	}

	return &LogProvider{
		provider: sdklog.NewLoggerProvider(
			sdklog.WithResource(res),
			sdklog.WithProcessor(sdklog.NewBatchProcessor(exporter)),
		),
	}, nil
}

// Logger returns a named OTel logger.
func (p *LogProvider) Logger(name string) otellog.Logger {
	return p.provider.Logger(name)
}

// Shutdown flushes pending records and stops the exporter.
func (p *LogProvider) Shutdown(ctx context.Context) error {
	return p.provider.Shutdown(ctx)
}

func newResource(ctx context.Context, cfg Config) (*resource.Resource, error) {
	attrs := []attribute.KeyValue{
		attribute.String("service.name", cfg.ServiceName),
	}
	if cfg.ServiceVersion != "" {
		attrs = append(attrs, attribute.String("service.version", cfg.ServiceVersion))
	}
	if cfg.Environment != "" {
		attrs = append(attrs, attribute.String("deployment.environment", cfg.Environment))
	}

	return resource.New(ctx, resource.WithAttributes(attrs...))
}

func newExporter(ctx context.Context, cfg Config) (sdklog.Exporter, error) {
	opts := []otlploghttp.Option{
		otlploghttp.WithEndpoint(cfg.Endpoint),
	}

	if cfg.Insecure {
		opts = append(opts, otlploghttp.WithInsecure())
	} else if cfg.TLSConfig != nil {
		opts = append(opts, otlploghttp.WithTLSClientConfig(cfg.TLSConfig))
	}

	return otlploghttp.New(ctx, opts...)
}
