package main

import (
	"context"
	"fmt"

	"github.com/JailtonJunior94/aeon-kit/internal/config"
	"github.com/JailtonJunior94/aeon-kit/pkg/observability"
	"github.com/JailtonJunior94/aeon-kit/pkg/observability/console"
	"github.com/JailtonJunior94/aeon-kit/pkg/observability/otel"
	"github.com/spf13/cobra"
)

// app carries what every subcommand shares once PersistentPreRunE has run.
type app struct {
	cfg      config.Config
	logger   observability.Logger
	logLevel string
	shutdown func(context.Context) error
}

func newRootCommand() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "aeon",
		Short: "Aeon site API and companion tools",
		Long: `Aeon serves the site API (contact form and photo gallery) and ships two
companion commands that exercise it from a terminal.

Environment variables:
  APP_ENV                      - deployment environment (default: development)
  LOG_LEVEL                    - debug, info, warn, error or none
  HTTP_PORT                    - HTTP port (default: 8080)
  UNSPLASH_ACCESS_KEY          - Unsplash API access key
  UNSPLASH_BASE_URL            - Unsplash API URL (default: https://api.unsplash.com)
  CONTACT_WEBHOOK_URL          - optional webhook receiving contact submissions
  SEARCH_DEBOUNCE              - search-as-you-type delay (default: 500ms)
  OTEL_EXPORTER_OTLP_ENDPOINT  - OTLP HTTP endpoint for logs`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.teardown(cmd.Context())
		},
	}

	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "overrides LOG_LEVEL")
	root.AddCommand(newServeCommand(a), newContactCommand(a), newSearchCommand(a))
	return root
}

func (a *app) setup(cmd *cobra.Command) error {
	a.cfg = config.FromEnv()
	if a.logLevel != "" {
		level, err := observability.ParseLogLevel(a.logLevel)
		if err != nil {
			return err
		}
		a.cfg.SetLogLevel(level)
	}
	if err := a.cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	opts := []console.Option{
		console.WithLevel(a.cfg.LogLevel),
		console.WithNamespace(a.cfg.ServiceName),
	}
	// terminal commands keep stdout for their own output
	if cmd.Name() != "serve" {
		opts = append(opts, console.WithOutput(cmd.ErrOrStderr()))
	}

	if a.cfg.OTLPEndpoint != "" {
		provider, err := otel.NewLogProvider(cmd.Context(), otel.Config{
			ServiceName:    a.cfg.ServiceName,
			ServiceVersion: a.cfg.ServiceVersion,
			Environment:    a.cfg.Environment,
			Endpoint:       a.cfg.OTLPEndpoint,
			Insecure:       observability.IsDevelopment(a.cfg.Environment),
		})
		if err != nil {
			return fmt.Errorf("failed to set up log export: %w", err)
		}
		opts = append(opts, console.WithOTelLogger(provider.Logger(a.cfg.ServiceName)))
		a.shutdown = provider.Shutdown
	}

	a.logger = console.New(opts...)
	return nil
}

func (a *app) teardown(ctx context.Context) error {
	if a.shutdown == nil {
		return nil
	}
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.cfg.ShutdownTimeout)
	defer cancel()
	return a.shutdown(shutdownCtx)
}
