package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/JailtonJunior94/aeon-kit/internal/site"
	"github.com/JailtonJunior94/aeon-kit/pkg/contact"
	"github.com/JailtonJunior94/aeon-kit/pkg/httpclient"
	"github.com/JailtonJunior94/aeon-kit/pkg/observability"
	"github.com/JailtonJunior94/aeon-kit/pkg/unsplash"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
)

func newServeCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the site API",
		Long: `Serves:
  POST /api/contact         - submit the contact form
  GET  /api/photos/random   - random photos (?query=&count=)
  GET  /api/photos/search   - search photos (?query=&page=&per_page=)
  GET  /api/photos/{id}     - a single photo
  GET  /health              - health report
  GET  /metrics             - Prometheus metrics`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.serve(cmd.Context())
		},
	}
}

func (a *app) serve(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	contactOpts := []contact.Option{contact.WithRegisterer(registry)}
	if a.cfg.ContactWebhookURL != "" {
		webhookClient := httpclient.NewClient(a.logger,
			httpclient.WithRetry(a.cfg.RetryAttempts, a.cfg.RetryInterval, httpclient.DefaultRetryPolicy),
		)
		contactOpts = append(contactOpts, contact.WithWebhook(a.cfg.ContactWebhookURL, webhookClient))
	}
	service := contact.NewService(a.logger, contactOpts...)

	if a.cfg.UnsplashAccessKey == "" {
		a.logger.Warn(ctx, "UNSPLASH_ACCESS_KEY is not set, photo endpoints will serve placeholders")
	}
	photos := unsplash.NewClient(a.logger, a.cfg.UnsplashAccessKey,
		unsplash.WithBaseURL(a.cfg.UnsplashBaseURL),
		unsplash.WithHTTPClient(httpclient.NewClient(a.logger,
			httpclient.WithRetry(a.cfg.RetryAttempts, a.cfg.RetryInterval, httpclient.IdempotentRetryPolicy),
		)),
	)

	server := site.NewServer(a.cfg, a.logger, site.NewHandler(a.logger, service, photos), registry, nil)
	shutdown := server.Run()

	select {
	case err := <-server.ShutdownListener():
		return err
	case <-ctx.Done():
	}

	a.logger.Info(context.Background(), "shutting down", observability.String("timeout", a.cfg.ShutdownTimeout.String()))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()

	if err := shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-server.ShutdownListener()
}
