package contact

import (
	"github.com/JailtonJunior94/aeon-kit/pkg/httpclient"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
)

type Option func(*settings)

type settings struct {
	client     httpclient.HTTPClient
	webhookURL string
	clock      clockwork.Clock
	registerer prometheus.Registerer
}

// WithWebhook forwards accepted submissions as a JSON POST to url.
func WithWebhook(url string, client httpclient.HTTPClient) Option {
	return func(s *settings) {
		s.webhookURL = url
		s.client = client
	}
}

func WithClock(clock clockwork.Clock) Option {
	return func(s *settings) {
		s.clock = clock
	}
}

// WithRegisterer sets where the submissions counter is registered.
// Nil leaves it unregistered.
func WithRegisterer(registerer prometheus.Registerer) Option {
	return func(s *settings) {
		s.registerer = registerer
	}
}
