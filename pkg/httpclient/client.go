package httpclient

import (
	"net/http"
	"time"

	"github.com/JailtonJunior94/aeon-kit/pkg/observability"
)

// HTTPClient is satisfied by *http.Client and *Client.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client is an http.Client whose transport optionally retries transient failures.
type Client struct {
	client *http.Client
}

// NewClient creates a client. Without WithRetry every request is attempted once.
func NewClient(logger observability.Logger, opts ...ClientOption) *Client {
	settings := defaultSettings()
	for _, opt := range opts {
		opt(&settings)
	}

	transport := settings.baseTransport
	if settings.retry.maxAttempts > 1 {
		transport = &retryTransport{
			base:        transport,
			maxAttempts: settings.retry.maxAttempts,
			interval:    settings.retry.interval,
			policy:      settings.retry.policy,
			maxBodySize: settings.maxBodySize,
			logger:      logger.Child("HTTPClient"),
		}
	}

	return &Client{
		client: &http.Client{
			Transport: transport,
			Timeout:   settings.timeout,
		},
	}
}

// NewHTTPClientWithTimeout creates a plain client without retries.
func NewHTTPClientWithTimeout(timeout time.Duration) HTTPClient {
	return &http.Client{
		Timeout: timeout,
	}
}

// Do sends req through the configured transport.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	return c.client.Do(req)
}
