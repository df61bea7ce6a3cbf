package unsplash

import (
	"strings"

	"github.com/JailtonJunior94/aeon-kit/pkg/httpclient"
)

type Option func(*settings)

type settings struct {
	baseURL string
	client  httpclient.HTTPClient
}

// WithBaseURL overrides DefaultBaseURL. Blank values are ignored.
func WithBaseURL(baseURL string) Option {
	return func(s *settings) {
		if trimmed := strings.TrimRight(strings.TrimSpace(baseURL), "/"); trimmed != "" {
			s.baseURL = trimmed
		}
	}
}

// WithHTTPClient replaces the default retrying client.
func WithHTTPClient(client httpclient.HTTPClient) Option {
	return func(s *settings) {
		s.client = client
	}
}
