package httpclient

import (
	"net/http"
	"time"
)

// ClientOption configures a Client.
type ClientOption func(*clientSettings)

type retrySettings struct {
	maxAttempts int
	interval    time.Duration
	policy      RetryPolicy
}

type clientSettings struct {
	timeout       time.Duration
	maxBodySize   int64
	baseTransport http.RoundTripper
	retry         retrySettings
}

func defaultSettings() clientSettings {
	return clientSettings{
		timeout:       DefaultTimeout,
		maxBodySize:   DefaultMaxRequestBodySize,
		baseTransport: http.DefaultTransport,
		retry: retrySettings{
			maxAttempts: 1,
			interval:    DefaultRetryInterval,
			policy:      DefaultRetryPolicy,
		},
	}
}

// WithClientTimeout sets the default timeout for all requests.
// Default: 30 seconds (DefaultTimeout).
func WithClientTimeout(timeout time.Duration) ClientOption {
	return func(s *clientSettings) {
		if timeout > 0 {
			s.timeout = timeout
		}
	}
}

// WithMaxBodySize sets the maximum request body size for retry buffering.
// Default: 10MB (DefaultMaxRequestBodySize).
func WithMaxBodySize(size int64) ClientOption {
	return func(s *clientSettings) {
		if size >= 0 {
			s.maxBodySize = size
		}
	}
}

// WithBaseTransport sets a custom base transport, wrapped by the retry layer.
func WithBaseTransport(transport http.RoundTripper) ClientOption {
	return func(s *clientSettings) {
		if transport != nil {
			s.baseTransport = transport
		}
	}
}

// WithRetry retries requests the policy accepts, up to maxAttempts attempts in
// total, waiting an exponentially growing interval starting at interval.
// maxAttempts is clamped to MaxRetryAttempts; a nil policy keeps DefaultRetryPolicy.
//
// Example:
//
//	client := httpclient.NewClient(logger,
//	    httpclient.WithRetry(3, 200*time.Millisecond, httpclient.DefaultRetryPolicy),
//	)
func WithRetry(maxAttempts int, interval time.Duration, policy RetryPolicy) ClientOption {
	return func(s *clientSettings) {
		if maxAttempts > MaxRetryAttempts {
			maxAttempts = MaxRetryAttempts
		}
		if maxAttempts > 0 {
			s.retry.maxAttempts = maxAttempts
		}
		if interval > 0 {
			s.retry.interval = interval
		}
		if policy != nil {
			s.retry.policy = policy
		}
	}
}
