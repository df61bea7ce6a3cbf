package httpclient

import (
	"errors"
	"time"
)

const (
	// DefaultTimeout is the default timeout for all HTTP requests.
	// Can be overridden per-request using context.WithTimeout.
	DefaultTimeout = 30 * time.Second

	// DefaultMaxRequestBodySize is the maximum request body size for retry buffering.
	DefaultMaxRequestBodySize = 10 * 1024 * 1024 // 10MB

	// DefaultMaxDrainSize is the maximum amount drained from a response body
	// before closing it during retry.
	DefaultMaxDrainSize = 1 * 1024 * 1024 // 1MB

	// DefaultRetryInterval is the first backoff interval of WithRetry.
	DefaultRetryInterval = 200 * time.Millisecond

	// MaxRetryAttempts is the maximum allowed number of attempts per request.
	MaxRetryAttempts = 10

	// MaxRetryInterval caps the exponential backoff between attempts.
	MaxRetryInterval = 30 * time.Second
)

// ErrRequestBodyTooLarge is returned when request body exceeds maxBodySize
// and cannot be buffered for retry.
var ErrRequestBodyTooLarge = errors.New("request body exceeds maximum allowed size for retry buffering")
