package httpclient

import (
	"context"
	"errors"
	"net/http"
)

// RetryPolicy determines if a request should be retried.
// It receives the error (if any) and response (if any).
type RetryPolicy func(err error, resp *http.Response) bool

// DefaultRetryPolicy retries on network errors and 5xx server errors.
// Does NOT retry on 4xx client errors or on context cancellation and timeouts.
var DefaultRetryPolicy RetryPolicy = func(err error, resp *http.Response) bool {
	if err != nil {
		return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
	}

	if resp == nil {
		return false
	}

	return resp.StatusCode >= 500
}

// IdempotentRetryPolicy also retries rate limiting (429).
// Use it only for safe or idempotent methods.
var IdempotentRetryPolicy RetryPolicy = func(err error, resp *http.Response) bool {
	if DefaultRetryPolicy(err, resp) {
		return true
	}
	return err == nil && resp != nil && resp.StatusCode == http.StatusTooManyRequests
}

// NoRetryPolicy never retries.
var NoRetryPolicy RetryPolicy = func(err error, resp *http.Response) bool {
	return false
}
