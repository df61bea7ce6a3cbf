package httpclient

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/JailtonJunior94/aeon-kit/pkg/observability"
	"github.com/cenkalti/backoff/v4"
)

// retryTransport replays requests with exponential backoff while the policy asks for it.
// Request bodies are buffered (up to maxBodySize) so every attempt sends the same payload.
type retryTransport struct {
	base        http.RoundTripper
	maxAttempts int
	interval    time.Duration
	policy      RetryPolicy
	maxBodySize int64
	logger      observability.Logger
}

// retryableStatusError marks an attempt that returned a response the policy rejected.
type retryableStatusError struct {
	statusCode int
}

func (e *retryableStatusError) Error() string {
	return fmt.Sprintf("retryable status %d", e.statusCode)
}

// RoundTrip implements http.RoundTripper without mutating the original request.
// When attempts run out on a retryable status, the last response is returned as is.
func (t *retryTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx := req.Context()

	bodyBytes, err := t.bufferBody(req)
	if err != nil {
		return nil, err
	}

	var (
		resp    *http.Response
		attempt int
	)

	operation := func() error {
		t.drainBody(resp)
		resp = nil
		attempt++

		attemptReq := req
		if bodyBytes != nil {
			attemptReq = cloneRequest(req, bodyBytes)
		}

		r, err := t.base.RoundTrip(attemptReq)
		if !t.policy(err, r) {
			resp = r
			if err != nil {
				return backoff.Permanent(err)
			}
			return nil
		}

		if err != nil {
			return err
		}

		resp = r
		return &retryableStatusError{statusCode: r.StatusCode}
	}

	notify := func(err error, wait time.Duration) {
		t.logger.Warn(ctx, "retrying request",
			observability.String("method", req.Method),
			observability.String("url", req.URL.Redacted()),
			observability.Int("attempt", attempt),
			observability.String("reason", err.Error()),
			observability.String("backoff", wait.String()),
		)
	}

	err = backoff.RetryNotify(operation, t.backOff(req), notify)
	if err == nil {
		return resp, nil
	}

	var statusErr *retryableStatusError
	if errors.As(err, &statusErr) && resp != nil && ctx.Err() == nil {
		return resp, nil
	}

	t.drainBody(resp)
	return nil, err
}

func (t *retryTransport) backOff(req *http.Request) backoff.BackOff {
	exponential := backoff.NewExponentialBackOff()
	exponential.InitialInterval = t.interval
	exponential.MaxInterval = MaxRetryInterval
	exponential.MaxElapsedTime = 0

	return backoff.WithContext(backoff.WithMaxRetries(exponential, uint64(t.maxAttempts-1)), req.Context())
}

// cloneRequest creates a shallow copy of the request with a fresh body.
func cloneRequest(req *http.Request, bodyBytes []byte) *http.Request {
	cloned := req.Clone(req.Context())
	cloned.Body = io.NopCloser(bytes.NewReader(bodyBytes))
	cloned.GetBody = func() (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(bodyBytes)), nil
	}
	return cloned
}

// bufferBody reads and closes the request body.
// Returns ErrRequestBodyTooLarge if body exceeds maxBodySize.
func (t *retryTransport) bufferBody(req *http.Request) ([]byte, error) {
	if req.Body == nil || req.Body == http.NoBody {
		return nil, nil
	}

	defer req.Body.Close()

	limitedReader := io.LimitReader(req.Body, t.maxBodySize+1)
	bodyBytes, err := io.ReadAll(limitedReader)
	if err != nil {
		return nil, fmt.Errorf("failed to read request body: %w", err)
	}

	if int64(len(bodyBytes)) > t.maxBodySize {
		return nil, ErrRequestBodyTooLarge
	}

	return bodyBytes, nil
}

// drainBody drains and closes response body to prevent connection leaks.
func (t *retryTransport) drainBody(resp *http.Response) {
	if resp == nil || resp.Body == nil {
		return
	}

	_, _ = io.CopyN(io.Discard, resp.Body, DefaultMaxDrainSize)
	_ = resp.Body.Close()
}
