package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

const (
	// DefaultMaxResponseSize is the default maximum response body size (10MB).
	DefaultMaxResponseSize int64 = 10 * 1024 * 1024

	// maxErrorBodySize bounds the body kept on a StatusError.
	maxErrorBodySize = 4 * 1024
)

var (
	// ErrResponseTooLarge is returned when the response body exceeds the maximum size.
	ErrResponseTooLarge = errors.New("response body exceeds maximum allowed size")
)

// StatusError is returned for responses outside the 2xx range.
type StatusError struct {
	StatusCode int
	Status     string
	Body       []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected response status: %d %s", e.StatusCode, e.StatusText())
}

// StatusText returns the reason phrase of the status code.
func (e *StatusError) StatusText() string {
	if text := http.StatusText(e.StatusCode); text != "" {
		return text
	}
	return e.Status
}

// MakeRequest performs an HTTP request and decodes a JSON success response into T.
// Non-2xx responses return a *StatusError. The response body is limited to
// DefaultMaxResponseSize (10MB).
func MakeRequest[T any](ctx context.Context, client HTTPClient, method, url string, headers map[string]string, payload io.Reader) (*T, error) {
	return MakeRequestWithLimit[T](ctx, client, method, url, headers, payload, DefaultMaxResponseSize)
}

// MakeRequestWithLimit performs an HTTP request with a custom response body size limit.
// Set maxBodySize to 0 or negative for no limit (not recommended).
func MakeRequestWithLimit[T any](ctx context.Context, client HTTPClient, method, url string, headers map[string]string, payload io.Reader, maxBodySize int64) (*T, error) {
	request, err := http.NewRequestWithContext(ctx, method, url, payload)
	if err != nil {
		return nil, err
	}

	for key, value := range headers {
		request.Header.Set(key, value)
	}

	response, err := client.Do(request)
	if err != nil {
		return nil, err
	}

	defer func() {
		_ = response.Body.Close()
	}()

	if response.StatusCode < 200 || response.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(response.Body, maxErrorBodySize))
		return nil, &StatusError{StatusCode: response.StatusCode, Status: response.Status, Body: body}
	}

	if response.StatusCode == http.StatusNoContent {
		return nil, nil
	}

	var bodyReader io.Reader = response.Body
	if maxBodySize > 0 {
		bodyReader = io.LimitReader(response.Body, maxBodySize+1)
	}

	body, err := io.ReadAll(bodyReader)
	if err != nil {
		return nil, err
	}

	if maxBodySize > 0 && int64(len(body)) > maxBodySize {
		return nil, ErrResponseTooLarge
	}

	if len(bytes.TrimSpace(body)) == 0 {
		return nil, nil
	}

	var successResponse T
	if err := json.Unmarshal(body, &successResponse); err != nil {
		return nil, err
	}
	return &successResponse, nil
}

// JSONBody encodes v as a request payload.
func JSONBody(v any) (io.Reader, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return bytes.NewReader(data), nil
}
