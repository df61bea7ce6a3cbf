// Package unsplash reads photos from the Unsplash API. Every call runs behind
// a recover boundary: failures are logged and reported as a nil result.
package unsplash

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/JailtonJunior94/aeon-kit/pkg/apperrors"
	"github.com/JailtonJunior94/aeon-kit/pkg/httpclient"
	"github.com/JailtonJunior94/aeon-kit/pkg/observability"
	"github.com/JailtonJunior94/aeon-kit/pkg/safe"
)

const (
	DefaultBaseURL = "https://api.unsplash.com"

	pathRandom = "/photos/random"
	pathSearch = "/search/photos"
	pathPhoto  = "/photos/"

	maxPerRequest  = 30
	defaultPerPage = 10
)

type Client struct {
	baseURL   string
	accessKey string
	client    httpclient.HTTPClient
	logger    observability.Logger
}

// NewClient creates a client authenticated with accessKey.
func NewClient(logger observability.Logger, accessKey string, opts ...Option) *Client {
	s := settings{baseURL: DefaultBaseURL}
	for _, opt := range opts {
		opt(&s)
	}

	namespaced := logger.Child("UnsplashAPI")
	if s.client == nil {
		s.client = httpclient.NewClient(namespaced, httpclient.WithRetry(3, httpclient.DefaultRetryInterval, httpclient.IdempotentRetryPolicy))
	}

	return &Client{
		baseURL:   s.baseURL,
		accessKey: accessKey,
		client:    s.client,
		logger:    namespaced,
	}
}

// RandomPhotos returns up to count random photos, optionally matching query.
// A nil slice means the request failed.
func (c *Client) RandomPhotos(ctx context.Context, query string, count int) []Photo {
	params := url.Values{}
	params.Set("count", strconv.Itoa(clamp(count, 1, maxPerRequest)))
	if query != "" {
		params.Set("query", query)
	}

	photos, _ := safe.TryCatchAsync(ctx, c.logger, func(ctx context.Context) ([]Photo, error) {
		raw, err := get[json.RawMessage](ctx, c, pathRandom, params)
		if err != nil {
			return nil, err
		}
		return decodeOneOrMany(*raw)
	}, failedHandler(c, ctx, "Failed to get random photos from Unsplash", []Photo(nil)))

	return photos
}

// SearchPhotos returns one page of results for query. Nil means the request failed.
func (c *Client) SearchPhotos(ctx context.Context, query string, page, perPage int) *SearchResult {
	if perPage <= 0 {
		perPage = defaultPerPage
	}
	params := url.Values{}
	params.Set("query", query)
	params.Set("page", strconv.Itoa(max(page, 1)))
	params.Set("per_page", strconv.Itoa(clamp(perPage, 1, maxPerRequest)))

	result, _ := safe.TryCatchAsync(ctx, c.logger, func(ctx context.Context) (*SearchResult, error) {
		return get[SearchResult](ctx, c, pathSearch, params)
	}, failedHandler(c, ctx, "Failed to search photos on Unsplash", (*SearchResult)(nil)))

	return result
}

// PhotoByID returns a single photo. Nil means the request failed.
func (c *Client) PhotoByID(ctx context.Context, id string) *Photo {
	photo, _ := safe.TryCatchAsync(ctx, c.logger, func(ctx context.Context) (*Photo, error) {
		return get[Photo](ctx, c, pathPhoto+url.PathEscape(id), url.Values{})
	}, failedHandler(c, ctx, "Failed to get photo by ID from Unsplash", (*Photo)(nil)))

	return photo
}

func failedHandler[T any](c *Client, ctx context.Context, message string, zero T) safe.Handler[T] {
	return func(err error) T {
		c.logger.Error(ctx, message, observability.Error(err))
		return zero
	}
}

func get[T any](ctx context.Context, c *Client, path string, params url.Values) (*T, error) {
	endpoint := c.baseURL + path
	if encoded := params.Encode(); encoded != "" {
		endpoint += "?" + encoded
	}

	headers := map[string]string{
		"Authorization":  "Client-ID " + c.accessKey,
		"Accept-Version": "v1",
	}

	result, err := httpclient.MakeRequest[T](ctx, c.client, http.MethodGet, endpoint, headers, nil)
	if err != nil {
		return nil, apiError(err)
	}
	if result == nil {
		return nil, apperrors.NewAPI("Unsplash API returned an empty response")
	}
	return result, nil
}

func apiError(err error) error {
	var statusErr *httpclient.StatusError
	if !errors.As(err, &statusErr) {
		return err
	}
	return apperrors.NewAPI(
		fmt.Sprintf("Unsplash API error: %d %s", statusErr.StatusCode, statusErr.StatusText()),
		apperrors.WithStatusCode(http.StatusBadGateway),
		apperrors.WithCause(err),
		apperrors.WithContext(apperrors.IntField("status", statusErr.StatusCode)),
	)
}

// decodeOneOrMany accepts both the array returned when count is set and a single object.
func decodeOneOrMany(raw json.RawMessage) ([]Photo, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var photos []Photo
		if err := json.Unmarshal(trimmed, &photos); err != nil {
			return nil, err
		}
		return photos, nil
	}

	var photo Photo
	if err := json.Unmarshal(trimmed, &photo); err != nil {
		return nil, err
	}
	return []Photo{photo}, nil
}

func clamp(value, lower, upper int) int {
	return min(max(value, lower), upper)
}
