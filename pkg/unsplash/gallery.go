package unsplash

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
)

const (
	placeholderBaseURL = "https://via.placeholder.com"
	placeholderText    = "Image"
	placeholderAlt     = "Placeholder image"
	placeholderUser    = "Placeholder"
)

// ErrFetchFailed is reported by a Gallery built from placeholders.
//
//nolint:staticcheck // user-facing message
var ErrFetchFailed = errors.New("Failed to fetch photos from Unsplash API")

// PhotoSource is implemented by *Client.
type PhotoSource interface {
	RandomPhotos(ctx context.Context, query string, count int) []Photo
	SearchPhotos(ctx context.Context, query string, page, perPage int) *SearchResult
}

// Gallery is what the site renders: real photos, or placeholders with Err set.
type Gallery struct {
	Photos       []Photo `json:"photos"`
	TotalResults int     `json:"total_results"`
	TotalPages   int     `json:"total_pages"`
	Placeholder  bool    `json:"placeholder"`
	Err          error   `json:"-"`
}

// Random fetches count random photos, falling back to count placeholders.
// count is clamped to 1..30, the API limit per request.
func Random(ctx context.Context, source PhotoSource, query string, count int) Gallery {
	count = clamp(count, 1, maxPerRequest)
	if photos := source.RandomPhotos(ctx, query, count); photos != nil {
		return Gallery{Photos: photos, TotalResults: len(photos), TotalPages: 1}
	}

	text, alt := query, query
	if text == "" {
		text, alt = placeholderText, placeholderAlt
	}
	return Gallery{
		Photos:       placeholders(count, text, alt),
		TotalResults: count,
		TotalPages:   1,
		Placeholder:  true,
		Err:          ErrFetchFailed,
	}
}

// Search fetches one page for query. A blank query yields an empty gallery
// without calling the API; failures fall back to perPage placeholders.
func Search(ctx context.Context, source PhotoSource, query string, page, perPage int) Gallery {
	if strings.TrimSpace(query) == "" {
		return Gallery{Photos: []Photo{}}
	}
	if perPage <= 0 {
		perPage = defaultPerPage
	}
	perPage = clamp(perPage, 1, maxPerRequest)

	if result := source.SearchPhotos(ctx, query, page, perPage); result != nil {
		photos := result.Results
		if photos == nil {
			photos = []Photo{}
		}
		return Gallery{Photos: photos, TotalResults: result.Total, TotalPages: result.TotalPages}
	}

	return Gallery{
		Photos:       placeholders(perPage, query, query),
		TotalResults: perPage,
		TotalPages:   1,
		Placeholder:  true,
		Err:          ErrFetchFailed,
	}
}

// PlaceholderImage returns a placeholder image URL. Non-positive sizes default
// to 800x600 and a blank text to "Image".
func PlaceholderImage(width, height int, text string) string {
	if width <= 0 {
		width = 800
	}
	if height <= 0 {
		height = 600
	}
	if text == "" {
		text = placeholderText
	}
	escaped := strings.ReplaceAll(url.QueryEscape(text), "+", "%20")
	return fmt.Sprintf("%s/%dx%d?text=%s", placeholderBaseURL, width, height, escaped)
}

func placeholders(n int, text, alt string) []Photo {
	photos := make([]Photo, n)
	for i := range photos {
		description := alt
		altDescription := alt
		photos[i] = Photo{
			ID: fmt.Sprintf("placeholder-%d", i),
			URLs: PhotoURLs{
				Raw:     PlaceholderImage(1200, 800, text),
				Full:    PlaceholderImage(1200, 800, text),
				Regular: PlaceholderImage(800, 600, text),
				Small:   PlaceholderImage(400, 300, text),
				Thumb:   PlaceholderImage(200, 150, text),
			},
			AltDescription: &altDescription,
			Description:    &description,
			User:           PhotoUser{Name: placeholderUser, Username: strings.ToLower(placeholderUser)},
		}
	}
	return photos
}
