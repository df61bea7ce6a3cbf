// Package site exposes the aeon site API over pkg/httpserver.
package site

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/JailtonJunior94/aeon-kit/pkg/apperrors"
	"github.com/JailtonJunior94/aeon-kit/pkg/contact"
	"github.com/JailtonJunior94/aeon-kit/pkg/form"
	"github.com/JailtonJunior94/aeon-kit/pkg/httpserver"
	"github.com/JailtonJunior94/aeon-kit/pkg/observability"
	"github.com/JailtonJunior94/aeon-kit/pkg/responses"
	"github.com/JailtonJunior94/aeon-kit/pkg/unsplash"
	"github.com/go-chi/chi/v5"
)

const codeInvalidRequest = "INVALID_REQUEST"

// ContactSubmitter is implemented by *contact.Service.
type ContactSubmitter interface {
	Submit(ctx context.Context, f form.ContactForm) (contact.Receipt, error)
}

// PhotoAPI is implemented by *unsplash.Client.
type PhotoAPI interface {
	unsplash.PhotoSource
	PhotoByID(ctx context.Context, id string) *unsplash.Photo
}

type Handler struct {
	contact ContactSubmitter
	photos  PhotoAPI
	logger  observability.Logger
}

// GalleryResponse is the body of the photo listing endpoints.
type GalleryResponse struct {
	Photos       []unsplash.Photo `json:"photos"`
	TotalResults int              `json:"total_results"`
	TotalPages   int              `json:"total_pages"`
	Placeholder  bool             `json:"placeholder"`
	Error        string           `json:"error,omitempty"`
}

func NewHandler(logger observability.Logger, submitter ContactSubmitter, photos PhotoAPI) *Handler {
	return &Handler{
		contact: submitter,
		photos:  photos,
		logger:  logger.Child("SiteAPI"),
	}
}

// Routes returns the API routes.
func (h *Handler) Routes() []httpserver.Route {
	return []httpserver.Route{
		httpserver.NewRoute(http.MethodPost, "/api/contact", h.SubmitContact),
		httpserver.NewRoute(http.MethodGet, "/api/photos/random", h.RandomPhotos),
		httpserver.NewRoute(http.MethodGet, "/api/photos/search", h.SearchPhotos),
		httpserver.NewRoute(http.MethodGet, "/api/photos/{id}", h.PhotoByID),
	}
}

func (h *Handler) SubmitContact(w http.ResponseWriter, r *http.Request) error {
	var payload form.ContactForm
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		return invalidRequest("Invalid request body", err)
	}

	receipt, err := h.contact.Submit(r.Context(), payload)
	if err != nil {
		return err
	}

	responses.JSON(w, http.StatusCreated, receipt)
	return nil
}

func (h *Handler) RandomPhotos(w http.ResponseWriter, r *http.Request) error {
	query := r.URL.Query().Get("query")
	count, err := intParam(r, "count", 1)
	if err != nil {
		return err
	}

	h.writeGallery(w, r, unsplash.Random(r.Context(), h.photos, query, count))
	return nil
}

func (h *Handler) SearchPhotos(w http.ResponseWriter, r *http.Request) error {
	query := r.URL.Query().Get("query")
	page, err := intParam(r, "page", 1)
	if err != nil {
		return err
	}
	perPage, err := intParam(r, "per_page", 10)
	if err != nil {
		return err
	}

	h.writeGallery(w, r, unsplash.Search(r.Context(), h.photos, query, page, perPage))
	return nil
}

func (h *Handler) PhotoByID(w http.ResponseWriter, r *http.Request) error {
	id := chi.URLParam(r, "id")

	photo := h.photos.PhotoByID(r.Context(), id)
	if photo == nil {
		return apperrors.NewNotFound("Photo not found",
			apperrors.WithContext(apperrors.StringField("id", id)),
		)
	}

	responses.JSON(w, http.StatusOK, photo)
	return nil
}

func (h *Handler) writeGallery(w http.ResponseWriter, r *http.Request, gallery unsplash.Gallery) {
	body := GalleryResponse{
		Photos:       gallery.Photos,
		TotalResults: gallery.TotalResults,
		TotalPages:   gallery.TotalPages,
		Placeholder:  gallery.Placeholder,
	}
	if gallery.Err != nil {
		body.Error = gallery.Err.Error()
		h.logger.Warn(r.Context(), "serving placeholder photos",
			observability.String("path", r.URL.Path),
			observability.String("request_id", httpserver.GetRequestID(r.Context())),
		)
	}

	responses.JSON(w, http.StatusOK, body)
}

func intParam(r *http.Request, name string, defaultValue int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return defaultValue, nil
	}

	value, err := strconv.Atoi(raw)
	if err != nil || value < 1 {
		return 0, apperrors.NewValidation("Invalid query parameter",
			apperrors.WithCode(codeInvalidRequest),
			apperrors.WithContext(apperrors.ErrorsField(apperrors.ErrorsKey, []apperrors.FieldError{
				{Path: name, Message: name + " must be a positive integer"},
			})),
		)
	}
	return value, nil
}

func invalidRequest(message string, cause error) error {
	detail := cause.Error()
	if errors.Is(cause, io.EOF) {
		detail = "request body is empty"
	}

	return apperrors.NewValidation(message,
		apperrors.WithCode(codeInvalidRequest),
		apperrors.WithCause(cause),
		apperrors.WithContext(apperrors.StringField("reason", detail)),
	)
}
