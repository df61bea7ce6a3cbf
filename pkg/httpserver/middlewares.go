package httpserver

import (
	"context"
	"net/http"
	"runtime/debug"
	"strings"
	"sync"
	"time"

	"github.com/JailtonJunior94/aeon-kit/pkg/apperrors"
	"github.com/JailtonJunior94/aeon-kit/pkg/observability"
	"github.com/JailtonJunior94/aeon-kit/pkg/responses"
	"github.com/google/uuid"
)

// ContextKey is a type for context keys to avoid collisions.
type ContextKey string

const (
	// ContextKeyRequestID is the context key for request ID.
	ContextKeyRequestID ContextKey = "request-id"

	// HeaderRequestID is propagated from the request or generated.
	HeaderRequestID = "X-Request-ID"
)

const (
	// FallbackMessage is the body message written when a handler panics.
	FallbackMessage = "Something went wrong"
	// FallbackDescription accompanies FallbackMessage in the details.
	FallbackDescription = "The application encountered a critical error. Please refresh the page."

	criticalErrorMessage = "Critical application error"
	boundaryNamespace    = "ErrorBoundary"

	codeRequestTimeout = "REQUEST_TIMEOUT"
	codeBodyTooLarge   = "REQUEST_TOO_LARGE"
)

// RequestID propagates the caller's X-Request-ID or generates a UUID.
// The ID is echoed in the response and stored in the context.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := sanitizeHeaderValue(strings.TrimSpace(r.Header.Get(HeaderRequestID)))
		if requestID == "" {
			requestID = uuid.New().String()
		}

		w.Header().Set(HeaderRequestID, requestID)
		ctx := context.WithValue(r.Context(), ContextKeyRequestID, requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetRequestID retrieves the request ID from the context.
// Returns an empty string if no request ID is found.
func GetRequestID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	requestID, _ := ctx.Value(ContextKeyRequestID).(string)
	return requestID
}

// Recovery is the error boundary of the server: a panic below it is logged as
// a critical application error and answered with a 500 fallback body, unless
// the handler already started the response.
func Recovery(logger observability.Logger) Middleware {
	boundary := logger.Child(boundaryNamespace)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rw := newResponseWriter(w)

			defer func() {
				recovered := recover()
				if recovered == nil {
					return
				}
				if recovered == http.ErrAbortHandler {
					panic(recovered)
				}

				ctx := r.Context()
				requestID := GetRequestID(ctx)
				boundary.Error(ctx, criticalErrorMessage,
					observability.Error(apperrors.Normalize(recovered)),
					observability.String("path", r.URL.Path),
					observability.String("method", r.Method),
					observability.String("request_id", requestID),
					observability.String("stack", string(debug.Stack())),
				)

				if rw.HeaderWritten() {
					boundary.Warn(ctx, "cannot send fallback response: headers already sent",
						observability.String("request_id", requestID),
					)
					return
				}
				writeFallback(w, requestID)
			}()

			next.ServeHTTP(rw, r)
		})
	}
}

func writeFallback(w http.ResponseWriter, requestID string) {
	responses.JSON(w, http.StatusInternalServerError, responses.ErrorBody{
		Code:      apperrors.CodeApp,
		Message:   FallbackMessage,
		Details:   apperrors.Context{apperrors.StringField("description", FallbackDescription)},
		RequestID: requestID,
	})
}

// sanitizeHeaderValue removes CR and LF characters to prevent HTTP header injection.
func sanitizeHeaderValue(value string) string {
	value = strings.ReplaceAll(value, "\r", "")
	value = strings.ReplaceAll(value, "\n", "")
	return value
}

// CORS is a middleware that adds CORS headers to responses.
// All header values are sanitized to prevent CRLF injection.
func CORS(allowedOrigins, allowedMethods, allowedHeaders string) Middleware {
	origins := sanitizeHeaderValue(allowedOrigins)
	methods := sanitizeHeaderValue(allowedMethods)
	headers := sanitizeHeaderValue(allowedHeaders)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", origins)
			w.Header().Set("Access-Control-Allow-Methods", methods)
			w.Header().Set("Access-Control-Allow-Headers", headers)

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// SecurityHeaders is a middleware that adds common security headers.
func SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		w.Header().Set("Content-Security-Policy", "default-src 'self'; img-src 'self' https://images.unsplash.com https://via.placeholder.com")

		next.ServeHTTP(w, r)
	})
}

// BodyLimit rejects requests whose declared length exceeds maxBytes and caps
// the body reader for the rest.
func BodyLimit(maxBytes int64) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > maxBytes {
				responses.FromError(w, apperrors.New("Request body too large",
					apperrors.WithCode(codeBodyTooLarge),
					apperrors.WithStatusCode(http.StatusRequestEntityTooLarge),
					apperrors.WithContext(apperrors.IntField("max_bytes", int(maxBytes))),
				), GetRequestID(r.Context()))
				return
			}

			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			next.ServeHTTP(w, r)
		})
	}
}

// Timeout cancels the request context after timeout and answers 504 if the
// handler has not written anything yet. Handlers must honor ctx.Done().
func Timeout(timeout time.Duration, logger observability.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), timeout)
			defer cancel()

			tw := &timeoutWriter{ResponseWriter: w, header: make(http.Header)}

			done := make(chan struct{})
			panicked := make(chan any, 1)
			go func() {
				defer close(done)
				defer func() {
					if recovered := recover(); recovered != nil {
						panicked <- recovered
					}
				}()
				next.ServeHTTP(tw, r.WithContext(ctx))
			}()

			select {
			case <-done:
				select {
				case recovered := <-panicked:
					// surface to Recovery on the serving goroutine
					panic(recovered)
				default:
				}
				tw.flushHeader()
			case <-ctx.Done():
				tw.mu.Lock()
				if tw.wroteHeader {
					tw.mu.Unlock()
					// the handler owns the response; let it finish writing
					<-done
					return
				}
				tw.timedOut = true
				defer tw.mu.Unlock()

				requestID := GetRequestID(r.Context())
				logger.Warn(r.Context(), "request timeout exceeded",
					observability.String("request_id", requestID),
					observability.String("path", r.URL.Path),
				)
				responses.FromError(w, apperrors.New("Request timeout exceeded",
					apperrors.WithCode(codeRequestTimeout),
					apperrors.WithStatusCode(http.StatusGatewayTimeout),
				), requestID)
			}
		})
	}
}

// timeoutWriter buffers the handler's headers in its own map and copies them
// to the underlying writer only when the header is written, under mu. The
// handler goroutine never touches the underlying header map directly.
type timeoutWriter struct {
	http.ResponseWriter
	header      http.Header
	mu          sync.Mutex
	wroteHeader bool
	timedOut    bool
}

func (tw *timeoutWriter) Header() http.Header {
	return tw.header
}

func (tw *timeoutWriter) WriteHeader(code int) {
	tw.mu.Lock()
	defer tw.mu.Unlock()
	if tw.timedOut || tw.wroteHeader {
		return
	}
	tw.writeHeaderLocked(code)
}

func (tw *timeoutWriter) Write(b []byte) (int, error) {
	tw.mu.Lock()
	defer tw.mu.Unlock()
	if tw.timedOut {
		return 0, http.ErrHandlerTimeout
	}
	if !tw.wroteHeader {
		tw.writeHeaderLocked(http.StatusOK)
	}
	return tw.ResponseWriter.Write(b)
}

// flushHeader sends headers set by a handler that returned without writing.
func (tw *timeoutWriter) flushHeader() {
	tw.mu.Lock()
	defer tw.mu.Unlock()
	if tw.timedOut || tw.wroteHeader || len(tw.header) == 0 {
		return
	}
	tw.wroteHeader = true
	copyHeader(tw.ResponseWriter.Header(), tw.header)
}

func (tw *timeoutWriter) writeHeaderLocked(code int) {
	tw.wroteHeader = true
	copyHeader(tw.ResponseWriter.Header(), tw.header)
	tw.ResponseWriter.WriteHeader(code)
}

func copyHeader(dst, src http.Header) {
	for key, values := range src {
		dst[key] = append([]string(nil), values...)
	}
}
