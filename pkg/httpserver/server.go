package httpserver

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/JailtonJunior94/aeon-kit/pkg/apperrors"
	"github.com/JailtonJunior94/aeon-kit/pkg/observability"
	"github.com/JailtonJunior94/aeon-kit/pkg/responses"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type (
	// Server defines the HTTP server interface.
	Server interface {
		// Run starts the server and returns a shutdown function.
		Run() Shutdown
		// RegisterRoute adds a route to the server.
		// Routes registered after Run() are available immediately.
		RegisterRoute(route Route)
		// ShutdownListener returns a channel that receives the server's
		// termination error (or nil if shutdown was clean).
		ShutdownListener() chan error
		// ServeHTTP implements http.Handler for testing purposes.
		ServeHTTP(http.ResponseWriter, *http.Request)
	}

	server struct {
		http.Server
		router           *chi.Mux
		shutdownListener chan error
		errorHandler     ErrorHandler
		logger           observability.Logger
		mu               sync.Mutex
	}

	// Shutdown is a function that gracefully shuts down the server.
	Shutdown func(ctx context.Context) error
	// Middleware is a function that wraps an http.Handler.
	Middleware func(handler http.Handler) http.Handler
	// Handler is a function that handles HTTP requests and may return an error.
	// Errors returned are passed to the ErrorHandler.
	Handler func(w http.ResponseWriter, req *http.Request) error
	// ErrorHandler handles errors returned by route Handlers.
	ErrorHandler func(ctx context.Context, w http.ResponseWriter, err error)

	// Route defines an HTTP route with its handler and middlewares.
	Route struct {
		Path        string
		Method      string
		Handler     Handler
		Middlewares []Middleware
	}
)

// New creates a new HTTP server with the given options.
// Default configuration:
//   - Port: 8080
//   - ReadTimeout: 15s
//   - WriteTimeout: 15s
//   - IdleTimeout: 60s
//   - ReadHeaderTimeout: 5s
//   - MaxHeaderBytes: 1MB
//
// Unknown routes and methods are answered through the error handler with
// NotFoundError and a 405 AppError.
func New(options ...Option) Server {
	settings := defaultSettings()
	for _, option := range options {
		settings = option(settings)
	}

	if settings.errorHandler == nil {
		settings.errorHandler = DefaultErrorHandler(settings.logger)
	}

	router := chi.NewRouter()

	srv := &server{
		Server: http.Server{
			Addr:              fmt.Sprintf(":%s", settings.port),
			Handler:           Middlewares(router, settings.globalMiddlewares...),
			ReadTimeout:       settings.readTimeout,
			WriteTimeout:      settings.writeTimeout,
			IdleTimeout:       settings.idleTimeout,
			ReadHeaderTimeout: settings.readHeaderTimeout,
			MaxHeaderBytes:    settings.maxHeaderBytes,
		},
		router:           router,
		shutdownListener: make(chan error, 1),
		errorHandler:     settings.errorHandler,
		logger:           settings.logger,
	}

	router.NotFound(newErrorHandler(srv.errorHandler, notFound))
	router.MethodNotAllowed(newErrorHandler(srv.errorHandler, methodNotAllowed))

	if settings.healthChecks != nil {
		srv.registerRoute(NewRoute(http.MethodGet, "/health", healthHandler(settings.healthChecks, settings.logger)))
	}

	if settings.metricsGatherer != nil {
		metrics := promhttp.HandlerFor(settings.metricsGatherer, promhttp.HandlerOpts{})
		router.Method(http.MethodGet, "/metrics", metrics)
	}

	for _, route := range settings.routes {
		srv.registerRoute(route)
	}

	return srv
}

// ShutdownListener returns a channel that receives server termination errors.
func (s *server) ShutdownListener() chan error {
	return s.shutdownListener
}

// Run starts the HTTP server in a goroutine and returns a shutdown function.
func (s *server) Run() Shutdown {
	go func() {
		s.logger.Info(context.Background(), "HTTP server listening", observability.String("addr", s.Server.Addr))
		err := s.Server.ListenAndServe()
		if err == nil || errors.Is(err, http.ErrServerClosed) {
			s.shutdownListener <- nil
			return
		}
		s.shutdownListener <- err
	}()
	return s.Server.Shutdown
}

// ServeHTTP implements http.Handler for testing purposes.
func (s *server) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	s.Server.Handler.ServeHTTP(w, req)
}

// NewRoute creates a new Route with the given parameters.
func NewRoute(method, path string, handler Handler, middlewares ...Middleware) Route {
	return Route{
		Path:        path,
		Method:      method,
		Handler:     handler,
		Middlewares: middlewares,
	}
}

// Middlewares wraps a handler with the given middlewares.
// The first middleware in the list is the outermost wrapper.
func Middlewares(main http.Handler, middlewares ...Middleware) http.Handler {
	handler := main
	for i := len(middlewares) - 1; i >= 0; i-- {
		handler = middlewares[i](handler)
	}
	return handler
}

// RegisterRoute adds a route to the server.
// This method is thread-safe and can be called after Run().
func (s *server) RegisterRoute(route Route) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.registerRoute(route)
}

func (s *server) registerRoute(route Route) {
	s.router.Method(
		route.Method,
		route.Path,
		Middlewares(
			newErrorHandler(s.errorHandler, route.Handler),
			route.Middlewares...,
		),
	)
}

// DefaultErrorHandler writes err as {"code","message","details"} with the status it carries.
// Server errors are logged with their stack; client errors at warn level.
func DefaultErrorHandler(logger observability.Logger) ErrorHandler {
	return func(ctx context.Context, w http.ResponseWriter, err error) {
		requestID := GetRequestID(ctx)
		status := apperrors.StatusCode(err)
		fields := []observability.Field{
			observability.String("request_id", requestID),
			observability.Int("status", status),
			observability.String("code", apperrors.Code(err)),
		}

		if status >= http.StatusInternalServerError {
			logger.Err(ctx, err, fields...)
		} else {
			logger.Warn(ctx, "request failed", append(fields, observability.Error(err))...)
		}

		responses.FromError(w, err, requestID)
	}
}

// newErrorHandler wraps a Handler to handle errors using the ErrorHandler.
func newErrorHandler(errorHandler ErrorHandler, handler Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		err := handler(w, req)
		if err == nil {
			return
		}
		errorHandler(req.Context(), w, err)
	}
}

func notFound(w http.ResponseWriter, req *http.Request) error {
	return apperrors.NewNotFound("Route not found",
		apperrors.WithContext(
			apperrors.StringField("method", req.Method),
			apperrors.StringField("path", req.URL.Path),
		),
	)
}

func methodNotAllowed(w http.ResponseWriter, req *http.Request) error {
	return apperrors.New("Method not allowed",
		apperrors.WithCode("METHOD_NOT_ALLOWED"),
		apperrors.WithStatusCode(http.StatusMethodNotAllowed),
		apperrors.WithContext(apperrors.StringField("method", req.Method)),
	)
}

// GetShutdownTimeout returns a context with the default shutdown timeout.
func GetShutdownTimeout() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), defaultShutdownTimeout)
}
