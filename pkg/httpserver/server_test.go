package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/JailtonJunior94/aeon-kit/pkg/apperrors"
	"github.com/JailtonJunior94/aeon-kit/pkg/observability"
	"github.com/JailtonJunior94/aeon-kit/pkg/observability/fake"
	"github.com/JailtonJunior94/aeon-kit/pkg/responses"
	"github.com/prometheus/client_golang/prometheus"
)

func decodeErrorBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON body %q: %v", rec.Body.String(), err)
	}
	return body
}

func TestNew_DefaultSettings(t *testing.T) {
	s := New().(*server)

	if s.Server.Addr != ":8080" {
		t.Errorf("expected default port 8080, got %s", s.Server.Addr)
	}
	if s.Server.ReadTimeout != 15*time.Second {
		t.Errorf("expected ReadTimeout 15s, got %v", s.Server.ReadTimeout)
	}
	if s.Server.MaxHeaderBytes != 1<<20 {
		t.Errorf("expected MaxHeaderBytes 1MB, got %d", s.Server.MaxHeaderBytes)
	}
}

func TestNew_WithPort(t *testing.T) {
	s := New(WithPort("3000")).(*server)
	if s.Server.Addr != ":3000" {
		t.Errorf("expected port 3000, got %s", s.Server.Addr)
	}
}

func TestNew_RoutesAndRouteMiddlewares(t *testing.T) {
	routeMiddlewareCalls := 0
	routeMiddleware := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			routeMiddlewareCalls++
			next.ServeHTTP(w, r)
		})
	}
	ok := func(w http.ResponseWriter, r *http.Request) error {
		w.WriteHeader(http.StatusOK)
		return nil
	}

	srv := New(WithRoutes(
		NewRoute(http.MethodGet, "/api/photos/random", ok, routeMiddleware),
		NewRoute(http.MethodGet, "/api/photos/search", ok),
	))

	for _, path := range []string{"/api/photos/random", "/api/photos/search"} {
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusOK {
			t.Errorf("%s: expected status 200, got %d", path, rec.Code)
		}
	}

	if routeMiddlewareCalls != 1 {
		t.Errorf("expected route middleware once, got %d", routeMiddlewareCalls)
	}
}

func TestRegisterRoute_AfterNew(t *testing.T) {
	srv := New()
	srv.RegisterRoute(NewRoute(http.MethodPost, "/api/contact", func(w http.ResponseWriter, r *http.Request) error {
		w.WriteHeader(http.StatusCreated)
		return nil
	}))

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/contact", nil))

	if rec.Code != http.StatusCreated {
		t.Errorf("expected status 201, got %d", rec.Code)
	}
}

func TestMiddlewares_Order(t *testing.T) {
	var order []int
	tag := func(n int) Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, n)
				next.ServeHTTP(w, r)
			})
		}
	}
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		order = append(order, 0)
	})

	Middlewares(handler, tag(1), tag(2), tag(3)).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	expected := []int{1, 2, 3, 0}
	if len(order) != len(expected) {
		t.Fatalf("expected %d calls, got %d", len(expected), len(order))
	}
	for i, v := range expected {
		if order[i] != v {
			t.Errorf("expected order[%d] = %d, got %d", i, v, order[i])
		}
	}
}

func TestDefaultErrorHandler_AppErrors(t *testing.T) {
	scenarios := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
		wantLevel  observability.LogLevel
	}{
		{
			name:       "validation error",
			err:        apperrors.NewValidation("Form validation failed"),
			wantStatus: http.StatusBadRequest,
			wantCode:   apperrors.CodeValidation,
			wantLevel:  observability.LogLevelWarn,
		},
		{
			name:       "api error",
			err:        apperrors.NewAPI("Unsplash API error: 503 Service Unavailable", apperrors.WithStatusCode(http.StatusBadGateway)),
			wantStatus: http.StatusBadGateway,
			wantCode:   apperrors.CodeAPI,
			wantLevel:  observability.LogLevelError,
		},
		{
			name:       "foreign error",
			err:        errors.New("database exploded"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   apperrors.CodeApp,
			wantLevel:  observability.LogLevelError,
		},
	}

	for _, scenario := range scenarios {
		t.Run(scenario.name, func(t *testing.T) {
			logger := fake.NewLogger()
			srv := New(
				WithLogger(logger),
				WithRoutes(NewRoute(http.MethodGet, "/fail", func(w http.ResponseWriter, r *http.Request) error {
					return scenario.err
				})),
			)

			rec := httptest.NewRecorder()
			srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/fail", nil))

			if rec.Code != scenario.wantStatus {
				t.Errorf("expected status %d, got %d", scenario.wantStatus, rec.Code)
			}
			body := decodeErrorBody(t, rec)
			if body["code"] != scenario.wantCode {
				t.Errorf("expected code %s, got %v", scenario.wantCode, body["code"])
			}
			if strings.Contains(rec.Body.String(), "database exploded") {
				t.Error("foreign error message must not leak to the client")
			}
			if len(logger.EntriesAt(scenario.wantLevel)) != 1 {
				t.Errorf("expected one entry at %v, got %+v", scenario.wantLevel, logger.GetEntries())
			}
		})
	}
}

func TestNew_WithErrorHandler(t *testing.T) {
	expectedErr := errors.New("test error")
	srv := New(
		WithErrorHandler(func(ctx context.Context, w http.ResponseWriter, err error) {
			if err != expectedErr {
				t.Errorf("expected error %v, got %v", expectedErr, err)
			}
			w.WriteHeader(http.StatusTeapot)
		}),
		WithRoutes(NewRoute(http.MethodGet, "/error", func(w http.ResponseWriter, r *http.Request) error {
			return expectedErr
		})),
	)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/error", nil))

	if rec.Code != http.StatusTeapot {
		t.Errorf("expected status 418, got %d", rec.Code)
	}
}

func TestNotFound(t *testing.T) {
	srv := New(WithMiddlewares(RequestID))

	req := httptest.NewRequest(http.MethodGet, "/nonexistent", nil)
	req.Header.Set(HeaderRequestID, "req-404")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rec.Code)
	}

	var body responses.ErrorBody
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if body.Code != apperrors.CodeNotFound {
		t.Errorf("expected code %s, got %s", apperrors.CodeNotFound, body.Code)
	}
	if body.RequestID != "req-404" {
		t.Errorf("expected request id req-404, got %s", body.RequestID)
	}
	if !strings.Contains(rec.Body.String(), `"path":"/nonexistent"`) {
		t.Errorf("expected path in details, got %s", rec.Body.String())
	}
}

func TestMethodNotAllowed(t *testing.T) {
	srv := New(WithRoutes(NewRoute(http.MethodGet, "/api/photos/random", func(w http.ResponseWriter, r *http.Request) error {
		return nil
	})))

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/photos/random", nil))

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected status 405, got %d", rec.Code)
	}
	if body := decodeErrorBody(t, rec); body["code"] != "METHOD_NOT_ALLOWED" {
		t.Errorf("expected METHOD_NOT_ALLOWED, got %v", body["code"])
	}
}

func TestHealthEndpoint(t *testing.T) {
	scenarios := []struct {
		name       string
		checks     map[string]HealthCheckFunc
		wantStatus int
		wantBody   string
	}{
		{
			name:       "no checks",
			checks:     map[string]HealthCheckFunc{},
			wantStatus: http.StatusOK,
			wantBody:   `"status":"healthy"`,
		},
		{
			name: "failing check",
			checks: map[string]HealthCheckFunc{
				"unsplash": func(ctx context.Context) error { return errors.New("unreachable") },
				"self":     func(ctx context.Context) error { return nil },
			},
			wantStatus: http.StatusServiceUnavailable,
			wantBody:   `"error":"unreachable"`,
		},
	}

	for _, scenario := range scenarios {
		t.Run(scenario.name, func(t *testing.T) {
			srv := New(WithHealthChecks(scenario.checks))

			rec := httptest.NewRecorder()
			srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

			if rec.Code != scenario.wantStatus {
				t.Errorf("expected status %d, got %d", scenario.wantStatus, rec.Code)
			}
			if !strings.Contains(rec.Body.String(), scenario.wantBody) {
				t.Errorf("expected body to contain %s, got %s", scenario.wantBody, rec.Body.String())
			}
		})
	}
}

func TestMetricsEndpoint(t *testing.T) {
	registry := prometheus.NewRegistry()
	counter := prometheus.NewCounter(prometheus.CounterOpts{Name: "aeon_test_total", Help: "test counter"})
	registry.MustRegister(counter)
	counter.Inc()

	srv := New(WithMetrics(registry))

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "aeon_test_total 1") {
		t.Errorf("expected counter in exposition, got %s", rec.Body.String())
	}
}

func TestShutdownListener(t *testing.T) {
	ch := New().ShutdownListener()
	if ch == nil {
		t.Fatal("expected channel, got nil")
	}

	select {
	case ch <- nil:
		<-ch
	default:
		t.Error("expected buffered channel")
	}
}

func TestGetShutdownTimeout(t *testing.T) {
	ctx, cancel := GetShutdownTimeout()
	defer cancel()

	deadline, ok := ctx.Deadline()
	if !ok {
		t.Fatal("expected deadline to be set")
	}
	remaining := time.Until(deadline)
	if remaining < 29*time.Second || remaining > 31*time.Second {
		t.Errorf("expected deadline ~30s from now, got %v", remaining)
	}
}
