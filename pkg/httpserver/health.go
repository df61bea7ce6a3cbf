package httpserver

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/JailtonJunior94/aeon-kit/pkg/observability"
	"github.com/JailtonJunior94/aeon-kit/pkg/responses"
)

const (
	healthCheckTimeout       = 5 * time.Second
	healthCheckMaxConcurrent = 10

	statusHealthy   = "healthy"
	statusUnhealthy = "unhealthy"
)

// HealthCheckFunc returns an error when the checked dependency is unavailable.
type HealthCheckFunc func(ctx context.Context) error

// HealthStatus is the body of GET /health.
type HealthStatus struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Checks    map[string]CheckResult `json:"checks,omitempty"`
}

// CheckResult is the outcome of a single check.
type CheckResult struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// ExecuteHealthChecks runs checks in parallel, at most maxConcurrent at a time.
// It reports whether any check failed or did not start before the timeout.
func ExecuteHealthChecks(ctx context.Context, checks map[string]HealthCheckFunc, timeout time.Duration, maxConcurrent int) (map[string]CheckResult, bool) {
	if len(checks) == 0 {
		return nil, false
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	semaphore := make(chan struct{}, maxConcurrent)
	results := make(map[string]CheckResult, len(checks))
	var mu sync.Mutex
	var wg sync.WaitGroup
	failed := false

	record := func(name string, err error) {
		mu.Lock()
		defer mu.Unlock()
		if err != nil {
			results[name] = CheckResult{Status: statusUnhealthy, Error: err.Error()}
			failed = true
			return
		}
		results[name] = CheckResult{Status: statusHealthy}
	}

	for name, check := range checks {
		wg.Add(1)
		go func(name string, check HealthCheckFunc) {
			defer wg.Done()

			select {
			case semaphore <- struct{}{}:
				defer func() { <-semaphore }()
			case <-ctx.Done():
				record(name, ctx.Err())
				return
			}

			record(name, check(ctx))
		}(name, check)
	}

	wg.Wait()
	return results, failed
}

func healthHandler(checks map[string]HealthCheckFunc, logger observability.Logger) Handler {
	return func(w http.ResponseWriter, r *http.Request) error {
		results, failed := ExecuteHealthChecks(r.Context(), checks, healthCheckTimeout, healthCheckMaxConcurrent)

		status := HealthStatus{
			Status:    statusHealthy,
			Timestamp: time.Now().UTC(),
			Checks:    results,
		}
		code := http.StatusOK
		if failed {
			status.Status = statusUnhealthy
			code = http.StatusServiceUnavailable
			logger.Warn(r.Context(), "health check failed", observability.Any("checks", results))
		}

		responses.JSON(w, code, status)
		return nil
	}
}
