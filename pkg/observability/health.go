package observability

import (
	"context"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// HealthStatus represents the health state of a store or broker.
type HealthStatus string

const (
	HealthStatusHealthy   HealthStatus = "healthy"
	HealthStatusDegraded  HealthStatus = "degraded"
	HealthStatusUnhealthy HealthStatus = "unhealthy"
)

// severity orders statuses so the worst one wins.
func (s HealthStatus) severity() int {
	switch s {
	case HealthStatusUnhealthy:
		return 2
	case HealthStatusDegraded:
		return 1
	default:
		return 0
	}
}

// HealthCheckResult is the result of a health check.
type HealthCheckResult struct {
	Status    HealthStatus  `json:"status"`
	Message   string        `json:"message,omitempty"`
	Duration  time.Duration `json:"duration_ns"`
	Timestamp time.Time     `json:"timestamp"`
}

// HealthChecker is a function that performs a health check.
type HealthChecker func(ctx context.Context) HealthCheckResult

// HealthRegistry holds one checker per connected store.
type HealthRegistry struct {
	mu       sync.RWMutex
	checkers map[string]HealthChecker
}

// NewHealthRegistry creates a new health registry.
func NewHealthRegistry() *HealthRegistry {
	return &HealthRegistry{checkers: make(map[string]HealthChecker)}
}

// Register adds a health checker, replacing any checker with the same name.
func (r *HealthRegistry) Register(name string, checker HealthChecker) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.checkers[name] = checker
}

// Names returns the registered checker names in sorted order.
func (r *HealthRegistry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.checkers))
	for name := range r.checkers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Check runs every checker concurrently.
func (r *HealthRegistry) Check(ctx context.Context) map[string]HealthCheckResult {
	r.mu.RLock()
	checkers := make(map[string]HealthChecker, len(r.checkers))
	for name, checker := range r.checkers {
		checkers[name] = checker
	}
	r.mu.RUnlock()

	var (
		mu      sync.Mutex
		results = make(map[string]HealthCheckResult, len(checkers))
		g       errgroup.Group
	)
	for name, checker := range checkers {
		name, checker := name, checker
		g.Go(func() error {
			result := runChecker(ctx, checker)
			mu.Lock()
			results[name] = result
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return results
}

// CheckOne runs a single health check by name.
func (r *HealthRegistry) CheckOne(ctx context.Context, name string) (HealthCheckResult, bool) {
	r.mu.RLock()
	checker, ok := r.checkers[name]
	r.mu.RUnlock()
	if !ok {
		return HealthCheckResult{}, false
	}
	return runChecker(ctx, checker), true
}

func runChecker(ctx context.Context, checker HealthChecker) HealthCheckResult {
	start := time.Now()
	result := checker(ctx)
	result.Duration = time.Since(start)
	result.Timestamp = time.Now()
	return result
}

// OverallHealth is the worst status across all checks plus the checks themselves.
type OverallHealth struct {
	Status    HealthStatus                 `json:"status"`
	Timestamp time.Time                    `json:"timestamp"`
	Checks    map[string]HealthCheckResult `json:"checks"`
}

// GetOverallHealth runs all checks and folds them into one status. A registry
// without checkers is healthy.
func (r *HealthRegistry) GetOverallHealth(ctx context.Context) OverallHealth {
	checks := r.Check(ctx)
	status := HealthStatusHealthy
	for _, result := range checks {
		if result.Status.severity() > status.severity() {
			status = result.Status
		}
	}
	return OverallHealth{
		Status:    status,
		Timestamp: time.Now(),
		Checks:    checks,
	}
}

// PingChecker reports healthy when ping succeeds and failStatus otherwise.
func PingChecker(component string, failStatus HealthStatus, ping func(ctx context.Context) error) HealthChecker {
	return func(ctx context.Context) HealthCheckResult {
		if err := ping(ctx); err != nil {
			return HealthCheckResult{
				Status:  failStatus,
				Message: component + " connection failed: " + err.Error(),
			}
		}
		return HealthCheckResult{
			Status:  HealthStatusHealthy,
			Message: component + " connection healthy",
		}
	}
}

// DatabaseHealthChecker checks the write store. Without it nothing can be
// committed, so a failure is unhealthy.
func DatabaseHealthChecker(ping func(ctx context.Context) error) HealthChecker {
	return PingChecker("database", HealthStatusUnhealthy, ping)
}

// RedisHealthChecker checks the user cache.
func RedisHealthChecker(ping func(ctx context.Context) error) HealthChecker {
	return PingChecker("redis", HealthStatusDegraded, ping)
}

// MongoHealthChecker checks the read-model store.
func MongoHealthChecker(ping func(ctx context.Context) error) HealthChecker {
	return PingChecker("mongodb", HealthStatusDegraded, ping)
}

// RabbitMQHealthChecker checks the event broker connection.
func RabbitMQHealthChecker(ping func(ctx context.Context) error) HealthChecker {
	return PingChecker("rabbitmq", HealthStatusDegraded, ping)
}
