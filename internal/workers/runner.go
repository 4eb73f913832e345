package workers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/felixgeelhaar/shopcore/pkg/observability"
)

// Handler executes one task.
type Handler func(ctx context.Context, task Task) error

// ErrUnknownTask is reported for tasks without a registered handler.
var ErrUnknownTask = errors.New("unknown task")

// Runner maps task names to handlers and executes them. A failed task is
// logged and counted; it is never retried.
type Runner struct {
	mu       sync.RWMutex
	handlers map[string]Handler
	logger   *slog.Logger
	metrics  observability.Metrics
}

// NewRunner creates a new Runner.
func NewRunner(logger *slog.Logger, metrics observability.Metrics) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = observability.NoopMetrics{}
	}
	return &Runner{
		handlers: make(map[string]Handler),
		logger:   logger,
		metrics:  metrics,
	}
}

// Register binds handler to a task name, replacing any previous binding.
func (r *Runner) Register(name string, handler Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[name] = handler
}

// Names returns the registered task names.
func (r *Runner) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.handlers))
	for name := range r.handlers {
		names = append(names, name)
	}
	return names
}

// Run executes task and reports whether it succeeded. Panics in the handler
// are recovered and treated as failures.
func (r *Runner) Run(ctx context.Context, task Task) bool {
	if task.CorrelationID != "" {
		ctx = observability.WithCorrelationID(ctx, task.CorrelationID)
	}
	ctx = observability.WithTaskID(ctx, task.ID.String())
	ctx = observability.WithOperation(ctx, task.Name)
	tag := observability.T("task", task.Name)
	start := time.Now()

	err := r.execute(ctx, task)
	duration := time.Since(start)
	r.metrics.Timing(observability.MetricTaskDuration, duration, tag)

	if err != nil {
		r.metrics.Counter(observability.MetricTasksFailed, 1, tag)
		r.logger.ErrorContext(ctx, "task failed",
			observability.DurationKey, duration.Milliseconds(),
			observability.ErrorKey, err,
		)
		return false
	}

	r.metrics.Counter(observability.MetricTasksSucceeded, 1, tag)
	r.logger.InfoContext(ctx, "task completed",
		observability.DurationKey, duration.Milliseconds(),
	)
	return true
}

func (r *Runner) execute(ctx context.Context, task Task) (err error) {
	r.mu.RLock()
	handler, ok := r.handlers[task.Name]
	r.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownTask, task.Name)
	}

	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("task panicked: %v", p)
		}
	}()
	return handler(ctx, task)
}
