package observability

import (
	"context"
	"log/slog"
	"time"
)

// Timer measures one operation and reports it as a log line plus the
// operation duration, total and error metrics.
type Timer struct {
	ctx       context.Context
	operation string
	start     time.Time
	logger    *slog.Logger
	metrics   Metrics
}

// StartTimer starts timing operation. Log lines carry the ids found in ctx.
func StartTimer(ctx context.Context, operation string) *Timer {
	return &Timer{
		ctx:       ctx,
		operation: operation,
		start:     time.Now(),
	}
}

// WithLogger logs the outcome when the timer stops.
func (t *Timer) WithLogger(logger *slog.Logger) *Timer {
	t.logger = logger
	return t
}

// WithMetrics records the outcome when the timer stops.
func (t *Timer) WithMetrics(metrics Metrics) *Timer {
	t.metrics = metrics
	return t
}

// StopWithError records the duration and whether the operation failed.
func (t *Timer) StopWithError(err error) time.Duration {
	duration := time.Since(t.start)

	if t.logger != nil {
		if err != nil {
			t.logger.ErrorContext(t.ctx, "operation failed",
				append(t.logAttrs(duration), ErrorKey, err)...,
			)
		} else {
			t.logger.InfoContext(t.ctx, "operation completed", t.logAttrs(duration)...)
		}
	}

	if t.metrics != nil {
		tag := T(OperationKey, t.operation)
		t.metrics.Timing(MetricOperationDuration, duration, tag)
		t.metrics.Counter(MetricOperationTotal, 1, tag)
		if err != nil {
			t.metrics.Counter(MetricOperationErrors, 1, tag)
		}
	}

	return duration
}

// logAttrs leaves out the operation when the context already carries it, as
// the logger adds it from there.
func (t *Timer) logAttrs(duration time.Duration) []any {
	attrs := []any{DurationKey, duration.Milliseconds()}
	if OperationFromContext(t.ctx) != t.operation {
		attrs = append(attrs, OperationKey, t.operation)
	}
	return attrs
}

// TimeOperation runs fn under a Timer.
func TimeOperation(ctx context.Context, logger *slog.Logger, metrics Metrics, operation string, fn func(ctx context.Context) error) error {
	timer := StartTimer(ctx, operation).WithLogger(logger).WithMetrics(metrics)
	err := fn(ctx)
	timer.StopWithError(err)
	return err
}
