package observability

import (
	"context"

	"github.com/google/uuid"
)

type contextKey int

const (
	correlationIDCtxKey contextKey = iota
	taskIDCtxKey
	operationCtxKey
)

// Standard attribute keys used in logs and metrics.
const (
	CorrelationIDKey = "correlation_id"
	TaskIDKey        = "task_id"
	OperationKey     = "operation"
	DurationKey      = "duration_ms"
	ErrorKey         = "error"
	StatusKey        = "status"
)

// WithCorrelationID adds a correlation ID to the context.
// If id is empty, a new UUID is generated.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	if id == "" {
		id = uuid.New().String()
	}
	return context.WithValue(ctx, correlationIDCtxKey, id)
}

// CorrelationIDFromContext extracts the correlation ID from context.
func CorrelationIDFromContext(ctx context.Context) string {
	return stringValue(ctx, correlationIDCtxKey)
}

// WithTaskID marks the context as running inside the worker task with the given id.
func WithTaskID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, taskIDCtxKey, id)
}

// TaskIDFromContext returns the id of the task being executed, if any.
func TaskIDFromContext(ctx context.Context) string {
	return stringValue(ctx, taskIDCtxKey)
}

// WithOperation names the unit of work the context belongs to: a CLI command,
// a worker task or a scheduled job.
func WithOperation(ctx context.Context, operation string) context.Context {
	return context.WithValue(ctx, operationCtxKey, operation)
}

// OperationFromContext extracts the operation name from context.
func OperationFromContext(ctx context.Context) string {
	return stringValue(ctx, operationCtxKey)
}

func stringValue(ctx context.Context, key contextKey) string {
	if ctx == nil {
		return ""
	}
	v, _ := ctx.Value(key).(string)
	return v
}
