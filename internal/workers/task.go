// Package workers runs the background side of the shop: it turns consumed
// domain events into tasks, executes them on a queue and schedules the
// periodic maintenance jobs.
package workers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/felixgeelhaar/shopcore/pkg/observability"
	"github.com/google/uuid"
)

// Task names.
const (
	TaskSendWelcomeEmail      = "send_welcome_email"
	TaskSyncOrderReadModel    = "sync_order_read_model"
	TaskSendOrderConfirmation = "send_order_confirmation"
	TaskProcessPayment        = "process_payment"
)

// ErrQueueClosed is returned when enqueueing on a closed queue.
var ErrQueueClosed = errors.New("task queue closed")

// Task is a unit of background work. Args is the JSON form of the task's argument struct.
type Task struct {
	ID            uuid.UUID       `json:"id"`
	Name          string          `json:"name"`
	Args          json.RawMessage `json:"args"`
	EnqueuedAt    time.Time       `json:"enqueued_at"`
	CorrelationID string          `json:"correlation_id,omitempty"`
}

// UserTaskArgs identifies the user a task works on.
type UserTaskArgs struct {
	UserID uuid.UUID `json:"user_id"`
}

// OrderTaskArgs identifies the order a task works on.
type OrderTaskArgs struct {
	OrderID uuid.UUID `json:"order_id"`
}

// PaymentTaskArgs are the arguments of process_payment.
type PaymentTaskArgs struct {
	OrderID uuid.UUID `json:"order_id"`
	Method  string    `json:"method"`
}

// NewTask builds a task, carrying the correlation id of ctx.
func NewTask(ctx context.Context, name string, args any) (Task, error) {
	raw, err := json.Marshal(args)
	if err != nil {
		return Task{}, fmt.Errorf("marshal %s args: %w", name, err)
	}
	return Task{
		ID:            uuid.New(),
		Name:          name,
		Args:          raw,
		EnqueuedAt:    time.Now().UTC(),
		CorrelationID: observability.CorrelationIDFromContext(ctx),
	}, nil
}

// DecodeArgs unmarshals the task arguments into v.
func (t Task) DecodeArgs(v any) error {
	if err := json.Unmarshal(t.Args, v); err != nil {
		return fmt.Errorf("decode %s args: %w", t.Name, err)
	}
	return nil
}

// Enqueuer accepts tasks for background execution.
type Enqueuer interface {
	Enqueue(ctx context.Context, task Task) error
}

// TaskQueue is an Enqueuer that also runs the tasks it accepts.
type TaskQueue interface {
	Enqueuer
	// Start runs the queue's workers and blocks until ctx is cancelled.
	Start(ctx context.Context) error
	// Close stops accepting tasks and releases the queue.
	Close() error
}
