package workers

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/felixgeelhaar/shopcore/internal/shared/infrastructure/eventbus"
	"github.com/felixgeelhaar/shopcore/pkg/observability"
	"github.com/google/uuid"

	orderDomain "github.com/felixgeelhaar/shopcore/internal/orders/domain"
	userDomain "github.com/felixgeelhaar/shopcore/internal/users/domain"
)

// DefaultPaymentMethod is used for payments triggered by order confirmation.
const DefaultPaymentMethod = "credit_card"

// Dispatcher turns consumed domain events into tasks.
type Dispatcher struct {
	queue   Enqueuer
	logger  *slog.Logger
	metrics observability.Metrics
}

// NewDispatcher creates a dispatcher that enqueues onto queue.
func NewDispatcher(queue Enqueuer, logger *slog.Logger, metrics observability.Metrics) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = observability.NoopMetrics{}
	}
	return &Dispatcher{queue: queue, logger: logger, metrics: metrics}
}

// EventTypes implements eventbus.EventConsumer.
func (d *Dispatcher) EventTypes() []string {
	return []string{
		userDomain.EventTypeUserRegistered,
		orderDomain.EventTypeOrderCreated,
		orderDomain.EventTypeOrderConfirmed,
	}
}

// Handle implements eventbus.EventConsumer. It returns the first enqueue
// failure so durable bindings can redeliver the event.
func (d *Dispatcher) Handle(ctx context.Context, event *eventbus.Envelope) error {
	if id := event.Metadata.CorrelationID; id != uuid.Nil && observability.CorrelationIDFromContext(ctx) == "" {
		ctx = observability.WithCorrelationID(ctx, id.String())
	}
	d.metrics.Counter(observability.MetricEventsConsumed, 1, observability.T("event_type", event.EventType))

	tasks, err := tasksFor(ctx, event)
	if err != nil {
		d.logger.WarnContext(ctx, "dropping event with unusable data",
			"event_type", event.EventType,
			"event_id", event.EventID,
			observability.ErrorKey, err,
		)
		return nil
	}

	for _, task := range tasks {
		if err := d.queue.Enqueue(ctx, task); err != nil {
			return fmt.Errorf("failed to enqueue %s for %s: %w", task.Name, event.EventType, err)
		}
	}

	d.logger.InfoContext(ctx, "event dispatched",
		"event_type", event.EventType,
		"event_id", event.EventID,
		"tasks", len(tasks),
	)
	return nil
}

func tasksFor(ctx context.Context, event *eventbus.Envelope) ([]Task, error) {
	switch event.EventType {
	case userDomain.EventTypeUserRegistered:
		var data UserTaskArgs
		if err := event.DecodeData(&data); err != nil {
			return nil, err
		}
		if data.UserID == uuid.Nil {
			return nil, fmt.Errorf("%s: missing user_id", event.EventType)
		}
		return buildTasks(ctx, taskSpec{TaskSendWelcomeEmail, data})

	case orderDomain.EventTypeOrderCreated:
		data, err := orderData(event)
		if err != nil {
			return nil, err
		}
		return buildTasks(ctx, taskSpec{TaskSyncOrderReadModel, data})

	case orderDomain.EventTypeOrderConfirmed:
		data, err := orderData(event)
		if err != nil {
			return nil, err
		}
		return buildTasks(ctx,
			taskSpec{TaskSendOrderConfirmation, data},
			taskSpec{TaskProcessPayment, PaymentTaskArgs{OrderID: data.OrderID, Method: DefaultPaymentMethod}},
		)
	}
	return nil, nil
}

func orderData(event *eventbus.Envelope) (OrderTaskArgs, error) {
	var data OrderTaskArgs
	if err := event.DecodeData(&data); err != nil {
		return data, err
	}
	if data.OrderID == uuid.Nil {
		return data, fmt.Errorf("%s: missing order_id", event.EventType)
	}
	return data, nil
}

type taskSpec struct {
	name string
	args any
}

func buildTasks(ctx context.Context, specs ...taskSpec) ([]Task, error) {
	tasks := make([]Task, 0, len(specs))
	for _, s := range specs {
		task, err := NewTask(ctx, s.name, s.args)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	return tasks, nil
}
