package eventbus

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// InProcessEventBus is an in-memory event bus for local mode.
// Events are delivered synchronously to registered consumers.
type InProcessEventBus struct {
	registry *ConsumerRegistry
	logger   *slog.Logger
	mu       sync.Mutex
}

// NewInProcessEventBus creates a new in-process event bus.
func NewInProcessEventBus(logger *slog.Logger) *InProcessEventBus {
	if logger == nil {
		logger = slog.Default()
	}
	return &InProcessEventBus{
		registry: NewConsumerRegistry(logger),
		logger:   logger,
	}
}

// RegisterConsumer registers an event consumer.
func (b *InProcessEventBus) RegisterConsumer(consumer EventConsumer) {
	b.registry.Register(consumer)
}

// Publish decodes the envelope and dispatches it to all registered consumers.
// Decode and dispatch failures are logged; the publish itself never fails.
func (b *InProcessEventBus) Publish(ctx context.Context, eventType string, payload []byte) error {
	event, err := DecodeEnvelope(payload)
	if err != nil {
		b.logger.ErrorContext(ctx, "failed to decode event payload",
			"event_type", eventType,
			"error", err,
		)
		return nil
	}

	b.dispatch(ctx, event)
	return nil
}

func (b *InProcessEventBus) dispatch(ctx context.Context, event *Envelope) {
	b.mu.Lock()
	defer b.mu.Unlock()

	start := time.Now()
	err := b.registry.Dispatch(ctx, event)
	duration := time.Since(start)

	if err != nil {
		b.logger.ErrorContext(ctx, "event dispatch failed",
			"event_type", event.EventType,
			"event_id", event.EventID,
			"duration_ms", duration.Milliseconds(),
			"error", err,
		)
		return
	}

	b.logger.DebugContext(ctx, "event dispatched",
		"event_type", event.EventType,
		"event_id", event.EventID,
		"duration_ms", duration.Milliseconds(),
	)
}

// Delivery reports at-most-once: nothing is kept for consumers registered later.
func (b *InProcessEventBus) Delivery() Delivery {
	return DeliveryAtMostOnce
}

// Close is a no-op for in-process bus.
func (b *InProcessEventBus) Close() error {
	return nil
}

// Start blocks until ctx is cancelled; events are dispatched by Publish.
func (b *InProcessEventBus) Start(ctx context.Context) error {
	b.logger.Info("in-process event bus started (synchronous mode)")
	<-ctx.Done()
	return ctx.Err()
}
