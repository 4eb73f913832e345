package eventbus

import (
	"context"
)

// EventConsumer handles specific event types.
type EventConsumer interface {
	// EventTypes returns the event types this consumer handles,
	// e.g. ["user_registered", "order_confirmed"].
	EventTypes() []string

	// Handle processes the event.
	Handle(ctx context.Context, event *Envelope) error
}

// Consumer defines the interface for consuming events from a message broker.
type Consumer interface {
	// Start begins consuming messages. This is a blocking call.
	Start(ctx context.Context) error

	// RegisterConsumer registers an event consumer.
	RegisterConsumer(consumer EventConsumer)

	// Close closes the consumer connection.
	Close() error
}
