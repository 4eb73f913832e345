package eventbus

import (
	"context"

	"github.com/felixgeelhaar/shopcore/internal/shared/domain"
)

// Delivery describes the guarantee a publisher gives once Publish returns.
type Delivery int

const (
	// DeliveryAtMostOnce loses events published while no subscriber is listening.
	DeliveryAtMostOnce Delivery = iota
	// DeliveryDurable keeps events in the broker until a consumer acknowledges them.
	DeliveryDurable
)

func (d Delivery) String() string {
	switch d {
	case DeliveryDurable:
		return "durable"
	default:
		return "at_most_once"
	}
}

// Publisher defines the interface for publishing events to a message broker.
type Publisher interface {
	// Publish sends an encoded envelope for eventType.
	Publish(ctx context.Context, eventType string, payload []byte) error

	// Delivery reports the guarantee of this binding.
	Delivery() Delivery

	// Close closes the publisher connection.
	Close() error
}

// DomainPublisher adapts a Publisher to the application's event port.
type DomainPublisher struct {
	publisher Publisher
}

// NewDomainPublisher creates a new DomainPublisher.
func NewDomainPublisher(publisher Publisher) *DomainPublisher {
	return &DomainPublisher{publisher: publisher}
}

// PublishEvent wraps event in an envelope and publishes it under its event type.
func (p *DomainPublisher) PublishEvent(ctx context.Context, event domain.DomainEvent) error {
	env, err := NewEnvelope(event)
	if err != nil {
		return err
	}
	payload, err := env.Encode()
	if err != nil {
		return err
	}
	return p.publisher.Publish(ctx, env.EventType, payload)
}

// Delivery reports the guarantee of the wrapped publisher.
func (p *DomainPublisher) Delivery() Delivery {
	return p.publisher.Delivery()
}
