package outbox

import (
	"encoding/json"
	"time"

	"github.com/felixgeelhaar/shopcore/internal/shared/domain"
	"github.com/felixgeelhaar/shopcore/internal/shared/infrastructure/eventbus"
	"github.com/google/uuid"
)

// Message represents an outbox message ready for publishing.
// Payload holds the encoded envelope exactly as it goes on the bus.
type Message struct {
	ID               int64
	EventID          uuid.UUID
	AggregateType    string
	AggregateID      uuid.UUID
	EventType        string
	Payload          json.RawMessage
	Metadata         json.RawMessage
	CreatedAt        time.Time
	PublishedAt      *time.Time
	NextRetryAt      *time.Time
	RetryCount       int
	LastError        *string
	DeadLetteredAt   *time.Time
	DeadLetterReason *string
}

// NewMessage creates an outbox message from a domain event.
func NewMessage(event domain.DomainEvent) (*Message, error) {
	env, err := eventbus.NewEnvelope(event)
	if err != nil {
		return nil, err
	}
	payload, err := env.Encode()
	if err != nil {
		return nil, err
	}

	metadata, err := json.Marshal(event.Metadata())
	if err != nil {
		return nil, err
	}

	return &Message{
		EventID:       event.EventID(),
		AggregateType: event.AggregateType(),
		AggregateID:   event.AggregateID(),
		EventType:     event.EventType(),
		Payload:       payload,
		Metadata:      metadata,
		CreatedAt:     event.OccurredAt(),
	}, nil
}

// IsPublished returns true if the message has been published.
func (m *Message) IsPublished() bool {
	return m.PublishedAt != nil
}

// CanRetry returns true if the message can be retried.
func (m *Message) CanRetry(maxRetries int) bool {
	return m.RetryCount < maxRetries
}
