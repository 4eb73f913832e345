package domain

import (
	"time"

	"github.com/google/uuid"
)

// DomainEvent represents a committed fact about an aggregate.
type DomainEvent interface {
	EventID() uuid.UUID
	AggregateID() uuid.UUID
	AggregateType() string
	EventType() string
	OccurredAt() time.Time
	Metadata() EventMetadata
}

// EventMetadata carries tracing context for events.
type EventMetadata struct {
	CorrelationID uuid.UUID `json:"correlation_id"`
	CausationID   uuid.UUID `json:"causation_id"`
}

// BaseEvent provides common event functionality.
// Its fields are unexported so that marshaling a concrete event yields only its payload.
type BaseEvent struct {
	eventID       uuid.UUID
	aggregateID   uuid.UUID
	aggregateType string
	eventType     string
	occurredAt    time.Time
	metadata      EventMetadata
}

// NewBaseEvent creates a new base event.
func NewBaseEvent(aggregateID uuid.UUID, aggregateType, eventType string) BaseEvent {
	return BaseEvent{
		eventID:       uuid.New(),
		aggregateID:   aggregateID,
		aggregateType: aggregateType,
		eventType:     eventType,
		occurredAt:    time.Now().UTC(),
	}
}

func (e BaseEvent) EventID() uuid.UUID      { return e.eventID }
func (e BaseEvent) AggregateID() uuid.UUID  { return e.aggregateID }
func (e BaseEvent) AggregateType() string   { return e.aggregateType }
func (e BaseEvent) EventType() string       { return e.eventType }
func (e BaseEvent) OccurredAt() time.Time   { return e.occurredAt }
func (e BaseEvent) Metadata() EventMetadata { return e.metadata }

// SetMetadata sets the event metadata.
func (e *BaseEvent) SetMetadata(metadata EventMetadata) {
	e.metadata = metadata
}
