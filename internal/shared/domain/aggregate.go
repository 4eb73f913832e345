package domain

import "github.com/google/uuid"

// AggregateRoot is a domain entity that is the root of an aggregate.
// It buffers the events raised by its mutations until the caller drains them.
type AggregateRoot interface {
	Entity
	PendingEvents() []DomainEvent
	DrainEvents() []DomainEvent
	RecordEvent(event DomainEvent)
}

// BaseAggregateRoot provides the event buffer shared by all aggregates.
type BaseAggregateRoot struct {
	BaseEntity
	pending []DomainEvent
}

// NewBaseAggregateRoot creates a new aggregate root with a generated ID.
func NewBaseAggregateRoot() BaseAggregateRoot {
	return BaseAggregateRoot{BaseEntity: NewBaseEntity()}
}

// NewBaseAggregateRootWithID creates a new aggregate root with a specific ID.
func NewBaseAggregateRootWithID(id uuid.UUID) BaseAggregateRoot {
	return BaseAggregateRoot{BaseEntity: NewBaseEntityWithID(id)}
}

// RehydrateBaseAggregateRoot recreates an aggregate from persisted state.
// Rehydrated aggregates start with an empty event buffer.
func RehydrateBaseAggregateRoot(entity BaseEntity) BaseAggregateRoot {
	return BaseAggregateRoot{BaseEntity: entity}
}

// RecordEvent appends an event to the pending buffer.
func (a *BaseAggregateRoot) RecordEvent(event DomainEvent) {
	a.pending = append(a.pending, event)
}

// PendingEvents returns a copy of the buffered events without clearing them.
func (a *BaseAggregateRoot) PendingEvents() []DomainEvent {
	out := make([]DomainEvent, len(a.pending))
	copy(out, a.pending)
	return out
}

// DrainEvents returns the buffered events in emission order and empties the buffer.
// A second call returns an empty slice.
func (a *BaseAggregateRoot) DrainEvents() []DomainEvent {
	out := a.pending
	a.pending = nil
	if out == nil {
		return []DomainEvent{}
	}
	return out
}
