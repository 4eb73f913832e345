package outbox

import (
	"context"
	"fmt"

	"github.com/felixgeelhaar/shopcore/internal/shared/domain"
)

// EventStore writes drained domain events to the outbox inside the caller's
// transaction. The Processor publishes them after commit.
type EventStore struct {
	repo Repository
}

// NewEventStore creates a new EventStore.
func NewEventStore(repo Repository) *EventStore {
	return &EventStore{repo: repo}
}

// StoreEvents converts events to messages and saves them as one batch.
func (s *EventStore) StoreEvents(ctx context.Context, events []domain.DomainEvent) error {
	if len(events) == 0 {
		return nil
	}

	msgs := make([]*Message, 0, len(events))
	for _, event := range events {
		msg, err := NewMessage(event)
		if err != nil {
			return fmt.Errorf("failed to build outbox message for %s: %w", event.EventType(), err)
		}
		msgs = append(msgs, msg)
	}
	return s.repo.SaveBatch(ctx, msgs)
}
