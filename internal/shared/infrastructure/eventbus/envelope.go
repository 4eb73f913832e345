package eventbus

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/felixgeelhaar/shopcore/internal/shared/domain"
	"github.com/google/uuid"
)

// Envelope is the wire form of a domain event on every bus binding.
type Envelope struct {
	EventID       uuid.UUID            `json:"event_id"`
	EventType     string               `json:"event_type"`
	AggregateID   uuid.UUID            `json:"aggregate_id"`
	AggregateType string               `json:"aggregate_type"`
	Data          json.RawMessage      `json:"data"`
	OccurredAt    time.Time            `json:"occurred_at"`
	Metadata      domain.EventMetadata `json:"metadata"`
}

// NewEnvelope wraps a domain event. The concrete event marshals to its payload only.
func NewEnvelope(event domain.DomainEvent) (*Envelope, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", event.EventType(), err)
	}
	return &Envelope{
		EventID:       event.EventID(),
		EventType:     event.EventType(),
		AggregateID:   event.AggregateID(),
		AggregateType: event.AggregateType(),
		Data:          data,
		OccurredAt:    event.OccurredAt(),
		Metadata:      event.Metadata(),
	}, nil
}

// Encode marshals an envelope for publishing.
func (e *Envelope) Encode() ([]byte, error) {
	return json.Marshal(e)
}

// DecodeEnvelope parses a received message. Messages without an event type are rejected.
func DecodeEnvelope(payload []byte) (*Envelope, error) {
	env := &Envelope{}
	if err := json.Unmarshal(payload, env); err != nil {
		return nil, fmt.Errorf("decode envelope: %w", err)
	}
	if env.EventType == "" {
		return nil, fmt.Errorf("decode envelope: missing event_type")
	}
	return env, nil
}

// DecodeData unmarshals the event payload into v.
func (e *Envelope) DecodeData(v any) error {
	if err := json.Unmarshal(e.Data, v); err != nil {
		return fmt.Errorf("decode %s data: %w", e.EventType, err)
	}
	return nil
}
