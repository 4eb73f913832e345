package application

import (
	"context"

	"github.com/felixgeelhaar/shopcore/internal/shared/domain"
	"github.com/felixgeelhaar/shopcore/pkg/observability"
	"github.com/google/uuid"
)

type metadataSetter interface {
	SetMetadata(metadata domain.EventMetadata)
}

// NewEventMetadata creates command-scoped metadata for domain events.
// The correlation id is taken from ctx when it carries a valid one.
func NewEventMetadata(ctx context.Context) domain.EventMetadata {
	correlationID, err := uuid.Parse(observability.CorrelationIDFromContext(ctx))
	if err != nil {
		correlationID = uuid.New()
	}
	return domain.EventMetadata{
		CorrelationID: correlationID,
		CausationID:   uuid.New(),
	}
}

// ApplyEventMetadata sets metadata on all events that support it.
func ApplyEventMetadata(events []domain.DomainEvent, metadata domain.EventMetadata) {
	for _, event := range events {
		if setter, ok := event.(metadataSetter); ok {
			setter.SetMetadata(metadata)
		}
	}
}
