package application

import (
	"context"
	"log/slog"

	"github.com/felixgeelhaar/shopcore/internal/shared/domain"
	"github.com/felixgeelhaar/shopcore/pkg/observability"
	"github.com/google/uuid"
)

// Secondary layers written after the authoritative commit.
const (
	LayerEvents    = "events"
	LayerReadModel = "read_model"
	LayerCache     = "cache"
)

// EventPublisher broadcasts a single drained domain event.
type EventPublisher interface {
	PublishEvent(ctx context.Context, event domain.DomainEvent) error
}

// EventStore persists drained events inside the caller's transaction.
// It backs the outbox mode, where a relay publishes the stored events later.
type EventStore interface {
	StoreEvents(ctx context.Context, events []domain.DomainEvent) error
}

// Propagator runs the command pipeline shared by all application services:
// persist inside a unit of work, drain events, publish them, then let the
// caller project into its secondary stores through BestEffort.
type Propagator struct {
	uow       UnitOfWork
	publisher EventPublisher
	outbox    EventStore
	logger    *slog.Logger
	metrics   observability.Metrics
}

// PropagatorOption configures a Propagator.
type PropagatorOption func(*Propagator)

// WithOutbox stores events transactionally instead of publishing them directly.
func WithOutbox(store EventStore) PropagatorOption {
	return func(p *Propagator) { p.outbox = store }
}

// WithMetrics sets the metrics sink used for swallowed failures.
func WithMetrics(metrics observability.Metrics) PropagatorOption {
	return func(p *Propagator) {
		if metrics != nil {
			p.metrics = metrics
		}
	}
}

// NewPropagator creates a new Propagator.
func NewPropagator(uow UnitOfWork, publisher EventPublisher, logger *slog.Logger, opts ...PropagatorOption) *Propagator {
	if logger == nil {
		logger = slog.Default()
	}
	p := &Propagator{
		uow:       uow,
		publisher: publisher,
		logger:    logger,
		metrics:   observability.NoopMetrics{},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// OutboxEnabled reports whether events are routed through the outbox.
func (p *Propagator) OutboxEnabled() bool {
	return p.outbox != nil
}

// Commit runs persist inside a unit of work and then hands the aggregate's
// drained events to the event layer. agg may be nil for commands that raise
// no events. Only a persistence failure is returned; publish failures are
// logged and counted.
func (p *Propagator) Commit(ctx context.Context, agg domain.AggregateRoot, persist UnitOfWorkFunc) error {
	var events []domain.DomainEvent

	err := WithUnitOfWork(ctx, p.uow, func(txCtx context.Context) error {
		if err := persist(txCtx); err != nil {
			return err
		}
		if agg == nil {
			return nil
		}

		events = agg.DrainEvents()
		ApplyEventMetadata(events, NewEventMetadata(ctx))

		if p.outbox != nil && len(events) > 0 {
			return p.outbox.StoreEvents(txCtx, events)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if p.outbox != nil {
		return nil
	}

	for _, event := range events {
		event := event
		p.BestEffort(ctx, LayerEvents, "publish", event.AggregateType(), event.AggregateID(), func(ctx context.Context) error {
			return p.publisher.PublishEvent(ctx, event)
		})
	}
	return nil
}

// BestEffort runs fn and swallows its error. Each swallowed failure is
// logged and counted so that drift between the stores can be detected.
// It reports whether fn succeeded.
func (p *Propagator) BestEffort(ctx context.Context, layer, operation, aggregateType string, aggregateID uuid.UUID, fn func(ctx context.Context) error) bool {
	if err := fn(ctx); err != nil {
		p.logger.WarnContext(ctx, "secondary write failed",
			"layer", layer,
			"operation", operation,
			"aggregate_type", aggregateType,
			"aggregate_id", aggregateID,
			observability.ErrorKey, err,
		)
		p.metrics.Counter(observability.MetricProjectionFailures, 1,
			observability.T("layer", layer),
			observability.T("operation", operation),
			observability.T("aggregate", aggregateType),
		)
		return false
	}
	if layer == LayerEvents {
		p.metrics.Counter(observability.MetricEventsPublished, 1,
			observability.T("aggregate", aggregateType),
		)
	}
	return true
}
