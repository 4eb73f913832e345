// Package applicationtest provides in-memory collaborators for testing
// application services without a database or a message bus.
package applicationtest

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"github.com/felixgeelhaar/shopcore/internal/shared/application"
	"github.com/felixgeelhaar/shopcore/internal/shared/domain"
	"github.com/felixgeelhaar/shopcore/pkg/observability"
)

// UnitOfWork runs the callback without a transaction. It counts commits and
// rollbacks so tests can assert on the outcome.
type UnitOfWork struct {
	mu        sync.Mutex
	Commits   int
	Rollbacks int
}

func (u *UnitOfWork) Begin(ctx context.Context) (context.Context, error) {
	return ctx, nil
}

func (u *UnitOfWork) Commit(ctx context.Context) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.Commits++
	return nil
}

func (u *UnitOfWork) Rollback(ctx context.Context) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.Rollbacks++
	return nil
}

// Publisher records published events. Err, when set, is returned from
// every publish after the event has been recorded.
type Publisher struct {
	mu     sync.Mutex
	events []domain.DomainEvent
	Err    error
}

func (p *Publisher) PublishEvent(ctx context.Context, event domain.DomainEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return p.Err
}

// Events returns a copy of the recorded events.
func (p *Publisher) Events() []domain.DomainEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]domain.DomainEvent, len(p.events))
	copy(out, p.events)
	return out
}

// EventTypes returns the type of every recorded event, in publish order.
func (p *Publisher) EventTypes() []string {
	events := p.Events()
	types := make([]string, len(events))
	for i, e := range events {
		types[i] = e.EventType()
	}
	return types
}

// Reset forgets the recorded events.
func (p *Publisher) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = nil
}

// Harness bundles a propagator with its recording collaborators.
type Harness struct {
	Propagator *application.Propagator
	UnitOfWork *UnitOfWork
	Publisher  *Publisher
	Metrics    *observability.InMemoryMetrics
}

// NewHarness builds a propagator that publishes directly and discards logs.
func NewHarness() *Harness {
	h := &Harness{
		UnitOfWork: &UnitOfWork{},
		Publisher:  &Publisher{},
		Metrics:    observability.NewInMemoryMetrics(),
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h.Propagator = application.NewPropagator(h.UnitOfWork, h.Publisher, logger, application.WithMetrics(h.Metrics))
	return h
}

// ProjectionFailures returns the swallowed-failure count for one layer and operation.
func (h *Harness) ProjectionFailures(layer, operation, aggregate string) int64 {
	return h.Metrics.GetCounter(observability.MetricProjectionFailures,
		observability.T("layer", layer),
		observability.T("operation", operation),
		observability.T("aggregate", aggregate),
	)
}
