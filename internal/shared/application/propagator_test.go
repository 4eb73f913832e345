package application

import (
	"context"
	"errors"
	"testing"

	"github.com/felixgeelhaar/shopcore/internal/shared/domain"
	"github.com/felixgeelhaar/shopcore/pkg/observability"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type testAggregate struct {
	domain.BaseAggregateRoot
}

func newTestAggregateWithEvents(types ...string) *testAggregate {
	agg := &testAggregate{BaseAggregateRoot: domain.NewBaseAggregateRoot()}
	for _, eventType := range types {
		agg.RecordEvent(&testEvent{BaseEvent: domain.NewBaseEvent(agg.ID(), "test", eventType)})
	}
	return agg
}

type recordingPublisher struct {
	events []domain.DomainEvent
	err    error
}

func (p *recordingPublisher) PublishEvent(ctx context.Context, event domain.DomainEvent) error {
	p.events = append(p.events, event)
	return p.err
}

type recordingStore struct {
	events []domain.DomainEvent
	err    error
}

func (s *recordingStore) StoreEvents(ctx context.Context, events []domain.DomainEvent) error {
	s.events = append(s.events, events...)
	return s.err
}

func newPassthroughUoW() *mockUnitOfWork {
	uow := new(mockUnitOfWork)
	uow.On("Begin", mock.Anything).Return(context.Background(), nil)
	uow.On("Commit", mock.Anything).Return(nil)
	uow.On("Rollback", mock.Anything).Return(nil)
	return uow
}

func TestPropagator_Commit_PublishesAfterPersist(t *testing.T) {
	publisher := &recordingPublisher{}
	metrics := observability.NewInMemoryMetrics()
	p := NewPropagator(newPassthroughUoW(), publisher, nil, WithMetrics(metrics))

	agg := newTestAggregateWithEvents("first", "second")
	persisted := false

	err := p.Commit(context.Background(), agg, func(ctx context.Context) error {
		persisted = true
		assert.Empty(t, publisher.events, "nothing is published before persistence")
		return nil
	})

	require.NoError(t, err)
	assert.True(t, persisted)
	require.Len(t, publisher.events, 2)
	assert.Equal(t, "first", publisher.events[0].EventType())
	assert.Equal(t, "second", publisher.events[1].EventType())
	assert.NotEqual(t, uuid.Nil, publisher.events[0].Metadata().CorrelationID)
	assert.Empty(t, agg.PendingEvents())
	assert.Equal(t, int64(2), metrics.GetCounter(observability.MetricEventsPublished, observability.T("aggregate", "test")))
}

func TestPropagator_Commit_PersistFailurePublishesNothing(t *testing.T) {
	uow := new(mockUnitOfWork)
	uow.On("Begin", mock.Anything).Return(context.Background(), nil)
	uow.On("Rollback", mock.Anything).Return(nil)

	publisher := &recordingPublisher{}
	p := NewPropagator(uow, publisher, nil)
	persistErr := errors.New("constraint violation")

	err := p.Commit(context.Background(), newTestAggregateWithEvents("first"), func(ctx context.Context) error {
		return persistErr
	})

	assert.ErrorIs(t, err, persistErr)
	assert.Empty(t, publisher.events)
	uow.AssertNotCalled(t, "Commit", mock.Anything)
}

func TestPropagator_Commit_SwallowsPublishFailure(t *testing.T) {
	publisher := &recordingPublisher{err: errors.New("bus down")}
	metrics := observability.NewInMemoryMetrics()
	p := NewPropagator(newPassthroughUoW(), publisher, nil, WithMetrics(metrics))

	err := p.Commit(context.Background(), newTestAggregateWithEvents("first"), func(ctx context.Context) error {
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, int64(1), metrics.GetCounter(observability.MetricProjectionFailures,
		observability.T("layer", LayerEvents),
		observability.T("operation", "publish"),
		observability.T("aggregate", "test"),
	))
}

func TestPropagator_Commit_OutboxStoresInsteadOfPublishing(t *testing.T) {
	publisher := &recordingPublisher{}
	store := &recordingStore{}
	p := NewPropagator(newPassthroughUoW(), publisher, nil, WithOutbox(store))

	err := p.Commit(context.Background(), newTestAggregateWithEvents("first"), func(ctx context.Context) error {
		return nil
	})

	require.NoError(t, err)
	assert.True(t, p.OutboxEnabled())
	assert.Len(t, store.events, 1)
	assert.Empty(t, publisher.events)
}

func TestPropagator_Commit_OutboxFailureRollsBack(t *testing.T) {
	uow := new(mockUnitOfWork)
	uow.On("Begin", mock.Anything).Return(context.Background(), nil)
	uow.On("Rollback", mock.Anything).Return(nil)

	store := &recordingStore{err: errors.New("disk full")}
	p := NewPropagator(uow, &recordingPublisher{}, nil, WithOutbox(store))

	err := p.Commit(context.Background(), newTestAggregateWithEvents("first"), func(ctx context.Context) error {
		return nil
	})

	assert.Error(t, err)
	uow.AssertCalled(t, "Rollback", mock.Anything)
	uow.AssertNotCalled(t, "Commit", mock.Anything)
}

func TestPropagator_Commit_NilAggregate(t *testing.T) {
	publisher := &recordingPublisher{}
	p := NewPropagator(newPassthroughUoW(), publisher, nil)

	err := p.Commit(context.Background(), nil, func(ctx context.Context) error { return nil })

	require.NoError(t, err)
	assert.Empty(t, publisher.events)
}

func TestPropagator_BestEffort(t *testing.T) {
	metrics := observability.NewInMemoryMetrics()
	p := NewPropagator(newPassthroughUoW(), &recordingPublisher{}, nil, WithMetrics(metrics))
	id := uuid.New()

	ok := p.BestEffort(context.Background(), LayerReadModel, "upsert", "user", id, func(ctx context.Context) error {
		return nil
	})
	assert.True(t, ok)

	ok = p.BestEffort(context.Background(), LayerCache, "set", "user", id, func(ctx context.Context) error {
		return errors.New("redis timeout")
	})
	assert.False(t, ok)
	assert.Equal(t, int64(1), metrics.GetCounter(observability.MetricProjectionFailures,
		observability.T("layer", LayerCache),
		observability.T("operation", "set"),
		observability.T("aggregate", "user"),
	))
}
