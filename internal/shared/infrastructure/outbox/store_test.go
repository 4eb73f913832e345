package outbox_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	orderDomain "github.com/felixgeelhaar/shopcore/internal/orders/domain"
	"github.com/felixgeelhaar/shopcore/internal/shared/application"
	"github.com/felixgeelhaar/shopcore/internal/shared/application/applicationtest"
	"github.com/felixgeelhaar/shopcore/internal/shared/domain"
	"github.com/felixgeelhaar/shopcore/internal/shared/infrastructure/outbox"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventStore_StoreEvents(t *testing.T) {
	repo := outbox.NewInMemoryRepository()
	store := outbox.NewEventStore(repo)
	orderID := uuid.New()

	err := store.StoreEvents(context.Background(), []domain.DomainEvent{
		orderDomain.NewOrderCreated(orderID),
		orderDomain.NewOrderConfirmed(orderID),
	})
	require.NoError(t, err)

	msgs := repo.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, orderDomain.EventTypeOrderCreated, msgs[0].EventType)
	assert.Equal(t, orderDomain.EventTypeOrderConfirmed, msgs[1].EventType)
}

func TestEventStore_EmptyBatch(t *testing.T) {
	repo := outbox.NewInMemoryRepository()

	require.NoError(t, outbox.NewEventStore(repo).StoreEvents(context.Background(), nil))
	assert.Empty(t, repo.Messages())
}

func TestPropagatorWithOutbox_RelaysAfterCommit(t *testing.T) {
	repo := outbox.NewInMemoryRepository()
	direct := &applicationtest.Publisher{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	propagator := application.NewPropagator(&applicationtest.UnitOfWork{}, direct, logger,
		application.WithOutbox(outbox.NewEventStore(repo)))

	order := orderDomain.NewOrder(uuid.New(), orderDomain.ShippingAddress{})
	err := propagator.Commit(context.Background(), order, func(context.Context) error { return nil })
	require.NoError(t, err)

	// Nothing goes to the bus directly; the event waits in the outbox
	assert.Empty(t, direct.Events())
	require.Len(t, repo.Messages(), 1)

	publisher := newMockPublisher()
	processor := outbox.NewProcessor(repo, publisher, outbox.DefaultProcessorConfig(), logger)
	require.NoError(t, processor.ProcessOnce(context.Background()))

	require.Equal(t, 1, publisher.PublishedCount())
	assert.Equal(t, orderDomain.EventTypeOrderCreated, publisher.published[0].EventType)
	assert.True(t, repo.Messages()[0].IsPublished())
}
