package outbox_test

import (
	"context"
	"testing"
	"time"

	orderDomain "github.com/felixgeelhaar/shopcore/internal/orders/domain"
	"github.com/felixgeelhaar/shopcore/internal/shared/application"
	"github.com/felixgeelhaar/shopcore/internal/shared/domain"
	"github.com/felixgeelhaar/shopcore/internal/shared/infrastructure/database"
	"github.com/felixgeelhaar/shopcore/internal/shared/infrastructure/database/databasetest"
	"github.com/felixgeelhaar/shopcore/internal/shared/infrastructure/eventbus"
	"github.com/felixgeelhaar/shopcore/internal/shared/infrastructure/outbox"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLRepository_SQLite(t *testing.T) {
	runSQLRepositoryTests(t, databasetest.NewSQLite(t))
}

func TestSQLRepository_Postgres(t *testing.T) {
	runSQLRepositoryTests(t, databasetest.NewPostgres(t))
}

func newOrderMessage(t *testing.T) *outbox.Message {
	t.Helper()
	event := orderDomain.NewOrderCreated(uuid.New())
	event.SetMetadata(domain.EventMetadata{CorrelationID: uuid.New()})
	msg, err := outbox.NewMessage(event)
	require.NoError(t, err)
	return msg
}

func runSQLRepositoryTests(t *testing.T, conn database.Connection) {
	ctx := context.Background()

	t.Run("save and get unpublished", func(t *testing.T) {
		repo := outbox.NewSQLRepository(conn)
		msg := newOrderMessage(t)

		require.NoError(t, repo.Save(ctx, msg))
		assert.NotZero(t, msg.ID)

		pending, err := repo.GetUnpublished(ctx, 100)
		require.NoError(t, err)

		var found *outbox.Message
		for _, m := range pending {
			if m.ID == msg.ID {
				found = m
			}
		}
		require.NotNil(t, found)
		assert.Equal(t, msg.EventID, found.EventID)
		assert.Equal(t, msg.AggregateID, found.AggregateID)
		assert.Equal(t, orderDomain.EventTypeOrderCreated, found.EventType)
		assert.JSONEq(t, string(msg.Payload), string(found.Payload))
		assert.JSONEq(t, string(msg.Metadata), string(found.Metadata))
		assert.WithinDuration(t, msg.CreatedAt, found.CreatedAt, time.Millisecond)
		assert.Nil(t, found.PublishedAt)

		env, err := eventbus.DecodeEnvelope(found.Payload)
		require.NoError(t, err)
		assert.Equal(t, msg.EventID, env.EventID)
	})

	t.Run("published messages are not returned", func(t *testing.T) {
		repo := outbox.NewSQLRepository(conn)
		msg := newOrderMessage(t)
		require.NoError(t, repo.Save(ctx, msg))

		require.NoError(t, repo.MarkPublished(ctx, msg.ID))

		pending, err := repo.GetUnpublished(ctx, 100)
		require.NoError(t, err)
		for _, m := range pending {
			assert.NotEqual(t, msg.ID, m.ID)
		}
	})

	t.Run("failed messages wait for their retry time", func(t *testing.T) {
		repo := outbox.NewSQLRepository(conn)
		msg := newOrderMessage(t)
		require.NoError(t, repo.Save(ctx, msg))

		require.NoError(t, repo.MarkFailed(ctx, msg.ID, "broker down", time.Now().Add(time.Hour)))

		pending, err := repo.GetUnpublished(ctx, 100)
		require.NoError(t, err)
		for _, m := range pending {
			assert.NotEqual(t, msg.ID, m.ID)
		}

		require.NoError(t, repo.MarkFailed(ctx, msg.ID, "still down", time.Now().Add(-time.Second)))
		pending, err = repo.GetUnpublished(ctx, 100)
		require.NoError(t, err)
		var found *outbox.Message
		for _, m := range pending {
			if m.ID == msg.ID {
				found = m
			}
		}
		require.NotNil(t, found)
		assert.Equal(t, 2, found.RetryCount)
		require.NotNil(t, found.LastError)
		assert.Equal(t, "still down", *found.LastError)
	})

	t.Run("dead letters are not returned", func(t *testing.T) {
		repo := outbox.NewSQLRepository(conn)
		msg := newOrderMessage(t)
		require.NoError(t, repo.Save(ctx, msg))

		require.NoError(t, repo.MarkDead(ctx, msg.ID, "max retries"))

		pending, err := repo.GetUnpublished(ctx, 100)
		require.NoError(t, err)
		for _, m := range pending {
			assert.NotEqual(t, msg.ID, m.ID)
		}
	})

	t.Run("delete old keeps recent messages", func(t *testing.T) {
		repo := outbox.NewSQLRepository(conn)
		msg := newOrderMessage(t)
		require.NoError(t, repo.Save(ctx, msg))
		require.NoError(t, repo.MarkPublished(ctx, msg.ID))

		_, err := repo.DeleteOld(ctx, 7)
		require.NoError(t, err)

		deleted, err := repo.DeleteOld(ctx, -1)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, deleted, int64(1))
	})

	t.Run("save batch joins the unit of work", func(t *testing.T) {
		repo := outbox.NewSQLRepository(conn)
		store := outbox.NewEventStore(repo)
		uow := database.NewUnitOfWork(conn)
		event := orderDomain.NewOrderConfirmed(uuid.New())

		err := application.WithUnitOfWork(ctx, uow, func(txCtx context.Context) error {
			if err := store.StoreEvents(txCtx, []domain.DomainEvent{event}); err != nil {
				return err
			}
			return assert.AnError
		})
		require.ErrorIs(t, err, assert.AnError)

		pending, err := repo.GetUnpublished(ctx, 1000)
		require.NoError(t, err)
		for _, m := range pending {
			assert.NotEqual(t, event.EventID(), m.EventID)
		}

		require.NoError(t, store.StoreEvents(ctx, []domain.DomainEvent{event}))
		pending, err = repo.GetUnpublished(ctx, 1000)
		require.NoError(t, err)
		ids := make([]uuid.UUID, 0, len(pending))
		for _, m := range pending {
			ids = append(ids, m.EventID)
		}
		assert.Contains(t, ids, event.EventID())
	})
}
