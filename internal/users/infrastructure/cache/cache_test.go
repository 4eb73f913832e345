package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/felixgeelhaar/shopcore/internal/users/application"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUserDTO() application.UserDTO {
	now := time.Now().UTC().Truncate(time.Millisecond)
	return application.UserDTO{
		ID:        uuid.New(),
		Email:     "cache@example.com",
		Name:      "Cached",
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func runCacheContract(t *testing.T, c application.Cache) {
	ctx := context.Background()

	t.Run("miss returns nil", func(t *testing.T) {
		got, err := c.Get(ctx, uuid.New())
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("set then get", func(t *testing.T) {
		user := newUserDTO()
		require.NoError(t, c.Set(ctx, user, time.Minute))

		got, err := c.Get(ctx, user.ID)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, user.Email, got.Email)
		assert.True(t, user.UpdatedAt.Equal(got.UpdatedAt))
	})

	t.Run("delete", func(t *testing.T) {
		user := newUserDTO()
		require.NoError(t, c.Set(ctx, user, time.Minute))
		require.NoError(t, c.Delete(ctx, user.ID))

		got, err := c.Get(ctx, user.ID)
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("clear", func(t *testing.T) {
		first, second := newUserDTO(), newUserDTO()
		require.NoError(t, c.Set(ctx, first, time.Minute))
		require.NoError(t, c.Set(ctx, second, time.Minute))

		require.NoError(t, c.Clear(ctx))

		got, err := c.Get(ctx, first.ID)
		require.NoError(t, err)
		assert.Nil(t, got)
	})
}

func TestMemoryCache(t *testing.T) {
	runCacheContract(t, NewMemoryCache())
}

func TestMemoryCache_Expiry(t *testing.T) {
	c := NewMemoryCache()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	user := newUserDTO()
	require.NoError(t, c.Set(context.Background(), user, time.Hour))

	now = now.Add(time.Hour)
	got, err := c.Get(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestKey(t *testing.T) {
	id := uuid.MustParse("4f8b7c9e-8f8a-4a7e-9d3b-2f9c1e6a5b4d")
	assert.Equal(t, "user:4f8b7c9e-8f8a-4a7e-9d3b-2f9c1e6a5b4d", Key(id))
}

func TestRedisCache(t *testing.T) {
	url := os.Getenv("TEST_REDIS_URL")
	if url == "" {
		t.Skip("TEST_REDIS_URL not set")
	}

	opts, err := redis.ParseURL(url)
	require.NoError(t, err)
	client := redis.NewClient(opts)
	t.Cleanup(func() { _ = client.Close() })
	require.NoError(t, client.Ping(context.Background()).Err())

	runCacheContract(t, NewRedisCache(client))
}
