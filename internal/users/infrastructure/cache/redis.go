package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/felixgeelhaar/shopcore/internal/users/application"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// KeyPrefix namespaces user entries.
const KeyPrefix = "user:"

const clearBatchSize = 100

// Key returns the cache key of a user.
func Key(id uuid.UUID) string {
	return KeyPrefix + id.String()
}

// RedisCache stores user projections as JSON strings with a TTL.
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache creates a RedisCache.
func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

// Get returns the cached user, or nil on a miss.
func (c *RedisCache) Get(ctx context.Context, id uuid.UUID) (*application.UserDTO, error) {
	data, err := c.client.Get(ctx, Key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var user application.UserDTO
	if err := json.Unmarshal(data, &user); err != nil {
		return nil, fmt.Errorf("failed to decode cached user: %w", err)
	}
	return &user, nil
}

// Set stores the user as JSON under Key(user.ID) with the given TTL.
func (c *RedisCache) Set(ctx context.Context, user application.UserDTO, ttl time.Duration) error {
	data, err := json.Marshal(user)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, Key(user.ID), data, ttl).Err()
}

// Delete evicts the user. Evicting a missing key is not an error.
func (c *RedisCache) Delete(ctx context.Context, id uuid.UUID) error {
	return c.client.Del(ctx, Key(id)).Err()
}

// Clear removes every user entry. It walks the keyspace with SCAN.
func (c *RedisCache) Clear(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, KeyPrefix+"*", clearBatchSize).Iterator()
	batch := make([]string, 0, clearBatchSize)
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == clearBatchSize {
			if err := c.client.Del(ctx, batch...).Err(); err != nil {
				return err
			}
			batch = batch[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(batch) > 0 {
		return c.client.Del(ctx, batch...).Err()
	}
	return nil
}
