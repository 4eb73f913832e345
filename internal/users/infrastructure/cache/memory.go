package cache

import (
	"context"
	"sync"
	"time"

	"github.com/felixgeelhaar/shopcore/internal/users/application"
	"github.com/google/uuid"
)

type memoryEntry struct {
	user      application.UserDTO
	expiresAt time.Time
}

// MemoryCache is an in-process TTL cache for local mode and tests.
type MemoryCache struct {
	mu      sync.Mutex
	entries map[uuid.UUID]memoryEntry
	now     func() time.Time
}

// NewMemoryCache creates an empty MemoryCache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		entries: make(map[uuid.UUID]memoryEntry),
		now:     time.Now,
	}
}

// Get returns the cached user, or nil on a miss or an expired entry.
func (c *MemoryCache) Get(ctx context.Context, id uuid.UUID) (*application.UserDTO, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[id]
	if !ok {
		return nil, nil
	}
	if !c.now().Before(entry.expiresAt) {
		delete(c.entries, id)
		return nil, nil
	}
	user := entry.user
	return &user, nil
}

// Set stores a copy of the user until the TTL elapses.
func (c *MemoryCache) Set(ctx context.Context, user application.UserDTO, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[user.ID] = memoryEntry{user: user, expiresAt: c.now().Add(ttl)}
	return nil
}

func (c *MemoryCache) Delete(ctx context.Context, id uuid.UUID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, id)
	return nil
}

func (c *MemoryCache) Clear(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[uuid.UUID]memoryEntry)
	return nil
}
