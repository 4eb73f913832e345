package application

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ReadModel is the denormalized user store.
// Get returns nil, nil when the document is absent.
type ReadModel interface {
	Get(ctx context.Context, id uuid.UUID) (*UserDTO, error)
	Create(ctx context.Context, user UserDTO) error
	// Update upserts the document.
	Update(ctx context.Context, user UserDTO) error
	Delete(ctx context.Context, id uuid.UUID) error
	SearchByEmail(ctx context.Context, fragment string, limit int) ([]UserDTO, error)
}

// Cache is the TTL-bound user accelerator.
// Get returns nil, nil on a miss.
type Cache interface {
	Get(ctx context.Context, id uuid.UUID) (*UserDTO, error)
	Set(ctx context.Context, user UserDTO, ttl time.Duration) error
	Delete(ctx context.Context, id uuid.UUID) error
	Clear(ctx context.Context) error
}
