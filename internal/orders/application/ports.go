package application

import (
	"context"

	"github.com/google/uuid"
)

// ReadModel is the query-side store of order projections.
// Get returns nil, nil when the order is not projected.
type ReadModel interface {
	Get(ctx context.Context, id uuid.UUID) (*OrderDTO, error)
	Create(ctx context.Context, order OrderDTO) error
	// Update inserts the projection when it does not exist yet.
	Update(ctx context.Context, order OrderDTO) error
	Delete(ctx context.Context, id uuid.UUID) error
	// ListByUserID returns the user's orders, newest first.
	ListByUserID(ctx context.Context, userID uuid.UUID) ([]OrderDTO, error)
}
