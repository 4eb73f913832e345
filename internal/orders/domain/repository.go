package domain

import (
	"context"
	"time"

	sharedDomain "github.com/felixgeelhaar/shopcore/internal/shared/domain"
	"github.com/google/uuid"
)

// Repository defines the write-model port for orders.
// Update replaces the whole item collection.
type Repository interface {
	sharedDomain.Repository[*Order]
	FindByUserID(ctx context.Context, userID uuid.UUID) ([]*Order, error)
	FindPendingCreatedBefore(ctx context.Context, cutoff time.Time) ([]*Order, error)
	FindCreatedBetween(ctx context.Context, from, to time.Time) ([]*Order, error)
}
