package domain

import (
	"context"

	"github.com/google/uuid"
)

// Repository is the write-model port shared by all aggregates.
// Implementations run inside the unit of work found in ctx, if any.
// FindByID returns a nil aggregate and nil error when the id is unknown.
type Repository[T AggregateRoot] interface {
	FindByID(ctx context.Context, id uuid.UUID) (T, error)
	Add(ctx context.Context, aggregate T) error
	Update(ctx context.Context, aggregate T) error
	Delete(ctx context.Context, id uuid.UUID) error
}
