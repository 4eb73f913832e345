package domain

import (
	"context"

	sharedDomain "github.com/felixgeelhaar/shopcore/internal/shared/domain"
)

// Repository defines the write-model port for users.
type Repository interface {
	sharedDomain.Repository[*User]
	// FindByEmail returns nil, nil when no user has the email.
	FindByEmail(ctx context.Context, email Email) (*User, error)
}
