package application

import (
	"time"

	"github.com/felixgeelhaar/shopcore/internal/users/domain"
	"github.com/google/uuid"
)

// UserDTO is the user projection stored in the read model and the cache.
type UserDTO struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ToDTO maps a user aggregate to its projection.
func ToDTO(u *domain.User) UserDTO {
	return UserDTO{
		ID:        u.ID(),
		Email:     u.Email().String(),
		Name:      u.Name().String(),
		IsActive:  u.IsActive(),
		CreatedAt: u.CreatedAt(),
		UpdatedAt: u.UpdatedAt(),
	}
}
