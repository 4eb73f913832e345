package application

import "github.com/google/uuid"

// CreateUserCommand registers a new user.
type CreateUserCommand struct {
	Email string
	Name  string
}

// UpdateUserCommand changes the fields that are set.
type UpdateUserCommand struct {
	UserID uuid.UUID
	Name   *string
	Email  *string
}

// DeleteUserCommand removes a user.
type DeleteUserCommand struct {
	UserID uuid.UUID
}

// ActivateUserCommand marks a user active.
type ActivateUserCommand struct {
	UserID uuid.UUID
}

// DeactivateUserCommand marks a user inactive.
type DeactivateUserCommand struct {
	UserID uuid.UUID
}

// SearchUsersQuery finds users whose email contains Email, case-insensitively.
type SearchUsersQuery struct {
	Email string
	Limit int
}

// MaxSearchLimit caps SearchUsersQuery.Limit.
const MaxSearchLimit = 100
