package domain

import (
	"time"

	sharedDomain "github.com/felixgeelhaar/shopcore/internal/shared/domain"
	"github.com/google/uuid"
)

// User represents a customer account.
type User struct {
	sharedDomain.BaseAggregateRoot
	email  Email
	name   Name
	active bool
}

// NewUser registers a new, active user.
func NewUser(email Email, name Name) *User {
	u := &User{
		BaseAggregateRoot: sharedDomain.NewBaseAggregateRoot(),
		email:             email,
		name:              name,
		active:            true,
	}

	u.RecordEvent(NewUserRegistered(u.ID()))

	return u
}

// RehydrateUser recreates a user from persisted state without raising events.
func RehydrateUser(id uuid.UUID, email Email, name Name, active bool, createdAt, updatedAt time.Time) *User {
	entity := sharedDomain.RehydrateBaseEntity(id, createdAt, updatedAt)
	return &User{
		BaseAggregateRoot: sharedDomain.RehydrateBaseAggregateRoot(entity),
		email:             email,
		name:              name,
		active:            active,
	}
}

// Getters
func (u *User) Email() Email   { return u.email }
func (u *User) Name() Name     { return u.name }
func (u *User) IsActive() bool { return u.active }

// UpdateName changes the user's name. It always records an event, even when
// the name is unchanged.
func (u *User) UpdateName(name Name) {
	u.name = name
	u.Touch()
	u.RecordEvent(NewUserNameUpdated(u.ID()))
}

// UpdateEmail changes the user's email. Uniqueness is checked by the caller.
func (u *User) UpdateEmail(email Email) {
	u.email = email
	u.Touch()
	u.RecordEvent(NewUserEmailUpdated(u.ID()))
}

// Activate marks the user active. It is a no-op on an active user.
func (u *User) Activate() {
	if u.active {
		return
	}

	u.active = true
	u.Touch()
	u.RecordEvent(NewUserActivated(u.ID()))
}

// Deactivate marks the user inactive. It is a no-op on an inactive user.
func (u *User) Deactivate() {
	if !u.active {
		return
	}

	u.active = false
	u.Touch()
	u.RecordEvent(NewUserDeactivated(u.ID()))
}
