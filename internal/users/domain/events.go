package domain

import (
	sharedDomain "github.com/felixgeelhaar/shopcore/internal/shared/domain"
	"github.com/google/uuid"
)

// AggregateType identifies users on the event bus.
const AggregateType = "user"

// Event types raised by the User aggregate.
const (
	EventTypeUserRegistered   = "user_registered"
	EventTypeUserNameUpdated  = "user_name_updated"
	EventTypeUserEmailUpdated = "user_email_updated"
	EventTypeUserActivated    = "user_activated"
	EventTypeUserDeactivated  = "user_deactivated"
)

// UserEvent is the payload shared by every user event.
type UserEvent struct {
	sharedDomain.BaseEvent
	UserID uuid.UUID `json:"user_id"`
}

func newUserEvent(userID uuid.UUID, eventType string) *UserEvent {
	return &UserEvent{
		BaseEvent: sharedDomain.NewBaseEvent(userID, AggregateType, eventType),
		UserID:    userID,
	}
}

// NewUserRegistered creates a user_registered event.
func NewUserRegistered(userID uuid.UUID) *UserEvent {
	return newUserEvent(userID, EventTypeUserRegistered)
}

// NewUserNameUpdated creates a user_name_updated event.
func NewUserNameUpdated(userID uuid.UUID) *UserEvent {
	return newUserEvent(userID, EventTypeUserNameUpdated)
}

// NewUserEmailUpdated creates a user_email_updated event.
func NewUserEmailUpdated(userID uuid.UUID) *UserEvent {
	return newUserEvent(userID, EventTypeUserEmailUpdated)
}

// NewUserActivated creates a user_activated event.
func NewUserActivated(userID uuid.UUID) *UserEvent {
	return newUserEvent(userID, EventTypeUserActivated)
}

// NewUserDeactivated creates a user_deactivated event.
func NewUserDeactivated(userID uuid.UUID) *UserEvent {
	return newUserEvent(userID, EventTypeUserDeactivated)
}
