package domain

import "errors"

var (
	ErrInvalidEmail       = errors.New("invalid email address")
	ErrEmptyName          = errors.New("name cannot be empty")
	ErrNameTooLong        = errors.New("name exceeds maximum length")
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailAlreadyExists = errors.New("email already registered")
)
