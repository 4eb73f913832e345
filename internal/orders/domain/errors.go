package domain

import "errors"

var (
	ErrOrderNotFound      = errors.New("order not found")
	ErrOrderItemNotFound  = errors.New("order item not found")
	ErrOrderNotModifiable = errors.New("order cannot be modified")
	ErrEmptyOrder         = errors.New("cannot confirm order with no items")
	ErrInvalidQuantity    = errors.New("quantity must be greater than 0")
	ErrEmptyProductName   = errors.New("product name cannot be empty")
	ErrInvalidAddress     = errors.New("invalid shipping address")
	ErrInvalidStatus      = errors.New("invalid order status")
	ErrNegativeAmount     = errors.New("money amount cannot be negative")
	ErrInvalidAmount      = errors.New("money amount has more than 2 decimal places")
	ErrInvalidCurrency    = errors.New("currency must be a 3-letter code")
	ErrCurrencyMismatch   = errors.New("cannot combine money with different currencies")
)
