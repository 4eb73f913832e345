package application

import "github.com/google/uuid"

// CreateOrderCommand opens a pending order for a user.
type CreateOrderCommand struct {
	UserID          uuid.UUID
	ShippingAddress ShippingAddressDTO
}

// AddOrderItemCommand adds a line, or merges into the line of the same product.
// Price is a decimal string such as "10.00".
type AddOrderItemCommand struct {
	OrderID     uuid.UUID
	ProductID   uuid.UUID
	ProductName string
	Price       string
	Currency    string
	Quantity    int
}

// RemoveOrderItemCommand removes a line by its id.
type RemoveOrderItemCommand struct {
	OrderID uuid.UUID
	ItemID  uuid.UUID
}

// ConfirmOrderCommand confirms a pending order.
type ConfirmOrderCommand struct {
	OrderID uuid.UUID
}

// CancelOrderCommand cancels an order that is not yet delivered.
type CancelOrderCommand struct {
	OrderID uuid.UUID
}
