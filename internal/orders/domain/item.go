package domain

import (
	"strings"

	"github.com/google/uuid"
)

// OrderItem is a line of an order. It lives only inside its Order.
type OrderItem struct {
	id          uuid.UUID
	productID   uuid.UUID
	productName string
	price       Money
	quantity    int
}

// NewOrderItem creates a validated line item with a fresh id.
func NewOrderItem(productID uuid.UUID, productName string, price Money, quantity int) (OrderItem, error) {
	return newOrderItem(uuid.New(), productID, productName, price, quantity)
}

// RehydrateOrderItem recreates a stored line item.
func RehydrateOrderItem(id, productID uuid.UUID, productName string, price Money, quantity int) (OrderItem, error) {
	return newOrderItem(id, productID, productName, price, quantity)
}

func newOrderItem(id, productID uuid.UUID, productName string, price Money, quantity int) (OrderItem, error) {
	productName = strings.TrimSpace(productName)
	if productName == "" {
		return OrderItem{}, ErrEmptyProductName
	}
	if quantity <= 0 {
		return OrderItem{}, ErrInvalidQuantity
	}
	return OrderItem{
		id:          id,
		productID:   productID,
		productName: productName,
		price:       price,
		quantity:    quantity,
	}, nil
}

func (i OrderItem) ID() uuid.UUID        { return i.id }
func (i OrderItem) ProductID() uuid.UUID { return i.productID }
func (i OrderItem) ProductName() string  { return i.productName }
func (i OrderItem) Price() Money         { return i.price }
func (i OrderItem) Quantity() int        { return i.quantity }

// Total returns price times quantity.
func (i OrderItem) Total() Money {
	return i.price.Multiply(i.quantity)
}
