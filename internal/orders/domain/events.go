package domain

import (
	sharedDomain "github.com/felixgeelhaar/shopcore/internal/shared/domain"
	"github.com/google/uuid"
)

// AggregateType identifies orders on the event bus.
const AggregateType = "order"

// Event types raised by the Order aggregate.
const (
	EventTypeOrderCreated     = "order_created"
	EventTypeOrderItemAdded   = "order_item_added"
	EventTypeOrderItemRemoved = "order_item_removed"
	EventTypeOrderConfirmed   = "order_confirmed"
	EventTypeOrderCancelled   = "order_cancelled"
)

// OrderEvent is the payload of order lifecycle events.
type OrderEvent struct {
	sharedDomain.BaseEvent
	OrderID uuid.UUID `json:"order_id"`
}

// OrderItemEvent is the payload of item events.
type OrderItemEvent struct {
	sharedDomain.BaseEvent
	OrderID uuid.UUID `json:"order_id"`
	ItemID  uuid.UUID `json:"item_id"`
}

func newOrderEvent(orderID uuid.UUID, eventType string) *OrderEvent {
	return &OrderEvent{
		BaseEvent: sharedDomain.NewBaseEvent(orderID, AggregateType, eventType),
		OrderID:   orderID,
	}
}

func newOrderItemEvent(orderID, itemID uuid.UUID, eventType string) *OrderItemEvent {
	return &OrderItemEvent{
		BaseEvent: sharedDomain.NewBaseEvent(orderID, AggregateType, eventType),
		OrderID:   orderID,
		ItemID:    itemID,
	}
}

// NewOrderCreated creates an order_created event.
func NewOrderCreated(orderID uuid.UUID) *OrderEvent {
	return newOrderEvent(orderID, EventTypeOrderCreated)
}

// NewOrderConfirmed creates an order_confirmed event.
func NewOrderConfirmed(orderID uuid.UUID) *OrderEvent {
	return newOrderEvent(orderID, EventTypeOrderConfirmed)
}

// NewOrderCancelled creates an order_cancelled event.
func NewOrderCancelled(orderID uuid.UUID) *OrderEvent {
	return newOrderEvent(orderID, EventTypeOrderCancelled)
}

// NewOrderItemAdded creates an order_item_added event.
func NewOrderItemAdded(orderID, itemID uuid.UUID) *OrderItemEvent {
	return newOrderItemEvent(orderID, itemID, EventTypeOrderItemAdded)
}

// NewOrderItemRemoved creates an order_item_removed event.
func NewOrderItemRemoved(orderID, itemID uuid.UUID) *OrderItemEvent {
	return newOrderItemEvent(orderID, itemID, EventTypeOrderItemRemoved)
}
