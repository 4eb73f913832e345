package domain

import (
	"fmt"
	"time"

	sharedDomain "github.com/felixgeelhaar/shopcore/internal/shared/domain"
	"github.com/google/uuid"
)

// Order is the aggregate root for a customer purchase.
type Order struct {
	sharedDomain.BaseAggregateRoot
	userID          uuid.UUID
	status          Status
	shippingAddress ShippingAddress
	items           []OrderItem
}

// NewOrder creates a pending order without items.
func NewOrder(userID uuid.UUID, address ShippingAddress) *Order {
	o := &Order{
		BaseAggregateRoot: sharedDomain.NewBaseAggregateRoot(),
		userID:            userID,
		status:            StatusPending,
		shippingAddress:   address,
	}

	o.RecordEvent(NewOrderCreated(o.ID()))

	return o
}

// RehydrateOrder recreates an order from persisted state without raising events.
func RehydrateOrder(
	id, userID uuid.UUID,
	status Status,
	address ShippingAddress,
	items []OrderItem,
	createdAt, updatedAt time.Time,
) *Order {
	entity := sharedDomain.RehydrateBaseEntity(id, createdAt, updatedAt)
	return &Order{
		BaseAggregateRoot: sharedDomain.RehydrateBaseAggregateRoot(entity),
		userID:            userID,
		status:            status,
		shippingAddress:   address,
		items:             append([]OrderItem(nil), items...),
	}
}

// Getters
func (o *Order) UserID() uuid.UUID                { return o.userID }
func (o *Order) Status() Status                   { return o.status }
func (o *Order) ShippingAddress() ShippingAddress { return o.shippingAddress }

// Items returns a copy of the line items in insertion order.
func (o *Order) Items() []OrderItem {
	return append([]OrderItem(nil), o.items...)
}

// AddItem appends a line, or merges the quantity into the line with the same product.
func (o *Order) AddItem(item OrderItem) error {
	if err := o.ensureModifiable(); err != nil {
		return err
	}
	if len(o.items) > 0 && o.items[0].price.currency != item.price.currency {
		return fmt.Errorf("%w: order is in %s", ErrCurrencyMismatch, o.items[0].price.currency)
	}

	itemID := item.ID()
	merged := false
	for i := range o.items {
		if o.items[i].productID == item.productID {
			o.items[i].quantity += item.quantity
			itemID = o.items[i].id
			merged = true
			break
		}
	}
	if !merged {
		o.items = append(o.items, item)
	}

	o.Touch()
	o.RecordEvent(NewOrderItemAdded(o.ID(), itemID))
	return nil
}

// RemoveItem deletes the line with itemID.
func (o *Order) RemoveItem(itemID uuid.UUID) error {
	if err := o.ensureModifiable(); err != nil {
		return err
	}

	idx := -1
	for i := range o.items {
		if o.items[i].id == itemID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrOrderItemNotFound, itemID)
	}

	o.items = append(o.items[:idx], o.items[idx+1:]...)
	o.Touch()
	o.RecordEvent(NewOrderItemRemoved(o.ID(), itemID))
	return nil
}

// Confirm moves a pending order with at least one item to confirmed.
func (o *Order) Confirm() error {
	if o.status != StatusPending {
		return fmt.Errorf("%w: cannot confirm order with status %s", ErrOrderNotModifiable, o.status)
	}
	if len(o.items) == 0 {
		return ErrEmptyOrder
	}

	o.status = StatusConfirmed
	o.Touch()
	o.RecordEvent(NewOrderConfirmed(o.ID()))
	return nil
}

// Cancel moves the order to cancelled unless it is delivered or already cancelled.
func (o *Order) Cancel() error {
	if o.status.IsTerminal() {
		return fmt.Errorf("%w: cannot cancel order with status %s", ErrOrderNotModifiable, o.status)
	}

	o.status = StatusCancelled
	o.Touch()
	o.RecordEvent(NewOrderCancelled(o.ID()))
	return nil
}

// Total sums the lines in the currency of the first line.
// An order without items totals zero USD.
func (o *Order) Total() (Money, error) {
	if len(o.items) == 0 {
		return ZeroMoney(DefaultCurrency), nil
	}

	total := ZeroMoney(o.items[0].price.currency)
	for _, item := range o.items {
		var err error
		total, err = total.Add(item.Total())
		if err != nil {
			return Money{}, err
		}
	}
	return total, nil
}

func (o *Order) ensureModifiable() error {
	if o.status != StatusPending {
		return fmt.Errorf("%w: cannot modify order with status %s", ErrOrderNotModifiable, o.status)
	}
	return nil
}
