package domain

import "fmt"

// Status is the lifecycle state of an order.
type Status string

const (
	StatusPending    Status = "pending"
	StatusConfirmed  Status = "confirmed"
	StatusProcessing Status = "processing"
	StatusShipped    Status = "shipped"
	StatusDelivered  Status = "delivered"
	StatusCancelled  Status = "cancelled"
)

// ParseStatus converts a stored status string.
func ParseStatus(s string) (Status, error) {
	switch st := Status(s); st {
	case StatusPending, StatusConfirmed, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled:
		return st, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
	}
}

func (s Status) String() string { return string(s) }

// IsTerminal reports whether the order can no longer be cancelled.
func (s Status) IsTerminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}
