package application

import (
	"fmt"
	"sort"
	"time"

	"github.com/felixgeelhaar/shopcore/internal/orders/domain"
	"github.com/google/uuid"
)

// ShippingAddressDTO is the flat form of a shipping address.
type ShippingAddressDTO struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	ZipCode string `json:"zip_code"`
	Country string `json:"country"`
}

// OrderItemDTO is one order line. Amounts are decimal strings with two places.
type OrderItemDTO struct {
	ID          uuid.UUID `json:"id"`
	ProductID   uuid.UUID `json:"product_id"`
	ProductName string    `json:"product_name"`
	Price       string    `json:"price"`
	Currency    string    `json:"currency"`
	Quantity    int       `json:"quantity"`
	Total       string    `json:"total"`
}

// OrderDTO is the denormalized order projection.
type OrderDTO struct {
	ID               uuid.UUID          `json:"id"`
	UserID           uuid.UUID          `json:"user_id"`
	Status           string             `json:"status"`
	ShippingAddress  ShippingAddressDTO `json:"shipping_address"`
	FormattedAddress string             `json:"formatted_address"`
	Items            []OrderItemDTO     `json:"items"`
	TotalAmount      string             `json:"total_amount"`
	Currency         string             `json:"currency"`
	CreatedAt        time.Time          `json:"created_at"`
	UpdatedAt        time.Time          `json:"updated_at"`
}

// ToDTO maps an order aggregate to its projection.
func ToDTO(o *domain.Order) (OrderDTO, error) {
	total, err := o.Total()
	if err != nil {
		return OrderDTO{}, fmt.Errorf("failed to total order %s: %w", o.ID(), err)
	}

	address := o.ShippingAddress()
	items := o.Items()
	dto := OrderDTO{
		ID:     o.ID(),
		UserID: o.UserID(),
		Status: o.Status().String(),
		ShippingAddress: ShippingAddressDTO{
			Street:  address.Street(),
			City:    address.City(),
			State:   address.State(),
			ZipCode: address.ZipCode(),
			Country: address.Country(),
		},
		FormattedAddress: address.String(),
		Items:            make([]OrderItemDTO, 0, len(items)),
		TotalAmount:      total.Amount().StringFixed(2),
		Currency:         total.Currency(),
		CreatedAt:        o.CreatedAt(),
		UpdatedAt:        o.UpdatedAt(),
	}
	for _, item := range items {
		dto.Items = append(dto.Items, OrderItemDTO{
			ID:          item.ID(),
			ProductID:   item.ProductID(),
			ProductName: item.ProductName(),
			Price:       item.Price().Amount().StringFixed(2),
			Currency:    item.Price().Currency(),
			Quantity:    item.Quantity(),
			Total:       item.Total().Amount().StringFixed(2),
		})
	}
	return dto, nil
}

// sortNewestFirst orders projections by creation time, newest first.
func sortNewestFirst(dtos []OrderDTO) {
	sort.SliceStable(dtos, func(i, j int) bool {
		return dtos[i].CreatedAt.After(dtos[j].CreatedAt)
	})
}
