package domain

import (
	"fmt"
	"strings"
)

// ShippingAddress is where an order is delivered.
type ShippingAddress struct {
	street  string
	city    string
	state   string
	zipCode string
	country string
}

// NewShippingAddress trims every field and requires all of them.
func NewShippingAddress(street, city, state, zipCode, country string) (ShippingAddress, error) {
	addr := ShippingAddress{
		street:  strings.TrimSpace(street),
		city:    strings.TrimSpace(city),
		state:   strings.TrimSpace(state),
		zipCode: strings.TrimSpace(zipCode),
		country: strings.TrimSpace(country),
	}

	fields := []struct{ name, value string }{
		{"street", addr.street},
		{"city", addr.city},
		{"state", addr.state},
		{"zip code", addr.zipCode},
		{"country", addr.country},
	}
	for _, f := range fields {
		if f.value == "" {
			return ShippingAddress{}, fmt.Errorf("%w: %s cannot be empty", ErrInvalidAddress, f.name)
		}
	}
	return addr, nil
}

func (a ShippingAddress) Street() string  { return a.street }
func (a ShippingAddress) City() string    { return a.city }
func (a ShippingAddress) State() string   { return a.state }
func (a ShippingAddress) ZipCode() string { return a.zipCode }
func (a ShippingAddress) Country() string { return a.country }

// String renders "street, city, state zip, country".
func (a ShippingAddress) String() string {
	return fmt.Sprintf("%s, %s, %s %s, %s", a.street, a.city, a.state, a.zipCode, a.country)
}
