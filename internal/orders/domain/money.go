package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// DefaultCurrency is used for the total of an order without items.
const DefaultCurrency = "USD"

// MaxAmountScale is the number of decimal places the stores keep for a price.
const MaxAmountScale = 2

// Money is a non-negative amount in a single currency.
type Money struct {
	amount   decimal.Decimal
	currency string
}

// NewMoney creates a validated Money value. The currency is upper-cased.
// Amounts with more than MaxAmountScale significant decimal places are rejected.
func NewMoney(amount decimal.Decimal, currency string) (Money, error) {
	if amount.IsNegative() {
		return Money{}, ErrNegativeAmount
	}
	if !amount.Equal(amount.Round(MaxAmountScale)) {
		return Money{}, fmt.Errorf("%w: %s", ErrInvalidAmount, amount.String())
	}
	currency = strings.ToUpper(strings.TrimSpace(currency))
	if !isCurrencyCode(currency) {
		return Money{}, fmt.Errorf("%w: %q", ErrInvalidCurrency, currency)
	}
	return Money{amount: amount, currency: currency}, nil
}

// ParseMoney parses a decimal string such as "10.00".
func ParseMoney(amount, currency string) (Money, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(amount))
	if err != nil {
		return Money{}, fmt.Errorf("invalid amount %q: %w", amount, err)
	}
	return NewMoney(d, currency)
}

// ZeroMoney returns a zero amount in currency.
func ZeroMoney(currency string) Money {
	return Money{amount: decimal.Zero, currency: currency}
}

func isCurrencyCode(s string) bool {
	if len(s) != 3 {
		return false
	}
	for _, r := range s {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}

func (m Money) Amount() decimal.Decimal { return m.amount }
func (m Money) Currency() string        { return m.currency }

// Add sums two amounts of the same currency.
func (m Money) Add(other Money) (Money, error) {
	if m.currency != other.currency {
		return Money{}, fmt.Errorf("%w: %s and %s", ErrCurrencyMismatch, m.currency, other.currency)
	}
	return Money{amount: m.amount.Add(other.amount), currency: m.currency}, nil
}

// Multiply scales the amount by a quantity.
func (m Money) Multiply(quantity int) Money {
	return Money{amount: m.amount.Mul(decimal.NewFromInt(int64(quantity))), currency: m.currency}
}

// Equals compares amount numerically and currency exactly.
func (m Money) Equals(other Money) bool {
	return m.currency == other.currency && m.amount.Equal(other.amount)
}

// String renders the value as "USD 10.00".
func (m Money) String() string {
	return m.currency + " " + m.amount.StringFixed(2)
}
