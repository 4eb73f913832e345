package workers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Payment errors.
var (
	ErrUnsupportedPaymentMethod = errors.New("unsupported payment method")
	ErrInvalidPaymentAmount     = errors.New("payment amount must be positive")
)

// Payment is a charge request for an order.
type Payment struct {
	OrderID  uuid.UUID
	Amount   decimal.Decimal
	Currency string
	Method   string
}

// PaymentResult describes an accepted charge.
type PaymentResult struct {
	TransactionID uuid.UUID
	OrderID       uuid.UUID
	Amount        decimal.Decimal
	Currency      string
	Method        string
}

// PaymentGateway charges orders.
type PaymentGateway interface {
	Charge(ctx context.Context, payment Payment) (PaymentResult, error)
}

// SimulatedGateway accepts every well-formed charge without contacting a provider.
type SimulatedGateway struct {
	methods map[string]bool
	logger  *slog.Logger
}

// NewSimulatedGateway creates a gateway accepting the given methods.
// With no methods, credit_card, debit_card and paypal are accepted.
func NewSimulatedGateway(logger *slog.Logger, methods ...string) *SimulatedGateway {
	if logger == nil {
		logger = slog.Default()
	}
	if len(methods) == 0 {
		methods = []string{DefaultPaymentMethod, "debit_card", "paypal"}
	}
	accepted := make(map[string]bool, len(methods))
	for _, m := range methods {
		accepted[m] = true
	}
	return &SimulatedGateway{methods: accepted, logger: logger}
}

// Charge validates the payment and returns a fresh transaction id.
func (g *SimulatedGateway) Charge(ctx context.Context, payment Payment) (PaymentResult, error) {
	if !g.methods[payment.Method] {
		return PaymentResult{}, fmt.Errorf("%w: %q", ErrUnsupportedPaymentMethod, payment.Method)
	}
	if !payment.Amount.IsPositive() {
		return PaymentResult{}, fmt.Errorf("%w: %s", ErrInvalidPaymentAmount, payment.Amount.StringFixed(2))
	}

	result := PaymentResult{
		TransactionID: uuid.New(),
		OrderID:       payment.OrderID,
		Amount:        payment.Amount,
		Currency:      payment.Currency,
		Method:        payment.Method,
	}
	g.logger.DebugContext(ctx, "simulated charge accepted",
		"transaction_id", result.TransactionID,
		"order_id", payment.OrderID,
	)
	return result, nil
}
