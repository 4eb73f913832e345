package workers_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/shopcore/internal/workers"
)

func TestSimulatedGateway_Charge(t *testing.T) {
	gateway := workers.NewSimulatedGateway(nil)
	orderID := uuid.New()

	result, err := gateway.Charge(context.Background(), workers.Payment{
		OrderID:  orderID,
		Amount:   decimal.RequireFromString("20.00"),
		Currency: "USD",
		Method:   "credit_card",
	})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, result.TransactionID)
	assert.Equal(t, orderID, result.OrderID)
	assert.Equal(t, "20", result.Amount.String())
}

func TestSimulatedGateway_RejectsUnknownMethod(t *testing.T) {
	gateway := workers.NewSimulatedGateway(nil, "invoice")

	_, err := gateway.Charge(context.Background(), workers.Payment{
		Amount: decimal.NewFromInt(5),
		Method: "credit_card",
	})
	assert.ErrorIs(t, err, workers.ErrUnsupportedPaymentMethod)
}

func TestSimulatedGateway_RejectsNonPositiveAmount(t *testing.T) {
	gateway := workers.NewSimulatedGateway(nil)

	_, err := gateway.Charge(context.Background(), workers.Payment{
		Amount: decimal.Zero,
		Method: "paypal",
	})
	assert.ErrorIs(t, err, workers.ErrInvalidPaymentAmount)
}
