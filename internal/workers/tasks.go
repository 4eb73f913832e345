package workers

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	orderApp "github.com/felixgeelhaar/shopcore/internal/orders/application"
	userApp "github.com/felixgeelhaar/shopcore/internal/users/application"
)

// UserReader loads user projections.
type UserReader interface {
	GetUser(ctx context.Context, id uuid.UUID) (*userApp.UserDTO, error)
}

// OrderReader loads order projections and rebuilds the read model.
type OrderReader interface {
	GetOrder(ctx context.Context, id uuid.UUID) (*orderApp.OrderDTO, error)
	ResyncReadModel(ctx context.Context, id uuid.UUID) (*orderApp.OrderDTO, error)
}

// Tasks holds the handlers of every task the dispatcher produces.
type Tasks struct {
	users   UserReader
	orders  OrderReader
	sender  Sender
	gateway PaymentGateway
	logger  *slog.Logger
}

// NewTasks creates the task handlers.
func NewTasks(users UserReader, orders OrderReader, sender Sender, gateway PaymentGateway, logger *slog.Logger) *Tasks {
	if logger == nil {
		logger = slog.Default()
	}
	return &Tasks{
		users:   users,
		orders:  orders,
		sender:  sender,
		gateway: gateway,
		logger:  logger,
	}
}

// Register binds every handler on runner.
func (t *Tasks) Register(runner *Runner) {
	runner.Register(TaskSendWelcomeEmail, t.SendWelcomeEmail)
	runner.Register(TaskSyncOrderReadModel, t.SyncOrderReadModel)
	runner.Register(TaskSendOrderConfirmation, t.SendOrderConfirmation)
	runner.Register(TaskProcessPayment, t.ProcessPayment)
}

// SendWelcomeEmail mails a newly registered user.
func (t *Tasks) SendWelcomeEmail(ctx context.Context, task Task) error {
	var args UserTaskArgs
	if err := task.DecodeArgs(&args); err != nil {
		return err
	}

	user, err := t.users.GetUser(ctx, args.UserID)
	if err != nil {
		return fmt.Errorf("failed to load user %s: %w", args.UserID, err)
	}

	email, err := WelcomeEmail(user.Email, user.ID)
	if err != nil {
		return err
	}
	if err := t.sender.Send(ctx, email); err != nil {
		return fmt.Errorf("failed to send welcome email to user %s: %w", user.ID, err)
	}

	t.logger.InfoContext(ctx, "welcome email sent", "user_id", user.ID)
	return nil
}

// SyncOrderReadModel rebuilds the order projection from the write store.
func (t *Tasks) SyncOrderReadModel(ctx context.Context, task Task) error {
	var args OrderTaskArgs
	if err := task.DecodeArgs(&args); err != nil {
		return err
	}

	if _, err := t.orders.ResyncReadModel(ctx, args.OrderID); err != nil {
		return fmt.Errorf("failed to resync order %s: %w", args.OrderID, err)
	}

	t.logger.InfoContext(ctx, "order read model synced", "order_id", args.OrderID)
	return nil
}

// SendOrderConfirmation mails the owner of a confirmed order.
func (t *Tasks) SendOrderConfirmation(ctx context.Context, task Task) error {
	var args OrderTaskArgs
	if err := task.DecodeArgs(&args); err != nil {
		return err
	}

	order, err := t.orders.GetOrder(ctx, args.OrderID)
	if err != nil {
		return fmt.Errorf("failed to load order %s: %w", args.OrderID, err)
	}
	user, err := t.users.GetUser(ctx, order.UserID)
	if err != nil {
		return fmt.Errorf("failed to load owner of order %s: %w", order.ID, err)
	}

	email, err := OrderConfirmationEmail(user.Email, order.ID, order.TotalAmount, order.Currency)
	if err != nil {
		return err
	}
	if err := t.sender.Send(ctx, email); err != nil {
		return fmt.Errorf("failed to send confirmation for order %s: %w", order.ID, err)
	}

	t.logger.InfoContext(ctx, "order confirmation sent",
		"order_id", order.ID,
		"user_id", user.ID,
	)
	return nil
}

// ProcessPayment charges the order total through the gateway.
func (t *Tasks) ProcessPayment(ctx context.Context, task Task) error {
	var args PaymentTaskArgs
	if err := task.DecodeArgs(&args); err != nil {
		return err
	}

	order, err := t.orders.GetOrder(ctx, args.OrderID)
	if err != nil {
		return fmt.Errorf("failed to load order %s: %w", args.OrderID, err)
	}

	amount, err := decimal.NewFromString(order.TotalAmount)
	if err != nil {
		return fmt.Errorf("order %s has invalid total %q: %w", order.ID, order.TotalAmount, err)
	}

	t.logger.InfoContext(ctx, "processing payment",
		"order_id", order.ID,
		"method", args.Method,
		"amount", amount.StringFixed(2),
		"currency", order.Currency,
	)

	result, err := t.gateway.Charge(ctx, Payment{
		OrderID:  order.ID,
		Amount:   amount,
		Currency: order.Currency,
		Method:   args.Method,
	})
	if err != nil {
		return fmt.Errorf("payment for order %s failed: %w", order.ID, err)
	}

	t.logger.InfoContext(ctx, "payment processed",
		"order_id", order.ID,
		"transaction_id", result.TransactionID,
	)
	return nil
}
