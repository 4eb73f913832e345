package workers_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	orderApp "github.com/felixgeelhaar/shopcore/internal/orders/application"
	userApp "github.com/felixgeelhaar/shopcore/internal/users/application"
	"github.com/felixgeelhaar/shopcore/internal/workers"
	"github.com/felixgeelhaar/shopcore/pkg/observability"
)

type taskFixture struct {
	users  *mockUsers
	orders *mockOrders
	sender *recordingSender
	tasks  *workers.Tasks
}

func newTaskFixture() *taskFixture {
	f := &taskFixture{
		users:  &mockUsers{},
		orders: &mockOrders{},
		sender: &recordingSender{},
	}
	f.tasks = workers.NewTasks(f.users, f.orders, f.sender, workers.NewSimulatedGateway(nil), nil)
	return f
}

func confirmedOrder(userID uuid.UUID) *orderApp.OrderDTO {
	return &orderApp.OrderDTO{
		ID:          uuid.New(),
		UserID:      userID,
		Status:      "confirmed",
		TotalAmount: "20.00",
		Currency:    "USD",
	}
}

func TestTasks_SendWelcomeEmail(t *testing.T) {
	f := newTaskFixture()
	user := &userApp.UserDTO{ID: uuid.New(), Email: "a@b.com", Name: "Jo", IsActive: true}
	f.users.On("GetUser", mock.Anything, user.ID).Return(user, nil)

	err := f.tasks.SendWelcomeEmail(context.Background(),
		mustTask(workers.TaskSendWelcomeEmail, workers.UserTaskArgs{UserID: user.ID}))
	require.NoError(t, err)

	sent := f.sender.sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "a@b.com", sent[0].To)
	assert.Equal(t, "Welcome to Shop Service!", sent[0].Subject)
	f.users.AssertExpectations(t)
}

func TestTasks_SendWelcomeEmail_UserMissing(t *testing.T) {
	f := newTaskFixture()
	userID := uuid.New()
	notFound := errors.New("user not found")
	f.users.On("GetUser", mock.Anything, userID).Return(nil, notFound)

	err := f.tasks.SendWelcomeEmail(context.Background(),
		mustTask(workers.TaskSendWelcomeEmail, workers.UserTaskArgs{UserID: userID}))
	assert.ErrorIs(t, err, notFound)
	assert.Empty(t, f.sender.sent())
}

func TestTasks_SendWelcomeEmail_SenderFailure(t *testing.T) {
	f := newTaskFixture()
	f.sender.err = errors.New("smtp down")
	user := &userApp.UserDTO{ID: uuid.New(), Email: "a@b.com"}
	f.users.On("GetUser", mock.Anything, user.ID).Return(user, nil)

	err := f.tasks.SendWelcomeEmail(context.Background(),
		mustTask(workers.TaskSendWelcomeEmail, workers.UserTaskArgs{UserID: user.ID}))
	assert.ErrorIs(t, err, f.sender.err)
}

func TestTasks_SyncOrderReadModel(t *testing.T) {
	f := newTaskFixture()
	order := confirmedOrder(uuid.New())
	f.orders.On("ResyncReadModel", mock.Anything, order.ID).Return(order, nil)

	err := f.tasks.SyncOrderReadModel(context.Background(),
		mustTask(workers.TaskSyncOrderReadModel, workers.OrderTaskArgs{OrderID: order.ID}))
	require.NoError(t, err)
	f.orders.AssertExpectations(t)
}

func TestTasks_SendOrderConfirmation(t *testing.T) {
	f := newTaskFixture()
	user := &userApp.UserDTO{ID: uuid.New(), Email: "a@b.com"}
	order := confirmedOrder(user.ID)
	f.orders.On("GetOrder", mock.Anything, order.ID).Return(order, nil)
	f.users.On("GetUser", mock.Anything, user.ID).Return(user, nil)

	err := f.tasks.SendOrderConfirmation(context.Background(),
		mustTask(workers.TaskSendOrderConfirmation, workers.OrderTaskArgs{OrderID: order.ID}))
	require.NoError(t, err)

	sent := f.sender.sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "Order Confirmation - Order #"+order.ID.String()[:8], sent[0].Subject)
	assert.Contains(t, sent[0].Text, "20.00 USD")
}

func TestTasks_ProcessPayment(t *testing.T) {
	f := newTaskFixture()
	order := confirmedOrder(uuid.New())
	f.orders.On("GetOrder", mock.Anything, order.ID).Return(order, nil)

	err := f.tasks.ProcessPayment(context.Background(), mustTask(workers.TaskProcessPayment,
		workers.PaymentTaskArgs{OrderID: order.ID, Method: "credit_card"}))
	assert.NoError(t, err)
}

func TestTasks_ProcessPayment_RejectsMethod(t *testing.T) {
	f := newTaskFixture()
	order := confirmedOrder(uuid.New())
	f.orders.On("GetOrder", mock.Anything, order.ID).Return(order, nil)

	err := f.tasks.ProcessPayment(context.Background(), mustTask(workers.TaskProcessPayment,
		workers.PaymentTaskArgs{OrderID: order.ID, Method: "barter"}))
	assert.ErrorIs(t, err, workers.ErrUnsupportedPaymentMethod)
}

func TestTasks_RegisteredOnRunner(t *testing.T) {
	f := newTaskFixture()
	metrics := observability.NewInMemoryMetrics()
	runner := workers.NewRunner(nil, metrics)
	f.tasks.Register(runner)

	assert.ElementsMatch(t, []string{
		workers.TaskSendWelcomeEmail,
		workers.TaskSyncOrderReadModel,
		workers.TaskSendOrderConfirmation,
		workers.TaskProcessPayment,
	}, runner.Names())

	order := confirmedOrder(uuid.New())
	f.orders.On("ResyncReadModel", mock.Anything, order.ID).Return(nil, errors.New("db down"))

	ok := runner.Run(context.Background(),
		mustTask(workers.TaskSyncOrderReadModel, workers.OrderTaskArgs{OrderID: order.ID}))
	assert.False(t, ok)
	assert.Equal(t, int64(1), metrics.GetCounter(observability.MetricTasksFailed,
		observability.T("task", workers.TaskSyncOrderReadModel)))
}
