package workers_test

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	orderApp "github.com/felixgeelhaar/shopcore/internal/orders/application"
	userApp "github.com/felixgeelhaar/shopcore/internal/users/application"
	"github.com/felixgeelhaar/shopcore/internal/workers"
)

// recordingEnqueuer collects enqueued tasks.
type recordingEnqueuer struct {
	mu    sync.Mutex
	tasks []workers.Task
	err   error
}

func (r *recordingEnqueuer) Enqueue(ctx context.Context, task workers.Task) error {
	if r.err != nil {
		return r.err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tasks = append(r.tasks, task)
	return nil
}

func (r *recordingEnqueuer) names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, len(r.tasks))
	for i, t := range r.tasks {
		names[i] = t.Name
	}
	return names
}

// recordingSender collects sent emails.
type recordingSender struct {
	mu     sync.Mutex
	emails []workers.Email
	err    error
}

func (r *recordingSender) Send(ctx context.Context, email workers.Email) error {
	if r.err != nil {
		return r.err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.emails = append(r.emails, email)
	return nil
}

func (r *recordingSender) sent() []workers.Email {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]workers.Email(nil), r.emails...)
}

// mockUsers is a mock implementation of workers.UserReader.
type mockUsers struct {
	mock.Mock
}

func (m *mockUsers) GetUser(ctx context.Context, id uuid.UUID) (*userApp.UserDTO, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*userApp.UserDTO), args.Error(1)
}

// mockOrders is a mock implementation of workers.OrderReader and workers.OrderMaintainer.
type mockOrders struct {
	mock.Mock
}

func (m *mockOrders) GetOrder(ctx context.Context, id uuid.UUID) (*orderApp.OrderDTO, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*orderApp.OrderDTO), args.Error(1)
}

func (m *mockOrders) ResyncReadModel(ctx context.Context, id uuid.UUID) (*orderApp.OrderDTO, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*orderApp.OrderDTO), args.Error(1)
}

func (m *mockOrders) CancelOrder(ctx context.Context, cmd orderApp.CancelOrderCommand) (*orderApp.OrderDTO, error) {
	args := m.Called(ctx, cmd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*orderApp.OrderDTO), args.Error(1)
}

func (m *mockOrders) PendingOrdersCreatedBefore(ctx context.Context, cutoff time.Time) ([]uuid.UUID, error) {
	args := m.Called(ctx, cutoff)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

func (m *mockOrders) OrdersCreatedBetween(ctx context.Context, from, to time.Time) ([]orderApp.OrderDTO, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]orderApp.OrderDTO), args.Error(1)
}

func mustTask(name string, args any) workers.Task {
	task, err := workers.NewTask(context.Background(), name, args)
	if err != nil {
		panic(err)
	}
	return task
}
