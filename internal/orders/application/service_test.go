package application_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/felixgeelhaar/shopcore/internal/orders/application"
	"github.com/felixgeelhaar/shopcore/internal/orders/domain"
	"github.com/felixgeelhaar/shopcore/internal/orders/infrastructure/readmodel"
	sharedApplication "github.com/felixgeelhaar/shopcore/internal/shared/application"
	"github.com/felixgeelhaar/shopcore/internal/shared/application/applicationtest"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// mockOrderRepo is a mock implementation of domain.Repository.
type mockOrderRepo struct {
	mock.Mock
}

func (m *mockOrderRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *mockOrderRepo) FindByUserID(ctx context.Context, userID uuid.UUID) ([]*domain.Order, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Order), args.Error(1)
}

func (m *mockOrderRepo) FindPendingCreatedBefore(ctx context.Context, cutoff time.Time) ([]*domain.Order, error) {
	args := m.Called(ctx, cutoff)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Order), args.Error(1)
}

func (m *mockOrderRepo) FindCreatedBetween(ctx context.Context, from, to time.Time) ([]*domain.Order, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Order), args.Error(1)
}

func (m *mockOrderRepo) Add(ctx context.Context, o *domain.Order) error {
	return m.Called(ctx, o).Error(0)
}

func (m *mockOrderRepo) Update(ctx context.Context, o *domain.Order) error {
	return m.Called(ctx, o).Error(0)
}

func (m *mockOrderRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

// failingReadModel fails every call.
type failingReadModel struct{ err error }

func (f failingReadModel) Get(ctx context.Context, id uuid.UUID) (*application.OrderDTO, error) {
	return nil, f.err
}
func (f failingReadModel) Create(ctx context.Context, order application.OrderDTO) error { return f.err }
func (f failingReadModel) Update(ctx context.Context, order application.OrderDTO) error { return f.err }
func (f failingReadModel) Delete(ctx context.Context, id uuid.UUID) error               { return f.err }
func (f failingReadModel) ListByUserID(ctx context.Context, userID uuid.UUID) ([]application.OrderDTO, error) {
	return nil, f.err
}

var testAddress = application.ShippingAddressDTO{
	Street:  "1 Main St",
	City:    "Springfield",
	State:   "IL",
	ZipCode: "62701",
	Country: "US",
}

type fixture struct {
	repo      *mockOrderRepo
	readModel *readmodel.MemoryReadModel
	harness   *applicationtest.Harness
	service   *application.Service
}

func newFixture() *fixture {
	f := &fixture{
		repo:      new(mockOrderRepo),
		readModel: readmodel.NewMemoryReadModel(),
		harness:   applicationtest.NewHarness(),
	}
	f.service = application.NewService(f.repo, f.readModel, f.harness.Propagator)
	return f
}

func pendingOrder(t *testing.T) *domain.Order {
	t.Helper()
	address, err := domain.NewShippingAddress("1 Main St", "Springfield", "IL", "62701", "US")
	require.NoError(t, err)
	created := time.Now().Add(-time.Hour).UTC()
	return domain.RehydrateOrder(uuid.New(), uuid.New(), domain.StatusPending, address, nil, created, created)
}

func withItem(t *testing.T, o *domain.Order, price string, qty int) *domain.Order {
	t.Helper()
	money, err := domain.ParseMoney(price, "USD")
	require.NoError(t, err)
	item, err := domain.NewOrderItem(uuid.New(), "Widget", money, qty)
	require.NoError(t, err)
	require.NoError(t, o.AddItem(item))
	o.DrainEvents()
	return o
}

func TestService_CreateOrder(t *testing.T) {
	ctx := context.Background()

	t.Run("persists, publishes and projects", func(t *testing.T) {
		f := newFixture()
		f.repo.On("Add", mock.Anything, mock.AnythingOfType("*domain.Order")).Return(nil)
		userID := uuid.New()

		dto, err := f.service.CreateOrder(ctx, application.CreateOrderCommand{UserID: userID, ShippingAddress: testAddress})

		require.NoError(t, err)
		assert.Equal(t, userID, dto.UserID)
		assert.Equal(t, "pending", dto.Status)
		assert.Equal(t, "0.00", dto.TotalAmount)
		assert.Equal(t, "USD", dto.Currency)
		assert.Equal(t, "1 Main St, Springfield, IL 62701, US", dto.FormattedAddress)
		assert.Equal(t, []string{domain.EventTypeOrderCreated}, f.harness.Publisher.EventTypes())

		projected, _ := f.readModel.Get(ctx, dto.ID)
		require.NotNil(t, projected)
		assert.Equal(t, dto.ID, projected.ID)
	})

	t.Run("invalid address never reaches the store", func(t *testing.T) {
		f := newFixture()
		address := testAddress
		address.ZipCode = "  "

		_, err := f.service.CreateOrder(ctx, application.CreateOrderCommand{UserID: uuid.New(), ShippingAddress: address})

		assert.ErrorIs(t, err, domain.ErrInvalidAddress)
		f.repo.AssertNotCalled(t, "Add", mock.Anything, mock.Anything)
	})

	t.Run("read model failure is swallowed", func(t *testing.T) {
		repo := new(mockOrderRepo)
		repo.On("Add", mock.Anything, mock.Anything).Return(nil)
		harness := applicationtest.NewHarness()
		service := application.NewService(repo, failingReadModel{errors.New("mongo down")}, harness.Propagator)

		dto, err := service.CreateOrder(ctx, application.CreateOrderCommand{UserID: uuid.New(), ShippingAddress: testAddress})

		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, dto.ID)
		assert.Equal(t, int64(1), harness.ProjectionFailures(sharedApplication.LayerReadModel, "create", domain.AggregateType))
	})
}

func TestService_AddOrderItem(t *testing.T) {
	ctx := context.Background()

	t.Run("same product merges", func(t *testing.T) {
		f := newFixture()
		order := pendingOrder(t)
		f.repo.On("FindByID", mock.Anything, order.ID()).Return(order, nil)
		f.repo.On("Update", mock.Anything, order).Return(nil)
		productID := uuid.New()

		cmd := application.AddOrderItemCommand{
			OrderID:     order.ID(),
			ProductID:   productID,
			ProductName: "Widget",
			Price:       "10.00",
			Currency:    "usd",
			Quantity:    2,
		}
		_, err := f.service.AddOrderItem(ctx, cmd)
		require.NoError(t, err)

		cmd.Quantity = 3
		dto, err := f.service.AddOrderItem(ctx, cmd)
		require.NoError(t, err)

		require.Len(t, dto.Items, 1)
		assert.Equal(t, 5, dto.Items[0].Quantity)
		assert.Equal(t, "50.00", dto.TotalAmount)
		assert.Equal(t, []string{domain.EventTypeOrderItemAdded, domain.EventTypeOrderItemAdded}, f.harness.Publisher.EventTypes())

		projected, _ := f.readModel.Get(ctx, order.ID())
		require.NotNil(t, projected)
		assert.Equal(t, "50.00", projected.TotalAmount)
	})

	t.Run("validation errors", func(t *testing.T) {
		f := newFixture()
		base := application.AddOrderItemCommand{
			OrderID:     uuid.New(),
			ProductID:   uuid.New(),
			ProductName: "Widget",
			Price:       "10.00",
			Currency:    "USD",
			Quantity:    1,
		}

		cmd := base
		cmd.Quantity = 0
		_, err := f.service.AddOrderItem(ctx, cmd)
		assert.ErrorIs(t, err, domain.ErrInvalidQuantity)

		cmd = base
		cmd.Price = "-1"
		_, err = f.service.AddOrderItem(ctx, cmd)
		assert.ErrorIs(t, err, domain.ErrNegativeAmount)

		cmd = base
		cmd.Price = "10.005"
		_, err = f.service.AddOrderItem(ctx, cmd)
		assert.ErrorIs(t, err, domain.ErrInvalidAmount)

		cmd = base
		cmd.Currency = "DOLLARS"
		_, err = f.service.AddOrderItem(ctx, cmd)
		assert.ErrorIs(t, err, domain.ErrInvalidCurrency)

		cmd = base
		cmd.ProductName = " "
		_, err = f.service.AddOrderItem(ctx, cmd)
		assert.ErrorIs(t, err, domain.ErrEmptyProductName)

		f.repo.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
	})

	t.Run("unknown order", func(t *testing.T) {
		f := newFixture()
		id := uuid.New()
		f.repo.On("FindByID", mock.Anything, id).Return(nil, nil)

		_, err := f.service.AddOrderItem(ctx, application.AddOrderItemCommand{
			OrderID: id, ProductID: uuid.New(), ProductName: "Widget", Price: "1", Currency: "USD", Quantity: 1,
		})
		assert.ErrorIs(t, err, domain.ErrOrderNotFound)
	})
}

func TestService_RemoveOrderItem(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	order := withItem(t, pendingOrder(t), "10.00", 1)
	itemID := order.Items()[0].ID()
	f.repo.On("FindByID", mock.Anything, order.ID()).Return(order, nil)
	f.repo.On("Update", mock.Anything, order).Return(nil)

	dto, err := f.service.RemoveOrderItem(ctx, application.RemoveOrderItemCommand{OrderID: order.ID(), ItemID: itemID})
	require.NoError(t, err)
	assert.Empty(t, dto.Items)

	_, err = f.service.RemoveOrderItem(ctx, application.RemoveOrderItemCommand{OrderID: order.ID(), ItemID: itemID})
	assert.ErrorIs(t, err, domain.ErrOrderItemNotFound)
	assert.Equal(t, []string{domain.EventTypeOrderItemRemoved}, f.harness.Publisher.EventTypes())
}

func TestService_ConfirmOrder(t *testing.T) {
	ctx := context.Background()

	t.Run("empty order cannot be confirmed", func(t *testing.T) {
		f := newFixture()
		order := pendingOrder(t)
		f.repo.On("FindByID", mock.Anything, order.ID()).Return(order, nil)

		_, err := f.service.ConfirmOrder(ctx, application.ConfirmOrderCommand{OrderID: order.ID()})

		assert.ErrorIs(t, err, domain.ErrEmptyOrder)
		f.repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
		assert.Empty(t, f.harness.Publisher.Events())
	})

	t.Run("confirms once", func(t *testing.T) {
		f := newFixture()
		order := withItem(t, pendingOrder(t), "10.00", 2)
		f.repo.On("FindByID", mock.Anything, order.ID()).Return(order, nil)
		f.repo.On("Update", mock.Anything, order).Return(nil)

		dto, err := f.service.ConfirmOrder(ctx, application.ConfirmOrderCommand{OrderID: order.ID()})
		require.NoError(t, err)
		assert.Equal(t, "confirmed", dto.Status)
		assert.Equal(t, "20.00", dto.TotalAmount)

		_, err = f.service.ConfirmOrder(ctx, application.ConfirmOrderCommand{OrderID: order.ID()})
		assert.ErrorIs(t, err, domain.ErrOrderNotModifiable)
		assert.Equal(t, []string{domain.EventTypeOrderConfirmed}, f.harness.Publisher.EventTypes())
	})

	t.Run("persist failure publishes nothing", func(t *testing.T) {
		f := newFixture()
		order := withItem(t, pendingOrder(t), "10.00", 2)
		f.repo.On("FindByID", mock.Anything, order.ID()).Return(order, nil)
		f.repo.On("Update", mock.Anything, order).Return(errors.New("deadlock"))

		_, err := f.service.ConfirmOrder(ctx, application.ConfirmOrderCommand{OrderID: order.ID()})

		assert.ErrorContains(t, err, "deadlock")
		assert.Empty(t, f.harness.Publisher.Events())
		projected, _ := f.readModel.Get(ctx, order.ID())
		assert.Nil(t, projected)
	})
}

func TestService_CancelOrder(t *testing.T) {
	ctx := context.Background()

	for _, status := range []domain.Status{domain.StatusDelivered, domain.StatusCancelled} {
		t.Run("rejects "+status.String(), func(t *testing.T) {
			f := newFixture()
			address, _ := domain.NewShippingAddress("1 Main St", "Springfield", "IL", "62701", "US")
			order := domain.RehydrateOrder(uuid.New(), uuid.New(), status, address, nil, time.Now(), time.Now())
			f.repo.On("FindByID", mock.Anything, order.ID()).Return(order, nil)

			_, err := f.service.CancelOrder(ctx, application.CancelOrderCommand{OrderID: order.ID()})
			assert.ErrorIs(t, err, domain.ErrOrderNotModifiable)
		})
	}

	t.Run("cancels a confirmed order", func(t *testing.T) {
		f := newFixture()
		order := withItem(t, pendingOrder(t), "10.00", 1)
		require.NoError(t, order.Confirm())
		order.DrainEvents()
		f.repo.On("FindByID", mock.Anything, order.ID()).Return(order, nil)
		f.repo.On("Update", mock.Anything, order).Return(nil)

		dto, err := f.service.CancelOrder(ctx, application.CancelOrderCommand{OrderID: order.ID()})

		require.NoError(t, err)
		assert.Equal(t, "cancelled", dto.Status)
		assert.Equal(t, []string{domain.EventTypeOrderCancelled}, f.harness.Publisher.EventTypes())
	})
}

func TestService_GetOrder(t *testing.T) {
	ctx := context.Background()

	t.Run("read model hit", func(t *testing.T) {
		f := newFixture()
		order := withItem(t, pendingOrder(t), "3.00", 1)
		dto, err := application.ToDTO(order)
		require.NoError(t, err)
		require.NoError(t, f.readModel.Create(ctx, dto))

		got, err := f.service.GetOrder(ctx, order.ID())
		require.NoError(t, err)
		assert.Equal(t, "3.00", got.TotalAmount)
		f.repo.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
	})

	t.Run("write store hit back-fills", func(t *testing.T) {
		f := newFixture()
		order := pendingOrder(t)
		f.repo.On("FindByID", mock.Anything, order.ID()).Return(order, nil)

		got, err := f.service.GetOrder(ctx, order.ID())
		require.NoError(t, err)
		assert.Equal(t, order.ID(), got.ID)
		projected, _ := f.readModel.Get(ctx, order.ID())
		assert.NotNil(t, projected)
	})

	t.Run("unknown order", func(t *testing.T) {
		f := newFixture()
		id := uuid.New()
		f.repo.On("FindByID", mock.Anything, id).Return(nil, nil)

		_, err := f.service.GetOrder(ctx, id)
		assert.ErrorIs(t, err, domain.ErrOrderNotFound)
	})
}

func TestService_ListOrdersByUser(t *testing.T) {
	ctx := context.Background()

	t.Run("falls back to the write store and back-fills", func(t *testing.T) {
		f := newFixture()
		userID := uuid.New()
		address, _ := domain.NewShippingAddress("1 Main St", "Springfield", "IL", "62701", "US")
		now := time.Now().UTC()
		older := domain.RehydrateOrder(uuid.New(), userID, domain.StatusPending, address, nil, now.Add(-time.Hour), now)
		newer := domain.RehydrateOrder(uuid.New(), userID, domain.StatusPending, address, nil, now, now)
		f.repo.On("FindByUserID", mock.Anything, userID).Return([]*domain.Order{older, newer}, nil).Once()

		list, err := f.service.ListOrdersByUser(ctx, userID)
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, newer.ID(), list[0].ID)

		list, err = f.service.ListOrdersByUser(ctx, userID)
		require.NoError(t, err)
		assert.Len(t, list, 2)
		f.repo.AssertNumberOfCalls(t, "FindByUserID", 1)
	})

	t.Run("no orders anywhere", func(t *testing.T) {
		f := newFixture()
		userID := uuid.New()
		f.repo.On("FindByUserID", mock.Anything, userID).Return([]*domain.Order{}, nil)

		list, err := f.service.ListOrdersByUser(ctx, userID)
		require.NoError(t, err)
		assert.Empty(t, list)
	})
}

func TestService_ResyncReadModel(t *testing.T) {
	ctx := context.Background()

	t.Run("overwrites a stale projection", func(t *testing.T) {
		f := newFixture()
		order := withItem(t, pendingOrder(t), "4.00", 1)
		stale, _ := application.ToDTO(order)
		stale.Status = "shipped"
		require.NoError(t, f.readModel.Create(ctx, stale))
		f.repo.On("FindByID", mock.Anything, order.ID()).Return(order, nil)

		dto, err := f.service.ResyncReadModel(ctx, order.ID())
		require.NoError(t, err)
		assert.Equal(t, "pending", dto.Status)

		projected, _ := f.readModel.Get(ctx, order.ID())
		assert.Equal(t, "pending", projected.Status)
	})

	t.Run("read model failure is returned", func(t *testing.T) {
		repo := new(mockOrderRepo)
		order := pendingOrder(t)
		repo.On("FindByID", mock.Anything, order.ID()).Return(order, nil)
		service := application.NewService(repo, failingReadModel{errors.New("mongo down")}, applicationtest.NewHarness().Propagator)

		_, err := service.ResyncReadModel(ctx, order.ID())
		assert.ErrorContains(t, err, "mongo down")
	})
}

func TestService_ScheduledQueries(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	stale := pendingOrder(t)
	cutoff := time.Now()
	f.repo.On("FindPendingCreatedBefore", mock.Anything, cutoff).Return([]*domain.Order{stale}, nil)
	from, to := cutoff.Add(-24*time.Hour), cutoff
	f.repo.On("FindCreatedBetween", mock.Anything, from, to).Return([]*domain.Order{withItem(t, pendingOrder(t), "2.00", 3)}, nil)

	ids, err := f.service.PendingOrdersCreatedBefore(ctx, cutoff)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{stale.ID()}, ids)

	dtos, err := f.service.OrdersCreatedBetween(ctx, from, to)
	require.NoError(t, err)
	require.Len(t, dtos, 1)
	assert.Equal(t, "6.00", dtos[0].TotalAmount)
}
