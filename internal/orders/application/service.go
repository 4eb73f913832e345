package application

import (
	"context"
	"fmt"
	"time"

	"github.com/felixgeelhaar/shopcore/internal/orders/domain"
	sharedApplication "github.com/felixgeelhaar/shopcore/internal/shared/application"
	"github.com/google/uuid"
)

// Service runs the order commands and queries across the write store and
// the read model. Orders are not cached.
type Service struct {
	repo       domain.Repository
	readModel  ReadModel
	propagator *sharedApplication.Propagator
}

// NewService creates a new order Service.
func NewService(repo domain.Repository, readModel ReadModel, propagator *sharedApplication.Propagator) *Service {
	return &Service{
		repo:       repo,
		readModel:  readModel,
		propagator: propagator,
	}
}

// CreateOrder opens a pending order. The user is not looked up.
func (s *Service) CreateOrder(ctx context.Context, cmd CreateOrderCommand) (*OrderDTO, error) {
	a := cmd.ShippingAddress
	address, err := domain.NewShippingAddress(a.Street, a.City, a.State, a.ZipCode, a.Country)
	if err != nil {
		return nil, err
	}

	order := domain.NewOrder(cmd.UserID, address)
	if err := s.propagator.Commit(ctx, order, func(txCtx context.Context) error {
		return s.repo.Add(txCtx, order)
	}); err != nil {
		return nil, fmt.Errorf("failed to save order: %w", err)
	}

	dto, err := ToDTO(order)
	if err != nil {
		return nil, err
	}
	s.propagator.BestEffort(ctx, sharedApplication.LayerReadModel, "create", domain.AggregateType, dto.ID, func(ctx context.Context) error {
		return s.readModel.Create(ctx, dto)
	})
	return &dto, nil
}

// AddOrderItem adds a line to a pending order.
func (s *Service) AddOrderItem(ctx context.Context, cmd AddOrderItemCommand) (*OrderDTO, error) {
	price, err := domain.ParseMoney(cmd.Price, cmd.Currency)
	if err != nil {
		return nil, err
	}
	item, err := domain.NewOrderItem(cmd.ProductID, cmd.ProductName, price, cmd.Quantity)
	if err != nil {
		return nil, err
	}

	return s.mutate(ctx, cmd.OrderID, func(order *domain.Order) error {
		return order.AddItem(item)
	})
}

// RemoveOrderItem removes a line from a pending order.
func (s *Service) RemoveOrderItem(ctx context.Context, cmd RemoveOrderItemCommand) (*OrderDTO, error) {
	return s.mutate(ctx, cmd.OrderID, func(order *domain.Order) error {
		return order.RemoveItem(cmd.ItemID)
	})
}

// ConfirmOrder confirms a pending order with at least one item.
func (s *Service) ConfirmOrder(ctx context.Context, cmd ConfirmOrderCommand) (*OrderDTO, error) {
	return s.mutate(ctx, cmd.OrderID, (*domain.Order).Confirm)
}

// CancelOrder cancels an order that is neither delivered nor cancelled.
func (s *Service) CancelOrder(ctx context.Context, cmd CancelOrderCommand) (*OrderDTO, error) {
	return s.mutate(ctx, cmd.OrderID, (*domain.Order).Cancel)
}

// GetOrder reads through the read model, then the write store.
// A write-store hit back-fills the read model.
func (s *Service) GetOrder(ctx context.Context, id uuid.UUID) (*OrderDTO, error) {
	var projected *OrderDTO
	s.propagator.BestEffort(ctx, sharedApplication.LayerReadModel, "get", domain.AggregateType, id, func(ctx context.Context) error {
		var err error
		projected, err = s.readModel.Get(ctx, id)
		return err
	})
	if projected != nil {
		return projected, nil
	}

	order, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	dto, err := ToDTO(order)
	if err != nil {
		return nil, err
	}
	s.project(ctx, dto)
	return &dto, nil
}

// ListOrdersByUser returns the user's orders, newest first. When the read
// model has none, the write store is consulted and its orders are back-filled.
func (s *Service) ListOrdersByUser(ctx context.Context, userID uuid.UUID) ([]OrderDTO, error) {
	var projected []OrderDTO
	s.propagator.BestEffort(ctx, sharedApplication.LayerReadModel, "list", domain.AggregateType, userID, func(ctx context.Context) error {
		var err error
		projected, err = s.readModel.ListByUserID(ctx, userID)
		return err
	})
	if len(projected) > 0 {
		return projected, nil
	}

	orders, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	dtos, err := toDTOs(orders)
	if err != nil {
		return nil, err
	}
	for _, dto := range dtos {
		s.project(ctx, dto)
	}
	sortNewestFirst(dtos)
	return dtos, nil
}

// ResyncReadModel rebuilds the projection of one order from the write store.
// Unlike the command path, a read-model failure is returned.
func (s *Service) ResyncReadModel(ctx context.Context, id uuid.UUID) (*OrderDTO, error) {
	order, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	dto, err := ToDTO(order)
	if err != nil {
		return nil, err
	}
	if err := s.readModel.Update(ctx, dto); err != nil {
		return nil, fmt.Errorf("failed to resync order %s: %w", id, err)
	}
	return &dto, nil
}

// PendingOrdersCreatedBefore returns the ids of pending orders older than cutoff.
func (s *Service) PendingOrdersCreatedBefore(ctx context.Context, cutoff time.Time) ([]uuid.UUID, error) {
	orders, err := s.repo.FindPendingCreatedBefore(ctx, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to find pending orders: %w", err)
	}
	ids := make([]uuid.UUID, 0, len(orders))
	for _, o := range orders {
		ids = append(ids, o.ID())
	}
	return ids, nil
}

// OrdersCreatedBetween returns the orders created in [from, to) from the write store.
func (s *Service) OrdersCreatedBetween(ctx context.Context, from, to time.Time) ([]OrderDTO, error) {
	orders, err := s.repo.FindCreatedBetween(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to find orders: %w", err)
	}
	return toDTOs(orders)
}

// mutate runs the shared command flow: load, apply, persist, publish, project.
func (s *Service) mutate(ctx context.Context, id uuid.UUID, apply func(*domain.Order) error) (*OrderDTO, error) {
	order, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := apply(order); err != nil {
		return nil, err
	}

	if err := s.propagator.Commit(ctx, order, func(txCtx context.Context) error {
		return s.repo.Update(txCtx, order)
	}); err != nil {
		return nil, fmt.Errorf("failed to save order: %w", err)
	}

	dto, err := ToDTO(order)
	if err != nil {
		return nil, err
	}
	s.project(ctx, dto)
	return &dto, nil
}

func (s *Service) load(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load order: %w", err)
	}
	if order == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrOrderNotFound, id)
	}
	return order, nil
}

func (s *Service) project(ctx context.Context, dto OrderDTO) {
	s.propagator.BestEffort(ctx, sharedApplication.LayerReadModel, "upsert", domain.AggregateType, dto.ID, func(ctx context.Context) error {
		return s.readModel.Update(ctx, dto)
	})
}

func toDTOs(orders []*domain.Order) ([]OrderDTO, error) {
	dtos := make([]OrderDTO, 0, len(orders))
	for _, o := range orders {
		dto, err := ToDTO(o)
		if err != nil {
			return nil, err
		}
		dtos = append(dtos, dto)
	}
	return dtos, nil
}
