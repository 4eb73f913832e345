package application

import (
	"context"
	"fmt"
	"time"

	sharedApplication "github.com/felixgeelhaar/shopcore/internal/shared/application"
	"github.com/felixgeelhaar/shopcore/internal/users/domain"
	"github.com/google/uuid"
)

// DefaultCacheTTL is used when the service is built with a zero TTL.
const DefaultCacheTTL = time.Hour

// Service runs the user commands and queries across the write store,
// the read model and the cache.
type Service struct {
	repo       domain.Repository
	readModel  ReadModel
	cache      Cache
	propagator *sharedApplication.Propagator
	cacheTTL   time.Duration
}

// NewService creates a new user Service.
func NewService(repo domain.Repository, readModel ReadModel, cache Cache, propagator *sharedApplication.Propagator, cacheTTL time.Duration) *Service {
	if cacheTTL <= 0 {
		cacheTTL = DefaultCacheTTL
	}
	return &Service{
		repo:       repo,
		readModel:  readModel,
		cache:      cache,
		propagator: propagator,
		cacheTTL:   cacheTTL,
	}
}

// CreateUser registers a user after checking that the email is free.
func (s *Service) CreateUser(ctx context.Context, cmd CreateUserCommand) (*UserDTO, error) {
	email, err := domain.NewEmail(cmd.Email)
	if err != nil {
		return nil, err
	}
	name, err := domain.NewName(cmd.Name)
	if err != nil {
		return nil, err
	}
	if err := s.ensureEmailFree(ctx, email, uuid.Nil); err != nil {
		return nil, err
	}

	user := domain.NewUser(email, name)
	if err := s.propagator.Commit(ctx, user, func(txCtx context.Context) error {
		return s.repo.Add(txCtx, user)
	}); err != nil {
		return nil, fmt.Errorf("failed to save user: %w", err)
	}

	dto := ToDTO(user)
	s.propagator.BestEffort(ctx, sharedApplication.LayerReadModel, "create", domain.AggregateType, dto.ID, func(ctx context.Context) error {
		return s.readModel.Create(ctx, dto)
	})
	s.warmCache(ctx, dto)
	return &dto, nil
}

// UpdateUser changes the name and/or email of a user.
func (s *Service) UpdateUser(ctx context.Context, cmd UpdateUserCommand) (*UserDTO, error) {
	user, err := s.load(ctx, cmd.UserID)
	if err != nil {
		return nil, err
	}

	if cmd.Name != nil {
		name, err := domain.NewName(*cmd.Name)
		if err != nil {
			return nil, err
		}
		user.UpdateName(name)
	}
	if cmd.Email != nil {
		email, err := domain.NewEmail(*cmd.Email)
		if err != nil {
			return nil, err
		}
		if !email.Equals(user.Email()) {
			if err := s.ensureEmailFree(ctx, email, user.ID()); err != nil {
				return nil, err
			}
		}
		user.UpdateEmail(email)
	}

	return s.save(ctx, user)
}

// ActivateUser marks a user active.
func (s *Service) ActivateUser(ctx context.Context, cmd ActivateUserCommand) (*UserDTO, error) {
	user, err := s.load(ctx, cmd.UserID)
	if err != nil {
		return nil, err
	}
	user.Activate()
	return s.save(ctx, user)
}

// DeactivateUser marks a user inactive.
func (s *Service) DeactivateUser(ctx context.Context, cmd DeactivateUserCommand) (*UserDTO, error) {
	user, err := s.load(ctx, cmd.UserID)
	if err != nil {
		return nil, err
	}
	user.Deactivate()
	return s.save(ctx, user)
}

// DeleteUser hard-deletes a user. Orders of the user are kept.
func (s *Service) DeleteUser(ctx context.Context, cmd DeleteUserCommand) error {
	if _, err := s.load(ctx, cmd.UserID); err != nil {
		return err
	}

	if err := s.propagator.Commit(ctx, nil, func(txCtx context.Context) error {
		return s.repo.Delete(txCtx, cmd.UserID)
	}); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	s.propagator.BestEffort(ctx, sharedApplication.LayerReadModel, "delete", domain.AggregateType, cmd.UserID, func(ctx context.Context) error {
		return s.readModel.Delete(ctx, cmd.UserID)
	})
	s.propagator.BestEffort(ctx, sharedApplication.LayerCache, "delete", domain.AggregateType, cmd.UserID, func(ctx context.Context) error {
		return s.cache.Delete(ctx, cmd.UserID)
	})
	return nil
}

// GetUser reads through the cache, then the read model, then the write store.
// Each hit back-fills the layers above it.
func (s *Service) GetUser(ctx context.Context, id uuid.UUID) (*UserDTO, error) {
	var cached *UserDTO
	s.propagator.BestEffort(ctx, sharedApplication.LayerCache, "get", domain.AggregateType, id, func(ctx context.Context) error {
		var err error
		cached, err = s.cache.Get(ctx, id)
		return err
	})
	if cached != nil {
		return cached, nil
	}

	var projected *UserDTO
	s.propagator.BestEffort(ctx, sharedApplication.LayerReadModel, "get", domain.AggregateType, id, func(ctx context.Context) error {
		var err error
		projected, err = s.readModel.Get(ctx, id)
		return err
	})
	if projected != nil {
		s.warmCache(ctx, *projected)
		return projected, nil
	}

	user, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := ToDTO(user)
	s.project(ctx, dto)
	return &dto, nil
}

// GetUserByEmail reads a user from the write store.
func (s *Service) GetUserByEmail(ctx context.Context, rawEmail string) (*UserDTO, error) {
	email, err := domain.NewEmail(rawEmail)
	if err != nil {
		return nil, err
	}
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	dto := ToDTO(user)
	return &dto, nil
}

// SearchUsers finds users by email substring in the read model.
func (s *Service) SearchUsers(ctx context.Context, query SearchUsersQuery) ([]UserDTO, error) {
	limit := query.Limit
	if limit <= 0 || limit > MaxSearchLimit {
		limit = MaxSearchLimit
	}
	users, err := s.readModel.SearchByEmail(ctx, query.Email, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search users: %w", err)
	}
	return users, nil
}

func (s *Service) load(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if user == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrUserNotFound, id)
	}
	return user, nil
}

func (s *Service) save(ctx context.Context, user *domain.User) (*UserDTO, error) {
	if err := s.propagator.Commit(ctx, user, func(txCtx context.Context) error {
		return s.repo.Update(txCtx, user)
	}); err != nil {
		return nil, fmt.Errorf("failed to save user: %w", err)
	}

	dto := ToDTO(user)
	s.project(ctx, dto)
	return &dto, nil
}

func (s *Service) ensureEmailFree(ctx context.Context, email domain.Email, self uuid.UUID) error {
	existing, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("failed to check email: %w", err)
	}
	if existing != nil && existing.ID() != self {
		return fmt.Errorf("%w: %s", domain.ErrEmailAlreadyExists, email)
	}
	return nil
}

func (s *Service) project(ctx context.Context, dto UserDTO) {
	s.propagator.BestEffort(ctx, sharedApplication.LayerReadModel, "upsert", domain.AggregateType, dto.ID, func(ctx context.Context) error {
		return s.readModel.Update(ctx, dto)
	})
	s.warmCache(ctx, dto)
}

func (s *Service) warmCache(ctx context.Context, dto UserDTO) {
	s.propagator.BestEffort(ctx, sharedApplication.LayerCache, "set", domain.AggregateType, dto.ID, func(ctx context.Context) error {
		return s.cache.Set(ctx, dto, s.cacheTTL)
	})
}
