package persistence

import (
	"context"
	"fmt"

	"github.com/felixgeelhaar/shopcore/internal/shared/infrastructure/database"
	"github.com/felixgeelhaar/shopcore/internal/users/domain"
	"github.com/google/uuid"
)

const userColumns = `id, email, name, is_active, created_at, updated_at`

// UserRepository implements domain.Repository over PostgreSQL or SQLite.
type UserRepository struct {
	conn   database.Connection
	driver database.Driver
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(conn database.Connection) *UserRepository {
	return &UserRepository{conn: conn, driver: conn.Driver()}
}

func (r *UserRepository) exec(ctx context.Context) database.Executor {
	return database.ExecutorFromContext(ctx, r.conn)
}

// Add inserts a new user.
func (r *UserRepository) Add(ctx context.Context, u *domain.User) error {
	query := r.driver.Rebind(`
		INSERT INTO users (` + userColumns + `)
		VALUES (?, ?, ?, ?, ?, ?)`)

	_, err := r.exec(ctx).Exec(ctx, query,
		u.ID(),
		u.Email().String(),
		u.Name().String(),
		u.IsActive(),
		r.driver.TimeArg(u.CreatedAt()),
		r.driver.TimeArg(u.UpdatedAt()),
	)
	if database.IsUniqueViolation(err) {
		return fmt.Errorf("%w: %s", domain.ErrEmailAlreadyExists, u.Email())
	}
	if err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

// Update overwrites the stored user. Last writer wins.
func (r *UserRepository) Update(ctx context.Context, u *domain.User) error {
	query := r.driver.Rebind(`
		UPDATE users
		SET email = ?, name = ?, is_active = ?, updated_at = ?
		WHERE id = ?`)

	result, err := r.exec(ctx).Exec(ctx, query,
		u.Email().String(),
		u.Name().String(),
		u.IsActive(),
		r.driver.TimeArg(u.UpdatedAt()),
		u.ID(),
	)
	if database.IsUniqueViolation(err) {
		return fmt.Errorf("%w: %s", domain.ErrEmailAlreadyExists, u.Email())
	}
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s", domain.ErrUserNotFound, u.ID())
	}
	return nil
}

// Delete removes a user. Deleting an unknown id is not an error.
func (r *UserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.exec(ctx).Exec(ctx, r.driver.Rebind(`DELETE FROM users WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}

// FindByID returns nil, nil when the user does not exist.
func (r *UserRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	query := r.driver.Rebind(`SELECT ` + userColumns + ` FROM users WHERE id = ?`)
	return r.scanOne(r.exec(ctx).QueryRow(ctx, query, id))
}

// FindByEmail returns nil, nil when no user has the email.
func (r *UserRepository) FindByEmail(ctx context.Context, email domain.Email) (*domain.User, error) {
	query := r.driver.Rebind(`SELECT ` + userColumns + ` FROM users WHERE email = ?`)
	return r.scanOne(r.exec(ctx).QueryRow(ctx, query, email.String()))
}

func (r *UserRepository) scanOne(row database.Row) (*domain.User, error) {
	var (
		id                   uuid.UUID
		rawEmail, rawName    string
		active               bool
		createdAt, updatedAt database.Time
	)
	if err := row.Scan(&id, &rawEmail, &rawName, &active, &createdAt, &updatedAt); err != nil {
		if database.IsNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}

	email, err := domain.NewEmail(rawEmail)
	if err != nil {
		return nil, fmt.Errorf("stored user %s: %w", id, err)
	}
	name, err := domain.NewName(rawName)
	if err != nil {
		return nil, fmt.Errorf("stored user %s: %w", id, err)
	}

	return domain.RehydrateUser(id, email, name, active, createdAt.Time, updatedAt.Time), nil
}
