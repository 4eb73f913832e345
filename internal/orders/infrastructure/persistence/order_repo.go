package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/felixgeelhaar/shopcore/internal/orders/domain"
	"github.com/felixgeelhaar/shopcore/internal/shared/infrastructure/database"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const orderColumns = `id, user_id, status,
	shipping_street, shipping_city, shipping_state, shipping_zip_code, shipping_country,
	created_at, updated_at`

// OrderRepository implements domain.Repository over PostgreSQL or SQLite.
// Items live in order_items and are rewritten on every Update.
type OrderRepository struct {
	conn   database.Connection
	driver database.Driver
}

// NewOrderRepository creates a new OrderRepository.
func NewOrderRepository(conn database.Connection) *OrderRepository {
	return &OrderRepository{conn: conn, driver: conn.Driver()}
}

func (r *OrderRepository) exec(ctx context.Context) database.Executor {
	return database.ExecutorFromContext(ctx, r.conn)
}

// Add inserts the order and its items.
func (r *OrderRepository) Add(ctx context.Context, o *domain.Order) error {
	address := o.ShippingAddress()
	query := r.driver.Rebind(`
		INSERT INTO orders (` + orderColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)

	_, err := r.exec(ctx).Exec(ctx, query,
		o.ID(),
		o.UserID(),
		o.Status().String(),
		address.Street(),
		address.City(),
		address.State(),
		address.ZipCode(),
		address.Country(),
		r.driver.TimeArg(o.CreatedAt()),
		r.driver.TimeArg(o.UpdatedAt()),
	)
	if err != nil {
		return fmt.Errorf("failed to insert order: %w", err)
	}
	return r.insertItems(ctx, o)
}

// Update overwrites the order row and replaces its items. Last writer wins.
func (r *OrderRepository) Update(ctx context.Context, o *domain.Order) error {
	address := o.ShippingAddress()
	query := r.driver.Rebind(`
		UPDATE orders
		SET status = ?, shipping_street = ?, shipping_city = ?, shipping_state = ?,
		    shipping_zip_code = ?, shipping_country = ?, updated_at = ?
		WHERE id = ?`)

	result, err := r.exec(ctx).Exec(ctx, query,
		o.Status().String(),
		address.Street(),
		address.City(),
		address.State(),
		address.ZipCode(),
		address.Country(),
		r.driver.TimeArg(o.UpdatedAt()),
		o.ID(),
	)
	if err != nil {
		return fmt.Errorf("failed to update order: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s", domain.ErrOrderNotFound, o.ID())
	}

	if _, err := r.exec(ctx).Exec(ctx, r.driver.Rebind(`DELETE FROM order_items WHERE order_id = ?`), o.ID()); err != nil {
		return fmt.Errorf("failed to clear order items: %w", err)
	}
	return r.insertItems(ctx, o)
}

// Delete removes an order and its items.
func (r *OrderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := r.exec(ctx).Exec(ctx, r.driver.Rebind(`DELETE FROM order_items WHERE order_id = ?`), id); err != nil {
		return fmt.Errorf("failed to delete order items: %w", err)
	}
	if _, err := r.exec(ctx).Exec(ctx, r.driver.Rebind(`DELETE FROM orders WHERE id = ?`), id); err != nil {
		return fmt.Errorf("failed to delete order: %w", err)
	}
	return nil
}

// FindByID returns nil, nil when the order does not exist.
func (r *OrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	orders, err := r.query(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = ?`, id)
	if err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return nil, nil
	}
	return orders[0], nil
}

// FindByUserID returns the user's orders, newest first.
func (r *OrderRepository) FindByUserID(ctx context.Context, userID uuid.UUID) ([]*domain.Order, error) {
	return r.query(ctx, `SELECT `+orderColumns+` FROM orders WHERE user_id = ? ORDER BY created_at DESC`, userID)
}

// FindPendingCreatedBefore returns pending orders created strictly before cutoff.
func (r *OrderRepository) FindPendingCreatedBefore(ctx context.Context, cutoff time.Time) ([]*domain.Order, error) {
	return r.query(ctx, `SELECT `+orderColumns+` FROM orders
		WHERE status = ? AND created_at < ?
		ORDER BY created_at`,
		domain.StatusPending.String(), r.driver.TimeArg(cutoff))
}

// FindCreatedBetween returns orders created in [from, to).
func (r *OrderRepository) FindCreatedBetween(ctx context.Context, from, to time.Time) ([]*domain.Order, error) {
	return r.query(ctx, `SELECT `+orderColumns+` FROM orders
		WHERE created_at >= ? AND created_at < ?
		ORDER BY created_at`,
		r.driver.TimeArg(from), r.driver.TimeArg(to))
}

func (r *OrderRepository) insertItems(ctx context.Context, o *domain.Order) error {
	query := r.driver.Rebind(`
		INSERT INTO order_items (id, order_id, position, product_id, product_name, price, currency, quantity)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)

	for pos, item := range o.Items() {
		_, err := r.exec(ctx).Exec(ctx, query,
			item.ID(),
			o.ID(),
			pos,
			item.ProductID(),
			item.ProductName(),
			item.Price().Amount().StringFixed(2),
			item.Price().Currency(),
			item.Quantity(),
		)
		if err != nil {
			return fmt.Errorf("failed to insert order item: %w", err)
		}
	}
	return nil
}

type orderRow struct {
	id, userID                            uuid.UUID
	status                                string
	street, city, state, zipCode, country string
	createdAt, updatedAt                  database.Time
}

// query loads order rows first and their items afterwards, so that no two
// result sets are open at once on the single SQLite connection.
func (r *OrderRepository) query(ctx context.Context, query string, args ...any) ([]*domain.Order, error) {
	rows, err := r.exec(ctx).Query(ctx, r.driver.Rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}

	var headers []orderRow
	for rows.Next() {
		var h orderRow
		if err := rows.Scan(
			&h.id, &h.userID, &h.status,
			&h.street, &h.city, &h.state, &h.zipCode, &h.country,
			&h.createdAt, &h.updatedAt,
		); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		headers = append(headers, h)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("failed to read orders: %w", err)
	}
	rows.Close()

	orders := make([]*domain.Order, 0, len(headers))
	for _, h := range headers {
		order, err := r.rehydrate(ctx, h)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	return orders, nil
}

func (r *OrderRepository) rehydrate(ctx context.Context, h orderRow) (*domain.Order, error) {
	status, err := domain.ParseStatus(h.status)
	if err != nil {
		return nil, fmt.Errorf("stored order %s: %w", h.id, err)
	}
	address, err := domain.NewShippingAddress(h.street, h.city, h.state, h.zipCode, h.country)
	if err != nil {
		return nil, fmt.Errorf("stored order %s: %w", h.id, err)
	}
	items, err := r.loadItems(ctx, h.id)
	if err != nil {
		return nil, err
	}
	return domain.RehydrateOrder(h.id, h.userID, status, address, items, h.createdAt.Time, h.updatedAt.Time), nil
}

func (r *OrderRepository) loadItems(ctx context.Context, orderID uuid.UUID) ([]domain.OrderItem, error) {
	query := r.driver.Rebind(`
		SELECT id, product_id, product_name, price, currency, quantity
		FROM order_items
		WHERE order_id = ?
		ORDER BY position`)

	rows, err := r.exec(ctx).Query(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to query order items: %w", err)
	}
	defer rows.Close()

	var items []domain.OrderItem
	for rows.Next() {
		var (
			id, productID uuid.UUID
			name          string
			amount        decimal.Decimal
			currency      string
			quantity      int
		)
		if err := rows.Scan(&id, &productID, &name, &amount, &currency, &quantity); err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		price, err := domain.NewMoney(amount, currency)
		if err != nil {
			return nil, fmt.Errorf("stored order item %s: %w", id, err)
		}
		item, err := domain.RehydrateOrderItem(id, productID, name, price, quantity)
		if err != nil {
			return nil, fmt.Errorf("stored order item %s: %w", id, err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}
