package repository

import (
	"context"
	"errors"
	"fmt"

	"order-relay/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

const orderColumns = `id, user_id, product_id, product_name, quantity::text, unit,
	order_notes, status, notification_sent, ordered_at`

// orderRepository implements the OrderRepository interface using PostgreSQL.
type orderRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewOrderRepository creates a new PostgreSQL-backed order repository.
func NewOrderRepository(pool *pgxpool.Pool, logger zerolog.Logger) OrderRepository {
	return &orderRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "order").Logger(),
	}
}

// Create inserts a new order with status ordered and notification_sent false.
func (r *orderRepository) Create(ctx context.Context, order *model.OrderRecord) error {
	query := `
		INSERT INTO orders (id, user_id, product_id, product_name, quantity, unit, order_notes, status, notification_sent)
		VALUES ($1, $2, $3, $4, $5::numeric, $6, $7, $8, FALSE)
		RETURNING quantity::text, ordered_at
	`

	id := uuid.New()
	var quantity string
	err := r.pool.QueryRow(ctx, query,
		id,
		order.UserID,
		order.ProductID,
		order.ProductName,
		order.Quantity.String(),
		order.Unit,
		order.OrderNotes,
		model.StatusOrdered,
	).Scan(&quantity, &order.OrderedAt)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("user_id", order.UserID.String()).
			Str("product_name", order.ProductName).
			Msg("failed to create order")
		return fmt.Errorf("failed to create order: %w", err)
	}

	stored, err := decimal.NewFromString(quantity)
	if err != nil {
		return fmt.Errorf("failed to parse stored quantity %q: %w", quantity, err)
	}

	order.ID = id
	order.Quantity = stored
	order.Status = model.StatusOrdered
	order.NotificationSent = false

	r.logger.Debug().
		Str("order_id", order.ID.String()).
		Msg("order created successfully")

	return nil
}

// MarkNotified flags an order as delivered to the chat channel.
func (r *orderRepository) MarkNotified(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `UPDATE orders SET notification_sent = TRUE WHERE id = $1`, id)
	if err != nil {
		r.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to mark order notified")
		return &model.PersistenceError{Op: "mark notified", Index: -1, Err: err}
	}

	if tag.RowsAffected() == 0 {
		r.logger.Warn().Str("order_id", id.String()).Msg("mark notified matched no order")
		return &model.PersistenceError{Op: "mark notified", Index: -1, Err: model.ErrOrderNotFound}
	}

	return nil
}

// GetByID retrieves an order by its ID.
func (r *orderRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.OrderRecord, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

	order, err := scanOrder(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Str("order_id", id.String()).Msg("order not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to query order")
		return nil, fmt.Errorf("failed to query order: %w", err)
	}

	return order, nil
}

// List retrieves orders newest first, optionally filtered by status.
func (r *orderRepository) List(ctx context.Context, filter model.OrderFilter) ([]model.OrderRecord, error) {
	query := `SELECT ` + orderColumns + ` FROM orders`
	args := []any{}

	if filter.Status != nil {
		args = append(args, *filter.Status)
		query += fmt.Sprintf(" WHERE status = $%d", len(args))
	}

	args = append(args, filter.Limit, filter.Offset)
	query += fmt.Sprintf(" ORDER BY ordered_at DESC, id LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error().Err(err).
			Int("limit", filter.Limit).
			Int("offset", filter.Offset).
			Msg("failed to query orders")
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	orders := []model.OrderRecord{}
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan order row")
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, *order)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating order rows")
		return nil, fmt.Errorf("error iterating orders: %w", err)
	}

	return orders, nil
}

// UpdateStatus changes an order's status and returns the updated record.
func (r *orderRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.OrderStatus) (*model.OrderRecord, error) {
	query := `UPDATE orders SET status = $2 WHERE id = $1 RETURNING ` + orderColumns

	order, err := scanOrder(r.pool.QueryRow(ctx, query, id, status))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Str("order_id", id.String()).Msg("order not found for status update")
			return nil, nil
		}
		r.logger.Error().
			Err(err).
			Str("order_id", id.String()).
			Str("status", string(status)).
			Msg("failed to update order status")
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}

	r.logger.Debug().
		Str("order_id", id.String()).
		Str("status", string(status)).
		Msg("order status updated")

	return order, nil
}

// scanOrder reads one row selected with orderColumns.
func scanOrder(row pgx.Row) (*model.OrderRecord, error) {
	var (
		order    model.OrderRecord
		quantity string
		status   string
	)

	err := row.Scan(
		&order.ID,
		&order.UserID,
		&order.ProductID,
		&order.ProductName,
		&quantity,
		&order.Unit,
		&order.OrderNotes,
		&status,
		&order.NotificationSent,
		&order.OrderedAt,
	)
	if err != nil {
		return nil, err
	}

	order.Quantity, err = decimal.NewFromString(quantity)
	if err != nil {
		return nil, fmt.Errorf("invalid stored quantity %q: %w", quantity, err)
	}
	order.Status = model.OrderStatus(status)

	return &order, nil
}
