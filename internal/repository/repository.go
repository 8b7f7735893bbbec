package repository

import (
	"context"

	"order-relay/internal/model"

	"github.com/google/uuid"
)

// ProductRepository defines read access to the product catalogue.
type ProductRepository interface {
	// GetAll retrieves active products ordered by name, optionally limited to
	// one category.
	GetAll(ctx context.Context, filter model.ProductFilter) ([]model.Product, error)

	// GetByID retrieves a single active product by its ID.
	// Returns nil without error when the product does not exist.
	GetByID(ctx context.Context, id string) (*model.Product, error)
}

// OrderRepository defines the interface for order data access operations.
// Every call is a single-row statement; there is no transaction spanning calls.
type OrderRepository interface {
	// Create inserts a new order. It assigns ID, Status, NotificationSent and
	// OrderedAt on the passed record.
	Create(ctx context.Context, order *model.OrderRecord) error

	// MarkNotified sets notification_sent to true. Calling it again is a no-op.
	MarkNotified(ctx context.Context, id uuid.UUID) error

	// GetByID retrieves an order by its ID.
	// Returns nil without error when the order does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*model.OrderRecord, error)

	// List retrieves orders newest first, optionally filtered by status.
	List(ctx context.Context, filter model.OrderFilter) ([]model.OrderRecord, error)

	// UpdateStatus changes an order's status and returns the updated record.
	// Returns nil without error when the order does not exist.
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.OrderStatus) (*model.OrderRecord, error)
}
