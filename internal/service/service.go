package service

import (
	"context"

	"order-relay/internal/model"

	"github.com/google/uuid"
)

// ProductService defines read operations on the product catalogue.
type ProductService interface {
	// GetAll lists active products, optionally within one category.
	GetAll(ctx context.Context, filter model.ProductFilter) ([]model.Product, error)

	// GetByID retrieves a single active product by ID.
	GetByID(ctx context.Context, id string) (*model.Product, error)
}

// OrderService defines order submission and history operations.
type OrderService interface {
	// SubmitSingle validates and persists one order, then notifies the chat
	// channel. Only validation and persistence failures are returned.
	SubmitSingle(ctx context.Context, submitter model.Submitter, item model.OrderItemRequest) (*model.SubmissionOutcome, error)

	// SubmitBulk persists items in order and sends one bundled notification.
	// Items persisted before a failing item stay persisted.
	SubmitBulk(ctx context.Context, submitter model.Submitter, items []model.OrderItemRequest) (*model.SubmissionOutcome, error)

	// GetByID retrieves an order by its ID.
	GetByID(ctx context.Context, id uuid.UUID) (*model.OrderRecord, error)

	// List retrieves order history newest first.
	List(ctx context.Context, filter model.OrderFilter) ([]model.OrderRecord, error)

	// UpdateStatus changes the fulfilment status of an order.
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.OrderStatus) (*model.OrderRecord, error)
}
