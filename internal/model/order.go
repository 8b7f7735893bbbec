package model

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderStatus is the fulfilment state of a persisted order.
type OrderStatus string

const (
	StatusOrdered   OrderStatus = "ordered"
	StatusConfirmed OrderStatus = "confirmed"
	StatusShipped   OrderStatus = "shipped"
	StatusDelivered OrderStatus = "delivered"
	StatusCancelled OrderStatus = "cancelled"
)

var validStatuses = map[OrderStatus]bool{
	StatusOrdered:   true,
	StatusConfirmed: true,
	StatusShipped:   true,
	StatusDelivered: true,
	StatusCancelled: true,
}

// Valid reports whether s is one of the known order statuses.
func (s OrderStatus) Valid() bool {
	return validStatuses[s]
}

// OrderRecord represents a persisted purchase request.
type OrderRecord struct {
	ID               uuid.UUID       `json:"id" db:"id"`
	UserID           uuid.UUID       `json:"userId" db:"user_id"`
	ProductID        *string         `json:"productId" db:"product_id"`
	ProductName      string          `json:"productName" db:"product_name"`
	Quantity         decimal.Decimal `json:"quantity" db:"quantity"`
	Unit             string          `json:"unit" db:"unit"`
	OrderNotes       *string         `json:"orderNotes" db:"order_notes"`
	Status           OrderStatus     `json:"status" db:"status"`
	NotificationSent bool            `json:"notificationSent" db:"notification_sent"`
	OrderedAt        time.Time       `json:"orderedAt" db:"ordered_at"`
}

// QuantityInput holds the quantity exactly as the client sent it. Both JSON
// numbers and numeric strings are accepted; parsing happens during validation.
type QuantityInput string

// UnmarshalJSON accepts a bare JSON number or a quoted string.
func (q *QuantityInput) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "null" {
		*q = ""
		return nil
	}
	if unquoted, err := strconv.Unquote(raw); err == nil {
		*q = QuantityInput(unquoted)
		return nil
	}
	*q = QuantityInput(raw)
	return nil
}

// OrderItemRequest is a single item as submitted by staff.
type OrderItemRequest struct {
	ProductID   string        `json:"productId,omitempty"`
	ProductName string        `json:"productName"`
	Quantity    QuantityInput `json:"quantity"`
	Unit        string        `json:"unit"`
	Notes       string        `json:"notes,omitempty"`
	HeaderColor string        `json:"headerColor,omitempty"`
}

// BulkOrderRequest is the payload of a bulk submission.
type BulkOrderRequest struct {
	Orders []OrderItemRequest `json:"orders"`
}

// OrderFilter narrows an order history listing.
type OrderFilter struct {
	Status *OrderStatus
	Limit  int
	Offset int
}

// UpdateStatusRequest is the payload for changing an order's status.
type UpdateStatusRequest struct {
	Status OrderStatus `json:"status"`
}

// Submitter identifies the staff member placing an order.
type Submitter struct {
	UserID      uuid.UUID
	DisplayName string
}

// SubmitResponse is returned for a single submission.
type SubmitResponse struct {
	Success bool      `json:"success"`
	Message string    `json:"message"`
	OrderID uuid.UUID `json:"orderId"`
}

// BulkSubmitResponse is returned for a bulk submission.
type BulkSubmitResponse struct {
	Success  bool          `json:"success"`
	Message  string        `json:"message"`
	OrderIDs []uuid.UUID   `json:"orderIds"`
	Orders   []OrderRecord `json:"orders"`
}
