package service

import (
	"context"
	"fmt"
	"strings"

	"order-relay/internal/flex"
	"order-relay/internal/line"
	"order-relay/internal/model"
	"order-relay/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

const (
	defaultOrderLimit = 50
	maxOrderLimit     = 200

	// Quantity bounds. Raw input longer than maxQuantityLength is rejected
	// before parsing.
	maxQuantityLength    = 32
	maxQuantityIntDigits = 9
	maxQuantityScale     = 6

	// singleItem marks a validation error that is not tied to a bulk position.
	singleItem = -1
)

// orderService implements OrderService.
type orderService struct {
	orderRepo  repository.OrderRepository
	dispatcher line.Dispatcher
	composer   *flex.Composer
	logger     zerolog.Logger
}

// NewOrderService creates a new order service.
func NewOrderService(
	orderRepo repository.OrderRepository,
	dispatcher line.Dispatcher,
	composer *flex.Composer,
	logger zerolog.Logger,
) OrderService {
	return &orderService{
		orderRepo:  orderRepo,
		dispatcher: dispatcher,
		composer:   composer,
		logger:     logger.With().Str("service", "order").Logger(),
	}
}

// SubmitSingle validates, persists and notifies one order.
func (s *orderService) SubmitSingle(ctx context.Context, submitter model.Submitter, item model.OrderItemRequest) (*model.SubmissionOutcome, error) {
	record, err := s.validateItem(singleItem, submitter, item)
	if err != nil {
		s.logger.Warn().Err(err).Str("user_id", submitter.UserID.String()).Msg("rejected order")
		return nil, err
	}

	if err := s.orderRepo.Create(ctx, record); err != nil {
		s.logger.Error().Err(err).Str("user_id", submitter.UserID.String()).Msg("failed to persist order")
		return nil, &model.PersistenceError{Op: "create order", Index: singleItem, Err: err}
	}

	outcome := &model.SubmissionOutcome{Records: []model.OrderRecord{*record}}
	s.notify(context.WithoutCancel(ctx), flex.ModeSingle, submitter, "", outcome)

	s.logger.Info().
		Str("order_id", record.ID.String()).
		Bool("notified", outcome.Notified()).
		Msg("order submitted")

	return outcome, nil
}

// SubmitBulk validates every item, persists them in submission order and
// sends one bundled notification. A persistence failure at item k leaves
// items before k in the store.
func (s *orderService) SubmitBulk(ctx context.Context, submitter model.Submitter, items []model.OrderItemRequest) (*model.SubmissionOutcome, error) {
	if len(items) == 0 {
		return nil, model.NewValidationError(model.ErrCodeEmptyOrder, "orders", singleItem, "orders must contain at least one item")
	}

	records := make([]*model.OrderRecord, len(items))
	for i, item := range items {
		record, err := s.validateItem(i, submitter, item)
		if err != nil {
			s.logger.Warn().Err(err).
				Str("user_id", submitter.UserID.String()).
				Int("item_count", len(items)).
				Msg("rejected bulk order")
			return nil, err
		}
		records[i] = record
	}

	outcome := &model.SubmissionOutcome{Records: make([]model.OrderRecord, 0, len(records))}
	for i, record := range records {
		if err := s.orderRepo.Create(ctx, record); err != nil {
			s.logger.Error().Err(err).
				Int("item_index", i).
				Int("persisted", len(outcome.Records)).
				Msg("failed to persist bulk order item")
			return nil, &model.PersistenceError{Op: "create order", Index: i, Err: err}
		}
		outcome.Records = append(outcome.Records, *record)
	}

	accent := items[0].HeaderColor
	if accent != "" && !flex.IsColor(accent) {
		s.logger.Warn().Str("header_color", accent).Msg("ignoring malformed header color")
	}

	s.notify(context.WithoutCancel(ctx), flex.ModeBundle, submitter, accent, outcome)

	s.logger.Info().
		Int("order_count", len(outcome.Records)).
		Bool("notified", outcome.Notified()).
		Msg("bulk order submitted")

	return outcome, nil
}

// notify composes and dispatches the document for the persisted records and
// flags each record once delivery succeeds. Failures are recorded on outcome.
func (s *orderService) notify(ctx context.Context, mode flex.Mode, submitter model.Submitter, accent string, outcome *model.SubmissionOutcome) {
	items := make([]flex.Item, len(outcome.Records))
	for i, rec := range outcome.Records {
		items[i] = flex.Item{
			Name:     rec.ProductName,
			Quantity: rec.Quantity,
			Unit:     rec.Unit,
		}
		if rec.OrderNotes != nil {
			items[i].Notes = *rec.OrderNotes
		}
	}

	msg, err := s.composer.Compose(mode, items, submitter.DisplayName, accent)
	if err != nil {
		outcome.ComposeErr = err
		s.logger.Error().Err(err).Str("mode", mode.String()).Msg("failed to compose notification")
		return
	}

	result := s.dispatcher.Send(ctx, msg)
	outcome.Dispatch = model.DispatchOutcome{
		Attempted: true,
		OK:        result.OK,
		Detail:    result.Detail,
	}
	if !result.OK {
		s.logger.Warn().
			Str("mode", mode.String()).
			Int("order_count", len(outcome.Records)).
			Str("detail", result.Detail).
			Msg("notification not delivered")
		return
	}

	for i := range outcome.Records {
		id := outcome.Records[i].ID
		if err := s.orderRepo.MarkNotified(ctx, id); err != nil {
			outcome.ReconcileFailures = append(outcome.ReconcileFailures, model.ReconcileFailure{OrderID: id, Err: err})
			s.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to flag order as notified")
			continue
		}
		outcome.Records[i].NotificationSent = true
	}
}

// validateItem checks one submitted item and builds the record to persist.
func (s *orderService) validateItem(index int, submitter model.Submitter, item model.OrderItemRequest) (*model.OrderRecord, error) {
	name := strings.TrimSpace(item.ProductName)
	if name == "" {
		return nil, model.NewValidationError(model.ErrCodeMissingField, "productName", index, "productName is required")
	}

	raw := strings.TrimSpace(string(item.Quantity))
	if raw == "" {
		return nil, model.NewValidationError(model.ErrCodeMissingField, "quantity", index, "quantity is required")
	}
	if len(raw) > maxQuantityLength {
		return nil, model.NewValidationError(model.ErrCodeInvalidQuantity, "quantity", index, "quantity is too long")
	}
	quantity, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, model.NewValidationError(model.ErrCodeInvalidQuantity, "quantity", index, "quantity must be a number")
	}
	if !quantity.IsPositive() {
		return nil, model.NewValidationError(model.ErrCodeInvalidQuantity, "quantity", index, "quantity must be greater than zero")
	}
	if !quantityInRange(quantity) {
		return nil, model.NewValidationError(model.ErrCodeInvalidQuantity, "quantity", index,
			fmt.Sprintf("quantity must be below 1e%d with at most %d decimal places", maxQuantityIntDigits, maxQuantityScale))
	}

	unit := strings.TrimSpace(item.Unit)
	if unit == "" {
		return nil, model.NewValidationError(model.ErrCodeMissingField, "unit", index, "unit is required")
	}

	record := &model.OrderRecord{
		UserID:      submitter.UserID,
		ProductName: name,
		Quantity:    quantity,
		Unit:        unit,
	}
	if id := strings.TrimSpace(item.ProductID); id != "" {
		record.ProductID = &id
	}
	if notes := strings.TrimSpace(item.Notes); notes != "" {
		record.OrderNotes = &notes
	}

	return record, nil
}

// quantityInRange bounds the integer digits and decimal places of q. It works
// on the coefficient and exponent only, so a huge exponent is never expanded.
func quantityInRange(q decimal.Decimal) bool {
	coef := q.Coefficient().String()
	trimmed := strings.TrimRight(coef, "0")
	exp := int64(q.Exponent()) + int64(len(coef)-len(trimmed))

	intDigits := int64(len(trimmed)) + exp
	if intDigits > maxQuantityIntDigits {
		return false
	}
	return exp >= 0 || -exp <= maxQuantityScale
}

// GetByID retrieves an order by its ID.
func (s *orderService) GetByID(ctx context.Context, id uuid.UUID) (*model.OrderRecord, error) {
	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to get order")
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	if order == nil {
		s.logger.Debug().Str("order_id", id.String()).Msg("order not found")
		return nil, model.ErrOrderNotFound
	}

	return order, nil
}

// List retrieves order history newest first.
func (s *orderService) List(ctx context.Context, filter model.OrderFilter) ([]model.OrderRecord, error) {
	if filter.Status != nil && !filter.Status.Valid() {
		return nil, model.ErrInvalidStatus
	}
	filter.Limit, filter.Offset = clampPage(filter.Limit, filter.Offset, defaultOrderLimit, maxOrderLimit)

	orders, err := s.orderRepo.List(ctx, filter)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list orders")
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}

	return orders, nil
}

// UpdateStatus changes the fulfilment status of an order.
func (s *orderService) UpdateStatus(ctx context.Context, id uuid.UUID, status model.OrderStatus) (*model.OrderRecord, error) {
	if !status.Valid() {
		return nil, model.ErrInvalidStatus
	}

	order, err := s.orderRepo.UpdateStatus(ctx, id, status)
	if err != nil {
		s.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to update order status")
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}

	if order == nil {
		return nil, model.ErrOrderNotFound
	}

	s.logger.Info().
		Str("order_id", id.String()).
		Str("status", string(status)).
		Msg("order status updated")

	return order, nil
}
