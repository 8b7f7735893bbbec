package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"

	"order-relay/internal/middleware"
	"order-relay/internal/model"
	"order-relay/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// maxBodyBytes caps the size of a submission body.
const maxBodyBytes = 1 << 20

// OrderHandler handles order-related HTTP requests.
type OrderHandler struct {
	service service.OrderService
	logger  zerolog.Logger
}

// NewOrderHandler creates a new order handler.
func NewOrderHandler(service service.OrderService, logger zerolog.Logger) *OrderHandler {
	return &OrderHandler{
		service: service,
		logger:  logger.With().Str("handler", "order").Logger(),
	}
}

// SendOrder handles POST /api/send-order requests.
func (h *OrderHandler) SendOrder(w http.ResponseWriter, r *http.Request) {
	submitter, ok := middleware.SubmitterFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, model.ErrCodeUnauthorised, "authentication required", h.logger)
		return
	}

	var req model.OrderItemRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid request body", h.logger)
		return
	}

	outcome, err := h.service.SubmitSingle(r.Context(), submitter, req)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, model.SubmitResponse{
		Success: true,
		Message: "発注を登録しました",
		OrderID: outcome.Records[0].ID,
	})
}

// SendBulkOrder handles POST /api/send-bulk-order requests.
func (h *OrderHandler) SendBulkOrder(w http.ResponseWriter, r *http.Request) {
	submitter, ok := middleware.SubmitterFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, model.ErrCodeUnauthorised, "authentication required", h.logger)
		return
	}

	var body struct {
		Orders json.RawMessage `json:"orders"`
	}
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid request body", h.logger)
		return
	}

	items, err := decodeItems(body.Orders)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	outcome, err := h.service.SubmitBulk(r.Context(), submitter, items)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, model.BulkSubmitResponse{
		Success:  true,
		Message:  fmt.Sprintf("%d件の発注を登録しました", len(outcome.Records)),
		OrderIDs: outcome.OrderIDs(),
		Orders:   outcome.Records,
	})
}

// decodeItems parses the orders field of a bulk request. An absent or null
// field yields nil so the service reports the empty submission.
func decodeItems(raw json.RawMessage) ([]model.OrderItemRequest, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}
	if raw[0] != '[' {
		return nil, model.NewValidationError(model.ErrCodeEmptyOrder, "orders", -1, "orders must be an array")
	}

	var items []model.OrderItemRequest
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, model.NewValidationError(model.ErrCodeInvalidJSON, "orders", -1, "orders contains a malformed item")
	}
	return items, nil
}

// List handles GET /api/orders requests.
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	var filter model.OrderFilter

	if s := r.URL.Query().Get("status"); s != "" {
		status := model.OrderStatus(s)
		filter.Status = &status
	}

	var ok bool
	if filter.Limit, ok = queryInt(w, r, "limit", h.logger); !ok {
		return
	}
	if filter.Offset, ok = queryInt(w, r, "offset", h.logger); !ok {
		return
	}

	orders, err := h.service.List(r.Context(), filter)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"orders":  orders,
	})
}

// GetByID handles GET /api/orders/{id} requests.
func (h *OrderHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	orderID, ok := h.orderID(w, r)
	if !ok {
		return
	}

	order, err := h.service.GetByID(r.Context(), orderID)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"order":   order,
	})
}

// UpdateStatus handles PUT /api/orders/{id}/status requests.
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	orderID, ok := h.orderID(w, r)
	if !ok {
		return
	}

	var req model.UpdateStatusRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid request body", h.logger)
		return
	}

	order, err := h.service.UpdateStatus(r.Context(), orderID, req.Status)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "ステータスを更新しました",
		"order":   order,
	})
}

func (h *OrderHandler) orderID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidParam, "invalid order ID format", h.logger)
		return uuid.Nil, false
	}
	return id, true
}
