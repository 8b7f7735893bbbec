package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"order-relay/internal/middleware"
	"order-relay/internal/model"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockOrderService is a mock implementation of OrderService.
type MockOrderService struct {
	mock.Mock
}

func (m *MockOrderService) SubmitSingle(ctx context.Context, submitter model.Submitter, item model.OrderItemRequest) (*model.SubmissionOutcome, error) {
	args := m.Called(ctx, submitter, item)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.SubmissionOutcome), args.Error(1)
}

func (m *MockOrderService) SubmitBulk(ctx context.Context, submitter model.Submitter, items []model.OrderItemRequest) (*model.SubmissionOutcome, error) {
	args := m.Called(ctx, submitter, items)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.SubmissionOutcome), args.Error(1)
}

func (m *MockOrderService) GetByID(ctx context.Context, id uuid.UUID) (*model.OrderRecord, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.OrderRecord), args.Error(1)
}

func (m *MockOrderService) List(ctx context.Context, filter model.OrderFilter) ([]model.OrderRecord, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.OrderRecord), args.Error(1)
}

func (m *MockOrderService) UpdateStatus(ctx context.Context, id uuid.UUID, status model.OrderStatus) (*model.OrderRecord, error) {
	args := m.Called(ctx, id, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.OrderRecord), args.Error(1)
}

var testSubmitter = model.Submitter{
	UserID:      uuid.MustParse("7f6c1a52-4b0e-4d8a-9a43-0c8f9d2e1b10"),
	DisplayName: "Aki Tanaka",
}

// orderRouter mounts the handler the same way the application router does,
// with the submitter already authenticated.
func orderRouter(h *OrderHandler) http.Handler {
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(middleware.WithSubmitter(r.Context(), testSubmitter)))
		})
	})
	r.Post("/api/send-order", h.SendOrder)
	r.Post("/api/send-bulk-order", h.SendBulkOrder)
	r.Get("/api/orders", h.List)
	r.Get("/api/orders/{id}", h.GetByID)
	r.Put("/api/orders/{id}/status", h.UpdateStatus)
	return r
}

func record(name string) model.OrderRecord {
	return model.OrderRecord{
		ID:          uuid.New(),
		UserID:      testSubmitter.UserID,
		ProductName: name,
		Quantity:    decimal.NewFromInt(2),
		Unit:        "本",
		Status:      model.StatusOrdered,
		OrderedAt:   time.Now(),
	}
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) model.ErrorResponse {
	t.Helper()
	var resp model.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestOrderHandler_SendOrder(t *testing.T) {
	logger := zerolog.Nop()
	saved := record("Milk")

	tests := []struct {
		name           string
		body           string
		mockReturn     *model.SubmissionOutcome
		mockError      error
		expectedStatus int
		expectedCode   string
		expectService  bool
	}{
		{
			name:           "Success with numeric quantity",
			body:           `{"productId":"P001","productName":"Milk","quantity":2,"unit":"本"}`,
			mockReturn:     &model.SubmissionOutcome{Records: []model.OrderRecord{saved}},
			expectedStatus: http.StatusCreated,
			expectService:  true,
		},
		{
			name:           "Success even when notification failed",
			body:           `{"productName":"Milk","quantity":"2","unit":"本"}`,
			mockReturn:     &model.SubmissionOutcome{Records: []model.OrderRecord{saved}, Dispatch: model.DispatchOutcome{Attempted: true, Detail: "push timed out after 5s"}},
			expectedStatus: http.StatusCreated,
			expectService:  true,
		},
		{
			name:           "Validation error",
			body:           `{"productName":"","quantity":2,"unit":"本"}`,
			mockError:      model.NewValidationError(model.ErrCodeMissingField, "productName", -1, "productName is required"),
			expectedStatus: http.StatusBadRequest,
			expectedCode:   model.ErrCodeMissingField,
			expectService:  true,
		},
		{
			name:           "Persistence error",
			body:           `{"productName":"Milk","quantity":2,"unit":"本"}`,
			mockError:      &model.PersistenceError{Op: "create order", Index: -1, Err: errors.New("connection refused")},
			expectedStatus: http.StatusInternalServerError,
			expectedCode:   model.ErrCodePersistence,
			expectService:  true,
		},
		{
			name:           "Invalid JSON",
			body:           `invalid json`,
			expectedStatus: http.StatusBadRequest,
			expectedCode:   model.ErrCodeInvalidJSON,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockOrderService)
			handler := NewOrderHandler(mockService, logger)

			if tt.expectService {
				mockService.On("SubmitSingle", mock.Anything, testSubmitter, mock.AnythingOfType("model.OrderItemRequest")).
					Return(tt.mockReturn, tt.mockError)
			}

			req := httptest.NewRequest(http.MethodPost, "/api/send-order", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()

			orderRouter(handler).ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)

			if tt.expectedStatus == http.StatusCreated {
				var resp model.SubmitResponse
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
				assert.True(t, resp.Success)
				assert.Equal(t, saved.ID, resp.OrderID)
				assert.NotContains(t, w.Body.String(), "timed out")
			} else {
				resp := decodeError(t, w)
				assert.False(t, resp.Success)
				assert.Equal(t, tt.expectedCode, resp.Error)
			}

			if tt.expectService {
				mockService.AssertExpectations(t)
			} else {
				mockService.AssertNotCalled(t, "SubmitSingle", mock.Anything, mock.Anything, mock.Anything)
			}
		})
	}
}

func TestOrderHandler_SendOrder_QuantityForms(t *testing.T) {
	for _, body := range []string{
		`{"productName":"Flour","quantity":3.5,"unit":"kg"}`,
		`{"productName":"Flour","quantity":"3.5","unit":"kg"}`,
	} {
		mockService := new(MockOrderService)
		handler := NewOrderHandler(mockService, zerolog.Nop())

		mockService.On("SubmitSingle", mock.Anything, testSubmitter, mock.MatchedBy(func(item model.OrderItemRequest) bool {
			return item.Quantity == "3.5"
		})).Return(&model.SubmissionOutcome{Records: []model.OrderRecord{record("Flour")}}, nil).Once()

		req := httptest.NewRequest(http.MethodPost, "/api/send-order", strings.NewReader(body))
		w := httptest.NewRecorder()
		orderRouter(handler).ServeHTTP(w, req)

		assert.Equal(t, http.StatusCreated, w.Code, body)
		mockService.AssertExpectations(t)
	}
}

func TestOrderHandler_SendOrder_Unauthenticated(t *testing.T) {
	mockService := new(MockOrderService)
	handler := NewOrderHandler(mockService, zerolog.Nop())

	req := httptest.NewRequest(http.MethodPost, "/api/send-order", strings.NewReader(`{}`))
	w := httptest.NewRecorder()
	handler.SendOrder(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	mockService.AssertNotCalled(t, "SubmitSingle", mock.Anything, mock.Anything, mock.Anything)
}

func TestOrderHandler_SendBulkOrder(t *testing.T) {
	logger := zerolog.Nop()
	first, second := record("Milk"), record("Eggs")

	t.Run("Success", func(t *testing.T) {
		mockService := new(MockOrderService)
		handler := NewOrderHandler(mockService, logger)

		mockService.On("SubmitBulk", mock.Anything, testSubmitter, mock.MatchedBy(func(items []model.OrderItemRequest) bool {
			return len(items) == 2 && items[0].ProductName == "Milk" && items[0].HeaderColor == "#27ae60"
		})).Return(&model.SubmissionOutcome{Records: []model.OrderRecord{first, second}}, nil).Once()

		body := `{"orders":[
			{"productName":"Milk","quantity":2,"unit":"本","headerColor":"#27ae60"},
			{"productName":"Eggs","quantity":"1","unit":"パック","notes":"Large"}
		]}`
		req := httptest.NewRequest(http.MethodPost, "/api/send-bulk-order", strings.NewReader(body))
		w := httptest.NewRecorder()
		orderRouter(handler).ServeHTTP(w, req)

		require.Equal(t, http.StatusCreated, w.Code)
		var resp model.BulkSubmitResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.True(t, resp.Success)
		assert.Equal(t, []uuid.UUID{first.ID, second.ID}, resp.OrderIDs)
		assert.Len(t, resp.Orders, 2)
		assert.Contains(t, resp.Message, "2件")
		mockService.AssertExpectations(t)
	})

	t.Run("Missing orders field reaches the service as empty", func(t *testing.T) {
		for _, body := range []string{`{}`, `{"orders":null}`} {
			mockService := new(MockOrderService)
			handler := NewOrderHandler(mockService, logger)

			mockService.On("SubmitBulk", mock.Anything, testSubmitter, []model.OrderItemRequest(nil)).
				Return(nil, model.NewValidationError(model.ErrCodeEmptyOrder, "orders", -1, "orders must contain at least one item")).Once()

			req := httptest.NewRequest(http.MethodPost, "/api/send-bulk-order", strings.NewReader(body))
			w := httptest.NewRecorder()
			orderRouter(handler).ServeHTTP(w, req)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, model.ErrCodeEmptyOrder, decodeError(t, w).Error)
			mockService.AssertExpectations(t)
		}
	})

	t.Run("Orders is not an array", func(t *testing.T) {
		mockService := new(MockOrderService)
		handler := NewOrderHandler(mockService, logger)

		req := httptest.NewRequest(http.MethodPost, "/api/send-bulk-order", strings.NewReader(`{"orders":{"productName":"Milk"}}`))
		w := httptest.NewRecorder()
		orderRouter(handler).ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, model.ErrCodeEmptyOrder, decodeError(t, w).Error)
		mockService.AssertNotCalled(t, "SubmitBulk", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Malformed item", func(t *testing.T) {
		mockService := new(MockOrderService)
		handler := NewOrderHandler(mockService, logger)

		req := httptest.NewRequest(http.MethodPost, "/api/send-bulk-order", strings.NewReader(`{"orders":[{"productName":42}]}`))
		w := httptest.NewRecorder()
		orderRouter(handler).ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, model.ErrCodeInvalidJSON, decodeError(t, w).Error)
	})

	t.Run("Persistence failure midway", func(t *testing.T) {
		mockService := new(MockOrderService)
		handler := NewOrderHandler(mockService, logger)

		mockService.On("SubmitBulk", mock.Anything, testSubmitter, mock.Anything).
			Return(nil, &model.PersistenceError{Op: "create order", Index: 1, Err: errors.New("disk full")}).Once()

		body := `{"orders":[{"productName":"Milk","quantity":2,"unit":"本"},{"productName":"Eggs","quantity":1,"unit":"パック"}]}`
		req := httptest.NewRequest(http.MethodPost, "/api/send-bulk-order", strings.NewReader(body))
		w := httptest.NewRecorder()
		orderRouter(handler).ServeHTTP(w, req)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		resp := decodeError(t, w)
		assert.Equal(t, model.ErrCodePersistence, resp.Error)
		assert.NotContains(t, resp.Message, "disk full")
	})
}

func TestOrderHandler_List(t *testing.T) {
	logger := zerolog.Nop()
	shipped := model.StatusShipped

	tests := []struct {
		name           string
		query          string
		expectedFilter *model.OrderFilter
		mockReturn     []model.OrderRecord
		mockError      error
		expectedStatus int
	}{
		{
			name:           "No parameters",
			query:          "",
			expectedFilter: &model.OrderFilter{},
			mockReturn:     []model.OrderRecord{record("Milk")},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "Status and paging",
			query:          "?status=shipped&limit=20&offset=40",
			expectedFilter: &model.OrderFilter{Status: &shipped, Limit: 20, Offset: 40},
			mockReturn:     []model.OrderRecord{},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "Unknown status",
			query:          "?status=lost",
			expectedFilter: nil,
			mockError:      model.ErrInvalidStatus,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "Invalid limit",
			query:          "?limit=abc",
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "Invalid offset",
			query:          "?offset=abc",
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "Service error",
			query:          "",
			expectedFilter: &model.OrderFilter{},
			mockError:      errors.New("database error"),
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockOrderService)
			handler := NewOrderHandler(mockService, logger)

			switch {
			case tt.expectedFilter != nil:
				mockService.On("List", mock.Anything, *tt.expectedFilter).Return(tt.mockReturn, tt.mockError).Once()
			case tt.mockError != nil:
				mockService.On("List", mock.Anything, mock.Anything).Return(nil, tt.mockError).Once()
			}

			req := httptest.NewRequest(http.MethodGet, "/api/orders"+tt.query, nil)
			w := httptest.NewRecorder()
			orderRouter(handler).ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedStatus == http.StatusOK {
				var resp struct {
					Success bool                `json:"success"`
					Orders  []model.OrderRecord `json:"orders"`
				}
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
				assert.True(t, resp.Success)
				assert.Len(t, resp.Orders, len(tt.mockReturn))
			}
			mockService.AssertExpectations(t)
		})
	}
}

func TestOrderHandler_GetByID(t *testing.T) {
	logger := zerolog.Nop()
	saved := record("Milk")

	tests := []struct {
		name           string
		orderID        string
		mockReturn     *model.OrderRecord
		mockError      error
		expectedStatus int
		expectService  bool
	}{
		{
			name:           "Success",
			orderID:        saved.ID.String(),
			mockReturn:     &saved,
			expectedStatus: http.StatusOK,
			expectService:  true,
		},
		{
			name:           "Order not found",
			orderID:        uuid.New().String(),
			mockError:      model.ErrOrderNotFound,
			expectedStatus: http.StatusNotFound,
			expectService:  true,
		},
		{
			name:           "Invalid UUID format",
			orderID:        "invalid-uuid",
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "Service error",
			orderID:        uuid.New().String(),
			mockError:      errors.New("database error"),
			expectedStatus: http.StatusInternalServerError,
			expectService:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockOrderService)
			handler := NewOrderHandler(mockService, logger)

			if tt.expectService {
				mockService.On("GetByID", mock.Anything, uuid.MustParse(tt.orderID)).
					Return(tt.mockReturn, tt.mockError)
			}

			req := httptest.NewRequest(http.MethodGet, "/api/orders/"+tt.orderID, nil)
			w := httptest.NewRecorder()
			orderRouter(handler).ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedStatus == http.StatusOK {
				var resp struct {
					Success bool              `json:"success"`
					Order   model.OrderRecord `json:"order"`
				}
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
				assert.Equal(t, saved.ID, resp.Order.ID)
				assert.Equal(t, "2", resp.Order.Quantity.String())
			}
			mockService.AssertExpectations(t)
		})
	}
}

func TestOrderHandler_UpdateStatus(t *testing.T) {
	logger := zerolog.Nop()
	saved := record("Milk")
	saved.Status = model.StatusDelivered

	tests := []struct {
		name           string
		orderID        string
		body           string
		status         model.OrderStatus
		mockReturn     *model.OrderRecord
		mockError      error
		expectedStatus int
		expectService  bool
	}{
		{
			name:           "Success",
			orderID:        saved.ID.String(),
			body:           `{"status":"delivered"}`,
			status:         model.StatusDelivered,
			mockReturn:     &saved,
			expectedStatus: http.StatusOK,
			expectService:  true,
		},
		{
			name:           "Invalid status",
			orderID:        saved.ID.String(),
			body:           `{"status":"returned"}`,
			status:         "returned",
			mockError:      model.ErrInvalidStatus,
			expectedStatus: http.StatusBadRequest,
			expectService:  true,
		},
		{
			name:           "Order not found",
			orderID:        saved.ID.String(),
			body:           `{"status":"cancelled"}`,
			status:         model.StatusCancelled,
			mockError:      model.ErrOrderNotFound,
			expectedStatus: http.StatusNotFound,
			expectService:  true,
		},
		{
			name:           "Invalid JSON",
			orderID:        saved.ID.String(),
			body:           `{"status":`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "Invalid UUID format",
			orderID:        "123",
			body:           `{"status":"confirmed"}`,
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockOrderService)
			handler := NewOrderHandler(mockService, logger)

			if tt.expectService {
				mockService.On("UpdateStatus", mock.Anything, uuid.MustParse(tt.orderID), tt.status).
					Return(tt.mockReturn, tt.mockError)
			}

			req := httptest.NewRequest(http.MethodPut, "/api/orders/"+tt.orderID+"/status", strings.NewReader(tt.body))
			w := httptest.NewRecorder()
			orderRouter(handler).ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			mockService.AssertExpectations(t)
		})
	}
}
