package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"tienda-api/internal/middleware"
	"tienda-api/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func testOrder() *model.Order {
	orderID := uuid.New()
	return &model.Order{
		ID:            orderID,
		OrderNumber:   "ORD-2025-0001",
		Status:        model.OrderStatusPending,
		Subtotal:      1_500_000,
		ShippingCost:  350_000,
		Total:         1_850_000,
		PaymentMethod: model.PaymentMethodMercadoPago,
		Items: []model.OrderItem{
			{ID: uuid.New(), OrderID: orderID, ProductID: uuid.New(), ProductName: "Mate Imperial", UnitPrice: 1_500_000, Quantity: 1, Total: 1_500_000},
		},
	}
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) model.ErrorResponse {
	t.Helper()
	var body model.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestOrderHandler_Create(t *testing.T) {
	logger := zerolog.Nop()

	validBody := map[string]any{
		"guestEmail":    "ana@example.com",
		"paymentMethod": "mercadopago",
		"items":         []map[string]any{{"productId": uuid.NewString(), "quantity": 1}},
		"shippingAddress": map[string]any{
			"fullName":   "Ana Pérez",
			"phone":      "1155550000",
			"street":     "Corrientes",
			"number":     "1234",
			"city":       "CABA",
			"province":   "Buenos Aires",
			"postalCode": "C1043",
			"zone":       "amba",
		},
	}

	tests := []struct {
		name           string
		requestBody    any
		mockReturn     *model.Order
		mockError      error
		expectedStatus int
		expectedCode   string
		expectService  bool
	}{
		{
			name:           "Success",
			requestBody:    validBody,
			mockReturn:     testOrder(),
			expectedStatus: http.StatusCreated,
			expectService:  true,
		},
		{
			name:           "Invalid coupon",
			requestBody:    validBody,
			mockError:      model.ErrInvalidCoupon,
			expectedStatus: http.StatusBadRequest,
			expectedCode:   model.ErrCodeInvalidCoupon,
			expectService:  true,
		},
		{
			name:           "Product not found",
			requestBody:    validBody,
			mockError:      model.ErrProductNotFound,
			expectedStatus: http.StatusBadRequest,
			expectedCode:   model.ErrCodeProductNotFound,
			expectService:  true,
		},
		{
			name:           "Product unavailable",
			requestBody:    validBody,
			mockError:      model.ErrProductUnavailable,
			expectedStatus: http.StatusConflict,
			expectedCode:   model.ErrCodeProductUnavailable,
			expectService:  true,
		},
		{
			name:           "Invalid quantity",
			requestBody:    validBody,
			mockError:      model.ErrInvalidQuantity,
			expectedStatus: http.StatusBadRequest,
			expectedCode:   model.ErrCodeInvalidQuantity,
			expectService:  true,
		},
		{
			name:           "Validation error",
			requestBody:    validBody,
			mockError:      model.NewValidationError("guestEmail", "is required for guest checkout"),
			expectedStatus: http.StatusBadRequest,
			expectedCode:   model.ErrCodeInvalidField,
			expectService:  true,
		},
		{
			name:           "Totals mismatch",
			requestBody:    validBody,
			mockError:      model.ErrTotalsMismatch,
			expectedStatus: http.StatusConflict,
			expectedCode:   model.ErrCodeTotalsMismatch,
			expectService:  true,
		},
		{
			name:           "Order numbers exhausted",
			requestBody:    validBody,
			mockError:      model.ErrOrderNumberExhausted,
			expectedStatus: http.StatusServiceUnavailable,
			expectedCode:   model.ErrCodeOrderNumberExhausted,
			expectService:  true,
		},
		{
			name:           "Invalid JSON",
			requestBody:    "invalid json",
			expectedStatus: http.StatusBadRequest,
			expectedCode:   model.ErrCodeInvalidJSON,
		},
		{
			name:           "Service internal error",
			requestBody:    validBody,
			mockError:      errors.New("database connection failed"),
			expectedStatus: http.StatusInternalServerError,
			expectedCode:   model.ErrCodeInternalError,
			expectService:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockOrderService)
			handler := NewOrderHandler(mockService, logger)

			var body []byte
			if str, ok := tt.requestBody.(string); ok {
				body = []byte(str)
			} else {
				var err error
				body, err = json.Marshal(tt.requestBody)
				require.NoError(t, err)
			}

			if tt.expectService {
				mockService.On("CreateOrder", mock.Anything, mock.AnythingOfType("*model.CreateOrderRequest")).
					Return(tt.mockReturn, tt.mockError)
			}

			req := httptest.NewRequest(http.MethodPost, "/api/orders", bytes.NewBuffer(body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()

			handler.Create(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedCode != "" {
				errBody := decodeError(t, w)
				assert.Equal(t, tt.expectedCode, errBody.Code)
				assert.NotContains(t, errBody.Error, "database")
			}

			if tt.expectService {
				mockService.AssertExpectations(t)
			} else {
				mockService.AssertNotCalled(t, "CreateOrder", mock.Anything, mock.Anything)
			}
		})
	}
}

func TestOrderHandler_Create_UsesAuthenticatedUser(t *testing.T) {
	mockService := new(MockOrderService)
	handler := NewOrderHandler(mockService, zerolog.Nop())

	mockService.On("CreateOrder", mock.Anything, mock.MatchedBy(func(req *model.CreateOrderRequest) bool {
		return req.UserID == "user-7" && len(req.Items) == 1 && req.Items[0].Quantity == 2
	})).Return(testOrder(), nil)

	body := `{"userId":"spoofed","items":[{"productId":"` + uuid.NewString() + `","quantity":2}]}`
	req := httptest.NewRequest(http.MethodPost, "/api/orders", bytes.NewBufferString(body))
	req = req.WithContext(middleware.WithUserID(req.Context(), "user-7"))
	w := httptest.NewRecorder()

	handler.Create(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	mockService.AssertExpectations(t)
}

func TestOrderHandler_GetByID(t *testing.T) {
	logger := zerolog.Nop()
	order := testOrder()

	tests := []struct {
		name           string
		orderID        string
		mockReturn     *model.Order
		mockError      error
		expectedStatus int
		expectService  bool
	}{
		{
			name:           "Success",
			orderID:        order.ID.String(),
			mockReturn:     order,
			expectedStatus: http.StatusOK,
			expectService:  true,
		},
		{
			name:           "Order not found",
			orderID:        order.ID.String(),
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
			orderID:        order.ID.String(),
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
				mockService.On("GetOrder", mock.Anything, order.ID).Return(tt.mockReturn, tt.mockError)
			}

			req := httptest.NewRequest(http.MethodGet, "/api/orders/"+tt.orderID, nil)
			w := httptest.NewRecorder()

			routed(http.MethodGet, "/api/orders/{id}", handler.GetByID).ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedStatus == http.StatusOK {
				var got model.Order
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
				assert.Equal(t, "ORD-2025-0001", got.OrderNumber)
				assert.Equal(t, int64(1_850_000), got.Total)
				assert.Len(t, got.Items, 1)
			}

			mockService.AssertExpectations(t)
		})
	}
}

func TestOrderHandler_List(t *testing.T) {
	logger := zerolog.Nop()

	t.Run("Signed-in buyer", func(t *testing.T) {
		mockService := new(MockOrderService)
		handler := NewOrderHandler(mockService, logger)
		mockService.On("ListOrdersForUser", mock.Anything, "user-7").Return([]model.Order{*testOrder()}, nil)

		req := httptest.NewRequest(http.MethodGet, "/api/orders", nil)
		req = req.WithContext(middleware.WithUserID(req.Context(), "user-7"))
		w := httptest.NewRecorder()

		handler.List(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		var got []model.Order
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		assert.Len(t, got, 1)
	})

	t.Run("No orders renders an empty list", func(t *testing.T) {
		mockService := new(MockOrderService)
		handler := NewOrderHandler(mockService, logger)
		mockService.On("ListOrdersForUser", mock.Anything, "user-8").Return(nil, nil)

		req := httptest.NewRequest(http.MethodGet, "/api/orders", nil)
		req = req.WithContext(middleware.WithUserID(req.Context(), "user-8"))
		w := httptest.NewRecorder()

		handler.List(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `[]`, w.Body.String())
	})

	t.Run("Guest", func(t *testing.T) {
		mockService := new(MockOrderService)
		handler := NewOrderHandler(mockService, logger)

		req := httptest.NewRequest(http.MethodGet, "/api/orders", nil)
		w := httptest.NewRecorder()

		handler.List(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		mockService.AssertNotCalled(t, "ListOrdersForUser", mock.Anything, mock.Anything)
	})
}

func TestOrderHandler_UpdateStatus(t *testing.T) {
	logger := zerolog.Nop()
	order := testOrder()

	tests := []struct {
		name           string
		orderID        string
		body           string
		mockError      error
		expectedStatus int
		expectedCode   string
		expectService  bool
	}{
		{
			name:           "Success",
			orderID:        order.ID.String(),
			body:           `{"status":"shipped"}`,
			expectedStatus: http.StatusOK,
			expectService:  true,
		},
		{
			name:           "Transition not allowed",
			orderID:        order.ID.String(),
			body:           `{"status":"shipped"}`,
			mockError:      model.ErrInvalidTransition,
			expectedStatus: http.StatusConflict,
			expectedCode:   model.ErrCodeInvalidTransition,
			expectService:  true,
		},
		{
			name:           "Unknown status",
			orderID:        order.ID.String(),
			body:           `{"status":"shipped"}`,
			mockError:      model.ErrInvalidStatus,
			expectedStatus: http.StatusBadRequest,
			expectedCode:   model.ErrCodeInvalidStatus,
			expectService:  true,
		},
		{
			name:           "Order not found",
			orderID:        order.ID.String(),
			body:           `{"status":"shipped"}`,
			mockError:      model.ErrOrderNotFound,
			expectedStatus: http.StatusNotFound,
			expectedCode:   model.ErrCodeOrderNotFound,
			expectService:  true,
		},
		{
			name:           "Missing status",
			orderID:        order.ID.String(),
			body:           `{}`,
			expectedStatus: http.StatusBadRequest,
			expectedCode:   model.ErrCodeMissingField,
		},
		{
			name:           "Invalid JSON",
			orderID:        order.ID.String(),
			body:           `{`,
			expectedStatus: http.StatusBadRequest,
			expectedCode:   model.ErrCodeInvalidJSON,
		},
		{
			name:           "Invalid UUID",
			orderID:        "42",
			body:           `{"status":"shipped"}`,
			expectedStatus: http.StatusBadRequest,
			expectedCode:   model.ErrCodeInvalidField,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockOrderService)
			handler := NewOrderHandler(mockService, logger)

			if tt.expectService {
				updated := *order
				updated.Status = model.OrderStatusShipped
				var ret *model.Order
				if tt.mockError == nil {
					ret = &updated
				}
				mockService.On("UpdateOrderStatus", mock.Anything, order.ID, model.OrderStatusShipped).Return(ret, tt.mockError)
			}

			req := httptest.NewRequest(http.MethodPatch, "/api/admin/orders/"+tt.orderID+"/status", bytes.NewBufferString(tt.body))
			w := httptest.NewRecorder()

			routed(http.MethodPatch, "/api/admin/orders/{id}/status", handler.UpdateStatus).ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedCode != "" {
				assert.Equal(t, tt.expectedCode, decodeError(t, w).Code)
			}
			mockService.AssertExpectations(t)
		})
	}
}
