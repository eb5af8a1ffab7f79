package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"tienda-api/internal/model"
	"tienda-api/internal/payment"
	"tienda-api/internal/service"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const paymentEventBody = `{
	"action": "payment.updated",
	"api_version": "v1",
	"data": {"id": 1234567890},
	"date_created": "2025-03-10T15:05:00Z",
	"id": 98765,
	"live_mode": false,
	"type": "payment",
	"user_id": 44444
}`

func postWebhook(handler *WebhookHandler, target, body string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, target, bytes.NewBufferString(body))
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	handler.MercadoPago(w, req)
	return w
}

func TestWebhookHandler_Success(t *testing.T) {
	mockService := new(MockReconciliationService)
	handler := NewWebhookHandler(mockService, zerolog.Nop())
	orderID := uuid.New()

	mockService.On("HandleNotification", mock.Anything, service.Notification{
		Type:      "payment",
		DataID:    "1234567890",
		Signature: "ts=1741619100,v1=abcdef",
		RequestID: "req-1",
	}).Return(&service.ReconciliationResult{
		Outcome:       service.OutcomeApplied,
		OrderID:       orderID,
		PaymentID:     "1234567890",
		PaymentStatus: "approved",
		OrderStatus:   model.OrderStatusPaid,
	}, nil)

	w := postWebhook(handler, "/api/webhooks/mercadopago", paymentEventBody, map[string]string{
		"x-signature":  "ts=1741619100,v1=abcdef",
		"x-request-id": "req-1",
	})

	assert.Equal(t, http.StatusOK, w.Code)
	var got map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "success", got["status"])
	assert.Equal(t, orderID.String(), got["orderId"])
	assert.Equal(t, "approved", got["paymentStatus"])
	assert.Equal(t, "paid", got["orderStatus"])
	assert.Equal(t, "applied", got["outcome"])
	mockService.AssertExpectations(t)
}

func TestWebhookHandler_QueryParamsTakePrecedence(t *testing.T) {
	mockService := new(MockReconciliationService)
	handler := NewWebhookHandler(mockService, zerolog.Nop())

	mockService.On("HandleNotification", mock.Anything, mock.MatchedBy(func(n service.Notification) bool {
		return n.DataID == "555" && n.Type == "payment"
	})).Return(&service.ReconciliationResult{Outcome: service.OutcomeUnchanged, OrderID: uuid.New(), PaymentStatus: "pending", OrderStatus: model.OrderStatusPending}, nil)

	w := postWebhook(handler, "/api/webhooks/mercadopago?data.id=555&type=payment", `{"data":{}}`, nil)

	assert.Equal(t, http.StatusOK, w.Code)
	mockService.AssertExpectations(t)
}

func TestWebhookHandler_Ignored(t *testing.T) {
	mockService := new(MockReconciliationService)
	handler := NewWebhookHandler(mockService, zerolog.Nop())

	mockService.On("HandleNotification", mock.Anything, mock.MatchedBy(func(n service.Notification) bool {
		return n.Type == "merchant_order"
	})).Return(&service.ReconciliationResult{Outcome: service.OutcomeIgnored}, nil)

	w := postWebhook(handler, "/api/webhooks/mercadopago", `{"type":"merchant_order","data":{"id":"77"}}`, nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ignored"}`, w.Body.String())
}

func TestWebhookHandler_UnknownStatusAcknowledged(t *testing.T) {
	mockService := new(MockReconciliationService)
	handler := NewWebhookHandler(mockService, zerolog.Nop())
	orderID := uuid.New()

	mockService.On("HandleNotification", mock.Anything, mock.Anything).Return(&service.ReconciliationResult{
		Outcome:       service.OutcomeUnknownStatus,
		OrderID:       orderID,
		PaymentStatus: "on_hold",
	}, nil)

	w := postWebhook(handler, "/api/webhooks/mercadopago", paymentEventBody, nil)

	assert.Equal(t, http.StatusOK, w.Code)
	var got map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "unknown_status", got["outcome"])
	_, hasOrderStatus := got["orderStatus"]
	assert.False(t, hasOrderStatus)
}

func TestWebhookHandler_Errors(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		serviceErr     error
		expectedStatus int
		expectedCode   string
		expectService  bool
	}{
		{
			name:           "Invalid signature",
			body:           paymentEventBody,
			serviceErr:     model.ErrInvalidSignature,
			expectedStatus: http.StatusUnauthorized,
			expectedCode:   model.ErrCodeInvalidSignature,
			expectService:  true,
		},
		{
			name:           "Missing order reference",
			body:           paymentEventBody,
			serviceErr:     model.ErrMissingOrderReference,
			expectedStatus: http.StatusBadRequest,
			expectedCode:   model.ErrCodeMissingReference,
			expectService:  true,
		},
		{
			name:           "Missing data id",
			body:           `{"type":"payment","data":{}}`,
			serviceErr:     model.NewValidationError("data.id", "is required"),
			expectedStatus: http.StatusBadRequest,
			expectedCode:   model.ErrCodeInvalidField,
			expectService:  true,
		},
		{
			name:           "Invalid payment id",
			body:           paymentEventBody,
			serviceErr:     model.ErrInvalidPaymentID,
			expectedStatus: http.StatusBadRequest,
			expectedCode:   model.ErrCodeInvalidPaymentID,
			expectService:  true,
		},
		{
			name:           "Unknown order",
			body:           paymentEventBody,
			serviceErr:     model.ErrOrderNotFound,
			expectedStatus: http.StatusNotFound,
			expectedCode:   model.ErrCodeOrderNotFound,
			expectService:  true,
		},
		{
			name:           "Payment not found",
			body:           paymentEventBody,
			serviceErr:     model.ErrPaymentNotFound,
			expectedStatus: http.StatusNotFound,
			expectedCode:   model.ErrCodePaymentNotFound,
			expectService:  true,
		},
		{
			name:           "Provider failure",
			body:           paymentEventBody,
			serviceErr:     &payment.ProviderError{Provider: "mercadopago", Op: "get payment", Err: errors.New("502 bad gateway")},
			expectedStatus: http.StatusInternalServerError,
			expectedCode:   model.ErrCodeProviderFailure,
			expectService:  true,
		},
		{
			name:           "Ledger failure",
			body:           paymentEventBody,
			serviceErr:     errors.New("failed to reconcile payment: conn closed"),
			expectedStatus: http.StatusInternalServerError,
			expectedCode:   model.ErrCodeInternalError,
			expectService:  true,
		},
		{
			name:           "Malformed body",
			body:           `{"type":`,
			expectedStatus: http.StatusBadRequest,
			expectedCode:   model.ErrCodeInvalidJSON,
		},
		{
			name:           "Non-numeric data id type",
			body:           `{"type":"payment","data":{"id":{"nested":true}}}`,
			expectedStatus: http.StatusBadRequest,
			expectedCode:   model.ErrCodeInvalidJSON,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockReconciliationService)
			handler := NewWebhookHandler(mockService, zerolog.Nop())

			if tt.expectService {
				mockService.On("HandleNotification", mock.Anything, mock.Anything).Return(nil, tt.serviceErr)
			}

			w := postWebhook(handler, "/api/webhooks/mercadopago", tt.body, map[string]string{
				"x-signature":  "ts=1,v1=00",
				"x-request-id": "req-9",
			})

			assert.Equal(t, tt.expectedStatus, w.Code)
			errBody := decodeError(t, w)
			assert.Equal(t, tt.expectedCode, errBody.Code)
			assert.NotContains(t, errBody.Error, "conn closed")

			if !tt.expectService {
				mockService.AssertNotCalled(t, "HandleNotification", mock.Anything, mock.Anything)
			}
		})
	}
}
