package router

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"tienda-api/internal/handler"
	"tienda-api/internal/middleware"
	"tienda-api/internal/model"
	"tienda-api/internal/payment"
	"tienda-api/internal/service"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testAPIKey = "admin-key"

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error { return nil }

type stubProducts struct{}

func (stubProducts) GetAll(context.Context, int, int) ([]model.Product, error) {
	return []model.Product{}, nil
}

func (stubProducts) GetByID(_ context.Context, id uuid.UUID) (*model.Product, error) {
	return &model.Product{ID: id, IsActive: true}, nil
}

type stubOrders struct{}

func (stubOrders) CreateOrder(_ context.Context, req *model.CreateOrderRequest) (*model.Order, error) {
	order := &model.Order{ID: uuid.New(), OrderNumber: "ORD-2025-0001"}
	if req.UserID != "" {
		order.UserID = &req.UserID
	}
	return order, nil
}

func (stubOrders) GetOrder(_ context.Context, id uuid.UUID) (*model.Order, error) {
	return &model.Order{ID: id}, nil
}

func (stubOrders) ListOrdersForUser(context.Context, string) ([]model.Order, error) {
	return []model.Order{}, nil
}

func (stubOrders) UpdateOrderStatus(_ context.Context, id uuid.UUID, status model.OrderStatus) (*model.Order, error) {
	return &model.Order{ID: id, Status: status}, nil
}

type stubCheckout struct{}

func (stubCheckout) CreatePreference(context.Context, uuid.UUID) (*payment.Preference, error) {
	return &payment.Preference{ID: "pref-1", InitPoint: "https://example.com"}, nil
}

type stubReconciliation struct{}

func (stubReconciliation) HandleNotification(context.Context, service.Notification) (*service.ReconciliationResult, error) {
	return &service.ReconciliationResult{Outcome: service.OutcomeIgnored}, nil
}

func newTestRouter(t *testing.T, burst int) (http.Handler, *middleware.JWTAuth) {
	t.Helper()
	logger := zerolog.Nop()
	auth := middleware.NewJWTAuth("jwt-secret", logger)

	h := Handlers{
		Health:   handler.NewHealthHandler(stubPinger{}, logger),
		Product:  handler.NewProductHandler(stubProducts{}, logger),
		Order:    handler.NewOrderHandler(stubOrders{}, logger),
		Checkout: handler.NewCheckoutHandler(stubCheckout{}, logger),
		Webhook:  handler.NewWebhookHandler(stubReconciliation{}, logger),
	}

	return New(h, Options{
		AdminAPIKey:  testAPIKey,
		Auth:         auth,
		WebhookRPS:   0.0001,
		WebhookBurst: burst,
	}, logger), auth
}

func TestRouter_Routes(t *testing.T) {
	r, auth := newTestRouter(t, 10)

	token, err := auth.IssueToken("user-1", time.Hour)
	require.NoError(t, err)
	orderID := uuid.NewString()

	tests := []struct {
		name           string
		method         string
		path           string
		body           string
		headers        map[string]string
		expectedStatus int
	}{
		{name: "Health", method: http.MethodGet, path: "/health", expectedStatus: http.StatusOK},
		{name: "List products", method: http.MethodGet, path: "/api/products", expectedStatus: http.StatusOK},
		{name: "Get product", method: http.MethodGet, path: "/api/products/" + uuid.NewString(), expectedStatus: http.StatusOK},
		{name: "Guest creates order", method: http.MethodPost, path: "/api/orders", body: `{}`, expectedStatus: http.StatusCreated},
		{name: "Buyer creates order", method: http.MethodPost, path: "/api/orders", body: `{}`, headers: map[string]string{"Authorization": "Bearer " + token}, expectedStatus: http.StatusCreated},
		{name: "Bad token on create", method: http.MethodPost, path: "/api/orders", body: `{}`, headers: map[string]string{"Authorization": "Bearer nope"}, expectedStatus: http.StatusUnauthorized},
		{name: "List orders needs auth", method: http.MethodGet, path: "/api/orders", expectedStatus: http.StatusUnauthorized},
		{name: "List orders", method: http.MethodGet, path: "/api/orders", headers: map[string]string{"Authorization": "Bearer " + token}, expectedStatus: http.StatusOK},
		{name: "Get order", method: http.MethodGet, path: "/api/orders/" + orderID, expectedStatus: http.StatusOK},
		{name: "Checkout", method: http.MethodPost, path: "/api/checkout/mercadopago", body: `{"orderId":"` + orderID + `"}`, expectedStatus: http.StatusOK},
		{name: "Webhook", method: http.MethodPost, path: "/api/webhooks/mercadopago", body: `{"type":"plan"}`, expectedStatus: http.StatusOK},
		{name: "Admin without key", method: http.MethodPatch, path: "/api/admin/orders/" + orderID + "/status", body: `{"status":"shipped"}`, expectedStatus: http.StatusUnauthorized},
		{name: "Admin with wrong key", method: http.MethodPatch, path: "/api/admin/orders/" + orderID + "/status", body: `{"status":"shipped"}`, headers: map[string]string{"X-API-Key": "guess"}, expectedStatus: http.StatusForbidden},
		{name: "Admin with key", method: http.MethodPatch, path: "/api/admin/orders/" + orderID + "/status", body: `{"status":"shipped"}`, headers: map[string]string{"X-API-Key": testAPIKey}, expectedStatus: http.StatusOK},
		{name: "Unknown route", method: http.MethodGet, path: "/api/unknown", expectedStatus: http.StatusNotFound},
		{name: "Wrong method", method: http.MethodDelete, path: "/api/products", expectedStatus: http.StatusMethodNotAllowed},
		{name: "Preflight", method: http.MethodOptions, path: "/api/orders", expectedStatus: http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, bytes.NewBufferString(tt.body))
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			w := httptest.NewRecorder()

			r.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}

func TestRouter_WebhookRateLimited(t *testing.T) {
	r, _ := newTestRouter(t, 1)

	send := func() int {
		req := httptest.NewRequest(http.MethodPost, "/api/webhooks/mercadopago", bytes.NewBufferString(`{"type":"plan"}`))
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, send())
	assert.Equal(t, http.StatusTooManyRequests, send())

	// Other routes do not share the webhook bucket.
	req := httptest.NewRequest(http.MethodGet, "/api/products", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}
