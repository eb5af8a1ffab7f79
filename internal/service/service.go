package service

import (
	"context"

	"tienda-api/internal/model"
	"tienda-api/internal/payment"

	"github.com/google/uuid"
)

// ProductService defines operations for the product catalog.
type ProductService interface {
	// GetAll retrieves active products with pagination.
	GetAll(ctx context.Context, limit, offset int) ([]model.Product, error)

	// GetByID retrieves a single product by ID.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error)
}

// OrderService defines the order ledger operations.
type OrderService interface {
	// CreateOrder prices the request against the catalog and persists a
	// pending order with a fresh order number.
	CreateOrder(ctx context.Context, req *model.CreateOrderRequest) (*model.Order, error)

	// GetOrder retrieves an order with its items.
	GetOrder(ctx context.Context, id uuid.UUID) (*model.Order, error)

	// ListOrdersForUser retrieves a user's orders, newest first.
	ListOrdersForUser(ctx context.Context, userID string) ([]model.Order, error)

	// UpdateOrderStatus moves an order to status if the transition is allowed.
	UpdateOrderStatus(ctx context.Context, id uuid.UUID, status model.OrderStatus) (*model.Order, error)
}

// CheckoutService opens payment sessions for orders.
type CheckoutService interface {
	// CreatePreference opens a provider checkout for a pending order.
	CreatePreference(ctx context.Context, orderID uuid.UUID) (*payment.Preference, error)
}

// ReconciliationService applies provider payment notifications to orders.
type ReconciliationService interface {
	// HandleNotification verifies a notification, fetches the payment it
	// refers to and reconciles the referenced order.
	HandleNotification(ctx context.Context, n Notification) (*ReconciliationResult, error)
}
