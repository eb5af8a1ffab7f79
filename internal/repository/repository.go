package repository

import (
	"context"

	"tienda-api/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ProductRepository defines the interface for product data access operations.
type ProductRepository interface {
	// GetAll retrieves active products with pagination support.
	GetAll(ctx context.Context, limit, offset int) ([]model.Product, error)

	// GetByID retrieves a single product by its ID.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error)

	// GetByIDs retrieves multiple products by their IDs, active or not.
	// Unknown IDs are simply absent from the result.
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Product, error)

	// Upsert inserts a product or updates it when the slug already exists.
	Upsert(ctx context.Context, product *model.Product) error
}

// OrderRepository defines the interface for order data access operations.
type OrderRepository interface {
	// BeginTx starts a new database transaction.
	BeginTx(ctx context.Context) (pgx.Tx, error)

	// LastOrderNumber returns the numerically greatest order number issued
	// for year, or "" when the year has none yet.
	LastOrderNumber(ctx context.Context, tx pgx.Tx, year int) (string, error)

	// CreateOrder inserts a new order within the provided transaction. A
	// duplicate order number yields model.ErrOrderNumberConflict.
	CreateOrder(ctx context.Context, tx pgx.Tx, order *model.Order) error

	// CreateOrderItems inserts multiple order items within the provided transaction.
	CreateOrderItems(ctx context.Context, tx pgx.Tx, items []model.OrderItem) error

	// GetByID retrieves an order by its ID along with its items.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error)

	// ListByUser retrieves a user's orders, newest first, with their items.
	ListByUser(ctx context.Context, userID string) ([]model.Order, error)

	// GetForUpdate reads an order without items and locks its row until tx ends.
	GetForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.Order, error)

	// UpdateStatus sets the status of an order.
	UpdateStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID, status model.OrderStatus) error

	// ApplyPayment records a reconciled payment: status, provider status,
	// first payment id and first paid_at.
	ApplyPayment(ctx context.Context, tx pgx.Tx, update model.PaymentUpdate) error
}
