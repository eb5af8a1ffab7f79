package repository

import (
	"context"
	"errors"
	"fmt"

	"tienda-api/internal/model"
	"tienda-api/internal/ordernumber"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

const orderColumns = `
	id, order_number, user_id, guest_email, status,
	subtotal, shipping_cost, discount, total, coupon_code,
	payment_method, payment_id, payment_status, paid_at,
	shipping_full_name, shipping_phone, shipping_street, shipping_number,
	shipping_floor, shipping_apartment, shipping_city, shipping_province,
	shipping_postal_code, shipping_zone, shipping_notes,
	customer_notes, created_at, updated_at`

const itemColumns = `
	id, order_id, product_id, product_name, product_sku, product_image,
	unit_price, quantity, total, position, created_at`

// orderRepository implements the OrderRepository interface using PostgreSQL.
type orderRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewOrderRepository creates a new PostgreSQL-backed order repository.
func NewOrderRepository(pool *pgxpool.Pool, logger zerolog.Logger) OrderRepository {
	return &orderRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "order").Logger(),
	}
}

// BeginTx starts a new database transaction.
func (r *orderRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return tx, nil
}

// LastOrderNumber returns the greatest order number of the year. Longer
// numbers sort first so ORD-2025-10000 beats ORD-2025-9999.
func (r *orderRepository) LastOrderNumber(ctx context.Context, tx pgx.Tx, year int) (string, error) {
	query := `
		SELECT order_number
		FROM orders
		WHERE order_number LIKE $1
		ORDER BY length(order_number) DESC, order_number DESC
		LIMIT 1
	`

	var last string
	err := tx.QueryRow(ctx, query, ordernumber.Prefix(year)+"%").Scan(&last)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil
		}
		r.logger.Error().Err(err).Int("year", year).Msg("failed to query last order number")
		return "", fmt.Errorf("failed to query last order number: %w", err)
	}

	return last, nil
}

// CreateOrder inserts a new order within the provided transaction.
func (r *orderRepository) CreateOrder(ctx context.Context, tx pgx.Tx, order *model.Order) error {
	query := `
		INSERT INTO orders (` + orderColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
			$15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26, $27, $28)
	`

	s := order.Shipping
	_, err := tx.Exec(ctx, query,
		order.ID, order.OrderNumber, order.UserID, order.GuestEmail, order.Status,
		order.Subtotal, order.ShippingCost, order.Discount, order.Total, order.CouponCode,
		order.PaymentMethod, order.PaymentID, order.PaymentStatus, order.PaidAt,
		s.FullName, s.Phone, s.Street, s.Number,
		s.Floor, s.Apartment, s.City, s.Province,
		s.PostalCode, s.Zone, s.Notes,
		order.CustomerNotes, order.CreatedAt, order.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err, orderNumberConstraint) {
			r.logger.Warn().
				Str("order_number", order.OrderNumber).
				Msg("order number already taken")
			return model.ErrOrderNumberConflict
		}
		r.logger.Error().
			Err(err).
			Str("order_id", order.ID.String()).
			Msg("failed to create order")
		return fmt.Errorf("failed to create order: %w", err)
	}

	r.logger.Debug().
		Str("order_id", order.ID.String()).
		Str("order_number", order.OrderNumber).
		Msg("order created successfully")

	return nil
}

// CreateOrderItems inserts multiple order items within the provided transaction.
func (r *orderRepository) CreateOrderItems(ctx context.Context, tx pgx.Tx, items []model.OrderItem) error {
	if len(items) == 0 {
		return nil
	}

	query := `
		INSERT INTO order_items (` + itemColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	batch := &pgx.Batch{}
	for _, item := range items {
		batch.Queue(query,
			item.ID, item.OrderID, item.ProductID, item.ProductName, item.ProductSKU, item.ProductImage,
			item.UnitPrice, item.Quantity, item.Total, item.Position, item.CreatedAt,
		)
	}

	results := tx.SendBatch(ctx, batch)
	defer results.Close()

	for i := 0; i < len(items); i++ {
		_, err := results.Exec()
		if err != nil {
			r.logger.Error().
				Err(err).
				Str("order_id", items[i].OrderID.String()).
				Str("product_id", items[i].ProductID.String()).
				Msg("failed to create order item")
			return fmt.Errorf("failed to create order item: %w", err)
		}
	}

	r.logger.Debug().
		Int("count", len(items)).
		Msg("order items created successfully")

	return nil
}

// GetByID retrieves an order by its ID along with its items.
func (r *orderRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

	order, err := scanOrder(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Str("order_id", id.String()).Msg("order not found")
			return nil, model.ErrOrderNotFound
		}
		r.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to query order")
		return nil, fmt.Errorf("failed to query order: %w", err)
	}

	items, err := r.itemsFor(ctx, []uuid.UUID{id})
	if err != nil {
		return nil, err
	}
	order.Items = items[id]
	if order.Items == nil {
		order.Items = []model.OrderItem{}
	}

	return order, nil
}

// ListByUser retrieves a user's orders, newest first, with their items.
func (r *orderRepository) ListByUser(ctx context.Context, userID string) ([]model.Order, error) {
	query := `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE user_id = $1
		ORDER BY created_at DESC, order_number DESC
	`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		r.logger.Error().Err(err).Str("user_id", userID).Msg("failed to query orders")
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	orders := []model.Order{}
	var ids []uuid.UUID
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan order row")
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, *order)
		ids = append(ids, order.ID)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating order rows")
		return nil, fmt.Errorf("error iterating orders: %w", err)
	}

	if len(ids) == 0 {
		return orders, nil
	}

	items, err := r.itemsFor(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range orders {
		orders[i].Items = items[orders[i].ID]
		if orders[i].Items == nil {
			orders[i].Items = []model.OrderItem{}
		}
	}

	return orders, nil
}

// GetForUpdate reads an order without items and locks its row until tx ends.
func (r *orderRepository) GetForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1 FOR UPDATE`

	order, err := scanOrder(tx.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrOrderNotFound
		}
		r.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to lock order")
		return nil, fmt.Errorf("failed to lock order: %w", err)
	}

	return order, nil
}

// UpdateStatus sets the status of an order.
func (r *orderRepository) UpdateStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID, status model.OrderStatus) error {
	query := `UPDATE orders SET status = $2, updated_at = NOW() WHERE id = $1`

	tag, err := tx.Exec(ctx, query, id, status)
	if err != nil {
		r.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to update order status")
		return fmt.Errorf("failed to update order status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrOrderNotFound
	}

	return nil
}

// ApplyPayment records a reconciled payment. The payment id is replaced when
// update.LinkPayment is set and otherwise only filled in when empty. The first
// paid_at sticks.
func (r *orderRepository) ApplyPayment(ctx context.Context, tx pgx.Tx, update model.PaymentUpdate) error {
	query := `
		UPDATE orders SET
			status = $2::text,
			payment_id = CASE WHEN $6::boolean OR payment_id IS NULL THEN $3 ELSE payment_id END,
			payment_status = $4,
			paid_at = CASE WHEN $2::text = 'paid' AND paid_at IS NULL THEN $5 ELSE paid_at END,
			updated_at = $5
		WHERE id = $1
	`

	tag, err := tx.Exec(ctx, query, update.OrderID, string(update.Status), update.PaymentID, update.PaymentStatus, update.At, update.LinkPayment)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("order_id", update.OrderID.String()).
			Str("payment_id", update.PaymentID).
			Msg("failed to apply payment")
		return fmt.Errorf("failed to apply payment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrOrderNotFound
	}

	return nil
}

func (r *orderRepository) itemsFor(ctx context.Context, orderIDs []uuid.UUID) (map[uuid.UUID][]model.OrderItem, error) {
	query := `
		SELECT ` + itemColumns + `
		FROM order_items
		WHERE order_id = ANY($1)
		ORDER BY order_id, position
	`

	rows, err := r.pool.Query(ctx, query, orderIDs)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query order items")
		return nil, fmt.Errorf("failed to query order items: %w", err)
	}
	defer rows.Close()

	items := make(map[uuid.UUID][]model.OrderItem, len(orderIDs))
	for rows.Next() {
		var item model.OrderItem
		err := rows.Scan(
			&item.ID, &item.OrderID, &item.ProductID, &item.ProductName, &item.ProductSKU, &item.ProductImage,
			&item.UnitPrice, &item.Quantity, &item.Total, &item.Position, &item.CreatedAt,
		)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan order item row")
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		items[item.OrderID] = append(items[item.OrderID], item)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating order item rows")
		return nil, fmt.Errorf("error iterating order items: %w", err)
	}

	return items, nil
}

func scanOrder(row rowScanner) (*model.Order, error) {
	var o model.Order
	s := &o.Shipping
	err := row.Scan(
		&o.ID, &o.OrderNumber, &o.UserID, &o.GuestEmail, &o.Status,
		&o.Subtotal, &o.ShippingCost, &o.Discount, &o.Total, &o.CouponCode,
		&o.PaymentMethod, &o.PaymentID, &o.PaymentStatus, &o.PaidAt,
		&s.FullName, &s.Phone, &s.Street, &s.Number,
		&s.Floor, &s.Apartment, &s.City, &s.Province,
		&s.PostalCode, &s.Zone, &s.Notes,
		&o.CustomerNotes, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &o, nil
}
