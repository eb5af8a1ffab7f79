package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"tienda-api/internal/coupon"
	"tienda-api/internal/model"
	"tienda-api/internal/ordernumber"
	"tienda-api/internal/pricing"
	"tienda-api/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// storeLocation is the storefront's civil time zone. Argentina has no DST.
var storeLocation = time.FixedZone("ART", -3*60*60)

// maxItemQuantity caps a single order line.
const maxItemQuantity = 999

// OrderOptions tunes the order service.
type OrderOptions struct {
	// NumberMaxAttempts bounds order number allocation retries. Default 3.
	NumberMaxAttempts int

	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time
}

// orderService implements OrderService.
type orderService struct {
	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
	validator   coupon.Validator
	maxAttempts int
	now         func() time.Time
	logger      zerolog.Logger
}

// NewOrderService creates a new order service.
func NewOrderService(
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	validator coupon.Validator,
	opts OrderOptions,
	logger zerolog.Logger,
) OrderService {
	if opts.NumberMaxAttempts < 1 {
		opts.NumberMaxAttempts = 3
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &orderService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		validator:   validator,
		maxAttempts: opts.NumberMaxAttempts,
		now:         opts.Now,
		logger:      logger.With().Str("service", "order").Logger(),
	}
}

// CreateOrder prices the request and persists a pending order.
func (s *orderService) CreateOrder(ctx context.Context, req *model.CreateOrderRequest) (*model.Order, error) {
	if err := s.validateOrderRequest(req); err != nil {
		return nil, err
	}

	items, subtotal, err := s.snapshotItems(ctx, req.Items)
	if err != nil {
		return nil, err
	}

	var discount int64
	couponCode := trimmed(req.CouponCode)
	if couponCode != nil {
		discount, err = s.validator.Discount(ctx, *couponCode, subtotal)
		if err != nil {
			s.logger.Warn().
				Str("coupon_code", *couponCode).
				Err(err).
				Msg("coupon rejected")
			return nil, err
		}
	}

	shipping := pricing.ShippingCost(req.ShippingAddress.Zone, subtotal)
	total := pricing.OrderTotal(subtotal, shipping, discount)

	if req.ExpectedTotal != nil && *req.ExpectedTotal != total {
		s.logger.Warn().
			Int64("expected_total", *req.ExpectedTotal).
			Int64("total", total).
			Msg("order total differs from the total shown to the buyer")
		return nil, model.ErrTotalsMismatch
	}

	now := s.now()
	order := &model.Order{
		ID:            uuid.New(),
		GuestEmail:    trimmed(req.GuestEmail),
		Status:        model.OrderStatusPending,
		Subtotal:      subtotal,
		ShippingCost:  shipping,
		Discount:      discount,
		Total:         total,
		PaymentMethod: req.PaymentMethod,
		Shipping:      req.ShippingAddress,
		CustomerNotes: trimmed(req.CustomerNotes),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if req.UserID != "" {
		userID := req.UserID
		order.UserID = &userID
	}
	if couponCode != nil {
		code := strings.ToUpper(*couponCode)
		order.CouponCode = &code
	}

	for i := range items {
		items[i].OrderID = order.ID
		items[i].CreatedAt = now
	}
	order.Items = items

	if !order.TotalsBalanced() {
		return nil, model.ErrTotalsMismatch
	}

	year := now.In(storeLocation).Year()
	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		err := s.insertOrder(ctx, order, year)
		if err == nil {
			s.logger.Info().
				Str("order_id", order.ID.String()).
				Str("order_number", order.OrderNumber).
				Int64("total", order.Total).
				Int("item_count", len(order.Items)).
				Int("attempt", attempt).
				Msg("order created successfully")
			return order, nil
		}

		if !errors.Is(err, model.ErrOrderNumberConflict) {
			return nil, err
		}

		s.logger.Warn().
			Str("order_number", order.OrderNumber).
			Int("attempt", attempt).
			Msg("order number collision, retrying")
	}

	s.logger.Error().
		Int("attempts", s.maxAttempts).
		Msg("could not allocate a unique order number")
	return nil, model.ErrOrderNumberExhausted
}

// insertOrder runs one allocation attempt in its own transaction.
func (s *orderService) insertOrder(ctx context.Context, order *model.Order, year int) (err error) {
	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to begin transaction")
		return fmt.Errorf("failed to create order: %w", err)
	}

	// Ensure transaction is rolled back on error
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	last, err := s.orderRepo.LastOrderNumber(ctx, tx, year)
	if err != nil {
		return fmt.Errorf("failed to read last order number: %w", err)
	}

	order.OrderNumber, err = ordernumber.Next(last, year)
	if err != nil {
		return fmt.Errorf("failed to derive order number: %w", err)
	}

	if err = s.orderRepo.CreateOrder(ctx, tx, order); err != nil {
		if errors.Is(err, model.ErrOrderNumberConflict) {
			return err
		}
		return fmt.Errorf("failed to create order: %w", err)
	}

	if err = s.orderRepo.CreateOrderItems(ctx, tx, order.Items); err != nil {
		s.logger.Error().
			Err(err).
			Str("order_id", order.ID.String()).
			Int("item_count", len(order.Items)).
			Msg("failed to create order items")
		return fmt.Errorf("failed to create order items: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		s.logger.Error().Err(err).Str("order_id", order.ID.String()).Msg("failed to commit transaction")
		return fmt.Errorf("failed to create order: %w", err)
	}

	return nil
}

// snapshotItems copies catalog data into order items and returns the subtotal.
func (s *orderService) snapshotItems(ctx context.Context, reqItems []model.OrderItemRequest) ([]model.OrderItem, int64, error) {
	ids := make([]uuid.UUID, 0, len(reqItems))
	seen := make(map[uuid.UUID]struct{}, len(reqItems))
	for _, item := range reqItems {
		if _, ok := seen[item.ProductID]; !ok {
			seen[item.ProductID] = struct{}{}
			ids = append(ids, item.ProductID)
		}
	}

	products, err := s.productRepo.GetByIDs(ctx, ids)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to retrieve product details")
		return nil, 0, fmt.Errorf("failed to retrieve product details: %w", err)
	}

	byID := make(map[uuid.UUID]model.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	var subtotal int64
	items := make([]model.OrderItem, len(reqItems))
	for i, item := range reqItems {
		p, ok := byID[item.ProductID]
		if !ok {
			s.logger.Warn().Str("product_id", item.ProductID.String()).Msg("product not found")
			return nil, 0, model.ErrProductNotFound
		}
		if !p.IsActive {
			s.logger.Warn().Str("product_id", item.ProductID.String()).Msg("product not available")
			return nil, 0, model.ErrProductUnavailable
		}

		lineTotal := pricing.LineTotal(p.Price, item.Quantity)
		items[i] = model.OrderItem{
			ID:           uuid.New(),
			ProductID:    p.ID,
			ProductName:  p.Name,
			ProductSKU:   p.SKU,
			ProductImage: p.ImageURL,
			UnitPrice:    p.Price,
			Quantity:     item.Quantity,
			Total:        lineTotal,
			Position:     i,
		}
		subtotal += lineTotal
	}

	return items, subtotal, nil
}

// GetOrder retrieves an order with its items.
func (s *orderService) GetOrder(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, model.ErrOrderNotFound) {
			return nil, err
		}
		s.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to get order")
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	return order, nil
}

// ListOrdersForUser retrieves a user's orders, newest first.
func (s *orderService) ListOrdersForUser(ctx context.Context, userID string) ([]model.Order, error) {
	if userID == "" {
		return nil, model.NewValidationError("userId", "is required")
	}

	orders, err := s.orderRepo.ListByUser(ctx, userID)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", userID).Msg("failed to list orders")
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}

	return orders, nil
}

// UpdateOrderStatus moves an order to status if the transition is allowed.
// Setting the current status again only refreshes updated_at.
func (s *orderService) UpdateOrderStatus(ctx context.Context, id uuid.UUID, status model.OrderStatus) (*model.Order, error) {
	if !status.Valid() {
		return nil, model.ErrInvalidStatus
	}

	if err := s.updateStatus(ctx, id, status); err != nil {
		return nil, err
	}

	return s.GetOrder(ctx, id)
}

func (s *orderService) updateStatus(ctx context.Context, id uuid.UUID, status model.OrderStatus) (err error) {
	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to update order status: %w", err)
	}

	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	order, err := s.orderRepo.GetForUpdate(ctx, tx, id)
	if err != nil {
		return err
	}

	if !model.CanTransition(order.Status, status) {
		s.logger.Warn().
			Str("order_id", id.String()).
			Str("from_status", string(order.Status)).
			Str("to_status", string(status)).
			Msg("status transition rejected")
		return model.ErrInvalidTransition
	}

	if err = s.orderRepo.UpdateStatus(ctx, tx, id, status); err != nil {
		return err
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to update order status: %w", err)
	}

	s.logger.Info().
		Str("order_id", id.String()).
		Str("from_status", string(order.Status)).
		Str("to_status", string(status)).
		Msg("order status updated")

	return nil
}

// validateOrderRequest validates the order request.
func (s *orderService) validateOrderRequest(req *model.CreateOrderRequest) error {
	if req == nil {
		return model.NewValidationError("body", "is required")
	}

	if len(req.Items) == 0 {
		return model.ErrEmptyOrder
	}

	for i, item := range req.Items {
		if item.ProductID == uuid.Nil {
			return model.NewValidationError(fmt.Sprintf("items[%d].productId", i), "is required")
		}

		if item.Quantity <= 0 {
			s.logger.Warn().
				Int("item_index", i).
				Str("product_id", item.ProductID.String()).
				Int("quantity", item.Quantity).
				Msg("invalid quantity")
			return model.ErrInvalidQuantity
		}
		if item.Quantity > maxItemQuantity {
			return model.NewValidationError(fmt.Sprintf("items[%d].quantity", i), fmt.Sprintf("must be at most %d", maxItemQuantity))
		}
	}

	if !req.PaymentMethod.Valid() {
		return model.NewValidationError("paymentMethod", "must be mercadopago, cash_on_delivery or bank_transfer")
	}

	if req.UserID == "" {
		email := trimmed(req.GuestEmail)
		if email == nil {
			return model.NewValidationError("guestEmail", "is required for guest checkout")
		}
		if _, err := mail.ParseAddress(*email); err != nil {
			return model.NewValidationError("guestEmail", "is not a valid email address")
		}
	}

	addr := req.ShippingAddress
	if !addr.Zone.Valid() {
		return model.NewValidationError("shippingAddress.zone", "must be amba, interior or pickup")
	}

	required := []struct {
		field string
		value string
	}{
		{"shippingAddress.fullName", addr.FullName},
		{"shippingAddress.phone", addr.Phone},
		{"shippingAddress.street", addr.Street},
		{"shippingAddress.number", addr.Number},
		{"shippingAddress.city", addr.City},
		{"shippingAddress.province", addr.Province},
		{"shippingAddress.postalCode", addr.PostalCode},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return model.NewValidationError(r.field, "is required")
		}
	}

	return nil
}

// trimmed returns nil for nil or blank strings, else the trimmed value.
func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
