package service

import (
	"context"
	"errors"
	"fmt"

	"tienda-api/internal/model"
	"tienda-api/internal/payment"
	"tienda-api/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// checkoutService implements CheckoutService.
type checkoutService struct {
	orderRepo repository.OrderRepository
	gateway   payment.Gateway
	logger    zerolog.Logger
}

// NewCheckoutService creates a new checkout service.
func NewCheckoutService(orderRepo repository.OrderRepository, gateway payment.Gateway, logger zerolog.Logger) CheckoutService {
	return &checkoutService{
		orderRepo: orderRepo,
		gateway:   gateway,
		logger:    logger.With().Str("service", "checkout").Logger(),
	}
}

// CreatePreference opens a provider checkout for a pending Mercado Pago order.
func (s *checkoutService) CreatePreference(ctx context.Context, orderID uuid.UUID) (*payment.Preference, error) {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, model.ErrOrderNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to load order: %w", err)
	}

	if order.Status != model.OrderStatusPending || order.PaymentMethod != model.PaymentMethodMercadoPago || order.Total <= 0 {
		s.logger.Warn().
			Str("order_id", orderID.String()).
			Str("status", string(order.Status)).
			Str("payment_method", string(order.PaymentMethod)).
			Int64("total", order.Total).
			Msg("order is not payable online")
		return nil, model.ErrOrderNotPayable
	}

	pref, err := s.gateway.CreatePreference(ctx, buildPreferenceRequest(order))
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("order_id", orderID.String()).
		Str("order_number", order.OrderNumber).
		Str("preference_id", pref.ID).
		Msg("checkout preference created")

	return pref, nil
}

// buildPreferenceRequest maps an order onto a preference. A discounted order
// is sent as a single line for the discounted subtotal so the provider
// charges exactly the order total. When the discount covers the whole
// subtotal the line carries the shipping instead, since the provider rejects
// zero-priced items.
func buildPreferenceRequest(order *model.Order) payment.PreferenceRequest {
	req := payment.PreferenceRequest{
		OrderID:      order.ID,
		OrderNumber:  order.OrderNumber,
		ShippingCost: order.ShippingCost,
		Payer: payment.Payer{
			Name:  order.Shipping.FullName,
			Phone: order.Shipping.Phone,
		},
	}
	if order.GuestEmail != nil {
		req.Payer.Email = *order.GuestEmail
	}

	if order.Discount > 0 {
		price := order.Subtotal - order.Discount
		if price <= 0 {
			price = order.Total
			req.ShippingCost = 0
		}
		req.Items = []payment.PreferenceItem{{
			ID:        order.OrderNumber,
			Title:     "Pedido " + order.OrderNumber,
			Quantity:  1,
			UnitPrice: price,
		}}
		return req
	}

	req.Items = make([]payment.PreferenceItem, 0, len(order.Items))
	for _, item := range order.Items {
		pi := payment.PreferenceItem{
			ID:        item.ProductID.String(),
			Title:     item.ProductName,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		}
		if item.ProductImage != nil {
			pi.PictureURL = *item.ProductImage
		}
		req.Items = append(req.Items, pi)
	}

	return req
}
