// Package mercadopago adapts the Mercado Pago API to payment.Gateway and
// verifies the signature of its webhook notifications.
package mercadopago

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"tienda-api/internal/model"
	"tienda-api/internal/payment"
	"tienda-api/internal/pricing"

	mpconfig "github.com/mercadopago/sdk-go/pkg/config"
	"github.com/mercadopago/sdk-go/pkg/mperror"
	mppayment "github.com/mercadopago/sdk-go/pkg/payment"
	mppreference "github.com/mercadopago/sdk-go/pkg/preference"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

const providerName = "mercadopago"

// Config holds the settings used to build preferences.
type Config struct {
	AccessToken         string
	BaseURL             string
	Timeout             time.Duration
	MaxInstallments     int
	StatementDescriptor string
	Currency            string
}

type preferenceCreator interface {
	Create(ctx context.Context, request mppreference.Request) (*mppreference.Response, error)
}

type paymentGetter interface {
	Get(ctx context.Context, id int) (*mppayment.Response, error)
}

// Gateway implements payment.Gateway on top of the Mercado Pago SDK.
type Gateway struct {
	preferences preferenceCreator
	payments    paymentGetter
	cfg         Config
	logger      zerolog.Logger
}

var _ payment.Gateway = (*Gateway)(nil)

// NewGateway creates a gateway authenticated with cfg.AccessToken.
func NewGateway(cfg Config, logger zerolog.Logger) (*Gateway, error) {
	sdkCfg, err := mpconfig.New(cfg.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("failed to configure mercadopago client: %w", err)
	}

	return newGateway(mppreference.NewClient(sdkCfg), mppayment.NewClient(sdkCfg), cfg, logger), nil
}

func newGateway(preferences preferenceCreator, payments paymentGetter, cfg Config, logger zerolog.Logger) *Gateway {
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &Gateway{
		preferences: preferences,
		payments:    payments,
		cfg:         cfg,
		logger:      logger.With().Str("component", "mercadopago_gateway").Logger(),
	}
}

// NotificationURL is the webhook endpoint registered on every preference.
func (g *Gateway) NotificationURL() string {
	return g.cfg.BaseURL + "/api/webhooks/mercadopago"
}

// CreatePreference opens a checkout session for the order in req.
func (g *Gateway) CreatePreference(ctx context.Context, req payment.PreferenceRequest) (*payment.Preference, error) {
	if len(req.Items) == 0 {
		return nil, model.ErrEmptyOrder
	}

	ctx, cancel := g.withTimeout(ctx)
	defer cancel()

	resp, err := g.preferences.Create(ctx, g.buildPreference(req))
	if err != nil {
		g.logger.Error().Err(err).Str("order_id", req.OrderID.String()).Msg("Failed to create preference")
		return nil, &payment.ProviderError{Provider: providerName, Op: "create preference", Err: err}
	}
	if resp == nil || resp.InitPoint == "" {
		return nil, &payment.ProviderError{Provider: providerName, Op: "create preference", Err: errors.New("empty init point")}
	}

	g.logger.Info().
		Str("order_id", req.OrderID.String()).
		Str("order_number", req.OrderNumber).
		Str("preference_id", resp.ID).
		Msg("Preference created")

	return &payment.Preference{
		ID:               resp.ID,
		InitPoint:        resp.InitPoint,
		SandboxInitPoint: resp.SandboxInitPoint,
	}, nil
}

func (g *Gateway) buildPreference(req payment.PreferenceRequest) mppreference.Request {
	items := make([]mppreference.ItemRequest, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, mppreference.ItemRequest{
			ID:         item.ID,
			Title:      item.Title,
			PictureURL: item.PictureURL,
			Quantity:   item.Quantity,
			UnitPrice:  pricing.ToMajorFloat(item.UnitPrice),
			CurrencyID: g.cfg.Currency,
		})
	}

	orderID := req.OrderID.String()
	pref := mppreference.Request{
		Items: items,
		BackURLs: &mppreference.BackURLsRequest{
			Success: g.cfg.BaseURL + "/order-confirmation?orderId=" + orderID,
			Pending: g.cfg.BaseURL + "/order-confirmation?orderId=" + orderID,
			Failure: g.cfg.BaseURL + "/checkout?error=payment_failed",
		},
		AutoReturn:          "approved",
		ExternalReference:   orderID,
		NotificationURL:     g.NotificationURL(),
		StatementDescriptor: g.cfg.StatementDescriptor,
		PaymentMethods: &mppreference.PaymentMethodsRequest{
			Installments: g.cfg.MaxInstallments,
		},
	}

	if req.ShippingCost > 0 {
		pref.Shipments = &mppreference.ShipmentsRequest{
			Mode: "not_specified",
			Cost: pricing.ToMajorFloat(req.ShippingCost),
		}
	}

	if req.Payer.Email != "" {
		payer := &mppreference.PayerRequest{
			Email: req.Payer.Email,
			Name:  req.Payer.Name,
		}
		if req.Payer.Phone != "" {
			payer.Phone = &mppreference.PhoneRequest{Number: req.Payer.Phone}
		}
		pref.Payer = payer
	}

	return pref
}

// GetPayment fetches the authoritative state of a payment.
func (g *Gateway) GetPayment(ctx context.Context, paymentID string) (*payment.Details, error) {
	id, err := strconv.Atoi(paymentID)
	if err != nil || id <= 0 {
		return nil, model.ErrInvalidPaymentID
	}

	ctx, cancel := g.withTimeout(ctx)
	defer cancel()

	resp, err := g.payments.Get(ctx, id)
	if err != nil {
		var respErr *mperror.ResponseError
		if errors.As(err, &respErr) && respErr.StatusCode == http.StatusNotFound {
			g.logger.Warn().Str("payment_id", paymentID).Msg("Payment not found at provider")
			return nil, model.ErrPaymentNotFound
		}
		g.logger.Error().Err(err).Str("payment_id", paymentID).Msg("Failed to fetch payment")
		return nil, &payment.ProviderError{Provider: providerName, Op: "get payment", Err: err}
	}
	if resp == nil {
		return nil, model.ErrPaymentNotFound
	}

	return &payment.Details{
		ID:                strconv.Itoa(resp.ID),
		Status:            payment.ParseProviderStatus(resp.Status),
		RawStatus:         resp.Status,
		StatusDetail:      resp.StatusDetail,
		ExternalReference: resp.ExternalReference,
		TransactionAmount: decimal.NewFromFloat(resp.TransactionAmount),
		PaymentMethodID:   resp.PaymentMethodID,
		PaymentTypeID:     resp.PaymentTypeID,
	}, nil
}

func (g *Gateway) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if g.cfg.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, g.cfg.Timeout)
}
