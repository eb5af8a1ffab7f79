package coupon

import (
	"context"
	"fmt"
	"time"

	"tienda-api/internal/model"

	"github.com/rs/zerolog"
)

// validator implements Validator over a catalog loaded once at start.
type validator struct {
	catalog Catalog
	now     func() time.Time
	logger  zerolog.Logger
}

// ValidatorConfig holds configuration for the coupon validator.
type ValidatorConfig struct {
	// FilePath is the catalog location. Empty means no coupons are accepted.
	FilePath string

	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time
}

// NewValidator creates a coupon validator, loading the catalog up front.
func NewValidator(ctx context.Context, config *ValidatorConfig, loader Loader, logger zerolog.Logger) (Validator, error) {
	if config == nil {
		config = &ValidatorConfig{}
	}

	logger = logger.With().Str("component", "coupon-validator").Logger()

	v := &validator{
		now:    config.Now,
		logger: logger,
	}
	if v.now == nil {
		v.now = time.Now
	}

	if config.FilePath == "" {
		logger.Info().Msg("no coupon catalog configured, coupons disabled")
		v.catalog = NewMapCatalog(0)
		return v, nil
	}

	catalog, err := loader.Load(ctx, config.FilePath)
	if err != nil {
		logger.Error().Err(err).Str("file", config.FilePath).Msg("failed to load coupon catalog")
		return nil, fmt.Errorf("failed to load coupon catalog %s: %w", config.FilePath, err)
	}
	v.catalog = catalog

	logger.Info().
		Int("total_coupons", catalog.Size()).
		Msg("coupon validator initialised successfully")

	return v, nil
}

// Discount returns the discount code grants on subtotal.
func (v *validator) Discount(ctx context.Context, code string, subtotal int64) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	rule, ok := v.catalog.Lookup(code)
	if !ok {
		v.logger.Debug().Str("coupon_code", code).Msg("coupon not found")
		return 0, model.ErrInvalidCoupon
	}

	if rule.Expired(v.now()) {
		v.logger.Debug().Str("coupon_code", rule.Code).Msg("coupon expired")
		return 0, model.ErrInvalidCoupon
	}

	if subtotal < rule.MinOrder {
		v.logger.Debug().
			Str("coupon_code", rule.Code).
			Int64("subtotal", subtotal).
			Int64("min_order", rule.MinOrder).
			Msg("subtotal below coupon minimum")
		return 0, model.ErrCouponMinimumNotMet
	}

	return rule.Discount(subtotal), nil
}

// Close releases resources held by the validator.
func (v *validator) Close() error {
	v.logger.Info().Msg("coupon validator closed")
	return nil
}
