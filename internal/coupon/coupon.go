package coupon

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// DiscountType selects how a coupon value is applied.
type DiscountType string

const (
	DiscountPercentage DiscountType = "percentage"
	DiscountFixed      DiscountType = "fixed"
)

// Rule is a single coupon from the catalog. Amounts are in centavos.
type Rule struct {
	Code string
	Type DiscountType
	// Value is a percentage (0, 100] or a fixed amount in centavos.
	Value       decimal.Decimal
	MinOrder    int64
	MaxDiscount *int64
	ExpiresAt   *time.Time
}

// Expired reports whether the rule is no longer valid at now.
func (r Rule) Expired(now time.Time) bool {
	return r.ExpiresAt != nil && !now.Before(*r.ExpiresAt)
}

// Discount computes the discount for subtotal. Percentages round down to
// whole centavos; the result never exceeds MaxDiscount or the subtotal.
func (r Rule) Discount(subtotal int64) int64 {
	var d int64
	switch r.Type {
	case DiscountPercentage:
		d = decimal.NewFromInt(subtotal).Mul(r.Value).Div(decimal.NewFromInt(100)).Floor().IntPart()
	case DiscountFixed:
		d = r.Value.IntPart()
	}

	if r.MaxDiscount != nil && d > *r.MaxDiscount {
		d = *r.MaxDiscount
	}
	if d > subtotal {
		d = subtotal
	}
	if d < 0 {
		d = 0
	}
	return d
}

// Validator resolves coupon codes to discounts.
type Validator interface {
	// Discount returns the discount code grants on subtotal, or
	// model.ErrInvalidCoupon / model.ErrCouponMinimumNotMet.
	Discount(ctx context.Context, code string, subtotal int64) (int64, error)

	// Close releases resources held by the validator.
	Close() error
}

// Catalog is a read-only set of coupon rules keyed by normalised code.
type Catalog interface {
	// Lookup returns the rule for code, ignoring case.
	Lookup(code string) (Rule, bool)

	// Size returns the number of coupons in the catalog.
	Size() int
}

// Loader defines the interface for loading coupon catalogs.
type Loader interface {
	// Load reads a gzipped CSV catalog and returns it.
	Load(ctx context.Context, path string) (Catalog, error)
}
