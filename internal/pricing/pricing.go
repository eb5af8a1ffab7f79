// Package pricing holds the storefront's money rules. Amounts are integer
// centavos everywhere except at the payment provider boundary, where ToMajor
// converts them to pesos.
package pricing

import (
	"tienda-api/internal/model"

	"github.com/shopspring/decimal"
)

// Shipping rates in centavos.
const (
	ShippingCostAMBA          int64 = 350_000
	ShippingCostInterior      int64 = 550_000
	FreeShippingThresholdAMBA int64 = 5_000_000
)

// ShippingCost returns the shipping charge for zone given the order subtotal.
func ShippingCost(zone model.ShippingZone, subtotal int64) int64 {
	switch zone {
	case model.ShippingZonePickup:
		return 0
	case model.ShippingZoneAMBA:
		if subtotal >= FreeShippingThresholdAMBA {
			return 0
		}
		return ShippingCostAMBA
	default:
		return ShippingCostInterior
	}
}

// LineTotal returns unitPrice × quantity.
func LineTotal(unitPrice int64, quantity int) int64 {
	return unitPrice * int64(quantity)
}

// OrderTotal returns subtotal + shipping - discount.
func OrderTotal(subtotal, shipping, discount int64) int64 {
	return subtotal + shipping - discount
}

// ToMajor converts centavos to an exact peso amount.
func ToMajor(minor int64) decimal.Decimal {
	return decimal.New(minor, -2)
}

// ToMajorFloat converts centavos to pesos for APIs that only accept float64.
// Two-decimal amounts within float64's integer range round-trip exactly.
func ToMajorFloat(minor int64) float64 {
	return ToMajor(minor).InexactFloat64()
}

// FromMajor converts a peso amount to centavos, rounding half away from zero.
func FromMajor(major decimal.Decimal) int64 {
	return major.Shift(2).Round(0).IntPart()
}
