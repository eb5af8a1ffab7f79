// Package payment defines the provider-neutral side of online payments: the
// preference sent to a provider, the payment details read back from it, and
// how provider statuses map onto order statuses.
package payment

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EventTypePayment is the only webhook event type that is reconciled.
const EventTypePayment = "payment"

// PreferenceItem is a single line of a payment preference. UnitPrice is in
// centavos.
type PreferenceItem struct {
	ID         string
	Title      string
	Quantity   int
	UnitPrice  int64
	PictureURL string
}

// Payer identifies the buyer to the provider.
type Payer struct {
	Email string
	Name  string
	Phone string
}

// PreferenceRequest describes the checkout session to open for an order.
type PreferenceRequest struct {
	OrderID      uuid.UUID
	OrderNumber  string
	Items        []PreferenceItem
	ShippingCost int64
	Payer        Payer
}

// Preference is the provider's answer: where to send the buyer.
type Preference struct {
	ID               string `json:"preferenceId"`
	InitPoint        string `json:"initPoint"`
	SandboxInitPoint string `json:"sandboxInitPoint,omitempty"`
}

// Details is the authoritative state of a payment as reported by the provider.
type Details struct {
	ID                string
	Status            ProviderStatus
	RawStatus         string
	StatusDetail      string
	ExternalReference string
	TransactionAmount decimal.Decimal
	PaymentMethodID   string
	PaymentTypeID     string
}

// Gateway is the payment provider API used by checkout and reconciliation.
type Gateway interface {
	// CreatePreference opens a payable checkout session for an order.
	CreatePreference(ctx context.Context, req PreferenceRequest) (*Preference, error)

	// GetPayment fetches a payment by its provider id.
	GetPayment(ctx context.Context, paymentID string) (*Details, error)
}

// Verifier authenticates inbound webhook notifications.
type Verifier interface {
	Verify(signature, requestID, dataID string) bool
}

// ProviderError is the typed failure returned for any provider-side problem:
// network, timeout or rejection.
type ProviderError struct {
	Provider string
	Op       string
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Provider, e.Op, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}
