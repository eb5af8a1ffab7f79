package payment

import (
	"strings"

	"tienda-api/internal/model"
)

// ProviderStatus is the closed set of payment statuses the provider reports.
type ProviderStatus string

const (
	StatusApproved    ProviderStatus = "approved"
	StatusRejected    ProviderStatus = "rejected"
	StatusCancelled   ProviderStatus = "cancelled"
	StatusPending     ProviderStatus = "pending"
	StatusInProcess   ProviderStatus = "in_process"
	StatusInMediation ProviderStatus = "in_mediation"
	StatusAuthorized  ProviderStatus = "authorized"
	StatusRefunded    ProviderStatus = "refunded"
	StatusChargedBack ProviderStatus = "charged_back"
	StatusUnknown     ProviderStatus = "unknown"
)

// ParseProviderStatus normalises a raw provider status. Anything outside the
// enumeration becomes StatusUnknown.
func ParseProviderStatus(raw string) ProviderStatus {
	s := ProviderStatus(strings.ToLower(strings.TrimSpace(raw)))
	switch s {
	case StatusApproved, StatusRejected, StatusCancelled, StatusPending, StatusInProcess,
		StatusInMediation, StatusAuthorized, StatusRefunded, StatusChargedBack:
		return s
	default:
		return StatusUnknown
	}
}

// TargetStatus maps a provider status to the order status it implies. ok is
// false for StatusUnknown.
func TargetStatus(s ProviderStatus) (status model.OrderStatus, ok bool) {
	switch s {
	case StatusApproved:
		return model.OrderStatusPaid, true
	case StatusRejected, StatusCancelled:
		return model.OrderStatusCancelled, true
	case StatusPending, StatusInProcess, StatusInMediation, StatusAuthorized:
		return model.OrderStatusPending, true
	case StatusRefunded, StatusChargedBack:
		return model.OrderStatusRefunded, true
	default:
		return "", false
	}
}
