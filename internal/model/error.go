package model

// ErrorResponse represents a standardised error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// Standard error codes for API responses
const (
	ErrCodeInvalidJSON          = "INVALID_JSON"
	ErrCodeMissingField         = "MISSING_FIELD"
	ErrCodeInvalidField         = "INVALID_FIELD"
	ErrCodeEmptyOrder           = "EMPTY_ORDER"
	ErrCodeProductNotFound      = "PRODUCT_NOT_FOUND"
	ErrCodeProductUnavailable   = "PRODUCT_UNAVAILABLE"
	ErrCodeInvalidQuantity      = "INVALID_QUANTITY"
	ErrCodeTotalsMismatch       = "TOTALS_MISMATCH"
	ErrCodeInvalidCoupon        = "INVALID_COUPON"
	ErrCodeCouponMinimum        = "COUPON_MINIMUM_NOT_MET"
	ErrCodeOrderNotFound        = "ORDER_NOT_FOUND"
	ErrCodeInvalidStatus        = "INVALID_STATUS"
	ErrCodeInvalidTransition    = "INVALID_TRANSITION"
	ErrCodeOrderNumberConflict  = "ORDER_NUMBER_CONFLICT"
	ErrCodeOrderNumberExhausted = "ORDER_NUMBER_EXHAUSTED"
	ErrCodeOrderNotPayable      = "ORDER_NOT_PAYABLE"
	ErrCodeMissingReference     = "MISSING_ORDER_REFERENCE"
	ErrCodeInvalidSignature     = "INVALID_SIGNATURE"
	ErrCodeInvalidPaymentID     = "INVALID_PAYMENT_ID"
	ErrCodePaymentNotFound      = "PAYMENT_NOT_FOUND"
	ErrCodeProviderFailure      = "PROVIDER_FAILURE"
	ErrCodeUnauthorised         = "UNAUTHORIZED"
	ErrCodeForbidden            = "FORBIDDEN"
	ErrCodeRateLimited          = "RATE_LIMITED"
	ErrCodeInternalError        = "INTERNAL_ERROR"
)

// DomainError is a business rule violation with a stable code.
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrEmptyOrder            = NewDomainError(ErrCodeEmptyOrder, "Order must contain at least one item")
	ErrProductNotFound       = NewDomainError(ErrCodeProductNotFound, "One or more products not found")
	ErrProductUnavailable    = NewDomainError(ErrCodeProductUnavailable, "One or more products are not available for sale")
	ErrInvalidQuantity       = NewDomainError(ErrCodeInvalidQuantity, "Quantity must be greater than zero")
	ErrTotalsMismatch        = NewDomainError(ErrCodeTotalsMismatch, "Order totals do not add up")
	ErrInvalidCoupon         = NewDomainError(ErrCodeInvalidCoupon, "Coupon code is not valid")
	ErrCouponMinimumNotMet   = NewDomainError(ErrCodeCouponMinimum, "Order subtotal is below the coupon minimum")
	ErrOrderNotFound         = NewDomainError(ErrCodeOrderNotFound, "Order not found")
	ErrInvalidStatus         = NewDomainError(ErrCodeInvalidStatus, "Unknown order status")
	ErrInvalidTransition     = NewDomainError(ErrCodeInvalidTransition, "Order status transition not allowed")
	ErrOrderNumberConflict   = NewDomainError(ErrCodeOrderNumberConflict, "Order number already taken")
	ErrOrderNumberExhausted  = NewDomainError(ErrCodeOrderNumberExhausted, "Could not allocate a unique order number")
	ErrOrderNotPayable       = NewDomainError(ErrCodeOrderNotPayable, "Order is not awaiting online payment")
	ErrMissingOrderReference = NewDomainError(ErrCodeMissingReference, "Payment has no order reference")
	ErrInvalidSignature      = NewDomainError(ErrCodeInvalidSignature, "Invalid webhook signature")
	ErrInvalidPaymentID      = NewDomainError(ErrCodeInvalidPaymentID, "Invalid payment id")
	ErrPaymentNotFound       = NewDomainError(ErrCodePaymentNotFound, "Payment not found")
)

// ValidationError reports a malformed field in a request.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

// NewValidationError creates a new validation error for the given field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}
