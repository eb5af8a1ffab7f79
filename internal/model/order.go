package model

import (
	"time"

	"github.com/google/uuid"
)

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusPaid       OrderStatus = "paid"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
	OrderStatusRefunded   OrderStatus = "refunded"
)

// OrderStatuses lists every member of the status enumeration.
var OrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusPaid,
	OrderStatusProcessing,
	OrderStatusShipped,
	OrderStatusDelivered,
	OrderStatusCancelled,
	OrderStatusRefunded,
}

// Valid reports whether s is a known order status.
func (s OrderStatus) Valid() bool {
	for _, known := range OrderStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// PaymentMethod is how the buyer intends to pay.
type PaymentMethod string

const (
	PaymentMethodMercadoPago    PaymentMethod = "mercadopago"
	PaymentMethodCashOnDelivery PaymentMethod = "cash_on_delivery"
	PaymentMethodBankTransfer   PaymentMethod = "bank_transfer"
)

// Valid reports whether m is a supported payment method.
func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentMethodMercadoPago, PaymentMethodCashOnDelivery, PaymentMethodBankTransfer:
		return true
	}
	return false
}

// ShippingZone selects the shipping rate.
type ShippingZone string

const (
	ShippingZoneAMBA     ShippingZone = "amba"
	ShippingZoneInterior ShippingZone = "interior"
	ShippingZonePickup   ShippingZone = "pickup"
)

// Valid reports whether z is a known shipping zone.
func (z ShippingZone) Valid() bool {
	switch z {
	case ShippingZoneAMBA, ShippingZoneInterior, ShippingZonePickup:
		return true
	}
	return false
}

// ShippingAddress is the buyer's delivery address. Orders keep a copy taken at
// creation time.
type ShippingAddress struct {
	FullName   string       `json:"fullName"`
	Phone      string       `json:"phone"`
	Street     string       `json:"street"`
	Number     string       `json:"number"`
	Floor      *string      `json:"floor,omitempty"`
	Apartment  *string      `json:"apartment,omitempty"`
	City       string       `json:"city"`
	Province   string       `json:"province"`
	PostalCode string       `json:"postalCode"`
	Zone       ShippingZone `json:"zone"`
	Notes      *string      `json:"notes,omitempty"`
}

// Order represents one checkout attempt. Monetary fields are in centavos.
type Order struct {
	ID            uuid.UUID       `json:"id" db:"id"`
	OrderNumber   string          `json:"orderNumber" db:"order_number"`
	UserID        *string         `json:"userId,omitempty" db:"user_id"`
	GuestEmail    *string         `json:"guestEmail,omitempty" db:"guest_email"`
	Status        OrderStatus     `json:"status" db:"status"`
	Subtotal      int64           `json:"subtotal" db:"subtotal"`
	ShippingCost  int64           `json:"shippingCost" db:"shipping_cost"`
	Discount      int64           `json:"discount" db:"discount"`
	Total         int64           `json:"total" db:"total"`
	CouponCode    *string         `json:"couponCode,omitempty" db:"coupon_code"`
	PaymentMethod PaymentMethod   `json:"paymentMethod" db:"payment_method"`
	PaymentID     *string         `json:"paymentId,omitempty" db:"payment_id"`
	PaymentStatus *string         `json:"paymentStatus,omitempty" db:"payment_status"`
	PaidAt        *time.Time      `json:"paidAt,omitempty" db:"paid_at"`
	Shipping      ShippingAddress `json:"shipping"`
	CustomerNotes *string         `json:"customerNotes,omitempty" db:"customer_notes"`
	Items         []OrderItem     `json:"items"`
	CreatedAt     time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt     time.Time       `json:"updatedAt" db:"updated_at"`
}

// TotalsBalanced reports whether total == subtotal + shippingCost - discount.
func (o *Order) TotalsBalanced() bool {
	return o.Total == o.Subtotal+o.ShippingCost-o.Discount
}

// OrderItem is an immutable snapshot of a purchased product.
type OrderItem struct {
	ID           uuid.UUID `json:"id" db:"id"`
	OrderID      uuid.UUID `json:"-" db:"order_id"`
	ProductID    uuid.UUID `json:"productId" db:"product_id"`
	ProductName  string    `json:"productName" db:"product_name"`
	ProductSKU   *string   `json:"productSku,omitempty" db:"product_sku"`
	ProductImage *string   `json:"productImage,omitempty" db:"product_image"`
	UnitPrice    int64     `json:"unitPrice" db:"unit_price"`
	Quantity     int       `json:"quantity" db:"quantity"`
	Total        int64     `json:"total" db:"total"`
	Position     int       `json:"-" db:"position"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
}

// CreateOrderRequest represents the request payload for creating an order.
type CreateOrderRequest struct {
	// UserID is taken from the authenticated caller, never from the body.
	UserID          string             `json:"-"`
	GuestEmail      *string            `json:"guestEmail,omitempty"`
	Items           []OrderItemRequest `json:"items"`
	PaymentMethod   PaymentMethod      `json:"paymentMethod"`
	ShippingAddress ShippingAddress    `json:"shippingAddress"`
	CouponCode      *string            `json:"couponCode,omitempty"`
	CustomerNotes   *string            `json:"customerNotes,omitempty"`
	// ExpectedTotal is the total the buyer saw. When set it must match.
	ExpectedTotal *int64 `json:"expectedTotal,omitempty"`
}

// OrderItemRequest represents a single item in an order request.
type OrderItemRequest struct {
	ProductID uuid.UUID `json:"productId"`
	Quantity  int       `json:"quantity"`
}

// UpdateStatusRequest is the body of the manual status update endpoint.
type UpdateStatusRequest struct {
	Status OrderStatus `json:"status"`
}

// PaymentUpdate carries the provider-side facts applied to an order during
// reconciliation.
type PaymentUpdate struct {
	OrderID       uuid.UUID
	Status        OrderStatus
	PaymentID     string
	PaymentStatus string
	At            time.Time
	// LinkPayment replaces the stored payment id. It is set when the payment
	// moves the order; otherwise an id is only recorded if none is stored.
	LinkPayment bool
}
