package orders

import (
	"fmt"
	"time"
)

type Status string

const (
	StatusPlaced    Status = "placed"
	StatusConfirmed Status = "confirmed"
	StatusShipped   Status = "shipped"
	StatusDelivered Status = "delivered"
	StatusCancelled Status = "cancelled"
)

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentPaid      PaymentStatus = "paid"
	PaymentCancelled PaymentStatus = "cancelled"
)

// Item is one (product, quantity) line of an order.
type Item struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// AppliedCoupon records the discount locked in at checkout.
type AppliedCoupon struct {
	CouponID       string `json:"coupon_id"`
	Code           string `json:"code"`
	DiscountAmount int64  `json:"discount_amount"`
}

type Order struct {
	ID               string         `json:"id"` // "ORD-" + unix millis
	UserID           string         `json:"user_id"`
	StoreID          string         `json:"store_id"`
	Items            []Item         `json:"items"`
	Status           Status         `json:"status"`
	PaymentStatus    PaymentStatus  `json:"payment_status"`
	TotalAmount      int64          `json:"total_amount"` // post-discount
	ShippingAmount   int64          `json:"shipping_amount"`
	TotalItems       int            `json:"total_items"`
	IsCashOnDelivery bool           `json:"is_cash_on_delivery"`
	DeliveryAddress  string         `json:"delivery_address"` // snapshot, not a reference
	InvoiceID        string         `json:"invoice_id"`
	Coupon           *AppliedCoupon `json:"coupon,omitempty"`
	ProviderRef      string         `json:"provider_ref,omitempty"`
	OrderDate        time.Time      `json:"order_date"`
	ExpectedDelivery time.Time      `json:"expected_delivery"`
	UpdatedAt        time.Time      `json:"updated_at"`
}

// NewOrderID derives the persisted order-id format from the order's
// creation instant.
func NewOrderID(t time.Time) string {
	return fmt.Sprintf("ORD-%d", t.UnixMilli())
}

// CreateOrderRequest is the typed, validated input to the coordinator.
// Prices are deliberately absent: the catalog is authoritative.
type CreateOrderRequest struct {
	UserID           string `json:"user_id" validate:"required"`
	StoreID          string `json:"store_id" validate:"required"`
	Items            []Item `json:"items" validate:"required,min=1,dive"`
	IsCashOnDelivery bool   `json:"is_cash_on_delivery"`
	DeliveryAddress  string `json:"delivery_address" validate:"required"`
	CouponCode       string `json:"coupon_code"`
}
