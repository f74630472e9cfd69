package invoices

import "time"

// Invoice is the immutable billing record derived from an order at creation
// time. Item names and prices are snapshots; later catalog edits must not
// change what the customer was billed.
type Invoice struct {
	ID             string    `json:"id"` // "INV-" + order id
	OrderID        string    `json:"order_id"`
	UserName       string    `json:"user_name"`
	UserEmail      string    `json:"user_email"`
	UserPhone      string    `json:"user_phone"`
	TotalAmount    int64     `json:"total_amount"`
	Discount       int64     `json:"discount"`
	ShippingAmount int64     `json:"shipping_amount"`
	PaymentStatus  string    `json:"payment_status"` // mirrors the order
	Items          []Item    `json:"items"`
	CreatedAt      time.Time `json:"created_at"`
}

type Item struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
	Price    int64  `json:"price"`
}
