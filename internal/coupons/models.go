package coupons

import "time"

type Type string

const (
	// TypeMaxUsage caps redemptions globally; every coupon carries the cap,
	// this type adds no extra gate.
	TypeMaxUsage Type = "MaxUsage"
	// TypeMinOrders additionally requires the user to have a minimum number
	// of delivered orders.
	TypeMinOrders Type = "MinOrders"
)

type Coupon struct {
	ID         string    `json:"id"`
	Code       string    `json:"code"`
	MinValue   int64     `json:"min_value"`
	MaxUsage   int       `json:"max_usage"`
	OffValue   int64     `json:"off_value"` // flat discount, not a percentage
	CouponType Type      `json:"coupon_type"`
	MinOrders  int       `json:"min_orders"`
	IsActive   bool      `json:"is_active"`
	IsDeleted  bool      `json:"is_deleted"`
	ExpiresAt  time.Time `json:"expires_at"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type NewCoupon struct {
	Code       string    `json:"code" validate:"required,uppercase"`
	MinValue   int64     `json:"min_value" validate:"min=0"`
	MaxUsage   int       `json:"max_usage" validate:"required,min=1"`
	OffValue   int64     `json:"off_value" validate:"required,min=1"`
	CouponType Type      `json:"coupon_type" validate:"required,oneof=MaxUsage MinOrders"`
	MinOrders  int       `json:"min_orders" validate:"required_if=CouponType MinOrders,min=0"`
	ExpiresAt  time.Time `json:"expires_at" validate:"required"`
}

// Redemption marks a coupon as consumed by one user. A user appears at most
// once per coupon; removal on release is idempotent.
type Redemption struct {
	CouponID string    `json:"coupon_id"`
	UserID   string    `json:"user_id"`
	OrderID  string    `json:"order_id"`
	UsedAt   time.Time `json:"used_at"`
}
