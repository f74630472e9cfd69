package coupons

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validCoupon() Coupon {
	return Coupon{
		ID:         "c1",
		Code:       "SAVE50",
		MinValue:   100,
		MaxUsage:   1,
		OffValue:   50,
		CouponType: TypeMaxUsage,
		IsActive:   true,
		ExpiresAt:  time.Now().Add(24 * time.Hour),
	}
}

func TestValidateHappyPath(t *testing.T) {
	err := Validate(validCoupon(), time.Now(), 150, false, 0, 0)
	require.NoError(t, err)
}

func TestValidateRuleOrder(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name    string
		mutate  func(*Coupon)
		total   int64
		used    bool
		count   int
		orders  int
		wantErr error
	}{
		{
			name:    "inactive",
			mutate:  func(c *Coupon) { c.IsActive = false },
			total:   150,
			wantErr: ErrCouponInactive,
		},
		{
			// An inactive deleted coupon reports inactive first.
			name:    "inactive wins over deleted",
			mutate:  func(c *Coupon) { c.IsActive = false; c.IsDeleted = true },
			total:   150,
			wantErr: ErrCouponInactive,
		},
		{
			name:    "deleted",
			mutate:  func(c *Coupon) { c.IsDeleted = true },
			total:   150,
			wantErr: ErrCouponDeleted,
		},
		{
			name:    "expired",
			mutate:  func(c *Coupon) { c.ExpiresAt = now.Add(-time.Hour) },
			total:   150,
			wantErr: ErrCouponExpired,
		},
		{
			name:    "below min value",
			mutate:  func(c *Coupon) {},
			total:   99,
			wantErr: ErrBelowMinValue,
		},
		{
			name:    "already used",
			mutate:  func(c *Coupon) {},
			total:   150,
			used:    true,
			wantErr: ErrAlreadyUsed,
		},
		{
			name:    "max usage reached",
			mutate:  func(c *Coupon) {},
			total:   150,
			count:   1,
			wantErr: ErrMaxUsageReached,
		},
		{
			name:    "min orders not met",
			mutate:  func(c *Coupon) { c.CouponType = TypeMinOrders; c.MinOrders = 3 },
			total:   150,
			orders:  2,
			wantErr: ErrMinOrdersNotMet,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := validCoupon()
			tc.mutate(&c)
			err := Validate(c, now, tc.total, tc.used, tc.count, tc.orders)
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestValidateMinOrdersMet(t *testing.T) {
	c := validCoupon()
	c.CouponType = TypeMinOrders
	c.MinOrders = 3

	err := Validate(c, time.Now(), 150, false, 0, 3)
	require.NoError(t, err)
}

// SAVE50: minValue=100, offValue=50, maxUsage=1. A 150 cart yields a 50
// discount and a 100 final; the next user hits the usage cap.
func TestSave50Scenario(t *testing.T) {
	c := validCoupon()

	require.NoError(t, Validate(c, time.Now(), 150, false, 0, 0))
	assert.Equal(t, int64(50), c.OffValue)
	assert.Equal(t, int64(100), 150-c.OffValue)

	err := Validate(c, time.Now(), 150, false, 1, 0)
	assert.ErrorIs(t, err, ErrMaxUsageReached)
}

func TestValidateExpiryBoundary(t *testing.T) {
	c := validCoupon()
	at := c.ExpiresAt

	// Valid exactly at expiry, invalid one instant after.
	assert.NoError(t, Validate(c, at, 150, false, 0, 0))
	assert.ErrorIs(t, Validate(c, at.Add(time.Nanosecond), 150, false, 0, 0), ErrCouponExpired)
}
