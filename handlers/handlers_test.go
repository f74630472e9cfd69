package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"grocery-order-service/internal/coupons"
	"grocery-order-service/internal/inventory"
	"grocery-order-service/internal/orders"
	"grocery-order-service/internal/pricing"
	"grocery-order-service/internal/products"
	"grocery-order-service/internal/shops"
	"grocery-order-service/internal/users"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusForError(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{orders.ErrOrderNotFound, http.StatusNotFound},
		{users.ErrUserNotFound, http.StatusNotFound},
		{shops.ErrStoreNotFound, http.StatusNotFound},
		{products.ErrProductNotFound, http.StatusNotFound},
		{coupons.ErrCouponNotFound, http.StatusNotFound},
		{inventory.ErrInsufficientStock, http.StatusConflict},
		{inventory.ErrProductNotInInventory, http.StatusConflict},
		{coupons.ErrAlreadyUsed, http.StatusConflict},
		{coupons.ErrMaxUsageReached, http.StatusConflict},
		{orders.ErrInvalidTransition, http.StatusConflict},
		{coupons.ErrCouponExpired, http.StatusUnprocessableEntity},
		{coupons.ErrBelowMinValue, http.StatusUnprocessableEntity},
		{coupons.ErrMinOrdersNotMet, http.StatusUnprocessableEntity},
		{pricing.ErrDiscountExceedsTotal, http.StatusUnprocessableEntity},
		{errors.New("pq: connection refused"), http.StatusInternalServerError},
	}

	for _, tc := range tests {
		assert.Equal(t, tc.want, statusForError(tc.err), "error %v", tc.err)
	}
}

func TestStatusForErrorWrapped(t *testing.T) {
	// Core packages wrap sentinels with context; mapping must still match.
	err := fmt.Errorf("reserving p1: %w", inventory.ErrInsufficientStock)
	assert.Equal(t, http.StatusConflict, statusForError(err))
}

func TestCheckoutRequestValidation(t *testing.T) {
	validate := validator.New()

	valid := CheckoutRequest{
		StoreID:         "s1",
		Items:           []ItemRequest{{ProductID: "p1", Quantity: 2}},
		DeliveryAddress: "221B Baker Street",
	}
	require.NoError(t, validate.Struct(valid))

	missingStore := valid
	missingStore.StoreID = ""
	assert.Error(t, validate.Struct(missingStore))

	emptyItems := valid
	emptyItems.Items = nil
	assert.Error(t, validate.Struct(emptyItems))

	zeroQty := valid
	zeroQty.Items = []ItemRequest{{ProductID: "p1", Quantity: 0}}
	assert.Error(t, validate.Struct(zeroQty))

	missingAddress := valid
	missingAddress.DeliveryAddress = ""
	assert.Error(t, validate.Struct(missingAddress))
}

func TestNewCouponValidation(t *testing.T) {
	validate := validator.New()

	base := coupons.NewCoupon{
		Code:       "SAVE50",
		MinValue:   100,
		MaxUsage:   1,
		OffValue:   50,
		CouponType: coupons.TypeMaxUsage,
		ExpiresAt:  timeMustParse(t, "2027-01-01T00:00:00Z"),
	}
	require.NoError(t, validate.Struct(base))

	minOrders := base
	minOrders.CouponType = coupons.TypeMinOrders
	minOrders.MinOrders = 0
	assert.Error(t, validate.Struct(minOrders), "MinOrders type requires min_orders")

	minOrders.MinOrders = 3
	assert.NoError(t, validate.Struct(minOrders))

	badType := base
	badType.CouponType = "Percentage"
	assert.Error(t, validate.Struct(badType))
}

func timeMustParse(t *testing.T, s string) time.Time {
	t.Helper()
	parsed, err := time.Parse(time.RFC3339, s)
	require.NoError(t, err)
	return parsed
}
