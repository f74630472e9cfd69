package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeTotals(t *testing.T) {
	totals, err := ComputeTotals([]Line{
		{ProductID: "p1", Name: "Milk", Price: 60, Quantity: 2},
		{ProductID: "p2", Name: "Bread", Price: 30, Quantity: 1},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(150), totals.TotalAmount)
	assert.Equal(t, 3, totals.TotalItems)
}

func TestComputeTotalsRejectsEmpty(t *testing.T) {
	_, err := ComputeTotals(nil)
	assert.Error(t, err)
}

func TestComputeTotalsRejectsBadQuantity(t *testing.T) {
	_, err := ComputeTotals([]Line{{ProductID: "p1", Price: 10, Quantity: 0}})
	assert.Error(t, err)

	_, err = ComputeTotals([]Line{{ProductID: "p1", Price: 10, Quantity: -1}})
	assert.Error(t, err)
}

func TestApplyDiscount(t *testing.T) {
	final, err := ApplyDiscount(150, 50)
	require.NoError(t, err)
	assert.Equal(t, int64(100), final)

	// A discount equal to the total is a free order, not an error.
	final, err = ApplyDiscount(50, 50)
	require.NoError(t, err)
	assert.Equal(t, int64(0), final)
}

func TestApplyDiscountRejectsOversizedDiscount(t *testing.T) {
	_, err := ApplyDiscount(40, 50)
	assert.ErrorIs(t, err, ErrDiscountExceedsTotal)
}

func TestApplyDiscountRejectsNegative(t *testing.T) {
	_, err := ApplyDiscount(100, -1)
	assert.Error(t, err)
}

func TestShippingFor(t *testing.T) {
	assert.Equal(t, int64(40), ShippingFor(100, 40, 500))
	assert.Equal(t, int64(0), ShippingFor(500, 40, 500))
	assert.Equal(t, int64(0), ShippingFor(600, 40, 500))
}
