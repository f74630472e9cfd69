package invoices

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate(t *testing.T) {
	items := []Item{
		{Name: "Milk", Quantity: 2, Price: 60},
		{Name: "Bread", Quantity: 1, Price: 30},
	}
	user := UserSnapshot{Name: "Asha", Email: "asha@example.com", Phone: "999"}

	inv := Generate("ORD-1735689600000", user, items, 100, 50, 40, "pending")

	assert.Equal(t, "INV-ORD-1735689600000", inv.ID)
	assert.Equal(t, "ORD-1735689600000", inv.OrderID)
	assert.Equal(t, "Asha", inv.UserName)
	assert.Equal(t, int64(100), inv.TotalAmount)
	assert.Equal(t, int64(50), inv.Discount)
	assert.Equal(t, int64(40), inv.ShippingAmount)
	assert.Equal(t, "pending", inv.PaymentStatus)
	require.Len(t, inv.Items, 2)
	assert.Equal(t, items, inv.Items)
}

// The invoice is a snapshot: mutating the source slice after generation
// must not change what was already billed.
func TestGenerateSnapshotsItems(t *testing.T) {
	items := []Item{{Name: "Milk", Quantity: 2, Price: 60}}
	inv := Generate("ORD-1", UserSnapshot{}, items, 120, 0, 0, "pending")

	items[0].Price = 90
	items[0].Name = "Almond Milk"

	assert.Equal(t, "Milk", inv.Items[0].Name)
	assert.Equal(t, int64(60), inv.Items[0].Price)
}
