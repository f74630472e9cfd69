// Package pricing computes order totals from authoritative catalog prices.
package pricing

import (
	"errors"
	"fmt"
)

var ErrDiscountExceedsTotal = errors.New("discount exceeds order total")

// Line pairs a requested quantity with the catalog snapshot used to price it.
type Line struct {
	ProductID string
	Name      string
	Price     int64 // unit price from the catalog, never from the client
	Quantity  int
}

type Totals struct {
	TotalAmount int64
	TotalItems  int
}

// ComputeTotals sums price x quantity per line. Quantities must be positive.
func ComputeTotals(lines []Line) (Totals, error) {
	if len(lines) == 0 {
		return Totals{}, fmt.Errorf("no lines to price")
	}

	var t Totals
	for _, line := range lines {
		if line.Quantity <= 0 {
			return Totals{}, fmt.Errorf("invalid quantity %d for product %s", line.Quantity, line.ProductID)
		}
		if line.Price < 0 {
			return Totals{}, fmt.Errorf("invalid price %d for product %s", line.Price, line.ProductID)
		}
		t.TotalAmount += line.Price * int64(line.Quantity)
		t.TotalItems += line.Quantity
	}
	return t, nil
}

// ApplyDiscount subtracts a flat discount. A discount larger than the total
// is a coupon configuration error, not a free order.
func ApplyDiscount(total, discount int64) (int64, error) {
	if discount < 0 {
		return 0, fmt.Errorf("negative discount %d", discount)
	}
	if discount > total {
		return 0, fmt.Errorf("%w: discount %d, total %d", ErrDiscountExceedsTotal, discount, total)
	}
	return total - discount, nil
}

// ShippingFor charges the flat fee below the free-shipping threshold.
func ShippingFor(orderTotal, fee, freeAbove int64) int64 {
	if orderTotal >= freeAbove {
		return 0
	}
	return fee
}
