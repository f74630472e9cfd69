package inventory

import "time"

// Record is one store's stock ledger entry for one product.
type Record struct {
	StoreID      string    `json:"store_id"`
	ProductID    string    `json:"product_id"`
	Quantity     int       `json:"quantity"`
	Threshold    int       `json:"threshold"`
	Availability bool      `json:"availability"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Line is a (product, quantity) pair inside a reservation or restock.
type Line struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// AvailabilityFor is the single availability rule: a product is orderable
// while stock is above zero and above the low-stock threshold. quantity
// at or below threshold counts as low stock and flips the flag off.
func AvailabilityFor(quantity, threshold int) bool {
	return quantity > 0 && quantity > threshold
}
