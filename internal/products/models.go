package products

import "time"

// Product is a catalog fact. Orders and inventory reference it by id and
// snapshot what they need; they never embed it.
type Product struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Price       int64     `json:"price"`        // selling price, smallest currency unit
	ActualPrice int64     `json:"actual_price"` // pre-discount list price
	Category    string    `json:"category"`
	Unit        string    `json:"unit"` // kg, litre, piece
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type NewProduct struct {
	Name        string `json:"name" validate:"required"`
	Price       int64  `json:"price" validate:"required,min=1"`
	ActualPrice int64  `json:"actual_price" validate:"min=0"`
	Category    string `json:"category" validate:"required"`
	Unit        string `json:"unit" validate:"required"`
}
