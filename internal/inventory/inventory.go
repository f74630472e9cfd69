package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrInsufficientStock     = errors.New("insufficient stock")
	ErrProductNotInInventory = errors.New("product not in store inventory")
)

type Conf struct {
	db *pgxpool.Pool
}

func NewConf(db *pgxpool.Pool) (*Conf, error) {
	if db == nil {
		return nil, fmt.Errorf("db is nil")
	}
	return &Conf{db: db}, nil
}

// Reserve decrements stock for every line inside the caller's transaction.
// Each line is a single conditional UPDATE — the decrement only happens when
// the row still has enough available stock, so two concurrent reservations
// against the same last units cannot both win. Any failed line aborts the
// whole transaction, making the list all-or-nothing.
func (c *Conf) Reserve(ctx context.Context, tx pgx.Tx, storeID string, lines []Line) error {
	for _, line := range lines {
		tag, err := tx.Exec(ctx, `
			UPDATE inventory
			SET quantity = quantity - $3,
			    availability = (quantity - $3) > 0 AND (quantity - $3) > threshold,
			    updated_at = now()
			WHERE store_id = $1 AND product_id = $2
			  AND availability AND quantity >= $3
		`, storeID, line.ProductID, line.Quantity)
		if err != nil {
			return fmt.Errorf("reserving %s: %w", line.ProductID, err)
		}
		if tag.RowsAffected() == 0 {
			return c.classifyReserveFailure(ctx, tx, storeID, line)
		}
	}
	return nil
}

// classifyReserveFailure distinguishes a missing ledger row from plain
// insufficient stock after a conditional decrement matched nothing.
func (c *Conf) classifyReserveFailure(ctx context.Context, tx pgx.Tx, storeID string, line Line) error {
	var exists bool
	err := tx.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM inventory WHERE store_id = $1 AND product_id = $2)
	`, storeID, line.ProductID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("checking inventory row for %s: %w", line.ProductID, err)
	}
	if !exists {
		return fmt.Errorf("%w: product %s in store %s", ErrProductNotInInventory, line.ProductID, storeID)
	}
	return fmt.Errorf("%w: product %s in store %s", ErrInsufficientStock, line.ProductID, storeID)
}

// Restock is the inverse of Reserve, used when an order is cancelled.
// Reserve followed by Restock of the same lines is identity on quantity.
func (c *Conf) Restock(ctx context.Context, tx pgx.Tx, storeID string, lines []Line) error {
	for _, line := range lines {
		tag, err := tx.Exec(ctx, `
			UPDATE inventory
			SET quantity = quantity + $3,
			    availability = (quantity + $3) > 0 AND (quantity + $3) > threshold,
			    updated_at = now()
			WHERE store_id = $1 AND product_id = $2
		`, storeID, line.ProductID, line.Quantity)
		if err != nil {
			return fmt.Errorf("restocking %s: %w", line.ProductID, err)
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("%w: product %s in store %s", ErrProductNotInInventory, line.ProductID, storeID)
		}
	}
	return nil
}

// Adjustment is an explicit stock override from the store-management side.
// Nil fields keep the current value; a nil Availability is re-derived from
// the resulting quantity and threshold.
type Adjustment struct {
	Quantity     *int
	Threshold    *int
	Availability *bool
}

func (c *Conf) Adjust(ctx context.Context, storeID, productID string, adj Adjustment) (Record, error) {
	if adj.Quantity != nil && *adj.Quantity < 0 {
		return Record{}, fmt.Errorf("quantity must be >= 0")
	}
	if adj.Threshold != nil && *adj.Threshold < 0 {
		return Record{}, fmt.Errorf("threshold must be >= 0")
	}

	// Single statement so concurrent adjustments cannot interleave between
	// a read and a write. COALESCE keeps omitted fields; an omitted
	// availability is re-derived from the resulting quantity vs threshold.
	var rec Record
	err := c.db.QueryRow(ctx, `
		UPDATE inventory
		SET quantity = COALESCE($3, quantity),
		    threshold = COALESCE($4, threshold),
		    availability = COALESCE($5,
		        COALESCE($3, quantity) > 0 AND COALESCE($3, quantity) > COALESCE($4, threshold)),
		    updated_at = now()
		WHERE store_id = $1 AND product_id = $2
		RETURNING store_id, product_id, quantity, threshold, availability, updated_at
	`, storeID, productID, adj.Quantity, adj.Threshold, adj.Availability).
		Scan(&rec.StoreID, &rec.ProductID, &rec.Quantity, &rec.Threshold, &rec.Availability, &rec.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Record{}, fmt.Errorf("%w: product %s in store %s", ErrProductNotInInventory, productID, storeID)
		}
		return Record{}, fmt.Errorf("updating inventory row: %w", err)
	}
	return rec, nil
}

// Upsert seeds or replaces a ledger row; availability always re-derived.
func (c *Conf) Upsert(ctx context.Context, storeID, productID string, quantity, threshold int) (Record, error) {
	if quantity < 0 || threshold < 0 {
		return Record{}, fmt.Errorf("quantity and threshold must be >= 0")
	}
	rec := Record{
		StoreID:      storeID,
		ProductID:    productID,
		Quantity:     quantity,
		Threshold:    threshold,
		Availability: AvailabilityFor(quantity, threshold),
	}
	err := c.db.QueryRow(ctx, `
		INSERT INTO inventory (store_id, product_id, quantity, threshold, availability)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (store_id, product_id) DO UPDATE
		SET quantity = $3, threshold = $4, availability = $5, updated_at = now()
		RETURNING updated_at
	`, storeID, productID, quantity, threshold, rec.Availability).Scan(&rec.UpdatedAt)
	if err != nil {
		return Record{}, fmt.Errorf("upserting inventory row: %w", err)
	}
	return rec, nil
}

// ListByStore returns one store's ledger.
func (c *Conf) ListByStore(ctx context.Context, storeID string) ([]Record, error) {
	rows, err := c.db.Query(ctx, `
		SELECT store_id, product_id, quantity, threshold, availability, updated_at
		FROM inventory
		WHERE store_id = $1
		ORDER BY product_id
	`, storeID)
	if err != nil {
		return nil, fmt.Errorf("querying inventory for store %s: %w", storeID, err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.StoreID, &rec.ProductID, &rec.Quantity, &rec.Threshold, &rec.Availability, &rec.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning inventory row: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating inventory rows: %w", err)
	}
	return records, nil
}
