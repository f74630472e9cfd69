package invoices

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrInvoiceNotFound = errors.New("invoice not found")

// UserSnapshot is the billing contact captured at order time.
type UserSnapshot struct {
	Name  string
	Email string
	Phone string
}

// Generate derives an invoice from its inputs and nothing else. The item
// slice is copied: the invoice is a snapshot and later edits to the
// caller's data must not reach it.
func Generate(orderID string, user UserSnapshot, items []Item, totalAmount, discount, shippingAmount int64, paymentStatus string) Invoice {
	snapshot := make([]Item, len(items))
	copy(snapshot, items)
	return Invoice{
		ID:             "INV-" + orderID,
		OrderID:        orderID,
		UserName:       user.Name,
		UserEmail:      user.Email,
		UserPhone:      user.Phone,
		TotalAmount:    totalAmount,
		Discount:       discount,
		ShippingAmount: shippingAmount,
		PaymentStatus:  paymentStatus,
		Items:          snapshot,
	}
}

type Conf struct {
	db *pgxpool.Pool
}

func NewConf(db *pgxpool.Pool) (*Conf, error) {
	if db == nil {
		return nil, fmt.Errorf("db is nil")
	}
	return &Conf{db: db}, nil
}

// Insert persists the invoice and its item snapshot inside the caller's
// transaction, so an order can never commit without its invoice.
func (c *Conf) Insert(ctx context.Context, tx pgx.Tx, inv Invoice) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO invoices (id, order_id, user_name, user_email, user_phone,
		                      total_amount, discount, shipping_amount, payment_status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, inv.ID, inv.OrderID, inv.UserName, inv.UserEmail, inv.UserPhone,
		inv.TotalAmount, inv.Discount, inv.ShippingAmount, inv.PaymentStatus)
	if err != nil {
		return fmt.Errorf("inserting invoice %s: %w", inv.ID, err)
	}

	for i, item := range inv.Items {
		_, err := tx.Exec(ctx, `
			INSERT INTO invoice_items (invoice_id, name, quantity, price, position)
			VALUES ($1, $2, $3, $4, $5)
		`, inv.ID, item.Name, item.Quantity, item.Price, i)
		if err != nil {
			return fmt.Errorf("inserting invoice item %d of %s: %w", i, inv.ID, err)
		}
	}
	return nil
}

// MirrorPaymentStatus keeps the invoice's payment status in lockstep with
// the order's. Invoices are never deleted; this is their only mutation.
func (c *Conf) MirrorPaymentStatus(ctx context.Context, tx pgx.Tx, orderID, paymentStatus string) error {
	tag, err := tx.Exec(ctx, `
		UPDATE invoices SET payment_status = $2 WHERE order_id = $1
	`, orderID, paymentStatus)
	if err != nil {
		return fmt.Errorf("mirroring payment status for order %s: %w", orderID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: order %s", ErrInvoiceNotFound, orderID)
	}
	return nil
}

func (c *Conf) GetByOrderID(ctx context.Context, orderID string) (Invoice, error) {
	var inv Invoice
	err := c.db.QueryRow(ctx, `
		SELECT id, order_id, user_name, user_email, user_phone,
		       total_amount, discount, shipping_amount, payment_status, created_at
		FROM invoices
		WHERE order_id = $1
	`, orderID).Scan(&inv.ID, &inv.OrderID, &inv.UserName, &inv.UserEmail, &inv.UserPhone,
		&inv.TotalAmount, &inv.Discount, &inv.ShippingAmount, &inv.PaymentStatus, &inv.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Invoice{}, ErrInvoiceNotFound
		}
		return Invoice{}, fmt.Errorf("querying invoice for order %s: %w", orderID, err)
	}

	rows, err := c.db.Query(ctx, `
		SELECT name, quantity, price
		FROM invoice_items
		WHERE invoice_id = $1
		ORDER BY position
	`, inv.ID)
	if err != nil {
		return Invoice{}, fmt.Errorf("querying invoice items for %s: %w", inv.ID, err)
	}
	defer rows.Close()

	for rows.Next() {
		var item Item
		if err := rows.Scan(&item.Name, &item.Quantity, &item.Price); err != nil {
			return Invoice{}, fmt.Errorf("scanning invoice item: %w", err)
		}
		inv.Items = append(inv.Items, item)
	}
	if err := rows.Err(); err != nil {
		return Invoice{}, fmt.Errorf("iterating invoice items: %w", err)
	}
	return inv, nil
}
