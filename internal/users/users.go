package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrUserNotFound = errors.New("user not found")

type Conf struct {
	db *pgxpool.Pool
}

func NewConf(db *pgxpool.Pool) (*Conf, error) {
	if db == nil {
		return nil, fmt.Errorf("db is nil")
	}
	return &Conf{db: db}, nil
}

func (c *Conf) GetUserByID(ctx context.Context, userID string) (User, error) {
	var u User
	err := c.db.QueryRow(ctx, `
		SELECT id, name, email, phone, created_at, updated_at
		FROM users
		WHERE id = $1
	`, userID).Scan(&u.ID, &u.Name, &u.Email, &u.Phone, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, ErrUserNotFound
		}
		return User{}, fmt.Errorf("querying user %s: %w", userID, err)
	}
	return u, nil
}

// AppendOrder adds an order id to the user's append-only history inside the
// caller's transaction. Rows are never removed; cancellation is a status
// change, not a deletion.
func (c *Conf) AppendOrder(ctx context.Context, tx pgx.Tx, userID, orderID string) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO user_orders (user_id, order_id)
		VALUES ($1, $2)
	`, userID, orderID)
	if err != nil {
		return fmt.Errorf("appending order %s to user %s: %w", orderID, userID, err)
	}
	return nil
}

// DeliveredOrderCount counts a user's completed orders; MinOrders coupons
// gate on this.
func (c *Conf) DeliveredOrderCount(ctx context.Context, tx pgx.Tx, userID string) (int, error) {
	var n int
	err := tx.QueryRow(ctx, `
		SELECT COUNT(*)
		FROM orders
		WHERE user_id = $1 AND status = 'delivered'
	`, userID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting delivered orders for user %s: %w", userID, err)
	}
	return n, nil
}

// OrderIDs returns the user's order history, newest first.
func (c *Conf) OrderIDs(ctx context.Context, userID string) ([]string, error) {
	rows, err := c.db.Query(ctx, `
		SELECT order_id
		FROM user_orders
		WHERE user_id = $1
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("querying order history for user %s: %w", userID, err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning order id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating order history: %w", err)
	}
	return ids, nil
}
