// Package shops is the store directory: lookup of the physical grocery
// stores that own inventory.
package shops

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrStoreNotFound = errors.New("store not found")

type Store struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Address   string    `json:"address"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
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

func (c *Conf) GetStoreByID(ctx context.Context, storeID string) (Store, error) {
	var s Store
	err := c.db.QueryRow(ctx, `
		SELECT id, name, address, created_at, updated_at
		FROM stores
		WHERE id = $1
	`, storeID).Scan(&s.ID, &s.Name, &s.Address, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Store{}, ErrStoreNotFound
		}
		return Store{}, fmt.Errorf("querying store %s: %w", storeID, err)
	}
	return s, nil
}
