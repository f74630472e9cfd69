package products

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	lru "github.com/hashicorp/golang-lru/v2/expirable"
)

var ErrProductNotFound = errors.New("product not found")

const (
	cacheSize = 1024
	cacheTTL  = 5 * time.Minute
)

type Conf struct {
	db    *pgxpool.Pool
	cache *lru.LRU[string, Product]
}

// NewConf wires the catalog with a bounded, time-expiring read cache.
// The cache is invalidated on every write so checkout always prices
// against fresh catalog data within one TTL.
func NewConf(db *pgxpool.Pool) (*Conf, error) {
	if db == nil {
		return nil, fmt.Errorf("db is nil")
	}
	return &Conf{
		db:    db,
		cache: lru.NewLRU[string, Product](cacheSize, nil, cacheTTL),
	}, nil
}

func (c *Conf) GetProductByID(ctx context.Context, productID string) (Product, error) {
	if p, ok := c.cache.Get(productID); ok {
		return p, nil
	}

	var p Product
	err := c.db.QueryRow(ctx, `
		SELECT id, name, price, actual_price, category, unit, created_at, updated_at
		FROM products
		WHERE id = $1
	`, productID).Scan(&p.ID, &p.Name, &p.Price, &p.ActualPrice, &p.Category, &p.Unit, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Product{}, ErrProductNotFound
		}
		return Product{}, fmt.Errorf("querying product %s: %w", productID, err)
	}

	c.cache.Add(productID, p)
	return p, nil
}

// GetProductsByIDs loads the catalog rows for a set of ids in one query.
// Every requested id must exist; a missing one is ErrProductNotFound.
// Prices returned here are authoritative: checkout never trusts prices
// from the client payload.
func (c *Conf) GetProductsByIDs(ctx context.Context, ids []string) (map[string]Product, error) {
	if len(ids) == 0 {
		return map[string]Product{}, nil
	}

	rows, err := c.db.Query(ctx, `
		SELECT id, name, price, actual_price, category, unit, created_at, updated_at
		FROM products
		WHERE id = ANY($1)
	`, ids)
	if err != nil {
		return nil, fmt.Errorf("querying products: %w", err)
	}
	defer rows.Close()

	found := make(map[string]Product, len(ids))
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Price, &p.ActualPrice, &p.Category, &p.Unit, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning product: %w", err)
		}
		found[p.ID] = p
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating products: %w", err)
	}

	for _, id := range ids {
		if _, ok := found[id]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrProductNotFound, id)
		}
	}
	return found, nil
}

func (c *Conf) InsertProduct(ctx context.Context, np NewProduct) (Product, error) {
	p := Product{
		ID:          uuid.NewString(),
		Name:        np.Name,
		Price:       np.Price,
		ActualPrice: np.ActualPrice,
		Category:    np.Category,
		Unit:        np.Unit,
	}
	err := c.db.QueryRow(ctx, `
		INSERT INTO products (id, name, price, actual_price, category, unit)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at
	`, p.ID, p.Name, p.Price, p.ActualPrice, p.Category, p.Unit).Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return Product{}, fmt.Errorf("inserting product: %w", err)
	}
	return p, nil
}

func (c *Conf) UpdateProduct(ctx context.Context, productID string, np NewProduct) (Product, error) {
	var p Product
	err := c.db.QueryRow(ctx, `
		UPDATE products
		SET name = $2, price = $3, actual_price = $4, category = $5, unit = $6, updated_at = now()
		WHERE id = $1
		RETURNING id, name, price, actual_price, category, unit, created_at, updated_at
	`, productID, np.Name, np.Price, np.ActualPrice, np.Category, np.Unit).
		Scan(&p.ID, &p.Name, &p.Price, &p.ActualPrice, &p.Category, &p.Unit, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Product{}, ErrProductNotFound
		}
		return Product{}, fmt.Errorf("updating product %s: %w", productID, err)
	}

	c.cache.Remove(productID)
	return p, nil
}
