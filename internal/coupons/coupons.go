package coupons

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrCouponNotFound  = errors.New("coupon not found")
	ErrCouponInactive  = errors.New("coupon is inactive")
	ErrCouponDeleted   = errors.New("coupon is deleted")
	ErrCouponExpired   = errors.New("coupon has expired")
	ErrBelowMinValue   = errors.New("cart total below coupon minimum value")
	ErrAlreadyUsed     = errors.New("coupon already used by this user")
	ErrMaxUsageReached = errors.New("coupon max usage reached")
	ErrMinOrdersNotMet = errors.New("minimum completed orders not met")
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

// Validate applies the redemption rules in their documented order and
// returns the first violated one. Pure so the ordering is testable without
// a database; the transactional path feeds it freshly locked state.
func Validate(c Coupon, now time.Time, cartTotal int64, alreadyUsed bool, usageCount, deliveredOrders int) error {
	switch {
	case !c.IsActive:
		return ErrCouponInactive
	case c.IsDeleted:
		return ErrCouponDeleted
	case now.After(c.ExpiresAt):
		return ErrCouponExpired
	case cartTotal < c.MinValue:
		return ErrBelowMinValue
	case alreadyUsed:
		return ErrAlreadyUsed
	case usageCount >= c.MaxUsage:
		return ErrMaxUsageReached
	case c.CouponType == TypeMinOrders && deliveredOrders < c.MinOrders:
		return ErrMinOrdersNotMet
	}
	return nil
}

// ValidateAndReserve locks the coupon row, re-checks every rule against the
// locked state and records the redemption, all inside the caller's
// transaction. The row lock serializes concurrent redemptions so two
// requests cannot both pass the usage-count check.
func (c *Conf) ValidateAndReserve(ctx context.Context, tx pgx.Tx, code, userID, orderID string, cartTotal int64, deliveredOrders int) (Coupon, error) {
	coupon, err := getByCodeForUpdate(ctx, tx, code)
	if err != nil {
		return Coupon{}, err
	}

	var alreadyUsed bool
	err = tx.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM coupon_redemptions WHERE coupon_id = $1 AND user_id = $2)
	`, coupon.ID, userID).Scan(&alreadyUsed)
	if err != nil {
		return Coupon{}, fmt.Errorf("checking coupon usage: %w", err)
	}

	var usageCount int
	err = tx.QueryRow(ctx, `
		SELECT COUNT(*) FROM coupon_redemptions WHERE coupon_id = $1
	`, coupon.ID).Scan(&usageCount)
	if err != nil {
		return Coupon{}, fmt.Errorf("counting coupon redemptions: %w", err)
	}

	if err := Validate(coupon, time.Now().UTC(), cartTotal, alreadyUsed, usageCount, deliveredOrders); err != nil {
		return Coupon{}, err
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO coupon_redemptions (coupon_id, user_id, order_id)
		VALUES ($1, $2, $3)
	`, coupon.ID, userID, orderID)
	if err != nil {
		return Coupon{}, fmt.Errorf("recording coupon redemption: %w", err)
	}

	return coupon, nil
}

// Release removes the user's redemption. Idempotent: releasing a coupon the
// user never redeemed (or already released) is a no-op.
func (c *Conf) Release(ctx context.Context, tx pgx.Tx, code, userID string) error {
	_, err := tx.Exec(ctx, `
		DELETE FROM coupon_redemptions
		WHERE user_id = $2
		  AND coupon_id = (SELECT id FROM coupons WHERE code = $1)
	`, code, userID)
	if err != nil {
		return fmt.Errorf("releasing coupon %s for user %s: %w", code, userID, err)
	}
	return nil
}

func getByCodeForUpdate(ctx context.Context, tx pgx.Tx, code string) (Coupon, error) {
	var coupon Coupon
	err := tx.QueryRow(ctx, `
		SELECT id, code, min_value, max_usage, off_value, coupon_type, min_orders,
		       is_active, is_deleted, expires_at, created_at, updated_at
		FROM coupons
		WHERE code = $1
		FOR UPDATE
	`, code).Scan(&coupon.ID, &coupon.Code, &coupon.MinValue, &coupon.MaxUsage, &coupon.OffValue,
		&coupon.CouponType, &coupon.MinOrders, &coupon.IsActive, &coupon.IsDeleted,
		&coupon.ExpiresAt, &coupon.CreatedAt, &coupon.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Coupon{}, ErrCouponNotFound
		}
		return Coupon{}, fmt.Errorf("querying coupon %s: %w", code, err)
	}
	return coupon, nil
}

// Preview runs the full rule set against current state without reserving
// anything. Checkout re-validates under lock, so the answer is advisory.
func (c *Conf) Preview(ctx context.Context, code, userID string, cartTotal int64) (Coupon, error) {
	coupon, err := c.GetByCode(ctx, code)
	if err != nil {
		return Coupon{}, err
	}

	var alreadyUsed bool
	err = c.db.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM coupon_redemptions WHERE coupon_id = $1 AND user_id = $2)
	`, coupon.ID, userID).Scan(&alreadyUsed)
	if err != nil {
		return Coupon{}, fmt.Errorf("checking coupon usage: %w", err)
	}

	var usageCount int
	err = c.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM coupon_redemptions WHERE coupon_id = $1
	`, coupon.ID).Scan(&usageCount)
	if err != nil {
		return Coupon{}, fmt.Errorf("counting coupon redemptions: %w", err)
	}

	var deliveredOrders int
	err = c.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM orders WHERE user_id = $1 AND status = 'delivered'
	`, userID).Scan(&deliveredOrders)
	if err != nil {
		return Coupon{}, fmt.Errorf("counting delivered orders: %w", err)
	}

	if err := Validate(coupon, time.Now().UTC(), cartTotal, alreadyUsed, usageCount, deliveredOrders); err != nil {
		return Coupon{}, err
	}
	return coupon, nil
}

func (c *Conf) GetByCode(ctx context.Context, code string) (Coupon, error) {
	var coupon Coupon
	err := c.db.QueryRow(ctx, `
		SELECT id, code, min_value, max_usage, off_value, coupon_type, min_orders,
		       is_active, is_deleted, expires_at, created_at, updated_at
		FROM coupons
		WHERE code = $1
	`, code).Scan(&coupon.ID, &coupon.Code, &coupon.MinValue, &coupon.MaxUsage, &coupon.OffValue,
		&coupon.CouponType, &coupon.MinOrders, &coupon.IsActive, &coupon.IsDeleted,
		&coupon.ExpiresAt, &coupon.CreatedAt, &coupon.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Coupon{}, ErrCouponNotFound
		}
		return Coupon{}, fmt.Errorf("querying coupon %s: %w", code, err)
	}
	return coupon, nil
}

func (c *Conf) InsertCoupon(ctx context.Context, nc NewCoupon) (Coupon, error) {
	coupon := Coupon{
		ID:         uuid.NewString(),
		Code:       nc.Code,
		MinValue:   nc.MinValue,
		MaxUsage:   nc.MaxUsage,
		OffValue:   nc.OffValue,
		CouponType: nc.CouponType,
		MinOrders:  nc.MinOrders,
		IsActive:   true,
		ExpiresAt:  nc.ExpiresAt,
	}
	err := c.db.QueryRow(ctx, `
		INSERT INTO coupons (id, code, min_value, max_usage, off_value, coupon_type, min_orders, is_active, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, true, $8)
		RETURNING created_at, updated_at
	`, coupon.ID, coupon.Code, coupon.MinValue, coupon.MaxUsage, coupon.OffValue,
		coupon.CouponType, coupon.MinOrders, coupon.ExpiresAt).Scan(&coupon.CreatedAt, &coupon.UpdatedAt)
	if err != nil {
		return Coupon{}, fmt.Errorf("inserting coupon: %w", err)
	}
	return coupon, nil
}

// SoftDelete marks a coupon deleted; existing orders keep their discount.
func (c *Conf) SoftDelete(ctx context.Context, code string) error {
	tag, err := c.db.Exec(ctx, `
		UPDATE coupons SET is_deleted = true, is_active = false, updated_at = now()
		WHERE code = $1
	`, code)
	if err != nil {
		return fmt.Errorf("deleting coupon %s: %w", code, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrCouponNotFound
	}
	return nil
}
