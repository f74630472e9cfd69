package orders

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"grocery-order-service/internal/coupons"
	"grocery-order-service/internal/inventory"
	"grocery-order-service/internal/invoices"
	"grocery-order-service/internal/pricing"
	"grocery-order-service/internal/products"
	"grocery-order-service/internal/shops"
	"grocery-order-service/internal/stores/postgres"
	"grocery-order-service/internal/users"
	"grocery-order-service/pkg/logkey"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrOrderNotFound = errors.New("order not found")
	ErrDuplicateLine = errors.New("duplicate product in order lines")
)

// Policy carries the tunable business rules the coordinator applies.
type Policy struct {
	// ReleaseCouponOnCancel restores the user's coupon eligibility when a
	// coupon-bearing order is cancelled. The legacy behavior was
	// inconsistent, so the choice is explicit configuration.
	ReleaseCouponOnCancel bool
	ShippingFee           int64
	FreeShippingAbove     int64
	DeliveryWindow        time.Duration
}

// Conf is the order transaction coordinator. It is the only writer of
// inventory, coupon, order, invoice and order-history rows, and every
// multi-entity mutation it performs runs inside one database transaction.
type Conf struct {
	db        *pgxpool.Pool
	users     *users.Conf
	shops     *shops.Conf
	products  *products.Conf
	inventory *inventory.Conf
	coupons   *coupons.Conf
	invoices  *invoices.Conf
	policy    Policy
}

func NewConf(db *pgxpool.Pool, u *users.Conf, s *shops.Conf, p *products.Conf,
	inv *inventory.Conf, cp *coupons.Conf, iv *invoices.Conf, policy Policy) (*Conf, error) {
	if db == nil {
		return nil, fmt.Errorf("db is nil")
	}
	if u == nil || s == nil || p == nil || inv == nil || cp == nil || iv == nil {
		return nil, fmt.Errorf("missing coordinator dependency")
	}
	if policy.DeliveryWindow <= 0 {
		policy.DeliveryWindow = 48 * time.Hour
	}
	return &Conf{
		db: db, users: u, shops: s, products: p,
		inventory: inv, coupons: cp, invoices: iv,
		policy: policy,
	}, nil
}

// CreateOrder validates the request, prices it against the catalog and then
// commits order, invoice, order-history, inventory decrement and coupon
// redemption as one atomic unit. Any failure aborts every write.
func (c *Conf) CreateOrder(ctx context.Context, req CreateOrderRequest) (Order, error) {
	// Read-only validation happens before the transaction opens; nothing
	// is mutated until every reference checks out.
	user, err := c.users.GetUserByID(ctx, req.UserID)
	if err != nil {
		return Order{}, err
	}
	if _, err := c.shops.GetStoreByID(ctx, req.StoreID); err != nil {
		return Order{}, err
	}

	productIDs := make([]string, 0, len(req.Items))
	seen := make(map[string]bool, len(req.Items))
	for _, item := range req.Items {
		if seen[item.ProductID] {
			return Order{}, fmt.Errorf("%w: %s", ErrDuplicateLine, item.ProductID)
		}
		seen[item.ProductID] = true
		productIDs = append(productIDs, item.ProductID)
	}

	catalog, err := c.products.GetProductsByIDs(ctx, productIDs)
	if err != nil {
		return Order{}, err
	}

	priceLines := make([]pricing.Line, 0, len(req.Items))
	invoiceItems := make([]invoices.Item, 0, len(req.Items))
	invLines := make([]inventory.Line, 0, len(req.Items))
	for _, item := range req.Items {
		p := catalog[item.ProductID]
		priceLines = append(priceLines, pricing.Line{
			ProductID: p.ID, Name: p.Name, Price: p.Price, Quantity: item.Quantity,
		})
		invoiceItems = append(invoiceItems, invoices.Item{
			Name: p.Name, Quantity: item.Quantity, Price: p.Price,
		})
		invLines = append(invLines, inventory.Line{ProductID: item.ProductID, Quantity: item.Quantity})
	}

	totals, err := pricing.ComputeTotals(priceLines)
	if err != nil {
		return Order{}, err
	}

	now := time.Now().UTC()
	orderID := NewOrderID(now)
	order := Order{
		ID:               orderID,
		UserID:           req.UserID,
		StoreID:          req.StoreID,
		Items:            req.Items,
		Status:           StatusPlaced,
		PaymentStatus:    PaymentPending,
		TotalItems:       totals.TotalItems,
		IsCashOnDelivery: req.IsCashOnDelivery,
		DeliveryAddress:  req.DeliveryAddress,
		InvoiceID:        "INV-" + orderID,
		OrderDate:        now,
		ExpectedDelivery: now.Add(c.policy.DeliveryWindow),
	}

	err = postgres.WithTx(ctx, c.db, func(tx pgx.Tx) error {
		// Conditional decrements: the quantity check and the write are one
		// statement, so concurrent checkouts cannot oversell.
		if err := c.inventory.Reserve(ctx, tx, req.StoreID, invLines); err != nil {
			return err
		}

		var discount int64
		if req.CouponCode != "" {
			delivered, err := c.users.DeliveredOrderCount(ctx, tx, req.UserID)
			if err != nil {
				return err
			}
			coupon, err := c.coupons.ValidateAndReserve(ctx, tx, req.CouponCode, req.UserID, order.ID, totals.TotalAmount, delivered)
			if err != nil {
				return err
			}
			discount = coupon.OffValue
			order.Coupon = &AppliedCoupon{
				CouponID:       coupon.ID,
				Code:           coupon.Code,
				DiscountAmount: discount,
			}
		}

		final, err := pricing.ApplyDiscount(totals.TotalAmount, discount)
		if err != nil {
			return err
		}
		order.TotalAmount = final
		order.ShippingAmount = pricing.ShippingFor(final, c.policy.ShippingFee, c.policy.FreeShippingAbove)

		if err := insertOrder(ctx, tx, order); err != nil {
			return err
		}

		inv := invoices.Generate(order.ID, invoices.UserSnapshot{
			Name: user.Name, Email: user.Email, Phone: user.Phone,
		}, invoiceItems, order.TotalAmount, discount, order.ShippingAmount, string(order.PaymentStatus))
		if err := c.invoices.Insert(ctx, tx, inv); err != nil {
			return err
		}

		return c.users.AppendOrder(ctx, tx, req.UserID, order.ID)
	})
	if err != nil {
		return Order{}, err
	}

	slog.Info("order created",
		slog.String(logkey.OrderID, order.ID),
		slog.String(logkey.UserID, order.UserID),
		slog.String(logkey.StoreID, order.StoreID),
		slog.Int64("total_amount", order.TotalAmount),
	)
	return order, nil
}

// CancelOrder moves an order to cancelled, restocks every line and mirrors
// the invoice, all in one transaction. Cancelling a cancelled order fails
// with ErrInvalidTransition and changes nothing.
func (c *Conf) CancelOrder(ctx context.Context, orderID string) (Order, error) {
	var order Order
	err := postgres.WithTx(ctx, c.db, func(tx pgx.Tx) error {
		var err error
		order, err = getForUpdate(ctx, tx, orderID)
		if err != nil {
			return err
		}
		return c.cancelLocked(ctx, tx, &order)
	})
	if err != nil {
		return Order{}, err
	}

	slog.Info("order cancelled", slog.String(logkey.OrderID, order.ID), slog.String(logkey.UserID, order.UserID))
	return order, nil
}

// ChangeStatus applies the transition table and its side effects. It fails
// closed: a rejected transition or any side-effect error aborts the whole
// transaction and leaves the order untouched.
func (c *Conf) ChangeStatus(ctx context.Context, orderID string, newStatus Status) (Order, error) {
	if !ValidStatus(newStatus) {
		return Order{}, fmt.Errorf("%w: unknown status %q", ErrInvalidTransition, newStatus)
	}

	var order Order
	err := postgres.WithTx(ctx, c.db, func(tx pgx.Tx) error {
		var err error
		order, err = getForUpdate(ctx, tx, orderID)
		if err != nil {
			return err
		}

		if newStatus == StatusCancelled {
			return c.cancelLocked(ctx, tx, &order)
		}

		if err := CheckTransition(order.Status, newStatus); err != nil {
			return err
		}
		order.Status = newStatus

		// Delivery completes payment for everything but cash on delivery,
		// which was settled at the door.
		if newStatus == StatusDelivered && !order.IsCashOnDelivery && order.PaymentStatus == PaymentPending {
			order.PaymentStatus = PaymentPaid
			if err := c.invoices.MirrorPaymentStatus(ctx, tx, order.ID, string(order.PaymentStatus)); err != nil {
				return err
			}
		}

		return updateStatus(ctx, tx, order)
	})
	if err != nil {
		return Order{}, err
	}

	slog.Info("order status changed", slog.String(logkey.OrderID, order.ID), slog.String("status", string(order.Status)))
	return order, nil
}

// MarkOrderPaid records the opaque payment-provider outcome. Repeated
// webhook deliveries are tolerated: marking a paid order paid is a no-op.
func (c *Conf) MarkOrderPaid(ctx context.Context, orderID, providerRef string) (Order, error) {
	var order Order
	err := postgres.WithTx(ctx, c.db, func(tx pgx.Tx) error {
		var err error
		order, err = getForUpdate(ctx, tx, orderID)
		if err != nil {
			return err
		}
		if order.PaymentStatus == PaymentPaid {
			return nil
		}
		if order.Status == StatusCancelled {
			return fmt.Errorf("%w: order %s is cancelled", ErrInvalidTransition, orderID)
		}

		order.PaymentStatus = PaymentPaid
		order.ProviderRef = providerRef
		if err := c.invoices.MirrorPaymentStatus(ctx, tx, order.ID, string(order.PaymentStatus)); err != nil {
			return err
		}
		return updateStatus(ctx, tx, order)
	})
	if err != nil {
		return Order{}, err
	}
	return order, nil
}

// cancelLocked is the shared cancellation path; the caller holds the row
// lock. Restock is the exact inverse of the reservation at checkout.
func (c *Conf) cancelLocked(ctx context.Context, tx pgx.Tx, order *Order) error {
	if err := CheckTransition(order.Status, StatusCancelled); err != nil {
		return err
	}

	invLines := make([]inventory.Line, 0, len(order.Items))
	for _, item := range order.Items {
		invLines = append(invLines, inventory.Line{ProductID: item.ProductID, Quantity: item.Quantity})
	}
	if err := c.inventory.Restock(ctx, tx, order.StoreID, invLines); err != nil {
		return err
	}

	if order.Coupon != nil && c.policy.ReleaseCouponOnCancel {
		if err := c.coupons.Release(ctx, tx, order.Coupon.Code, order.UserID); err != nil {
			return err
		}
	}

	order.Status = StatusCancelled
	order.PaymentStatus = PaymentCancelled
	if err := c.invoices.MirrorPaymentStatus(ctx, tx, order.ID, string(order.PaymentStatus)); err != nil {
		return err
	}
	return updateStatus(ctx, tx, *order)
}

// GetOrder loads an order with its lines.
func (c *Conf) GetOrder(ctx context.Context, orderID string) (Order, error) {
	order, err := scanOrder(c.db.QueryRow(ctx, orderSelect+` WHERE id = $1`, orderID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Order{}, ErrOrderNotFound
		}
		return Order{}, fmt.Errorf("querying order %s: %w", orderID, err)
	}

	rows, err := c.db.Query(ctx, `
		SELECT product_id, quantity FROM order_items WHERE order_id = $1 ORDER BY product_id
	`, orderID)
	if err != nil {
		return Order{}, fmt.Errorf("querying order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item Item
		if err := rows.Scan(&item.ProductID, &item.Quantity); err != nil {
			return Order{}, fmt.Errorf("scanning order item: %w", err)
		}
		order.Items = append(order.Items, item)
	}
	if err := rows.Err(); err != nil {
		return Order{}, fmt.Errorf("iterating order items: %w", err)
	}
	return order, nil
}

const orderSelect = `
	SELECT id, user_id, store_id, status, payment_status, total_amount,
	       shipping_amount, total_items, is_cash_on_delivery, delivery_address,
	       invoice_id, coupon_id, coupon_code, discount_amount, provider_ref,
	       order_date, expected_delivery, updated_at
	FROM orders`

// scanOrder reads one row of orderSelect. coupon_id/coupon_code are
// nullable: an order without a coupon comes back with Coupon == nil.
func scanOrder(row pgx.Row) (Order, error) {
	var o Order
	var couponID, couponCode *string
	var discount int64
	err := row.Scan(&o.ID, &o.UserID, &o.StoreID, &o.Status, &o.PaymentStatus, &o.TotalAmount,
		&o.ShippingAmount, &o.TotalItems, &o.IsCashOnDelivery, &o.DeliveryAddress,
		&o.InvoiceID, &couponID, &couponCode, &discount,
		&o.ProviderRef, &o.OrderDate, &o.ExpectedDelivery, &o.UpdatedAt)
	if err != nil {
		return Order{}, err
	}
	if couponID != nil {
		o.Coupon = &AppliedCoupon{CouponID: *couponID, DiscountAmount: discount}
		if couponCode != nil {
			o.Coupon.Code = *couponCode
		}
	}
	return o, nil
}

func getForUpdate(ctx context.Context, tx pgx.Tx, orderID string) (Order, error) {
	order, err := scanOrder(tx.QueryRow(ctx, orderSelect+` WHERE id = $1 FOR UPDATE`, orderID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Order{}, ErrOrderNotFound
		}
		return Order{}, fmt.Errorf("locking order %s: %w", orderID, err)
	}

	rows, err := tx.Query(ctx, `
		SELECT product_id, quantity FROM order_items WHERE order_id = $1 ORDER BY product_id
	`, orderID)
	if err != nil {
		return Order{}, fmt.Errorf("querying order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item Item
		if err := rows.Scan(&item.ProductID, &item.Quantity); err != nil {
			return Order{}, fmt.Errorf("scanning order item: %w", err)
		}
		order.Items = append(order.Items, item)
	}
	if err := rows.Err(); err != nil {
		return Order{}, fmt.Errorf("iterating order items: %w", err)
	}
	return order, nil
}

func insertOrder(ctx context.Context, tx pgx.Tx, o Order) error {
	var couponID, couponCode *string
	var discount int64
	if o.Coupon != nil {
		couponID = &o.Coupon.CouponID
		couponCode = &o.Coupon.Code
		discount = o.Coupon.DiscountAmount
	}

	_, err := tx.Exec(ctx, `
		INSERT INTO orders (id, user_id, store_id, status, payment_status, total_amount,
		                    shipping_amount, total_items, is_cash_on_delivery, delivery_address,
		                    invoice_id, coupon_id, coupon_code, discount_amount,
		                    order_date, expected_delivery)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`, o.ID, o.UserID, o.StoreID, o.Status, o.PaymentStatus, o.TotalAmount,
		o.ShippingAmount, o.TotalItems, o.IsCashOnDelivery, o.DeliveryAddress,
		o.InvoiceID, couponID, couponCode, discount, o.OrderDate, o.ExpectedDelivery)
	if err != nil {
		return fmt.Errorf("inserting order %s: %w", o.ID, err)
	}

	for _, item := range o.Items {
		_, err := tx.Exec(ctx, `
			INSERT INTO order_items (order_id, product_id, quantity)
			VALUES ($1, $2, $3)
		`, o.ID, item.ProductID, item.Quantity)
		if err != nil {
			return fmt.Errorf("inserting order item %s: %w", item.ProductID, err)
		}
	}
	return nil
}

func updateStatus(ctx context.Context, tx pgx.Tx, o Order) error {
	tag, err := tx.Exec(ctx, `
		UPDATE orders
		SET status = $2, payment_status = $3, provider_ref = $4, updated_at = now()
		WHERE id = $1
	`, o.ID, o.Status, o.PaymentStatus, o.ProviderRef)
	if err != nil {
		return fmt.Errorf("updating order %s: %w", o.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrOrderNotFound
	}
	return nil
}

// ListByUser returns a user's orders, newest first.
func (c *Conf) ListByUser(ctx context.Context, userID string) ([]Order, error) {
	rows, err := c.db.Query(ctx, orderSelect+` WHERE user_id = $1 ORDER BY order_date DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("querying orders for user %s: %w", userID, err)
	}
	defer rows.Close()

	var result []Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning order: %w", err)
		}
		result = append(result, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating orders: %w", err)
	}
	return result, nil
}
