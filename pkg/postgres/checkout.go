package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/lumenshop/api/pkg/models"
)

// InsufficientStockError carries the title of the product that could not
// be fulfilled, for the client-facing error message.
type InsufficientStockError struct {
	ProductTitle string
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %q", e.ProductTitle)
}

// FinalizeOrder is everything needed to persist a payment-confirmed order.
// Monetary amounts were computed by the pricing engine when the payment
// session was created and round-tripped through the provider's metadata.
type FinalizeOrder struct {
	UserID         int64
	PaymentID      string
	AddressID      *int64
	ShippingID     *int64
	CouponID       *int64
	Subtotal       float64
	TaxAmount      float64
	ShippingFee    float64
	DiscountAmount float64
	TotalAmount    float64
	Lines          []models.OrderItem
}

// CreatePendingOrder inserts an order with status Pending plus its lines
// in one transaction. Stock is NOT reserved for pending orders; only
// payment-confirmed finalization touches inventory.
func (s *Store) CreatePendingOrder(ctx context.Context, order *models.Order, lines []models.OrderItem) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	var orderID int64
	err = tx.QueryRowContext(ctx,
		`INSERT INTO orders (user_id, subtotal, tax_amount, shipping_fee,
			discount_amount, total_amount, coupon_id, shipping_id, address_id, status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 RETURNING id`,
		order.UserID, order.Subtotal, order.TaxAmount, order.ShippingFee,
		order.DiscountAmount, order.TotalAmount, order.CouponID,
		order.ShippingID, order.AddressID, models.OrderStatusPending).Scan(&orderID)
	if err != nil {
		return 0, err
	}

	if err := insertOrderItems(ctx, tx, orderID, lines); err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return orderID, nil
}

// FinalizePaidOrder converts a paid payment session into a persisted order
// with all inventory, coupon and cart side effects, atomically.
//
// Idempotency: the payment id is looked up inside the same transaction as
// the insert, and orders.payment_id carries a unique index as backstop. If
// a concurrent finalization wins the race, the unique violation is
// translated back into the winner's order id. Either way the caller
// observes exactly one order per payment id, and stock is decremented at
// most once.
//
// Returns the order id and whether this call created it.
func (s *Store) FinalizePaidOrder(ctx context.Context, f FinalizeOrder) (int64, bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, false, err
	}
	defer tx.Rollback()

	var existingID int64
	err = tx.QueryRowContext(ctx,
		`SELECT id FROM orders WHERE payment_id = $1`, f.PaymentID).Scan(&existingID)
	if err == nil {
		// Duplicate delivery: the order already exists. No further writes.
		if err := tx.Commit(); err != nil {
			return 0, false, err
		}
		return existingID, false, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, false, err
	}

	var orderID int64
	err = tx.QueryRowContext(ctx,
		`INSERT INTO orders (user_id, subtotal, tax_amount, shipping_fee,
			discount_amount, total_amount, coupon_id, shipping_id, address_id,
			status, payment_id)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		 RETURNING id`,
		f.UserID, f.Subtotal, f.TaxAmount, f.ShippingFee, f.DiscountAmount,
		f.TotalAmount, f.CouponID, f.ShippingID, f.AddressID,
		models.OrderStatusPaid, f.PaymentID).Scan(&orderID)
	if err != nil {
		if isUniqueViolation(err) {
			// A concurrent finalization inserted between our check and our
			// insert. Abandon this transaction and return its order.
			tx.Rollback()
			var winnerID int64
			if err := s.db.QueryRowContext(ctx,
				`SELECT id FROM orders WHERE payment_id = $1`, f.PaymentID).Scan(&winnerID); err != nil {
				return 0, false, err
			}
			return winnerID, false, nil
		}
		return 0, false, err
	}

	if err := insertOrderItems(ctx, tx, orderID, f.Lines); err != nil {
		return 0, false, err
	}

	if err := finalizeLedger(ctx, tx, f.UserID, f.CouponID, f.Lines); err != nil {
		return 0, false, err
	}

	if err := tx.Commit(); err != nil {
		return 0, false, err
	}
	return orderID, true, nil
}

// insertOrderItems persists order lines in cart insertion order, snapshotting
// the product title and thumbnail at order time.
func insertOrderItems(ctx context.Context, tx *sql.Tx, orderID int64, lines []models.OrderItem) error {
	for _, line := range lines {
		var title, thumbnail string
		err := tx.QueryRowContext(ctx,
			`SELECT title, thumbnail FROM products WHERE id = $1`, line.ProductID).
			Scan(&title, &thumbnail)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrProductNotFound
		}
		if err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx,
			`INSERT INTO order_items (order_id, product_id, quantity, price,
				discount_percent, effective_price, title, thumbnail)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			orderID, line.ProductID, line.Quantity, line.Price,
			line.DiscountPercent, line.EffectivePrice, title, thumbnail)
		if err != nil {
			return err
		}
	}
	return nil
}

// finalizeLedger is the commit step shared by both checkout paths once a
// payment is confirmed: row-locked stock decrement per line, a single
// coupon usage bump, and an unconditional cart clear. Any error aborts the
// enclosing transaction, so no partial deduction is ever visible.
func finalizeLedger(ctx context.Context, tx *sql.Tx, userID int64, couponID *int64, lines []models.OrderItem) error {
	for _, line := range lines {
		var stock int
		var title string
		// The exclusive row lock serializes concurrent finalizations that
		// touch the same product; this re-read is the binding stock check.
		err := tx.QueryRowContext(ctx,
			`SELECT stock, title FROM products WHERE id = $1 FOR UPDATE`, line.ProductID).
			Scan(&stock, &title)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrProductNotFound
		}
		if err != nil {
			return err
		}
		if stock < line.Quantity {
			return &InsufficientStockError{ProductTitle: title}
		}

		_, err = tx.ExecContext(ctx,
			`UPDATE products SET stock = stock - $2, updated_at = now() WHERE id = $1`,
			line.ProductID, line.Quantity)
		if err != nil {
			return err
		}
	}

	if couponID != nil {
		// Exactly one bump per finalized order, however many lines matched.
		// Usage is never reversed, even if the order is later cancelled.
		_, err := tx.ExecContext(ctx,
			`UPDATE coupons SET used_count = used_count + 1 WHERE id = $1`, *couponID)
		if err != nil {
			return err
		}
	}

	// Checkout empties the whole cart, including lines not in this order.
	_, err := tx.ExecContext(ctx, `DELETE FROM cart_items WHERE user_id = $1`, userID)
	return err
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
