package postgres

import (
	"context"
	"errors"

	"github.com/lumenshop/api/pkg/models"
)

var ErrCartItemNotFound = errors.New("cart item not found")

// CartItems returns the user's cart joined with live product data. Prices
// here are display-only; the pricing engine re-reads the catalog on every
// checkout attempt.
func (s *Store) CartItems(ctx context.Context, userID int64) ([]models.CartItem, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT c.id, c.user_id, c.product_id, c.quantity, c.created_at,
			p.title, p.price, p.thumbnail
		 FROM cart_items c
		 JOIN products p ON p.id = c.product_id
		 WHERE c.user_id = $1
		 ORDER BY c.created_at`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []models.CartItem
	for rows.Next() {
		var item models.CartItem
		if err := rows.Scan(&item.ID, &item.UserID, &item.ProductID, &item.Quantity,
			&item.CreatedAt, &item.Title, &item.Price, &item.Thumbnail); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// UpsertCartItem adds a product to the cart, accumulating quantity if the
// row already exists.
func (s *Store) UpsertCartItem(ctx context.Context, userID, productID int64, quantity int) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO cart_items (user_id, product_id, quantity)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (user_id, product_id)
		 DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity`,
		userID, productID, quantity)
	return err
}

// SetCartItemQuantity sets an exact quantity; zero removes the row.
func (s *Store) SetCartItemQuantity(ctx context.Context, userID, productID int64, quantity int) error {
	if quantity == 0 {
		return s.RemoveCartItem(ctx, userID, productID)
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE cart_items SET quantity = $3 WHERE user_id = $1 AND product_id = $2`,
		userID, productID, quantity)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrCartItemNotFound
	}
	return nil
}

func (s *Store) RemoveCartItem(ctx context.Context, userID, productID int64) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM cart_items WHERE user_id = $1 AND product_id = $2`,
		userID, productID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrCartItemNotFound
	}
	return nil
}

func (s *Store) ClearCart(ctx context.Context, userID int64) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM cart_items WHERE user_id = $1`, userID)
	return err
}
