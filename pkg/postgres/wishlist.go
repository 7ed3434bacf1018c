package postgres

import (
	"context"
	"errors"

	"github.com/lumenshop/api/pkg/models"
)

var ErrWishlistItemNotFound = errors.New("wishlist item not found")

func (s *Store) WishlistByUser(ctx context.Context, userID int64) ([]models.WishlistItem, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT w.id, w.user_id, w.product_id, w.created_at,
			p.title, p.price, p.thumbnail
		 FROM wishlist_items w
		 JOIN products p ON p.id = w.product_id
		 WHERE w.user_id = $1 AND NOT p.is_deleted
		 ORDER BY w.created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []models.WishlistItem
	for rows.Next() {
		var item models.WishlistItem
		if err := rows.Scan(&item.ID, &item.UserID, &item.ProductID, &item.CreatedAt,
			&item.Title, &item.Price, &item.Thumbnail); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// AddToWishlist is idempotent; adding an already-wished product is a no-op.
func (s *Store) AddToWishlist(ctx context.Context, userID, productID int64) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO wishlist_items (user_id, product_id)
		 VALUES ($1, $2)
		 ON CONFLICT (user_id, product_id) DO NOTHING`, userID, productID)
	return err
}

func (s *Store) RemoveFromWishlist(ctx context.Context, userID, productID int64) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM wishlist_items WHERE user_id = $1 AND product_id = $2`,
		userID, productID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrWishlistItemNotFound
	}
	return nil
}
