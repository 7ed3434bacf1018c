package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lumenshop/api/pkg/models"
)

var (
	ErrReviewNotFound  = errors.New("review not found")
	ErrDuplicateReview = errors.New("review already exists for this product")
)

func (s *Store) ReviewsByProduct(ctx context.Context, productID int64) ([]models.Review, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, product_id, user_id, rating, title, comment, created_at
		 FROM reviews WHERE product_id = $1 ORDER BY created_at DESC`, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reviews []models.Review
	for rows.Next() {
		var r models.Review
		if err := rows.Scan(&r.ID, &r.ProductID, &r.UserID, &r.Rating,
			&r.Title, &r.Comment, &r.CreatedAt); err != nil {
			return nil, err
		}
		reviews = append(reviews, r)
	}
	return reviews, rows.Err()
}

func (s *Store) CreateReview(ctx context.Context, r *models.Review) (*models.Review, error) {
	row := s.db.QueryRowContext(ctx,
		`INSERT INTO reviews (product_id, user_id, rating, title, comment)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at`,
		r.ProductID, r.UserID, r.Rating, r.Title, r.Comment)
	err := row.Scan(&r.ID, &r.CreatedAt)
	if isUniqueViolation(err) {
		return nil, ErrDuplicateReview
	}
	if err != nil {
		return nil, err
	}
	return r, nil
}

// DeleteReview removes a review owned by userID; admins pass userID 0 to
// delete any review.
func (s *Store) DeleteReview(ctx context.Context, reviewID, userID int64) error {
	query := `DELETE FROM reviews WHERE id = $1`
	args := []interface{}{reviewID}
	if userID != 0 {
		query += ` AND user_id = $2`
		args = append(args, userID)
	}
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrReviewNotFound
	}
	return nil
}

// HasPurchased reports whether the user has a finalized order containing
// the product, for verified-purchase review gating.
func (s *Store) HasPurchased(ctx context.Context, userID, productID int64) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (
			SELECT 1 FROM order_items oi
			JOIN orders o ON o.id = oi.order_id
			WHERE o.user_id = $1 AND oi.product_id = $2
			  AND o.status IN ($3, $4, $5)
		)`, userID, productID,
		models.OrderStatusPaid, models.OrderStatusShipped, models.OrderStatusDelivered).
		Scan(&exists)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return false, err
	}
	return exists, nil
}
