package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lumenshop/api/pkg/models"
)

var (
	ErrCouponNotFound  = errors.New("coupon not found")
	ErrDuplicateCoupon = errors.New("coupon code already exists")
)

const couponColumns = `id, code, type, value, min_cart_value, expiry_date,
	usage_limit, used_count, target_product_id, created_at`

func scanCoupon(row interface{ Scan(...interface{}) error }) (*models.Coupon, error) {
	var c models.Coupon
	err := row.Scan(&c.ID, &c.Code, &c.Type, &c.Value, &c.MinCartValue,
		&c.ExpiryDate, &c.UsageLimit, &c.UsedCount, &c.TargetProductID, &c.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *Store) CouponByCode(ctx context.Context, code string) (*models.Coupon, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+couponColumns+` FROM coupons WHERE code = $1`, code)
	c, err := scanCoupon(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCouponNotFound
	}
	return c, err
}

func (s *Store) ListCoupons(ctx context.Context) ([]models.Coupon, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+couponColumns+` FROM coupons ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var coupons []models.Coupon
	for rows.Next() {
		c, err := scanCoupon(rows)
		if err != nil {
			return nil, err
		}
		coupons = append(coupons, *c)
	}
	return coupons, rows.Err()
}

func (s *Store) CreateCoupon(ctx context.Context, req *models.CreateCouponRequest) (*models.Coupon, error) {
	row := s.db.QueryRowContext(ctx,
		`INSERT INTO coupons (code, type, value, min_cart_value, expiry_date,
			usage_limit, target_product_id)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING `+couponColumns,
		req.Code, req.Type, req.Value, req.MinCartValue, req.ExpiryDate,
		req.UsageLimit, req.TargetProductID)
	c, err := scanCoupon(row)
	if isUniqueViolation(err) {
		return nil, ErrDuplicateCoupon
	}
	return c, err
}

// DeleteCoupon removes the code. used_count history disappears with it;
// usage is tracked per coupon row only, never reversed per order.
func (s *Store) DeleteCoupon(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM coupons WHERE id = $1`, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrCouponNotFound
	}
	return nil
}
