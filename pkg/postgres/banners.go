package postgres

import (
	"context"
	"errors"

	"github.com/lumenshop/api/pkg/models"
)

var ErrBannerNotFound = errors.New("banner not found")

func (s *Store) ListBanners(ctx context.Context, activeOnly bool) ([]models.Banner, error) {
	query := `SELECT id, title, image_url, link_url, position, is_active, created_at
		FROM banners`
	if activeOnly {
		query += ` WHERE is_active`
	}
	query += ` ORDER BY position, created_at`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var banners []models.Banner
	for rows.Next() {
		var b models.Banner
		if err := rows.Scan(&b.ID, &b.Title, &b.ImageURL, &b.LinkURL,
			&b.Position, &b.IsActive, &b.CreatedAt); err != nil {
			return nil, err
		}
		banners = append(banners, b)
	}
	return banners, rows.Err()
}

func (s *Store) CreateBanner(ctx context.Context, req *models.CreateBannerRequest) (*models.Banner, error) {
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	b := models.Banner{
		Title:    req.Title,
		ImageURL: req.ImageURL,
		LinkURL:  req.LinkURL,
		Position: req.Position,
		IsActive: active,
	}
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO banners (title, image_url, link_url, position, is_active)
		 VALUES ($1, $2, $3, $4, $5) RETURNING id, created_at`,
		b.Title, b.ImageURL, b.LinkURL, b.Position, b.IsActive).
		Scan(&b.ID, &b.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (s *Store) DeleteBanner(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM banners WHERE id = $1`, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrBannerNotFound
	}
	return nil
}
