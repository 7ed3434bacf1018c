package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strconv"

	"github.com/lib/pq"

	"github.com/lumenshop/api/pkg/models"
)

var ErrProductNotFound = errors.New("product not found")

const productColumns = `id, title, description, category, brand, price,
	discount_percent, stock, thumbnail, is_active, is_deleted, created_at, updated_at`

func scanProduct(row interface{ Scan(...interface{}) error }) (*models.Product, error) {
	var p models.Product
	err := row.Scan(&p.ID, &p.Title, &p.Description, &p.Category, &p.Brand,
		&p.Price, &p.DiscountPercent, &p.Stock, &p.Thumbnail,
		&p.IsActive, &p.IsDeleted, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// ProductsByIDs loads the authoritative rows for an id set in one query.
// Soft-deleted and inactive products are excluded, so a cart referencing
// one surfaces as ErrProductNotFound at the pricing stage.
func (s *Store) ProductsByIDs(ctx context.Context, ids []int64) ([]models.Product, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+productColumns+` FROM products
		 WHERE id = ANY($1) AND is_active AND NOT is_deleted`, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []models.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, *p)
	}
	return products, rows.Err()
}

func (s *Store) ProductByID(ctx context.Context, id int64) (*models.Product, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+productColumns+` FROM products WHERE id = $1 AND NOT is_deleted`, id)
	p, err := scanProduct(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProductNotFound
	}
	return p, err
}

func (s *Store) ListProducts(ctx context.Context, category string) ([]models.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products
		WHERE is_active AND NOT is_deleted`
	args := []interface{}{}
	if category != "" {
		query += ` AND category = $1`
		args = append(args, category)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []models.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, *p)
	}
	return products, rows.Err()
}

// ListAllProducts is the admin view: inactive products included, deleted
// ones still hidden.
func (s *Store) ListAllProducts(ctx context.Context) ([]models.Product, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+productColumns+` FROM products WHERE NOT is_deleted ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []models.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, *p)
	}
	return products, rows.Err()
}

func (s *Store) ListCategories(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT DISTINCT category FROM products
		 WHERE is_active AND NOT is_deleted AND category <> '' ORDER BY category`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (s *Store) CreateProduct(ctx context.Context, p *models.Product) (*models.Product, error) {
	row := s.db.QueryRowContext(ctx,
		`INSERT INTO products (title, description, category, brand, price,
			discount_percent, stock, thumbnail, is_active)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING id, created_at, updated_at`,
		p.Title, p.Description, p.Category, p.Brand, p.Price,
		p.DiscountPercent, p.Stock, p.Thumbnail, p.IsActive)
	if err := row.Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	return p, nil
}

// UpdateProduct applies a partial update from a field map. Immutable
// columns are filtered by the handler before this is called.
func (s *Store) UpdateProduct(ctx context.Context, id int64, updates map[string]interface{}) (*models.Product, error) {
	allowed := map[string]string{
		"title":            "title",
		"description":      "description",
		"category":         "category",
		"brand":            "brand",
		"price":            "price",
		"discount_percent": "discount_percent",
		"stock":            "stock",
		"thumbnail":        "thumbnail",
		"is_active":        "is_active",
	}

	query := `UPDATE products SET updated_at = now()`
	args := []interface{}{}
	n := 1
	for field, value := range updates {
		col, ok := allowed[field]
		if !ok {
			continue
		}
		query += `, ` + col + ` = $` + strconv.Itoa(n)
		args = append(args, value)
		n++
	}
	query += ` WHERE id = $` + strconv.Itoa(n) + ` AND NOT is_deleted RETURNING ` + productColumns
	args = append(args, id)

	p, err := scanProduct(s.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProductNotFound
	}
	return p, err
}

// SoftDeleteProduct hides a product without breaking order-line references.
func (s *Store) SoftDeleteProduct(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE products SET is_deleted = TRUE, is_active = FALSE, updated_at = now()
		 WHERE id = $1 AND NOT is_deleted`, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrProductNotFound
	}
	return nil
}

func (s *Store) RestockProduct(ctx context.Context, id int64, delta int) (*models.Product, error) {
	row := s.db.QueryRowContext(ctx,
		`UPDATE products SET stock = stock + $2, updated_at = now()
		 WHERE id = $1 AND NOT is_deleted
		 RETURNING `+productColumns, id, delta)
	p, err := scanProduct(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProductNotFound
	}
	return p, err
}

func (s *Store) ShippingOptionByID(ctx context.Context, id int64) (*models.ShippingOption, error) {
	var opt models.ShippingOption
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, cost, eta_days FROM shipping_options WHERE id = $1`, id).
		Scan(&opt.ID, &opt.Name, &opt.Cost, &opt.EtaDays)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errors.New("shipping option not found")
	}
	if err != nil {
		return nil, err
	}
	return &opt, nil
}

func (s *Store) ListShippingOptions(ctx context.Context) ([]models.ShippingOption, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, cost, eta_days FROM shipping_options ORDER BY cost`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var opts []models.ShippingOption
	for rows.Next() {
		var opt models.ShippingOption
		if err := rows.Scan(&opt.ID, &opt.Name, &opt.Cost, &opt.EtaDays); err != nil {
			return nil, err
		}
		opts = append(opts, opt)
	}
	return opts, rows.Err()
}
