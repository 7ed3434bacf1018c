package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lumenshop/api/pkg/models"
)

var (
	ErrCustomerNotFound = errors.New("customer not found")
	ErrDuplicateEmail   = errors.New("email already exists")
)

const customerColumns = `id, email, password, first_name, last_name, phone,
	role, is_blocked, created_at, updated_at`

func scanCustomer(row interface{ Scan(...interface{}) error }) (*models.Customer, error) {
	var c models.Customer
	err := row.Scan(&c.ID, &c.Email, &c.Password, &c.FirstName, &c.LastName,
		&c.Phone, &c.Role, &c.IsBlocked, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *Store) CreateCustomer(ctx context.Context, c *models.Customer) (*models.Customer, error) {
	row := s.db.QueryRowContext(ctx,
		`INSERT INTO customers (email, password, first_name, last_name, phone, role)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, created_at, updated_at`,
		c.Email, c.Password, c.FirstName, c.LastName, c.Phone, c.Role)
	err := row.Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if isUniqueViolation(err) {
		return nil, ErrDuplicateEmail
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Store) CustomerByEmail(ctx context.Context, email string) (*models.Customer, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+customerColumns+` FROM customers WHERE email = $1`, email)
	c, err := scanCustomer(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCustomerNotFound
	}
	return c, err
}

func (s *Store) CustomerByID(ctx context.Context, id int64) (*models.Customer, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+customerColumns+` FROM customers WHERE id = $1`, id)
	c, err := scanCustomer(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCustomerNotFound
	}
	return c, err
}

func (s *Store) ListCustomers(ctx context.Context) ([]models.Customer, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+customerColumns+` FROM customers ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var customers []models.Customer
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, err
		}
		customers = append(customers, *c)
	}
	return customers, rows.Err()
}

func (s *Store) SetCustomerBlocked(ctx context.Context, id int64, blocked bool) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE customers SET is_blocked = $2, updated_at = now() WHERE id = $1`,
		id, blocked)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrCustomerNotFound
	}
	return nil
}

func (s *Store) CreateAddress(ctx context.Context, a *models.Address) (*models.Address, error) {
	row := s.db.QueryRowContext(ctx,
		`INSERT INTO addresses (customer_id, street, city, province, postal_code, country, is_default)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id, created_at`,
		a.CustomerID, a.Street, a.City, a.Province, a.PostalCode, a.Country, a.IsDefault)
	if err := row.Scan(&a.ID, &a.CreatedAt); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *Store) AddressesByCustomer(ctx context.Context, customerID int64) ([]models.Address, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, customer_id, street, city, province, postal_code, country, is_default, created_at
		 FROM addresses WHERE customer_id = $1 ORDER BY is_default DESC, created_at`, customerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var addresses []models.Address
	for rows.Next() {
		var a models.Address
		if err := rows.Scan(&a.ID, &a.CustomerID, &a.Street, &a.City, &a.Province,
			&a.PostalCode, &a.Country, &a.IsDefault, &a.CreatedAt); err != nil {
			return nil, err
		}
		addresses = append(addresses, a)
	}
	return addresses, rows.Err()
}
