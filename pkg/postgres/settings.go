package postgres

import (
	"context"
	"strconv"
)

// DefaultTaxRatePercent is used when the store_settings row is missing or
// unreadable.
const DefaultTaxRatePercent = 18.0

// TaxRatePercent reads the configured tax rate, falling back to the
// default when configuration is unavailable.
func (s *Store) TaxRatePercent(ctx context.Context) (float64, error) {
	var value string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM store_settings WHERE key = 'tax_rate_percent'`).Scan(&value)
	if err != nil {
		return DefaultTaxRatePercent, nil
	}
	rate, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return DefaultTaxRatePercent, nil
	}
	return rate, nil
}

func (s *Store) SetSetting(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO store_settings (key, value) VALUES ($1, $2)
		 ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value`, key, value)
	return err
}
