package postgres

import (
	"context"

	"github.com/lumenshop/api/pkg/models"
)

func (s *Store) WriteAuditLog(ctx context.Context, adminID int64, action, entity, detail string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO audit_logs (admin_id, action, entity, detail)
		 VALUES ($1, $2, $3, $4)`, adminID, action, entity, detail)
	return err
}

func (s *Store) ListAuditLogs(ctx context.Context, limit int) ([]models.AuditLog, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, admin_id, action, entity, detail, created_at
		 FROM audit_logs ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []models.AuditLog
	for rows.Next() {
		var l models.AuditLog
		if err := rows.Scan(&l.ID, &l.AdminID, &l.Action, &l.Entity, &l.Detail, &l.CreatedAt); err != nil {
			return nil, err
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}
