package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lumenshop/api/pkg/models"
)

var ErrTicketNotFound = errors.New("ticket not found")

// CreateTicket inserts the ticket and its opening message in one
// transaction so an empty ticket can never exist.
func (s *Store) CreateTicket(ctx context.Context, userID int64, reference, subject, body string) (*models.SupportTicket, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var t models.SupportTicket
	t.UserID = userID
	t.Reference = reference
	t.Subject = subject
	t.Status = models.TicketStatusOpen
	err = tx.QueryRowContext(ctx,
		`INSERT INTO support_tickets (reference, user_id, subject)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at, updated_at`,
		reference, userID, subject).Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO ticket_messages (ticket_id, author_id, body) VALUES ($1, $2, $3)`,
		t.ID, userID, body)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *Store) TicketsByUser(ctx context.Context, userID int64) ([]models.SupportTicket, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, reference, user_id, subject, status, created_at, updated_at
		 FROM support_tickets WHERE user_id = $1 ORDER BY updated_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectTickets(rows)
}

func (s *Store) ListTickets(ctx context.Context, status string) ([]models.SupportTicket, error) {
	query := `SELECT id, reference, user_id, subject, status, created_at, updated_at
		FROM support_tickets`
	args := []interface{}{}
	if status != "" {
		query += ` WHERE status = $1`
		args = append(args, status)
	}
	query += ` ORDER BY updated_at DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectTickets(rows)
}

func collectTickets(rows *sql.Rows) ([]models.SupportTicket, error) {
	var tickets []models.SupportTicket
	for rows.Next() {
		var t models.SupportTicket
		if err := rows.Scan(&t.ID, &t.Reference, &t.UserID, &t.Subject,
			&t.Status, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		tickets = append(tickets, t)
	}
	return tickets, rows.Err()
}

func (s *Store) TicketByID(ctx context.Context, id int64) (*models.SupportTicket, []models.TicketMessage, error) {
	var t models.SupportTicket
	err := s.db.QueryRowContext(ctx,
		`SELECT id, reference, user_id, subject, status, created_at, updated_at
		 FROM support_tickets WHERE id = $1`, id).
		Scan(&t.ID, &t.Reference, &t.UserID, &t.Subject, &t.Status, &t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil, ErrTicketNotFound
	}
	if err != nil {
		return nil, nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, ticket_id, author_id, body, created_at
		 FROM ticket_messages WHERE ticket_id = $1 ORDER BY created_at`, id)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	var messages []models.TicketMessage
	for rows.Next() {
		var m models.TicketMessage
		if err := rows.Scan(&m.ID, &m.TicketID, &m.AuthorID, &m.Body, &m.CreatedAt); err != nil {
			return nil, nil, err
		}
		messages = append(messages, m)
	}
	return &t, messages, rows.Err()
}

func (s *Store) AddTicketMessage(ctx context.Context, ticketID, authorID int64, body string) (*models.TicketMessage, error) {
	var m models.TicketMessage
	m.TicketID = ticketID
	m.AuthorID = authorID
	m.Body = body
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO ticket_messages (ticket_id, author_id, body)
		 VALUES ($1, $2, $3) RETURNING id, created_at`,
		ticketID, authorID, body).Scan(&m.ID, &m.CreatedAt)
	if err != nil {
		return nil, err
	}

	_, err = s.db.ExecContext(ctx,
		`UPDATE support_tickets SET updated_at = now() WHERE id = $1`, ticketID)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (s *Store) SetTicketStatus(ctx context.Context, ticketID int64, status string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE support_tickets SET status = $2, updated_at = now() WHERE id = $1`,
		ticketID, status)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrTicketNotFound
	}
	return nil
}
