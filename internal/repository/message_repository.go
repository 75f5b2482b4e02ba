package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/campus-hub/support-service/internal/domain"
)

// ErrTicketResolved reports a send attempt against a resolved ticket.
var ErrTicketResolved = errors.New("ticket is resolved")

// MessageRepository manages ticket thread messages.
type MessageRepository interface {
	// CreateGuarded inserts a message only when the ticket is not Resolved.
	// The status re-check and the insert share one transaction with the
	// ticket row locked, so a concurrent resolve cannot slip between them.
	CreateGuarded(ctx context.Context, msg *domain.Message) error
	ListByTicket(ctx context.Context, ticketID string) ([]domain.Message, error)
}

type messageRepository struct {
	pool *pgxpool.Pool
}

// NewMessageRepository builds repository.
func NewMessageRepository(pool *pgxpool.Pool) MessageRepository {
	return &messageRepository{pool: pool}
}

func (r *messageRepository) CreateGuarded(ctx context.Context, msg *domain.Message) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	var status domain.TicketStatus
	if err := tx.QueryRow(ctx,
		`SELECT status FROM tickets WHERE id=$1 FOR UPDATE`, msg.TicketID,
	).Scan(&status); err != nil {
		return err
	}
	if status == domain.TicketStatusResolved {
		return ErrTicketResolved
	}

	const insert = `
        INSERT INTO messages (ticket_id, sender_user_id, sender_student_id, message)
        VALUES ($1,$2,$3,$4)
        RETURNING id, created_at`
	if err := tx.QueryRow(ctx, insert,
		msg.TicketID,
		msg.Sender.UserID(),
		msg.Sender.StudentID(),
		msg.Body,
	).Scan(&msg.ID, &msg.CreatedAt); err != nil {
		return err
	}

	var nameQuery string
	if msg.Sender.Kind == domain.SenderKindStaff {
		nameQuery = `SELECT username FROM users WHERE id=$1`
	} else {
		nameQuery = `SELECT name FROM students WHERE id=$1`
	}
	if err := tx.QueryRow(ctx, nameQuery, msg.Sender.ID).Scan(&msg.SenderName); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *messageRepository) ListByTicket(ctx context.Context, ticketID string) ([]domain.Message, error) {
	const query = `
        SELECT m.id, m.ticket_id, m.sender_user_id, m.sender_student_id, m.message,
               m.created_at, COALESCE(u.username, s.name)
        FROM messages m
        LEFT JOIN users u ON u.id = m.sender_user_id
        LEFT JOIN students s ON s.id = m.sender_student_id
        WHERE m.ticket_id=$1
        ORDER BY m.created_at ASC`
	rows, err := r.pool.Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Message
	for rows.Next() {
		var (
			msg       domain.Message
			userID    *string
			studentID *string
		)
		if err := rows.Scan(
			&msg.ID,
			&msg.TicketID,
			&userID,
			&studentID,
			&msg.Body,
			&msg.CreatedAt,
			&msg.SenderName,
		); err != nil {
			return nil, err
		}
		sender, err := domain.SenderFromIDs(userID, studentID)
		if err != nil {
			return nil, err
		}
		msg.Sender = sender
		result = append(result, msg)
	}
	return result, rows.Err()
}
