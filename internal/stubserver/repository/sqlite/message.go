package sqlite

import (
	"context"
	"fmt"

	"github.com/Rrens/deskflow/internal/domain"
)

// MessageRepository handles conversation storage
type MessageRepository struct {
	db *DB
}

// NewMessageRepository creates a new message repository
func NewMessageRepository(db *DB) *MessageRepository {
	return &MessageRepository{db: db}
}

// Create inserts a new message
func (r *MessageRepository) Create(ctx context.Context, message *domain.Message) error {
	query := `
		INSERT INTO messages (id, ticket_id, sender_id, body, created_at)
		VALUES (?, ?, ?, ?, ?)
	`

	_, err := r.db.SQL.ExecContext(ctx, query,
		message.ID,
		message.TicketID,
		message.SenderID,
		message.Body,
		encodeTime(message.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to create message: %w", err)
	}
	return nil
}

// ListByTicket returns the full conversation in ascending createdAt order
func (r *MessageRepository) ListByTicket(ctx context.Context, ticketID string) ([]domain.Message, error) {
	query := `
		SELECT m.id, m.ticket_id, m.sender_id, u.name, m.body, m.created_at
		FROM messages m
		JOIN users u ON u.id = m.sender_id
		WHERE m.ticket_id = ?
		ORDER BY m.created_at, m.id
	`

	rows, err := r.db.SQL.QueryContext(ctx, query, ticketID)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	defer rows.Close()

	var messages []domain.Message
	for rows.Next() {
		var (
			m         domain.Message
			createdAt string
		)
		if err := rows.Scan(&m.ID, &m.TicketID, &m.SenderID, &m.SenderName, &m.Body, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		m.CreatedAt = decodeTime(createdAt)
		messages = append(messages, m)
	}
	return messages, rows.Err()
}
