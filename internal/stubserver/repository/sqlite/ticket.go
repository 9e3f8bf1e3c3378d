package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Rrens/deskflow/internal/domain"
)

// TicketRepository handles ticket storage
type TicketRepository struct {
	db *DB
}

// NewTicketRepository creates a new ticket repository
func NewTicketRepository(db *DB) *TicketRepository {
	return &TicketRepository{db: db}
}

// Create inserts a new ticket
func (r *TicketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	query := `
		INSERT INTO tickets (id, title, description, category, status, priority, created_by, assignee_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, NULLIF(?, ''), ?, ?)
	`

	_, err := r.db.SQL.ExecContext(ctx, query,
		ticket.ID,
		ticket.Title,
		ticket.Description,
		ticket.Category,
		string(ticket.Status),
		string(ticket.Priority),
		ticket.CreatedByID,
		ticket.AssigneeID,
		encodeTime(ticket.CreatedAt),
		encodeTime(ticket.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to create ticket: %w", err)
	}
	return nil
}

// Get returns a ticket by ID, or nil when not found
func (r *TicketRepository) Get(ctx context.Context, id string) (*domain.Ticket, error) {
	query := ticketSelect + ` WHERE t.id = ?`

	row := r.db.SQL.QueryRowContext(ctx, query, id)
	ticket, err := scanTicket(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get ticket: %w", err)
	}
	return ticket, nil
}

// List returns tickets matching the filter. An empty createdBy means all
// tickets; agents and admins see everything, customers only their own.
func (r *TicketRepository) List(ctx context.Context, filter domain.TicketFilter, createdBy string) ([]domain.Ticket, error) {
	query := ticketSelect + ` WHERE 1 = 1`
	var args []any

	if createdBy != "" {
		query += ` AND t.created_by = ?`
		args = append(args, createdBy)
	}
	if filter.Status != "" {
		query += ` AND t.status = ?`
		args = append(args, string(filter.Status))
	}
	if filter.Priority != "" {
		query += ` AND t.priority = ?`
		args = append(args, string(filter.Priority))
	}
	if filter.Search != "" {
		query += ` AND (t.title LIKE ? OR t.description LIKE ?)`
		like := "%" + filter.Search + "%"
		args = append(args, like, like)
	}

	query += ` ORDER BY t.created_at DESC`

	return r.queryTickets(ctx, query, args...)
}

// ListByCreator returns the tickets a user opened, newest first
func (r *TicketRepository) ListByCreator(ctx context.Context, userID string) ([]domain.Ticket, error) {
	query := ticketSelect + ` WHERE t.created_by = ? ORDER BY t.created_at DESC`
	return r.queryTickets(ctx, query, userID)
}

// Update applies a partial update and bumps updated_at
func (r *TicketRepository) Update(ctx context.Context, id string, input domain.TicketUpdate) (*domain.Ticket, error) {
	query := `UPDATE tickets SET updated_at = ?`
	args := []any{encodeTime(time.Now())}

	if input.Status != nil {
		query += `, status = ?`
		args = append(args, string(*input.Status))
	}
	if input.Priority != nil {
		query += `, priority = ?`
		args = append(args, string(*input.Priority))
	}
	if input.AssigneeID != nil {
		query += `, assignee_id = NULLIF(?, '')`
		args = append(args, *input.AssigneeID)
	}

	query += ` WHERE id = ?`
	args = append(args, id)

	if _, err := r.db.SQL.ExecContext(ctx, query, args...); err != nil {
		return nil, fmt.Errorf("failed to update ticket: %w", err)
	}
	return r.Get(ctx, id)
}

func (r *TicketRepository) queryTickets(ctx context.Context, query string, args ...any) ([]domain.Ticket, error) {
	rows, err := r.db.SQL.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list tickets: %w", err)
	}
	defer rows.Close()

	var tickets []domain.Ticket
	for rows.Next() {
		ticket, err := scanTicket(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ticket: %w", err)
		}
		tickets = append(tickets, *ticket)
	}
	return tickets, rows.Err()
}

const ticketSelect = `
	SELECT t.id, t.title, t.description, t.category, t.status, t.priority,
	       t.created_by, COALESCE(cu.name, ''),
	       COALESCE(t.assignee_id, ''), COALESCE(au.name, ''),
	       t.created_at, t.updated_at
	FROM tickets t
	JOIN users cu ON cu.id = t.created_by
	LEFT JOIN users au ON au.id = t.assignee_id
`

func scanTicket(row rowScanner) (*domain.Ticket, error) {
	var (
		ticket               domain.Ticket
		status, priority     string
		createdAt, updatedAt string
	)
	if err := row.Scan(
		&ticket.ID,
		&ticket.Title,
		&ticket.Description,
		&ticket.Category,
		&status,
		&priority,
		&ticket.CreatedByID,
		&ticket.CreatedByName,
		&ticket.AssigneeID,
		&ticket.AssigneeName,
		&createdAt,
		&updatedAt,
	); err != nil {
		return nil, err
	}
	ticket.Status = domain.TicketStatus(status)
	ticket.Priority = domain.TicketPriority(priority)
	ticket.CreatedAt = decodeTime(createdAt)
	ticket.UpdatedAt = decodeTime(updatedAt)
	return &ticket, nil
}
