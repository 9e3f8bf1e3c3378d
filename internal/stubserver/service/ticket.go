package service

import (
	"context"
	"fmt"
	"time"

	"github.com/Rrens/deskflow/internal/domain"
	"github.com/Rrens/deskflow/internal/stubserver/repository/sqlite"
	"github.com/google/uuid"
)

// Actor is the identity a request acts as
type Actor struct {
	UserID string
	Role   domain.Role
}

func (a Actor) staff() bool {
	return a.Role == domain.RoleAdmin || a.Role == domain.RoleAgent
}

// TicketService handles tickets and their conversations. Customers only
// see their own tickets; staff see everything.
type TicketService struct {
	ticketRepo  *sqlite.TicketRepository
	messageRepo *sqlite.MessageRepository
}

// NewTicketService creates a new ticket service
func NewTicketService(ticketRepo *sqlite.TicketRepository, messageRepo *sqlite.MessageRepository) *TicketService {
	return &TicketService{ticketRepo: ticketRepo, messageRepo: messageRepo}
}

// List returns tickets visible to the actor, narrowed by filter
func (s *TicketService) List(ctx context.Context, actor Actor, filter domain.TicketFilter) ([]domain.Ticket, error) {
	createdBy := ""
	if !actor.staff() {
		createdBy = actor.UserID
	}
	return s.ticketRepo.List(ctx, filter, createdBy)
}

// Get returns a single ticket the actor may see
func (s *TicketService) Get(ctx context.Context, actor Actor, id string) (*domain.Ticket, error) {
	ticket, err := s.ticketRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if ticket == nil {
		return nil, ErrNotFound
	}
	if !actor.staff() && ticket.CreatedByID != actor.UserID {
		return nil, ErrForbidden
	}
	return ticket, nil
}

// Create opens a new ticket on behalf of the actor
func (s *TicketService) Create(ctx context.Context, actor Actor, input domain.TicketCreate) (*domain.Ticket, error) {
	now := time.Now()
	ticket := &domain.Ticket{
		ID:          uuid.NewString(),
		Title:       input.Title,
		Description: input.Description,
		Category:    input.Category,
		Status:      domain.StatusOpen,
		Priority:    input.Priority,
		CreatedByID: actor.UserID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.ticketRepo.Create(ctx, ticket); err != nil {
		return nil, err
	}
	return s.ticketRepo.Get(ctx, ticket.ID)
}

// Update applies a partial update; only staff may change tickets
func (s *TicketService) Update(ctx context.Context, actor Actor, id string, input domain.TicketUpdate) (*domain.Ticket, error) {
	if _, err := s.Get(ctx, actor, id); err != nil {
		return nil, err
	}
	if !actor.staff() {
		return nil, ErrForbidden
	}
	return s.ticketRepo.Update(ctx, id, input)
}

// ListMessages returns the conversation for a ticket the actor may see.
// A customer reading another user's conversation gets ErrForbidden, which
// clients surface locally rather than tearing down the session.
func (s *TicketService) ListMessages(ctx context.Context, actor Actor, ticketID string) ([]domain.Message, error) {
	if _, err := s.Get(ctx, actor, ticketID); err != nil {
		return nil, err
	}
	return s.messageRepo.ListByTicket(ctx, ticketID)
}

// SendMessage appends a message to the conversation and returns the
// authoritative stored copy.
func (s *TicketService) SendMessage(ctx context.Context, actor Actor, ticketID string, input domain.MessageCreate) (*domain.Message, error) {
	if _, err := s.Get(ctx, actor, ticketID); err != nil {
		return nil, err
	}

	message := &domain.Message{
		ID:        uuid.NewString(),
		TicketID:  ticketID,
		SenderID:  actor.UserID,
		Body:      input.Body,
		CreatedAt: time.Now(),
	}
	if err := s.messageRepo.Create(ctx, message); err != nil {
		return nil, err
	}

	// Re-read for the joined sender name.
	messages, err := s.messageRepo.ListByTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	for i := range messages {
		if messages[i].ID == message.ID {
			return &messages[i], nil
		}
	}
	return nil, fmt.Errorf("stored message not found")
}
