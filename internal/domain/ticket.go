package domain

import "time"

// TicketStatus tracks a ticket through its lifecycle
type TicketStatus string

const (
	StatusOpen       TicketStatus = "open"
	StatusInProgress TicketStatus = "in-progress"
	StatusResolved   TicketStatus = "resolved"
	StatusClosed     TicketStatus = "closed"
)

// TicketPriority ranks how urgently a ticket needs attention
type TicketPriority string

const (
	PriorityLow    TicketPriority = "low"
	PriorityMedium TicketPriority = "medium"
	PriorityHigh   TicketPriority = "high"
	PriorityUrgent TicketPriority = "urgent"
)

// Ticket represents a support ticket
type Ticket struct {
	ID            string         `json:"id"`
	Title         string         `json:"title"`
	Description   string         `json:"description"`
	Category      string         `json:"category,omitempty"`
	Status        TicketStatus   `json:"status"`
	Priority      TicketPriority `json:"priority"`
	CreatedByID   string         `json:"createdById"`
	CreatedByName string         `json:"createdByName,omitempty"`
	AssigneeID    string         `json:"assigneeId,omitempty"`
	AssigneeName  string         `json:"assigneeName,omitempty"`
	CreatedAt     time.Time      `json:"createdAt"`
	UpdatedAt     time.Time      `json:"updatedAt"`
}

// TicketCreate represents the fields a user submits when opening a ticket
type TicketCreate struct {
	Title       string         `json:"title" validate:"required,max=200"`
	Description string         `json:"description" validate:"required,max=5000"`
	Category    string         `json:"category,omitempty" validate:"omitempty,max=100"`
	Priority    TicketPriority `json:"priority" validate:"required,oneof=low medium high urgent"`
}

// TicketUpdate carries a partial update; nil fields are left unchanged
type TicketUpdate struct {
	Status     *TicketStatus   `json:"status,omitempty" validate:"omitempty,oneof=open in-progress resolved closed"`
	Priority   *TicketPriority `json:"priority,omitempty" validate:"omitempty,oneof=low medium high urgent"`
	AssigneeID *string         `json:"assigneeId,omitempty"`
}

// TicketFilter narrows a ticket listing
type TicketFilter struct {
	Status   TicketStatus
	Priority TicketPriority
	Search   string
}
