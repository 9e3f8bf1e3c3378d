package domain

import "time"

// Message represents a single entry in a ticket conversation. IDs are unique
// within a conversation and server-returned order is ascending by CreatedAt.
type Message struct {
	ID         string    `json:"id"`
	TicketID   string    `json:"ticketId"`
	SenderID   string    `json:"senderId"`
	SenderName string    `json:"senderName"`
	Body       string    `json:"message"`
	CreatedAt  time.Time `json:"createdAt"`
}

// MessageCreate represents an outgoing chat message
type MessageCreate struct {
	Body string `json:"message" validate:"required,max=4000"`
}
