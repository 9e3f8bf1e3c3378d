package handler

import (
	"encoding/json"
	"net/http"

	"github.com/Rrens/deskflow/internal/domain"
	"github.com/Rrens/deskflow/internal/stubserver/response"
	"github.com/Rrens/deskflow/internal/stubserver/service"
	"github.com/go-chi/chi/v5"
)

// TicketHandler handles ticket and conversation endpoints
type TicketHandler struct {
	ticketService *service.TicketService
}

// NewTicketHandler creates a new ticket handler
func NewTicketHandler(ticketService *service.TicketService) *TicketHandler {
	return &TicketHandler{ticketService: ticketService}
}

// List returns tickets visible to the caller
func (h *TicketHandler) List(w http.ResponseWriter, r *http.Request) {
	act, ok := actor(r)
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	filter := domain.TicketFilter{
		Status:   domain.TicketStatus(r.URL.Query().Get("status")),
		Priority: domain.TicketPriority(r.URL.Query().Get("priority")),
		Search:   r.URL.Query().Get("search"),
	}

	tickets, err := h.ticketService.List(r.Context(), act, filter)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if tickets == nil {
		tickets = []domain.Ticket{}
	}
	response.OK(w, tickets)
}

// Get returns a single ticket
func (h *TicketHandler) Get(w http.ResponseWriter, r *http.Request) {
	act, ok := actor(r)
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	ticket, err := h.ticketService.Get(r.Context(), act, chi.URLParam(r, "ticketID"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	response.OK(w, ticket)
}

// Create opens a new ticket
func (h *TicketHandler) Create(w http.ResponseWriter, r *http.Request) {
	act, ok := actor(r)
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	var input domain.TicketCreate
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	if err := validate.Struct(input); err != nil {
		writeValidationError(w, err)
		return
	}

	ticket, err := h.ticketService.Create(r.Context(), act, input)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	response.Created(w, ticket)
}

// Update applies a partial ticket update
func (h *TicketHandler) Update(w http.ResponseWriter, r *http.Request) {
	act, ok := actor(r)
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	var input domain.TicketUpdate
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	if err := validate.Struct(input); err != nil {
		writeValidationError(w, err)
		return
	}

	ticket, err := h.ticketService.Update(r.Context(), act, chi.URLParam(r, "ticketID"), input)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	response.OK(w, ticket)
}

// ListMessages returns a ticket's conversation
func (h *TicketHandler) ListMessages(w http.ResponseWriter, r *http.Request) {
	act, ok := actor(r)
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	messages, err := h.ticketService.ListMessages(r.Context(), act, chi.URLParam(r, "ticketID"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if messages == nil {
		messages = []domain.Message{}
	}
	response.OK(w, messages)
}

// SendMessage appends a message to a ticket's conversation
func (h *TicketHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	act, ok := actor(r)
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	var input domain.MessageCreate
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	if err := validate.Struct(input); err != nil {
		writeValidationError(w, err)
		return
	}

	message, err := h.ticketService.SendMessage(r.Context(), act, chi.URLParam(r, "ticketID"), input)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	response.Created(w, message)
}
