package handler

import (
	"net/http"

	"github.com/Rrens/deskflow/internal/domain"
	"github.com/Rrens/deskflow/internal/stubserver/response"
	"github.com/Rrens/deskflow/internal/stubserver/service"
	"github.com/go-chi/chi/v5"
)

// DirectoryHandler handles user/company listings and dashboard endpoints
type DirectoryHandler struct {
	directoryService *service.DirectoryService
}

// NewDirectoryHandler creates a new directory handler
func NewDirectoryHandler(directoryService *service.DirectoryService) *DirectoryHandler {
	return &DirectoryHandler{directoryService: directoryService}
}

// ListUsers returns all users
func (h *DirectoryHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	act, ok := actor(r)
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	users, err := h.directoryService.ListUsers(r.Context(), act)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if users == nil {
		users = []domain.User{}
	}
	response.OK(w, users)
}

// GetUser returns a single user
func (h *DirectoryHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	act, ok := actor(r)
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	user, err := h.directoryService.GetUser(r.Context(), act, chi.URLParam(r, "userID"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	response.OK(w, user)
}

// ListUserTickets returns the tickets a user opened
func (h *DirectoryHandler) ListUserTickets(w http.ResponseWriter, r *http.Request) {
	act, ok := actor(r)
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	tickets, err := h.directoryService.ListUserTickets(r.Context(), act, chi.URLParam(r, "userID"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if tickets == nil {
		tickets = []domain.Ticket{}
	}
	response.OK(w, tickets)
}

// ListCompanies returns all companies
func (h *DirectoryHandler) ListCompanies(w http.ResponseWriter, r *http.Request) {
	act, ok := actor(r)
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	companies, err := h.directoryService.ListCompanies(r.Context(), act)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if companies == nil {
		companies = []domain.Company{}
	}
	response.OK(w, companies)
}

// DashboardStats returns the landing page counters
func (h *DirectoryHandler) DashboardStats(w http.ResponseWriter, r *http.Request) {
	act, ok := actor(r)
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	stats, err := h.directoryService.DashboardStats(r.Context(), act)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	response.OK(w, stats)
}

// Analytics returns the chart datasets
func (h *DirectoryHandler) Analytics(w http.ResponseWriter, r *http.Request) {
	act, ok := actor(r)
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	report, err := h.directoryService.Analytics(r.Context(), act)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	response.OK(w, report)
}
