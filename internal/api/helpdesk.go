package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/Rrens/deskflow/internal/domain"
)

// Login exchanges credentials for a session. A 401 here means bad
// credentials; the teardown hook fires too, which is harmless when no
// session exists yet.
func (c *Client) Login(ctx context.Context, email, password string) (*domain.Session, error) {
	input := domain.Credentials{Email: email, Password: password}
	var session domain.Session
	if err := c.do(ctx, http.MethodPost, "/auth/login", nil, input, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// Register creates an account and returns the session for it
func (c *Client) Register(ctx context.Context, input domain.RegisterInput) (*domain.Session, error) {
	var session domain.Session
	if err := c.do(ctx, http.MethodPost, "/auth/register", nil, input, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// Me returns the authenticated user as the backend currently sees it
func (c *Client) Me(ctx context.Context) (*domain.User, error) {
	var user domain.User
	if err := c.do(ctx, http.MethodGet, "/auth/me", nil, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateProfile saves the editable profile fields and returns the updated user
func (c *Client) UpdateProfile(ctx context.Context, input domain.ProfileUpdate) (*domain.User, error) {
	var user domain.User
	if err := c.do(ctx, http.MethodPut, "/users/profile", nil, input, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// ListTickets returns tickets visible to the current user, narrowed by filter
func (c *Client) ListTickets(ctx context.Context, filter domain.TicketFilter) ([]domain.Ticket, error) {
	query := url.Values{}
	if filter.Status != "" {
		query.Set("status", string(filter.Status))
	}
	if filter.Priority != "" {
		query.Set("priority", string(filter.Priority))
	}
	if filter.Search != "" {
		query.Set("search", filter.Search)
	}

	var tickets []domain.Ticket
	if err := c.do(ctx, http.MethodGet, "/tickets", query, nil, &tickets); err != nil {
		return nil, err
	}
	return tickets, nil
}

// GetTicket returns a single ticket by ID
func (c *Client) GetTicket(ctx context.Context, id string) (*domain.Ticket, error) {
	var ticket domain.Ticket
	if err := c.do(ctx, http.MethodGet, "/tickets/"+url.PathEscape(id), nil, nil, &ticket); err != nil {
		return nil, err
	}
	return &ticket, nil
}

// CreateTicket opens a new ticket
func (c *Client) CreateTicket(ctx context.Context, input domain.TicketCreate) (*domain.Ticket, error) {
	var ticket domain.Ticket
	if err := c.do(ctx, http.MethodPost, "/tickets", nil, input, &ticket); err != nil {
		return nil, err
	}
	return &ticket, nil
}

// UpdateTicket applies a partial update to a ticket
func (c *Client) UpdateTicket(ctx context.Context, id string, input domain.TicketUpdate) (*domain.Ticket, error) {
	var ticket domain.Ticket
	if err := c.do(ctx, http.MethodPut, "/tickets/"+url.PathEscape(id), nil, input, &ticket); err != nil {
		return nil, err
	}
	return &ticket, nil
}

// ListMessages returns the full conversation for a ticket in ascending
// createdAt order.
func (c *Client) ListMessages(ctx context.Context, ticketID string) ([]domain.Message, error) {
	var messages []domain.Message
	path := "/tickets/" + url.PathEscape(ticketID) + "/messages"
	if err := c.do(ctx, http.MethodGet, path, nil, nil, &messages); err != nil {
		return nil, err
	}
	return messages, nil
}

// SendMessage posts a message to a ticket conversation and returns the
// authoritative server copy.
func (c *Client) SendMessage(ctx context.Context, ticketID, body string) (*domain.Message, error) {
	input := domain.MessageCreate{Body: body}
	var message domain.Message
	path := "/tickets/" + url.PathEscape(ticketID) + "/messages"
	if err := c.do(ctx, http.MethodPost, path, nil, input, &message); err != nil {
		return nil, err
	}
	return &message, nil
}

// ListUsers returns all users (admin/agent view)
func (c *Client) ListUsers(ctx context.Context) ([]domain.User, error) {
	var users []domain.User
	if err := c.do(ctx, http.MethodGet, "/users", nil, nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// GetUser returns a single user by ID
func (c *Client) GetUser(ctx context.Context, id string) (*domain.User, error) {
	var user domain.User
	if err := c.do(ctx, http.MethodGet, "/users/"+url.PathEscape(id), nil, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// ListUserTickets returns the tickets created by a given user
func (c *Client) ListUserTickets(ctx context.Context, userID string) ([]domain.Ticket, error) {
	var tickets []domain.Ticket
	path := "/users/" + url.PathEscape(userID) + "/tickets"
	if err := c.do(ctx, http.MethodGet, path, nil, nil, &tickets); err != nil {
		return nil, err
	}
	return tickets, nil
}

// ListCompanies returns all companies
func (c *Client) ListCompanies(ctx context.Context) ([]domain.Company, error) {
	var companies []domain.Company
	if err := c.do(ctx, http.MethodGet, "/companies", nil, nil, &companies); err != nil {
		return nil, err
	}
	return companies, nil
}

// DashboardStats returns the landing page counters
func (c *Client) DashboardStats(ctx context.Context) (*domain.DashboardStats, error) {
	var stats domain.DashboardStats
	if err := c.do(ctx, http.MethodGet, "/dashboard/stats", nil, nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// Analytics returns the chart datasets
func (c *Client) Analytics(ctx context.Context) (*domain.AnalyticsReport, error) {
	var report domain.AnalyticsReport
	if err := c.do(ctx, http.MethodGet, "/dashboard/analytics", nil, nil, &report); err != nil {
		return nil, err
	}
	return &report, nil
}
