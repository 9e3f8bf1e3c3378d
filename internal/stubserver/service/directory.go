package service

import (
	"context"

	"github.com/Rrens/deskflow/internal/domain"
	"github.com/Rrens/deskflow/internal/stubserver/repository/sqlite"
)

// DirectoryService backs the user/company listings and the dashboard pages
type DirectoryService struct {
	userRepo    *sqlite.UserRepository
	ticketRepo  *sqlite.TicketRepository
	companyRepo *sqlite.CompanyRepository
	statsRepo   *sqlite.StatsRepository
}

// NewDirectoryService creates a new directory service
func NewDirectoryService(
	userRepo *sqlite.UserRepository,
	ticketRepo *sqlite.TicketRepository,
	companyRepo *sqlite.CompanyRepository,
	statsRepo *sqlite.StatsRepository,
) *DirectoryService {
	return &DirectoryService{
		userRepo:    userRepo,
		ticketRepo:  ticketRepo,
		companyRepo: companyRepo,
		statsRepo:   statsRepo,
	}
}

// ListUsers returns all users; staff only
func (s *DirectoryService) ListUsers(ctx context.Context, actor Actor) ([]domain.User, error) {
	if !actor.staff() {
		return nil, ErrForbidden
	}
	return s.userRepo.List(ctx)
}

// GetUser returns a single user; staff only
func (s *DirectoryService) GetUser(ctx context.Context, actor Actor, id string) (*domain.User, error) {
	if !actor.staff() {
		return nil, ErrForbidden
	}
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrNotFound
	}
	return user, nil
}

// ListUserTickets returns the tickets a user opened; staff only
func (s *DirectoryService) ListUserTickets(ctx context.Context, actor Actor, userID string) ([]domain.Ticket, error) {
	if !actor.staff() {
		return nil, ErrForbidden
	}
	return s.ticketRepo.ListByCreator(ctx, userID)
}

// ListCompanies returns all companies; staff only
func (s *DirectoryService) ListCompanies(ctx context.Context, actor Actor) ([]domain.Company, error) {
	if !actor.staff() {
		return nil, ErrForbidden
	}
	return s.companyRepo.List(ctx)
}

// DashboardStats returns the landing page counters scoped to the actor
func (s *DirectoryService) DashboardStats(ctx context.Context, actor Actor) (*domain.DashboardStats, error) {
	createdBy := ""
	if !actor.staff() {
		createdBy = actor.UserID
	}
	return s.statsRepo.Dashboard(ctx, createdBy)
}

// Analytics returns the chart datasets; staff only
func (s *DirectoryService) Analytics(ctx context.Context, actor Actor) (*domain.AnalyticsReport, error) {
	if !actor.staff() {
		return nil, ErrForbidden
	}
	return s.statsRepo.Analytics(ctx)
}
