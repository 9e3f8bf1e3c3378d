package sqlite

import (
	"context"
	"fmt"

	"github.com/Rrens/deskflow/internal/domain"
)

// StatsRepository derives dashboard counters and chart datasets
type StatsRepository struct {
	db      *DB
	tickets *TicketRepository
}

// NewStatsRepository creates a new stats repository
func NewStatsRepository(db *DB, tickets *TicketRepository) *StatsRepository {
	return &StatsRepository{db: db, tickets: tickets}
}

// Dashboard returns the landing page counters. For customers, createdBy
// narrows everything to their own tickets.
func (r *StatsRepository) Dashboard(ctx context.Context, createdBy string) (*domain.DashboardStats, error) {
	query := `
		SELECT
			COUNT(1),
			COALESCE(SUM(CASE WHEN status = 'open' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN status = 'in-progress' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN status = 'resolved' THEN 1 ELSE 0 END), 0)
		FROM tickets
	`
	var args []any
	if createdBy != "" {
		query += ` WHERE created_by = ?`
		args = append(args, createdBy)
	}

	var stats domain.DashboardStats
	err := r.db.SQL.QueryRowContext(ctx, query, args...).Scan(
		&stats.TotalTickets,
		&stats.OpenTickets,
		&stats.InProgress,
		&stats.Resolved,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to count tickets: %w", err)
	}

	recent, err := r.tickets.List(ctx, domain.TicketFilter{}, createdBy)
	if err != nil {
		return nil, err
	}
	if len(recent) > 5 {
		recent = recent[:5]
	}
	stats.RecentTickets = recent
	return &stats, nil
}

// Analytics returns the chart datasets
func (r *StatsRepository) Analytics(ctx context.Context) (*domain.AnalyticsReport, error) {
	report := &domain.AnalyticsReport{
		TicketsByStatus:   make(map[string]int),
		TicketsByPriority: make(map[string]int),
	}

	if err := r.countBy(ctx, `SELECT status, COUNT(1) FROM tickets GROUP BY status`, report.TicketsByStatus); err != nil {
		return nil, err
	}
	if err := r.countBy(ctx, `SELECT priority, COUNT(1) FROM tickets GROUP BY priority`, report.TicketsByPriority); err != nil {
		return nil, err
	}

	rows, err := r.db.SQL.QueryContext(ctx, `
		SELECT substr(created_at, 1, 10) AS day, COUNT(1)
		FROM tickets
		GROUP BY day
		ORDER BY day
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query tickets per day: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var point domain.DailyCount
		if err := rows.Scan(&point.Date, &point.Count); err != nil {
			return nil, fmt.Errorf("failed to scan daily count: %w", err)
		}
		report.TicketsPerDay = append(report.TicketsPerDay, point)
	}
	return report, rows.Err()
}

func (r *StatsRepository) countBy(ctx context.Context, query string, into map[string]int) error {
	rows, err := r.db.SQL.QueryContext(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to query counts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			key   string
			count int
		)
		if err := rows.Scan(&key, &count); err != nil {
			return fmt.Errorf("failed to scan count: %w", err)
		}
		into[key] = count
	}
	return rows.Err()
}
