package sqlite

import (
	"context"
	"fmt"

	"github.com/Rrens/deskflow/internal/domain"
)

// CompanyRepository handles company storage
type CompanyRepository struct {
	db *DB
}

// NewCompanyRepository creates a new company repository
func NewCompanyRepository(db *DB) *CompanyRepository {
	return &CompanyRepository{db: db}
}

// Create inserts a new company
func (r *CompanyRepository) Create(ctx context.Context, company *domain.Company) error {
	query := `
		INSERT INTO companies (id, name, email, phone, created_at)
		VALUES (?, ?, ?, ?, ?)
	`

	_, err := r.db.SQL.ExecContext(ctx, query,
		company.ID,
		company.Name,
		company.Email,
		company.Phone,
		encodeTime(company.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to create company: %w", err)
	}
	return nil
}

// List returns all companies with their user counts
func (r *CompanyRepository) List(ctx context.Context) ([]domain.Company, error) {
	query := `
		SELECT c.id, c.name, c.email, c.phone, COUNT(u.id), c.created_at
		FROM companies c
		LEFT JOIN users u ON u.company_id = c.id
		GROUP BY c.id
		ORDER BY c.name
	`

	rows, err := r.db.SQL.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list companies: %w", err)
	}
	defer rows.Close()

	var companies []domain.Company
	for rows.Next() {
		var (
			c         domain.Company
			createdAt string
		)
		if err := rows.Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.UserCount, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan company: %w", err)
		}
		c.CreatedAt = decodeTime(createdAt)
		companies = append(companies, c)
	}
	return companies, rows.Err()
}
