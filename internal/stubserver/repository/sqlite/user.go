package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Rrens/deskflow/internal/domain"
)

// UserRepository handles user storage. Password hashes never travel inside
// domain.User; they are passed alongside it.
type UserRepository struct {
	db *DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts a new user
func (r *UserRepository) Create(ctx context.Context, user *domain.User, passwordHash string) error {
	query := `
		INSERT INTO users (id, name, email, password_hash, role, phone, company_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, NULLIF(?, ''), ?)
	`

	_, err := r.db.SQL.ExecContext(ctx, query,
		user.ID,
		user.Name,
		user.Email,
		passwordHash,
		string(user.Role),
		user.Phone,
		user.CompanyID,
		encodeTime(user.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// EmailExists reports whether an account already uses the email
func (r *UserRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	var count int
	err := r.db.SQL.QueryRowContext(ctx, `SELECT COUNT(1) FROM users WHERE email = ?`, email).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check email: %w", err)
	}
	return count > 0, nil
}

// GetByEmail returns the user with the given email and their password hash,
// or (nil, "", nil) when no such user exists.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, string, error) {
	query := userSelect + ` WHERE email = ?`

	row := r.db.SQL.QueryRowContext(ctx, query, email)
	user, hash, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", fmt.Errorf("failed to get user: %w", err)
	}
	return user, hash, nil
}

// GetByID returns a user by ID, or nil when not found
func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	query := userSelect + ` WHERE id = ?`

	row := r.db.SQL.QueryRowContext(ctx, query, id)
	user, _, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// List returns all users ordered by creation time
func (r *UserRepository) List(ctx context.Context) ([]domain.User, error) {
	query := userSelect + ` ORDER BY created_at`

	rows, err := r.db.SQL.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		user, _, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, *user)
	}
	return users, rows.Err()
}

// UpdateProfile replaces the editable profile fields and returns the user
func (r *UserRepository) UpdateProfile(ctx context.Context, id string, input domain.ProfileUpdate) (*domain.User, error) {
	_, err := r.db.SQL.ExecContext(ctx,
		`UPDATE users SET name = ?, phone = ? WHERE id = ?`,
		input.Name, input.Phone, id,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return r.GetByID(ctx, id)
}

const userSelect = `
	SELECT id, name, email, password_hash, role, phone, COALESCE(company_id, ''), created_at
	FROM users
`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*domain.User, string, error) {
	var (
		user      domain.User
		role      string
		hash      string
		createdAt string
	)
	if err := row.Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&hash,
		&role,
		&user.Phone,
		&user.CompanyID,
		&createdAt,
	); err != nil {
		return nil, "", err
	}
	user.Role = domain.Role(role)
	user.CreatedAt = decodeTime(createdAt)
	return &user, hash, nil
}
