package domain

import "time"

// Role identifies what a user is allowed to see in the dashboard
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleAgent    Role = "agent"
	RoleCustomer Role = "customer"
)

// User represents a helpdesk user as returned by the backend
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	Phone     string    `json:"phone,omitempty"`
	CompanyID string    `json:"companyId,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Credentials represents login input
type Credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RegisterInput represents account registration data
type RegisterInput struct {
	Name     string `json:"name" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Phone    string `json:"phone,omitempty" validate:"omitempty,max=30"`
}

// ProfileUpdate represents the editable subset of a user profile
type ProfileUpdate struct {
	Name  string `json:"name" validate:"required,max=100"`
	Phone string `json:"phone,omitempty" validate:"omitempty,max=30"`
}
