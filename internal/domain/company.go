package domain

import "time"

// Company groups customer accounts for the admin listing
type Company struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	UserCount int       `json:"userCount"`
	CreatedAt time.Time `json:"createdAt"`
}
