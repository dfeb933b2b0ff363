package models

import "time"

type UserRole string

const (
	RoleAdmin    UserRole = "Admin"
	RoleAgent    UserRole = "Agent"
	RoleCustomer UserRole = "Customer"
)

// User is the backend's view of an account. Customers belong to a client.
type User struct {
	ID        uint      `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	ClientID  *uint     `json:"client_id,omitempty"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (u *User) IsAdmin() bool {
	return u != nil && u.Role == string(RoleAdmin)
}

func (u *User) HasRole(roles ...string) bool {
	if u == nil {
		return false
	}
	for _, r := range roles {
		if u.Role == r {
			return true
		}
	}
	return false
}

// UserInput is the create/update form for a user.
type UserInput struct {
	Email    string `json:"email" form:"email" binding:"required,email"`
	Name     string `json:"name" form:"name" binding:"required,max=120"`
	Role     string `json:"role" form:"role" binding:"required,oneof=Admin Agent Customer"`
	ClientID *uint  `json:"client_id,omitempty" form:"client_id"`
	IsActive bool   `json:"is_active" form:"is_active"`
	Password string `json:"password,omitempty" form:"password" binding:"omitempty,min=8"`
}
