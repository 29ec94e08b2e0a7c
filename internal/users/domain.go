package users

import "time"

// User represents a center user account for management.
type User struct {
	ID        int64     `json:"id"`
	CenterID  *int64    `json:"center_id,omitempty"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	IsActive  bool      `json:"is_active"`
	Roles     []string  `json:"roles"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CreateUserRequest is the payload for POST /users.
type CreateUserRequest struct {
	CenterID *int64   `json:"center_id,omitempty"`
	Email    string   `json:"email" validate:"required,email"`
	Name     string   `json:"name" validate:"required,max=150"`
	Password string   `json:"password" validate:"required,min=8,max=72"`
	Roles    []string `json:"roles" validate:"required,min=1,dive,required"`
}

// AssignRolesRequest is the payload for PUT /users/{id}/roles. Order is
// preserved and decides which role is evaluated first.
type AssignRolesRequest struct {
	Roles []string `json:"roles" validate:"required,min=1,dive,required"`
}
