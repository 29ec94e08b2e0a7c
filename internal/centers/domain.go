package centers

import "time"

// Center is a tenant: an educational center with its own users and data.
type Center struct {
	ID        int64     `json:"id"`
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	Email     *string   `json:"email,omitempty"`
	Phone     *string   `json:"phone,omitempty"`
	Address   *string   `json:"address,omitempty"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CreateCenterRequest is the payload for POST /centers.
type CreateCenterRequest struct {
	Code    string  `json:"code" validate:"required,alphanum,max=20"`
	Name    string  `json:"name" validate:"required,max=150"`
	Email   *string `json:"email,omitempty" validate:"omitempty,email"`
	Phone   *string `json:"phone,omitempty" validate:"omitempty,max=50"`
	Address *string `json:"address,omitempty" validate:"omitempty,max=300"`
}

// UpdateCenterRequest is the payload for PUT /centers/{id}.
type UpdateCenterRequest struct {
	Name    *string `json:"name,omitempty" validate:"omitempty,min=1,max=150"`
	Email   *string `json:"email,omitempty" validate:"omitempty,email"`
	Phone   *string `json:"phone,omitempty" validate:"omitempty,max=50"`
	Address *string `json:"address,omitempty" validate:"omitempty,max=300"`
}
