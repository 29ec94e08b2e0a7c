package teachers

import "time"

// Teacher is an instructor employed by a center.
type Teacher struct {
	ID        int64      `json:"id"`
	CenterID  int64      `json:"center_id"`
	FirstName string     `json:"first_name"`
	LastName  string     `json:"last_name"`
	Email     *string    `json:"email,omitempty"`
	Phone     *string    `json:"phone,omitempty"`
	Specialty *string    `json:"specialty,omitempty"`
	HiredOn   *time.Time `json:"hired_on,omitempty"`
	IsActive  bool       `json:"is_active"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// CreateTeacherRequest is the payload for POST /teachers.
type CreateTeacherRequest struct {
	CenterID  *int64     `json:"center_id,omitempty"`
	FirstName string     `json:"first_name" validate:"required,max=100"`
	LastName  string     `json:"last_name" validate:"required,max=100"`
	Email     *string    `json:"email,omitempty" validate:"omitempty,email"`
	Phone     *string    `json:"phone,omitempty" validate:"omitempty,max=50"`
	Specialty *string    `json:"specialty,omitempty" validate:"omitempty,max=120"`
	HiredOn   *time.Time `json:"hired_on,omitempty"`
}

// UpdateTeacherRequest is the payload for PUT /teachers/{id}.
type UpdateTeacherRequest struct {
	FirstName *string    `json:"first_name,omitempty" validate:"omitempty,min=1,max=100"`
	LastName  *string    `json:"last_name,omitempty" validate:"omitempty,min=1,max=100"`
	Email     *string    `json:"email,omitempty" validate:"omitempty,email"`
	Phone     *string    `json:"phone,omitempty" validate:"omitempty,max=50"`
	Specialty *string    `json:"specialty,omitempty" validate:"omitempty,max=120"`
	HiredOn   *time.Time `json:"hired_on,omitempty"`
	IsActive  *bool      `json:"is_active,omitempty"`
}
