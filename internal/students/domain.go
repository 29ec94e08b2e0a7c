package students

import "time"

// Student is a learner enrolled at a center.
type Student struct {
	ID        int64      `json:"id"`
	CenterID  int64      `json:"center_id"`
	FirstName string     `json:"first_name"`
	LastName  string     `json:"last_name"`
	Email     *string    `json:"email,omitempty"`
	Phone     *string    `json:"phone,omitempty"`
	BirthDate *time.Time `json:"birth_date,omitempty"`
	IsActive  bool       `json:"is_active"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// CreateStudentRequest is the payload for POST /students. CenterID is only
// honoured for super admins.
type CreateStudentRequest struct {
	CenterID  *int64     `json:"center_id,omitempty"`
	FirstName string     `json:"first_name" validate:"required,max=100"`
	LastName  string     `json:"last_name" validate:"required,max=100"`
	Email     *string    `json:"email,omitempty" validate:"omitempty,email"`
	Phone     *string    `json:"phone,omitempty" validate:"omitempty,max=50"`
	BirthDate *time.Time `json:"birth_date,omitempty"`
}

// UpdateStudentRequest is the payload for PUT /students/{id}. The owning
// center cannot be changed.
type UpdateStudentRequest struct {
	FirstName *string    `json:"first_name,omitempty" validate:"omitempty,min=1,max=100"`
	LastName  *string    `json:"last_name,omitempty" validate:"omitempty,min=1,max=100"`
	Email     *string    `json:"email,omitempty" validate:"omitempty,email"`
	Phone     *string    `json:"phone,omitempty" validate:"omitempty,max=50"`
	BirthDate *time.Time `json:"birth_date,omitempty"`
	IsActive  *bool      `json:"is_active,omitempty"`
}
