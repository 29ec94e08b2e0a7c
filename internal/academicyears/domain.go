package academicyears

import "time"

// AcademicYear is a teaching period of one center. At most one year per
// center is current.
type AcademicYear struct {
	ID        int64     `json:"id"`
	CenterID  int64     `json:"center_id"`
	Name      string    `json:"name"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	IsCurrent bool      `json:"is_current"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CreateRequest is the payload for POST /academic-years.
type CreateRequest struct {
	CenterID  *int64    `json:"center_id,omitempty"`
	Name      string    `json:"name" validate:"required,max=50"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	IsCurrent bool      `json:"is_current"`
}

// UpdateRequest is the payload for PUT /academic-years/{id}.
type UpdateRequest struct {
	Name      *string    `json:"name,omitempty" validate:"omitempty,min=1,max=50"`
	StartDate *time.Time `json:"start_date,omitempty"`
	EndDate   *time.Time `json:"end_date,omitempty"`
	IsCurrent *bool      `json:"is_current,omitempty"`
}
