package courses

import "time"

// Course is a class offering of a center, optionally bound to a teacher and
// an academic year of the same center.
type Course struct {
	ID             int64     `json:"id"`
	CenterID       int64     `json:"center_id"`
	Code           string    `json:"code"`
	Name           string    `json:"name"`
	Description    *string   `json:"description,omitempty"`
	TeacherID      *int64    `json:"teacher_id,omitempty"`
	AcademicYearID *int64    `json:"academic_year_id,omitempty"`
	Capacity       int       `json:"capacity"`
	FeeCents       int64     `json:"fee_cents"`
	IsActive       bool      `json:"is_active"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// CreateCourseRequest is the payload for POST /courses.
type CreateCourseRequest struct {
	CenterID       *int64  `json:"center_id,omitempty"`
	Code           string  `json:"code" validate:"required,max=30"`
	Name           string  `json:"name" validate:"required,max=150"`
	Description    *string `json:"description,omitempty"`
	TeacherID      *int64  `json:"teacher_id,omitempty" validate:"omitempty,gt=0"`
	AcademicYearID *int64  `json:"academic_year_id,omitempty" validate:"omitempty,gt=0"`
	Capacity       int     `json:"capacity" validate:"gte=0,lte=1000"`
	FeeCents       int64   `json:"fee_cents" validate:"gte=0"`
}

// UpdateCourseRequest is the payload for PUT /courses/{id}.
type UpdateCourseRequest struct {
	Name           *string `json:"name,omitempty" validate:"omitempty,min=1,max=150"`
	Description    *string `json:"description,omitempty"`
	TeacherID      *int64  `json:"teacher_id,omitempty" validate:"omitempty,gt=0"`
	AcademicYearID *int64  `json:"academic_year_id,omitempty" validate:"omitempty,gt=0"`
	Capacity       *int    `json:"capacity,omitempty" validate:"omitempty,gte=0,lte=1000"`
	FeeCents       *int64  `json:"fee_cents,omitempty" validate:"omitempty,gte=0"`
	IsActive       *bool   `json:"is_active,omitempty"`
}
