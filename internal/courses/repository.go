package courses

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/edumatrix/edumatrix/internal/platform/db"
	"github.com/edumatrix/edumatrix/internal/platform/httpx"
	"github.com/edumatrix/edumatrix/internal/shared"
)

const courseColumns = `id, center_id, code, name, description, teacher_id, academic_year_id, capacity, fee_cents, is_active, created_at, updated_at`

// Repository provides PostgreSQL backed persistence for courses.
type Repository struct {
	db db.DBTX
}

// NewRepository constructs a repository.
func NewRepository(conn db.DBTX) *Repository {
	return &Repository{db: conn}
}

// Get returns a non-deleted course.
func (r *Repository) Get(ctx context.Context, id int64) (Course, error) {
	c, err := scanCourse(r.db.QueryRow(ctx, `SELECT `+courseColumns+` FROM courses WHERE id = $1 AND NOT is_deleted`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Course{}, fmt.Errorf("course %d: %w", id, httpx.ErrNotFound)
	}
	return c, err
}

// List returns a page of courses.
func (r *Repository) List(ctx context.Context, filters shared.ListFilters) ([]Course, int, error) {
	conditions := []string{"NOT is_deleted"}
	var args []any
	add := func(cond string, v any) {
		args = append(args, v)
		conditions = append(conditions, fmt.Sprintf(cond, len(args)))
	}
	if filters.CenterID != nil {
		add("center_id = $%d", *filters.CenterID)
	}
	if filters.IsActive != nil {
		add("is_active = $%d", *filters.IsActive)
	}
	if filters.Search != "" {
		args = append(args, "%"+filters.Search+"%")
		conditions = append(conditions, fmt.Sprintf("(code ILIKE $%[1]d OR name ILIKE $%[1]d)", len(args)))
	}
	where := "WHERE " + strings.Join(conditions, " AND ")

	var total int
	if err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM courses "+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}
	query := fmt.Sprintf(`SELECT %s FROM courses %s ORDER BY code, id LIMIT $%d OFFSET $%d`, courseColumns, where, len(args)+1, len(args)+2)
	rows, err := r.db.Query(ctx, query, append(args, filters.Limit(), filters.Offset())...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Course
	for rows.Next() {
		c, err := scanCourse(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, c)
	}
	return out, total, rows.Err()
}

// Create inserts a course.
func (r *Repository) Create(ctx context.Context, c Course) (Course, error) {
	created, err := scanCourse(r.db.QueryRow(ctx, `
		INSERT INTO courses (center_id, code, name, description, teacher_id, academic_year_id, capacity, fee_cents, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING `+courseColumns,
		c.CenterID, c.Code, c.Name, c.Description, c.TeacherID, c.AcademicYearID, c.Capacity, c.FeeCents, c.IsActive))
	if db.IsUniqueViolation(err) {
		return Course{}, fmt.Errorf("%w: course code %q already used in this center", httpx.ErrDuplicate, c.Code)
	}
	return created, err
}

// Update writes mutable fields; code and center_id are immutable.
func (r *Repository) Update(ctx context.Context, c Course) (Course, error) {
	updated, err := scanCourse(r.db.QueryRow(ctx, `
		UPDATE courses
		SET name = $2, description = $3, teacher_id = $4, academic_year_id = $5, capacity = $6, fee_cents = $7, is_active = $8, updated_at = NOW()
		WHERE id = $1 AND NOT is_deleted
		RETURNING `+courseColumns,
		c.ID, c.Name, c.Description, c.TeacherID, c.AcademicYearID, c.Capacity, c.FeeCents, c.IsActive))
	if errors.Is(err, pgx.ErrNoRows) {
		return Course{}, fmt.Errorf("course %d: %w", c.ID, httpx.ErrNotFound)
	}
	return updated, err
}

// SoftDelete flags the course as deleted.
func (r *Repository) SoftDelete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `UPDATE courses SET is_deleted = TRUE, updated_at = NOW() WHERE id = $1 AND NOT is_deleted`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("course %d: %w", id, httpx.ErrNotFound)
	}
	return nil
}

// TeacherCenter returns the center owning a teacher.
func (r *Repository) TeacherCenter(ctx context.Context, teacherID int64) (int64, error) {
	return r.ownerOf(ctx, "teachers", "teacher", teacherID)
}

// AcademicYearCenter returns the center owning an academic year.
func (r *Repository) AcademicYearCenter(ctx context.Context, yearID int64) (int64, error) {
	return r.ownerOf(ctx, "academic_years", "academic year", yearID)
}

// CountByCenter counts active courses of a center.
func (r *Repository) CountByCenter(ctx context.Context, centerID int64) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM courses WHERE center_id = $1 AND is_active AND NOT is_deleted`, centerID).Scan(&n)
	return n, err
}

func (r *Repository) ownerOf(ctx context.Context, table, label string, id int64) (int64, error) {
	var centerID int64
	err := r.db.QueryRow(ctx, `SELECT center_id FROM `+table+` WHERE id = $1 AND NOT is_deleted`, id).Scan(&centerID)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, fmt.Errorf("%w: %s %d does not exist", httpx.ErrValidation, label, id)
	}
	return centerID, err
}

func scanCourse(row pgx.Row) (Course, error) {
	var c Course
	err := row.Scan(&c.ID, &c.CenterID, &c.Code, &c.Name, &c.Description, &c.TeacherID, &c.AcademicYearID,
		&c.Capacity, &c.FeeCents, &c.IsActive, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

var _ RepositoryPort = (*Repository)(nil)
