package teachers

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

const teacherColumns = `id, center_id, first_name, last_name, email, phone, specialty, hired_on, is_active, created_at, updated_at`

// Repository provides PostgreSQL backed persistence for teachers.
type Repository struct {
	db db.DBTX
}

// NewRepository constructs a repository.
func NewRepository(conn db.DBTX) *Repository {
	return &Repository{db: conn}
}

// Get returns a non-deleted teacher.
func (r *Repository) Get(ctx context.Context, id int64) (Teacher, error) {
	row := r.db.QueryRow(ctx, `SELECT `+teacherColumns+` FROM teachers WHERE id = $1 AND NOT is_deleted`, id)
	s, err := scanTeacher(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Teacher{}, fmt.Errorf("teacher %d: %w", id, httpx.ErrNotFound)
	}
	return s, err
}

// List returns a page of teachers and the total match count.
func (r *Repository) List(ctx context.Context, filters shared.ListFilters) ([]Teacher, int, error) {
	conditions := []string{"NOT is_deleted"}
	var args []any
	argPos := 1

	if filters.CenterID != nil {
		conditions = append(conditions, fmt.Sprintf("center_id = $%d", argPos))
		args = append(args, *filters.CenterID)
		argPos++
	}
	if filters.IsActive != nil {
		conditions = append(conditions, fmt.Sprintf("is_active = $%d", argPos))
		args = append(args, *filters.IsActive)
		argPos++
	}
	if filters.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(first_name ILIKE $%d OR last_name ILIKE $%d OR specialty ILIKE $%d)", argPos, argPos, argPos))
		args = append(args, "%"+filters.Search+"%")
		argPos++
	}
	where := "WHERE " + strings.Join(conditions, " AND ")

	var total int
	if err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM teachers "+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`SELECT %s FROM teachers %s ORDER BY last_name, first_name, id LIMIT $%d OFFSET $%d`,
		teacherColumns, where, argPos, argPos+1)
	rows, err := r.db.Query(ctx, query, append(args, filters.Limit(), filters.Offset())...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Teacher
	for rows.Next() {
		s, err := scanTeacher(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, s)
	}
	return out, total, rows.Err()
}

// Create inserts a teacher.
func (r *Repository) Create(ctx context.Context, s Teacher) (Teacher, error) {
	row := r.db.QueryRow(ctx, `
		INSERT INTO teachers (center_id, first_name, last_name, email, phone, specialty, hired_on, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+teacherColumns,
		s.CenterID, s.FirstName, s.LastName, s.Email, s.Phone, s.Specialty, s.HiredOn, s.IsActive)
	created, err := scanTeacher(row)
	if db.IsUniqueViolation(err) {
		return Teacher{}, fmt.Errorf("%w: teacher email already in use", httpx.ErrDuplicate)
	}
	if db.IsForeignKeyViolation(err) {
		return Teacher{}, fmt.Errorf("%w: center %d does not exist", httpx.ErrValidation, s.CenterID)
	}
	return created, err
}

// Update writes mutable fields. center_id is never part of the statement.
func (r *Repository) Update(ctx context.Context, s Teacher) (Teacher, error) {
	row := r.db.QueryRow(ctx, `
		UPDATE teachers
		SET first_name = $2, last_name = $3, email = $4, phone = $5, specialty = $6, hired_on = $7, is_active = $8, updated_at = NOW()
		WHERE id = $1 AND NOT is_deleted
		RETURNING `+teacherColumns,
		s.ID, s.FirstName, s.LastName, s.Email, s.Phone, s.Specialty, s.HiredOn, s.IsActive)
	updated, err := scanTeacher(row)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return Teacher{}, fmt.Errorf("teacher %d: %w", s.ID, httpx.ErrNotFound)
	case db.IsUniqueViolation(err):
		return Teacher{}, fmt.Errorf("%w: teacher email already in use", httpx.ErrDuplicate)
	}
	return updated, err
}

// SoftDelete flags the teacher as deleted.
func (r *Repository) SoftDelete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `UPDATE teachers SET is_deleted = TRUE, updated_at = NOW() WHERE id = $1 AND NOT is_deleted`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("teacher %d: %w", id, httpx.ErrNotFound)
	}
	return nil
}

// CountByCenter counts active, non-deleted teachers of a center.
func (r *Repository) CountByCenter(ctx context.Context, centerID int64) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM teachers WHERE center_id = $1 AND is_active AND NOT is_deleted`, centerID).Scan(&n)
	return n, err
}

func scanTeacher(row pgx.Row) (Teacher, error) {
	var s Teacher
	err := row.Scan(&s.ID, &s.CenterID, &s.FirstName, &s.LastName, &s.Email, &s.Phone, &s.Specialty, &s.HiredOn, &s.IsActive, &s.CreatedAt, &s.UpdatedAt)
	return s, err
}

var _ RepositoryPort = (*Repository)(nil)
