package students

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

const studentColumns = `id, center_id, first_name, last_name, email, phone, birth_date, is_active, created_at, updated_at`

// Repository provides PostgreSQL backed persistence for students.
type Repository struct {
	db db.DBTX
}

// NewRepository constructs a repository.
func NewRepository(conn db.DBTX) *Repository {
	return &Repository{db: conn}
}

// Get returns a non-deleted student.
func (r *Repository) Get(ctx context.Context, id int64) (Student, error) {
	row := r.db.QueryRow(ctx, `SELECT `+studentColumns+` FROM students WHERE id = $1 AND NOT is_deleted`, id)
	s, err := scanStudent(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Student{}, fmt.Errorf("student %d: %w", id, httpx.ErrNotFound)
	}
	return s, err
}

// List returns a page of students and the total match count.
func (r *Repository) List(ctx context.Context, filters shared.ListFilters) ([]Student, int, error) {
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
		conditions = append(conditions, fmt.Sprintf("(first_name ILIKE $%d OR last_name ILIKE $%d OR email ILIKE $%d)", argPos, argPos, argPos))
		args = append(args, "%"+filters.Search+"%")
		argPos++
	}
	where := "WHERE " + strings.Join(conditions, " AND ")

	var total int
	if err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM students "+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`SELECT %s FROM students %s ORDER BY last_name, first_name, id LIMIT $%d OFFSET $%d`,
		studentColumns, where, argPos, argPos+1)
	rows, err := r.db.Query(ctx, query, append(args, filters.Limit(), filters.Offset())...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Student
	for rows.Next() {
		s, err := scanStudent(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, s)
	}
	return out, total, rows.Err()
}

// Create inserts a student.
func (r *Repository) Create(ctx context.Context, s Student) (Student, error) {
	row := r.db.QueryRow(ctx, `
		INSERT INTO students (center_id, first_name, last_name, email, phone, birth_date, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+studentColumns,
		s.CenterID, s.FirstName, s.LastName, s.Email, s.Phone, s.BirthDate, s.IsActive)
	created, err := scanStudent(row)
	if db.IsUniqueViolation(err) {
		return Student{}, fmt.Errorf("%w: student email already registered", httpx.ErrDuplicate)
	}
	if db.IsForeignKeyViolation(err) {
		return Student{}, fmt.Errorf("%w: center %d does not exist", httpx.ErrValidation, s.CenterID)
	}
	return created, err
}

// Update writes mutable fields. center_id is never part of the statement.
func (r *Repository) Update(ctx context.Context, s Student) (Student, error) {
	row := r.db.QueryRow(ctx, `
		UPDATE students
		SET first_name = $2, last_name = $3, email = $4, phone = $5, birth_date = $6, is_active = $7, updated_at = NOW()
		WHERE id = $1 AND NOT is_deleted
		RETURNING `+studentColumns,
		s.ID, s.FirstName, s.LastName, s.Email, s.Phone, s.BirthDate, s.IsActive)
	updated, err := scanStudent(row)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return Student{}, fmt.Errorf("student %d: %w", s.ID, httpx.ErrNotFound)
	case db.IsUniqueViolation(err):
		return Student{}, fmt.Errorf("%w: student email already registered", httpx.ErrDuplicate)
	}
	return updated, err
}

// SoftDelete flags the student as deleted.
func (r *Repository) SoftDelete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `UPDATE students SET is_deleted = TRUE, updated_at = NOW() WHERE id = $1 AND NOT is_deleted`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("student %d: %w", id, httpx.ErrNotFound)
	}
	return nil
}

// CountByCenter counts active, non-deleted students of a center.
func (r *Repository) CountByCenter(ctx context.Context, centerID int64) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM students WHERE center_id = $1 AND is_active AND NOT is_deleted`, centerID).Scan(&n)
	return n, err
}

func scanStudent(row pgx.Row) (Student, error) {
	var s Student
	err := row.Scan(&s.ID, &s.CenterID, &s.FirstName, &s.LastName, &s.Email, &s.Phone, &s.BirthDate, &s.IsActive, &s.CreatedAt, &s.UpdatedAt)
	return s, err
}

var _ RepositoryPort = (*Repository)(nil)
