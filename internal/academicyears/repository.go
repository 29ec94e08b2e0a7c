package academicyears

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/edumatrix/edumatrix/internal/platform/db"
	"github.com/edumatrix/edumatrix/internal/platform/httpx"
	"github.com/edumatrix/edumatrix/internal/shared"
)

const yearColumns = `id, center_id, name, start_date, end_date, is_current, created_at, updated_at`

// Repository provides PostgreSQL backed persistence for academic years.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Get returns a non-deleted academic year.
func (r *Repository) Get(ctx context.Context, id int64) (AcademicYear, error) {
	y, err := scanYear(r.pool.QueryRow(ctx, `SELECT `+yearColumns+` FROM academic_years WHERE id = $1 AND NOT is_deleted`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return AcademicYear{}, fmt.Errorf("academic year %d: %w", id, httpx.ErrNotFound)
	}
	return y, err
}

// List returns academic years, newest first.
func (r *Repository) List(ctx context.Context, filters shared.ListFilters) ([]AcademicYear, int, error) {
	where := "WHERE NOT is_deleted"
	args := []any{}
	if filters.CenterID != nil {
		where += " AND center_id = $1"
		args = append(args, *filters.CenterID)
	}

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM academic_years "+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}
	query := fmt.Sprintf(`SELECT %s FROM academic_years %s ORDER BY start_date DESC, id DESC LIMIT $%d OFFSET $%d`,
		yearColumns, where, len(args)+1, len(args)+2)
	rows, err := r.pool.Query(ctx, query, append(args, filters.Limit(), filters.Offset())...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []AcademicYear
	for rows.Next() {
		y, err := scanYear(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, y)
	}
	return out, total, rows.Err()
}

// Create inserts a year. When it is current, the center's previous current
// year is cleared in the same transaction.
func (r *Repository) Create(ctx context.Context, y AcademicYear) (AcademicYear, error) {
	var created AcademicYear
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		if y.IsCurrent {
			if err := clearCurrent(ctx, tx, y.CenterID, 0); err != nil {
				return err
			}
		}
		var err error
		created, err = scanYear(tx.QueryRow(ctx, `
			INSERT INTO academic_years (center_id, name, start_date, end_date, is_current)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING `+yearColumns,
			y.CenterID, y.Name, y.StartDate, y.EndDate, y.IsCurrent))
		return err
	})
	if db.IsUniqueViolation(err) {
		return AcademicYear{}, fmt.Errorf("%w: academic year %q already exists", httpx.ErrDuplicate, y.Name)
	}
	return created, err
}

// Update writes mutable fields; center_id is left untouched.
func (r *Repository) Update(ctx context.Context, y AcademicYear) (AcademicYear, error) {
	var updated AcademicYear
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		if y.IsCurrent {
			if err := clearCurrent(ctx, tx, y.CenterID, y.ID); err != nil {
				return err
			}
		}
		var err error
		updated, err = scanYear(tx.QueryRow(ctx, `
			UPDATE academic_years
			SET name = $2, start_date = $3, end_date = $4, is_current = $5, updated_at = NOW()
			WHERE id = $1 AND NOT is_deleted
			RETURNING `+yearColumns,
			y.ID, y.Name, y.StartDate, y.EndDate, y.IsCurrent))
		return err
	})
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return AcademicYear{}, fmt.Errorf("academic year %d: %w", y.ID, httpx.ErrNotFound)
	case db.IsUniqueViolation(err):
		return AcademicYear{}, fmt.Errorf("%w: academic year %q already exists", httpx.ErrDuplicate, y.Name)
	}
	return updated, err
}

// SoftDelete flags the year as deleted.
func (r *Repository) SoftDelete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `UPDATE academic_years SET is_deleted = TRUE, is_current = FALSE, updated_at = NOW() WHERE id = $1 AND NOT is_deleted`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("academic year %d: %w", id, httpx.ErrNotFound)
	}
	return nil
}

func clearCurrent(ctx context.Context, tx db.DBTX, centerID, exceptID int64) error {
	_, err := tx.Exec(ctx, `UPDATE academic_years SET is_current = FALSE, updated_at = NOW() WHERE center_id = $1 AND id <> $2 AND is_current`, centerID, exceptID)
	return err
}

func scanYear(row pgx.Row) (AcademicYear, error) {
	var y AcademicYear
	err := row.Scan(&y.ID, &y.CenterID, &y.Name, &y.StartDate, &y.EndDate, &y.IsCurrent, &y.CreatedAt, &y.UpdatedAt)
	return y, err
}

var _ RepositoryPort = (*Repository)(nil)
