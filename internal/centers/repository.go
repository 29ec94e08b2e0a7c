package centers

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/edumatrix/edumatrix/internal/platform/db"
	"github.com/edumatrix/edumatrix/internal/platform/httpx"
	"github.com/edumatrix/edumatrix/internal/shared"
)

const centerColumns = `id, code, name, email, phone, address, is_active, created_at, updated_at`

// Repository provides PostgreSQL backed persistence for centers.
type Repository struct {
	db db.DBTX
}

// NewRepository constructs a repository.
func NewRepository(conn db.DBTX) *Repository {
	return &Repository{db: conn}
}

// Get returns one center.
func (r *Repository) Get(ctx context.Context, id int64) (Center, error) {
	c, err := scanCenter(r.db.QueryRow(ctx, `SELECT `+centerColumns+` FROM centers WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Center{}, fmt.Errorf("center %d: %w", id, httpx.ErrNotFound)
	}
	return c, err
}

// List returns centers ordered by name.
func (r *Repository) List(ctx context.Context, filters shared.ListFilters) ([]Center, int, error) {
	where := "WHERE TRUE"
	var args []any
	if filters.IsActive != nil {
		args = append(args, *filters.IsActive)
		where += fmt.Sprintf(" AND is_active = $%d", len(args))
	}
	if filters.Search != "" {
		args = append(args, "%"+filters.Search+"%")
		where += fmt.Sprintf(" AND (code ILIKE $%[1]d OR name ILIKE $%[1]d)", len(args))
	}

	var total int
	if err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM centers "+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}
	query := fmt.Sprintf(`SELECT %s FROM centers %s ORDER BY name, id LIMIT $%d OFFSET $%d`, centerColumns, where, len(args)+1, len(args)+2)
	rows, err := r.db.Query(ctx, query, append(args, filters.Limit(), filters.Offset())...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var out []Center
	for rows.Next() {
		c, err := scanCenter(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, c)
	}
	return out, total, rows.Err()
}

// Create inserts a center.
func (r *Repository) Create(ctx context.Context, c Center) (Center, error) {
	created, err := scanCenter(r.db.QueryRow(ctx, `
		INSERT INTO centers (code, name, email, phone, address, is_active)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+centerColumns,
		c.Code, c.Name, c.Email, c.Phone, c.Address, c.IsActive))
	if db.IsUniqueViolation(err) {
		return Center{}, fmt.Errorf("%w: center code %q already exists", httpx.ErrDuplicate, c.Code)
	}
	return created, err
}

// Update writes the mutable fields.
func (r *Repository) Update(ctx context.Context, c Center) (Center, error) {
	updated, err := scanCenter(r.db.QueryRow(ctx, `
		UPDATE centers SET name = $2, email = $3, phone = $4, address = $5, is_active = $6, updated_at = NOW()
		WHERE id = $1
		RETURNING `+centerColumns,
		c.ID, c.Name, c.Email, c.Phone, c.Address, c.IsActive))
	if errors.Is(err, pgx.ErrNoRows) {
		return Center{}, fmt.Errorf("center %d: %w", c.ID, httpx.ErrNotFound)
	}
	return updated, err
}

func scanCenter(row pgx.Row) (Center, error) {
	var c Center
	err := row.Scan(&c.ID, &c.Code, &c.Name, &c.Email, &c.Phone, &c.Address, &c.IsActive, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

var _ RepositoryPort = (*Repository)(nil)
