package users

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/edumatrix/edumatrix/internal/platform/db"
	"github.com/edumatrix/edumatrix/internal/platform/httpx"
	"github.com/edumatrix/edumatrix/internal/shared"
)

const userSelect = `
	SELECT u.id, u.center_id, u.email, u.name, u.is_active, u.created_at, u.updated_at,
	       COALESCE(array_agg(ur.role ORDER BY ur.assigned_at, ur.id) FILTER (WHERE ur.role IS NOT NULL), '{}')
	FROM users u
	LEFT JOIN user_roles ur ON ur.user_id = u.id`

// Repository provides PostgreSQL backed persistence for users and their
// role assignments.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// UserRoles returns the user's roles in assignment order. It backs the
// identity store consulted on every authorization decision.
func (r *Repository) UserRoles(ctx context.Context, userID string) ([]string, error) {
	id, err := strconv.ParseInt(userID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("users: invalid user id %q", userID)
	}
	rows, err := r.pool.Query(ctx, `SELECT role FROM user_roles WHERE user_id = $1 ORDER BY assigned_at, id`, id)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[string])
}

// Get returns one user with roles.
func (r *Repository) Get(ctx context.Context, id int64) (User, error) {
	u, err := scanUser(r.pool.QueryRow(ctx, userSelect+` WHERE u.id = $1 GROUP BY u.id`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, fmt.Errorf("user %d: %w", id, httpx.ErrNotFound)
	}
	return u, err
}

// ListUsers returns users matching filters.
func (r *Repository) ListUsers(ctx context.Context, filters shared.ListFilters) ([]User, int, error) {
	var conditions []string
	var args []any
	if filters.CenterID != nil {
		args = append(args, *filters.CenterID)
		conditions = append(conditions, fmt.Sprintf("u.center_id = $%d", len(args)))
	}
	if filters.IsActive != nil {
		args = append(args, *filters.IsActive)
		conditions = append(conditions, fmt.Sprintf("u.is_active = $%d", len(args)))
	}
	if filters.Search != "" {
		args = append(args, "%"+filters.Search+"%")
		conditions = append(conditions, fmt.Sprintf("(u.email ILIKE $%[1]d OR u.name ILIKE $%[1]d)", len(args)))
	}
	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM users u"+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}
	query := fmt.Sprintf(`%s%s GROUP BY u.id ORDER BY u.id LIMIT $%d OFFSET $%d`, userSelect, where, len(args)+1, len(args)+2)
	rows, err := r.pool.Query(ctx, query, append(args, filters.Limit(), filters.Offset())...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, u)
	}
	return out, total, rows.Err()
}

// Create inserts a user and its roles in one transaction.
func (r *Repository) Create(ctx context.Context, u User, passwordHash string) (User, error) {
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `
			INSERT INTO users (center_id, email, name, password_hash, is_active)
			VALUES ($1, $2, $3, $4, TRUE)
			RETURNING id, created_at, updated_at`,
			u.CenterID, u.Email, u.Name, passwordHash).Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)
		if err != nil {
			return err
		}
		return insertRoles(ctx, tx, u.ID, u.Roles)
	})
	if db.IsUniqueViolation(err) {
		return User{}, fmt.Errorf("%w: email %s already registered", httpx.ErrDuplicate, u.Email)
	}
	if err != nil {
		return User{}, err
	}
	u.IsActive = true
	return u, nil
}

// ReplaceRoles swaps the user's role assignments, keeping the given order.
func (r *Repository) ReplaceRoles(ctx context.Context, userID int64, roles []string) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM user_roles WHERE user_id = $1`, userID); err != nil {
			return err
		}
		return insertRoles(ctx, tx, userID, roles)
	})
}

// SetActive toggles login access.
func (r *Repository) SetActive(ctx context.Context, userID int64, active bool) error {
	tag, err := r.pool.Exec(ctx, `UPDATE users SET is_active = $2, updated_at = NOW() WHERE id = $1`, userID, active)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("user %d: %w", userID, httpx.ErrNotFound)
	}
	return nil
}

// CountByCenter counts active users of a center.
func (r *Repository) CountByCenter(ctx context.Context, centerID int64) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users WHERE center_id = $1 AND is_active`, centerID).Scan(&n)
	return n, err
}

// insertRoles writes one row per role. clock_timestamp advances per
// statement so assigned_at preserves the given order.
func insertRoles(ctx context.Context, tx db.DBTX, userID int64, roles []string) error {
	for _, role := range roles {
		if _, err := tx.Exec(ctx, `INSERT INTO user_roles (user_id, role, assigned_at) VALUES ($1, $2, clock_timestamp())`, userID, role); err != nil {
			return err
		}
	}
	return nil
}

func scanUser(row pgx.Row) (User, error) {
	var u User
	err := row.Scan(&u.ID, &u.CenterID, &u.Email, &u.Name, &u.IsActive, &u.CreatedAt, &u.UpdatedAt, &u.Roles)
	return u, err
}

var _ RepositoryPort = (*Repository)(nil)
