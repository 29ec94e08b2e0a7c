package users

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/edumatrix/edumatrix/internal/platform/httpx"
	"github.com/edumatrix/edumatrix/internal/roles"
	"github.com/edumatrix/edumatrix/internal/shared"
	"github.com/edumatrix/edumatrix/internal/tenant"
)

// RepositoryPort defines data access methods for users.
type RepositoryPort interface {
	Get(ctx context.Context, id int64) (User, error)
	ListUsers(ctx context.Context, filters shared.ListFilters) ([]User, int, error)
	Create(ctx context.Context, u User, passwordHash string) (User, error)
	ReplaceRoles(ctx context.Context, userID int64, roles []string) error
	SetActive(ctx context.Context, userID int64, active bool) error
}

// AuditPort records role changes.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Service handles user business logic.
type Service struct {
	repo     RepositoryPort
	audit    AuditPort
	logger   *slog.Logger
	hashCost int
}

// NewService builds Service instance. audit and logger may be nil.
func NewService(repo RepositoryPort, audit AuditPort, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{repo: repo, audit: audit, logger: logger, hashCost: bcrypt.DefaultCost}
}

// ListUsers returns users visible to the caller.
func (s *Service) ListUsers(ctx context.Context, filters shared.ListFilters) ([]User, shared.Pagination, error) {
	scope, err := tenant.FromContext(ctx).ListScope(filters.CenterID)
	if err != nil {
		return nil, shared.Pagination{}, err
	}
	filters.CenterID = scope
	items, total, err := s.repo.ListUsers(ctx, filters)
	if err != nil {
		return nil, shared.Pagination{}, fmt.Errorf("list users: %w", err)
	}
	return items, shared.NewPagination(filters.Page, filters.Limit(), total), nil
}

// Get returns a user of the caller's center.
func (s *Service) Get(ctx context.Context, id int64) (User, error) {
	u, err := s.repo.Get(ctx, id)
	if err != nil {
		return User{}, err
	}
	if err := s.checkOwnership(ctx, u); err != nil {
		return User{}, err
	}
	return u, nil
}

// Create adds a user to the caller's center.
func (s *Service) Create(ctx context.Context, req CreateUserRequest) (User, error) {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Name = strings.TrimSpace(req.Name)
	if err := shared.Validate(req); err != nil {
		return User{}, err
	}
	g := tenant.FromContext(ctx)
	assigned, err := parseAssignable(g.IsSuperTenant(), req.Roles)
	if err != nil {
		return User{}, err
	}
	var centerID *int64
	// A super admin account lives outside every center.
	if !roles.Contains(assigned, roles.SuperAdmin) {
		id, err := g.ResolveCenterForCreate(req.CenterID)
		if err != nil {
			return User{}, err
		}
		centerID = &id
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.hashCost)
	if err != nil {
		return User{}, fmt.Errorf("hash password: %w", err)
	}
	u, err := s.repo.Create(ctx, User{
		CenterID: centerID,
		Email:    req.Email,
		Name:     req.Name,
		Roles:    assigned,
	}, string(hash))
	if err != nil {
		return User{}, err
	}
	s.record(ctx, "create", u, map[string]any{"roles": assigned})
	return u, nil
}

// AssignRoles replaces the roles of a user in the caller's center. Only a
// super admin may grant SuperAdmin.
func (s *Service) AssignRoles(ctx context.Context, id int64, req AssignRolesRequest) (User, error) {
	if err := shared.Validate(req); err != nil {
		return User{}, err
	}
	g := tenant.FromContext(ctx)
	assigned, err := parseAssignable(g.IsSuperTenant(), req.Roles)
	if err != nil {
		return User{}, err
	}
	u, err := s.Get(ctx, id)
	if err != nil {
		return User{}, err
	}
	if u.CenterID == nil && !roles.Contains(assigned, roles.SuperAdmin) {
		return User{}, fmt.Errorf("%w: user has no center; assign one before granting center roles", httpx.ErrValidation)
	}
	if err := s.repo.ReplaceRoles(ctx, id, assigned); err != nil {
		return User{}, fmt.Errorf("assign roles: %w", err)
	}
	previous := u.Roles
	u.Roles = assigned
	s.record(ctx, "assign_roles", u, map[string]any{"from": previous, "to": assigned})
	return u, nil
}

// Deactivate blocks a user from signing in. Callers cannot lock themselves out.
func (s *Service) Deactivate(ctx context.Context, id int64) error {
	actor, err := tenant.FromContext(ctx).UserID()
	if err != nil {
		return err
	}
	if actor == strconv.FormatInt(id, 10) {
		return fmt.Errorf("%w: cannot deactivate yourself", httpx.ErrBadRequest)
	}
	u, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.SetActive(ctx, id, false); err != nil {
		return err
	}
	s.record(ctx, "deactivate", u, nil)
	return nil
}

func (s *Service) checkOwnership(ctx context.Context, u User) error {
	g := tenant.FromContext(ctx)
	if g.IsSuperTenant() {
		return nil
	}
	if u.CenterID == nil {
		return fmt.Errorf("%w: user belongs to another center", httpx.ErrForbidden)
	}
	return g.ValidateTenantAccess(*u.CenterID, "user")
}

func parseAssignable(callerIsSuper bool, raw []string) ([]string, error) {
	seen := make(map[roles.Role]struct{}, len(raw))
	out := make([]string, 0, len(raw))
	for _, name := range raw {
		role, ok := roles.Parse(name)
		if !ok {
			return nil, fmt.Errorf("%w: unknown role %q", httpx.ErrValidation, name)
		}
		if !roles.CanAssign(callerIsSuper, role) {
			return nil, fmt.Errorf("%w: role %s cannot be granted by this user", httpx.ErrForbidden, role)
		}
		if _, dup := seen[role]; dup {
			continue
		}
		seen[role] = struct{}{}
		out = append(out, string(role))
	}
	return out, nil
}

func (s *Service) record(ctx context.Context, action string, u User, meta map[string]any) {
	if s.audit == nil {
		return
	}
	actor, _ := tenant.FromContext(ctx).UserID()
	err := s.audit.Record(ctx, shared.AuditLog{
		ActorID:  actor,
		CenterID: u.CenterID,
		Action:   action,
		Entity:   "user",
		EntityID: strconv.FormatInt(u.ID, 10),
		Meta:     meta,
	})
	if err != nil {
		s.logger.Warn("audit user", slog.String("action", action), slog.Int64("user_id", u.ID), slog.Any("error", err))
	}
}
