package rbac

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/edumatrix/edumatrix/internal/identity"
	"github.com/edumatrix/edumatrix/internal/platform/httpx"
	"github.com/edumatrix/edumatrix/internal/roles"
)

// RoleResolution selects which of a principal's roles are evaluated.
type RoleResolution string

const (
	// ResolveFirstRole evaluates only the first assigned role.
	ResolveFirstRole RoleResolution = "first"
	// ResolveAllRoles grants when any assigned role is granted.
	ResolveAllRoles RoleResolution = "union"
)

// ParseRoleResolution validates a configured resolution mode.
func ParseRoleResolution(raw string) (RoleResolution, error) {
	switch RoleResolution(strings.ToLower(strings.TrimSpace(raw))) {
	case "", ResolveFirstRole:
		return ResolveFirstRole, nil
	case ResolveAllRoles:
		return ResolveAllRoles, nil
	default:
		return "", fmt.Errorf("rbac: unknown role resolution %q", raw)
	}
}

// CenterAccessHandler evaluates requirements against the permission table.
type CenterAccessHandler struct {
	resolution RoleResolution
	logger     *slog.Logger
}

// NewCenterAccessHandler constructs a handler. A nil logger discards output.
func NewCenterAccessHandler(resolution RoleResolution, logger *slog.Logger) *CenterAccessHandler {
	if resolution == "" {
		resolution = ResolveFirstRole
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &CenterAccessHandler{resolution: resolution, logger: logger}
}

// Evaluate decides req for the principal behind tc. Anonymous callers get
// httpx.ErrUnauthenticated; a failed role lookup returns its error together
// with a deny so callers that ignore the error still fail closed.
func (h *CenterAccessHandler) Evaluate(ctx context.Context, tc *identity.TenantContext, req Requirement) (Decision, error) {
	decisions, err := h.EvaluateMany(ctx, tc, []Requirement{req})
	return decisions[0], err
}

// EvaluateMany decides several requirements with a single role lookup.
func (h *CenterAccessHandler) EvaluateMany(ctx context.Context, tc *identity.TenantContext, reqs []Requirement) ([]Decision, error) {
	out := make([]Decision, len(reqs))
	fill := func(d Decision) []Decision {
		for i := range out {
			out[i] = d
		}
		return out
	}

	if !tc.Authenticated() {
		return fill(Decision{Reason: "unauthenticated"}), httpx.ErrUnauthenticated
	}
	if tc.IsSuperTenant() {
		return fill(Decision{Allowed: true, Reason: "super tenant", Role: roles.SuperAdmin}), nil
	}
	if _, ok := tc.CurrentTenantID(); !ok {
		return fill(Decision{Reason: "no center assigned"}), nil
	}

	assigned, err := tc.CurrentUserRoles(ctx)
	if err != nil {
		return fill(Decision{Reason: "role lookup failed"}), err
	}
	if len(assigned) == 0 {
		return fill(Decision{Reason: "no roles assigned"}), nil
	}

	if h.resolution == ResolveAllRoles {
		for i, req := range reqs {
			out[i] = h.evaluateAll(req, assigned)
		}
		return out, nil
	}

	if len(assigned) > 1 {
		userID, _ := tc.CurrentUserID()
		h.logger.Warn("rbac: evaluating first role only",
			slog.String("user_id", userID),
			slog.String("role", assigned[0]),
			slog.Any("ignored", assigned[1:]))
	}
	role, ok := roles.Parse(assigned[0])
	if !ok {
		return fill(Decision{Reason: fmt.Sprintf("unknown role %q", assigned[0])}), nil
	}
	for i, req := range reqs {
		out[i] = decide(req, role)
	}
	return out, nil
}

func (h *CenterAccessHandler) evaluateAll(req Requirement, assigned []string) Decision {
	var first roles.Role
	for _, raw := range assigned {
		role, ok := roles.Parse(raw)
		if !ok {
			continue
		}
		if first == "" {
			first = role
		}
		if Allowed(req.Entity, req.Action, role) {
			return Decision{Allowed: true, Role: role}
		}
	}
	if first == "" {
		return Decision{Reason: "no known role assigned"}
	}
	return Decision{Reason: fmt.Sprintf("no assigned role may %s", req), Role: first}
}

func decide(req Requirement, role roles.Role) Decision {
	if Allowed(req.Entity, req.Action, role) {
		return Decision{Allowed: true, Role: role}
	}
	return Decision{Reason: fmt.Sprintf("role %s may not %s", role, req), Role: role}
}
