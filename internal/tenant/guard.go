// Package tenant enforces center isolation inside business services, after
// the route-level permission check has already passed.
package tenant

import (
	"context"
	"fmt"

	"github.com/edumatrix/edumatrix/internal/identity"
	"github.com/edumatrix/edumatrix/internal/platform/httpx"
)

// Guard checks center ownership for the acting principal. It holds no state
// beyond the TenantContext and is built per call.
type Guard struct {
	tc *identity.TenantContext
}

// NewGuard wraps a TenantContext.
func NewGuard(tc *identity.TenantContext) Guard {
	return Guard{tc: tc}
}

// FromContext builds a Guard for the principal stored in ctx.
func FromContext(ctx context.Context) Guard {
	return NewGuard(identity.FromContext(ctx, nil))
}

// IsSuperTenant reports whether the caller acts across centers.
func (g Guard) IsSuperTenant() bool {
	return g.tc.IsSuperTenant()
}

// UserID returns the acting user id.
func (g Guard) UserID() (string, error) {
	return g.tc.CurrentUserID()
}

// RequireTenantID returns the caller's center. Super admins have no single
// center and get ErrBadRequest; unassigned users get ErrUnauthorized.
func (g Guard) RequireTenantID() (int64, error) {
	if !g.tc.Authenticated() {
		return 0, httpx.ErrUnauthenticated
	}
	if g.tc.IsSuperTenant() {
		return 0, fmt.Errorf("%w: operation requires a center scope", httpx.ErrBadRequest)
	}
	id, ok := g.tc.CurrentTenantID()
	if !ok {
		return 0, fmt.Errorf("%w: no center assigned", httpx.ErrUnauthorized)
	}
	return id, nil
}

// ValidateTenantAccess fails with ErrForbidden when the entity does not
// belong to the caller's center.
func (g Guard) ValidateTenantAccess(entityCenterID int64, label string) error {
	if g.tc.IsSuperTenant() {
		return nil
	}
	id, err := g.RequireTenantID()
	if err != nil {
		return err
	}
	if id != entityCenterID {
		return fmt.Errorf("%w: %s belongs to another center", httpx.ErrForbidden, label)
	}
	return nil
}

// ResolveCenterForCreate picks the center a new row is owned by. Center users
// always use their own center and may not name another; super admins must
// name one explicitly.
func (g Guard) ResolveCenterForCreate(requested *int64) (int64, error) {
	if g.tc.IsSuperTenant() {
		if requested == nil || *requested <= 0 {
			return 0, fmt.Errorf("%w: center_id is required", httpx.ErrValidation)
		}
		return *requested, nil
	}
	id, err := g.RequireTenantID()
	if err != nil {
		return 0, err
	}
	if requested != nil && *requested != id {
		return 0, fmt.Errorf("%w: cannot create records for another center", httpx.ErrForbidden)
	}
	return id, nil
}

// ListScope narrows list queries. Super admins see every center unless they
// ask for one; center users are always pinned to their own.
func (g Guard) ListScope(requested *int64) (*int64, error) {
	if g.tc.IsSuperTenant() {
		return requested, nil
	}
	id, err := g.RequireTenantID()
	if err != nil {
		return nil, err
	}
	return &id, nil
}
