package identity

import (
	"context"
	"fmt"

	"github.com/edumatrix/edumatrix/internal/platform/httpx"
)

// RoleStore returns the roles currently assigned to a user, in assignment
// order. It is the source of truth when a token's role claims are stale.
type RoleStore interface {
	UserRoles(ctx context.Context, userID string) ([]string, error)
}

// TenantContext answers questions about the acting principal of one request.
type TenantContext struct {
	principal *Principal
	store     RoleStore
}

// NewTenantContext builds a TenantContext. A nil principal means the request is anonymous.
func NewTenantContext(p *Principal, store RoleStore) *TenantContext {
	return &TenantContext{principal: p, store: store}
}

// FromContext builds a TenantContext from the principal stored in ctx.
func FromContext(ctx context.Context, store RoleStore) *TenantContext {
	if p, ok := PrincipalFromContext(ctx); ok {
		return NewTenantContext(&p, store)
	}
	return NewTenantContext(nil, store)
}

// Authenticated reports whether a principal is present.
func (c *TenantContext) Authenticated() bool {
	return c != nil && c.principal != nil && c.principal.UserID != ""
}

// CurrentUserID returns the principal's user id.
func (c *TenantContext) CurrentUserID() (string, error) {
	if !c.Authenticated() {
		return "", httpx.ErrUnauthenticated
	}
	return c.principal.UserID, nil
}

// CurrentTenantID returns the principal's center. Super admins and
// unassigned users report false; that is not an error.
func (c *TenantContext) CurrentTenantID() (int64, bool) {
	if !c.Authenticated() || c.principal.IsSuperTenant() || c.principal.CenterID == nil {
		return 0, false
	}
	return *c.principal.CenterID, true
}

// IsSuperTenant reports whether the principal may act across centers.
func (c *TenantContext) IsSuperTenant() bool {
	return c.Authenticated() && c.principal.IsSuperTenant()
}

// IsTenantAdmin reports whether the principal administers its center.
func (c *TenantContext) IsTenantAdmin() bool {
	return c.Authenticated() && c.principal.IsTenantAdmin()
}

// ClaimedRoles returns the roles carried by the token without a store lookup.
func (c *TenantContext) ClaimedRoles() []string {
	if !c.Authenticated() {
		return nil
	}
	out := make([]string, len(c.principal.Roles))
	copy(out, c.principal.Roles)
	return out
}

// CurrentUserRoles fetches the principal's full role set from the identity
// store. Without a store the claimed roles are returned.
func (c *TenantContext) CurrentUserRoles(ctx context.Context) ([]string, error) {
	userID, err := c.CurrentUserID()
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if c.store == nil {
		return c.ClaimedRoles(), nil
	}
	assigned, err := c.store.UserRoles(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("identity: load roles for user %s: %w", userID, err)
	}
	return assigned, nil
}
