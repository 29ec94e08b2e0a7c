// Package identity reconstructs the acting principal from signed request
// claims and exposes it to the rest of the application as a TenantContext.
package identity

import (
	"context"

	"github.com/edumatrix/edumatrix/internal/roles"
)

// Principal is the authenticated actor of one request. It is rebuilt from
// verified claims on every request and never mutated afterwards.
type Principal struct {
	UserID   string
	CenterID *int64
	Roles    []string
}

// IsSuperTenant reports whether the principal holds the cross-center role.
func (p Principal) IsSuperTenant() bool {
	return roles.Contains(p.Roles, roles.SuperAdmin)
}

// IsTenantAdmin reports whether the principal administers its center.
func (p Principal) IsTenantAdmin() bool {
	return roles.Contains(p.Roles, roles.CenterAdmin)
}

type principalContextKey struct{}

// WithPrincipal stores the principal in ctx.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalContextKey{}, p)
}

// PrincipalFromContext returns the principal attached by the authenticator.
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalContextKey{}).(Principal)
	if !ok || p.UserID == "" {
		return Principal{}, false
	}
	return p, true
}
