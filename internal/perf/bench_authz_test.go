package perf

import (
	"context"
	"testing"

	"github.com/edumatrix/edumatrix/internal/identity"
	"github.com/edumatrix/edumatrix/internal/rbac"
	"github.com/edumatrix/edumatrix/internal/tenant"
)

type fixedRoles []string

func (f fixedRoles) UserRoles(ctx context.Context, userID string) ([]string, error) {
	return f, nil
}

func centerUser(role string) *identity.TenantContext {
	center := int64(7)
	return identity.NewTenantContext(&identity.Principal{UserID: "12", CenterID: &center, Roles: []string{role}}, fixedRoles{role})
}

func BenchmarkEvaluateSingle(b *testing.B) {
	h := rbac.NewCenterAccessHandler(rbac.ResolveFirstRole, nil)
	tc := centerUser("Employee")
	req := rbac.Requirement{Entity: rbac.EntityStudent, Action: rbac.ActionView}
	ctx := context.Background()
	b.ReportAllocs()
	for b.Loop() {
		if _, err := h.Evaluate(ctx, tc, req); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkEvaluateGridUnion(b *testing.B) {
	h := rbac.NewCenterAccessHandler(rbac.ResolveAllRoles, nil)
	tc := centerUser("Manager")
	var reqs []rbac.Requirement
	for _, row := range rbac.Grid() {
		reqs = append(reqs, rbac.Requirement{Entity: row.Entity, Action: row.Action})
	}
	ctx := context.Background()
	b.ReportAllocs()
	for b.Loop() {
		if _, err := h.EvaluateMany(ctx, tc, reqs); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkValidateTenantAccess(b *testing.B) {
	g := tenant.NewGuard(centerUser("Employee"))
	b.ReportAllocs()
	for b.Loop() {
		if err := g.ValidateTenantAccess(7, "student"); err != nil {
			b.Fatal(err)
		}
	}
}
