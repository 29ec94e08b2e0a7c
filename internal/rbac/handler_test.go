package rbac

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edumatrix/edumatrix/internal/identity"
	"github.com/edumatrix/edumatrix/internal/platform/httpx"
	"github.com/edumatrix/edumatrix/internal/roles"
)

type stubRoleStore struct {
	roles []string
	err   error
	calls int
}

func (s *stubRoleStore) UserRoles(ctx context.Context, userID string) ([]string, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.roles, nil
}

func centerID(id int64) *int64 { return &id }

func tenantContext(center *int64, store identity.RoleStore, claimed ...string) *identity.TenantContext {
	return identity.NewTenantContext(&identity.Principal{UserID: "42", CenterID: center, Roles: claimed}, store)
}

func TestEvaluateScenarios(t *testing.T) {
	h := NewCenterAccessHandler(ResolveFirstRole, nil)
	ctx := context.Background()

	cases := []struct {
		role    string
		req     Requirement
		allowed bool
	}{
		{"Employee", Requirement{EntityStudent, ActionDelete}, false},
		{"Employee", Requirement{EntityStudent, ActionView}, true},
		{"Manager", Requirement{EntityAcademicYear, ActionAdd}, false},
		{"Manager", Requirement{EntityCourse, ActionDelete}, true},
		{"CenterAdmin", Requirement{EntityUser, ActionDelete}, true},
	}
	for _, tc := range cases {
		store := &stubRoleStore{roles: []string{tc.role}}
		decision, err := h.Evaluate(ctx, tenantContext(centerID(7), store, tc.role), tc.req)
		require.NoError(t, err)
		assert.Equal(t, tc.allowed, decision.Allowed, "%s %s", tc.role, tc.req)
		assert.Equal(t, roles.Role(tc.role), decision.Role)
		if !tc.allowed {
			assert.NotEmpty(t, decision.Reason)
		}
	}
}

func TestEvaluateSuperTenantBypass(t *testing.T) {
	h := NewCenterAccessHandler(ResolveFirstRole, nil)
	store := &stubRoleStore{err: errors.New("must not be called")}
	tc := tenantContext(nil, store, "SuperAdmin")

	for _, entity := range append(Entities(), EntityCenter, Entity("Unknown")) {
		for _, action := range Actions() {
			decision, err := h.Evaluate(context.Background(), tc, Requirement{entity, action})
			require.NoError(t, err)
			assert.True(t, decision.Allowed)
		}
	}
	assert.Zero(t, store.calls)
}

func TestEvaluateNoCenterDenies(t *testing.T) {
	h := NewCenterAccessHandler(ResolveFirstRole, nil)
	store := &stubRoleStore{roles: []string{"CenterAdmin"}}

	decision, err := h.Evaluate(context.Background(), tenantContext(nil, store, "CenterAdmin"), Requirement{EntityStudent, ActionView})
	require.NoError(t, err)
	assert.False(t, decision.Allowed)
	assert.Equal(t, "no center assigned", decision.Reason)
	assert.Zero(t, store.calls)
}

func TestEvaluateAnonymous(t *testing.T) {
	h := NewCenterAccessHandler(ResolveFirstRole, nil)
	decision, err := h.Evaluate(context.Background(), identity.NewTenantContext(nil, nil), Requirement{EntityStudent, ActionView})
	require.ErrorIs(t, err, httpx.ErrUnauthenticated)
	assert.False(t, decision.Allowed)
}

func TestEvaluateUnknownRoleDenies(t *testing.T) {
	h := NewCenterAccessHandler(ResolveFirstRole, nil)
	store := &stubRoleStore{roles: []string{"Auditor"}}

	decision, err := h.Evaluate(context.Background(), tenantContext(centerID(7), store), Requirement{EntityStudent, ActionView})
	require.NoError(t, err)
	assert.False(t, decision.Allowed)
	assert.Contains(t, decision.Reason, "Auditor")
}

func TestEvaluateNoRolesDenies(t *testing.T) {
	h := NewCenterAccessHandler(ResolveFirstRole, nil)
	store := &stubRoleStore{}

	decision, err := h.Evaluate(context.Background(), tenantContext(centerID(7), store), Requirement{EntityStudent, ActionView})
	require.NoError(t, err)
	assert.False(t, decision.Allowed)
}

func TestEvaluateStoreRolesWinOverClaims(t *testing.T) {
	h := NewCenterAccessHandler(ResolveFirstRole, nil)
	// Token still claims Manager; the store has demoted the user.
	store := &stubRoleStore{roles: []string{"Employee"}}

	decision, err := h.Evaluate(context.Background(), tenantContext(centerID(7), store, "Manager"), Requirement{EntityCourse, ActionDelete})
	require.NoError(t, err)
	assert.False(t, decision.Allowed)
	assert.Equal(t, 1, store.calls)
}

func TestEvaluateFirstRoleOnly(t *testing.T) {
	var logs bytes.Buffer
	h := NewCenterAccessHandler(ResolveFirstRole, slog.New(slog.NewTextHandler(&logs, nil)))
	store := &stubRoleStore{roles: []string{"Employee", "CenterAdmin"}}

	decision, err := h.Evaluate(context.Background(), tenantContext(centerID(7), store), Requirement{EntityStudent, ActionDelete})
	require.NoError(t, err)
	assert.False(t, decision.Allowed)
	assert.Equal(t, roles.Employee, decision.Role)
	assert.Contains(t, logs.String(), "evaluating first role only")
	assert.Contains(t, logs.String(), "CenterAdmin")
}

func TestEvaluateUnionOfRoles(t *testing.T) {
	h := NewCenterAccessHandler(ResolveAllRoles, nil)
	store := &stubRoleStore{roles: []string{"Auditor", "Employee", "CenterAdmin"}}
	tc := tenantContext(centerID(7), store)

	decision, err := h.Evaluate(context.Background(), tc, Requirement{EntityStudent, ActionDelete})
	require.NoError(t, err)
	assert.True(t, decision.Allowed)
	assert.Equal(t, roles.CenterAdmin, decision.Role)

	store.roles = []string{"Employee", "Manager"}
	decision, err = h.Evaluate(context.Background(), tc, Requirement{EntityAcademicYear, ActionEdit})
	require.NoError(t, err)
	assert.False(t, decision.Allowed)
	assert.Equal(t, roles.Employee, decision.Role)

	store.roles = []string{"Auditor"}
	decision, err = h.Evaluate(context.Background(), tc, Requirement{EntityStudent, ActionView})
	require.NoError(t, err)
	assert.False(t, decision.Allowed)
}

func TestEvaluateStoreErrorFailsClosed(t *testing.T) {
	h := NewCenterAccessHandler(ResolveFirstRole, nil)
	boom := errors.New("connection reset")
	store := &stubRoleStore{err: boom}

	decision, err := h.Evaluate(context.Background(), tenantContext(centerID(7), store), Requirement{EntityStudent, ActionView})
	require.ErrorIs(t, err, boom)
	assert.False(t, decision.Allowed)
}

func TestEvaluateCanceledContext(t *testing.T) {
	h := NewCenterAccessHandler(ResolveFirstRole, nil)
	store := &stubRoleStore{roles: []string{"CenterAdmin"}}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	decision, err := h.Evaluate(ctx, tenantContext(centerID(7), store), Requirement{EntityStudent, ActionView})
	require.ErrorIs(t, err, context.Canceled)
	assert.False(t, decision.Allowed)
	assert.Zero(t, store.calls)
}

func TestEvaluateManySingleLookup(t *testing.T) {
	h := NewCenterAccessHandler(ResolveFirstRole, nil)
	store := &stubRoleStore{roles: []string{"Employee"}}
	reqs := []Requirement{{EntityStudent, ActionView}, {EntityStudent, ActionDelete}, {EntityUser, ActionView}}

	decisions, err := h.EvaluateMany(context.Background(), tenantContext(centerID(7), store), reqs)
	require.NoError(t, err)
	require.Len(t, decisions, 3)
	assert.True(t, decisions[0].Allowed)
	assert.False(t, decisions[1].Allowed)
	assert.False(t, decisions[2].Allowed)
	assert.Equal(t, 1, store.calls)
}

func TestParseRoleResolution(t *testing.T) {
	mode, err := ParseRoleResolution("")
	require.NoError(t, err)
	assert.Equal(t, ResolveFirstRole, mode)

	mode, err = ParseRoleResolution(" Union ")
	require.NoError(t, err)
	assert.Equal(t, ResolveAllRoles, mode)

	_, err = ParseRoleResolution("any")
	assert.Error(t, err)
}
