package teachers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edumatrix/edumatrix/internal/identity"
	"github.com/edumatrix/edumatrix/internal/rbac"
)

type claimedRoles struct{}

func (claimedRoles) UserRoles(ctx context.Context, userID string) ([]string, error) {
	p, _ := identity.PrincipalFromContext(ctx)
	return p.Roles, nil
}

func newTestRouter(svc *Service) http.Handler {
	m := rbac.Middleware{Handler: rbac.NewCenterAccessHandler(rbac.ResolveFirstRole, nil), Roles: claimedRoles{}}
	r := chi.NewRouter()
	r.Route("/teachers", NewHandler(nil, svc, m).MountRoutes)
	return r
}

func do(t *testing.T, h http.Handler, method, path, body string, p identity.Principal) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	req = req.WithContext(identity.WithPrincipal(req.Context(), p))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func employee(centerID int64) identity.Principal {
	return identity.Principal{UserID: "10", CenterID: center(centerID), Roles: []string{"Employee"}}
}

func TestHandlerEmployeeCanViewButNotDelete(t *testing.T) {
	svc, repo, _ := seededService()
	h := newTestRouter(svc)

	rr := do(t, h, http.MethodGet, "/teachers/1", "", employee(7))
	require.Equal(t, http.StatusOK, rr.Code)
	var got Teacher
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&got))
	assert.Equal(t, "Marie", got.FirstName)

	rr = do(t, h, http.MethodDelete, "/teachers/1", "", employee(7))
	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.Contains(t, repo.items, int64(1))
}

func TestHandlerCrossCenterIsForbidden(t *testing.T) {
	svc, _, _ := seededService()
	h := newTestRouter(svc)

	rr := do(t, h, http.MethodGet, "/teachers/2", "", employee(7))
	assert.Equal(t, http.StatusForbidden, rr.Code)
}

func TestHandlerCreateAndList(t *testing.T) {
	svc, _, _ := seededService()
	h := newTestRouter(svc)

	rr := do(t, h, http.MethodPost, "/teachers/", `{"first_name":"Emmy","last_name":"Noether"}`, employee(7))
	require.Equal(t, http.StatusCreated, rr.Code)
	var created Teacher
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&created))
	assert.Equal(t, int64(7), created.CenterID)

	rr = do(t, h, http.MethodGet, "/teachers/?per_page=10", "", employee(7))
	require.Equal(t, http.StatusOK, rr.Code)
	var page struct {
		Data       []Teacher `json:"data"`
		Pagination struct {
			Total int `json:"total"`
		} `json:"pagination"`
	}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&page))
	assert.Len(t, page.Data, 2)
	assert.Equal(t, 2, page.Pagination.Total)
}

func TestHandlerManagerDeletes(t *testing.T) {
	svc, repo, _ := seededService()
	h := newTestRouter(svc)
	manager := identity.Principal{UserID: "11", CenterID: center(7), Roles: []string{"Manager"}}

	rr := do(t, h, http.MethodDelete, "/teachers/1", "", manager)
	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.NotContains(t, repo.items, int64(1))

	rr = do(t, h, http.MethodDelete, "/teachers/abc", "", manager)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}
