package auth_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/edumatrix/edumatrix/internal/auth"
	"github.com/edumatrix/edumatrix/internal/identity"
	"github.com/edumatrix/edumatrix/internal/shared"
	_ "github.com/edumatrix/edumatrix/testing"
)

type stubRepo struct {
	user     *auth.User
	sessions map[string]int64
}

func (s *stubRepo) FindByEmail(ctx context.Context, email string) (*auth.User, error) {
	if s.user == nil || !strings.EqualFold(email, s.user.Email) {
		return nil, shared.ErrNotFound
	}
	return s.user, nil
}

func (s *stubRepo) CreateSession(ctx context.Context, id string, userID int64, expiresAt time.Time, ip, ua string) error {
	s.sessions[id] = userID
	return nil
}

func (s *stubRepo) DeleteSession(ctx context.Context, id string) error {
	delete(s.sessions, id)
	return nil
}

type stubRoles map[string][]string

func (s stubRoles) UserRoles(ctx context.Context, userID string) ([]string, error) {
	return s[userID], nil
}

type fixture struct {
	handler  http.Handler
	sessions *shared.SessionManager
	repo     *stubRepo
	issuer   *identity.TokenIssuer
}

func newFixture(t *testing.T, roles stubRoles) fixture {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte("correctpass"), bcrypt.MinCost)
	require.NoError(t, err)
	center := int64(7)
	repo := &stubRepo{
		user:     &auth.User{ID: 3, CenterID: &center, Email: "staff@center.test", PasswordHash: string(hashed), IsActive: true},
		sessions: map[string]int64{},
	}

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	sessions := shared.NewSessionManager(client, "test_session", time.Hour, false)
	issuer := identity.NewTokenIssuer("jwtsecret", "edumatrix-test", time.Hour)
	h := auth.NewHandler(nil, auth.NewService(repo, roles, issuer), sessions, shared.NewCSRFManager("csrfsecret"))

	r := chi.NewRouter()
	r.Use(shared.SessionMiddleware(sessions, nil))
	r.Use(identity.Authenticator{Tokens: issuer}.Middleware)
	r.Route("/auth", h.MountRoutes)
	return fixture{handler: r, sessions: sessions, repo: repo, issuer: issuer}
}

func login(t *testing.T, f fixture, password string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"email":"staff@center.test","password":"`+password+`"}`))
	rr := httptest.NewRecorder()
	f.handler.ServeHTTP(rr, req)
	return rr
}

func TestLoginIssuesTokenAndSession(t *testing.T) {
	f := newFixture(t, stubRoles{"3": {"Employee", "Manager"}})

	rr := login(t, f, "correctpass")
	require.Equal(t, http.StatusOK, rr.Code)

	var result auth.LoginResult
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&result))
	assert.Equal(t, "Bearer", result.TokenType)
	assert.Equal(t, []string{"Employee", "Manager"}, result.Roles)
	assert.NotEmpty(t, result.CSRFToken)

	p, err := f.issuer.Verify(result.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "3", p.UserID)
	assert.Equal(t, int64(7), *p.CenterID)

	cookies := rr.Result().Cookies()
	require.NotEmpty(t, cookies)
	assert.Equal(t, "test_session", cookies[0].Name)
	assert.Len(t, f.repo.sessions, 1)

	// The session cookie alone now authenticates /auth/me.
	me := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	me.AddCookie(cookies[0])
	meRR := httptest.NewRecorder()
	f.handler.ServeHTTP(meRR, me)
	require.Equal(t, http.StatusOK, meRR.Code)
	assert.Contains(t, meRR.Body.String(), `"user_id":"3"`)
}

func TestLoginInvalidCredentials(t *testing.T) {
	f := newFixture(t, stubRoles{"3": {"Employee"}})

	rr := login(t, f, "wrongpass")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Contains(t, rr.Body.String(), "invalid email or password")
	assert.Empty(t, f.repo.sessions)
}

func TestLoginWithoutRolesIsRefused(t *testing.T) {
	f := newFixture(t, stubRoles{})
	rr := login(t, f, "correctpass")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestLoginValidatesPayload(t *testing.T) {
	f := newFixture(t, stubRoles{"3": {"Employee"}})
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"email":"not-an-email","password":"x"}`))
	rr := httptest.NewRecorder()
	f.handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestCSRFEndpointReturnsToken(t *testing.T) {
	f := newFixture(t, stubRoles{})
	rr := httptest.NewRecorder()
	f.handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/auth/csrf", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	var body map[string]string
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
	assert.NotEmpty(t, body["csrf_token"])
	assert.NotEmpty(t, rr.Result().Cookies())
}

func TestMeRequiresAuthentication(t *testing.T) {
	f := newFixture(t, stubRoles{})
	rr := httptest.NewRecorder()
	f.handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/auth/me", nil))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestLogoutDestroysSession(t *testing.T) {
	f := newFixture(t, stubRoles{"3": {"Employee"}})
	rr := login(t, f, "correctpass")
	require.Equal(t, http.StatusOK, rr.Code)
	cookie := rr.Result().Cookies()[0]

	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	req.AddCookie(cookie)
	out := httptest.NewRecorder()
	f.handler.ServeHTTP(out, req)
	assert.Equal(t, http.StatusNoContent, out.Code)
	assert.Empty(t, f.repo.sessions)

	me := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	me.AddCookie(cookie)
	meRR := httptest.NewRecorder()
	f.handler.ServeHTTP(meRR, me)
	assert.Equal(t, http.StatusUnauthorized, meRR.Code)
}
