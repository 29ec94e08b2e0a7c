package identity

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edumatrix/edumatrix/internal/shared"
)

func captureHandler(got *Principal, seen *bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*got, *seen = PrincipalFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})
}

func TestAuthenticatorBearer(t *testing.T) {
	issuer := NewTokenIssuer("secret", "edumatrix", time.Hour)
	raw, _, err := issuer.Issue(Principal{UserID: "5", CenterID: centerID(2), Roles: []string{"Employee"}})
	require.NoError(t, err)

	var got Principal
	var seen bool
	h := Authenticator{Tokens: issuer}.Middleware(captureHandler(&got, &seen))

	req := httptest.NewRequest(http.MethodGet, "/students", nil)
	req.Header.Set("Authorization", "Bearer "+raw)
	h.ServeHTTP(httptest.NewRecorder(), req)

	require.True(t, seen)
	assert.Equal(t, "5", got.UserID)
	assert.Equal(t, int64(2), *got.CenterID)
}

func TestAuthenticatorInvalidBearerIsAnonymous(t *testing.T) {
	issuer := NewTokenIssuer("secret", "edumatrix", time.Hour)
	var got Principal
	var seen bool
	h := Authenticator{Tokens: issuer}.Middleware(captureHandler(&got, &seen))

	req := httptest.NewRequest(http.MethodGet, "/students", nil)
	req.Header.Set("Authorization", "Bearer tampered")
	h.ServeHTTP(httptest.NewRecorder(), req)

	assert.False(t, seen)
}

func TestAuthenticatorSessionMustMatchSubject(t *testing.T) {
	issuer := NewTokenIssuer("secret", "edumatrix", time.Hour)
	raw, _, err := issuer.Issue(Principal{UserID: "5", Roles: []string{"Employee"}})
	require.NoError(t, err)

	var got Principal
	var seen bool
	h := Authenticator{Tokens: issuer}.Middleware(captureHandler(&got, &seen))

	sess := signedInSession(t, "5", raw)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(shared.ContextWithSession(req.Context(), sess))
	h.ServeHTTP(httptest.NewRecorder(), req)
	assert.True(t, seen)

	seen = false
	other := signedInSession(t, "6", raw)
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(shared.ContextWithSession(req.Context(), other))
	h.ServeHTTP(httptest.NewRecorder(), req)
	assert.False(t, seen)
}

func signedInSession(t *testing.T, userID, token string) *shared.Session {
	t.Helper()
	// Loading without a cookie never touches Redis.
	sm := shared.NewSessionManager(nil, "edu_session", time.Hour, false)
	sess, err := sm.Load(context.Background(), httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	sess.SignIn(userID, token)
	return sess
}

func TestRequireAuthenticated(t *testing.T) {
	h := RequireAuthenticated(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(WithPrincipal(req.Context(), Principal{UserID: "1"}))
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusNoContent, rr.Code)
}

func TestBearerToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	_, ok := BearerToken(req)
	assert.False(t, ok)

	req.Header.Set("Authorization", "bearer abc ")
	tok, ok := BearerToken(req)
	assert.True(t, ok)
	assert.Equal(t, "abc", tok)

	req.Header.Set("Authorization", "Basic abc")
	_, ok = BearerToken(req)
	assert.False(t, ok)
}
