package shared

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSessionManager(t *testing.T) (*SessionManager, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewSessionManager(client, "edu_session", time.Hour, false), mr
}

func TestSessionSignInPersistsTokenAndRotatesID(t *testing.T) {
	sm, mr := newTestSessionManager(t)
	ctx := context.Background()

	sess, err := sm.Load(ctx, httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	anonymousID := sess.ID

	sess.SignIn("42", "signed.token.value")
	rr := httptest.NewRecorder()
	require.NoError(t, sm.Commit(ctx, rr, sess))
	assert.NotEqual(t, anonymousID, sess.ID)
	assert.True(t, mr.Exists(SessionKeyPrefix+sess.ID))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range rr.Result().Cookies() {
		req.AddCookie(c)
	}
	loaded, err := sm.Load(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, sess.ID, loaded.ID)
	assert.Equal(t, "42", loaded.User())
	assert.Equal(t, "signed.token.value", loaded.AccessToken())
}

func TestSessionUnknownCookieIsNotAdopted(t *testing.T) {
	sm, _ := newTestSessionManager(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: sm.CookieName(), Value: "attacker-chosen"})
	sess, err := sm.Load(context.Background(), req)
	require.NoError(t, err)
	assert.NotEqual(t, "attacker-chosen", sess.ID)
	assert.Empty(t, sess.User())
}

func TestSessionAnonymousUntouchedSkipsRedis(t *testing.T) {
	sm, mr := newTestSessionManager(t)
	ctx := context.Background()

	sess, err := sm.Load(ctx, httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	rr := httptest.NewRecorder()
	require.NoError(t, sm.Commit(ctx, rr, sess))

	assert.Empty(t, mr.Keys())
	assert.Empty(t, rr.Result().Cookies())
}

func TestSessionDestroyRemovesKeyAndClearsCookie(t *testing.T) {
	sm, mr := newTestSessionManager(t)
	ctx := context.Background()

	sess, err := sm.Load(ctx, httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	sess.SignIn("7", "tok")
	require.NoError(t, sm.Commit(ctx, httptest.NewRecorder(), sess))
	require.True(t, mr.Exists(SessionKeyPrefix+sess.ID))

	sm.Destroy(sess)
	rr := httptest.NewRecorder()
	require.NoError(t, sm.Commit(ctx, rr, sess))
	assert.False(t, mr.Exists(SessionKeyPrefix+sess.ID))
	cookies := rr.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, -1, cookies[0].MaxAge)
}

func TestSessionSignInDropsPreviousKey(t *testing.T) {
	sm, mr := newTestSessionManager(t)
	ctx := context.Background()

	sess, err := sm.Load(ctx, httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	sess.Set("csrf_token", "x")
	rr := httptest.NewRecorder()
	require.NoError(t, sm.Commit(ctx, rr, sess))
	firstID := sess.ID

	req := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
	for _, c := range rr.Result().Cookies() {
		req.AddCookie(c)
	}
	loaded, err := sm.Load(ctx, req)
	require.NoError(t, err)
	loaded.SignIn("9", "tok")
	require.NoError(t, sm.Commit(ctx, httptest.NewRecorder(), loaded))

	assert.False(t, mr.Exists(SessionKeyPrefix+firstID))
	assert.True(t, mr.Exists(SessionKeyPrefix+loaded.ID))
}

func TestSessionMiddlewareCommitsBeforeHeaders(t *testing.T) {
	sm, mr := newTestSessionManager(t)
	h := SessionMiddleware(sm, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := SessionFromContext(r.Context())
		require.NotNil(t, sess)
		sess.Set("k", "v")
		w.WriteHeader(http.StatusAccepted)
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/", nil))
	assert.Equal(t, http.StatusAccepted, rr.Code)
	cookies := rr.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.True(t, mr.Exists(SessionKeyPrefix+cookies[0].Value))
}

func TestSessionDeleteIsPersisted(t *testing.T) {
	sm, _ := newTestSessionManager(t)
	ctx := context.Background()
	assert.Equal(t, time.Hour, sm.TTL())

	sess, err := sm.Load(ctx, httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	sess.Set(CSRFSessionKey, "old")
	rr := httptest.NewRecorder()
	require.NoError(t, sm.Commit(ctx, rr, sess))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range rr.Result().Cookies() {
		req.AddCookie(c)
	}
	loaded, err := sm.Load(ctx, req)
	require.NoError(t, err)
	require.Equal(t, "old", loaded.Get(CSRFSessionKey))

	loaded.Delete(CSRFSessionKey)
	require.NoError(t, sm.Commit(ctx, httptest.NewRecorder(), loaded))

	again, err := sm.Load(ctx, req)
	require.NoError(t, err)
	assert.Empty(t, again.Get(CSRFSessionKey))
}
