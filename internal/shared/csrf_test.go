package shared

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSRFTokenLifecycle(t *testing.T) {
	m := NewCSRFManager("csrf-secret")
	sess := &Session{ID: "sess-1", values: map[string]string{}}
	ctx := context.Background()

	token, err := m.EnsureToken(ctx, sess)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	again, err := m.EnsureToken(ctx, sess)
	require.NoError(t, err)
	assert.Equal(t, token, again)

	assert.NoError(t, m.VerifyToken(ctx, sess, token))
	assert.ErrorIs(t, m.VerifyToken(ctx, sess, "forged"), ErrCSRFTokenMismatch)
	assert.ErrorIs(t, m.VerifyToken(ctx, sess, ""), ErrCSRFTokenMissing)

	rotated, err := m.Rotate(ctx, sess)
	require.NoError(t, err)
	assert.NotEqual(t, token, rotated)
	assert.ErrorIs(t, m.VerifyToken(ctx, sess, token), ErrCSRFTokenMismatch)
}

func TestCSRFRequiresSession(t *testing.T) {
	m := NewCSRFManager("csrf-secret")
	_, err := m.EnsureToken(context.Background(), nil)
	assert.Error(t, err)
	assert.ErrorIs(t, m.VerifyToken(context.Background(), nil, "x"), ErrCSRFTokenMissing)
}
