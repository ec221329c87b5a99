package shared

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*SessionStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewSessionStore(client, time.Hour), mr
}

func TestCreateAndResolve(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	token, err := store.Create(ctx, 7, RoleGuard, 3)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	ident, err := store.Resolve(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, int64(7), ident.UserID)
	assert.Equal(t, RoleGuard, ident.Role)
	assert.Equal(t, int64(3), ident.CompanyID)
	assert.Equal(t, token, ident.Token)
	assert.WithinDuration(t, time.Now(), ident.Started, 5*time.Second)
}

func TestResolveUnknownToken(t *testing.T) {
	store, _ := newTestStore(t)

	_, err := store.Resolve(context.Background(), "no-such-token")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	_, err = store.Resolve(context.Background(), "")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestRevokeSingleSession(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	token, err := store.Create(ctx, 7, RoleGuard, 3)
	require.NoError(t, err)

	require.NoError(t, store.Revoke(ctx, token))
	_, err = store.Resolve(ctx, token)
	assert.ErrorIs(t, err, ErrSessionNotFound)

	// Revoking again is a no-op.
	assert.NoError(t, store.Revoke(ctx, token))
}

func TestRevokeAllDropsEverySession(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	t1, err := store.Create(ctx, 7, RoleGuard, 3)
	require.NoError(t, err)
	t2, err := store.Create(ctx, 7, RoleGuard, 3)
	require.NoError(t, err)
	other, err := store.Create(ctx, 8, RoleGuard, 3)
	require.NoError(t, err)

	revoked, err := store.RevokeAll(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, 2, revoked)

	_, err = store.Resolve(ctx, t1)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, err = store.Resolve(ctx, t2)
	assert.ErrorIs(t, err, ErrSessionNotFound)

	// Another user's session survives.
	_, err = store.Resolve(ctx, other)
	assert.NoError(t, err)

	revoked, err = store.RevokeAll(ctx, 7)
	require.NoError(t, err)
	assert.Zero(t, revoked)
}

func TestSessionExpires(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	token, err := store.Create(ctx, 7, RoleGuard, 3)
	require.NoError(t, err)

	mr.FastForward(2 * time.Hour)

	_, err = store.Resolve(ctx, token)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}
