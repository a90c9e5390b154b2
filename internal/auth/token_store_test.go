package auth

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"uniportal/internal/cache"
)

func newTestStore(t *testing.T) (*TokenStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rc := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rc.Close() })
	return NewTokenStore(cache.NewWithClient(rc)), mr
}

func sessionFor(identityID, suffix string) SessionRecord {
	return SessionRecord{
		IdentityID:      identityID,
		Email:           "ab123@gre.ac.uk",
		AccessTokenID:   "access-" + suffix,
		AccessExpiresAt: time.Now().Add(AccessTokenExpiry),
		RefreshTokenID:  "refresh-" + suffix,
	}
}

func TestTokenStore_StoreAndRevoke(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)

	require.NoError(t, store.StoreSession(ctx, sessionFor("id-1", "a")))

	rec, err := store.GetSession(ctx, "id-1")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, "access-a", rec.AccessTokenID)

	owner, err := store.RefreshTokenOwner(ctx, "refresh-a")
	require.NoError(t, err)
	assert.Equal(t, "id-1", owner)

	require.NoError(t, store.RevokeSession(ctx, "id-1"))

	rec, err = store.GetSession(ctx, "id-1")
	require.NoError(t, err)
	assert.Nil(t, rec)

	owner, err = store.RefreshTokenOwner(ctx, "refresh-a")
	require.NoError(t, err)
	assert.Empty(t, owner)

	blacklisted, err := store.IsAccessTokenBlacklisted(ctx, "access-a")
	require.NoError(t, err)
	assert.True(t, blacklisted)
}

func TestTokenStore_RevokeWithoutSession(t *testing.T) {
	store, _ := newTestStore(t)
	assert.NoError(t, store.RevokeSession(context.Background(), "nobody"))
}

func TestTokenStore_NewSessionSupersedesOld(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)

	require.NoError(t, store.StoreSession(ctx, sessionFor("id-1", "a")))
	require.NoError(t, store.StoreSession(ctx, sessionFor("id-1", "b")))

	owner, err := store.RefreshTokenOwner(ctx, "refresh-a")
	require.NoError(t, err)
	assert.Empty(t, owner)

	blacklisted, err := store.IsAccessTokenBlacklisted(ctx, "access-a")
	require.NoError(t, err)
	assert.True(t, blacklisted)

	blacklisted, err = store.IsAccessTokenBlacklisted(ctx, "access-b")
	require.NoError(t, err)
	assert.False(t, blacklisted)
}

func TestTokenStore_ReplaceAccessToken(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)

	require.NoError(t, store.StoreSession(ctx, sessionFor("id-1", "a")))
	require.NoError(t, store.ReplaceAccessToken(ctx, "id-1", IssuedToken{ID: "access-c", ExpiresAt: time.Now().Add(time.Minute)}))

	rec, err := store.GetSession(ctx, "id-1")
	require.NoError(t, err)
	assert.Equal(t, "access-c", rec.AccessTokenID)
	assert.Equal(t, "refresh-a", rec.RefreshTokenID)

	blacklisted, err := store.IsAccessTokenBlacklisted(ctx, "access-a")
	require.NoError(t, err)
	assert.True(t, blacklisted)

	assert.Error(t, store.ReplaceAccessToken(ctx, "nobody", IssuedToken{ID: "x", ExpiresAt: time.Now().Add(time.Minute)}))
}

func TestTokenStore_ReportsRedisFailure(t *testing.T) {
	store, mr := newTestStore(t)
	mr.Close()

	err := store.StoreSession(context.Background(), sessionFor("id-1", "a"))
	assert.Error(t, err)

	_, err = store.IsAccessTokenBlacklisted(context.Background(), "access-a")
	assert.Error(t, err)
}
