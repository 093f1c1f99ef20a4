package sessioncache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { client.Close() })
	return New(client, time.Hour), srv
}

func TestCache_SetAndGet(t *testing.T) {
	ctx := context.Background()
	cache, srv := newTestCache(t)
	userID := uuid.New()

	require.NoError(t, cache.Set(ctx, userID, "token-1"))

	token, err := cache.Get(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, "token-1", token)

	srv.CheckGet(t, "session:"+userID.String(), "token-1")
}

func TestCache_Get_NoSession(t *testing.T) {
	cache, _ := newTestCache(t)

	_, err := cache.Get(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestCache_SetReplacesPreviousSession(t *testing.T) {
	ctx := context.Background()
	cache, _ := newTestCache(t)
	userID := uuid.New()

	require.NoError(t, cache.Set(ctx, userID, "token-1"))
	require.NoError(t, cache.Set(ctx, userID, "token-2"))

	assert.ErrorIs(t, cache.Validate(ctx, userID, "token-1"), ErrSessionNotFound)
	assert.NoError(t, cache.Validate(ctx, userID, "token-2"))
}

func TestCache_Delete(t *testing.T) {
	ctx := context.Background()
	cache, _ := newTestCache(t)
	userID := uuid.New()

	require.NoError(t, cache.Set(ctx, userID, "token-1"))
	require.NoError(t, cache.Delete(ctx, userID))

	_, err := cache.Get(ctx, userID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestCache_Validate(t *testing.T) {
	ctx := context.Background()

	t.Run("missing session", func(t *testing.T) {
		cache, _ := newTestCache(t)
		assert.ErrorIs(t, cache.Validate(ctx, uuid.New(), "token"), ErrSessionNotFound)
	})

	t.Run("session expires with the TTL", func(t *testing.T) {
		cache, srv := newTestCache(t)
		userID := uuid.New()
		require.NoError(t, cache.Set(ctx, userID, "token-1"))

		srv.FastForward(2 * time.Hour)

		assert.ErrorIs(t, cache.Validate(ctx, userID, "token-1"), ErrSessionNotFound)
	})

	t.Run("fails open when Redis is down", func(t *testing.T) {
		cache, srv := newTestCache(t)
		userID := uuid.New()
		require.NoError(t, cache.Set(ctx, userID, "token-1"))

		srv.Close()

		assert.NoError(t, cache.Validate(ctx, userID, "token-1"))
	})
}
