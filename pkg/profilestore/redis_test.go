package profilestore_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/splitkit/pkg/profilestore"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestRedisStore(t *testing.T) {
	ctx := context.Background()

	t.Run("LookupMissingReturnsNil", func(t *testing.T) {
		_, client := newTestRedis(t)
		store := profilestore.NewRedis(client)

		profile, err := store.Lookup(ctx, "nobody")
		require.NoError(t, err)
		assert.Nil(t, profile)
	})

	t.Run("SaveAndLookup", func(t *testing.T) {
		_, client := newTestRedis(t)
		store := profilestore.NewRedis(client)

		require.NoError(t, store.Save(ctx, testProfile("user-1")))

		profile, err := store.Lookup(ctx, "user-1")
		require.NoError(t, err)
		require.NotNil(t, profile)
		assert.Equal(t, "user-1", profile["user_id"])

		bucketMap, ok := profile["experiment_bucket_map"].(map[string]any)
		require.True(t, ok)
		entry, ok := bucketMap["exp-1"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "var-1", entry["variation_id"])
	})

	t.Run("KeyPrefix", func(t *testing.T) {
		mr, client := newTestRedis(t)
		store := profilestore.NewRedis(client, profilestore.WithKeyPrefix("myapp:profiles"))

		require.NoError(t, store.Save(ctx, testProfile("user-1")))
		assert.True(t, mr.Exists("myapp:profiles:user-1"))
	})

	t.Run("TTLExpiry", func(t *testing.T) {
		mr, client := newTestRedis(t)
		store := profilestore.NewRedis(client, profilestore.WithTTL(time.Second))

		require.NoError(t, store.Save(ctx, testProfile("user-1")))

		mr.FastForward(2 * time.Second)

		profile, err := store.Lookup(ctx, "user-1")
		require.NoError(t, err)
		assert.Nil(t, profile)
	})

	t.Run("RejectsProfileWithoutUserID", func(t *testing.T) {
		_, client := newTestRedis(t)
		store := profilestore.NewRedis(client)

		err := store.Save(ctx, map[string]any{"no": "user id"})
		assert.ErrorIs(t, err, profilestore.ErrInvalidProfile)
	})

	t.Run("LookupFailure", func(t *testing.T) {
		mr, client := newTestRedis(t)
		store := profilestore.NewRedis(client)
		mr.Close()

		_, err := store.Lookup(ctx, "user-1")
		assert.ErrorIs(t, err, profilestore.ErrLookupFailed)
	})

	t.Run("MalformedStoredValue", func(t *testing.T) {
		mr, client := newTestRedis(t)
		store := profilestore.NewRedis(client)

		require.NoError(t, mr.Set("splitkit:profile:user-1", "{not json"))

		_, err := store.Lookup(ctx, "user-1")
		assert.ErrorIs(t, err, profilestore.ErrLookupFailed)
	})
}
