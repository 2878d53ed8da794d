package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/quire/internal/testutils"
	"github.com/aretw0/quire/pkg/adapters/redis"
	"github.com/aretw0/quire/pkg/domain"
	"github.com/aretw0/quire/pkg/ports"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newClient(t *testing.T) (*miniredis.Miniredis, *backend.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err, "Failed to start miniredis")
	t.Cleanup(mr.Close)

	return mr, backend.NewClient(&backend.Options{Addr: mr.Addr()})
}

func TestRedisStore_Contract(t *testing.T) {
	_, client := newClient(t)

	store := redis.NewFromClient(client)
	ports.RunStoryStoreContract(t, store)
}

func TestRedisStore_TTL_Expiration(t *testing.T) {
	mr, client := newClient(t)

	store := redis.NewFromClient(client, redis.WithTTL(1*time.Second))
	ctx := context.Background()

	require.NoError(t, store.SaveStory(ctx, testutils.NewStory("s-ttl", "Fleeting", "Start")))

	ids, err := store.IDs(ctx)
	require.NoError(t, err)
	assert.Contains(t, ids, "s-ttl")

	// Expire the key in miniredis.
	mr.FastForward(2 * time.Second)

	_, err = store.LoadStory(ctx, "s-ttl")
	assert.ErrorIs(t, err, domain.ErrStoryNotFound)

	// The listing skips the dangling index entry right away.
	stories, err := store.ListStories(ctx)
	require.NoError(t, err)
	assert.Empty(t, stories)

	// Index pruning uses wall-clock time, so wait past the score.
	time.Sleep(1200 * time.Millisecond)

	ids, err = store.IDs(ctx)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestRedisStore_Prefix(t *testing.T) {
	mr, client := newClient(t)

	store := redis.NewFromClient(client, redis.WithPrefix("custom:app:"))
	ctx := context.Background()

	require.NoError(t, store.SaveStory(ctx, testutils.NewStory("my-story", "Mine")))

	assert.True(t, mr.Exists("custom:app:my-story"), "Expected key with custom prefix to exist")
	assert.True(t, mr.Exists("custom:app:index"), "Expected index with custom prefix to exist")

	stories, err := store.ListStories(ctx)
	require.NoError(t, err)
	require.Len(t, stories, 1)
	assert.Equal(t, "Mine", stories[0].Name)
}
