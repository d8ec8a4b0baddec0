package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/beatbox/pkg/adapters/redis"
	"github.com/aretw0/beatbox/pkg/domain"
	"github.com/aretw0/beatbox/pkg/ports/tests"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newClient(t *testing.T) (*miniredis.Miniredis, *backend.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestRedisStore_Contract(t *testing.T) {
	_, client := newClient(t)
	tests.RunCheckpointStoreContract(t, redis.NewFromClient(client))
}

func TestRedisStore_TTL_Expiration(t *testing.T) {
	mr, client := newClient(t)
	store := redis.NewFromClient(client, redis.WithTTL(time.Second))
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "cp-ttl", &domain.Checkpoint{Root: "A", Stack: []domain.Position{domain.End}}))

	ids, err := store.List(ctx)
	require.NoError(t, err)
	assert.Contains(t, ids, "cp-ttl")

	mr.FastForward(2 * time.Second)

	_, err = store.Load(ctx, "cp-ttl")
	assert.ErrorIs(t, err, domain.ErrCheckpointNotFound)

	// The index is pruned against wall-clock time.
	time.Sleep(1200 * time.Millisecond)
	ids, err = store.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestRedisStore_Prefix(t *testing.T) {
	mr, client := newClient(t)
	store := redis.NewFromClient(client, redis.WithPrefix("custom:app:"))
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "cp", &domain.Checkpoint{Root: "A"}))

	assert.True(t, mr.Exists("custom:app:cp"), "checkpoint key should use the custom prefix")
	assert.True(t, mr.Exists("custom:app:index"), "index key should use the custom prefix")
	require.NoError(t, store.Ping(ctx))
}

func TestRedisStore_CorruptValue(t *testing.T) {
	mr, client := newClient(t)
	store := redis.NewFromClient(client)
	require.NoError(t, mr.Set(redis.DefaultPrefix+"bad", "{not json"))

	_, err := store.Load(context.Background(), "bad")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrCheckpointNotFound)
}
