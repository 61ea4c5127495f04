package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemorySessionStore_PutGetConsume(t *testing.T) {
	ctx := context.Background()
	store := NewMemorySessionStore()

	require.NoError(t, store.Put(ctx, "tok-1", 42, time.Minute))

	userID, ok, err := store.Get(ctx, "tok-1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, uint(42), userID)

	userID, ok, err = store.Consume(ctx, "tok-1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, uint(42), userID)

	// a consumed handshake is gone
	_, ok, err = store.Consume(ctx, "tok-1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemorySessionStore_TTLExpiry(t *testing.T) {
	ctx := context.Background()
	store := NewMemorySessionStore()

	require.NoError(t, store.Put(ctx, "tok-1", 42, 20*time.Millisecond))
	time.Sleep(40 * time.Millisecond)

	// expired entries are unreadable even before the janitor runs
	_, ok, err := store.Get(ctx, "tok-1")
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = store.Consume(ctx, "tok-1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemorySessionStore_SingleConsumption(t *testing.T) {
	ctx := context.Background()
	store := NewMemorySessionStore()
	require.NoError(t, store.Put(ctx, "tok-1", 42, time.Minute))

	var wins int
	var mu sync.Mutex
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, ok, _ := store.Consume(ctx, "tok-1"); ok {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, wins)
}

func TestMemorySessionStore_Close(t *testing.T) {
	ctx := context.Background()
	store := NewMemorySessionStore()

	require.NoError(t, store.Close())
	// Close is idempotent
	require.NoError(t, store.Close())

	// the store itself keeps working; only the janitor stops
	require.NoError(t, store.Put(ctx, "tok-1", 42, time.Minute))
	userID, ok, err := store.Get(ctx, "tok-1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, uint(42), userID)
}

func newTestRedisStore(t *testing.T) (*miniredis.Miniredis, *RedisSessionStore) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return mr, NewRedisSessionStore(client)
}

func TestRedisSessionStore_PutGetConsume(t *testing.T) {
	ctx := context.Background()
	_, store := newTestRedisStore(t)

	require.NoError(t, store.Put(ctx, "tok-1", 42, time.Minute))

	userID, ok, err := store.Get(ctx, "tok-1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, uint(42), userID)

	userID, ok, err = store.Consume(ctx, "tok-1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, uint(42), userID)

	_, ok, err = store.Consume(ctx, "tok-1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisSessionStore_TTLExpiry(t *testing.T) {
	ctx := context.Background()
	mr, store := newTestRedisStore(t)

	require.NoError(t, store.Put(ctx, "tok-1", 42, 5*time.Minute))
	mr.FastForward(6 * time.Minute)

	_, ok, err := store.Get(ctx, "tok-1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisSessionStore_Delete(t *testing.T) {
	ctx := context.Background()
	_, store := newTestRedisStore(t)

	require.NoError(t, store.Put(ctx, "tok-1", 42, time.Minute))
	require.NoError(t, store.Delete(ctx, "tok-1"))

	_, ok, err := store.Get(ctx, "tok-1")
	require.NoError(t, err)
	assert.False(t, ok)
}
