package apikit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCacheFreshness(t *testing.T) {
	cache := NewMemoryCache()
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "users", []byte(`[]`), 10*time.Millisecond))

	data, fresh, ok := cache.Get(ctx, "users")
	require.True(t, ok)
	assert.True(t, fresh)
	assert.Equal(t, `[]`, string(data))

	time.Sleep(25 * time.Millisecond)

	data, fresh, ok = cache.Get(ctx, "users")
	require.True(t, ok, "expired entries are retained as stale fallbacks")
	assert.False(t, fresh)
	assert.Equal(t, `[]`, string(data))
}

func TestMemoryCacheMiss(t *testing.T) {
	cache := NewMemoryCache()
	_, _, ok := cache.Get(context.Background(), "absent")
	assert.False(t, ok)
}

func TestMemoryCacheDelete(t *testing.T) {
	cache := NewMemoryCache()
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "a", []byte(`1`), time.Minute))
	require.NoError(t, cache.Set(ctx, "b", []byte(`2`), time.Minute))
	require.NoError(t, cache.Delete(ctx, "a"))

	_, _, ok := cache.Get(ctx, "a")
	assert.False(t, ok)
	_, _, ok = cache.Get(ctx, "b")
	assert.True(t, ok)
}

func TestMemoryCacheDeletePrefix(t *testing.T) {
	cache := NewMemoryCache()
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "users:1", []byte(`{}`), time.Minute))
	require.NoError(t, cache.Set(ctx, "users:2", []byte(`{}`), time.Minute))
	require.NoError(t, cache.Set(ctx, "posts:1", []byte(`{}`), time.Minute))

	require.NoError(t, cache.DeletePrefix(ctx, "users:"))

	_, _, ok := cache.Get(ctx, "users:1")
	assert.False(t, ok)
	_, _, ok = cache.Get(ctx, "users:2")
	assert.False(t, ok)
	_, _, ok = cache.Get(ctx, "posts:1")
	assert.True(t, ok)

	require.NoError(t, cache.DeletePrefix(ctx, ""))
	_, _, ok = cache.Get(ctx, "posts:1")
	assert.False(t, ok)
}

func TestMemoryCacheCopiesData(t *testing.T) {
	cache := NewMemoryCache()
	ctx := context.Background()

	payload := []byte(`{"a":1}`)
	require.NoError(t, cache.Set(ctx, "k", payload, time.Minute))
	payload[2] = 'x'

	data, _, ok := cache.Get(ctx, "k")
	require.True(t, ok)
	assert.Equal(t, `{"a":1}`, string(data))
}
