package adapter

import (
	"context"
	"testing"
	"time"

	"pdf-quiz/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCacheAdapter_GetSetDelete(t *testing.T) {
	cache := NewMemoryCacheAdapter()
	ctx := context.Background()

	_, err := cache.Get(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrCacheMiss)

	require.NoError(t, cache.Set(ctx, "k", "v", 0))
	val, err := cache.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", val)

	require.NoError(t, cache.Delete(ctx, "k"))
	_, err = cache.Get(ctx, "k")
	assert.ErrorIs(t, err, domain.ErrCacheMiss)

	assert.NoError(t, cache.Delete(ctx, "k"))
	assert.NoError(t, cache.Ping(ctx))
}

func TestMemoryCacheAdapter_Expiry(t *testing.T) {
	cache := NewMemoryCacheAdapter()
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	cache.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "short", "a", time.Minute))
	require.NoError(t, cache.Set(ctx, "long", "b", time.Hour))
	require.NoError(t, cache.Set(ctx, "forever", "c", 0))

	now = now.Add(2 * time.Minute)

	_, err := cache.Get(ctx, "short")
	assert.ErrorIs(t, err, domain.ErrCacheMiss)
	val, err := cache.Get(ctx, "long")
	require.NoError(t, err)
	assert.Equal(t, "b", val)

	now = now.Add(2 * time.Hour)
	assert.Equal(t, 1, cache.Sweep())
	val, err = cache.Get(ctx, "forever")
	require.NoError(t, err)
	assert.Equal(t, "c", val)
}
