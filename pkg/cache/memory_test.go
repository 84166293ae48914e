package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCache_SetGet(t *testing.T) {
	ctx := context.Background()
	mc := NewMemoryCache()
	defer mc.Close()

	type quote struct {
		Symbol string  `json:"symbol"`
		Price  float64 `json:"price"`
	}
	require.NoError(t, mc.Set(ctx, "q", quote{"MSFT", 410.2}, time.Minute))

	got, err := GetTyped[quote](ctx, mc, "q")
	require.NoError(t, err)
	assert.Equal(t, quote{"MSFT", 410.2}, got)

	var missing quote
	assert.ErrorIs(t, mc.Get(ctx, "nope", &missing), ErrCacheMiss)
}

func TestMemoryCache_Expiry(t *testing.T) {
	ctx := context.Background()
	mc := NewMemoryCache()
	defer mc.Close()

	require.NoError(t, mc.Set(ctx, "short", "x", time.Millisecond))
	time.Sleep(5 * time.Millisecond)

	var s string
	assert.ErrorIs(t, mc.Get(ctx, "short", &s), ErrCacheMiss)
}

func TestMemoryCache_EvictsLeastRecentlyUsed(t *testing.T) {
	ctx := context.Background()
	mc := NewMemoryCache(WithMemoryMaxSize(2))
	defer mc.Close()

	require.NoError(t, mc.Set(ctx, "a", "1", time.Minute))
	time.Sleep(time.Millisecond)
	require.NoError(t, mc.Set(ctx, "b", "2", time.Minute))
	time.Sleep(time.Millisecond)

	var s string
	require.NoError(t, mc.Get(ctx, "a", &s))
	time.Sleep(time.Millisecond)

	require.NoError(t, mc.Set(ctx, "c", "3", time.Minute))

	assert.Equal(t, 2, mc.Len())
	assert.ErrorIs(t, mc.Get(ctx, "b", &s), ErrCacheMiss)
	assert.NoError(t, mc.Get(ctx, "a", &s))
}

func TestLayeredCache_PromotesFromL2(t *testing.T) {
	ctx := context.Background()
	fc, err := NewFileCache(WithFileRoot(t.TempDir()))
	require.NoError(t, err)

	lc := NewLayeredCache(fc)
	defer lc.Close()

	require.NoError(t, fc.Set(ctx, "only-l2", map[string]int{"n": 7}, 0))

	var got map[string]int
	require.NoError(t, lc.Get(ctx, "only-l2", &got))
	assert.Equal(t, 7, got["n"])

	ok, _ := lc.memCache.Exists(ctx, "only-l2")
	assert.True(t, ok)

	require.NoError(t, lc.Clear(ctx))
	assert.ErrorIs(t, lc.Get(ctx, "only-l2", &got), ErrCacheMiss)
}

func TestLayeredCache_StringsMatchL2(t *testing.T) {
	ctx := context.Background()
	fc, err := NewFileCache(WithFileRoot(t.TempDir()))
	require.NoError(t, err)

	lc := NewLayeredCache(fc)
	defer lc.Close()

	for key, value := range map[string]string{"plain": "abc", "numeric": "123"} {
		require.NoError(t, fc.Set(ctx, key, value, 0))

		var direct string
		require.NoError(t, fc.Get(ctx, key, &direct))
		assert.Equal(t, value, direct)

		// first read comes from L2, the second from memory
		for i := 0; i < 2; i++ {
			var layered string
			require.NoError(t, lc.Get(ctx, key, &layered))
			assert.Equal(t, value, layered)
		}
	}
}
