package cache

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFileCache(t *testing.T) *FileCache {
	t.Helper()
	fc, err := NewFileCache(WithFileRoot(t.TempDir()), WithFileTTL(time.Hour))
	require.NoError(t, err)
	return fc
}

func TestFileCache_RoundTrip(t *testing.T) {
	ctx := context.Background()
	fc := newTestFileCache(t)

	payload := map[string]interface{}{"symbol": "AAPL", "price": 189.5}
	require.NoError(t, fc.Set(ctx, "k1", payload, 0))

	var got map[string]interface{}
	require.NoError(t, fc.Get(ctx, "k1", &got))
	assert.Equal(t, "AAPL", got["symbol"])
	assert.Equal(t, 189.5, got["price"])

	var raw json.RawMessage
	require.NoError(t, fc.Get(ctx, "k1", &raw))
	assert.JSONEq(t, `{"symbol":"AAPL","price":189.5}`, string(raw))
}

func TestFileCache_OnDiskLayout(t *testing.T) {
	ctx := context.Background()
	fc := newTestFileCache(t)

	require.NoError(t, fc.Set(ctx, "abc", json.RawMessage(`[1,2,3]`), 0))

	body, err := os.ReadFile(filepath.Join(fc.Root(), "abc.json"))
	require.NoError(t, err)

	var entry map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(body, &entry))
	assert.Contains(t, entry, "timestamp")
	assert.JSONEq(t, `[1,2,3]`, string(entry["data"]))
}

func TestFileCache_ExpiredEntryIsEvicted(t *testing.T) {
	ctx := context.Background()
	fc := newTestFileCache(t)

	now := time.Now()
	fc.now = func() time.Time { return now }
	require.NoError(t, fc.Set(ctx, "old", "value", 10*time.Second))

	var s string
	require.NoError(t, fc.Get(ctx, "old", &s))
	assert.Equal(t, "value", s)

	fc.now = func() time.Time { return now.Add(11 * time.Second) }
	assert.ErrorIs(t, fc.Get(ctx, "old", &s), ErrCacheMiss)

	_, err := os.Stat(filepath.Join(fc.Root(), "old.json"))
	assert.True(t, os.IsNotExist(err), "expired entry should be removed from disk")
}

func TestFileCache_CorruptEntryIsMiss(t *testing.T) {
	ctx := context.Background()
	fc := newTestFileCache(t)

	p := filepath.Join(fc.Root(), "bad.json")
	require.NoError(t, os.WriteFile(p, []byte("{not json"), 0o644))

	var v interface{}
	assert.ErrorIs(t, fc.Get(ctx, "bad", &v), ErrCacheMiss)
	_, err := os.Stat(p)
	assert.True(t, os.IsNotExist(err))
}

func TestFileCache_Clear(t *testing.T) {
	ctx := context.Background()
	fc := newTestFileCache(t)

	for _, k := range []string{"a", "b", "c"} {
		require.NoError(t, fc.Set(ctx, k, k, 0))
	}
	ok, err := fc.Exists(ctx, "b")
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, fc.Clear(ctx))

	matches, _ := filepath.Glob(filepath.Join(fc.Root(), "*.json"))
	assert.Empty(t, matches)
	ok, _ = fc.Exists(ctx, "a", "b", "c")
	assert.False(t, ok)
}

func TestFileCache_UnsafeKeyIsHashed(t *testing.T) {
	ctx := context.Background()
	fc := newTestFileCache(t)

	key := "https://example.com/a?b=c"
	require.NoError(t, fc.Set(ctx, key, 42, 0))

	var n int
	require.NoError(t, fc.Get(ctx, key, &n))
	assert.Equal(t, 42, n)

	_, err := os.Stat(filepath.Join(fc.Root(), HashKey(key)+".json"))
	assert.NoError(t, err)
}
