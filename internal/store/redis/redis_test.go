package redis

import (
	"os"
	"testing"
	"time"

	"distributed-lru-cache/internal/cache"

	"github.com/stretchr/testify/require"
)

// These tests need a live Redis; set CACHE_REDIS_TEST_ADDR to run them
// (everything runs in DB 15 and flushes its own keys by prefix).
func newLiveStore(t *testing.T) *RedisStore {
	t.Helper()
	addr := os.Getenv("CACHE_REDIS_TEST_ADDR")
	if addr == "" {
		t.Skip("CACHE_REDIS_TEST_ADDR not set; skipping redis integration tests")
	}
	s := New(Options{Addr: addr, DB: 15})
	require.NoError(t, s.Ping())
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestRedisStore_Contract(t *testing.T) {
	s := newLiveStore(t)
	prefix := "storetest:" + t.Name() + ":"
	k := prefix + "k"
	l := prefix + "l"
	n := prefix + "n"
	t.Cleanup(func() {
		for _, key := range []string{k, l, n} {
			_, _ = s.Delete(key)
		}
	})

	require.NoError(t, s.Set(k, []byte("v"), 0))
	v, found, err := s.Get(k)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, []byte("v"), v)

	require.NoError(t, s.Set(k, []byte("v"), 50*time.Millisecond))
	time.Sleep(100 * time.Millisecond)
	_, found, err = s.Get(k)
	require.NoError(t, err)
	require.False(t, found)

	total, err := s.RPush(l, "a", "b", "a")
	require.NoError(t, err)
	require.EqualValues(t, 3, total)

	vals, err := s.LRange(l, 0, -1)
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b", "a"}, vals)

	removed, err := s.LRem(l, 1, "a")
	require.NoError(t, err)
	require.EqualValues(t, 1, removed)

	cv, err := s.Incr(n)
	require.NoError(t, err)
	require.EqualValues(t, 1, cv)
}

func TestRedisStore_CacheEviction(t *testing.T) {
	s := newLiveStore(t)
	prefix := "cachetest:" + t.Name()

	c, err := cache.New(s, cache.Options{MaxSize: 2, Prefix: prefix})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Clear() })

	require.NoError(t, c.Set("a", 1, 0))
	require.NoError(t, c.Set("b", 2, 0))
	require.NoError(t, c.Set("c", 3, 0))

	var out int
	found, err := c.Get("a", &out)
	require.NoError(t, err)
	require.False(t, found, "a should have been evicted")

	stats, err := c.Stats()
	require.NoError(t, err)
	require.EqualValues(t, 2, stats.Size)
	require.Equal(t, []string{"b", "c"}, stats.Keys)
}
