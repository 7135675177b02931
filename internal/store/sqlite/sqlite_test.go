package sqlite

import (
	"testing"
	"time"

	"distributed-lru-cache/internal/testutil"

	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	db, err := testutil.NewInMemoryDB()
	require.NoError(t, err)
	s, err := NewWithDB(db)
	require.NoError(t, err)
	return s
}

func TestSetGetDelete(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.Set("k", []byte("v"), 0))
	v, found, err := s.Get("k")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, []byte("v"), v)

	exists, err := s.Exists("k")
	require.NoError(t, err)
	require.True(t, exists)

	existed, err := s.Delete("k")
	require.NoError(t, err)
	require.True(t, existed)

	existed, err = s.Delete("k")
	require.NoError(t, err)
	require.False(t, existed)

	_, found, err = s.Get("k")
	require.NoError(t, err)
	require.False(t, found)
}

func TestDeleteListKey(t *testing.T) {
	s := newTestStore(t)

	_, err := s.RPush("l", "a", "b")
	require.NoError(t, err)

	exists, err := s.Exists("l")
	require.NoError(t, err)
	require.True(t, exists)

	existed, err := s.Delete("l")
	require.NoError(t, err)
	require.True(t, existed)

	vals, err := s.LRange("l", 0, -1)
	require.NoError(t, err)
	require.Empty(t, vals)
}

func TestTTL(t *testing.T) {
	s := newTestStore(t)

	base := time.Now()
	now = func() time.Time { return base }
	t.Cleanup(func() { now = time.Now })

	require.NoError(t, s.Set("k", []byte("v"), time.Second))
	_, found, err := s.Get("k")
	require.NoError(t, err)
	require.True(t, found)

	base = base.Add(2 * time.Second)
	_, found, err = s.Get("k")
	require.NoError(t, err)
	require.False(t, found)

	// Expiry check removed the row as a side effect.
	exists, err := s.Exists("k")
	require.NoError(t, err)
	require.False(t, exists)
}

func TestOverwriteClearsExpiry(t *testing.T) {
	s := newTestStore(t)

	base := time.Now()
	now = func() time.Time { return base }
	t.Cleanup(func() { now = time.Now })

	require.NoError(t, s.Set("k", []byte("v"), time.Second))
	require.NoError(t, s.Set("k", []byte("v2"), 0))

	base = base.Add(time.Hour)
	v, found, err := s.Get("k")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, []byte("v2"), v)
}

func TestListOps(t *testing.T) {
	s := newTestStore(t)

	n, err := s.RPush("l", "a", "b", "a", "c")
	require.NoError(t, err)
	require.EqualValues(t, 4, n)

	vals, err := s.LRange("l", 0, -1)
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b", "a", "c"}, vals)

	vals, err = s.LRange("l", 1, 2)
	require.NoError(t, err)
	require.Equal(t, []string{"b", "a"}, vals)

	v, found, err := s.LIndex("l", -1)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "c", v)

	removed, err := s.LRem("l", 1, "a")
	require.NoError(t, err)
	require.EqualValues(t, 1, removed)

	vals, err = s.LRange("l", 0, -1)
	require.NoError(t, err)
	require.Equal(t, []string{"b", "a", "c"}, vals)

	removed, err = s.LRem("l", -1, "a")
	require.NoError(t, err)
	require.EqualValues(t, 1, removed)

	vals, err = s.LRange("l", 0, -1)
	require.NoError(t, err)
	require.Equal(t, []string{"b", "c"}, vals)
}

func TestCounters(t *testing.T) {
	s := newTestStore(t)

	n, err := s.Incr("c")
	require.NoError(t, err)
	require.EqualValues(t, 1, n)

	n, err = s.Incr("c")
	require.NoError(t, err)
	require.EqualValues(t, 2, n)

	n, err = s.Decr("c")
	require.NoError(t, err)
	require.EqualValues(t, 1, n)

	// Counters are plain rows readable through Get.
	v, found, err := s.Get("c")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, []byte("1"), v)
}

func TestPipeline_TransactionalBatch(t *testing.T) {
	s := newTestStore(t)

	pipe := s.Pipeline()
	pipe.Set("k", []byte("v"), 0).
		RPush("l", "a", "b").
		LRem("l", 1, "a").
		Incr("n").
		Get("k")

	results, err := pipe.Execute()
	require.NoError(t, err)
	require.Len(t, results, 5)
	require.EqualValues(t, 2, results[1].Int)
	require.EqualValues(t, 1, results[2].Int)
	require.EqualValues(t, 1, results[3].Int)
	require.True(t, results[4].Found)
	require.Equal(t, []byte("v"), results[4].Bytes)

	// Queue is cleared after execute.
	results, err = pipe.Execute()
	require.NoError(t, err)
	require.Empty(t, results)
}

func TestPipeline_RollbackOnFailure(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Set("bad", []byte("not-a-number"), 0))

	pipe := s.Pipeline()
	pipe.Set("k", []byte("v"), 0).Incr("bad")
	_, err := pipe.Execute()
	require.Error(t, err)

	// The failed batch rolled back as a unit; the set is gone too.
	_, found, err := s.Get("k")
	require.NoError(t, err)
	require.False(t, found)
}
