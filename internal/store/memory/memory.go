// Package memory provides the reference in-process implementation of
// the store contract: map-backed byte values with passive TTL expiry,
// ordered lists, counters, and a queue-based pipeline. An optional
// background sweep proactively removes expired entries.
package memory

import (
	"fmt"
	"strconv"
	"sync"
	"time"

	"distributed-lru-cache/internal/store"
)

// now is a small indirection to allow test stubbing.
var now = time.Now

// Options controls construction of a MemoryStore.
type Options struct {
	// CleanupInterval enables the background sweep when > 0. The sweep
	// goroutine is owned by the store and stopped by Close.
	CleanupInterval time.Duration
}

// MemoryStore is a map-backed Store. Counters share the byte-value
// keyspace (stored as ASCII integers) so a counter written by Incr is
// readable through Get, matching networked key-value backends.
type MemoryStore struct {
	mu     sync.RWMutex
	data   map[string][]byte
	lists  map[string][]string
	expiry map[string]time.Time

	// reaper, when set, replaces the plain payload delete for entries
	// removed by the background sweep. See SetReaper.
	reaperMu sync.RWMutex
	reaper   func(key string)

	done chan struct{}
	wg   sync.WaitGroup
}

// New constructs a MemoryStore and, if configured, starts its sweep.
func New(opts Options) *MemoryStore {
	s := &MemoryStore{
		data:   make(map[string][]byte),
		lists:  make(map[string][]string),
		expiry: make(map[string]time.Time),
		done:   make(chan struct{}),
	}
	if opts.CleanupInterval > 0 {
		s.wg.Add(1)
		go s.sweepLoop(opts.CleanupInterval)
	}
	return s
}

// Close stops the background sweep, if any, and waits for it to exit.
// The store remains usable afterwards; only the sweep is gone.
func (s *MemoryStore) Close() {
	select {
	case <-s.done:
	default:
		close(s.done)
	}
	s.wg.Wait()
}

// removeIfExpiredLocked deletes the key if its expiry has passed.
// Caller must hold the write lock.
func (s *MemoryStore) removeIfExpiredLocked(key string) bool {
	exp, ok := s.expiry[key]
	if !ok || now().Before(exp) {
		return false
	}
	delete(s.data, key)
	delete(s.expiry, key)
	return true
}

// Get implements Store.Get.
func (s *MemoryStore) Get(key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.removeIfExpiredLocked(key) {
		return nil, false, nil
	}
	v, ok := s.data[key]
	return v, ok, nil
}

// Set implements Store.Set.
func (s *MemoryStore) Set(key string, value []byte, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
	if ttl > 0 {
		s.expiry[key] = now().Add(ttl)
	} else {
		delete(s.expiry, key)
	}
	return nil
}

// Delete implements Store.Delete. Like a networked key-value server's
// DEL, it removes the key whatever its type, list keys included.
func (s *MemoryStore) Delete(key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, hadData := s.data[key]
	_, hadList := s.lists[key]
	if !hadData && !hadList {
		return false, nil
	}
	delete(s.data, key)
	delete(s.expiry, key)
	delete(s.lists, key)
	return true, nil
}

// Exists implements Store.Exists.
func (s *MemoryStore) Exists(key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.removeIfExpiredLocked(key) {
		return false, nil
	}
	if _, ok := s.data[key]; ok {
		return true, nil
	}
	_, ok := s.lists[key]
	return ok, nil
}

// LRange implements Store.LRange.
func (s *MemoryStore) LRange(key string, start, end int64) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	list, ok := s.lists[key]
	if !ok {
		return []string{}, nil
	}
	n := int64(len(list))
	if end == -1 || end >= n {
		end = n - 1
	}
	if start < 0 {
		start = 0
	}
	if start > end {
		return []string{}, nil
	}
	out := make([]string, end-start+1)
	copy(out, list[start:end+1])
	return out, nil
}

// LIndex implements Store.LIndex.
func (s *MemoryStore) LIndex(key string, index int64) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	list, ok := s.lists[key]
	if !ok {
		return "", false, nil
	}
	n := int64(len(list))
	if index < 0 {
		index += n
	}
	if index < 0 || index >= n {
		return "", false, nil
	}
	return list[index], true, nil
}

// LRem implements Store.LRem.
func (s *MemoryStore) LRem(key string, count int64, value string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	list, ok := s.lists[key]
	if !ok {
		return 0, nil
	}
	var removed int64
	switch {
	case count > 0:
		out := list[:0]
		for _, v := range list {
			if v == value && removed < count {
				removed++
				continue
			}
			out = append(out, v)
		}
		s.lists[key] = out
	case count < 0:
		limit := -count
		out := make([]string, 0, len(list))
		for i := len(list) - 1; i >= 0; i-- {
			if list[i] == value && removed < limit {
				removed++
				continue
			}
			out = append(out, list[i])
		}
		// out was built back-to-front
		for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
			out[i], out[j] = out[j], out[i]
		}
		s.lists[key] = out
	default:
		out := list[:0]
		for _, v := range list {
			if v == value {
				removed++
				continue
			}
			out = append(out, v)
		}
		s.lists[key] = out
	}
	// An emptied list key ceases to exist, as it does on Redis.
	if len(s.lists[key]) == 0 {
		delete(s.lists, key)
	}
	return removed, nil
}

// RPush implements Store.RPush.
func (s *MemoryStore) RPush(key string, values ...string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lists[key] = append(s.lists[key], values...)
	return int64(len(s.lists[key])), nil
}

// Incr implements Store.Incr.
func (s *MemoryStore) Incr(key string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addLocked(key, 1)
}

// Decr implements Store.Decr.
func (s *MemoryStore) Decr(key string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addLocked(key, -1)
}

func (s *MemoryStore) addLocked(key string, delta int64) (int64, error) {
	var cur int64
	if raw, ok := s.data[key]; ok {
		v, err := strconv.ParseInt(string(raw), 10, 64)
		if err != nil {
			return 0, store.Failure("incr", key, fmt.Errorf("value is not an integer: %w", err))
		}
		cur = v
	}
	cur += delta
	s.data[key] = []byte(strconv.FormatInt(cur, 10))
	return cur, nil
}

// Pipeline implements Store.Pipeline.
func (s *MemoryStore) Pipeline() store.Pipeline {
	return &memoryPipeline{store: s}
}

var _ store.Store = (*MemoryStore)(nil)
