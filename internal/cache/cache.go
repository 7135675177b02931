// Package cache implements a least-recently-used cache with per-entry
// TTL on top of the pluggable store contract. All cache state lives in
// the store (payloads, recency list, size counter), so the same Cache
// works against the in-process store or a shared networked one, and
// many processes can drive one cache.
package cache

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"distributed-lru-cache/internal/store"
)

const (
	defaultMaxSize = 10000
	defaultTTL     = time.Hour
	defaultPrefix  = "lru_cache"
)

// Reaper is implemented by stores whose background sweep can hand
// expired keys to a custom deletion path.
type Reaper interface {
	SetReaper(fn func(key string))
}

// Options configures a Cache.
type Options struct {
	// MaxSize bounds the number of live entries. Defaults to 10000.
	MaxSize int

	// DefaultTTL applies to Set calls with no explicit TTL. Defaults
	// to one hour.
	DefaultTTL time.Duration

	// Prefix namespaces every store key owned by this cache. Defaults
	// to "lru_cache".
	Prefix string

	// Codec serializes values. Defaults to JSON.
	Codec Codec

	// PayloadOnlySweep restores the legacy behavior where a store
	// sweep removes only the expired payload, leaving the key in the
	// recency list and the size counter untouched until drift
	// self-heals. By default the cache installs a reaper on stores
	// that support one, so swept keys go through the full delete path.
	PayloadOnlySweep bool
}

// Stats is a snapshot of cache bookkeeping. Size and Keys are read
// independently, not pipelined together, so they can disagree
// transiently under concurrent mutation.
type Stats struct {
	Size    int64    `json:"size"`
	MaxSize int      `json:"max_size"`
	Keys    []string `json:"keys"`
}

// Cache orchestrates LRU and TTL bookkeeping over a Store. It holds no
// cache contents of its own and is safe for concurrent use; every
// mutation that touches both the recency list and the counter is
// issued as a single pipeline.
type Cache struct {
	store      store.Store
	maxSize    int
	defaultTTL time.Duration
	codec      Codec

	dataPrefix string
	listKey    string
	sizeKey    string
}

// New builds a Cache over s and initializes the size counter if the
// backend has never hosted this cache before.
func New(s store.Store, opts Options) (*Cache, error) {
	if opts.MaxSize <= 0 {
		opts.MaxSize = defaultMaxSize
	}
	if opts.DefaultTTL <= 0 {
		opts.DefaultTTL = defaultTTL
	}
	if opts.Prefix == "" {
		opts.Prefix = defaultPrefix
	}
	if opts.Codec == nil {
		opts.Codec = JSONCodec{}
	}

	c := &Cache{
		store:      s,
		maxSize:    opts.MaxSize,
		defaultTTL: opts.DefaultTTL,
		codec:      opts.Codec,
		dataPrefix: opts.Prefix + ":data:",
		listKey:    opts.Prefix + ":keys",
		sizeKey:    opts.Prefix + ":size",
	}

	ok, err := s.Exists(c.sizeKey)
	if err != nil {
		return nil, err
	}
	if !ok {
		if err := s.Set(c.sizeKey, []byte("0"), 0); err != nil {
			return nil, err
		}
	}

	if r, canReap := s.(Reaper); canReap && !opts.PayloadOnlySweep {
		r.SetReaper(c.reap)
	}
	return c, nil
}

// reap is the sweep deletion path: expired payload keys belonging to
// this cache have their list membership and counter unwound along with
// the payload; anything else is deleted directly. The sweep only hands
// over keys it found live-but-expired, so the bookkeeping is unwound
// without an existence check (an expired key would fail one).
func (c *Cache) reap(storeKey string) {
	if key, ok := strings.CutPrefix(storeKey, c.dataPrefix); ok {
		pipe := c.store.Pipeline()
		pipe.Delete(storeKey).LRem(c.listKey, 1, key).Decr(c.sizeKey)
		_, _ = pipe.Execute()
		return
	}
	_, _ = c.store.Delete(storeKey)
}

func (c *Cache) dataKey(key string) string {
	return c.dataPrefix + key
}

// Get fetches a value into dest and refreshes the key's recency. It
// returns whether the key was present (and not expired).
//
// A stored value that serializes to the codec's "no value" form (JSON
// null) still reports found=true but leaves dest untouched; such a
// value is indistinguishable from a zero write by inspection of dest
// alone. Known limitation, kept deliberately.
func (c *Cache) Get(key string, dest any) (bool, error) {
	dataKey := c.dataKey(key)

	ok, err := c.store.Exists(dataKey)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}

	// Move the key to the most-recently-used end.
	pipe := c.store.Pipeline()
	pipe.LRem(c.listKey, 1, key).RPush(c.listKey, key)
	if _, err := pipe.Execute(); err != nil {
		return false, err
	}

	raw, found, err := c.store.Get(dataKey)
	if err != nil {
		return false, err
	}
	if !found {
		// Expired between the existence check and the read.
		return false, nil
	}
	if err := c.codec.Unmarshal(raw, dest); err != nil {
		return false, fmt.Errorf("cache: decode %q: %w", key, err)
	}
	return true, nil
}

// Set stores a value under key. A ttl <= 0 uses the cache's default
// TTL. Inserting a genuinely new key at capacity evicts the least
// recently used entry; overwriting never evicts and never changes the
// logical size.
//
// The decide-then-pipeline sequence is not atomic: concurrent inserts
// of distinct new keys can both pass the capacity check and exceed
// MaxSize until later inserts correct it.
func (c *Cache) Set(key string, value any, ttl time.Duration) error {
	raw, err := c.codec.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache: encode %q: %w", key, err)
	}
	if ttl <= 0 {
		ttl = c.defaultTTL
	}

	dataKey := c.dataKey(key)
	pipe := c.store.Pipeline()

	exists, err := c.store.Exists(dataKey)
	if err != nil {
		return err
	}
	if !exists {
		size, err := c.readSize()
		if err != nil {
			return err
		}
		if size >= int64(c.maxSize) {
			oldest, ok, err := c.store.LIndex(c.listKey, 0)
			if err != nil {
				return err
			}
			if ok {
				pipe.LRem(c.listKey, 1, oldest)
				pipe.Delete(c.dataKey(oldest))
			} else {
				// List empty but counter positive: self-heal.
				pipe.Set(c.sizeKey, []byte("0"), 0)
			}
		}
		pipe.Incr(c.sizeKey)
	} else {
		pipe.LRem(c.listKey, 1, key)
	}

	pipe.RPush(c.listKey, key)
	pipe.SetEx(dataKey, ttl, raw)
	_, err = pipe.Execute()
	return err
}

// Delete removes a key. Returns whether it existed; deleting a missing
// key is a no-op with no pipeline side effects.
func (c *Cache) Delete(key string) (bool, error) {
	dataKey := c.dataKey(key)

	ok, err := c.store.Exists(dataKey)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}

	pipe := c.store.Pipeline()
	pipe.Delete(dataKey).LRem(c.listKey, 1, key).Decr(c.sizeKey)
	if _, err := pipe.Execute(); err != nil {
		return false, err
	}
	return true, nil
}

// Clear removes every entry the recency list knows about, the list
// itself, and resets the size counter.
func (c *Cache) Clear() error {
	keys, err := c.store.LRange(c.listKey, 0, -1)
	if err != nil {
		return err
	}

	pipe := c.store.Pipeline()
	for _, key := range keys {
		pipe.Delete(c.dataKey(key))
	}
	pipe.Delete(c.listKey)
	pipe.Set(c.sizeKey, []byte("0"), 0)
	_, err = pipe.Execute()
	return err
}

// Stats returns the current size, capacity, and recency-ordered keys
// (least recently used first). The two reads are an explicitly
// non-atomic snapshot.
func (c *Cache) Stats() (Stats, error) {
	size, err := c.readSize()
	if err != nil {
		return Stats{}, err
	}
	keys, err := c.store.LRange(c.listKey, 0, -1)
	if err != nil {
		return Stats{}, err
	}
	return Stats{Size: size, MaxSize: c.maxSize, Keys: keys}, nil
}

func (c *Cache) readSize() (int64, error) {
	raw, ok, err := c.store.Get(c.sizeKey)
	if err != nil {
		return 0, err
	}
	if !ok || len(raw) == 0 {
		return 0, nil
	}
	size, err := strconv.ParseInt(string(raw), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("cache: size counter %q: %w", string(raw), err)
	}
	return size, nil
}
