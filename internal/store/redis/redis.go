// Package redis implements the store contract on a Redis server using
// go-redis. TTLs, list operations, and counters map directly onto the
// corresponding Redis commands; the pipeline uses MULTI/EXEC, so
// batches are applied atomically.
package redis

import (
	"context"
	"errors"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"distributed-lru-cache/internal/store"
)

// Options configures the Redis connection.
type Options struct {
	Addr     string // host:port, defaults to localhost:6379
	Password string
	DB       int
}

// RedisStore is a networked Store backed by a shared Redis server.
// Because expiry, lists, and counters are native Redis features, many
// processes on many machines can mount the same cache through it.
type RedisStore struct {
	client *goredis.Client
	ctx    context.Context
}

// New connects to Redis. Store calls carry no per-call context, so
// operations run against a background context; go-redis's default dial
// and read timeouts still bound individual commands.
func New(opts Options) *RedisStore {
	addr := opts.Addr
	if addr == "" {
		addr = "localhost:6379"
	}
	client := goredis.NewClient(&goredis.Options{
		Addr:     addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	return &RedisStore{client: client, ctx: context.Background()}
}

// Close releases the client's connections.
func (s *RedisStore) Close() error { return s.client.Close() }

// Ping verifies connectivity.
func (s *RedisStore) Ping() error {
	return store.Failure("ping", "", s.client.Ping(s.ctx).Err())
}

// Get implements Store.Get.
func (s *RedisStore) Get(key string) ([]byte, bool, error) {
	b, err := s.client.Get(s.ctx, key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, store.Failure("get", key, err)
	}
	return b, true, nil
}

// Set implements Store.Set.
func (s *RedisStore) Set(key string, value []byte, ttl time.Duration) error {
	if ttl < 0 {
		ttl = 0
	}
	return store.Failure("set", key, s.client.Set(s.ctx, key, value, ttl).Err())
}

// Delete implements Store.Delete.
func (s *RedisStore) Delete(key string) (bool, error) {
	n, err := s.client.Del(s.ctx, key).Result()
	if err != nil {
		return false, store.Failure("delete", key, err)
	}
	return n > 0, nil
}

// Exists implements Store.Exists.
func (s *RedisStore) Exists(key string) (bool, error) {
	n, err := s.client.Exists(s.ctx, key).Result()
	if err != nil {
		return false, store.Failure("exists", key, err)
	}
	return n > 0, nil
}

// LRange implements Store.LRange.
func (s *RedisStore) LRange(key string, start, end int64) ([]string, error) {
	vals, err := s.client.LRange(s.ctx, key, start, end).Result()
	if err != nil {
		return nil, store.Failure("lrange", key, err)
	}
	return vals, nil
}

// LIndex implements Store.LIndex.
func (s *RedisStore) LIndex(key string, index int64) (string, bool, error) {
	v, err := s.client.LIndex(s.ctx, key, index).Result()
	if errors.Is(err, goredis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, store.Failure("lindex", key, err)
	}
	return v, true, nil
}

// LRem implements Store.LRem.
func (s *RedisStore) LRem(key string, count int64, value string) (int64, error) {
	n, err := s.client.LRem(s.ctx, key, count, value).Result()
	if err != nil {
		return 0, store.Failure("lrem", key, err)
	}
	return n, nil
}

// RPush implements Store.RPush.
func (s *RedisStore) RPush(key string, values ...string) (int64, error) {
	args := make([]any, len(values))
	for i, v := range values {
		args[i] = v
	}
	n, err := s.client.RPush(s.ctx, key, args...).Result()
	if err != nil {
		return 0, store.Failure("rpush", key, err)
	}
	return n, nil
}

// Incr implements Store.Incr.
func (s *RedisStore) Incr(key string) (int64, error) {
	n, err := s.client.Incr(s.ctx, key).Result()
	if err != nil {
		return 0, store.Failure("incr", key, err)
	}
	return n, nil
}

// Decr implements Store.Decr.
func (s *RedisStore) Decr(key string) (int64, error) {
	n, err := s.client.Decr(s.ctx, key).Result()
	if err != nil {
		return 0, store.Failure("decr", key, err)
	}
	return n, nil
}

// Pipeline implements Store.Pipeline.
func (s *RedisStore) Pipeline() store.Pipeline {
	return &redisPipeline{store: s}
}

var _ store.Store = (*RedisStore)(nil)
