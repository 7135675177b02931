package redis

import (
	"errors"
	"sync"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"distributed-lru-cache/internal/store"
)

// redisPipeline queues operations locally and replays them onto a
// MULTI/EXEC transaction on Execute. The local queue carries the
// concurrent-enqueue guarantee; Redis carries atomicity.
type redisPipeline struct {
	store *RedisStore
	mu    sync.Mutex
	ops   []store.Op
}

func (p *redisPipeline) enqueue(op store.Op) store.Pipeline {
	p.mu.Lock()
	p.ops = append(p.ops, op)
	p.mu.Unlock()
	return p
}

func (p *redisPipeline) Get(key string) store.Pipeline {
	return p.enqueue(store.Op{Kind: store.OpGet, Key: key})
}

func (p *redisPipeline) Set(key string, value []byte, ttl time.Duration) store.Pipeline {
	return p.enqueue(store.Op{Kind: store.OpSet, Key: key, Value: value, TTL: ttl})
}

func (p *redisPipeline) SetEx(key string, ttl time.Duration, value []byte) store.Pipeline {
	return p.enqueue(store.Op{Kind: store.OpSet, Key: key, Value: value, TTL: ttl})
}

func (p *redisPipeline) Delete(key string) store.Pipeline {
	return p.enqueue(store.Op{Kind: store.OpDelete, Key: key})
}

func (p *redisPipeline) LRem(key string, count int64, value string) store.Pipeline {
	return p.enqueue(store.Op{Kind: store.OpLRem, Key: key, Count: count, Values: []string{value}})
}

func (p *redisPipeline) RPush(key string, values ...string) store.Pipeline {
	return p.enqueue(store.Op{Kind: store.OpRPush, Key: key, Values: values})
}

func (p *redisPipeline) Incr(key string) store.Pipeline {
	return p.enqueue(store.Op{Kind: store.OpIncr, Key: key})
}

func (p *redisPipeline) Decr(key string) store.Pipeline {
	return p.enqueue(store.Op{Kind: store.OpDecr, Key: key})
}

// Execute implements Pipeline.Execute.
func (p *redisPipeline) Execute() ([]store.Result, error) {
	p.mu.Lock()
	ops := p.ops
	p.ops = nil
	p.mu.Unlock()

	ctx := p.store.ctx
	pipe := p.store.client.TxPipeline()
	cmds := make([]goredis.Cmder, len(ops))
	for i, op := range ops {
		switch op.Kind {
		case store.OpGet:
			cmds[i] = pipe.Get(ctx, op.Key)
		case store.OpSet:
			ttl := op.TTL
			if ttl < 0 {
				ttl = 0
			}
			cmds[i] = pipe.Set(ctx, op.Key, op.Value, ttl)
		case store.OpDelete:
			cmds[i] = pipe.Del(ctx, op.Key)
		case store.OpLRem:
			cmds[i] = pipe.LRem(ctx, op.Key, op.Count, op.Values[0])
		case store.OpRPush:
			args := make([]any, len(op.Values))
			for j, v := range op.Values {
				args[j] = v
			}
			cmds[i] = pipe.RPush(ctx, op.Key, args...)
		case store.OpIncr:
			cmds[i] = pipe.Incr(ctx, op.Key)
		case store.OpDecr:
			cmds[i] = pipe.Decr(ctx, op.Key)
		}
	}

	// Exec reports goredis.Nil when any queued read missed; a miss is
	// not a batch failure.
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, goredis.Nil) {
		return nil, store.Failure("pipeline", "", err)
	}

	results := make([]store.Result, len(ops))
	for i, op := range ops {
		switch op.Kind {
		case store.OpGet:
			b, err := cmds[i].(*goredis.StringCmd).Bytes()
			if errors.Is(err, goredis.Nil) {
				results[i] = store.Result{}
			} else if err != nil {
				return nil, store.Failure("get", op.Key, err)
			} else {
				results[i] = store.Result{Bytes: b, Found: true}
			}
		case store.OpSet:
			if err := cmds[i].Err(); err != nil {
				return nil, store.Failure("set", op.Key, err)
			}
		case store.OpDelete:
			n, err := cmds[i].(*goredis.IntCmd).Result()
			if err != nil {
				return nil, store.Failure("delete", op.Key, err)
			}
			results[i] = store.Result{Existed: n > 0}
		default:
			n, err := cmds[i].(*goredis.IntCmd).Result()
			if err != nil {
				return nil, store.Failure(string(op.Kind), op.Key, err)
			}
			results[i] = store.Result{Int: n}
		}
	}
	return results, nil
}
