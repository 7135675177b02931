package memory

import (
	"errors"
	"sync"
	"time"

	"distributed-lru-cache/internal/store"
)

var errUnknownOp = errors.New("unknown pipeline operation")

// memoryPipeline queues operations and replays them against the store
// on Execute. The mutex protects the queue only: concurrent enqueue is
// safe and no operation is dropped or duplicated, but the batch is not
// applied atomically with respect to other goroutines' direct store
// calls; each operation takes the store lock individually.
type memoryPipeline struct {
	store *MemoryStore
	mu    sync.Mutex
	ops   []store.Op
}

func (p *memoryPipeline) enqueue(op store.Op) store.Pipeline {
	p.mu.Lock()
	p.ops = append(p.ops, op)
	p.mu.Unlock()
	return p
}

func (p *memoryPipeline) Get(key string) store.Pipeline {
	return p.enqueue(store.Op{Kind: store.OpGet, Key: key})
}

func (p *memoryPipeline) Set(key string, value []byte, ttl time.Duration) store.Pipeline {
	return p.enqueue(store.Op{Kind: store.OpSet, Key: key, Value: value, TTL: ttl})
}

func (p *memoryPipeline) SetEx(key string, ttl time.Duration, value []byte) store.Pipeline {
	return p.enqueue(store.Op{Kind: store.OpSet, Key: key, Value: value, TTL: ttl})
}

func (p *memoryPipeline) Delete(key string) store.Pipeline {
	return p.enqueue(store.Op{Kind: store.OpDelete, Key: key})
}

func (p *memoryPipeline) LRem(key string, count int64, value string) store.Pipeline {
	return p.enqueue(store.Op{Kind: store.OpLRem, Key: key, Count: count, Values: []string{value}})
}

func (p *memoryPipeline) RPush(key string, values ...string) store.Pipeline {
	return p.enqueue(store.Op{Kind: store.OpRPush, Key: key, Values: values})
}

func (p *memoryPipeline) Incr(key string) store.Pipeline {
	return p.enqueue(store.Op{Kind: store.OpIncr, Key: key})
}

func (p *memoryPipeline) Decr(key string) store.Pipeline {
	return p.enqueue(store.Op{Kind: store.OpDecr, Key: key})
}

// Execute implements Pipeline.Execute. The queue is detached under the
// lock first, so operations enqueued concurrently with Execute land in
// exactly one batch; the queue is left empty regardless of outcome.
func (p *memoryPipeline) Execute() ([]store.Result, error) {
	p.mu.Lock()
	ops := p.ops
	p.ops = nil
	p.mu.Unlock()

	results := make([]store.Result, 0, len(ops))
	for _, op := range ops {
		res, err := apply(p.store, op)
		if err != nil {
			return results, err
		}
		results = append(results, res)
	}
	return results, nil
}

// apply runs one queued operation against the store.
func apply(s store.Store, op store.Op) (store.Result, error) {
	switch op.Kind {
	case store.OpGet:
		b, found, err := s.Get(op.Key)
		return store.Result{Bytes: b, Found: found}, err
	case store.OpSet:
		return store.Result{}, s.Set(op.Key, op.Value, op.TTL)
	case store.OpDelete:
		existed, err := s.Delete(op.Key)
		return store.Result{Existed: existed}, err
	case store.OpLRem:
		n, err := s.LRem(op.Key, op.Count, op.Values[0])
		return store.Result{Int: n}, err
	case store.OpRPush:
		n, err := s.RPush(op.Key, op.Values...)
		return store.Result{Int: n}, err
	case store.OpIncr:
		n, err := s.Incr(op.Key)
		return store.Result{Int: n}, err
	case store.OpDecr:
		n, err := s.Decr(op.Key)
		return store.Result{Int: n}, err
	}
	return store.Result{}, store.Failure(string(op.Kind), op.Key, errUnknownOp)
}
