package sqlite

import (
	"errors"
	"sync"
	"time"

	"gorm.io/gorm"

	"distributed-lru-cache/internal/store"
)

var errUnknownOp = errors.New("unknown pipeline operation")

// sqlitePipeline queues operations and executes them inside one gorm
// transaction, so the whole batch commits or rolls back as a unit and
// is never observable partially applied.
type sqlitePipeline struct {
	store *SQLiteStore
	mu    sync.Mutex
	ops   []store.Op
}

func (p *sqlitePipeline) enqueue(op store.Op) store.Pipeline {
	p.mu.Lock()
	p.ops = append(p.ops, op)
	p.mu.Unlock()
	return p
}

func (p *sqlitePipeline) Get(key string) store.Pipeline {
	return p.enqueue(store.Op{Kind: store.OpGet, Key: key})
}

func (p *sqlitePipeline) Set(key string, value []byte, ttl time.Duration) store.Pipeline {
	return p.enqueue(store.Op{Kind: store.OpSet, Key: key, Value: value, TTL: ttl})
}

func (p *sqlitePipeline) SetEx(key string, ttl time.Duration, value []byte) store.Pipeline {
	return p.enqueue(store.Op{Kind: store.OpSet, Key: key, Value: value, TTL: ttl})
}

func (p *sqlitePipeline) Delete(key string) store.Pipeline {
	return p.enqueue(store.Op{Kind: store.OpDelete, Key: key})
}

func (p *sqlitePipeline) LRem(key string, count int64, value string) store.Pipeline {
	return p.enqueue(store.Op{Kind: store.OpLRem, Key: key, Count: count, Values: []string{value}})
}

func (p *sqlitePipeline) RPush(key string, values ...string) store.Pipeline {
	return p.enqueue(store.Op{Kind: store.OpRPush, Key: key, Values: values})
}

func (p *sqlitePipeline) Incr(key string) store.Pipeline {
	return p.enqueue(store.Op{Kind: store.OpIncr, Key: key})
}

func (p *sqlitePipeline) Decr(key string) store.Pipeline {
	return p.enqueue(store.Op{Kind: store.OpDecr, Key: key})
}

// Execute implements Pipeline.Execute. The queue is cleared whether
// the transaction commits or rolls back.
func (p *sqlitePipeline) Execute() ([]store.Result, error) {
	p.mu.Lock()
	ops := p.ops
	p.ops = nil
	p.mu.Unlock()

	results := make([]store.Result, 0, len(ops))
	err := p.store.db.Transaction(func(tx *gorm.DB) error {
		for _, op := range ops {
			res, err := applyTx(tx, op)
			if err != nil {
				return err
			}
			results = append(results, res)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return results, nil
}

func applyTx(tx *gorm.DB, op store.Op) (store.Result, error) {
	switch op.Kind {
	case store.OpGet:
		b, found, err := getTx(tx, op.Key)
		return store.Result{Bytes: b, Found: found}, err
	case store.OpSet:
		return store.Result{}, setTx(tx, op.Key, op.Value, op.TTL)
	case store.OpDelete:
		existed, err := deleteTx(tx, op.Key)
		return store.Result{Existed: existed}, err
	case store.OpLRem:
		n, err := lremTx(tx, op.Key, op.Count, op.Values[0])
		return store.Result{Int: n}, err
	case store.OpRPush:
		n, err := rpushTx(tx, op.Key, op.Values...)
		return store.Result{Int: n}, err
	case store.OpIncr:
		n, err := addTx(tx, op.Key, 1)
		return store.Result{Int: n}, err
	case store.OpDecr:
		n, err := addTx(tx, op.Key, -1)
		return store.Result{Int: n}, err
	}
	return store.Result{}, store.Failure(string(op.Kind), op.Key, errUnknownOp)
}
