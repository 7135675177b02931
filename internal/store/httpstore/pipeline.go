package httpstore

import (
	"net/http"
	"sync"
	"time"

	"distributed-lru-cache/internal/handlers"
	"distributed-lru-cache/internal/store"
)

// httpPipeline queues operations locally and submits the whole batch
// as one request. The server replays it onto its own store's pipeline,
// so the batch inherits that store's atomicity.
type httpPipeline struct {
	client *Client
	mu     sync.Mutex
	ops    []store.Op
}

func (p *httpPipeline) enqueue(op store.Op) store.Pipeline {
	p.mu.Lock()
	p.ops = append(p.ops, op)
	p.mu.Unlock()
	return p
}

func (p *httpPipeline) Get(key string) store.Pipeline {
	return p.enqueue(store.Op{Kind: store.OpGet, Key: key})
}

func (p *httpPipeline) Set(key string, value []byte, ttl time.Duration) store.Pipeline {
	return p.enqueue(store.Op{Kind: store.OpSet, Key: key, Value: value, TTL: ttl})
}

func (p *httpPipeline) SetEx(key string, ttl time.Duration, value []byte) store.Pipeline {
	return p.enqueue(store.Op{Kind: store.OpSet, Key: key, Value: value, TTL: ttl})
}

func (p *httpPipeline) Delete(key string) store.Pipeline {
	return p.enqueue(store.Op{Kind: store.OpDelete, Key: key})
}

func (p *httpPipeline) LRem(key string, count int64, value string) store.Pipeline {
	return p.enqueue(store.Op{Kind: store.OpLRem, Key: key, Count: count, Values: []string{value}})
}

func (p *httpPipeline) RPush(key string, values ...string) store.Pipeline {
	return p.enqueue(store.Op{Kind: store.OpRPush, Key: key, Values: values})
}

func (p *httpPipeline) Incr(key string) store.Pipeline {
	return p.enqueue(store.Op{Kind: store.OpIncr, Key: key})
}

func (p *httpPipeline) Decr(key string) store.Pipeline {
	return p.enqueue(store.Op{Kind: store.OpDecr, Key: key})
}

// Execute implements Pipeline.Execute. The local queue is cleared
// before the request is sent, so a retried call never re-submits a
// batch that may already have been applied server-side.
func (p *httpPipeline) Execute() ([]store.Result, error) {
	p.mu.Lock()
	ops := p.ops
	p.ops = nil
	p.mu.Unlock()

	req := handlers.PipelineRequest{Ops: make([]handlers.PipelineOp, len(ops))}
	for i, op := range ops {
		req.Ops[i] = handlers.PipelineOp{
			Op:        string(op.Kind),
			Key:       op.Key,
			Value:     op.Value,
			TTLMillis: op.TTL.Milliseconds(),
			Count:     op.Count,
			Values:    op.Values,
		}
	}

	var resp handlers.PipelineResponse
	if err := p.client.do(http.MethodPost, "/api/store/pipeline", req, &resp); err != nil {
		return nil, err
	}

	results := make([]store.Result, len(resp.Results))
	for i, r := range resp.Results {
		results[i] = store.Result{Bytes: r.Bytes, Found: r.Found, Existed: r.Existed, Int: r.Int}
	}
	return results, nil
}
