package handlers

import (
	"net/http"
	"time"

	"distributed-lru-cache/internal/store"

	"github.com/gin-gonic/gin"
)

// PipelineOp is one queued operation on the wire.
type PipelineOp struct {
	Op        string   `json:"op" binding:"required"`
	Key       string   `json:"key" binding:"required"`
	Value     []byte   `json:"value,omitempty"`
	TTLMillis int64    `json:"ttl_ms,omitempty"`
	Count     int64    `json:"count,omitempty"`
	Values    []string `json:"values,omitempty"`
}

// PipelineRequest carries a whole batch.
type PipelineRequest struct {
	Ops []PipelineOp `json:"ops" binding:"required"`
}

// PipelineResult mirrors store.Result on the wire.
type PipelineResult struct {
	Bytes   []byte `json:"bytes,omitempty"`
	Found   bool   `json:"found,omitempty"`
	Existed bool   `json:"existed,omitempty"`
	Int     int64  `json:"int,omitempty"`
}

// PipelineResponse carries one result per submitted operation, in
// submission order.
type PipelineResponse struct {
	Results []PipelineResult `json:"results"`
}

// ExecutePipeline handles POST /api/store/pipeline. The batch is
// queued onto one pipeline of the backing store and executed once, so
// whatever atomicity the backing store's pipeline offers applies to
// the whole request.
func (a *API) ExecutePipeline(c *gin.Context) {
	var req PipelineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload"})
		return
	}

	pipe := a.Store.Pipeline()
	for _, op := range req.Ops {
		switch store.OpKind(op.Op) {
		case store.OpGet:
			pipe.Get(op.Key)
		case store.OpSet:
			pipe.Set(op.Key, op.Value, time.Duration(op.TTLMillis)*time.Millisecond)
		case store.OpDelete:
			pipe.Delete(op.Key)
		case store.OpLRem:
			value := ""
			if len(op.Values) > 0 {
				value = op.Values[0]
			}
			pipe.LRem(op.Key, op.Count, value)
		case store.OpRPush:
			pipe.RPush(op.Key, op.Values...)
		case store.OpIncr:
			pipe.Incr(op.Key)
		case store.OpDecr:
			pipe.Decr(op.Key)
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown pipeline operation: " + op.Op})
			return
		}
	}

	results, err := pipe.Execute()
	if err != nil {
		backendError(c, err)
		return
	}

	resp := PipelineResponse{Results: make([]PipelineResult, len(results))}
	for i, r := range results {
		resp.Results[i] = PipelineResult{Bytes: r.Bytes, Found: r.Found, Existed: r.Existed, Int: r.Int}
	}
	for _, op := range req.Ops {
		if store.OpKind(op.Op) != store.OpGet {
			a.broadcast(op.Op, op.Key)
		}
	}
	c.JSON(http.StatusOK, resp)
}
