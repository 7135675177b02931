package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// The wire format keeps byte payloads as base64 (encoding/json's
// default for []byte) and TTLs as integer milliseconds. Keys travel as
// path parameters, so they must not contain '/'.

// SetKeyRequest represents the payload for writing a key
type SetKeyRequest struct {
	Value []byte `json:"value"`
	// TTLMillis expires the entry that many milliseconds after the
	// write; 0 stores without expiry.
	TTLMillis int64 `json:"ttl_ms"`
}

// GetKeyResponse represents a key read
type GetKeyResponse struct {
	Value []byte `json:"value,omitempty"`
	Found bool   `json:"found"`
}

// DeleteKeyResponse reports whether the deleted key existed
type DeleteKeyResponse struct {
	Existed bool `json:"existed"`
}

// ExistsResponse reports key liveness
type ExistsResponse struct {
	Exists bool `json:"exists"`
}

// ListRangeResponse carries an inclusive list slice
type ListRangeResponse struct {
	Values []string `json:"values"`
}

// ListIndexResponse carries one list element
type ListIndexResponse struct {
	Value string `json:"value,omitempty"`
	Found bool   `json:"found"`
}

// ListRemoveRequest represents an lrem call
type ListRemoveRequest struct {
	Count int64  `json:"count"`
	Value string `json:"value" binding:"required"`
}

// ListRemoveResponse reports how many elements were removed
type ListRemoveResponse struct {
	Removed int64 `json:"removed"`
}

// ListPushRequest represents an rpush call
type ListPushRequest struct {
	Values []string `json:"values" binding:"required"`
}

// ListPushResponse reports the new list length
type ListPushResponse struct {
	Length int64 `json:"length"`
}

// CounterResponse reports the counter value after incr/decr
type CounterResponse struct {
	Value int64 `json:"value"`
}

func backendError(c *gin.Context, err error) {
	c.JSON(http.StatusInternalServerError, gin.H{
		"error": err.Error(),
	})
}

// GetKey handles GET /api/store/keys/:key
func (a *API) GetKey(c *gin.Context) {
	value, found, err := a.Store.Get(c.Param("key"))
	if err != nil {
		backendError(c, err)
		return
	}
	c.JSON(http.StatusOK, GetKeyResponse{Value: value, Found: found})
}

// SetKey handles PUT /api/store/keys/:key
func (a *API) SetKey(c *gin.Context) {
	var req SetKeyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload"})
		return
	}
	key := c.Param("key")
	if err := a.Store.Set(key, req.Value, time.Duration(req.TTLMillis)*time.Millisecond); err != nil {
		backendError(c, err)
		return
	}
	a.broadcast("set", key)
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// DeleteKey handles DELETE /api/store/keys/:key
func (a *API) DeleteKey(c *gin.Context) {
	key := c.Param("key")
	existed, err := a.Store.Delete(key)
	if err != nil {
		backendError(c, err)
		return
	}
	if existed {
		a.broadcast("delete", key)
	}
	c.JSON(http.StatusOK, DeleteKeyResponse{Existed: existed})
}

// ExistsKey handles GET /api/store/keys/:key/exists
func (a *API) ExistsKey(c *gin.Context) {
	exists, err := a.Store.Exists(c.Param("key"))
	if err != nil {
		backendError(c, err)
		return
	}
	c.JSON(http.StatusOK, ExistsResponse{Exists: exists})
}

// ListRange handles GET /api/store/lists/:key?start=0&end=-1
func (a *API) ListRange(c *gin.Context) {
	start, err1 := strconv.ParseInt(c.DefaultQuery("start", "0"), 10, 64)
	end, err2 := strconv.ParseInt(c.DefaultQuery("end", "-1"), 10, 64)
	if err1 != nil || err2 != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "start and end must be integers"})
		return
	}
	values, err := a.Store.LRange(c.Param("key"), start, end)
	if err != nil {
		backendError(c, err)
		return
	}
	c.JSON(http.StatusOK, ListRangeResponse{Values: values})
}

// ListIndex handles GET /api/store/lists/:key/index/:index
func (a *API) ListIndex(c *gin.Context) {
	index, err := strconv.ParseInt(c.Param("index"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "index must be an integer"})
		return
	}
	value, found, err := a.Store.LIndex(c.Param("key"), index)
	if err != nil {
		backendError(c, err)
		return
	}
	c.JSON(http.StatusOK, ListIndexResponse{Value: value, Found: found})
}

// ListRemove handles POST /api/store/lists/:key/remove
func (a *API) ListRemove(c *gin.Context) {
	var req ListRemoveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload"})
		return
	}
	key := c.Param("key")
	removed, err := a.Store.LRem(key, req.Count, req.Value)
	if err != nil {
		backendError(c, err)
		return
	}
	if removed > 0 {
		a.broadcast("lrem", key)
	}
	c.JSON(http.StatusOK, ListRemoveResponse{Removed: removed})
}

// ListPush handles POST /api/store/lists/:key/push
func (a *API) ListPush(c *gin.Context) {
	var req ListPushRequest
	if err := c.ShouldBindJSON(&req); err != nil || len(req.Values) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "values is required"})
		return
	}
	key := c.Param("key")
	length, err := a.Store.RPush(key, req.Values...)
	if err != nil {
		backendError(c, err)
		return
	}
	a.broadcast("rpush", key)
	c.JSON(http.StatusOK, ListPushResponse{Length: length})
}

// IncrCounter handles POST /api/store/counters/:key/incr
func (a *API) IncrCounter(c *gin.Context) {
	key := c.Param("key")
	value, err := a.Store.Incr(key)
	if err != nil {
		backendError(c, err)
		return
	}
	a.broadcast("incr", key)
	c.JSON(http.StatusOK, CounterResponse{Value: value})
}

// DecrCounter handles POST /api/store/counters/:key/decr
func (a *API) DecrCounter(c *gin.Context) {
	key := c.Param("key")
	value, err := a.Store.Decr(key)
	if err != nil {
		backendError(c, err)
		return
	}
	a.broadcast("decr", key)
	c.JSON(http.StatusOK, CounterResponse{Value: value})
}
