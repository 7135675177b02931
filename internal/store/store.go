package store

import "time"

// Store defines the primitive operations a cache backend must provide:
// flat byte values with optional TTL, ordered string lists, integer
// counters, and batched execution via Pipeline.
// A missing key is never an error; errors are reserved for backend
// failures (I/O, connectivity), reported as *BackendError.
type Store interface {
	// Get returns the payload and whether it was present and not expired.
	Get(key string) ([]byte, bool, error)

	// Set stores the payload. If ttl > 0 the entry expires that long
	// after the call; ttl <= 0 stores without expiry and clears any
	// prior expiry on the key.
	Set(key string, value []byte, ttl time.Duration) error

	// Delete removes the key whatever its type, byte payload or list,
	// along with any expiry record. Returns whether the key existed.
	Delete(key string) (bool, error)

	// Exists reports whether a key of any type is present and not
	// expired. Checking a just-expired key removes it as a side effect.
	Exists(key string) (bool, error)

	// LRange returns the inclusive slice [start, end] of the list.
	// end = -1 means through the last element. A missing list yields an
	// empty slice.
	LRange(key string, start, end int64) ([]string, error)

	// LIndex returns the element at index (negative counts from the
	// end) and whether it exists.
	LIndex(key string, index int64) (string, bool, error)

	// LRem removes occurrences of value from the list: the first count
	// scanning front-to-back if count > 0, the last |count| scanning
	// back-to-front if count < 0, all occurrences if count == 0.
	// Returns how many were actually removed.
	LRem(key string, count int64, value string) (int64, error)

	// RPush appends values to the tail, creating the list if absent.
	// Returns the new length.
	RPush(key string, values ...string) (int64, error)

	// Incr increments an integer counter, implicitly 0 before first
	// use, and returns the new value.
	Incr(key string) (int64, error)

	// Decr decrements an integer counter and returns the new value.
	Decr(key string) (int64, error)

	// Pipeline returns a fresh batch builder bound to this store.
	Pipeline() Pipeline
}

// Pipeline queues mutations and applies them as one batch. Every
// builder method returns the same pipeline so calls can be chained.
//
// Execute applies the queued operations in enqueue order against the
// bound store and returns one result per operation in the same order.
// The queue is cleared after Execute whether it succeeded or failed, so
// a retried call never re-submits already-attempted operations. How
// much of a failed batch was applied before the failure is
// backend-dependent.
//
// Operations enqueued by concurrent callers before a given Execute are
// included in exactly one batch; none is executed twice or dropped.
// Whether the batch is applied atomically with respect to concurrent
// readers depends on the backend: the SQLite and Redis stores are
// transactional, the in-memory reference store only guarantees queue
// integrity.
type Pipeline interface {
	Get(key string) Pipeline
	Set(key string, value []byte, ttl time.Duration) Pipeline

	// SetEx is Set with a mandatory TTL.
	SetEx(key string, ttl time.Duration, value []byte) Pipeline

	Delete(key string) Pipeline
	LRem(key string, count int64, value string) Pipeline
	RPush(key string, values ...string) Pipeline
	Incr(key string) Pipeline
	Decr(key string) Pipeline

	Execute() ([]Result, error)
}
