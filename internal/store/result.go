package store

import "time"

// OpKind identifies a queued pipeline operation.
type OpKind string

const (
	OpGet    OpKind = "get"
	OpSet    OpKind = "set"
	OpDelete OpKind = "delete"
	OpLRem   OpKind = "lrem"
	OpRPush  OpKind = "rpush"
	OpIncr   OpKind = "incr"
	OpDecr   OpKind = "decr"
)

// Op is one pending pipeline operation. Only the fields relevant to its
// kind are populated.
type Op struct {
	Kind   OpKind
	Key    string
	Value  []byte
	TTL    time.Duration
	Count  int64
	Values []string
}

// Result is the outcome of one pipeline operation.
//
// Exactly one of the typed fields is meaningful, according to the
// operation kind: Bytes/Found for get, Existed for delete, Int for
// lrem/rpush/incr/decr. A successful set has no payload.
type Result struct {
	Bytes   []byte
	Found   bool
	Existed bool
	Int     int64
}
