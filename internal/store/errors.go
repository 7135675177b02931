package store

import "fmt"

// BackendError wraps a failure of the underlying backend (I/O,
// connectivity, transaction rollback). Missing keys never produce one.
type BackendError struct {
	Op  string
	Key string
	Err error
}

func (e *BackendError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("store: %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("store: %s %q: %v", e.Op, e.Key, e.Err)
}

func (e *BackendError) Unwrap() error { return e.Err }

// Failure wraps err as a *BackendError for the given operation and key.
// Returns nil if err is nil.
func Failure(op, key string, err error) error {
	if err == nil {
		return nil
	}
	return &BackendError{Op: op, Key: key, Err: err}
}
