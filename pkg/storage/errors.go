package storage

import (
	"errors"
	"fmt"
)

// Sentinel conditions a caller can test with errors.Is. Anything the remote
// returns that maps to none of these surfaces as a plain *Error.
var (
	ErrNotFound         = errors.New("object not found")
	ErrAuth             = errors.New("authentication failed")
	ErrChecksumMismatch = errors.New("checksum rejected by server")
)

// Error wraps a failed storage operation with the operation name and the
// object key it targeted.
type Error struct {
	Op  string
	Key string
	Err error
}

func (e *Error) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("storage.%s %s: %v", e.Op, e.Key, e.Err)
	}
	return fmt.Sprintf("storage.%s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for error chaining support.
func (e *Error) Unwrap() error {
	return e.Err
}

func newError(op, key string, err error) *Error {
	return &Error{Op: op, Key: key, Err: err}
}
