package storage

import (
	"context"
	"io"
)

// ProgressFunc receives the cumulative number of bytes moved so far for a
// single object transfer. Callbacks for one transfer come from exactly one
// goroutine, in non-decreasing order.
type ProgressFunc func(transferred int64)

// ObjectMeta describes one entry of a directory listing.
type ObjectMeta struct {
	Key         string // normalized object key; directories end with "/"
	Size        int64
	IsDirectory bool
	Checksum    string // hex SHA-256, empty when the backend carries none
	ContentType string
}

// Client is the storage surface the sync core consumes. An implementation
// wraps one remote namespace (a storage zone, or a bucket/prefix).
type Client interface {
	// List returns the entries of a single directory level. dir is ""
	// for the namespace root, otherwise a key ending with "/".
	List(ctx context.Context, dir string) ([]ObjectMeta, error)

	// Upload streams body to key. size is the exact content length.
	// checksum is an optional hex SHA-256 digest the server may verify;
	// contentType is optional.
	Upload(ctx context.Context, key string, body io.Reader, size int64, checksum, contentType string, fn ProgressFunc) error

	// Download streams the object at key into w.
	Download(ctx context.Context, key string, w io.Writer, fn ProgressFunc) error

	// Delete removes the object at key.
	Delete(ctx context.Context, key string) error
}
