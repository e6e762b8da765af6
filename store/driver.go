package store

import (
	"context"

	"github.com/pkg/errors"
)

// ErrNotFound reports that no record exists for a key. It is a valid
// empty state, not a failure: callers default to an empty document.
var ErrNotFound = errors.New("record not found")

// Driver is the key-value blob contract every storage backend
// implements. Values are opaque UTF-8 JSON documents; a Put fully
// overwrites the prior record.
type Driver interface {
	// Get returns the blob stored under key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Put stores data under key, overwriting any prior record.
	Put(ctx context.Context, key string, data []byte) error

	// Ping verifies the backend is reachable.
	Ping(ctx context.Context) error

	Close() error
}
