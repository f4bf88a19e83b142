// Package metadata persists small key/value pairs of client state (the
// session token and the name of the user it belongs to) in SQLite.
package metadata

import (
	"context"
)

// Repository is a durable key/value table. Get returns (nil, nil) for a
// missing key. All writes are visible to the next read on the same handle.
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, keys ...string) error
}
