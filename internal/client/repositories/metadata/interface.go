// Package metadata is the key/value table of the local client database.
// Values are opaque bytes; callers seal anything sensitive before storing it.
package metadata

import "context"

// Repository reads and writes single metadata entries.
type Repository interface {
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, keys ...string) error
	Clear(ctx context.Context) error
}
