// Package slots defines the persistent key-value surface the directory and
// session code write through. Each backend lives in its own subpackage.
package slots

import "context"

// Slot is a named-value store. Get returns (nil, nil) when the key is
// absent; a present value is returned as stored. Set overwrites.
type Slot interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}
