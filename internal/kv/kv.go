// Package kv defines the key-value persistence port the ledger writes
// through, plus the in-memory and SQLite implementations.
package kv

import "context"

// Store is a minimal string key-value store. Get reports absence through the
// second return rather than an error; errors are reserved for transport and
// storage failures.
type Store interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}
