package persistence

import (
	"context"
	"errors"
)

// ErrKeyNotFound is returned by Backend.Get for absent keys.
var ErrKeyNotFound = errors.New("persistence: key not found")

// ErrTxConflict is returned by Backend.Atomic when optimistic retries run out.
var ErrTxConflict = errors.New("persistence: transaction conflict")

// AtomicFunc receives the current values of the requested keys and returns the
// values to write. Absent keys are missing from current. It may run more than
// once when a backend retries.
type AtomicFunc func(current map[string][]byte) (map[string][]byte, error)

// Backend is a byte-oriented key/value store.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, keys ...string) error
	// Atomic reads keys, runs fn and commits its writes as one unit. When fn
	// returns an error nothing is written.
	Atomic(ctx context.Context, keys []string, fn AtomicFunc) error
	Ping(ctx context.Context) error
	Close() error
}
