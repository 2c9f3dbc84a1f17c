// Package kv is the key-value persistence boundary. Records are JSON documents
// under string keys; owner indexes and conversations are append-only logs whose
// entries carry a monotonic per-log sequence number.
package kv

import (
	"context"
	"errors"
	"fmt"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var (
	ErrNotFound = errors.New("kv: key not found")
	// ErrStoreFailure marks backend failures. Callers may retry; the store never does.
	ErrStoreFailure = errors.New("kv: store failure")
)

// StoreError wraps a backend error and matches both ErrStoreFailure and the cause.
type StoreError struct {
	Op  string
	Key string
	Err error
}

func (e *StoreError) Error() string { return fmt.Sprintf("kv %s %q: %v", e.Op, e.Key, e.Err) }
func (e *StoreError) Unwrap() []error {
	return []error{ErrStoreFailure, e.Err}
}

// Store is implemented by RedisStore. Keys passed in are logical keys; any
// namespacing is the implementation's concern.
type Store interface {
	// Get decodes the value at key into dst, or returns ErrNotFound.
	Get(ctx context.Context, key string, dst any) error
	Set(ctx context.Context, key string, value any) error
	// SetNX writes value only when key does not exist yet.
	SetNX(ctx context.Context, key string, value any) (bool, error)
	// MGet returns raw documents in key order, nil where a key is missing.
	MGet(ctx context.Context, keys []string) ([][]byte, error)
	Delete(ctx context.Context, key string) error

	// Append adds id to the end of log and returns its 1-based sequence number.
	Append(ctx context.Context, log string, id string) (int64, error)
	// Range returns every id of log in sequence order. A missing log is empty.
	Range(ctx context.Context, log string) ([]string, error)

	// Ping reports whether the backend is reachable.
	Ping(ctx context.Context) error
}

// GetJSON is the typed form of Store.Get.
func GetJSON[T any](ctx context.Context, s Store, key string) (*T, error) {
	var out T
	if err := s.Get(ctx, key, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// MGetJSON batch-reads keys. The result has one entry per key, nil for misses
// and for documents that no longer decode.
func MGetJSON[T any](ctx context.Context, s Store, keys []string) ([]*T, error) {
	raw, err := s.MGet(ctx, keys)
	if err != nil {
		return nil, err
	}
	out := make([]*T, len(raw))
	for i, b := range raw {
		if b == nil {
			continue
		}
		var v T
		if err := json.Unmarshal(b, &v); err != nil {
			continue
		}
		out[i] = &v
	}
	return out, nil
}

// ResolveLog reads a log and batch-fetches the records its ids point at.
// keyOf maps a log entry to the record key.
func ResolveLog[T any](ctx context.Context, s Store, log string, keyOf func(id string) string) ([]*T, error) {
	ids, err := s.Range(ctx, log)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = keyOf(id)
	}
	return MGetJSON[T](ctx, s, keys)
}
