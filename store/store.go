// Package store holds the key/value backends the governance engine persists into.
// Keys are short binary strings (prefix byte + packed ids), values are opaque.
package store

import (
	"context"
	"errors"
)

// ErrClosed is returned by backends after Close.
var ErrClosed = errors.New("store: closed")

// State is the minimal kv surface the engine needs. Get returns nil for a missing key.
type State interface {
	Get(ctx context.Context, key string) (*string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// Mutation is one buffered write. A nil Value deletes the key.
type Mutation struct {
	Key   string
	Value *string
}

// Batcher is implemented by backends that can apply a list of mutations atomically.
// The engine commits every call through Apply when available.
type Batcher interface {
	Apply(ctx context.Context, muts []Mutation) error
}

// Apply writes muts through the backend's batch path when it has one and falls back to
// sequential writes otherwise.
func Apply(ctx context.Context, s State, muts []Mutation) error {
	if len(muts) == 0 {
		return nil
	}
	if b, ok := s.(Batcher); ok {
		return b.Apply(ctx, muts)
	}
	for _, m := range muts {
		var err error
		if m.Value == nil {
			err = s.Delete(ctx, m.Key)
		} else {
			err = s.Set(ctx, m.Key, *m.Value)
		}
		if err != nil {
			return err
		}
	}
	return nil
}
