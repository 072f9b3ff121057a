package repository

import (
	"context"
	"encoding/json"
	"errors"
)

var (
	ErrNotFound = RepositoryError("not found")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// FieldStore persists one opaque value per key.
// Get returns ErrNotFound when nothing was ever stored under key.
type FieldStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
}

// Load decodes the JSON value stored under key.
// A missing key, a backend failure or a decode failure all yield def.
func Load[T any](ctx context.Context, store FieldStore, key string, def T) T {
	raw, err := store.Get(ctx, key)
	if err != nil {
		return def
	}
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return def
	}
	return v
}

// Save encodes value as JSON and writes it under key.
func Save[T any](ctx context.Context, store FieldStore, key string, value T) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return errors.Join(RepositoryError("encode "+key), err)
	}
	return store.Put(ctx, key, raw)
}
