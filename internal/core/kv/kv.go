// Package kv defines the key-value persistence contract used for session state.
package kv

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by Get when the key is absent.
var ErrNotFound = errors.New("key not found")

// Entry describes a stored key without decoding its value.
type Entry struct {
	Key       string
	Size      int // encoded bytes
	UpdatedAt time.Time
}

// KV stores JSON-encoded values under string keys.
type KV interface {
	Get(ctx context.Context, key string, dest any) error
	Set(ctx context.Context, key string, value any) error
	Delete(ctx context.Context, key string) error
	Has(ctx context.Context, key string) (bool, error)
	// Entries lists keys starting with prefix, sorted by key.
	Entries(ctx context.Context, prefix string) ([]Entry, error)
}

// IsNotFound reports whether err signals a missing key.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
