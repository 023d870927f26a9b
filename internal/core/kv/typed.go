package kv

import (
	"context"
	"strings"
)

// Slots is a namespace of keys holding values of one type. Keys are stored
// as "namespace:slot".
type Slots[T any] struct {
	store  KV
	prefix string
}

// NewSlots returns the slots of namespace in store.
func NewSlots[T any](store KV, namespace string) *Slots[T] {
	return &Slots[T]{store: store, prefix: namespace + ":"}
}

// Key returns the backend key for slot.
func (s *Slots[T]) Key(slot string) string {
	return s.prefix + slot
}

func (s *Slots[T]) Get(ctx context.Context, slot string) (T, error) {
	var v T
	err := s.store.Get(ctx, s.Key(slot), &v)
	return v, err
}

func (s *Slots[T]) Set(ctx context.Context, slot string, value T) error {
	return s.store.Set(ctx, s.Key(slot), value)
}

func (s *Slots[T]) Delete(ctx context.Context, slot string) error {
	return s.store.Delete(ctx, s.Key(slot))
}

func (s *Slots[T]) Has(ctx context.Context, slot string) (bool, error) {
	return s.store.Has(ctx, s.Key(slot))
}

// Entries lists the namespace with the prefix stripped from each key.
func (s *Slots[T]) Entries(ctx context.Context) ([]Entry, error) {
	entries, err := s.store.Entries(ctx, s.prefix)
	if err != nil {
		return nil, err
	}
	for i := range entries {
		entries[i].Key = strings.TrimPrefix(entries[i].Key, s.prefix)
	}
	return entries, nil
}
