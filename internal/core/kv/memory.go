package kv

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"
)

// Memory is an in-process KV used when nothing should outlive the run
// (--ephemeral) or when the database cannot be opened.
type Memory struct {
	mu   sync.RWMutex
	data map[string]memoryValue
	now  func() time.Time
}

type memoryValue struct {
	raw     json.RawMessage
	updated time.Time
}

var _ KV = (*Memory)(nil)

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{data: make(map[string]memoryValue), now: time.Now}
}

func (m *Memory) Get(_ context.Context, key string, dest any) error {
	m.mu.RLock()
	v, ok := m.data[key]
	m.mu.RUnlock()
	if !ok {
		return fmt.Errorf("get %q: %w", key, ErrNotFound)
	}
	if err := json.Unmarshal(v.raw, dest); err != nil {
		return fmt.Errorf("decode %q: %w", key, err)
	}
	return nil
}

func (m *Memory) Set(_ context.Context, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %q: %w", key, err)
	}

	m.mu.Lock()
	m.data[key] = memoryValue{raw: raw, updated: m.now()}
	m.mu.Unlock()
	return nil
}

// Delete removes key. Missing keys are not an error.
func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.data, key)
	m.mu.Unlock()
	return nil
}

func (m *Memory) Has(_ context.Context, key string) (bool, error) {
	m.mu.RLock()
	_, ok := m.data[key]
	m.mu.RUnlock()
	return ok, nil
}

func (m *Memory) Entries(_ context.Context, prefix string) ([]Entry, error) {
	m.mu.RLock()
	var out []Entry
	for k, v := range m.data {
		if strings.HasPrefix(k, prefix) {
			out = append(out, Entry{Key: k, Size: len(v.raw), UpdatedAt: v.updated})
		}
	}
	m.mu.RUnlock()

	slices.SortFunc(out, func(a, b Entry) int { return strings.Compare(a.Key, b.Key) })
	return out, nil
}
