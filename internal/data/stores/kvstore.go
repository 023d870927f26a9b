// Package stores implements the persistence contracts on top of SQLite.
package stores

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/colonyops/patchview/internal/core/kv"
	"github.com/colonyops/patchview/internal/data/db"
)

// KVStore implements kv.KV on the kv_store table. Values are stored as JSON.
type KVStore struct {
	db  *db.DB
	now func() time.Time
}

var _ kv.KV = (*KVStore)(nil)

func NewKVStore(db *db.DB) *KVStore {
	return &KVStore{db: db, now: time.Now}
}

func (s *KVStore) Get(ctx context.Context, key string, dest any) error {
	row, err := s.db.Queries().KVGet(ctx, key)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("get %q: %w", key, kv.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("get %q: %w", key, err)
	}

	if err := json.Unmarshal(row.Value, dest); err != nil {
		return fmt.Errorf("decode %q: %w", key, err)
	}
	return nil
}

// Set upserts key. The first write time is kept as created_at.
func (s *KVStore) Set(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %q: %w", key, err)
	}

	now := s.now().UnixNano()
	err = s.db.Queries().KVSet(ctx, db.KVSetParams{Key: key, Value: data, CreatedAt: now, UpdatedAt: now})
	if err != nil {
		return fmt.Errorf("set %q: %w", key, err)
	}
	return nil
}

func (s *KVStore) Delete(ctx context.Context, key string) error {
	if err := s.db.Queries().KVDelete(ctx, key); err != nil {
		return fmt.Errorf("delete %q: %w", key, err)
	}
	return nil
}

func (s *KVStore) Has(ctx context.Context, key string) (bool, error) {
	n, err := s.db.Queries().KVHas(ctx, key)
	if err != nil {
		return false, fmt.Errorf("has %q: %w", key, err)
	}
	return n > 0, nil
}

func (s *KVStore) Entries(ctx context.Context, prefix string) ([]kv.Entry, error) {
	rows, err := s.db.Queries().KVEntries(ctx, prefix)
	if err != nil {
		return nil, fmt.Errorf("list %q: %w", prefix, err)
	}

	out := make([]kv.Entry, len(rows))
	for i, r := range rows {
		out[i] = kv.Entry{Key: r.Key, Size: int(r.Size), UpdatedAt: time.Unix(0, r.UpdatedAt)}
	}
	return out, nil
}
