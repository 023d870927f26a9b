package db

import (
	"context"
	"database/sql"
	"unicode/utf8"
)

// DBTX is satisfied by *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
	QueryContext(context.Context, string, ...any) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...any) *sql.Row
}

// Queries holds the prepared-by-hand statements for the kv_store table.
type Queries struct {
	db DBTX
}

// New returns Queries bound to conn.
func New(conn DBTX) *Queries {
	return &Queries{db: conn}
}

// KvStore is one row of kv_store.
type KvStore struct {
	Key       string
	Value     []byte
	CreatedAt int64
	UpdatedAt int64
}

const kvGet = `SELECT key, value, created_at, updated_at FROM kv_store WHERE key = ?`

// KVGet returns the row for key or sql.ErrNoRows.
func (q *Queries) KVGet(ctx context.Context, key string) (KvStore, error) {
	row := q.db.QueryRowContext(ctx, kvGet, key)
	var i KvStore
	err := row.Scan(&i.Key, &i.Value, &i.CreatedAt, &i.UpdatedAt)
	return i, err
}

const kvSet = `INSERT INTO kv_store (key, value, created_at, updated_at)
VALUES (?, ?, ?, ?)
ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`

// KVSetParams are the arguments of KVSet.
type KVSetParams struct {
	Key       string
	Value     []byte
	CreatedAt int64
	UpdatedAt int64
}

// KVSet upserts a row, keeping the original created_at.
func (q *Queries) KVSet(ctx context.Context, arg KVSetParams) error {
	_, err := q.db.ExecContext(ctx, kvSet, arg.Key, arg.Value, arg.CreatedAt, arg.UpdatedAt)
	return err
}

const kvDelete = `DELETE FROM kv_store WHERE key = ?`

// KVDelete removes key. Missing keys are not an error.
func (q *Queries) KVDelete(ctx context.Context, key string) error {
	_, err := q.db.ExecContext(ctx, kvDelete, key)
	return err
}

const kvHas = `SELECT COUNT(*) FROM kv_store WHERE key = ?`

// KVHas counts rows for key (0 or 1).
func (q *Queries) KVHas(ctx context.Context, key string) (int64, error) {
	row := q.db.QueryRowContext(ctx, kvHas, key)
	var count int64
	err := row.Scan(&count)
	return count, err
}

// KVEntry is the metadata of one row.
type KVEntry struct {
	Key       string
	Size      int64
	UpdatedAt int64
}

const kvEntries = `SELECT key, length(value), updated_at FROM kv_store
WHERE substr(key, 1, ?) = ? ORDER BY key`

// KVEntries lists rows whose key starts with prefix.
func (q *Queries) KVEntries(ctx context.Context, prefix string) ([]KVEntry, error) {
	rows, err := q.db.QueryContext(ctx, kvEntries, utf8.RuneCountInString(prefix), prefix)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var items []KVEntry
	for rows.Next() {
		var e KVEntry
		if err := rows.Scan(&e.Key, &e.Size, &e.UpdatedAt); err != nil {
			return nil, err
		}
		items = append(items, e)
	}
	return items, rows.Err()
}
