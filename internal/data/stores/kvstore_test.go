package stores

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/patchview/internal/core/kv"
	"github.com/colonyops/patchview/internal/data/db"
)

func newTestKVStore(t *testing.T) *KVStore {
	t.Helper()
	database, err := db.Open(t.TempDir(), db.DefaultOpenOptions())
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })
	return NewKVStore(database)
}

func TestKVStore_MissingKeyIsNotFound(t *testing.T) {
	store := newTestKVStore(t)

	var v string
	err := store.Get(context.Background(), "session:content", &v)
	assert.ErrorIs(t, err, kv.ErrNotFound)
}

func TestKVStore_OverwriteKeepsCreatedAt(t *testing.T) {
	ctx := context.Background()
	store := newTestKVStore(t)

	clock := time.Unix(100, 0)
	store.now = func() time.Time { return clock }
	require.NoError(t, store.Set(ctx, "session:layout", "side-by-side"))

	clock = time.Unix(200, 0)
	require.NoError(t, store.Set(ctx, "session:layout", "line-by-line"))

	var got string
	require.NoError(t, store.Get(ctx, "session:layout", &got))
	assert.Equal(t, "line-by-line", got)

	row, err := store.db.Queries().KVGet(ctx, "session:layout")
	require.NoError(t, err)
	assert.Equal(t, time.Unix(100, 0).UnixNano(), row.CreatedAt)

	entries, err := store.Entries(ctx, "session:")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, entries[0].UpdatedAt.Equal(clock))
	assert.Equal(t, len(`"line-by-line"`), entries[0].Size)
}

func TestKVStore_UndecodableValue(t *testing.T) {
	ctx := context.Background()
	store := newTestKVStore(t)
	require.NoError(t, store.Set(ctx, "session:viewed", "not a list"))

	var ids []string
	err := store.Get(ctx, "session:viewed", &ids)
	require.Error(t, err)
	assert.False(t, kv.IsNotFound(err))
}
