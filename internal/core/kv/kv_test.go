package kv_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/patchview/internal/core/kv"
	"github.com/colonyops/patchview/internal/data/db"
	"github.com/colonyops/patchview/internal/data/stores"
)

// backends runs every test against both implementations.
func backends(t *testing.T) map[string]kv.KV {
	t.Helper()
	database, err := db.Open(t.TempDir(), db.DefaultOpenOptions())
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })

	return map[string]kv.KV{
		"sqlite": stores.NewKVStore(database),
		"memory": kv.NewMemory(),
	}
}

func TestSlots_RoundTrip(t *testing.T) {
	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			layouts := kv.NewSlots[string](store, "session")
			viewed := kv.NewSlots[[]string](store, "session")

			require.NoError(t, layouts.Set(ctx, "layout", "line-by-line"))
			require.NoError(t, viewed.Set(ctx, "viewed", []string{"a.go-0", "b.go-1"}))

			l, err := layouts.Get(ctx, "layout")
			require.NoError(t, err)
			assert.Equal(t, "line-by-line", l)

			ids, err := viewed.Get(ctx, "viewed")
			require.NoError(t, err)
			assert.Equal(t, []string{"a.go-0", "b.go-1"}, ids)
			assert.Equal(t, "session:layout", layouts.Key("layout"))
		})
	}
}

func TestSlots_MissingAndDeleted(t *testing.T) {
	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			slots := kv.NewSlots[string](store, "session")

			_, err := slots.Get(ctx, "content")
			assert.True(t, kv.IsNotFound(err))

			require.NoError(t, slots.Set(ctx, "content", ""))
			has, err := slots.Has(ctx, "content")
			require.NoError(t, err)
			assert.True(t, has, "an empty value is still stored")

			require.NoError(t, slots.Delete(ctx, "content"))
			require.NoError(t, slots.Delete(ctx, "content"), "deleting twice is fine")

			_, err = slots.Get(ctx, "content")
			assert.ErrorIs(t, err, kv.ErrNotFound)
		})
	}
}

func TestSlots_EntriesStayInNamespace(t *testing.T) {
	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			before := time.Now().Add(-time.Second)

			session := kv.NewSlots[string](store, "session")
			other := kv.NewSlots[string](store, "sessions")

			require.NoError(t, session.Set(ctx, "locale", "ja"))
			require.NoError(t, session.Set(ctx, "content", "diff"))
			require.NoError(t, other.Set(ctx, "layout", "side-by-side"))

			entries, err := session.Entries(ctx)
			require.NoError(t, err)
			require.Len(t, entries, 2)
			assert.Equal(t, "content", entries[0].Key)
			assert.Equal(t, "locale", entries[1].Key)
			assert.Equal(t, len(`"diff"`), entries[0].Size)
			assert.True(t, entries[0].UpdatedAt.After(before))

			all, err := store.Entries(ctx, "")
			require.NoError(t, err)
			assert.Len(t, all, 3)
		})
	}
}
