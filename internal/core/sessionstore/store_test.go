package sessionstore

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/patchview/internal/core/kv"
)

// flakyKV fails every operation while broken is set.
type flakyKV struct {
	*kv.Memory
	broken bool
}

var errDisk = errors.New("disk unavailable")

func (f *flakyKV) Get(ctx context.Context, key string, dest any) error {
	if f.broken {
		return errDisk
	}
	return f.Memory.Get(ctx, key, dest)
}

func (f *flakyKV) Set(ctx context.Context, key string, value any) error {
	if f.broken {
		return errDisk
	}
	return f.Memory.Set(ctx, key, value)
}

func (f *flakyKV) Delete(ctx context.Context, key string) error {
	if f.broken {
		return errDisk
	}
	return f.Memory.Delete(ctx, key)
}

func TestStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s := New(kv.NewMemory())

	require.NoError(t, s.SetLayout(ctx, "line-by-line"))
	require.NoError(t, s.SetContent(ctx, "diff --git a/x b/x"))
	require.NoError(t, s.SetViewed(ctx, []string{"x-0", "y-1"}))
	require.NoError(t, s.SetLocale(ctx, "ja"))

	layout, ok := s.Layout(ctx)
	assert.True(t, ok)
	assert.Equal(t, "line-by-line", layout)

	content, ok := s.Content(ctx)
	assert.True(t, ok)
	assert.Equal(t, "diff --git a/x b/x", content)

	viewed, ok := s.Viewed(ctx)
	assert.True(t, ok)
	assert.Equal(t, []string{"x-0", "y-1"}, viewed)

	l, ok := s.Locale(ctx)
	assert.True(t, ok)
	assert.Equal(t, "ja", l)
}

func TestStore_KeysUseSessionNamespace(t *testing.T) {
	ctx := context.Background()
	mem := kv.NewMemory()
	s := New(mem)

	require.NoError(t, s.SetLayout(ctx, "side-by-side"))
	require.NoError(t, s.SetContent(ctx, "x"))
	require.NoError(t, s.SetViewed(ctx, nil))
	require.NoError(t, s.SetLocale(ctx, "en"))

	entries, err := mem.Entries(ctx, "")
	require.NoError(t, err)
	keys := make([]string, len(entries))
	for i, e := range entries {
		keys[i] = e.Key
	}
	assert.Equal(t, []string{"session:content", "session:layout", "session:locale", "session:viewed"}, keys)

	slots, err := s.Slots(ctx)
	require.NoError(t, err)
	require.Len(t, slots, 4)
	assert.Equal(t, SlotContent, slots[0].Key)
	assert.Equal(t, "session:content", s.Key(SlotContent))
}

func TestStore_EmptyContentIsDistinctFromMissing(t *testing.T) {
	ctx := context.Background()
	s := New(kv.NewMemory())

	_, ok := s.Content(ctx)
	assert.False(t, ok)

	require.NoError(t, s.SetContent(ctx, ""))
	content, ok := s.Content(ctx)
	assert.True(t, ok)
	assert.Empty(t, content)
}

func TestStore_Remove(t *testing.T) {
	ctx := context.Background()
	s := New(kv.NewMemory())

	require.NoError(t, s.SetContent(ctx, "x"))
	require.NoError(t, s.SetViewed(ctx, []string{"a-0"}))
	require.NoError(t, s.RemoveContent(ctx))
	require.NoError(t, s.RemoveViewed(ctx))

	_, ok := s.Content(ctx)
	assert.False(t, ok)
	_, ok = s.Viewed(ctx)
	assert.False(t, ok)
}

func TestStore_EmptyViewedIsStored(t *testing.T) {
	ctx := context.Background()
	s := New(kv.NewMemory())

	require.NoError(t, s.SetViewed(ctx, nil))
	ids, ok := s.Viewed(ctx)
	assert.True(t, ok)
	assert.Empty(t, ids)
}

func TestStore_WriteFailureKeepsValueForRun(t *testing.T) {
	ctx := context.Background()
	backend := &flakyKV{Memory: kv.NewMemory(), broken: true}
	s := New(backend)

	err := s.SetContent(ctx, "pending")
	require.ErrorIs(t, err, ErrStorageUnavailable)

	content, ok := s.Content(ctx)
	assert.True(t, ok)
	assert.Equal(t, "pending", content)

	err = s.RemoveContent(ctx)
	require.ErrorIs(t, err, ErrStorageUnavailable)
	_, ok = s.Content(ctx)
	assert.False(t, ok, "removal is mirrored too")

	// once the backend recovers, a successful write clears the mirror
	backend.broken = false
	require.NoError(t, s.SetContent(ctx, "saved"))
	content, ok = s.Content(ctx)
	assert.True(t, ok)
	assert.Equal(t, "saved", content)
}

func TestStore_ReadFailureReportsMissing(t *testing.T) {
	ctx := context.Background()
	backend := &flakyKV{Memory: kv.NewMemory()}
	s := New(backend)
	require.NoError(t, s.SetLayout(ctx, "line-by-line"))

	backend.broken = true
	_, ok := s.Layout(ctx)
	assert.False(t, ok)
	_, ok = s.Viewed(ctx)
	assert.False(t, ok)
}
