package viewed

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingStore struct {
	saves [][]string
	err   error
}

func (r *recordingStore) SetViewed(_ context.Context, ids []string) error {
	r.saves = append(r.saves, ids)
	return r.err
}

func (r *recordingStore) last() []string {
	if len(r.saves) == 0 {
		return nil
	}
	return r.saves[len(r.saves)-1]
}

func TestNewFileID(t *testing.T) {
	assert.Equal(t, FileID("src/main.go-0"), NewFileID("src/main.go", 0))
	assert.Equal(t, FileID("a-b-12"), NewFileID("a-b", 12))
}

func TestTracker_MarkUnmarkPersistWholeSet(t *testing.T) {
	ctx := context.Background()
	store := &recordingStore{}
	tr := NewTracker(store)

	tr.Mark(ctx, "b-1")
	tr.Mark(ctx, "a-0")
	assert.Equal(t, []string{"a-0", "b-1"}, store.last())

	tr.Unmark(ctx, "b-1")
	assert.Equal(t, []string{"a-0"}, store.last())
	assert.Len(t, store.saves, 3)
}

func TestTracker_ToggleTwiceRestores(t *testing.T) {
	ctx := context.Background()
	tr := NewTracker(&recordingStore{})

	assert.True(t, tr.Toggle(ctx, "x-0"))
	assert.True(t, tr.IsViewed("x-0"))
	assert.False(t, tr.Toggle(ctx, "x-0"))
	assert.False(t, tr.IsViewed("x-0"))
}

func TestTracker_Reconcile(t *testing.T) {
	ctx := context.Background()
	tr := NewTracker(nil)
	tr.Mark(ctx, "a-0")
	tr.Mark(ctx, "stale-9")

	got := map[FileID]bool{}
	tr.Reconcile([]FileID{"a-0", "b-1"}, func(id FileID, v bool) { got[id] = v })

	assert.Equal(t, map[FileID]bool{"a-0": true, "b-1": false}, got)
	assert.True(t, tr.IsViewed("stale-9"), "stale ids are not pruned")
}

func TestTracker_ClearPersistsEmpty(t *testing.T) {
	ctx := context.Background()
	store := &recordingStore{}
	tr := NewTracker(store)
	tr.Mark(ctx, "a-0")

	tr.Clear(ctx)
	assert.Equal(t, 0, tr.Len())
	require.NotNil(t, store.last())
	assert.Empty(t, store.last())
}

func TestTracker_LoadDoesNotPersist(t *testing.T) {
	store := &recordingStore{}
	tr := NewTracker(store)

	tr.Load([]string{"b-1", "a-0"})
	assert.Empty(t, store.saves)
	assert.Equal(t, []FileID{"a-0", "b-1"}, tr.IDs())

	tr.Load(nil)
	assert.Empty(t, tr.IDs())
}

func TestTracker_PersistFailureKeepsMemoryState(t *testing.T) {
	tr := NewTracker(&recordingStore{err: errors.New("boom")})
	tr.Mark(context.Background(), "a-0")
	assert.True(t, tr.IsViewed("a-0"))
}

func TestTracker_SameNameAndIndexShareState(t *testing.T) {
	tr := NewTracker(nil)
	tr.Mark(context.Background(), NewFileID("README.md", 3))

	assert.True(t, tr.IsViewed(NewFileID("README.md", 3)))
	assert.False(t, tr.IsViewed(NewFileID("README.md", 4)))
}
