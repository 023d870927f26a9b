package ingest

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcher_CoalescesWrites(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "live.diff")
	other := filepath.Join(dir, "other.diff")
	require.NoError(t, os.WriteFile(p, []byte("v1"), 0o644))

	w, err := NewWatcher([]string{p}, 50*time.Millisecond)
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Close() })

	// unrelated files in the same directory are ignored
	require.NoError(t, os.WriteFile(other, []byte("x"), 0o644))
	for _, v := range []string{"v2", "v3", "v4"} {
		require.NoError(t, os.WriteFile(p, []byte(v), 0o644))
	}

	select {
	case change := <-w.Changes():
		abs, _ := filepath.Abs(p)
		assert.Equal(t, []string{abs}, change.Paths)
	case <-time.After(2 * time.Second):
		t.Fatal("no change delivered")
	}

	select {
	case change := <-w.Changes():
		t.Fatalf("unexpected second change: %v", change)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestWatcher_ChangedPathsAreSorted(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.diff")
	b := filepath.Join(dir, "b.diff")
	c := filepath.Join(dir, "c.diff")
	for _, p := range []string{a, b, c} {
		require.NoError(t, os.WriteFile(p, []byte("v1"), 0o644))
	}

	w, err := NewWatcher([]string{c, a, b}, 200*time.Millisecond)
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Close() })

	for _, p := range []string{c, b, a} {
		require.NoError(t, os.WriteFile(p, []byte("v2"), 0o644))
	}

	select {
	case change := <-w.Changes():
		want := make([]string, 0, 3)
		for _, p := range []string{a, b, c} {
			abs, _ := filepath.Abs(p)
			want = append(want, abs)
		}
		assert.Equal(t, want, change.Paths)
	case <-time.After(2 * time.Second):
		t.Fatal("no change delivered")
	}
}

func TestWatcher_CloseCancelsPendingFlush(t *testing.T) {
	p := filepath.Join(t.TempDir(), "a.diff")
	require.NoError(t, os.WriteFile(p, []byte("a"), 0o644))

	w, err := NewWatcher([]string{p}, time.Hour)
	require.NoError(t, err)
	ch := w.Changes()
	require.NoError(t, os.WriteFile(p, []byte("b"), 0o644))

	closed := make(chan error, 1)
	go func() { closed <- w.Close() }()

	select {
	case err := <-closed:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("close waited for the pending flush")
	}
	_, ok := <-ch
	assert.False(t, ok)
}

func TestWatcher_CloseClosesChannel(t *testing.T) {
	p := filepath.Join(t.TempDir(), "a.diff")
	require.NoError(t, os.WriteFile(p, []byte("a"), 0o644))

	w, err := NewWatcher([]string{p}, 0)
	require.NoError(t, err)
	ch := w.Changes()
	require.NoError(t, w.Close())

	_, ok := <-ch
	assert.False(t, ok)
}

func TestNewWatcher_Empty(t *testing.T) {
	_, err := NewWatcher(nil, 0)
	assert.ErrorIs(t, err, ErrEmptyBatch)
}
