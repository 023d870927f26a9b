// Package viewed tracks which rendered files the user has marked as viewed.
//
// File ids are "<name>-<index>" built from the render output, so they are
// only meaningful for the content they were derived from. Two panels that
// produce the same id share one viewed state.
package viewed

import (
	"context"
	"slices"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/colonyops/patchview/internal/core/logging"
)

// FileID identifies one rendered file panel.
type FileID string

// NewFileID builds the id for the panel with the given display name and
// position in the render output.
func NewFileID(name string, index int) FileID {
	return FileID(name + "-" + strconv.Itoa(index))
}

// Persister stores the full viewed set.
type Persister interface {
	SetViewed(ctx context.Context, ids []string) error
}

// Tracker is the in-memory viewed set. It is not safe for concurrent use;
// callers serialize access on the UI loop.
type Tracker struct {
	ids   map[FileID]struct{}
	store Persister
	log   zerolog.Logger
}

// NewTracker returns an empty tracker persisting through store. A nil store
// keeps the set in memory only.
func NewTracker(store Persister) *Tracker {
	return &Tracker{
		ids:   make(map[FileID]struct{}),
		store: store,
		log:   logging.Component("viewed"),
	}
}

// Mark adds id and persists.
func (t *Tracker) Mark(ctx context.Context, id FileID) {
	t.ids[id] = struct{}{}
	t.persist(ctx)
}

// Unmark removes id and persists.
func (t *Tracker) Unmark(ctx context.Context, id FileID) {
	delete(t.ids, id)
	t.persist(ctx)
}

// Toggle flips id and returns its new state.
func (t *Tracker) Toggle(ctx context.Context, id FileID) bool {
	if t.IsViewed(id) {
		t.Unmark(ctx, id)
		return false
	}
	t.Mark(ctx, id)
	return true
}

// IsViewed reports membership.
func (t *Tracker) IsViewed(id FileID) bool {
	_, ok := t.ids[id]
	return ok
}

// Reconcile calls apply for every id of a fresh render with its membership.
// Ids no longer present in the render are left in the set.
func (t *Tracker) Reconcile(ids []FileID, apply func(id FileID, viewed bool)) {
	for _, id := range ids {
		apply(id, t.IsViewed(id))
	}
}

// Clear empties the set and persists the empty set.
func (t *Tracker) Clear(ctx context.Context) {
	clear(t.ids)
	t.persist(ctx)
}

// Load replaces the set without persisting. Used once when restoring.
func (t *Tracker) Load(ids []string) {
	clear(t.ids)
	for _, id := range ids {
		t.ids[FileID(id)] = struct{}{}
	}
}

// IDs returns the set as a sorted slice.
func (t *Tracker) IDs() []FileID {
	out := make([]FileID, 0, len(t.ids))
	for id := range t.ids {
		out = append(out, id)
	}
	slices.Sort(out)
	return out
}

// Len returns the number of viewed ids.
func (t *Tracker) Len() int {
	return len(t.ids)
}

func (t *Tracker) persist(ctx context.Context) {
	if t.store == nil {
		return
	}

	ids := make([]string, 0, len(t.ids))
	for _, id := range t.IDs() {
		ids = append(ids, string(id))
	}

	if err := t.store.SetViewed(ctx, ids); err != nil {
		t.log.Warn().Ctx(ctx).Err(err).Int("count", len(ids)).Msg("unable to save viewed files")
	}
}
