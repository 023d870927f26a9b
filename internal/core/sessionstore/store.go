// Package sessionstore persists the four session slots (layout, content,
// viewed, locale) in the "session:" namespace of a kv.KV.
//
// Backend failures are logged and wrapped in ErrStorageUnavailable; the
// written value is still kept in memory so the current run behaves as if the
// write succeeded.
package sessionstore

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/colonyops/patchview/internal/core/kv"
	"github.com/colonyops/patchview/internal/core/logging"
)

// ErrStorageUnavailable wraps any backend failure.
var ErrStorageUnavailable = errors.New("storage unavailable")

// Namespace prefixes every slot key.
const Namespace = "session"

// Slot names.
const (
	SlotLayout  = "layout"
	SlotContent = "content"
	SlotViewed  = "viewed"
	SlotLocale  = "locale"
)

// Store is the typed view over the session slots.
type Store struct {
	strings *kv.Slots[string]
	lists   *kv.Slots[[]string]
	log     zerolog.Logger

	mu     sync.Mutex
	mirror map[string]any // slot -> string | []string | nil (removed)
}

// New returns a Store backed by backend.
func New(backend kv.KV) *Store {
	return &Store{
		strings: kv.NewSlots[string](backend, Namespace),
		lists:   kv.NewSlots[[]string](backend, Namespace),
		log:     logging.Component("sessionstore"),
		mirror:  make(map[string]any),
	}
}

// Layout returns the stored layout name.
func (s *Store) Layout(ctx context.Context) (string, bool) {
	return s.getString(ctx, SlotLayout)
}

// SetLayout stores the layout name.
func (s *Store) SetLayout(ctx context.Context, layout string) error {
	return s.set(ctx, SlotLayout, layout, func() error { return s.strings.Set(ctx, SlotLayout, layout) })
}

// Content returns the stored diff blob. An empty string with ok=true is a
// stored empty blob, distinct from nothing stored.
func (s *Store) Content(ctx context.Context) (string, bool) {
	return s.getString(ctx, SlotContent)
}

// SetContent stores the diff blob.
func (s *Store) SetContent(ctx context.Context, content string) error {
	return s.set(ctx, SlotContent, content, func() error { return s.strings.Set(ctx, SlotContent, content) })
}

// RemoveContent deletes the stored blob.
func (s *Store) RemoveContent(ctx context.Context) error {
	return s.remove(ctx, SlotContent)
}

// Viewed returns the stored viewed file ids.
func (s *Store) Viewed(ctx context.Context) ([]string, bool) {
	if v, ok := s.mirrored(SlotViewed); ok {
		ids, _ := v.([]string)
		return ids, ids != nil
	}

	ids, err := s.lists.Get(ctx, SlotViewed)
	if err != nil {
		s.logReadError(ctx, SlotViewed, err)
		return nil, false
	}
	if ids == nil {
		ids = []string{}
	}
	return ids, true
}

// SetViewed stores the viewed file ids.
func (s *Store) SetViewed(ctx context.Context, ids []string) error {
	if ids == nil {
		ids = []string{}
	}
	return s.set(ctx, SlotViewed, ids, func() error { return s.lists.Set(ctx, SlotViewed, ids) })
}

// RemoveViewed deletes the stored viewed ids.
func (s *Store) RemoveViewed(ctx context.Context) error {
	return s.remove(ctx, SlotViewed)
}

// Locale returns the stored locale code.
func (s *Store) Locale(ctx context.Context) (string, bool) {
	return s.getString(ctx, SlotLocale)
}

// SetLocale stores the locale code.
func (s *Store) SetLocale(ctx context.Context, locale string) error {
	return s.set(ctx, SlotLocale, locale, func() error { return s.strings.Set(ctx, SlotLocale, locale) })
}

// Slots lists the stored slots with their size and last write time.
func (s *Store) Slots(ctx context.Context) ([]kv.Entry, error) {
	entries, err := s.strings.Entries(ctx)
	if err != nil {
		return nil, fmt.Errorf("list slots: %w: %w", ErrStorageUnavailable, err)
	}
	return entries, nil
}

// Key returns the backend key for slot.
func (s *Store) Key(slot string) string {
	return s.strings.Key(slot)
}

func (s *Store) getString(ctx context.Context, slot string) (string, bool) {
	if v, ok := s.mirrored(slot); ok {
		str, isStr := v.(string)
		return str, isStr
	}

	v, err := s.strings.Get(ctx, slot)
	if err != nil {
		s.logReadError(ctx, slot, err)
		return "", false
	}
	return v, true
}

// mirrored returns a value kept after a failed write or remove.
func (s *Store) mirrored(slot string) (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.mirror[slot]
	return v, ok
}

func (s *Store) set(ctx context.Context, slot string, value any, write func() error) error {
	if err := write(); err != nil {
		s.keep(slot, value)
		s.log.Warn().Ctx(ctx).Err(err).Str("slot", slot).Msg("unable to save session slot")
		return fmt.Errorf("save %s: %w: %w", slot, ErrStorageUnavailable, err)
	}
	s.forget(slot)
	return nil
}

func (s *Store) remove(ctx context.Context, slot string) error {
	if err := s.strings.Delete(ctx, slot); err != nil {
		s.keep(slot, nil)
		s.log.Warn().Ctx(ctx).Err(err).Str("slot", slot).Msg("unable to remove session slot")
		return fmt.Errorf("remove %s: %w: %w", slot, ErrStorageUnavailable, err)
	}
	s.forget(slot)
	return nil
}

func (s *Store) keep(slot string, value any) {
	s.mu.Lock()
	s.mirror[slot] = value
	s.mu.Unlock()
}

func (s *Store) forget(slot string) {
	s.mu.Lock()
	delete(s.mirror, slot)
	s.mu.Unlock()
}

func (s *Store) logReadError(ctx context.Context, slot string, err error) {
	if kv.IsNotFound(err) {
		return
	}
	s.log.Warn().Ctx(ctx).Err(err).Str("slot", slot).Msg("unable to read session slot")
}
