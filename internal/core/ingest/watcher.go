package ingest

import (
	"context"
	"fmt"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/colonyops/patchview/internal/core/logging"
	"github.com/colonyops/patchview/pkg/debounce"
)

const (
	// DefaultWatchDelay lets editors finish multi-step saves.
	DefaultWatchDelay = 150 * time.Millisecond
	changeBufferSize  = 1
)

// Change reports that files of the watched batch were modified.
type Change struct {
	Paths     []string
	Timestamp time.Time
}

// Watcher watches the files of one batch. Parent directories are watched
// so that atomic saves (write temp + rename) are seen.
type Watcher struct {
	watcher *fsnotify.Watcher
	files   map[string]struct{}
	burst   *debounce.Debouncer
	log     zerolog.Logger
	changes chan Change

	mu      sync.Mutex
	pending map[string]struct{}

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewWatcher starts watching paths. Events for the same burst are coalesced
// into one Change after delay.
func NewWatcher(paths []string, delay time.Duration) (*Watcher, error) {
	if len(paths) == 0 {
		return nil, ErrEmptyBatch
	}
	if delay <= 0 {
		delay = DefaultWatchDelay
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	files := make(map[string]struct{}, len(paths))
	dirs := make(map[string]struct{})
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			_ = fw.Close()
			return nil, fmt.Errorf("resolve %s: %w", p, err)
		}
		files[abs] = struct{}{}
		dirs[filepath.Dir(abs)] = struct{}{}
	}

	for dir := range dirs {
		if err := fw.Add(dir); err != nil {
			_ = fw.Close()
			return nil, fmt.Errorf("watch %s: %w", dir, err)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	w := &Watcher{
		watcher: fw,
		files:   files,
		burst:   debounce.New(delay),
		log:     logging.Component("watcher"),
		changes: make(chan Change, changeBufferSize),
		pending: make(map[string]struct{}),
		ctx:     ctx,
		cancel:  cancel,
	}

	w.wg.Add(1)
	go w.run()

	return w, nil
}

// Changes delivers coalesced change notifications. The channel is closed by
// Close.
func (w *Watcher) Changes() <-chan Change {
	return w.changes
}

// Close stops watching.
func (w *Watcher) Close() error {
	w.mu.Lock()
	w.cancel()
	w.burst.Cancel()
	w.mu.Unlock()

	err := w.watcher.Close()
	w.wg.Wait()

	w.mu.Lock()
	close(w.changes)
	w.changes = nil
	w.mu.Unlock()
	return err
}

func (w *Watcher) run() {
	defer w.wg.Done()

	for {
		select {
		case <-w.ctx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Warn().Err(err).Msg("watch error")
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
		return
	}

	name := filepath.Clean(event.Name)
	if _, ok := w.files[name]; !ok {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.ctx.Err() != nil {
		return
	}

	w.pending[name] = struct{}{}
	task := w.burst.Schedule()
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		if task.Wait() {
			w.flush()
		}
	}()
}

func (w *Watcher) flush() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.changes == nil || w.ctx.Err() != nil {
		return
	}

	paths := make([]string, 0, len(w.pending))
	for p := range w.pending {
		paths = append(paths, p)
	}
	clear(w.pending)
	slices.Sort(paths)

	select {
	case w.changes <- Change{Paths: paths, Timestamp: time.Now()}:
	default:
		// a change is already queued; the reader will re-read everything
	}
}
