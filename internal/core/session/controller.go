package session

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"github.com/colonyops/patchview/internal/core/ingest"
	"github.com/colonyops/patchview/internal/core/locale"
	"github.com/colonyops/patchview/internal/core/logging"
	"github.com/colonyops/patchview/internal/core/render"
	"github.com/colonyops/patchview/internal/core/sessionstore"
	"github.com/colonyops/patchview/internal/core/viewed"
)

type shown int

const (
	shownNothing shown = iota
	shownPlaceholder
	shownError
	shownOutput
)

// Option configures a Controller.
type Option func(*Controller)

// WithRenderOptions sets the options passed to the engine. Layout and
// Labels are overwritten on every render.
func WithRenderOptions(opts render.Options) Option {
	return func(c *Controller) { c.opts = opts }
}

// WithExtensions sets the file extensions accepted by Drop.
func WithExtensions(exts []string) Option {
	return func(c *Controller) {
		if len(exts) > 0 {
			c.exts = exts
		}
	}
}

// WithLayout sets the layout used until one is restored or chosen.
func WithLayout(l render.Layout) Option {
	return func(c *Controller) {
		if l.Valid() {
			c.layout = l
		}
	}
}

// WithDisplay sets the results region.
func WithDisplay(d Display) Option {
	return func(c *Controller) { c.SetDisplay(d) }
}

// Controller is the single owner of the session. It is not safe for
// concurrent use; the UI loop serializes every call.
type Controller struct {
	adapter  *render.Adapter
	store    *sessionstore.Store
	tracker  *viewed.Tracker
	resolver *locale.Resolver
	display  Display
	opts     render.Options
	exts     []string
	log      zerolog.Logger

	content string
	layout  render.Layout
	ids     []viewed.FileID
	shown   shown
	lastErr error
}

// NewController wires the session around its collaborators. resolver must
// be initialized by the caller.
func NewController(adapter *render.Adapter, store *sessionstore.Store, resolver *locale.Resolver, opts ...Option) *Controller {
	c := &Controller{
		adapter:  adapter,
		store:    store,
		tracker:  viewed.NewTracker(store),
		resolver: resolver,
		display:  nopDisplay{},
		opts:     render.DefaultOptions(),
		exts:     ingest.DefaultExtensions,
		log:      logging.Component("session"),
		layout:   render.DefaultLayout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetDisplay replaces the results region. A nil display discards output.
func (c *Controller) SetDisplay(d Display) {
	if d == nil {
		d = nopDisplay{}
	}
	c.display = d
}

// SetWidth sets the width handed to the engine on the next render.
func (c *Controller) SetWidth(w int) {
	if w > 0 {
		c.opts.Width = w
	}
}

// Content returns the current blob.
func (c *Controller) Content() string { return c.content }

// Layout returns the current layout.
func (c *Controller) Layout() render.Layout { return c.layout }

// FileIDs returns the ids of the last successful render, in output order.
func (c *Controller) FileIDs() []viewed.FileID {
	return append([]viewed.FileID(nil), c.ids...)
}

// IsViewed reports whether id is marked viewed.
func (c *Controller) IsViewed(id viewed.FileID) bool {
	return c.tracker.IsViewed(id)
}

// Snapshot returns a copy of the session.
func (c *Controller) Snapshot() Session {
	return Session{
		Content: c.content,
		Layout:  c.layout,
		Locale:  c.resolver.Current(),
		Viewed:  c.tracker.IDs(),
	}
}

// Restore loads the stored session. Each slot is restored on its own; a
// slot that cannot be read keeps its default.
func (c *Controller) Restore(ctx context.Context) error {
	ctx = logging.WithSource(ctx, logging.SourceRestore)
	if stored, ok := c.store.Layout(ctx); ok {
		l, err := render.ParseLayout(stored)
		if err != nil {
			c.log.Warn().Ctx(ctx).Err(err).Msg("ignoring stored layout")
		} else {
			c.layout = l
		}
	}
	c.display.SetLayout(c.layout)

	if ids, ok := c.store.Viewed(ctx); ok {
		c.tracker.Load(ids)
	}

	content, ok := c.store.Content(ctx)
	if !ok {
		c.showPlaceholder()
		return nil
	}

	c.content = content
	c.log.Debug().Ctx(ctx).
		Int("bytes", len(content)).
		Int("viewed", c.tracker.Len()).
		Str("layout", string(c.layout)).
		Msg("session restored")

	return c.Render(ctx)
}

// SetContent replaces the content and resets the viewed set. Blank content
// shows the placeholder; anything else is rendered. The content is
// persisted either way. The returned error has already been shown.
func (c *Controller) SetContent(ctx context.Context, text string) error {
	c.content = text
	c.ids = nil
	c.tracker.Clear(ctx)

	if isBlank(text) {
		c.showPlaceholder()
		_ = c.store.SetContent(ctx, text)
		return nil
	}

	return c.render(ctx)
}

// SetLayout switches the layout. With rerender set and non-blank content
// the diff is rendered again. Viewed marks are kept.
func (c *Controller) SetLayout(ctx context.Context, l render.Layout, rerender bool) error {
	if !l.Valid() {
		_, err := render.ParseLayout(string(l))
		return err
	}

	c.layout = l
	c.display.SetLayout(l)
	_ = c.store.SetLayout(ctx, string(l))

	if rerender && !isBlank(c.content) {
		return c.render(ctx)
	}
	return nil
}

// ToggleLayout switches to the other layout and re-renders.
func (c *Controller) ToggleLayout(ctx context.Context) error {
	return c.SetLayout(ctx, c.layout.Toggle(), true)
}

// Render renders the current content, or shows the placeholder when it is
// blank.
func (c *Controller) Render(ctx context.Context) error {
	if isBlank(c.content) {
		c.ids = nil
		c.showPlaceholder()
		return nil
	}
	return c.render(ctx)
}

// Clear empties the content and the viewed set and removes both from the
// store. Layout and locale are kept.
func (c *Controller) Clear(ctx context.Context) {
	c.content = ""
	c.ids = nil
	c.tracker.Load(nil)
	_ = c.store.RemoveContent(ctx)
	_ = c.store.RemoveViewed(ctx)
	c.showPlaceholder()
	c.log.Debug().Ctx(ctx).Msg("session cleared")
}

// SetLocale switches the locale and re-applies the results region text.
// Unsupported codes are ignored and report false.
func (c *Controller) SetLocale(ctx context.Context, l string) bool {
	if !c.resolver.SetLocale(ctx, l) {
		return false
	}

	switch c.shown {
	case shownPlaceholder:
		c.showPlaceholder()
	case shownError:
		c.showError(ctx, c.lastErr)
	case shownOutput:
		_ = c.render(ctx)
	}
	return true
}

// ToggleViewed flips the viewed mark of id and returns the new state.
func (c *Controller) ToggleViewed(ctx context.Context, id viewed.FileID) bool {
	v := c.tracker.Toggle(ctx, id)
	c.display.SetViewed(id, v)
	return v
}

// MarkViewed marks id viewed.
func (c *Controller) MarkViewed(ctx context.Context, id viewed.FileID) {
	c.tracker.Mark(ctx, id)
	c.display.SetViewed(id, true)
}

// UnmarkViewed clears the viewed mark of id.
func (c *Controller) UnmarkViewed(ctx context.Context, id viewed.FileID) {
	c.tracker.Unmark(ctx, id)
	c.display.SetViewed(id, false)
}

// Upload reads the batch into one blob and makes it the content. A failed
// read shows an error and leaves the content alone.
func (c *Controller) Upload(ctx context.Context, batch []ingest.Source) error {
	if logging.SourceOf(ctx) == "" {
		ctx = logging.WithSource(ctx, logging.SourceArgs)
	}
	blob, err := ingest.Normalize(ctx, batch)
	if err != nil {
		if errors.Is(err, ingest.ErrEmptyBatch) {
			return err
		}
		c.showError(ctx, err)
		return err
	}

	c.log.Debug().Ctx(ctx).Int("files", len(batch)).Int("bytes", len(blob)).Msg("batch ingested")
	return c.SetContent(ctx, blob)
}

// Drop is Upload restricted to the accepted extensions. A batch with no
// accepted file shows an error and leaves the content alone.
func (c *Controller) Drop(ctx context.Context, batch []ingest.Source) error {
	ctx = logging.WithSource(ctx, logging.SourceDrop)
	accepted, err := ingest.FilterDropped(batch, c.exts)
	if err != nil {
		c.showError(ctx, err)
		return err
	}
	return c.Upload(ctx, accepted)
}

// Extensions returns the extensions accepted by Drop.
func (c *Controller) Extensions() []string {
	return append([]string(nil), c.exts...)
}

func (c *Controller) render(ctx context.Context) error {
	opts := c.opts
	opts.Layout = c.layout
	opts.Labels = c.labels()

	out, err := c.adapter.Render(ctx, c.content, opts)
	if err != nil {
		c.ids = nil
		c.showError(ctx, err)
		c.persist(ctx)
		return err
	}

	c.display.ShowOutput(out)
	c.shown = shownOutput
	c.lastErr = nil

	c.ids = make([]viewed.FileID, 0, len(out.Files))
	for _, f := range out.Files {
		c.ids = append(c.ids, viewed.NewFileID(f.Name, f.Index))
	}
	c.tracker.Reconcile(c.ids, c.display.SetViewed)

	c.persist(ctx)
	return nil
}

func (c *Controller) persist(ctx context.Context) {
	_ = c.store.SetContent(ctx, c.content)
	_ = c.store.SetLayout(ctx, string(c.layout))
}

func (c *Controller) showPlaceholder() {
	c.shown = shownPlaceholder
	c.lastErr = nil
	c.display.ShowMessage(MessagePlaceholder, c.resolver.Message(locale.KeyPlaceholder))
}

func (c *Controller) showError(ctx context.Context, err error) {
	c.shown = shownError
	c.lastErr = err
	c.display.ShowMessage(MessageError, c.ErrorMessage(err))
	c.log.Warn().Ctx(ctx).Err(err).Msg("showing error")
}

// ErrorMessage converts err into the localized text shown to the user.
func (c *Controller) ErrorMessage(err error) string {
	var (
		readErr        *ingest.FileReadError
		unsupportedErr *ingest.UnsupportedError
	)

	switch {
	case errors.Is(err, render.ErrRendererUnavailable):
		return c.resolver.Message(locale.KeyErrorRendererUnavailable)
	case errors.As(err, &readErr):
		return c.resolver.Messagef(locale.KeyErrorFileRead, readErr.Name)
	case errors.As(err, &unsupportedErr):
		return c.resolver.Messagef(locale.KeyErrorUnsupportedFile, strings.Join(unsupportedErr.Accepted, ", "))
	case errors.Is(err, render.ErrRenderFailure):
		return c.resolver.Messagef(locale.KeyErrorRender, renderCause(err))
	default:
		return c.resolver.Messagef(locale.KeyErrorRender, err.Error())
	}
}

// renderCause drops the sentinel prefix so the message reads once.
func renderCause(err error) string {
	return strings.TrimPrefix(err.Error(), render.ErrRenderFailure.Error()+": ")
}

func (c *Controller) labels() render.Labels {
	def := render.DefaultLabels()
	return render.Labels{
		EmptyDiff:     c.label(locale.KeyEmptyDiff, def.EmptyDiff),
		BinaryFile:    c.label(locale.KeyBinaryFile, def.BinaryFile),
		FileListTitle: c.label(locale.KeyFileListTitle, def.FileListTitle),
		FilesSummary:  c.label(locale.KeyFilesSummary, def.FilesSummary),
		RenamedFrom:   c.label(locale.KeyRenamedFrom, def.RenamedFrom),
		Viewed:        c.label(locale.KeyViewed, def.Viewed),
	}
}

// label falls back to English when the catalog lacks key, since engines use
// some labels as format strings.
func (c *Controller) label(key, fallback string) string {
	if msg := c.resolver.Message(key); msg != key {
		return msg
	}
	return fallback
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
