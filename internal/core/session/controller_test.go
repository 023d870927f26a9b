package session

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/patchview/internal/core/ingest"
	"github.com/colonyops/patchview/internal/core/kv"
	"github.com/colonyops/patchview/internal/core/locale"
	"github.com/colonyops/patchview/internal/core/render"
	"github.com/colonyops/patchview/internal/core/sessionstore"
	"github.com/colonyops/patchview/internal/core/viewed"
)

const typed = "--- a\n+++ b\n@@ -1 +1 @@\n-old\n+new\n"

const twoFiles = `--- a/a.txt
+++ b/a.txt
@@ -1 +1 @@
-one
+uno
--- a/b.txt
+++ b/b.txt
@@ -1 +1 @@
-two
+dos
`

// parseEngine renders nothing but reports the panels of the parsed diff.
type parseEngine struct {
	err     error
	panics  bool
	layouts []render.Layout
}

func (e *parseEngine) Name() string { return "parse" }

func (e *parseEngine) Render(_ context.Context, diff string, opts render.Options) (render.Output, error) {
	e.layouts = append(e.layouts, opts.Layout)
	if e.panics {
		panic("boom")
	}
	if e.err != nil {
		return render.Output{}, e.err
	}

	doc, err := render.Parse(diff, opts)
	if err != nil {
		return render.Output{}, err
	}

	out := render.Output{Fragment: "rendered:" + string(opts.Layout)}
	for _, f := range doc.Files {
		out.Files = append(out.Files, f.Panel)
	}
	return out, nil
}

type recordingDisplay struct {
	outputs  []render.Output
	kind     MessageKind
	message  string
	messages int
	viewed   map[viewed.FileID]bool
	layout   render.Layout
}

func newRecordingDisplay() *recordingDisplay {
	return &recordingDisplay{viewed: make(map[viewed.FileID]bool)}
}

func (d *recordingDisplay) ShowOutput(out render.Output) {
	d.outputs = append(d.outputs, out)
	d.message = ""
}

func (d *recordingDisplay) ShowMessage(kind MessageKind, text string) {
	d.kind = kind
	d.message = text
	d.messages++
}

func (d *recordingDisplay) SetViewed(id viewed.FileID, v bool) { d.viewed[id] = v }
func (d *recordingDisplay) SetLayout(l render.Layout)          { d.layout = l }

func (d *recordingDisplay) last() render.Output {
	if len(d.outputs) == 0 {
		return render.Output{}
	}
	return d.outputs[len(d.outputs)-1]
}

type harness struct {
	ctrl    *Controller
	engine  *parseEngine
	display *recordingDisplay
	backend kv.KV
	store   *sessionstore.Store
}

func newHarness(t *testing.T, backend kv.KV) *harness {
	t.Helper()
	if backend == nil {
		backend = kv.NewMemory()
	}

	store := sessionstore.New(backend)
	resolver := locale.NewResolver(store, locale.WithGetenv(func(string) string { return "" }))
	resolver.Init(context.Background())

	engine := &parseEngine{}
	adapter, err := render.NewAdapter(engine)
	require.NoError(t, err)

	display := newRecordingDisplay()
	return &harness{
		ctrl:    NewController(adapter, store, resolver, WithDisplay(display)),
		engine:  engine,
		display: display,
		backend: backend,
		store:   store,
	}
}

func (h *harness) has(t *testing.T, slot string) bool {
	t.Helper()
	ok, err := h.backend.Has(context.Background(), h.store.Key(slot))
	require.NoError(t, err)
	return ok
}

func TestController_TypedContentRendersWithDefaultLayout(t *testing.T) {
	h := newHarness(t, nil)

	require.NoError(t, h.ctrl.SetContent(context.Background(), typed))

	assert.Equal(t, render.SideBySide, h.ctrl.Layout())
	assert.Equal(t, []render.Layout{render.SideBySide}, h.engine.layouts)
	assert.NotEmpty(t, h.display.last().Fragment)
	assert.Empty(t, h.display.message)
	assert.Len(t, h.ctrl.FileIDs(), 1)
}

func TestController_RenderIsDeterministic(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, nil)

	require.NoError(t, h.ctrl.SetContent(ctx, twoFiles))
	first := h.ctrl.FileIDs()
	require.NoError(t, h.ctrl.Render(ctx))

	assert.Equal(t, first, h.ctrl.FileIDs())
	assert.Equal(t, []viewed.FileID{"a.txt-0", "b.txt-1"}, first)
}

func TestController_LayoutChangeKeepsViewed(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, nil)

	require.NoError(t, h.ctrl.SetContent(ctx, twoFiles))
	h.ctrl.MarkViewed(ctx, "a.txt-0")

	clear(h.display.viewed)
	require.NoError(t, h.ctrl.SetLayout(ctx, render.LineByLine, true))

	assert.Equal(t, render.LineByLine, h.display.layout)
	assert.Equal(t, render.LineByLine, h.engine.layouts[len(h.engine.layouts)-1])
	assert.True(t, h.display.viewed["a.txt-0"])
	assert.False(t, h.display.viewed["b.txt-1"])
	assert.True(t, h.ctrl.IsViewed("a.txt-0"))
}

func TestController_SetLayoutWithoutRerender(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, nil)
	require.NoError(t, h.ctrl.SetContent(ctx, twoFiles))
	renders := len(h.engine.layouts)

	require.NoError(t, h.ctrl.SetLayout(ctx, render.LineByLine, false))

	assert.Len(t, h.engine.layouts, renders)
	stored, ok := h.store.Layout(ctx)
	require.True(t, ok)
	assert.Equal(t, "line-by-line", stored)
}

func TestController_SetLayoutRejectsUnknown(t *testing.T) {
	h := newHarness(t, nil)
	require.Error(t, h.ctrl.SetLayout(context.Background(), render.Layout("diagonal"), true))
	assert.Equal(t, render.SideBySide, h.ctrl.Layout())
}

func TestController_ContentChangeResetsViewed(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, nil)

	require.NoError(t, h.ctrl.SetContent(ctx, twoFiles))
	h.ctrl.MarkViewed(ctx, "a.txt-0")
	h.ctrl.MarkViewed(ctx, "b.txt-1")

	require.NoError(t, h.ctrl.SetContent(ctx, twoFiles))

	assert.Empty(t, h.ctrl.Snapshot().Viewed)
	ids, ok := h.store.Viewed(ctx)
	require.True(t, ok)
	assert.Empty(t, ids)
}

func TestController_UploadResetsViewedAndJoinsFiles(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, nil)

	require.NoError(t, h.ctrl.SetContent(ctx, twoFiles))
	h.ctrl.MarkViewed(ctx, "a.txt-0")

	batch := []ingest.Source{
		ingest.StringSource("one.diff", "--- a/x\n+++ b/x\n@@ -1 +1 @@\n-1\n+2\n"),
		ingest.StringSource("two.diff", "--- a/y\n+++ b/y\n@@ -1 +1 @@\n-3\n+4\n"),
	}
	require.NoError(t, h.ctrl.Upload(ctx, batch))

	assert.Equal(t,
		"# File: one.diff\n--- a/x\n+++ b/x\n@@ -1 +1 @@\n-1\n+2\n\n\n# File: two.diff\n--- a/y\n+++ b/y\n@@ -1 +1 @@\n-3\n+4\n",
		h.ctrl.Content())
	assert.Empty(t, h.ctrl.Snapshot().Viewed)
	assert.Equal(t, []viewed.FileID{"x-0", "y-1"}, h.ctrl.FileIDs())
}

func TestController_DropUnsupportedLeavesContent(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, nil)
	require.NoError(t, h.ctrl.SetContent(ctx, typed))

	err := h.ctrl.Drop(ctx, []ingest.Source{
		ingest.StringSource("a.png", "x"),
		ingest.StringSource("b.exe", "y"),
	})

	require.ErrorIs(t, err, ingest.ErrUnsupportedFileType)
	assert.Equal(t, typed, h.ctrl.Content())
	assert.Equal(t, MessageError, h.display.kind)
	assert.Contains(t, h.display.message, ".diff, .patch, .txt")
}

func TestController_DropFiltersThenLoads(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, nil)

	err := h.ctrl.Drop(ctx, []ingest.Source{
		ingest.StringSource("shot.png", "x"),
		ingest.StringSource("fix.PATCH", typed),
	})

	require.NoError(t, err)
	assert.Equal(t, typed, h.ctrl.Content())
}

type failingSource struct{}

func (failingSource) Name() string { return "broken.diff" }
func (failingSource) Read(context.Context) (string, error) {
	return "", errors.New("permission denied")
}

func TestController_UploadReadFailureLeavesContent(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, nil)
	require.NoError(t, h.ctrl.SetContent(ctx, typed))

	err := h.ctrl.Upload(ctx, []ingest.Source{ingest.StringSource("ok.diff", "x"), failingSource{}})

	require.ErrorIs(t, err, ingest.ErrFileRead)
	assert.Equal(t, typed, h.ctrl.Content())
	assert.Equal(t, MessageError, h.display.kind)
	assert.Contains(t, h.display.message, "broken.diff")
}

func TestController_RenderFailureShowsErrorAndKeepsInput(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, nil)
	h.engine.err = errors.New("malformed <hunk>")

	err := h.ctrl.SetContent(ctx, typed)

	require.ErrorIs(t, err, render.ErrRenderFailure)
	assert.Empty(t, h.display.outputs)
	assert.Equal(t, MessageError, h.display.kind)
	assert.Equal(t, "Render failed: malformed <hunk>", h.display.message)
	assert.Empty(t, h.ctrl.FileIDs())

	stored, ok := h.store.Content(ctx)
	require.True(t, ok)
	assert.Equal(t, typed, stored)
}

func TestController_RenderPanicIsContained(t *testing.T) {
	h := newHarness(t, nil)
	h.engine.panics = true

	err := h.ctrl.SetContent(context.Background(), typed)

	require.ErrorIs(t, err, render.ErrRenderFailure)
	assert.Equal(t, MessageError, h.display.kind)
}

func TestController_RendererUnavailable(t *testing.T) {
	ctx := context.Background()
	store := sessionstore.New(kv.NewMemory())
	resolver := locale.NewResolver(store, locale.WithGetenv(func(string) string { return "" }))
	resolver.Init(ctx)

	adapter, err := render.NewAdapter(nil)
	require.ErrorIs(t, err, render.ErrRendererUnavailable)

	display := newRecordingDisplay()
	ctrl := NewController(adapter, store, resolver, WithDisplay(display))

	require.ErrorIs(t, ctrl.SetContent(ctx, typed), render.ErrRendererUnavailable)
	assert.Equal(t, "Renderer unavailable", display.message)
}

func TestController_BlankContentShowsPlaceholder(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, nil)

	require.NoError(t, h.ctrl.SetContent(ctx, "  \n\t"))

	assert.Empty(t, h.engine.layouts)
	assert.Equal(t, MessagePlaceholder, h.display.kind)
	assert.NotEmpty(t, h.display.message)

	stored, ok := h.store.Content(ctx)
	require.True(t, ok)
	assert.Equal(t, "  \n\t", stored)
}

func TestController_Clear(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, nil)

	require.NoError(t, h.ctrl.SetContent(ctx, twoFiles))
	require.NoError(t, h.ctrl.SetLayout(ctx, render.LineByLine, true))
	require.True(t, h.ctrl.SetLocale(ctx, "ja"))
	h.ctrl.MarkViewed(ctx, "a.txt-0")

	h.ctrl.Clear(ctx)

	snap := h.ctrl.Snapshot()
	assert.Empty(t, snap.Content)
	assert.Empty(t, snap.Viewed)
	assert.Equal(t, render.LineByLine, snap.Layout)
	assert.Equal(t, "ja", snap.Locale)

	assert.False(t, h.has(t, sessionstore.SlotContent))
	assert.False(t, h.has(t, sessionstore.SlotViewed))
	assert.True(t, h.has(t, sessionstore.SlotLayout))
	assert.True(t, h.has(t, sessionstore.SlotLocale))
	assert.Equal(t, MessagePlaceholder, h.display.kind)
}

func TestController_Restore(t *testing.T) {
	ctx := context.Background()
	backend := kv.NewMemory()

	seed := sessionstore.New(backend)
	require.NoError(t, seed.SetLayout(ctx, "line-by-line"))
	require.NoError(t, seed.SetViewed(ctx, []string{"b.txt-1"}))
	require.NoError(t, seed.SetContent(ctx, twoFiles))

	h := newHarness(t, backend)
	require.NoError(t, h.ctrl.Restore(ctx))

	assert.Equal(t, render.LineByLine, h.ctrl.Layout())
	assert.Equal(t, render.LineByLine, h.display.layout)
	assert.Equal(t, twoFiles, h.ctrl.Content())
	assert.Equal(t, []render.Layout{render.LineByLine}, h.engine.layouts)
	assert.True(t, h.display.viewed["b.txt-1"])
	assert.False(t, h.display.viewed["a.txt-0"])
	assert.Equal(t, []viewed.FileID{"b.txt-1"}, h.ctrl.Snapshot().Viewed)
}

func TestController_RestoreEmptyStore(t *testing.T) {
	h := newHarness(t, nil)

	require.NoError(t, h.ctrl.Restore(context.Background()))

	assert.Equal(t, render.SideBySide, h.ctrl.Layout())
	assert.Empty(t, h.engine.layouts)
	assert.Equal(t, MessagePlaceholder, h.display.kind)
}

// slotFailingKV fails reads of one key.
type slotFailingKV struct {
	kv.KV
	key string
}

func (s slotFailingKV) Get(ctx context.Context, key string, dest any) error {
	if key == s.key {
		return errors.New("disk on fire")
	}
	return s.KV.Get(ctx, key, dest)
}

func TestController_RestoreSlotsIndependently(t *testing.T) {
	ctx := context.Background()
	backend := kv.NewMemory()

	seed := sessionstore.New(backend)
	require.NoError(t, seed.SetLayout(ctx, "line-by-line"))
	require.NoError(t, seed.SetViewed(ctx, []string{"a.txt-0"}))
	require.NoError(t, seed.SetContent(ctx, twoFiles))

	h := newHarness(t, slotFailingKV{KV: backend, key: seed.Key(sessionstore.SlotLayout)})
	require.NoError(t, h.ctrl.Restore(ctx))

	assert.Equal(t, render.SideBySide, h.ctrl.Layout())
	assert.Equal(t, twoFiles, h.ctrl.Content())
	assert.True(t, h.display.viewed["a.txt-0"])
}

func TestController_SetLocaleRefreshesMessage(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, nil)
	require.NoError(t, h.ctrl.Restore(ctx))
	english := h.display.message

	require.True(t, h.ctrl.SetLocale(ctx, "zh"))

	assert.NotEqual(t, english, h.display.message)
	assert.Equal(t, MessagePlaceholder, h.display.kind)
	assert.Equal(t, "zh", h.ctrl.Snapshot().Locale)

	assert.False(t, h.ctrl.SetLocale(ctx, "fr"))
	assert.Equal(t, "zh", h.ctrl.Snapshot().Locale)
}

func TestController_SetLocaleRerendersOutput(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, nil)
	require.NoError(t, h.ctrl.SetContent(ctx, twoFiles))
	h.ctrl.MarkViewed(ctx, "a.txt-0")

	require.True(t, h.ctrl.SetLocale(ctx, "ja"))

	assert.Len(t, h.display.outputs, 2)
	assert.True(t, h.ctrl.IsViewed("a.txt-0"))
}

func TestController_ToggleViewed(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, nil)
	require.NoError(t, h.ctrl.SetContent(ctx, twoFiles))

	assert.True(t, h.ctrl.ToggleViewed(ctx, "b.txt-1"))
	assert.True(t, h.display.viewed["b.txt-1"])

	ids, ok := h.store.Viewed(ctx)
	require.True(t, ok)
	assert.Equal(t, []string{"b.txt-1"}, ids)

	assert.False(t, h.ctrl.ToggleViewed(ctx, "b.txt-1"))
	assert.False(t, h.display.viewed["b.txt-1"])

	h.ctrl.UnmarkViewed(ctx, "a.txt-0")
	assert.False(t, h.ctrl.IsViewed("a.txt-0"))
}

func TestController_StorageFailureDoesNotSurface(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, brokenKV{})

	require.NoError(t, h.ctrl.Restore(ctx))
	require.NoError(t, h.ctrl.SetContent(ctx, typed))
	h.ctrl.MarkViewed(ctx, "b-0")
	h.ctrl.Clear(ctx)

	assert.Equal(t, MessagePlaceholder, h.display.kind)
}

type brokenKV struct{}

var errBroken = errors.New("storage disabled")

func (brokenKV) Get(context.Context, string, any) error     { return errBroken }
func (brokenKV) Set(context.Context, string, any) error     { return errBroken }
func (brokenKV) Delete(context.Context, string) error       { return errBroken }
func (brokenKV) Has(context.Context, string) (bool, error)  { return false, errBroken }
func (brokenKV) Entries(context.Context, string) ([]kv.Entry, error) {
	return nil, errBroken
}
