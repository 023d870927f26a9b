package tui

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"charm.land/bubbles/v2/help"
	"charm.land/bubbles/v2/textarea"
	"charm.land/bubbles/v2/viewport"
	tea "charm.land/bubbletea/v2"
	"github.com/rs/zerolog"

	"github.com/colonyops/patchview/internal/core/config"
	"github.com/colonyops/patchview/internal/core/ingest"
	"github.com/colonyops/patchview/internal/core/locale"
	"github.com/colonyops/patchview/internal/core/logging"
	"github.com/colonyops/patchview/internal/core/render"
	"github.com/colonyops/patchview/internal/core/session"
	"github.com/colonyops/patchview/internal/tui/components"
	"github.com/colonyops/patchview/pkg/debounce"
)

// focusArea is the region receiving keys.
type focusArea int

const (
	focusInput focusArea = iota
	focusResults
)

// overlayKind is the modal drawn over the main view.
type overlayKind int

const (
	overlayNone overlayKind = iota
	overlayHelp
	overlayPicker
)

const (
	minInputHeight = 3
	defaultWidth   = 80
	defaultHeight  = 24
)

// Deps are the collaborators the viewer drives.
type Deps struct {
	Config     *config.Config
	Controller *session.Controller
	Locale     *locale.Resolver
}

// Opts configures one run of the viewer.
type Opts struct {
	Batch   []ingest.Source // loaded once at start
	Layout  render.Layout   // overrides the restored layout when set
	Watcher *ingest.Watcher // reloads Batch on change

	Warnings []string  // startup warnings shown as toasts
	Notices  io.Writer // receives warnings that should outlive the screen
}

type renderDueMsg struct{}

type uploadMsg struct {
	batch  []ingest.Source
	source logging.Source
	reload []string
}

type fileChangedMsg struct {
	change ingest.Change
}

// Model is the Bubble Tea model for the viewer.
type Model struct {
	ctx    context.Context
	cfg    *config.Config
	ctrl   *session.Controller
	locale *locale.Resolver
	log    zerolog.Logger

	results  *Results
	input    textarea.Model
	synced   string // input value as last loaded from the controller
	viewport viewport.Model
	help     help.Model
	keys     *KeyMap
	text     *chrome
	toasts   *Toasts

	typing     *debounce.Debouncer
	pasteDelay time.Duration
	drop       *ingest.DropZone

	batch    []ingest.Source
	watcher  *ingest.Watcher
	warnings []string
	notices  io.Writer

	focus      focusArea
	overlay    overlayKind
	helpDialog *components.HelpDialog
	picker     *FilePickerModal

	width       int
	height      int
	engineWidth int
	quitting    bool
}

// New builds the viewer and restores the stored session into it.
func New(ctx context.Context, deps Deps, opts Opts) Model {
	cfg := deps.Config
	if cfg == nil {
		defaults := config.DefaultConfig()
		cfg = &defaults
	}

	results := NewResults(cfg.Render.FileContentCollapsible)
	ctrl := deps.Controller
	ctrl.SetDisplay(results)

	log := logging.Component("tui")
	ctrl.SetWidth(engineWidth(defaultWidth))
	if err := ctrl.Restore(ctx); err != nil {
		log.Debug().Ctx(ctx).Err(err).Msg("restored session failed to render")
	}
	if opts.Layout.Valid() {
		_ = ctrl.SetLayout(ctx, opts.Layout, true)
	}

	input := textarea.New()
	input.ShowLineNumbers = false
	input.CharLimit = 0
	input.MaxHeight = 0
	input.SetValue(ctrl.Content())
	input.MoveToBegin()

	keys := DefaultKeyMap()
	text := &chrome{}
	text.load(deps.Locale)
	keys.Localize(deps.Locale.Message)
	input.Placeholder = text.inputPlaceholder

	deps.Locale.OnChange(func(string) {
		text.load(deps.Locale)
		keys.Localize(deps.Locale.Message)
	})

	m := Model{
		ctx:         ctx,
		cfg:         cfg,
		ctrl:        ctrl,
		locale:      deps.Locale,
		log:         log,
		results:     results,
		input:       input,
		viewport:    viewport.New(viewport.WithWidth(defaultWidth), viewport.WithHeight(defaultHeight)),
		help:        help.New(),
		keys:        &keys,
		text:        text,
		toasts:      &Toasts{},
		typing:      debounce.New(cfg.TUI.Debounce),
		pasteDelay:  cfg.TUI.PasteDebounce,
		drop:        &ingest.DropZone{},
		batch:       opts.Batch,
		watcher:     opts.Watcher,
		warnings:    opts.Warnings,
		notices:     opts.Notices,
		width:       defaultWidth,
		height:      defaultHeight,
		engineWidth: engineWidth(defaultWidth),
		synced:      input.Value(),
	}
	m.viewport.KeyMap = viewport.KeyMap{}
	m.sizePanels()
	m.setFocus(focusInput)
	return m
}

// Init loads the batch, starts the watcher and the cursor blink.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{textarea.Blink}
	for _, w := range m.warnings {
		cmds = append(cmds, m.notify(toastWarning, w))
	}
	if len(m.batch) > 0 {
		batch := m.batch
		cmds = append(cmds, func() tea.Msg { return uploadMsg{batch: batch, source: logging.SourceArgs} })
	}
	if m.watcher != nil {
		cmds = append(cmds, waitForChange(m.watcher))
		cmds = append(cmds, m.notify(toastInfo, m.locale.Messagef(locale.KeyWatching, len(ingest.Paths(m.batch)))))
	}
	return tea.Batch(cmds...)
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.sizePanels()
		if w := engineWidth(m.width); w != m.engineWidth {
			m.engineWidth = w
			m.ctrl.SetWidth(w)
			if m.results.hasOut {
				_ = m.ctrl.Render(m.ctx)
			}
		}
		m.refresh()
		return m, nil

	case toastTickMsg:
		return m, m.toasts.Tick(toastTickInterval)

	case renderDueMsg:
		m.applyInput()
		return m, nil

	case uploadMsg:
		return m.upload(msg)

	case fileChangedMsg:
		m.log.Debug().Ctx(m.ctx).Strs("paths", msg.change.Paths).Msg("watched files changed")
		return m, tea.Batch(
			func() tea.Msg { return uploadMsg{batch: m.batch, source: logging.SourceWatch, reload: msg.change.Paths} },
			waitForChange(m.watcher),
		)

	case tea.PasteStartMsg:
		m.drop.Enter()
		return m, nil

	case tea.PasteEndMsg:
		m.drop.Leave()
		return m, nil

	case tea.PasteMsg:
		return m.handlePaste(msg)

	case tea.MouseWheelMsg:
		if m.overlay != overlayNone {
			return m, nil
		}
		var cmd tea.Cmd
		m.viewport, cmd = m.updateViewport(msg)
		return m, cmd

	case tea.KeyPressMsg:
		return m.handleKey(msg)
	}

	if m.overlay == overlayPicker {
		return m.updatePicker(msg)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// handlePaste treats a paste of existing file paths as a drop. Anything
// else is text for the input area.
func (m Model) handlePaste(msg tea.PasteMsg) (tea.Model, tea.Cmd) {
	m.drop.Reset()

	if m.overlay != overlayNone {
		return m, nil
	}

	if paths, ok := ingest.ParseDroppedPaths(msg.Content); ok {
		m.typing.Cancel()
		batch := make([]ingest.Source, 0, len(paths))
		for _, p := range paths {
			batch = append(batch, ingest.FileSource(p))
		}
		m.log.Debug().Ctx(m.ctx).Int("files", len(batch)).Msg("files dropped")
		if err := m.ctrl.Drop(logging.WithSource(m.ctx, logging.SourceDrop), batch); err == nil {
			m.syncInput()
		}
		m.refresh()
		return m, nil
	}

	var cmds []tea.Cmd
	if m.focus != focusInput {
		cmds = append(cmds, m.setFocus(focusInput))
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd, m.scheduleRender(m.pasteDelay))
	return m, tea.Batch(cmds...)
}

// upload replaces the content with a batch. Reloads of a watched batch
// are announced with a toast.
func (m Model) upload(msg uploadMsg) (tea.Model, tea.Cmd) {
	m.typing.Cancel()
	ctx := m.ctx
	if msg.source != "" {
		ctx = logging.WithSource(ctx, msg.source)
	}
	err := m.ctrl.Upload(ctx, msg.batch)
	if err == nil {
		m.syncInput()
	}
	m.refresh()

	if len(msg.reload) == 0 {
		return m, nil
	}
	if err != nil {
		return m, m.notify(toastError, m.ctrl.ErrorMessage(err))
	}
	names := make([]string, 0, len(msg.reload))
	for _, p := range msg.reload {
		names = append(names, filepath.Base(p))
	}
	return m, m.notify(toastInfo, m.locale.Messagef(locale.KeyReloaded, strings.Join(names, ", ")))
}

// edited reports whether the user changed the input area since it was last
// loaded. The textarea rewrites tabs, carriage returns and very long text,
// so its value is compared with what it showed after loading, not with the
// controller's content.
func (m Model) edited() bool {
	return m.input.Value() != m.synced
}

// applyInput hands the input area to the controller when the user edited it.
func (m *Model) applyInput() bool {
	if !m.edited() {
		return false
	}
	v := m.input.Value()
	_ = m.ctrl.SetContent(logging.WithSource(m.ctx, logging.SourceInput), v)
	m.synced = v
	m.refresh()
	return true
}

// syncInput shows the controller's content in the input area.
func (m *Model) syncInput() {
	m.input.SetValue(m.ctrl.Content())
	m.input.MoveToBegin()
	m.synced = m.input.Value()
}

// scheduleRender waits delay and then asks for a render. A newer schedule
// or a cancel makes the pending wait produce nothing.
func (m Model) scheduleRender(delay time.Duration) tea.Cmd {
	task := m.typing.ScheduleAfter(delay)
	return func() tea.Msg {
		if task.Wait() {
			return renderDueMsg{}
		}
		return nil
	}
}

// notify shows a toast and copies warnings and errors to the notices
// writer, which is printed after the screen is torn down.
func (m Model) notify(level toastLevel, message string) tea.Cmd {
	if level != toastInfo && m.notices != nil {
		_, _ = fmt.Fprintln(m.notices, message)
	}
	return m.toasts.Push(level, message)
}

func (m *Model) setFocus(f focusArea) tea.Cmd {
	m.focus = f
	m.keys.SetResultsEnabled(f == focusResults)
	m.results.SetFocused(f == focusResults)

	var cmd tea.Cmd
	if f == focusInput {
		cmd = m.input.Focus()
	} else {
		m.input.Blur()
	}
	m.refresh()
	return cmd
}

// sizePanels fits the input and results panels to the window.
func (m *Model) sizePanels() {
	innerW := panelWidth(m.width)

	inputH := max(m.height/4, minInputHeight)
	m.input.SetWidth(innerW)
	m.input.SetHeight(inputH)

	resultsH := max(m.height-inputH-panelFrame*2-chromeLines, 3)
	m.viewport.SetWidth(innerW)
	m.viewport.SetHeight(resultsH)
	m.help.SetWidth(m.width)
	m.results.SetWidth(innerW)
}

func panelWidth(width int) int {
	return max(width-panelFrame, 10)
}

// engineWidth is the width a rendered diff may take inside the results
// panel, next to the header prefix.
func engineWidth(width int) int {
	return max(panelWidth(width)-HeaderPrefixWidth, 20)
}

// refresh copies the results region into the viewport.
func (m *Model) refresh() {
	offset := m.viewport.YOffset()
	m.viewport.SetContent(m.results.Content())
	m.viewport.SetYOffset(offset)
}

func (m Model) updateViewport(msg tea.Msg) (viewport.Model, tea.Cmd) {
	vp, cmd := m.viewport.Update(msg)
	m.results.SelectAt(vp.YOffset())
	vp.SetContent(m.results.Content())
	return vp, cmd
}

func (m Model) quit() (tea.Model, tea.Cmd) {
	m.typing.Cancel()
	m.applyInput()
	m.quitting = true
	return m, tea.Quit
}

func waitForChange(w *ingest.Watcher) tea.Cmd {
	return func() tea.Msg {
		change, ok := <-w.Changes()
		if !ok {
			return nil
		}
		return fileChangedMsg{change: change}
	}
}

// chrome holds the localized text of the frame around the panels. It is
// reloaded in one pass when the locale changes.
type chrome struct {
	title            string
	inputPlaceholder string
	dropHint         string
	layoutLabel      string
	languageLabel    string
	sideBySide       string
	lineByLine       string
	viewed           string
	notViewed        string
	focusInput       string
	focusResults     string
	helpTitle        string
	helpClose        string
	pickerTitle      string
}

func (c *chrome) load(r *locale.Resolver) {
	c.title = r.Message(locale.KeyAppTitle)
	c.inputPlaceholder = r.Message(locale.KeyInputPlaceholder)
	c.dropHint = r.Message(locale.KeyDropHint)
	c.layoutLabel = r.Message(locale.KeyLayoutLabel)
	c.languageLabel = r.Message(locale.KeyLanguageLabel)
	c.sideBySide = r.Message(locale.KeySideBySide)
	c.lineByLine = r.Message(locale.KeyLineByLine)
	c.viewed = r.Message(locale.KeyViewed)
	c.notViewed = r.Message(locale.KeyNotViewed)
	c.focusInput = r.Message(locale.KeyFocusInput)
	c.focusResults = r.Message(locale.KeyFocusResults)
	c.helpTitle = r.Message(locale.KeyHelpTitle)
	c.helpClose = r.Message(locale.KeyHelpClose)
	c.pickerTitle = r.Message(locale.KeyPickerTitle)
}

func (c *chrome) layoutName(l render.Layout) string {
	if l == render.LineByLine {
		return c.lineByLine
	}
	return c.sideBySide
}
