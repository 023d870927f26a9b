package tui

import (
	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"

	"github.com/colonyops/patchview/internal/core/ingest"
	"github.com/colonyops/patchview/internal/core/locale"
	"github.com/colonyops/patchview/internal/core/logging"
	"github.com/colonyops/patchview/internal/core/render"
	"github.com/colonyops/patchview/internal/tui/components"
)

// handleKey routes a key press to the open overlay, the global bindings
// and then the focused region.
func (m Model) handleKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch m.overlay {
	case overlayHelp:
		if key.Matches(msg, m.keys.Close) || key.Matches(msg, m.keys.Quit) {
			m.overlay = overlayNone
			m.helpDialog = nil
		}
		return m, nil
	case overlayPicker:
		if key.Matches(msg, m.keys.Quit) {
			return m.quit()
		}
		return m.updatePicker(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m.quit()
	case key.Matches(msg, m.keys.Help, m.keys.HelpResults):
		return m.showHelp()
	case key.Matches(msg, m.keys.Focus):
		if m.focus == focusInput {
			return m, m.setFocus(focusResults)
		}
		return m, m.setFocus(focusInput)
	case key.Matches(msg, m.keys.Render):
		m.typing.Cancel()
		if !m.applyInput() {
			_ = m.ctrl.Render(m.ctx)
			m.refresh()
		}
		return m, nil
	case key.Matches(msg, m.keys.Clear):
		m.typing.Cancel()
		m.ctrl.Clear(m.ctx)
		m.input.Reset()
		m.synced = ""
		m.viewport.GotoTop()
		m.refresh()
		return m, nil
	case key.Matches(msg, m.keys.Open):
		return m.openPicker()
	case key.Matches(msg, m.keys.SideBySide):
		return m.setLayout(render.SideBySide)
	case key.Matches(msg, m.keys.LineByLine):
		return m.setLayout(render.LineByLine)
	case key.Matches(msg, m.keys.Locale):
		return m.cycleLocale()
	}

	if m.focus == focusResults {
		return m.handleResultsKey(msg)
	}
	return m.handleInputKey(msg)
}

// handleInputKey forwards typing to the input area and restarts the
// render debounce when the text changed.
func (m Model) handleInputKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	before := m.input.Value()

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if m.input.Value() == before {
		return m, cmd
	}
	return m, tea.Batch(cmd, m.scheduleRender(m.typing.Delay()))
}

func (m Model) handleResultsKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.QuitResults):
		return m.quit()
	case key.Matches(msg, m.keys.Up):
		m.scroll(func() { m.viewport.ScrollUp(1) })
	case key.Matches(msg, m.keys.Down):
		m.scroll(func() { m.viewport.ScrollDown(1) })
	case key.Matches(msg, m.keys.PageUp):
		m.scroll(m.viewport.PageUp)
	case key.Matches(msg, m.keys.PageDown):
		m.scroll(m.viewport.PageDown)
	case key.Matches(msg, m.keys.Top):
		m.scroll(func() { m.viewport.GotoTop() })
	case key.Matches(msg, m.keys.Bottom):
		m.scroll(func() { m.viewport.GotoBottom() })
	case key.Matches(msg, m.keys.NextFile):
		m.jump(1)
	case key.Matches(msg, m.keys.PrevFile):
		m.jump(-1)
	case key.Matches(msg, m.keys.ToggleViewed):
		if id, ok := m.results.Selected(); ok {
			m.ctrl.ToggleViewed(m.ctx, id)
			m.refresh()
		}
	case key.Matches(msg, m.keys.Collapse):
		if m.results.ToggleCollapse() {
			m.refresh()
		}
	case key.Matches(msg, m.keys.ToggleLayout):
		_ = m.ctrl.ToggleLayout(m.ctx)
		m.refresh()
	}
	return m, nil
}

// scroll moves the viewport and selects the file now at the top.
func (m *Model) scroll(move func()) {
	move()
	m.results.SelectAt(m.viewport.YOffset())
	m.refresh()
}

// jump selects the next or previous file and brings its header to the top.
func (m *Model) jump(delta int) {
	line := m.results.Move(delta)
	m.refresh()
	m.viewport.SetYOffset(line)
}

func (m Model) setLayout(l render.Layout) (tea.Model, tea.Cmd) {
	if l == m.ctrl.Layout() {
		return m, nil
	}
	_ = m.ctrl.SetLayout(m.ctx, l, true)
	m.refresh()
	return m, nil
}

// cycleLocale switches to the next supported locale. Every visible text is
// re-applied by the resolver's listeners and the controller.
func (m Model) cycleLocale() (tea.Model, tea.Cmd) {
	next := m.locale.Next()
	if !m.ctrl.SetLocale(m.ctx, next) {
		return m, nil
	}
	m.input.Placeholder = m.text.inputPlaceholder
	m.refresh()
	m.log.Debug().Ctx(m.ctx).Str("locale", next).Msg("locale changed")
	return m, m.notify(toastInfo, m.text.languageLabel+": "+locale.DisplayName(next))
}

func (m Model) showHelp() (tea.Model, tea.Cmd) {
	sections := m.keys.HelpSections(m.text.focusInput+" / "+m.text.focusResults, m.text.focusResults)
	m.helpDialog = components.NewHelpDialog(m.text.helpTitle, "esc "+m.text.helpClose, sections, m.width, m.height)
	m.overlay = overlayHelp
	return m, nil
}

func (m Model) openPicker() (tea.Model, tea.Cmd) {
	m.picker = NewFilePickerModal(pickerStartDir(), m.ctrl.Extensions(), m.text.pickerTitle, "esc "+m.text.helpClose, m.height)
	m.overlay = overlayPicker
	return m, m.picker.Init()
}

// updatePicker forwards a message to the file picker and uploads the file
// once one is chosen.
func (m Model) updatePicker(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	m.picker, cmd = m.picker.Update(msg)

	switch {
	case m.picker.Cancelled():
		m.closePicker()
		return m, nil
	case m.picker.Selected() != "":
		path := m.picker.Selected()
		m.closePicker()
		m.log.Debug().Ctx(m.ctx).Str("path", path).Msg("file picked")
		return m.upload(uploadMsg{
			batch:  []ingest.Source{ingest.FileSource(path)},
			source: logging.SourcePicker,
		})
	}
	return m, cmd
}

func (m *Model) closePicker() {
	m.picker = nil
	m.overlay = overlayNone
}
