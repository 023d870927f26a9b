package tui

import (
	"strings"

	tea "charm.land/bubbletea/v2"
	lipgloss "charm.land/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"

	"github.com/colonyops/patchview/internal/core/ingest"
	"github.com/colonyops/patchview/internal/core/locale"
	"github.com/colonyops/patchview/internal/core/render/termrender"
	"github.com/colonyops/patchview/internal/core/styles"
)

const (
	panelFrame  = 2 // border on both sides
	chromeLines = 3 // title, status and help lines
)

// View renders the TUI.
func (m Model) View() tea.View {
	if m.quitting {
		return tea.NewView("")
	}

	w, h := m.width, m.height
	if w == 0 {
		w = defaultWidth
	}
	if h == 0 {
		h = defaultHeight
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		m.renderTitle(),
		m.renderInput(),
		m.renderResults(),
		m.renderStatus(),
		m.help.ShortHelpView(m.keys.ShortHelp()),
	)

	switch {
	case m.overlay == overlayPicker && m.picker != nil:
		content = m.picker.Overlay(content, w, h)
	case m.overlay == overlayHelp && m.helpDialog != nil:
		content = m.helpDialog.Overlay(content, w, h)
	}

	if m.toasts.Len() > 0 {
		content = m.toasts.Overlay(content, w, h)
	}

	v := tea.NewView(content)
	v.AltScreen = true
	v.MouseMode = tea.MouseModeCellMotion
	v.WindowTitle = m.text.title
	return v
}

func (m Model) renderTitle() string {
	left := styles.TitleStyle.Render(m.text.title)
	if m.watcher != nil {
		left += "  " + styles.TextWarningStyle.Render(styles.IconDrop+" "+
			m.locale.Messagef(locale.KeyWatching, len(ingest.Paths(m.batch))))
	}

	right := styles.TextMutedStyle.Render(m.text.layoutLabel+": ") +
		styles.TextForegroundBoldStyle.Render(m.text.layoutName(m.ctrl.Layout())) +
		styles.TextMutedStyle.Render("  "+m.text.languageLabel+": ") +
		styles.TextForegroundBoldStyle.Render(locale.DisplayName(m.locale.Current()))

	gap := max(m.width-lipgloss.Width(left)-lipgloss.Width(right), 1)
	return left + strings.Repeat(" ", gap) + right
}

func (m Model) renderInput() string {
	style := styles.PanelStyle
	if m.focus == focusInput {
		style = styles.PanelFocusedStyle
	}

	body := m.input.View()
	if m.drop.Active() {
		style = styles.DropZoneStyle
		body = lipgloss.Place(m.input.Width(), lipgloss.Height(body),
			lipgloss.Center, lipgloss.Center,
			styles.TextWarningStyle.Render(styles.IconDrop+" "+m.text.dropHint))
	}
	return style.Width(m.width).Render(body)
}

func (m Model) renderResults() string {
	style := styles.PanelStyle
	if m.focus == focusResults {
		style = styles.PanelFocusedStyle
	}

	body := m.viewport.View()
	if header, ok := m.results.StickyHeader(m.viewport.YOffset()); ok {
		lines := strings.Split(body, "\n")
		lines[0] = ansi.Truncate(header, m.viewport.Width(), "…")
		body = strings.Join(lines, "\n")
	}
	return style.Width(m.width).Render(body)
}

// renderStatus shows the focused region and the selected file.
func (m Model) renderStatus() string {
	focus := m.text.focusInput
	if m.focus == focusResults {
		focus = m.text.focusResults
	}
	parts := []string{styles.TextPrimaryBoldStyle.Render(focus)}

	if p, ok := m.results.SelectedPanel(); ok {
		mark, state := styles.NotViewedStyle.Render(styles.IconNotViewed), m.text.notViewed
		if m.results.IsViewed(panelID(p)) {
			mark, state = styles.ViewedStyle.Render(styles.IconViewed), m.text.viewed
		}
		parts = append(parts, mark+" "+termrender.Sanitize(p.Name)+" "+styles.TextMutedStyle.Render("("+state+")"))
	}

	return styles.StatusBarStyle.Width(m.width).MaxHeight(1).Render(strings.Join(parts, "  "))
}
