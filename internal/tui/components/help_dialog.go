// Package components provides reusable TUI components.
package components

import (
	"strings"

	lipgloss "charm.land/lipgloss/v2"
	"github.com/charmbracelet/glamour"
	"github.com/mattn/go-runewidth"
	"github.com/rs/zerolog/log"

	"github.com/colonyops/patchview/internal/core/styles"
)

const helpDialogMaxWidth = 72

// HelpEntry represents a single keyboard shortcut entry.
type HelpEntry struct {
	Key  string
	Desc string
}

// HelpDialogSection groups related help entries under a title.
type HelpDialogSection struct {
	Title   string
	Entries []HelpEntry
}

// HelpDialog displays all available keyboard shortcuts. The body is built
// as markdown and rendered with glamour; when that fails the entries are
// laid out as plain aligned text.
type HelpDialog struct {
	title    string
	footer   string
	sections []HelpDialogSection
	width    int
	height   int
	body     string
}

// NewHelpDialog creates a new help dialog with the given sections.
func NewHelpDialog(title, footer string, sections []HelpDialogSection, width, height int) *HelpDialog {
	h := &HelpDialog{
		title:    title,
		footer:   footer,
		sections: sections,
		width:    width,
		height:   height,
	}
	h.body = h.render()
	return h
}

// Markdown returns the dialog body as markdown.
func (h *HelpDialog) Markdown() string {
	var sb strings.Builder
	for i, section := range h.sections {
		if i > 0 {
			sb.WriteString("\n")
		}
		if section.Title != "" {
			sb.WriteString("### " + escapeMarkdown(section.Title) + "\n\n")
		}
		for _, entry := range section.Entries {
			sb.WriteString("- `" + strings.ReplaceAll(entry.Key, "`", "'") + "` " + escapeMarkdown(entry.Desc) + "\n")
		}
	}
	return sb.String()
}

func (h *HelpDialog) render() string {
	wrap := min(max(h.width-8, 20), helpDialogMaxWidth)

	style := styles.GlamourStyle()
	noMargin := uint(0)
	style.Document.Margin = &noMargin

	renderer, err := glamour.NewTermRenderer(
		glamour.WithStyles(style),
		glamour.WithWordWrap(wrap),
	)
	if err != nil {
		log.Debug().Err(err).Msg("failed to create markdown renderer, showing plain help")
		return h.plain()
	}

	rendered, err := renderer.Render(h.Markdown())
	if err != nil {
		log.Debug().Err(err).Msg("failed to render help, showing plain help")
		return h.plain()
	}
	return strings.Trim(rendered, "\n")
}

func (h *HelpDialog) plain() string {
	var lines []string
	for i, section := range h.sections {
		if section.Title != "" {
			if i > 0 {
				lines = append(lines, "")
			}
			lines = append(lines, styles.TextForegroundBoldStyle.Render(section.Title))
		}
		for _, entry := range section.Entries {
			lines = append(lines, formatKeyDesc(entry.Key, entry.Desc))
		}
	}
	return strings.Join(lines, "\n")
}

// View renders the help dialog.
func (h *HelpDialog) View() string {
	body := h.body
	if maxLines := h.height - 8; maxLines > 0 {
		if lines := strings.Split(body, "\n"); len(lines) > maxLines {
			body = strings.Join(lines[:maxLines], "\n")
		}
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		styles.ModalTitleStyle.Render(h.title),
		"",
		body,
		"",
		styles.HelpStyle.Render(h.footer),
	)
	return styles.ModalStyle.Render(content)
}

// Overlay renders the help dialog as a layer over the given background.
func (h *HelpDialog) Overlay(background string, width, height int) string {
	modal := h.View()

	bgLayer := lipgloss.NewLayer(background)
	modalLayer := lipgloss.NewLayer(modal)

	// Center the modal
	modalW := lipgloss.Width(modal)
	modalH := lipgloss.Height(modal)
	centerX := max((width-modalW)/2, 0)
	centerY := max((height-modalH)/2, 0)
	modalLayer.X(centerX).Y(centerY).Z(1)

	compositor := lipgloss.NewCompositor(bgLayer, modalLayer)
	return compositor.Render()
}

// formatKeyDesc formats a key-description pair with consistent alignment.
func formatKeyDesc(key, desc string) string {
	const keyWidth = 12
	return styles.TextPrimaryBoldStyle.Render(runewidth.FillRight(key, keyWidth)) + styles.TextForegroundBoldStyle.Render(desc)
}

var markdownEscaper = strings.NewReplacer(
	`\`, `\\`, "*", `\*`, "_", `\_`, "`", "\\`", "[", `\[`, "]", `\]`, "#", `\#`,
)

func escapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}
