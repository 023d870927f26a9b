package tui

import (
	"strings"

	lipgloss "charm.land/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"

	"github.com/colonyops/patchview/internal/core/render"
	"github.com/colonyops/patchview/internal/core/render/termrender"
	"github.com/colonyops/patchview/internal/core/session"
	"github.com/colonyops/patchview/internal/core/styles"
	"github.com/colonyops/patchview/internal/core/viewed"
)

// HeaderPrefixWidth is the room taken by the selection cursor, viewed mark
// and collapse icon in front of each file header.
const HeaderPrefixWidth = 6

// Results is the results region of the TUI. It keeps the last render and
// rebuilds its lines when marks, collapse state or selection change, so
// toggling a file never re-renders the diff.
type Results struct {
	out     render.Output
	hasOut  bool
	kind    session.MessageKind
	message string
	layout  render.Layout

	viewed      map[viewed.FileID]bool
	collapsed   map[viewed.FileID]bool
	collapsible bool
	selected    int
	focused     bool
	width       int

	lines   []string
	headers []int
	dirty   bool
}

var _ session.Display = (*Results)(nil)

// NewResults returns an empty region. With collapsible set, marking a file
// viewed hides its body.
func NewResults(collapsible bool) *Results {
	return &Results{
		viewed:      make(map[viewed.FileID]bool),
		collapsed:   make(map[viewed.FileID]bool),
		collapsible: collapsible,
		layout:      render.DefaultLayout,
		width:       80,
	}
}

// ShowOutput implements session.Display.
func (r *Results) ShowOutput(out render.Output) {
	keep := make(map[viewed.FileID]bool, len(out.Files))
	for _, p := range out.Files {
		keep[panelID(p)] = true
	}
	for id := range r.viewed {
		if !keep[id] {
			delete(r.viewed, id)
			delete(r.collapsed, id)
		}
	}

	r.out = out
	r.hasOut = true
	r.message = ""
	if r.selected >= len(out.Files) {
		r.selected = max(len(out.Files)-1, 0)
	}
	r.dirty = true
}

// ShowMessage implements session.Display.
func (r *Results) ShowMessage(kind session.MessageKind, text string) {
	r.out = render.Output{}
	r.hasOut = false
	r.kind = kind
	r.message = termrender.Sanitize(text)
	r.selected = 0
	r.dirty = true
}

// SetViewed implements session.Display. A change of the viewed state also
// collapses or expands the file.
func (r *Results) SetViewed(id viewed.FileID, v bool) {
	prev, known := r.viewed[id]
	r.viewed[id] = v
	if r.collapsible && (!known || prev != v) {
		r.collapsed[id] = v
	}
	r.dirty = true
}

// SetLayout implements session.Display.
func (r *Results) SetLayout(l render.Layout) {
	r.layout = l
}

// Layout returns the layout last set by the controller.
func (r *Results) Layout() render.Layout { return r.layout }

// SetWidth sets the width messages are wrapped to.
func (r *Results) SetWidth(w int) {
	if w > 0 && w != r.width {
		r.width = w
		r.dirty = true
	}
}

// SetFocused switches the selection cursor on or off.
func (r *Results) SetFocused(f bool) {
	if f != r.focused {
		r.focused = f
		r.dirty = true
	}
}

// Failed reports whether the region shows an error.
func (r *Results) Failed() bool {
	return !r.hasOut && r.kind == session.MessageError
}

// Message returns the placeholder or error text.
func (r *Results) Message() string {
	return r.message
}

// Files returns the panels of the last render.
func (r *Results) Files() []render.FilePanel {
	return r.out.Files
}

// Selected returns the id of the selected file.
func (r *Results) Selected() (viewed.FileID, bool) {
	p, ok := r.SelectedPanel()
	if !ok {
		return "", false
	}
	return panelID(p), true
}

// SelectedPanel returns the panel of the selected file.
func (r *Results) SelectedPanel() (render.FilePanel, bool) {
	if !r.hasOut || len(r.out.Files) == 0 {
		return render.FilePanel{}, false
	}
	return r.out.Files[r.selected], true
}

// IsViewed reports the mark last applied to id.
func (r *Results) IsViewed(id viewed.FileID) bool {
	return r.viewed[id]
}

// IsCollapsed reports whether the body of id is hidden.
func (r *Results) IsCollapsed(id viewed.FileID) bool {
	return r.collapsed[id]
}

// Move shifts the selection by delta files and returns the line of the new
// selection's header.
func (r *Results) Move(delta int) int {
	r.ensure()
	if len(r.headers) == 0 {
		return 0
	}
	r.selected = min(max(r.selected+delta, 0), len(r.headers)-1)
	r.dirty = true
	return r.headers[r.selected]
}

// SelectAt selects the file whose section contains line.
func (r *Results) SelectAt(line int) {
	r.ensure()
	if i := r.sectionAt(line); i >= 0 && i != r.selected {
		r.selected = i
		r.dirty = true
	}
}

// ToggleCollapse hides or shows the body of the selected file.
func (r *Results) ToggleCollapse() bool {
	id, ok := r.Selected()
	if !ok {
		return false
	}
	r.collapsed[id] = !r.collapsed[id]
	r.dirty = true
	return true
}

// Content returns the composed region.
func (r *Results) Content() string {
	r.ensure()
	return strings.Join(r.lines, "\n")
}

// StickyHeader returns the header of the file whose body is at the top of
// the region when the header itself has scrolled out of view.
func (r *Results) StickyHeader(top int) (string, bool) {
	r.ensure()
	i := r.sectionAt(top)
	if i < 0 || r.headers[i] >= top {
		return "", false
	}
	return r.lines[r.headers[i]], true
}

func (r *Results) sectionAt(line int) int {
	found := -1
	for i, h := range r.headers {
		if h > line {
			break
		}
		found = i
	}
	return found
}

// ensure rebuilds the lines when a change is pending.
func (r *Results) ensure() {
	if r.dirty {
		r.compose()
		r.dirty = false
	}
}

func (r *Results) compose() {
	r.lines = r.lines[:0]
	r.headers = r.headers[:0]

	if !r.hasOut {
		style := styles.PlaceholderStyle
		if r.kind == session.MessageError {
			style = styles.ErrorMessageStyle
		}
		r.add(style.Width(max(r.width, 10)).Render(r.message))
		return
	}

	if len(r.out.Files) == 0 {
		r.add(r.out.Fragment)
		return
	}

	if r.out.Summary != "" {
		r.add(r.out.Summary)
		for _, p := range r.out.Files {
			r.add(termrender.FileListLine(p, r.mark(panelID(p)), r.width))
		}
		r.add("")
	}

	for i, p := range r.out.Files {
		id := panelID(p)
		r.headers = append(r.headers, len(r.lines))
		r.add(r.header(i, id, p.Header))
		if !r.collapsed[id] && p.Body != "" {
			r.add(p.Body)
		}
		r.add("")
	}
	r.lines = r.lines[:len(r.lines)-1]
}

func (r *Results) header(i int, id viewed.FileID, text string) string {
	cursor := " "
	if r.focused && i == r.selected {
		cursor = styles.SelectedBorderStyle.Render(styles.IconSelected)
	}
	icon := styles.IconExpanded
	if r.collapsed[id] {
		icon = styles.IconCollapsed
	}

	prefix := cursor + " " + r.mark(id) + " " + styles.TextMutedStyle.Render(icon) + " "
	if r.focused && i == r.selected {
		text = styles.FileSelectedStyle.Render(ansi.Strip(text))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, prefix, text)
}

func (r *Results) mark(id viewed.FileID) string {
	if r.viewed[id] {
		return styles.ViewedStyle.Render(styles.IconViewed)
	}
	return styles.NotViewedStyle.Render(styles.IconNotViewed)
}

func (r *Results) add(block string) {
	r.lines = append(r.lines, strings.Split(block, "\n")...)
}

func panelID(p render.FilePanel) viewed.FileID {
	return viewed.NewFileID(p.Name, p.Index)
}
