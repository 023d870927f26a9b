package tui

import (
	"charm.land/bubbles/v2/key"

	"github.com/colonyops/patchview/internal/core/locale"
	"github.com/colonyops/patchview/internal/tui/components"
)

// KeyMap holds every binding of the viewer. Global bindings work in both
// focus areas and avoid keys the input area uses for editing.
type KeyMap struct {
	// global
	Quit       key.Binding
	Help       key.Binding
	Focus      key.Binding
	Render     key.Binding
	Clear      key.Binding
	Open       key.Binding
	SideBySide key.Binding
	LineByLine key.Binding
	Locale     key.Binding

	// results
	Up           key.Binding
	Down         key.Binding
	PageUp       key.Binding
	PageDown     key.Binding
	Top          key.Binding
	Bottom       key.Binding
	NextFile     key.Binding
	PrevFile     key.Binding
	ToggleViewed key.Binding
	Collapse     key.Binding
	ToggleLayout key.Binding
	QuitResults  key.Binding
	HelpResults  key.Binding

	// overlays
	Close key.Binding
}

// DefaultKeyMap returns the bindings with English help text.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Quit:       key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
		Help:       key.NewBinding(key.WithKeys("f1"), key.WithHelp("f1", "help")),
		Focus:      key.NewBinding(key.WithKeys("tab", "shift+tab"), key.WithHelp("tab", "switch focus")),
		Render:     key.NewBinding(key.WithKeys("ctrl+r"), key.WithHelp("ctrl+r", "render")),
		Clear:      key.NewBinding(key.WithKeys("ctrl+x"), key.WithHelp("ctrl+x", "clear")),
		Open:       key.NewBinding(key.WithKeys("ctrl+o"), key.WithHelp("ctrl+o", "open file")),
		SideBySide: key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "side by side")),
		LineByLine: key.NewBinding(key.WithKeys("ctrl+l"), key.WithHelp("ctrl+l", "line by line")),
		Locale:     key.NewBinding(key.WithKeys("ctrl+g"), key.WithHelp("ctrl+g", "language")),

		Up:           key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "scroll")),
		Down:         key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "scroll")),
		PageUp:       key.NewBinding(key.WithKeys("pgup", "b"), key.WithHelp("pgup", "page up")),
		PageDown:     key.NewBinding(key.WithKeys("pgdown", "f", "space"), key.WithHelp("pgdn", "page down")),
		Top:          key.NewBinding(key.WithKeys("g", "home"), key.WithHelp("g", "top")),
		Bottom:       key.NewBinding(key.WithKeys("G", "end"), key.WithHelp("G", "bottom")),
		NextFile:     key.NewBinding(key.WithKeys("n", "]"), key.WithHelp("n", "next file")),
		PrevFile:     key.NewBinding(key.WithKeys("p", "["), key.WithHelp("p", "previous file")),
		ToggleViewed: key.NewBinding(key.WithKeys("v"), key.WithHelp("v", "toggle viewed")),
		Collapse:     key.NewBinding(key.WithKeys("enter", "o"), key.WithHelp("enter", "collapse")),
		ToggleLayout: key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "toggle layout")),
		QuitResults:  key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit")),
		HelpResults:  key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),

		Close: key.NewBinding(key.WithKeys("esc", "?", "f1", "q"), key.WithHelp("esc", "close")),
	}
}

// Localize replaces the help text with messages from the catalog.
func (k *KeyMap) Localize(msg func(key string) string) {
	set := func(b *key.Binding, catalogKey string) {
		b.SetHelp(b.Help().Key, msg(catalogKey))
	}

	set(&k.Quit, locale.KeyHelpQuit)
	set(&k.Help, locale.KeyHelpTitle)
	set(&k.Focus, locale.KeyHelpFocus)
	set(&k.Render, locale.KeyRenderButton)
	set(&k.Clear, locale.KeyClearButton)
	set(&k.Open, locale.KeyUploadButton)
	set(&k.SideBySide, locale.KeySideBySide)
	set(&k.LineByLine, locale.KeyLineByLine)
	set(&k.Locale, locale.KeyLanguageLabel)
	set(&k.Up, locale.KeyHelpScroll)
	set(&k.Down, locale.KeyHelpScroll)
	set(&k.PageUp, locale.KeyHelpScroll)
	set(&k.PageDown, locale.KeyHelpScroll)
	set(&k.Top, locale.KeyHelpScroll)
	set(&k.Bottom, locale.KeyHelpScroll)
	set(&k.NextFile, locale.KeyHelpNextFile)
	set(&k.PrevFile, locale.KeyHelpPrevFile)
	set(&k.ToggleViewed, locale.KeyHelpToggleViewed)
	set(&k.Collapse, locale.KeyHelpCollapse)
	set(&k.ToggleLayout, locale.KeyHelpToggleLayout)
	set(&k.QuitResults, locale.KeyHelpQuit)
	set(&k.HelpResults, locale.KeyHelpTitle)
	set(&k.Close, locale.KeyHelpClose)
}

// SetResultsEnabled turns the single-letter bindings on while the results
// region has focus, so they never swallow typing.
func (k *KeyMap) SetResultsEnabled(on bool) {
	for _, b := range []*key.Binding{
		&k.Up, &k.Down, &k.PageUp, &k.PageDown, &k.Top, &k.Bottom,
		&k.NextFile, &k.PrevFile, &k.ToggleViewed, &k.Collapse,
		&k.ToggleLayout, &k.QuitResults, &k.HelpResults,
	} {
		b.SetEnabled(on)
	}
}

// ShortHelp implements help.KeyMap.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Focus, k.Render, k.Open, k.ToggleViewed, k.NextFile, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Focus, k.Render, k.Clear, k.Open, k.SideBySide, k.LineByLine, k.Locale, k.Help, k.Quit},
		{k.Up, k.PageDown, k.Top, k.Bottom, k.NextFile, k.PrevFile, k.ToggleViewed, k.Collapse, k.ToggleLayout},
	}
}

// HelpSections lists every binding for the help dialog, regardless of
// whether it is currently enabled.
func (k KeyMap) HelpSections(globalTitle, resultsTitle string) []components.HelpDialogSection {
	groups := k.FullHelp()
	titles := []string{globalTitle, resultsTitle}

	sections := make([]components.HelpDialogSection, 0, len(groups))
	for i, group := range groups {
		section := components.HelpDialogSection{Title: titles[i]}
		for _, b := range group {
			h := b.Help()
			section.Entries = append(section.Entries, components.HelpEntry{Key: h.Key, Desc: h.Desc})
		}
		sections = append(sections, section)
	}
	return sections
}
