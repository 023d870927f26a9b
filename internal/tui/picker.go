package tui

import (
	"os"

	"charm.land/bubbles/v2/filepicker"
	tea "charm.land/bubbletea/v2"
	lipgloss "charm.land/lipgloss/v2"

	"github.com/colonyops/patchview/internal/core/styles"
)

const pickerChrome = 6 // border, padding, title and help lines

// FilePickerModal lets the user choose one file to upload. Only the
// accepted extensions can be selected.
type FilePickerModal struct {
	picker    filepicker.Model
	title     string
	help      string
	cancelled bool
	selected  string
}

// NewFilePickerModal creates a picker rooted at dir.
func NewFilePickerModal(dir string, exts []string, title, help string, height int) *FilePickerModal {
	fp := filepicker.New()
	fp.CurrentDirectory = dir
	fp.AllowedTypes = exts
	fp.ShowPermissions = false
	fp.AutoHeight = false
	fp.SetHeight(max(height-pickerChrome-4, 3))

	return &FilePickerModal{
		picker: fp,
		title:  title,
		help:   help,
	}
}

// pickerStartDir is the working directory, or the home directory when the
// working directory is gone.
func pickerStartDir() string {
	if wd, err := os.Getwd(); err == nil {
		return wd
	}
	if home, err := os.UserHomeDir(); err == nil {
		return home
	}
	return "."
}

// Init reads the starting directory.
func (m *FilePickerModal) Init() tea.Cmd {
	return m.picker.Init()
}

// Update handles messages for the picker. Esc closes it without a
// selection.
func (m *FilePickerModal) Update(msg tea.Msg) (*FilePickerModal, tea.Cmd) {
	if msg, ok := msg.(tea.KeyPressMsg); ok && msg.String() == "esc" {
		m.cancelled = true
		return m, nil
	}

	var cmd tea.Cmd
	m.picker, cmd = m.picker.Update(msg)

	if ok, path := m.picker.DidSelectFile(msg); ok {
		m.selected = path
	}
	return m, cmd
}

// Cancelled reports whether the user closed the picker.
func (m *FilePickerModal) Cancelled() bool {
	return m.cancelled
}

// Selected returns the chosen path, or "" while nothing is chosen.
func (m *FilePickerModal) Selected() string {
	return m.selected
}

// Overlay renders the picker centered over background.
func (m *FilePickerModal) Overlay(background string, width, height int) string {
	content := lipgloss.JoinVertical(lipgloss.Left,
		styles.ModalTitleStyle.Render(m.title),
		styles.TextMutedStyle.Render(m.picker.CurrentDirectory),
		"",
		m.picker.View(),
		styles.HelpStyle.Render(m.help),
	)
	modal := styles.ModalStyle.Width(min(max(width*2/3, 40), width)).Render(content)

	bgLayer := lipgloss.NewLayer(background)
	modalLayer := lipgloss.NewLayer(modal)
	modalLayer.
		X(max((width-lipgloss.Width(modal))/2, 0)).
		Y(max((height-lipgloss.Height(modal))/2, 0)).
		Z(1)

	return lipgloss.NewCompositor(bgLayer, modalLayer).Render()
}
