// Package styles provides shared lipgloss v2 styles for the CLI, the TUI and
// the terminal diff renderer.
package styles

import (
	"image/color"

	lipgloss "charm.land/lipgloss/v2"
	"github.com/lucasb-eyer/go-colorful"
)

// CurrentPalette holds the active theme palette.
var CurrentPalette Palette

// Exported color aliases for convenience.
var (
	ColorPrimary    color.Color
	ColorSecondary  color.Color
	ColorForeground color.Color
	ColorMuted      color.Color
	ColorBackground color.Color
	ColorSurface    color.Color
	ColorSuccess    color.Color
	ColorWarning    color.Color
	ColorError      color.Color
	ColorAdded      color.Color
	ColorRemoved    color.Color

	// Tinted backgrounds for changed lines and words.
	ColorAddBg     color.Color
	ColorDelBg     color.Color
	ColorAddWordBg color.Color
	ColorDelWordBg color.Color
)

// Style exports.
var (
	// CLI styles.
	TextPrimaryBoldStyle    lipgloss.Style
	TextForegroundBoldStyle lipgloss.Style
	TextMutedStyle          lipgloss.Style
	TextSuccessStyle        lipgloss.Style
	TextWarningStyle        lipgloss.Style
	TextErrorStyle          lipgloss.Style

	// TUI chrome.
	TitleStyle          lipgloss.Style
	ButtonStyle         lipgloss.Style
	ButtonActiveStyle   lipgloss.Style
	PanelStyle          lipgloss.Style
	PanelFocusedStyle   lipgloss.Style
	DropZoneStyle       lipgloss.Style
	PlaceholderStyle    lipgloss.Style
	ErrorMessageStyle   lipgloss.Style
	StatusBarStyle      lipgloss.Style
	HelpStyle           lipgloss.Style
	ModalStyle          lipgloss.Style
	ModalTitleStyle     lipgloss.Style
	SelectedBorderStyle lipgloss.Style
	ToastInfoStyle      lipgloss.Style
	ToastWarningStyle   lipgloss.Style
	ToastErrorStyle     lipgloss.Style

	// Diff rendering.
	SummaryStyle      lipgloss.Style
	FileListStyle     lipgloss.Style
	FileHeaderStyle   lipgloss.Style
	FileSelectedStyle lipgloss.Style
	HunkHeaderStyle   lipgloss.Style
	LineNumberStyle   lipgloss.Style
	ContextLineStyle  lipgloss.Style
	AddLineStyle      lipgloss.Style
	DelLineStyle      lipgloss.Style
	AddWordStyle      lipgloss.Style
	DelWordStyle      lipgloss.Style
	EmptyCellStyle    lipgloss.Style
	ViewedStyle       lipgloss.Style
	NotViewedStyle    lipgloss.Style
	GitAdditionsStyle lipgloss.Style
	GitDeletionsStyle lipgloss.Style
)

// tint mixes c into the background at ratio t, giving a subdued highlight
// that stays readable on the theme's background.
func tint(c, bg color.Color, t float64) color.Color {
	cc, ok1 := colorful.MakeColor(c)
	bc, ok2 := colorful.MakeColor(bg)
	if !ok1 || !ok2 {
		return c
	}
	return lipgloss.Color(bc.BlendLab(cc, t).Clamped().Hex())
}

// SetTheme sets the active palette and rebuilds all global styles.
func SetTheme(p Palette) {
	CurrentPalette = p

	ColorPrimary = p.Primary
	ColorSecondary = p.Secondary
	ColorForeground = p.Foreground
	ColorMuted = p.Muted
	ColorBackground = p.Background
	ColorSurface = p.Surface
	ColorSuccess = p.Success
	ColorWarning = p.Warning
	ColorError = p.Error
	ColorAdded = p.Added
	ColorRemoved = p.Removed

	ColorAddBg = tint(p.Added, p.Background, 0.18)
	ColorDelBg = tint(p.Removed, p.Background, 0.18)
	ColorAddWordBg = tint(p.Added, p.Background, 0.45)
	ColorDelWordBg = tint(p.Removed, p.Background, 0.45)

	TextPrimaryBoldStyle = lipgloss.NewStyle().Foreground(ColorPrimary).Bold(true)
	TextForegroundBoldStyle = lipgloss.NewStyle().Foreground(ColorForeground).Bold(true)
	TextMutedStyle = lipgloss.NewStyle().Foreground(ColorMuted)
	TextSuccessStyle = lipgloss.NewStyle().Foreground(ColorSuccess)
	TextWarningStyle = lipgloss.NewStyle().Foreground(ColorWarning)
	TextErrorStyle = lipgloss.NewStyle().Foreground(ColorError)

	TitleStyle = lipgloss.NewStyle().
		Foreground(ColorPrimary).
		Bold(true)
	ButtonStyle = lipgloss.NewStyle().
		Padding(0, 1).
		Background(ColorSurface).
		Foreground(ColorMuted)
	ButtonActiveStyle = lipgloss.NewStyle().
		Padding(0, 1).
		Background(ColorPrimary).
		Foreground(ColorBackground).
		Bold(true)
	PanelStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorSurface)
	PanelFocusedStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorPrimary)
	DropZoneStyle = lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(ColorWarning)
	PlaceholderStyle = lipgloss.NewStyle().
		Foreground(ColorMuted).
		Italic(true).
		Padding(1, 2)
	ErrorMessageStyle = lipgloss.NewStyle().
		Foreground(ColorError).
		Bold(true).
		Padding(1, 2)
	StatusBarStyle = lipgloss.NewStyle().
		Foreground(ColorMuted)
	HelpStyle = lipgloss.NewStyle().
		Foreground(ColorMuted)
	ModalStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorPrimary).
		Padding(1, 2)
	ModalTitleStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(ColorForeground)
	SelectedBorderStyle = lipgloss.NewStyle().
		Foreground(ColorPrimary)

	toastBase := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		Padding(0, 1).
		Foreground(ColorForeground)
	ToastInfoStyle = toastBase.BorderForeground(ColorPrimary)
	ToastWarningStyle = toastBase.BorderForeground(ColorWarning)
	ToastErrorStyle = toastBase.BorderForeground(ColorError)

	SummaryStyle = lipgloss.NewStyle().
		Foreground(ColorForeground).
		Bold(true)
	FileListStyle = lipgloss.NewStyle().
		Foreground(ColorForeground).
		PaddingLeft(2)
	FileHeaderStyle = lipgloss.NewStyle().
		Foreground(ColorForeground).
		Background(ColorSurface).
		Bold(true)
	FileSelectedStyle = lipgloss.NewStyle().
		Foreground(ColorBackground).
		Background(ColorPrimary).
		Bold(true)
	HunkHeaderStyle = lipgloss.NewStyle().
		Foreground(ColorSecondary)
	LineNumberStyle = lipgloss.NewStyle().
		Foreground(ColorMuted)
	ContextLineStyle = lipgloss.NewStyle().
		Foreground(ColorForeground)
	AddLineStyle = lipgloss.NewStyle().
		Foreground(ColorAdded).
		Background(ColorAddBg)
	DelLineStyle = lipgloss.NewStyle().
		Foreground(ColorRemoved).
		Background(ColorDelBg)
	AddWordStyle = lipgloss.NewStyle().
		Foreground(ColorForeground).
		Background(ColorAddWordBg).
		Bold(true)
	DelWordStyle = lipgloss.NewStyle().
		Foreground(ColorForeground).
		Background(ColorDelWordBg).
		Bold(true)
	EmptyCellStyle = lipgloss.NewStyle().
		Background(ColorSurface)
	ViewedStyle = lipgloss.NewStyle().
		Foreground(ColorSuccess).
		Bold(true)
	NotViewedStyle = lipgloss.NewStyle().
		Foreground(ColorMuted)
	GitAdditionsStyle = lipgloss.NewStyle().Foreground(ColorAdded)
	GitDeletionsStyle = lipgloss.NewStyle().Foreground(ColorRemoved)
}

// SetThemeByName applies a named theme, falling back to the default.
// It reports whether name was found.
func SetThemeByName(name string) bool {
	p, ok := GetPalette(name)
	if !ok {
		p = themes[DefaultTheme]
	}
	SetTheme(p)
	return ok
}

// nolint:gochecknoinits // bootstrap default theme before any style is accessed.
func init() {
	SetTheme(themes[DefaultTheme])
}
