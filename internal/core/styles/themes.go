package styles

import (
	"image/color"
	"maps"
	"slices"

	lipgloss "charm.land/lipgloss/v2"
)

// Palette is the set of semantic colors a theme provides. Added and Removed
// color changed lines; their backgrounds are tinted from them.
type Palette struct {
	Primary    color.Color
	Secondary  color.Color
	Foreground color.Color
	Muted      color.Color
	Background color.Color
	Surface    color.Color
	Success    color.Color
	Warning    color.Color
	Error      color.Color
	Added      color.Color
	Removed    color.Color
}

// DefaultTheme is used when the config names no theme.
const DefaultTheme = "tokyo-night"

// hexes lists a theme's colors in Palette field order.
type hexes [11]string

func (h hexes) palette() Palette {
	c := func(i int) color.Color { return lipgloss.Color(h[i]) }
	return Palette{
		Primary: c(0), Secondary: c(1), Foreground: c(2), Muted: c(3),
		Background: c(4), Surface: c(5),
		Success: c(6), Warning: c(7), Error: c(8),
		Added: c(9), Removed: c(10),
	}
}

var themes = map[string]Palette{
	//                        primary    secondary  fg         muted      bg         surface    success    warning    error      added      removed
	"tokyo-night":  hexes{"#7aa2f7", "#7dcfff", "#c0caf5", "#565f89", "#1a1b26", "#3b4261", "#9ece6a", "#e0af68", "#f7768e", "#9ece6a", "#f7768e"}.palette(),
	"gruvbox":      hexes{"#83a598", "#8ec07c", "#ebdbb2", "#665c54", "#282828", "#3c3836", "#b8bb26", "#fabd2f", "#fb4934", "#b8bb26", "#fb4934"}.palette(),
	"github-dark":  hexes{"#58a6ff", "#39c5cf", "#e6edf3", "#7d8590", "#0d1117", "#21262d", "#3fb950", "#d29922", "#f85149", "#2ea043", "#da3633"}.palette(),
	"github-light": hexes{"#0969da", "#1b7c83", "#1f2328", "#6e7781", "#ffffff", "#eaeef2", "#1a7f37", "#9a6700", "#cf222e", "#1a7f37", "#cf222e"}.palette(),
	"solarized":    hexes{"#268bd2", "#2aa198", "#93a1a1", "#586e75", "#002b36", "#073642", "#859900", "#b58900", "#dc322f", "#859900", "#dc322f"}.palette(),
}

// ThemeNames returns the built-in theme names, sorted.
func ThemeNames() []string {
	return slices.Sorted(maps.Keys(themes))
}

// GetPalette returns the palette of a built-in theme.
func GetPalette(name string) (Palette, bool) {
	p, ok := themes[name]
	return p, ok
}
