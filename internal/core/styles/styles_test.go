package styles

import (
	"testing"

	glamourstyles "github.com/charmbracelet/glamour/styles"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetThemeByName(t *testing.T) {
	t.Cleanup(func() { SetThemeByName(DefaultTheme) })

	assert.True(t, SetThemeByName("gruvbox"))
	assert.Equal(t, themes["gruvbox"].Primary, ColorPrimary)

	assert.False(t, SetThemeByName("no-such-theme"))
	assert.Equal(t, themes[DefaultTheme].Primary, ColorPrimary)
}

func TestThemeNames_Sorted(t *testing.T) {
	names := ThemeNames()
	assert.Contains(t, names, DefaultTheme)
	assert.IsNonDecreasing(t, names)
}

func TestThemes_Complete(t *testing.T) {
	for name, p := range themes {
		assert.NotNil(t, p.Added, name)
		assert.NotNil(t, p.Removed, name)
		assert.NotNil(t, p.Surface, name)
	}
}

func TestTint_BetweenBackgroundAndColor(t *testing.T) {
	p := themes[DefaultTheme]
	assert.NotEqual(t, p.Background, tint(p.Added, p.Background, 0.2))
	assert.NotNil(t, ColorAddBg)
	assert.NotNil(t, ColorDelWordBg)
}

func TestGlamourStyle_LightTheme(t *testing.T) {
	t.Cleanup(func() { SetThemeByName(DefaultTheme) })

	SetThemeByName("github-light")
	assert.True(t, isLight(ColorBackground))

	SetThemeByName(DefaultTheme)
	assert.False(t, isLight(ColorBackground))
	cfg := GlamourStyle()
	assert.NotNil(t, cfg.Document.Color)
}

func TestGlamourStyle_DiffBlocks(t *testing.T) {
	cfg := GlamourStyle()
	require.NotNil(t, cfg.CodeBlock.Chroma)

	assert.Equal(t, hexOf(ColorAdded), cfg.CodeBlock.Chroma.GenericInserted.Color)
	assert.Equal(t, hexOf(ColorRemoved), cfg.CodeBlock.Chroma.GenericDeleted.Color)
	assert.NotSame(t, glamourstyles.DarkStyleConfig.CodeBlock.Chroma, cfg.CodeBlock.Chroma)
}
