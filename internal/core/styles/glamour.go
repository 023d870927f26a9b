package styles

import (
	"image/color"

	glamouransi "github.com/charmbracelet/glamour/ansi"
	glamourstyles "github.com/charmbracelet/glamour/styles"
	"github.com/lucasb-eyer/go-colorful"
)

func hexOf(c color.Color) *string {
	if c == nil {
		return nil
	}
	cc, ok := colorful.MakeColor(c)
	if !ok {
		return nil
	}
	h := cc.Hex()
	return &h
}

// GlamourStyle returns the markdown style for the active theme. Fenced
// diff blocks use the theme's added and removed colors.
func GlamourStyle() glamouransi.StyleConfig {
	cfg := glamourstyles.DarkStyleConfig
	if isLight(ColorBackground) {
		cfg = glamourstyles.LightStyleConfig
	}

	fg, primary := hexOf(ColorForeground), hexOf(ColorPrimary)
	for _, p := range []*glamouransi.StylePrimitive{
		&cfg.Document.StylePrimitive, &cfg.Paragraph.StylePrimitive, &cfg.Table.StylePrimitive,
	} {
		p.Color = fg
	}
	for _, p := range []*glamouransi.StylePrimitive{
		&cfg.Heading.StylePrimitive, &cfg.H1.StylePrimitive, &cfg.H2.StylePrimitive, &cfg.H3.StylePrimitive,
	} {
		p.Color = primary
	}
	cfg.Code.Color = hexOf(ColorSecondary)
	cfg.CodeBlock.Color = hexOf(ColorMuted)

	// The built-in configs share one Chroma value.
	if cfg.CodeBlock.Chroma != nil {
		chroma := *cfg.CodeBlock.Chroma
		chroma.GenericInserted.Color = hexOf(ColorAdded)
		chroma.GenericDeleted.Color = hexOf(ColorRemoved)
		chroma.GenericSubheading.Color = hexOf(ColorSecondary)
		cfg.CodeBlock.Chroma = &chroma
	}

	return cfg
}

func isLight(c color.Color) bool {
	cc, ok := colorful.MakeColor(c)
	if !ok {
		return false
	}
	l, _, _ := cc.Lab()
	return l > 0.5
}
