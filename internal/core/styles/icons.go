package styles

// Plain unicode so output stays readable without a patched font.
var (
	IconViewed    = "✓"
	IconNotViewed = "○"
	IconExpanded  = "▾"
	IconCollapsed = "▸"
	IconDrop      = "⇣"
	IconFile      = "•"
	IconSelected  = "›"

	IconNotifyInfo    = "ℹ"
	IconNotifyWarning = "!"
	IconNotifyError   = "✘"
)
