package render

import "fmt"

// Layout selects how changed lines are arranged.
type Layout string

const (
	SideBySide Layout = "side-by-side"
	LineByLine Layout = "line-by-line"
)

// DefaultLayout is used when nothing is stored or configured.
const DefaultLayout = SideBySide

// ParseLayout validates a layout name.
func ParseLayout(s string) (Layout, error) {
	switch l := Layout(s); l {
	case SideBySide, LineByLine:
		return l, nil
	default:
		return "", fmt.Errorf("unknown layout %q (want %s or %s)", s, SideBySide, LineByLine)
	}
}

// Valid reports whether l is a known layout.
func (l Layout) Valid() bool {
	_, err := ParseLayout(string(l))
	return err == nil
}

// Toggle returns the other layout.
func (l Layout) Toggle() Layout {
	if l == LineByLine {
		return SideBySide
	}
	return LineByLine
}

// Matching strategies for pairing deleted lines with added lines.
const (
	MatchingLines = "lines"
	MatchingWords = "words"
	MatchingNone  = "none"
)

// Labels are the localized strings an engine may embed in its output.
type Labels struct {
	EmptyDiff     string
	BinaryFile    string
	FileListTitle string
	FilesSummary  string // format: files, added, deleted
	RenamedFrom   string // format: old name
	Viewed        string
}

// DefaultLabels are the English labels.
func DefaultLabels() Labels {
	return Labels{
		EmptyDiff:     "No changes found in input",
		BinaryFile:    "Binary file",
		FileListTitle: "Files",
		FilesSummary:  "%d files changed, +%d -%d",
		RenamedFrom:   "renamed from %s",
		Viewed:        "Viewed",
	}
}

// Options are passed to the engine on every render.
type Options struct {
	Layout                   Layout
	ShowFileList             bool
	Matching                 string
	MatchWordsThreshold      float64
	MaxHighlightLineLength   int
	EmitNothingOnEmpty       bool
	FileListCollapsible      bool
	FileListInitiallyVisible bool
	FileContentCollapsible   bool
	StickyFileHeaders        bool

	// Width is the available terminal width; ignored by the HTML engine.
	Width  int
	Labels Labels
}

// DefaultOptions returns the options used when config leaves them unset.
func DefaultOptions() Options {
	return Options{
		Layout:                   DefaultLayout,
		ShowFileList:             true,
		Matching:                 MatchingLines,
		MatchWordsThreshold:      0.25,
		MaxHighlightLineLength:   10000,
		EmitNothingOnEmpty:       false,
		FileListCollapsible:      true,
		FileListInitiallyVisible: true,
		FileContentCollapsible:   true,
		StickyFileHeaders:        true,
		Width:                    120,
		Labels:                   DefaultLabels(),
	}
}
