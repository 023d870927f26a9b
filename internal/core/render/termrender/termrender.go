// Package termrender renders diffs as ANSI text for terminals.
package termrender

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/x/ansi"
	"github.com/mattn/go-runewidth"

	"github.com/colonyops/patchview/internal/core/render"
	"github.com/colonyops/patchview/internal/core/styles"
)

const (
	// EngineName identifies this engine in logs and config.
	EngineName = "terminal"

	minWidth  = 40
	tabWidth  = 4
	numWidth  = 5
	separator = "│"
)

// Engine implements render.Engine.
type Engine struct{}

var _ render.Engine = (*Engine)(nil)

// New returns a terminal engine.
func New() *Engine {
	return &Engine{}
}

// Name implements render.Engine.
func (e *Engine) Name() string { return EngineName }

// Render implements render.Engine.
func (e *Engine) Render(ctx context.Context, diff string, opts render.Options) (render.Output, error) {
	doc, err := render.Parse(diff, opts)
	if err != nil {
		return render.Output{}, err
	}

	if len(doc.Files) == 0 {
		if opts.EmitNothingOnEmpty {
			return render.Output{Files: []render.FilePanel{}}, nil
		}
		return render.Output{
			Fragment: styles.PlaceholderStyle.Render(opts.Labels.EmptyDiff),
			Files:    []render.FilePanel{},
		}, nil
	}

	width := max(opts.Width, minWidth)
	out := render.Output{Files: make([]render.FilePanel, 0, len(doc.Files))}

	var frag strings.Builder
	if opts.ShowFileList {
		out.Summary = Summary(doc.Added, doc.Deleted, len(doc.Files), opts.Labels)
		frag.WriteString(out.Summary)
		frag.WriteString("\n")
		for _, f := range doc.Files {
			frag.WriteString(FileListLine(f.Panel, styles.IconFile, width))
			frag.WriteString("\n")
		}
		frag.WriteString("\n")
	}

	for _, f := range doc.Files {
		if err := ctx.Err(); err != nil {
			return render.Output{}, err
		}

		panel := f.Panel
		panel.Header = FileHeader(panel, width, opts.Labels)
		if f.Panel.Binary {
			panel.Body = styles.PlaceholderStyle.Render(opts.Labels.BinaryFile)
		} else if opts.Layout == render.LineByLine {
			panel.Body = lineByLine(f.Hunks, width)
		} else {
			panel.Body = sideBySide(f.Hunks, width)
		}

		frag.WriteString(panel.Header)
		frag.WriteString("\n")
		frag.WriteString(panel.Body)
		frag.WriteString("\n")
		out.Files = append(out.Files, panel)
	}

	out.Fragment = strings.TrimRight(frag.String(), "\n")
	return out, nil
}

// Summary is the totals line shown above the file list.
func Summary(added, deleted, files int, labels render.Labels) string {
	return styles.SummaryStyle.Render(fmt.Sprintf(labels.FilesSummary, files, added, deleted))
}

// FileListLine is one entry of the file list, prefixed with mark.
func FileListLine(p render.FilePanel, mark string, width int) string {
	counts := counts(p)
	name := runewidth.Truncate(Sanitize(p.Name), max(width-runewidth.StringWidth(mark)-ansi.StringWidth(counts)-4, 8), "…")
	return styles.FileListStyle.Render(mark + " " + name + "  " + counts)
}

// FileHeader is the bar shown above each file's body.
func FileHeader(p render.FilePanel, width int, labels render.Labels) string {
	name := Sanitize(p.Name)
	if p.IsRename && p.OldName != "" && p.NewName != "" && labels.RenamedFrom != "" {
		name = Sanitize(p.NewName) + "  (" + fmt.Sprintf(labels.RenamedFrom, Sanitize(p.OldName)) + ")"
	}

	c := counts(p)
	room := max(width-ansi.StringWidth(c)-1, 8)
	text := runewidth.Truncate(" "+name, room, "…")
	return styles.FileHeaderStyle.Render(runewidth.FillRight(text, room)) + " " + c
}

func counts(p render.FilePanel) string {
	return styles.GitAdditionsStyle.Render("+"+strconv.Itoa(p.Added)) + " " +
		styles.GitDeletionsStyle.Render("-"+strconv.Itoa(p.Deleted))
}

// Sanitize makes untrusted text safe to print: escape sequences are
// stripped, tabs expanded and remaining control characters dropped.
func Sanitize(s string) string {
	s = ansi.Strip(s)
	s = strings.ReplaceAll(s, "\t", strings.Repeat(" ", tabWidth))
	return strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f || (r >= 0x80 && r < 0xa0) {
			return -1
		}
		return r
	}, s)
}

func lineByLine(hunks []render.Hunk, width int) string {
	var sb strings.Builder
	textWidth := width - 2*numWidth - 4

	for hi, h := range hunks {
		if hi > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(styles.HunkHeaderStyle.Render(Sanitize(h.Header)))
		for _, l := range h.Lines {
			sb.WriteString("\n")
			sb.WriteString(styles.LineNumberStyle.Render(num(l.OldNum) + num(l.NewNum)))
			sb.WriteString(styles.LineNumberStyle.Render(separator))
			sb.WriteString(cell(&l, textWidth, false))
		}
	}
	return sb.String()
}

func sideBySide(hunks []render.Hunk, width int) string {
	var sb strings.Builder
	half := (width - 1) / 2
	textWidth := half - numWidth - 2

	for hi, h := range hunks {
		if hi > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(styles.HunkHeaderStyle.Render(Sanitize(h.Header)))
		for _, row := range h.Rows {
			sb.WriteString("\n")
			sb.WriteString(side(row.Left, true, textWidth))
			sb.WriteString(styles.LineNumberStyle.Render(separator))
			sb.WriteString(side(row.Right, false, textWidth))
		}
	}
	return sb.String()
}

func side(l *render.Line, left bool, textWidth int) string {
	if l == nil {
		return styles.EmptyCellStyle.Render(strings.Repeat(" ", numWidth+2+textWidth))
	}
	n := l.NewNum
	if left {
		n = l.OldNum
	}
	return styles.LineNumberStyle.Render(num(n)) + cell(l, textWidth, true)
}

func num(n int) string {
	if n <= 0 {
		return strings.Repeat(" ", numWidth)
	}
	return runewidth.FillLeft(strconv.Itoa(n), numWidth-1) + " "
}

// cell renders the marker and text of one line, padded to width. When
// truncate is set the text is cut to fit.
func cell(l *render.Line, width int, truncate bool) string {
	marker, base, word := " ", styles.ContextLineStyle, styles.ContextLineStyle
	switch l.Kind {
	case render.LineAdd:
		marker, base, word = "+", styles.AddLineStyle, styles.AddWordStyle
	case render.LineDelete:
		marker, base, word = "-", styles.DelLineStyle, styles.DelWordStyle
	}

	segs := l.Segments
	if segs == nil {
		segs = []render.Segment{{Text: l.Text}}
	}

	var sb strings.Builder
	sb.WriteString(base.Render(marker + " "))
	used := 0
	for _, s := range segs {
		text := Sanitize(s.Text)
		if truncate {
			remaining := width - used
			if remaining <= 0 {
				break
			}
			if runewidth.StringWidth(text) > remaining {
				text = runewidth.Truncate(text, remaining, "…")
			}
		}
		used += runewidth.StringWidth(text)
		style := base
		if s.Changed {
			style = word
		}
		sb.WriteString(style.Render(text))
	}
	if used < width {
		sb.WriteString(base.Render(strings.Repeat(" ", width-used)))
	}
	return sb.String()
}
