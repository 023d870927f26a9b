// Package htmlrender renders diffs as an HTML fragment using the familiar
// d2h-* class names, plus a standalone page wrapper with embedded styles.
package htmlrender

import (
	"context"
	"fmt"
	"html"
	"strconv"
	"strings"

	"github.com/colonyops/patchview/internal/core/render"
	"github.com/colonyops/patchview/internal/core/viewed"
)

// EngineName identifies this engine in logs and config.
const EngineName = "html"

// Engine implements render.Engine.
type Engine struct{}

var _ render.Engine = (*Engine)(nil)

// New returns an HTML engine.
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

	out := render.Output{Files: make([]render.FilePanel, 0, len(doc.Files))}
	if len(doc.Files) == 0 {
		if !opts.EmitNothingOnEmpty {
			out.Fragment = `<div class="d2h-wrapper"><div class="d2h-empty">` + html.EscapeString(opts.Labels.EmptyDiff) + `</div></div>`
		}
		return out, nil
	}

	if opts.ShowFileList {
		out.Summary = html.EscapeString(fmt.Sprintf(opts.Labels.FilesSummary, len(doc.Files), doc.Added, doc.Deleted))
	}

	for _, f := range doc.Files {
		if err := ctx.Err(); err != nil {
			return render.Output{}, err
		}

		panel := f.Panel
		panel.Header = fileHeader(panel, opts.Labels)
		switch {
		case panel.Binary:
			panel.Body = `<div class="d2h-code-line d2h-info">` + html.EscapeString(opts.Labels.BinaryFile) + `</div>`
		case opts.Layout == render.LineByLine:
			panel.Body = lineByLine(f.Hunks)
		default:
			panel.Body = sideBySide(f.Hunks)
		}
		out.Files = append(out.Files, panel)
	}

	out.Fragment = compose(out, opts)
	return out, nil
}

func compose(out render.Output, opts render.Options) string {
	var sb strings.Builder
	sb.WriteString(`<div class="d2h-wrapper">`)

	if opts.ShowFileList {
		writeFileList(&sb, out, opts)
	}

	for _, p := range out.Files {
		id := html.EscapeString(string(viewed.NewFileID(p.Name, p.Index)))

		classes := "d2h-file-wrapper"
		if opts.FileContentCollapsible {
			classes += " d2h-collapsible"
		}
		fmt.Fprintf(&sb, `<div id="d2h-file-%d" class="%s" data-file-id="%s">`, p.Index, classes, id)

		headerClass := "d2h-file-header"
		if opts.StickyFileHeaders {
			headerClass += " d2h-sticky-header"
		}
		fmt.Fprintf(&sb, `<div class="%s">%s<label class="d2h-file-collapse">%s %s</label></div>`,
			headerClass, p.Header, checkbox(id), html.EscapeString(opts.Labels.Viewed))

		sb.WriteString(`<div class="d2h-files-diff">`)
		sb.WriteString(p.Body)
		sb.WriteString(`</div></div>`)
	}

	sb.WriteString(`</div>`)
	return sb.String()
}

func checkbox(escapedID string) string {
	return `<input type="checkbox" class="d2h-file-collapse-input" data-file-id="` + escapedID + `">`
}

// MarkViewed checks the viewed box of every listed file in a fragment
// produced by this engine.
func MarkViewed(fragment string, ids []viewed.FileID) string {
	for _, id := range ids {
		box := checkbox(html.EscapeString(string(id)))
		fragment = strings.ReplaceAll(fragment, box, strings.TrimSuffix(box, ">")+" checked>")
	}
	return fragment
}

func writeFileList(sb *strings.Builder, out render.Output, opts render.Options) {
	if opts.FileListCollapsible {
		sb.WriteString(`<details class="d2h-file-list-wrapper"`)
		if opts.FileListInitiallyVisible {
			sb.WriteString(" open")
		}
		sb.WriteString(`><summary class="d2h-file-list-header">`)
		sb.WriteString(out.Summary)
		sb.WriteString(`</summary>`)
	} else {
		sb.WriteString(`<div class="d2h-file-list-wrapper"><div class="d2h-file-list-header">`)
		sb.WriteString(out.Summary)
		sb.WriteString(`</div>`)
	}

	sb.WriteString(`<ol class="d2h-file-list">`)
	for _, p := range out.Files {
		fmt.Fprintf(sb, `<li class="d2h-file-list-line"><a href="#d2h-file-%d" class="d2h-file-name">%s</a> %s</li>`,
			p.Index, html.EscapeString(p.Name), stats(p))
	}
	sb.WriteString(`</ol>`)

	if opts.FileListCollapsible {
		sb.WriteString(`</details>`)
	} else {
		sb.WriteString(`</div>`)
	}
}

func fileHeader(p render.FilePanel, labels render.Labels) string {
	name := html.EscapeString(p.Name)
	if p.IsRename && p.OldName != "" && labels.RenamedFrom != "" {
		name = html.EscapeString(p.NewName) + ` <span class="d2h-tag d2h-moved">` +
			html.EscapeString(fmt.Sprintf(labels.RenamedFrom, p.OldName)) + `</span>`
	}

	var tag string
	switch {
	case p.IsNew:
		tag = `<span class="d2h-tag d2h-added">ADDED</span>`
	case p.IsDelete:
		tag = `<span class="d2h-tag d2h-deleted">DELETED</span>`
	}

	return `<span class="d2h-file-name">` + name + `</span>` + tag + stats(p)
}

func stats(p render.FilePanel) string {
	return `<span class="d2h-file-stats"><span class="d2h-lines-added">+` + strconv.Itoa(p.Added) +
		`</span> <span class="d2h-lines-deleted">-` + strconv.Itoa(p.Deleted) + `</span></span>`
}

func lineByLine(hunks []render.Hunk) string {
	var sb strings.Builder
	sb.WriteString(`<table class="d2h-diff-table d2h-line-by-line"><tbody>`)
	for _, h := range hunks {
		fmt.Fprintf(&sb, `<tr><td class="d2h-info" colspan="3">%s</td></tr>`, html.EscapeString(h.Header))
		for _, l := range h.Lines {
			fmt.Fprintf(&sb, `<tr class="%s"><td class="d2h-code-linenumber">%s</td><td class="d2h-code-linenumber">%s</td><td class="d2h-code-line">%s</td></tr>`,
				lineClass(&l), num(l.OldNum), num(l.NewNum), lineHTML(&l))
		}
	}
	sb.WriteString(`</tbody></table>`)
	return sb.String()
}

func sideBySide(hunks []render.Hunk) string {
	var sb strings.Builder
	sb.WriteString(`<table class="d2h-diff-table d2h-side-by-side"><tbody>`)
	for _, h := range hunks {
		fmt.Fprintf(&sb, `<tr><td class="d2h-info" colspan="4">%s</td></tr>`, html.EscapeString(h.Header))
		for _, row := range h.Rows {
			sb.WriteString("<tr>")
			writeSide(&sb, row.Left, true)
			writeSide(&sb, row.Right, false)
			sb.WriteString("</tr>")
		}
	}
	sb.WriteString(`</tbody></table>`)
	return sb.String()
}

func writeSide(sb *strings.Builder, l *render.Line, left bool) {
	if l == nil {
		sb.WriteString(`<td class="d2h-code-side-linenumber d2h-emptyplaceholder"></td><td class="d2h-code-side-line d2h-emptyplaceholder"></td>`)
		return
	}
	n := l.NewNum
	if left {
		n = l.OldNum
	}
	fmt.Fprintf(sb, `<td class="d2h-code-side-linenumber %s">%s</td><td class="d2h-code-side-line %s">%s</td>`,
		lineClass(l), num(n), lineClass(l), lineHTML(l))
}

func lineClass(l *render.Line) string {
	switch l.Kind {
	case render.LineAdd:
		return "d2h-ins"
	case render.LineDelete:
		return "d2h-del"
	default:
		return "d2h-cntx"
	}
}

func lineHTML(l *render.Line) string {
	prefix := " "
	tag := ""
	switch l.Kind {
	case render.LineAdd:
		prefix, tag = "+", "ins"
	case render.LineDelete:
		prefix, tag = "-", "del"
	}

	var sb strings.Builder
	sb.WriteString(`<span class="d2h-code-line-prefix">` + prefix + `</span><span class="d2h-code-line-ctn">`)
	if l.Segments == nil {
		sb.WriteString(html.EscapeString(l.Text))
	} else {
		for _, s := range l.Segments {
			if s.Changed && tag != "" {
				sb.WriteString("<" + tag + ">" + html.EscapeString(s.Text) + "</" + tag + ">")
				continue
			}
			sb.WriteString(html.EscapeString(s.Text))
		}
	}
	sb.WriteString(`</span>`)
	return sb.String()
}

func num(n int) string {
	if n <= 0 {
		return ""
	}
	return strconv.Itoa(n)
}
