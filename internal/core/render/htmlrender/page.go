package htmlrender

import (
	_ "embed"
	"html/template"
	"io"
	"maps"
	"slices"

	"github.com/microcosm-cc/bluemonday"

	"github.com/colonyops/patchview/internal/core/render"
	"github.com/colonyops/patchview/internal/core/session"
	"github.com/colonyops/patchview/internal/core/viewed"
)

//go:embed style.css
var stylesheet string

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="{{ .Lang }}">
<head>
<meta charset="utf-8">
<title>{{ .Title }}</title>
<style>{{ .CSS }}</style>
</head>
<body>
<div class="pv-toolbar"><h1>{{ .Title }}</h1><span class="pv-layout" data-layout="{{ .Layout }}">{{ .LayoutLabel }}</span></div>
{{ .Body }}
</body>
</html>
`))

// fragmentPolicy admits exactly the markup this engine emits.
func fragmentPolicy() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowElements("div", "span", "table", "tbody", "tr", "td", "details", "summary", "ol", "li", "label", "ins", "del")
	p.AllowAttrs("class").Globally()
	p.AllowAttrs("id").Matching(bluemonday.Paragraph).OnElements("div")
	p.AllowAttrs("colspan").Matching(bluemonday.Integer).OnElements("td")
	p.AllowAttrs("open").OnElements("details")
	p.AllowAttrs("type", "checked").OnElements("input")
	p.AllowElements("input")
	p.AllowAttrs("href").OnElements("a")
	p.AllowElements("a")
	p.AllowRelativeURLs(true)
	p.AllowDataAttributes()
	return p
}

// Page is a session.Display that collects the results region and writes
// it as a standalone HTML document.
type Page struct {
	Title  string
	Lang   string
	Labels map[render.Layout]string

	policy  *bluemonday.Policy
	out     render.Output
	ok      bool
	kind    session.MessageKind
	message string
	viewed  map[viewed.FileID]bool
	layout  render.Layout
}

var _ session.Display = (*Page)(nil)

// NewPage returns an empty page showing nothing.
func NewPage(title string) *Page {
	return &Page{
		Title:  title,
		Lang:   "en",
		policy: fragmentPolicy(),
		viewed: make(map[viewed.FileID]bool),
		layout: render.DefaultLayout,
	}
}

// ShowOutput implements session.Display.
func (p *Page) ShowOutput(out render.Output) {
	p.out = out
	p.ok = true
	p.message = ""
	clear(p.viewed)
}

// ShowMessage implements session.Display.
func (p *Page) ShowMessage(kind session.MessageKind, text string) {
	p.out = render.Output{}
	p.ok = false
	p.kind = kind
	p.message = text
}

// SetViewed implements session.Display.
func (p *Page) SetViewed(id viewed.FileID, v bool) {
	p.viewed[id] = v
}

// SetLayout implements session.Display.
func (p *Page) SetLayout(l render.Layout) {
	p.layout = l
}

// Failed reports whether the page holds an error message.
func (p *Page) Failed() bool {
	return !p.ok && p.kind == session.MessageError && p.message != ""
}

// Message returns the placeholder or error text, unescaped.
func (p *Page) Message() string { return p.message }

// Fragment returns the results region markup.
func (p *Page) Fragment() string {
	if !p.ok {
		class := "pv-message pv-placeholder"
		if p.kind == session.MessageError {
			class = "pv-message pv-error"
		}
		return `<div class="` + class + `">` + template.HTMLEscapeString(p.message) + `</div>`
	}

	var ids []viewed.FileID
	for _, id := range slices.Sorted(maps.Keys(p.viewed)) {
		if p.viewed[id] {
			ids = append(ids, id)
		}
	}
	return p.policy.Sanitize(MarkViewed(p.out.Fragment, ids))
}

// WriteTo writes the full document.
func (p *Page) WriteTo(w io.Writer) (int64, error) {
	cw := &countingWriter{w: w}
	layoutLabel := string(p.layout)
	if label, ok := p.Labels[p.layout]; ok {
		layoutLabel = label
	}

	err := pageTemplate.Execute(cw, struct {
		Lang, Title, LayoutLabel string
		Layout                   render.Layout
		CSS                      template.CSS
		Body                     template.HTML
	}{
		Lang:        p.Lang,
		Title:       p.Title,
		LayoutLabel: layoutLabel,
		Layout:      p.layout,
		CSS:         template.CSS(stylesheet),
		Body:        template.HTML(p.Fragment()), //nolint:gosec // sanitized by fragmentPolicy
	})
	return cw.n, err
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(b []byte) (int, error) {
	n, err := c.w.Write(b)
	c.n += int64(n)
	return n, err
}
