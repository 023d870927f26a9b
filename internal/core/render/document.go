package render

import (
	"fmt"
	"strings"

	"github.com/bluekeyes/go-gitdiff/gitdiff"
)

// LineKind is the role of a line in a hunk.
type LineKind int

const (
	LineContext LineKind = iota
	LineAdd
	LineDelete
)

// Segment is a run of text within a line. Changed marks words that differ
// from the matched line on the other side.
type Segment struct {
	Text    string
	Changed bool
}

// Line is one diff line with its numbers in the old and new file.
type Line struct {
	Kind     LineKind
	Text     string
	OldNum   int
	NewNum   int
	Segments []Segment // nil when no word highlight applies
}

// Row is one side-by-side row. Either side may be nil.
type Row struct {
	Left  *Line
	Right *Line
}

// Hunk is one @@ section.
type Hunk struct {
	Header string
	Lines  []Line // line-by-line order
	Rows   []Row  // side-by-side order
}

// File is one parsed file with its panel metadata.
type File struct {
	Panel FilePanel
	Hunks []Hunk
}

// Document is a parsed diff ready for an engine.
type Document struct {
	Files   []File
	Added   int
	Deleted int
}

// Parse reads a unified diff and pairs changed lines according to opts.
// Text that contains no file sections parses to an empty Document.
func Parse(diff string, opts Options) (*Document, error) {
	files, _, err := gitdiff.Parse(strings.NewReader(diff))
	if err != nil {
		return nil, fmt.Errorf("parse diff: %w", err)
	}

	m := newMatcher(opts)
	doc := &Document{Files: make([]File, 0, len(files))}
	for i, f := range files {
		file := File{Panel: panelFor(f, i)}
		for _, frag := range f.TextFragments {
			h := m.hunk(frag)
			for _, l := range h.Lines {
				switch l.Kind {
				case LineAdd:
					file.Panel.Added++
				case LineDelete:
					file.Panel.Deleted++
				}
			}
			file.Hunks = append(file.Hunks, h)
		}
		doc.Added += file.Panel.Added
		doc.Deleted += file.Panel.Deleted
		doc.Files = append(doc.Files, file)
	}
	return doc, nil
}

func panelFor(f *gitdiff.File, index int) FilePanel {
	oldName, newName := trimSidePrefix(f.OldName), trimSidePrefix(f.NewName)
	return FilePanel{
		Name:     DisplayName(oldName, newName, f.IsNew, f.IsDelete),
		Index:    index,
		OldName:  oldName,
		NewName:  newName,
		Binary:   f.IsBinary,
		IsNew:    f.IsNew,
		IsDelete: f.IsDelete,
		IsRename: f.IsRename || f.IsCopy,
	}
}

// DisplayName picks the name shown for a file: the new name, the old name
// for deletions, and "old → new" when the path changed.
func DisplayName(oldName, newName string, isNew, isDelete bool) string {
	switch {
	case isDelete || newName == "":
		return oldName
	case isNew || oldName == "" || oldName == newName:
		return newName
	default:
		return oldName + " → " + newName
	}
}

// trimSidePrefix drops the a/ or b/ prefix that plain unified diffs keep
// on their --- and +++ names.
func trimSidePrefix(name string) string {
	for _, p := range []string{"a/", "b/"} {
		if rest, ok := strings.CutPrefix(name, p); ok && rest != "" {
			return rest
		}
	}
	return name
}

func hunkHeader(frag *gitdiff.TextFragment) string {
	return strings.TrimRight(frag.Header(), "\n")
}

func lineText(s string) string {
	s = strings.TrimSuffix(s, "\n")
	return strings.TrimSuffix(s, "\r")
}
