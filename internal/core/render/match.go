package render

import (
	"github.com/bluekeyes/go-gitdiff/gitdiff"
	"github.com/sergi/go-diff/diffmatchpatch"
)

// maxComparisons bounds the pairwise distance search inside one block of
// changes; larger blocks are paired positionally.
const maxComparisons = 2500

type matcher struct {
	opts Options
	dmp  *diffmatchpatch.DiffMatchPatch
}

func newMatcher(opts Options) *matcher {
	return &matcher{opts: opts, dmp: diffmatchpatch.New()}
}

// hunk converts a fragment into numbered lines and side-by-side rows.
// Runs of deletions followed by additions are grouped and paired.
func (m *matcher) hunk(frag *gitdiff.TextFragment) Hunk {
	h := Hunk{Header: hunkHeader(frag)}
	oldNum, newNum := int(frag.OldPosition), int(frag.NewPosition)

	var dels, adds []Line
	flush := func() {
		if len(dels) == 0 && len(adds) == 0 {
			return
		}
		for _, g := range m.group(dels, adds) {
			m.emit(&h, g[0], g[1])
		}
		dels, adds = nil, nil
	}

	for _, l := range frag.Lines {
		text := lineText(l.Line)
		switch l.Op {
		case gitdiff.OpDelete:
			if len(adds) > 0 {
				flush()
			}
			dels = append(dels, Line{Kind: LineDelete, Text: text, OldNum: oldNum})
			oldNum++
		case gitdiff.OpAdd:
			adds = append(adds, Line{Kind: LineAdd, Text: text, NewNum: newNum})
			newNum++
		default:
			flush()
			line := Line{Kind: LineContext, Text: text, OldNum: oldNum, NewNum: newNum}
			h.Lines = append(h.Lines, line)
			h.Rows = append(h.Rows, Row{Left: &line, Right: &line})
			oldNum++
			newNum++
		}
	}
	flush()

	return h
}

// emit pairs one group positionally. In line-by-line order all deletions
// of the group come before its additions.
func (m *matcher) emit(h *Hunk, dels, adds []Line) {
	n := max(len(dels), len(adds))
	for i := range n {
		var left, right *Line
		if i < len(dels) {
			left = &dels[i]
		}
		if i < len(adds) {
			right = &adds[i]
		}
		if left != nil && right != nil {
			m.highlight(left, right)
		}
		h.Rows = append(h.Rows, Row{Left: left, Right: right})
	}
	h.Lines = append(h.Lines, dels...)
	h.Lines = append(h.Lines, adds...)
}

// group splits a block of deletions and additions around their most
// similar pair, recursively, so similar lines end up side by side.
func (m *matcher) group(dels, adds []Line) [][2][]Line {
	if m.opts.Matching == MatchingNone ||
		len(dels) == 0 || len(adds) == 0 ||
		len(dels)+len(adds) < 3 ||
		len(dels)*len(adds) > maxComparisons {
		return [][2][]Line{{dels, adds}}
	}

	bi, bj, best := -1, -1, 2.0
	for i := range dels {
		for j := range adds {
			if d := m.distance(dels[i].Text, adds[j].Text); d < best {
				bi, bj, best = i, j, d
			}
		}
	}
	if bi < 0 || best > m.opts.MatchWordsThreshold {
		return [][2][]Line{{dels, adds}}
	}

	var out [][2][]Line
	if bi > 0 || bj > 0 {
		out = append(out, m.group(dels[:bi], adds[:bj])...)
	}
	out = append(out, [2][]Line{dels[bi : bi+1], adds[bj : bj+1]})
	if bi+1 < len(dels) || bj+1 < len(adds) {
		out = append(out, m.group(dels[bi+1:], adds[bj+1:])...)
	}
	return out
}

// distance is the edit distance normalized by the combined length, in 0..1.
// Lines over the highlight limit are never considered similar.
func (m *matcher) distance(a, b string) float64 {
	total := len(a) + len(b)
	if total == 0 {
		return 0
	}
	if limit := m.opts.MaxHighlightLineLength; limit > 0 && (len(a) >= limit || len(b) >= limit) {
		return 1
	}
	diffs := m.dmp.DiffMain(a, b, false)
	return float64(m.dmp.DiffLevenshtein(diffs)) / float64(total)
}

// highlight fills word segments on a matched pair when the lines are close
// enough and short enough.
func (m *matcher) highlight(old, updated *Line) {
	if m.distance(old.Text, updated.Text) > m.opts.MatchWordsThreshold {
		return
	}

	diffs := m.dmp.DiffMain(old.Text, updated.Text, false)
	diffs = m.dmp.DiffCleanupSemantic(diffs)

	for _, d := range diffs {
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			old.Segments = append(old.Segments, Segment{Text: d.Text})
			updated.Segments = append(updated.Segments, Segment{Text: d.Text})
		case diffmatchpatch.DiffDelete:
			old.Segments = append(old.Segments, Segment{Text: d.Text, Changed: true})
		case diffmatchpatch.DiffInsert:
			updated.Segments = append(updated.Segments, Segment{Text: d.Text, Changed: true})
		}
	}
}
