package render

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func joinSegments(segs []Segment) string {
	var sb strings.Builder
	for _, s := range segs {
		sb.WriteString(s.Text)
	}
	return sb.String()
}

func hasChanged(segs []Segment) bool {
	for _, s := range segs {
		if s.Changed {
			return true
		}
	}
	return false
}

func TestParse_FilesAndCounts(t *testing.T) {
	doc, err := Parse(sampleDiff, DefaultOptions())
	require.NoError(t, err)
	require.Len(t, doc.Files, 2)

	first := doc.Files[0].Panel
	assert.Equal(t, "hello.go", first.Name)
	assert.Equal(t, 0, first.Index)
	assert.Equal(t, 1, first.Added)
	assert.Equal(t, 1, first.Deleted)

	second := doc.Files[1].Panel
	assert.Equal(t, "README.md", second.Name)
	assert.Equal(t, 1, second.Index)
	assert.True(t, second.IsNew)
	assert.Equal(t, 2, second.Added)

	assert.Equal(t, 3, doc.Added)
	assert.Equal(t, 1, doc.Deleted)
}

func TestParse_LineNumbers(t *testing.T) {
	doc, err := Parse(sampleDiff, DefaultOptions())
	require.NoError(t, err)

	lines := doc.Files[0].Hunks[0].Lines
	require.Len(t, lines, 5)

	assert.Equal(t, LineContext, lines[0].Kind)
	assert.Equal(t, 1, lines[0].OldNum)
	assert.Equal(t, 1, lines[0].NewNum)

	assert.Equal(t, LineDelete, lines[1].Kind)
	assert.Equal(t, 2, lines[1].OldNum)
	assert.Equal(t, LineAdd, lines[2].Kind)
	assert.Equal(t, 2, lines[2].NewNum)

	assert.Equal(t, "// end", lines[4].Text)
	assert.Equal(t, 4, lines[4].OldNum)
}

func TestParse_Rename(t *testing.T) {
	doc, err := Parse(renameDiff, DefaultOptions())
	require.NoError(t, err)
	require.Len(t, doc.Files, 1)

	p := doc.Files[0].Panel
	assert.True(t, p.IsRename)
	assert.Equal(t, "old.txt → new.txt", p.Name)
}

func TestParse_MultiFileBlobWithHeaders(t *testing.T) {
	blob := "# File: a.diff\n" + renameDiff + "\n\n# File: b.diff\n" + sampleDiff

	doc, err := Parse(blob, DefaultOptions())
	require.NoError(t, err)
	require.Len(t, doc.Files, 3)
	assert.Equal(t, []int{0, 1, 2}, []int{doc.Files[0].Panel.Index, doc.Files[1].Panel.Index, doc.Files[2].Panel.Index})
}

func TestParse_PlainUnifiedDiffNames(t *testing.T) {
	doc, err := Parse("--- a/a.txt\n+++ b/a.txt\n@@ -1 +1 @@\n-old\n+new\n", DefaultOptions())
	require.NoError(t, err)
	require.Len(t, doc.Files, 1)
	assert.Equal(t, "a.txt", doc.Files[0].Panel.Name)
	assert.False(t, doc.Files[0].Panel.IsRename)
}

func TestParse_NoFiles(t *testing.T) {
	doc, err := Parse("just some notes\n", DefaultOptions())
	require.NoError(t, err)
	assert.Empty(t, doc.Files)
}

func TestParse_WordHighlight(t *testing.T) {
	doc, err := Parse(sampleDiff, DefaultOptions())
	require.NoError(t, err)

	rows := doc.Files[0].Hunks[0].Rows
	require.Len(t, rows, 4)

	pair := rows[1]
	require.NotNil(t, pair.Left)
	require.NotNil(t, pair.Right)
	assert.Equal(t, pair.Left.Text, joinSegments(pair.Left.Segments))
	assert.Equal(t, pair.Right.Text, joinSegments(pair.Right.Segments))
	assert.True(t, hasChanged(pair.Left.Segments))
	assert.True(t, hasChanged(pair.Right.Segments))
}

func TestParse_DissimilarLinesNotHighlighted(t *testing.T) {
	doc, err := Parse(renameDiff, DefaultOptions())
	require.NoError(t, err)

	row := doc.Files[0].Hunks[0].Rows[0]
	require.NotNil(t, row.Left)
	require.NotNil(t, row.Right)
	assert.Nil(t, row.Left.Segments, "alpha/beta are too different")
}

func TestParse_MaxHighlightLineLength(t *testing.T) {
	opts := DefaultOptions()
	opts.MaxHighlightLineLength = 10

	doc, err := Parse(sampleDiff, opts)
	require.NoError(t, err)

	row := doc.Files[0].Hunks[0].Rows[1]
	assert.Nil(t, row.Left.Segments)
	assert.Nil(t, row.Right.Segments)
}

func TestMatcher_PairsSimilarLines(t *testing.T) {
	dels := []Line{
		{Kind: LineDelete, Text: "completely unrelated text here"},
		{Kind: LineDelete, Text: "value := compute(a, b)"},
	}
	adds := []Line{
		{Kind: LineAdd, Text: "value := compute(a, c)"},
	}

	groups := newMatcher(DefaultOptions()).group(dels, adds)
	require.Len(t, groups, 2)

	assert.Len(t, groups[0][0], 1)
	assert.Empty(t, groups[0][1])
	assert.Equal(t, "value := compute(a, b)", groups[1][0][0].Text)
	assert.Equal(t, "value := compute(a, c)", groups[1][1][0].Text)
}

func TestMatcher_NoneIsPositional(t *testing.T) {
	opts := DefaultOptions()
	opts.Matching = MatchingNone

	dels := []Line{{Text: "x"}, {Text: "value := compute(a, b)"}}
	adds := []Line{{Text: "value := compute(a, c)"}}

	groups := newMatcher(opts).group(dels, adds)
	require.Len(t, groups, 1)
}

func TestMatcher_LineByLineOrderDeletesFirst(t *testing.T) {
	diff := `--- a/f
+++ b/f
@@ -1,2 +1,2 @@
-one
-two
+uno
+dos
`
	doc, err := Parse(diff, DefaultOptions())
	require.NoError(t, err)

	var kinds []LineKind
	for _, l := range doc.Files[0].Hunks[0].Lines {
		kinds = append(kinds, l.Kind)
	}
	assert.Equal(t, []LineKind{LineDelete, LineDelete, LineAdd, LineAdd}, kinds)
	assert.Len(t, doc.Files[0].Hunks[0].Rows, 2)
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "a", DisplayName("a", "a", false, false))
	assert.Equal(t, "new", DisplayName("", "new", true, false))
	assert.Equal(t, "gone", DisplayName("gone", "", false, true))
	assert.Equal(t, "a → b", DisplayName("a", "b", false, false))
}
