package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/patchview/internal/core/config"
	"github.com/colonyops/patchview/internal/core/kv"
	"github.com/colonyops/patchview/internal/patchview"
)

const twoFileDiff = `--- a/a.txt
+++ b/a.txt
@@ -1 +1 @@
-one
+uno
--- a/b.txt
+++ b/b.txt
@@ -1 +1 @@
-two
+dos
`

type cliHarness struct {
	flags *Flags
	app   *patchview.App
	out   *bytes.Buffer
}

func newCLIHarness(t *testing.T) *cliHarness {
	t.Helper()
	t.Setenv("LANG", "")
	t.Setenv("LC_ALL", "")
	t.Setenv("LC_MESSAGES", "")

	piped := stdinPiped
	stdinPiped = func() bool { return false }
	t.Cleanup(func() { stdinPiped = piped })

	cfg := config.DefaultConfig()
	cfg.DataDir = t.TempDir()

	return &cliHarness{
		flags: &Flags{Config: &cfg, ConfigPath: filepath.Join(cfg.DataDir, "config.yaml")},
		app:   patchview.NewApp(context.Background(), &cfg, nil, kv.NewMemory()),
		out:   &bytes.Buffer{},
	}
}

// run executes args against a root carrying every subcommand. Exit codes
// are returned as errors instead of exiting the test binary.
func (h *cliHarness) run(t *testing.T, args ...string) error {
	t.Helper()
	root := &cli.Command{
		Name:           "patchview",
		Writer:         h.out,
		ExitErrHandler: func(context.Context, *cli.Command, error) {},
	}
	root = NewRenderCmd(h.flags, h.app).Register(root)
	root = NewClearCmd(h.flags, h.app).Register(root)
	root = NewStatusCmd(h.flags, h.app).Register(root)
	root = NewLocaleCmd(h.flags, h.app).Register(root)
	root = NewConfigValidateCmd(h.flags).Register(root)

	return root.Run(context.Background(), append([]string{"patchview"}, args...))
}

func writeDiff(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestRenderCmd_Terminal(t *testing.T) {
	h := newCLIHarness(t)
	path := writeDiff(t, "change.diff", twoFileDiff)

	require.NoError(t, h.run(t, "render", "--width", "100", "--layout", "line-by-line", path))

	text := ansi.Strip(h.out.String())
	assert.Contains(t, text, "a.txt")
	assert.Contains(t, text, "b.txt")
	assert.Contains(t, text, "uno")

	_, ok := h.app.Session.Content(context.Background())
	assert.False(t, ok, "render never replaces the saved session")
}

func TestRenderCmd_HTMLToFile(t *testing.T) {
	h := newCLIHarness(t)
	path := writeDiff(t, "change.patch", twoFileDiff)
	out := filepath.Join(t.TempDir(), "diff.html")

	require.NoError(t, h.run(t, "render", "--format", "html", "--output", out, path))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), "<html")
	assert.Contains(t, string(data), "a.txt")
	assert.Empty(t, h.out.String())
}

func TestRenderCmd_SavedSession(t *testing.T) {
	h := newCLIHarness(t)
	require.NoError(t, h.app.Session.SetContent(context.Background(), twoFileDiff))

	require.NoError(t, h.run(t, "render", "--width", "100"))
	assert.Contains(t, ansi.Strip(h.out.String()), "b.txt")
}

func TestRenderCmd_Errors(t *testing.T) {
	t.Run("unknown format", func(t *testing.T) {
		h := newCLIHarness(t)
		err := h.run(t, "render", "--format", "pdf", writeDiff(t, "x.diff", twoFileDiff))
		assert.ErrorContains(t, err, "unknown format")
	})

	t.Run("missing file", func(t *testing.T) {
		h := newCLIHarness(t)
		err := h.run(t, "render", filepath.Join(t.TempDir(), "missing.diff"))
		assert.ErrorContains(t, err, "expand arguments")
	})

	t.Run("unreadable file", func(t *testing.T) {
		h := newCLIHarness(t)
		err := h.run(t, "render", t.TempDir())
		require.Error(t, err)

		var exit cli.ExitCoder
		require.ErrorAs(t, err, &exit)
		assert.Equal(t, 1, exit.ExitCode())
	})

	t.Run("bad layout", func(t *testing.T) {
		h := newCLIHarness(t)
		err := h.run(t, "render", "--layout", "diagonal", writeDiff(t, "x.diff", twoFileDiff))
		assert.Error(t, err)
	})
}

func TestClearCmd_KeepsLayout(t *testing.T) {
	h := newCLIHarness(t)
	ctx := context.Background()
	require.NoError(t, h.app.Session.SetContent(ctx, twoFileDiff))
	require.NoError(t, h.app.Session.SetViewed(ctx, []string{"a.txt-0"}))
	require.NoError(t, h.app.Session.SetLayout(ctx, "line-by-line"))

	require.NoError(t, h.run(t, "clear"))

	_, ok := h.app.Session.Content(ctx)
	assert.False(t, ok)
	_, ok = h.app.Session.Viewed(ctx)
	assert.False(t, ok)
	layout, ok := h.app.Session.Layout(ctx)
	assert.True(t, ok)
	assert.Equal(t, "line-by-line", layout)
}

func TestStatusCmd_JSON(t *testing.T) {
	h := newCLIHarness(t)
	ctx := context.Background()
	require.NoError(t, h.app.Session.SetContent(ctx, twoFileDiff))
	require.NoError(t, h.app.Session.SetViewed(ctx, []string{"b.txt-1"}))

	require.NoError(t, h.run(t, "status", "--json"))

	var st patchview.Status
	require.NoError(t, json.Unmarshal(h.out.Bytes(), &st))
	assert.True(t, st.HasContent)
	assert.Equal(t, 10, st.ContentLines)
	assert.Equal(t, []string{"b.txt-1"}, st.Viewed)
	assert.Equal(t, "en", st.Locale)
	assert.False(t, st.Persistent)
	assert.NotNil(t, st.UpdatedAt)
	assert.Contains(t, st.Slots, "content")
}

func TestLocaleCmd_Set(t *testing.T) {
	h := newCLIHarness(t)

	require.NoError(t, h.run(t, "locale", "ja"))
	assert.Equal(t, "ja", h.app.Locale.Current())

	stored, ok := h.app.Session.Locale(context.Background())
	require.True(t, ok)
	assert.Equal(t, "ja", stored)

	assert.Error(t, h.run(t, "locale", "fr"))
	assert.Equal(t, "ja", h.app.Locale.Current())
}

func TestValidate_ReportsFieldErrors(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.DataDir = t.TempDir()

	result := validate(&cfg, "")
	assert.True(t, result.Valid)
	assert.Empty(t, result.Errors)

	cfg.Ingest.DropExtensions = []string{".diff", "patch"}
	result = validate(&cfg, "")
	assert.False(t, result.Valid)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "ingest.drop_extensions[1]", result.Errors[0].Field)
}

func TestValidateCmd_JSON(t *testing.T) {
	h := newCLIHarness(t)
	h.flags.Config.Ingest.DropExtensions = []string{"diff"}

	err := h.run(t, "config", "validate", "--format", "json")
	require.Error(t, err)

	var result validationResult
	require.NoError(t, json.Unmarshal(h.out.Bytes(), &result))
	assert.False(t, result.Valid)
	assert.NotEmpty(t, result.Errors)
}
