package tui

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/patchview/pkg/tuitest"
)

func openedPicker(t *testing.T, files ...string) (*FilePickerModal, string) {
	t.Helper()
	dir := t.TempDir()
	for _, f := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, f), []byte("x"), 0o644))
	}

	p := NewFilePickerModal(dir, []string{".diff", ".patch"}, "Open", "esc close", 30)
	cmd := p.Init()
	require.NotNil(t, cmd)
	p, _ = p.Update(cmd())
	return p, dir
}

func TestFilePicker_SelectsAcceptedFile(t *testing.T) {
	p, dir := openedPicker(t, "change.diff")

	p, _ = p.Update(tuitest.KeyEnter())
	assert.Equal(t, filepath.Join(dir, "change.diff"), p.Selected())
	assert.False(t, p.Cancelled())
}

func TestFilePicker_RejectsOtherFiles(t *testing.T) {
	p, _ := openedPicker(t, "main.go")

	p, _ = p.Update(tuitest.KeyEnter())
	assert.Empty(t, p.Selected())
}

func TestFilePicker_EscCancels(t *testing.T) {
	p, _ := openedPicker(t, "change.diff")

	p, _ = p.Update(tuitest.KeyEsc())
	assert.True(t, p.Cancelled())
	assert.Empty(t, p.Selected())
}

func TestFilePicker_OverlayShowsTitle(t *testing.T) {
	p, dir := openedPicker(t, "change.diff")

	out := tuitest.StripANSI(p.Overlay("", 100, 30))
	assert.Contains(t, out, "Open")
	assert.Contains(t, out, filepath.Base(dir))
	assert.Contains(t, out, "change.diff")
}
