package stores

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/colonyops/patchview/internal/data/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsCorruptionError_Messages(t *testing.T) {
	assert.False(t, IsCorruptionError(nil))
	assert.False(t, IsCorruptionError(errors.New("boom")))
	assert.True(t, IsCorruptionError(errors.New("file is not a database")))
	assert.True(t, IsCorruptionError(errors.New("database disk image is malformed")))
}

func TestRecoverFromCorruption_MovesFilesAside(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, db.FileName)
	require.NoError(t, os.WriteFile(dbPath, []byte("garbage"), 0o600))
	require.NoError(t, os.WriteFile(dbPath+"-wal", []byte("wal"), 0o600))

	backup, err := RecoverFromCorruption(dir)
	require.NoError(t, err)

	assert.NoFileExists(t, dbPath)
	assert.NoFileExists(t, dbPath+"-wal")
	assert.FileExists(t, backup)
	assert.FileExists(t, backup+"-wal")
}

func TestRecoverFromCorruption_MissingFileIsOK(t *testing.T) {
	_, err := RecoverFromCorruption(t.TempDir())
	assert.NoError(t, err)
}

func TestOpenWithRecovery_ReplacesGarbageFile(t *testing.T) {
	dir := t.TempDir()
	junk := make([]byte, 4096)
	for i := range junk {
		junk[i] = 0xAB
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, db.FileName), junk, 0o600))

	database, backup, err := OpenWithRecovery(dir, db.DefaultOpenOptions())
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })

	assert.NotEmpty(t, backup)
	assert.FileExists(t, backup)

	store := NewKVStore(database)
	entries, err := store.Entries(t.Context(), "")
	require.NoError(t, err)
	assert.Empty(t, entries)
}
