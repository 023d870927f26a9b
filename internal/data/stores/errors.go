package stores

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/colonyops/patchview/internal/data/db"
)

// IsBusyError returns true if the error is a SQLITE_BUSY error.
func IsBusyError(err error) bool {
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code() == sqlite3.SQLITE_BUSY
	}
	return false
}

// IsCorruptionError returns true if the error indicates database corruption.
func IsCorruptionError(err error) bool {
	if err == nil {
		return false
	}

	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		code := sqliteErr.Code()
		return code == sqlite3.SQLITE_CORRUPT ||
			code == sqlite3.SQLITE_NOTADB ||
			code == sqlite3.SQLITE_CANTOPEN
	}

	errStr := err.Error()
	return strings.Contains(errStr, "database disk image is malformed") ||
		strings.Contains(errStr, "file is not a database")
}

// RecoverFromCorruption moves the damaged database aside so the next Open
// starts from an empty store. The saved session is lost; the backup is kept
// next to it with a timestamp suffix.
func RecoverFromCorruption(dataDir string) (string, error) {
	dbPath := filepath.Join(dataDir, db.FileName)
	backupPath := filepath.Join(dataDir, fmt.Sprintf("%s.corrupt.%s", db.FileName, time.Now().Format("20060102-150405")))

	if err := os.Rename(dbPath, backupPath); err != nil && !os.IsNotExist(err) {
		return "", fmt.Errorf("failed to backup corrupted database: %w", err)
	}

	// Orphaned WAL/SHM files would be replayed against the fresh database.
	for _, suffix := range []string{"-wal", "-shm"} {
		side := dbPath + suffix
		if _, err := os.Stat(side); err != nil {
			continue
		}
		if err := os.Rename(side, backupPath+suffix); err != nil {
			if delErr := os.Remove(side); delErr != nil {
				return "", fmt.Errorf("failed to backup or remove %s file: %w", suffix, err)
			}
		}
	}

	return backupPath, nil
}

// OpenWithRecovery opens the database and, if it is corrupt, backs it up and
// retries once with a fresh file.
func OpenWithRecovery(dataDir string, opts db.OpenOptions) (*db.DB, string, error) {
	database, err := db.Open(dataDir, opts)
	if err == nil {
		return database, "", nil
	}
	if !IsCorruptionError(err) {
		return nil, "", err
	}

	backup, recErr := RecoverFromCorruption(dataDir)
	if recErr != nil {
		return nil, "", errors.Join(err, recErr)
	}

	database, err = db.Open(dataDir, opts)
	if err != nil {
		return nil, backup, err
	}
	return database, backup, nil
}
