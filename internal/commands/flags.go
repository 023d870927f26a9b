package commands

import (
	"os"
	"path/filepath"

	"github.com/colonyops/patchview/internal/core/config"
)

// Flags holds the global options and what the root Before hook derives
// from them.
type Flags struct {
	LogLevel   string
	LogFile    string
	ConfigPath string
	DataDir    string
	Ephemeral  bool

	Config *config.Config

	// StorageErr is set when the database could not be opened and the
	// session lives in memory for this run.
	StorageErr error
}

// xdgDir returns $env/patchview, or ~/<fallback...>/patchview when env is
// unset.
func xdgDir(env string, fallback ...string) string {
	base := os.Getenv(env)
	if base == "" {
		home, _ := os.UserHomeDir()
		base = filepath.Join(append([]string{home}, fallback...)...)
	}
	return filepath.Join(base, "patchview")
}

// DefaultConfigPath is config.yaml under XDG_CONFIG_HOME.
func DefaultConfigPath() string {
	return filepath.Join(xdgDir("XDG_CONFIG_HOME", ".config"), "config.yaml")
}

// DefaultDataDir is the patchview directory under XDG_DATA_HOME. It holds
// the session database and the log file.
func DefaultDataDir() string {
	return xdgDir("XDG_DATA_HOME", ".local", "share")
}
