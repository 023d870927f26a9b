// Package config handles configuration loading and validation for patchview.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/colonyops/patchview/internal/core/ingest"
	"github.com/colonyops/patchview/internal/core/locale"
	"github.com/colonyops/patchview/internal/core/render"
	"github.com/colonyops/patchview/internal/core/styles"
)

// Config holds the application configuration.
type Config struct {
	Layout     string         `yaml:"layout"`      // initial layout when nothing is stored
	Locale     string         `yaml:"locale"`      // forced locale, overrides detection
	LocalesDir string         `yaml:"locales_dir"` // optional catalog override directory
	Render     RenderConfig   `yaml:"render"`
	Ingest     IngestConfig   `yaml:"ingest"`
	TUI        TUIConfig      `yaml:"tui"`
	Database   DatabaseConfig `yaml:"database"`
	DataDir    string         `yaml:"-"` // set by caller, not from config file
}

// RenderConfig mirrors the engine options.
type RenderConfig struct {
	ShowFileList             bool    `yaml:"show_file_list"`
	Matching                 string  `yaml:"matching"`
	MatchWordsThreshold      float64 `yaml:"match_words_threshold"`
	MaxHighlightLineLength   int     `yaml:"max_highlight_line_length"`
	EmitNothingOnEmpty       bool    `yaml:"emit_nothing_on_empty"`
	FileListCollapsible      bool    `yaml:"file_list_collapsible"`
	FileListInitiallyVisible bool    `yaml:"file_list_initially_visible"`
	FileContentCollapsible   bool    `yaml:"file_content_collapsible"`
	StickyFileHeaders        bool    `yaml:"sticky_file_headers"`
}

// IngestConfig controls file input.
type IngestConfig struct {
	DropExtensions []string `yaml:"drop_extensions"`
}

// TUIConfig holds interactive UI settings.
type TUIConfig struct {
	Theme         string        `yaml:"theme"`
	Debounce      time.Duration `yaml:"debounce"`       // typing pause before auto-render
	PasteDebounce time.Duration `yaml:"paste_debounce"` // delay before rendering a paste
}

// DatabaseConfig configures the SQLite session store.
type DatabaseConfig struct {
	MaxOpenConns int `yaml:"max_open_conns"`
	MaxIdleConns int `yaml:"max_idle_conns"`
	BusyTimeout  int `yaml:"busy_timeout"` // milliseconds
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	opts := render.DefaultOptions()
	return Config{
		Layout: string(render.DefaultLayout),
		Render: RenderConfig{
			ShowFileList:             opts.ShowFileList,
			Matching:                 opts.Matching,
			MatchWordsThreshold:      opts.MatchWordsThreshold,
			MaxHighlightLineLength:   opts.MaxHighlightLineLength,
			EmitNothingOnEmpty:       opts.EmitNothingOnEmpty,
			FileListCollapsible:      opts.FileListCollapsible,
			FileListInitiallyVisible: opts.FileListInitiallyVisible,
			FileContentCollapsible:   opts.FileContentCollapsible,
			StickyFileHeaders:        opts.StickyFileHeaders,
		},
		Ingest: IngestConfig{
			DropExtensions: slices.Clone(ingest.DefaultExtensions),
		},
		TUI: TUIConfig{
			Theme:         styles.DefaultTheme,
			Debounce:      500 * time.Millisecond,
			PasteDebounce: 100 * time.Millisecond,
		},
		Database: DatabaseConfig{
			MaxOpenConns: 4,
			MaxIdleConns: 2,
			BusyTimeout:  5000,
		},
	}
}

// Load reads configuration from the given path and sets the data directory.
// If configPath is empty or doesn't exist, returns defaults with the provided dataDir.
func Load(configPath, dataDir string) (*Config, error) {
	cfg := DefaultConfig()
	cfg.DataDir = dataDir

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			data, err := os.ReadFile(configPath)
			if err != nil {
				return nil, fmt.Errorf("read config file: %w", err)
			}

			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parse config file: %w", err)
			}

			// Re-set dataDir since Unmarshal may have cleared it
			cfg.DataDir = dataDir
		}
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// applyDefaults sets default values for any unset configuration options.
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()
	if c.Layout == "" {
		c.Layout = defaults.Layout
	}
	if c.Render.Matching == "" {
		c.Render.Matching = defaults.Render.Matching
	}
	if len(c.Ingest.DropExtensions) == 0 {
		c.Ingest.DropExtensions = defaults.Ingest.DropExtensions
	}
	if c.TUI.Theme == "" {
		c.TUI.Theme = defaults.TUI.Theme
	}
	if c.TUI.Debounce == 0 {
		c.TUI.Debounce = defaults.TUI.Debounce
	}
	if c.TUI.PasteDebounce == 0 {
		c.TUI.PasteDebounce = defaults.TUI.PasteDebounce
	}
	if c.Database.MaxOpenConns == 0 {
		c.Database.MaxOpenConns = defaults.Database.MaxOpenConns
	}
	if c.Database.MaxIdleConns == 0 {
		c.Database.MaxIdleConns = defaults.Database.MaxIdleConns
	}
	if c.Database.BusyTimeout == 0 {
		c.Database.BusyTimeout = defaults.Database.BusyTimeout
	}
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("data directory cannot be empty")
	}

	if _, err := render.ParseLayout(c.Layout); err != nil {
		return fmt.Errorf("layout: %w", err)
	}

	if c.Locale != "" && !locale.IsSupported(c.Locale) {
		return fmt.Errorf("locale %q is not supported (want one of %v)", c.Locale, locale.Supported())
	}

	switch c.Render.Matching {
	case render.MatchingLines, render.MatchingWords, render.MatchingNone:
	default:
		return fmt.Errorf("render.matching %q is invalid (want lines, words or none)", c.Render.Matching)
	}

	if c.Render.MatchWordsThreshold < 0 || c.Render.MatchWordsThreshold > 1 {
		return fmt.Errorf("render.match_words_threshold must be between 0 and 1")
	}

	if c.Render.MaxHighlightLineLength < 0 {
		return fmt.Errorf("render.max_highlight_line_length cannot be negative")
	}

	if _, ok := styles.GetPalette(c.TUI.Theme); !ok {
		return fmt.Errorf("tui.theme %q is unknown (want one of %v)", c.TUI.Theme, styles.ThemeNames())
	}

	if c.TUI.Debounce < 0 || c.TUI.PasteDebounce < 0 {
		return fmt.Errorf("tui debounce delays cannot be negative")
	}

	if c.Database.BusyTimeout < 0 {
		return fmt.Errorf("database.busy_timeout cannot be negative")
	}

	return nil
}

// RenderOptions converts the render section into engine options.
func (c *Config) RenderOptions() render.Options {
	opts := render.DefaultOptions()
	opts.Layout = render.Layout(c.Layout)
	opts.ShowFileList = c.Render.ShowFileList
	opts.Matching = c.Render.Matching
	opts.MatchWordsThreshold = c.Render.MatchWordsThreshold
	opts.MaxHighlightLineLength = c.Render.MaxHighlightLineLength
	opts.EmitNothingOnEmpty = c.Render.EmitNothingOnEmpty
	opts.FileListCollapsible = c.Render.FileListCollapsible
	opts.FileListInitiallyVisible = c.Render.FileListInitiallyVisible
	opts.FileContentCollapsible = c.Render.FileContentCollapsible
	opts.StickyFileHeaders = c.Render.StickyFileHeaders
	return opts
}

// InitialLayout returns the configured layout.
func (c *Config) InitialLayout() render.Layout {
	return render.Layout(c.Layout)
}

// LogFile returns the default log file location.
func (c *Config) LogFile() string {
	return filepath.Join(c.DataDir, "patchview.log")
}

// DatabaseFile returns the path to the SQLite session database.
func (c *Config) DatabaseFile() string {
	return filepath.Join(c.DataDir, "patchview.db")
}
