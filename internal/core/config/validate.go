package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hay-kot/criterio"

	"github.com/colonyops/patchview/internal/core/locale"
)

// ValidationWarning represents a non-fatal configuration issue.
type ValidationWarning struct {
	Category string `json:"category"`
	Item     string `json:"item,omitempty"`
	Message  string `json:"message"`
}

// ValidateDeep performs comprehensive validation of the configuration including
// file accessibility and catalog parsing. The configPath argument specifies the
// config file location to validate (empty string skips config file check).
// This calls Validate() first for basic structural validation, then adds I/O checks.
func (c *Config) ValidateDeep(configPath string) error {
	if err := c.Validate(); err != nil {
		return err
	}

	return criterio.ValidateStruct(
		c.validateFileAccess(configPath),
		c.validateExtensions(),
		c.validateLocalesDir(),
	)
}

// Warnings returns non-fatal configuration issues.
func (c *Config) Warnings() []ValidationWarning {
	var warnings []ValidationWarning

	if c.LocalesDir != "" {
		for _, l := range locale.Supported() {
			if _, err := os.Stat(filepath.Join(c.LocalesDir, l, "messages.json")); err != nil {
				warnings = append(warnings, ValidationWarning{
					Category: "Locales",
					Item:     l,
					Message:  "no catalog in locales_dir, the embedded one is used",
				})
			}
		}
	}

	if !c.Render.ShowFileList && c.Render.FileListCollapsible {
		warnings = append(warnings, ValidationWarning{
			Category: "Render",
			Item:     "file_list_collapsible",
			Message:  "has no effect while show_file_list is false",
		})
	}

	if c.TUI.PasteDebounce > c.TUI.Debounce {
		warnings = append(warnings, ValidationWarning{
			Category: "TUI",
			Item:     "paste_debounce",
			Message:  "is longer than the typing debounce",
		})
	}

	return warnings
}

// validateFileAccess checks config file, data directory, and locales directory.
func (c *Config) validateFileAccess(configPath string) error {
	return criterio.ValidateStruct(
		validateConfigFile(configPath),
		criterio.Run("data_dir", c.DataDir, isDirectoryOrNotExist),
		criterio.Run("locales_dir", c.LocalesDir, isDirectory),
	)
}

func validateConfigFile(configPath string) error {
	if configPath == "" {
		return nil
	}

	info, err := os.Stat(configPath)
	if os.IsNotExist(err) {
		return nil // not found is fine, using defaults
	}
	if err != nil {
		return criterio.NewFieldErrors("config_file", fmt.Errorf("cannot access: %w", err))
	}
	if info.IsDir() {
		return criterio.NewFieldErrors("config_file", fmt.Errorf("%s is a directory, not a file", configPath))
	}
	return nil
}

// isDirectoryOrNotExist validates that a path is a directory or doesn't exist.
func isDirectoryOrNotExist(path string) error {
	if path == "" {
		return nil
	}
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil // will be created
	}
	if err != nil {
		return fmt.Errorf("cannot access: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("exists but is not a directory")
	}
	return nil
}

// isDirectory validates that a set path is an existing directory.
func isDirectory(path string) error {
	if path == "" {
		return nil
	}
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("cannot access: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("not a directory")
	}
	return nil
}

// validateExtensions checks drop extensions are dotted and unique.
func (c *Config) validateExtensions() error {
	var errs criterio.FieldErrorsBuilder
	seen := make(map[string]bool, len(c.Ingest.DropExtensions))

	for i, ext := range c.Ingest.DropExtensions {
		field := fmt.Sprintf("ingest.drop_extensions[%d]", i)
		lower := strings.ToLower(ext)
		switch {
		case !strings.HasPrefix(ext, ".") || len(ext) < 2:
			errs = errs.Append(field, fmt.Errorf("extension %q must start with a dot", ext))
		case strings.ContainsAny(ext, `/\`):
			errs = errs.Append(field, fmt.Errorf("extension %q cannot contain a path separator", ext))
		case seen[lower]:
			errs = errs.Append(field, fmt.Errorf("duplicate extension %q", ext))
		}
		seen[lower] = true
	}

	return errs.ToError()
}

// validateLocalesDir parses every override catalog that exists.
func (c *Config) validateLocalesDir() error {
	if c.LocalesDir == "" {
		return nil
	}

	var errs criterio.FieldErrorsBuilder
	for _, l := range locale.Supported() {
		path := filepath.Join(c.LocalesDir, l, "messages.json")
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if _, err := locale.LoadFile(l, path); err != nil {
			errs = errs.Append(fmt.Sprintf("locales_dir[%s]", l), err)
		}
	}
	return errs.ToError()
}
