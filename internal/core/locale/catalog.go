package locale

import (
	"embed"
	"encoding/json"
	"fmt"
	"os"
	"path"
	"path/filepath"
)

//go:embed locales/*/messages.json
var embedded embed.FS

// Entry is one catalog message. Description is for translators only.
type Entry struct {
	Message     string `json:"message"`
	Description string `json:"description,omitempty"`
}

// Catalog maps message keys to entries for one locale.
type Catalog map[string]Entry

// MissingMessage stands in for a lookup with an empty key.
const MissingMessage = "(missing message)"

// Message returns the message for key, or key itself when the entry is
// missing or empty. The result is never empty.
func (c Catalog) Message(key string) string {
	if e, ok := c[key]; ok && e.Message != "" {
		return e.Message
	}
	if key == "" {
		return MissingMessage
	}
	return key
}

// Loader loads the catalog for one locale.
type Loader func(locale string) (Catalog, error)

// EmbeddedLoader reads catalogs compiled into the binary.
func EmbeddedLoader(locale string) (Catalog, error) {
	data, err := embedded.ReadFile(path.Join("locales", locale, "messages.json"))
	if err != nil {
		return nil, fmt.Errorf("load locale %s: %w", locale, err)
	}
	return parseCatalog(locale, data)
}

// DirLoader reads <dir>/<locale>/messages.json and falls back to the
// embedded catalog when the file is absent or unreadable.
func DirLoader(dir string) Loader {
	if dir == "" {
		return EmbeddedLoader
	}

	return func(locale string) (Catalog, error) {
		data, err := os.ReadFile(filepath.Join(dir, locale, "messages.json"))
		if err != nil {
			return EmbeddedLoader(locale)
		}
		c, err := parseCatalog(locale, data)
		if err != nil {
			return EmbeddedLoader(locale)
		}
		return c, nil
	}
}

// LoadFile reads one catalog file without any fallback.
func LoadFile(locale, path string) (Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load locale %s: %w", locale, err)
	}
	return parseCatalog(locale, data)
}

func parseCatalog(locale string, data []byte) (Catalog, error) {
	var c Catalog
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse locale %s: %w", locale, err)
	}
	if c == nil {
		c = Catalog{}
	}
	return c, nil
}
