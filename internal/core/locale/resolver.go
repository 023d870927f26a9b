// Package locale picks the UI language and serves localized messages.
//
// Resolution order: a stored preference when it names a supported locale,
// then the primary subtag of the environment language, then English.
package locale

import (
	"context"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/text/language"
	"golang.org/x/text/language/display"

	"github.com/colonyops/patchview/internal/core/logging"
)

// Default is used when nothing else resolves.
const Default = "en"

var supported = []string{"en", "zh", "ja"}

// Supported returns the supported locale codes in display order.
func Supported() []string {
	return slices.Clone(supported)
}

// IsSupported reports whether l is a supported locale code.
func IsSupported(l string) bool {
	return slices.Contains(supported, l)
}

// DisplayName returns the name of l in its own language, or l itself when
// it is not a valid tag.
func DisplayName(l string) string {
	tag, err := language.Parse(l)
	if err != nil {
		return l
	}
	if name := display.Self.Name(tag); name != "" {
		return name
	}
	return l
}

// PreferenceStore persists the chosen locale.
type PreferenceStore interface {
	Locale(ctx context.Context) (string, bool)
	SetLocale(ctx context.Context, locale string) error
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithLoader overrides how catalogs are loaded.
func WithLoader(l Loader) Option {
	return func(r *Resolver) { r.load = l }
}

// WithGetenv overrides environment lookup.
func WithGetenv(fn func(string) string) Option {
	return func(r *Resolver) { r.getenv = fn }
}

// WithForced pins the locale, ignoring the stored preference and the
// environment. Unsupported values are ignored.
func WithForced(l string) Option {
	return func(r *Resolver) {
		if IsSupported(l) {
			r.forced = l
		}
	}
}

// Resolver owns the current locale and its catalog.
type Resolver struct {
	store     PreferenceStore
	load      Loader
	getenv    func(string) string
	forced    string
	log       zerolog.Logger
	current   string
	catalog   Catalog
	listeners []func(string)
}

// NewResolver returns a Resolver holding the default locale with an empty
// catalog. Call Init to resolve and load.
func NewResolver(store PreferenceStore, opts ...Option) *Resolver {
	r := &Resolver{
		store:   store,
		load:    EmbeddedLoader,
		getenv:  os.Getenv,
		log:     logging.Component("locale"),
		current: Default,
		catalog: Catalog{},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Init resolves the locale and loads its catalog. It returns the locale in use.
func (r *Resolver) Init(ctx context.Context) string {
	r.current = r.determine(ctx)
	r.catalog = r.loadWithFallback(r.current)
	r.log.Debug().Ctx(ctx).Str("locale", r.current).Msg("locale resolved")
	return r.current
}

func (r *Resolver) determine(ctx context.Context) string {
	if r.forced != "" {
		return r.forced
	}

	if r.store != nil {
		if saved, ok := r.store.Locale(ctx); ok && IsSupported(saved) {
			return saved
		}
	}

	if env := Detect(r.getenv); IsSupported(env) {
		return env
	}

	return Default
}

// Detect returns the primary language subtag of the first set locale
// variable among LC_ALL, LC_MESSAGES and LANG. The first set variable
// decides: "C", "POSIX" or an unparsable value yield "".
func Detect(getenv func(string) string) string {
	for _, name := range []string{"LC_ALL", "LC_MESSAGES", "LANG"} {
		if v := strings.TrimSpace(getenv(name)); v != "" {
			return primarySubtag(v)
		}
	}
	return ""
}

// primarySubtag turns values like "zh_CN.UTF-8" or "ja_JP@euro" into "zh"/"ja".
func primarySubtag(v string) string {
	if i := strings.IndexAny(v, ".@"); i >= 0 {
		v = v[:i]
	}
	v = strings.ReplaceAll(strings.TrimSpace(v), "_", "-")
	if v == "" || v == "C" || v == "POSIX" {
		return ""
	}

	tag, err := language.Parse(v)
	if err != nil {
		return ""
	}
	base, conf := tag.Base()
	if conf == language.No {
		return ""
	}
	return strings.ToLower(base.String())
}

func (r *Resolver) loadWithFallback(l string) Catalog {
	c, err := r.load(l)
	if err == nil {
		return c
	}

	if l != Default {
		r.log.Warn().Err(err).Str("locale", l).Msg("catalog load failed, falling back to default")
		return r.loadWithFallback(Default)
	}

	r.log.Warn().Err(err).Msg("default catalog load failed")
	return Catalog{}
}

// Current returns the active locale code.
func (r *Resolver) Current() string {
	return r.current
}

// Message returns the localized message for key, or key itself.
func (r *Resolver) Message(key string) string {
	return r.catalog.Message(key)
}

// Messagef formats the localized message with args. A missing key yields
// the key verbatim.
func (r *Resolver) Messagef(key string, args ...any) string {
	msg := r.catalog.Message(key)
	if msg == key || key == "" || len(args) == 0 {
		return msg
	}
	return fmt.Sprintf(msg, args...)
}

// OnChange registers fn to run after every successful locale switch.
func (r *Resolver) OnChange(fn func(locale string)) {
	r.listeners = append(r.listeners, fn)
}

// SetLocale switches to l, persists the choice and notifies listeners.
// Unsupported codes are ignored and report false.
func (r *Resolver) SetLocale(ctx context.Context, l string) bool {
	if !IsSupported(l) {
		return false
	}

	r.current = l
	r.catalog = r.loadWithFallback(l)

	if r.store != nil {
		if err := r.store.SetLocale(ctx, l); err != nil {
			r.log.Warn().Ctx(ctx).Err(err).Msg("unable to save locale")
		}
	}

	for _, fn := range r.listeners {
		fn(l)
	}
	return true
}

// Next returns the locale after the current one, wrapping around.
func (r *Resolver) Next() string {
	i := slices.Index(supported, r.current)
	return supported[(i+1)%len(supported)]
}
