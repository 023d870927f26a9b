// Package patchview assembles the services every command and the TUI share.
package patchview

import (
	"context"
	"errors"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/colonyops/patchview/internal/core/config"
	"github.com/colonyops/patchview/internal/core/kv"
	"github.com/colonyops/patchview/internal/core/locale"
	"github.com/colonyops/patchview/internal/core/logging"
	"github.com/colonyops/patchview/internal/core/render"
	"github.com/colonyops/patchview/internal/core/session"
	"github.com/colonyops/patchview/internal/core/sessionstore"
	"github.com/colonyops/patchview/internal/data/db"
	"github.com/colonyops/patchview/internal/data/stores"
)

// App is the central entry point for all patchview operations.
// Commands and TUI consume App instead of cherry-picking raw dependencies.
type App struct {
	Config  *config.Config
	DB      *db.DB // nil when running ephemeral
	KV      kv.KV
	Session *sessionstore.Store
	Locale  *locale.Resolver

	log zerolog.Logger
}

// NewApp constructs an App from explicit dependencies and resolves the
// locale. database may be nil.
func NewApp(ctx context.Context, cfg *config.Config, database *db.DB, backend kv.KV) *App {
	store := sessionstore.New(backend)

	opts := []locale.Option{locale.WithLoader(locale.DirLoader(cfg.LocalesDir))}
	if cfg.Locale != "" {
		opts = append(opts, locale.WithForced(cfg.Locale))
	}
	resolver := locale.NewResolver(store, opts...)
	resolver.Init(ctx)

	return &App{
		Config:  cfg,
		DB:      database,
		KV:      backend,
		Session: store,
		Locale:  resolver,
		log:     logging.Component("app"),
	}
}

// OpenBackend opens the SQLite store in the data directory, recovering from
// a corrupt file once. When the database cannot be used at all, it falls
// back to an in-memory store and reports the failure as a warning.
func OpenBackend(cfg *config.Config, ephemeral bool) (*db.DB, kv.KV, error) {
	if ephemeral {
		return nil, kv.NewMemory(), nil
	}

	opts := db.OpenOptions{
		MaxOpenConns: cfg.Database.MaxOpenConns,
		MaxIdleConns: cfg.Database.MaxIdleConns,
		BusyTimeout:  cfg.Database.BusyTimeout,
	}

	log := logging.Component("app")
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		log.Warn().Err(err).Msg("data directory unavailable, session will not be saved")
		return nil, kv.NewMemory(), errors.Join(sessionstore.ErrStorageUnavailable, err)
	}

	database, backup, err := stores.OpenWithRecovery(cfg.DataDir, opts)
	if backup != "" {
		log.Warn().Str("backup", backup).Msg("database was corrupt, moved aside and recreated")
	}
	if err != nil {
		log.Warn().Err(err).Msg("database unavailable, session will not be saved")
		return nil, kv.NewMemory(), errors.Join(sessionstore.ErrStorageUnavailable, err)
	}

	return database, stores.NewKVStore(database), nil
}

// NewController builds a session controller rendering with engine.
func (a *App) NewController(engine render.Engine, display session.Display) *session.Controller {
	adapter, err := render.NewAdapter(engine)
	if err != nil {
		a.log.Error().Err(err).Msg("no renderer configured")
	}

	return a.controller(adapter, a.Session, display)
}

// NewScratchController is NewController over a throwaway store, for renders
// that must not replace the saved session.
func (a *App) NewScratchController(engine render.Engine, display session.Display) *session.Controller {
	adapter, err := render.NewAdapter(engine)
	if err != nil {
		a.log.Error().Err(err).Msg("no renderer configured")
	}

	return a.controller(adapter, sessionstore.New(kv.NewMemory()), display)
}

func (a *App) controller(adapter *render.Adapter, store *sessionstore.Store, display session.Display) *session.Controller {
	return session.NewController(adapter, store, a.Locale,
		session.WithRenderOptions(a.Config.RenderOptions()),
		session.WithLayout(a.Config.InitialLayout()),
		session.WithExtensions(a.Config.Ingest.DropExtensions),
		session.WithDisplay(display),
	)
}

// Status summarizes the stored session without rendering it.
type Status struct {
	Layout       string     `json:"layout"`
	Locale       string     `json:"locale"`
	ContentBytes int        `json:"content_bytes"`
	ContentLines int        `json:"content_lines"`
	HasContent   bool       `json:"has_content"`
	Viewed       []string   `json:"viewed"`
	Persistent   bool       `json:"persistent"`
	UpdatedAt    *time.Time `json:"updated_at,omitempty"`
	Slots        []string   `json:"slots,omitempty"`
}

// Status reads the stored session.
func (a *App) Status(ctx context.Context) Status {
	st := Status{
		Layout:     string(a.Config.InitialLayout()),
		Locale:     a.Locale.Current(),
		Persistent: a.DB != nil,
	}

	if l, ok := a.Session.Layout(ctx); ok {
		st.Layout = l
	}
	if content, ok := a.Session.Content(ctx); ok {
		st.HasContent = true
		st.ContentBytes = len(content)
		st.ContentLines = countLines(content)
	}
	if ids, ok := a.Session.Viewed(ctx); ok {
		st.Viewed = ids
	}
	if st.Viewed == nil {
		st.Viewed = []string{}
	}

	slots, err := a.Session.Slots(ctx)
	if err != nil {
		a.log.Debug().Ctx(ctx).Err(err).Msg("unable to list session slots")
	}
	for _, e := range slots {
		st.Slots = append(st.Slots, e.Key)
		if e.Key == sessionstore.SlotContent {
			t := e.UpdatedAt
			st.UpdatedAt = &t
		}
	}

	return st
}

func countLines(s string) int {
	if s == "" {
		return 0
	}
	n := strings.Count(s, "\n")
	if !strings.HasSuffix(s, "\n") {
		n++
	}
	return n
}

// Close releases the database.
func (a *App) Close() error {
	if a.DB == nil {
		return nil
	}
	return a.DB.Close()
}
