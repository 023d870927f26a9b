// Package render is the boundary between the session and the diff
// renderer engines. Engines turn a unified diff into a display fragment and
// report the file panels they produced.
package render

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/colonyops/patchview/internal/core/logging"
)

var (
	// ErrRendererUnavailable means no engine was configured.
	ErrRendererUnavailable = errors.New("renderer unavailable")
	// ErrRenderFailure wraps any engine error or panic.
	ErrRenderFailure = errors.New("render failed")
)

// FilePanel describes one rendered file.
type FilePanel struct {
	Name     string // display name
	Index    int    // position in the render output
	OldName  string
	NewName  string
	Added    int
	Deleted  int
	Binary   bool
	IsNew    bool
	IsDelete bool
	IsRename bool

	// Header and Body are the engine's markup for this panel. Fragment is
	// built from them so a display can recompose panels (viewed marks,
	// collapsing) without re-rendering.
	Header string
	Body   string
}

// Output is one render result.
type Output struct {
	Fragment string
	Summary  string // file list and totals, already part of Fragment
	Files    []FilePanel
}

// Engine renders a unified diff.
type Engine interface {
	Name() string
	Render(ctx context.Context, diff string, opts Options) (Output, error)
}

// Adapter calls the configured engine and normalizes its failures.
type Adapter struct {
	engine Engine
	log    zerolog.Logger
}

// NewAdapter returns an Adapter over engine. A nil engine is reported as
// ErrRendererUnavailable; the returned Adapter is still usable and fails
// every render with the same error.
func NewAdapter(engine Engine) (*Adapter, error) {
	a := &Adapter{engine: engine, log: logging.Component("render")}
	if engine == nil {
		return a, ErrRendererUnavailable
	}
	return a, nil
}

// Available reports whether an engine is configured.
func (a *Adapter) Available() bool {
	return a != nil && a.engine != nil
}

// Render runs the engine. Engine errors and panics come back wrapped in
// ErrRenderFailure.
func (a *Adapter) Render(ctx context.Context, diff string, opts Options) (out Output, err error) {
	if !a.Available() {
		return Output{}, ErrRendererUnavailable
	}

	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			out = Output{}
			err = fmt.Errorf("%w: %v", ErrRenderFailure, r)
		}
		if err != nil {
			a.log.Warn().Ctx(ctx).Err(err).Str("engine", a.engine.Name()).Msg("render failed")
			return
		}
		a.log.Debug().Ctx(ctx).
			Str("engine", a.engine.Name()).
			Str("layout", string(opts.Layout)).
			Int("files", len(out.Files)).
			Dur("took", time.Since(start)).
			Msg("rendered")
	}()

	out, err = a.engine.Render(ctx, diff, opts)
	if err != nil {
		return Output{}, fmt.Errorf("%w: %w", ErrRenderFailure, err)
	}
	return out, nil
}
