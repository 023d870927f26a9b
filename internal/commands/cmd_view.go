package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"slices"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/colonyops/patchview/internal/core/ingest"
	"github.com/colonyops/patchview/internal/core/render"
	"github.com/colonyops/patchview/internal/core/render/termrender"
	"github.com/colonyops/patchview/internal/patchview"
	"github.com/colonyops/patchview/internal/tui"
	"github.com/colonyops/patchview/pkg/profiler"
	"github.com/colonyops/patchview/pkg/utils"
)

type ViewCmd struct {
	flags *Flags
	app   *patchview.App

	// flags
	layout       string
	watch        bool
	profilerPort int
}

// NewViewCmd creates a new view command
func NewViewCmd(flags *Flags, app *patchview.App) *ViewCmd {
	return &ViewCmd{flags: flags, app: app}
}

// Flags returns the view flags for registration on the root command
func (cmd *ViewCmd) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "layout",
			Usage:       "layout to open with (side-by-side, line-by-line)",
			Destination: &cmd.layout,
		},
		&cli.BoolFlag{
			Name:        "watch",
			Aliases:     []string{"w"},
			Usage:       "reload the given files when they change on disk",
			Destination: &cmd.watch,
		},
		&cli.IntFlag{
			Name:        "profiler-port",
			Usage:       "serve pprof on 127.0.0.1 at this port while the viewer runs",
			Hidden:      true,
			Destination: &cmd.profilerPort,
		},
	}
}

// Register adds the view command to the application
func (cmd *ViewCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "view",
		Usage:     "Open the interactive viewer",
		UsageText: "patchview view [--layout side-by-side|line-by-line] [--watch] [files...]",
		Description: `Opens the viewer. Files given as arguments (glob patterns allowed) are
loaded as one batch; use - to read standard input. When standard input is
piped and no files are given, it is read automatically.

Without arguments the last session is restored.`,
		Flags:  cmd.Flags(),
		Action: cmd.run,
	})

	return app
}

// Run executes the viewer. Exported for use as default command.
func (cmd *ViewCmd) Run(ctx context.Context, c *cli.Command) error {
	return cmd.run(ctx, c)
}

func (cmd *ViewCmd) run(ctx context.Context, c *cli.Command) error {
	args := c.Args().Slice()
	if len(args) == 0 && stdinPiped() {
		args = []string{ingest.StdinName}
	}

	var layout render.Layout
	if cmd.layout != "" {
		l, err := render.ParseLayout(cmd.layout)
		if err != nil {
			return err
		}
		layout = l
	}

	paths, err := ingest.ExpandArgs(args)
	if err != nil {
		return fmt.Errorf("expand arguments: %w", err)
	}
	batch := ingest.SourcesFromArgs(paths, os.Stdin)

	var watcher *ingest.Watcher
	if cmd.watch {
		watcher, err = newBatchWatcher(paths, batch)
		if err != nil {
			return err
		}
		defer func() { _ = watcher.Close() }()
	}

	if cmd.profilerPort > 0 {
		prof := profiler.New(cmd.profilerPort)
		if err := prof.Start(ctx); err != nil {
			return fmt.Errorf("start profiler: %w", err)
		}
		log.Info().Str("addr", prof.Addr()).Msg("profiler started")
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			if err := prof.Shutdown(shutdownCtx); err != nil {
				log.Debug().Err(err).Msg("profiler shutdown")
			}
		}()
	}

	var warnings []string
	if cmd.flags.StorageErr != nil {
		warnings = append(warnings, fmt.Sprintf("session storage unavailable, changes will not be saved: %v", cmd.flags.StorageErr))
	}
	notices := &utils.DeferredWriter{}

	ctrl := cmd.app.NewController(termrender.New(), nil)
	m := tui.New(ctx, tui.Deps{
		Config:     cmd.app.Config,
		Controller: ctrl,
		Locale:     cmd.app.Locale,
	}, tui.Opts{
		Batch:    batch,
		Layout:   layout,
		Watcher:  watcher,
		Warnings: warnings,
		Notices:  notices,
	})

	p := tea.NewProgram(m, tea.WithContext(ctx))
	_, err = p.Run()

	if flushErr := notices.Flush(os.Stderr); flushErr != nil {
		log.Debug().Err(flushErr).Msg("failed to print notices")
	}
	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("run tui: %w", err)
	}
	return nil
}

func newBatchWatcher(paths []string, batch []ingest.Source) (*ingest.Watcher, error) {
	if slices.Contains(paths, ingest.StdinName) {
		return nil, fmt.Errorf("--watch cannot be used with standard input")
	}
	files := ingest.Paths(batch)
	if len(files) == 0 {
		return nil, fmt.Errorf("--watch needs at least one file")
	}

	w, err := ingest.NewWatcher(files, ingest.DefaultWatchDelay)
	if err != nil {
		return nil, fmt.Errorf("watch files: %w", err)
	}
	return w, nil
}

// stdinPiped reports whether standard input is redirected. Replaced in tests.
var stdinPiped = func() bool {
	return !term.IsTerminal(int(os.Stdin.Fd()))
}
