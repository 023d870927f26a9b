package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime/debug"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/patchview/internal/commands"
	"github.com/colonyops/patchview/internal/core/config"
	"github.com/colonyops/patchview/internal/core/kv"
	"github.com/colonyops/patchview/internal/core/logging"
	"github.com/colonyops/patchview/internal/core/styles"
	"github.com/colonyops/patchview/internal/data/db"
	"github.com/colonyops/patchview/internal/patchview"
	"github.com/colonyops/patchview/pkg/logutils"
)

var (
	// Build information. Populated at build-time via -ldflags flag.
	// When installed via `go install module@version`, init() populates
	// these from runtime/debug.BuildInfo instead.
	version = "dev"
	commit  = "HEAD"
	date    = "now"
)

func build() string {
	v, c, d := version, commit, date

	// When installed via `go install module@version`, ldflags aren't set
	// so version remains "dev". Fall back to runtime/debug.BuildInfo which
	// Go populates automatically with the module version and VCS metadata.
	if v == "dev" {
		if info, ok := debug.ReadBuildInfo(); ok {
			if mv := info.Main.Version; mv != "" && mv != "(devel)" {
				v = mv
			}
			for _, s := range info.Settings {
				switch s.Key {
				case "vcs.revision":
					c = s.Value
				case "vcs.time":
					d = s.Value
				}
			}
		}
	}

	short := c
	if len(c) > 7 {
		short = c[:7]
	}

	return fmt.Sprintf("%s (%s) %s", v, short, d)
}

func main() {
	ctx := context.Background()

	var (
		logCloser func()
		app       = &patchview.App{}
		database  *db.DB
	)

	flags := &commands.Flags{}

	root := &cli.Command{
		Name:      "patchview",
		Usage:     "View unified diffs in the terminal",
		UsageText: "patchview [global options] [command] [files...]",
		Description: `patchview renders patch and diff files side by side or line by line.

Paste a diff, open a file, or pass files as arguments. The last diff, the
layout, the language and the files marked as viewed are saved between runs.

Run 'patchview' with no arguments to reopen the last session.
Run 'git diff | patchview' to view a diff from another command.`,
		Version: build(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "log-level",
				Usage:       "log level (debug, info, warn, error, fatal, panic)",
				Sources:     cli.EnvVars("PATCHVIEW_LOG_LEVEL"),
				Value:       "info",
				Destination: &flags.LogLevel,
			},
			&cli.StringFlag{
				Name:        "log-file",
				Usage:       "path to log file (defaults to <data-dir>/patchview.log)",
				Sources:     cli.EnvVars("PATCHVIEW_LOG_FILE"),
				Destination: &flags.LogFile,
			},
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "path to config file",
				Sources:     cli.EnvVars("PATCHVIEW_CONFIG"),
				Value:       commands.DefaultConfigPath(),
				Destination: &flags.ConfigPath,
			},
			&cli.StringFlag{
				Name:        "data-dir",
				Usage:       "path to data directory",
				Sources:     cli.EnvVars("PATCHVIEW_DATA_DIR"),
				Value:       commands.DefaultDataDir(),
				Destination: &flags.DataDir,
			},
			&cli.BoolFlag{
				Name:        "ephemeral",
				Usage:       "keep the session in memory only",
				Sources:     cli.EnvVars("PATCHVIEW_EPHEMERAL"),
				Destination: &flags.Ephemeral,
			},
		},
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			cfg, err := config.Load(flags.ConfigPath, flags.DataDir)
			if err != nil {
				return ctx, fmt.Errorf("load config: %w", err)
			}
			flags.Config = cfg

			// Always log to a file; use explicit path or default to <datadir>/patchview.log
			logFile := flags.LogFile
			if logFile == "" {
				logFile = cfg.LogFile()
			}

			logger, closer, err := logutils.New(logutils.Options{
				Level: flags.LogLevel,
				File:  logFile,
				Hooks: []zerolog.Hook{logging.ContextHook{}},
			})
			if err != nil {
				return ctx, fmt.Errorf("setup logger: %w", err)
			}
			log.Logger = logger
			logCloser = closer

			ctx = logging.WithRunID(ctx, logging.NewRunID())

			// Unknown names are rejected by validation; this only covers the default.
			styles.SetThemeByName(cfg.TUI.Theme)

			var backend kv.KV
			database, backend, err = patchview.OpenBackend(cfg, flags.Ephemeral)
			if err != nil {
				flags.StorageErr = err
			}

			// Populate the pre-allocated App struct (commands already hold a pointer to it)
			*app = *patchview.NewApp(ctx, cfg, database, backend)

			log.Debug().Ctx(ctx).
				Str("version", version).
				Bool("persistent", database != nil).
				Str("locale", app.Locale.Current()).
				Msg("patchview starting")

			return ctx, nil
		},
		After: func(ctx context.Context, c *cli.Command) error {
			var errs []error

			if err := app.Close(); err != nil {
				log.Error().Err(err).Msg("failed to close database")
				errs = append(errs, err)
			}

			// Close log file
			if logCloser != nil {
				logCloser()
			}
			return errors.Join(errs...)
		},
	}

	viewCmd := commands.NewViewCmd(flags, app)

	root = viewCmd.Register(root)
	root = commands.NewRenderCmd(flags, app).Register(root)
	root = commands.NewClearCmd(flags, app).Register(root)
	root = commands.NewStatusCmd(flags, app).Register(root)
	root = commands.NewLocaleCmd(flags, app).Register(root)
	root = commands.NewConfigValidateCmd(flags).Register(root)

	// Register view flags on root command
	root.Flags = append(root.Flags, viewCmd.Flags()...)

	// Open the viewer when no subcommand is provided; arguments are files
	root.Action = viewCmd.Run

	exitCode := 0
	runErr := root.Run(ctx, os.Args)
	if runErr != nil {
		fmt.Println()
		fmt.Println(runErr.Error())
		exitCode = 1
	}

	os.Exit(exitCode)
}
