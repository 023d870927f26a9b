package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/colonyops/patchview/internal/core/ingest"
	"github.com/colonyops/patchview/internal/core/locale"
	"github.com/colonyops/patchview/internal/core/logging"
	"github.com/colonyops/patchview/internal/core/render"
	"github.com/colonyops/patchview/internal/core/render/htmlrender"
	"github.com/colonyops/patchview/internal/core/render/termrender"
	"github.com/colonyops/patchview/internal/core/session"
	"github.com/colonyops/patchview/internal/core/viewed"
	"github.com/colonyops/patchview/internal/patchview"
)

const defaultRenderWidth = 120

type RenderCmd struct {
	flags *Flags
	app   *patchview.App

	// flags
	format string
	layout string
	output string
	width  int
}

// NewRenderCmd creates a new render command
func NewRenderCmd(flags *Flags, app *patchview.App) *RenderCmd {
	return &RenderCmd{flags: flags, app: app}
}

// Register adds the render command to the application
func (cmd *RenderCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "render",
		Usage:     "Render a diff without opening the viewer",
		UsageText: "patchview render [--format terminal|html] [--layout LAYOUT] [--output FILE] [files...]",
		Description: `Renders files given as arguments (glob patterns allowed, - for standard
input) or, with no arguments, the saved session. The saved session is never
modified.

--format html writes a standalone page with the stylesheet inlined.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "format",
				Aliases:     []string{"f"},
				Usage:       "output format (terminal, html)",
				Value:       termrender.EngineName,
				Destination: &cmd.format,
			},
			&cli.StringFlag{
				Name:        "layout",
				Usage:       "layout (side-by-side, line-by-line); defaults to the saved one",
				Destination: &cmd.layout,
			},
			&cli.StringFlag{
				Name:        "output",
				Aliases:     []string{"o"},
				Usage:       "write to file instead of stdout",
				Destination: &cmd.output,
			},
			&cli.IntFlag{
				Name:        "width",
				Usage:       "terminal width for the terminal format (defaults to the terminal size)",
				Destination: &cmd.width,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *RenderCmd) run(ctx context.Context, c *cli.Command) error {
	var (
		engine  render.Engine
		display renderDisplay
	)
	switch cmd.format {
	case htmlrender.EngineName:
		page := htmlrender.NewPage(cmd.app.Locale.Message(locale.KeyAppTitle))
		page.Lang = cmd.app.Locale.Current()
		page.Labels = map[render.Layout]string{
			render.SideBySide: cmd.app.Locale.Message(locale.KeySideBySide),
			render.LineByLine: cmd.app.Locale.Message(locale.KeyLineByLine),
		}
		engine, display = htmlrender.New(), page
	case termrender.EngineName:
		engine, display = termrender.New(), &textDisplay{}
	default:
		return fmt.Errorf("unknown format %q (expected %s or %s)", cmd.format, termrender.EngineName, htmlrender.EngineName)
	}

	ctrl := cmd.app.NewScratchController(engine, display)
	ctrl.SetWidth(cmd.renderWidth())

	layout := cmd.app.Config.InitialLayout()
	if stored, ok := cmd.app.Session.Layout(ctx); ok {
		if l, err := render.ParseLayout(stored); err == nil {
			layout = l
		}
	}
	if cmd.layout != "" {
		l, err := render.ParseLayout(cmd.layout)
		if err != nil {
			return err
		}
		layout = l
	}
	if err := ctrl.SetLayout(ctx, layout, false); err != nil {
		return err
	}

	if err := cmd.load(ctx, c, ctrl); err != nil {
		return err
	}
	if display.Failed() {
		return cli.Exit(display.Message(), 1)
	}

	w := c.Root().Writer
	if cmd.output != "" {
		f, err := os.Create(cmd.output)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		defer func() { _ = f.Close() }()
		w = f
	}

	if _, err := display.WriteTo(w); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}

// load fills the controller from the arguments, stdin or the saved session.
// Failures are left on the display.
func (cmd *RenderCmd) load(ctx context.Context, c *cli.Command, ctrl *session.Controller) error {
	args := c.Args().Slice()
	if len(args) == 0 && stdinPiped() {
		args = []string{ingest.StdinName}
	}

	if len(args) == 0 {
		ctx = logging.WithSource(ctx, logging.SourceRestore)
		content, _ := cmd.app.Session.Content(ctx)
		_ = ctrl.SetContent(ctx, content)
		if ids, ok := cmd.app.Session.Viewed(ctx); ok {
			for _, id := range ids {
				if slices.Contains(ctrl.FileIDs(), viewed.FileID(id)) {
					ctrl.MarkViewed(ctx, viewed.FileID(id))
				}
			}
		}
		return nil
	}

	paths, err := ingest.ExpandArgs(args)
	if err != nil {
		return fmt.Errorf("expand arguments: %w", err)
	}
	_ = ctrl.Upload(ctx, ingest.SourcesFromArgs(paths, os.Stdin))
	return nil
}

func (cmd *RenderCmd) renderWidth() int {
	if cmd.width > 0 {
		return cmd.width
	}
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		return w
	}
	return defaultRenderWidth
}

// renderDisplay is a results region that can be written out once.
type renderDisplay interface {
	session.Display
	io.WriterTo
	Failed() bool
	Message() string
}

// textDisplay keeps the terminal engine's fragment or the message text.
type textDisplay struct {
	fragment string
	kind     session.MessageKind
	message  string
}

func (d *textDisplay) ShowOutput(out render.Output) {
	d.fragment = out.Fragment
	d.message = ""
}

func (d *textDisplay) ShowMessage(kind session.MessageKind, text string) {
	d.fragment = ""
	d.kind = kind
	d.message = termrender.Sanitize(text)
}

func (d *textDisplay) SetViewed(viewed.FileID, bool) {}
func (d *textDisplay) SetLayout(render.Layout)       {}

func (d *textDisplay) Failed() bool {
	return d.kind == session.MessageError && d.message != ""
}

func (d *textDisplay) Message() string { return d.message }

func (d *textDisplay) WriteTo(w io.Writer) (int64, error) {
	text := d.fragment
	if text == "" {
		text = d.message
	}
	if text == "" {
		return 0, nil
	}
	if !strings.HasSuffix(text, "\n") {
		text += "\n"
	}
	n, err := io.WriteString(w, text)
	return int64(n), err
}
