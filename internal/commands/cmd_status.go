package commands

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/patchview/internal/core/styles"
	"github.com/colonyops/patchview/internal/patchview"
	"github.com/colonyops/patchview/pkg/iojson"
)

type StatusCmd struct {
	flags *Flags
	app   *patchview.App

	// flags
	jsonOutput bool
}

// NewStatusCmd creates a new status command
func NewStatusCmd(flags *Flags, app *patchview.App) *StatusCmd {
	return &StatusCmd{flags: flags, app: app}
}

// Register adds the status command to the application
func (cmd *StatusCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "status",
		Usage:     "Show the saved session",
		UsageText: "patchview status [--json]",
		Description: `Prints the saved layout, language, content size and viewed files without
rendering anything.`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "output as JSON",
				Destination: &cmd.jsonOutput,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *StatusCmd) run(ctx context.Context, c *cli.Command) error {
	st := cmd.app.Status(ctx)
	out := c.Root().Writer

	if cmd.jsonOutput {
		return iojson.Encode(out, os.Stderr, st)
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(w, "layout\t%s\n", st.Layout)
	_, _ = fmt.Fprintf(w, "locale\t%s\n", st.Locale)
	if st.HasContent {
		_, _ = fmt.Fprintf(w, "content\t%d bytes, %d lines\n", st.ContentBytes, st.ContentLines)
	} else {
		_, _ = fmt.Fprintln(w, "content\tnone")
	}
	if st.UpdatedAt != nil {
		_, _ = fmt.Fprintf(w, "updated\t%s\n", st.UpdatedAt.Local().Format(time.DateTime))
	}
	_, _ = fmt.Fprintf(w, "viewed\t%d\n", len(st.Viewed))
	_ = w.Flush()

	for _, id := range st.Viewed {
		_, _ = fmt.Fprintf(out, "  %s %s\n", styles.ViewedStyle.Render(styles.IconViewed), id)
	}

	if !st.Persistent {
		note := "session is not saved"
		if cmd.flags.StorageErr != nil {
			note += ": " + strings.TrimSpace(cmd.flags.StorageErr.Error())
		}
		_, _ = fmt.Fprintln(os.Stderr, styles.TextWarningStyle.Render(note))
	}
	return nil
}
