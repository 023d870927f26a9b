package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/patchview/internal/core/render/termrender"
	"github.com/colonyops/patchview/internal/core/styles"
	"github.com/colonyops/patchview/internal/patchview"
)

type ClearCmd struct {
	flags *Flags
	app   *patchview.App
}

// NewClearCmd creates a new clear command
func NewClearCmd(flags *Flags, app *patchview.App) *ClearCmd {
	return &ClearCmd{flags: flags, app: app}
}

// Register adds the clear command to the application
func (cmd *ClearCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:        "clear",
		Usage:       "Forget the saved diff and viewed files",
		UsageText:   "patchview clear",
		Description: "Removes the saved content and viewed marks. The layout and language are kept.",
		Action:      cmd.run,
	})

	return app
}

func (cmd *ClearCmd) run(ctx context.Context, _ *cli.Command) error {
	if cmd.flags.StorageErr != nil {
		return fmt.Errorf("clear session: %w", cmd.flags.StorageErr)
	}

	cmd.app.NewController(termrender.New(), nil).Clear(ctx)
	_, _ = fmt.Fprintln(os.Stderr, styles.TextSuccessStyle.Render("✔")+" session cleared")
	return nil
}
