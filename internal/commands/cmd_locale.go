package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/colonyops/patchview/internal/core/locale"
	"github.com/colonyops/patchview/internal/core/styles"
	"github.com/colonyops/patchview/internal/patchview"
)

type LocaleCmd struct {
	flags *Flags
	app   *patchview.App
}

// NewLocaleCmd creates a new locale command
func NewLocaleCmd(flags *Flags, app *patchview.App) *LocaleCmd {
	return &LocaleCmd{flags: flags, app: app}
}

// Register adds the locale command to the application
func (cmd *LocaleCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "locale",
		Usage:     "Show or change the interface language",
		UsageText: "patchview locale [" + strings.Join(locale.Supported(), "|") + "]",
		Description: `Without an argument, prints the current language or, on a terminal,
opens a picker. With an argument, saves that language.`,
		Action: cmd.run,
	})

	return app
}

func (cmd *LocaleCmd) run(ctx context.Context, c *cli.Command) error {
	out := c.Root().Writer
	code := c.Args().First()

	if code == "" {
		if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
			_, _ = fmt.Fprintln(out, cmd.app.Locale.Current())
			return nil
		}

		picked, err := cmd.pick()
		if err != nil {
			if errors.Is(err, huh.ErrUserAborted) {
				return nil
			}
			return fmt.Errorf("select locale: %w", err)
		}
		code = picked
	}

	if !cmd.app.Locale.SetLocale(ctx, code) {
		return fmt.Errorf("unsupported locale %q (supported: %s)", code, strings.Join(locale.Supported(), ", "))
	}
	if cmd.app.Config.Locale != "" && cmd.app.Config.Locale != code {
		_, _ = fmt.Fprintln(os.Stderr, styles.TextWarningStyle.Render(
			fmt.Sprintf("saved, but the config file forces %q", cmd.app.Config.Locale)))
	}

	_, _ = fmt.Fprintln(os.Stderr, styles.TextSuccessStyle.Render("✔")+" "+cmd.app.Locale.Message(locale.KeyLanguageLabel)+": "+code)
	return nil
}

func (cmd *LocaleCmd) pick() (string, error) {
	selected := cmd.app.Locale.Current()

	options := make([]huh.Option[string], 0, len(locale.Supported()))
	for _, l := range locale.Supported() {
		options = append(options, huh.NewOption(locale.DisplayName(l)+" ("+l+")", l))
	}

	err := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title(cmd.app.Locale.Message(locale.KeySelectLanguage)).
				Options(options...).
				Value(&selected),
		),
	).WithTheme(huh.ThemeBase16()).Run()
	return selected, err
}
