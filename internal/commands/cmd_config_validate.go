package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/hay-kot/criterio"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/patchview/internal/core/config"
	"github.com/colonyops/patchview/internal/core/styles"
	"github.com/colonyops/patchview/pkg/iojson"
)

type ConfigValidateCmd struct {
	flags  *Flags
	format string
}

// NewConfigValidateCmd creates a new config validate command.
func NewConfigValidateCmd(flags *Flags) *ConfigValidateCmd {
	return &ConfigValidateCmd{flags: flags}
}

// Register adds the config validate command to the application.
func (cmd *ConfigValidateCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "config",
		Usage: "Configuration management commands",
		Commands: []*cli.Command{
			{
				Name:        "validate",
				Usage:       "Validate configuration file",
				UsageText:   "patchview config validate [options]",
				Description: "Validates the configuration file, checking paths, drop extensions and locale catalogs.",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:        "format",
						Usage:       "output format (text, json)",
						Value:       "text",
						Destination: &cmd.format,
					},
				},
				Action: cmd.run,
			},
		},
	})

	return app
}

// validationError is one problem found in the configuration.
type validationError struct {
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

type validationResult struct {
	Valid    bool                       `json:"valid"`
	Errors   []validationError          `json:"errors,omitempty"`
	Warnings []config.ValidationWarning `json:"warnings,omitempty"`
}

func (cmd *ConfigValidateCmd) run(_ context.Context, c *cli.Command) error {
	result := validate(cmd.flags.Config, cmd.flags.ConfigPath)

	if cmd.format == "json" {
		if err := iojson.Encode(c.Root().Writer, os.Stderr, result); err != nil {
			return err
		}
	} else {
		cmd.outputText(os.Stderr, result)
	}

	if !result.Valid {
		return cli.Exit("", 1)
	}
	return nil
}

func validate(cfg *config.Config, configPath string) validationResult {
	result := validationResult{Valid: true, Warnings: cfg.Warnings()}

	err := cfg.ValidateDeep(configPath)
	if err == nil {
		return result
	}

	result.Valid = false
	var fieldErrs criterio.FieldErrors
	if errors.As(err, &fieldErrs) {
		for _, fe := range fieldErrs {
			result.Errors = append(result.Errors, validationError{Field: fe.Field, Message: fe.Err.Error()})
		}
		return result
	}

	result.Errors = append(result.Errors, validationError{Message: err.Error()})
	return result
}

func (cmd *ConfigValidateCmd) outputText(w io.Writer, result validationResult) {
	_, _ = fmt.Fprintln(w, styles.TextPrimaryBoldStyle.Render("Config")+" "+styles.TextMutedStyle.Render(cmd.flags.ConfigPath))

	for _, warn := range result.Warnings {
		item := ""
		if warn.Item != "" {
			item = " " + styles.TextMutedStyle.Render(warn.Item)
		}
		_, _ = fmt.Fprintf(w, "  %s %s:%s %s\n", styles.TextWarningStyle.Render("●"), warn.Category, item, warn.Message)
	}

	for _, e := range result.Errors {
		field := ""
		if e.Field != "" {
			field = styles.TextForegroundBoldStyle.Render(e.Field) + ": "
		}
		_, _ = fmt.Fprintf(w, "  %s %s%s\n", styles.TextErrorStyle.Render("✘"), field, e.Message)
	}

	_, _ = fmt.Fprintln(w)
	if result.Valid {
		_, _ = fmt.Fprintln(w, styles.TextSuccessStyle.Render("✔ Configuration is valid"))
		return
	}
	_, _ = fmt.Fprintln(w, styles.TextErrorStyle.Render(fmt.Sprintf("%d error(s) found", len(result.Errors))))
}
