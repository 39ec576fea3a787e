package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/vk/ftmpl/internal/app"
	"github.com/vk/ftmpl/internal/config"
	"github.com/vk/ftmpl/internal/diagnostics"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

func usageError(err error) error {
	return &ExitError{Code: 2, Message: err.Error()}
}

// usageArgs turns argument validation failures into usage errors.
func usageArgs(validate cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := validate(cmd, args); err != nil {
			return usageError(err)
		}
		return nil
	}
}

// globalFlags are the persistent flags shared by every command.
type globalFlags struct {
	configPath string
	paths      []string
	suffix     string
	logLevel   string
	logFormat  string
	observeLog string
	color      string
}

type command struct {
	outW, errW io.Writer
	flags      globalFlags
}

// NewRootCommand builds the ftmpl command tree writing to outW and errW.
func NewRootCommand(outW, errW io.Writer) *cobra.Command {
	c := &command{outW: outW, errW: errW}

	root := &cobra.Command{
		Use:   "ftmpl",
		Short: "Compile and render ftmpl template modules",
		Long: `ftmpl compiles line-oriented .ftmpl template documents into named,
callable template units and renders them with arguments.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(outW)
	root.SetErr(errW)
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError(err)
	})

	pf := root.PersistentFlags()
	pf.StringVar(&c.flags.configPath, "config", "", "Path to a YAML config file (default: ./"+config.DefaultFile+" if present).")
	pf.StringSliceVarP(&c.flags.paths, "path", "p", nil, "Template search directory; may be repeated.")
	pf.StringVar(&c.flags.suffix, "suffix", "", "Template file suffix.")
	pf.StringVar(&c.flags.logLevel, "log-level", "", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	pf.StringVar(&c.flags.logFormat, "log-format", "", "Log output format. Options: 'text' or 'json'.")
	pf.StringVar(&c.flags.observeLog, "observe-log", "", "Append every template render to this file as JSON.")
	pf.StringVar(&c.flags.color, "color", "", "Colorize output. Options: 'auto', 'on', 'off'.")

	root.AddCommand(
		c.convertCommand(),
		c.renderCommand(),
		c.checkCommand(),
		c.listCommand(),
		c.serveCommand(),
	)
	return root
}

// Execute runs the command line args. Every failure is returned as an
// *ExitError.
func Execute(ctx context.Context, args []string, outW, errW io.Writer) error {
	root := NewRootCommand(outW, errW)
	root.SetArgs(args)
	err := root.ExecuteContext(ctx)
	if err == nil {
		return nil
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr
	}
	return &ExitError{Code: 1, Message: err.Error()}
}

// config loads the config file and applies the flags that were set.
func (c *command) config(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.LoadOptional(c.flags.configPath)
	if err != nil {
		return nil, usageError(err)
	}

	flags := cmd.Flags()
	if flags.Changed("path") {
		cfg.Paths = c.flags.paths
	}
	if flags.Changed("suffix") {
		cfg.Suffix = c.flags.suffix
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = c.flags.logLevel
	}
	if flags.Changed("log-format") {
		cfg.LogFormat = c.flags.logFormat
	}
	if flags.Changed("observe-log") {
		cfg.ObserveLog = c.flags.observeLog
	}
	if flags.Changed("color") {
		cfg.Color = c.flags.color
	}

	valid, err := config.NewConfig(cfg)
	if err != nil {
		return nil, usageError(err)
	}
	return valid, nil
}

// newApp builds the App for a command. Logs go to the error stream so
// that command output stays clean.
func (c *command) newApp(cmd *cobra.Command) (*app.App, error) {
	cfg, err := c.config(cmd)
	if err != nil {
		return nil, err
	}
	switch cfg.Color {
	case "on":
		color.NoColor = false
	case "off":
		color.NoColor = true
	}
	a, err := app.NewApp(c.errW, cfg)
	if err != nil {
		return nil, err
	}
	a.Logger().Debug("CLI configuration resolved.", "config", cfg)
	return a, nil
}

// printError prints err with source snippets when it has diagnostics.
func (c *command) printError(err error) {
	p := &diagnostics.Printer{Color: !color.NoColor}
	if perr := p.Print(c.errW, err); perr != nil {
		fmt.Fprintln(c.errW, err)
	}
}

// failed prints err and returns the exit error for it.
func (c *command) failed(err error) error {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr
	}
	c.printError(err)
	return &ExitError{Code: 1}
}
