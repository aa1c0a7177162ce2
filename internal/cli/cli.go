// Package cli implements the chartgen command-line interface.
//
// The root command renders a chart description to SVG or a raster format:
//
//	chartgen option.json chart.png
//	cat option.json | chartgen -o chart.webp -w 1280px
//	chartgen -i '{"series":[{"type":"pie","data":[1,2]}]}' --buffer -f png
//
// Subcommands:
//   - serve: render charts over HTTP
//   - cache: inspect and clear the rendered chart cache
//   - completion: generate shell completion scripts
//
// # Logging
//
// Informational lines go to stdout, errors to stderr. --verbose (-v) adds
// debug lines on stderr. The logger travels through context.Context.
//
// # Exit codes
//
// [CLI.Run] returns the process exit code: 0 on success (an unsupported
// output format included), 1 on input and rendering errors, 130 when
// interrupted.
package cli

import (
	"context"
	"errors"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/matzehuels/chartgen/internal/config"
	"github.com/matzehuels/chartgen/pkg/buildinfo"
	"github.com/matzehuels/chartgen/pkg/cache"
	apperrors "github.com/matzehuels/chartgen/pkg/errors"
	"github.com/matzehuels/chartgen/pkg/output"
	"github.com/matzehuels/chartgen/pkg/pipeline"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// Exit codes returned by Run.
const (
	ExitOK          = 0
	ExitError       = 1
	ExitInterrupted = 130 // shell convention for SIGINT
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *Logger

	In  io.Reader
	Out io.Writer
	Err io.Writer

	// IsTerminal reports whether r is an interactive terminal.
	// Stdin is only read when it is not.
	IsTerminal func(r io.Reader) bool

	flags globalFlags
}

type globalFlags struct {
	config  string
	cache   bool
	verbose bool
}

// New creates a CLI on the given streams.
func New(in io.Reader, out, errOut io.Writer) *CLI {
	return &CLI{
		Logger:     NewLogger(out, errOut, LogInfo),
		In:         in,
		Out:        out,
		Err:        errOut,
		IsTerminal: isTerminal,
	}
}

func defaultLogger() *Logger {
	return NewLogger(os.Stdout, os.Stderr, LogInfo)
}

// isTerminal reports whether r is a terminal. Readers that are not files
// never are.
func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := c.renderCommand()
	root.Version = buildinfo.Version
	root.SilenceUsage = true
	root.SilenceErrors = true
	root.SetVersionTemplate(buildinfo.Template())

	pf := root.PersistentFlags()
	pf.StringVar(&c.flags.config, "config", "", "config file (default $XDG_CONFIG_HOME/chartgen/config.toml)")
	pf.BoolVar(&c.flags.cache, "cache", false, "cache rendered charts")
	pf.BoolVarP(&c.flags.verbose, "verbose", "v", false, "enable verbose logging")

	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if c.flags.verbose {
			c.Logger.SetLevel(LogDebug)
		}
		cmd.SetContext(withLogger(cmd.Context(), c.Logger))
		return nil
	}

	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// Run executes the command line args and returns the exit code.
// Errors are logged here, once.
func (c *CLI) Run(ctx context.Context, args []string) int {
	root := c.RootCommand()
	root.SetArgs(args)
	root.SetIn(c.In)
	root.SetOut(c.Out)
	root.SetErr(c.Err)

	err := root.ExecuteContext(ctx)
	if err != nil {
		c.report(err)
	}
	return ExitCode(err)
}

// ExitCode maps an error returned by a command to a process exit code.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, context.Canceled):
		return ExitInterrupted
	default:
		return ExitError
	}
}

// report logs err for the user. Invalid options list each failed
// interpretation before the summary line.
func (c *CLI) report(err error) {
	switch {
	case errors.Is(err, context.Canceled):
		c.Logger.Debug("interrupted")
	case apperrors.Is(err, apperrors.ErrCodeInvalidOption):
		for _, cause := range apperrors.Causes(err) {
			c.Logger.Error(cause)
		}
		c.Logger.Error(apperrors.UserMessage(err))
	case apperrors.GetCode(err) != "":
		msg := apperrors.UserMessage(err)
		if cause := errors.Unwrap(err); cause != nil && apperrors.GetCode(cause) == "" {
			msg += ": " + cause.Error()
		}
		c.Logger.Error(msg)
	default:
		c.Logger.Error(err.Error())
	}
}

func (c *CLI) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(c.flags.config)
	if err != nil {
		return nil, err
	}
	if cfg.Path != "" {
		c.Logger.Debug("loaded config", "path", cfg.Path)
	}
	return cfg, nil
}

// newRunner creates a pipeline runner for cfg. needS3 forces an S3 store
// even when the config has no [s3] section.
func (c *CLI) newRunner(ctx context.Context, cfg *config.Config, keyer cache.Keyer, needS3 bool) (*pipeline.Runner, error) {
	var s3 *output.S3Store
	if needS3 || cfg.S3Enabled() {
		var err error
		s3, err = output.NewS3Store(output.S3Config{
			Region:          cfg.S3.Region,
			Endpoint:        cfg.S3.Endpoint,
			AccessKeyID:     cfg.S3.AccessKeyID,
			SecretAccessKey: cfg.S3.SecretAccessKey,
		})
		if err != nil {
			return nil, err
		}
	}

	ttl, err := cfg.CacheTTL()
	if err != nil {
		return nil, err
	}

	runner := pipeline.NewRunner(c.newCache(ctx, cfg, c.flags.cache), keyer, output.NewStore(s3), c.Logger.Diagnostics())
	runner.TTL = ttl
	return runner, nil
}
