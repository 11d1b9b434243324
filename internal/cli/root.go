package cli

import (
	"context"
	"fmt"
	"io"
	"slices"

	"github.com/spf13/cobra"
	"goa.design/clue/log"

	"github.com/roach88/pyxlate/internal/config"
	"github.com/roach88/pyxlate/internal/convert"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	ConfigPath string

	// Config is loaded before any subcommand runs. Flags that were set
	// explicitly take precedence over it.
	Config config.Config

	pipeline *convert.Pipeline // nil uses convert.NewPipeline()
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the pyxlate CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{Config: config.Default()}

	cmd := &cobra.Command{
		Use:   "pyxlate",
		Short: "pyxlate - Python subset to C, C++ and Java",
		Long: `Translate programs written in a small Python subset into equivalent
C, C++ or Java source. Programs go through a typed intermediate
representation, so every name gets one static type and unsupported
constructs are rejected instead of mistranslated.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.setup(cmd)
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output and debug logs")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "config file (default "+config.DefaultFile+" if present)")

	// Add subcommands
	cmd.AddCommand(NewConvertCommand(opts))
	cmd.AddCommand(NewIRCommand(opts))
	cmd.AddCommand(NewTargetsCommand(opts))
	cmd.AddCommand(NewCheckCommand(opts))
	cmd.AddCommand(NewHistoryCommand(opts))
	cmd.AddCommand(NewServeCommand(opts))

	return cmd
}

// setup loads the configuration, applies it beneath explicit flags and
// installs the log context on cmd.
func (opts *RootOptions) setup(cmd *cobra.Command) error {
	if !isValidFormat(opts.Format) {
		msg := fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
		opts.Format = "text"
		return commandError(opts.formatter(cmd), ErrCodeGeneric, msg, nil)
	}

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return commandError(opts.formatter(cmd), ErrCodeConfig, "invalid configuration", err)
	}
	opts.Config = cfg
	if !cmd.Flags().Changed("format") {
		opts.Format = cfg.Format
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(opts.logContext(ctx, cmd.ErrOrStderr()))
	return nil
}

// logContext returns ctx carrying a logger. Logs are diagnostics: they go
// to w and only when --verbose is set, so the command's own output stays
// clean.
func (opts *RootOptions) logContext(ctx context.Context, w io.Writer) context.Context {
	if !opts.Verbose {
		return log.Context(ctx, log.WithOutput(io.Discard))
	}
	format := log.FormatText
	switch {
	case opts.Format == "json":
		format = log.FormatJSON
	case log.IsTerminal():
		format = log.FormatTerminal
	}
	return log.Context(ctx, log.WithOutput(w), log.WithFormat(format), log.WithDebug())
}

func (opts *RootOptions) newPipeline() *convert.Pipeline {
	if opts.pipeline != nil {
		return opts.pipeline
	}
	return convert.NewPipeline()
}

// formatter returns an output formatter bound to cmd's writers.
func (opts *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   opts.Verbose,
	}
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}
