package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"goa.design/clue/log"

	"github.com/roach88/pyxlate/internal/server"
)

// ServeOptions holds flags for the serve command.
type ServeOptions struct {
	*RootOptions
	Addr    string // listen address; config addr when empty
	History string // history database; config history when empty
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve conversions over HTTP",
		Long: `Start an HTTP server exposing POST /convert, GET /targets and, when a
history database is configured, GET /history.

The server stops gracefully on SIGINT or SIGTERM.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Addr, "addr", "", "listen address (default from config, :5000)")
	cmd.Flags().StringVar(&opts.History, "history", "", "record conversions in this sqlite database")

	return cmd
}

func runServe(opts *ServeOptions, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	addr := opts.Addr
	if addr == "" {
		addr = opts.Config.Addr
	}
	target, err := parseTarget(formatter, opts.Config.Target)
	if err != nil {
		return err
	}

	historyPath := opts.History
	if historyPath == "" {
		historyPath = opts.Config.History
	}
	st, err := openHistory(formatter, historyPath)
	if err != nil {
		return err
	}

	srvOpts := []server.Option{
		server.WithPipeline(opts.newPipeline()),
		server.WithDefaultTarget(target),
		server.WithDebug(opts.Verbose),
	}
	if st != nil {
		defer st.Close()
		srvOpts = append(srvOpts, server.WithHistory(st))
	}

	// A server always logs its access lines, verbose or not.
	format := log.FormatText
	if opts.Format == "json" {
		format = log.FormatJSON
	}
	logOpts := []log.LogOption{log.WithOutput(cmd.ErrOrStderr()), log.WithFormat(format)}
	if opts.Verbose {
		logOpts = append(logOpts, log.WithDebug())
	}
	ctx := log.Context(cmd.Context(), logOpts...)
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	formatter.VerboseLog("Serving on %s (default target %s)", addr, target)
	if err := server.New(srvOpts...).ListenAndServe(ctx, addr); err != nil {
		return commandError(formatter, ErrCodeServe, "serving", err)
	}
	return nil
}
