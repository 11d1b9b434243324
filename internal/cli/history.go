package cli

import (
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/pyxlate/internal/history"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	DB    string // history database; config history when empty
	Limit int
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history [id]",
		Short: "List recorded conversions",
		Long: `List conversions recorded with --history, newest first, or show
one conversion in full.

Examples:
  pyxlate history --db pyxlate.db
  pyxlate history --db pyxlate.db --limit 5 --format json
  pyxlate history --db pyxlate.db 0190c6d2-...`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			id := ""
			if len(args) == 1 {
				id = args[0]
			}
			return runHistory(opts, id, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.DB, "db", "", "history database path")
	cmd.Flags().IntVar(&opts.Limit, "limit", 20, "maximum number of records (0 for all)")

	return cmd
}

func runHistory(opts *HistoryOptions, id string, cmd *cobra.Command) error {
	ctx := cmd.Context()
	formatter := opts.formatter(cmd)

	path := opts.DB
	if path == "" {
		path = opts.Config.History
	}
	if path == "" {
		return commandError(formatter, ErrCodeHistory, "no history database (use --db or set history in the config)", nil)
	}
	st, err := openHistory(formatter, path)
	if err != nil {
		return err
	}
	defer st.Close()

	if id != "" {
		rec, err := st.Get(ctx, id)
		if errors.Is(err, history.ErrNotFound) {
			return commandError(formatter, ErrCodeNotFound, fmt.Sprintf("conversion %s not found", id), nil)
		}
		if err != nil {
			return commandError(formatter, ErrCodeHistory, "reading history", err)
		}
		return outputRecord(formatter, rec)
	}

	records, err := st.List(ctx, opts.Limit)
	if err != nil {
		return commandError(formatter, ErrCodeHistory, "reading history", err)
	}
	if formatter.Format == "json" {
		return formatter.Success(records)
	}
	if len(records) == 0 {
		fmt.Fprintln(formatter.Writer, "No conversions recorded.")
		return nil
	}

	tw := tabwriter.NewWriter(formatter.Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SEQ\tID\tTARGET\tRESULT\tCREATED")
	for _, rec := range records {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n",
			rec.Seq, rec.ID, rec.Target, recordOutcome(rec), rec.CreatedAt.Format(time.RFC3339))
	}
	return tw.Flush()
}

func outputRecord(f *OutputFormatter, rec history.Record) error {
	if f.Format == "json" {
		return f.Success(rec)
	}
	w := f.Writer
	fmt.Fprintf(w, "id:      %s\n", rec.ID)
	fmt.Fprintf(w, "target:  %s\n", rec.Target)
	fmt.Fprintf(w, "result:  %s\n", recordOutcome(rec))
	fmt.Fprintf(w, "created: %s\n", rec.CreatedAt.Format(time.RFC3339))
	fmt.Fprintf(w, "version: %s (ir %s)\n", rec.TranslatorVersion, rec.IRVersion)
	for _, warn := range rec.Warnings {
		fmt.Fprintf(w, "warning: %s\n", warn)
	}
	fmt.Fprintf(w, "\n--- source\n%s", rec.Source)
	if rec.OK {
		fmt.Fprintf(w, "\n--- %s\n%s", rec.Target, rec.Code)
	} else {
		fmt.Fprintf(w, "\n--- error\n%s\n", rec.Result().Error)
	}
	return nil
}

func recordOutcome(rec history.Record) string {
	if rec.OK {
		return "ok"
	}
	return fmt.Sprintf("%s %s", rec.ErrorKind, rec.ErrorCode)
}
