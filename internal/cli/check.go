package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/pyxlate/internal/harness"
)

// CheckOptions holds flags for the check command.
type CheckOptions struct {
	*RootOptions
	Exec         bool   // compile and run generated code
	Golden       string // compare code with golden files in this directory
	UpdateGolden string // write golden files to this directory
}

// CheckResult is the payload of the check command.
type CheckResult struct {
	Reports []*harness.Report `json:"reports"`
	Passed  int               `json:"passed"`
	Failed  int               `json:"failed"`
	Skipped int               `json:"skipped"`
	Total   int               `json:"total"`
}

// NewCheckCommand creates the check command.
func NewCheckCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CheckOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "check <corpus.yaml>...",
		Short: "Run conversion corpora",
		Long: `Convert every case of one or more corpus files and check the
expected errors, warnings, code fragments and golden files.

With --exec each generated program is compiled and run with the host
toolchain (see the toolchain section of the config file) and its output is
compared with the case's expected stdout. Targets without an installed
toolchain are skipped.

Exit codes:
  0 - All checks passed
  1 - One or more checks failed
  2 - Command error (unreadable or invalid corpus, etc.)

Examples:
  pyxlate check testdata/corpus/fidelity.yaml
  pyxlate check testdata/corpus/*.yaml --exec
  pyxlate check fidelity.yaml --update-golden testdata/golden`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(opts, args, cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Exec, "exec", false, "compile and run generated code with host toolchains")
	cmd.Flags().StringVar(&opts.Golden, "golden", "", "compare generated code with golden files in this directory")
	cmd.Flags().StringVar(&opts.UpdateGolden, "update-golden", "", "write golden files to this directory")
	cmd.MarkFlagsMutuallyExclusive("golden", "update-golden")

	return cmd
}

func runCheck(opts *CheckOptions, paths []string, cmd *cobra.Command) error {
	ctx := cmd.Context()
	formatter := opts.formatter(cmd)

	corpora := make([]*harness.Corpus, 0, len(paths))
	for _, path := range paths {
		corpus, err := harness.LoadCorpus(path)
		if err != nil {
			return commandError(formatter, ErrCodeCorpus, fmt.Sprintf("loading %s", path), err)
		}
		corpora = append(corpora, corpus)
	}

	runOpts := harness.Options{
		Pipeline:  opts.newPipeline(),
		Exec:      opts.Exec,
		Runner:    harness.NewRunner(opts.Config.Toolchain),
		GoldenDir: opts.Golden,
	}
	if opts.UpdateGolden != "" {
		runOpts.GoldenDir, runOpts.UpdateGolden = opts.UpdateGolden, true
	}

	result := CheckResult{Reports: make([]*harness.Report, 0, len(corpora))}
	for _, corpus := range corpora {
		formatter.VerboseLog("Running corpus %s (%d cases)", corpus.Name, len(corpus.Cases))
		report, err := harness.Run(ctx, corpus, runOpts)
		if err != nil {
			return commandError(formatter, ErrCodeCorpus, fmt.Sprintf("running %s", corpus.Name), err)
		}
		passed, failed, skipped := report.Counts()
		result.Passed += passed
		result.Failed += failed
		result.Skipped += skipped
		result.Total += len(report.Results)
		result.Reports = append(result.Reports, report)
	}

	if formatter.Format == "json" {
		if result.Failed > 0 {
			_ = formatter.Error(ErrCodeCheckFailed, checkSummary(result), result)
			return NewExitError(ExitFailure, ErrCodeCheckFailed+": "+checkSummary(result))
		}
		return formatter.Success(result)
	}

	w := formatter.Writer
	for _, report := range result.Reports {
		fmt.Fprintf(w, "%s:\n", report.Corpus)
		for _, res := range report.Results {
			switch {
			case !res.Pass:
				fmt.Fprintf(w, "  ✗ %s/%s\n", res.Case, res.Target)
				for _, e := range res.Errors {
					fmt.Fprintf(w, "      %s\n", e)
				}
			case res.Skipped != "":
				fmt.Fprintf(w, "  - %s/%s (exec skipped: %s)\n", res.Case, res.Target, res.Skipped)
			default:
				fmt.Fprintf(w, "  ✓ %s/%s\n", res.Case, res.Target)
			}
		}
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, checkSummary(result))
	if opts.UpdateGolden != "" {
		fmt.Fprintf(w, "Updated golden files in %s\n", opts.UpdateGolden)
	}

	if result.Failed > 0 {
		return NewExitError(ExitFailure, ErrCodeCheckFailed+": "+checkSummary(result))
	}
	return nil
}

func checkSummary(r CheckResult) string {
	s := fmt.Sprintf("%d passed, %d failed, %d total", r.Passed, r.Failed, r.Total)
	if r.Skipped > 0 {
		s += fmt.Sprintf(" (%d exec skipped)", r.Skipped)
	}
	return s
}
