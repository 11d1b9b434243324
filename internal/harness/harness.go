package harness

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"goa.design/clue/log"

	"github.com/roach88/pyxlate/internal/codegen"
	"github.com/roach88/pyxlate/internal/config"
	"github.com/roach88/pyxlate/internal/convert"
)

// Options controls which checks Run performs.
type Options struct {
	// Pipeline converts the cases. Nil uses convert.NewPipeline().
	Pipeline *convert.Pipeline

	// Exec compiles and runs generated code for cases with expect.stdout.
	Exec bool

	// Runner executes programs when Exec is set. Nil uses the default
	// toolchain commands.
	Runner *Runner

	// GoldenDir enables golden comparison against
	// {GoldenDir}/{case}_{target}.golden.
	GoldenDir string

	// UpdateGolden rewrites golden files instead of comparing them.
	UpdateGolden bool
}

// Result is the outcome of one case converted to one target.
type Result struct {
	Case   string         `json:"case"`
	Target codegen.Target `json:"target"`
	Pass   bool           `json:"pass"`

	// Errors lists every failed check.
	Errors []string `json:"errors,omitempty"`

	// Skipped explains a check that could not run.
	Skipped string `json:"skipped,omitempty"`

	// Stdout is the program output when it was executed.
	Stdout string `json:"stdout,omitempty"`

	Conversion convert.Result `json:"conversion"`
}

// AddError records a failed check and marks the result as failed.
func (r *Result) AddError(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
	r.Pass = false
}

// Report is the outcome of a corpus run.
type Report struct {
	Corpus  string   `json:"corpus"`
	Pass    bool     `json:"pass"`
	Results []Result `json:"results"`
}

// Counts returns the number of passed, failed and skipped-execution
// results.
func (r *Report) Counts() (passed, failed, skipped int) {
	for _, res := range r.Results {
		if res.Pass {
			passed++
		} else {
			failed++
		}
		if res.Skipped != "" {
			skipped++
		}
	}
	return passed, failed, skipped
}

// Failures returns one line per failed check, prefixed with case/target.
func (r *Report) Failures() []string {
	out := []string{}
	for _, res := range r.Results {
		for _, e := range res.Errors {
			out = append(out, fmt.Sprintf("%s/%s: %s", res.Case, res.Target, e))
		}
	}
	return out
}

// Run converts every case of corpus to each of its targets and checks the
// expectations. Check failures land in the report; the returned error is
// reserved for problems with the run itself, such as an unwritable golden
// directory.
func Run(ctx context.Context, corpus *Corpus, opts Options) (*Report, error) {
	if corpus == nil {
		return nil, fmt.Errorf("harness: nil corpus")
	}
	pipeline := opts.Pipeline
	if pipeline == nil {
		pipeline = convert.NewPipeline()
	}
	runner := opts.Runner
	if opts.Exec && runner == nil {
		runner = NewRunner(defaultToolchain())
	}

	ctx = log.With(ctx, log.KV{K: "corpus", V: corpus.Name})
	report := &Report{Corpus: corpus.Name, Pass: true, Results: []Result{}}

	for _, tc := range corpus.Cases {
		for _, target := range corpus.TargetsFor(tc) {
			res, err := runCase(ctx, pipeline, runner, opts, tc, target)
			if err != nil {
				return nil, fmt.Errorf("%s/%s: %w", tc.Name, target, err)
			}
			if !res.Pass {
				report.Pass = false
			}
			report.Results = append(report.Results, res)
		}
	}

	passed, failed, skipped := report.Counts()
	log.Info(ctx, log.KV{K: "msg", V: "corpus finished"},
		log.KV{K: "passed", V: passed},
		log.KV{K: "failed", V: failed},
		log.KV{K: "skipped", V: skipped})
	return report, nil
}

func runCase(ctx context.Context, p *convert.Pipeline, runner *Runner, opts Options, tc Case, target codegen.Target) (Result, error) {
	conv := p.Convert(ctx, tc.Source, target)
	res := Result{Case: tc.Name, Target: target, Pass: true, Conversion: conv}

	if !checkOutcome(&res, tc.Expect.Error) {
		return res, nil
	}
	checkWarnings(&res, tc.Expect.Warnings)
	if !conv.OK {
		return res, nil
	}

	for _, line := range containsFor(tc.Expect.Contains, target) {
		if !strings.Contains(conv.Code, line) {
			res.AddError("code does not contain %q", line)
		}
	}

	if opts.GoldenDir != "" {
		name := GoldenName(tc.Name, target)
		if opts.UpdateGolden {
			if err := WriteGolden(opts.GoldenDir, name, conv.Code); err != nil {
				return res, err
			}
		} else if err := CompareGolden(opts.GoldenDir, name, conv.Code); err != nil {
			res.AddError("%v", err)
		}
	}

	if opts.Exec && tc.Expect.Stdout != nil {
		out, err := runner.Run(ctx, target, conv.Code)
		switch {
		case errors.Is(err, ErrToolchainMissing):
			res.Skipped = err.Error()
		case err != nil:
			res.AddError("%v", err)
		default:
			res.Stdout = out
			if normalizeNewlines(out) != *tc.Expect.Stdout {
				res.AddError("stdout = %q, want %q", out, *tc.Expect.Stdout)
			}
		}
	}
	return res, nil
}

// checkOutcome compares success or failure with the expectation and
// reports whether later checks apply.
func checkOutcome(res *Result, want *ExpectError) bool {
	conv := res.Conversion
	switch {
	case want == nil && !conv.OK:
		res.AddError("conversion failed: %v", conv.Err())
		return false
	case want != nil && conv.OK:
		res.AddError("conversion succeeded, want %s", want.Kind)
		return false
	case want != nil:
		if string(conv.Error.Kind) != want.Kind {
			res.AddError("error kind = %s, want %s (%v)", conv.Error.Kind, want.Kind, conv.Err())
		}
		if want.Code != "" && conv.Error.Code != want.Code {
			res.AddError("error code = %s, want %s (%v)", conv.Error.Code, want.Code, conv.Err())
		}
	}
	return true
}

func checkWarnings(res *Result, want []string) {
	if want == nil {
		return
	}
	got := []string{}
	for _, w := range res.Conversion.Warnings {
		got = append(got, w.Code)
	}
	if !slices.Equal(got, want) {
		res.AddError("warnings = %v, want %v", got, want)
	}
}

func containsFor(contains map[string][]string, target codegen.Target) []string {
	var lines []string
	for name, l := range contains {
		if t, err := codegen.ParseTarget(name); err == nil && t == target {
			lines = append(lines, l...)
		}
	}
	return lines
}

func normalizeNewlines(s string) string {
	return strings.ReplaceAll(s, "\r\n", "\n")
}

func defaultToolchain() config.Toolchain {
	return config.Default().Toolchain
}
