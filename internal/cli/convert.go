package cli

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"goa.design/clue/log"

	"github.com/roach88/pyxlate/internal/convert"
	"github.com/roach88/pyxlate/internal/history"
	"github.com/roach88/pyxlate/internal/ir"
)

// ConvertOptions holds flags for the convert command.
type ConvertOptions struct {
	*RootOptions
	Target  string // target language; config target when empty
	Output  string // output file path
	History string // history database; config history when empty
	Cache   bool   // reuse a recorded conversion of identical input
}

// NewConvertCommand creates the convert command.
func NewConvertCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ConvertOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "convert <file|->",
		Short: "Translate a program to C, C++ or Java",
		Long: `Translate a Python-subset program into the target language.

The program is parsed, lowered to IR, type checked and generated in one
pass. The first error stops the conversion.

Exit codes:
  0 - Converted
  1 - Program rejected (syntax, unsupported construct, type or codegen error)
  2 - Command error (unreadable input, unknown target, etc.)

Examples:
  pyxlate convert prog.py --target java
  pyxlate convert prog.py -t c -o prog.c
  cat prog.py | pyxlate convert - -t cpp --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Target, "target", "t", "", "target language (c|cpp|java)")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file path")
	cmd.Flags().StringVar(&opts.History, "history", "", "record the conversion in this sqlite database")
	cmd.Flags().BoolVar(&opts.Cache, "cache", false, "reuse a recorded conversion of identical input (needs a history database)")

	return cmd
}

func runConvert(opts *ConvertOptions, path string, cmd *cobra.Command) error {
	ctx := cmd.Context()
	formatter := opts.formatter(cmd)

	name := opts.Target
	if name == "" {
		name = opts.Config.Target
	}
	target, err := parseTarget(formatter, name)
	if err != nil {
		return err
	}

	src, err := readSource(formatter, path, cmd.InOrStdin())
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
	if st != nil {
		defer st.Close()
	}
	if opts.Cache && st == nil {
		return commandError(formatter, ErrCodeHistory, "--cache needs a history database (--history or config history)", nil)
	}

	var res convert.Result
	cached := false
	if opts.Cache {
		rec, err := st.Lookup(ctx, ir.SourceHash(src), target, ir.TranslatorVersion)
		switch {
		case err == nil:
			res, cached = rec.Result(), true
			formatter.VerboseLog("Reusing conversion %s from %s", rec.ID, historyPath)
		case !errors.Is(err, history.ErrNotFound):
			return commandError(formatter, ErrCodeHistory, "looking up history", err)
		}
	}
	if !cached {
		res = opts.newPipeline().Convert(ctx, src, target)
		if st != nil {
			if _, err := st.Add(ctx, history.FromResult(src, res, time.Now())); err != nil {
				log.Error(ctx, err, log.KV{K: "msg", V: "failed to record conversion"})
				formatter.VerboseLog("Warning: conversion not recorded: %v", err)
			}
		}
	}
	formatter.VerboseLog("Conversion %s (%s)", res.ID, res.Target)

	if !res.OK {
		_ = formatter.ErrorWithID(res.ID, res.Error.Code, res.Error.Error(), res.Error)
		return WrapExitError(ExitFailure, fmt.Sprintf("%s: conversion failed", res.Error.Code), res.Error)
	}
	formatter.Warnings(res.Warnings)

	if opts.Output != "" {
		if err := os.WriteFile(opts.Output, []byte(res.Code), 0o644); err != nil {
			return commandError(formatter, ErrCodeWriteFailed, "writing output file", err)
		}
		if formatter.Format == "json" {
			return formatter.SuccessWithID(res.ID, res)
		}
		fmt.Fprintf(formatter.Writer, "✓ Wrote %s code to %s\n", res.Target, opts.Output)
		return nil
	}

	if formatter.Format == "json" {
		return formatter.SuccessWithID(res.ID, res)
	}
	fmt.Fprint(formatter.Writer, res.Code)
	return nil
}
