package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/pyxlate/internal/convert"
	"github.com/roach88/pyxlate/internal/ir"
	"github.com/roach88/pyxlate/internal/resolver"
)

// IROptions holds flags for the ir command.
type IROptions struct {
	*RootOptions
	Resolve bool // also type check and report symbols
}

// IROutput is the payload of the ir command.
type IROutput struct {
	Hash      string             `json:"hash"`
	IRVersion string             `json:"ir_version"`
	Program   json.RawMessage    `json:"program"`
	Symbols   []resolver.Symbol  `json:"symbols,omitempty"`
	Warnings  []resolver.Warning `json:"warnings,omitempty"`
}

// NewIRCommand creates the ir command.
func NewIRCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &IROptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "ir <file|->",
		Short: "Print the canonical IR of a program",
		Long: `Lower a program to IR and print its canonical JSON encoding and
content hash. The hash depends only on the program's statements, values
and positions, so it identifies a program across targets.

With --resolve the program is also type checked and the symbol table is
printed.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIR(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Resolve, "resolve", false, "type check and print symbols")

	return cmd
}

func runIR(opts *IROptions, path string, cmd *cobra.Command) error {
	ctx := cmd.Context()
	formatter := opts.formatter(cmd)

	src, err := readSource(formatter, path, cmd.InOrStdin())
	if err != nil {
		return err
	}

	pipeline := opts.newPipeline()
	out := IROutput{IRVersion: ir.IRVersion}

	var prog *ir.Program
	if opts.Resolve {
		rp, err := pipeline.Analyze(ctx, src)
		if err != nil {
			return conversionFailure(formatter, err)
		}
		prog, out.Symbols, out.Warnings = rp.IR, rp.Symbols, rp.Warnings
	} else {
		prog, err = pipeline.Lower(ctx, src)
		if err != nil {
			return conversionFailure(formatter, err)
		}
	}

	canonical, err := ir.MarshalCanonical(prog)
	if err != nil {
		return commandError(formatter, ErrCodeGeneric, "encoding IR", err)
	}
	hash, err := ir.ProgramHash(prog)
	if err != nil {
		return commandError(formatter, ErrCodeGeneric, "hashing IR", err)
	}
	out.Program, out.Hash = canonical, hash

	if formatter.Format == "json" {
		return formatter.Success(out)
	}

	fmt.Fprintln(formatter.Writer, string(canonical))
	fmt.Fprintf(formatter.Writer, "hash: %s\n", hash)
	for _, sym := range out.Symbols {
		fmt.Fprintf(formatter.Writer, "symbol %s: %s (first assigned at %s)\n", sym.Name, sym.Type, sym.FirstSeenAt)
	}
	formatter.Warnings(out.Warnings)
	return nil
}

// conversionFailure prints a pipeline error and returns ExitFailure.
func conversionFailure(f *OutputFormatter, err error) error {
	var cerr *convert.ConversionError
	if !errors.As(err, &cerr) {
		return commandError(f, ErrCodeGeneric, "conversion", err)
	}
	_ = f.Error(cerr.Code, cerr.Error(), cerr)
	return WrapExitError(ExitFailure, fmt.Sprintf("%s: conversion failed", cerr.Code), cerr)
}
