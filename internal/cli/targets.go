package cli

import (
	"fmt"
	"slices"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/pyxlate/internal/codegen"
)

// NewTargetsCommand creates the targets command.
func NewTargetsCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "targets",
		Short: "List target languages and their conventions",
		Long: `List the supported target languages with the fixed choices each
generator makes: type mapping, print form, string concatenation,
string comparison, modulo and Float formatting.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTargets(rootOpts, cmd)
		},
	}
}

func runTargets(opts *RootOptions, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	all := []codegen.Conventions{}
	for _, t := range codegen.Targets() {
		conv, err := codegen.ConventionsFor(t)
		if err != nil {
			return commandError(formatter, codegen.ErrUnknownTarget, "reading conventions", err)
		}
		all = append(all, conv)
	}

	if formatter.Format == "json" {
		return formatter.Success(all)
	}

	tw := tabwriter.NewWriter(formatter.Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TARGET\tLANGUAGE\tEXT\tTYPES")
	for _, conv := range all {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", conv.Target, conv.Language, conv.Extension, typeSummary(conv.Types))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if opts.Verbose {
		for _, conv := range all {
			fmt.Fprintf(formatter.Writer, "\n%s:\n  print:   %s\n  concat:  %s\n  compare: %s\n  mod:     %s\n  float:   %s\n",
				conv.Target, conv.Print, conv.Concat, conv.Compare, conv.Mod, conv.Float)
			if conv.Loops != "" {
				fmt.Fprintf(formatter.Writer, "  loops:   %s\n", conv.Loops)
			}
		}
	}
	return nil
}

func typeSummary(types map[string]string) string {
	names := make([]string, 0, len(types))
	for name := range types {
		names = append(names, name)
	}
	slices.Sort(names)
	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = name + "=" + types[name]
	}
	return strings.Join(parts, " ")
}
