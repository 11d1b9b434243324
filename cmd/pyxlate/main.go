// Command pyxlate translates a small Python subset into C, C++ and Java.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/roach88/pyxlate/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	err := cmd.ExecuteContext(context.Background())
	if err != nil {
		// Commands report their own failures; anything else is a usage
		// or flag error from cobra.
		var exitErr *cli.ExitError
		if !errors.As(err, &exitErr) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			fmt.Fprintln(os.Stderr, "Run 'pyxlate --help' for usage.")
			os.Exit(cli.ExitCommandError)
		}
	}
	os.Exit(cli.GetExitCode(err))
}
