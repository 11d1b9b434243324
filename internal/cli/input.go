package cli

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/roach88/pyxlate/internal/codegen"
	"github.com/roach88/pyxlate/internal/history"
)

// readSource reads the program at path, or stdin when path is "-".
func readSource(f *OutputFormatter, path string, stdin io.Reader) (string, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if errors.Is(err, fs.ErrNotExist) {
		return "", commandError(f, ErrCodeNotFound, fmt.Sprintf("input file not found: %s", path), nil)
	}
	if err != nil {
		return "", commandError(f, ErrCodeReadFailed, "reading input", err)
	}
	return string(data), nil
}

// openHistory opens the history database at path. An empty path means
// history is disabled and returns a nil store.
func openHistory(f *OutputFormatter, path string) (*history.Store, error) {
	if path == "" {
		return nil, nil
	}
	st, err := history.Open(path)
	if err != nil {
		return nil, commandError(f, ErrCodeHistory, "opening history", err)
	}
	return st, nil
}

// parseTarget resolves a target name or alias. Unknown names are command
// errors, not conversion failures.
func parseTarget(f *OutputFormatter, name string) (codegen.Target, error) {
	t, err := codegen.ParseTarget(name)
	if err == nil {
		return t, nil
	}
	msg := err.Error()
	var cgErr *codegen.Error
	if errors.As(err, &cgErr) {
		msg = cgErr.Message
	}
	return "", commandError(f, codegen.ErrUnknownTarget, msg, nil)
}
