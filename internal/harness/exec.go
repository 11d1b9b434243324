package harness

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/roach88/pyxlate/internal/codegen"
	"github.com/roach88/pyxlate/internal/config"
)

// DefaultExecTimeout bounds each compile and each run.
const DefaultExecTimeout = 30 * time.Second

// ErrToolchainMissing is returned when a target's compiler or runtime is
// not installed.
var ErrToolchainMissing = errors.New("toolchain not installed")

// ExecError reports a generated program that failed to compile or run.
type ExecError struct {
	Stage  string // "compile" or "run"
	Cmd    string
	Output string // combined stderr of the failing command
	Err    error
}

func (e *ExecError) Error() string {
	msg := fmt.Sprintf("%s failed: %s: %v", e.Stage, e.Cmd, e.Err)
	if out := strings.TrimSpace(e.Output); out != "" {
		msg += "\n" + out
	}
	return msg
}

func (e *ExecError) Unwrap() error { return e.Err }

// Runner compiles and runs generated programs with host toolchains.
type Runner struct {
	toolchain config.Toolchain
	timeout   time.Duration
}

// NewRunner returns a runner using the given commands.
func NewRunner(tc config.Toolchain) *Runner {
	return &Runner{toolchain: tc, timeout: DefaultExecTimeout}
}

// WithTimeout returns a copy of r with a different per-command timeout.
func (r *Runner) WithTimeout(d time.Duration) *Runner {
	cp := *r
	cp.timeout = d
	return &cp
}

// Available reports whether every command target needs is on PATH.
func (r *Runner) Available(target codegen.Target) error {
	for _, name := range r.commands(target) {
		if name == "" {
			return fmt.Errorf("%s: %w", target, ErrToolchainMissing)
		}
		if _, err := exec.LookPath(name); err != nil {
			return fmt.Errorf("%s: %s: %w", target, name, ErrToolchainMissing)
		}
	}
	return nil
}

func (r *Runner) commands(target codegen.Target) []string {
	switch target {
	case codegen.TargetC:
		return []string{r.toolchain.CC}
	case codegen.TargetCPP:
		return []string{r.toolchain.CXX}
	case codegen.TargetJava:
		return []string{r.toolchain.Javac, r.toolchain.Java}
	}
	return []string{""}
}

// Run compiles code for target in a scratch directory, runs it and
// returns its stdout.
func (r *Runner) Run(ctx context.Context, target codegen.Target, code string) (string, error) {
	if err := r.Available(target); err != nil {
		return "", err
	}

	dir, err := os.MkdirTemp("", "pyxlate-exec-")
	if err != nil {
		return "", fmt.Errorf("create scratch dir: %w", err)
	}
	defer os.RemoveAll(dir)

	conv, err := codegen.ConventionsFor(target)
	if err != nil {
		return "", err
	}
	file := "main" + conv.Extension
	if target == codegen.TargetJava {
		file = "Main" + conv.Extension
	}
	if err := os.WriteFile(filepath.Join(dir, file), []byte(code), 0o644); err != nil {
		return "", fmt.Errorf("write source: %w", err)
	}

	bin := filepath.Join(dir, "prog")
	var compile, run []string
	switch target {
	case codegen.TargetC:
		compile = []string{r.toolchain.CC, "-std=c99", "-w", "-o", bin, file}
		run = []string{bin}
	case codegen.TargetCPP:
		compile = []string{r.toolchain.CXX, "-w", "-o", bin, file}
		run = []string{bin}
	case codegen.TargetJava:
		compile = []string{r.toolchain.Javac, "-nowarn", file}
		run = []string{r.toolchain.Java, "-cp", dir, "Main"}
	}

	if _, err := r.command(ctx, dir, "compile", compile); err != nil {
		return "", err
	}
	return r.command(ctx, dir, "run", run)
}

func (r *Runner) command(ctx context.Context, dir, stage string, argv []string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = dir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			err = fmt.Errorf("%w after %s", ctx.Err(), r.timeout)
		}
		return "", &ExecError{
			Stage:  stage,
			Cmd:    strings.Join(argv, " "),
			Output: stderr.String(),
			Err:    err,
		}
	}
	return stdout.String(), nil
}
