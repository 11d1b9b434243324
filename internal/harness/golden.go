package harness

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/pyxlate/internal/codegen"
	"github.com/roach88/pyxlate/internal/convert"
)

// GoldenSuffix is the extension of golden files.
const GoldenSuffix = ".golden"

// GoldenName returns the golden file name of a case converted to target,
// without directory or suffix.
func GoldenName(caseName string, target codegen.Target) string {
	return caseName + "_" + target.String()
}

// WriteGolden stores code as the golden file name in dir, creating dir if
// needed.
func WriteGolden(dir, name, code string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create golden dir: %w", err)
	}
	path := filepath.Join(dir, name+GoldenSuffix)
	if err := os.WriteFile(path, []byte(code), 0o644); err != nil {
		return fmt.Errorf("write golden file: %w", err)
	}
	return nil
}

// CompareGolden checks code against the golden file name in dir.
func CompareGolden(dir, name, code string) error {
	path := filepath.Join(dir, name+GoldenSuffix)
	want, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("golden file %s does not exist (rerun with update)", path)
	}
	if err != nil {
		return fmt.Errorf("read golden file: %w", err)
	}
	if string(want) != code {
		return fmt.Errorf("code differs from %s at line %d", path, firstDiffLine(string(want), code))
	}
	return nil
}

func firstDiffLine(a, b string) int {
	al, bl := strings.Split(a, "\n"), strings.Split(b, "\n")
	for i := 0; i < len(al) && i < len(bl); i++ {
		if al[i] != bl[i] {
			return i + 1
		}
	}
	return min(len(al), len(bl)) + 1
}

// AssertGolden runs every case of corpus that is expected to convert and
// compares its code with the golden files in dir using goldie, so the
// files can be regenerated with `go test -update`.
func AssertGolden(t *testing.T, corpus *Corpus, dir string) {
	t.Helper()

	g := goldie.New(t,
		goldie.WithFixtureDir(dir),
		goldie.WithNameSuffix(GoldenSuffix),
	)
	for _, tc := range corpus.Cases {
		if tc.Expect.Error != nil {
			continue
		}
		for _, target := range corpus.TargetsFor(tc) {
			res := convert.Convert(tc.Source, target)
			if !res.OK {
				t.Errorf("%s/%s: conversion failed: %v", tc.Name, target, res.Err())
				continue
			}
			g.Assert(t, GoldenName(tc.Name, target), []byte(res.Code))
		}
	}
}
