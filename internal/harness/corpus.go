package harness

import (
	"bytes"
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"

	"github.com/roach88/pyxlate/internal/codegen"
	"github.com/roach88/pyxlate/internal/convert"
)

// Corpus is a named set of conversion cases.
type Corpus struct {
	// Name identifies the corpus in reports.
	Name string `yaml:"name"`

	// Description explains what the corpus covers.
	Description string `yaml:"description"`

	// Targets is the default target list for cases that name none.
	// Empty means every target.
	Targets []string `yaml:"targets,omitempty"`

	Cases []Case `yaml:"cases"`
}

// Case is one program and its expected conversions.
type Case struct {
	// Name is lower snake case; it also names the case's golden files.
	Name string `yaml:"name"`

	Description string `yaml:"description,omitempty"`

	// Source is the program text.
	Source string `yaml:"source"`

	// Targets overrides the corpus target list.
	Targets []string `yaml:"targets,omitempty"`

	Expect Expect `yaml:"expect"`
}

// Expect lists what every conversion of a case must produce.
type Expect struct {
	// Stdout is the output of running the generated program. Nil skips
	// execution for the case.
	Stdout *string `yaml:"stdout,omitempty"`

	// Contains maps a target name to lines its code must contain.
	Contains map[string][]string `yaml:"contains,omitempty"`

	// Warnings lists the expected warning codes in order. Nil skips the
	// check; an empty list requires no warnings.
	Warnings []string `yaml:"warnings,omitempty"`

	// Error is set when the conversion must fail.
	Error *ExpectError `yaml:"error,omitempty"`
}

// ExpectError names the failure a conversion must report.
type ExpectError struct {
	Kind string `yaml:"kind"`
	Code string `yaml:"code,omitempty"`
}

var caseNamePattern = regexp.MustCompile(`^[a-z0-9]+(_[a-z0-9]+)*$`)

var errorKinds = map[string]bool{
	string(convert.KindSyntax):      true,
	string(convert.KindUnsupported): true,
	string(convert.KindType):        true,
	string(convert.KindCodeGen):     true,
}

// LoadCorpus reads and validates a corpus file. Unknown fields are
// rejected so that typos in expectations do not silently pass.
func LoadCorpus(path string) (*Corpus, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read corpus file: %w", err)
	}
	return ParseCorpus(data)
}

// ParseCorpus decodes and validates corpus YAML.
func ParseCorpus(data []byte) (*Corpus, error) {
	var corpus Corpus
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&corpus); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateCorpus(&corpus); err != nil {
		return nil, fmt.Errorf("invalid corpus: %w", err)
	}
	return &corpus, nil
}

// TargetsFor returns the parsed targets a case converts to.
func (c *Corpus) TargetsFor(tc Case) []codegen.Target {
	names := tc.Targets
	if len(names) == 0 {
		names = c.Targets
	}
	if len(names) == 0 {
		return codegen.Targets()
	}
	out := make([]codegen.Target, 0, len(names))
	for _, n := range names {
		// Validated on load.
		t, _ := codegen.ParseTarget(n)
		out = append(out, t)
	}
	return out
}

func validateCorpus(c *Corpus) error {
	if c.Name == "" {
		return fmt.Errorf("name is required")
	}
	if len(c.Cases) == 0 {
		return fmt.Errorf("cases list is required and must be non-empty")
	}
	if err := validateTargets("targets", c.Targets); err != nil {
		return err
	}

	seen := make(map[string]bool, len(c.Cases))
	for i, tc := range c.Cases {
		if err := validateCase(i, tc); err != nil {
			return err
		}
		if seen[tc.Name] {
			return fmt.Errorf("cases[%d]: duplicate name %q", i, tc.Name)
		}
		seen[tc.Name] = true
	}
	return nil
}

func validateCase(i int, tc Case) error {
	if !caseNamePattern.MatchString(tc.Name) {
		return fmt.Errorf("cases[%d]: name %q must be lower snake case", i, tc.Name)
	}
	if tc.Source == "" {
		return fmt.Errorf("cases[%d] %s: source is required", i, tc.Name)
	}
	if err := validateTargets(fmt.Sprintf("cases[%d].targets", i), tc.Targets); err != nil {
		return err
	}
	for name := range tc.Expect.Contains {
		if _, err := codegen.ParseTarget(name); err != nil {
			return fmt.Errorf("cases[%d] %s: expect.contains: %w", i, tc.Name, err)
		}
	}

	if e := tc.Expect.Error; e != nil {
		if !errorKinds[e.Kind] {
			return fmt.Errorf("cases[%d] %s: unknown error kind %q", i, tc.Name, e.Kind)
		}
		if tc.Expect.Stdout != nil || len(tc.Expect.Contains) > 0 {
			return fmt.Errorf("cases[%d] %s: expect.error excludes stdout and contains", i, tc.Name)
		}
	}
	return nil
}

func validateTargets(field string, names []string) error {
	for _, n := range names {
		if _, err := codegen.ParseTarget(n); err != nil {
			return fmt.Errorf("%s: %w", field, err)
		}
	}
	return nil
}
