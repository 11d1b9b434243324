package codegen

import (
	"fmt"
	"strings"

	"github.com/roach88/pyxlate/internal/ir"
)

// Target selects the language Generate emits.
type Target string

const (
	TargetC    Target = "c"
	TargetCPP  Target = "cpp"
	TargetJava Target = "java"
)

// Targets returns every supported target in display order.
func Targets() []Target {
	return []Target{TargetC, TargetCPP, TargetJava}
}

var targetAliases = map[string]Target{
	"c":    TargetC,
	"cpp":  TargetCPP,
	"c++":  TargetCPP,
	"cxx":  TargetCPP,
	"java": TargetJava,
}

// ParseTarget maps a user-supplied selector to a Target. Matching ignores
// case and surrounding space.
func ParseTarget(s string) (Target, error) {
	if t, ok := targetAliases[strings.ToLower(strings.TrimSpace(s))]; ok {
		return t, nil
	}
	return "", &Error{
		Code:    ErrUnknownTarget,
		Message: fmt.Sprintf("unknown target %q (want c, cpp or java)", s),
	}
}

func (t Target) String() string { return string(t) }

// Conventions describes the fixed translation choices for a target. It is
// what `pyxlate targets` prints.
type Conventions struct {
	Target    Target            `json:"target"`
	Language  string            `json:"language"`
	Extension string            `json:"extension"`
	Types     map[string]string `json:"types"`
	Print     string            `json:"print"`
	Concat    string            `json:"concat"`
	Compare   string            `json:"compare"`
	Mod       string            `json:"mod"`
	Float     string            `json:"float"`
	Loops     string            `json:"loops,omitempty"`
}

const floatConvention = "shortest digits that read back as the same double; fixed notation for exponents -4 to 15, with .0 on integral values"


// ConventionsFor returns the conventions of t.
func ConventionsFor(t Target) (Conventions, error) {
	d, err := dialectFor(t)
	if err != nil {
		return Conventions{}, err
	}
	return d.conventions(), nil
}

func words(s string) map[string]bool {
	out := make(map[string]bool)
	for _, w := range strings.Fields(s) {
		out[w] = true
	}
	return out
}

func typeTable(m map[ir.Type]string) map[string]string {
	out := make(map[string]string, len(m))
	for t, name := range m {
		out[t.String()] = name
	}
	return out
}
