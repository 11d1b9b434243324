package convert

import (
	"fmt"
	"strconv"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/roach88/pyxlate/internal/codegen"
)

// Each generated variable keeps the literal kind of its name, so every
// program renderProgram builds is well typed.
var programVars = []struct {
	name    string
	literal func(v int) string
}{
	{"a", strconv.Itoa},
	{"b", func(v int) string { return strconv.Itoa(v * 3) }},
	{"c", func(v int) string { return fmt.Sprintf("%d.5", v) }},
	{"d", func(v int) string { return fmt.Sprintf("%q", "s"+strconv.Itoa(v)) }},
}

// renderStmt turns one generated number into a supported statement.
func renderStmt(v int, assigned map[string]bool) string {
	pv := programVars[(v/5)%len(programVars)]
	switch v % 5 {
	case 0:
		assigned[pv.name] = true
		return pv.name + " = " + pv.literal(v)
	case 1:
		if assigned[pv.name] {
			return "print(" + pv.name + ")"
		}
		return fmt.Sprintf("print(%d)", v)
	case 2:
		return fmt.Sprintf("if %d %% 2 == 0:\n    %s = %s\nelse:\n    print(%d)", v, pv.name, pv.literal(v), v)
	case 3:
		return fmt.Sprintf("for i in range(%d):\n    print(i)", v%7)
	default:
		return fmt.Sprintf("while False:\n    print(%d)", v)
	}
}

func renderProgram(codes []int) []string {
	assigned := make(map[string]bool)
	stmts := make([]string, len(codes))
	for i, v := range codes {
		stmts[i] = renderStmt(v, assigned)
	}
	return stmts
}

func properties(minSuccessful int) *gopter.Properties {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = minSuccessful
	return gopter.NewProperties(parameters)
}

func TestConvertDeterminismProperty(t *testing.T) {
	properties := properties(100)

	properties.Property("same source and target yield identical output", prop.ForAll(
		func(codes []int) bool {
			src := strings.Join(renderProgram(codes), "\n") + "\n"
			for _, target := range codegen.Targets() {
				first := Convert(src, target)
				second := Convert(src, target)
				if !first.OK || first.Code != second.Code || first.IRHash != second.IRHash {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.IntRange(0, 999)),
	))

	properties.TestingRun(t)
}

func TestConvertJavaLoopsStayReachableProperty(t *testing.T) {
	properties := properties(100)

	properties.Property("java while loops never test a literal", prop.ForAll(
		func(codes []int) bool {
			src := strings.Join(renderProgram(codes), "\n") + "\n"
			res := Convert(src, codegen.TargetJava)
			return res.OK &&
				!strings.Contains(res.Code, "while (false)") &&
				!strings.Contains(res.Code, "while (true)")
		},
		gen.SliceOf(gen.IntRange(0, 999)),
	))

	properties.TestingRun(t)
}

func TestConvertStatementOrderProperty(t *testing.T) {
	properties := properties(100)

	properties.Property("statements appear in source order", prop.ForAll(
		func(codes []int) bool {
			stmts := renderProgram(codes)
			var b strings.Builder
			for i, s := range stmts {
				fmt.Fprintf(&b, "%s\nprint(%d)\n", s, 70000+i)
			}
			for _, target := range codegen.Targets() {
				res := Convert(b.String(), target)
				if !res.OK {
					return false
				}
				last := -1
				for i := range stmts {
					at := strings.Index(res.Code, strconv.Itoa(70000+i))
					if at <= last {
						return false
					}
					last = at
				}
			}
			return true
		},
		gen.SliceOfN(12, gen.IntRange(0, 999)),
	))

	properties.TestingRun(t)
}

// kindLiterals holds one literal per type: Int, Float, Bool, String.
var kindLiterals = []string{"1", "2.5", "True", `"s"`}

func TestConvertTypeConsistencyProperty(t *testing.T) {
	properties := properties(50)

	properties.Property("reassignment succeeds exactly when the kinds are compatible", prop.ForAll(
		func(first, second int) bool {
			src := "x = " + kindLiterals[first] + "\nx = " + kindLiterals[second] + "\n"
			res := Convert(src, codegen.TargetC)

			compatible := first == second || (first == 1 && second == 0)
			if compatible {
				return res.OK
			}
			return !res.OK &&
				res.Error.Kind == KindType &&
				res.Error.Symbol == "x" &&
				res.Error.Pos.Line == 2
		},
		gen.IntRange(0, len(kindLiterals)-1),
		gen.IntRange(0, len(kindLiterals)-1),
	))

	properties.TestingRun(t)
}

var unsupportedSnippets = []string{
	"def f():\n    pass",
	"class C:\n    pass",
	"try:\n    x = 1\nexcept E:\n    pass",
	"with open(p) as fh:\n    print(1)",
	"import os",
	"from os import path",
	"xs = [1, 2]",
	"m = {1: 2}",
	"f = lambda: 1",
	"print(1, 2)",
	"print(1, end=\"\")",
	"q = len(\"s\")",
	"n = 0\nn += 1",
	"p, q = 1, 2",
	"y = 1 if True else 2",
	"for ch in \"abc\":\n    print(ch)",
	"for k in range(3):\n    print(k)\nelse:\n    print(0)",
	"z = 2 ** 3",
	"z = 7 // 2",
	"z = 1 < 2 < 3",
	"z = None",
	"z = f\"{1}\"",
	"pass",
	"break",
	"return 1",
	"z = 2147483648",
	"@dec\ndef g():\n    pass",
	"x = (1 +",
	"if True:\nprint(1)",
}

func TestConvertRejectionProperty(t *testing.T) {
	properties := properties(100)

	properties.Property("unsupported constructs never yield output", prop.ForAll(
		func(codes []int, pick, at int) bool {
			stmts := renderProgram(codes)
			at %= len(stmts) + 1
			snippet := unsupportedSnippets[pick]
			stmts = append(stmts[:at], append([]string{snippet}, stmts[at:]...)...)
			src := strings.Join(stmts, "\n") + "\n"

			for _, target := range codegen.Targets() {
				res := Convert(src, target)
				if res.OK || res.Code != "" || res.Error == nil {
					return false
				}
				if res.Error.Kind != KindUnsupported && res.Error.Kind != KindSyntax {
					return false
				}
			}
			return true
		},
		gen.SliceOfN(6, gen.IntRange(0, 999)),
		gen.IntRange(0, len(unsupportedSnippets)-1),
		gen.IntRange(0, 100),
	))

	properties.TestingRun(t)
}
