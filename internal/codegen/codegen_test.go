package codegen

import (
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/pyxlate/internal/compiler"
	"github.com/roach88/pyxlate/internal/ir"
	"github.com/roach88/pyxlate/internal/resolver"
	"github.com/roach88/pyxlate/internal/source"
	"github.com/roach88/pyxlate/internal/syntax"
)

func resolved(t *testing.T, src string) *resolver.Program {
	t.Helper()
	mod, err := syntax.Parse(src)
	require.NoError(t, err)
	prog, err := compiler.Build(mod)
	require.NoError(t, err)
	rp, err := resolver.Resolve(prog)
	require.NoError(t, err)
	return rp
}

func generate(t *testing.T, target Target, src string) string {
	t.Helper()
	out, err := Generate(target, resolved(t, src))
	require.NoError(t, err)
	return out
}

var goldenPrograms = []struct {
	name string
	src  string
}{
	{"assign_print", "x = 5\nprint(x)\n"},
	{"if_else", "x = 3\nif x > 2:\n  print(1)\nelse:\n  print(0)\n"},
	{"for_range", "total = 0\nfor i in range(1, 6):\n  total = total + i\nprint(total)\n"},
	{"while_countdown", "n = 3\nwhile n > 0:\n  print(n)\n  n = n - 1\n"},
	{"string_concat", "s = \"a\" + \"b\"\nprint(s)\n"},
	{"mixed", `limit = 10
ratio = 2.5
name = "py"
done = False
for i in range(limit, 0, -3):
    if i % 2 == 0 and not done:
        print(i)
    elif name < "zz":
        print(name + "!")
    else:
        done = True
print(ratio * (limit - 1))
print(done)
`},
}

func TestGenerateGolden(t *testing.T) {
	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)

	for _, p := range goldenPrograms {
		for _, target := range Targets() {
			t.Run(p.name+"/"+target.String(), func(t *testing.T) {
				out := generate(t, target, p.src)
				g.Assert(t, p.name+"_"+target.String(), []byte(out))
			})
		}
	}
}

func TestGenerateDeterministic(t *testing.T) {
	for _, p := range goldenPrograms {
		for _, target := range Targets() {
			first := generate(t, target, p.src)
			second := generate(t, target, p.src)
			assert.Equal(t, first, second, "%s/%s", p.name, target)
		}
	}
}

func TestGenerateEmptyProgram(t *testing.T) {
	assert.Equal(t, "#include <stdio.h>\n\nint main(void) {\n    return 0;\n}\n",
		generate(t, TargetC, ""))
	assert.Equal(t, "public class Main {\n    public static void main(String[] args) {\n    }\n}\n",
		generate(t, TargetJava, ""))
}

func TestGenerateParenthesization(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{"x = (1 + 2) * 3", "int x = (1 + 2) * 3;"},
		{"x = 1 + 2 * 3", "int x = 1 + 2 * 3;"},
		{"x = 1 - 2 - 3", "int x = 1 - 2 - 3;"},
		{"x = 1 - (2 - 3)", "int x = 1 - (2 - 3);"},
		{"x = 8 / (4 / 2)", "int x = 8 / (4 / 2);"},
		{"x = -(1 + 2)", "int x = -(1 + 2);"},
		{"x = -(-1)", "int x = -(-1);"},
		{"x = 1 - -1", "int x = 1 - -1;"},
		{"b = not (1 < 2)", "bool b = !(1 < 2);"},
		{"b = (1 < 2) == (3 < 4)", "bool b = (1 < 2) == (3 < 4);"},
		{"b = True or False and True", "bool b = true || (false && true);"},
		{"b = (True or False) and True", "bool b = (true || false) && true;"},
		{"b = 1 + 2 > 3 * 4", "bool b = 1 + 2 > 3 * 4;"},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			assert.Contains(t, generate(t, TargetC, tt.src), "    "+tt.want+"\n")
		})
	}
}

func TestGenerateStringOperations(t *testing.T) {
	src := "a = \"x\"\nb = a == \"y\"\nc = a != \"y\"\nd = a >= \"y\"\ne = \"p\" < \"q\"\nf = \"p\" + a + \"q\"\n"

	tests := []struct {
		target Target
		want   []string
	}{
		{TargetC, []string{
			`bool b = strcmp(a, "y") == 0;`,
			`bool c = strcmp(a, "y") != 0;`,
			`bool d = strcmp(a, "y") >= 0;`,
			`bool e = strcmp("p", "q") < 0;`,
			`const char *f = str_concat(str_concat("p", a), "q");`,
		}},
		{TargetCPP, []string{
			`bool b = a == "y";`,
			`bool c = a != "y";`,
			`bool d = a >= "y";`,
			`bool e = string("p") < "q";`,
			`string f = string("p") + a + "q";`,
		}},
		{TargetJava, []string{
			`boolean b = a.equals("y");`,
			`boolean c = !a.equals("y");`,
			`boolean d = a.compareTo("y") >= 0;`,
			`boolean e = "p".compareTo("q") < 0;`,
			`String f = "p" + a + "q";`,
		}},
	}

	for _, tt := range tests {
		t.Run(tt.target.String(), func(t *testing.T) {
			out := generate(t, tt.target, src)
			for _, line := range tt.want {
				assert.Contains(t, out, line)
			}
		})
	}
}

func TestGenerateJavaEqualsReceiver(t *testing.T) {
	out := generate(t, TargetJava, "a = \"x\"\nb = a + \"y\" == \"xy\"\n")
	assert.Contains(t, out, `boolean b = (a + "y").equals("xy");`)
}

func TestGenerateCIncludesOnlyWhatIsUsed(t *testing.T) {
	out := generate(t, TargetC, "x = 1\nprint(x)\n")
	assert.NotContains(t, out, "stdbool")
	assert.NotContains(t, out, "string.h")
	assert.NotContains(t, out, "str_concat")

	out = generate(t, TargetC, "a = \"x\"\nprint(a < \"y\")\n")
	assert.Contains(t, out, "#include <string.h>\n")
	assert.NotContains(t, out, "stdlib")
	assert.NotContains(t, out, "stdbool")
	assert.Contains(t, out, `printf("%s\n", strcmp(a, "y") < 0 ? "True" : "False");`)
}

func TestGenerateLoops(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want []string
	}{
		{
			name: "default start",
			src:  "for i in range(3):\n  print(i)\n",
			want: []string{"for (int i = 0; i < 3; i++) {"},
		},
		{
			name: "positive step",
			src:  "for i in range(0, 10, 2):\n  print(i)\n",
			want: []string{"for (int i = 0; i < 10; i += 2) {"},
		},
		{
			name: "negative step",
			src:  "for i in range(10, 0, -1):\n  print(i)\n",
			want: []string{"for (int i = 10; i > 0; i -= 1) {"},
		},
		{
			name: "variable step",
			src:  "s = 2\nfor i in range(0, 10, s):\n  print(i)\n",
			want: []string{"for (int i = 0; (s > 0 ? i < 10 : i > 10); i += s) {"},
		},
		{
			name: "computed bound",
			src:  "n = 4\nfor i in range(n + 1):\n  print(i)\n",
			want: []string{"for (int i = 0; i < n + 1; i++) {"},
		},
		{
			name: "reused counter",
			src:  "i = 7\nfor i in range(3):\n  print(i)\nprint(i)\n",
			want: []string{
				"    int i = 7;\n",
				"    for (int i_n = 0; i_n < 3; i_n++) {\n        i = i_n;\n        printf(\"%d\\n\", i);\n    }\n",
			},
		},
		{
			name: "bound reads reused counter",
			src:  "i = 2\nfor i in range(i + 3):\n  print(i)\n",
			want: []string{
				"    int i_stop = i + 3;\n    for (int i_n = 0; i_n < i_stop; i_n++) {\n        i = i_n;\n",
			},
		},
		{
			name: "step reads reused counter",
			src:  "i = 1\nfor i in range(0, 20, i + 1):\n  print(i)\n",
			want: []string{
				"    int i_step = i + 1;\n",
				"for (int i_n = 0; (i_step > 0 ? i_n < 20 : i_n > 20); i_n += i_step) {",
			},
		},
		{
			name: "counter name avoids variables",
			src:  "i = 0\ni_n = 5\nfor i in range(i_n):\n  print(i)\n",
			want: []string{"for (int i_n2 = 0; i_n2 < i_n; i_n2++) {", "i = i_n2;"},
		},
		{
			name: "bound written by body",
			src:  "n = 3\nfor i in range(n):\n  n = n + 1\nprint(n)\n",
			want: []string{
				"    int i_stop = n;\n    for (int i = 0; i < i_stop; i++) {\n",
				"        n = n + 1;\n",
			},
		},
		{
			name: "step written by body",
			src:  "s = 1\nfor i in range(0, 9, s):\n  s = s + 1\n",
			want: []string{
				"    int i_step = s;\n",
				"for (int i = 0; (i_step > 0 ? i < 9 : i > 9); i += i_step) {",
			},
		},
		{
			name: "temporaries stay unique",
			src:  "n = 2\ni_stop = 0\nfor i in range(n):\n  n = n + 1\nfor i in range(n):\n  n = n + 1\n",
			want: []string{"int i_stop2 = n;", "int i_stop3 = n;", "i < i_stop2;", "i < i_stop3;"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := generate(t, TargetC, tt.src)
			for _, w := range tt.want {
				assert.Contains(t, out, w)
			}
		})
	}
}

func TestGenerateReusedCounterInEveryTarget(t *testing.T) {
	src := "i = 9\nfor i in range(0):\n  print(i)\nprint(i)\n"

	tests := []struct {
		target Target
		want   string
	}{
		{TargetC, "    for (int i_n = 0; i_n < 0; i_n++) {\n        i = i_n;\n"},
		{TargetCPP, "    for (int i_n = 0; i_n < 0; i_n++) {\n        i = i_n;\n"},
		{TargetJava, "        for (int i_n = 0; i_n < 0; i_n++) {\n            i = i_n;\n"},
	}
	for _, tt := range tests {
		t.Run(tt.target.String(), func(t *testing.T) {
			out := generate(t, tt.target, src)
			assert.Contains(t, out, tt.want)
			assert.NotContains(t, out, "for (i =")
		})
	}
}

func TestGenerateFloorMod(t *testing.T) {
	src := "x = 0 - 7\nprint(x % 3)\ny = (x + 1) % (2 - 5)\n"

	c := generate(t, TargetC, src)
	assert.Contains(t, c, "static int floor_mod(int a, int b) {\n    int r = a % b;\n    return r != 0 && (r < 0) != (b < 0) ? r + b : r;\n}\n")
	assert.Contains(t, c, `printf("%d\n", floor_mod(x, 3));`)
	assert.Contains(t, c, "int y = floor_mod(x + 1, 2 - 5);")

	cpp := generate(t, TargetCPP, src)
	assert.Contains(t, cpp, "static int floor_mod(int a, int b) {")
	assert.Contains(t, cpp, "cout << floor_mod(x, 3) << endl;")

	java := generate(t, TargetJava, src)
	assert.Contains(t, java, "System.out.println(Math.floorMod(x, 3));")
	assert.Contains(t, java, "int y = Math.floorMod(x + 1, 2 - 5);")

	assert.NotContains(t, generate(t, TargetC, "x = 7 / 2\n"), "floor_mod")
}

func TestGenerateJavaConstantLoops(t *testing.T) {
	src := "while False:\n  print(1)\nwhile not True:\n  print(2)\nn = 1\nwhile n > 0:\n  n = n - 1\nprint(3)\n"

	java := generate(t, TargetJava, src)
	assert.Contains(t, java, "        boolean cond = false;\n        while (cond) {\n")
	assert.Contains(t, java, "        boolean cond2 = !true;\n        while (cond2) {\n")
	assert.Contains(t, java, "        while (n > 0) {\n")
	assert.NotContains(t, java, "while (false)")

	c := generate(t, TargetC, src)
	assert.Contains(t, c, "    while (false) {\n")
	assert.NotContains(t, c, "cond")
}

func TestGenerateJavaCodeAfterInfiniteLoop(t *testing.T) {
	java := generate(t, TargetJava, "while True:\n  print(1)\nprint(2)\n")
	assert.Contains(t, java, "        boolean cond = true;\n        while (cond) {\n")
	assert.Contains(t, java, "        System.out.println(2);\n")
}

func TestGenerateFloatPrinting(t *testing.T) {
	src := "x = 0.1 + 0.2\nprint(x)\nprint(3.14159265)\n"

	c := generate(t, TargetC, src)
	assert.Contains(t, c, "static const char *format_float(double x) {\n    static char buf[40];\n")
	assert.Contains(t, c, `printf("%s\n", format_float(x));`)
	assert.Contains(t, c, `printf("%s\n", format_float(3.14159265));`)
	assert.NotContains(t, c, "%g")
	assert.Contains(t, c, "#include <stdlib.h>\n#include <string.h>\n")

	cpp := generate(t, TargetCPP, src)
	assert.Contains(t, cpp, "#include <cstdio>\n#include <cstdlib>\n#include <cstring>\n#include <iostream>\n")
	assert.Contains(t, cpp, "static string format_float(double x) {\n    char buf[40];\n")
	assert.Contains(t, cpp, "cout << format_float(x) << endl;")

	java := generate(t, TargetJava, src)
	assert.Contains(t, java, "public class Main {\n    static String formatFloat(double x) {\n")
	assert.Contains(t, java, "System.out.println(formatFloat(x));")

	for _, target := range Targets() {
		out := generate(t, target, "x = 1.5\ny = x * 2\n")
		assert.NotContains(t, out, "ormat_float", target)
		assert.NotContains(t, out, "formatFloat", target)
	}
}

func TestGenerateElifChain(t *testing.T) {
	src := "x = 2\nif x == 1:\n  print(1)\nelif x == 2:\n  print(2)\nelif x == 3:\n  print(3)\nelse:\n  print(0)\n"
	want := "" +
		"        if (x == 1) {\n" +
		"            System.out.println(1);\n" +
		"        } else if (x == 2) {\n" +
		"            System.out.println(2);\n" +
		"        } else if (x == 3) {\n" +
		"            System.out.println(3);\n" +
		"        } else {\n" +
		"            System.out.println(0);\n" +
		"        }\n"
	assert.Contains(t, generate(t, TargetJava, src), want)
}

func TestGenerateNestedBlockDeclarations(t *testing.T) {
	src := "x = 1\nif x > 0:\n  y = 2.5\n  x = 3\nelse:\n  y = 1\nprint(x)\n"
	want := "" +
		"    if (x > 0) {\n" +
		"        double y = 2.5;\n" +
		"        x = 3;\n" +
		"    } else {\n" +
		"        double y = 1;\n" +
		"    }\n"
	assert.Contains(t, generate(t, TargetCPP, src), want)
}

func TestGenerateRenamesReservedIdentifiers(t *testing.T) {
	src := "int = 1\nint_ = 2\nnew = 3\nargs = 4\nprint(int + int_ + new + args)\n"

	c := generate(t, TargetC, src)
	assert.Contains(t, c, "int int__ = 1;")
	assert.Contains(t, c, "int int_ = 2;")
	assert.Contains(t, c, "int new = 3;")
	assert.Contains(t, c, "int args = 4;")
	assert.Contains(t, c, `printf("%d\n", int__ + int_ + new + args);`)

	java := generate(t, TargetJava, src)
	assert.Contains(t, java, "int new_ = 3;")
	assert.Contains(t, java, "int args_ = 4;")
	assert.Contains(t, java, "System.out.println(int__ + int_ + new_ + args_);")
}

func TestGenerateLiterals(t *testing.T) {
	tests := []struct {
		target Target
		src    string
		want   string
	}{
		{TargetC, "x = 3.0", "double x = 3.0;"},
		{TargetC, "x = 1e6", "double x = 1e+06;"},
		{TargetC, "x = 100000.0", "double x = 100000.0;"},
		{TargetC, "x = 0.1", "double x = 0.1;"},
		{TargetC, "x = 0x1F", "int x = 31;"},
		{TargetJava, "b = True", "boolean b = true;"},
		{TargetC, `s = "say \"hi\"\\n"`, `const char *s = "say \"hi\"\\n";`},
		{TargetC, `s = "tab\there\n"`, `const char *s = "tab\there\n";`},
		{TargetC, `s = "\x01" + "2"`, `str_concat("\001", "2")`},
		{TargetC, `s = "\x7f2"`, `const char *s = "\1772";`},
		{TargetC, `s = "what??!"`, `const char *s = "what?\?!";`},
		{TargetJava, `s = "what??!"`, `String s = "what??!";`},
		{TargetCPP, `s = "héllo"`, `string s = "héllo";`},
	}

	for _, tt := range tests {
		t.Run(tt.target.String()+" "+tt.src, func(t *testing.T) {
			assert.Contains(t, generate(t, tt.target, tt.src), tt.want)
		})
	}
}

func TestGenerateBoolPrinting(t *testing.T) {
	src := "print(1 < 2)\n"
	assert.Contains(t, generate(t, TargetC, src), `printf("%s\n", 1 < 2 ? "True" : "False");`)
	assert.Contains(t, generate(t, TargetCPP, src), `cout << (1 < 2 ? "True" : "False") << endl;`)
	assert.Contains(t, generate(t, TargetJava, src), `System.out.println(1 < 2 ? "True" : "False");`)
}

func TestGenerateUnknownTarget(t *testing.T) {
	_, err := Generate(Target("rust"), resolved(t, "x = 1\n"))
	var cerr *Error
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, ErrUnknownTarget, cerr.Code)
}

func TestGenerateMissingType(t *testing.T) {
	rp := resolved(t, "x = 1\nprint(x + 2)\n")
	rp.Types = map[ir.Expr]ir.Type{}

	out, err := Generate(TargetC, rp)
	var cerr *Error
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, ErrMissingType, cerr.Code)
	assert.Empty(t, out)
}

func TestGenerateUnknownNode(t *testing.T) {
	rp := resolved(t, "x = 1\n")
	rp.IR = &ir.Program{Statements: []ir.Stmt{nil}}

	_, err := Generate(TargetJava, rp)
	var cerr *Error
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, ErrUnknownNode, cerr.Code)

	_, err = Generate(TargetJava, nil)
	require.ErrorAs(t, err, &cerr)
}

func TestParseTarget(t *testing.T) {
	tests := []struct {
		in   string
		want Target
	}{
		{"c", TargetC},
		{"C", TargetC},
		{"cpp", TargetCPP},
		{"c++", TargetCPP},
		{" CXX ", TargetCPP},
		{"java", TargetJava},
		{"Java", TargetJava},
	}
	for _, tt := range tests {
		got, err := ParseTarget(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}

	_, err := ParseTarget("python")
	var cerr *Error
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, ErrUnknownTarget, cerr.Code)
	assert.Equal(t, `[E503] unknown target "python" (want c, cpp or java)`, err.Error())
}

func TestConventions(t *testing.T) {
	for _, target := range Targets() {
		conv, err := ConventionsFor(target)
		require.NoError(t, err)
		assert.Equal(t, target, conv.Target)
		assert.Len(t, conv.Types, 4)
		assert.Equal(t, "int", conv.Types["Int"])
		assert.Equal(t, "double", conv.Types["Float"])
	}

	java, _ := ConventionsFor(TargetJava)
	assert.Equal(t, "boolean", java.Types["Bool"])
	assert.Equal(t, ".java", java.Extension)
	assert.Equal(t, "Math.floorMod(a, b)", java.Mod)
	assert.NotEmpty(t, java.Loops)

	c, _ := ConventionsFor(TargetC)
	assert.Equal(t, "floor_mod(a, b)", c.Mod)
	assert.NotEmpty(t, c.Float)
	assert.Empty(t, c.Loops)

	_, err := ConventionsFor(Target("go"))
	assert.Error(t, err)
}

func TestErrorString(t *testing.T) {
	err := &Error{Code: ErrMissingType, Pos: source.Pos{Line: 2, Col: 7}, Message: "no type"}
	assert.Equal(t, "[E502] 2:7: no type", err.Error())
}
