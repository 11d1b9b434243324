package convert

import (
	"bytes"
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"
	"goa.design/clue/log"

	"github.com/roach88/pyxlate/internal/codegen"
	"github.com/roach88/pyxlate/internal/compiler"
	"github.com/roach88/pyxlate/internal/resolver"
	"github.com/roach88/pyxlate/internal/syntax"
)

func TestConvertFidelityCorpus(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want map[codegen.Target][]string
	}{
		{
			name: "assign and print",
			src:  "x = 5\nprint(x)",
			want: map[codegen.Target][]string{
				codegen.TargetC:    {"int x = 5;", `printf("%d\n", x);`},
				codegen.TargetCPP:  {"int x = 5;", "cout << x << endl;"},
				codegen.TargetJava: {"int x = 5;", "System.out.println(x);"},
			},
		},
		{
			name: "string concatenation",
			src:  "s = \"a\" + \"b\"\nprint(s)",
			want: map[codegen.Target][]string{
				codegen.TargetC:    {`const char *s = str_concat("a", "b");`},
				codegen.TargetCPP:  {`string s = string("a") + "b";`},
				codegen.TargetJava: {`String s = "a" + "b";`},
			},
		},
	}

	for _, tt := range tests {
		for target, lines := range tt.want {
			t.Run(tt.name+"/"+target.String(), func(t *testing.T) {
				res := Convert(tt.src, target)
				require.True(t, res.OK, "error: %v", res.Err())
				require.NoError(t, res.Err())
				assert.Nil(t, res.Error)
				assert.Equal(t, target, res.Target)
				assert.NotEmpty(t, res.IRHash)
				for _, line := range lines {
					assert.Contains(t, res.Code, line)
				}
			})
		}
	}
}

func TestConvertErrorKinds(t *testing.T) {
	tests := []struct {
		name      string
		src       string
		target    codegen.Target
		kind      Kind
		code      string
		line      int
		construct string
		symbol    string
	}{
		{"syntax", "x = (1 +\n", codegen.TargetC, KindSyntax, syntax.ErrUnterminated, 1, "", ""},
		{"indentation", "if True:\nprint(1)\n", codegen.TargetC, KindSyntax, syntax.ErrIndentation, 2, "", ""},
		{"function definition", "def f():\n    pass\n", codegen.TargetJava, KindUnsupported, compiler.ErrUnsupportedStatement, 1, "function definition", ""},
		{"list literal", "x = 1\ny = [1, 2]\n", codegen.TargetCPP, KindUnsupported, compiler.ErrUnsupportedExpression, 2, "list", ""},
		{"type conflict", "x = 1\nx = \"s\"\n", codegen.TargetC, KindType, resolver.ErrTypeConflict, 2, "", "x"},
		{"undefined", "print(y)\n", codegen.TargetC, KindType, resolver.ErrUndefinedVariable, 1, "", "y"},
		{"unknown target", "x = 1\n", codegen.Target("rust"), KindCodeGen, codegen.ErrUnknownTarget, 0, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Convert(tt.src, tt.target)
			assert.False(t, res.OK)
			assert.Empty(t, res.Code)
			require.NotNil(t, res.Error)
			assert.Equal(t, tt.kind, res.Error.Kind)
			assert.Equal(t, tt.code, res.Error.Code)
			assert.Equal(t, tt.line, res.Error.Pos.Line)
			assert.Equal(t, tt.construct, res.Error.Construct)
			assert.Equal(t, tt.symbol, res.Error.Symbol)
			assert.NotEmpty(t, res.Error.Message)

			var cerr *ConversionError
			require.ErrorAs(t, res.Err(), &cerr)
			assert.Same(t, res.Error, cerr)
		})
	}
}

func TestConvertAcceptsTargetAliases(t *testing.T) {
	res := Convert("x = 1\n", codegen.Target("C++"))
	require.True(t, res.OK)
	assert.Equal(t, codegen.TargetCPP, res.Target)
	assert.Contains(t, res.Code, "#include <iostream>")
}

func TestConvertCarriesWarnings(t *testing.T) {
	res := Convert("x = 7 / 2\nprint(x)\n", codegen.TargetJava)
	require.True(t, res.OK)
	require.Len(t, res.Warnings, 1)
	assert.Equal(t, resolver.WarnIntDivision, res.Warnings[0].Code)
}

func TestConvertIRHashIsTargetIndependent(t *testing.T) {
	src := "n = 3\nwhile n > 0:\n    print(n)\n    n = n - 1\n"
	c := Convert(src, codegen.TargetC)
	java := Convert(src, codegen.TargetJava)
	require.True(t, c.OK)
	require.True(t, java.OK)
	assert.Equal(t, c.IRHash, java.IRHash)
	assert.NotEqual(t, c.Code, java.Code)
	assert.NotEqual(t, c.ID, java.ID)
}

func TestConvertErrorString(t *testing.T) {
	res := Convert("count = 0\ncount = \"many\"\n", codegen.TargetC)
	require.Error(t, res.Err())
	assert.Equal(t,
		"TypeError [E401] 2:1: cannot assign String to 'count': it was first assigned Int at 1:1",
		res.Err().Error())
}

func TestResultJSON(t *testing.T) {
	p := NewPipeline(WithIDGenerator(NewFixedGenerator("conv-1", "conv-2")))

	ok := p.Convert(context.Background(), "x = 1\n", codegen.TargetC)
	data, err := json.Marshal(ok)
	require.NoError(t, err)
	var got map[string]any
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, "conv-1", got["id"])
	assert.Equal(t, true, got["ok"])
	assert.Equal(t, "c", got["target"])
	assert.NotContains(t, got, "error")

	bad := p.Convert(context.Background(), "x = 1\nx = True\n", codegen.TargetC)
	data, err = json.Marshal(bad)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"id": "conv-2",
		"target": "c",
		"ok": false,
		"error": {
			"kind": "TypeError",
			"code": "E401",
			"message": "cannot assign Bool to 'x': it was first assigned Int at 1:1",
			"position": {"line": 2, "col": 1},
			"symbol": "x"
		}
	}`, string(data))
}

func TestConvertRecoversPanics(t *testing.T) {
	p := NewPipeline(WithTracer(noop.NewTracerProvider().Tracer("test")))
	p.generate = func(codegen.Target, *resolver.Program) (string, error) {
		panic("boom")
	}

	res := p.Convert(context.Background(), "x = 1\n", codegen.TargetC)
	assert.False(t, res.OK)
	assert.Empty(t, res.Code)
	require.NotNil(t, res.Error)
	assert.Equal(t, KindCodeGen, res.Error.Kind)
	assert.Equal(t, codegen.ErrInternal, res.Error.Code)
	assert.Contains(t, res.Error.Message, "boom")
	assert.Empty(t, res.Warnings)
}

func TestConvertLogsOutcome(t *testing.T) {
	var buf bytes.Buffer
	ctx := log.Context(context.Background(),
		log.WithOutput(&buf),
		log.WithFormat(log.FormatJSON),
		log.WithDebug(),
	)
	p := NewPipeline(WithIDGenerator(NewFixedGenerator("conv-log")))

	res := p.Convert(ctx, "def f():\n    pass\n", codegen.TargetJava)
	require.False(t, res.OK)

	out := buf.String()
	assert.Contains(t, out, "conversion finished")
	assert.Contains(t, out, "conv-log")
	assert.Contains(t, out, "E301")
}

func TestAnalyzeAndLower(t *testing.T) {
	p := NewPipeline()

	rp, err := p.Analyze(context.Background(), "x = 1.5\nprint(x)\n")
	require.NoError(t, err)
	require.Len(t, rp.Symbols, 1)
	assert.Equal(t, "x", rp.Symbols[0].Name)

	prog, err := p.Lower(context.Background(), "x = 1\ny = x\n")
	require.NoError(t, err)
	assert.Len(t, prog.Statements, 2)

	_, err = p.Analyze(context.Background(), "print(z)\n")
	var cerr *ConversionError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, KindType, cerr.Kind)

	_, err = p.Lower(context.Background(), "import os\n")
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, KindUnsupported, cerr.Kind)
	assert.Equal(t, "import", cerr.Construct)
}

func TestConvertConcurrent(t *testing.T) {
	srcs := []string{
		"x = 5\nprint(x)\n",
		"total = 0\nfor i in range(1, 6):\n    total = total + i\nprint(total)\n",
		"s = \"a\" + \"b\"\nprint(s)\n",
		"x = 1\nx = \"s\"\n",
	}
	want := make([]Result, len(srcs))
	for i, src := range srcs {
		want[i] = Convert(src, codegen.TargetJava)
	}

	p := NewPipeline()
	var wg sync.WaitGroup
	for range 8 {
		for i, src := range srcs {
			wg.Add(1)
			go func() {
				defer wg.Done()
				got := p.Convert(context.Background(), src, codegen.TargetJava)
				assert.Equal(t, want[i].OK, got.OK)
				assert.Equal(t, want[i].Code, got.Code)
			}()
		}
	}
	wg.Wait()
}

func TestFixedGenerator(t *testing.T) {
	g := NewFixedGenerator("a", "b")
	assert.Equal(t, "a", g.Generate())
	assert.Equal(t, "b", g.Generate())
	assert.Panics(t, func() { g.Generate() })
}

func TestUUIDv7Generator(t *testing.T) {
	var g UUIDv7Generator
	a, b := g.Generate(), g.Generate()
	assert.Len(t, a, 36)
	assert.NotEqual(t, a, b)
}
