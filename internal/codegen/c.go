package codegen

import (
	"github.com/roach88/pyxlate/internal/ir"
)

// cDialect targets C99 with the standard library only. Strings are
// read-only char pointers; concatenation goes through a small helper that
// is emitted only when a program uses it.
type cDialect struct{}

var cReserved = words(`
	auto break case char const continue default do double else enum extern
	float for goto if inline int long register restrict return short signed
	sizeof static struct switch typedef union unsigned void volatile while
	_Bool _Complex _Imaginary bool true false NULL main printf malloc strlen
	strcpy strcat strcmp str_concat floor_mod format_float snprintf strtod
	atoi strchr`)

var cTypes = map[ir.Type]string{
	ir.Int:    "int",
	ir.Float:  "double",
	ir.Bool:   "bool",
	ir.String: "const char *",
}

func (cDialect) conventions() Conventions {
	return Conventions{
		Target:    TargetC,
		Language:  "C (C99)",
		Extension: ".c",
		Types:     typeTable(cTypes),
		Print:     `printf("%d\n", x); format_float(x) for Float, %s for String, x ? "True" : "False" for Bool`,
		Concat:    "str_concat(a, b)",
		Compare:   "strcmp(a, b) OP 0",
		Mod:       "floor_mod(a, b)",
		Float:     floatConvention,
	}
}

func (cDialect) reserved(name string) bool { return cReserved[name] }

func (cDialect) typeName(t ir.Type) string { return cTypes[t] }

func (cDialect) quote(s string) string { return quoteString(s, true) }

func (cDialect) prologue(e *Emitter, f features) {
	if f.bools {
		e.Line("#include <stdbool.h>")
	}
	e.Line("#include <stdio.h>")
	if f.concat || f.floats {
		e.Line("#include <stdlib.h>")
	}
	if f.concat || f.compare || f.floats {
		e.Line("#include <string.h>")
	}
	e.Blank()
	if f.concat {
		e.Line("static char *str_concat(const char *a, const char *b) {")
		e.Indent()
		e.Line("char *s = malloc(strlen(a) + strlen(b) + 1);")
		e.Line("strcpy(s, a);")
		e.Line("strcat(s, b);")
		e.Line("return s;")
		e.Dedent()
		e.Line("}")
		e.Blank()
	}
	if f.mod {
		emitFloorMod(e)
	}
	if f.floats {
		emitFloatFormatter(e, "static const char *format_float(double x) {", "static char buf[40];")
	}
	e.Line("int main(void) {")
	e.Indent()
}

func (cDialect) epilogue(e *Emitter) {
	e.Line("return 0;")
	e.Dedent()
	e.Line("}")
}

func (cDialect) print(v fragment, t ir.Type) string {
	switch t {
	case ir.Int:
		return `printf("%d\n", ` + v.text + ");"
	case ir.Float:
		return `printf("%s\n", format_float(` + v.text + "));"
	case ir.Bool:
		return `printf("%s\n", ` + v.text + ` ? "True" : "False");`
	default:
		return `printf("%s\n", ` + v.text + ");"
	}
}

func (cDialect) concat(l, r fragment) fragment {
	return fragment{text: "str_concat(" + l.text + ", " + r.text + ")", prec: precPrimary}
}

func (cDialect) mod(l, r fragment) fragment {
	return fragment{text: "floor_mod(" + l.text + ", " + r.text + ")", prec: precPrimary}
}

func (cDialect) rejectsConstantLoops() bool { return false }

func (cDialect) compare(op ir.Op, l, r fragment) fragment {
	tok := binaryTokens[op]
	call := fragment{text: "strcmp(" + l.text + ", " + r.text + ")", prec: precPrimary}
	return infix(call, tok.text, tok.prec, fragment{text: "0", prec: precPrimary})
}
