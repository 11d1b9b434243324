package codegen

import (
	"github.com/roach88/pyxlate/internal/ir"
)

// cppDialect targets C++11 with iostream output and std::string values.
type cppDialect struct{}

var cppReserved = words(`
	alignas alignof and and_eq asm auto bitand bitor bool break case catch
	char char16_t char32_t class compl const constexpr const_cast continue
	decltype default delete do double dynamic_cast else enum explicit export
	extern false float for friend goto if inline int long mutable namespace
	new noexcept not not_eq nullptr operator or or_eq private protected
	public register reinterpret_cast return short signed sizeof static
	static_assert static_cast struct switch template this thread_local throw
	true try typedef typeid typename union unsigned using virtual void
	volatile wchar_t while xor xor_eq main std cout endl string floor_mod
	format_float snprintf strtod atoi strchr strcat`)

var cppTypes = map[ir.Type]string{
	ir.Int:    "int",
	ir.Float:  "double",
	ir.Bool:   "bool",
	ir.String: "string",
}

func (cppDialect) conventions() Conventions {
	return Conventions{
		Target:    TargetCPP,
		Language:  "C++ (C++11)",
		Extension: ".cpp",
		Types:     typeTable(cppTypes),
		Print:     `cout << x << endl; format_float(x) for Float, (x ? "True" : "False") for Bool`,
		Concat:    `a + b; string("a") + b when the left operand is a literal`,
		Compare:   "a OP b",
		Mod:       "floor_mod(a, b)",
		Float:     floatConvention,
	}
}

func (cppDialect) reserved(name string) bool { return cppReserved[name] }

func (cppDialect) typeName(t ir.Type) string { return cppTypes[t] }

func (cppDialect) quote(s string) string { return quoteString(s, true) }

func (cppDialect) prologue(e *Emitter, f features) {
	if f.floats {
		e.Line("#include <cstdio>")
		e.Line("#include <cstdlib>")
		e.Line("#include <cstring>")
	}
	e.Line("#include <iostream>")
	e.Line("#include <string>")
	e.Blank()
	e.Line("using namespace std;")
	e.Blank()
	if f.mod {
		emitFloorMod(e)
	}
	if f.floats {
		emitFloatFormatter(e, "static string format_float(double x) {", "char buf[40];")
	}
	e.Line("int main() {")
	e.Indent()
}

func (cppDialect) epilogue(e *Emitter) {
	e.Line("return 0;")
	e.Dedent()
	e.Line("}")
}

func (cppDialect) print(v fragment, t ir.Type) string {
	if t == ir.Bool {
		return `cout << (` + v.text + ` ? "True" : "False") << endl;`
	}
	if t == ir.Float {
		return "cout << format_float(" + v.text + ") << endl;"
	}
	// << binds looser than + and tighter than comparisons.
	return "cout << " + wrap(v, precAdditive, false) + " << endl;"
}

// asString lifts a string literal to a std::string so operators apply to
// the value instead of the array.
func asString(f fragment) fragment {
	if !f.literal {
		return f
	}
	return fragment{text: "string(" + f.text + ")", prec: precPrimary}
}

func (cppDialect) concat(l, r fragment) fragment {
	return infix(asString(l), "+", precAdditive, r)
}

func (cppDialect) mod(l, r fragment) fragment {
	return fragment{text: "floor_mod(" + l.text + ", " + r.text + ")", prec: precPrimary}
}

func (cppDialect) rejectsConstantLoops() bool { return false }

func (cppDialect) compare(op ir.Op, l, r fragment) fragment {
	tok := binaryTokens[op]
	if l.literal && r.literal {
		l = asString(l)
	}
	return infix(l, tok.text, tok.prec, r)
}
