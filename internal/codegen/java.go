package codegen

import (
	"github.com/roach88/pyxlate/internal/ir"
)

// javaDialect targets Java 8 and later. The program is the body of
// Main.main.
type javaDialect struct{}

var javaReserved = words(`
	abstract assert boolean break byte case catch char class const continue
	default do double else enum extends final finally float for goto if
	implements import instanceof int interface long native new package
	private protected public return short static strictfp super switch
	synchronized this throw throws transient try void volatile while true
	false null var yield record sealed permits _ args Main String System
	Math Double Integer java formatFloat`)

var javaTypes = map[ir.Type]string{
	ir.Int:    "int",
	ir.Float:  "double",
	ir.Bool:   "boolean",
	ir.String: "String",
}

func (javaDialect) conventions() Conventions {
	return Conventions{
		Target:    TargetJava,
		Language:  "Java (8+)",
		Extension: ".java",
		Types:     typeTable(javaTypes),
		Print:     `System.out.println(x); formatFloat(x) for Float, x ? "True" : "False" for Bool`,
		Concat:    "a + b",
		Compare:   "a.equals(b), !a.equals(b), a.compareTo(b) OP 0",
		Mod:       "Math.floorMod(a, b)",
		Float:     floatConvention,
		Loops:     "constant while conditions go through a boolean local",
	}
}

func (javaDialect) reserved(name string) bool { return javaReserved[name] }

func (javaDialect) typeName(t ir.Type) string { return javaTypes[t] }

func (javaDialect) quote(s string) string { return quoteString(s, false) }

func (javaDialect) prologue(e *Emitter, f features) {
	e.Line("public class Main {")
	e.Indent()
	if f.floats {
		emitJavaFloatFormatter(e)
	}
	e.Line("public static void main(String[] args) {")
	e.Indent()
}

func (javaDialect) epilogue(e *Emitter) {
	e.Dedent()
	e.Line("}")
	e.Dedent()
	e.Line("}")
}

func (javaDialect) print(v fragment, t ir.Type) string {
	if t == ir.Bool {
		return `System.out.println(` + v.text + ` ? "True" : "False");`
	}
	if t == ir.Float {
		return "System.out.println(formatFloat(" + v.text + "));"
	}
	return "System.out.println(" + v.text + ");"
}

func (javaDialect) concat(l, r fragment) fragment {
	return infix(l, "+", precAdditive, r)
}

func (javaDialect) mod(l, r fragment) fragment {
	return fragment{text: "Math.floorMod(" + l.text + ", " + r.text + ")", prec: precPrimary}
}

// Java rejects the body of while (false) and any statement after
// while (true) as unreachable.
func (javaDialect) rejectsConstantLoops() bool { return true }

func (javaDialect) compare(op ir.Op, l, r fragment) fragment {
	recv := wrap(l, precPrimary, false)
	switch op {
	case ir.Eq:
		return fragment{text: recv + ".equals(" + r.text + ")", prec: precPrimary}
	case ir.Ne:
		return fragment{text: "!" + recv + ".equals(" + r.text + ")", prec: precUnary}
	}
	tok := binaryTokens[op]
	call := fragment{text: recv + ".compareTo(" + r.text + ")", prec: precPrimary}
	return infix(call, tok.text, tok.prec, fragment{text: "0", prec: precPrimary})
}
