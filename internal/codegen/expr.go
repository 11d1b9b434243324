package codegen

import (
	"strconv"
	"strings"

	"github.com/roach88/pyxlate/internal/ir"
	"github.com/roach88/pyxlate/internal/source"
)

// Binding strength of rendered expressions. The three targets agree on the
// relative order of every operator the IR can hold.
const (
	precOr = iota + 1
	precAnd
	precEquality
	precRelational
	precAdditive
	precMultiplicative
	precUnary
	precPrimary
)

// fragment is a rendered expression with the precedence of its outermost
// operator.
type fragment struct {
	text string
	prec int
	// literal marks a string literal, which some targets treat
	// differently from a string value.
	literal bool
}

var binaryTokens = map[ir.Op]struct {
	text string
	prec int
}{
	ir.Add: {"+", precAdditive},
	ir.Sub: {"-", precAdditive},
	ir.Mul: {"*", precMultiplicative},
	ir.Div: {"/", precMultiplicative},
	ir.Mod: {"%", precMultiplicative},
	ir.Eq:  {"==", precEquality},
	ir.Ne:  {"!=", precEquality},
	ir.Lt:  {"<", precRelational},
	ir.Le:  {"<=", precRelational},
	ir.Gt:  {">", precRelational},
	ir.Ge:  {">=", precRelational},
	ir.And: {"&&", precAnd},
	ir.Or:  {"||", precOr},
}

func isComparisonPrec(p int) bool {
	return p == precEquality || p == precRelational
}

// wrap renders f as an operand of an operator with precedence parent.
// Besides what precedence demands, right operands of equal precedence,
// comparisons nested in comparisons and && under || get parentheses.
func wrap(f fragment, parent int, right bool) string {
	switch {
	case f.prec < parent,
		right && f.prec == parent,
		isComparisonPrec(parent) && isComparisonPrec(f.prec),
		parent == precOr && f.prec == precAnd:
		return "(" + f.text + ")"
	}
	return f.text
}

// infix joins two operands with a binary operator token.
func infix(l fragment, token string, prec int, r fragment) fragment {
	return fragment{
		text: wrap(l, prec, false) + " " + token + " " + wrap(r, prec, true),
		prec: prec,
	}
}

func (g *generator) expr(e ir.Expr) (fragment, error) {
	switch e := e.(type) {
	case *ir.Literal:
		return g.literal(e)

	case *ir.VarRef:
		name, ok := g.names[e.Name]
		if !ok {
			return fragment{}, errorf(ErrMissingType, e.Pos(), "variable '%s' has no symbol", e.Name)
		}
		return fragment{text: name, prec: precPrimary}, nil

	case *ir.Unary:
		x, err := g.expr(e.Operand)
		if err != nil {
			return fragment{}, err
		}
		op := "-"
		if e.Op == ir.Not {
			op = "!"
		} else if e.Op != ir.Neg {
			return fragment{}, errorf(ErrUnknownNode, e.Pos(), "unsupported unary operator: %s", e.Op)
		}
		return fragment{text: op + wrap(x, precPrimary, false), prec: precUnary}, nil

	case *ir.BinaryOp:
		tok, ok := binaryTokens[e.Op]
		if !ok {
			return fragment{}, errorf(ErrUnknownNode, e.Pos(), "unsupported operator: %s", e.Op)
		}
		l, err := g.expr(e.Left)
		if err != nil {
			return fragment{}, err
		}
		r, err := g.expr(e.Right)
		if err != nil {
			return fragment{}, err
		}
		lt, err := g.typeOf(e.Left)
		if err != nil {
			return fragment{}, err
		}
		if e.Op == ir.Mod {
			return g.d.mod(l, r), nil
		}
		if lt == ir.String {
			switch {
			case e.Op == ir.Add:
				return g.d.concat(l, r), nil
			case e.Op.IsComparison():
				return g.d.compare(e.Op, l, r), nil
			}
		}
		return infix(l, tok.text, tok.prec, r), nil

	case nil:
		return fragment{}, errorf(ErrUnknownNode, source.Pos{}, "missing expression")

	default:
		return fragment{}, errorf(ErrUnknownNode, e.Pos(), "unsupported expression type: %T", e)
	}
}

func (g *generator) literal(lit *ir.Literal) (fragment, error) {
	var text string
	switch lit.Kind {
	case ir.Int:
		text = strconv.FormatInt(lit.Int, 10)
	case ir.Float:
		text = formatFloat(lit.Float)
	case ir.Bool:
		text = strconv.FormatBool(lit.Bool)
	case ir.String:
		return fragment{text: g.d.quote(lit.Str), prec: precPrimary, literal: true}, nil
	default:
		return fragment{}, errorf(ErrMissingType, lit.Pos(), "literal with invalid kind %d", int(lit.Kind))
	}
	return fragment{text: text, prec: precPrimary}, nil
}

// formatFloat renders the shortest text that reads back as v, always
// with a fraction or exponent so the target sees a floating literal.
func formatFloat(v float64) string {
	s := strconv.FormatFloat(v, 'g', -1, 64)
	if !strings.ContainsAny(s, ".e") {
		s += ".0"
	}
	return s
}

// quoteString renders s as a double-quoted literal understood by C, C++
// and Java. Control characters use three-digit octal escapes so a
// following digit cannot extend them. With trigraphs set, a '?' after
// another '?' is escaped.
func quoteString(s string, trigraphs bool) string {
	var b strings.Builder
	b.WriteByte('"')
	prev := rune(0)
	for _, r := range s {
		switch {
		case r == '"':
			b.WriteString(`\"`)
		case r == '\\':
			b.WriteString(`\\`)
		case r == '\n':
			b.WriteString(`\n`)
		case r == '\t':
			b.WriteString(`\t`)
		case r == '\r':
			b.WriteString(`\r`)
		case r < 0x20 || r == 0x7f:
			b.WriteString(`\`)
			b.WriteString(octal3(r))
		case r == '?' && prev == '?' && trigraphs:
			b.WriteString(`\?`)
		default:
			b.WriteRune(r)
		}
		prev = r
	}
	b.WriteByte('"')
	return b.String()
}

func octal3(r rune) string {
	s := strconv.FormatInt(int64(r), 8)
	return strings.Repeat("0", 3-len(s)) + s
}
