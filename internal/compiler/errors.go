package compiler

import (
	"fmt"

	"github.com/roach88/pyxlate/internal/source"
)

// Unsupported construct codes (E300-E399).
const (
	ErrUnsupportedStatement  = "E301" // definitions, imports, exception handling, keyword statements
	ErrUnsupportedAssignment = "E302" // chained, unpacking, augmented, annotated assignment
	ErrUnsupportedCall       = "E303" // calls other than print and range, wrong print arity
	ErrUnsupportedLoop       = "E304" // non-range iteration, loop else clauses, unpacking targets
	ErrUnsupportedExpression = "E305" // collections, comprehensions, lambda, attributes, subscripts
	ErrUnsupportedOperator   = "E306" // //, **, bitwise, membership, identity, chained comparisons
	ErrUnsupportedLiteral    = "E307" // None, f-strings, bytes, out-of-range numbers
)

// UnsupportedConstructError reports a syntax form that parses but that the
// translator does not accept. Construct names the form in source-language
// terms ("function definition", "list comprehension").
type UnsupportedConstructError struct {
	Code      string     `json:"code"`
	Construct string     `json:"construct"`
	Message   string     `json:"message"`
	Pos       source.Pos `json:"pos"`
}

func (e *UnsupportedConstructError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("[%s] %s: %s", e.Code, e.Pos, e.Message)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func unsupported(code string, pos source.Pos, construct string) *UnsupportedConstructError {
	return &UnsupportedConstructError{
		Code:      code,
		Construct: construct,
		Message:   construct + " is not supported",
		Pos:       pos,
	}
}
