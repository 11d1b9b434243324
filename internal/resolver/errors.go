package resolver

import (
	"fmt"

	"github.com/roach88/pyxlate/internal/ir"
	"github.com/roach88/pyxlate/internal/source"
)

// Type error codes (E400-E499).
const (
	ErrTypeConflict      = "E401" // name reassigned with an incompatible type
	ErrUndefinedVariable = "E402" // read before any visible assignment
	ErrOperandType       = "E403" // operator not defined for its operand types
	ErrConditionType     = "E404" // if/while condition is not Bool
	ErrRangeBound        = "E405" // range() argument is not Int
	ErrZeroStep          = "E406" // range() step is the constant zero
	ErrLoopVarAssigned   = "E407" // loop variable reassigned inside its own loop
)

// TypeError reports an expression whose type cannot satisfy its context.
// For a conflict, Symbol names the variable, Want is its fixed type and
// Have the type of the offending value.
type TypeError struct {
	Code    string     `json:"code"`
	Pos     source.Pos `json:"pos"`
	Symbol  string     `json:"symbol,omitempty"`
	Have    ir.Type    `json:"have,omitempty"`
	Want    ir.Type    `json:"want,omitempty"`
	Message string     `json:"message"`
}

func (e *TypeError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("[%s] %s: %s", e.Code, e.Pos, e.Message)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func typeErrorf(code string, pos source.Pos, format string, args ...any) *TypeError {
	return &TypeError{Code: code, Pos: pos, Message: fmt.Sprintf(format, args...)}
}

// Warning codes (W400-W499).
const (
	WarnIntDivision  = "W401" // Int / Int truncates
	WarnFloatFormat  = "W402" // printed Float goes through a generated formatter
	WarnInfiniteLoop = "W403" // while condition is constant true
)

// Warning flags a construct that translates but whose behavior in the
// targets may differ from the source language. Warnings never stop a
// conversion.
type Warning struct {
	Code    string     `json:"code"`
	Level   string     `json:"level"` // "warning" or "info"
	Pos     source.Pos `json:"pos"`
	Message string     `json:"message"`
}

func (w Warning) String() string {
	return fmt.Sprintf("%s: %s [%s]: %s", w.Pos, w.Level, w.Code, w.Message)
}
