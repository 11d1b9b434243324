package syntax

import (
	"fmt"

	"github.com/roach88/pyxlate/internal/source"
)

// Syntax error codes (E200-E299).
const (
	ErrInvalidSyntax    = "E201" // token sequence the grammar does not accept
	ErrIndentation      = "E202" // missing, unexpected or inconsistent indentation
	ErrUnterminated     = "E203" // string or bracket left open
	ErrInvalidLiteral   = "E204" // malformed number or escape
	ErrInvalidCharacter = "E205" // character outside the token set
)

// Error is a scan or parse failure with the position where it was detected.
type Error struct {
	Code string
	Pos  source.Pos
	Msg  string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: syntax error: %s", e.Pos, e.Msg)
}

func errorf(code string, pos source.Pos, format string, args ...any) *Error {
	return &Error{Code: code, Pos: pos, Msg: fmt.Sprintf(format, args...)}
}
