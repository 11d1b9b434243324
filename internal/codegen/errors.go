package codegen

import (
	"fmt"

	"github.com/roach88/pyxlate/internal/source"
)

// Code generation error codes (E500-E599).
const (
	ErrUnknownNode   = "E501" // IR node the generator has no case for
	ErrMissingType   = "E502" // expression or variable without a resolved type
	ErrUnknownTarget = "E503" // target selector not recognized
	ErrInternal      = "E504" // recovered panic inside the pipeline
)

// Error reports a failure to render a typed program. It indicates a bug
// in an earlier stage or a caller error, never a problem with the source
// program itself.
type Error struct {
	Code    string     `json:"code"`
	Pos     source.Pos `json:"pos"`
	Message string     `json:"message"`
}

func (e *Error) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("[%s] %s: %s", e.Code, e.Pos, e.Message)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func errorf(code string, pos source.Pos, format string, args ...any) *Error {
	return &Error{Code: code, Pos: pos, Message: fmt.Sprintf(format, args...)}
}
