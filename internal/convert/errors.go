package convert

import (
	"errors"
	"fmt"

	"github.com/roach88/pyxlate/internal/codegen"
	"github.com/roach88/pyxlate/internal/compiler"
	"github.com/roach88/pyxlate/internal/resolver"
	"github.com/roach88/pyxlate/internal/source"
	"github.com/roach88/pyxlate/internal/syntax"
)

// Kind names the pipeline stage that rejected a program.
type Kind string

const (
	KindSyntax      Kind = "SyntaxError"
	KindUnsupported Kind = "UnsupportedConstructError"
	KindType        Kind = "TypeError"
	KindCodeGen     Kind = "CodeGenError"
)

// ConversionError is the structured failure carried by a Result.
type ConversionError struct {
	Kind    Kind       `json:"kind"`
	Code    string     `json:"code"`
	Message string     `json:"message"`
	Pos     source.Pos `json:"position"`

	// Construct is set for UnsupportedConstructError.
	Construct string `json:"construct,omitempty"`
	// Symbol is set for type errors about a variable.
	Symbol string `json:"symbol,omitempty"`
}

func (e *ConversionError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s [%s] %s: %s", e.Kind, e.Code, e.Pos, e.Message)
	}
	return fmt.Sprintf("%s [%s] %s", e.Kind, e.Code, e.Message)
}

// classify maps a stage error onto the conversion error taxonomy. Errors
// no stage claims are internal faults and count as CodeGenError.
func classify(err error) *ConversionError {
	var (
		synErr *syntax.Error
		ucErr  *compiler.UnsupportedConstructError
		tyErr  *resolver.TypeError
		cgErr  *codegen.Error
		cvErr  *ConversionError
	)
	switch {
	case errors.As(err, &cvErr):
		return cvErr
	case errors.As(err, &synErr):
		return &ConversionError{Kind: KindSyntax, Code: synErr.Code, Message: synErr.Msg, Pos: synErr.Pos}
	case errors.As(err, &ucErr):
		return &ConversionError{
			Kind:      KindUnsupported,
			Code:      ucErr.Code,
			Message:   ucErr.Message,
			Pos:       ucErr.Pos,
			Construct: ucErr.Construct,
		}
	case errors.As(err, &tyErr):
		return &ConversionError{
			Kind:    KindType,
			Code:    tyErr.Code,
			Message: tyErr.Message,
			Pos:     tyErr.Pos,
			Symbol:  tyErr.Symbol,
		}
	case errors.As(err, &cgErr):
		return &ConversionError{Kind: KindCodeGen, Code: cgErr.Code, Message: cgErr.Message, Pos: cgErr.Pos}
	default:
		return &ConversionError{Kind: KindCodeGen, Code: codegen.ErrInternal, Message: err.Error()}
	}
}
