package codegen

import (
	"fmt"
	"strings"
)

const indentUnit = "    "

// Emitter assembles generated source line by line, tracking the current
// indentation depth.
type Emitter struct {
	buf   strings.Builder
	depth int
}

// NewEmitter returns an empty emitter at depth zero.
func NewEmitter() *Emitter {
	return &Emitter{}
}

// Line writes one indented line. With args the text is a format string.
func (e *Emitter) Line(text string, args ...any) {
	if len(args) > 0 {
		text = fmt.Sprintf(text, args...)
	}
	for range e.depth {
		e.buf.WriteString(indentUnit)
	}
	e.buf.WriteString(text)
	e.buf.WriteByte('\n')
}

// Blank writes an empty line.
func (e *Emitter) Blank() {
	e.buf.WriteByte('\n')
}

// Indent moves subsequent lines one level in.
func (e *Emitter) Indent() {
	e.depth++
}

// Dedent moves subsequent lines one level out.
func (e *Emitter) Dedent() {
	if e.depth > 0 {
		e.depth--
	}
}

// Depth returns the current indentation level.
func (e *Emitter) Depth() int {
	return e.depth
}

// String returns everything written so far.
func (e *Emitter) String() string {
	return e.buf.String()
}
