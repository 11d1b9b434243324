// Package source holds the position type shared by every pipeline stage.
package source

import "fmt"

// Pos is a 1-based line/column location in the input text.
// The zero Pos means "no position".
type Pos struct {
	Line int `json:"line"`
	Col  int `json:"col"`
}

// IsValid reports whether p points into the input.
func (p Pos) IsValid() bool {
	return p.Line > 0
}

func (p Pos) String() string {
	if !p.IsValid() {
		return "-"
	}
	return fmt.Sprintf("%d:%d", p.Line, p.Col)
}
