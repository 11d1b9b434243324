package resolver

import (
	"github.com/roach88/pyxlate/internal/ir"
	"github.com/roach88/pyxlate/internal/source"
)

// Symbol is a symbol table entry. A name's type is fixed by its first
// assignment and shared by every later declaration of the same name.
type Symbol struct {
	Name        string     `json:"name"`
	Type        ir.Type    `json:"type"`
	FirstSeenAt source.Pos `json:"first_seen_at"`
}

// SymbolTable tracks the type of every name and which names are visible in
// the current block. It belongs to a single Resolve call.
type SymbolTable struct {
	types  map[string]*Symbol
	order  []string
	scopes []map[string]bool
}

// NewSymbolTable returns a table with the program's top-level scope open.
func NewSymbolTable() *SymbolTable {
	return &SymbolTable{
		types:  make(map[string]*Symbol),
		scopes: []map[string]bool{{}},
	}
}

// Push opens a block scope.
func (st *SymbolTable) Push() {
	st.scopes = append(st.scopes, map[string]bool{})
}

// Pop closes the innermost block scope. Names declared in it stop being
// visible; their types stay fixed.
func (st *SymbolTable) Pop() {
	if len(st.scopes) > 1 {
		st.scopes = st.scopes[:len(st.scopes)-1]
	}
}

// Visible reports whether name is declared in the current scope or an
// enclosing one.
func (st *SymbolTable) Visible(name string) bool {
	for i := len(st.scopes) - 1; i >= 0; i-- {
		if st.scopes[i][name] {
			return true
		}
	}
	return false
}

// Lookup returns the entry for name, visible or not.
func (st *SymbolTable) Lookup(name string) (Symbol, bool) {
	sym, ok := st.types[name]
	if !ok {
		return Symbol{}, false
	}
	return *sym, true
}

// Declare makes name visible in the innermost scope, recording its type on
// first sight.
func (st *SymbolTable) Declare(name string, t ir.Type, pos source.Pos) {
	if _, ok := st.types[name]; !ok {
		st.types[name] = &Symbol{Name: name, Type: t, FirstSeenAt: pos}
		st.order = append(st.order, name)
	}
	st.scopes[len(st.scopes)-1][name] = true
}

// Symbols returns every entry in first-seen order.
func (st *SymbolTable) Symbols() []Symbol {
	out := make([]Symbol, len(st.order))
	for i, name := range st.order {
		out[i] = *st.types[name]
	}
	return out
}
