package ir

import "github.com/roach88/pyxlate/internal/source"

// Node is any IR node.
type Node interface {
	Pos() source.Pos
}

// Stmt is a sealed interface over the statement cases.
// Only Assign, Print, If, ForRange and While implement it.
type Stmt interface {
	Node
	stmt() // Sealed
}

// Expr is a sealed interface over the expression cases.
// Only BinaryOp, Unary, Literal and VarRef implement it.
// Expressions are pointers so passes can key side tables by node identity.
type Expr interface {
	Node
	expr() // Sealed
}

// Program is the root of a translation unit.
type Program struct {
	Statements []Stmt
}

// Assign binds Name to the value of Value.
type Assign struct {
	Position source.Pos
	Name     string
	Value    Expr
}

// Print writes the value of Value followed by a newline.
type Print struct {
	Position source.Pos
	Value    Expr
}

// If is a two-way conditional. A nil Else means the alternative is absent;
// an elif chain is a nested If as the only statement of Else.
type If struct {
	Position source.Pos
	Cond     Expr
	Then     []Stmt
	Else     []Stmt
}

// ForRange counts Var from Start towards End (exclusive) by Step.
type ForRange struct {
	Position source.Pos
	Var      string
	Start    Expr
	End      Expr
	Step     Expr
	Body     []Stmt
}

// While repeats Body while Cond holds.
type While struct {
	Position source.Pos
	Cond     Expr
	Body     []Stmt
}

func (s *Assign) Pos() source.Pos   { return s.Position }
func (s *Print) Pos() source.Pos    { return s.Position }
func (s *If) Pos() source.Pos       { return s.Position }
func (s *ForRange) Pos() source.Pos { return s.Position }
func (s *While) Pos() source.Pos    { return s.Position }

func (*Assign) stmt()   {}
func (*Print) stmt()    {}
func (*If) stmt()       {}
func (*ForRange) stmt() {}
func (*While) stmt()    {}

// BinaryOp applies Op to Left and Right. Position is the operator's.
type BinaryOp struct {
	Position source.Pos
	Op       Op
	Left     Expr
	Right    Expr
}

// Unary applies a prefix operator to Operand.
type Unary struct {
	Position source.Pos
	Op       UnaryOp
	Operand  Expr
}

// Literal is a constant. Only the field selected by Kind is meaningful.
type Literal struct {
	Position source.Pos
	Kind     Type
	Int      int64
	Float    float64
	Bool     bool
	Str      string
}

// VarRef reads the variable Name.
type VarRef struct {
	Position source.Pos
	Name     string
}

func (e *BinaryOp) Pos() source.Pos { return e.Position }
func (e *Unary) Pos() source.Pos    { return e.Position }
func (e *Literal) Pos() source.Pos  { return e.Position }
func (e *VarRef) Pos() source.Pos   { return e.Position }

func (*BinaryOp) expr() {}
func (*Unary) expr()    {}
func (*Literal) expr()  {}
func (*VarRef) expr()   {}

// IntLit creates an Int literal.
func IntLit(pos source.Pos, v int64) *Literal {
	return &Literal{Position: pos, Kind: Int, Int: v}
}

// FloatLit creates a Float literal.
func FloatLit(pos source.Pos, v float64) *Literal {
	return &Literal{Position: pos, Kind: Float, Float: v}
}

// BoolLit creates a Bool literal.
func BoolLit(pos source.Pos, v bool) *Literal {
	return &Literal{Position: pos, Kind: Bool, Bool: v}
}

// StringLit creates a String literal.
func StringLit(pos source.Pos, v string) *Literal {
	return &Literal{Position: pos, Kind: String, Str: v}
}
