package syntax

import "github.com/roach88/pyxlate/internal/source"

// The syntax tree covers more of the source language than the translator
// supports. Forms the IR builder rejects still get a node of their own so
// the rejection can name the construct and point at it.

// Node is any syntax tree node.
type Node interface {
	Pos() source.Pos
}

// Stmt is a statement node. Sealed to this package.
type Stmt interface {
	Node
	stmtNode()
}

// Expr is an expression node. Sealed to this package.
type Expr interface {
	Node
	exprNode()
}

// Module is the root of a parsed file.
type Module struct {
	Body []Stmt
}

// AssignStmt is `t1 = t2 = ... = value`.
type AssignStmt struct {
	Position source.Pos
	Targets  []Expr
	Value    Expr
}

// AugAssignStmt is `target op= value`.
type AugAssignStmt struct {
	Position source.Pos
	Target   Expr
	Op       string // "+=", "-=", ...
	Value    Expr
}

// AnnAssignStmt is `target: annotation [= value]`.
type AnnAssignStmt struct {
	Position   source.Pos
	Target     Expr
	Annotation Expr
	Value      Expr // nil when absent
}

// ExprStmt is an expression evaluated for its effect.
type ExprStmt struct {
	Position source.Pos
	X        Expr
}

// IfStmt is `if cond: body [else: ...]`. An elif clause is an IfStmt with
// Elif set, stored as the only element of the outer Else.
type IfStmt struct {
	Position source.Pos
	Cond     Expr
	Body     []Stmt
	Else     []Stmt
	Elif     bool
}

// ForStmt is `for target in iter: body [else: ...]`.
type ForStmt struct {
	Position source.Pos
	Target   Expr
	Iter     Expr
	Body     []Stmt
	Else     []Stmt
}

// WhileStmt is `while cond: body [else: ...]`.
type WhileStmt struct {
	Position source.Pos
	Cond     Expr
	Body     []Stmt
	Else     []Stmt
}

// KeywordStmt is a simple statement introduced by a keyword (pass, break,
// return, import, ...). Its operands are skipped.
type KeywordStmt struct {
	Position source.Pos
	Keyword  string
}

// BlockStmt is a compound statement whose header and block are skipped:
// def, class, try, with, async and decorators.
type BlockStmt struct {
	Position source.Pos
	Keyword  string
}

func (s *AssignStmt) Pos() source.Pos    { return s.Position }
func (s *AugAssignStmt) Pos() source.Pos { return s.Position }
func (s *AnnAssignStmt) Pos() source.Pos { return s.Position }
func (s *ExprStmt) Pos() source.Pos      { return s.Position }
func (s *IfStmt) Pos() source.Pos        { return s.Position }
func (s *ForStmt) Pos() source.Pos       { return s.Position }
func (s *WhileStmt) Pos() source.Pos     { return s.Position }
func (s *KeywordStmt) Pos() source.Pos   { return s.Position }
func (s *BlockStmt) Pos() source.Pos     { return s.Position }

func (*AssignStmt) stmtNode()    {}
func (*AugAssignStmt) stmtNode() {}
func (*AnnAssignStmt) stmtNode() {}
func (*ExprStmt) stmtNode()      {}
func (*IfStmt) stmtNode()        {}
func (*ForStmt) stmtNode()       {}
func (*WhileStmt) stmtNode()     {}
func (*KeywordStmt) stmtNode()   {}
func (*BlockStmt) stmtNode()     {}

// Name is an identifier reference.
type Name struct {
	Position source.Pos
	ID       string
}

// IntLit keeps the literal spelling (base prefix kept, underscores removed).
type IntLit struct {
	Position source.Pos
	Text     string
}

// FloatLit keeps the literal spelling.
type FloatLit struct {
	Position source.Pos
	Text     string
}

// StringLit is one or more adjacent string literals, already concatenated.
type StringLit struct {
	Position source.Pos
	Value    string
	Prefix   string
}

type BoolLit struct {
	Position source.Pos
	Value    bool
}

type NoneLit struct {
	Position source.Pos
}

// BinaryExpr covers arithmetic, bitwise and boolean (and/or) operators.
type BinaryExpr struct {
	Position source.Pos // operator position
	Op       string
	X, Y     Expr
}

// UnaryExpr is "-", "+", "~" or "not" applied to X.
type UnaryExpr struct {
	Position source.Pos
	Op       string
	X        Expr
}

// CompareExpr is X op1 Y1 op2 Y2 ...; more than one op is a chain.
type CompareExpr struct {
	Position source.Pos
	X        Expr
	Ops      []string
	Ys       []Expr
}

// CallExpr is Fun(args...). Keywords counts keyword and star arguments.
type CallExpr struct {
	Position source.Pos
	Fun      Expr
	Args     []Expr
	Keywords int
}

type AttributeExpr struct {
	Position source.Pos
	X        Expr
	Name     string
}

// SubscriptExpr is X[...]; the index is not kept.
type SubscriptExpr struct {
	Position source.Pos
	X        Expr
}

type TupleExpr struct {
	Position source.Pos
	Elts     []Expr
}

// CollectionExpr is a bracketed display whose contents are not kept:
// list, dict, set, or one of the comprehension forms.
type CollectionExpr struct {
	Position source.Pos
	Kind     string
}

type LambdaExpr struct {
	Position source.Pos
}

// TernaryExpr is `Then if Cond else Else`.
type TernaryExpr struct {
	Position source.Pos
	Cond     Expr
	Then     Expr
	Else     Expr
}

func (e *Name) Pos() source.Pos           { return e.Position }
func (e *IntLit) Pos() source.Pos         { return e.Position }
func (e *FloatLit) Pos() source.Pos       { return e.Position }
func (e *StringLit) Pos() source.Pos      { return e.Position }
func (e *BoolLit) Pos() source.Pos        { return e.Position }
func (e *NoneLit) Pos() source.Pos        { return e.Position }
func (e *BinaryExpr) Pos() source.Pos     { return e.Position }
func (e *UnaryExpr) Pos() source.Pos      { return e.Position }
func (e *CompareExpr) Pos() source.Pos    { return e.Position }
func (e *CallExpr) Pos() source.Pos       { return e.Position }
func (e *AttributeExpr) Pos() source.Pos  { return e.Position }
func (e *SubscriptExpr) Pos() source.Pos  { return e.Position }
func (e *TupleExpr) Pos() source.Pos      { return e.Position }
func (e *CollectionExpr) Pos() source.Pos { return e.Position }
func (e *LambdaExpr) Pos() source.Pos     { return e.Position }
func (e *TernaryExpr) Pos() source.Pos    { return e.Position }

func (*Name) exprNode()           {}
func (*IntLit) exprNode()         {}
func (*FloatLit) exprNode()       {}
func (*StringLit) exprNode()      {}
func (*BoolLit) exprNode()        {}
func (*NoneLit) exprNode()        {}
func (*BinaryExpr) exprNode()     {}
func (*UnaryExpr) exprNode()      {}
func (*CompareExpr) exprNode()    {}
func (*CallExpr) exprNode()       {}
func (*AttributeExpr) exprNode()  {}
func (*SubscriptExpr) exprNode()  {}
func (*TupleExpr) exprNode()      {}
func (*CollectionExpr) exprNode() {}
func (*LambdaExpr) exprNode()     {}
func (*TernaryExpr) exprNode()    {}
