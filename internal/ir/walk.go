package ir

// Inspect traverses stmts depth-first in source order, calling f for every
// statement and expression. Children of a node are skipped when f returns
// false for it.
func Inspect(stmts []Stmt, f func(Node) bool) {
	for _, s := range stmts {
		inspectStmt(s, f)
	}
}

func inspectStmt(s Stmt, f func(Node) bool) {
	if !f(s) {
		return
	}
	switch s := s.(type) {
	case *Assign:
		inspectExpr(s.Value, f)
	case *Print:
		inspectExpr(s.Value, f)
	case *If:
		inspectExpr(s.Cond, f)
		Inspect(s.Then, f)
		Inspect(s.Else, f)
	case *ForRange:
		inspectExpr(s.Start, f)
		inspectExpr(s.End, f)
		inspectExpr(s.Step, f)
		Inspect(s.Body, f)
	case *While:
		inspectExpr(s.Cond, f)
		Inspect(s.Body, f)
	}
}

func inspectExpr(e Expr, f func(Node) bool) {
	if e == nil || !f(e) {
		return
	}
	switch e := e.(type) {
	case *BinaryOp:
		inspectExpr(e.Left, f)
		inspectExpr(e.Right, f)
	case *Unary:
		inspectExpr(e.Operand, f)
	}
}

// ConstInt reports the value of e when it is an Int literal, possibly
// negated.
func ConstInt(e Expr) (int64, bool) {
	switch e := e.(type) {
	case *Literal:
		if e.Kind == Int {
			return e.Int, true
		}
	case *Unary:
		if e.Op == Neg {
			if v, ok := ConstInt(e.Operand); ok {
				return -v, true
			}
		}
	}
	return 0, false
}

// ConstBool reports the value of e when it is a Bool literal, possibly
// negated with not.
func ConstBool(e Expr) (bool, bool) {
	switch e := e.(type) {
	case *Literal:
		if e.Kind == Bool {
			return e.Bool, true
		}
	case *Unary:
		if e.Op == Not {
			if v, ok := ConstBool(e.Operand); ok {
				return !v, true
			}
		}
	}
	return false, false
}
