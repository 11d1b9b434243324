// Package compiler builds the IR from a parsed syntax tree.
//
// The syntax tree admits most of the source language; Build accepts the
// closed subset the code generators can express and rejects everything
// else with an UnsupportedConstructError at the offending node. Nothing is
// skipped or partially translated.
package compiler

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/roach88/pyxlate/internal/ir"
	"github.com/roach88/pyxlate/internal/source"
	"github.com/roach88/pyxlate/internal/syntax"
)

// Build lowers a module to an IR program. Statement order is preserved
// exactly; the first unsupported construct stops the build.
func Build(mod *syntax.Module) (*ir.Program, error) {
	if mod == nil {
		return nil, fmt.Errorf("compiler: nil module")
	}
	var stmts []ir.Stmt
	for _, s := range mod.Body {
		// A top-level `if __name__ == "__main__":` guard is translated as
		// its body in place.
		if body, ok := mainGuard(s); ok {
			inner, err := buildStmts(body)
			if err != nil {
				return nil, err
			}
			stmts = append(stmts, inner...)
			continue
		}
		st, err := buildStmt(s)
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, st)
	}
	return &ir.Program{Statements: stmts}, nil
}

func mainGuard(s syntax.Stmt) ([]syntax.Stmt, bool) {
	ifs, ok := s.(*syntax.IfStmt)
	if !ok || len(ifs.Else) > 0 {
		return nil, false
	}
	cmp, ok := ifs.Cond.(*syntax.CompareExpr)
	if !ok || len(cmp.Ops) != 1 || cmp.Ops[0] != "==" {
		return nil, false
	}
	name, ok := cmp.X.(*syntax.Name)
	if !ok || name.ID != "__name__" {
		return nil, false
	}
	lit, ok := cmp.Ys[0].(*syntax.StringLit)
	if !ok || lit.Value != "__main__" {
		return nil, false
	}
	return ifs.Body, true
}

func buildStmts(body []syntax.Stmt) ([]ir.Stmt, error) {
	out := make([]ir.Stmt, 0, len(body))
	for _, s := range body {
		st, err := buildStmt(s)
		if err != nil {
			return nil, err
		}
		out = append(out, st)
	}
	return out, nil
}

func buildStmt(s syntax.Stmt) (ir.Stmt, error) {
	switch s := s.(type) {
	case *syntax.AssignStmt:
		return buildAssign(s)

	case *syntax.AugAssignStmt:
		return nil, unsupported(ErrUnsupportedAssignment, s.Pos(), fmt.Sprintf("augmented assignment (%s)", s.Op))

	case *syntax.AnnAssignStmt:
		return nil, unsupported(ErrUnsupportedAssignment, s.Pos(), "annotated assignment")

	case *syntax.ExprStmt:
		return buildExprStmt(s)

	case *syntax.IfStmt:
		cond, err := buildExpr(s.Cond)
		if err != nil {
			return nil, err
		}
		then, err := buildStmts(s.Body)
		if err != nil {
			return nil, err
		}
		node := &ir.If{Position: s.Pos(), Cond: cond, Then: then}
		if len(s.Else) > 0 {
			if node.Else, err = buildStmts(s.Else); err != nil {
				return nil, err
			}
		}
		return node, nil

	case *syntax.ForStmt:
		return buildFor(s)

	case *syntax.WhileStmt:
		if len(s.Else) > 0 {
			return nil, unsupported(ErrUnsupportedLoop, s.Pos(), "while-else clause")
		}
		cond, err := buildExpr(s.Cond)
		if err != nil {
			return nil, err
		}
		body, err := buildStmts(s.Body)
		if err != nil {
			return nil, err
		}
		return &ir.While{Position: s.Pos(), Cond: cond, Body: body}, nil

	case *syntax.KeywordStmt:
		return nil, unsupported(ErrUnsupportedStatement, s.Pos(), keywordConstruct(s.Keyword))

	case *syntax.BlockStmt:
		return nil, unsupported(ErrUnsupportedStatement, s.Pos(), blockConstruct(s.Keyword))

	default:
		return nil, unsupported(ErrUnsupportedStatement, s.Pos(), fmt.Sprintf("statement %T", s))
	}
}

func keywordConstruct(kw string) string {
	switch kw {
	case "import", "from":
		return "import"
	case "pass", "break", "continue", "return", "del", "global",
		"nonlocal", "raise", "assert", "yield", "await":
		return fmt.Sprintf("'%s' statement", kw)
	}
	return fmt.Sprintf("'%s'", kw)
}

func blockConstruct(kw string) string {
	switch kw {
	case "def":
		return "function definition"
	case "class":
		return "class definition"
	case "try":
		return "exception handling (try)"
	case "with":
		return "'with' statement"
	case "async":
		return "async definition"
	case "@":
		return "decorated definition"
	}
	return fmt.Sprintf("'%s' block", kw)
}

func buildAssign(s *syntax.AssignStmt) (ir.Stmt, error) {
	if len(s.Targets) != 1 {
		return nil, unsupported(ErrUnsupportedAssignment, s.Pos(), "multiple-target assignment")
	}
	name, ok := s.Targets[0].(*syntax.Name)
	if !ok {
		return nil, unsupported(ErrUnsupportedAssignment, s.Targets[0].Pos(), targetConstruct(s.Targets[0]))
	}
	value, err := buildExpr(s.Value)
	if err != nil {
		return nil, err
	}
	return &ir.Assign{Position: name.Pos(), Name: name.ID, Value: value}, nil
}

func targetConstruct(e syntax.Expr) string {
	switch e.(type) {
	case *syntax.TupleExpr, *syntax.CollectionExpr:
		return "unpacking assignment"
	case *syntax.AttributeExpr:
		return "attribute assignment"
	case *syntax.SubscriptExpr:
		return "subscript assignment"
	}
	return "assignment to " + describe(e)
}

func buildExprStmt(s *syntax.ExprStmt) (ir.Stmt, error) {
	call, ok := s.X.(*syntax.CallExpr)
	if !ok {
		return nil, unsupported(ErrUnsupportedStatement, s.Pos(), "expression statement")
	}
	fn, ok := call.Fun.(*syntax.Name)
	if !ok || fn.ID != "print" {
		return nil, unsupported(ErrUnsupportedCall, call.Pos(), "call to "+callee(call))
	}
	if call.Keywords > 0 {
		return nil, unsupported(ErrUnsupportedCall, call.Pos(), "print() with keyword arguments")
	}
	if len(call.Args) != 1 {
		return nil, &UnsupportedConstructError{
			Code:      ErrUnsupportedCall,
			Construct: fmt.Sprintf("print() with %d arguments", len(call.Args)),
			Message:   fmt.Sprintf("print() takes exactly one argument (%d given)", len(call.Args)),
			Pos:       call.Pos(),
		}
	}
	value, err := buildExpr(call.Args[0])
	if err != nil {
		return nil, err
	}
	return &ir.Print{Position: call.Pos(), Value: value}, nil
}

func buildFor(s *syntax.ForStmt) (ir.Stmt, error) {
	if len(s.Else) > 0 {
		return nil, unsupported(ErrUnsupportedLoop, s.Pos(), "for-else clause")
	}
	target, ok := s.Target.(*syntax.Name)
	if !ok {
		return nil, unsupported(ErrUnsupportedLoop, s.Target.Pos(), "loop target unpacking")
	}
	call, ok := s.Iter.(*syntax.CallExpr)
	if !ok {
		return nil, unsupported(ErrUnsupportedLoop, s.Iter.Pos(), "iteration over "+describe(s.Iter))
	}
	if fn, ok := call.Fun.(*syntax.Name); !ok || fn.ID != "range" {
		return nil, unsupported(ErrUnsupportedLoop, s.Iter.Pos(), "iteration over "+callee(call))
	}
	if call.Keywords > 0 || len(call.Args) == 0 || len(call.Args) > 3 {
		return nil, &UnsupportedConstructError{
			Code:      ErrUnsupportedLoop,
			Construct: fmt.Sprintf("range() with %d arguments", len(call.Args)+call.Keywords),
			Message:   "range() takes one to three positional arguments",
			Pos:       call.Pos(),
		}
	}

	args := make([]ir.Expr, len(call.Args))
	for i, a := range call.Args {
		e, err := buildExpr(a)
		if err != nil {
			return nil, err
		}
		args[i] = e
	}
	node := &ir.ForRange{
		Position: s.Pos(),
		Var:      target.ID,
		Start:    ir.IntLit(call.Pos(), 0),
		Step:     ir.IntLit(call.Pos(), 1),
	}
	switch len(args) {
	case 1:
		node.End = args[0]
	case 2:
		node.Start, node.End = args[0], args[1]
	case 3:
		node.Start, node.End, node.Step = args[0], args[1], args[2]
	}

	body, err := buildStmts(s.Body)
	if err != nil {
		return nil, err
	}
	node.Body = body
	return node, nil
}

func buildExpr(e syntax.Expr) (ir.Expr, error) {
	switch e := e.(type) {
	case *syntax.Name:
		return &ir.VarRef{Position: e.Pos(), Name: e.ID}, nil

	case *syntax.IntLit:
		v, err := strconv.ParseInt(e.Text, 0, 64)
		if err != nil || v > math.MaxInt32 {
			return nil, &UnsupportedConstructError{
				Code:      ErrUnsupportedLiteral,
				Construct: "integer literal " + e.Text,
				Message:   fmt.Sprintf("integer literal %s does not fit in 32 bits", e.Text),
				Pos:       e.Pos(),
			}
		}
		return ir.IntLit(e.Pos(), v), nil

	case *syntax.FloatLit:
		v, err := strconv.ParseFloat(e.Text, 64)
		if err != nil {
			return nil, &UnsupportedConstructError{
				Code:      ErrUnsupportedLiteral,
				Construct: "float literal " + e.Text,
				Message:   fmt.Sprintf("float literal %s is out of range", e.Text),
				Pos:       e.Pos(),
			}
		}
		return ir.FloatLit(e.Pos(), v), nil

	case *syntax.StringLit:
		switch {
		case strings.ContainsRune(e.Prefix, 'f'):
			return nil, unsupported(ErrUnsupportedLiteral, e.Pos(), "f-string")
		case strings.ContainsRune(e.Prefix, 'b'):
			return nil, unsupported(ErrUnsupportedLiteral, e.Pos(), "bytes literal")
		}
		return ir.StringLit(e.Pos(), e.Value), nil

	case *syntax.BoolLit:
		return ir.BoolLit(e.Pos(), e.Value), nil

	case *syntax.NoneLit:
		return nil, unsupported(ErrUnsupportedLiteral, e.Pos(), "None")

	case *syntax.BinaryExpr:
		op, ok := ir.ParseOp(e.Op)
		if !ok || op.IsComparison() {
			return nil, unsupported(ErrUnsupportedOperator, e.Pos(), fmt.Sprintf("operator '%s'", e.Op))
		}
		return buildBinary(e.Pos(), op, e.X, e.Y)

	case *syntax.CompareExpr:
		if len(e.Ops) > 1 {
			return nil, unsupported(ErrUnsupportedOperator, e.Pos(), "chained comparison")
		}
		op, ok := ir.ParseOp(e.Ops[0])
		if !ok || !op.IsComparison() {
			return nil, unsupported(ErrUnsupportedOperator, e.Pos(), fmt.Sprintf("operator '%s'", e.Ops[0]))
		}
		return buildBinary(e.Pos(), op, e.X, e.Ys[0])

	case *syntax.UnaryExpr:
		var op ir.UnaryOp
		switch e.Op {
		case "-":
			op = ir.Neg
		case "not":
			op = ir.Not
		default:
			return nil, unsupported(ErrUnsupportedOperator, e.Pos(), fmt.Sprintf("unary operator '%s'", e.Op))
		}
		operand, err := buildExpr(e.X)
		if err != nil {
			return nil, err
		}
		return &ir.Unary{Position: e.Pos(), Op: op, Operand: operand}, nil

	case *syntax.CallExpr:
		return nil, unsupported(ErrUnsupportedCall, e.Pos(), "call to "+callee(e))

	case nil:
		return nil, errors.New("compiler: missing expression")

	default:
		return nil, unsupported(ErrUnsupportedExpression, e.Pos(), describe(e))
	}
}

func buildBinary(pos source.Pos, op ir.Op, x, y syntax.Expr) (ir.Expr, error) {
	left, err := buildExpr(x)
	if err != nil {
		return nil, err
	}
	right, err := buildExpr(y)
	if err != nil {
		return nil, err
	}
	return &ir.BinaryOp{Position: pos, Op: op, Left: left, Right: right}, nil
}

// describe names an expression form for error messages.
func describe(e syntax.Expr) string {
	switch e := e.(type) {
	case *syntax.Name:
		return fmt.Sprintf("name '%s'", e.ID)
	case *syntax.CollectionExpr:
		return e.Kind
	case *syntax.TupleExpr:
		return "tuple"
	case *syntax.LambdaExpr:
		return "lambda expression"
	case *syntax.TernaryExpr:
		return "conditional expression"
	case *syntax.AttributeExpr:
		return "attribute access"
	case *syntax.SubscriptExpr:
		return "subscript"
	case *syntax.CallExpr:
		return callee(e)
	case *syntax.StringLit:
		return "string"
	case *syntax.IntLit, *syntax.FloatLit, *syntax.BoolLit, *syntax.NoneLit:
		return "literal"
	}
	return "expression"
}

func callee(c *syntax.CallExpr) string {
	switch fn := c.Fun.(type) {
	case *syntax.Name:
		return fn.ID + "()"
	case *syntax.AttributeExpr:
		return "method ." + fn.Name + "()"
	}
	return "call expression"
}
