// Package resolver assigns a static type to every variable and expression
// of an IR program in a single forward pass.
//
// Typing rules:
//   - Int op Int is Int for + - * / and %; a Float operand makes + - * /
//     Float; String + String is String
//   - Comparisons yield Bool and accept numeric pairs, String pairs, and
//     Bool pairs for == and != only
//   - and, or and not take and yield Bool; unary minus keeps a numeric type
//   - Conditions must be Bool; there is no numeric truthiness
//   - A name's type is fixed by its first assignment. Storing an Int into a
//     Float variable widens; any other mismatch is an error
//
// The IR is never modified. Results live in side tables keyed by node.
package resolver

import (
	"fmt"

	"github.com/roach88/pyxlate/internal/ir"
	"github.com/roach88/pyxlate/internal/source"
)

// Program is a resolved IR program.
type Program struct {
	IR *ir.Program

	// Types holds the type of every expression node.
	Types map[ir.Expr]ir.Type

	// Symbols lists every variable in first-seen order.
	Symbols []Symbol

	// Declares marks the Assign and ForRange statements that introduce
	// their variable into scope. Other assignments to the name are plain
	// stores.
	Declares map[ir.Stmt]bool

	Warnings []Warning

	symbols map[string]Symbol
}

// TypeOf returns the resolved type of e.
func (p *Program) TypeOf(e ir.Expr) (ir.Type, bool) {
	t, ok := p.Types[e]
	return t, ok
}

// Symbol returns the entry for name.
func (p *Program) Symbol(name string) (Symbol, bool) {
	sym, ok := p.symbols[name]
	return sym, ok
}

type resolver struct {
	table    *SymbolTable
	types    map[ir.Expr]ir.Type
	declares map[ir.Stmt]bool
	warnings []Warning
	loopVars []string // counters of the enclosing ForRange loops
}

// Resolve type-checks prog. The first error stops the pass.
func Resolve(prog *ir.Program) (*Program, error) {
	if prog == nil {
		return nil, fmt.Errorf("resolver: nil program")
	}
	r := &resolver{
		table:    NewSymbolTable(),
		types:    make(map[ir.Expr]ir.Type),
		declares: make(map[ir.Stmt]bool),
	}
	if err := r.stmts(prog.Statements); err != nil {
		return nil, err
	}

	syms := r.table.Symbols()
	byName := make(map[string]Symbol, len(syms))
	for _, s := range syms {
		byName[s.Name] = s
	}
	return &Program{
		IR:       prog,
		Types:    r.types,
		Symbols:  syms,
		Declares: r.declares,
		Warnings: r.warnings,
		symbols:  byName,
	}, nil
}

func (r *resolver) block(stmts []ir.Stmt) error {
	r.table.Push()
	defer r.table.Pop()
	return r.stmts(stmts)
}

func (r *resolver) stmts(stmts []ir.Stmt) error {
	for _, s := range stmts {
		if err := r.stmt(s); err != nil {
			return err
		}
	}
	return nil
}

func (r *resolver) stmt(s ir.Stmt) error {
	switch s := s.(type) {
	case *ir.Assign:
		t, err := r.expr(s.Value)
		if err != nil {
			return err
		}
		if err := r.checkLoopVar(s, s.Name); err != nil {
			return err
		}
		return r.assign(s, s.Name, t)

	case *ir.Print:
		t, err := r.expr(s.Value)
		if err != nil {
			return err
		}
		if t == ir.Float {
			r.warn(WarnFloatFormat, "info", s.Pos(),
				"printed Float text comes from a generated formatter; values the targets compute differently print differently")
		}
		return nil

	case *ir.If:
		if err := r.condition(s.Cond, "if"); err != nil {
			return err
		}
		if err := r.block(s.Then); err != nil {
			return err
		}
		if s.Else != nil {
			return r.block(s.Else)
		}
		return nil

	case *ir.ForRange:
		for _, bound := range []struct {
			name string
			e    ir.Expr
		}{{"start", s.Start}, {"stop", s.End}, {"step", s.Step}} {
			t, err := r.expr(bound.e)
			if err != nil {
				return err
			}
			if t != ir.Int {
				return &TypeError{
					Code:    ErrRangeBound,
					Pos:     bound.e.Pos(),
					Have:    t,
					Want:    ir.Int,
					Message: fmt.Sprintf("range() %s must be Int, got %s", bound.name, t),
				}
			}
		}
		if step, ok := ir.ConstInt(s.Step); ok && step == 0 {
			return typeErrorf(ErrZeroStep, s.Step.Pos(), "range() step must not be zero")
		}

		// Loop variables are Int; widening into an existing Float does not
		// apply here.
		if sym, ok := r.table.Lookup(s.Var); ok && sym.Type != ir.Int {
			return conflict(s, s.Var, ir.Int, sym)
		}
		if err := r.checkLoopVar(s, s.Var); err != nil {
			return err
		}
		r.table.Push()
		r.loopVars = append(r.loopVars, s.Var)
		defer func() {
			r.loopVars = r.loopVars[:len(r.loopVars)-1]
			r.table.Pop()
		}()
		if err := r.assign(s, s.Var, ir.Int); err != nil {
			return err
		}
		return r.stmts(s.Body)

	case *ir.While:
		if err := r.condition(s.Cond, "while"); err != nil {
			return err
		}
		if v, ok := ir.ConstBool(s.Cond); ok && v {
			r.warn(WarnInfiniteLoop, "warning", s.Pos(),
				"loop condition is always true and the loop cannot be exited")
		}
		return r.block(s.Body)

	default:
		return fmt.Errorf("resolver: unknown statement type %T", s)
	}
}

// assign records a store of type t into name by stmt, declaring the name
// when it is not visible.
func (r *resolver) assign(stmt ir.Stmt, name string, t ir.Type) error {
	if sym, ok := r.table.Lookup(name); ok && !compatible(sym.Type, t) {
		return conflict(stmt, name, t, sym)
	}
	if !r.table.Visible(name) {
		r.table.Declare(name, t, stmt.Pos())
		r.declares[stmt] = true
	}
	return nil
}

// checkLoopVar rejects stores to the counter of an enclosing loop. The
// source language recomputes the counter from the range on every
// iteration, which a C-style loop does not.
func (r *resolver) checkLoopVar(stmt ir.Stmt, name string) error {
	for _, v := range r.loopVars {
		if v == name {
			return &TypeError{
				Code:    ErrLoopVarAssigned,
				Pos:     stmt.Pos(),
				Symbol:  name,
				Message: fmt.Sprintf("cannot assign to loop variable '%s' inside its loop", name),
			}
		}
	}
	return nil
}

func conflict(stmt ir.Stmt, name string, have ir.Type, sym Symbol) *TypeError {
	return &TypeError{
		Code:   ErrTypeConflict,
		Pos:    stmt.Pos(),
		Symbol: name,
		Have:   have,
		Want:   sym.Type,
		Message: fmt.Sprintf("cannot assign %s to '%s': it was first assigned %s at %s",
			have, name, sym.Type, sym.FirstSeenAt),
	}
}

// compatible reports whether a value of type have may be stored in a
// variable of type want.
func compatible(want, have ir.Type) bool {
	return want == have || (want == ir.Float && have == ir.Int)
}

func (r *resolver) condition(e ir.Expr, context string) error {
	t, err := r.expr(e)
	if err != nil {
		return err
	}
	if t != ir.Bool {
		return &TypeError{
			Code:    ErrConditionType,
			Pos:     e.Pos(),
			Have:    t,
			Want:    ir.Bool,
			Message: fmt.Sprintf("%s condition must be Bool, got %s", context, t),
		}
	}
	return nil
}

func (r *resolver) expr(e ir.Expr) (ir.Type, error) {
	t, err := r.infer(e)
	if err != nil {
		return 0, err
	}
	r.types[e] = t
	return t, nil
}

func (r *resolver) infer(e ir.Expr) (ir.Type, error) {
	switch e := e.(type) {
	case *ir.Literal:
		if !e.Kind.Valid() {
			return 0, fmt.Errorf("resolver: literal with invalid kind %d", int(e.Kind))
		}
		return e.Kind, nil

	case *ir.VarRef:
		sym, ok := r.table.Lookup(e.Name)
		if !ok || !r.table.Visible(e.Name) {
			return 0, &TypeError{
				Code:    ErrUndefinedVariable,
				Pos:     e.Pos(),
				Symbol:  e.Name,
				Message: fmt.Sprintf("undefined variable '%s'", e.Name),
			}
		}
		return sym.Type, nil

	case *ir.Unary:
		t, err := r.expr(e.Operand)
		if err != nil {
			return 0, err
		}
		switch {
		case e.Op == ir.Neg && t.IsNumeric():
			return t, nil
		case e.Op == ir.Not && t == ir.Bool:
			return ir.Bool, nil
		}
		return 0, &TypeError{
			Code:    ErrOperandType,
			Pos:     e.Pos(),
			Have:    t,
			Message: fmt.Sprintf("unary operator '%s' not defined for %s", e.Op, t),
		}

	case *ir.BinaryOp:
		lt, err := r.expr(e.Left)
		if err != nil {
			return 0, err
		}
		rt, err := r.expr(e.Right)
		if err != nil {
			return 0, err
		}
		t, ok := binaryType(e.Op, lt, rt)
		if !ok {
			return 0, typeErrorf(ErrOperandType, e.Pos(),
				"operator '%s' not defined for %s and %s", e.Op, lt, rt)
		}
		if e.Op == ir.Div && t == ir.Int {
			r.warn(WarnIntDivision, "warning", e.Pos(),
				"'/' between Int operands truncates toward zero in the targets")
		}
		return t, nil

	case nil:
		return 0, fmt.Errorf("resolver: missing expression")

	default:
		return 0, fmt.Errorf("resolver: unknown expression type %T", e)
	}
}

func binaryType(op ir.Op, l, r ir.Type) (ir.Type, bool) {
	switch {
	case op == ir.Mod:
		return ir.Int, l == ir.Int && r == ir.Int
	case op.IsArithmetic():
		switch {
		case l == ir.Int && r == ir.Int:
			return ir.Int, true
		case l.IsNumeric() && r.IsNumeric():
			return ir.Float, true
		case op == ir.Add && l == ir.String && r == ir.String:
			return ir.String, true
		}
	case op.IsComparison():
		switch {
		case l.IsNumeric() && r.IsNumeric(), l == ir.String && r == ir.String:
			return ir.Bool, true
		case l == ir.Bool && r == ir.Bool:
			return ir.Bool, op == ir.Eq || op == ir.Ne
		}
	case op.IsLogical():
		return ir.Bool, l == ir.Bool && r == ir.Bool
	}
	return 0, false
}

func (r *resolver) warn(code, level string, pos source.Pos, msg string) {
	r.warnings = append(r.warnings, Warning{Code: code, Level: level, Pos: pos, Message: msg})
}
