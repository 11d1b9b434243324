package codegen

import (
	"fmt"
	"strconv"

	"github.com/roach88/pyxlate/internal/ir"
	"github.com/roach88/pyxlate/internal/resolver"
	"github.com/roach88/pyxlate/internal/source"
)

// dialect renders the target-specific parts of a program. The statement
// walk and operator precedence are shared by all targets.
type dialect interface {
	conventions() Conventions

	// reserved reports whether name cannot be used as a variable.
	reserved(name string) bool

	typeName(t ir.Type) string
	quote(s string) string

	prologue(e *Emitter, f features)
	epilogue(e *Emitter)

	print(value fragment, t ir.Type) string
	concat(l, r fragment) fragment
	compare(op ir.Op, l, r fragment) fragment
	// mod renders Int modulo with the sign of the divisor.
	mod(l, r fragment) fragment

	// rejectsConstantLoops reports whether the target refuses a loop whose
	// condition is a compile-time constant as unreachable code.
	rejectsConstantLoops() bool
}

var dialects = map[Target]dialect{
	TargetC:    cDialect{},
	TargetCPP:  cppDialect{},
	TargetJava: javaDialect{},
}

func dialectFor(t Target) (dialect, error) {
	d, ok := dialects[t]
	if !ok {
		return nil, errorf(ErrUnknownTarget, source.Pos{}, "unknown target %q", string(t))
	}
	return d, nil
}

// features records which optional support code a program needs.
type features struct {
	bools   bool // Bool variables or literals
	concat  bool // String + String
	compare bool // String comparisons
	mod     bool // Int %
	floats  bool // printed Float values
}

// Generate renders a resolved program as target source text. Output is a
// pure function of the program: the same input always yields the same
// bytes. On error nothing is returned.
func Generate(target Target, prog *resolver.Program) (string, error) {
	d, err := dialectFor(target)
	if err != nil {
		return "", err
	}
	if prog == nil || prog.IR == nil {
		return "", errorf(ErrUnknownNode, source.Pos{}, "nil program")
	}

	g := &generator{
		d:     d,
		prog:  prog,
		e:     NewEmitter(),
		names: make(map[string]string, len(prog.Symbols)),
		taken: make(map[string]bool, len(prog.Symbols)),
	}
	g.bindNames()

	f, err := g.scan()
	if err != nil {
		return "", err
	}
	d.prologue(g.e, f)
	if err := g.stmts(prog.IR.Statements); err != nil {
		return "", err
	}
	d.epilogue(g.e)
	return g.e.String(), nil
}

type generator struct {
	d    dialect
	prog *resolver.Program
	e    *Emitter

	// names maps each source variable to its target identifier.
	names map[string]string
	// taken holds every identifier in use, for renames and temporaries.
	taken map[string]bool
}

// bindNames picks a target identifier for every variable. Names that are
// reserved in the target get a trailing underscore until they are free.
func (g *generator) bindNames() {
	for _, sym := range g.prog.Symbols {
		g.taken[sym.Name] = true
	}
	for _, sym := range g.prog.Symbols {
		name := sym.Name
		if g.d.reserved(name) {
			for g.d.reserved(name) || g.taken[name] {
				name += "_"
			}
			g.taken[name] = true
		}
		g.names[sym.Name] = name
	}
}

// temp returns a fresh identifier derived from base.
func (g *generator) temp(base string) string {
	name := base
	for n := 2; g.taken[name] || g.d.reserved(name); n++ {
		name = base + strconv.Itoa(n)
	}
	g.taken[name] = true
	return name
}

// scan checks that every expression is typed and collects the support
// code the dialect has to emit.
func (g *generator) scan() (features, error) {
	var f features
	for _, sym := range g.prog.Symbols {
		if sym.Type == ir.Bool {
			f.bools = true
		}
	}

	var err error
	ir.Inspect(g.prog.IR.Statements, func(n ir.Node) bool {
		if err != nil {
			return false
		}
		if p, ok := n.(*ir.Print); ok {
			if t, _ := g.prog.TypeOf(p.Value); t == ir.Float {
				f.floats = true
			}
		}
		e, ok := n.(ir.Expr)
		if !ok {
			return true
		}
		if _, ok := g.prog.TypeOf(e); !ok {
			err = errorf(ErrMissingType, e.Pos(), "expression %T has no resolved type", e)
			return false
		}
		switch e := e.(type) {
		case *ir.Literal:
			if e.Kind == ir.Bool {
				f.bools = true
			}
		case *ir.BinaryOp:
			if e.Op == ir.Mod {
				f.mod = true
			}
			if t, _ := g.prog.TypeOf(e.Left); t == ir.String {
				switch {
				case e.Op == ir.Add:
					f.concat = true
				case e.Op.IsComparison():
					f.compare = true
				}
			}
		}
		return true
	})
	return f, err
}

func (g *generator) typeOf(e ir.Expr) (ir.Type, error) {
	t, ok := g.prog.TypeOf(e)
	if !ok {
		return 0, errorf(ErrMissingType, e.Pos(), "expression %T has no resolved type", e)
	}
	return t, nil
}

func (g *generator) declaration(name string, pos source.Pos) (string, error) {
	sym, ok := g.prog.Symbol(name)
	if !ok {
		return "", errorf(ErrMissingType, pos, "variable '%s' has no symbol", name)
	}
	return declare(g.d, sym.Type, g.names[name]), nil
}

// declare joins a type and a variable name. Pointer types bind the star
// to the name.
func declare(d dialect, t ir.Type, name string) string {
	tn := d.typeName(t)
	if tn[len(tn)-1] == '*' {
		return tn + name
	}
	return tn + " " + name
}

func (g *generator) block(stmts []ir.Stmt) error {
	g.e.Indent()
	defer g.e.Dedent()
	return g.stmts(stmts)
}

func (g *generator) stmts(stmts []ir.Stmt) error {
	for _, s := range stmts {
		if err := g.stmt(s); err != nil {
			return err
		}
	}
	return nil
}

func (g *generator) stmt(s ir.Stmt) error {
	switch s := s.(type) {
	case *ir.Assign:
		v, err := g.expr(s.Value)
		if err != nil {
			return err
		}
		lhs := g.names[s.Name]
		if g.prog.Declares[s] {
			if lhs, err = g.declaration(s.Name, s.Pos()); err != nil {
				return err
			}
		}
		g.e.Line(lhs + " = " + v.text + ";")
		return nil

	case *ir.Print:
		v, err := g.expr(s.Value)
		if err != nil {
			return err
		}
		t, err := g.typeOf(s.Value)
		if err != nil {
			return err
		}
		g.e.Line(g.d.print(v, t))
		return nil

	case *ir.If:
		return g.ifStmt(s)

	case *ir.ForRange:
		return g.forRange(s)

	case *ir.While:
		cond, err := g.expr(s.Cond)
		if err != nil {
			return err
		}
		if g.d.rejectsConstantLoops() && !readsVariable(s.Cond) {
			name := g.temp("cond")
			g.e.Line(declare(g.d, ir.Bool, name) + " = " + cond.text + ";")
			cond = fragment{text: name, prec: precPrimary}
		}
		g.e.Line("while (" + cond.text + ") {")
		if err := g.block(s.Body); err != nil {
			return err
		}
		g.e.Line("}")
		return nil

	case nil:
		return errorf(ErrUnknownNode, source.Pos{}, "missing statement")

	default:
		return errorf(ErrUnknownNode, s.Pos(), "unsupported statement type: %T", s)
	}
}

// ifStmt renders an if statement. An else branch holding exactly one if
// statement is an elif and renders as "} else if (...) {".
func (g *generator) ifStmt(s *ir.If) error {
	cond, err := g.expr(s.Cond)
	if err != nil {
		return err
	}
	g.e.Line("if (" + cond.text + ") {")
	for {
		if err := g.block(s.Then); err != nil {
			return err
		}
		if s.Else == nil {
			break
		}
		if elif, ok := onlyIf(s.Else); ok {
			cond, err := g.expr(elif.Cond)
			if err != nil {
				return err
			}
			g.e.Line("} else if (" + cond.text + ") {")
			s = elif
			continue
		}
		g.e.Line("} else {")
		if err := g.block(s.Else); err != nil {
			return err
		}
		break
	}
	g.e.Line("}")
	return nil
}

func onlyIf(stmts []ir.Stmt) (*ir.If, bool) {
	if len(stmts) != 1 {
		return nil, false
	}
	s, ok := stmts[0].(*ir.If)
	return s, ok
}

// forRange renders a counting loop. The stop and step values are computed
// once before the first iteration; when the loop writes a variable they
// read, they are copied into temporaries first.
//
// A variable already visible before the loop keeps the last value the
// range produced, and an empty range leaves it alone. Such loops count in
// a separate Int and copy it into the variable at the top of each
// iteration.
func (g *generator) forRange(s *ir.ForRange) error {
	v := g.names[s.Var]
	start, err := g.expr(s.Start)
	if err != nil {
		return err
	}
	stop, err := g.expr(s.End)
	if err != nil {
		return err
	}

	written := assignedNames(s.Body)
	written[s.Var] = true
	if readsAny(s.End, written) {
		stop = g.hoist(v+"_stop", stop)
	}

	counter := v
	var init string
	if g.prog.Declares[s] {
		decl, err := g.declaration(s.Var, s.Pos())
		if err != nil {
			return err
		}
		init = decl + " = " + start.text
	} else {
		counter = g.temp(v + "_n")
		init = declare(g.d, ir.Int, counter) + " = " + start.text
	}

	bound := wrap(stop, precRelational, true)
	var test, update string
	if k, ok := ir.ConstInt(s.Step); ok {
		switch {
		case k == 1:
			test, update = counter+" < "+bound, counter+"++"
		case k > 0:
			test, update = counter+" < "+bound, counter+" += "+strconv.FormatInt(k, 10)
		default:
			test, update = counter+" > "+bound, counter+" -= "+strconv.FormatInt(-k, 10)
		}
	} else {
		step, err := g.expr(s.Step)
		if err != nil {
			return err
		}
		if readsAny(s.Step, written) {
			step = g.hoist(v+"_step", step)
		}
		test = fmt.Sprintf("(%s > 0 ? %s < %s : %s > %s)",
			wrap(step, precRelational, false), counter, bound, counter, bound)
		update = counter + " += " + step.text
	}

	g.e.Line("for (" + init + "; " + test + "; " + update + ") {")
	g.e.Indent()
	if counter != v {
		g.e.Line(v + " = " + counter + ";")
	}
	if err := g.stmts(s.Body); err != nil {
		return err
	}
	g.e.Dedent()
	g.e.Line("}")
	return nil
}

// hoist declares an Int temporary holding f and returns a reference to it.
func (g *generator) hoist(base string, f fragment) fragment {
	name := g.temp(base)
	g.e.Line(declare(g.d, ir.Int, name) + " = " + f.text + ";")
	return fragment{text: name, prec: precPrimary}
}

// assignedNames returns every variable stored to in stmts, loop counters
// included.
func assignedNames(stmts []ir.Stmt) map[string]bool {
	out := make(map[string]bool)
	ir.Inspect(stmts, func(n ir.Node) bool {
		switch n := n.(type) {
		case *ir.Assign:
			out[n.Name] = true
		case *ir.ForRange:
			out[n.Var] = true
		}
		return true
	})
	return out
}

func readsAny(e ir.Expr, names map[string]bool) bool {
	found := false
	ir.Inspect([]ir.Stmt{&ir.Print{Value: e}}, func(n ir.Node) bool {
		if ref, ok := n.(*ir.VarRef); ok && names[ref.Name] {
			found = true
		}
		return !found
	})
	return found
}

func readsVariable(e ir.Expr) bool {
	found := false
	ir.Inspect([]ir.Stmt{&ir.Print{Value: e}}, func(n ir.Node) bool {
		if _, ok := n.(*ir.VarRef); ok {
			found = true
		}
		return !found
	})
	return found
}
