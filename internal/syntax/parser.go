// Package syntax is the front-end: it scans and parses source text into a
// syntax tree. The tree is validated (well-formed) but not yet checked for
// the subset the translator supports; that is the IR builder's job.
package syntax

import (
	"github.com/roach88/pyxlate/internal/source"
)

// Parse scans and parses src into a Module.
func Parse(src string) (*Module, error) {
	toks, err := Scan(src)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks}
	return p.module()
}

type parser struct {
	toks []Token
	i    int
}

func (p *parser) tok() Token {
	return p.toks[p.i]
}

func (p *parser) lookahead(n int) Token {
	if p.i+n < len(p.toks) {
		return p.toks[p.i+n]
	}
	return p.toks[len(p.toks)-1]
}

func (p *parser) next() Token {
	t := p.toks[p.i]
	if t.Kind != EOF {
		p.i++
	}
	return t
}

func (p *parser) isOp(text string) bool {
	t := p.tok()
	return t.Kind == OP && t.Text == text
}

func (p *parser) isKeyword(text string) bool {
	t := p.tok()
	return t.Kind == KEYWORD && t.Text == text
}

func (p *parser) expectOp(text string) error {
	if !p.isOp(text) {
		return errorf(ErrInvalidSyntax, p.tok().Pos, "expected '%s'", text)
	}
	p.next()
	return nil
}

func (p *parser) invalid() error {
	t := p.tok()
	switch t.Kind {
	case EOF:
		return errorf(ErrInvalidSyntax, t.Pos, "unexpected end of input")
	case INDENT:
		return errorf(ErrIndentation, t.Pos, "unexpected indent")
	}
	return errorf(ErrInvalidSyntax, t.Pos, "invalid syntax")
}

func (p *parser) module() (*Module, error) {
	mod := &Module{}
	for p.tok().Kind != EOF {
		stmts, err := p.statement()
		if err != nil {
			return nil, err
		}
		mod.Body = append(mod.Body, stmts...)
	}
	return mod, nil
}

// statement parses one logical line, or one compound statement with its
// block. A line of ';'-separated simple statements yields several.
func (p *parser) statement() ([]Stmt, error) {
	t := p.tok()
	switch t.Kind {
	case KEYWORD:
		switch t.Text {
		case "if":
			s, err := p.ifStmt()
			return single(s, err)
		case "for":
			s, err := p.forStmt()
			return single(s, err)
		case "while":
			s, err := p.whileStmt()
			return single(s, err)
		case "def", "class", "try", "with", "async":
			s, err := p.opaqueCompound()
			return single(s, err)
		case "elif", "else", "except", "finally":
			return nil, p.invalid()
		}
	case OP:
		if t.Text == "@" {
			s, err := p.opaqueCompound()
			return single(s, err)
		}
	case INDENT, DEDENT:
		return nil, p.invalid()
	}
	return p.simpleLine()
}

func single(s Stmt, err error) ([]Stmt, error) {
	if err != nil {
		return nil, err
	}
	return []Stmt{s}, nil
}

// simpleLine parses `stmt (; stmt)* [;] NEWLINE`.
func (p *parser) simpleLine() ([]Stmt, error) {
	var stmts []Stmt
	for {
		s, err := p.simpleStmt()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, s)
		if !p.isOp(";") {
			break
		}
		p.next()
		if p.tok().Kind == NEWLINE || p.tok().Kind == EOF {
			break
		}
	}
	switch p.tok().Kind {
	case NEWLINE:
		p.next()
	case EOF:
	default:
		return nil, p.invalid()
	}
	return stmts, nil
}

var simpleKeywords = map[string]bool{
	"pass": true, "break": true, "continue": true, "return": true,
	"del": true, "global": true, "nonlocal": true, "raise": true,
	"assert": true, "import": true, "from": true, "yield": true,
	"await": true,
}

var augmentedOps = map[string]bool{
	"+=": true, "-=": true, "*=": true, "/=": true, "//=": true, "%=": true,
	"**=": true, "@=": true, "&=": true, "|=": true, "^=": true,
	">>=": true, "<<=": true,
}

func (p *parser) simpleStmt() (Stmt, error) {
	t := p.tok()
	if t.Kind == KEYWORD && simpleKeywords[t.Text] {
		p.next()
		p.skipSimple()
		return &KeywordStmt{Position: t.Pos, Keyword: t.Text}, nil
	}

	x, err := p.exprList()
	if err != nil {
		return nil, err
	}

	switch op := p.tok(); {
	case op.Kind == OP && op.Text == "=":
		targets := []Expr{x}
		var value Expr
		for p.isOp("=") {
			p.next()
			v, err := p.exprList()
			if err != nil {
				return nil, err
			}
			if value != nil {
				targets = append(targets, value)
			}
			value = v
		}
		return &AssignStmt{Position: op.Pos, Targets: targets, Value: value}, nil

	case op.Kind == OP && augmentedOps[op.Text]:
		p.next()
		v, err := p.exprList()
		if err != nil {
			return nil, err
		}
		return &AugAssignStmt{Position: op.Pos, Target: x, Op: op.Text, Value: v}, nil

	case op.Kind == OP && op.Text == ":":
		p.next()
		ann, err := p.expr()
		if err != nil {
			return nil, err
		}
		s := &AnnAssignStmt{Position: op.Pos, Target: x, Annotation: ann}
		if p.isOp("=") {
			p.next()
			if s.Value, err = p.exprList(); err != nil {
				return nil, err
			}
		}
		return s, nil
	}

	return &ExprStmt{Position: x.Pos(), X: x}, nil
}

// skipSimple drops the operands of a keyword statement.
func (p *parser) skipSimple() {
	depth := 0
	for {
		t := p.tok()
		switch {
		case t.Kind == EOF:
			return
		case t.Kind == NEWLINE && depth == 0:
			return
		case t.Kind == OP && t.Text == ";" && depth == 0:
			return
		case t.Kind == OP && (t.Text == "(" || t.Text == "[" || t.Text == "{"):
			depth++
		case t.Kind == OP && (t.Text == ")" || t.Text == "]" || t.Text == "}"):
			depth--
		}
		p.next()
	}
}

// suite parses the block after a ':', which is an indented block or the rest
// of the same line.
func (p *parser) suite() ([]Stmt, error) {
	if err := p.expectOp(":"); err != nil {
		return nil, err
	}
	if p.tok().Kind != NEWLINE {
		return p.simpleLine()
	}
	p.next()
	if p.tok().Kind != INDENT {
		return nil, errorf(ErrIndentation, p.tok().Pos, "expected an indented block")
	}
	p.next()

	var body []Stmt
	for p.tok().Kind != DEDENT && p.tok().Kind != EOF {
		stmts, err := p.statement()
		if err != nil {
			return nil, err
		}
		body = append(body, stmts...)
	}
	if p.tok().Kind == DEDENT {
		p.next()
	}
	return body, nil
}

func (p *parser) ifStmt() (*IfStmt, error) {
	kw := p.next()
	cond, err := p.expr()
	if err != nil {
		return nil, err
	}
	body, err := p.suite()
	if err != nil {
		return nil, err
	}
	s := &IfStmt{Position: kw.Pos, Cond: cond, Body: body, Elif: kw.Text == "elif"}

	switch {
	case p.isKeyword("elif"):
		elif, err := p.ifStmt()
		if err != nil {
			return nil, err
		}
		s.Else = []Stmt{elif}
	case p.isKeyword("else"):
		p.next()
		if s.Else, err = p.suite(); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (p *parser) forStmt() (*ForStmt, error) {
	kw := p.next()
	target, err := p.targetList()
	if err != nil {
		return nil, err
	}
	if !p.isKeyword("in") {
		return nil, errorf(ErrInvalidSyntax, p.tok().Pos, "expected 'in'")
	}
	p.next()
	iter, err := p.exprList()
	if err != nil {
		return nil, err
	}
	body, err := p.suite()
	if err != nil {
		return nil, err
	}
	s := &ForStmt{Position: kw.Pos, Target: target, Iter: iter, Body: body}
	if p.isKeyword("else") {
		p.next()
		if s.Else, err = p.suite(); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (p *parser) whileStmt() (*WhileStmt, error) {
	kw := p.next()
	cond, err := p.expr()
	if err != nil {
		return nil, err
	}
	body, err := p.suite()
	if err != nil {
		return nil, err
	}
	s := &WhileStmt{Position: kw.Pos, Cond: cond, Body: body}
	if p.isKeyword("else") {
		p.next()
		if s.Else, err = p.suite(); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// opaqueCompound consumes a compound statement the translator never
// supports, together with its block and trailing clauses.
func (p *parser) opaqueCompound() (*BlockStmt, error) {
	head := p.tok()
	keyword := head.Text
	// Decorator lines, then the definition they decorate.
	for p.isOp("@") {
		if err := p.skipClause(); err != nil {
			return nil, err
		}
	}
	if err := p.skipClause(); err != nil {
		return nil, err
	}
	if keyword == "try" {
		for p.isKeyword("except") || p.isKeyword("else") || p.isKeyword("finally") {
			if err := p.skipClause(); err != nil {
				return nil, err
			}
		}
	}
	return &BlockStmt{Position: head.Pos, Keyword: keyword}, nil
}

// skipClause drops a header line and, when it ends in ':', the indented
// block below it.
func (p *parser) skipClause() error {
	depth := 0
	colon := false
	for {
		t := p.tok()
		if t.Kind == EOF {
			return nil
		}
		p.next()
		if t.Kind == NEWLINE && depth == 0 {
			break
		}
		colon = false
		if t.Kind != OP {
			continue
		}
		switch t.Text {
		case "(", "[", "{":
			depth++
		case ")", "]", "}":
			depth--
		case ":":
			colon = depth == 0
		}
	}
	if !colon {
		return nil
	}
	if p.tok().Kind != INDENT {
		return errorf(ErrIndentation, p.tok().Pos, "expected an indented block")
	}
	p.next()
	for nest := 1; nest > 0; {
		switch p.next().Kind {
		case INDENT:
			nest++
		case DEDENT:
			nest--
		case EOF:
			return nil
		}
	}
	return nil
}

// targetList parses the loop target of a for statement. Targets are
// postfix expressions so that `in` is not taken as a comparison.
func (p *parser) targetList() (Expr, error) {
	start := p.tok().Pos
	first, err := p.postfix()
	if err != nil {
		return nil, err
	}
	if !p.isOp(",") {
		return first, nil
	}
	elts := []Expr{first}
	for p.isOp(",") {
		p.next()
		if p.isKeyword("in") {
			break
		}
		e, err := p.postfix()
		if err != nil {
			return nil, err
		}
		elts = append(elts, e)
	}
	return &TupleExpr{Position: start, Elts: elts}, nil
}

// exprList parses `expr (, expr)* [,]`, producing a tuple when there is a
// comma.
func (p *parser) exprList() (Expr, error) {
	first, err := p.expr()
	if err != nil {
		return nil, err
	}
	if !p.isOp(",") {
		return first, nil
	}
	elts := []Expr{first}
	for p.isOp(",") {
		p.next()
		if !p.startsExpr() {
			break
		}
		e, err := p.expr()
		if err != nil {
			return nil, err
		}
		elts = append(elts, e)
	}
	return &TupleExpr{Position: first.Pos(), Elts: elts}, nil
}

func (p *parser) startsExpr() bool {
	t := p.tok()
	switch t.Kind {
	case NAME, INT, FLOAT, STRING:
		return true
	case KEYWORD:
		switch t.Text {
		case "True", "False", "None", "not", "lambda":
			return true
		}
	case OP:
		switch t.Text {
		case "(", "[", "{", "-", "+", "~":
			return true
		}
	}
	return false
}

func (p *parser) expr() (Expr, error) {
	if p.isKeyword("lambda") {
		return p.lambda()
	}
	x, err := p.or()
	if err != nil {
		return nil, err
	}
	if !p.isKeyword("if") {
		return x, nil
	}
	kw := p.next()
	cond, err := p.or()
	if err != nil {
		return nil, err
	}
	if !p.isKeyword("else") {
		return nil, errorf(ErrInvalidSyntax, p.tok().Pos, "expected 'else' after 'if' expression")
	}
	p.next()
	alt, err := p.expr()
	if err != nil {
		return nil, err
	}
	return &TernaryExpr{Position: kw.Pos, Cond: cond, Then: x, Else: alt}, nil
}

func (p *parser) lambda() (Expr, error) {
	kw := p.next()
	depth := 0
	for {
		t := p.tok()
		if t.Kind == EOF || t.Kind == NEWLINE {
			return nil, p.invalid()
		}
		p.next()
		if t.Kind != OP {
			continue
		}
		if t.Text == "(" || t.Text == "[" || t.Text == "{" {
			depth++
		} else if t.Text == ")" || t.Text == "]" || t.Text == "}" {
			depth--
		} else if t.Text == ":" && depth == 0 {
			break
		}
	}
	if _, err := p.expr(); err != nil {
		return nil, err
	}
	return &LambdaExpr{Position: kw.Pos}, nil
}

func (p *parser) or() (Expr, error) {
	x, err := p.and()
	if err != nil {
		return nil, err
	}
	for p.isKeyword("or") {
		op := p.next()
		y, err := p.and()
		if err != nil {
			return nil, err
		}
		x = &BinaryExpr{Position: op.Pos, Op: "or", X: x, Y: y}
	}
	return x, nil
}

func (p *parser) and() (Expr, error) {
	x, err := p.not()
	if err != nil {
		return nil, err
	}
	for p.isKeyword("and") {
		op := p.next()
		y, err := p.not()
		if err != nil {
			return nil, err
		}
		x = &BinaryExpr{Position: op.Pos, Op: "and", X: x, Y: y}
	}
	return x, nil
}

func (p *parser) not() (Expr, error) {
	if p.isKeyword("not") {
		op := p.next()
		x, err := p.not()
		if err != nil {
			return nil, err
		}
		return &UnaryExpr{Position: op.Pos, Op: "not", X: x}, nil
	}
	return p.comparison()
}

// compareOp reports the comparison operator at the cursor, consuming it.
func (p *parser) compareOp() (string, source.Pos, bool) {
	t := p.tok()
	switch {
	case t.Kind == OP:
		switch t.Text {
		case "==", "!=", "<", "<=", ">", ">=":
			p.next()
			return t.Text, t.Pos, true
		}
	case t.Kind == KEYWORD && t.Text == "in":
		p.next()
		return "in", t.Pos, true
	case t.Kind == KEYWORD && t.Text == "not" && p.lookahead(1).Kind == KEYWORD && p.lookahead(1).Text == "in":
		p.next()
		p.next()
		return "not in", t.Pos, true
	case t.Kind == KEYWORD && t.Text == "is":
		p.next()
		if p.isKeyword("not") {
			p.next()
			return "is not", t.Pos, true
		}
		return "is", t.Pos, true
	}
	return "", source.Pos{}, false
}

func (p *parser) comparison() (Expr, error) {
	x, err := p.binary(0)
	if err != nil {
		return nil, err
	}
	var cmp *CompareExpr
	for {
		op, pos, ok := p.compareOp()
		if !ok {
			break
		}
		y, err := p.binary(0)
		if err != nil {
			return nil, err
		}
		if cmp == nil {
			cmp = &CompareExpr{Position: pos, X: x}
		}
		cmp.Ops = append(cmp.Ops, op)
		cmp.Ys = append(cmp.Ys, y)
	}
	if cmp == nil {
		return x, nil
	}
	return cmp, nil
}

// binaryLevels lists the left-associative binary operators from loosest to
// tightest binding.
var binaryLevels = [][]string{
	{"|"},
	{"^"},
	{"&"},
	{"<<", ">>"},
	{"+", "-"},
	{"*", "/", "//", "%", "@"},
}

func (p *parser) binary(level int) (Expr, error) {
	if level == len(binaryLevels) {
		return p.factor()
	}
	x, err := p.binary(level + 1)
	if err != nil {
		return nil, err
	}
	for {
		t := p.tok()
		if t.Kind != OP || !contains(binaryLevels[level], t.Text) {
			return x, nil
		}
		p.next()
		y, err := p.binary(level + 1)
		if err != nil {
			return nil, err
		}
		x = &BinaryExpr{Position: t.Pos, Op: t.Text, X: x, Y: y}
	}
}

func contains(ops []string, op string) bool {
	for _, o := range ops {
		if o == op {
			return true
		}
	}
	return false
}

func (p *parser) factor() (Expr, error) {
	t := p.tok()
	if t.Kind == OP && (t.Text == "-" || t.Text == "+" || t.Text == "~") {
		p.next()
		x, err := p.factor()
		if err != nil {
			return nil, err
		}
		return &UnaryExpr{Position: t.Pos, Op: t.Text, X: x}, nil
	}
	return p.power()
}

func (p *parser) power() (Expr, error) {
	x, err := p.postfix()
	if err != nil {
		return nil, err
	}
	if !p.isOp("**") {
		return x, nil
	}
	op := p.next()
	y, err := p.factor()
	if err != nil {
		return nil, err
	}
	return &BinaryExpr{Position: op.Pos, Op: "**", X: x, Y: y}, nil
}

func (p *parser) postfix() (Expr, error) {
	x, err := p.atom()
	if err != nil {
		return nil, err
	}
	for {
		t := p.tok()
		switch {
		case t.Kind == OP && t.Text == "(":
			if x, err = p.call(x); err != nil {
				return nil, err
			}
		case t.Kind == OP && t.Text == "[":
			if _, err := p.skipBracket(); err != nil {
				return nil, err
			}
			x = &SubscriptExpr{Position: t.Pos, X: x}
		case t.Kind == OP && t.Text == ".":
			p.next()
			name := p.tok()
			if name.Kind != NAME {
				return nil, p.invalid()
			}
			p.next()
			x = &AttributeExpr{Position: t.Pos, X: x, Name: name.Text}
		default:
			return x, nil
		}
	}
}

func (p *parser) call(fun Expr) (Expr, error) {
	p.next() // (
	c := &CallExpr{Position: fun.Pos(), Fun: fun}
	for !p.isOp(")") {
		switch {
		case p.isOp("*") || p.isOp("**"):
			p.next()
			if _, err := p.expr(); err != nil {
				return nil, err
			}
			c.Keywords++
		case p.tok().Kind == NAME && p.lookahead(1).Kind == OP && p.lookahead(1).Text == "=":
			p.next()
			p.next()
			if _, err := p.expr(); err != nil {
				return nil, err
			}
			c.Keywords++
		default:
			arg, err := p.expr()
			if err != nil {
				return nil, err
			}
			if p.isKeyword("for") {
				p.skipUntilClose()
				arg = &CollectionExpr{Position: arg.Pos(), Kind: "generator expression"}
			}
			c.Args = append(c.Args, arg)
		}
		if !p.isOp(",") {
			break
		}
		p.next()
	}
	if err := p.expectOp(")"); err != nil {
		return nil, err
	}
	return c, nil
}

func (p *parser) atom() (Expr, error) {
	t := p.tok()
	switch t.Kind {
	case NAME:
		p.next()
		return &Name{Position: t.Pos, ID: t.Text}, nil
	case INT:
		p.next()
		return &IntLit{Position: t.Pos, Text: t.Text}, nil
	case FLOAT:
		p.next()
		return &FloatLit{Position: t.Pos, Text: t.Text}, nil
	case STRING:
		lit := &StringLit{Position: t.Pos}
		for p.tok().Kind == STRING {
			s := p.next()
			lit.Value += s.Text
			if lit.Prefix == "" {
				lit.Prefix = s.Prefix
			}
		}
		return lit, nil
	case KEYWORD:
		switch t.Text {
		case "True", "False":
			p.next()
			return &BoolLit{Position: t.Pos, Value: t.Text == "True"}, nil
		case "None":
			p.next()
			return &NoneLit{Position: t.Pos}, nil
		case "lambda":
			return p.lambda()
		}
	case OP:
		switch t.Text {
		case "(":
			return p.paren()
		case "[", "{":
			kind, err := p.skipBracket()
			if err != nil {
				return nil, err
			}
			return &CollectionExpr{Position: t.Pos, Kind: kind}, nil
		}
	}
	return nil, p.invalid()
}

func (p *parser) paren() (Expr, error) {
	open := p.next()
	if p.isOp(")") {
		p.next()
		return &TupleExpr{Position: open.Pos}, nil
	}
	x, err := p.expr()
	if err != nil {
		return nil, err
	}
	switch {
	case p.isKeyword("for"):
		p.skipUntilClose()
		x = &CollectionExpr{Position: open.Pos, Kind: "generator expression"}
	case p.isOp(","):
		elts := []Expr{x}
		for p.isOp(",") {
			p.next()
			if p.isOp(")") {
				break
			}
			e, err := p.expr()
			if err != nil {
				return nil, err
			}
			elts = append(elts, e)
		}
		x = &TupleExpr{Position: open.Pos, Elts: elts}
	}
	if err := p.expectOp(")"); err != nil {
		return nil, errorf(ErrUnterminated, open.Pos, "'(' was never closed")
	}
	return x, nil
}

// skipUntilClose advances to the closing bracket of the innermost open
// bracket, leaving it as the current token.
func (p *parser) skipUntilClose() {
	depth := 0
	for {
		t := p.tok()
		if t.Kind == EOF {
			return
		}
		if t.Kind == OP {
			switch t.Text {
			case "(", "[", "{":
				depth++
			case ")", "]", "}":
				if depth == 0 {
					return
				}
				depth--
			}
		}
		p.next()
	}
}

// skipBracket consumes a [...] or {...} group and classifies it.
func (p *parser) skipBracket() (string, error) {
	open := p.next()
	closer := map[string]string{"[": "]", "{": "}"}[open.Text]
	depth := 0
	empty := true
	comprehension, colon := false, false
	for {
		t := p.tok()
		if t.Kind == EOF {
			return "", errorf(ErrUnterminated, open.Pos, "'%s' was never closed", open.Text)
		}
		p.next()
		if t.Kind == OP {
			switch t.Text {
			case "(", "[", "{":
				depth++
			case ")", "]", "}":
				if depth == 0 {
					if t.Text != closer {
						return "", errorf(ErrUnterminated, t.Pos, "closing parenthesis '%s' does not match opening parenthesis '%s'", t.Text, open.Text)
					}
					return bracketKind(open.Text, empty, comprehension, colon), nil
				}
				depth--
			case ":":
				colon = colon || depth == 0
			}
		}
		if t.Kind == KEYWORD && t.Text == "for" && depth == 0 {
			comprehension = true
		}
		empty = false
	}
}

func bracketKind(open string, empty, comprehension, colon bool) string {
	switch {
	case open == "[" && comprehension:
		return "list comprehension"
	case open == "[":
		return "list"
	case empty || (colon && !comprehension):
		return "dict"
	case colon:
		return "dict comprehension"
	case comprehension:
		return "set comprehension"
	}
	return "set"
}
