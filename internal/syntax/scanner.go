package syntax

import (
	"errors"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"github.com/roach88/pyxlate/internal/source"
)

const tabWidth = 8

// scanner turns source text into a flat token slice, synthesizing NEWLINE,
// INDENT and DEDENT tokens from the line structure.
type scanner struct {
	src     []rune
	off     int
	line    int
	col     int
	indents []int
	depth   int // open brackets; newlines inside brackets are ignored
	open    []Token
	bol     bool
	toks    []Token
}

// Scan tokenizes src. The returned slice always ends with EOF.
func Scan(src string) ([]Token, error) {
	s := &scanner{
		src:     []rune(src),
		line:    1,
		col:     1,
		indents: []int{0},
		bol:     true,
	}
	if err := s.run(); err != nil {
		return nil, err
	}
	return s.toks, nil
}

func (s *scanner) pos() source.Pos {
	return source.Pos{Line: s.line, Col: s.col}
}

func (s *scanner) peek(n int) rune {
	if s.off+n < len(s.src) {
		return s.src[s.off+n]
	}
	return 0
}

func (s *scanner) atEOF() bool {
	return s.off >= len(s.src)
}

func (s *scanner) next() rune {
	r := s.src[s.off]
	s.off++
	if r == '\n' {
		s.line++
		s.col = 1
	} else {
		s.col++
	}
	return r
}

func (s *scanner) emit(kind Kind, text string, pos source.Pos) {
	s.toks = append(s.toks, Token{Kind: kind, Text: text, Pos: pos})
}

func (s *scanner) lastKind() Kind {
	if len(s.toks) == 0 {
		return NEWLINE
	}
	return s.toks[len(s.toks)-1].Kind
}

func (s *scanner) run() error {
	for {
		if s.bol && s.depth == 0 {
			blank, err := s.indentation()
			if err != nil {
				return err
			}
			if blank {
				continue
			}
		}
		if s.atEOF() {
			break
		}
		if err := s.token(); err != nil {
			return err
		}
	}

	if len(s.open) > 0 {
		t := s.open[len(s.open)-1]
		return errorf(ErrUnterminated, t.Pos, "'%s' was never closed", t.Text)
	}
	pos := s.pos()
	if s.lastKind() != NEWLINE && s.lastKind() != DEDENT {
		s.emit(NEWLINE, "", pos)
	}
	for len(s.indents) > 1 {
		s.indents = s.indents[:len(s.indents)-1]
		s.emit(DEDENT, "", pos)
	}
	s.emit(EOF, "", pos)
	return nil
}

// indentation measures the leading whitespace of a logical line and emits
// INDENT/DEDENT tokens. It reports blank (whitespace or comment only) lines,
// which are consumed whole and do not affect indentation.
func (s *scanner) indentation() (bool, error) {
	width := 0
measure:
	for !s.atEOF() {
		switch s.peek(0) {
		case ' ':
			width++
		case '\t':
			width = (width/tabWidth + 1) * tabWidth
		case '\f':
			width = 0
		default:
			break measure
		}
		s.next()
	}
	switch r := s.peek(0); {
	case s.atEOF():
		return false, nil
	case r == '#':
		s.skipComment()
		s.skipNewline()
		return true, nil
	case r == '\n' || r == '\r':
		s.skipNewline()
		return true, nil
	}

	s.bol = false
	pos := s.pos()
	top := s.indents[len(s.indents)-1]
	switch {
	case width > top:
		s.indents = append(s.indents, width)
		s.emit(INDENT, "", pos)
	case width < top:
		for width < s.indents[len(s.indents)-1] {
			s.indents = s.indents[:len(s.indents)-1]
			s.emit(DEDENT, "", pos)
		}
		if width != s.indents[len(s.indents)-1] {
			return false, errorf(ErrIndentation, pos, "unindent does not match any outer indentation level")
		}
	}
	return false, nil
}

func (s *scanner) skipComment() {
	for !s.atEOF() && s.peek(0) != '\n' && s.peek(0) != '\r' {
		s.next()
	}
}

func (s *scanner) skipNewline() {
	if s.peek(0) == '\r' {
		s.off++
		if s.peek(0) == '\n' {
			s.off++
		}
		s.line++
		s.col = 1
		return
	}
	if s.peek(0) == '\n' {
		s.next()
	}
}

func (s *scanner) token() error {
	r := s.peek(0)
	pos := s.pos()
	switch {
	case r == ' ' || r == '\t' || r == '\f':
		s.next()
	case r == '#':
		s.skipComment()
	case r == '\\':
		s.next()
		if s.peek(0) != '\n' && s.peek(0) != '\r' {
			return errorf(ErrInvalidCharacter, pos, "unexpected character after line continuation character")
		}
		s.skipNewline()
		if s.atEOF() {
			return errorf(ErrInvalidCharacter, pos, "unexpected end of input after line continuation")
		}
	case r == '\n' || r == '\r':
		s.skipNewline()
		if s.depth == 0 {
			s.emit(NEWLINE, "", pos)
			s.bol = true
		}
	case isIdentStart(r):
		return s.identifier(pos)
	case isDigit(r) || (r == '.' && isDigit(s.peek(1))):
		return s.number(pos)
	case r == '"' || r == '\'':
		return s.str(pos, "")
	default:
		return s.operator(pos)
	}
	return nil
}

func (s *scanner) identifier(pos source.Pos) error {
	start := s.off
	for !s.atEOF() && isIdentPart(s.peek(0)) {
		s.next()
	}
	name := string(s.src[start:s.off])
	if q := s.peek(0); (q == '"' || q == '\'') && isStringPrefix(name) {
		return s.str(pos, strings.ToLower(name))
	}
	name = norm.NFKC.String(name)
	if keywords[name] {
		s.emit(KEYWORD, name, pos)
	} else {
		s.emit(NAME, name, pos)
	}
	return nil
}

func (s *scanner) number(pos source.Pos) error {
	start := s.off
	isFloat := false

	if s.peek(0) == '0' && strings.ContainsRune("xXoObB", s.peek(1)) {
		s.next()
		base := unicode.ToLower(s.next())
		n := 0
		for !s.atEOF() && (isHexDigit(s.peek(0)) || s.peek(0) == '_') {
			if r := s.next(); r != '_' {
				if !validDigit(base, r) {
					return errorf(ErrInvalidLiteral, pos, "invalid digit %q in %s literal", r, baseNames[base])
				}
				n++
			}
		}
		if n == 0 {
			return errorf(ErrInvalidLiteral, pos, "invalid %s literal", baseNames[base])
		}
	} else {
		s.digits()
		if s.peek(0) == '.' {
			isFloat = true
			s.next()
			s.digits()
		}
		if r := s.peek(0); r == 'e' || r == 'E' {
			isFloat = true
			s.next()
			if r := s.peek(0); r == '+' || r == '-' {
				s.next()
			}
			if !isDigit(s.peek(0)) {
				return errorf(ErrInvalidLiteral, pos, "invalid float literal")
			}
			s.digits()
		}
	}
	if isIdentPart(s.peek(0)) {
		return errorf(ErrInvalidLiteral, pos, "invalid decimal literal")
	}

	raw := string(s.src[start:s.off])
	if strings.HasSuffix(raw, "_") || strings.Contains(raw, "__") {
		return errorf(ErrInvalidLiteral, pos, "invalid decimal literal")
	}
	text := strings.ReplaceAll(raw, "_", "")
	if isFloat {
		// Out-of-range values are a semantic concern, not a syntax error.
		if _, err := strconv.ParseFloat(text, 64); errors.Is(err, strconv.ErrSyntax) {
			return errorf(ErrInvalidLiteral, pos, "invalid float literal %q", raw)
		}
		s.emit(FLOAT, text, pos)
		return nil
	}
	if len(text) > 1 && text[0] == '0' && isDigit(rune(text[1])) && strings.Trim(text, "0") != "" {
		return errorf(ErrInvalidLiteral, pos, "leading zeros in decimal integer literals are not permitted")
	}
	s.emit(INT, text, pos)
	return nil
}

func (s *scanner) digits() {
	for !s.atEOF() && (isDigit(s.peek(0)) || s.peek(0) == '_') {
		s.next()
	}
}

func (s *scanner) str(pos source.Pos, prefix string) error {
	quote := s.next()
	triple := s.peek(0) == quote && s.peek(1) == quote
	if triple {
		s.next()
		s.next()
	}
	raw := strings.ContainsRune(prefix, 'r')

	var b strings.Builder
	for {
		if s.atEOF() {
			if triple {
				return errorf(ErrUnterminated, pos, "unterminated triple-quoted string literal")
			}
			return errorf(ErrUnterminated, pos, "unterminated string literal")
		}
		r := s.peek(0)
		if r == quote {
			if !triple {
				s.next()
				break
			}
			if s.peek(1) == quote && s.peek(2) == quote {
				s.next()
				s.next()
				s.next()
				break
			}
		}
		if (r == '\n' || r == '\r') && !triple {
			return errorf(ErrUnterminated, pos, "unterminated string literal")
		}
		if r == '\\' {
			s.next()
			if s.atEOF() {
				continue
			}
			if raw {
				b.WriteRune('\\')
				b.WriteRune(s.next())
				continue
			}
			if err := s.escape(&b); err != nil {
				return err
			}
			continue
		}
		if r == '\r' {
			s.skipNewline()
			b.WriteRune('\n')
			continue
		}
		b.WriteRune(s.next())
	}

	s.toks = append(s.toks, Token{Kind: STRING, Text: b.String(), Prefix: prefix, Pos: pos})
	return nil
}

// escape decodes one backslash escape; the backslash is already consumed.
func (s *scanner) escape(b *strings.Builder) error {
	pos := s.pos()
	r := s.next()
	switch r {
	case '\n':
	case '\r':
		if s.peek(0) == '\n' {
			s.off++
		}
		s.line++
		s.col = 1
	case 'n':
		b.WriteByte('\n')
	case 't':
		b.WriteByte('\t')
	case 'r':
		b.WriteByte('\r')
	case '\\', '\'', '"':
		b.WriteRune(r)
	case 'a':
		b.WriteByte('\a')
	case 'b':
		b.WriteByte('\b')
	case 'f':
		b.WriteByte('\f')
	case 'v':
		b.WriteByte('\v')
	case 'x':
		return s.hexEscape(b, pos, r, 2)
	case 'u':
		return s.hexEscape(b, pos, r, 4)
	case 'U':
		return s.hexEscape(b, pos, r, 8)
	default:
		if r >= '0' && r <= '7' {
			v := int(r - '0')
			for i := 0; i < 2 && s.peek(0) >= '0' && s.peek(0) <= '7'; i++ {
				v = v*8 + int(s.next()-'0')
			}
			b.WriteRune(rune(v))
			return nil
		}
		b.WriteByte('\\')
		b.WriteRune(r)
	}
	return nil
}

func (s *scanner) hexEscape(b *strings.Builder, pos source.Pos, letter rune, n int) error {
	v := 0
	for i := 0; i < n; i++ {
		r := s.peek(0)
		if !isHexDigit(r) {
			return errorf(ErrInvalidLiteral, pos, "truncated \\%c escape", letter)
		}
		s.next()
		d, _ := strconv.ParseInt(string(r), 16, 8)
		v = v*16 + int(d)
	}
	if v > unicode.MaxRune {
		return errorf(ErrInvalidLiteral, pos, "illegal Unicode character in escape")
	}
	b.WriteRune(rune(v))
	return nil
}

func (s *scanner) operator(pos source.Pos) error {
	for _, op := range operators {
		if s.hasPrefix(op) {
			for range op {
				s.next()
			}
			switch op {
			case "(", "[", "{":
				s.depth++
				s.open = append(s.open, Token{Kind: OP, Text: op, Pos: pos})
			case ")", "]", "}":
				if s.depth > 0 {
					s.depth--
					s.open = s.open[:len(s.open)-1]
				}
			}
			s.emit(OP, op, pos)
			return nil
		}
	}
	return errorf(ErrInvalidCharacter, pos, "invalid character %q", s.peek(0))
}

func (s *scanner) hasPrefix(op string) bool {
	i := 0
	for _, r := range op {
		if s.peek(i) != r {
			return false
		}
		i++
	}
	return true
}

func isIdentStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isIdentPart(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.Is(unicode.Mn, r)
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func isHexDigit(r rune) bool {
	return isDigit(r) || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
}

var baseNames = map[rune]string{'x': "hexadecimal", 'o': "octal", 'b': "binary"}

func validDigit(base, r rune) bool {
	switch base {
	case 'o':
		return r >= '0' && r <= '7'
	case 'b':
		return r == '0' || r == '1'
	}
	return isHexDigit(r)
}

func isStringPrefix(name string) bool {
	switch strings.ToLower(name) {
	case "r", "u", "f", "b", "br", "rb", "fr", "rf":
		return true
	}
	return false
}
