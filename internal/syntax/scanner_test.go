package syntax

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func kinds(toks []Token) []Kind {
	out := make([]Kind, len(toks))
	for i, t := range toks {
		out[i] = t.Kind
	}
	return out
}

func TestScanSimpleAssignment(t *testing.T) {
	toks, err := Scan("x = 5\n")
	require.NoError(t, err)

	assert.Equal(t, []Kind{NAME, OP, INT, NEWLINE, EOF}, kinds(toks))
	assert.Equal(t, "x", toks[0].Text)
	assert.Equal(t, 1, toks[2].Pos.Line)
	assert.Equal(t, 5, toks[2].Pos.Col)
}

func TestScanIndentation(t *testing.T) {
	src := "if x:\n    y = 1\n    if y:\n        z = 2\nw = 3"
	toks, err := Scan(src)
	require.NoError(t, err)

	assert.Equal(t, []Kind{
		KEYWORD, NAME, OP, NEWLINE,
		INDENT, NAME, OP, INT, NEWLINE,
		KEYWORD, NAME, OP, NEWLINE,
		INDENT, NAME, OP, INT, NEWLINE,
		DEDENT, DEDENT, NAME, OP, INT, NEWLINE,
		EOF,
	}, kinds(toks))
}

func TestScanClosesBlocksAtEOF(t *testing.T) {
	toks, err := Scan("while x:\n  x = 0\n")
	require.NoError(t, err)

	n := len(toks)
	assert.Equal(t, []Kind{NEWLINE, DEDENT, EOF}, kinds(toks[n-3:]))
}

func TestScanBlankAndCommentLines(t *testing.T) {
	src := "x = 1  # trailing\n\n   # indented comment\n\ny = 2\n"
	toks, err := Scan(src)
	require.NoError(t, err)

	assert.Equal(t, []Kind{NAME, OP, INT, NEWLINE, NAME, OP, INT, NEWLINE, EOF}, kinds(toks))
	assert.Equal(t, 5, toks[4].Pos.Line)
}

func TestScanImplicitLineJoining(t *testing.T) {
	toks, err := Scan("x = (1 +\n     2)\n")
	require.NoError(t, err)
	assert.Equal(t, []Kind{NAME, OP, OP, INT, OP, INT, OP, NEWLINE, EOF}, kinds(toks))
}

func TestScanBackslashContinuation(t *testing.T) {
	toks, err := Scan("x = 1 + \\\n    2\n")
	require.NoError(t, err)
	assert.Equal(t, []Kind{NAME, OP, INT, OP, INT, NEWLINE, EOF}, kinds(toks))
}

func TestScanTabsAdvanceToMultipleOfEight(t *testing.T) {
	_, err := Scan("if x:\n\ty = 1\n        z = 2\n")
	require.NoError(t, err, "a tab and eight spaces are the same indentation")
}

func TestScanNumbers(t *testing.T) {
	tests := []struct {
		src  string
		kind Kind
		text string
	}{
		{"42", INT, "42"},
		{"1_000", INT, "1000"},
		{"0", INT, "0"},
		{"00", INT, "00"},
		{"0x1F", INT, "0x1F"},
		{"0o17", INT, "0o17"},
		{"0b101", INT, "0b101"},
		{"3.14", FLOAT, "3.14"},
		{".5", FLOAT, ".5"},
		{"1.", FLOAT, "1."},
		{"1e3", FLOAT, "1e3"},
		{"2.5E-2", FLOAT, "2.5E-2"},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			toks, err := Scan(tt.src)
			require.NoError(t, err)
			assert.Equal(t, tt.kind, toks[0].Kind)
			assert.Equal(t, tt.text, toks[0].Text)
		})
	}
}

func TestScanInvalidNumbers(t *testing.T) {
	tests := []struct {
		src string
		msg string
	}{
		{"012", "leading zeros"},
		{"0b102", "invalid digit '2' in binary literal"},
		{"0x", "invalid hexadecimal literal"},
		{"1__0", "invalid decimal literal"},
		{"1_", "invalid decimal literal"},
		{"1e", "invalid float literal"},
		{"3abc", "invalid decimal literal"},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			_, err := Scan(tt.src)
			require.Error(t, err)
			var serr *Error
			require.ErrorAs(t, err, &serr)
			assert.Contains(t, serr.Msg, tt.msg)
		})
	}
}

func TestScanStrings(t *testing.T) {
	tests := []struct {
		name   string
		src    string
		value  string
		prefix string
	}{
		{"double", `"ab"`, "ab", ""},
		{"single", `'ab'`, "ab", ""},
		{"escapes", `"a\tb\n\\\""`, "a\tb\n\\\"", ""},
		{"hex escape", `"\x41"`, "A", ""},
		{"unicode escape", `"\u00e9"`, "\u00e9", ""},
		{"octal escape", `"\101"`, "A", ""},
		{"unknown escape kept", `"\d"`, `\d`, ""},
		{"raw", `r"\n"`, `\n`, "r"},
		{"fstring prefix", `F"x"`, "x", "f"},
		{"triple", "\"\"\"a\nb\"\"\"", "a\nb", ""},
		{"triple with quote", `'''it's'''`, "it's", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			toks, err := Scan(tt.src)
			require.NoError(t, err)
			require.Equal(t, STRING, toks[0].Kind)
			assert.Equal(t, tt.value, toks[0].Text)
			assert.Equal(t, tt.prefix, toks[0].Prefix)
		})
	}
}

func TestScanErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		msg  string
		line int
		code string
	}{
		{"unterminated", `x = "abc`, "unterminated string literal", 1, ErrUnterminated},
		{"unterminated triple", "x = '''abc\n", "unterminated triple-quoted string literal", 1, ErrUnterminated},
		{"bad dedent", "if x:\n    y = 1\n  z = 2\n", "unindent does not match", 3, ErrIndentation},
		{"invalid character", "x = 1 $ 2", "invalid character", 1, ErrInvalidCharacter},
		{"never closed", "x = (1,\n2\n", "'(' was never closed", 1, ErrUnterminated},
		{"truncated escape", `"\x4"`, `truncated \x escape`, 1, ErrInvalidLiteral},
		{"bad literal", "x = 0b102", "invalid digit", 1, ErrInvalidLiteral},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Scan(tt.src)
			var serr *Error
			require.ErrorAs(t, err, &serr)
			assert.Contains(t, serr.Msg, tt.msg)
			assert.Equal(t, tt.line, serr.Pos.Line)
			assert.Equal(t, tt.code, serr.Code)
		})
	}
}

func TestScanNormalizesIdentifiers(t *testing.T) {
	// U+FB01 (LATIN SMALL LIGATURE FI) is NFKC-equivalent to "fi".
	toks, err := Scan("\ufb01x = 1")
	require.NoError(t, err)
	assert.Equal(t, "fix", toks[0].Text)
}

func TestScanCRLF(t *testing.T) {
	toks, err := Scan("x = 1\r\ny = 2\r\n")
	require.NoError(t, err)
	assert.Equal(t, []Kind{NAME, OP, INT, NEWLINE, NAME, OP, INT, NEWLINE, EOF}, kinds(toks))
	assert.Equal(t, 2, toks[4].Pos.Line)
}

func TestErrorString(t *testing.T) {
	_, err := Scan("\n\n   x = 'a")
	require.Error(t, err)
	assert.Equal(t, "3:8: syntax error: unterminated string literal", err.Error())
}
