package syntax

import "github.com/roach88/pyxlate/internal/source"

// Kind classifies a token.
type Kind int

const (
	EOF Kind = iota
	NEWLINE
	INDENT
	DEDENT

	NAME
	INT
	FLOAT
	STRING
	KEYWORD
	OP
)

var kindNames = [...]string{
	EOF:     "end of input",
	NEWLINE: "newline",
	INDENT:  "indent",
	DEDENT:  "dedent",
	NAME:    "name",
	INT:     "integer",
	FLOAT:   "float",
	STRING:  "string",
	KEYWORD: "keyword",
	OP:      "operator",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Token is one lexical unit. Text holds the identifier, keyword or operator
// spelling, the digits of a number (underscores removed) or the decoded
// value of a string.
type Token struct {
	Kind   Kind
	Text   string
	Prefix string // string prefix letters, lower-cased ("f", "rb", ...)
	Pos    source.Pos
}

// keywords of the source language. All of them are reserved even though most
// are rejected later by the IR builder.
var keywords = map[string]bool{
	"False": true, "None": true, "True": true, "and": true, "as": true,
	"assert": true, "async": true, "await": true, "break": true,
	"class": true, "continue": true, "def": true, "del": true,
	"elif": true, "else": true, "except": true, "finally": true,
	"for": true, "from": true, "global": true, "if": true,
	"import": true, "in": true, "is": true, "lambda": true,
	"nonlocal": true, "not": true, "or": true, "pass": true,
	"raise": true, "return": true, "try": true, "while": true,
	"with": true, "yield": true,
}

// operators, longest first so the scanner can match greedily.
var operators = []string{
	"**=", "//=", ">>=", "<<=", "...",
	"**", "//", "==", "!=", "<=", ">=", "<<", ">>", "->", ":=",
	"+=", "-=", "*=", "/=", "%=", "&=", "|=", "^=", "@=",
	"+", "-", "*", "/", "%", "@", "<", ">", "=", "&", "|", "^", "~",
	"(", ")", "[", "]", "{", "}", ",", ":", ".", ";",
}
