package ir

import "fmt"

// Type is the static type tag the resolver assigns to variables and
// expressions. The zero value is not a valid type.
type Type int

const (
	Int Type = iota + 1
	Float
	Bool
	String
)

var typeNames = map[Type]string{
	Int:    "Int",
	Float:  "Float",
	Bool:   "Bool",
	String: "String",
}

func (t Type) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("Type(%d)", int(t))
}

// Valid reports whether t is one of the four type tags.
func (t Type) Valid() bool {
	_, ok := typeNames[t]
	return ok
}

// IsNumeric reports whether t is Int or Float.
func (t Type) IsNumeric() bool {
	return t == Int || t == Float
}

// MarshalText implements encoding.TextMarshaler.
func (t Type) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("invalid type tag %d", int(t))
	}
	return []byte(t.String()), nil
}

// Op is a binary operator.
type Op int

const (
	Add Op = iota + 1
	Sub
	Mul
	Div
	Mod
	Eq
	Ne
	Lt
	Le
	Gt
	Ge
	And
	Or
)

var opSymbols = map[Op]string{
	Add: "+", Sub: "-", Mul: "*", Div: "/", Mod: "%",
	Eq: "==", Ne: "!=", Lt: "<", Le: "<=", Gt: ">", Ge: ">=",
	And: "and", Or: "or",
}

// String returns the source-language spelling of the operator.
func (o Op) String() string {
	if s, ok := opSymbols[o]; ok {
		return s
	}
	return fmt.Sprintf("Op(%d)", int(o))
}

// IsArithmetic reports whether o is + - * / or %.
func (o Op) IsArithmetic() bool {
	return o >= Add && o <= Mod
}

// IsComparison reports whether o is one of the six comparison operators.
func (o Op) IsComparison() bool {
	return o >= Eq && o <= Ge
}

// IsLogical reports whether o is and/or.
func (o Op) IsLogical() bool {
	return o == And || o == Or
}

// ParseOp maps a source operator spelling to its Op.
func ParseOp(s string) (Op, bool) {
	for op, sym := range opSymbols {
		if sym == s {
			return op, true
		}
	}
	return 0, false
}

// UnaryOp is a prefix operator.
type UnaryOp int

const (
	Neg UnaryOp = iota + 1
	Not
)

func (o UnaryOp) String() string {
	switch o {
	case Neg:
		return "-"
	case Not:
		return "not"
	}
	return fmt.Sprintf("UnaryOp(%d)", int(o))
}
