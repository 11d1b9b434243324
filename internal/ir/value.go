package ir

import (
	"slices"
	"unicode/utf16"
)

// JSONValue is a sealed interface over the document model the canonical
// encoder writes. Only JSONString, JSONInt, JSONBool, JSONArray and
// JSONObject implement it. There is no float and no null case.
type JSONValue interface {
	jsonValue() // Sealed
}

// JSONString is a string value.
type JSONString string

func (JSONString) jsonValue() {}

// JSONInt is an integer value.
type JSONInt int64

func (JSONInt) jsonValue() {}

// JSONBool is a boolean value.
type JSONBool bool

func (JSONBool) jsonValue() {}

// JSONArray is an ordered list of values.
type JSONArray []JSONValue

func (JSONArray) jsonValue() {}

// JSONObject maps string keys to values.
// Use SortedKeys() for deterministic iteration.
type JSONObject map[string]JSONValue

func (JSONObject) jsonValue() {}

// SortedKeys returns keys in RFC 8785 canonical order (UTF-16 code units).
// Go's string comparison orders by UTF-8 bytes, which differs for
// characters outside the BMP.
func (obj JSONObject) SortedKeys() []string {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, compareUTF16)
	return keys
}

func compareUTF16(a, b string) int {
	return slices.Compare(utf16.Encode([]rune(a)), utf16.Encode([]rune(b)))
}
