package ir

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"golang.org/x/text/unicode/norm"

	"github.com/roach88/pyxlate/internal/source"
)

// MarshalCanonical renders a program as canonical JSON: object keys sorted
// by UTF-16 code units, no HTML escaping, NFC-normalized strings, no
// whitespace. Identical programs always produce identical bytes, which is
// what ProgramHash relies on.
func MarshalCanonical(prog *Program) ([]byte, error) {
	if prog == nil {
		return nil, fmt.Errorf("nil program")
	}
	stmts, err := encodeStmts(prog.Statements)
	if err != nil {
		return nil, err
	}
	doc := JSONObject{
		"ir_version": JSONString(IRVersion),
		"statements": stmts,
	}
	return marshalValue(doc)
}

// Encode converts a program to the canonical document model without
// serializing it.
func Encode(prog *Program) (JSONObject, error) {
	stmts, err := encodeStmts(prog.Statements)
	if err != nil {
		return nil, err
	}
	return JSONObject{"ir_version": JSONString(IRVersion), "statements": stmts}, nil
}

func encodePos(p source.Pos) JSONValue {
	return JSONObject{"line": JSONInt(p.Line), "col": JSONInt(p.Col)}
}

func encodeStmts(stmts []Stmt) (JSONArray, error) {
	arr := make(JSONArray, len(stmts))
	for i, s := range stmts {
		v, err := encodeStmt(s)
		if err != nil {
			return nil, fmt.Errorf("statements[%d]: %w", i, err)
		}
		arr[i] = v
	}
	return arr, nil
}

func encodeStmt(s Stmt) (JSONValue, error) {
	switch s := s.(type) {
	case *Assign:
		value, err := encodeExpr(s.Value)
		if err != nil {
			return nil, err
		}
		return JSONObject{
			"node":  JSONString("assign"),
			"pos":   encodePos(s.Position),
			"name":  JSONString(s.Name),
			"value": value,
		}, nil

	case *Print:
		value, err := encodeExpr(s.Value)
		if err != nil {
			return nil, err
		}
		return JSONObject{
			"node":  JSONString("print"),
			"pos":   encodePos(s.Position),
			"value": value,
		}, nil

	case *If:
		cond, err := encodeExpr(s.Cond)
		if err != nil {
			return nil, err
		}
		then, err := encodeStmts(s.Then)
		if err != nil {
			return nil, fmt.Errorf("then: %w", err)
		}
		obj := JSONObject{
			"node": JSONString("if"),
			"pos":  encodePos(s.Position),
			"cond": cond,
			"then": then,
		}
		if s.Else != nil {
			alt, err := encodeStmts(s.Else)
			if err != nil {
				return nil, fmt.Errorf("else: %w", err)
			}
			obj["else"] = alt
		}
		return obj, nil

	case *ForRange:
		obj := JSONObject{
			"node": JSONString("for_range"),
			"pos":  encodePos(s.Position),
			"var":  JSONString(s.Var),
		}
		for key, e := range map[string]Expr{"start": s.Start, "end": s.End, "step": s.Step} {
			v, err := encodeExpr(e)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", key, err)
			}
			obj[key] = v
		}
		body, err := encodeStmts(s.Body)
		if err != nil {
			return nil, fmt.Errorf("body: %w", err)
		}
		obj["body"] = body
		return obj, nil

	case *While:
		cond, err := encodeExpr(s.Cond)
		if err != nil {
			return nil, err
		}
		body, err := encodeStmts(s.Body)
		if err != nil {
			return nil, fmt.Errorf("body: %w", err)
		}
		return JSONObject{
			"node": JSONString("while"),
			"pos":  encodePos(s.Position),
			"cond": cond,
			"body": body,
		}, nil

	default:
		return nil, fmt.Errorf("unknown statement type %T", s)
	}
}

func encodeExpr(e Expr) (JSONValue, error) {
	switch e := e.(type) {
	case *BinaryOp:
		left, err := encodeExpr(e.Left)
		if err != nil {
			return nil, err
		}
		right, err := encodeExpr(e.Right)
		if err != nil {
			return nil, err
		}
		return JSONObject{
			"node":  JSONString("binary_op"),
			"pos":   encodePos(e.Position),
			"op":    JSONString(e.Op.String()),
			"left":  left,
			"right": right,
		}, nil

	case *Unary:
		operand, err := encodeExpr(e.Operand)
		if err != nil {
			return nil, err
		}
		return JSONObject{
			"node":    JSONString("unary"),
			"pos":     encodePos(e.Position),
			"op":      JSONString(e.Op.String()),
			"operand": operand,
		}, nil

	case *Literal:
		obj := JSONObject{
			"node": JSONString("literal"),
			"pos":  encodePos(e.Position),
			"kind": JSONString(e.Kind.String()),
		}
		switch e.Kind {
		case Int:
			obj["value"] = JSONInt(e.Int)
		case Float:
			// Floats are not representable in canonical JSON.
			obj["value"] = JSONString(strconv.FormatFloat(e.Float, 'g', -1, 64))
		case Bool:
			obj["value"] = JSONBool(e.Bool)
		case String:
			obj["value"] = JSONString(e.Str)
		default:
			return nil, fmt.Errorf("literal with invalid kind %d", int(e.Kind))
		}
		return obj, nil

	case *VarRef:
		return JSONObject{
			"node": JSONString("var_ref"),
			"pos":  encodePos(e.Position),
			"name": JSONString(e.Name),
		}, nil

	case nil:
		return nil, fmt.Errorf("missing expression")

	default:
		return nil, fmt.Errorf("unknown expression type %T", e)
	}
}

func marshalValue(v JSONValue) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeValue(&buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeValue(buf *bytes.Buffer, v JSONValue) error {
	switch val := v.(type) {
	case JSONString:
		return writeString(buf, string(val))
	case JSONInt:
		buf.WriteString(strconv.FormatInt(int64(val), 10))
	case JSONBool:
		buf.WriteString(strconv.FormatBool(bool(val)))
	case JSONArray:
		buf.WriteByte('[')
		for i, elem := range val {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeValue(buf, elem); err != nil {
				return fmt.Errorf("array[%d]: %w", i, err)
			}
		}
		buf.WriteByte(']')
	case JSONObject:
		buf.WriteByte('{')
		for i, k := range val.SortedKeys() {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeString(buf, k); err != nil {
				return fmt.Errorf("key %q: %w", k, err)
			}
			buf.WriteByte(':')
			if err := writeValue(buf, val[k]); err != nil {
				return fmt.Errorf("value for key %q: %w", k, err)
			}
		}
		buf.WriteByte('}')
	case nil:
		return fmt.Errorf("null is forbidden in canonical JSON")
	default:
		return fmt.Errorf("unsupported value type %T", v)
	}
	return nil
}

// writeString writes s NFC-normalized. Only control characters, backslash
// and quote are escaped; < > & and U+2028/U+2029 are written literally.
func writeString(buf *bytes.Buffer, s string) error {
	var tmp bytes.Buffer
	enc := json.NewEncoder(&tmp)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(norm.NFC.String(s)); err != nil {
		return err
	}
	out := bytes.TrimSuffix(tmp.Bytes(), []byte{'\n'})
	buf.Write(unescapeLineSeparators(out))
	return nil
}

// unescapeLineSeparators turns the \u2028 and \u2029 escapes that
// encoding/json always emits back into literal characters. An escape
// preceded by an odd run of backslashes is literal text and is kept.
func unescapeLineSeparators(data []byte) []byte {
	if !bytes.Contains(data, []byte(`\u202`)) {
		return data
	}
	out := make([]byte, 0, len(data))
	for i := 0; i < len(data); i++ {
		if data[i] == '\\' && i+5 < len(data) && string(data[i+1:i+5]) == "u202" &&
			(data[i+5] == '8' || data[i+5] == '9') && trailingBackslashes(out)%2 == 0 {
			if data[i+5] == '8' {
				out = append(out, "\u2028"...)
			} else {
				out = append(out, "\u2029"...)
			}
			i += 5
			continue
		}
		out = append(out, data[i])
	}
	return out
}

func trailingBackslashes(b []byte) int {
	n := 0
	for i := len(b) - 1; i >= 0 && b[i] == '\\'; i-- {
		n++
	}
	return n
}
