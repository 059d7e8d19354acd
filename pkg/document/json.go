package document

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// ErrTrailingData is returned when input continues past the first value.
var ErrTrailingData = errors.New("document: trailing data after JSON value")

// Parse decodes a single JSON value, preserving object key order and
// number literals.
func Parse(data []byte) (*Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	v, err := parseValue(dec)
	if err != nil {
		return nil, fmt.Errorf("document: parse: %w", err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, ErrTrailingData
	}
	return v, nil
}

func parseValue(dec *json.Decoder) (*Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	return parseFromToken(dec, tok)
}

func parseFromToken(dec *json.Decoder, tok json.Token) (*Value, error) {
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			obj := Object()
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return nil, err
				}
				key, ok := keyTok.(string)
				if !ok {
					return nil, fmt.Errorf("unexpected object key %v", keyTok)
				}
				val, err := parseValue(dec)
				if err != nil {
					return nil, err
				}
				obj.SetField(key, val)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return obj, nil
		case '[':
			arr := Array()
			for dec.More() {
				elem, err := parseValue(dec)
				if err != nil {
					return nil, err
				}
				arr.Append(elem)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return arr, nil
		default:
			return nil, fmt.Errorf("unexpected delimiter %q", t)
		}
	case bool:
		return Bool(t), nil
	case json.Number:
		return &Value{kind: KindNumber, num: t.String()}, nil
	case string:
		return String(t), nil
	case nil:
		return Null(), nil
	default:
		return nil, fmt.Errorf("unexpected token %v", tok)
	}
}

// MarshalJSON encodes v compactly, emitting object keys in insertion
// order.
func (v *Value) MarshalJSON() ([]byte, error) {
	return v.appendJSON(nil), nil
}

// Encode returns the compact JSON encoding of v.
func (v *Value) Encode() []byte {
	return v.appendJSON(nil)
}

// EncodePretty returns the two-space indented JSON encoding of v.
func (v *Value) EncodePretty() []byte {
	return v.appendPretty(nil, "")
}

// String returns the compact JSON encoding.
func (v *Value) String() string {
	return string(v.Encode())
}

func (v *Value) appendJSON(b []byte) []byte {
	switch v.kind {
	case KindNull:
		return append(b, "null"...)
	case KindBool:
		if v.b {
			return append(b, "true"...)
		}
		return append(b, "false"...)
	case KindNumber:
		return append(b, v.num...)
	case KindString:
		return appendQuoted(b, v.str)
	case KindArray:
		b = append(b, '[')
		for i, e := range v.arr {
			if i > 0 {
				b = append(b, ',')
			}
			b = e.appendJSON(b)
		}
		return append(b, ']')
	case KindObject:
		b = append(b, '{')
		for i, k := range v.keys {
			if i > 0 {
				b = append(b, ',')
			}
			b = appendQuoted(b, k)
			b = append(b, ':')
			b = v.vals[i].appendJSON(b)
		}
		return append(b, '}')
	}
	return b
}

func (v *Value) appendPretty(b []byte, indent string) []byte {
	switch v.kind {
	case KindArray:
		if len(v.arr) == 0 {
			return append(b, "[]"...)
		}
		inner := indent + "  "
		b = append(b, '[')
		for i, e := range v.arr {
			if i > 0 {
				b = append(b, ',')
			}
			b = append(b, '\n')
			b = append(b, inner...)
			b = e.appendPretty(b, inner)
		}
		b = append(b, '\n')
		b = append(b, indent...)
		return append(b, ']')
	case KindObject:
		if len(v.keys) == 0 {
			return append(b, "{}"...)
		}
		inner := indent + "  "
		b = append(b, '{')
		for i, k := range v.keys {
			if i > 0 {
				b = append(b, ',')
			}
			b = append(b, '\n')
			b = append(b, inner...)
			b = appendQuoted(b, k)
			b = append(b, ": "...)
			b = v.vals[i].appendPretty(b, inner)
		}
		b = append(b, '\n')
		b = append(b, indent...)
		return append(b, '}')
	default:
		return v.appendJSON(b)
	}
}

func appendQuoted(b []byte, s string) []byte {
	quoted, err := json.Marshal(s)
	if err != nil {
		// Marshaling a string cannot fail.
		return append(b, `""`...)
	}
	return append(b, quoted...)
}

// FromGo converts a Go value into a Value. It accepts *Value (returned
// as-is), json.RawMessage (parsed), and anything encoding/json can
// marshal. Conversion through encoding/json means map keys come out
// sorted; order-sensitive callers should pass JSON text as a
// json.RawMessage instead (a Go string becomes a JSON string value).
func FromGo(x any) (*Value, error) {
	switch t := x.(type) {
	case nil:
		return Null(), nil
	case *Value:
		return t, nil
	case json.RawMessage:
		return Parse(t)
	case bool:
		return Bool(t), nil
	case string:
		return String(t), nil
	case int:
		return Int(int64(t)), nil
	case int32:
		return Int(int64(t)), nil
	case int64:
		return Int(t), nil
	case float32:
		return Float(float64(t)), nil
	case float64:
		return Float(t), nil
	case json.Number:
		return &Value{kind: KindNumber, num: t.String()}, nil
	default:
		raw, err := json.Marshal(x)
		if err != nil {
			return nil, fmt.Errorf("document: convert %T: %w", x, err)
		}
		return Parse(raw)
	}
}

// Interface converts v back to plain Go values: nil, bool, json.Number,
// string, []any, and map[string]any. Object key order is lost.
func (v *Value) Interface() any {
	switch v.kind {
	case KindNull:
		return nil
	case KindBool:
		return v.b
	case KindNumber:
		return json.Number(v.num)
	case KindString:
		return v.str
	case KindArray:
		out := make([]any, len(v.arr))
		for i, e := range v.arr {
			out[i] = e.Interface()
		}
		return out
	case KindObject:
		out := make(map[string]any, len(v.keys))
		for i, k := range v.keys {
			out[k] = v.vals[i].Interface()
		}
		return out
	}
	return nil
}
