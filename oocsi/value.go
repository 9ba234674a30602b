package oocsi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"sort"
)

// Kind tags the variant held by a Value.
type Kind int

const (
	KindNull Kind = iota
	KindString
	KindNumber
	KindBool
	KindMap
	KindList
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	case KindMap:
		return "map"
	case KindList:
		return "list"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Value is a JSON value carried in an OOCSI message: a string, number,
// boolean, nested mapping or list. The zero Value is null.
type Value struct {
	kind Kind
	str  string
	num  float64
	lit  string
	b    bool
	m    map[string]Value
	list []Value
}

func String(s string) Value {
	return Value{kind: KindString, str: s}
}

func Number(n float64) Value {
	return Value{kind: KindNumber, num: n}
}

func Int(n int) Value {
	return Number(float64(n))
}

func Bool(b bool) Value {
	return Value{kind: KindBool, b: b}
}

func Map(m map[string]Value) Value {
	return Value{kind: KindMap, m: m}
}

func List(items ...Value) Value {
	return Value{kind: KindList, list: items}
}

// numberLiteral keeps the decoded text of a number so integers beyond
// float64 precision are written back unchanged.
func numberLiteral(n json.Number) Value {
	f, _ := n.Float64()
	return Value{kind: KindNumber, num: f, lit: string(n)}
}

func (v Value) Kind() Kind {
	return v.kind
}

func (v Value) IsNull() bool {
	return v.kind == KindNull
}

// AsString returns the string held by v.
func (v Value) AsString() (string, bool) {
	return v.str, v.kind == KindString
}

// AsNumber returns the number held by v.
func (v Value) AsNumber() (float64, bool) {
	return v.num, v.kind == KindNumber
}

// AsBool returns the boolean held by v.
func (v Value) AsBool() (bool, bool) {
	return v.b, v.kind == KindBool
}

// AsMap returns the mapping held by v.
func (v Value) AsMap() (map[string]Value, bool) {
	return v.m, v.kind == KindMap
}

// AsList returns the items held by v.
func (v Value) AsList() ([]Value, bool) {
	return v.list, v.kind == KindList
}

// Text renders v for display: strings as is, everything else as JSON.
func (v Value) Text() string {
	if v.kind == KindString {
		return v.str
	}
	return string(v.appendJSON(nil))
}

func (v Value) MarshalJSON() ([]byte, error) {
	return v.appendJSON(nil), nil
}

// appendJSON encodes v by switching on its tag. Map keys are sorted so the
// output is stable.
func (v Value) appendJSON(dst []byte) []byte {
	switch v.kind {
	case KindString:
		return appendQuoted(dst, v.str)
	case KindNumber:
		if v.lit != "" {
			return append(dst, v.lit...)
		}
		if math.IsNaN(v.num) || math.IsInf(v.num, 0) {
			return append(dst, "null"...)
		}
		b, _ := json.Marshal(v.num)
		return append(dst, b...)
	case KindBool:
		if v.b {
			return append(dst, "true"...)
		}
		return append(dst, "false"...)
	case KindMap:
		keys := make([]string, 0, len(v.m))
		for k := range v.m {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		dst = append(dst, '{')
		for i, k := range keys {
			if i > 0 {
				dst = append(dst, ',')
			}
			dst = appendQuoted(dst, k)
			dst = append(dst, ':')
			dst = v.m[k].appendJSON(dst)
		}
		return append(dst, '}')
	case KindList:
		dst = append(dst, '[')
		for i, item := range v.list {
			if i > 0 {
				dst = append(dst, ',')
			}
			dst = item.appendJSON(dst)
		}
		return append(dst, ']')
	default:
		return append(dst, "null"...)
	}
}

// appendQuoted writes s as a JSON string without HTML escaping.
func appendQuoted(dst []byte, s string) []byte {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(s)
	return append(dst, bytes.TrimSuffix(buf.Bytes(), []byte("\n"))...)
}

func (v *Value) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	*v = valueOf(raw)
	return nil
}

// valueOf converts the generic result of encoding/json into a Value.
func valueOf(raw any) Value {
	switch x := raw.(type) {
	case string:
		return String(x)
	case json.Number:
		return numberLiteral(x)
	case bool:
		return Bool(x)
	case map[string]any:
		m := make(map[string]Value, len(x))
		for k, item := range x {
			m[k] = valueOf(item)
		}
		return Map(m)
	case []any:
		items := make([]Value, len(x))
		for i, item := range x {
			items[i] = valueOf(item)
		}
		return List(items...)
	default:
		return Value{}
	}
}
