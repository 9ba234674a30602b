package oocsi

import (
	"encoding/json"
	"math"
	"testing"
)

func TestValueJSON(t *testing.T) {
	tests := []struct {
		name     string
		value    Value
		expected string
	}{
		{name: "null", value: Value{}, expected: "null"},
		{name: "integer", value: Int(23), expected: "23"},
		{name: "fraction", value: Number(21.5), expected: "21.5"},
		{name: "NaN", value: Number(math.NaN()), expected: "null"},
		{name: "true", value: Bool(true), expected: "true"},
		{name: "false", value: Bool(false), expected: "false"},
		{name: "string", value: String("hi"), expected: `"hi"`},
		{name: "string through json.Marshal is HTML escaped", value: String("<a&b>"), expected: `"\u003ca\u0026b\u003e"`},
		{name: "string with quote", value: String(`say "x"`), expected: `"say \"x\""`},
		{
			name:     "map in key order",
			value:    Map(map[string]Value{"b": Int(2), "a": String("x")}),
			expected: `{"a":"x","b":2}`,
		},
		{name: "list", value: List(Int(1), Bool(false), Value{}), expected: `[1,false,null]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := json.Marshal(tt.value)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if string(got) != tt.expected {
				t.Errorf("expected %s, got %s", tt.expected, got)
			}
		})
	}
}

func TestValueUnmarshal(t *testing.T) {
	var v Value
	if err := json.Unmarshal([]byte(`{"n":1.5,"s":"x","b":true,"l":[1],"z":null}`), &v); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	m, ok := v.AsMap()
	if !ok {
		t.Fatalf("expected a map, got %v", v.Kind())
	}
	if n, ok := m["n"].AsNumber(); !ok || n != 1.5 {
		t.Errorf("n: got %v", m["n"])
	}
	if s, ok := m["s"].AsString(); !ok || s != "x" {
		t.Errorf("s: got %v", m["s"])
	}
	if b, ok := m["b"].AsBool(); !ok || !b {
		t.Errorf("b: got %v", m["b"])
	}
	if l, ok := m["l"].AsList(); !ok || len(l) != 1 {
		t.Errorf("l: got %v", m["l"])
	}
	if !m["z"].IsNull() {
		t.Errorf("z: expected null, got %v", m["z"].Kind())
	}
}

func TestValueText(t *testing.T) {
	if got := String("hello").Text(); got != "hello" {
		t.Errorf("string text: got %q", got)
	}
	if got := Int(7).Text(); got != "7" {
		t.Errorf("number text: got %q", got)
	}
	if got := Map(map[string]Value{"k": Bool(true)}).Text(); got != `{"k":true}` {
		t.Errorf("map text: got %q", got)
	}
}

func TestValueWireEncoding(t *testing.T) {
	if got := string(String("<a&b>").appendJSON(nil)); got != `"<a&b>"` {
		t.Errorf("expected no HTML escaping, got %s", got)
	}
	if got := PublishLine("c", "k", String("<a&b>")); got != `sendjson c {"k": "<a&b>"}` {
		t.Errorf("unexpected publish line %q", got)
	}
}

func TestValueKeepsLargeIntegers(t *testing.T) {
	msg, _, err := DecodeFrame(`+IPD,28:{"id":12345678901234567891}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := msg["id"].Text(); got != "12345678901234567891" {
		t.Errorf("expected the literal to survive, got %s", got)
	}
	if got := PublishMessageLine("c", msg); got != `sendjson c {"id": 12345678901234567891}` {
		t.Errorf("unexpected publish line %q", got)
	}
	if n, ok := msg["id"].AsNumber(); !ok || n < 1e19 {
		t.Errorf("expected an approximate float, got %v", n)
	}
}
