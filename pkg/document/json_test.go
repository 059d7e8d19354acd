package document

import (
	"encoding/json"
	"testing"
)

func jsonRaw(s string) json.RawMessage {
	return json.RawMessage(s)
}

func TestParseRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"null", `null`},
		{"bool", `true`},
		{"int", `42`},
		{"negative", `-7`},
		{"float", `3.25`},
		{"exponent", `1e3`},
		{"string", `"hello"`},
		{"escapes", `"a\"b\\c"`},
		{"array", `[1,"two",null,[3]]`},
		{"object", `{"z":1,"a":{"nested":[true,false]},"m":null}`},
		{"empty object", `{}`},
		{"empty array", `[]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := Parse([]byte(tt.in))
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			if got := string(v.Encode()); got != tt.in {
				t.Errorf("Encode() = %s, want %s", got, tt.in)
			}
		})
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"empty", ``},
		{"garbage", `{"a":`},
		{"trailing", `{} {}`},
		{"bare word", `nope`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse([]byte(tt.in)); err == nil {
				t.Errorf("Parse(%q) expected error", tt.in)
			}
		})
	}
}

func TestParsePreservesKeyOrder(t *testing.T) {
	v := mustParse(t, `{"z":1,"a":2,"m":3}`)
	want := []string{"z", "a", "m"}
	got := v.Keys()
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Keys() = %v, want %v", got, want)
		}
	}
}

func TestParsePreservesNumberForm(t *testing.T) {
	v := mustParse(t, `[1,1.0,1.5,100000000000000000001]`)
	if got := string(v.Encode()); got != `[1,1.0,1.5,100000000000000000001]` {
		t.Errorf("Encode() = %s", got)
	}
	if !v.Index(0).IsInt() {
		t.Errorf("1 should take the integer path")
	}
	if v.Index(1).IsInt() {
		t.Errorf("1.0 should take the float path")
	}
}

func TestEncodePretty(t *testing.T) {
	v := mustParse(t, `{"a":1,"b":[1,2],"c":{},"d":{"e":"x"}}`)
	want := `{
  "a": 1,
  "b": [
    1,
    2
  ],
  "c": {},
  "d": {
    "e": "x"
  }
}`
	if got := string(v.EncodePretty()); got != want {
		t.Errorf("EncodePretty() = %s, want %s", got, want)
	}
}

func TestFromGo(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"nil", nil, `null`},
		{"bool", true, `true`},
		{"int", 42, `42`},
		{"float", 2.5, `2.5`},
		{"whole float", float64(3), `3`},
		{"string", "hi", `"hi"`},
		{"slice", []any{1, "a"}, `[1,"a"]`},
		{"map sorted", map[string]any{"b": 1, "a": 2}, `{"a":2,"b":1}`},
		{"raw preserves order", jsonRaw(`{"b":1,"a":2}`), `{"b":1,"a":2}`},
		{"struct", struct {
			N string `json:"n"`
		}{"ada"}, `{"n":"ada"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := FromGo(tt.in)
			if err != nil {
				t.Fatalf("FromGo() error = %v", err)
			}
			if got := string(v.Encode()); got != tt.want {
				t.Errorf("FromGo(%v) = %s, want %s", tt.in, got, tt.want)
			}
		})
	}
}
