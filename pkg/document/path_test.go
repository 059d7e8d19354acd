package document

import (
	"testing"
)

func TestGet(t *testing.T) {
	root := mustParse(t, `{"users":[{"name":"ada"},{"name":"bob"}],"":{"x":1},"-1":"neg"}`)

	tests := []struct {
		name   string
		path   string
		want   string
		wantOK bool
	}{
		{"root", "", `{"users":[{"name":"ada"},{"name":"bob"}],"":{"x":1},"-1":"neg"}`, true},
		{"object key", "users", `[{"name":"ada"},{"name":"bob"}]`, true},
		{"array index", "users.1", `{"name":"bob"}`, true},
		{"nested", "users.0.name", `"ada"`, true},
		{"missing key", "nope", ``, false},
		{"index out of range", "users.5", ``, false},
		{"non numeric on array", "users.first", ``, false},
		{"descend into scalar", "users.0.name.x", ``, false},
		{"empty segment key", ".x", `1`, true},
		{"negative index is object key", "-1", `"neg"`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Get(root, tt.path)
			if ok != tt.wantOK {
				t.Fatalf("Get(%q) ok = %v, want %v", tt.path, ok, tt.wantOK)
			}
			if ok && got.String() != tt.want {
				t.Errorf("Get(%q) = %s, want %s", tt.path, got, tt.want)
			}
		})
	}
}

func TestSet(t *testing.T) {
	tests := []struct {
		name  string
		setup func(*Value)
		path  string
		value string
		want  string
	}{
		{
			name:  "simple key",
			path:  "a",
			value: `1`,
			want:  `{"a":1}`,
		},
		{
			name:  "nested objects created",
			path:  "a.b.c",
			value: `true`,
			want:  `{"a":{"b":{"c":true}}}`,
		},
		{
			name:  "array created for numeric segment",
			path:  "items.2",
			value: `"c"`,
			want:  `{"items":[null,null,"c"]}`,
		},
		{
			name:  "array of objects",
			path:  "users.0.name",
			value: `"ada"`,
			want:  `{"users":[{"name":"ada"}]}`,
		},
		{
			name: "scalar overwritten by object",
			setup: func(root *Value) {
				Set(root, "a", Int(5))
			},
			path:  "a.b",
			value: `1`,
			want:  `{"a":{"b":1}}`,
		},
		{
			name: "null padding promoted on descend",
			setup: func(root *Value) {
				Set(root, "xs.2", Int(3))
			},
			path:  "xs.0.k",
			value: `1`,
			want:  `{"xs":[{"k":1},null,3]}`,
		},
		{
			name: "non numeric segment on array is a no-op",
			setup: func(root *Value) {
				Set(root, "xs.0", Int(1))
			},
			path:  "xs.key",
			value: `2`,
			want:  `{"xs":[1]}`,
		},
		{
			name: "existing container kept",
			setup: func(root *Value) {
				Set(root, "a.b", Int(1))
			},
			path:  "a.c",
			value: `2`,
			want:  `{"a":{"b":1,"c":2}}`,
		},
		{
			name:  "empty path replaces root",
			path:  "",
			value: `[1,2]`,
			want:  `[1,2]`,
		},
		{
			name:  "empty segment is a literal key",
			path:  "a..b",
			value: `1`,
			want:  `{"a":{"":{"b":1}}}`,
		},
		{
			name:  "negative segment is an object key",
			path:  "a.-1",
			value: `1`,
			want:  `{"a":{"-1":1}}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := Object()
			if tt.setup != nil {
				tt.setup(root)
			}
			Set(root, tt.path, mustParse(t, tt.value))
			if got := root.String(); got != tt.want {
				t.Errorf("after Set(%q, %s): %s, want %s", tt.path, tt.value, got, tt.want)
			}
		})
	}
}

func TestSetIdempotent(t *testing.T) {
	a := Object()
	Set(a, "x.y", Int(1))
	b := Object()
	Set(b, "x.y", Int(1))
	Set(b, "x.y", Int(1))
	if !Equal(a, b) {
		t.Errorf("set twice differs: %s vs %s", a, b)
	}
}

func TestDelete(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		path string
		want string
	}{
		{"object key", `{"a":1,"b":2}`, "a", `{"b":2}`},
		{"nested", `{"a":{"b":1,"c":2}}`, "a.b", `{"a":{"c":2}}`},
		{"array splice", `{"xs":[1,2,3]}`, "xs.1", `{"xs":[1,3]}`},
		{"index out of range", `{"xs":[1]}`, "xs.5", `{"xs":[1]}`},
		{"missing ancestor", `{"a":1}`, "b.c", `{"a":1}`},
		{"non numeric on array", `{"xs":[1]}`, "xs.k", `{"xs":[1]}`},
		{"through scalar", `{"a":1}`, "a.b", `{"a":1}`},
		{"empty path resets root", `{"a":1}`, "", `{}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := mustParse(t, tt.doc)
			Delete(root, tt.path)
			if got := root.String(); got != tt.want {
				t.Errorf("Delete(%q) on %s = %s, want %s", tt.path, tt.doc, got, tt.want)
			}
		})
	}
}

func TestDeleteIdempotent(t *testing.T) {
	root := mustParse(t, `{"a":{"b":1}}`)
	Delete(root, "a.b")
	Delete(root, "a.b")
	if got := root.String(); got != `{"a":{}}` {
		t.Errorf("after double delete: %s", got)
	}
}
