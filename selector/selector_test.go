package selector

import (
	"testing"
)

func TestParse(t *testing.T) {
	t.Run("root", func(t *testing.T) {
		sel, err := Parse("")
		if err != nil {
			t.Fatalf("Parse(\"\") error = %v, want nil", err)
		}
		if len(sel.Accessors) != 0 {
			t.Errorf("Parse(\"\") accessors = %v, want empty", sel.Accessors)
		}
	})

	t.Run("single key", func(t *testing.T) {
		sel, err := Parse(".info")
		if err != nil {
			t.Fatalf("Parse error = %v, want nil", err)
		}
		if len(sel.Accessors) != 1 {
			t.Fatalf("got %d accessors, want 1", len(sel.Accessors))
		}
		acc := sel.Accessors[0]
		if acc.Kind != KeyKind || string(acc.Key) != "info" {
			t.Errorf("accessor = %+v, want Key(info)", acc)
		}
		if acc.Prefix != ".info" {
			t.Errorf("prefix = %q, want %q", acc.Prefix, ".info")
		}
	})

	t.Run("single index", func(t *testing.T) {
		sel, err := Parse("[3]")
		if err != nil {
			t.Fatalf("Parse error = %v, want nil", err)
		}
		acc := sel.Accessors[0]
		if acc.Kind != IndexKind || acc.Index != 3 {
			t.Errorf("accessor = %+v, want Index(3)", acc)
		}
		if acc.Prefix != "[3]" {
			t.Errorf("prefix = %q, want %q", acc.Prefix, "[3]")
		}
	})

	t.Run("mixed path with prefixes", func(t *testing.T) {
		sel, err := Parse(".files[2].length")
		if err != nil {
			t.Fatalf("Parse error = %v, want nil", err)
		}
		want := []struct {
			kind   Kind
			key    string
			index  int
			prefix string
		}{
			{KeyKind, "files", 0, ".files"},
			{IndexKind, "", 2, ".files[2]"},
			{KeyKind, "length", 0, ".files[2].length"},
		}
		if len(sel.Accessors) != len(want) {
			t.Fatalf("got %d accessors, want %d", len(sel.Accessors), len(want))
		}
		for i, w := range want {
			acc := sel.Accessors[i]
			if acc.Kind != w.kind || string(acc.Key) != w.key || acc.Index != w.index || acc.Prefix != w.prefix {
				t.Errorf("accessor[%d] = %+v, want %+v", i, acc, w)
			}
		}
	})

	t.Run("escaped dot in key", func(t *testing.T) {
		sel, err := Parse(`.a\.b`)
		if err != nil {
			t.Fatalf("Parse error = %v, want nil", err)
		}
		if string(sel.Accessors[0].Key) != "a.b" {
			t.Errorf("key = %q, want %q", sel.Accessors[0].Key, "a.b")
		}
	})

	t.Run("escaped bracket and backslash in key", func(t *testing.T) {
		sel, err := Parse(`.a\[b\\c`)
		if err != nil {
			t.Fatalf("Parse error = %v, want nil", err)
		}
		if string(sel.Accessors[0].Key) != `a[b\c` {
			t.Errorf("key = %q, want %q", sel.Accessors[0].Key, `a[b\c`)
		}
	})

	errTests := []struct {
		name string
		in   string
	}{
		{"bad leading char", "oops"},
		{"trailing backslash", `.foo\`},
		{"invalid escape", `.fo\oo`},
		{"negative index", "[-1]"},
		{"non-digit index", "[a]"},
		{"empty index", "[]"},
		{"unclosed bracket", "[3"},
	}
	for _, tt := range errTests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse(tt.in); err == nil {
				t.Errorf("Parse(%q) error = nil, want error", tt.in)
			}
		})
	}
}
