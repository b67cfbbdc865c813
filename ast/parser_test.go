// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package ast_test

import (
	"encoding/json"
	"errors"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/creachadair/jvalue"
	"github.com/creachadair/jvalue/ast"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func mustParse(t *testing.T, p *ast.Parser, input string) ast.Value {
	t.Helper()
	v, err := p.ParseString(input)
	if err != nil {
		t.Fatalf("Parse %#q: unexpected error: %v", input, err)
	}
	return v
}

func TestParseValues(t *testing.T) {
	tests := []struct {
		input string
		want  ast.Value
	}{
		{`null`, ast.Null},
		{`true`, ast.Bool(true)},
		{` false `, ast.Bool(false)},
		{`123`, ast.Int(123)},
		{`-456`, ast.Int(-456)},
		{`0`, ast.Int(0)},
		{`-0`, ast.Int(0)},
		{`""`, ast.String("")},
		{`"hello world"`, ast.String("hello world")},
		{`"\"\\\/\b\f\n\r\t"`, ast.String("\"\\/\b\f\n\r\t")},
		{`"Привет"`, ast.String("Привет")},
		{`"😀"`, ast.String("😀")},
		{`"\ud83d\ude00"`, ast.String("😀")},
		{`"\u0041\u0042"`, ast.String("AB")},
		{`"\ud800"`, ast.String("\ufffd")},
		{`"\ud800A"`, ast.String("\ufffdA")},
		{`"\ude00\ud83d"`, ast.String("\ufffd\ufffd")},
		{`"café ☕"`, ast.String("café ☕")},
		{`9223372036854775807`, ast.Int(math.MaxInt64)},
		{`-9223372036854775808`, ast.Int(math.MinInt64)},
		{`9223372036854775808`, ast.Float(9223372036854775808)},
		{`1e400`, ast.Float(math.Inf(1))},

		{`{}`, ast.Object{}},
		{`[]`, ast.Array{}},
		{" \t\r\n[ ] ", ast.Array{}},
		{`{"name": "John", "age": 30}`, ast.Object{
			ast.Field("name", "John"),
			ast.Field("age", 30),
		}},
		{`[1, 2, 3, "four", true, null]`, ast.ArrayOf(1, 2, 3, "four", true, nil)},
		{`{"user": {"name": "Alice", "settings": {"theme": "dark"}}}`, ast.Object{
			ast.Field("user", ast.Object{
				ast.Field("name", "Alice"),
				ast.Field("settings", ast.Object{ast.Field("theme", "dark")}),
			}),
		}},
		{`[[], {}, [[]], {"": {}}]`, ast.Array{
			ast.Array{}, ast.Object{}, ast.Array{ast.Array{}}, ast.Object{ast.Field("", ast.Object{})},
		}},

		// Duplicate keys: the last value wins, at the position of the first.
		{`{"a": 1, "b": 2, "a": 3}`, ast.Object{ast.Field("a", 3), ast.Field("b", 2)}},
		{`{"a": 1, "a": [true]}`, ast.Object{ast.Field("a", ast.ArrayOf(true))}},
	}
	var p ast.Parser
	for _, tc := range tests {
		got := mustParse(t, &p, tc.input)
		if diff := cmp.Diff(tc.want, got); diff != "" {
			t.Errorf("Parse %#q (-want, +got):\n%s", tc.input, diff)
		}
	}
}

func TestParseNumbers(t *testing.T) {
	tests := []struct {
		input string
		want  float64
		isInt bool
	}{
		{"123", 123, true},
		{"-456", -456, true},
		{"3.14", 3.14, false},
		{"1.23e-10", 1.23e-10, false},
		{"2.5E+20", 2.5e20, false},
		{"-0.001E-100", -0.001e-100, false},
		{"5e9", 5e9, false},
		{"1.0", 1, false},
	}
	approx := cmpopts.EquateApprox(1e-12, 0)
	for _, tc := range tests {
		v := mustParse(t, nil, tc.input)
		var got float64
		switch n := v.(type) {
		case ast.Int:
			if !tc.isInt {
				t.Errorf("Parse %q: got integer %v, want float", tc.input, n)
			}
			got = float64(n)
		case ast.Float:
			if tc.isInt {
				t.Errorf("Parse %q: got float %v, want integer", tc.input, n)
			}
			got = float64(n)
		default:
			t.Fatalf("Parse %q: got %T, want number", tc.input, v)
		}
		if !cmp.Equal(got, tc.want, approx) {
			t.Errorf("Parse %q: got %v, want %v", tc.input, got, tc.want)
		}
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		input  string
		kind   *jvalue.Error
		offset int
	}{
		{``, jvalue.ErrSyntax, 0},
		{"   ", jvalue.ErrSyntax, 3},
		{`[1] 2`, jvalue.ErrSyntax, 4},
		{`{}}`, jvalue.ErrSyntax, 2},
		{`{"name": "John}`, jvalue.ErrSyntax, 15},
		{`[1, 2`, jvalue.ErrSyntax, 5},
		{`{`, jvalue.ErrSyntax, 1},
		{`{"a" 1}`, jvalue.ErrSyntax, 5},
		{`{"a":1 "b":2}`, jvalue.ErrSyntax, 7},
		{`{1:2}`, jvalue.ErrSyntax, 1},
		{`{"a":1,}`, jvalue.ErrSyntax, 7},
		{`{"a":}`, jvalue.ErrSyntax, 5},
		{`[1,]`, jvalue.ErrSyntax, 3},
		{`[1 2]`, jvalue.ErrSyntax, 3},
		{`]`, jvalue.ErrSyntax, 0},
		{`01`, jvalue.ErrSyntax, 0},
		{`-01`, jvalue.ErrSyntax, 0},
		{`1.`, jvalue.ErrSyntax, 2},
		{`1.e5`, jvalue.ErrSyntax, 2},
		{`1e`, jvalue.ErrSyntax, 2},
		{`1e+`, jvalue.ErrSyntax, 3},
		{`-`, jvalue.ErrSyntax, 1},
		{`-a`, jvalue.ErrSyntax, 1},
		{`@invalid`, jvalue.ErrSyntax, 0},
		{`[1, 'x']`, jvalue.ErrSyntax, 4},
		{`tru`, jvalue.ErrSyntax, 0},
		{`True`, jvalue.ErrSyntax, 0},
		{`{"name": "Test", numbers: [1, 2, 3]}`, jvalue.ErrSyntax, 17},
		{"\"a\x01\"", jvalue.ErrSyntax, 2},
		{`"\u12`, jvalue.ErrSyntax, 5},
		{`"abc\`, jvalue.ErrSyntax, 5},

		{`"\x"`, jvalue.ErrEncoding, 1},
		{`"\uZZZZ"`, jvalue.ErrEncoding, 1},
		{`"\u12G4"`, jvalue.ErrEncoding, 1},
		{`"\u12"`, jvalue.ErrEncoding, 1},
		{`"\ud83d\uZZZZ"`, jvalue.ErrEncoding, 7},
		{"\"\xff\"", jvalue.ErrEncoding, 1},
	}
	for _, tc := range tests {
		v, err := ast.ParseString(tc.input)
		if err == nil {
			t.Errorf("Parse %#q: got %v, want error", tc.input, v)
			continue
		} else if v != nil {
			t.Errorf("Parse %#q: got partial value %v with error", tc.input, v)
		}
		if !errors.Is(err, tc.kind) {
			t.Errorf("Parse %#q: got %v, want %v", tc.input, err, tc.kind.Kind)
		}
		var jerr *jvalue.Error
		if !errors.As(err, &jerr) {
			t.Errorf("Parse %#q: error %T is not *jvalue.Error", tc.input, err)
		} else if jerr.Offset != tc.offset {
			t.Errorf("Parse %#q: error offset %d, want %d (%v)", tc.input, jerr.Offset, tc.offset, err)
		} else {
			t.Logf("Parse %#q: got expected error: %v", tc.input, err)
		}
	}
}

func TestErrorDetail(t *testing.T) {
	t.Run("Char", func(t *testing.T) {
		_, err := ast.ParseString(`[1, @]`)
		var jerr *jvalue.Error
		if !errors.As(err, &jerr) {
			t.Fatalf("Parse: got %v, want *jvalue.Error", err)
		}
		if jerr.Char != '@' {
			t.Errorf("Char: got %q, want '@'", jerr.Char)
		}
	})
	t.Run("Location", func(t *testing.T) {
		_, err := ast.ParseString("{\n  \"a\": tru\n}")
		var jerr *jvalue.Error
		if !errors.As(err, &jerr) {
			t.Fatalf("Parse: got %v, want *jvalue.Error", err)
		}
		want := jvalue.LineCol{Line: 2, Column: 7}
		if jerr.Location != want {
			t.Errorf("Location: got %v, want %v", jerr.Location, want)
		}
		if jerr.Text != "tru" {
			t.Errorf("Text: got %q, want tru", jerr.Text)
		}
	})
	t.Run("Number", func(t *testing.T) {
		_, err := ast.ParseString(`[00123]`)
		var jerr *jvalue.Error
		if !errors.As(err, &jerr) {
			t.Fatalf("Parse: got %v, want *jvalue.Error", err)
		}
		if jerr.Text != "00123" || jerr.Offset != 1 {
			t.Errorf("Error: got text %q offset %d, want 00123 at 1", jerr.Text, jerr.Offset)
		}
	})
	t.Run("Escape", func(t *testing.T) {
		_, err := ast.ParseString(`"\uZZZZ"`)
		var jerr *jvalue.Error
		if !errors.As(err, &jerr) {
			t.Fatalf("Parse: got %v, want *jvalue.Error", err)
		}
		if jerr.Text != `\uZZZZ` {
			t.Errorf("Text: got %#q, want \\uZZZZ", jerr.Text)
		}
	})
}

func TestMaxDepth(t *testing.T) {
	nest := func(n int) string {
		return strings.Repeat("[", n) + strings.Repeat("]", n)
	}

	t.Run("Custom", func(t *testing.T) {
		p := &ast.Parser{MaxDepth: 3}
		mustParse(t, p, `{"a": {"b": {"c": 1}}}`)
		mustParse(t, p, nest(3))

		_, err := p.ParseString(`{"a": {"b": {"c": {"d": 1}}}}`)
		if !errors.Is(err, jvalue.ErrDepth) {
			t.Errorf("Parse: got %v, want depth error", err)
		}
		_, err = p.ParseString(`[1, [2, {"x": [3]}]]`)
		if !errors.Is(err, jvalue.ErrDepth) {
			t.Errorf("Parse: got %v, want depth error", err)
		}
	})

	t.Run("Default", func(t *testing.T) {
		var p ast.Parser
		mustParse(t, &p, nest(ast.DefaultMaxDepth))

		_, err := p.ParseString(nest(ast.DefaultMaxDepth + 1))
		var jerr *jvalue.Error
		if !errors.As(err, &jerr) || jerr.Kind != jvalue.DepthError {
			t.Fatalf("Parse: got %v, want depth error", err)
		} else if jerr.Offset != ast.DefaultMaxDepth {
			t.Errorf("Depth error offset: got %d, want %d", jerr.Offset, ast.DefaultMaxDepth)
		}
	})

	t.Run("Adversarial", func(t *testing.T) {
		// Far deeper than the limit, and never closed.
		input := strings.Repeat(`{"a":[`, 500000)
		_, err := ast.ParseString(input)
		if !errors.Is(err, jvalue.ErrDepth) {
			t.Errorf("Parse: got %v, want depth error", err)
		}
	})

	t.Run("Reuse", func(t *testing.T) {
		// A depth error must not affect later calls on the same parser.
		p := &ast.Parser{MaxDepth: 2}
		if _, err := p.ParseString(nest(5)); !errors.Is(err, jvalue.ErrDepth) {
			t.Fatalf("Parse: got %v, want depth error", err)
		}
		mustParse(t, p, nest(2))
	})
}

func TestDuplicateKeysWide(t *testing.T) {
	var sb strings.Builder
	sb.WriteString("{")
	for i := range 40 {
		if i > 0 {
			sb.WriteString(",")
		}
		sb.WriteString(`"k` + string(rune('a'+i%20)) + `":` + string(rune('0'+i/20)))
	}
	sb.WriteString("}")

	v := mustParse(t, nil, sb.String())
	obj := v.(ast.Object)
	if len(obj) != 20 {
		t.Fatalf("Got %d members, want 20", len(obj))
	}
	for i, m := range obj {
		if want := "k" + string(rune('a'+i)); m.Key != want {
			t.Errorf("Member %d: key %q, want %q", i, m.Key, want)
		}
		if m.Value != ast.Int(1) {
			t.Errorf("Member %q: got %v, want 1", m.Key, m.Value)
		}
	}
}

const sampleJSON = `{
  "project": "My JSON Parser",
  "version": "1.0.0",
  "features": ["parsing", "validation", "streaming"],
  "author": {"name": "Ваше Имя", "email": "you@example.com"},
  "performance": {"benchmark": 95.5, "memory_efficient": true},
  "misc": [0, -1, 1e3, 2.5E-3, "é\t\"q\"", null, false, {}, []],
  "text": "Привет, мир! Тест"
}`

func TestReferenceDecoder(t *testing.T) {
	inputs := []string{
		sampleJSON,
		`[1, 2, 3, "four", true, null]`,
		`"😀  "`,
		`{"a": {"b": {"c": {"d": [1.5, -2e-7]}}}}`,
		`-0.0`,
	}
	if data, err := os.ReadFile("../testdata/sample.json"); err == nil {
		inputs = append(inputs, string(data))
	}
	for _, input := range inputs {
		v := mustParse(t, nil, input)
		var want any
		if err := json.Unmarshal([]byte(input), &want); err != nil {
			t.Fatalf("Reference decode %#q: %v", input, err)
		}
		if diff := cmp.Diff(want, ast.Native(v)); diff != "" {
			t.Errorf("Input %#q: (-want, +got):\n%s", input, diff)
		}
	}
}

func TestRoundTrip(t *testing.T) {
	for _, input := range []string{
		sampleJSON,
		`[1.0, 3, -2.5e+20, "a\u0000b", {"\"": "\\"}]`,
	} {
		v := mustParse(t, nil, input)
		w := mustParse(t, nil, v.JSON())
		if diff := cmp.Diff(v, w); diff != "" {
			t.Errorf("Round trip %#q (-first, +second):\n%s", input, diff)
		}
	}
}

func TestIdempotent(t *testing.T) {
	first := mustParse(t, new(ast.Parser), sampleJSON)
	for range 3 {
		again := mustParse(t, new(ast.Parser), sampleJSON)
		if diff := cmp.Diff(first, again); diff != "" {
			t.Fatalf("Reparse (-first, +again):\n%s", diff)
		}
	}
}

func TestConcurrentUse(t *testing.T) {
	p := &ast.Parser{MaxDepth: 8}
	want := mustParse(t, p, sampleJSON)

	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 50 {
				if i%2 == 0 {
					got, err := p.ParseString(sampleJSON)
					if err != nil {
						t.Errorf("Parse: unexpected error: %v", err)
						return
					} else if !cmp.Equal(got, want) {
						t.Error("Parse: result differs under concurrent use")
						return
					}
				} else if _, err := p.ParseString(strings.Repeat("[", 20)); !errors.Is(err, jvalue.ErrDepth) {
					t.Errorf("Parse: got %v, want depth error", err)
					return
				}
			}
		}()
	}
	wg.Wait()
}

func TestParseFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "input.json")
	if err := os.WriteFile(path, []byte(sampleJSON), 0600); err != nil {
		t.Fatalf("Write input: %v", err)
	}

	var p ast.Parser
	v, err := p.ParseFile(path)
	if err != nil {
		t.Fatalf("ParseFile: unexpected error: %v", err)
	}
	if got := v.(ast.Object).Find("project"); got == nil || got.Value != ast.String("My JSON Parser") {
		t.Errorf("ParseFile: project is %v", got)
	}

	_, err = p.ParseFile(filepath.Join(dir, "nonesuch.json"))
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("ParseFile: got %v, want not-exist", err)
	}
	var jerr *jvalue.Error
	if errors.As(err, &jerr) {
		t.Errorf("ParseFile: I/O error was converted to %v", jerr)
	}
}

func TestParseStream(t *testing.T) {
	var p ast.Parser
	v, err := p.ParseStream(strings.NewReader(`{}`))
	if !errors.Is(err, jvalue.ErrStreamUnsupported) {
		t.Errorf("ParseStream: got (%v, %v), want %v", v, err, jvalue.ErrStreamUnsupported)
	}
}
