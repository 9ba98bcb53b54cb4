package lispy

import (
	"errors"
	"testing"
)

func mustParse(t *testing.T, input string) Value {
	t.Helper()
	v, err := ParseString(input)
	if err != nil {
		t.Fatalf("parse %q: %v", input, err)
	}
	return v
}

func TestParseAtoms(t *testing.T) {
	cases := []struct {
		input string
		want  Value
	}{
		{"42", IntVal(42)},
		{"-7", IntVal(-7)},
		{"+5", IntVal(5)},
		{"3.14", FloatVal(3.14)},
		{".5", FloatVal(0.5)},
		{"1.5e3", FloatVal(1500)},
		{"true", BoolVal(true)},
		{"false", BoolVal(false)},
		{`"hello world"`, StringVal("hello world")},
		{`""`, StringVal("")},
		{"foo-bar?", SymbolVal("foo-bar?")},
		{"nil", SymbolVal("nil")},
		{"True", SymbolVal("True")},
		{"1e5", SymbolVal("1e5")},
		{"1.2.3", SymbolVal("1.2.3")},
		{"a.b", SymbolVal("a.b")},
		{"0x1.8p1", SymbolVal("0x1.8p1")},
		{"-", SymbolVal("-")},
		{"==", SymbolVal("==")},
	}
	for _, tc := range cases {
		got := mustParse(t, tc.input)
		if got.Kind != tc.want.Kind || !ValuesEqual(got, tc.want) {
			t.Fatalf("parse %q: expected %s %s, got %s %s", tc.input, tc.want.KindName(), tc.want.String(), got.KindName(), got.String())
		}
	}
}

func TestParseStringEscapes(t *testing.T) {
	n := mustParse(t, `"line\none\ttab\\ \"q\""`)
	if n.Kind != ValString || n.Str != "line\none\ttab\\ \"q\"" {
		t.Fatalf("expected escapes decoded, got %q", n.Str)
	}
}

func TestParseStringIsNotSymbol(t *testing.T) {
	n := mustParse(t, `(print "x" x)`)
	if n.List[1].Kind != ValString || n.List[2].Kind != ValSymbol {
		t.Fatalf("expected String then Symbol, got %s %s", n.List[1].KindName(), n.List[2].KindName())
	}
}

func TestParseList(t *testing.T) {
	n := mustParse(t, "(add 1 2)")
	if n.Kind != ValList || len(n.List) != 3 {
		t.Fatalf("expected list with 3 children, got %v", n)
	}
	if !n.List[0].IsSymbol("add") {
		t.Fatalf("expected head 'add', got %v", n.List[0])
	}
}

func TestParseNested(t *testing.T) {
	n := mustParse(t, "(if true (list 1) (list (list 2)))")
	if n.String() != "(if true (list 1) (list (list 2)))" {
		t.Fatalf("unexpected tree %s", n.String())
	}
}

func TestParseEmptyList(t *testing.T) {
	n := mustParse(t, "()")
	if n.Kind != ValList || len(n.List) != 0 {
		t.Fatalf("expected empty list, got %v", n)
	}
}

func TestParseEmptyInput(t *testing.T) {
	for _, input := range []string{"", "   \n", "; nothing here"} {
		n := mustParse(t, input)
		if n.Kind != ValNil {
			t.Fatalf("parse %q: expected Nil, got %s", input, n.String())
		}
	}
}

func TestParseWrapsTopLevelForms(t *testing.T) {
	n := mustParse(t, "(def x 1)\n(print x)")
	if n.String() != "(do (def x 1) (print x))" {
		t.Fatalf("expected implicit do, got %s", n.String())
	}
	single := mustParse(t, "(print x)")
	if single.String() != "(print x)" {
		t.Fatalf("single form should not be wrapped, got %s", single.String())
	}
}

func TestParseErrors(t *testing.T) {
	cases := []string{
		"(unclosed",
		"((a)",
		")",
		"(a))",
		"99999999999999999999",
	}
	for _, input := range cases {
		_, err := ParseString(input)
		var se *SyntaxError
		if !errors.As(err, &se) {
			t.Fatalf("expected SyntaxError for %q, got %v", input, err)
		}
	}
}

func TestParseErrorPosition(t *testing.T) {
	_, err := ParseString("(a\n (b c)")
	var se *SyntaxError
	if !errors.As(err, &se) {
		t.Fatalf("expected SyntaxError, got %v", err)
	}
	if se.Line != 1 || se.Col != 1 {
		t.Fatalf("expected missing ) reported at the open paren 1:1, got %d:%d", se.Line, se.Col)
	}

	_, err = ParseString("a\n  )")
	if !errors.As(err, &se) || se.Line != 2 || se.Col != 3 {
		t.Fatalf("expected unexpected ) at 2:3, got %v", err)
	}
}
