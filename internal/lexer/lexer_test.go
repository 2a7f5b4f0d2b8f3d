package lexer

import "testing"

func tokenTypes(toks []Token) []TokenType {
	out := make([]TokenType, len(toks))
	for i, t := range toks {
		out[i] = t.Type
	}
	return out
}

func assertTypes(t *testing.T, src string, want ...TokenType) {
	t.Helper()
	toks := New(src).AllTokens()
	got := tokenTypes(toks)
	if len(got) != len(want)+1 { // +1 for trailing EOF
		t.Fatalf("%q: got %d tokens %v, want %d + EOF", src, len(got), got, len(want))
	}
	for i, w := range want {
		if got[i] != w {
			t.Errorf("%q: token %d = %v, want %v", src, i, got[i], w)
		}
	}
	if got[len(got)-1] != EOF {
		t.Errorf("%q: last token = %v, want EOF", src, got[len(got)-1])
	}
}

func TestOperators(t *testing.T) {
	assertTypes(t, "+ - * / % == != > < >= <=", PLUS, MINUS, STAR, SLASH, PERCENT, EQ, NOT_EQ, GT, LT, GT_EQ, LT_EQ)
	assertTypes(t, "&& || ! => ...", AND, OR, BANG, ARROW, SPREAD)
}

func TestKeywordsAndTypeLiterals(t *testing.T) {
	assertTypes(t, "true false null is not", TRUE, FALSE, NULL, IS, NOT)
	assertTypes(t, "int float string bool array object number",
		TYPE_INT, TYPE_FLOAT, TYPE_STRING, TYPE_BOOL, TYPE_ARRAY, TYPE_OBJECT, TYPE_NUMBER)
}

func TestIdentifierAndBacktickQuoted(t *testing.T) {
	toks := New("foo `weird name` _bar1").AllTokens()
	if toks[0].Type != IDENT || toks[0].Literal != "foo" {
		t.Errorf("got %v", toks[0])
	}
	if toks[1].Type != IDENT || toks[1].Literal != "weird name" {
		t.Errorf("got %v", toks[1])
	}
	if toks[2].Type != IDENT || toks[2].Literal != "_bar1" {
		t.Errorf("got %v", toks[2])
	}
}

func TestNumberLiterals(t *testing.T) {
	cases := []struct {
		src  string
		typ  TokenType
		lit  string
	}{
		{"123", INT, "123"},
		{"3.14", FLOAT, "3.14"},
		{"1e10", FLOAT, "1e10"},
		{"1.5e-3", FLOAT, "1.5e-3"},
	}
	for _, c := range cases {
		toks := New(c.src).AllTokens()
		if toks[0].Type != c.typ || toks[0].Literal != c.lit {
			t.Errorf("%q: got %v %q, want %v %q", c.src, toks[0].Type, toks[0].Literal, c.typ, c.lit)
		}
	}
}

func TestMalformedNumberIsIllegal(t *testing.T) {
	toks := New("123abc").AllTokens()
	if toks[0].Type != ILLEGAL {
		t.Errorf("expected ILLEGAL for malformed number, got %v", toks[0].Type)
	}
}

func TestStringEscapes(t *testing.T) {
	toks := New(`"a\nb\tc\\d"`).AllTokens()
	want := "a\nb\tc\\d"
	if toks[0].Type != STRING || toks[0].Literal != want {
		t.Errorf("got %v %q, want STRING %q", toks[0].Type, toks[0].Literal, want)
	}
}

func TestUnterminatedStringErrors(t *testing.T) {
	l := New(`"abc`)
	toks := l.AllTokens()
	if toks[0].Type != ILLEGAL {
		t.Errorf("expected ILLEGAL for unterminated string, got %v", toks[0].Type)
	}
	if len(l.Errors()) == 0 {
		t.Error("expected a lex error to be recorded")
	}
}

func TestCommentsAreSkipped(t *testing.T) {
	assertTypes(t, "1 // comment\n+ /* block */ 2", INT, PLUS, INT)
}

func TestSpreadVsDot(t *testing.T) {
	assertTypes(t, ". ... .", DOT, SPREAD, DOT)
}
