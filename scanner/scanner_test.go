package scanner

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/loxlang/lox/token"
)

func TestScanTokenTypes(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want []token.Type
	}{
		{"empty", "", []token.Type{token.EOF}},
		{"punctuation", "(){},.-+;*?:", []token.Type{
			token.LeftParen, token.RightParen, token.LeftBrace, token.RightBrace, token.Comma, token.Dot,
			token.Minus, token.Plus, token.Semicolon, token.Star, token.Question, token.Colon, token.EOF,
		}},
		{"two char operators", "!= == <= >= < > = !", []token.Type{
			token.BangEqual, token.EqualEqual, token.LessEqual, token.GreaterEqual, token.Less, token.Greater,
			token.Equal, token.Bang, token.EOF,
		}},
		{"line comment", "1 // this is ignored\n2", []token.Type{token.Number, token.Number, token.EOF}},
		{"division is not a comment", "6 / 2", []token.Type{token.Number, token.Slash, token.Number, token.EOF}},
		{"keywords", "and class else false fun for if nil or print return super this true var while break continue", []token.Type{
			token.And, token.Class, token.Else, token.False, token.Fun, token.For, token.If, token.Nil, token.Or,
			token.Print, token.Return, token.Super, token.This, token.True, token.Var, token.While, token.Break,
			token.Continue, token.EOF,
		}},
		{"identifier", "foo_bar123", []token.Type{token.Ident, token.EOF}},
		{"string", `"hello"`, []token.Type{token.String, token.EOF}},
		{"number", "123 1.5", []token.Type{token.Number, token.Number, token.EOF}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens, err := New(tt.src).Scan()
			if err != nil {
				t.Fatalf("Scan() returned unexpected error: %s", err)
			}
			var got []token.Type
			for _, tok := range tokens {
				got = append(got, tok.Type)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("token types differ from expected (-want +got):\n%s", diff)
			}
		})
	}
}

func TestScanLiterals(t *testing.T) {
	tokens, err := New(`"hi there" 3.14`).Scan()
	if err != nil {
		t.Fatalf("Scan() returned unexpected error: %s", err)
	}
	want := []any{"hi there", 3.14, nil}
	var got []any
	for _, tok := range tokens {
		got = append(got, tok.Literal)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("literals differ from expected (-want +got):\n%s", diff)
	}
}

func TestScanLineTracking(t *testing.T) {
	tokens, err := New("1\n2\n\n3").Scan()
	if err != nil {
		t.Fatalf("Scan() returned unexpected error: %s", err)
	}
	want := []int{1, 2, 4, 4} // includes the trailing EOF on line 4
	var got []int
	for _, tok := range tokens {
		got = append(got, tok.Line)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("lines differ from expected (-want +got):\n%s", diff)
	}
}

func TestScanErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"unterminated string", `"unterminated`},
		{"unexpected character", "@"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.src).Scan()
			if err == nil {
				t.Fatalf("Scan(%q) returned no error, want one", tt.src)
			}
		})
	}
}

func TestScanMultipleErrorsAreAllReported(t *testing.T) {
	_, err := New("@ # $").Scan()
	if err == nil {
		t.Fatal("Scan() returned no error, want one")
	}
	// Every illegal character should be reported; none should abort the scan.
	if diff := cmp.Diff(3, len(errsOf(err))); diff != "" {
		t.Errorf("error count differs from expected (-want +got):\n%s", diff)
	}
}

func errsOf(err error) []error {
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		return joined.Unwrap()
	}
	return []error{err}
}
