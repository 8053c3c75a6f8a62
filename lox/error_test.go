package lox

import (
	"testing"

	"github.com/loxlang/lox/token"
)

func TestErrorFormat(t *testing.T) {
	tests := []struct {
		name string
		tok  token.Token
		want string
	}{
		{
			name: "at end",
			tok:  token.Token{Type: token.EOF, Line: 3},
			want: "[line 3] Error at end: expect ';'",
		},
		{
			name: "at lexeme",
			tok:  token.Token{Type: token.Ident, Lexeme: "foo", Line: 5},
			want: "[line 5] Error at 'foo': undefined",
		},
		{
			name: "illegal token has no location suffix",
			tok:  token.Token{Type: token.Illegal, Lexeme: "@", Line: 1},
			want: "[line 1] Error: unexpected character",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var err error
			switch tt.name {
			case "at end":
				err = Errorf(tt.tok, "expect ';'")
			case "at lexeme":
				err = Errorf(tt.tok, "undefined")
			case "illegal token has no location suffix":
				err = Errorf(tt.tok, "unexpected character")
			}
			if got := err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRuntimeErrorFormat(t *testing.T) {
	err := RuntimeErrorf(token.Token{Line: 1}, "operands must be numbers")
	want := "operands must be numbers\n[line 1]"
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}
