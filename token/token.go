// Package token defines Token, the lexical token type produced by the scanner and
// consumed by the parser, resolver and interpreter.
package token

import "fmt"

// Type is the type of a lexical token.
type Type int

// The list of all token types.
const (
	Illegal Type = iota
	EOF

	// Literals
	Ident
	String
	Number

	// Single and double character tokens
	LeftParen
	RightParen
	LeftBrace
	RightBrace
	Comma
	Dot
	Minus
	Plus
	Semicolon
	Slash
	Star
	Bang
	BangEqual
	Equal
	EqualEqual
	Greater
	GreaterEqual
	Less
	LessEqual
	Question
	Colon

	// Keywords
	And
	Class
	Else
	False
	Fun
	For
	If
	Nil
	Or
	Print
	Return
	Super
	This
	True
	Var
	While
	Break
	Continue
)

var typeNames = map[Type]string{
	Illegal:      "illegal",
	EOF:          "EOF",
	Ident:        "identifier",
	String:       "string",
	Number:       "number",
	LeftParen:    "(",
	RightParen:   ")",
	LeftBrace:    "{",
	RightBrace:   "}",
	Comma:        ",",
	Dot:          ".",
	Minus:        "-",
	Plus:         "+",
	Semicolon:    ";",
	Slash:        "/",
	Star:         "*",
	Bang:         "!",
	BangEqual:    "!=",
	Equal:        "=",
	EqualEqual:   "==",
	Greater:      ">",
	GreaterEqual: ">=",
	Less:         "<",
	LessEqual:    "<=",
	Question:     "?",
	Colon:        ":",
	And:          "and",
	Class:        "class",
	Else:         "else",
	False:        "false",
	Fun:          "fun",
	For:          "for",
	If:           "if",
	Nil:          "nil",
	Or:           "or",
	Print:        "print",
	Return:       "return",
	Super:        "super",
	This:         "this",
	True:         "true",
	Var:          "var",
	While:        "while",
	Break:        "break",
	Continue:     "continue",
}

func (t Type) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("Type(%d)", int(t))
}

var keywords = func() map[string]Type {
	m := make(map[string]Type)
	for _, t := range []Type{
		And, Class, Else, False, Fun, For, If, Nil, Or, Print, Return, Super, This, True, Var, While, Break, Continue,
	} {
		m[typeNames[t]] = t
	}
	return m
}()

// LookupIdent returns the keyword Type associated with ident, or Ident if ident is not a keyword.
func LookupIdent(ident string) Type {
	if t, ok := keywords[ident]; ok {
		return t
	}
	return Ident
}

// Token is a lexical token of Lox source code.
type Token struct {
	Type Type
	// Lexeme is the exact slice of source text which the token was scanned from.
	Lexeme string
	// Literal is the decoded value of a NUMBER (float64) or STRING (string, unquoted) token. It is nil for every
	// other token type.
	Literal any
	// Line is the 1-based line on which the token starts.
	Line int
	// Column is the 1-based column on which the token starts. It exists only to disambiguate tokens which share a
	// line (e.g. as a map key in the resolver's locals table); diagnostics only ever report Line.
	Column int
}

func (t Token) String() string {
	if t.Type == EOF {
		return "EOF"
	}
	return t.Lexeme
}
