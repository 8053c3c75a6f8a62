package resolver

import (
	"testing"

	"github.com/loxlang/lox/ast"
	"github.com/loxlang/lox/parser"
	"github.com/loxlang/lox/scanner"
	"github.com/loxlang/lox/token"
)

func resolve(t *testing.T, src string) (ast.Program, map[token.Token]int, error) {
	t.Helper()
	tokens, err := scanner.New(src).Scan()
	if err != nil {
		t.Fatalf("scanning %q: %s", src, err)
	}
	program, err := parser.New(tokens).Parse()
	if err != nil {
		t.Fatalf("parsing %q: %s", src, err)
	}
	locals, err := New().Resolve(program)
	return program, locals, err
}

func TestResolveLocalVariableDistance(t *testing.T) {
	_, locals, err := resolve(t, `{ var a = 1; { print a; } }`)
	if err != nil {
		t.Fatalf("Resolve() returned unexpected error: %s", err)
	}
	if len(locals) != 1 {
		t.Fatalf("got %d locals, want 1", len(locals))
	}
	for _, distance := range locals {
		if distance != 1 {
			t.Errorf("distance = %d, want 1 (one block scope up)", distance)
		}
	}
}

func TestResolveGlobalIsNotRecorded(t *testing.T) {
	_, locals, err := resolve(t, `var a = 1; print a;`)
	if err != nil {
		t.Fatalf("Resolve() returned unexpected error: %s", err)
	}
	if len(locals) != 0 {
		t.Errorf("got %d locals, want 0 (a is global)", len(locals))
	}
}

func TestResolveClosureCapturesDeclarationScope(t *testing.T) {
	// This is the classic "name resolved at declaration, not use" case.
	src := `
		var a = "global";
		{
			fun show() { print a; }
			show();
			var a = "local";
			show();
		}
	`
	_, _, err := resolve(t, src)
	if err != nil {
		t.Fatalf("Resolve() returned unexpected error: %s", err)
	}
}

func TestResolveErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"self referential initializer", `{ var a = a; }`},
		{"duplicate local", `{ var a = 1; var a = 2; }`},
		{"return outside function", `return 1;`},
		{"value return from initializer", `class C { init() { return 1; } }`},
		{"this outside class", `print this;`},
		{"super outside class", `print super.x;`},
		{"super without superclass", `class A { m() { super.m(); } }`},
		{"break outside loop", `break;`},
		{"continue outside loop", `continue;`},
		{"class inherits from itself", `class A < A {}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := resolve(t, tt.src)
			if err == nil {
				t.Errorf("Resolve(%q) returned no error, want one", tt.src)
			}
		})
	}
}

func TestResolveNilReturnFromInitializerIsAllowed(t *testing.T) {
	_, _, err := resolve(t, `class C { init() { return nil; } }`)
	if err != nil {
		t.Errorf("Resolve() returned unexpected error: %s", err)
	}
}

func TestResolveValidThisAndSuperUsage(t *testing.T) {
	src := `
		class A { hi() { return "A"; } }
		class B < A { hi() { return super.hi() + this.name; } }
	`
	_, _, err := resolve(t, src)
	if err != nil {
		t.Errorf("Resolve() returned unexpected error: %s", err)
	}
}
