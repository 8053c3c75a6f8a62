package interpreter

import (
	"bytes"
	"errors"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/loxlang/lox/lox"
	"github.com/loxlang/lox/parser"
	"github.com/loxlang/lox/resolver"
	"github.com/loxlang/lox/scanner"
)

// run interprets src and returns everything printed to stdout and any error returned by Interpret.
func run(t *testing.T, src string) (string, error) {
	t.Helper()
	tokens, err := scanner.New(src).Scan()
	if err != nil {
		t.Fatalf("scanning %q: %s", src, err)
	}
	program, err := parser.New(tokens).Parse()
	if err != nil {
		t.Fatalf("parsing %q: %s", src, err)
	}
	locals, err := resolver.New().Resolve(program)
	if err != nil {
		t.Fatalf("resolving %q: %s", src, err)
	}

	interp := New()
	interp.SetLocals(locals)

	stdout := captureStdout(t, func() {
		err = interp.Interpret(program)
	})
	return stdout, err
}

func captureStdout(t *testing.T, fn func()) string {
	t.Helper()
	old := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	os.Stdout = w
	defer func() { os.Stdout = old }()

	fn()

	w.Close()
	var buf bytes.Buffer
	io.Copy(&buf, r)
	return buf.String()
}

func TestInterpretScenarios(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"arithmetic", `print 1 + 2;`, "3\n"},
		{"string concatenation", `var a = "hi "; var b = "there"; print a + b;`, "hi there\n"},
		{"for loop accumulation", `var a = 0; for (var i = 0; i < 3; i = i + 1) a = a + i; print a;`, "3\n"},
		{"closure captures state", `
			fun mk() { var i = 0; fun inc() { i = i + 1; return i; } return inc; }
			var f = mk(); print f(); print f(); print f();
		`, "1\n2\n3\n"},
		{"resolver binds at declaration scope", `
			var a = "global";
			{ fun show() { print a; } show(); var a = "local"; show(); }
		`, "global\nglobal\n"},
		{"inheritance and super", `
			class A { hi() { print "A"; } }
			class B < A { hi() { super.hi(); print "B"; } }
			B().hi();
		`, "A\nB\n"},
		{"initializer returns this", `class C { init() { return; } } print C();`, "C instance\n"},
		{"initializer returns nil", `class C { init() { return nil; } } print C();`, "C instance\n"},
		{"negative zero prints as zero", `print -0;`, "0\n"},
		{"break exits the loop", `
			var i = 0;
			while (true) { if (i == 3) break; print i; i = i + 1; }
		`, "0\n1\n2\n"},
		{"continue skips to the next iteration", `
			var out = "";
			for (var i = 0; i < 5; i = i + 1) {
				if (i == 2) continue;
				out = out + "x";
			}
			print out;
		`, "xxxx\n"},
		{"ternary", `print true ? "yes" : "no";`, "yes\n"},
		{"anonymous function expression", `var f = fun (x) { return x + 1; }; print f(41);`, "42\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := run(t, tt.src)
			if err != nil {
				t.Fatalf("Interpret() returned unexpected error: %s", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("stdout differs from expected (-want +got):\n%s", diff)
			}
		})
	}
}

func TestInterpretRuntimeErrorFormat(t *testing.T) {
	_, err := run(t, `print "x" - 1;`)
	if err == nil {
		t.Fatal("Interpret() returned no error, want one")
	}
	var runtimeErr *lox.RuntimeError
	if !errors.As(err, &runtimeErr) {
		t.Fatalf("error is a %T, want *lox.RuntimeError", err)
	}
	if !strings.Contains(runtimeErr.Error(), "\n[line 1]") {
		t.Errorf("error = %q, want it to end with the line marker", runtimeErr.Error())
	}
}

func TestInterpretUndefinedVariableIsARuntimeError(t *testing.T) {
	_, err := run(t, `print notDefined;`)
	if err == nil {
		t.Fatal("Interpret() returned no error, want one")
	}
}

func TestInterpretBoundMethodsAreObservationallyEqual(t *testing.T) {
	got, err := run(t, `
		class Counter { get() { return this; } }
		var c = Counter();
		var a = c.get;
		var b = c.get;
		print a() == b();
	`)
	if err != nil {
		t.Fatalf("Interpret() returned unexpected error: %s", err)
	}
	// a and b are distinct bound method values, but invoking either returns the same underlying instance.
	if diff := cmp.Diff("true\n", got); diff != "" {
		t.Errorf("stdout differs from expected (-want +got):\n%s", diff)
	}
}
