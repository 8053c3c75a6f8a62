// Command lox is the entry point for the Lox interpreter: a CLI driver which can run a file, a snippet passed with
// -c, or a line-by-line REPL.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path"

	"github.com/chzyer/readline"
	"github.com/mattn/go-runewidth"

	"github.com/loxlang/lox/ast"
	"github.com/loxlang/lox/interpreter"
	"github.com/loxlang/lox/lox"
	"github.com/loxlang/lox/parser"
	"github.com/loxlang/lox/resolver"
	"github.com/loxlang/lox/scanner"
	"github.com/loxlang/lox/token"
)

var (
	cmd      = flag.String("c", "", "run this snippet instead of a file or the REPL")
	printTok = flag.Bool("t", false, "print the token stream instead of running")
	printAST = flag.Bool("p", false, "print the parsed AST instead of running")
)

const (
	exitUsage   = 64
	exitCompile = 65
	exitRuntime = 70
)

//nolint:revive
func usage() {
	fmt.Fprintf(os.Stderr, "Usage: lox [options] [script]\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "Options:\n")
	flag.PrintDefaults()
}

func main() {
	flag.Usage = usage
	flag.Parse()

	if *cmd != "" {
		run := newRunner()
		code := run.runSrc(*cmd)
		os.Exit(code)
	}

	switch len(flag.Args()) {
	case 0:
		runREPL()
	case 1:
		os.Exit(runFile(flag.Args()[0]))
	default:
		usage()
		os.Exit(exitUsage)
	}
}

// runner owns the long-lived interpreter and resolver state shared across every line of a single process: the
// globals environment and the resolver's locals side table, so that state set up on one line is visible to the next.
type runner struct {
	interp *interpreter.Interpreter
	res    *resolver.Resolver
}

func newRunner() *runner {
	return &runner{interp: interpreter.New(), res: resolver.New()}
}

// runSrc runs one chunk of source code through the full pipeline and returns the process exit code that this chunk
// alone would warrant.
func (r *runner) runSrc(src string) int {
	tokens, err := scanner.New(src).Scan()
	if err != nil {
		lox.PrintCompile(err)
		return exitCompile
	}
	if *printTok {
		printTokens(tokens)
		return 0
	}

	program, err := parser.New(tokens).Parse()
	if err != nil {
		lox.PrintCompile(err)
		return exitCompile
	}
	if *printAST {
		ast.PrintProgram(program)
		return 0
	}

	locals, err := r.res.Resolve(program)
	if err != nil {
		lox.PrintCompile(err)
		return exitCompile
	}
	r.interp.SetLocals(locals)

	if err := r.interp.Interpret(program); err != nil {
		var runtimeErr *lox.RuntimeError
		if errors.As(err, &runtimeErr) {
			lox.PrintRuntime(runtimeErr)
			return exitRuntime
		}
		fmt.Fprintln(os.Stderr, err)
		return exitRuntime
	}
	return 0
}

// printTokens prints the token stream for the -t flag, aligning the lexeme column to the widest token type name.
// go-runewidth makes this alignment correct even for a string literal containing wide (e.g. CJK) characters, which a
// plain byte-length %-Ns wouldn't account for.
func printTokens(tokens []token.Token) {
	width := 0
	for _, t := range tokens {
		if w := runewidth.StringWidth(t.Type.String()); w > width {
			width = w
		}
	}
	for _, t := range tokens {
		fmt.Printf("%s %q\n", runewidth.FillRight(t.Type.String(), width), t.Lexeme)
	}
}

func runREPL() {
	cfg := &readline.Config{Prompt: "> "}

	homeDir, err := os.UserHomeDir()
	if err == nil {
		cfg.HistoryFile = path.Join(homeDir, ".lox_history")
	} else {
		fmt.Fprintf(os.Stderr, "can't get home directory (%s), command history will not be saved\n", err)
	}

	rl, err := readline.NewEx(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "starting REPL: %s\n", err)
		os.Exit(1)
	}
	defer rl.Close()

	r := newRunner()
	for {
		line, err := rl.Readline()
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) {
				continue
			}
			if errors.Is(err, io.EOF) {
				return
			}
			fmt.Fprintf(os.Stderr, "reading line: %s\n", err)
			return
		}
		r.runSrc(line)
	}
}

func runFile(name string) int {
	src, err := os.ReadFile(name)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return newRunner().runSrc(string(src))
}
