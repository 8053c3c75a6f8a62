// Package lox defines the error types shared by every stage of the interpreter pipeline.
package lox

import (
	"errors"
	"fmt"
	"os"

	"github.com/fatih/color"
	"golang.org/x/term"

	"github.com/loxlang/lox/token"
)

var isTerminal = term.IsTerminal(int(os.Stderr.Fd()))

var (
	boldRed = color.New(color.Bold, color.FgRed).SprintFunc()
	bold    = color.New(color.Bold).SprintFunc()
)

// Error is a compile-time error: one raised by the scanner, parser or resolver. Its Error method produces the exact
// format expected on stderr: "[line L] Error<where>: <message>".
type Error struct {
	Tok token.Token
	Msg string
	// AtEOF is set when the error should be reported as occurring "at end" rather than at a token, because the
	// offending token is the synthetic EOF one.
	AtEOF bool
}

func (e *Error) Error() string {
	where := ""
	switch {
	case e.AtEOF || e.Tok.Type == token.EOF:
		where = " at end"
	case e.Tok.Type != token.Illegal:
		where = fmt.Sprintf(" at '%s'", e.Tok.Lexeme)
	}
	return fmt.Sprintf("[line %d] Error%s: %s", e.Tok.Line, where, e.Msg)
}

// Errorf constructs an *Error from a token and a printf-style message.
func Errorf(tok token.Token, format string, a ...any) *Error {
	return &Error{Tok: tok, Msg: fmt.Sprintf(format, a...)}
}

// PrintCompile writes a compile-time error (or the errors.Join of several) to stderr, one line per *Error, colouring
// the "Error" part when stderr is a terminal.
func PrintCompile(err error) {
	for _, e := range unjoin(err) {
		var compileErr *Error
		if errors.As(e, &compileErr) {
			where := ""
			switch {
			case compileErr.AtEOF || compileErr.Tok.Type == token.EOF:
				where = " at end"
			case compileErr.Tok.Type != token.Illegal:
				where = fmt.Sprintf(" at '%s'", compileErr.Tok.Lexeme)
			}
			if isTerminal {
				fmt.Fprintf(os.Stderr, "[line %d] %s%s: %s\n", compileErr.Tok.Line, boldRed("Error"), where, compileErr.Msg)
			} else {
				fmt.Fprintln(os.Stderr, compileErr.Error())
			}
			continue
		}
		fmt.Fprintln(os.Stderr, e)
	}
}

// RuntimeError is raised during evaluation. Its Error method produces the exact format expected on stderr:
// "<message>\n[line L]".
type RuntimeError struct {
	Tok token.Token
	Msg string
}

func (e *RuntimeError) Error() string {
	return fmt.Sprintf("%s\n[line %d]", e.Msg, e.Tok.Line)
}

// RuntimeErrorf constructs a *RuntimeError from a token and a printf-style message.
func RuntimeErrorf(tok token.Token, format string, a ...any) *RuntimeError {
	return &RuntimeError{Tok: tok, Msg: fmt.Sprintf(format, a...)}
}

// PrintRuntime writes a runtime error to stderr, colouring the message when stderr is a terminal.
func PrintRuntime(err *RuntimeError) {
	if isTerminal {
		fmt.Fprintf(os.Stderr, "%s\n[line %d]\n", bold(err.Msg), err.Tok.Line)
		return
	}
	fmt.Fprintln(os.Stderr, err.Error())
}

// Join is errors.Join, exposed here so that every pipeline stage reports multiple errors the same way.
func Join(errs []error) error {
	return errors.Join(errs...)
}

func unjoin(err error) []error {
	if err == nil {
		return nil
	}
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		return joined.Unwrap()
	}
	return []error{err}
}
