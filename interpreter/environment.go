package interpreter

import (
	"github.com/loxlang/lox/lox"
	"github.com/loxlang/lox/token"
)

// environment holds the variable bindings visible in one lexical scope, chained to its enclosing scope.
type environment struct {
	parent *environment
	values map[string]any
}

func newEnvironment(parent *environment) *environment {
	return &environment{parent: parent, values: make(map[string]any)}
}

// define binds name to value in this environment, shadowing any binding of the same name in an enclosing one.
func (e *environment) define(name string, value any) {
	e.values[name] = value
}

// get looks up tok by walking up the environment chain.
func (e *environment) get(tok token.Token) any {
	for env := e; env != nil; env = env.parent {
		if v, ok := env.values[tok.Lexeme]; ok {
			return v
		}
	}
	panic(lox.RuntimeErrorf(tok, "undefined variable '%s'", tok.Lexeme))
}

// getAt looks up tok in the environment exactly distance scopes up the chain, as computed by the resolver.
func (e *environment) getAt(distance int, tok token.Token) any {
	return e.ancestor(distance).values[tok.Lexeme]
}

// assign rebinds an existing variable by walking up the environment chain, raising a runtime error if it was never
// declared.
func (e *environment) assign(tok token.Token, value any) {
	for env := e; env != nil; env = env.parent {
		if _, ok := env.values[tok.Lexeme]; ok {
			env.values[tok.Lexeme] = value
			return
		}
	}
	panic(lox.RuntimeErrorf(tok, "undefined variable '%s'", tok.Lexeme))
}

func (e *environment) assignAt(distance int, tok token.Token, value any) {
	e.ancestor(distance).values[tok.Lexeme] = value
}

func (e *environment) ancestor(distance int) *environment {
	env := e
	for i := 0; i < distance; i++ {
		env = env.parent
	}
	return env
}
