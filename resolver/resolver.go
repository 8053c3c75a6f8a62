// Package resolver performs a static lexical analysis pass over the AST, recording the number of scopes between
// every variable reference and the scope in which it was declared. The interpreter consults this side table for O(1)
// variable lookup instead of walking the environment chain at runtime.
package resolver

import (
	"github.com/loxlang/lox/ast"
	"github.com/loxlang/lox/lox"
	"github.com/loxlang/lox/token"
)

type functionType int

const (
	noFunction functionType = iota
	function
	method
	initializer
)

type classType int

const (
	noClass classType = iota
	class
	subclass
)

// Resolver walks the AST resolving every variable reference to a scope distance.
type Resolver struct {
	scopes          stack[map[string]bool]
	locals          map[token.Token]int
	currentFunction functionType
	currentClass    classType
	loopDepth       int
	errs            []error
}

// New constructs a Resolver.
func New() *Resolver {
	return &Resolver{locals: make(map[token.Token]int)}
}

// Resolve resolves every statement in the program, returning the locals side table. If any resolution errors are
// found, they're joined together and returned alongside a best-effort locals table.
func (r *Resolver) Resolve(program ast.Program) (map[token.Token]int, error) {
	r.errs = nil
	r.resolveStmts(program.Stmts)
	return r.locals, lox.Join(r.errs)
}

func (r *Resolver) resolveStmts(stmts []ast.Stmt) {
	for _, stmt := range stmts {
		r.resolveStmt(stmt)
	}
}

func (r *Resolver) resolveStmt(stmt ast.Stmt) {
	switch stmt := stmt.(type) {
	case ast.Block:
		r.beginScope()
		r.resolveStmts(stmt.Stmts)
		r.endScope()
	case ast.Class:
		r.resolveClass(stmt)
	case ast.Expression:
		r.resolveExpr(stmt.Expr)
	case ast.Function:
		r.declare(stmt.Name)
		r.define(stmt.Name)
		r.resolveFunction(stmt.Params, stmt.Body, function)
	case ast.If:
		r.resolveExpr(stmt.Cond)
		r.resolveStmt(stmt.Then)
		if stmt.Else != nil {
			r.resolveStmt(stmt.Else)
		}
	case ast.Print:
		r.resolveExpr(stmt.Expr)
	case ast.Return:
		if r.currentFunction == noFunction {
			r.errorf(stmt.Keyword, "can't return from top-level code")
		}
		if stmt.Value != nil {
			if r.currentFunction == initializer && !isLiteralNil(stmt.Value) {
				r.errorf(stmt.Keyword, "can't return a value from an initializer")
			}
			r.resolveExpr(stmt.Value)
		}
	case ast.Var:
		r.declare(stmt.Name)
		if stmt.Init != nil {
			r.resolveExpr(stmt.Init)
		}
		r.define(stmt.Name)
	case ast.While:
		r.resolveExpr(stmt.Cond)
		r.loopDepth++
		r.resolveStmt(stmt.Body)
		r.loopDepth--
	case ast.For:
		r.beginScope()
		if stmt.Init != nil {
			r.resolveStmt(stmt.Init)
		}
		if stmt.Cond != nil {
			r.resolveExpr(stmt.Cond)
		}
		if stmt.Post != nil {
			r.resolveExpr(stmt.Post)
		}
		r.loopDepth++
		r.resolveStmt(stmt.Body)
		r.loopDepth--
		r.endScope()
	case ast.Break:
		if r.loopDepth == 0 {
			r.errorf(stmt.Keyword, "can't break outside of a loop")
		}
	case ast.Continue:
		if r.loopDepth == 0 {
			r.errorf(stmt.Keyword, "can't continue outside of a loop")
		}
	default:
		panic("resolver: unhandled statement type")
	}
}

func (r *Resolver) resolveClass(stmt ast.Class) {
	r.declare(stmt.Name)
	r.define(stmt.Name)

	enclosingClass := r.currentClass
	r.currentClass = class

	if stmt.Superclass != nil {
		if stmt.Superclass.Name.Lexeme == stmt.Name.Lexeme {
			r.errorf(stmt.Superclass.Name, "a class can't inherit from itself")
		}
		r.currentClass = subclass
		r.resolveExpr(*stmt.Superclass)

		r.beginScope()
		r.scopes.peek()["super"] = true
	}

	r.beginScope()
	r.scopes.peek()["this"] = true

	for _, m := range stmt.Methods {
		fnType := method
		if m.Name.Lexeme == "init" {
			fnType = initializer
		}
		r.resolveFunction(m.Params, m.Body, fnType)
	}

	r.endScope()
	if stmt.Superclass != nil {
		r.endScope()
	}

	r.currentClass = enclosingClass
}

func (r *Resolver) resolveFunction(params []token.Token, body []ast.Stmt, fnType functionType) {
	enclosingFunction := r.currentFunction
	r.currentFunction = fnType
	enclosingLoopDepth := r.loopDepth
	r.loopDepth = 0

	r.beginScope()
	for _, p := range params {
		r.declare(p)
		r.define(p)
	}
	r.resolveStmts(body)
	r.endScope()

	r.currentFunction = enclosingFunction
	r.loopDepth = enclosingLoopDepth
}

func (r *Resolver) resolveExpr(expr ast.Expr) {
	switch expr := expr.(type) {
	case ast.Assign:
		r.resolveExpr(expr.Value)
		r.resolveLocal(expr.Name)
	case ast.Binary:
		r.resolveExpr(expr.Left)
		r.resolveExpr(expr.Right)
	case ast.Call:
		r.resolveExpr(expr.Callee)
		for _, a := range expr.Args {
			r.resolveExpr(a)
		}
	case ast.Get:
		r.resolveExpr(expr.Object)
	case ast.Grouping:
		r.resolveExpr(expr.Inner)
	case ast.Literal:
	case ast.Logical:
		r.resolveExpr(expr.Left)
		r.resolveExpr(expr.Right)
	case ast.Set:
		r.resolveExpr(expr.Value)
		r.resolveExpr(expr.Object)
	case ast.Super:
		switch r.currentClass {
		case noClass:
			r.errorf(expr.Keyword, "can't use 'super' outside of a class")
		case class:
			r.errorf(expr.Keyword, "can't use 'super' in a class with no superclass")
		}
		r.resolveLocal(expr.Keyword)
	case ast.This:
		if r.currentClass == noClass {
			r.errorf(expr.Keyword, "can't use 'this' outside of a class")
		}
		r.resolveLocal(expr.Keyword)
	case ast.Unary:
		r.resolveExpr(expr.Right)
	case ast.Variable:
		if !r.scopes.empty() {
			if ready, ok := r.scopes.peek()[expr.Name.Lexeme]; ok && !ready {
				r.errorf(expr.Name, "can't read local variable in its own initializer")
			}
		}
		r.resolveLocal(expr.Name)
	case ast.Ternary:
		r.resolveExpr(expr.Cond)
		r.resolveExpr(expr.Then)
		r.resolveExpr(expr.Else)
	case ast.FunExpr:
		r.resolveFunction(expr.Params, expr.Body, function)
	default:
		panic("resolver: unhandled expression type")
	}
}

func (r *Resolver) beginScope() {
	r.scopes.push(make(map[string]bool))
}

func (r *Resolver) endScope() {
	r.scopes.pop()
}

func (r *Resolver) declare(name token.Token) {
	if r.scopes.empty() {
		return
	}
	scope := r.scopes.peek()
	if _, ok := scope[name.Lexeme]; ok {
		r.errorf(name, "already a variable with this name in this scope")
	}
	scope[name.Lexeme] = false
}

func (r *Resolver) define(name token.Token) {
	if r.scopes.empty() {
		return
	}
	r.scopes.peek()[name.Lexeme] = true
}

// resolveLocal records the scope distance between tok's use and the scope in which it (or a same-named identifier
// acting as the binding token, for "this"/"super") was declared. If no enclosing scope declares it, it's assumed to
// be global and is left out of the table; the interpreter falls back to the global environment for those.
func (r *Resolver) resolveLocal(tok token.Token) {
	for i := r.scopes.len() - 1; i >= 0; i-- {
		if _, ok := r.scopes.at(i)[tok.Lexeme]; ok {
			r.locals[tok] = r.scopes.len() - 1 - i
			return
		}
	}
}

func (r *Resolver) errorf(tok token.Token, format string, a ...any) {
	r.errs = append(r.errs, lox.Errorf(tok, format, a...))
}

// isLiteralNil reports whether expr is the literal "nil", as opposed to some other expression that might merely
// evaluate to nil at runtime. "return nil;" in an initializer is allowed; "return x;" is not, even if x happens to
// hold nil.
func isLiteralNil(expr ast.Expr) bool {
	lit, ok := expr.(ast.Literal)
	return ok && lit.Value == nil
}
