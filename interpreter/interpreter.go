// Package interpreter evaluates a resolved Lox AST.
package interpreter

import (
	"fmt"
	"time"

	"github.com/loxlang/lox/ast"
	"github.com/loxlang/lox/lox"
	"github.com/loxlang/lox/token"
)

// returnSignal is panicked by a return statement and recovered at the nearest enclosing function call frame.
type returnSignal struct {
	value any
}

// breakSignal is panicked by a break statement and recovered at the nearest enclosing loop.
type breakSignal struct{}

// continueSignal is panicked by a continue statement and recovered at the nearest enclosing loop iteration.
type continueSignal struct{}

// Interpreter evaluates a resolved AST, holding the global environment and the locals side table produced by the
// resolver.
type Interpreter struct {
	globals *environment
	env     *environment
	locals  map[token.Token]int
}

// New constructs an Interpreter with its global environment populated with the native functions the runtime exposes.
func New() *Interpreter {
	globals := newEnvironment(nil)
	globals.define("clock", &nativeFunction{
		name: "clock",
		n:    0,
		fn: func(_ []any) any {
			return float64(time.Now().UnixNano()) / 1e9
		},
	})
	return &Interpreter{globals: globals, env: globals, locals: make(map[token.Token]int)}
}

// SetLocals installs the locals side table produced by a resolver pass. It should be called once before the first
// call to Interpret, and may be called again before each REPL line once the resolver has re-resolved accumulated
// global state.
func (i *Interpreter) SetLocals(locals map[token.Token]int) {
	i.locals = locals
}

// Interpret executes every statement in the program. Runtime errors are recovered here exactly once and returned as
// a *lox.RuntimeError rather than propagating as a panic.
func (i *Interpreter) Interpret(program ast.Program) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if runtimeErr, ok := r.(*lox.RuntimeError); ok {
				err = runtimeErr
				return
			}
			panic(r)
		}
	}()
	for _, stmt := range program.Stmts {
		i.execute(stmt)
	}
	return nil
}

func (i *Interpreter) execute(stmt ast.Stmt) {
	switch stmt := stmt.(type) {
	case ast.Block:
		i.executeBlock(stmt.Stmts, newEnvironment(i.env))
	case ast.Class:
		i.executeClass(stmt)
	case ast.Expression:
		i.evaluate(stmt.Expr)
	case ast.Function:
		fn := newFunction(stmt.Name.Lexeme, stmt.Params, stmt.Body, i.env, false)
		i.env.define(stmt.Name.Lexeme, fn)
	case ast.If:
		if isTruthy(i.evaluate(stmt.Cond)) {
			i.execute(stmt.Then)
		} else if stmt.Else != nil {
			i.execute(stmt.Else)
		}
	case ast.Print:
		fmt.Println(stringify(i.evaluate(stmt.Expr)))
	case ast.Return:
		var value any
		if stmt.Value != nil {
			value = i.evaluate(stmt.Value)
		}
		panic(returnSignal{value: value})
	case ast.Var:
		var value any
		if stmt.Init != nil {
			value = i.evaluate(stmt.Init)
		}
		i.env.define(stmt.Name.Lexeme, value)
	case ast.While:
		for isTruthy(i.evaluate(stmt.Cond)) {
			if i.executeLoopBody(stmt.Body) {
				break
			}
		}
	case ast.For:
		i.executeFor(stmt)
	case ast.Break:
		panic(breakSignal{})
	case ast.Continue:
		panic(continueSignal{})
	default:
		panic(fmt.Sprintf("interpreter: unhandled statement type %T", stmt))
	}
}

// executeLoopBody runs one iteration of a loop body, absorbing break/continue signals raised directly inside it.
// It returns true if the loop should stop (a break was raised).
func (i *Interpreter) executeLoopBody(body ast.Stmt) (stop bool) {
	defer func() {
		if r := recover(); r != nil {
			switch r.(type) {
			case breakSignal:
				stop = true
			case continueSignal:
				stop = false
			default:
				panic(r)
			}
		}
	}()
	i.execute(body)
	return false
}

// executeFor runs a for statement in its own scope, so that its init variable (if any) doesn't leak into the
// enclosing scope. Post always runs after the body, including when continue was raised inside it, which is the
// reason this isn't simply desugared into a While.
func (i *Interpreter) executeFor(stmt ast.For) {
	previous := i.env
	i.env = newEnvironment(i.env)
	defer func() { i.env = previous }()

	if stmt.Init != nil {
		i.execute(stmt.Init)
	}

	for stmt.Cond == nil || isTruthy(i.evaluate(stmt.Cond)) {
		stop := i.executeLoopBody(stmt.Body)
		if stmt.Post != nil {
			i.evaluate(stmt.Post)
		}
		if stop {
			break
		}
	}
}

func (i *Interpreter) executeClass(stmt ast.Class) {
	var superclass *class
	if stmt.Superclass != nil {
		v := i.evaluate(*stmt.Superclass)
		sc, ok := v.(*class)
		if !ok {
			panic(lox.RuntimeErrorf(stmt.Superclass.Name, "superclass must be a class"))
		}
		superclass = sc
	}

	i.env.define(stmt.Name.Lexeme, nil)

	env := i.env
	if superclass != nil {
		env = newEnvironment(i.env)
		env.define("super", superclass)
	}

	methods := make(map[string]*function)
	for _, m := range stmt.Methods {
		methods[m.Name.Lexeme] = newFunction(m.Name.Lexeme, m.Params, m.Body, env, m.Name.Lexeme == "init")
	}

	c := &class{name: stmt.Name.Lexeme, superclass: superclass, methods: methods}
	i.env.assign(stmt.Name, c)
}

// executeBlock executes stmts in env, restoring the interpreter's current environment before returning (including
// when a panic unwinds through it).
func (i *Interpreter) executeBlock(stmts []ast.Stmt, env *environment) {
	previous := i.env
	i.env = env
	defer func() { i.env = previous }()
	for _, stmt := range stmts {
		i.execute(stmt)
	}
}

func (i *Interpreter) evaluate(expr ast.Expr) any {
	switch expr := expr.(type) {
	case ast.Assign:
		value := i.evaluate(expr.Value)
		if distance, ok := i.locals[expr.Name]; ok {
			i.env.assignAt(distance, expr.Name, value)
		} else {
			i.globals.assign(expr.Name, value)
		}
		return value
	case ast.Binary:
		return i.evaluateBinary(expr)
	case ast.Call:
		return i.evaluateCall(expr)
	case ast.Get:
		return i.evaluateGet(expr)
	case ast.Grouping:
		return i.evaluate(expr.Inner)
	case ast.Literal:
		return expr.Value
	case ast.Logical:
		left := i.evaluate(expr.Left)
		if expr.Op.Type == token.Or {
			if isTruthy(left) {
				return left
			}
		} else if !isTruthy(left) {
			return left
		}
		return i.evaluate(expr.Right)
	case ast.Set:
		return i.evaluateSet(expr)
	case ast.Super:
		return i.evaluateSuper(expr)
	case ast.This:
		return i.lookupVariable(expr.Keyword)
	case ast.Unary:
		return i.evaluateUnary(expr)
	case ast.Variable:
		return i.lookupVariable(expr.Name)
	case ast.Ternary:
		if isTruthy(i.evaluate(expr.Cond)) {
			return i.evaluate(expr.Then)
		}
		return i.evaluate(expr.Else)
	case ast.FunExpr:
		return newFunction("", expr.Params, expr.Body, i.env, false)
	default:
		panic(fmt.Sprintf("interpreter: unhandled expression type %T", expr))
	}
}

func (i *Interpreter) lookupVariable(name token.Token) any {
	if distance, ok := i.locals[name]; ok {
		return i.env.getAt(distance, name)
	}
	return i.globals.get(name)
}

func (i *Interpreter) evaluateUnary(expr ast.Unary) any {
	right := i.evaluate(expr.Right)
	switch expr.Op.Type {
	case token.Minus:
		n, ok := right.(float64)
		if !ok {
			panic(lox.RuntimeErrorf(expr.Op, "operand must be a number"))
		}
		return -n
	case token.Bang:
		return !isTruthy(right)
	default:
		panic(fmt.Sprintf("interpreter: unhandled unary operator %s", expr.Op.Type))
	}
}

func (i *Interpreter) evaluateBinary(expr ast.Binary) any {
	left := i.evaluate(expr.Left)
	right := i.evaluate(expr.Right)

	switch expr.Op.Type {
	case token.EqualEqual:
		return loxEquals(left, right)
	case token.BangEqual:
		return !loxEquals(left, right)
	case token.Plus:
		switch l := left.(type) {
		case float64:
			r, ok := right.(float64)
			if !ok {
				panic(lox.RuntimeErrorf(expr.Op, "operands must be two numbers or two strings"))
			}
			return l + r
		case string:
			r, ok := right.(string)
			if !ok {
				panic(lox.RuntimeErrorf(expr.Op, "operands must be two numbers or two strings"))
			}
			return l + r
		default:
			panic(lox.RuntimeErrorf(expr.Op, "operands must be two numbers or two strings"))
		}
	case token.Minus, token.Star, token.Slash, token.Greater, token.GreaterEqual, token.Less, token.LessEqual:
		l, lok := left.(float64)
		r, rok := right.(float64)
		if !lok || !rok {
			panic(lox.RuntimeErrorf(expr.Op, "operands must be numbers"))
		}
		switch expr.Op.Type {
		case token.Minus:
			return l - r
		case token.Star:
			return l * r
		case token.Slash:
			return l / r
		case token.Greater:
			return l > r
		case token.GreaterEqual:
			return l >= r
		case token.Less:
			return l < r
		case token.LessEqual:
			return l <= r
		}
	}
	panic(fmt.Sprintf("interpreter: unhandled binary operator %s", expr.Op.Type))
}

func loxEquals(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a == b
}

func (i *Interpreter) evaluateCall(expr ast.Call) any {
	callee := i.evaluate(expr.Callee)

	args := make([]any, len(expr.Args))
	for idx, a := range expr.Args {
		args[idx] = i.evaluate(a)
	}

	fn, ok := callee.(callable)
	if !ok {
		panic(lox.RuntimeErrorf(expr.Paren, "can only call functions and classes"))
	}
	if len(args) != fn.arity() {
		panic(lox.RuntimeErrorf(expr.Paren, "expected %d arguments but got %d", fn.arity(), len(args)))
	}
	return fn.call(i, args)
}

func (i *Interpreter) evaluateGet(expr ast.Get) any {
	obj := i.evaluate(expr.Object)
	inst, ok := obj.(*instance)
	if !ok {
		panic(lox.RuntimeErrorf(expr.Name, "only instances have properties"))
	}
	value, ok := inst.get(expr.Name.Lexeme)
	if !ok {
		panic(lox.RuntimeErrorf(expr.Name, "undefined property '%s'", expr.Name.Lexeme))
	}
	return value
}

func (i *Interpreter) evaluateSet(expr ast.Set) any {
	obj := i.evaluate(expr.Object)
	inst, ok := obj.(*instance)
	if !ok {
		panic(lox.RuntimeErrorf(expr.Name, "only instances have fields"))
	}
	value := i.evaluate(expr.Value)
	inst.set(expr.Name.Lexeme, value)
	return value
}

func (i *Interpreter) evaluateSuper(expr ast.Super) any {
	distance := i.locals[expr.Keyword]
	superclass := i.env.getAt(distance, expr.Keyword).(*class)

	thisTok := token.Token{Type: token.This, Lexeme: "this", Line: expr.Keyword.Line, Column: expr.Keyword.Column}
	inst := i.env.getAt(distance-1, thisTok).(*instance)

	method := superclass.findMethod(expr.Method.Lexeme)
	if method == nil {
		panic(lox.RuntimeErrorf(expr.Method, "undefined property '%s'", expr.Method.Lexeme))
	}
	return method.bind(inst)
}
