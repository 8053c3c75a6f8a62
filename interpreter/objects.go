package interpreter

import (
	"fmt"
	"strconv"

	"github.com/loxlang/lox/ast"
	"github.com/loxlang/lox/token"
)

// callable is implemented by every Lox value which can appear on the left of a call expression.
type callable interface {
	arity() int
	call(i *Interpreter, args []any) any
	String() string
}

// nativeFunction wraps a Go function as a callable Lox value, used for the handful of functions the runtime exposes
// directly (clock, and so on).
type nativeFunction struct {
	name string
	n    int
	fn   func(args []any) any
}

func (f *nativeFunction) arity() int { return f.n }
func (f *nativeFunction) call(_ *Interpreter, args []any) any {
	return f.fn(args)
}
func (f *nativeFunction) String() string { return fmt.Sprintf("<native fn %s>", f.name) }

// function is a user-defined function or method: a piece of syntax closed over the environment in which it was
// declared.
type function struct {
	name          string // empty for an anonymous function expression
	params        []token.Token
	body          []ast.Stmt
	closure       *environment
	isInitializer bool
}

func newFunction(name string, params []token.Token, body []ast.Stmt, closure *environment, isInitializer bool) *function {
	return &function{name: name, params: params, body: body, closure: closure, isInitializer: isInitializer}
}

func (f *function) arity() int { return len(f.params) }

func (f *function) call(i *Interpreter, args []any) (result any) {
	env := newEnvironment(f.closure)
	for idx, p := range f.params {
		env.define(p.Lexeme, args[idx])
	}

	defer func() {
		r := recover()
		rv, isReturn := r.(returnSignal)
		if r != nil && !isReturn {
			panic(r)
		}
		if f.isInitializer {
			result = f.closure.values["this"]
		} else if isReturn {
			result = rv.value
		}
	}()
	i.executeBlock(f.body, env)
	return nil
}

func (f *function) String() string {
	if f.name == "" {
		return "<fn>"
	}
	return fmt.Sprintf("<fn %s>", f.name)
}

// bind returns a copy of the method bound to instance, i.e. with a fresh enclosing environment that defines "this".
func (f *function) bind(inst *instance) *function {
	env := newEnvironment(f.closure)
	env.define("this", inst)
	return newFunction(f.name, f.params, f.body, env, f.isInitializer)
}

// class is a runtime class value: a named bag of methods with an optional superclass.
type class struct {
	name       string
	superclass *class
	methods    map[string]*function
}

func (c *class) findMethod(name string) *function {
	if m, ok := c.methods[name]; ok {
		return m
	}
	if c.superclass != nil {
		return c.superclass.findMethod(name)
	}
	return nil
}

func (c *class) arity() int {
	if init := c.findMethod("init"); init != nil {
		return init.arity()
	}
	return 0
}

func (c *class) call(i *Interpreter, args []any) any {
	inst := &instance{class: c, fields: make(map[string]any)}
	if init := c.findMethod("init"); init != nil {
		init.bind(inst).call(i, args)
	}
	return inst
}

func (c *class) String() string { return c.name }

// instance is a runtime object: an instance of a class with its own fields, falling back to the class's methods.
type instance struct {
	class  *class
	fields map[string]any
}

func (inst *instance) get(name string) (any, bool) {
	if v, ok := inst.fields[name]; ok {
		return v, true
	}
	if m := inst.class.findMethod(name); m != nil {
		return m.bind(inst), true
	}
	return nil, false
}

func (inst *instance) set(name string, value any) {
	inst.fields[name] = value
}

func (inst *instance) String() string {
	return fmt.Sprintf("%s instance", inst.class.name)
}

// isTruthy implements Lox's truthiness rule: everything is truthy except nil and false.
func isTruthy(v any) bool {
	if v == nil {
		return false
	}
	if b, ok := v.(bool); ok {
		return b
	}
	return true
}

// stringify renders a Lox runtime value the way print and the REPL display it.
func stringify(v any) string {
	switch v := v.(type) {
	case nil:
		return "nil"
	case bool:
		if v {
			return "true"
		}
		return "false"
	case float64:
		if v == 0 {
			return "0"
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	default:
		panic(fmt.Sprintf("interpreter: cannot stringify value of type %T", v))
	}
}
