// Package parser implements a recursive-descent parser for Lox source code.
package parser

import (
	"github.com/loxlang/lox/ast"
	"github.com/loxlang/lox/lox"
	"github.com/loxlang/lox/token"
)

const maxArgs = 255

// unwind is used as a panic value so that a parse error can unwind the call stack up to synchronize without every
// parsing method having to check for and propagate an error.
type unwind struct{}

// Parser parses a sequence of tokens into an abstract syntax tree.
type Parser struct {
	tokens []token.Token
	pos    int
	errs   []error
}

// New constructs a Parser over the given tokens, which must end with an EOF token.
func New(tokens []token.Token) *Parser {
	return &Parser{tokens: tokens}
}

// Parse parses the program and returns its AST. If any syntax errors are encountered, parsing continues past them
// (statement by statement) so that every error is reported, and the returned error joins them all together.
func (p *Parser) Parse() (ast.Program, error) {
	var stmts []ast.Stmt
	for !p.atEnd() {
		stmt := p.declaration()
		if stmt != nil {
			stmts = append(stmts, stmt)
		}
	}
	return ast.Program{Stmts: stmts}, lox.Join(p.errs)
}

// declaration parses a single declaration, recovering from any syntax error by synchronizing to the next statement
// boundary so that one bad declaration doesn't prevent the rest of the source from being checked.
func (p *Parser) declaration() (stmt ast.Stmt) {
	defer func() {
		if r := recover(); r != nil {
			if _, ok := r.(unwind); !ok {
				panic(r)
			}
			p.synchronize()
			stmt = nil
		}
	}()
	return p.declarationInner()
}

func (p *Parser) declarationInner() ast.Stmt {
	switch {
	case p.check(token.Class):
		return p.classDecl()
	case p.check(token.Fun) && p.checkAt(1, token.Ident):
		p.advance()
		return p.function("function")
	case p.check(token.Var):
		return p.varDecl()
	default:
		return p.statement()
	}
}

func (p *Parser) classDecl() ast.Stmt {
	p.advance() // "class"
	name := p.expect(token.Ident, "expect class name")
	var superclass *ast.Variable
	if p.match(token.Less) {
		superName := p.expect(token.Ident, "expect superclass name")
		superclass = &ast.Variable{Name: superName}
	}
	p.expect(token.LeftBrace, "expect '{' before class body")
	var methods []ast.Function
	for !p.check(token.RightBrace) && !p.atEnd() {
		methods = append(methods, p.function("method"))
	}
	p.expect(token.RightBrace, "expect '}' after class body")
	return ast.Class{Name: name, Superclass: superclass, Methods: methods}
}

func (p *Parser) function(kind string) ast.Function {
	name := p.expect(token.Ident, "expect "+kind+" name")
	params, body := p.funcTail(kind)
	return ast.Function{Name: name, Params: params, Body: body}
}

// funcTail parses the "(" params? ")" block part shared by named functions, methods and function expressions.
func (p *Parser) funcTail(kind string) ([]token.Token, []ast.Stmt) {
	p.expect(token.LeftParen, "expect '(' after "+kind+" name")
	var params []token.Token
	if !p.check(token.RightParen) {
		for {
			if len(params) >= maxArgs {
				p.errorAtCurrent("can't have more than %d parameters", maxArgs)
			}
			params = append(params, p.expect(token.Ident, "expect parameter name"))
			if !p.match(token.Comma) {
				break
			}
		}
	}
	p.expect(token.RightParen, "expect ')' after parameters")
	p.expect(token.LeftBrace, "expect '{' before "+kind+" body")
	return params, p.blockStmts()
}

func (p *Parser) varDecl() ast.Stmt {
	p.advance() // "var"
	name := p.expect(token.Ident, "expect variable name")
	var init ast.Expr
	if p.match(token.Equal) {
		init = p.expression()
	}
	p.expect(token.Semicolon, "expect ';' after variable declaration")
	return ast.Var{Name: name, Init: init}
}

func (p *Parser) statement() ast.Stmt {
	switch {
	case p.check(token.Print):
		return p.printStmt()
	case p.check(token.LeftBrace):
		p.advance()
		return ast.Block{Stmts: p.blockStmts()}
	case p.check(token.If):
		return p.ifStmt()
	case p.check(token.While):
		return p.whileStmt()
	case p.check(token.For):
		return p.forStmt()
	case p.check(token.Return):
		return p.returnStmt()
	case p.check(token.Break):
		tok := p.advance()
		p.expect(token.Semicolon, "expect ';' after 'break'")
		return ast.Break{Keyword: tok}
	case p.check(token.Continue):
		tok := p.advance()
		p.expect(token.Semicolon, "expect ';' after 'continue'")
		return ast.Continue{Keyword: tok}
	default:
		return p.exprStmt()
	}
}

func (p *Parser) blockStmts() []ast.Stmt {
	var stmts []ast.Stmt
	for !p.check(token.RightBrace) && !p.atEnd() {
		if stmt := p.declaration(); stmt != nil {
			stmts = append(stmts, stmt)
		}
	}
	p.expect(token.RightBrace, "expect '}' after block")
	return stmts
}

func (p *Parser) printStmt() ast.Stmt {
	p.advance() // "print"
	expr := p.expression()
	p.expect(token.Semicolon, "expect ';' after value")
	return ast.Print{Expr: expr}
}

func (p *Parser) ifStmt() ast.Stmt {
	p.advance() // "if"
	p.expect(token.LeftParen, "expect '(' after 'if'")
	cond := p.expression()
	p.expect(token.RightParen, "expect ')' after if condition")
	then := p.statement()
	var elseStmt ast.Stmt
	if p.match(token.Else) {
		elseStmt = p.statement()
	}
	return ast.If{Cond: cond, Then: then, Else: elseStmt}
}

func (p *Parser) whileStmt() ast.Stmt {
	p.advance() // "while"
	p.expect(token.LeftParen, "expect '(' after 'while'")
	cond := p.expression()
	p.expect(token.RightParen, "expect ')' after condition")
	body := p.statement()
	return ast.While{Cond: cond, Body: body}
}

func (p *Parser) forStmt() ast.Stmt {
	p.advance() // "for"
	p.expect(token.LeftParen, "expect '(' after 'for'")

	var init ast.Stmt
	switch {
	case p.match(token.Semicolon):
	case p.check(token.Var):
		init = p.varDecl()
	default:
		init = p.exprStmt()
	}

	var cond ast.Expr
	if !p.check(token.Semicolon) {
		cond = p.expression()
	}
	p.expect(token.Semicolon, "expect ';' after loop condition")

	var post ast.Expr
	if !p.check(token.RightParen) {
		post = p.expression()
	}
	p.expect(token.RightParen, "expect ')' after for clauses")

	body := p.statement()

	return ast.For{Init: init, Cond: cond, Post: post, Body: body}
}

func (p *Parser) returnStmt() ast.Stmt {
	keyword := p.advance() // "return"
	var value ast.Expr = ast.Literal{Value: nil}
	if !p.check(token.Semicolon) {
		value = p.expression()
	}
	p.expect(token.Semicolon, "expect ';' after return value")
	return ast.Return{Keyword: keyword, Value: value}
}

func (p *Parser) exprStmt() ast.Stmt {
	expr := p.expression()
	p.expect(token.Semicolon, "expect ';' after expression")
	return ast.Expression{Expr: expr}
}

func (p *Parser) expression() ast.Expr {
	return p.assignment()
}

func (p *Parser) assignment() ast.Expr {
	expr := p.ternary()
	if p.match(token.Equal) {
		equals := p.previous()
		value := p.assignment()
		switch target := expr.(type) {
		case ast.Variable:
			return ast.Assign{Name: target.Name, Value: value}
		case ast.Get:
			return ast.Set{Object: target.Object, Name: target.Name, Value: value}
		default:
			p.errorAt(equals, "invalid assignment target")
			return expr
		}
	}
	return expr
}

func (p *Parser) ternary() ast.Expr {
	cond := p.or()
	if p.match(token.Question) {
		then := p.expression()
		p.expect(token.Colon, "expect ':' in ternary expression")
		elseExpr := p.ternary()
		return ast.Ternary{Cond: cond, Then: then, Else: elseExpr}
	}
	return cond
}

func (p *Parser) or() ast.Expr {
	expr := p.and()
	for p.check(token.Or) {
		op := p.advance()
		right := p.and()
		expr = ast.Logical{Left: expr, Op: op, Right: right}
	}
	return expr
}

func (p *Parser) and() ast.Expr {
	expr := p.equality()
	for p.check(token.And) {
		op := p.advance()
		right := p.equality()
		expr = ast.Logical{Left: expr, Op: op, Right: right}
	}
	return expr
}

func (p *Parser) equality() ast.Expr {
	return p.binary(p.comparison, token.BangEqual, token.EqualEqual)
}

func (p *Parser) comparison() ast.Expr {
	return p.binary(p.term, token.Greater, token.GreaterEqual, token.Less, token.LessEqual)
}

func (p *Parser) term() ast.Expr {
	return p.binary(p.factor, token.Minus, token.Plus)
}

func (p *Parser) factor() ast.Expr {
	return p.binary(p.unary, token.Slash, token.Star)
}

func (p *Parser) binary(next func() ast.Expr, types ...token.Type) ast.Expr {
	expr := next()
	for p.checkAny(types...) {
		op := p.advance()
		right := next()
		expr = ast.Binary{Left: expr, Op: op, Right: right}
	}
	return expr
}

func (p *Parser) unary() ast.Expr {
	if p.checkAny(token.Bang, token.Minus) {
		op := p.advance()
		right := p.unary()
		return ast.Unary{Op: op, Right: right}
	}
	return p.call()
}

func (p *Parser) call() ast.Expr {
	expr := p.primary()
	for {
		switch {
		case p.match(token.LeftParen):
			expr = p.finishCall(expr)
		case p.match(token.Dot):
			name := p.expect(token.Ident, "expect property name after '.'")
			expr = ast.Get{Object: expr, Name: name}
		default:
			return expr
		}
	}
}

func (p *Parser) finishCall(callee ast.Expr) ast.Expr {
	var args []ast.Expr
	if !p.check(token.RightParen) {
		for {
			if len(args) >= maxArgs {
				p.errorAtCurrent("can't have more than %d arguments", maxArgs)
			}
			args = append(args, p.expression())
			if !p.match(token.Comma) {
				break
			}
		}
	}
	paren := p.expect(token.RightParen, "expect ')' after arguments")
	return ast.Call{Callee: callee, Paren: paren, Args: args}
}

func (p *Parser) primary() ast.Expr {
	switch {
	case p.check(token.Number), p.check(token.String):
		tok := p.advance()
		return ast.Literal{Value: tok.Literal}
	case p.match(token.True):
		return ast.Literal{Value: true}
	case p.match(token.False):
		return ast.Literal{Value: false}
	case p.match(token.Nil):
		return ast.Literal{Value: nil}
	case p.check(token.This):
		return ast.This{Keyword: p.advance()}
	case p.check(token.Super):
		keyword := p.advance()
		p.expect(token.Dot, "expect '.' after 'super'")
		method := p.expect(token.Ident, "expect superclass method name")
		return ast.Super{Keyword: keyword, Method: method}
	case p.check(token.Ident):
		return ast.Variable{Name: p.advance()}
	case p.match(token.LeftParen):
		inner := p.expression()
		p.expect(token.RightParen, "expect ')' after expression")
		return ast.Grouping{Inner: inner}
	case p.check(token.Fun):
		keyword := p.advance()
		params, body := p.funcTail("function")
		return ast.FunExpr{Keyword: keyword, Params: params, Body: body}
	default:
		p.errorAtCurrent("expect expression")
		panic(unwind{})
	}
}

func (p *Parser) atEnd() bool {
	return p.peek().Type == token.EOF
}

func (p *Parser) peek() token.Token {
	return p.tokens[p.pos]
}

func (p *Parser) previous() token.Token {
	return p.tokens[p.pos-1]
}

func (p *Parser) advance() token.Token {
	tok := p.tokens[p.pos]
	if !p.atEnd() {
		p.pos++
	}
	return tok
}

func (p *Parser) check(t token.Type) bool {
	return p.peek().Type == t
}

func (p *Parser) checkAt(offset int, t token.Type) bool {
	i := p.pos + offset
	if i >= len(p.tokens) {
		return false
	}
	return p.tokens[i].Type == t
}

func (p *Parser) checkAny(types ...token.Type) bool {
	for _, t := range types {
		if p.check(t) {
			return true
		}
	}
	return false
}

func (p *Parser) match(t token.Type) bool {
	if !p.check(t) {
		return false
	}
	p.advance()
	return true
}

// expect consumes the current token if it has the given type, raising a syntax error and unwinding to the nearest
// synchronize point otherwise.
func (p *Parser) expect(t token.Type, msg string) token.Token {
	if p.check(t) {
		return p.advance()
	}
	p.errorAtCurrent(msg)
	panic(unwind{})
}

func (p *Parser) errorAtCurrent(format string, a ...any) {
	p.errorAt(p.peek(), format, a...)
}

func (p *Parser) errorAt(tok token.Token, format string, a ...any) {
	p.errs = append(p.errs, lox.Errorf(tok, format, a...))
}

// synchronize discards tokens until it reaches one that's likely to begin a new statement, so that a single syntax
// error doesn't cascade into a run of spurious follow-on errors.
func (p *Parser) synchronize() {
	p.advance()
	for !p.atEnd() {
		if p.tokens[p.pos-1].Type == token.Semicolon {
			return
		}
		switch p.peek().Type {
		case token.Class, token.Fun, token.Var, token.For, token.If, token.While, token.Print, token.Return:
			return
		}
		p.advance()
	}
}
