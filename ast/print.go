package ast

import (
	"fmt"
	"strings"
)

// PrintProgram prints an AST node to stdout as an indented s-expression, in the style of the teacher's debug dumps.
func PrintProgram(program Program) {
	fmt.Println(Sprint(program))
}

// Sprint formats an AST node as an indented s-expression.
func Sprint(program Program) string {
	var b strings.Builder
	fmt.Fprint(&b, "(Program")
	for _, stmt := range program.Stmts {
		fmt.Fprint(&b, "\n  ", indent(sprintStmt(stmt), 1))
	}
	fmt.Fprint(&b, ")")
	return b.String()
}

func indent(s string, depth int) string {
	return strings.ReplaceAll(s, "\n", "\n"+strings.Repeat("  ", depth))
}

func sprintStmt(stmt Stmt) string {
	switch stmt := stmt.(type) {
	case Block:
		return sexpr("Block", stmtList(stmt.Stmts))
	case Class:
		children := []string{stmt.Name.Lexeme}
		if stmt.Superclass != nil {
			children = append(children, "< "+stmt.Superclass.Name.Lexeme)
		}
		for _, m := range stmt.Methods {
			children = append(children, sprintStmt(m))
		}
		return sexpr("Class", children)
	case Expression:
		return sexpr("Expression", []string{sprintExpr(stmt.Expr)})
	case Function:
		return sexpr("Function", append([]string{stmt.Name.Lexeme}, stmtList(stmt.Body)...))
	case If:
		children := []string{sprintExpr(stmt.Cond), sprintStmt(stmt.Then)}
		if stmt.Else != nil {
			children = append(children, sprintStmt(stmt.Else))
		}
		return sexpr("If", children)
	case Print:
		return sexpr("Print", []string{sprintExpr(stmt.Expr)})
	case Return:
		return sexpr("Return", []string{sprintExpr(stmt.Value)})
	case Var:
		children := []string{stmt.Name.Lexeme}
		if stmt.Init != nil {
			children = append(children, sprintExpr(stmt.Init))
		}
		return sexpr("Var", children)
	case While:
		return sexpr("While", []string{sprintExpr(stmt.Cond), sprintStmt(stmt.Body)})
	case For:
		children := []string{}
		if stmt.Init != nil {
			children = append(children, sprintStmt(stmt.Init))
		}
		if stmt.Cond != nil {
			children = append(children, sprintExpr(stmt.Cond))
		}
		if stmt.Post != nil {
			children = append(children, sprintExpr(stmt.Post))
		}
		children = append(children, sprintStmt(stmt.Body))
		return sexpr("For", children)
	case Break:
		return "(Break)"
	case Continue:
		return "(Continue)"
	default:
		return fmt.Sprintf("(?%T)", stmt)
	}
}

func stmtList(stmts []Stmt) []string {
	out := make([]string, len(stmts))
	for i, s := range stmts {
		out[i] = sprintStmt(s)
	}
	return out
}

func sprintExpr(expr Expr) string {
	if expr == nil {
		return "nil"
	}
	switch expr := expr.(type) {
	case Assign:
		return sexpr("Assign", []string{expr.Name.Lexeme, sprintExpr(expr.Value)})
	case Binary:
		return sexpr("Binary", []string{expr.Op.Lexeme, sprintExpr(expr.Left), sprintExpr(expr.Right)})
	case Call:
		children := []string{sprintExpr(expr.Callee)}
		for _, a := range expr.Args {
			children = append(children, sprintExpr(a))
		}
		return sexpr("Call", children)
	case Get:
		return sexpr("Get", []string{sprintExpr(expr.Object), expr.Name.Lexeme})
	case Grouping:
		return sexpr("Grouping", []string{sprintExpr(expr.Inner)})
	case Literal:
		return fmt.Sprintf("%v", expr.Value)
	case Logical:
		return sexpr("Logical", []string{expr.Op.Lexeme, sprintExpr(expr.Left), sprintExpr(expr.Right)})
	case Set:
		return sexpr("Set", []string{sprintExpr(expr.Object), expr.Name.Lexeme, sprintExpr(expr.Value)})
	case Super:
		return sexpr("Super", []string{expr.Method.Lexeme})
	case This:
		return "(This)"
	case Unary:
		return sexpr("Unary", []string{expr.Op.Lexeme, sprintExpr(expr.Right)})
	case Variable:
		return expr.Name.Lexeme
	case Ternary:
		return sexpr("Ternary", []string{sprintExpr(expr.Cond), sprintExpr(expr.Then), sprintExpr(expr.Else)})
	case FunExpr:
		return sexpr("FunExpr", stmtList(expr.Body))
	default:
		return fmt.Sprintf("(?%T)", expr)
	}
}

func sexpr(name string, children []string) string {
	if len(children) == 0 {
		return "(" + name + ")"
	}
	var b strings.Builder
	fmt.Fprint(&b, "(", name)
	for _, c := range children {
		fmt.Fprint(&b, "\n  ", indent(c, 1))
	}
	fmt.Fprint(&b, ")")
	return b.String()
}
