package format

import (
	"github.com/leapstack-labs/cosmosql/pkg/ast"
	"github.com/leapstack-labs/cosmosql/pkg/token"
)

// Binding strength of expression forms, loosest first. An operand whose
// form binds looser than its position requires is parenthesised.
const (
	precLowest = iota
	precConditional
	precCoalesce
	precOr
	precAnd
	precPredicate // BETWEEN, IN, LIKE
	precEquality
	precCompare
	precBitOr
	precBitXor
	precBitAnd
	precShift
	precConcat
	precAdditive
	precMultiplicative
	precUnary
	precPrimary
)

const complexityThreshold = 5

var binaryPrec = map[token.Kind]int{
	token.OR:      precOr,
	token.AND:     precAnd,
	token.EQ:      precEquality,
	token.NE:      precEquality,
	token.LT:      precCompare,
	token.LE:      precCompare,
	token.GT:      precCompare,
	token.GE:      precCompare,
	token.PIPE:    precBitOr,
	token.CARET:   precBitXor,
	token.AMP:     precBitAnd,
	token.LSHIFT:  precShift,
	token.RSHIFT:  precShift,
	token.URSHIFT: precShift,
	token.DPIPE:   precConcat,
	token.PLUS:    precAdditive,
	token.MINUS:   precAdditive,
	token.STAR:    precMultiplicative,
	token.SLASH:   precMultiplicative,
	token.PERCENT: precMultiplicative,
}

func precOf(e ast.Expr) int {
	switch n := e.(type) {
	case *ast.Conditional:
		return precConditional
	case *ast.Coalesce:
		return precCoalesce
	case *ast.Binary:
		if p, ok := binaryPrec[n.Op]; ok {
			return p
		}
		return precLowest
	case *ast.Between, *ast.In, *ast.Like:
		return precPredicate
	case *ast.Unary:
		return precUnary
	case *ast.Literal:
		if isNegative(n) {
			return precUnary
		}
	}
	return precPrimary
}

func isNegative(l *ast.Literal) bool {
	if l.Kind != ast.LiteralNumber {
		return false
	}
	f, ok := l.Number.Number()
	return ok && f < 0
}

func isLogicalOp(op token.Kind) bool {
	return op == token.AND || op == token.OR
}

// complexity scores an expression by size; calls weigh more than
// operators.
func complexity(e ast.Node) int {
	score := 1
	if _, ok := e.(*ast.FunctionCall); ok {
		score++
	}
	for _, c := range ast.Children(e) {
		score += complexity(c)
	}
	return score
}

// formatExpr prints e, wrapping it in parentheses when it binds looser than
// want.
func (p *Printer) formatExpr(e ast.Expr, want int) {
	if e == nil {
		return
	}
	if precOf(e) < want {
		p.write("(")
		p.formatExpr(e, precLowest)
		p.write(")")
		return
	}

	switch n := e.(type) {
	case *ast.Literal, *ast.Parameter:
		p.write(ast.String(n))
	case *ast.PropertyRef:
		if n.Member != nil {
			p.formatMember(n.Member)
			p.write(".")
		}
		p.write(n.Name.Name)
	case *ast.MemberIndexer:
		p.formatMember(n.Member)
		p.write("[")
		p.formatExpr(n.Index, precLowest)
		p.write("]")
	case *ast.FunctionCall:
		p.formatFunctionCall(n)
	case *ast.Unary:
		p.formatUnary(n)
	case *ast.Binary:
		p.formatBinary(n)
	case *ast.Coalesce:
		p.formatExpr(n.Left, precCoalesce)
		p.write(" ?? ")
		p.formatExpr(n.Right, precOr)
	case *ast.Conditional:
		p.formatExpr(n.Cond, precCoalesce)
		p.write(" ? ")
		p.formatExpr(n.Then, precConditional)
		p.write(" : ")
		p.formatExpr(n.Else, precConditional)
	case *ast.Between:
		p.formatExpr(n.Expr, precEquality)
		p.formatNot(n.Not)
		p.space()
		p.kw(token.BETWEEN)
		p.space()
		p.formatExpr(n.Low, precEquality)
		p.space()
		p.kw(token.AND)
		p.space()
		p.formatExpr(n.High, precEquality)
	case *ast.In:
		p.formatExpr(n.Expr, precEquality)
		p.formatNot(n.Not)
		p.space()
		p.kw(token.IN)
		p.write(" (")
		p.formatExprList(n.List)
		p.write(")")
	case *ast.Like:
		p.formatExpr(n.Expr, precEquality)
		p.formatNot(n.Not)
		p.space()
		p.kw(token.LIKE)
		p.space()
		p.formatExpr(n.Pattern, precEquality)
		if n.Escape != nil {
			p.space()
			p.kw(token.ESCAPE)
			p.space()
			p.write(ast.String(n.Escape))
		}
	case *ast.ArrayCreate:
		p.write("[")
		p.formatExprList(n.Items)
		p.write("]")
	case *ast.ObjectCreate:
		p.write("{")
		p.formatList(len(n.Props), func(i int) {
			p.write(ast.Quote(n.Props[i].Name))
			p.write(": ")
			p.formatExpr(n.Props[i].Value, precLowest)
		}, ", ", false)
		p.write("}")
	case *ast.Exists:
		p.kw(token.EXISTS)
		p.space()
		p.formatSubquery(n.Query)
	case *ast.ArraySubquery:
		p.kw(token.ARRAY)
		p.space()
		p.formatSubquery(n.Query)
	case *ast.Subquery:
		p.formatSubquery(n.Query)
	}
}

// formatMember prints the receiver of a property access or index. Literals
// are wrapped so that numbers keep their dot and sign.
func (p *Printer) formatMember(e ast.Expr) {
	if _, ok := e.(*ast.Literal); ok {
		p.write("(")
		p.formatExpr(e, precLowest)
		p.write(")")
		return
	}
	p.formatExpr(e, precPrimary)
}

func (p *Printer) formatExprList(list []ast.Expr) {
	p.formatList(len(list), func(i int) { p.formatExpr(list[i], precLowest) }, ", ", false)
}

func (p *Printer) formatNot(not bool) {
	if not {
		p.space()
		p.kw(token.NOT)
	}
}

func (p *Printer) formatFunctionCall(fn *ast.FunctionCall) {
	if fn.UDF {
		p.write("udf.")
	}
	p.write(fn.Name.Name)
	p.write("(")
	p.formatExprList(fn.Args)
	p.write(")")
}

func (p *Printer) formatUnary(u *ast.Unary) {
	switch u.Op {
	case token.NOT:
		p.kw(token.NOT)
		p.space()
	case token.MINUS:
		p.write("-")
		if startsWithMinus(u.Operand) {
			// "--" starts a comment
			p.space()
		}
	default:
		p.write(u.Op.String())
	}
	p.formatExpr(u.Operand, precUnary)
}

func startsWithMinus(e ast.Expr) bool {
	switch n := e.(type) {
	case *ast.Unary:
		return n.Op == token.MINUS
	case *ast.Literal:
		return isNegative(n)
	}
	return false
}

func (p *Printer) formatBinary(b *ast.Binary) {
	prec := precOf(b)
	shouldBreak := isLogicalOp(b.Op) && complexity(b) > complexityThreshold

	p.formatExpr(b.Left, prec)
	if shouldBreak {
		p.writeln()
	} else {
		p.space()
	}
	if b.Op.IsKeyword() {
		p.kw(b.Op)
	} else {
		p.write(b.Op.String())
	}
	p.space()
	p.formatExpr(b.Right, prec+1)
}
