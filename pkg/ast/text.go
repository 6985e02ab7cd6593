package ast

import (
	"strconv"
	"strings"

	"github.com/leapstack-labs/cosmosql/pkg/token"
)

// String renders node as canonical single-line query text. Operator
// expressions are fully parenthesized, keywords are upper case and string
// literals use double quotes, so parsing the result yields the same text
// again.
func String(node Node) string {
	var p printer
	p.node(node)
	return p.sb.String()
}

type printer struct {
	sb strings.Builder
}

func (p *printer) write(parts ...string) {
	for _, s := range parts {
		p.sb.WriteString(s)
	}
}

func (p *printer) node(node Node) {
	switch n := node.(type) {
	case nil:
	case *Query:
		p.query(n)
	case *SelectClause:
		p.selectClause(n)
	case *TopSpec:
		p.write("TOP ")
		p.node(n.Count)
	case SelectSpec:
		p.selectSpec(n)
	case *SelectItem:
		p.selectItem(n)
	case *FromClause:
		p.write("FROM ")
		p.node(n.Source)
	case *WhereClause:
		p.write("WHERE ")
		p.node(n.Cond)
	case *GroupByClause:
		p.write("GROUP BY ")
		p.exprList(n.Exprs)
	case *OrderByClause:
		p.write("ORDER BY ")
		for i, item := range n.Items {
			if i > 0 {
				p.write(", ")
			}
			p.orderByItem(item)
		}
	case *OrderByItem:
		p.orderByItem(n)
	case *OffsetLimitClause:
		p.write("OFFSET ")
		p.node(n.Offset)
		p.write(" LIMIT ")
		p.node(n.Limit)
	case *Identifier:
		p.write(n.Name)
	case CollectionExpr:
		p.collectionExpr(n)
	case Collection:
		p.collection(n)
	case PathExpr:
		p.path(n)
	case *ObjectProperty:
		p.write(Quote(n.Name), ": ")
		p.node(n.Value)
	case Expr:
		p.expr(n)
	}
}

func (p *printer) query(q *Query) {
	p.selectClause(q.Select)
	if q.From != nil {
		p.write(" ")
		p.node(q.From)
	}
	if q.Where != nil {
		p.write(" ")
		p.node(q.Where)
	}
	if q.GroupBy != nil {
		p.write(" ")
		p.node(q.GroupBy)
	}
	if q.OrderBy != nil {
		p.write(" ")
		p.node(q.OrderBy)
	}
	if q.OffsetLimit != nil {
		p.write(" ")
		p.node(q.OffsetLimit)
	}
}

func (p *printer) selectClause(s *SelectClause) {
	p.write("SELECT ")
	if s.Distinct {
		p.write("DISTINCT ")
	}
	if s.Top != nil {
		p.node(s.Top)
		p.write(" ")
	}
	p.selectSpec(s.Spec)
}

func (p *printer) selectSpec(s SelectSpec) {
	switch n := s.(type) {
	case *SelectStar:
		p.write("*")
	case *SelectValue:
		p.write("VALUE ")
		p.node(n.Expr)
	case *SelectList:
		for i, item := range n.Items {
			if i > 0 {
				p.write(", ")
			}
			p.selectItem(item)
		}
	}
}

func (p *printer) selectItem(item *SelectItem) {
	p.node(item.Expr)
	if item.Alias != nil {
		p.write(" AS ", item.Alias.Name)
	}
}

func (p *printer) orderByItem(item *OrderByItem) {
	p.node(item.Expr)
	switch {
	case item.Descending:
		p.write(" DESC")
	case item.Explicit:
		p.write(" ASC")
	}
}

func (p *printer) collectionExpr(c CollectionExpr) {
	switch n := c.(type) {
	case *AliasedCollection:
		p.collection(n.Source)
		if n.Alias != nil {
			p.write(" AS ", n.Alias.Name)
		}
	case *ArrayIteratorCollection:
		p.write(n.Alias.Name, " IN ")
		p.collection(n.Source)
	case *JoinCollection:
		p.collectionExpr(n.Left)
		p.write(" JOIN ")
		p.collectionExpr(n.Right)
	}
}

func (p *printer) collection(c Collection) {
	switch n := c.(type) {
	case *InputPathCollection:
		p.write(n.Input.Name)
		if n.Path != nil {
			p.path(n.Path)
		}
	case *SubqueryCollection:
		p.write("(")
		p.query(n.Query)
		p.write(")")
	}
}

// path prints the steps from the first to the last.
func (p *printer) path(step PathExpr) {
	if step == nil {
		return
	}
	p.path(step.GetParent())
	switch n := step.(type) {
	case *IdentifierPath:
		p.write(".", n.Value.Name)
	case *NumberPath:
		p.write("[", number(n.Value.Number), "]")
	case *StringPath:
		p.write("[", Quote(n.Value.Str), "]")
	}
}

func (p *printer) exprList(list []Expr) {
	for i, e := range list {
		if i > 0 {
			p.write(", ")
		}
		p.expr(e)
	}
}

func (p *printer) expr(e Expr) {
	switch n := e.(type) {
	case *Literal:
		p.write(literal(n))
	case *Parameter:
		p.write(n.Name)
	case *PropertyRef:
		if n.Member != nil {
			p.member(n.Member)
			p.write(".")
		}
		p.write(n.Name.Name)
	case *MemberIndexer:
		p.member(n.Member)
		p.write("[")
		p.expr(n.Index)
		p.write("]")
	case *FunctionCall:
		if n.UDF {
			p.write("udf.")
		}
		p.write(n.Name.Name, "(")
		p.exprList(n.Args)
		p.write(")")
	case *Unary:
		p.unary(n)
	case *Binary:
		p.write("(")
		p.expr(n.Left)
		p.write(" ", opText(n.Op), " ")
		p.expr(n.Right)
		p.write(")")
	case *Coalesce:
		p.write("(")
		p.expr(n.Left)
		p.write(" ?? ")
		p.expr(n.Right)
		p.write(")")
	case *Conditional:
		p.write("(")
		p.expr(n.Cond)
		p.write(" ? ")
		p.expr(n.Then)
		p.write(" : ")
		p.expr(n.Else)
		p.write(")")
	case *Between:
		p.write("(")
		p.expr(n.Expr)
		p.write(not(n.Not), " BETWEEN ")
		p.expr(n.Low)
		p.write(" AND ")
		p.expr(n.High)
		p.write(")")
	case *In:
		p.write("(")
		p.expr(n.Expr)
		p.write(not(n.Not), " IN (")
		p.exprList(n.List)
		p.write("))")
	case *Like:
		p.write("(")
		p.expr(n.Expr)
		p.write(not(n.Not), " LIKE ")
		p.expr(n.Pattern)
		if n.Escape != nil {
			p.write(" ESCAPE ", literal(n.Escape))
		}
		p.write(")")
	case *ArrayCreate:
		p.write("[")
		p.exprList(n.Items)
		p.write("]")
	case *ObjectCreate:
		p.write("{")
		for i, prop := range n.Props {
			if i > 0 {
				p.write(", ")
			}
			p.node(prop)
		}
		p.write("}")
	case *Exists:
		p.write("EXISTS(")
		p.query(n.Query)
		p.write(")")
	case *ArraySubquery:
		p.write("ARRAY(")
		p.query(n.Query)
		p.write(")")
	case *Subquery:
		p.write("(")
		p.query(n.Query)
		p.write(")")
	}
}

// member prints the receiver of a property access. Literals are wrapped
// so that a negative number keeps its sign.
func (p *printer) member(e Expr) {
	if _, ok := e.(*Literal); ok {
		p.write("(")
		p.expr(e)
		p.write(")")
		return
	}
	p.expr(e)
}

func (p *printer) unary(n *Unary) {
	p.write("(")
	operand := String(n.Operand)
	switch {
	case n.Op == token.NOT:
		p.write("NOT ")
	case n.Op == token.MINUS && strings.HasPrefix(operand, "-"):
		// "--" would start a comment
		p.write("- ")
	default:
		p.write(opText(n.Op))
	}
	p.write(operand, ")")
}

func not(b bool) string {
	if b {
		return " NOT"
	}
	return ""
}

func opText(op token.Kind) string {
	return op.String()
}

func literal(l *Literal) string {
	switch l.Kind {
	case LiteralNumber:
		return number(l.Number)
	case LiteralString:
		return Quote(l.Str)
	case LiteralTrue:
		return "true"
	case LiteralFalse:
		return "false"
	case LiteralNull:
		return "null"
	}
	return "undefined"
}

// number formats a numeric payload so that it scans back to the same kind
// of value: integral floats keep a fraction.
func number(v token.Value) string {
	if i, ok := v.Int(); ok {
		return strconv.FormatInt(i, 10)
	}
	f := v.FloatOr(0)
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eEIN") {
		s += ".0"
	}
	return s
}

// Quote returns s as a double-quoted string literal using the escapes the
// scanner understands.
func Quote(s string) string {
	var sb strings.Builder
	sb.Grow(len(s) + 2)
	sb.WriteByte('"')
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case '"', '\\':
			sb.WriteByte('\\')
			sb.WriteByte(c)
		case '\b':
			sb.WriteString(`\b`)
		case '\f':
			sb.WriteString(`\f`)
		case '\n':
			sb.WriteString(`\n`)
		case '\r':
			sb.WriteString(`\r`)
		case '\t':
			sb.WriteString(`\t`)
		default:
			if c < 0x20 {
				const hex = "0123456789abcdef"
				sb.WriteString(`\u00`)
				sb.WriteByte(hex[c>>4])
				sb.WriteByte(hex[c&0xf])
				continue
			}
			sb.WriteByte(c)
		}
	}
	sb.WriteByte('"')
	return sb.String()
}
