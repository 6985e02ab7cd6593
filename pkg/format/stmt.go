package format

import (
	"github.com/leapstack-labs/cosmosql/pkg/ast"
	"github.com/leapstack-labs/cosmosql/pkg/token"
)

func (p *Printer) formatQuery(q *ast.Query) {
	if q == nil {
		return
	}

	p.formatSelectClause(q.Select)

	if q.From != nil {
		p.kw(token.FROM)
		p.space()
		p.formatCollectionExpr(q.From.Source)
		p.writeln()
	}

	if q.Where != nil {
		p.kw(token.WHERE)
		p.writeln()
		p.indent()
		p.formatExpr(q.Where.Cond, precLowest)
		p.dedent()
		p.writeln()
	}

	if q.GroupBy != nil && len(q.GroupBy.Exprs) > 0 {
		p.kw(token.GROUP, token.BY)
		p.writeln()
		p.indent()
		exprs := q.GroupBy.Exprs
		p.formatList(len(exprs), func(i int) { p.formatExpr(exprs[i], precLowest) }, ",", true)
		p.dedent()
		p.writeln()
	}

	if q.OrderBy != nil && len(q.OrderBy.Items) > 0 {
		p.kw(token.ORDER, token.BY)
		p.writeln()
		p.indent()
		items := q.OrderBy.Items
		p.formatList(len(items), func(i int) { p.formatOrderByItem(items[i]) }, ",", true)
		p.dedent()
		p.writeln()
	}

	if ol := q.OffsetLimit; ol != nil {
		p.kw(token.OFFSET)
		p.space()
		p.formatExpr(ol.Offset, precLowest)
		p.space()
		p.kw(token.LIMIT)
		p.space()
		p.formatExpr(ol.Limit, precLowest)
		p.writeln()
	}
}

func (p *Printer) formatSelectClause(sc *ast.SelectClause) {
	if sc == nil {
		return
	}

	// SELECT [DISTINCT] [TOP n]
	p.kw(token.SELECT)
	if sc.Distinct {
		p.space()
		p.kw(token.DISTINCT)
	}
	if sc.Top != nil {
		p.space()
		p.kw(token.TOP)
		p.space()
		p.formatExpr(sc.Top.Count, precLowest)
	}

	switch spec := sc.Spec.(type) {
	case *ast.SelectStar:
		p.writeln()
		p.indent()
		p.write("*")
	case *ast.SelectValue:
		p.space()
		p.kw(token.VALUE)
		p.writeln()
		p.indent()
		p.formatExpr(spec.Expr, precLowest)
	case *ast.SelectList:
		p.writeln()
		p.indent()
		p.formatList(len(spec.Items), func(i int) { p.formatSelectItem(spec.Items[i]) }, ",", true)
	default:
		p.indent()
	}
	p.writeln()
	p.dedent()
}

func (p *Printer) formatSelectItem(item *ast.SelectItem) {
	p.formatExpr(item.Expr, precLowest)
	if item.Alias != nil {
		p.space()
		p.kw(token.AS)
		p.space()
		p.write(item.Alias.Name)
	}
}

func (p *Printer) formatOrderByItem(item *ast.OrderByItem) {
	p.formatExpr(item.Expr, precLowest)
	switch {
	case item.Descending:
		p.space()
		p.kw(token.DESC)
	case item.Explicit:
		p.space()
		p.kw(token.ASC)
	}
}

func (p *Printer) formatCollectionExpr(c ast.CollectionExpr) {
	switch n := c.(type) {
	case *ast.JoinCollection:
		p.formatCollectionExpr(n.Left)
		p.writeln()
		p.kw(token.JOIN)
		p.space()
		p.formatCollectionExpr(n.Right)
	case *ast.AliasedCollection:
		p.formatCollection(n.Source)
		if n.Alias != nil {
			p.space()
			p.kw(token.AS)
			p.space()
			p.write(n.Alias.Name)
		}
	case *ast.ArrayIteratorCollection:
		p.write(n.Alias.Name)
		p.space()
		p.kw(token.IN)
		p.space()
		p.formatCollection(n.Source)
	}
}

func (p *Printer) formatCollection(c ast.Collection) {
	switch n := c.(type) {
	case *ast.InputPathCollection:
		p.write(n.Input.Name)
		p.formatPath(n.Path)
	case *ast.SubqueryCollection:
		p.formatSubquery(n.Query)
	}
}

// formatPath prints a path from its root step outwards.
func (p *Printer) formatPath(step ast.PathExpr) {
	if step == nil {
		return
	}
	p.formatPath(step.GetParent())
	switch n := step.(type) {
	case *ast.IdentifierPath:
		p.write(".")
		p.write(n.Value.Name)
	case *ast.NumberPath:
		p.write("[")
		p.write(ast.String(n.Value))
		p.write("]")
	case *ast.StringPath:
		p.write("[")
		p.write(ast.Quote(n.Value.Str))
		p.write("]")
	}
}

// formatSubquery prints a parenthesised query with its clauses indented;
// the closing parenthesis starts a line of its own.
func (p *Printer) formatSubquery(q *ast.Query) {
	p.write("(")
	p.writeln()
	p.indent()
	p.formatQuery(q)
	p.dedent()
	p.write(")")
}
