// Package ast defines the syntax tree of the Cosmos SQL dialect.
//
// Nodes are plain structs built once by the reduction actions of the parser
// and never mutated afterwards. Every node records the span of source text
// it was reduced from.
package ast

import "github.com/leapstack-labs/cosmosql/pkg/token"

// Node is the base interface for all AST nodes.
type Node interface {
	// GetSpan returns the source range the node was built from.
	GetSpan() token.Span
}

// Expr is a scalar expression.
type Expr interface {
	Node
	exprNode()
}

// SelectSpec is the projection of a SELECT clause: *, VALUE expr, or a list.
type SelectSpec interface {
	Node
	selectSpecNode()
}

// CollectionExpr is a FROM source: an aliased collection, an array
// iteration, or a join of two sources.
type CollectionExpr interface {
	Node
	collectionExprNode()
}

// Collection is the thing a collection expression ranges over.
type Collection interface {
	Node
	collectionNode()
}

// PathExpr is one step of a path below an input collection. Steps link to
// their parent; the first step has a nil Parent.
type PathExpr interface {
	Node
	pathNode()
	GetParent() PathExpr
}

// NodeInfo carries the span shared by all nodes.
type NodeInfo struct {
	Span token.Span
}

// GetSpan implements Node.
func (n NodeInfo) GetSpan() token.Span { return n.Span }

// ---------- Query & clauses ----------

// Query is a complete SELECT query, at top level or as a subquery.
type Query struct {
	NodeInfo
	Select      *SelectClause
	From        *FromClause       // optional
	Where       *WhereClause      // optional
	GroupBy     *GroupByClause    // optional
	OrderBy     *OrderByClause    // optional
	OffsetLimit *OffsetLimitClause // optional
}

// SelectClause is SELECT [DISTINCT] [TOP n] spec.
type SelectClause struct {
	NodeInfo
	Distinct bool
	Top      *TopSpec // optional
	Spec     SelectSpec
}

// TopSpec is the row limit of TOP. Count is a number literal or a parameter.
type TopSpec struct {
	NodeInfo
	Count Expr
}

// SelectStar is SELECT *.
type SelectStar struct {
	NodeInfo
}

func (*SelectStar) selectSpecNode() {}

// SelectValue is SELECT VALUE expr.
type SelectValue struct {
	NodeInfo
	Expr Expr
}

func (*SelectValue) selectSpecNode() {}

// SelectList is a comma separated projection list.
type SelectList struct {
	NodeInfo
	Items []*SelectItem
}

func (*SelectList) selectSpecNode() {}

// SelectItem is one projected expression with an optional alias.
type SelectItem struct {
	NodeInfo
	Expr  Expr
	Alias *Identifier // optional
}

// FromClause is FROM source.
type FromClause struct {
	NodeInfo
	Source CollectionExpr
}

// WhereClause is WHERE cond.
type WhereClause struct {
	NodeInfo
	Cond Expr
}

// GroupByClause is GROUP BY exprs.
type GroupByClause struct {
	NodeInfo
	Exprs []Expr
}

// OrderByClause is ORDER BY items.
type OrderByClause struct {
	NodeInfo
	Items []*OrderByItem
}

// OrderByItem is one sort key.
type OrderByItem struct {
	NodeInfo
	Expr       Expr
	Descending bool
	Explicit   bool // ASC or DESC was written out
}

// OffsetLimitClause is OFFSET n LIMIT m. Both counts are number literals or
// parameters.
type OffsetLimitClause struct {
	NodeInfo
	Offset Expr
	Limit  Expr
}

// Identifier is a bare name: an alias or a function name.
type Identifier struct {
	NodeInfo
	Name string
}
