package ast

// ---------- Collection expressions ----------

// AliasedCollection is collection [[AS] alias].
type AliasedCollection struct {
	NodeInfo
	Source Collection
	Alias  *Identifier // optional
}

func (*AliasedCollection) collectionExprNode() {}

// ArrayIteratorCollection is alias IN collection: it iterates the elements
// of an array rather than the documents of a collection.
type ArrayIteratorCollection struct {
	NodeInfo
	Alias  *Identifier
	Source Collection
}

func (*ArrayIteratorCollection) collectionExprNode() {}

// JoinCollection is left JOIN right, a self join within each document.
type JoinCollection struct {
	NodeInfo
	Left  CollectionExpr
	Right CollectionExpr
}

func (*JoinCollection) collectionExprNode() {}

// ---------- Collections ----------

// InputPathCollection names an input, optionally narrowed by a path:
// c, c.children, c["tags"][0].
type InputPathCollection struct {
	NodeInfo
	Input *Identifier
	Path  PathExpr // optional, points at the last step
}

func (*InputPathCollection) collectionNode() {}

// SubqueryCollection ranges over the results of a subquery.
type SubqueryCollection struct {
	NodeInfo
	Query *Query
}

func (*SubqueryCollection) collectionNode() {}

// ---------- Path steps ----------

// IdentifierPath is a .name step.
type IdentifierPath struct {
	NodeInfo
	Parent PathExpr
	Value  *Identifier
}

func (*IdentifierPath) pathNode() {}

// GetParent implements PathExpr.
func (p *IdentifierPath) GetParent() PathExpr { return p.Parent }

// NumberPath is a [n] step.
type NumberPath struct {
	NodeInfo
	Parent PathExpr
	Value  *Literal
}

func (*NumberPath) pathNode() {}

// GetParent implements PathExpr.
func (p *NumberPath) GetParent() PathExpr { return p.Parent }

// StringPath is a ["name"] step.
type StringPath struct {
	NodeInfo
	Parent PathExpr
	Value  *Literal
}

func (*StringPath) pathNode() {}

// GetParent implements PathExpr.
func (p *StringPath) GetParent() PathExpr { return p.Parent }
